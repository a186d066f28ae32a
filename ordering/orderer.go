// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ordering

import (
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/permutation"
	"github.com/bitmark-inc/permissiond/round"
	"github.com/bitmark-inc/permissiond/wsv"
)

// OrderPeers - deterministic shuffle of the peer list seeded by a block
// hash
//
// every node computes the same order from the same ledger state, which
// is what makes leader selection agreement-free
func OrderPeers(peers []wsv.Peer, blockHash digest.Digest) []wsv.Peer {
	p := permutation.Generate(permutation.NewSeededEngine(blockHash[:]), len(peers))
	ordered := make([]wsv.Peer, len(peers))
	for i, j := range p {
		ordered[i] = peers[j]
	}
	return ordered
}

// OrderingPeerFor - the peer that serves proposals for a round
//
// the permutation is fixed by the top block hash; successive reject
// rounds walk along it so a stalled leader rotates out
func OrderingPeerFor(r round.Round, state wsv.LedgerState) (wsv.Peer, bool) {
	if 0 == len(state.Peers) {
		return wsv.Peer{}, false
	}
	ordered := OrderPeers(state.Peers, state.TopBlockHash)
	return ordered[r.Reject%uint64(len(ordered))], true
}
