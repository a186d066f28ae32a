// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wsv

import (
	"github.com/bitmark-inc/permissiond/fault"
)

// Peer - one entry of the replicated peer list
type Peer struct {
	PublicKey      string // lowercase hex ed25519 key
	Address        string // host:port of the gossip endpoint
	TLSCertificate string // optional, empty when none
}

// ForPeerAddress - access a peer record; OpGet returns the address
func (v *View) ForPeerAddress(op Operation, policy Policy, pubkey string) (string, bool, error) {
	stored, found, err := v.access(op, policy, peerAddressKey(pubkey), nil,
		fault.CodePeersCountIsNotEnough, "peer "+pubkey)
	return string(stored), found, err
}

// PutPeerAddress - write a peer address
func (v *View) PutPeerAddress(pubkey, address string) error {
	_, _, err := v.access(OpPut, CanExist, peerAddressKey(pubkey), []byte(address), 0, "")
	return err
}

// DeletePeer - remove address and certificate of a peer
func (v *View) DeletePeer(pubkey string) error {
	if _, _, err := v.access(OpDel, CanExist, peerAddressKey(pubkey), nil, 0, ""); nil != err {
		return err
	}
	_, _, err := v.access(OpDel, CanExist, peerTLSKey(pubkey), nil, 0, "")
	return err
}

// PutPeerTLS - write a peer TLS certificate
func (v *View) PutPeerTLS(pubkey, certificate string) error {
	_, _, err := v.access(OpPut, CanExist, peerTLSKey(pubkey), []byte(certificate), 0, "")
	return err
}

// PeersCount - the maintained peer counter
func (v *View) PeersCount(policy Policy) (uint64, bool, error) {
	return v.getUint64(policy, keyPeersCount, fault.CodePeersCountIsNotEnough, "peers counter")
}

// PutPeersCount - write the peer counter
func (v *View) PutPeersCount(count uint64) error {
	return v.putUint64(keyPeersCount, count)
}

// PeerList - every peer in public key order
func (v *View) PeerList() []Peer {
	peers := []Peer{}
	v.store.Iterate(keyPeerAddressPrefix, func(key string, value []byte) bool {
		pubkey := key[len(keyPeerAddressPrefix):]
		peer := Peer{
			PublicKey: pubkey,
			Address:   string(value),
		}
		if certificate, found := v.store.Get(peerTLSKey(pubkey)); found {
			peer.TLSCertificate = string(certificate)
		}
		peers = append(peers, peer)
		return true
	})
	return peers
}
