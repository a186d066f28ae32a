// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"sync"
	"time"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/background"
	"github.com/bitmark-inc/permissiond/blockrecord"
	"github.com/bitmark-inc/permissiond/blockstore"
	"github.com/bitmark-inc/permissiond/configuration"
	"github.com/bitmark-inc/permissiond/digest"
	"github.com/bitmark-inc/permissiond/messagebus"
	"github.com/bitmark-inc/permissiond/mode"
	"github.com/bitmark-inc/permissiond/network"
	"github.com/bitmark-inc/permissiond/ordering"
	"github.com/bitmark-inc/permissiond/pending"
	"github.com/bitmark-inc/permissiond/restore"
	"github.com/bitmark-inc/permissiond/round"
	"github.com/bitmark-inc/permissiond/storage"
	"github.com/bitmark-inc/permissiond/synchronizer"
	"github.com/bitmark-inc/permissiond/wsv"
	"github.com/bitmark-inc/permissiond/yac"
)

// blockCache - verified candidate blocks between voting and commit
type blockCache struct {
	sync.Mutex
	blocks map[digest.Digest]*blockrecord.Block
}

func newBlockCache() *blockCache {
	return &blockCache{
		blocks: make(map[digest.Digest]*blockrecord.Block),
	}
}

func (c *blockCache) Put(block *blockrecord.Block) {
	c.Lock()
	defer c.Unlock()
	c.blocks[block.Hash()] = block
}

func (c *blockCache) Get(h digest.Digest) (*blockrecord.Block, bool) {
	c.Lock()
	defer c.Unlock()
	block, ok := c.blocks[h]
	return block, ok
}

func (c *blockCache) Prune(below uint64) {
	c.Lock()
	defer c.Unlock()
	for h, block := range c.blocks {
		if block.Height < below {
			delete(c.blocks, h)
		}
	}
}

// node - the assembled pipeline
type node struct {
	log    *logger.L
	config configuration.Configuration

	wsvStore  *storage.Store
	logStore  *storage.Store
	view      *wsv.View
	blocks    *blockstore.Store
	service   *ordering.Service
	gate      *ordering.Gate
	client    *network.Client
	server    *network.Server
	engine    *yac.YAC
	sync      *synchronizer.Synchronizer
	cache     *blockCache
	processes *background.T
}

func newNode(config configuration.Configuration, privateKey ed25519.PrivateKey) (*node, error) {
	wsvStore, err := storage.New("wsv", config.DataDirectory)
	if nil != err {
		return nil, err
	}
	logStore, err := storage.New("blocks", config.DataDirectory)
	if nil != err {
		wsvStore.Close()
		return nil, err
	}

	view := wsv.New(wsvStore)
	blocks, err := blockstore.New(logStore)
	if nil != err {
		wsvStore.Close()
		logStore.Close()
		return nil, err
	}

	if err := pending.Initialise(); nil != err {
		return nil, err
	}

	service := ordering.NewService(config.TransactionLimit, config.NumberOfProposals)
	client := network.NewClient(time.Duration(config.ProposalRequestTimeoutMilliseconds) * time.Millisecond)
	gate := ordering.NewGate(service, client)

	model := yac.BFT
	if "CFT" == config.ConsistencyModel {
		model = yac.CFT
	}
	engine := yac.New(
		yac.NewSupermajorityChecker(model),
		client,
		privateKey,
		time.Duration(config.VoteDelayMilliseconds)*time.Millisecond,
		func(outcome yac.Outcome) {
			messagebus.Send("yac", outcome)
		},
	)

	cache := newBlockCache()

	n := &node{
		log:      logger.New("node"),
		config:   config,
		wsvStore: wsvStore,
		logStore: logStore,
		view:     view,
		blocks:   blocks,
		service:  service,
		gate:     gate,
		client:   client,
		engine:   engine,
		sync:     synchronizer.New(view, blocks, cache),
		cache:    cache,
	}

	n.server, err = network.NewServer(config.Listen, network.Handlers{
		Service: service,
		Votes:   engine,
	})
	if nil != err {
		return nil, err
	}

	return n, nil
}

// start - restore the WSV, then run the pipeline
func (n *node) start() error {
	mode.Set(mode.Resynchronise)

	restorer := restore.New(n.view, n.blocks)
	if err := restorer.Run(n.config.WaitForNewBlocks, nil); nil != err {
		return err
	}

	mode.Set(mode.Normal)

	n.processes = background.Start(background.Processes{
		"network-server": n.server.Run,
		"event-loop":     n.eventLoop,
		"completed-mst":  n.completedBatchLoop,
	}, nil)

	// kick off the first round
	state, found := n.view.LedgerState()
	if found {
		n.startRound(round.New(state.Height+1), state)
	} else {
		n.log.Warn("empty WSV: waiting for a genesis block in the block log")
	}
	return nil
}

// stop - wind the pipeline down in dependency order
func (n *node) stop() {
	mode.Set(mode.Stopped)
	n.gate.Stop()
	n.engine.Stop()
	if nil != n.processes {
		n.processes.Stop()
	}
	n.client.Close()
	_ = pending.Finalise()
	n.wsvStore.Close()
	n.logStore.Close()
}

// eventLoop - serialise consensus outcomes and round switches
func (n *node) eventLoop(args interface{}, shutdown <-chan struct{}) {
	for {
		select {
		case <-shutdown:
			return

		case m := <-messagebus.Chan():
			outcome, ok := m.Item.(yac.Outcome)
			if !ok {
				continue
			}
			event, err := n.sync.ProcessOutcome(outcome)
			if nil != err {
				n.log.Errorf("outcome processing failed: %s", err)
				continue
			}

			if synchronizer.Commit == event.Kind {
				// release caches holding the now committed transactions
				n.service.OnTxsCommitted(event.CommittedHashes)
				pending.RemoveByTransactionHashes(event.CommittedHashes)
				n.cache.Prune(event.LedgerState.Height)
			}

			n.startRound(event.Round, event.LedgerState)
		}
	}
}

// completedBatchLoop - fully signed batches leave the MST store and
// enter ordering
func (n *node) completedBatchLoop(args interface{}, shutdown <-chan struct{}) {
	for {
		select {
		case <-shutdown:
			return
		case batch := <-pending.CompletedBatches():
			n.gate.PropagateBatch(batch)
		}
	}
}

// startRound - drive ordering and voting for one round
func (n *node) startRound(r round.Round, state wsv.LedgerState) {
	n.engine.UpdatePeers(state.Peers)

	event := n.gate.ProcessRoundSwitch(r, state)
	if nil == event {
		return
	}

	if nil == event.Proposal {
		// nothing to order: vote the empty hashes so the round can
		// reject and move on
		n.engine.VoteFor(r, digest.Digest{}, digest.Digest{})
		return
	}

	block := &blockrecord.Block{
		Height:       r.Block,
		PrevHash:     state.TopBlockHash,
		CreatedTime:  event.Proposal.CreatedTime,
		Transactions: event.Proposal.Transactions,
	}
	n.cache.Put(block)

	n.engine.VoteFor(r, event.Proposal.Hash(), block.Hash())
}
