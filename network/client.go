// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"sync"
	"syscall"
	"time"

	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/fault"
	"github.com/bitmark-inc/permissiond/ordering"
	"github.com/bitmark-inc/permissiond/round"
	"github.com/bitmark-inc/permissiond/transaction"
	"github.com/bitmark-inc/permissiond/wsv"
	"github.com/bitmark-inc/permissiond/yac"
)

// DefaultRequestTimeout - bound on any remote exchange
const DefaultRequestTimeout = 5 * time.Second

// Client - typed requests to remote peers over REQ sockets
//
// one socket per peer address, recreated after an error since a REQ
// socket is poisoned by a missed reply; implements the ordering
// transport and the vote transport
type Client struct {
	sync.Mutex
	log     *logger.L
	timeout time.Duration
	sockets map[string]*zmq.Socket
}

// NewClient - create a client pool
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		log:     logger.New("network-client"),
		timeout: timeout,
		sockets: make(map[string]*zmq.Socket),
	}
}

// Close - drop every cached socket
func (c *Client) Close() {
	c.Lock()
	defer c.Unlock()
	for address, socket := range c.sockets {
		socket.Close()
		delete(c.sockets, address)
	}
}

// SendBatches - deliver batches to a peer's ordering service
func (c *Client) SendBatches(peer wsv.Peer, batches []*transaction.Batch) error {
	_, err := c.exchange(peer.Address, tagBatches, packBatches(batches))
	return err
}

// SendState - deliver vote state to a peer's consensus engine
func (c *Client) SendState(peer wsv.Peer, votes []yac.Vote) error {
	_, err := c.exchange(peer.Address, tagVotes, packVotes(votes))
	return err
}

// RequestProposal - ask the ordering peer for the round's proposal
//
// a deadline overrun abandons the exchange and reports no proposal
func (c *Client) RequestProposal(peer wsv.Peer, r round.Round) (*ordering.Proposal, error) {
	reply, err := c.exchange(peer.Address, tagProposalRequest, packRound(r))
	if nil != err {
		return nil, err
	}
	return unpackProposalReply(reply)
}

// exchange - one request/reply with deadline
func (c *Client) exchange(address string, tag string, payload []byte) ([]byte, error) {
	c.Lock()
	defer c.Unlock()

	socket, err := c.socketFor(address)
	if nil != err {
		return nil, err
	}

	if _, err := socket.SendMessage(tag, payload); nil != err {
		c.dropSocket(address)
		return nil, err
	}

	reply, err := socket.RecvMessageBytes(0)
	if nil != err {
		// timed out or interrupted: the socket can no longer be reused
		c.dropSocket(address)
		if zmq.AsErrno(err) == zmq.Errno(syscall.EAGAIN) {
			return nil, fault.ErrTimeout
		}
		return nil, err
	}
	if len(reply) < 2 {
		return nil, fault.InvalidError("short reply")
	}
	return reply[1], nil
}

func (c *Client) socketFor(address string) (*zmq.Socket, error) {
	if socket, ok := c.sockets[address]; ok {
		return socket, nil
	}

	socket, err := zmq.NewSocket(zmq.REQ)
	if nil != err {
		return nil, err
	}
	socket.SetLinger(0)
	socket.SetRcvtimeo(c.timeout)
	socket.SetSndtimeo(c.timeout)
	if err := socket.Connect("tcp://" + address); nil != err {
		socket.Close()
		return nil, err
	}

	c.sockets[address] = socket
	return socket, nil
}

func (c *Client) dropSocket(address string) {
	if socket, ok := c.sockets[address]; ok {
		socket.Close()
		delete(c.sockets, address)
	}
}
