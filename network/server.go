// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package network

import (
	"time"

	zmq "github.com/pebbe/zmq4"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/ordering"
	"github.com/bitmark-inc/permissiond/yac"
)

// inbound batch rate limiting
const (
	batchRateLimit = rate.Limit(200) // batch deliveries (messages) per second
	batchRateBurst = 100
	pollInterval   = 100 * time.Millisecond
)

// Handlers - the local subsystems behind the gossip endpoint
type Handlers struct {
	Service *ordering.Service
	Votes   *yac.YAC
}

// Server - the REP endpoint answering peer requests
type Server struct {
	log      *logger.L
	socket   *zmq.Socket
	handlers Handlers
	limiter  *rate.Limiter
}

// NewServer - bind the gossip endpoint
func NewServer(listen string, handlers Handlers) (*Server, error) {
	socket, err := zmq.NewSocket(zmq.REP)
	if nil != err {
		return nil, err
	}
	socket.SetLinger(0)
	socket.SetRcvtimeo(pollInterval)
	if err := socket.Bind("tcp://" + listen); nil != err {
		socket.Close()
		return nil, err
	}

	return &Server{
		log:      logger.New("network-server"),
		socket:   socket,
		handlers: handlers,
		limiter:  rate.NewLimiter(batchRateLimit, batchRateBurst),
	}, nil
}

// Run - serve requests until shutdown; fits background.Process
func (s *Server) Run(args interface{}, shutdown <-chan struct{}) {
	defer s.socket.Close()

	for {
		select {
		case <-shutdown:
			return
		default:
		}

		message, err := s.socket.RecvMessageBytes(0)
		if nil != err {
			continue // receive timeout: poll the shutdown channel again
		}
		if len(message) < 2 {
			s.socket.SendMessage(tagAck, []byte{})
			continue
		}

		tag := string(message[0])
		reply := s.handle(tag, message[1])
		if _, err := s.socket.SendMessage(replyTag(tag), reply); nil != err {
			s.log.Errorf("reply failed: %s", err)
		}
	}
}

func replyTag(tag string) string {
	if tagProposalRequest == tag {
		return tagProposalReply
	}
	return tagAck
}

func (s *Server) handle(tag string, payload []byte) []byte {
	switch tag {

	case tagBatches:
		if !s.limiter.Allow() {
			s.log.Warn("batch flood: dropping delivery")
			return []byte{}
		}
		batches, err := unpackBatches(payload)
		if nil != err {
			s.log.Warnf("bad batches message: %s", err)
			return []byte{}
		}
		s.handlers.Service.OnBatches(batches)

	case tagVotes:
		votes, err := unpackVotes(payload)
		if nil != err {
			s.log.Warnf("bad votes message: %s", err)
			return []byte{}
		}
		s.handlers.Votes.OnState(votes)

	case tagProposalRequest:
		r, err := unpackRound(payload)
		if nil != err {
			s.log.Warnf("bad proposal request: %s", err)
			return packProposalReply(nil)
		}
		return packProposalReply(s.handlers.Service.OnRequestProposal(r))

	default:
		s.log.Warnf("unknown message tag: %q", tag)
	}
	return []byte{}
}
