// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - node configuration from a Lua file
//
// the file is executed and its final table mapped onto the
// Configuration structure; all knobs carry working defaults
package configuration

import (
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"
)

// Configuration - everything the node reads at start
type Configuration struct {
	DataDirectory string `gluamapper:"data_directory"`
	Listen        string `gluamapper:"listen"` // gossip bind address host:port

	PrivateKeyFile string `gluamapper:"private_key_file"` // hex ed25519 seed

	TransactionLimit  int `gluamapper:"transaction_limit"`
	NumberOfProposals int `gluamapper:"number_of_proposals"`

	VoteDelayMilliseconds          int `gluamapper:"vote_delay_milliseconds"`
	ProposalRequestTimeoutMilliseconds int `gluamapper:"proposal_request_timeout_milliseconds"`

	ConsistencyModel string `gluamapper:"consistency_model"` // "BFT" or "CFT"

	WaitForNewBlocks bool `gluamapper:"wait_for_new_blocks"`
}

// Defaults - the baseline configuration
func Defaults() Configuration {
	return Configuration{
		DataDirectory:                      "data",
		Listen:                             "127.0.0.1:2136",
		PrivateKeyFile:                     "peer.key",
		TransactionLimit:                   1000,
		NumberOfProposals:                  3,
		VoteDelayMilliseconds:              3000,
		ProposalRequestTimeoutMilliseconds: 5000,
		ConsistencyModel:                   "BFT",
	}
}

// ParseConfigurationFile - read and execute a Lua file and map the
// resulting table onto the configuration
func ParseConfigurationFile(fileName string, config *Configuration) error {
	L := lua.NewState()
	defer L.Close()

	L.OpenLibs()

	// create the global "arg" table
	// arg[0] = config file
	arg := &lua.LTable{}
	arg.Insert(0, lua.LString(fileName))
	L.SetGlobal("arg", arg)

	// execute configuration
	if err := L.DoFile(fileName); nil != err {
		return err
	}

	mapperOption := gluamapper.Option{
		NameFunc: func(s string) string {
			return s
		},
		TagName: "gluamapper",
	}
	mapper := gluamapper.Mapper{Option: mapperOption}
	return mapper.Map(L.Get(L.GetTop()).(*lua.LTable), config)
}
