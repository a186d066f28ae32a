// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// permissiond - permissioned ledger daemon
//
// orders client transaction batches into blocks by BFT voting and
// applies them to a replicated key-value world state
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permissiond/configuration"
	"github.com/bitmark-inc/permissiond/mode"
)

func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()
	defer fmt.Printf("\nprogram exit\n")

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, _, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: option error: %s", program, err)
	}
	if 0 != len(options["version"]) {
		exitwithstatus.Message("%s: version: %s", program, Version())
	}
	if 0 != len(options["help"]) {
		exitwithstatus.Message("usage: %s [--help] [--version] --config-file=FILE", program)
	}

	configurationFile := ""
	if 0 != len(options["config-file"]) {
		configurationFile = options["config-file"][0]
	}

	config := configuration.Defaults()
	if "" != configurationFile {
		if err := configuration.ParseConfigurationFile(configurationFile, &config); nil != err {
			exitwithstatus.Message("%s: configuration error: %s", program, err)
		}
	}

	if err := os.MkdirAll(config.DataDirectory, 0700); nil != err {
		exitwithstatus.Message("%s: data directory error: %s", program, err)
	}

	// start logging
	err = logger.Initialise(logger.Configuration{
		Directory: config.DataDirectory,
		File:      "permissiond.log",
		Size:      1048576,
		Count:     10,
	})
	if nil != err {
		exitwithstatus.Message("%s: logger setup failed: %s", program, err)
	}
	defer logger.Finalise()

	log := logger.New("main")
	log.Info("starting…")
	defer log.Info("shutting down…")

	privateKey, err := readPrivateKey(config.PrivateKeyFile)
	if nil != err {
		exitwithstatus.Message("%s: private key error: %s", program, err)
	}

	// set the initial system mode - before any background tasks start
	if err := mode.Initialise(); nil != err {
		exitwithstatus.Message("%s: mode setup failed: %s", program, err)
	}
	defer mode.Finalise()

	node, err := newNode(config, privateKey)
	if nil != err {
		log.Criticalf("node setup failed: %s", err)
		exitwithstatus.Message("%s: node setup failed: %s", program, err)
	}

	if err := node.start(); nil != err {
		log.Criticalf("node start failed: %s", err)
		exitwithstatus.Message("%s: node start failed: %s", program, err)
	}

	// wait for signals
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	sig := <-ch
	log.Infof("signal: %v", sig)

	node.stop()
}

// readPrivateKey - hex ed25519 seed or full private key from a file
func readPrivateKey(fileName string) (ed25519.PrivateKey, error) {
	data, err := os.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if nil != err {
		return nil, err
	}
	switch len(seed) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(seed), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(seed), nil
	}
	return nil, fmt.Errorf("private key file %q has invalid length", fileName)
}
