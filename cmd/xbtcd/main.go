// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command xbtcd runs the node's single process: it loads a config file,
// opens on-disk storage, and drives the server dispatch loop until it
// receives an interrupt.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	flags "github.com/jessevdk/go-flags"

	"github.com/hindsights/xbtc/addrmgr"
	"github.com/hindsights/xbtc/blockcache"
	"github.com/hindsights/xbtc/chaincfg"
	"github.com/hindsights/xbtc/config"
	"github.com/hindsights/xbtc/connmgr"
	"github.com/hindsights/xbtc/database"
	"github.com/hindsights/xbtc/internal/xbtclog"
	"github.com/hindsights/xbtc/netsync"
	"github.com/hindsights/xbtc/peer"
	"github.com/hindsights/xbtc/server"
	"github.com/hindsights/xbtc/txscript"
)

// exitDataDirError is the exit code for an invalid or missing data
// directory.
const exitDataDirError = 11

// sigCacheMaxEntries bounds the shared signature-verification cache
// handed to every block's script validation.
const sigCacheMaxEntries = 100000

// options is the process's entire command-line surface: everything else
// lives in the config file it points at.
type options struct {
	ConfigFile string `long:"configfile" short:"C" description:"Path to configuration file" default:"xbtcd.conf"`
	DebugLevel string `long:"debuglevel" short:"d" description:"Logging level {trace, debug, info, warn, error, critical}" default:"info"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if _, ok := err.(dataDirError); ok {
			os.Exit(exitDataDirError)
		}
		os.Exit(1)
	}
}

// dataDirError marks a failure that maps to exitDataDirError.
type dataDirError struct{ err error }

func (e dataDirError) Error() string { return e.err.Error() }
func (e dataDirError) Unwrap() error { return e.err }

func run() error {
	opts := &options{}
	parser := flags.NewParser(opts, flags.PrintErrors|flags.HelpFlag)
	if _, err := parser.Parse(); err != nil {
		return err
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		if errors.Is(err, config.ErrMissingDataDir) {
			return dataDirError{err}
		}
		return err
	}

	if err := xbtclog.InitLogRotator(filepath.Join(cfg.DataDir, "logs", "xbtcd.log")); err != nil {
		return fmt.Errorf("init log rotator: %w", err)
	}
	wireUpLoggers(opts.DebugLevel)

	params := chaincfg.MainNetParams()
	if cfg.TestNet {
		params = chaincfg.TestNetParams()
	}

	store, err := database.Open(cfg.DataDir, params.Net, cfg.DBCache)
	if err != nil {
		return dataDirError{fmt.Errorf("open database at %s: %w", cfg.DataDir, err)}
	}
	defer store.Close()

	sigCache, err := txscript.NewSigCache(sigCacheMaxEntries)
	if err != nil {
		return fmt.Errorf("create signature cache: %w", err)
	}

	cache := blockcache.New(params, store, sigCache)
	if err := cache.Load(); err != nil {
		return fmt.Errorf("load chain state: %w", err)
	}

	srv := server.New(params, cfg, cache)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return srv.Run(ctx)
}

// wireUpLoggers hands every subsystem its own tagged logger at the
// configured level.
func wireUpLoggers(levelName string) {
	peerLog := xbtclog.SubLogger("PEER")
	connLog := xbtclog.SubLogger("CMGR")
	syncLog := xbtclog.SubLogger("SYNC")
	srvLog := xbtclog.SubLogger("SRVR")
	addrLog := xbtclog.SubLogger("ADMR")

	peer.UseLogger(peerLog)
	connmgr.UseLogger(connLog)
	netsync.UseLogger(syncLog)
	server.UseLogger(srvLog)
	addrmgr.UseLogger(addrLog)

	_ = xbtclog.SetLevel(peerLog, levelName)
	_ = xbtclog.SetLevel(connLog, levelName)
	_ = xbtclog.SetLevel(syncLog, levelName)
	_ = xbtclog.SetLevel(srvLog, levelName)
	_ = xbtclog.SetLevel(addrLog, levelName)
}
