// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config parses cmd/crownd's command-line and config-file flags
// into a chaincfg.Params selection plus the knobs the chain engine, address
// manager and peer layer need to start, using go-flags' own struct-tag
// idiom for both the flag definitions and the optional ini config file.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"

	"github.com/defunctec/crownj/btcutil/er"
	"github.com/defunctec/crownj/chaincfg"
	"github.com/defunctec/crownj/pktlog/log"
)

var configErrorType = er.NewErrorType("config")

var (
	// ErrUnknownNetwork is returned when both --testnet and --regtest are
	// set; with neither set, mainnet is selected.
	ErrUnknownNetwork = configErrorType.Code("ErrUnknownNetwork")

	// ErrInvalidListenAddr is returned when --listen isn't a valid
	// host:port pair.
	ErrInvalidListenAddr = configErrorType.Code("ErrInvalidListenAddr")
)

const (
	defaultConfigFilename = "crownd.conf"
	defaultDataDirname    = "data"
	defaultLogLevel       = "info"
	defaultMaxPeers       = 125
)

// Config holds every flag cmd/crownd accepts, named and tagged the way
// go-flags expects (long name derives from the field name unless
// overridden, `description` feeds --help).
type Config struct {
	ShowVersion bool `short:"V" long:"version" description:"Display version information and exit"`

	ConfigFile string `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir    string `short:"b" long:"datadir" description:"Directory to store data"`

	TestNet bool `long:"testnet" description:"Use the test network"`
	RegTest bool `long:"regtest" description:"Use the regression test network"`

	Listen      []string `long:"listen" description:"Add an interface/port to listen for connections (default all interfaces)"`
	ConnectPeer []string `long:"connect" description:"Connect only to the specified peers at startup"`
	AddPeer     []string `long:"addpeer" description:"Add a peer to connect with at startup"`
	MaxPeers    int      `long:"maxpeers" description:"Max number of inbound and outbound peers"`

	MaxReorgDepth int32 `long:"maxreorgdepth" description:"Override the selected network's maximum reorg depth (0 = network default)"`

	DisableWallet       bool `long:"nowallet" description:"Disable the built-in spending wallet"`
	DisableAddressIndex bool `long:"noaddrindex" description:"Disable the address balance index"`

	LogLevel string `long:"loglevel" description:"Logging level: trace, debug, info, warn, error, critical, off"`
	LogDir   string `long:"logdir" description:"Directory to log output to"`

	// Params is resolved from TestNet/RegTest by Load; it carries no flag
	// of its own.
	Params *chaincfg.Params
}

// defaultHomeDir returns the default "~/.crownd" application data directory.
func defaultHomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".crownd")
}

// Load parses args (pass os.Args[1:]) into a Config, resolves the selected
// network's chaincfg.Params, fills in defaults, and validates the result.
// On --help, Load prints the usage text and exits the process with status
// 0; any other parse error is returned.
func Load(args []string) (*Config, er.R) {
	cfg := &Config{
		DataDir:  defaultHomeDir(),
		MaxPeers: defaultMaxPeers,
		LogLevel: defaultLogLevel,
	}

	parser := flags.NewParser(cfg, flags.Default)

	// A first pass picks up -C/--configfile and --datadir only, so the ini
	// file (if any) is read from the right place before the real parse
	// applies CLI flags on top of it.
	preCfg := *cfg
	preParser := flags.NewParser(&preCfg, flags.IgnoreUnknown)
	_, _ = preParser.ParseArgs(args)
	if preCfg.ConfigFile == "" {
		preCfg.ConfigFile = filepath.Join(preCfg.DataDir, defaultConfigFilename)
	}
	if _, err := os.Stat(preCfg.ConfigFile); err == nil {
		if err := flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile); err != nil {
			return nil, er.E(err)
		}
	}

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, er.E(err)
	}

	if cfg.TestNet && cfg.RegTest {
		return nil, ErrUnknownNetwork.Detail("--testnet and --regtest are mutually exclusive")
	}
	switch {
	case cfg.RegTest:
		cfg.Params = &chaincfg.RegressionNetParams
	case cfg.TestNet:
		cfg.Params = &chaincfg.TestNetParams
	default:
		cfg.Params = &chaincfg.MainNetParams
	}

	if cfg.MaxReorgDepth != 0 {
		// Copy rather than mutate the selected chaincfg.Params value in
		// place — it's a shared package-level var, not a per-config copy.
		overridden := *cfg.Params
		overridden.MaxReorgDepth = cfg.MaxReorgDepth
		cfg.Params = &overridden
	}

	for _, addr := range cfg.Listen {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return nil, ErrInvalidListenAddr.Detail(fmt.Sprintf("%q: %v", addr, err))
		}
	}
	if len(cfg.Listen) == 0 {
		cfg.Listen = []string{net.JoinHostPort("", cfg.Params.DefaultPort)}
	}

	cfg.DataDir = filepath.Join(cfg.DataDir, defaultDataDirname, cfg.Params.Name)
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, er.E(err)
	}
	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.DataDir, "logs")
	}
	if err := os.MkdirAll(cfg.LogDir, 0700); err != nil {
		return nil, er.E(err)
	}

	return cfg, nil
}

// ChainDBPath returns the path to this network's chain database file inside
// DataDir.
func (c *Config) ChainDBPath() string {
	return filepath.Join(c.DataDir, "chain.db")
}

// AddrBookPath returns the path to this network's persisted peer address
// book inside DataDir.
func (c *Config) AddrBookPath() string {
	return filepath.Join(c.DataDir, "peers.json")
}

// LogFilePath returns the path crownd's logger writes to.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.LogDir, "crownd.log")
}

// Level parses LogLevel with pktlog/log's own parser, so an unrecognized
// string falls back to info rather than rejecting the whole config.
func (c *Config) Level() log.Level {
	return log.LevelFromString(c.LogLevel)
}
