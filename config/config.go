// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package config loads the node's single key=value configuration file.
// The command-line surface lives in cmd/xbtcd; this package covers only
// the file half.
package config

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"
)

// Defaults for every recognized key.
const (
	DefaultTCPPort         = 18333
	DefaultHTTPPort        = 18080
	DefaultMaxNodeCount    = 30
	DefaultConnectInterval = 30
	DefaultDBCache         = 450 * 1024 * 1024
)

// Config holds every setting the core node reads from its configuration
// file.
type Config struct {
	TCPPort         int
	HTTPPort        int
	MaxNodeCount    int
	ConnectInterval int
	DataDir         string
	DBCache         int
	DirectNode      string
	TestNet         bool

	// Proxy/ProxyUser/ProxyPass configure connmgr's optional SOCKS5
	// dial path.
	Proxy     string
	ProxyUser string
	ProxyPass string
}

// Default returns a Config populated with every key's documented default
// and an empty, necessarily-invalid DataDir.
func Default() *Config {
	return &Config{
		TCPPort:         DefaultTCPPort,
		HTTPPort:        DefaultHTTPPort,
		MaxNodeCount:    DefaultMaxNodeCount,
		ConnectInterval: DefaultConnectInterval,
		DBCache:         DefaultDBCache,
	}
}

// Load reads path as a key=value file, overriding Default's values with
// whatever keys are present. Unknown keys are rejected: a typo in a
// config file should be loud, not silently ignored.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errorf(ErrOpen, "open %s: %v", path, err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Config, error) {
	cfg := Default()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			return nil, errorf(ErrSyntax, "line %d: expected key=value, got %q", line, text)
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if err := cfg.set(key, value); err != nil {
			return nil, errorf(ErrSyntax, "line %d: %v", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errorf(ErrOpen, "read config: %v", err)
	}
	if cfg.DataDir == "" {
		return nil, errorf(ErrMissingDataDir, "dataDir is required")
	}
	return cfg, nil
}

func (c *Config) set(key, value string) error {
	switch key {
	case "tcpPort":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		c.TCPPort = n
	case "httpPort":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		c.HTTPPort = n
	case "maxNodeCount":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		c.MaxNodeCount = n
	case "connectInterval":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		c.ConnectInterval = n
	case "dataDir":
		c.DataDir = value
	case "dbCache":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		c.DBCache = n
	case "directNode":
		c.DirectNode = value
	case "proxy":
		c.Proxy = value
	case "proxyUser":
		c.ProxyUser = value
	case "proxyPass":
		c.ProxyPass = value
	case "testNet":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		c.TestNet = b
	default:
		return errorf(ErrSyntax, "unrecognized key %q", key)
	}
	return nil
}
