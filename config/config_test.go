// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"strings"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse(strings.NewReader("dataDir=/tmp/xbtc\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TCPPort != DefaultTCPPort {
		t.Errorf("TCPPort = %d, want default %d", cfg.TCPPort, DefaultTCPPort)
	}
	if cfg.MaxNodeCount != DefaultMaxNodeCount {
		t.Errorf("MaxNodeCount = %d, want default %d", cfg.MaxNodeCount, DefaultMaxNodeCount)
	}
	if cfg.DataDir != "/tmp/xbtc" {
		t.Errorf("DataDir = %q, want /tmp/xbtc", cfg.DataDir)
	}
}

func TestParseOverridesAndComments(t *testing.T) {
	input := `# a comment
dataDir = /data/xbtc
tcpPort=8333
testNet = true

directNode=127.0.0.1:18444
`
	cfg, err := parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TCPPort != 8333 {
		t.Errorf("TCPPort = %d, want 8333", cfg.TCPPort)
	}
	if !cfg.TestNet {
		t.Errorf("TestNet = false, want true")
	}
	if cfg.DirectNode != "127.0.0.1:18444" {
		t.Errorf("DirectNode = %q", cfg.DirectNode)
	}
}

func TestParseMissingDataDir(t *testing.T) {
	_, err := parse(strings.NewReader("tcpPort=8333\n"))
	var cfgErr Error
	if !errors.As(err, &cfgErr) || cfgErr.ErrorCode != ErrMissingDataDir {
		t.Fatalf("expected ErrMissingDataDir, got %v", err)
	}
}

func TestParseUnknownKey(t *testing.T) {
	_, err := parse(strings.NewReader("dataDir=/tmp/xbtc\nbogusKey=1\n"))
	var cfgErr Error
	if !errors.As(err, &cfgErr) || cfgErr.ErrorCode != ErrSyntax {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}

func TestParseMalformedLine(t *testing.T) {
	_, err := parse(strings.NewReader("dataDir=/tmp/xbtc\njust some text\n"))
	var cfgErr Error
	if !errors.As(err, &cfgErr) || cfgErr.ErrorCode != ErrSyntax {
		t.Fatalf("expected ErrSyntax, got %v", err)
	}
}
