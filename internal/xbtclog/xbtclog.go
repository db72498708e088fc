// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package xbtclog sets up the shared slog backend every other package logs
// through. Each package that wants logging declares its own `log.go` with a
// package-level `log slog.Logger` (defaulting to slog.Disabled) and a
// `UseLogger` setter; cmd/xbtcd calls InitLogRotator once at startup and
// then hands each package its subsystem logger via SubLogger.
package xbtclog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// logRotator writes logged messages to a set of size-capped, rotated files
// in addition to the backend's other writer (normally stdout). It is nil
// until InitLogRotator runs.
var logRotator *rotator.Rotator

// backend is the shared slog backend every subsystem logger is created
// from. By default it only writes to stdout; InitLogRotator adds rotation.
var backend = slog.NewBackend(os.Stdout)

// SubLogger returns a new logger for the given subsystem tag, at InfoLvl
// by default.
func SubLogger(subsystem string) slog.Logger {
	l := backend.Logger(subsystem)
	l.SetLevel(slog.LevelInfo)
	return l
}

// InitLogRotator creates a rotating log file at logFile (and its parent
// directories, if missing) and makes the shared backend write to it in
// addition to stdout. Must be called at most once, before any subsystem
// logger is created via SubLogger.
func InitLogRotator(logFile string) error {
	logDir := filepath.Dir(logFile)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	r, err := rotator.New(logFile, 10*1024, false, 3)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}
	logRotator = r
	backend = slog.NewBackend(logWriter{}, slog.WithFlags(slog.Lshortfile))
	return nil
}

// logWriter implements io.Writer by forwarding to the active log rotator,
// so the backend created in InitLogRotator writes every record to disk.
type logWriter struct{}

func (logWriter) Write(p []byte) (int, error) {
	os.Stdout.Write(p)
	if logRotator != nil {
		return logRotator.Write(p)
	}
	return len(p), nil
}

// SetLevel changes the logging level of an already-created subsystem
// logger, used by configuration to apply a `--debuglevel` flag.
func SetLevel(logger slog.Logger, levelName string) error {
	level, ok := slog.LevelFromString(levelName)
	if !ok {
		return fmt.Errorf("unknown log level %q", levelName)
	}
	logger.SetLevel(level)
	return nil
}
