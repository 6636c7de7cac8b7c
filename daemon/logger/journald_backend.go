// Copyright (C) 2025 Mono Technologies Inc.
//
// This program is free software; you can redistribute it and/or
// modify it under the terms of the GNU General Public License
// as published by the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.

package logger

import (
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// journaldPriority maps levels to syslog priorities
var journaldPriority = map[string]string{
	"debug": "7",
	"info":  "6",
	"warn":  "4",
	"error": "3",
}

// JournaldBackend writes log entries to the systemd journal through systemd-cat
type JournaldBackend struct {
	format     string // "json" or "text"
	identifier string
	mu         sync.Mutex
}

// NewJournaldBackend returns an error if systemd-cat is not available
func NewJournaldBackend(format string) (*JournaldBackend, error) {
	if _, err := exec.LookPath("systemd-cat"); err != nil {
		return nil, fmt.Errorf("systemd-cat not found: %w", err)
	}

	return &JournaldBackend{
		format:     format,
		identifier: "wled",
	}, nil
}

// Write writes a log entry to the journal
func (b *JournaldBackend) Write(entry *Entry) error {
	line, err := entry.Format(b.format)
	if err != nil {
		return err
	}

	priority, ok := journaldPriority[entry.Level]
	if !ok {
		priority = "6"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	cmd := exec.Command("systemd-cat", "-t", b.identifier, "-p", priority)
	cmd.Stdin = strings.NewReader(line)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to write to journal: %w", err)
	}
	return nil
}

// Close is a no-op; every write runs its own systemd-cat
func (b *JournaldBackend) Close() error {
	return nil
}
