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
	"io"

	"github.com/hashicorp/go-hclog"
)

// HCLogBackend hands entries to an hclog logger, which renders them for a
// terminal (or as JSON when configured so).
type HCLogBackend struct {
	log hclog.Logger
}

// NewHCLogBackend creates a backend writing to w at the given level
func NewHCLogBackend(w io.Writer, level string, json bool) *HCLogBackend {
	return &HCLogBackend{
		log: hclog.New(&hclog.LoggerOptions{
			Name:       "wled",
			Output:     w,
			Level:      hclog.LevelFromString(level),
			JSONFormat: json,
		}),
	}
}

// NewHCLogBackendFrom wraps an existing hclog logger
func NewHCLogBackendFrom(l hclog.Logger) *HCLogBackend {
	return &HCLogBackend{log: l}
}

// Write forwards the entry with its fields as key/value pairs
func (b *HCLogBackend) Write(entry *Entry) error {
	l := b.log
	if entry.Component != "" {
		l = l.Named(entry.Component)
	}

	args := make([]interface{}, 0, 2*len(entry.Fields))
	for _, k := range entry.sortedKeys() {
		args = append(args, k, entry.Fields[k])
	}

	switch entry.Level {
	case "debug":
		l.Debug(entry.Message, args...)
	case "warn":
		l.Warn(entry.Message, args...)
	case "error":
		l.Error(entry.Message, args...)
	default:
		l.Info(entry.Message, args...)
	}
	return nil
}

// Close is a no-op; the writer belongs to the caller
func (b *HCLogBackend) Close() error {
	return nil
}
