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

// Package daemon runs the frame loop and serves the control socket.
package daemon

// LogFilter defines filtering criteria for log streaming
type LogFilter struct {
	Level     string `json:"level,omitempty"`     // Filter by log level (debug, info, warn, error)
	Component string `json:"component,omitempty"` // Filter by component name
}

// Request represents a command sent to the daemon
type Request struct {
	Value     interface{} `json:"value,omitempty"`
	Command   string      `json:"command"` // status, apply, next, stop-playlist, power, brightness, effect, logs-subscribe
	ID        int         `json:"id,omitempty"`      // Preset id for apply
	Segment   int         `json:"segment,omitempty"` // Segment id for effect
	LogFilter *LogFilter  `json:"log_filter,omitempty"`
}

// Response represents the daemon's response
type Response struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Success bool        `json:"success"`
}
