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

// Package types defines the data structures of the wled configuration.
package types

// LoggingConfig represents configuration for the logging system
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error (default: info)
	Format string `json:"format"` // text, json (default: text)
	File   string `json:"file"`   // Log file path; empty logs to stderr only
}

// SegmentConfig describes one segment of the strip
type SegmentConfig struct {
	Start int    `json:"start"`
	Stop  int    `json:"stop"`
	Rows  int    `json:"rows,omitempty"` // virtual strips (default: 1)
	Mode  *uint8 `json:"fx,omitempty"`   // effect at boot when no preset applies
}

// Config represents the main configuration (/etc/wled/wled.json)
type Config struct {
	DataDir        string          `json:"data_dir"`         // directory holding the object files
	PresetsFile    string          `json:"presets_file"`     // preset file name inside DataDir
	BootPreset     int             `json:"boot_preset"`      // preset applied at startup, 0 for none
	LEDCount       int             `json:"led_count"`        // pixels on the strip
	FrameRate      int             `json:"frame_rate"`       // frames per second
	MaxSegmentData int             `json:"max_segment_data"` // effect data budget in bytes
	QuotaBytes     uint64          `json:"quota_bytes"`      // fixed filesystem size; 0 uses statfs
	Segments       []SegmentConfig `json:"segments"`
	Logging        *LoggingConfig  `json:"logging"` // optional
	Version        string          `json:"version"`
}
