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

// Package validation provides the checks shared by the wled configuration
// and preset documents.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Preset ids; 0 is reserved for the empty record at the head of the file.
const (
	MinPresetID = 1
	MaxPresetID = 250
)

// ValidateRange checks lo <= v <= hi.
func ValidateRange(name string, v, lo, hi int) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s %d out of valid range [%d, %d]", name, v, lo, hi)
	}
	return nil
}

// ValidatePresetID checks that id can address a preset record.
func ValidatePresetID(id int) error {
	return ValidateRange("preset id", id, MinPresetID, MaxPresetID)
}

// ValidateFrameRate checks the render rate in frames per second.
func ValidateFrameRate(fps int) error {
	return ValidateRange("frame rate", fps, 1, 250)
}

// ValidateSegment checks that [start, stop) lies within a strip of length
// pixels and splits evenly into rows virtual strips.
func ValidateSegment(start, stop, rows, length int) error {
	if start < 0 || stop > length || start >= stop {
		return fmt.Errorf("segment [%d, %d) does not fit a strip of %d pixels", start, stop, length)
	}
	if rows < 1 {
		return fmt.Errorf("segment rows must be at least 1, got %d", rows)
	}
	if (stop-start)%rows != 0 {
		return fmt.Errorf("segment of %d pixels cannot be split into %d rows", stop-start, rows)
	}
	return nil
}

// ValidateLogLevel accepts debug, info, warn and error.
func ValidateLogLevel(level string) error {
	switch level {
	case "debug", "info", "warn", "error":
		return nil
	}
	return fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", level)
}

// ValidateLogFormat accepts text and json.
func ValidateLogFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	}
	return fmt.Errorf("invalid log format %q (expected text or json)", format)
}

// ValidateFileName checks a data file name: a plain .json name without any
// directory part.
func ValidateFileName(name string) error {
	if name == "" {
		return fmt.Errorf("file name cannot be empty")
	}
	if filepath.Base(name) != name || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("file name %q must not contain a directory", name)
	}
	if filepath.Ext(name) != ".json" {
		return fmt.Errorf("file name %q must end in .json", name)
	}
	return nil
}

// ValidatePlaylist checks the preset list of a playlist and its per-entry
// durations in tenths of a second.
func ValidatePlaylist(presets, durations []int) error {
	if len(presets) == 0 {
		return fmt.Errorf("playlist has no presets")
	}
	for i, id := range presets {
		if err := ValidatePresetID(id); err != nil {
			return fmt.Errorf("playlist entry %d: %w", i, err)
		}
	}
	if len(durations) > len(presets) {
		return fmt.Errorf("playlist has %d durations for %d presets", len(durations), len(presets))
	}
	for i, d := range durations {
		if d < 0 {
			return fmt.Errorf("playlist entry %d: negative duration %d", i, d)
		}
	}
	return nil
}
