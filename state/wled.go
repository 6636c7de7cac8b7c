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

package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/we-are-mono/wled/daemon/logger"
	"github.com/we-are-mono/wled/types"
	"github.com/we-are-mono/wled/validation"
)

const (
	configNamespace = "wled"

	DefaultDataDir        = "/var/lib/wled"
	DefaultPresetsFile    = "presets.json"
	DefaultLEDCount       = 30
	DefaultFrameRate      = 42
	DefaultMaxSegmentData = 32768
)

// LoadWLEDConfig loads wled.json. A missing file yields the defaults, and
// fields left out of the file take their default values.
func LoadWLEDConfig() (*types.Config, error) {
	config := DefaultConfig()
	if err := LoadConfig(configNamespace, config); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug("No wled config found, using defaults",
				logger.Field{Key: "dir", Value: GetConfigDir()})
			return config, nil
		}
		return nil, fmt.Errorf("failed to load wled config: %w", err)
	}

	applyDefaults(config)
	return config, nil
}

// SaveWLEDConfig validates and saves wled.json.
func SaveWLEDConfig(config *types.Config) error {
	if err := Validate(config); err != nil {
		return err
	}
	return SaveConfig(configNamespace, config)
}

// DefaultConfig returns a single segment strip with default settings.
func DefaultConfig() *types.Config {
	config := &types.Config{Version: "1.0"}
	applyDefaults(config)
	return config
}

func applyDefaults(config *types.Config) {
	if config.DataDir == "" {
		config.DataDir = DefaultDataDir
	}
	if config.PresetsFile == "" {
		config.PresetsFile = DefaultPresetsFile
	}
	if config.LEDCount == 0 {
		config.LEDCount = DefaultLEDCount
	}
	if config.FrameRate == 0 {
		config.FrameRate = DefaultFrameRate
	}
	if config.MaxSegmentData == 0 {
		config.MaxSegmentData = DefaultMaxSegmentData
	}
	if len(config.Segments) == 0 {
		config.Segments = []types.SegmentConfig{{Start: 0, Stop: config.LEDCount, Rows: 1}}
	}
	for i := range config.Segments {
		if config.Segments[i].Rows == 0 {
			config.Segments[i].Rows = 1
		}
	}
	if config.Logging == nil {
		config.Logging = &types.LoggingConfig{}
	}
	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}
	if config.Logging.Format == "" {
		config.Logging.Format = "text"
	}
}

// Validate reports every problem of config at once.
func Validate(config *types.Config) error {
	v := validation.NewCollector()

	if config.DataDir == "" || !filepath.IsAbs(config.DataDir) {
		v.Check(fmt.Errorf("data_dir %q must be an absolute path", config.DataDir))
	}
	v.CheckMsg(validation.ValidateFileName(config.PresetsFile), "presets_file")
	v.Check(validation.ValidateRange("led_count", config.LEDCount, 1, 8192))
	v.Check(validation.ValidateFrameRate(config.FrameRate))
	v.Check(validation.ValidateRange("max_segment_data", config.MaxSegmentData, 0, 1<<24))
	if config.BootPreset != 0 {
		v.CheckMsg(validation.ValidatePresetID(config.BootPreset), "boot_preset")
	}
	if config.Logging != nil {
		v.Check(validation.ValidateLogLevel(config.Logging.Level))
		v.Check(validation.ValidateLogFormat(config.Logging.Format))
	}

	for i, seg := range config.Segments {
		sv := validation.NewCollector().WithContext(fmt.Sprintf("segment %d", i))
		sv.Check(validation.ValidateSegment(seg.Start, seg.Stop, seg.Rows, config.LEDCount))
		for _, other := range config.Segments[:i] {
			if seg.Start < other.Stop && other.Start < seg.Stop {
				sv.Check(fmt.Errorf("overlaps [%d, %d)", other.Start, other.Stop))
			}
		}
		v.Check(sv.Error())
	}

	return v.Error()
}
