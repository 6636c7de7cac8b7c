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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-are-mono/wled/types"
)

func TestLoadWLEDConfigDefaults(t *testing.T) {
	tempConfigDir(t)

	config, err := LoadWLEDConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultDataDir, config.DataDir)
	assert.Equal(t, DefaultPresetsFile, config.PresetsFile)
	assert.Equal(t, DefaultFrameRate, config.FrameRate)
	require.Len(t, config.Segments, 1)
	assert.Equal(t, types.SegmentConfig{Start: 0, Stop: DefaultLEDCount, Rows: 1}, config.Segments[0])
	assert.Equal(t, "info", config.Logging.Level)
	assert.NoError(t, Validate(config))
}

func TestLoadWLEDConfigPartial(t *testing.T) {
	dir := tempConfigDir(t)

	data := []byte(`{"led_count": 64, "segments": [{"start": 0, "stop": 32}, {"start": 32, "stop": 64, "rows": 4}], "logging": {"level": "debug"}}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wled.json"), data, 0644))

	config, err := LoadWLEDConfig()
	require.NoError(t, err)

	assert.Equal(t, 64, config.LEDCount)
	assert.Equal(t, 1, config.Segments[0].Rows)
	assert.Equal(t, 4, config.Segments[1].Rows)
	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, "text", config.Logging.Format)
	assert.NoError(t, Validate(config))
}

func TestLoadWLEDConfigBroken(t *testing.T) {
	dir := tempConfigDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "wled.json"), []byte(`{"led_count": }`), 0644))

	_, err := LoadWLEDConfig()
	assert.ErrorContains(t, err, "failed to load wled config")
}

func TestValidate(t *testing.T) {
	config := DefaultConfig()
	config.DataDir = "relative"
	config.PresetsFile = "../escape.json"
	config.FrameRate = 0
	config.BootPreset = 300
	config.Segments = []types.SegmentConfig{
		{Start: 0, Stop: 20, Rows: 1},
		{Start: 10, Stop: 30, Rows: 1},
		{Start: 0, Stop: 31, Rows: 1},
	}

	err := Validate(config)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "data_dir")
	assert.Contains(t, msg, "presets_file")
	assert.Contains(t, msg, "frame rate")
	assert.Contains(t, msg, "boot_preset")
	assert.Contains(t, msg, "segment 1: overlaps [0, 20)")
	assert.Contains(t, msg, "segment 2: segment [0, 31) does not fit")
}

func TestSaveWLEDConfig(t *testing.T) {
	tempConfigDir(t)

	config := DefaultConfig()
	config.BootPreset = 3
	require.NoError(t, SaveWLEDConfig(config))

	loaded, err := LoadWLEDConfig()
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.BootPreset)

	config.FrameRate = -1
	assert.Error(t, SaveWLEDConfig(config))
}
