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

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteValidate(t *testing.T) {
	tests := []struct {
		name     string
		presets  string
		wantOK   bool
		wantLine string
	}{
		{
			name:     "no presets file",
			wantOK:   true,
			wantLine: "✓ presets.json: valid",
		},
		{
			name:     "valid presets",
			presets:  `{"0":{},"1":{"n":"a","bri":10},"2":{},"3":{"playlist":{"ps":[1],"dur":[50]}}}   `,
			wantOK:   true,
			wantLine: "✓ All files are valid",
		},
		{
			name:     "corrupt file",
			presets:  `{"0":{},"1":{"n":"a"`,
			wantLine: "❌ presets.json:",
		},
		{
			name:     "invalid playlist",
			presets:  `{"0":{},"4":{"playlist":{"ps":[0]}}}`,
			wantLine: "preset 4: playlist",
		},
		{
			name:     "bad field type",
			presets:  `{"0":{},"5":{"bri":"max"}}`,
			wantLine: "preset 5: wrong type",
		},
		{
			name:     "non numeric key",
			presets:  `{"0":{},"x":{}}`,
			wantLine: `record "x" is not a preset id`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := useTestConfig(t)
			if tt.presets != "" {
				require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, cfg.PresetsFile), []byte(tt.presets), 0644))
			}

			var buf bytes.Buffer
			ok := executeValidate(&buf)
			assert.Equal(t, tt.wantOK, ok, buf.String())
			assert.Contains(t, buf.String(), "✓ wled.json: valid")
			assert.Contains(t, buf.String(), tt.wantLine)
		})
	}
}

func TestExecuteValidateBadConfig(t *testing.T) {
	cfg := useTestConfig(t)
	cfg.FrameRate = 0
	cfg.DataDir = "relative"

	var buf bytes.Buffer
	assert.False(t, executeValidate(&buf))
	assert.Contains(t, buf.String(), "❌ wled.json:")
	assert.Contains(t, buf.String(), "frame rate")
	assert.Contains(t, buf.String(), "data_dir")
	assert.NotContains(t, buf.String(), "presets.json")
}
