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
	"github.com/we-are-mono/wled/state"
	"github.com/we-are-mono/wled/store"
)

func newLocalBackend(t *testing.T, content string) *storeBackend {
	t.Helper()

	cfg := state.DefaultConfig()
	cfg.DataDir = t.TempDir()
	if content != "" {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.DataDir, cfg.PresetsFile), []byte(content), 0644))
	}

	s := newLocalStore(cfg, nil)
	t.Cleanup(func() { s.Close() })
	return &storeBackend{config: cfg, objects: s, local: s}
}

func TestParseStoreKey(t *testing.T) {
	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{arg: "5", want: `"5":`},
		{arg: "250", want: `"250":`},
		{arg: "name", want: `"name":`},
		{arg: `"raw":`, want: `"raw":`},
		{arg: "", wantErr: true},
		{arg: `bad{`, wantErr: true},
		{arg: `"open`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			key, err := parseStoreKey(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestExecuteStoreDump(t *testing.T) {
	b := newLocalBackend(t, `{"0":{},"1":{"n":"a","seg":[{"id":0}]},"2":{}}      `)

	var buf bytes.Buffer
	require.NoError(t, executeStoreDump(&buf, b, b.config.PresetsFile, []string{"1"}))
	assert.JSONEq(t, `{"n":"a","seg":[{"id":0}]}`, buf.String())
	assert.Contains(t, buf.String(), "\n  \"n\": \"a\"")

	buf.Reset()
	require.NoError(t, executeStoreDump(&buf, b, b.config.PresetsFile, nil))
	assert.JSONEq(t, `{"0":{},"1":{"n":"a","seg":[{"id":0}]},"2":{}}`, buf.String())

	err := executeStoreDump(&buf, b, b.config.PresetsFile, []string{"9"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	err = executeStoreDump(&buf, b, "other.json", nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExecuteStoreStats(t *testing.T) {
	b := newLocalBackend(t, `{"0":{},"1":{"n":"a"}}`)

	var buf bytes.Buffer
	require.NoError(t, executeStoreStats(&buf, b, b.config.PresetsFile, nil))
	out := buf.String()
	assert.Contains(t, out, "Size:            22 bytes")
	assert.Contains(t, out, "Records:         2 (1 empty)")
	assert.Contains(t, out, "Filler:          0 bytes")
	assert.Contains(t, out, "Cached space:    unknown")
}
