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
	"github.com/we-are-mono/wled/presets"
	"github.com/we-are-mono/wled/state"
	"github.com/we-are-mono/wled/store"
	"github.com/we-are-mono/wled/types"
)

// useTestConfig points loadConfig at a default config with a temporary data dir.
func useTestConfig(t *testing.T) *types.Config {
	t.Helper()

	cfg := state.DefaultConfig()
	cfg.DataDir = t.TempDir()

	old := loadConfig
	loadConfig = func() (*types.Config, error) { return cfg, nil }
	t.Cleanup(func() { loadConfig = old })
	return cfg
}

func newTestManager(t *testing.T) (*presets.Manager, string) {
	t.Helper()

	dir := t.TempDir()
	s := store.New(store.OSFS{Root: dir})
	t.Cleanup(func() { s.Close() })
	return presets.NewManager(s, "", nil), dir
}

func TestExecutePresetSetGetList(t *testing.T) {
	m, _ := newTestManager(t)
	var buf bytes.Buffer

	require.NoError(t, executePresetSet(&buf, m, []string{"3", `{"n":"Fire","bri":200,"seg":[{"id":0,"fx":66}]}`}))
	assert.Equal(t, "[OK] Saved preset 3\n", buf.String())

	require.NoError(t, executePresetSet(&bytes.Buffer{}, m,
		[]string{"7", `{"n":"Cycle","ql":"C","playlist":{"ps":[3,3],"dur":[10,20],"repeat":0}}`}))

	buf.Reset()
	require.NoError(t, executePresetGet(&buf, m, []string{"3"}))
	assert.JSONEq(t, `{"n":"Fire","bri":200,"seg":[{"id":0,"fx":66}]}`, buf.String())

	buf.Reset()
	require.NoError(t, executePresetList(&buf, m, nil))
	out := buf.String()
	assert.Contains(t, out, "ID   NAME")
	assert.Regexp(t, `3\s+Fire\s+state`, out)
	assert.Regexp(t, `7\s+Cycle\s+C\s+playlist \(2 entries\)`, out)
}

func TestExecutePresetGetName(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, executePresetSet(&bytes.Buffer{}, m, []string{"1", `{"n":"Solid","on":true}`}))

	presetNameOnly = true
	defer func() { presetNameOnly = false }()

	var buf bytes.Buffer
	require.NoError(t, executePresetGet(&buf, m, []string{"1"}))
	assert.Equal(t, "Solid\n", buf.String())
}

func TestExecutePresetSetFromFile(t *testing.T) {
	m, _ := newTestManager(t)

	path := filepath.Join(t.TempDir(), "preset.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"n":"From file","bri":10}`), 0644))

	presetFile = path
	defer func() { presetFile = "" }()

	require.NoError(t, executePresetSet(&bytes.Buffer{}, m, []string{"2"}))
	err := executePresetSet(&bytes.Buffer{}, m, []string{"2", `{"n":"x"}`})
	assert.ErrorContains(t, err, "not both")

	p, err := m.Load(2)
	require.NoError(t, err)
	assert.Equal(t, "From file", p.Name)
}

func TestExecutePresetSetErrors(t *testing.T) {
	m, _ := newTestManager(t)

	tests := []struct {
		name       string
		args       []string
		wantErrMsg string
	}{
		{"no body", []string{"1"}, "no preset given"},
		{"bad id", []string{"x", `{"n":"a"}`}, "invalid preset id"},
		{"reserved id", []string{"0", `{"n":"a"}`}, "out of valid range"},
		{"syntax error", []string{"1", `{"n":}`}, "line 1, column"},
		{"wrong type", []string{"1", `{"bri":"high"}`}, "wrong type"},
		{"empty preset", []string{"1", `{}`}, "preset is empty"},
		{"bad playlist", []string{"1", `{"playlist":{"ps":[]}}`}, "playlist has no presets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := executePresetSet(&bytes.Buffer{}, m, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrMsg)
		})
	}
}

func TestExecutePresetDelete(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, executePresetSet(&bytes.Buffer{}, m, []string{"4", `{"n":"Gone"}`}))

	var buf bytes.Buffer
	require.NoError(t, executePresetDelete(&buf, m, []string{"4"}))
	assert.Equal(t, "[OK] Deleted preset 4\n", buf.String())

	err := executePresetGet(&bytes.Buffer{}, m, []string{"4"})
	assert.ErrorIs(t, err, presets.ErrNotFound)

	// deleting again is fine
	require.NoError(t, executePresetDelete(&bytes.Buffer{}, m, []string{"4"}))
}

func TestExecutePresetListEmpty(t *testing.T) {
	m, _ := newTestManager(t)

	var buf bytes.Buffer
	require.NoError(t, executePresetList(&buf, m, nil))
	assert.Equal(t, "No presets stored\n", buf.String())
}
