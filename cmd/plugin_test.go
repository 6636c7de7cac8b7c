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
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/we-are-mono/wled/plugins"
	"github.com/we-are-mono/wled/state"
)

// fakeProvider answers Metadata and Status with fixed values
type fakeProvider struct {
	meta      plugins.MetadataResponse
	status    []byte
	statusErr error
}

func (f *fakeProvider) Metadata(ctx context.Context) (plugins.MetadataResponse, error) {
	return f.meta, nil
}

func (f *fakeProvider) ReadObject(ctx context.Context, file, key string, filterJSON []byte) ([]byte, error) {
	return nil, os.ErrNotExist
}

func (f *fakeProvider) WriteObject(ctx context.Context, file, key string, contentJSON []byte) error {
	return errors.New("read only")
}

func (f *fakeProvider) Status(ctx context.Context) ([]byte, error) {
	return f.status, f.statusErr
}

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0755))
	return path
}

func TestExecutePluginList(t *testing.T) {
	dir := t.TempDir()
	writeExecutable(t, dir, plugins.BinaryPrefix+"flash")
	writeExecutable(t, dir, plugins.BinaryPrefix+"sdcard")
	writeExecutable(t, dir, "unrelated")

	var buf bytes.Buffer
	require.NoError(t, executePluginList(&buf, plugins.NewPluginManagerWithDirs(dir)))
	assert.Equal(t, "Installed plugins:\n"+
		"  flash - "+filepath.Join(dir, plugins.BinaryPrefix+"flash")+"\n"+
		"  sdcard - "+filepath.Join(dir, plugins.BinaryPrefix+"sdcard")+"\n", buf.String())

	buf.Reset()
	require.NoError(t, executePluginList(&buf, plugins.NewPluginManagerWithDirs(t.TempDir())))
	assert.Equal(t, "No plugins found\n", buf.String())
}

func TestResolvePlugin(t *testing.T) {
	dir := t.TempDir()
	path := writeExecutable(t, dir, plugins.BinaryPrefix+"flash")
	pm := plugins.NewPluginManagerWithDirs(dir)

	self, err := os.Executable()
	require.NoError(t, err)

	got, args, err := resolvePlugin(pm, builtinPlugin)
	require.NoError(t, err)
	assert.Equal(t, self, got)
	assert.Equal(t, []string{"plugin", "serve"}, args)

	got, args, err = resolvePlugin(pm, "flash")
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.Empty(t, args)

	_, _, err = resolvePlugin(pm, "missing")
	assert.Error(t, err)
}

func TestPrintPluginInfo(t *testing.T) {
	p := &fakeProvider{
		meta: plugins.MetadataResponse{
			Namespace:   "store",
			Version:     "1.0.0",
			Description: "JSON object store",
			DataDir:     "/var/lib/wled",
			Files:       []string{"presets.json", "cfg.json"},
		},
		status: []byte(`{"last_error":0,"last_error_name":"none"}`),
	}

	var buf bytes.Buffer
	require.NoError(t, printPluginInfo(&buf, p))
	out := buf.String()
	assert.Contains(t, out, "Namespace: store\n")
	assert.Contains(t, out, "Version: 1.0.0\n")
	assert.Contains(t, out, "Data dir: /var/lib/wled\n")
	assert.Contains(t, out, "Files: presets.json, cfg.json\n")
	assert.Contains(t, out, `"last_error_name": "none"`)

	p.statusErr = errors.New("store unavailable")
	assert.ErrorContains(t, printPluginInfo(&bytes.Buffer{}, p), "status: store unavailable")
}

func TestBackendStatsRemote(t *testing.T) {
	cfg := state.DefaultConfig()
	p := &fakeProvider{status: []byte(`{"files":{"presets.json":{"size":22,"records":2,"empty_records":1,"known_largest_space":-1}},"errors":{"broken.json":"corrupt object file"}}`)}
	b := &storeBackend{config: cfg, objects: &plugins.RemoteStore{Provider: p}, provider: p}

	st, err := b.stats("presets.json")
	require.NoError(t, err)
	assert.Equal(t, int64(22), st.Size)
	assert.Equal(t, 2, st.Records)
	assert.Equal(t, int64(-1), st.KnownLargestSpace)

	_, err = b.stats("broken.json")
	assert.ErrorContains(t, err, "corrupt object file")

	_, err = b.stats("other.json")
	assert.ErrorContains(t, err, "does not report other.json")

	p.status = []byte("garbage")
	_, err = b.stats("presets.json")
	assert.ErrorContains(t, err, "invalid plugin status")
}

func TestOpenBackendLocal(t *testing.T) {
	cfg := useTestConfig(t)
	cfg.DataDir = filepath.Join(cfg.DataDir, "nested")
	cfg.QuotaBytes = 4096

	b, err := openBackend("")
	require.NoError(t, err)
	defer b.Close()

	require.NotNil(t, b.local)
	assert.DirExists(t, cfg.DataDir)

	var out bytes.Buffer
	m := b.presets()
	require.NoError(t, executePresetSet(&out, m, []string{"1", `{"n":"local"}`}))
	assert.FileExists(t, filepath.Join(cfg.DataDir, cfg.PresetsFile))

	st, err := b.stats(cfg.PresetsFile)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Records)
}
