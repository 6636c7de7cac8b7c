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

package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlugin(t *testing.T, dir, name string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, BinaryPrefix+name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), perm))
	return path
}

func TestNewPluginManager(t *testing.T) {
	pm := NewPluginManager()

	require.NotNil(t, pm)
	assert.Equal(t, []string{"./bin", "/usr/lib/wled/plugins", "/opt/wled/plugins"}, pm.pluginDirs)
}

func TestPluginManager_FindPlugin(t *testing.T) {
	tmpDir := t.TempDir()
	pm := NewPluginManagerWithDirs(tmpDir)

	writePlugin(t, tmpDir, "store", 0755)
	writePlugin(t, tmpDir, "notexec", 0644)

	tests := []struct {
		name        string
		pluginName  string
		expectError bool
	}{
		{"executable plugin", "store", false},
		{"missing plugin", "nonexistent", true},
		{"not executable", "notexec", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := pm.FindPlugin(tt.pluginName)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "plugin not found")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(tmpDir, "wled-plugin-"+tt.pluginName), path)
		})
	}
}

func TestPluginManager_FindPlugin_FirstMatchWins(t *testing.T) {
	tmpDir1 := t.TempDir()
	tmpDir2 := t.TempDir()
	pm := NewPluginManagerWithDirs(tmpDir1, tmpDir2)

	only2 := writePlugin(t, tmpDir2, "second", 0755)
	dup1 := writePlugin(t, tmpDir1, "dup", 0755)
	writePlugin(t, tmpDir2, "dup", 0755)

	found, err := pm.FindPlugin("second")
	require.NoError(t, err)
	assert.Equal(t, only2, found)

	found, err = pm.FindPlugin("dup")
	require.NoError(t, err)
	assert.Equal(t, dup1, found)
}

func TestPluginManager_FindPlugin_SymlinkSupport(t *testing.T) {
	tmpDir := t.TempDir()
	pm := NewPluginManagerWithDirs(tmpDir)

	realPlugin := filepath.Join(tmpDir, "real-plugin")
	require.NoError(t, os.WriteFile(realPlugin, []byte("#!/bin/sh\n"), 0755))
	link := filepath.Join(tmpDir, BinaryPrefix+"linked")
	require.NoError(t, os.Symlink(realPlugin, link))

	found, err := pm.FindPlugin("linked")
	require.NoError(t, err)
	assert.Equal(t, link, found)
}

func TestPluginManager_Resolve(t *testing.T) {
	tmpDir := t.TempDir()
	pm := NewPluginManagerWithDirs(tmpDir)
	named := writePlugin(t, tmpDir, "store", 0755)

	byPath := filepath.Join(tmpDir, "custom")
	require.NoError(t, os.WriteFile(byPath, []byte("#!/bin/sh\n"), 0755))

	got, err := pm.Resolve("store")
	require.NoError(t, err)
	assert.Equal(t, named, got)

	got, err = pm.Resolve(byPath)
	require.NoError(t, err)
	assert.Equal(t, byPath, got)

	_, err = pm.Resolve(filepath.Join(tmpDir, "missing"))
	assert.Error(t, err)
}

func TestPluginManager_ListPlugins(t *testing.T) {
	tmpDir1 := t.TempDir()
	tmpDir2 := t.TempDir()
	pm := NewPluginManagerWithDirs(tmpDir1, tmpDir2, "/nonexistent/plugins")

	writePlugin(t, tmpDir1, "store", 0755)
	writePlugin(t, tmpDir1, "mqtt", 0755)
	writePlugin(t, tmpDir2, "store", 0755)
	writePlugin(t, tmpDir2, "notexec", 0644)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir1, "not-a-plugin"), []byte("x"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir2, BinaryPrefix+"dir"), 0755))

	found, err := pm.ListPlugins()
	require.NoError(t, err)
	assert.Equal(t, []string{"mqtt", "store"}, found)
}

func TestPluginManager_ListPlugins_Empty(t *testing.T) {
	pm := NewPluginManagerWithDirs(t.TempDir())

	found, err := pm.ListPlugins()
	require.NoError(t, err)
	assert.Empty(t, found)
}
