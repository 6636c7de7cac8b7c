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

// Package state loads and saves the wled configuration files.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	defaultConfigBasePath = "/etc/wled"

	// backups kept next to a config file by SaveConfig
	maxBackups = 3
)

// GetConfigDir returns the configuration directory path.
// Checks WLED_CONFIG_DIR environment variable, falls back to /etc/wled
func GetConfigDir() string {
	if dir := os.Getenv("WLED_CONFIG_DIR"); dir != "" {
		return dir
	}
	return defaultConfigBasePath
}

func configPath(namespace string) string {
	return filepath.Join(GetConfigDir(), namespace+".json")
}

// LoadConfig reads <config dir>/<namespace>.json into config, which must be
// a pointer.
func LoadConfig(namespace string, config any) error {
	path := configPath(namespace)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s config: %w", namespace, err)
	}

	if err := UnmarshalJSON(data, config); err != nil {
		return fmt.Errorf("failed to parse %s config at %s: %w", namespace, path, err)
	}
	return nil
}

// SaveConfig writes config to <config dir>/<namespace>.json. The previous
// file is kept as a timestamped backup and the write goes through a temp
// file so readers never see a partial document.
func SaveConfig(namespace string, config any) error {
	path := configPath(namespace)

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s config: %w", namespace, err)
	}

	if _, err := os.Stat(path); err == nil {
		backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format("20060102-150405.000"))
		if err := copyFile(path, backupPath); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		pruneBackups(path)
	}

	tmpPath := path + ".tmp"
	if err := writeSynced(tmpPath, data); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func writeSynced(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// pruneBackups removes all but the newest maxBackups backups of path.
func pruneBackups(path string) {
	backups, err := filepath.Glob(path + ".backup.*")
	if err != nil || len(backups) <= maxBackups {
		return
	}
	// timestamps sort lexically
	slices.Sort(backups)
	for _, old := range backups[:len(backups)-maxBackups] {
		os.Remove(old)
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0600)
}

// getLineCol converts a byte offset in data into a 1-based line and column
func getLineCol(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	for i := int64(0); i < offset && i < int64(len(data)); i++ {
		if data[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return
}

// UnmarshalJSON unmarshals data into v, reporting syntax errors with their
// line and column.
func UnmarshalJSON(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := getLineCol(data, syntaxErr.Offset)
		return fmt.Errorf("JSON syntax error at line %d, column %d: %w", line, col, err)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := getLineCol(data, typeErr.Offset)
		return fmt.Errorf("wrong type for %q at line %d, column %d: %w", typeErr.Field, line, col, err)
	}
	return err
}
