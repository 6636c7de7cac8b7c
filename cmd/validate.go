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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/wled/presets"
	"github.com/we-are-mono/wled/state"
	"github.com/we-are-mono/wled/store"
	"github.com/we-are-mono/wled/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration and the presets file",
	Long: `Checks wled.json for syntax errors and invalid settings, then reads every
record of the presets file and validates it.`,
	Run: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	fmt.Printf("Validating configuration in %s...\n\n", state.GetConfigDir())
	if !executeValidate(os.Stdout) {
		exitWithError()
	}
}

// executeValidate prints one line per checked document and reports whether
// all of them are valid.
func executeValidate(w io.Writer) bool {
	ok := true

	cfg, err := loadConfig()
	if err == nil {
		err = state.Validate(cfg)
	}
	if err != nil {
		fmt.Fprintf(w, "❌ wled.json: %v\n", err)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "❌ Validation failed - please fix the errors above")
		return false
	}
	fmt.Fprintf(w, "✓ wled.json: valid\n")

	if err := validatePresetsFile(cfg); err != nil {
		fmt.Fprintf(w, "❌ %s: %v\n", cfg.PresetsFile, err)
		ok = false
	} else {
		fmt.Fprintf(w, "✓ %s: valid\n", cfg.PresetsFile)
	}

	fmt.Fprintln(w)
	if ok {
		fmt.Fprintln(w, "✓ All files are valid")
	} else {
		fmt.Fprintln(w, "❌ Validation failed - please fix the errors above")
	}
	return ok
}

// validatePresetsFile checks that the presets file is one JSON object whose
// records are valid presets. A missing file is valid.
func validatePresetsFile(cfg *types.Config) error {
	s := store.New(store.OSFS{Root: cfg.DataDir})
	defer s.Close()

	var records map[string]json.RawMessage
	if err := s.ReadObject(cfg.PresetsFile, "", &records, nil); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	for key, raw := range records {
		if key == "0" {
			continue
		}
		id, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("record %q is not a preset id", key)
		}

		var p presets.Preset
		if err := state.UnmarshalJSON(raw, &p); err != nil {
			return fmt.Errorf("preset %d: %w", id, err)
		}
		if p.IsEmpty() {
			continue
		}
		if err := presets.Validate(&p); err != nil {
			return fmt.Errorf("preset %d: %w", id, err)
		}
	}
	return nil
}
