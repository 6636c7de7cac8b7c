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
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/wled/presets"
	"github.com/we-are-mono/wled/state"
	"github.com/we-are-mono/wled/validation"
)

var (
	presetFile     string
	presetNameOnly bool
)

var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage stored presets",
	Long: `Reads and writes presets in the object file of the data directory.
With --plugin the store is reached through a store plugin instead.`,
}

var presetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored presets",
	Args:  cobra.NoArgs,
	Run:   runPreset(executePresetList),
}

var presetGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print one preset",
	Args:  cobra.ExactArgs(1),
	Run:   runPreset(executePresetGet),
}

var presetSetCmd = &cobra.Command{
	Use:   "set <id> [json]",
	Short: "Store a preset",
	Long: `Stores a preset under id, replacing any previous one.

Example:
  wled preset set 3 '{"n":"Fire","bri":200,"seg":[{"id":0,"fx":66}]}'
  wled preset set 4 --file playlist.json`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runPreset(executePresetSet),
}

var presetDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a preset",
	Args:  cobra.ExactArgs(1),
	Run:   runPreset(executePresetDelete),
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetListCmd, presetGetCmd, presetSetCmd, presetDeleteCmd)
	presetSetCmd.Flags().StringVarP(&presetFile, "file", "f", "", "Read the preset from a file")
	presetGetCmd.Flags().BoolVar(&presetNameOnly, "name", false, "Print only the preset name")
}

type presetFunc func(w io.Writer, m *presets.Manager, args []string) error

func runPreset(fn presetFunc) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		backend, err := openBackend(pluginFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			exitWithError()
			return
		}
		defer backend.Close()

		if err := fn(os.Stdout, backend.presets(), args); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			exitWithError()
		}
	}
}

func parsePresetID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid preset id %q", s)
	}
	if err := validation.ValidatePresetID(id); err != nil {
		return 0, err
	}
	return id, nil
}

func executePresetList(w io.Writer, m *presets.Manager, args []string) error {
	entries, err := m.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No presets stored")
		return nil
	}

	fmt.Fprintf(w, "%-4s %-24s %-4s %s\n", "ID", "NAME", "QL", "TYPE")
	for _, e := range entries {
		kind := "state"
		if e.Preset.Playlist != nil {
			kind = fmt.Sprintf("playlist (%d entries)", len(e.Preset.Playlist.Presets))
		}
		fmt.Fprintf(w, "%-4d %-24s %-4s %s\n", e.ID, e.Preset.Name, e.Preset.QuickLabel, kind)
	}
	return nil
}

func executePresetGet(w io.Writer, m *presets.Manager, args []string) error {
	id, err := parsePresetID(args[0])
	if err != nil {
		return err
	}

	if presetNameOnly {
		name, err := m.LoadName(id)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, name)
		return err
	}

	p, err := m.Load(id)
	if err != nil {
		return err
	}
	return printJSON(w, p)
}

func executePresetSet(w io.Writer, m *presets.Manager, args []string) error {
	id, err := parsePresetID(args[0])
	if err != nil {
		return err
	}

	var data []byte
	switch {
	case presetFile != "" && len(args) > 1:
		return fmt.Errorf("give the preset either inline or with --file, not both")
	case presetFile != "":
		if data, err = os.ReadFile(presetFile); err != nil {
			return fmt.Errorf("failed to read preset: %w", err)
		}
	case len(args) > 1:
		data = []byte(args[1])
	default:
		return fmt.Errorf("no preset given")
	}

	var p presets.Preset
	if err := state.UnmarshalJSON(data, &p); err != nil {
		return err
	}
	if err := m.Save(id, &p); err != nil {
		return err
	}
	fmt.Fprintf(w, "[OK] Saved preset %d\n", id)
	return nil
}

func executePresetDelete(w io.Writer, m *presets.Manager, args []string) error {
	id, err := parsePresetID(args[0])
	if err != nil {
		return err
	}
	if err := m.Delete(id); err != nil {
		return err
	}
	fmt.Fprintf(w, "[OK] Deleted preset %d\n", id)
	return nil
}
