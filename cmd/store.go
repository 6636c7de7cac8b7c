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
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/we-are-mono/wled/store"
	"github.com/we-are-mono/wled/validation"
)

var storeFileFlag string

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect object files",
	Long:  `Low level access to the JSON object files of the data directory.`,
}

var storeDumpCmd = &cobra.Command{
	Use:   "dump [key]",
	Short: "Print an object file or one of its records",
	Long: `Prints the whole object file, or the record under key. A key is either
a preset id or a raw root key such as '"5":'.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runStore(executeStoreDump),
}

var storeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record and free space layout of an object file",
	Args:  cobra.NoArgs,
	Run:   runStore(executeStoreStats),
}

func init() {
	rootCmd.AddCommand(storeCmd)
	storeCmd.AddCommand(storeDumpCmd, storeStatsCmd)
	storeCmd.PersistentFlags().StringVar(&storeFileFlag, "file", "", "Object file name (default: the presets file)")
}

type storeFunc func(w io.Writer, b *storeBackend, file string, args []string) error

func runStore(fn storeFunc) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		backend, err := openBackend(pluginFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			exitWithError()
			return
		}
		defer backend.Close()

		file := storeFileFlag
		if file == "" {
			file = backend.config.PresetsFile
		}
		if err := validation.ValidateFileName(file); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			exitWithError()
			return
		}

		if err := fn(os.Stdout, backend, file, args); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			exitWithError()
		}
	}
}

// parseStoreKey accepts a numeric id or a complete root key
func parseStoreKey(arg string) (string, error) {
	if id, err := strconv.ParseUint(arg, 10, 16); err == nil {
		return store.Key(uint16(id)), nil
	}
	key := arg
	if !strings.HasPrefix(key, `"`) {
		key = `"` + key + `":`
	}
	if !store.ValidKey(key) {
		return "", fmt.Errorf("invalid key %q", arg)
	}
	return key, nil
}

func executeStoreDump(w io.Writer, b *storeBackend, file string, args []string) error {
	key := ""
	if len(args) > 0 {
		var err error
		if key, err = parseStoreKey(args[0]); err != nil {
			return err
		}
	}

	var raw json.RawMessage
	if err := b.objects.ReadObject(file, key, &raw, nil); err != nil {
		return err
	}
	return printJSON(w, raw)
}

func executeStoreStats(w io.Writer, b *storeBackend, file string, args []string) error {
	st, err := b.stats(file)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "File:            %s\n", file)
	fmt.Fprintf(w, "Size:            %d bytes\n", st.Size)
	fmt.Fprintf(w, "Records:         %d (%d empty)\n", st.Records, st.EmptyRecords)
	fmt.Fprintf(w, "Filler:          %d bytes\n", st.FillerBytes)
	fmt.Fprintf(w, "Largest run:     %d bytes\n", st.LargestFillerRun)
	if st.KnownLargestSpace < 0 {
		fmt.Fprintln(w, "Cached space:    unknown")
	} else {
		fmt.Fprintf(w, "Cached space:    %d bytes\n", st.KnownLargestSpace)
	}
	return nil
}
