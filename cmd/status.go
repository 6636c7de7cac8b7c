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

	"github.com/spf13/cobra"
	"github.com/we-are-mono/wled/daemon"
)

var verboseStatus bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the running daemon",
	Long:  `Displays power, brightness, the active preset or playlist and every segment.`,
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVarP(&verboseStatus, "verbose", "v", false, "Print the raw status document")
}

func runStatus(cmd *cobra.Command, args []string) {
	if err := executeStatus(os.Stdout, defaultClient, verboseStatus); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		exitWithError()
	}
}

func executeStatus(w io.Writer, c ClientInterface, verbose bool) error {
	resp, err := sendCommand(c, daemon.Request{Command: "status"})
	if err != nil {
		return err
	}

	// Data arrives as a generic map; round-trip it into the typed status.
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("failed to encode status: %w", err)
	}
	if verbose {
		return printJSON(w, json.RawMessage(raw))
	}

	var st daemon.Status
	if err := json.Unmarshal(raw, &st); err != nil {
		return fmt.Errorf("unable to parse status data: %w", err)
	}
	printStatus(w, &st)
	return nil
}

func printStatus(w io.Writer, st *daemon.Status) {
	fmt.Fprintln(w, "WLED Daemon")
	fmt.Fprintln(w, "===========")
	fmt.Fprintln(w)

	power := "off"
	if st.On {
		power = "on"
	}
	fmt.Fprintf(w, "Power:      %s\n", power)
	fmt.Fprintf(w, "Brightness: %d\n", st.Brightness)
	if st.Playlist > 0 {
		fmt.Fprintf(w, "Playlist:   %d (entry preset %d)\n", st.Playlist, st.Preset)
	} else if st.Preset > 0 {
		fmt.Fprintf(w, "Preset:     %d\n", st.Preset)
	}
	fmt.Fprintf(w, "Frames:     %d\n", st.Frames)
	fmt.Fprintf(w, "Uptime:     %s\n", st.Uptime)
	fmt.Fprintf(w, "FX memory:  %d bytes\n", st.MemoryUsed)

	if len(st.Segments) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Segments:")
	for _, seg := range st.Segments {
		fmt.Fprintf(w, "  [%d] %d-%d x%d  fx %d (%s)  sx %d ix %d pal %d\n",
			seg.ID, seg.Start, seg.Stop, seg.Rows, seg.Mode, seg.Effect, seg.Speed, seg.Intensity, seg.Palette)
	}
}

// printJSON writes v as indented JSON followed by a newline
func printJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
