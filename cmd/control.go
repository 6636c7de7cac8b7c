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
	"github.com/we-are-mono/wled/daemon"
)

var effectSegment int

var applyCmd = &cobra.Command{
	Use:   "apply <preset-id>",
	Short: "Apply a preset on the running daemon",
	Long: `Applies a stored preset to the live strip. A preset holding a playlist
starts the playlist instead.`,
	Args: cobra.ExactArgs(1),
	Run:  runControl(executeApply),
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to the next playlist entry",
	Args:  cobra.NoArgs,
	Run:   runControl(executeNext),
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running playlist",
	Args:  cobra.NoArgs,
	Run:   runControl(executeStop),
}

var powerCmd = &cobra.Command{
	Use:       "power <on|off>",
	Short:     "Switch the strip output on or off",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	Run:       runControl(executePower),
}

var brightnessCmd = &cobra.Command{
	Use:   "brightness <0-255>",
	Short: "Set the master brightness",
	Args:  cobra.ExactArgs(1),
	Run:   runControl(executeBrightness),
}

var effectCmd = &cobra.Command{
	Use:   "effect <mode-id>",
	Short: "Run an effect on a segment",
	Long: `Switches a segment to another effect. The previous effect instance is
released before the new one starts.

Example:
  wled effect 1 --segment 0`,
	Args: cobra.ExactArgs(1),
	Run:  runControl(executeEffect),
}

func init() {
	rootCmd.AddCommand(applyCmd, nextCmd, stopCmd, powerCmd, brightnessCmd, effectCmd)
	effectCmd.Flags().IntVarP(&effectSegment, "segment", "s", 0, "Segment id")
}

type controlFunc func(w io.Writer, c ClientInterface, args []string) error

// runControl adapts an execute function to a cobra Run callback
func runControl(fn controlFunc) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := fn(os.Stdout, defaultClient, args); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			exitWithError()
		}
	}
}

func executeApply(w io.Writer, c ClientInterface, args []string) error {
	id, err := parsePresetID(args[0])
	if err != nil {
		return err
	}
	return sendAndPrint(w, c, daemon.Request{Command: "apply", ID: id})
}

func executeNext(w io.Writer, c ClientInterface, args []string) error {
	return sendAndPrint(w, c, daemon.Request{Command: "next"})
}

func executeStop(w io.Writer, c ClientInterface, args []string) error {
	return sendAndPrint(w, c, daemon.Request{Command: "stop-playlist"})
}

func executePower(w io.Writer, c ClientInterface, args []string) error {
	var on bool
	switch args[0] {
	case "on", "true", "1":
		on = true
	case "off", "false", "0":
	default:
		return fmt.Errorf("power must be on or off, got %q", args[0])
	}
	return sendAndPrint(w, c, daemon.Request{Command: "power", Value: on})
}

func executeBrightness(w io.Writer, c ClientInterface, args []string) error {
	b, err := parseUint8("brightness", args[0])
	if err != nil {
		return err
	}
	return sendAndPrint(w, c, daemon.Request{Command: "brightness", Value: b})
}

func executeEffect(w io.Writer, c ClientInterface, args []string) error {
	mode, err := parseUint8("effect", args[0])
	if err != nil {
		return err
	}
	return sendAndPrint(w, c, daemon.Request{Command: "effect", Segment: effectSegment, Value: mode})
}

func sendAndPrint(w io.Writer, c ClientInterface, req daemon.Request) error {
	resp, err := sendCommand(c, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "[OK] %s\n", resp.Message)
	return nil
}

func parseUint8(name, s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number between 0 and 255, got %q", name, s)
	}
	return uint8(v), nil
}
