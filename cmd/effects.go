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
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"github.com/we-are-mono/wled/effect"
	"github.com/we-are-mono/wled/state"
)

// previewOptions configures an offline effect render
type previewOptions struct {
	LEDs      int
	Rows      int
	Frames    int
	Interval  time.Duration
	Speed     uint8
	Intensity uint8
	Height    int
}

var previewOpts = previewOptions{
	LEDs:      30,
	Rows:      1,
	Frames:    60,
	Interval:  24 * time.Millisecond,
	Speed:     128,
	Intensity: 128,
	Height:    10,
}

var effectsCmd = &cobra.Command{
	Use:   "effects",
	Short: "Inspect the built-in effects",
}

var effectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered effects",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		executeEffectsList(os.Stdout, effect.Default())
	},
}

var effectsPreviewCmd = &cobra.Command{
	Use:   "preview <mode-id>",
	Short: "Render an effect offline and plot its brightness",
	Long: `Runs an effect on a virtual strip without any hardware and plots the mean
output brightness of each frame.

Example:
  wled effects preview 66 --frames 120 --speed 200`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeEffectsPreview(os.Stdout, effect.Default(), args[0], previewOpts); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			exitWithError()
		}
	},
}

func init() {
	rootCmd.AddCommand(effectsCmd)
	effectsCmd.AddCommand(effectsListCmd, effectsPreviewCmd)

	f := effectsPreviewCmd.Flags()
	f.IntVar(&previewOpts.LEDs, "leds", previewOpts.LEDs, "Pixels on the virtual strip")
	f.IntVar(&previewOpts.Rows, "rows", previewOpts.Rows, "Virtual strips the segment is split into")
	f.IntVar(&previewOpts.Frames, "frames", previewOpts.Frames, "Frames to render")
	f.DurationVar(&previewOpts.Interval, "interval", previewOpts.Interval, "Time between frames")
	f.Uint8Var(&previewOpts.Speed, "speed", previewOpts.Speed, "Effect speed")
	f.Uint8Var(&previewOpts.Intensity, "intensity", previewOpts.Intensity, "Effect intensity")
	f.IntVar(&previewOpts.Height, "height", previewOpts.Height, "Graph height in lines")
}

func executeEffectsList(w io.Writer, table *effect.Table) {
	fmt.Fprintf(w, "%-4s %-16s %s\n", "ID", "NAME", "METADATA")
	for _, info := range table.All() {
		fmt.Fprintf(w, "%-4d %-16s %s\n", info.ID, info.Name(), info.Metadata)
	}
}

// renderPreview runs mode for opts.Frames frames and returns the mean output
// brightness of each.
func renderPreview(table *effect.Table, mode effect.ModeID, opts previewOptions) ([]float64, error) {
	if opts.LEDs < 1 || opts.Frames < 1 {
		return nil, fmt.Errorf("need at least one LED and one frame")
	}

	alloc := effect.NewAllocator(state.DefaultMaxSegmentData)
	strip := effect.NewStrip(opts.LEDs, table, alloc, nil)
	strip.SetBrightness(255)

	seg, err := strip.AddSegment(0, opts.LEDs, opts.Rows)
	if err != nil {
		return nil, err
	}
	seg.Speed = opts.Speed
	seg.Intensity = opts.Intensity
	if err := seg.SetMode(table, mode); err != nil {
		return nil, err
	}

	series := make([]float64, 0, opts.Frames)
	for i := 0; i < opts.Frames; i++ {
		strip.Service(uint32(time.Duration(i) * opts.Interval / time.Millisecond))
		series = append(series, strip.MeanBrightness())
	}
	return series, nil
}

func executeEffectsPreview(w io.Writer, table *effect.Table, arg string, opts previewOptions) error {
	id, err := strconv.ParseUint(arg, 10, 8)
	if err != nil {
		return fmt.Errorf("invalid mode id %q", arg)
	}
	info, ok := table.Lookup(effect.ModeID(id))
	if !ok {
		return fmt.Errorf("no effect with id %d", id)
	}

	series, err := renderPreview(table, info.ID, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, asciigraph.Plot(series,
		asciigraph.Height(opts.Height),
		asciigraph.Width(min(len(series), 80)),
		asciigraph.Caption(fmt.Sprintf("%s: mean brightness over %d frames", info.Name(), len(series)))))
	return nil
}
