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

package presets

import (
	"github.com/we-are-mono/wled/effect"
)

// Preset is one saved state. Only fields present in the record are applied.
type Preset struct {
	Name       string         `json:"n,omitempty"`
	QuickLabel string         `json:"ql,omitempty"`
	On         *bool          `json:"on,omitempty"`
	Brightness *uint8         `json:"bri,omitempty"`
	Transition *uint16        `json:"transition,omitempty"` // tenths of a second
	Segments   []SegmentState `json:"seg,omitempty"`
	Playlist   *Playlist      `json:"playlist,omitempty"`
}

// SegmentState holds the effect settings of one segment
type SegmentState struct {
	ID        int            `json:"id"`
	Mode      *uint8         `json:"fx,omitempty"`
	Speed     *uint8         `json:"sx,omitempty"`
	Intensity *uint8         `json:"ix,omitempty"`
	Custom1   *uint8         `json:"c1,omitempty"`
	Custom2   *uint8         `json:"c2,omitempty"`
	Custom3   *uint8         `json:"c3,omitempty"`
	Palette   *uint8         `json:"pal,omitempty"`
	Colors    []effect.Color `json:"col,omitempty"`
}

// Playlist cycles through other presets
type Playlist struct {
	Presets   []int `json:"ps"`
	Durations []int `json:"dur,omitempty"` // tenths of a second per entry
	Repeat    int   `json:"repeat"`        // full passes, 0 repeats forever
	End       int   `json:"end,omitempty"` // preset applied when the playlist ends
}

// Entry is a preset together with its id
type Entry struct {
	ID     int    `json:"id"`
	Preset Preset `json:"preset"`
}

// IsEmpty reports whether the preset carries nothing to apply.
func (p *Preset) IsEmpty() bool {
	return p.Name == "" && p.QuickLabel == "" && p.On == nil && p.Brightness == nil &&
		p.Transition == nil && len(p.Segments) == 0 && p.Playlist == nil
}
