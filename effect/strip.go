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

package effect

import (
	"fmt"

	"github.com/we-are-mono/wled/daemon/logger"
)

// Strip owns the pixel buffer of one LED output and the segments rendering
// into it. It is driven from a single goroutine.
type Strip struct {
	pixels     []Color
	segments   []*Segment
	table      *Table
	alloc      *Allocator
	log        logger.Logger
	brightness uint8
	on         bool
}

// NewStrip creates a strip of length pixels. Effects draw their data from
// alloc; a nil table means the built-in one.
func NewStrip(length int, table *Table, alloc *Allocator, log logger.Logger) *Strip {
	if table == nil {
		table = Default()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Strip{
		pixels:     make([]Color, length),
		table:      table,
		alloc:      alloc,
		log:        log,
		brightness: 128,
		on:         true,
	}
}

// Length returns the number of pixels
func (s *Strip) Length() int { return len(s.pixels) }

// Table returns the effect table segments select modes from
func (s *Strip) Table() *Table { return s.table }

// Allocator returns the effect data budget
func (s *Strip) Allocator() *Allocator { return s.alloc }

// AddSegment adds a segment covering [start, stop) split into rows virtual
// strips. Segments may not overlap. The new segment starts in mode 0.
func (s *Strip) AddSegment(start, stop, rows int) (*Segment, error) {
	if start < 0 || stop > len(s.pixels) || start >= stop {
		return nil, fmt.Errorf("segment [%d,%d) outside strip of %d pixels", start, stop, len(s.pixels))
	}
	for _, seg := range s.segments {
		if start < seg.Stop && seg.Start < stop {
			return nil, fmt.Errorf("segment [%d,%d) overlaps segment %d", start, stop, seg.ID)
		}
	}

	seg := NewSegment(len(s.segments), start, stop, rows, s.alloc)
	seg.pixels = s.pixels[start:stop]
	if err := seg.SetMode(s.table, ModeStatic); err != nil {
		return nil, err
	}
	s.segments = append(s.segments, seg)

	s.log.Debug("Added segment",
		logger.Field{Key: "segment", Value: seg.ID},
		logger.Field{Key: "start", Value: start},
		logger.Field{Key: "stop", Value: stop},
		logger.Field{Key: "rows", Value: seg.Height()})
	return seg, nil
}

// Segment returns segment id
func (s *Strip) Segment(id int) (*Segment, bool) {
	if id < 0 || id >= len(s.segments) {
		return nil, false
	}
	return s.segments[id], true
}

// Segments returns all segments in id order
func (s *Strip) Segments() []*Segment {
	return s.segments
}

// Service renders one frame at time now (milliseconds). Each effect gets one
// NextFrame call, one NextRow call per virtual strip and one GetPixelColor
// call per pixel, in that order.
func (s *Strip) Service(now uint32) {
	for _, seg := range s.segments {
		e := seg.effect
		if e == nil {
			continue
		}
		info := e.Info()
		seg.Now = now

		info.NextFrame(e)
		w, h := seg.Width(), seg.Height()
		for y := 0; y < h; y++ {
			info.NextRow(e, y)
			row := seg.pixels[y*w : (y+1)*w]
			for x := range row {
				row[x] = info.GetPixelColor(e, x, y, row[x])
			}
		}
		seg.Call++
	}
}

// Pixels returns a copy of the current frame
func (s *Strip) Pixels() []Color {
	out := make([]Color, len(s.pixels))
	copy(out, s.pixels)
	return out
}

// SetBrightness sets the master brightness applied by Output
func (s *Strip) SetBrightness(b uint8) { s.brightness = b }

// Brightness returns the master brightness
func (s *Strip) Brightness() uint8 { return s.brightness }

// SetPower switches the output on or off without stopping the effects
func (s *Strip) SetPower(on bool) { s.on = on }

// Power reports whether the output is on
func (s *Strip) Power() bool { return s.on }

// Output returns the current frame scaled by the master brightness, or an
// all black frame when the strip is off.
func (s *Strip) Output() []Color {
	out := make([]Color, len(s.pixels))
	if !s.on || s.brightness == 0 {
		return out
	}
	for i, c := range s.pixels {
		out[i] = c.Fade(s.brightness)
	}
	return out
}

// MeanBrightness returns the mean brightness of Output
func (s *Strip) MeanBrightness() float64 {
	if len(s.pixels) == 0 {
		return 0
	}
	var sum int
	for _, c := range s.Output() {
		sum += int(c.Brightness())
	}
	return float64(sum) / float64(len(s.pixels))
}
