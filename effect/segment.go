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
	"errors"
	"fmt"
	"math/rand/v2"
)

// Palette ids understood by ColorFromPalette
const (
	PaletteDefault uint8 = 0
	PalettePrimary uint8 = 2
	PaletteColors  uint8 = 3
	PaletteRainbow uint8 = 11
	PaletteFire    uint8 = 35
)

// ErrUnknownMode is returned when a mode id is not in the table
var ErrUnknownMode = errors.New("unknown effect mode")

// Segment is a range of the strip driven by one effect instance. The range
// may be folded into Rows virtual strips of equal width.
type Segment struct {
	ID    int
	Start int
	Stop  int
	Rows  int

	Speed     uint8
	Intensity uint8
	Custom1   uint8
	Custom2   uint8
	Custom3   uint8 // 0..31
	Palette   uint8
	Colors    [3]Color

	// Call counts the frames rendered since the last mode change.
	Call uint32
	// Now is the strip clock in milliseconds for the frame being rendered.
	Now uint32

	pixels []Color
	mode   ModeID
	effect Effect
	alloc  *Allocator
	rng    *rand.Rand
}

// NewSegment creates a segment with its own pixel buffer. Strip.AddSegment
// replaces the buffer with a view of the strip.
func NewSegment(id, start, stop, rows int, alloc *Allocator) *Segment {
	if rows < 1 {
		rows = 1
	}
	return &Segment{
		ID:        id,
		Start:     start,
		Stop:      stop,
		Rows:      rows,
		Speed:     128,
		Intensity: 128,
		Colors:    [3]Color{RGB(255, 160, 0), Black, Black},
		pixels:    make([]Color, max(stop-start, 0)),
		alloc:     alloc,
		rng:       rand.New(rand.NewPCG(uint64(id), uint64(start))),
	}
}

// Height is the number of virtual strips
func (s *Segment) Height() int {
	return max(s.Rows, 1)
}

// Width is the length of one virtual strip
func (s *Segment) Width() int {
	return max(s.Stop-s.Start, 0) / s.Height()
}

// Length is the number of addressable virtual pixels
func (s *Segment) Length() int {
	return s.Width() * s.Height()
}

// Allocator returns the data budget effects of this segment draw from
func (s *Segment) Allocator() *Allocator {
	return s.alloc
}

// Mode returns the current mode id
func (s *Segment) Mode() ModeID {
	return s.mode
}

// Effect returns the running effect, nil before the first SetMode
func (s *Segment) Effect() Effect {
	return s.effect
}

// SetMode tears down the running effect and starts mode id from the table.
func (s *Segment) SetMode(t *Table, id ModeID) error {
	info, ok := t.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownMode, id)
	}

	if r, ok := s.effect.(Releaser); ok {
		r.Release()
	}
	s.mode = id
	s.Call = 0
	s.effect = info.MakeEffect(s)
	return nil
}

// PixelColor returns the color of virtual pixel (x, y)
func (s *Segment) PixelColor(x, y int) Color {
	i, ok := s.index(x, y)
	if !ok {
		return Black
	}
	return s.pixels[i]
}

// SetPixelColor sets virtual pixel (x, y); out of range writes are ignored.
func (s *Segment) SetPixelColor(x, y int, c Color) {
	if i, ok := s.index(x, y); ok {
		s.pixels[i] = c
	}
}

// Fill sets every pixel of the segment
func (s *Segment) Fill(c Color) {
	for i := range s.pixels {
		s.pixels[i] = c
	}
}

func (s *Segment) index(x, y int) (int, bool) {
	w := s.Width()
	if x < 0 || y < 0 || x >= w || y >= s.Height() {
		return 0, false
	}
	i := y*w + x
	return i, i < len(s.pixels)
}

// ColorFromPalette maps index onto the active palette. The default palette
// resolves to the running effect's preferred one.
func (s *Segment) ColorFromPalette(index uint8) Color {
	pal := s.Palette
	if pal == PaletteDefault && s.effect != nil {
		pal = s.effect.Info().DefaultPalette
	}

	switch pal {
	case PalettePrimary:
		return s.Colors[0]
	case PaletteColors:
		return Blend(s.Colors[0], s.Colors[1], index)
	case PaletteFire:
		return HeatColor(index)
	default:
		return Wheel(index)
	}
}

// Random8 returns a random byte from the segment's generator
func (s *Segment) Random8() uint8 {
	return uint8(s.rng.UintN(256))
}

// RandomRange returns a random value in [lo, hi). It returns lo when the
// range is empty.
func (s *Segment) RandomRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.IntN(hi-lo)
}
