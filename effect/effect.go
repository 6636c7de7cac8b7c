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

// Package effect implements the table-driven effect runtime. Each effect type
// is described by one Information value holding its metadata and the free
// functions the renderer calls; running instances only carry their own state
// plus a borrowed pointer to that descriptor.
package effect

import (
	"strings"
)

// ModeID is the numeric id a segment selects an effect by.
type ModeID uint8

// Information describes one effect type. It is shared by every running
// instance of the effect and never modified after Define returns.
type Information struct {
	// Metadata is "Name@sliders;colors;palette;flags".
	Metadata       string
	ID             ModeID
	DefaultPalette uint8

	MakeEffect    func(seg *Segment) Effect
	NextFrame     func(e Effect)
	NextRow       func(e Effect, y int)
	GetPixelColor func(e Effect, x, y int, current Color) Color
}

// Name returns the display name from the metadata string
func (i *Information) Name() string {
	name, _, _ := strings.Cut(i.Metadata, "@")
	return name
}

// Effect is a running effect instance.
type Effect interface {
	Info() *Information
}

// Releaser is implemented by effects that hold strip data and must give it
// back when their segment switches away.
type Releaser interface {
	Release()
}

// Impl is the typed method set Define turns into descriptor functions.
type Impl interface {
	Effect
	Frame()
	Row(y int)
	Pixel(x, y int, current Color) Color
}

// Base is embedded by every effect. Its methods are the defaults for effects
// that do not need a hook.
type Base struct {
	info *Information
	seg  *Segment
}

// Info returns the shared descriptor
func (b Base) Info() *Information { return b.info }

// Segment returns the segment the effect renders
func (b Base) Segment() *Segment { return b.seg }

func (Base) Frame() {}
func (Base) Row(y int) {}
func (Base) Pixel(x, y int, current Color) Color { return current }

// Define builds the descriptor for effect type T. The returned functions
// assert the concrete type once per call instead of going through an
// interface method table.
func Define[T Impl](metadata string, id ModeID, defaultPalette uint8, ctor func(base Base) T) *Information {
	info := &Information{
		Metadata:       metadata,
		ID:             id,
		DefaultPalette: defaultPalette,
	}
	info.MakeEffect = func(seg *Segment) Effect {
		return ctor(Base{info: info, seg: seg})
	}
	info.NextFrame = func(e Effect) {
		e.(T).Frame()
	}
	info.NextRow = func(e Effect, y int) {
		e.(T).Row(y)
	}
	info.GetPixelColor = func(e Effect, x, y int, current Color) Color {
		return e.(T).Pixel(x, y, current)
	}
	return info
}
