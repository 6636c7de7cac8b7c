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

// FrameTime is the nominal frame interval in milliseconds.
const FrameTime = 24

// StaticInfo describes the solid color effect
var StaticInfo = Define("Solid", ModeStatic, PaletteDefault, func(base Base) *Static {
	return &Static{Base: base}
})

// Static fills the segment with the primary color.
type Static struct {
	Base
}

func (e *Static) Pixel(x, y int, current Color) Color {
	return e.seg.Colors[0]
}

// BlinkInfo describes the blink effect
var BlinkInfo = Define("Blink@!,Duty cycle;!,!;!;01", ModeBlink, PaletteDefault, func(base Base) *Blink {
	return &Blink{Base: base}
})

// Blink alternates between the primary and secondary color. Speed sets the
// cycle length and intensity the share of it spent on the primary color.
type Blink struct {
	Base
	on bool
}

func (e *Blink) Frame() {
	seg := e.seg
	cycle := (255-uint32(seg.Speed))*20 + 2*FrameTime
	onTime := FrameTime + ((cycle-2*FrameTime)*uint32(seg.Intensity))>>8
	e.on = seg.Now%cycle < onTime
}

func (e *Blink) Pixel(x, y int, current Color) Color {
	if e.on {
		return e.seg.Colors[0]
	}
	return e.seg.Colors[1]
}
