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

// TetrixInfo describes the falling bricks effect
var TetrixInfo = Define("Tetrix@!,Width;!,!;!;1;sx=0,ix=0,pal=11,m12=1",
	ModeTetrix, PaletteRainbow, newTetrix)

// drop states; any value above dropFalling is the time the fade ends
const (
	dropInit    uint32 = 0
	dropForming uint32 = 1
	dropFalling uint32 = 2
)

type drop struct {
	pos   float64
	speed float64
	col   uint8
	brick int
	stack int
	step  uint32
}

type tetrixPaint int

const (
	paintNone tetrixPaint = iota
	paintFalling
	paintFading
)

// Tetrix stacks bricks at the start of every virtual strip until it is full,
// then fades the stack out and starts over.
type Tetrix struct {
	Base
	drops Buffer[drop]
	ready bool

	// what Pixel does on the row being rendered
	paint    tetrixPaint
	from     int
	brickEnd int
	color    Color
}

func newTetrix(base Base) *Tetrix {
	return &Tetrix{Base: base, drops: NewBuffer[drop](base.seg.Allocator())}
}

func (e *Tetrix) Release() {
	e.drops.Clear()
}

// Stack returns the height of the stack on virtual strip y
func (e *Tetrix) Stack(y int) int {
	drops := e.drops.Items()
	if y < 0 || y >= len(drops) {
		return 0
	}
	return drops[y].stack
}

func (e *Tetrix) Frame() {
	seg := e.seg
	if !e.drops.Resize(seg.Height()) {
		e.ready = false
		return
	}
	e.ready = true

	if seg.Call == 0 {
		seg.Fill(seg.Colors[1])
		clear(e.drops.Items())
	}
}

func (e *Tetrix) Row(y int) {
	e.paint = paintNone
	if !e.ready {
		return
	}

	seg := e.seg
	width := seg.Width()
	d := &e.drops.Items()[y]

	if d.step == dropInit {
		speed := int(seg.Speed)
		if speed == 0 {
			speed = seg.RandomRange(1, 255)
		}
		// time for a brick to cross the whole strip, 5s at speed 1 and 0.25s at 255
		crossing := mapRange(speed, 1, 255, 5000, 250)
		d.speed = float64(width*FrameTime) / float64(crossing)
		d.pos = float64(width)
		d.col = uint8(seg.RandomRange(0, 15) << 4)
		d.step = dropForming

		size := int(seg.Intensity>>5) + 1
		if seg.Intensity == 0 {
			size = seg.RandomRange(1, 5)
		}
		d.brick = size * (1 + width>>6)
	}

	if d.step == dropForming && seg.Random8()>>6 != 0 {
		d.step = dropFalling
	}

	if d.step == dropFalling {
		if d.pos > float64(d.stack) {
			d.pos -= d.speed
			if int(d.pos) < d.stack {
				d.pos = float64(d.stack)
			}
			e.paint = paintFalling
			e.from = int(d.pos)
			e.brickEnd = e.from + d.brick
			e.color = seg.ColorFromPalette(d.col)
		} else {
			d.step = dropInit
			d.stack += d.brick
			if d.stack >= width {
				d.step = seg.Now + 2000
			}
		}
	}

	if d.step > dropFalling {
		d.brick = 0
		if d.step > seg.Now {
			e.paint = paintFading
		} else {
			d.stack = 0
			d.step = dropInit
		}
	}
}

func (e *Tetrix) Pixel(x, y int, current Color) Color {
	switch e.paint {
	case paintFalling:
		if x < e.from {
			return current
		}
		if x < e.brickEnd {
			return e.color
		}
		return e.seg.Colors[1]
	case paintFading:
		return Blend(current, e.seg.Colors[1], 25)
	default:
		return current
	}
}

func mapRange(x, inMin, inMax, outMin, outMax int) int {
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}
