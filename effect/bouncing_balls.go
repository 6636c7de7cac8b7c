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
	"math"
)

const (
	maxNumBalls = 16
	gravity     = -9.81
)

// BouncingBallsInfo describes the bouncing balls effect
var BouncingBallsInfo = Define("Bouncing Balls@Gravity,# of balls;!,!,!;!;1;m12=1",
	ModeBouncingBalls, PaletteDefault, newBouncingBalls)

type ball struct {
	lastBounceTime uint32
	impactVelocity float64
	height         float64
}

// BouncingBalls drops up to 16 balls on every virtual strip. Each bounce
// loses energy; a ball that comes to rest is thrown up again.
type BouncingBalls struct {
	Base
	balls    Buffer[ball]
	numBalls int
	ready    bool

	// positions of the balls on the row being rendered, -1 when hidden
	positions [maxNumBalls]int
}

func newBouncingBalls(base Base) *BouncingBalls {
	return &BouncingBalls{Base: base, balls: NewBuffer[ball](base.seg.Allocator())}
}

// NumBalls returns the number of balls used by the last frame
func (e *BouncingBalls) NumBalls() int {
	return e.numBalls
}

func (e *BouncingBalls) Release() {
	e.balls.Clear()
}

func (e *BouncingBalls) Frame() {
	seg := e.seg
	e.numBalls = max(int(seg.Intensity)*(maxNumBalls-1)/255+1, 1)

	fresh := e.balls.Len() == 0
	if !e.balls.Resize(maxNumBalls * seg.Height()) {
		e.ready = false
		return
	}
	e.ready = true

	if fresh || seg.Call == 0 {
		start := math.Sqrt(-2 * gravity)
		balls := e.balls.Items()
		for i := range balls {
			balls[i] = ball{lastBounceTime: seg.Now, impactVelocity: start}
		}
	}
}

func (e *BouncingBalls) Row(y int) {
	for i := range e.positions {
		e.positions[i] = -1
	}
	if !e.ready {
		return
	}

	seg := e.seg
	width := seg.Width()
	balls := e.balls.Items()[y*maxNumBalls : (y+1)*maxNumBalls]
	slowdown := float64((255-int(seg.Speed))/64 + 1)

	for i := 0; i < e.numBalls; i++ {
		b := &balls[i]
		elapsed := float64(seg.Now-b.lastBounceTime) / slowdown
		t := elapsed / 1000
		b.height = (0.5*gravity*t + b.impactVelocity) * t

		if b.height <= 0 {
			b.height = 0
			// damping increases with the ball index
			cor := 0.90 - float64(i)/math.Pow(float64(e.numBalls), 2)
			b.impactVelocity *= cor
			b.lastBounceTime = seg.Now

			if b.impactVelocity < 0.015 {
				b.impactVelocity = math.Sqrt(-2*gravity) * float64(seg.RandomRange(5, 11)) / 10
			}
		} else if b.height > 1 {
			continue
		}

		e.positions[i] = int(math.Round(b.height * float64(width-1)))
	}
}

func (e *BouncingBalls) Pixel(x, y int, current Color) Color {
	seg := e.seg
	for i := e.numBalls - 1; i >= 0; i-- {
		if e.positions[i] != x {
			continue
		}
		if seg.Palette == PaletteDefault {
			return seg.Colors[0]
		}
		return seg.ColorFromPalette(uint8(i * 256 / max(e.numBalls, 8)))
	}
	return seg.Colors[1]
}
