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

// Fire2012Info describes the Fire2012 simulation
var Fire2012Info = Define("Fire 2012@Cooling,Spark rate,,,Boost;;!;1;sx=64,ix=160,m12=1",
	ModeFire2012, PaletteFire, func(base Base) *Fire2012 {
		return &Fire2012{BufferedEffect: NewBufferedEffect[uint8](base)}
	})

// Fire2012 keeps a heat value per pixel. Heat cools, drifts away from the
// start of the strip and is re-ignited by random sparks near the start.
type Fire2012 struct {
	BufferedEffect[uint8]
	ready   bool
	advance bool
	step    uint32
}

func (e *Fire2012) Frame() {
	seg := e.seg
	if seg.Call == 0 {
		seg.Fill(Black)
	}
	e.ready = e.Prepare()

	// the simulation advances every 32ms whatever the frame rate
	it := seg.Now >> 5
	e.advance = it != e.step
	e.step = it
}

func (e *Fire2012) Row(y int) {
	if !e.ready {
		return
	}
	seg := e.seg
	heat := e.Values(y)
	n := len(heat)
	if n == 0 {
		return
	}
	ignition := min(max(3, n/10), n)

	for i := range heat {
		var cool int
		if e.advance {
			cool = seg.RandomRange(0, (20+int(seg.Speed)/3)*16/n+2)
		} else {
			cool = seg.RandomRange(0, 4)
		}
		minTemp := 0
		if i < ignition {
			// the ignition area never goes black
			minTemp = (ignition-i)/4 + 16
		}
		heat[i] = uint8(max(int(heat[i])-cool, minTemp))
	}

	if !e.advance {
		return
	}
	for k := n - 1; k > 1; k-- {
		heat[k] = uint8((int(heat[k-1]) + int(heat[k-2])<<1) / 3)
	}
	if seg.Random8() <= seg.Intensity {
		spark := seg.RandomRange(0, ignition)
		boost := (17 + int(min(seg.Custom3, 31))) * (ignition - spark/2) / ignition
		heat[spark] = uint8(min(int(heat[spark])+seg.RandomRange(96+2*boost, 207+boost), 255))
	}
}

func (e *Fire2012) Pixel(x, y int, current Color) Color {
	heat := e.Values(y)
	if !e.ready || x >= len(heat) {
		return current
	}
	return e.seg.ColorFromPalette(min(heat[x], 240))
}
