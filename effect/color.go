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
	"encoding/json"
	"fmt"
)

// Color is a packed 0xWWRRGGBB pixel value.
type Color uint32

// Black is the zero color
const Black Color = 0

// RGB packs a color without a white channel
func RGB(r, g, b uint8) Color {
	return Color(uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// RGBW packs a color including the white channel
func RGBW(r, g, b, w uint8) Color {
	return RGB(r, g, b) | Color(uint32(w)<<24)
}

func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }
func (c Color) W() uint8 { return uint8(c >> 24) }

// Brightness returns the largest channel value
func (c Color) Brightness() uint8 {
	return max(c.R(), c.G(), c.B(), c.W())
}

// Fade scales every channel by amount/256, keeping non-zero channels lit
// while amount is non-zero.
func (c Color) Fade(amount uint8) Color {
	scale := func(v uint8) uint8 {
		if v == 0 || amount == 0 {
			return 0
		}
		return uint8((uint16(v)*uint16(amount))>>8) + 1
	}
	if amount == 255 {
		return c
	}
	return RGBW(scale(c.R()), scale(c.G()), scale(c.B()), scale(c.W()))
}

// Blend mixes b into a; amount 0 yields a, 255 yields b.
func Blend(a, b Color, amount uint8) Color {
	mix := func(x, y uint8) uint8 {
		return uint8((uint16(x)*uint16(255-amount) + uint16(y)*uint16(amount)) / 255)
	}
	return RGBW(mix(a.R(), b.R()), mix(a.G(), b.G()), mix(a.B(), b.B()), mix(a.W(), b.W()))
}

// Add sums two colors channel-wise, saturating at 255
func Add(a, b Color) Color {
	add := func(x, y uint8) uint8 {
		s := uint16(x) + uint16(y)
		if s > 255 {
			return 255
		}
		return uint8(s)
	}
	return RGBW(add(a.R(), b.R()), add(a.G(), b.G()), add(a.B(), b.B()), add(a.W(), b.W()))
}

// Wheel maps 0..255 onto a red-green-blue hue circle
func Wheel(pos uint8) Color {
	pos = 255 - pos
	switch {
	case pos < 85:
		return RGB(255-pos*3, 0, pos*3)
	case pos < 170:
		pos -= 85
		return RGB(0, pos*3, 255-pos*3)
	default:
		pos -= 170
		return RGB(pos*3, 255-pos*3, 0)
	}
}

// HeatColor maps a temperature onto the black-red-yellow-white heat ramp
func HeatColor(temperature uint8) Color {
	t192 := scale8Video(temperature, 191)
	heatramp := (t192 & 0x3F) << 2

	switch {
	case t192&0x80 != 0:
		return RGB(255, 255, heatramp)
	case t192&0x40 != 0:
		return RGB(255, heatramp, 0)
	default:
		return RGB(heatramp, 0, 0)
	}
}

func scale8Video(i, scale uint8) uint8 {
	v := uint8((uint16(i) * uint16(scale)) >> 8)
	if i != 0 && scale != 0 {
		v++
	}
	return v
}

// String formats the color as hex, with the white channel only when set
func (c Color) String() string {
	if c.W() != 0 {
		return fmt.Sprintf("%08X", uint32(c))
	}
	return fmt.Sprintf("%06X", uint32(c)&0xFFFFFF)
}

// MarshalJSON encodes the color as [r,g,b] or [r,g,b,w]
func (c Color) MarshalJSON() ([]byte, error) {
	if c.W() != 0 {
		return json.Marshal([]int{int(c.R()), int(c.G()), int(c.B()), int(c.W())})
	}
	return json.Marshal([]int{int(c.R()), int(c.G()), int(c.B())})
}

// UnmarshalJSON accepts [r,g,b], [r,g,b,w] or a packed integer
func (c *Color) UnmarshalJSON(data []byte) error {
	var channels []int
	if err := json.Unmarshal(data, &channels); err == nil {
		for _, v := range channels {
			if v < 0 || v > 255 {
				return fmt.Errorf("color channel %d out of range", v)
			}
		}
		switch len(channels) {
		case 3:
			*c = RGB(uint8(channels[0]), uint8(channels[1]), uint8(channels[2]))
			return nil
		case 4:
			*c = RGBW(uint8(channels[0]), uint8(channels[1]), uint8(channels[2]), uint8(channels[3]))
			return nil
		default:
			return fmt.Errorf("color needs 3 or 4 channels, got %d", len(channels))
		}
	}

	var packed uint32
	if err := json.Unmarshal(data, &packed); err != nil {
		return fmt.Errorf("invalid color %s", string(data))
	}
	*c = Color(packed)
	return nil
}
