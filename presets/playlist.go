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
	"time"
)

// entry duration used when the playlist gives none, in tenths of a second
const defaultDuration = 100

// Player steps through a playlist. It is not safe for concurrent use.
type Player struct {
	list  Playlist
	index int
	pass  int
	done  bool
}

// NewPlayer starts list at its first entry
func NewPlayer(list Playlist) *Player {
	return &Player{list: list}
}

// Next returns the next preset to apply and how long it stays active. ok is
// false once Repeat passes have been played; the caller then applies End.
func (p *Player) Next() (id int, dur time.Duration, ok bool) {
	if p.done || len(p.list.Presets) == 0 {
		p.done = true
		return 0, 0, false
	}

	if p.index >= len(p.list.Presets) {
		p.pass++
		if p.list.Repeat > 0 && p.pass >= p.list.Repeat {
			p.done = true
			return 0, 0, false
		}
		p.index = 0
	}

	i := p.index
	p.index++
	return p.list.Presets[i], p.duration(i), true
}

func (p *Player) duration(i int) time.Duration {
	d := defaultDuration
	switch {
	case i < len(p.list.Durations):
		d = p.list.Durations[i]
	case len(p.list.Durations) > 0:
		d = p.list.Durations[0]
	}
	if d <= 0 {
		d = defaultDuration
	}
	return time.Duration(d) * 100 * time.Millisecond
}

// Done reports whether the playlist has finished
func (p *Player) Done() bool {
	return p.done
}

// End returns the preset to apply after the last pass, 0 for none
func (p *Player) End() int {
	return p.list.End
}
