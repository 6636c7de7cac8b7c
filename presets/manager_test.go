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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/we-are-mono/wled/effect"
	"github.com/we-are-mono/wled/store"
)

func ptr[T any](v T) *T { return &v }

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()

	dir := t.TempDir()
	s := store.New(store.OSFS{Root: dir})
	t.Cleanup(func() { s.Close() })
	return NewManager(s, "", nil), dir
}

func TestSaveLoad(t *testing.T) {
	m, dir := newTestManager(t)

	p := &Preset{
		Name:       "Sunset",
		Brightness: ptr(uint8(200)),
		Segments: []SegmentState{
			{ID: 0, Mode: ptr(uint8(effect.ModeFire2012)), Speed: ptr(uint8(64)), Colors: []effect.Color{effect.RGB(255, 80, 0)}},
		},
	}
	require.NoError(t, m.Save(5, p))

	loaded, err := m.Load(5)
	require.NoError(t, err)
	assert.Equal(t, p, loaded)

	data, err := os.ReadFile(filepath.Join(dir, DefaultFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"0":{},"5":{"n":"Sunset"`)
}

func TestLoadName(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.Save(3, &Preset{Name: "Night", QuickLabel: "N", On: ptr(false)}))

	name, err := m.LoadName(3)
	require.NoError(t, err)
	assert.Equal(t, "Night", name)
}

func TestLoadMissing(t *testing.T) {
	m, _ := newTestManager(t)

	// no file yet
	_, err := m.Load(1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Save(1, &Preset{Name: "One"}))
	_, err = m.Load(2)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Load(0)
	assert.ErrorIs(t, err, ErrInvalidID)
	_, err = m.LoadName(251)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestDeleteAndList(t *testing.T) {
	m, _ := newTestManager(t)

	entries, err := m.List()
	require.NoError(t, err)
	assert.Empty(t, entries)

	for _, id := range []int{7, 2, 9} {
		require.NoError(t, m.Save(id, &Preset{Name: "p" + string(rune('0'+id))}))
	}
	require.NoError(t, m.Delete(2))
	require.NoError(t, m.Delete(2))
	require.NoError(t, m.Delete(100))

	entries, err = m.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 7, entries[0].ID)
	assert.Equal(t, "p7", entries[0].Preset.Name)
	assert.Equal(t, 9, entries[1].ID)

	_, err = m.Load(2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveValidation(t *testing.T) {
	m, _ := newTestManager(t)

	assert.ErrorIs(t, m.Save(0, &Preset{Name: "zero"}), ErrInvalidID)
	assert.ErrorContains(t, m.Save(1, &Preset{}), "empty")
	assert.ErrorContains(t, m.Save(1, &Preset{Playlist: &Playlist{}}), "no presets")
	assert.ErrorContains(t, m.Save(1, &Preset{Playlist: &Playlist{Presets: []int{2}, End: 999}}), "playlist end")
}

func TestApply(t *testing.T) {
	m, _ := newTestManager(t)

	strip := effect.NewStrip(20, nil, nil, nil)
	_, err := strip.AddSegment(0, 10, 1)
	require.NoError(t, err)
	seg1, err := strip.AddSegment(10, 20, 1)
	require.NoError(t, err)

	p := &Preset{
		On:         ptr(true),
		Brightness: ptr(uint8(77)),
		Segments: []SegmentState{
			{ID: 1, Mode: ptr(uint8(effect.ModeBlink)), Intensity: ptr(uint8(10)), Palette: ptr(effect.PaletteRainbow),
				Colors: []effect.Color{effect.RGB(1, 2, 3), effect.RGB(4, 5, 6)}},
			{ID: 4, Mode: ptr(uint8(effect.ModeTetrix))},
		},
	}
	require.NoError(t, m.Save(10, p))

	_, err = m.ApplyID(strip, 10)
	require.NoError(t, err)

	assert.Equal(t, uint8(77), strip.Brightness())
	assert.Equal(t, effect.ModeBlink, seg1.Mode())
	assert.IsType(t, &effect.Blink{}, seg1.Effect())
	assert.Equal(t, uint8(10), seg1.Intensity)
	assert.Equal(t, uint8(128), seg1.Speed)
	assert.Equal(t, effect.PaletteRainbow, seg1.Palette)
	assert.Equal(t, effect.RGB(4, 5, 6), seg1.Colors[1])

	// same mode keeps the running instance
	running := seg1.Effect()
	require.NoError(t, m.Apply(strip, &Preset{Segments: []SegmentState{{ID: 1, Mode: ptr(uint8(effect.ModeBlink))}}}))
	assert.Same(t, running, seg1.Effect())

	err = m.Apply(strip, &Preset{Segments: []SegmentState{{ID: 0, Mode: ptr(uint8(200))}}})
	assert.ErrorIs(t, err, effect.ErrUnknownMode)
}

func TestPlayer(t *testing.T) {
	p := NewPlayer(Playlist{Presets: []int{1, 2}, Durations: []int{20}, Repeat: 2, End: 9})

	var ids []int
	for {
		id, dur, ok := p.Next()
		if !ok {
			break
		}
		ids = append(ids, id)
		assert.Equal(t, 2*time.Second, dur)
	}
	assert.Equal(t, []int{1, 2, 1, 2}, ids)
	assert.True(t, p.Done())
	assert.Equal(t, 9, p.End())

	forever := NewPlayer(Playlist{Presets: []int{4}})
	for i := 0; i < 5; i++ {
		id, dur, ok := forever.Next()
		require.True(t, ok)
		assert.Equal(t, 4, id)
		assert.Equal(t, 10*time.Second, dur)
	}

	empty := NewPlayer(Playlist{})
	_, _, ok := empty.Next()
	assert.False(t, ok)
}
