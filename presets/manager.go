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

// Package presets saves, loads and applies presets kept in an object file.
package presets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strconv"

	"github.com/we-are-mono/wled/daemon/logger"
	"github.com/we-are-mono/wled/effect"
	"github.com/we-are-mono/wled/store"
	"github.com/we-are-mono/wled/validation"
)

// DefaultFile is the object file holding the presets
const DefaultFile = "presets.json"

var (
	// ErrInvalidID is returned for ids outside 1..250
	ErrInvalidID = errors.New("invalid preset id")
	// ErrNotFound is returned when no preset is stored under an id
	ErrNotFound = errors.New("preset not found")
)

// ObjectStore is the subset of the object store the manager needs.
// *store.Store and the plugin client both implement it.
type ObjectStore interface {
	ReadObject(path, key string, dest any, filter store.Filter) error
	WriteObject(path, key string, content any) error
}

// Manager stores presets as records "<id>":{...} of one object file.
type Manager struct {
	store ObjectStore
	file  string
	log   logger.Logger
}

// NewManager creates a manager for file in s. An empty file name selects
// DefaultFile.
func NewManager(s ObjectStore, file string, log logger.Logger) *Manager {
	if file == "" {
		file = DefaultFile
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Manager{store: s, file: file, log: log.With(logger.Field{Key: "component", Value: "presets"})}
}

// File returns the object file name
func (m *Manager) File() string {
	return m.file
}

func checkID(id int) error {
	if err := validation.ValidatePresetID(id); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	return nil
}

// Validate checks the preset before it is saved.
func Validate(p *Preset) error {
	v := validation.NewCollector()
	if p.IsEmpty() {
		v.Check(errors.New("preset is empty"))
	}
	for i, seg := range p.Segments {
		if seg.ID < 0 {
			v.Check(fmt.Errorf("segment %d: negative id %d", i, seg.ID))
		}
	}
	if p.Playlist != nil {
		v.CheckMsg(validation.ValidatePlaylist(p.Playlist.Presets, p.Playlist.Durations), "playlist")
		if p.Playlist.End != 0 {
			v.CheckMsg(validation.ValidatePresetID(p.Playlist.End), "playlist end")
		}
	}
	return v.Error()
}

// Save stores p under id, replacing what was there.
func (m *Manager) Save(id int, p *Preset) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := Validate(p); err != nil {
		return err
	}

	if err := m.store.WriteObject(m.file, store.Key(uint16(id)), p); err != nil {
		return fmt.Errorf("failed to save preset %d: %w", id, err)
	}
	m.log.Info("Saved preset", logger.Field{Key: "id", Value: id}, logger.Field{Key: "name", Value: p.Name})
	return nil
}

// Load returns the preset stored under id.
func (m *Manager) Load(id int) (*Preset, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var p Preset
	if err := m.read(id, &p, nil); err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return &p, nil
}

// LoadName reads only the name of preset id.
func (m *Manager) LoadName(id int) (string, error) {
	if err := checkID(id); err != nil {
		return "", err
	}

	var p struct {
		Name string `json:"n"`
	}
	if err := m.read(id, &p, store.Filter{"n": true}); err != nil {
		return "", err
	}
	return p.Name, nil
}

func (m *Manager) read(id int, dest any, filter store.Filter) error {
	err := m.store.ReadObject(m.file, store.Key(uint16(id)), dest, filter)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	default:
		return fmt.Errorf("failed to load preset %d: %w", id, err)
	}
}

// Delete removes preset id. Deleting a missing preset is not an error.
func (m *Manager) Delete(id int) error {
	if err := checkID(id); err != nil {
		return err
	}

	if err := m.store.WriteObject(m.file, store.Key(uint16(id)), nil); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to delete preset %d: %w", id, err)
	}
	m.log.Info("Deleted preset", logger.Field{Key: "id", Value: id})
	return nil
}

// List returns every stored preset ordered by id. Records holding {} are
// skipped, as are keys that are not preset ids.
func (m *Manager) List() ([]Entry, error) {
	var records map[string]json.RawMessage
	if err := m.store.ReadObject(m.file, "", &records, nil); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list presets: %w", err)
	}

	entries := make([]Entry, 0, len(records))
	for key, raw := range records {
		id, err := strconv.Atoi(key)
		if err != nil || checkID(id) != nil {
			continue
		}

		var p Preset
		if err := json.Unmarshal(raw, &p); err != nil {
			m.log.Warn("Skipping unreadable preset",
				logger.Field{Key: "id", Value: id},
				logger.Field{Key: "error", Value: err.Error()})
			continue
		}
		if p.IsEmpty() {
			continue
		}
		entries = append(entries, Entry{ID: id, Preset: p})
	}

	slices.SortFunc(entries, func(a, b Entry) int { return a.ID - b.ID })
	return entries, nil
}

// Apply sets the strip to preset p. Segments missing from the strip are
// skipped with a warning.
func (m *Manager) Apply(strip *effect.Strip, p *Preset) error {
	if p.On != nil {
		strip.SetPower(*p.On)
	}
	if p.Brightness != nil {
		strip.SetBrightness(*p.Brightness)
	}

	for _, state := range p.Segments {
		seg, ok := strip.Segment(state.ID)
		if !ok {
			m.log.Warn("Preset references missing segment", logger.Field{Key: "segment", Value: state.ID})
			continue
		}
		if err := applySegment(strip, seg, state); err != nil {
			return fmt.Errorf("segment %d: %w", state.ID, err)
		}
	}
	return nil
}

func applySegment(strip *effect.Strip, seg *effect.Segment, state SegmentState) error {
	if state.Mode != nil && (seg.Effect() == nil || effect.ModeID(*state.Mode) != seg.Mode()) {
		if err := seg.SetMode(strip.Table(), effect.ModeID(*state.Mode)); err != nil {
			return err
		}
	}

	set := func(dst *uint8, src *uint8) {
		if src != nil {
			*dst = *src
		}
	}
	set(&seg.Speed, state.Speed)
	set(&seg.Intensity, state.Intensity)
	set(&seg.Custom1, state.Custom1)
	set(&seg.Custom2, state.Custom2)
	set(&seg.Custom3, state.Custom3)
	set(&seg.Palette, state.Palette)

	for i, c := range state.Colors {
		if i < len(seg.Colors) {
			seg.Colors[i] = c
		}
	}
	return nil
}

// ApplyID loads preset id and applies it.
func (m *Manager) ApplyID(strip *effect.Strip, id int) (*Preset, error) {
	p, err := m.Load(id)
	if err != nil {
		return nil, err
	}
	if err := m.Apply(strip, p); err != nil {
		return nil, err
	}
	m.log.Info("Applied preset", logger.Field{Key: "id", Value: id}, logger.Field{Key: "name", Value: p.Name})
	return p, nil
}
