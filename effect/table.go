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
	"fmt"
	"slices"
	"sync"
)

// Built-in mode ids
const (
	ModeStatic        ModeID = 0
	ModeBlink         ModeID = 1
	ModeBouncingBalls ModeID = 9
	ModeTetrix        ModeID = 44
	ModeFire2012      ModeID = 66
)

// Table maps mode ids to effect descriptors.
type Table struct {
	byID map[ModeID]*Information
	mu   sync.RWMutex
}

// NewTable creates an empty table
func NewTable() *Table {
	return &Table{byID: make(map[ModeID]*Information)}
}

// Register adds descriptors to the table. Registering an id twice fails and
// leaves the table unchanged.
func (t *Table) Register(infos ...*Information) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[ModeID]bool, len(infos))
	for _, info := range infos {
		if _, exists := t.byID[info.ID]; exists || seen[info.ID] {
			return fmt.Errorf("effect mode %d already registered", info.ID)
		}
		seen[info.ID] = true
	}
	for _, info := range infos {
		t.byID[info.ID] = info
	}
	return nil
}

// Lookup returns the descriptor for id
func (t *Table) Lookup(id ModeID) (*Information, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	info, ok := t.byID[id]
	return info, ok
}

// IDs returns the registered ids in ascending order
func (t *Table) IDs() []ModeID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]ModeID, 0, len(t.byID))
	for id := range t.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// All returns the descriptors ordered by id
func (t *Table) All() []*Information {
	ids := t.IDs()

	t.mu.RLock()
	defer t.mu.RUnlock()

	infos := make([]*Information, 0, len(ids))
	for _, id := range ids {
		if info, ok := t.byID[id]; ok {
			infos = append(infos, info)
		}
	}
	return infos
}

var defaultTable = sync.OnceValue(func() *Table {
	t := NewTable()
	if err := t.Register(StaticInfo, BlinkInfo, BouncingBallsInfo, TetrixInfo, Fire2012Info); err != nil {
		panic(err)
	}
	return t
})

// Default returns the table of built-in effects
func Default() *Table {
	return defaultTable()
}
