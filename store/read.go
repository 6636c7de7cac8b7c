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

package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/we-are-mono/wled/daemon/logger"
)

// Filter restricts which fields a read deserializes. A value of true keeps
// the field, a nested Filter filters a nested object, and a one-element
// slice filters every element of an array. The key "*" matches any field.
type Filter map[string]any

// Apply prunes the JSON document raw according to the filter.
func (f Filter) Apply(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	pruned, ok := prune(doc, map[string]any(f))
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(pruned)
}

func prune(v any, filter any) (any, bool) {
	switch fv := filter.(type) {
	case bool:
		return v, fv
	case Filter:
		return prune(v, map[string]any(fv))
	case map[string]any:
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		out := make(map[string]any, len(fv))
		for k, val := range obj {
			sub, ok := fv[k]
			if !ok {
				sub, ok = fv["*"]
			}
			if !ok {
				continue
			}
			if kept, keep := prune(val, sub); keep {
				out[k] = kept
			}
		}
		return out, true
	case []any:
		arr, ok := v.([]any)
		if !ok || len(fv) == 0 {
			return nil, false
		}
		out := make([]any, 0, len(arr))
		for _, elem := range arr {
			if kept, keep := prune(elem, fv[0]); keep {
				out = append(out, kept)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// resetValue sets the value dest points to back to its zero value.
func resetValue(dest any) {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return
	}
	rv.Elem().Set(reflect.Zero(rv.Elem().Type()))
}

// ReadObject decodes the object stored under key into dest. An empty key
// decodes the whole file. A missing key resets dest and returns ErrNotFound.
func (s *Store) ReadObject(path, key string, dest any, filter Filter) error {
	if key != "" && !ValidKey(key) {
		return &OpError{Op: "read", Path: path, Key: key, Err: ErrInvalidKey}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openFile(path, false); err != nil {
		resetValue(dest)
		return err
	}
	defer s.closeFile()

	size, err := s.size()
	if err != nil {
		return &OpError{Op: "read", Path: path, Key: key, Err: err}
	}

	var from int64
	if key != "" {
		pos, found, err := s.findKey([]byte(key))
		if err != nil {
			return &OpError{Op: "read", Path: path, Key: key, Err: err}
		}
		if !found {
			resetValue(dest)
			return ErrNotFound
		}
		from = pos
	}

	var raw json.RawMessage
	dec := json.NewDecoder(io.NewSectionReader(s.f, from, size-from))
	if err := dec.Decode(&raw); err != nil {
		s.lastErr = ErrFSPresetLoad
		resetValue(dest)
		return &OpError{Op: "read", Path: path, Key: key, Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}

	if filter != nil {
		if raw, err = filter.Apply(raw); err != nil {
			return &OpError{Op: "read", Path: path, Key: key, Err: err}
		}
	}

	resetValue(dest)
	if err := json.Unmarshal(raw, dest); err != nil {
		return &OpError{Op: "read", Path: path, Key: key, Err: err}
	}

	s.log.Debug("Read object", logger.Field{Key: "key", Value: key}, logger.Field{Key: "bytes", Value: len(raw)})
	return nil
}

// ReadObjectUsingID decodes the object stored under "<id>":
func (s *Store) ReadObjectUsingID(path string, id uint16, dest any, filter Filter) error {
	return s.ReadObject(path, Key(id), dest, filter)
}

// Stats describes the layout of an object file.
type Stats struct {
	Size              int64 `json:"size"`
	Records           int   `json:"records"`
	EmptyRecords      int   `json:"empty_records"`
	FillerBytes       int64 `json:"filler_bytes"`
	LargestFillerRun  int   `json:"largest_filler_run"`
	KnownLargestSpace int64 `json:"known_largest_space"`
}

// Stats scans path and reports its record and filler layout.
func (s *Store) Stats(path string) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openFile(path, false); err != nil {
		return Stats{}, err
	}
	defer s.closeFile()

	var st Stats
	size, err := s.size()
	if err != nil {
		return st, err
	}
	st.Size = size

	var lx lexer
	var prev byte
	run := 0
	_, _, err = s.scan(0, func(c byte) bool {
		root := lx.atRoot()
		lx.feed(c)

		if root && c == filler {
			run++
			st.FillerBytes++
			return false
		}
		if run > st.LargestFillerRun {
			st.LargestFillerRun = run
		}
		run = 0

		if root && c == '{' {
			st.Records++
		}
		if c == '}' && prev == '{' && lx.depth == 1 {
			st.EmptyRecords++
		}
		prev = c
		return false
	})
	if err != nil {
		return st, err
	}

	if s.knownLargestSpace == unknownSpace {
		st.KnownLargestSpace = -1
	} else {
		st.KnownLargestSpace = s.knownLargestSpace
	}
	return st, nil
}
