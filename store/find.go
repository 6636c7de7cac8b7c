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
	"io"
)

// lexer tracks just enough JSON structure to tell root-level bytes from
// bytes inside nested objects or string literals.
type lexer struct {
	depth    int
	inString bool
	escaped  bool
}

// atRoot reports whether the next byte sits directly inside the root object
// and outside any string literal.
func (l *lexer) atRoot() bool {
	return !l.inString && l.depth == 1
}

// feed advances the lexer by one byte and reports whether the byte was
// outside a string literal (the opening quote counts as outside).
func (l *lexer) feed(c byte) bool {
	if l.inString {
		switch {
		case l.escaped:
			l.escaped = false
		case c == '\\':
			l.escaped = true
		case c == '"':
			l.inString = false
		}
		return false
	}

	switch c {
	case '"':
		l.inString = true
	case '{':
		l.depth++
	case '}':
		l.depth--
	}
	return true
}

// scan streams the open file forward from off in blocks, calling visit for
// every byte until it returns true. It returns the offset of the byte that
// stopped the scan.
func (s *Store) scan(off int64, visit func(c byte) bool) (int64, bool, error) {
	buf := make([]byte, s.blockSize)
	for {
		n, err := s.f.ReadAt(buf, off)
		for i := 0; i < n; i++ {
			if visit(buf[i]) {
				return off + int64(i), true, nil
			}
		}
		off += int64(n)

		if err == io.EOF || (err == nil && n == 0) {
			return off, false, nil
		}
		if err != nil {
			return off, false, err
		}
	}
}

// scanBack streams the open file backwards from the byte before off.
func (s *Store) scanBack(off int64, visit func(c byte) bool) (int64, bool, error) {
	buf := make([]byte, s.blockSize)
	for off > 0 {
		start := off - int64(len(buf))
		if start < 0 {
			start = 0
		}
		chunk := buf[:off-start]
		if _, err := s.f.ReadAt(chunk, start); err != nil && err != io.EOF {
			return off, false, err
		}
		for i := len(chunk) - 1; i >= 0; i-- {
			if visit(chunk[i]) {
				return start + int64(i), true, nil
			}
		}
		off = start
	}
	return 0, false, nil
}

// findKey locates target at the root level of the file and returns the
// offset just past it, which is where the object value starts.
func (s *Store) findKey(target []byte) (int64, bool, error) {
	if len(target) == 0 {
		return 0, false, nil
	}

	var lx lexer
	idx := 0
	off, found, err := s.scan(0, func(c byte) bool {
		root := lx.atRoot()
		lx.feed(c)

		if idx > 0 {
			if c == target[idx] {
				idx++
				return idx == len(target)
			}
			idx = 0
		}
		if root && c == target[0] {
			idx = 1
			return idx == len(target)
		}
		return false
	})
	if err != nil || !found {
		return 0, false, err
	}
	return off + 1, true, nil
}

// findObjectEnd expects an object to start at from (leading whitespace is
// skipped) and returns the offset just past its matching closing brace.
func (s *Store) findObjectEnd(from int64) (int64, error) {
	var lx lexer
	started := false
	malformed := false

	off, found, err := s.scan(from, func(c byte) bool {
		if !lx.feed(c) {
			return false
		}
		if !started {
			switch c {
			case '{':
				started = true
			case ' ', '\t', '\n', '\r':
			default:
				malformed = true
				return true
			}
			return false
		}
		return c == '}' && lx.depth == 0
	})
	if err != nil {
		return 0, err
	}
	if !found || malformed {
		return 0, ErrCorrupt
	}
	return off + 1, nil
}

// findSpace looks for targetLen consecutive filler bytes. A scan from the
// start accepts only root-level runs that follow the end of a record and
// returns the offset where the run begins. A scan from the cursor requires
// the run to start exactly at from.
func (s *Store) findSpace(targetLen int, from int64, fromStart bool) (int64, bool, error) {
	if targetLen <= 0 {
		return from, true, nil
	}

	if !fromStart {
		count := 0
		_, found, err := s.scan(from, func(c byte) bool {
			if c != filler {
				return true
			}
			count++
			return count >= targetLen
		})
		if err != nil {
			return 0, false, err
		}
		return from, found && count >= targetLen, nil
	}

	if int64(targetLen) > s.knownLargestSpace {
		s.metrics.scan("skipped")
		return 0, false, nil
	}

	var lx lexer
	var last byte
	run, largest := 0, 0
	eligible := false

	off, found, err := s.scan(0, func(c byte) bool {
		root := lx.atRoot()
		lx.feed(c)

		if root && c == filler {
			if run == 0 {
				eligible = last == '}'
			}
			run++
			return eligible && run >= targetLen
		}

		if run > largest {
			largest = run
		}
		run = 0
		last = c
		return false
	})
	if err != nil {
		return 0, false, err
	}

	if found {
		// Runs after this one were never looked at.
		s.knownLargestSpace = unknownSpace
		s.metrics.scan("found")
		return off - int64(targetLen) + 1, true, nil
	}

	if run > largest {
		largest = run
	}
	s.knownLargestSpace = int64(largest)
	s.metrics.scan("missed")
	return 0, false, nil
}

// trailingSpace counts the filler bytes starting at from, up to limit.
func (s *Store) trailingSpace(from int64, limit int) (int, error) {
	count := 0
	_, _, err := s.scan(from, func(c byte) bool {
		if c != filler {
			return true
		}
		count++
		return count >= limit
	})
	return count, err
}

// prevNonSpace returns the offset and value of the last non-whitespace
// byte before off.
func (s *Store) prevNonSpace(off int64) (int64, byte, bool, error) {
	var b byte
	pos, found, err := s.scanBack(off, func(c byte) bool {
		switch c {
		case ' ', '\t', '\n', '\r':
			return false
		}
		b = c
		return true
	})
	return pos, b, found, err
}

// findLastByte returns the offset of the last occurrence of target.
func (s *Store) findLastByte(target byte, size int64) (int64, bool, error) {
	return s.scanBack(size, func(c byte) bool {
		return c == target
	})
}
