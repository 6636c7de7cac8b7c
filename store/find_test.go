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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openRaw opens content in a store using blockSize-byte scans.
func openRaw(t *testing.T, content string, blockSize int) *Store {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "raw.json"), []byte(content), 0644))

	s := New(OSFS{Root: dir}, WithBlockSize(blockSize))
	require.NoError(t, s.openFile("raw.json", false))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFindKey(t *testing.T) {
	content := `{"0":{},"12":{"1":{"12":1}},"s":"\"1\": ","1":{}}`

	tests := []struct {
		key   string
		want  int64
		found bool
	}{
		{`"0":`, 5, true},
		{`"12":`, 13, true},
		{`"1":`, 46, true},
		{`"2":`, 0, false},
		{``, 0, false},
	}

	for _, blockSize := range []int{1, 4, 256} {
		s := openRaw(t, content, blockSize)
		for _, tt := range tests {
			got, found, err := s.findKey([]byte(tt.key))
			require.NoError(t, err)
			assert.Equal(t, tt.found, found, "key %s block %d", tt.key, blockSize)
			assert.Equal(t, tt.want, got, "key %s block %d", tt.key, blockSize)
		}
	}
}

func TestFindObjectEnd(t *testing.T) {
	tests := []struct {
		name    string
		content string
		from    int64
		want    int64
		wantErr error
	}{
		{"flat", `{"a":1}`, 0, 7, nil},
		{"nested", `{"a":{"b":{}},"c":[{}]} `, 0, 23, nil},
		{"braces in strings", `{"a":"}{\"}"}`, 0, 13, nil},
		{"leading space", `  {}`, 0, 4, nil},
		{"unbalanced", `{"a":{}`, 0, 0, ErrCorrupt},
		{"not an object", `[1]`, 0, 0, ErrCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := openRaw(t, tt.content, 3)
			got, err := s.findObjectEnd(tt.from)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindSpace(t *testing.T) {
	// a run inside a string and a run after a comma are not reusable
	content := `{"0":{},"1":{"s":"          "}      ,"2":{}` + "   " + `}`

	s := openRaw(t, content, 4)

	at, found, err := s.findSpace(6, 0, true)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(30), at)
	assert.Equal(t, int64(unknownSpace), s.knownLargestSpace)

	_, found, err = s.findSpace(7, 0, true)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, int64(6), s.knownLargestSpace)

	// the cache rules the request out without reading
	s.f.Close()
	_, found, err = s.findSpace(7, 0, true)
	require.NoError(t, err)
	assert.False(t, found)
	s.f = nil
}

func TestFindSpaceFromCursor(t *testing.T) {
	s := openRaw(t, `{"0":{}    ,"1":{}}`, 2)

	_, found, err := s.findSpace(4, 7, false)
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = s.findSpace(5, 7, false)
	require.NoError(t, err)
	assert.False(t, found)

	// runs must start at the cursor
	_, found, err = s.findSpace(2, 6, false)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, int64(unknownSpace), s.knownLargestSpace)
}

func TestScanBackHelpers(t *testing.T) {
	s := openRaw(t, "{\"0\":{}  ,\"1\":{}}\n\n", 3)

	pos, b, found, err := s.prevNonSpace(9)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(6), pos)
	assert.Equal(t, byte('}'), b)

	pos, found, err = s.findLastByte('}', 19)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, int64(16), pos)

	_, _, found, err = s.prevNonSpace(0)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLexer(t *testing.T) {
	var lx lexer
	var roots []bool
	for _, c := range []byte(`{"a\"{":{"b":1}}`) {
		roots = append(roots, lx.atRoot())
		lx.feed(c)
	}
	assert.Equal(t, 0, lx.depth)
	assert.False(t, lx.inString)
	// the opening quote of the key and the colon are root-level
	assert.True(t, roots[1])
	assert.False(t, roots[2])
	assert.True(t, roots[7])
	assert.True(t, roots[8])
	assert.False(t, roots[9])
}
