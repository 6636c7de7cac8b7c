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

// Package store keeps JSON objects in a single file shaped as
// {"<key1>":<obj1>,"<key2>":<obj2>,...} and updates them without rewriting
// the whole file.
//
// Space given up by shrunk or deleted objects is filled with ASCII spaces
// ("filler"). Filler only ever sits directly in front of a separating comma
// or the closing brace of the root object, where later writes can grow into
// it or reuse it. The first object of the file is never removed; deleting it
// leaves the sentinel record "0":{} in its place, and readers skip keys whose
// value is {}.
//
// A Store owns a single file handle. Every public method takes the store
// lock, so at most one operation touches the file at a time.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/we-are-mono/wled/daemon/logger"
)

const (
	// BlockSize is the default read granularity of the scanners.
	BlockSize = 256

	filler       = ' '
	unknownSpace = math.MaxInt64

	// SentinelKey names the record that stands in for a deleted first object.
	SentinelKey    = `"0":`
	sentinelRecord = `"0":{}`
	initialContent = `{"0":{}}`
)

// Store implements the object file operations.
type Store struct {
	mu        sync.Mutex
	fs        FS
	info      FSInfo
	log       logger.Logger
	metrics   *Metrics
	blockSize int

	// shared handle; closed lazily after writes
	f       File
	path    string
	doClose bool

	// upper bound of the largest reusable filler run in spacePath
	knownLargestSpace int64
	spacePath         string
	lastErr           ErrorCode
}

// Option configures a Store.
type Option func(*Store)

// WithFSInfo sets the usage source consulted before the file grows.
func WithFSInfo(info FSInfo) Option {
	return func(s *Store) { s.info = info }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithMetrics sets the counters updated by the store.
func WithMetrics(m *Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// WithBlockSize overrides the scanner block size.
func WithBlockSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.blockSize = n
		}
	}
}

// New creates a store on top of fsys
func New(fsys FS, opts ...Option) *Store {
	s := &Store{
		fs:                fsys,
		log:               logger.Nop(),
		blockSize:         BlockSize,
		knownLargestSpace: unknownSpace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the root key for a numeric id, e.g. "5":
func Key(id uint16) string {
	return `"` + strconv.Itoa(int(id)) + `":`
}

// ValidKey reports whether key has the form "<name>": with a non-empty name
// that needs no escaping.
func ValidKey(key string) bool {
	if len(key) < 4 || key[0] != '"' || !strings.HasSuffix(key, `":`) {
		return false
	}
	name := key[1 : len(key)-2]
	return !strings.ContainsAny(name, "\"\\{}")
}

// LastError returns the error flag set by the most recent failing operation.
func (s *Store) LastError() ErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError resets the error flag.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = ErrNone
}

// ClosePending closes the handle a previous write left open.
func (s *Store) ClosePending() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.doClose {
		return nil
	}
	return s.closeFile()
}

// Close closes the shared handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeFile()
}

func (s *Store) closeFile() error {
	s.doClose = false
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	s.path = ""
	return err
}

func (s *Store) openFile(path string, write bool) error {
	if err := s.closeFile(); err != nil {
		s.log.Warn("Failed to close previous file", logger.Field{Key: "error", Value: err.Error()})
	}

	flag := os.O_RDONLY
	if write {
		flag = os.O_RDWR | os.O_CREATE
	}

	f, err := s.fs.OpenFile(path, flag, 0644)
	if err != nil {
		s.metrics.failure("open")
		return &OpError{Op: "open", Path: path, Err: err}
	}

	if path != s.spacePath {
		s.knownLargestSpace = unknownSpace
		s.spacePath = path
	}
	s.f = f
	s.path = path
	return nil
}

func (s *Store) size() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// encodeObject serializes content compactly. A nil result means delete.
func encodeObject(content any) ([]byte, error) {
	var data []byte
	switch v := content.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode object: %w", err)
		}
		data = encoded
	}

	var buf bytes.Buffer
	if len(data) == 0 {
		return nil, nil
	}
	if err := json.Compact(&buf, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}

	out := buf.Bytes()
	if bytes.Equal(out, []byte("null")) {
		return nil, nil
	}
	if out[0] != '{' {
		return nil, ErrNotObject
	}
	return out, nil
}

// WriteObject stores content under key, replacing any existing object.
// A nil content (or JSON null) deletes the object.
func (s *Store) WriteObject(path, key string, content any) error {
	if !ValidKey(key) {
		s.metrics.failure("invalid")
		return &OpError{Op: "write", Path: path, Key: key, Err: ErrInvalidKey}
	}

	data, err := encodeObject(content)
	if err != nil {
		s.metrics.failure("invalid")
		return &OpError{Op: "write", Path: path, Key: key, Err: err}
	}

	if key == SentinelKey {
		if data == nil || string(data) == "{}" {
			s.metrics.write("noop")
			return nil
		}
		return &OpError{Op: "write", Path: path, Key: key, Err: ErrReservedKey}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.openFile(path, true); err != nil {
		return err
	}
	s.doClose = true

	if err := s.writeObject(key, data); err != nil {
		if s.lastErr == ErrNone {
			s.lastErr = ErrFSGeneral
		}
		return &OpError{Op: "write", Path: path, Key: key, Err: err}
	}

	if err := fdatasync(s.f); err != nil {
		return &OpError{Op: "sync", Path: path, Key: key, Err: err}
	}
	return nil
}

// WriteObjectUsingID stores content under the key "<id>":
func (s *Store) WriteObjectUsingID(path string, id uint16, content any) error {
	return s.WriteObject(path, Key(id), content)
}

func (s *Store) writeObject(key string, data []byte) error {
	size, err := s.size()
	if err != nil {
		return err
	}
	if size < 3 {
		if _, err := s.f.WriteAt([]byte(initialContent), 0); err != nil {
			return err
		}
		size = int64(len(initialContent))
		s.knownLargestSpace = unknownSpace
	}

	pos, found, err := s.findKey([]byte(key))
	if err != nil {
		return err
	}
	if !found {
		s.log.Debug("Object not found, appending", logger.Field{Key: "key", Value: key})
		return s.appendObject(key, data, size)
	}

	end, err := s.findObjectEnd(pos)
	if err != nil {
		s.metrics.failure("corrupt")
		return err
	}

	oldLen := int(end - pos)
	contentLen := len(data)

	if data != nil && contentLen <= oldLen {
		s.log.Debug("Replacing object in place",
			logger.Field{Key: "key", Value: key},
			logger.Field{Key: "old_len", Value: oldLen},
			logger.Field{Key: "new_len", Value: contentLen})
		if _, err := s.f.WriteAt(data, pos); err != nil {
			return err
		}
		s.metrics.write("replace")
		return s.writeSpace(pos+int64(contentLen), oldLen-contentLen)
	}

	if data != nil {
		trailing, err := s.trailingSpace(end, contentLen-oldLen)
		if err != nil {
			return err
		}
		if trailing >= contentLen-oldLen {
			s.log.Debug("Replacing object into trailing space",
				logger.Field{Key: "key", Value: key},
				logger.Field{Key: "old_len", Value: oldLen},
				logger.Field{Key: "new_len", Value: contentLen})
			if _, err := s.f.WriteAt(data, pos); err != nil {
				return err
			}
			s.knownLargestSpace = unknownSpace
			s.metrics.write("replace_trailing")
			return nil
		}
	}

	keyStart := pos - int64(len(key))
	blankFrom, head, err := s.recordStart(keyStart)
	if err != nil {
		return err
	}

	if data == nil {
		s.log.Debug("Deleting object", logger.Field{Key: "key", Value: key})
		s.metrics.write("delete")
		return s.blankRecord(blankFrom, end, head)
	}

	need := contentLen + len(key) + 1
	if err := s.checkRelocation(blankFrom, end, head, need, size); err != nil {
		return err
	}

	s.log.Debug("Relocating object",
		logger.Field{Key: "key", Value: key},
		logger.Field{Key: "old_len", Value: oldLen},
		logger.Field{Key: "new_len", Value: contentLen})
	s.metrics.write("relocate")
	if err := s.blankRecord(blankFrom, end, head); err != nil {
		return err
	}

	size, err = s.size()
	if err != nil {
		return err
	}
	return s.appendObject(key, data, size)
}

// recordStart returns where blanking a record starting at keyStart must
// begin: its separating comma, or the key itself for the head record.
func (s *Store) recordStart(keyStart int64) (int64, bool, error) {
	prev, b, found, err := s.prevNonSpace(keyStart)
	if err != nil {
		return 0, false, err
	}
	if !found || b == '{' {
		return keyStart, true, nil
	}
	if b == ',' {
		return prev, false, nil
	}
	return keyStart, false, nil
}

// blankRecord overwrites [from, end) with filler. The head record is
// replaced by the sentinel record instead, which keeps the root object free
// of a leading comma.
func (s *Store) blankRecord(from, end int64, head bool) error {
	if head {
		if _, err := s.f.WriteAt([]byte(sentinelRecord), from); err != nil {
			return err
		}
		from += int64(len(sentinelRecord))
	}
	return s.writeSpace(from, int(end-from))
}

// checkRelocation verifies, before any byte changes, that the object can be
// written again once its current record is blanked.
func (s *Store) checkRelocation(blankFrom, end int64, head bool, need int, size int64) error {
	if _, found, err := s.findSpace(need, 0, true); err != nil || found {
		return err
	}

	freed := int(end - blankFrom)
	if head {
		freed -= len(sentinelRecord)
	}
	if freed < need {
		trailing, err := s.trailingSpace(end, need-freed)
		if err != nil {
			return err
		}
		freed += trailing
	}
	if freed >= need {
		return nil
	}

	return s.checkQuota(size, int64(need))
}

func (s *Store) checkQuota(size, growth int64) error {
	if s.info == nil {
		return nil
	}

	usage, err := s.info.Usage()
	if err != nil {
		s.log.Warn("Failed to read filesystem usage", logger.Field{Key: "error", Value: err.Error()})
		return nil
	}

	// keep room for at least one full copy of the file
	if size+growth > usage.Free() {
		s.lastErr = ErrFSQuota
		s.metrics.failure("quota")
		s.log.Warn("Filesystem quota exceeded",
			logger.Field{Key: "file_size", Value: size},
			logger.Field{Key: "growth", Value: growth},
			logger.Field{Key: "free", Value: usage.Free()})
		return ErrQuotaExceeded
	}
	return nil
}

// appendObject inserts key+data into reusable filler or, failing that, at
// the end of the root object.
func (s *Store) appendObject(key string, data []byte, size int64) error {
	if data == nil {
		s.metrics.write("noop")
		return nil
	}

	need := len(data) + len(key) + 1
	at, found, err := s.findSpace(need, 0, true)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	buf.Grow(need + 1)

	if found {
		buf.WriteByte(',')
		buf.WriteString(key)
		buf.Write(data)
		if _, err := s.f.WriteAt(buf.Bytes(), at); err != nil {
			return err
		}
		s.log.Debug("Inserted object into free space",
			logger.Field{Key: "key", Value: key},
			logger.Field{Key: "offset", Value: at})
		s.metrics.write("insert")
		return nil
	}

	if err := s.checkQuota(size, int64(need)); err != nil {
		return err
	}

	end := int64(-1)
	last := make([]byte, 1)
	if size > 0 {
		if _, err := s.f.ReadAt(last, size-1); err != nil {
			return err
		}
	}
	if size > 0 && last[0] == '}' {
		end = size - 1
	} else {
		s.log.Warn("File does not end with a closing brace", logger.Field{Key: "size", Value: size})
		pos, ok, err := s.findLastByte('}', size)
		if err != nil {
			return err
		}
		if ok {
			end = pos
		}
	}

	if end > 2 {
		buf.WriteByte(',')
	} else {
		// not a usable JSON object, start over
		end = 0
		buf.WriteByte('{')
	}
	buf.WriteString(key)
	buf.Write(data)
	buf.WriteByte('}')

	if _, err := s.f.WriteAt(buf.Bytes(), end); err != nil {
		return err
	}
	if err := s.f.Truncate(end + int64(buf.Len())); err != nil {
		return err
	}

	s.log.Debug("Appended object", logger.Field{Key: "key", Value: key}, logger.Field{Key: "offset", Value: end})
	s.metrics.write("append")
	return nil
}

// writeSpace fills n bytes at off with filler.
func (s *Store) writeSpace(off int64, n int) error {
	if n <= 0 {
		return nil
	}

	block := bytes.Repeat([]byte{filler}, min(n, s.blockSize))
	for n > 0 {
		chunk := min(n, len(block))
		if _, err := s.f.WriteAt(block[:chunk], off); err != nil {
			return err
		}
		off += int64(chunk)
		n -= chunk
	}

	// the new run may have merged with its neighbours
	s.knownLargestSpace = unknownSpace
	return nil
}
