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
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by reads when the key is absent from the file.
	ErrNotFound = errors.New("object not found")

	// ErrQuotaExceeded is returned when growing the file would leave less
	// free space than a full copy of the file needs.
	ErrQuotaExceeded = errors.New("filesystem quota exceeded")

	// ErrCorrupt is returned when an object boundary cannot be established.
	ErrCorrupt = errors.New("corrupt object file")

	// ErrInvalidKey is returned for keys not of the form "<name>":
	ErrInvalidKey = errors.New("invalid object key")

	// ErrNotObject is returned when content does not serialize to a JSON object.
	ErrNotObject = errors.New("content is not a JSON object")

	// ErrReservedKey is returned when writing content under the sentinel key.
	ErrReservedKey = errors.New("key is reserved for the sentinel object")
)

// ErrorCode mirrors the device-wide error flag surfaced to the status UI.
type ErrorCode int

const (
	ErrNone         ErrorCode = 0
	ErrFSQuota      ErrorCode = 11
	ErrFSPresetLoad ErrorCode = 12
	ErrFSGeneral    ErrorCode = 19
)

// String returns the short name of the error code
func (c ErrorCode) String() string {
	switch c {
	case ErrNone:
		return "none"
	case ErrFSQuota:
		return "fs_quota"
	case ErrFSPresetLoad:
		return "fs_preset_load"
	case ErrFSGeneral:
		return "fs_general"
	default:
		return fmt.Sprintf("error_%d", int(c))
	}
}

// OpError records a failed store operation on a file.
type OpError struct {
	Op   string
	Path string
	Key  string
	Err  error
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func (e *OpError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s [%s]: %v", e.Op, e.Path, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}
