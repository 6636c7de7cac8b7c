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

//go:build !linux && !darwin

package store

import "errors"

// StatfsInfo reports usage of the filesystem containing Path.
type StatfsInfo struct {
	Path string
}

// Usage is not available on this platform
func (s StatfsInfo) Usage() (Usage, error) {
	return Usage{}, errors.New("statfs not supported on this platform")
}
