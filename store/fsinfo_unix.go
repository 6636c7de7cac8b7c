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

//go:build linux || darwin

package store

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// StatfsInfo reports usage of the filesystem containing Path.
type StatfsInfo struct {
	Path string
}

// Usage queries statfs for the filesystem
func (s StatfsInfo) Usage() (Usage, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(s.Path, &st); err != nil {
		return Usage{}, fmt.Errorf("statfs %s: %w", s.Path, err)
	}

	bsize := uint64(st.Bsize)
	total := uint64(st.Blocks) * bsize
	avail := uint64(st.Bavail) * bsize
	if avail > total {
		avail = total
	}

	return Usage{Total: total, Used: total - avail}, nil
}
