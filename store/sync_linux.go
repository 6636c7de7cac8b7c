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

import "golang.org/x/sys/unix"

// fdatasync flushes file data without forcing a metadata update
func fdatasync(f File) error {
	if fd, ok := f.(interface{ Fd() uintptr }); ok {
		return unix.Fdatasync(int(fd.Fd()))
	}
	return f.Sync()
}
