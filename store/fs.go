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
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// File is the handle the store operates on. *os.File satisfies it.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
	Stat() (fs.FileInfo, error)
	Truncate(size int64) error
	Sync() error
}

// FS opens files for the store.
type FS interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
}

// OSFS opens files on the host filesystem, resolving relative names below Root.
type OSFS struct {
	Root string
}

// OpenFile opens the named file
func (o OSFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	path := name
	if o.Root != "" && !filepath.IsAbs(name) {
		path = filepath.Join(o.Root, name)
	}

	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Usage reports the capacity of the filesystem holding the store.
type Usage struct {
	Total uint64
	Used  uint64
}

// Free returns the number of bytes still available.
func (u Usage) Free() int64 {
	if u.Used >= u.Total {
		return 0
	}
	return int64(u.Total - u.Used)
}

// FSInfo reports filesystem usage before the store grows a file.
type FSInfo interface {
	Usage() (Usage, error)
}

// StaticUsage is an FSInfo with a fixed answer.
type StaticUsage Usage

// Usage returns the fixed usage
func (s StaticUsage) Usage() (Usage, error) {
	return Usage(s), nil
}

// DirQuota caps the data directory at Quota bytes. Used is the total size of
// the regular files below Path.
type DirQuota struct {
	Path  string
	Quota uint64
}

// Usage sums the file sizes below Path
func (d DirQuota) Usage() (Usage, error) {
	var used uint64
	err := filepath.WalkDir(d.Path, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		used += uint64(info.Size())
		return nil
	})
	if err != nil {
		return Usage{}, fmt.Errorf("scan %s: %w", d.Path, err)
	}
	return Usage{Total: d.Quota, Used: used}, nil
}
