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
	"reflect"
	"sync"
)

// Allocator accounts effect data against a strip-wide byte budget. A nil
// Allocator never refuses.
type Allocator struct {
	mu    sync.Mutex
	limit int
	used  int
}

// NewAllocator creates an allocator that hands out at most limit bytes.
func NewAllocator(limit int) *Allocator {
	return &Allocator{limit: limit}
}

func (a *Allocator) reserve(n int) bool {
	if a == nil || n <= 0 {
		return true
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.used+n > a.limit {
		return false
	}
	a.used += n
	return true
}

func (a *Allocator) release(n int) {
	if a == nil || n <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.used = max(a.used-n, 0)
}

// Used returns the number of bytes currently handed out
func (a *Allocator) Used() int {
	if a == nil {
		return 0
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.used
}

// Limit returns the budget
func (a *Allocator) Limit() int {
	if a == nil {
		return 0
	}
	return a.limit
}

// Buffer is a resizable slice of effect state charged to an Allocator.
type Buffer[T any] struct {
	alloc *Allocator
	items []T
	bytes int
}

// NewBuffer creates an empty buffer charged to alloc.
func NewBuffer[T any](alloc *Allocator) Buffer[T] {
	return Buffer[T]{alloc: alloc}
}

// Resize makes the buffer hold exactly n zeroed or preserved items. When the
// allocator refuses, the buffer is cleared and Resize returns false; the
// caller skips its work and tries again on a later frame.
func (b *Buffer[T]) Resize(n int) bool {
	if n == len(b.items) && b.items != nil {
		return true
	}

	need := n * int(reflect.TypeFor[T]().Size())
	b.alloc.release(b.bytes)
	b.bytes = 0
	if !b.alloc.reserve(need) {
		b.items = nil
		return false
	}

	items := make([]T, n)
	copy(items, b.items)
	b.items = items
	b.bytes = need
	return true
}

// Items returns the backing slice
func (b *Buffer[T]) Items() []T { return b.items }

// Len returns the number of items
func (b *Buffer[T]) Len() int { return len(b.items) }

// Clear drops the items and returns their bytes to the allocator.
func (b *Buffer[T]) Clear() {
	b.alloc.release(b.bytes)
	b.bytes = 0
	b.items = nil
}

// BufferedEffect is the base for effects that keep one value per pixel.
type BufferedEffect[T any] struct {
	Base
	buffer Buffer[T]
}

// NewBufferedEffect creates the base with an empty buffer charged to the
// segment's allocator.
func NewBufferedEffect[T any](base Base) BufferedEffect[T] {
	return BufferedEffect[T]{Base: base, buffer: NewBuffer[T](base.seg.Allocator())}
}

// Prepare sizes the buffer to the segment. False means this frame must be
// skipped.
func (e *BufferedEffect[T]) Prepare() bool {
	return e.buffer.Resize(e.seg.Length())
}

// Values returns the per-pixel values for row y
func (e *BufferedEffect[T]) Values(y int) []T {
	w := e.seg.Width()
	items := e.buffer.Items()
	if len(items) < (y+1)*w {
		return nil
	}
	return items[y*w : (y+1)*w]
}

// Release returns the buffer to the allocator
func (e *BufferedEffect[T]) Release() {
	e.buffer.Clear()
}
