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

package logger

import (
	"sync"
)

// Subscriber receives log entries as they are written
type Subscriber interface {
	OnLogEvent(entry *Entry) error
}

// SubscriberFunc adapts a function to Subscriber
type SubscriberFunc func(entry *Entry) error

// OnLogEvent calls f
func (f SubscriberFunc) OnLogEvent(entry *Entry) error {
	return f(entry)
}

type subscription struct {
	id  uint64
	sub Subscriber
}

// Emitter fans log entries out to subscribers
type Emitter struct {
	subscribers []subscription
	nextID      uint64
	mu          sync.RWMutex
}

// NewEmitter creates a new log event emitter
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Subscribe adds a subscriber to receive log events and returns a function
// that removes it again.
func (e *Emitter) Subscribe(sub Subscriber) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.nextID++
	id := e.nextID
	e.subscribers = append(e.subscribers, subscription{id: id, sub: sub})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, s := range e.subscribers {
			if s.id == id {
				e.subscribers = append(e.subscribers[:i:i], e.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Len returns the number of subscribers
func (e *Emitter) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subscribers)
}

// Emit delivers an entry to every subscriber in order. Subscribers must
// not log through the emitting logger.
func (e *Emitter) Emit(entry *Entry) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, s := range e.subscribers {
		_ = s.sub.OnLogEvent(entry)
	}
}
