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

package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/we-are-mono/wled/daemon/logger"
	"github.com/we-are-mono/wled/effect"
	"github.com/we-are-mono/wled/presets"
)

// ErrNoPlaylist is returned when a playlist command finds none running
var ErrNoPlaylist = errors.New("no playlist is running")

// PendingCloser is implemented by stores that close their file lazily
type PendingCloser interface {
	ClosePending() error
}

// LoopConfig holds what the frame loop drives
type LoopConfig struct {
	Strip     *effect.Strip
	Store     PendingCloser // optional
	Presets   *presets.Manager
	FrameRate int // frames per second
	Logger    logger.Logger
	Metrics   *Metrics
}

// Loop renders frames at a fixed rate and owns every change to the strip.
// All exported methods are safe for concurrent use.
type Loop struct {
	mu       sync.Mutex
	strip    *effect.Strip
	store    PendingCloser
	presets  *presets.Manager
	interval time.Duration
	log      logger.Logger
	metrics  *Metrics
	start    time.Time

	frames  uint64
	lastNow uint32
	preset  int

	// running playlist
	player    *presets.Player
	playlist  int
	nextEntry uint32
}

// NewLoop creates a frame loop. A frame rate outside 1..250 falls back to 42.
func NewLoop(cfg LoopConfig) *Loop {
	rate := cfg.FrameRate
	if rate < 1 || rate > 250 {
		rate = 42
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Loop{
		strip:    cfg.Strip,
		store:    cfg.Store,
		presets:  cfg.Presets,
		interval: time.Second / time.Duration(rate),
		log:      log.With(logger.Field{Key: "component", Value: "loop"}),
		metrics:  cfg.Metrics,
		start:    time.Now(),
	}
}

// Interval returns the time between frames
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// Run renders frames until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.log.Info("Frame loop started",
		logger.Field{Key: "interval_ms", Value: l.interval.Milliseconds()},
		logger.Field{Key: "leds", Value: l.strip.Length()})

	for {
		select {
		case <-ctx.Done():
			l.mu.Lock()
			l.closePending()
			l.mu.Unlock()
			l.log.Info("Frame loop stopped", logger.Field{Key: "frames", Value: l.Frames()})
			return nil
		case <-ticker.C:
			l.Frame(uint32(time.Since(l.start).Milliseconds()))
		}
	}
}

// Frame renders one frame at now milliseconds after start. A due playlist
// entry is applied first, and a store handle left open by a write is
// closed afterwards.
func (l *Loop) Frame(now uint32) {
	begin := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.lastNow = now
	if l.player != nil && now >= l.nextEntry {
		l.advance(now)
	}

	l.strip.Service(now)
	l.closePending()
	l.frames++

	l.metrics.frame(time.Since(begin).Seconds())
}

func (l *Loop) closePending() {
	if l.store == nil {
		return
	}
	if err := l.store.ClosePending(); err != nil {
		l.log.Warn("Failed to close object file", logger.Field{Key: "error", Value: err.Error()})
	}
}

// Frames returns the number of frames rendered
func (l *Loop) Frames() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.frames
}

// ApplyPreset applies preset id. A preset holding a playlist starts it on
// the next frame; any other preset stops a running playlist.
func (l *Loop) ApplyPreset(id int) (*presets.Preset, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.presets.Load(id)
	if err != nil {
		l.metrics.apply("manual", err)
		return nil, err
	}

	if p.Playlist != nil {
		l.player = presets.NewPlayer(*p.Playlist)
		l.playlist = id
		l.nextEntry = 0
		l.preset = id
		l.metrics.apply("manual", nil)
		l.log.Info("Playlist started", logger.Field{Key: "id", Value: id}, logger.Field{Key: "entries", Value: len(p.Playlist.Presets)})
		return p, nil
	}

	l.stopPlaylist()
	err = l.presets.Apply(l.strip, p)
	l.metrics.apply("manual", err)
	if err != nil {
		return nil, err
	}
	l.preset = id
	l.log.Info("Applied preset", logger.Field{Key: "id", Value: id}, logger.Field{Key: "name", Value: p.Name})
	return p, nil
}

// NextEntry skips to the next playlist entry immediately.
func (l *Loop) NextEntry() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.player == nil {
		return ErrNoPlaylist
	}
	l.advance(l.lastNow)
	return nil
}

// StopPlaylist stops a running playlist, leaving the current entry applied.
func (l *Loop) StopPlaylist() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.player == nil {
		return ErrNoPlaylist
	}
	l.stopPlaylist()
	return nil
}

func (l *Loop) stopPlaylist() {
	if l.player != nil {
		l.log.Info("Playlist stopped", logger.Field{Key: "id", Value: l.playlist})
	}
	l.player = nil
	l.playlist = 0
}

// advance applies the next playlist entry, or the end preset once the
// playlist is done. Nested playlists are skipped.
func (l *Loop) advance(now uint32) {
	id, dur, ok := l.player.Next()
	if !ok {
		end := l.player.End()
		l.stopPlaylist()
		if end > 0 {
			l.applyEntry(end)
		}
		return
	}

	l.nextEntry = now + uint32(dur.Milliseconds())
	l.applyEntry(id)
}

func (l *Loop) applyEntry(id int) {
	p, err := l.presets.Load(id)
	if err == nil && p.Playlist != nil {
		err = fmt.Errorf("preset %d is a playlist", id)
	}
	if err == nil {
		err = l.presets.Apply(l.strip, p)
	}
	l.metrics.apply("playlist", err)

	if err != nil {
		l.log.Warn("Skipping playlist entry", logger.Field{Key: "id", Value: id}, logger.Field{Key: "error", Value: err.Error()})
		return
	}
	l.preset = id
	l.log.Debug("Playlist entry applied", logger.Field{Key: "id", Value: id})
}

// SetPower switches the output on or off
func (l *Loop) SetPower(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.strip.SetPower(on)
}

// SetBrightness sets the master brightness
func (l *Loop) SetBrightness(b uint8) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.strip.SetBrightness(b)
}

// SetEffect switches segment id to mode.
func (l *Loop) SetEffect(id int, mode effect.ModeID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	seg, ok := l.strip.Segment(id)
	if !ok {
		return fmt.Errorf("segment %d does not exist", id)
	}
	return seg.SetMode(l.strip.Table(), mode)
}

// SegmentStatus describes one segment
type SegmentStatus struct {
	ID        int    `json:"id"`
	Start     int    `json:"start"`
	Stop      int    `json:"stop"`
	Rows      int    `json:"rows"`
	Mode      uint8  `json:"fx"`
	Effect    string `json:"effect"`
	Speed     uint8  `json:"sx"`
	Intensity uint8  `json:"ix"`
	Palette   uint8  `json:"pal"`
}

// Status is a snapshot of the loop and strip state
type Status struct {
	On         bool            `json:"on"`
	Brightness uint8           `json:"bri"`
	Preset     int             `json:"ps"`
	Playlist   int             `json:"pl"`
	Frames     uint64          `json:"frames"`
	Uptime     string          `json:"uptime"`
	MemoryUsed int             `json:"memory_used"`
	Segments   []SegmentStatus `json:"seg"`
}

// Status returns the current state
func (l *Loop) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := Status{
		On:         l.strip.Power(),
		Brightness: l.strip.Brightness(),
		Preset:     l.preset,
		Playlist:   l.playlist,
		Frames:     l.frames,
		Uptime:     time.Since(l.start).Truncate(time.Second).String(),
		MemoryUsed: l.strip.Allocator().Used(),
	}

	for _, seg := range l.strip.Segments() {
		ss := SegmentStatus{
			ID:        seg.ID,
			Start:     seg.Start,
			Stop:      seg.Stop,
			Rows:      seg.Rows,
			Mode:      uint8(seg.Mode()),
			Speed:     seg.Speed,
			Intensity: seg.Intensity,
			Palette:   seg.Palette,
		}
		if fx := seg.Effect(); fx != nil {
			ss.Effect = fx.Info().Name()
		}
		st.Segments = append(st.Segments, ss)
	}
	return st
}
