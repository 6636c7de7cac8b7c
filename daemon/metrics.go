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

import "github.com/prometheus/client_golang/prometheus"

// Metrics instruments the frame loop. A nil *Metrics records nothing.
type Metrics struct {
	Frames        prometheus.Counter
	FrameDuration prometheus.Histogram
	PresetApplies *prometheus.CounterVec
}

// NewMetrics creates the loop metrics and registers them with reg (if non-nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wled",
			Subsystem: "loop",
			Name:      "frames_total",
			Help:      "Frames rendered.",
		}),
		FrameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wled",
			Subsystem: "loop",
			Name:      "frame_duration_seconds",
			Help:      "Time spent rendering one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 10),
		}),
		PresetApplies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wled",
			Subsystem: "loop",
			Name:      "preset_applies_total",
			Help:      "Preset applications by source and result.",
		}, []string{"source", "result"}),
	}

	if reg != nil {
		reg.MustRegister(m.Frames, m.FrameDuration, m.PresetApplies)
	}
	return m
}

func (m *Metrics) frame(seconds float64) {
	if m != nil {
		m.Frames.Inc()
		m.FrameDuration.Observe(seconds)
	}
}

func (m *Metrics) apply(source string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.PresetApplies.WithLabelValues(source, result).Inc()
}
