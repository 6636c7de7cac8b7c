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

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts store decisions. A nil *Metrics records nothing.
type Metrics struct {
	Writes   *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Scans    *prometheus.CounterVec
}

// NewMetrics creates the store counters and registers them with reg (if non-nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wled",
			Subsystem: "store",
			Name:      "writes_total",
			Help:      "Object writes by the path taken through the file.",
		}, []string{"case"}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wled",
			Subsystem: "store",
			Name:      "failures_total",
			Help:      "Failed store operations by reason.",
		}, []string{"reason"}),
		Scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wled",
			Subsystem: "store",
			Name:      "space_scans_total",
			Help:      "Filler space lookups by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(m.Writes, m.Failures, m.Scans)
	}
	return m
}

func (m *Metrics) write(c string) {
	if m != nil {
		m.Writes.WithLabelValues(c).Inc()
	}
}

func (m *Metrics) failure(reason string) {
	if m != nil {
		m.Failures.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) scan(result string) {
	if m != nil {
		m.Scans.WithLabelValues(result).Inc()
	}
}
