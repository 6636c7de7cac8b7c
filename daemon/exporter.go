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
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/we-are-mono/wled/daemon/logger"
)

// Exporter serves the metrics of a registry over HTTP at /metrics
type Exporter struct {
	addr   string
	server *http.Server
}

// NewExporter creates an exporter for g listening on addr
func NewExporter(addr string, g prometheus.Gatherer) *Exporter {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	return &Exporter{
		addr: addr,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the HTTP handler serving /metrics
func (e *Exporter) Handler() http.Handler {
	return e.server.Handler
}

// Start serves until Stop is called.
func (e *Exporter) Start() error {
	logger.Info("Metrics exporter listening", logger.Field{Key: "addr", Value: e.addr})
	if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the HTTP server down
func (e *Exporter) Stop(ctx context.Context) error {
	return e.server.Shutdown(ctx)
}
