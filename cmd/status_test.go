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

package cmd

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/we-are-mono/wled/daemon"
)

// mockClient is a mock implementation of ClientInterface for testing.
type mockClient struct {
	sendFunc func(req daemon.Request) (*daemon.Response, error)
}

func (m *mockClient) Send(req daemon.Request) (*daemon.Response, error) {
	if m.sendFunc != nil {
		return m.sendFunc(req)
	}
	return &daemon.Response{Success: true, Message: "OK"}, nil
}

func TestExecuteStatus(t *testing.T) {
	statusData := map[string]interface{}{
		"on":          true,
		"bri":         float64(200),
		"ps":          float64(3),
		"pl":          float64(0),
		"frames":      float64(1234),
		"uptime":      "1m0s",
		"memory_used": float64(96),
		"seg": []interface{}{
			map[string]interface{}{
				"id": float64(0), "start": float64(0), "stop": float64(30), "rows": float64(1),
				"fx": float64(66), "effect": "Fire 2012", "sx": float64(128), "ix": float64(160), "pal": float64(0),
			},
		},
	}

	var buf bytes.Buffer
	c := &mockClient{sendFunc: func(req daemon.Request) (*daemon.Response, error) {
		assert.Equal(t, "status", req.Command)
		return &daemon.Response{Success: true, Data: statusData}, nil
	}}

	require.NoError(t, executeStatus(&buf, c, false))
	out := buf.String()
	assert.Contains(t, out, "Power:      on")
	assert.Contains(t, out, "Brightness: 200")
	assert.Contains(t, out, "Preset:     3")
	assert.Contains(t, out, "Frames:     1234")
	assert.Contains(t, out, "FX memory:  96 bytes")
	assert.Contains(t, out, "[0] 0-30 x1  fx 66 (Fire 2012)  sx 128 ix 160 pal 0")

	buf.Reset()
	require.NoError(t, executeStatus(&buf, c, true))
	assert.Contains(t, buf.String(), `"frames": 1234`)
}

func TestExecuteStatusPlaylist(t *testing.T) {
	var buf bytes.Buffer
	c := &mockClient{sendFunc: func(req daemon.Request) (*daemon.Response, error) {
		return &daemon.Response{Success: true, Data: map[string]interface{}{"on": false, "pl": 7, "ps": 2}}, nil
	}}

	require.NoError(t, executeStatus(&buf, c, false))
	assert.Contains(t, buf.String(), "Power:      off")
	assert.Contains(t, buf.String(), "Playlist:   7 (entry preset 2)")
	assert.NotContains(t, buf.String(), "Segments:")
}

func TestExecuteStatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		resp       *daemon.Response
		err        error
		wantErrMsg string
	}{
		{
			name:       "connection error",
			err:        fmt.Errorf("failed to connect to daemon"),
			wantErrMsg: "failed to connect",
		},
		{
			name:       "daemon error",
			resp:       &daemon.Response{Success: false, Error: "busy"},
			wantErrMsg: "busy",
		},
		{
			name:       "unparseable data",
			resp:       &daemon.Response{Success: true, Data: "not a status"},
			wantErrMsg: "unable to parse status data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &mockClient{sendFunc: func(req daemon.Request) (*daemon.Response, error) {
				return tt.resp, tt.err
			}}
			err := executeStatus(&bytes.Buffer{}, c, false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrMsg)
		})
	}
}
