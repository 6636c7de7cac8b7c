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

func TestControlRequests(t *testing.T) {
	tests := []struct {
		name    string
		fn      controlFunc
		args    []string
		segment int
		wantReq daemon.Request
	}{
		{
			name:    "apply",
			fn:      executeApply,
			args:    []string{"5"},
			wantReq: daemon.Request{Command: "apply", ID: 5},
		},
		{
			name:    "next",
			fn:      executeNext,
			wantReq: daemon.Request{Command: "next"},
		},
		{
			name:    "stop",
			fn:      executeStop,
			wantReq: daemon.Request{Command: "stop-playlist"},
		},
		{
			name:    "power on",
			fn:      executePower,
			args:    []string{"on"},
			wantReq: daemon.Request{Command: "power", Value: true},
		},
		{
			name:    "power off",
			fn:      executePower,
			args:    []string{"off"},
			wantReq: daemon.Request{Command: "power", Value: false},
		},
		{
			name:    "brightness",
			fn:      executeBrightness,
			args:    []string{"255"},
			wantReq: daemon.Request{Command: "brightness", Value: uint8(255)},
		},
		{
			name:    "effect on segment",
			fn:      executeEffect,
			args:    []string{"66"},
			segment: 2,
			wantReq: daemon.Request{Command: "effect", Segment: 2, Value: uint8(66)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effectSegment = tt.segment
			defer func() { effectSegment = 0 }()

			var captured daemon.Request
			c := &mockClient{sendFunc: func(req daemon.Request) (*daemon.Response, error) {
				captured = req
				return &daemon.Response{Success: true, Message: "done"}, nil
			}}

			var buf bytes.Buffer
			require.NoError(t, tt.fn(&buf, c, tt.args))
			assert.Equal(t, tt.wantReq, captured)
			assert.Equal(t, "[OK] done\n", buf.String())
		})
	}
}

func TestControlInvalidArgs(t *testing.T) {
	tests := []struct {
		name       string
		fn         controlFunc
		args       []string
		wantErrMsg string
	}{
		{"apply non numeric", executeApply, []string{"abc"}, "invalid preset id"},
		{"apply reserved id", executeApply, []string{"0"}, "out of valid range"},
		{"apply too large", executeApply, []string{"251"}, "out of valid range"},
		{"power garbage", executePower, []string{"maybe"}, "power must be on or off"},
		{"brightness too large", executeBrightness, []string{"256"}, "between 0 and 255"},
		{"effect negative", executeEffect, []string{"-1"}, "between 0 and 255"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &mockClient{sendFunc: func(req daemon.Request) (*daemon.Response, error) {
				t.Fatalf("unexpected request %+v", req)
				return nil, nil
			}}
			err := tt.fn(&bytes.Buffer{}, c, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErrMsg)
		})
	}
}

func TestControlDaemonErrors(t *testing.T) {
	c := &mockClient{sendFunc: func(req daemon.Request) (*daemon.Response, error) {
		return &daemon.Response{Success: false, Error: "no playlist running"}, nil
	}}
	err := executeNext(&bytes.Buffer{}, c, nil)
	require.Error(t, err)
	assert.Equal(t, "no playlist running", err.Error())

	c = &mockClient{sendFunc: func(req daemon.Request) (*daemon.Response, error) {
		return nil, fmt.Errorf("failed to connect to daemon")
	}}
	err = executeApply(&bytes.Buffer{}, c, []string{"1"})
	assert.ErrorContains(t, err, "failed to connect")
}
