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

// Package client sends requests to a running wled daemon.
package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"

	"github.com/we-are-mono/wled/daemon"
)

func dial() (net.Conn, error) {
	conn, err := net.Dial("unix", daemon.GetSocketPath())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon (is it running?): %w", err)
	}
	return conn, nil
}

func writeRequest(conn net.Conn, req daemon.Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	data = append(data, '\n')
	if _, err = conn.Write(data); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return nil
}

// Send issues one request and waits for the response.
func Send(req daemon.Request) (*daemon.Response, error) {
	conn, err := dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := writeRequest(conn, req); err != nil {
		return nil, err
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp daemon.Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &resp, nil
}

// StreamLogs subscribes to the daemon log stream and calls fn with each
// JSON-encoded entry until fn returns an error or the daemon hangs up.
func StreamLogs(filter daemon.LogFilter, fn func(entry []byte) error) error {
	conn, err := dial()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := writeRequest(conn, daemon.Request{Command: "logs-subscribe", LogFilter: &filter}); err != nil {
		return err
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}
	return scanner.Err()
}
