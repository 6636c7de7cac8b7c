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

package plugins

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/we-are-mono/wled/store"
)

// StoreProvider serves a *store.Store over RPC.
type StoreProvider struct {
	Store   *store.Store
	DataDir string
	Files   []string // files reported by Status
	Version string
}

// StoreStatus is the JSON document returned by StoreProvider.Status
type StoreStatus struct {
	LastError     int                    `json:"last_error"`
	LastErrorName string                 `json:"last_error_name"`
	Files         map[string]store.Stats `json:"files,omitempty"`
	Errors        map[string]string      `json:"errors,omitempty"`
}

func (p *StoreProvider) Metadata(ctx context.Context) (MetadataResponse, error) {
	return MetadataResponse{
		Namespace:   "store",
		Version:     p.Version,
		Description: "JSON object store",
		DataDir:     p.DataDir,
		Files:       p.Files,
	}, nil
}

func (p *StoreProvider) ReadObject(ctx context.Context, file, key string, filterJSON []byte) ([]byte, error) {
	var filter store.Filter
	if len(filterJSON) > 0 {
		if err := json.Unmarshal(filterJSON, &filter); err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
	}

	var obj json.RawMessage
	if err := p.Store.ReadObject(file, key, &obj, filter); err != nil {
		return nil, err
	}
	return obj, nil
}

func (p *StoreProvider) WriteObject(ctx context.Context, file, key string, contentJSON []byte) error {
	if len(contentJSON) == 0 {
		return p.Store.WriteObject(file, key, nil)
	}
	return p.Store.WriteObject(file, key, json.RawMessage(contentJSON))
}

func (p *StoreProvider) Status(ctx context.Context) ([]byte, error) {
	code := p.Store.LastError()
	status := StoreStatus{
		LastError:     int(code),
		LastErrorName: code.String(),
	}

	for _, file := range p.Files {
		st, err := p.Store.Stats(file)
		if err != nil {
			if status.Errors == nil {
				status.Errors = make(map[string]string)
			}
			status.Errors[file] = err.Error()
			continue
		}
		if status.Files == nil {
			status.Files = make(map[string]store.Stats)
		}
		status.Files[file] = st
	}

	return json.Marshal(status)
}

// RemoteStore adapts a Provider to the object store calls used by the
// presets manager.
type RemoteStore struct {
	Provider Provider
}

// ReadObject decodes the remote object stored under key into dest.
func (r *RemoteStore) ReadObject(path, key string, dest any, filter store.Filter) error {
	var filterJSON []byte
	if filter != nil {
		var err error
		if filterJSON, err = json.Marshal(filter); err != nil {
			return fmt.Errorf("failed to encode filter: %w", err)
		}
	}

	obj, err := r.Provider.ReadObject(context.Background(), path, key, filterJSON)
	if err != nil {
		return err
	}
	return json.Unmarshal(obj, dest)
}

// WriteObject stores content under key remotely. Nil content deletes.
func (r *RemoteStore) WriteObject(path, key string, content any) error {
	var contentJSON []byte
	if content != nil {
		var err error
		if contentJSON, err = json.Marshal(content); err != nil {
			return fmt.Errorf("failed to encode object: %w", err)
		}
	}
	return r.Provider.WriteObject(context.Background(), path, key, contentJSON)
}
