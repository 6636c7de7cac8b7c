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
	"errors"
	"io/fs"
	"net/rpc"

	"github.com/hashicorp/go-plugin"

	"github.com/we-are-mono/wled/store"
)

// Handshake is used to verify that client and server are compatible.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "WLED_PLUGIN",
	MagicCookieValue: "store",
}

// Provider is the interface served over RPC. Objects travel as JSON so the
// transport never needs to know their types.
type Provider interface {
	// Metadata returns plugin information
	Metadata(ctx context.Context) (MetadataResponse, error)

	// ReadObject returns the JSON object stored under key in file, pruned
	// by filterJSON when it is non-empty. An empty key returns the whole file.
	ReadObject(ctx context.Context, file, key string, filterJSON []byte) ([]byte, error)

	// WriteObject stores contentJSON under key in file. Empty content deletes.
	WriteObject(ctx context.Context, file, key string, contentJSON []byte) error

	// Status returns current status (response is JSON-encoded)
	Status(ctx context.Context) ([]byte, error)
}

// MetadataResponse contains plugin metadata
type MetadataResponse struct {
	Namespace   string   `json:"namespace"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	DataDir     string   `json:"data_dir"`
	Files       []string `json:"files,omitempty"` // Object files the plugin serves
}

// RPCPlugin is the go-plugin Plugin implementation
type RPCPlugin struct {
	plugin.Plugin
	Impl Provider
}

// Server returns the RPC server for this plugin
func (p *RPCPlugin) Server(broker *plugin.MuxBroker) (interface{}, error) {
	return &RPCServer{Impl: p.Impl}, nil
}

// Client returns the RPC client for this plugin
func (p *RPCPlugin) Client(broker *plugin.MuxBroker, client *rpc.Client) (interface{}, error) {
	return &RPCClient{client: client}, nil
}

// ============================================================================
// RPC Server Implementation
// ============================================================================

// Error codes carried next to error strings so that the client can restore
// the store sentinels.
const (
	codeNotFound = "not_found"
	codeQuota    = "quota"
	codeKey      = "invalid_key"
	codeReserved = "reserved_key"
	codeObject   = "not_object"
	codeCorrupt  = "corrupt"
	codeNotExist = "not_exist"
)

var codeErrors = map[string]error{
	codeNotFound: store.ErrNotFound,
	codeQuota:    store.ErrQuotaExceeded,
	codeKey:      store.ErrInvalidKey,
	codeReserved: store.ErrReservedKey,
	codeObject:   store.ErrNotObject,
	codeCorrupt:  store.ErrCorrupt,
	codeNotExist: fs.ErrNotExist,
}

func errorCode(err error) string {
	for code, target := range codeErrors {
		if errors.Is(err, target) {
			return code
		}
	}
	return ""
}

// RPCServer is the RPC server that wraps Provider
type RPCServer struct {
	Impl Provider
}

type MetadataArgs struct{}
type MetadataReply struct {
	Error    string
	Metadata MetadataResponse
}

func (s *RPCServer) Metadata(args *MetadataArgs, reply *MetadataReply) error {
	metadata, err := s.Impl.Metadata(context.Background())
	if err != nil {
		reply.Error = err.Error()
		return nil
	}
	reply.Metadata = metadata
	return nil
}

type ReadObjectArgs struct {
	File       string
	Key        string
	FilterJSON []byte
}
type ReadObjectReply struct {
	Error      string
	Code       string
	ObjectJSON []byte
}

func (s *RPCServer) ReadObject(args *ReadObjectArgs, reply *ReadObjectReply) error {
	objectJSON, err := s.Impl.ReadObject(context.Background(), args.File, args.Key, args.FilterJSON)
	if err != nil {
		reply.Error = err.Error()
		reply.Code = errorCode(err)
		return nil
	}
	reply.ObjectJSON = objectJSON
	return nil
}

type WriteObjectArgs struct {
	File        string
	Key         string
	ContentJSON []byte
}
type WriteObjectReply struct {
	Error string
	Code  string
}

func (s *RPCServer) WriteObject(args *WriteObjectArgs, reply *WriteObjectReply) error {
	err := s.Impl.WriteObject(context.Background(), args.File, args.Key, args.ContentJSON)
	if err != nil {
		reply.Error = err.Error()
		reply.Code = errorCode(err)
	}
	return nil
}

type StatusArgs struct{}
type StatusReply struct {
	Error      string
	StatusJSON []byte
}

func (s *RPCServer) Status(args *StatusArgs, reply *StatusReply) error {
	statusJSON, err := s.Impl.Status(context.Background())
	if err != nil {
		reply.Error = err.Error()
		return nil
	}
	reply.StatusJSON = statusJSON
	return nil
}

// ============================================================================
// RPC Client Implementation
// ============================================================================

// RPCClient is the RPC client that implements Provider
type RPCClient struct {
	client *rpc.Client
}

func (c *RPCClient) Metadata(ctx context.Context) (MetadataResponse, error) {
	var reply MetadataReply
	err := c.client.Call("Plugin.Metadata", &MetadataArgs{}, &reply)
	if err != nil {
		return MetadataResponse{}, err
	}
	if reply.Error != "" {
		return MetadataResponse{}, ErrFromString(reply.Error)
	}
	return reply.Metadata, nil
}

func (c *RPCClient) ReadObject(ctx context.Context, file, key string, filterJSON []byte) ([]byte, error) {
	var reply ReadObjectReply
	err := c.client.Call("Plugin.ReadObject", &ReadObjectArgs{
		File:       file,
		Key:        key,
		FilterJSON: filterJSON,
	}, &reply)
	if err != nil {
		return nil, err
	}
	if reply.Error != "" {
		return nil, ErrFromCode(reply.Code, reply.Error)
	}
	return reply.ObjectJSON, nil
}

func (c *RPCClient) WriteObject(ctx context.Context, file, key string, contentJSON []byte) error {
	var reply WriteObjectReply
	err := c.client.Call("Plugin.WriteObject", &WriteObjectArgs{
		File:        file,
		Key:         key,
		ContentJSON: contentJSON,
	}, &reply)
	if err != nil {
		return err
	}
	if reply.Error != "" {
		return ErrFromCode(reply.Code, reply.Error)
	}
	return nil
}

func (c *RPCClient) Status(ctx context.Context) ([]byte, error) {
	var reply StatusReply
	err := c.client.Call("Plugin.Status", &StatusArgs{}, &reply)
	if err != nil {
		return nil, err
	}
	if reply.Error != "" {
		return nil, ErrFromString(reply.Error)
	}
	return reply.StatusJSON, nil
}

// ============================================================================
// Helper Functions
// ============================================================================

// ErrFromString creates an error from a string
func ErrFromString(s string) error {
	if s == "" {
		return nil
	}
	return &rpcError{msg: s}
}

// ErrFromCode creates an error from a string that unwraps to the store
// sentinel named by code, if any.
func ErrFromCode(code, s string) error {
	if s == "" {
		return nil
	}
	return &rpcError{msg: s, err: codeErrors[code]}
}

type rpcError struct {
	msg string
	err error
}

func (e *rpcError) Error() string {
	return e.msg
}

func (e *rpcError) Unwrap() error {
	return e.err
}

// ServePlugin is a helper to serve a plugin using the generic protocol
func ServePlugin(impl Provider) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			"store": &RPCPlugin{Impl: impl},
		},
	})
}
