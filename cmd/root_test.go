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
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRootCmdExists tests that root command is properly initialized
func TestRootCmdExists(t *testing.T) {
	assert.NotNil(t, rootCmd, "root command should exist")
	assert.Equal(t, "wled", rootCmd.Use)
	assert.Contains(t, rootCmd.Short, "WLED")
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("plugin"))
}

// TestRootCmdHasCommands tests that subcommands are registered
func TestRootCmdHasCommands(t *testing.T) {
	expectedCommands := []string{
		"status",
		"apply",
		"next",
		"stop",
		"power",
		"brightness",
		"effect",
		"preset",
		"store",
		"effects",
		"validate",
		"daemon",
		"plugin",
		"logs",
	}

	commands := rootCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	for _, expected := range expectedCommands {
		assert.Contains(t, commandNames, expected, "command %s should be registered", expected)
	}
}

func TestSubcommands(t *testing.T) {
	tests := []struct {
		path []string
	}{
		{[]string{"preset", "list"}},
		{[]string{"preset", "get"}},
		{[]string{"preset", "set"}},
		{[]string{"preset", "delete"}},
		{[]string{"store", "dump"}},
		{[]string{"store", "stats"}},
		{[]string{"effects", "list"}},
		{[]string{"effects", "preview"}},
		{[]string{"plugin", "list"}},
		{[]string{"plugin", "info"}},
		{[]string{"plugin", "serve"}},
		{[]string{"logs", "watch"}},
	}

	for _, tt := range tests {
		cmd, rest, err := rootCmd.Find(tt.path)
		if assert.NoError(t, err, "%v", tt.path) {
			assert.Empty(t, rest)
			assert.Equal(t, tt.path[len(tt.path)-1], cmd.Name())
		}
	}
}

func TestSetVersion(t *testing.T) {
	oldVersion, oldBuild := Version, BuildTime
	defer SetVersion(oldVersion, oldBuild)

	SetVersion("1.2.3", "today")
	assert.Equal(t, "1.2.3", rootCmd.Version)
	assert.Equal(t, "1.2.3", Version)
	assert.Equal(t, "today", BuildTime)
}

// TestExecuteFunction tests that Execute function exists (can't test actual execution without args)
func TestExecuteFunction(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = Execute
	})
}
