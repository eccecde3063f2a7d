package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Version(t *testing.T) {
	cmd := GetRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "kviit version")
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmd := GetRootCommand()
	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["scan"])
	assert.True(t, names["markup"])
	assert.True(t, names["serve"])
}

func TestGetConfig_LoadsDefaults(t *testing.T) {
	cfg := GetConfig()
	require.NotNil(t, cfg)
	assert.NoError(t, cfg.Validate())
}
