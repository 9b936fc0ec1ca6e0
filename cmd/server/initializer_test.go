package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeServer_BuildsAllComponents(t *testing.T) {
	components, err := InitializeServer()
	require.NoError(t, err)

	assert.NotNil(t, components.Config)
	assert.NotNil(t, components.Storage)
	assert.NotNil(t, components.Mirror)
	assert.NotNil(t, components.Reasoner)
	assert.NotNil(t, components.MCP)
}
