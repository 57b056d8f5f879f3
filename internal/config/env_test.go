package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadEnvOverrides_ReadsSetVariables(t *testing.T) {
	t.Setenv(EnvConfig, "/tmp/custom.toml")
	t.Setenv(EnvProfile, "work")

	got := ReadEnvOverrides()

	assert.Equal(t, "/tmp/custom.toml", got.ConfigPath)
	assert.Equal(t, "work", got.Profile)
}

func TestReadEnvOverrides_UnsetVariablesAreEmpty(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvProfile, "")

	got := ReadEnvOverrides()

	assert.Empty(t, got.ConfigPath)
	assert.Empty(t, got.Profile)
}
