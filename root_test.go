package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rsyncsync/internal/config"
)

func TestResolveLogFormat_ExplicitProfileValueWins(t *testing.T) {
	orig := resolvedProfile
	defer func() { resolvedProfile = orig }()

	rp := &config.ResolvedProfile{}
	rp.Logging.LogFormat = "json"
	resolvedProfile = rp

	assert.Equal(t, "json", resolveLogFormat())
}

func TestResolveLogFormat_AutoWithNilProfileFallsBackToTerminalDetection(t *testing.T) {
	orig := resolvedProfile
	defer func() { resolvedProfile = orig }()

	resolvedProfile = nil

	// Under `go test`, stderr is not a terminal, so "auto" resolves to json.
	assert.Equal(t, "json", resolveLogFormat())
}

func TestBuildLogger_QuietOverridesConfigLevel(t *testing.T) {
	origProfile, origQuiet := resolvedProfile, flagQuiet
	defer func() { resolvedProfile, flagQuiet = origProfile, origQuiet }()

	rp := &config.ResolvedProfile{}
	rp.Logging.LogLevel = "debug"
	resolvedProfile = rp
	flagQuiet = true

	logger := buildLogger()
	assert.False(t, logger.Enabled(nil, -10)) // debug level disabled under quiet
}
