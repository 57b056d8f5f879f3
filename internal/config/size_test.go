package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize_ZeroAndEmptyMeanUnlimited(t *testing.T) {
	n, err := ParseSize("")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = ParseSize("0")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestParseSize_DecimalSuffixes(t *testing.T) {
	n, err := ParseSize("50GB")
	require.NoError(t, err)
	assert.Equal(t, int64(50*gigabyte), n)
}

func TestParseSize_BinarySuffixes(t *testing.T) {
	n, err := ParseSize("500KiB")
	require.NoError(t, err)
	assert.Equal(t, int64(500*kibibyte), n)
}

func TestParseSize_BareNumberIsRawBytes(t *testing.T) {
	n, err := ParseSize("1024")
	require.NoError(t, err)
	assert.Equal(t, int64(1024), n)
}

func TestParseSize_NegativeIsError(t *testing.T) {
	_, err := ParseSize("-5")
	assert.Error(t, err)
}

func TestParseSize_GarbageIsError(t *testing.T) {
	_, err := ParseSize("banana")
	assert.Error(t, err)
}
