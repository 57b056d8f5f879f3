package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.5 kB", formatSize(1536))
	assert.Equal(t, "2.0 MB", formatSize(2_000_000))
}

func TestFormatTime_SameYearOmitsYear(t *testing.T) {
	now := time.Now()
	got := formatTime(now)
	assert.NotContains(t, got, now.Format("2006"))
}

func TestPrintTable_AlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, []string{"A", "BB"}, [][]string{{"x", "yy"}, {"long", "z"}})

	out := buf.String()
	assert.Contains(t, out, "A     BB")
	assert.Contains(t, out, "x     yy")
	assert.Contains(t, out, "long  z")
}
