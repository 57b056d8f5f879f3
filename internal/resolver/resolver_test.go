package resolver

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsyncsync/internal/manifest"
	"rsyncsync/internal/transport/faketransport"
)

func writeLocal(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	p := filepath.Join(dir, "conflicted.txt")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	return p
}

func TestResolve_LocalStrategyAlwaysPushes(t *testing.T) {
	r := New(StrategyLocal, false)
	localPath := writeLocal(t, "local content")
	fake := faketransport.New()
	fake.Seed("conflicted.txt", []byte("remote content"), 1000)

	out, err := r.Resolve(context.Background(), fake, localPath,
		manifest.Entry{Mtime: 100}, manifest.Entry{Mtime: 200}, "conflicted.txt")

	require.NoError(t, err)
	assert.Equal(t, manifest.Push, out.Action.Type)
	assert.False(t, out.Skipped)
}

func TestResolve_RemoteStrategyAlwaysPulls(t *testing.T) {
	r := New(StrategyRemote, false)
	localPath := writeLocal(t, "local content")
	fake := faketransport.New()

	out, err := r.Resolve(context.Background(), fake, localPath,
		manifest.Entry{Mtime: 100}, manifest.Entry{Mtime: 200}, "conflicted.txt")

	require.NoError(t, err)
	assert.Equal(t, manifest.Pull, out.Action.Type)
}

func TestResolve_SkipStrategyEmitsNoAction(t *testing.T) {
	r := New(StrategySkip, false)
	localPath := writeLocal(t, "local content")
	fake := faketransport.New()

	out, err := r.Resolve(context.Background(), fake, localPath,
		manifest.Entry{Mtime: 100}, manifest.Entry{Mtime: 200}, "conflicted.txt")

	require.NoError(t, err)
	assert.True(t, out.Skipped)
}

func TestResolve_NewestStrategyPicksGreaterMtime(t *testing.T) {
	r := New(StrategyNewest, false)
	localPath := writeLocal(t, "local content")
	fake := faketransport.New()

	out, err := r.Resolve(context.Background(), fake, localPath,
		manifest.Entry{Mtime: 500}, manifest.Entry{Mtime: 200}, "conflicted.txt")
	require.NoError(t, err)
	assert.Equal(t, manifest.Push, out.Action.Type, "local mtime is newer, should push")

	out, err = r.Resolve(context.Background(), fake, localPath,
		manifest.Entry{Mtime: 200}, manifest.Entry{Mtime: 500}, "conflicted.txt")
	require.NoError(t, err)
	assert.Equal(t, manifest.Pull, out.Action.Type, "remote mtime is newer, should pull")
}

func TestResolve_NewestStrategyTiesGoToLocal(t *testing.T) {
	r := New(StrategyNewest, false)
	localPath := writeLocal(t, "local content")
	fake := faketransport.New()

	out, err := r.Resolve(context.Background(), fake, localPath,
		manifest.Entry{Mtime: 500}, manifest.Entry{Mtime: 500}, "conflicted.txt")
	require.NoError(t, err)
	assert.Equal(t, manifest.Push, out.Action.Type)
}

func TestResolve_BackupStrategyAppliesNewestAndFlagsBackup(t *testing.T) {
	r := New(StrategyBackup, false)
	localPath := writeLocal(t, "local content")
	fake := faketransport.New()

	out, err := r.Resolve(context.Background(), fake, localPath,
		manifest.Entry{Mtime: 500}, manifest.Entry{Mtime: 200}, "conflicted.txt")
	require.NoError(t, err)
	assert.Equal(t, manifest.Push, out.Action.Type)
	assert.True(t, out.NeedsBackup)
}

func TestResolve_ChecksumVerifyReclassifiesIdenticalContentAsUnchanged(t *testing.T) {
	r := New(StrategyNewest, true)
	localPath := writeLocal(t, "identical content")
	fake := faketransport.New()
	fake.Seed("conflicted.txt", []byte("identical content"), 1000)

	out, err := r.Resolve(context.Background(), fake, localPath,
		manifest.Entry{Mtime: 100}, manifest.Entry{Mtime: 200}, "conflicted.txt")

	require.NoError(t, err)
	assert.Equal(t, manifest.Unchanged, out.Action.Type)
}

func TestResolve_ChecksumVerifyFallsThroughToStrategyWhenDifferent(t *testing.T) {
	r := New(StrategyNewest, true)
	localPath := writeLocal(t, "local content")
	fake := faketransport.New()
	fake.Seed("conflicted.txt", []byte("different content"), 1000)

	out, err := r.Resolve(context.Background(), fake, localPath,
		manifest.Entry{Mtime: 500}, manifest.Entry{Mtime: 200}, "conflicted.txt")

	require.NoError(t, err)
	assert.Equal(t, manifest.Push, out.Action.Type)
}

func TestResolve_UnknownStrategyErrors(t *testing.T) {
	r := New(Strategy("bogus"), false)
	localPath := writeLocal(t, "x")
	fake := faketransport.New()

	_, err := r.Resolve(context.Background(), fake, localPath,
		manifest.Entry{}, manifest.Entry{}, "conflicted.txt")
	assert.ErrorIs(t, err, ErrUnknownStrategy)
}
