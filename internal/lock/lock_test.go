package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireThenRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.lock")

	l, err := Acquire(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, l.Release())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireWritesOwnPID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	defer l.Release()

	pid, err := readPID(path)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), pid)
}

func TestAcquireCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "profile.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	defer l.Release()

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestReleaseOnNilLockIsNoop(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
}

func TestIsAliveReturnsTrueForCurrentProcess(t *testing.T) {
	assert.True(t, isAlive(os.Getpid()))
}

func TestIsAliveReturnsFalseForImplausiblePID(t *testing.T) {
	assert.False(t, isAlive(1<<30))
}

func TestSecondAcquireFailsWhileFirstIsHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.lock")

	l, err := Acquire(path)
	require.NoError(t, err)
	defer l.Release()

	_, err = Acquire(path)
	assert.ErrorIs(t, err, ErrLocked)
}
