package transport

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransport(t *testing.T, calls *[]string) *SSHTransport {
	t.Helper()

	tp := NewSSHTransport(Endpoint{User: "u", Host: "h"}, "/remote", "", time.Second, time.Second)
	tp.runCommand = func(_ context.Context, name string, args ...string) (string, string, int, error) {
		*calls = append(*calls, name+" "+args[len(args)-1])
		return "", "", 0, nil
	}

	return tp
}

func TestPushFile_CreatesRemoteParentDirectoryBeforeRsync(t *testing.T) {
	var calls []string
	tp := newTestTransport(t, &calls)

	err := tp.PushFile(context.Background(), "/local/a.txt", "sub/dir/a.txt")
	require.NoError(t, err)

	require.Len(t, calls, 2)
	assert.Contains(t, calls[0], "mkdir -p -- '/remote/sub/dir'")
	assert.Contains(t, calls[1], "/remote/sub/dir/a.txt")
}
