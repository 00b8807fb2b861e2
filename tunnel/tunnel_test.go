package tunnel

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagan/erolauncher/config"
)

func TestParseStateLine(t *testing.T) {
	tests := []struct {
		line  string
		state State
		ok    bool
	}{
		{"2024-06-01 00:00:00 Initialization Sequence Completed", StateConnected, true},
		{"AUTH: Received control message: AUTH_FAILED", StateAuthFailed, true},
		{"TCP: connect to [AF_INET]1.2.3.4:1194 failed: Connection refused", StateConnectionRefused, true},
		{"SIGUSR1[soft,ping-restart] received, process restarting", StateReconnecting, true},
		{"TUN/TAP device tun0 opened", "", false},
		{"", "", false},
	}
	for _, test := range tests {
		state, ok := parseStateLine(test.line)
		assert.Equal(t, test.ok, ok, "line: %q", test.line)
		assert.Equal(t, test.state, state, "line: %q", test.line)
	}
}

func TestWriteAuthFile(t *testing.T) {
	c := &Controller{cfg: &config.VpnConfig{Username: "alice", Password: "s3cret"}}
	name, err := c.writeAuthFile()
	require.NoError(t, err)
	require.NotEmpty(t, name)
	defer os.Remove(name)

	contents, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "alice\ns3cret\n", string(contents))
	if runtime.GOOS != "windows" {
		stat, err := os.Stat(name)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), stat.Mode().Perm())
	}

	c = &Controller{cfg: &config.VpnConfig{}}
	name, err = c.writeAuthFile()
	require.NoError(t, err)
	assert.Empty(t, name, "no auth file without credentials")
}

// Write a fake tunnel program that prints script contents then sleeps.
func fakeTunnel(t *testing.T, script string) *Controller {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("sh scripts")
	}
	binary := filepath.Join(t.TempDir(), "faketunnel")
	err := os.WriteFile(binary, []byte("#!/bin/sh\n"+script), 0755)
	require.NoError(t, err)
	c, err := NewController(&config.VpnConfig{Binary: binary})
	require.NoError(t, err)
	return c
}

func TestConnectAndDisconnect(t *testing.T) {
	c := fakeTunnel(t, `echo "Initialization Sequence Completed"`+"\nsleep 30\n")
	require.Equal(t, StateDisconnected, c.State())

	err := c.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateConnected, c.State())
	assert.NotZero(t, c.Status().Pid)

	// connecting again is a no-op
	require.NoError(t, c.Connect(context.Background()))

	require.NoError(t, c.Disconnect())
	assert.Equal(t, StateDisconnected, c.State())
	assert.Zero(t, c.Status().Pid)
	// disconnecting again is a no-op
	require.NoError(t, c.Disconnect())
}

func TestConnectAuthFailed(t *testing.T) {
	c := fakeTunnel(t, `echo "AUTH: Received control message: AUTH_FAILED"`+"\nsleep 30\n")
	err := c.Connect(context.Background())
	require.ErrorIs(t, err, ErrAuthFailed)
	assert.Equal(t, StateAuthFailed, c.State())
}

func TestConnectProcessExit(t *testing.T) {
	c := fakeTunnel(t, `echo "some fatal error"`+"\nexit 1\n")
	err := c.Connect(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrAuthFailed)
	require.Eventually(t, func() bool { return c.State() == StateError },
		time.Second*2, time.Millisecond*50)
}

func TestNewControllerMissingBinary(t *testing.T) {
	_, err := NewController(&config.VpnConfig{Binary: "erolauncher-no-such-binary"})
	require.ErrorIs(t, err, ErrExecutableNotFound)
}
