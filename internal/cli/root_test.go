package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nebulaai/nebula/internal/session"
	nebulaerr "github.com/nebulaai/nebula/pkg/errors"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, nebulaerr.ExitRejected, ExitCode(nebulaerr.ErrUserRejected))
	assert.Equal(t, nebulaerr.ExitSuccess, ExitCode(nil))
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand(t, newTestContext(newStubProvider()), "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "nebula connect")
	assert.Contains(t, out, "Available Commands:")
}

func TestConnectCommand(t *testing.T) {
	p := newStubProvider()
	out, err := executeCommand(t, newTestContext(p), "connect", "-o", "json")
	require.NoError(t, err)

	var snap session.Session
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, session.StatusConnected, snap.Status)
	assert.Equal(t, testAccount, snap.Account)
	assert.Equal(t, "0x1", snap.ChainID)
	assert.Equal(t, "1.0", snap.Balance)
}

func TestConnectCommand_ResumeWithoutAuthorization(t *testing.T) {
	p := newStubProvider()
	out, err := executeCommand(t, newTestContext(p), "connect", "--resume", "-o", "json")
	require.NoError(t, err)

	var snap session.Session
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, session.StatusDisconnected, snap.Status)

	// The --resume flag sticks across executions; reset for other tests.
	connectResume = false
}

func TestConnectCommand_Rejected(t *testing.T) {
	_, err := executeCommand(t, newTestContext(rejectingProvider()), "connect")
	require.Error(t, err)
	assert.ErrorIs(t, err, nebulaerr.ErrUserRejected)
}

func TestStatusCommand_Disconnected(t *testing.T) {
	out, err := executeCommand(t, newTestContext(newStubProvider()), "status", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:   disconnected")
}

func TestStatusCommand_AdoptsAuthorization(t *testing.T) {
	p := newStubProvider()
	p.authorized = []string{testAccount}

	out, err := executeCommand(t, newTestContext(p), "status", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:   connected")
	assert.Contains(t, out, testAccount)
	assert.Contains(t, out, "Ethereum")
}

func TestDisconnectCommand(t *testing.T) {
	out, err := executeCommand(t, newTestContext(newStubProvider()), "disconnect", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Wallet disconnected.")
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, newTestContext(newStubProvider()), "version", "-o", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "nebula dev")
}
