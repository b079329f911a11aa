package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	aliceHex = strings.Repeat("a1", 32)
	bobHex   = strings.Repeat("b0", 32)
)

// execute runs the root command with args and returns stdout, stderr and
// the command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "stake.db")
}

// mustRun executes args against db in JSON mode and decodes the data payload
// into v.
func mustRun(t *testing.T, db string, v any, args ...string) {
	t.Helper()
	args = append(args, "--db", db, "--format", "json")
	out, stderr, err := execute(t, args...)
	require.NoError(t, err, "stdout: %s\nstderr: %s", out, stderr)
	if v == nil {
		return
	}
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

// runFailing executes args against db in JSON mode, expects a failure and
// returns the decoded response.
func runFailing(t *testing.T, db string, args ...string) (CLIResponse, error) {
	t.Helper()
	args = append(args, "--db", db, "--format", "json")
	out, _, err := execute(t, args...)
	require.Error(t, err)
	var resp CLIResponse
	if out != "" {
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
	}
	return resp, err
}
