package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionScript = `
stamp: das-7
user:
  mpid: 42
  identities:
    customer_id: cust-42
  attributes:
    tier: gold
steps:
  - event:
      name: signup
      attributes:
        plan: pro
  - event:
      name: scored
      flags:
        Optimizely.Value: ["40.1"]
  - commerce:
      action: purchase
      products:
        - name: Shoe
          price: 45.5
          quantity: 1
      transaction:
        id: tx-1
        revenue: 45.5
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func manyEvents(n int) string {
	var b strings.Builder
	b.WriteString("stamp: das-1\nsteps:\n")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "  - event:\n      name: e%02d\n", i)
	}
	return b.String()
}

func runCommand(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(append([]string{"--format", format}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	names := make([]string, 0)
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "replay")
	assert.Contains(t, names, "events")

	script := writeFile(t, "s.yaml", sessionScript)
	_, err := runCommand(t, "xml", "replay", "--script", script, "--pin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestParseScript(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s, err := ParseScript([]byte(sessionScript))
		require.NoError(t, err)
		require.Len(t, s.Steps, 3)
		assert.Equal(t, "signup", s.Steps[0].Name())
		assert.Equal(t, "commerce_event:purchase", s.Steps[2].Name())
		assert.Equal(t, []string{"40.1"}, s.Steps[1].Event.CustomFlags["Optimizely.Value"])
		require.NotNil(t, s.Steps[2].Commerce.Transaction.Revenue)
		assert.Equal(t, 45.5, *s.Steps[2].Commerce.Transaction.Revenue)

		h := s.Host()
		assert.Equal(t, "das-7", h.DeviceApplicationStamp())
		assert.Equal(t, int64(42), h.CurrentUser().ID())
	})

	t.Run("no user", func(t *testing.T) {
		s, err := ParseScript([]byte(manyEvents(1)))
		require.NoError(t, err)
		assert.Nil(t, s.Host().CurrentUser())
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseScript([]byte("stamp: x\n"))
		assert.ErrorIs(t, err, ErrEmptyScript)
	})

	t.Run("ambiguous step", func(t *testing.T) {
		_, err := ParseScript([]byte("steps:\n  - {}\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "step 1")
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseScript([]byte("steps: [\n"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadScript(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestReplayMissingScriptFlag(t *testing.T) {
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestReplayBuffersUntilReady(t *testing.T) {
	script := writeFile(t, "s.yaml", sessionScript)

	out, err := runCommand(t, "text", "replay", "--script", script, "--set", "projectId=p1", "--ready-after", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "step 1: signup (reported)")
	assert.Contains(t, out, "Delivered 4 records:")
	assert.Contains(t, out, "signup user=das-7")
	assert.Contains(t, out, "scored user=das-7 attrs={value=40.1}")
	assert.Contains(t, out, "revenue=4550")
	assert.Less(t, strings.Index(out, "  signup"), strings.Index(out, "  scored"))
}

func TestReplayUserIDFieldFromSettingsFile(t *testing.T) {
	script := writeFile(t, "s.yaml", sessionScript)
	settings := writeFile(t, "kit.yaml", "projectId: p1\nuserIdField: customerId\neventInterval: 30\n")

	out, err := runCommand(t, "json", "replay", "--script", script, "--settings", settings)
	require.NoError(t, err)

	var result struct {
		Delivered []struct {
			Name            string         `json:"name"`
			UserID          string         `json:"user_id"`
			EventAttributes map[string]any `json:"event_attributes"`
		} `json:"delivered"`
		Pending int `json:"pending"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Delivered, 4)
	for _, d := range result.Delivered {
		assert.Equal(t, "cust-42", d.UserID)
	}
	assert.Equal(t, "eCommerce - purchase - Total", result.Delivered[2].Name)
	assert.Equal(t, float64(4550), result.Delivered[2].EventAttributes["revenue"])
	assert.Zero(t, result.Pending)
}

func TestReplayReportsLostRecords(t *testing.T) {
	script := writeFile(t, "s.yaml", manyEvents(12))

	out, err := runCommand(t, "text", "replay", "--script", script, "--set", "projectId=p1", "--ready-after", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 records evicted, 10 still pending")
	assert.Contains(t, out, "Delivered 0 records:")
}

func TestReplayReadyAfterLastStepFlushesQueue(t *testing.T) {
	script := writeFile(t, "s.yaml", manyEvents(12))

	out, err := runCommand(t, "text", "replay", "--script", script, "--set", "projectId=p1", "--ready-after", "12")
	require.Error(t, err, "evictions are still reported")
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Delivered 10 records:")
	assert.NotContains(t, out, "e02 user")
	assert.Contains(t, out, "e03 user")
}

func TestReplayMissingProjectKey(t *testing.T) {
	script := writeFile(t, "s.yaml", sessionScript)

	_, err := runCommand(t, "text", "replay", "--script", script)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "projectId")
}

func TestReplayPinnedNeedsNoProjectKey(t *testing.T) {
	script := writeFile(t, "s.yaml", sessionScript)

	out, err := runCommand(t, "text", "replay", "--script", script, "--pin", "--ready-after", "-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Delivered 4 records:")
}

func TestReplayCapturesToDatabase(t *testing.T) {
	script := writeFile(t, "s.yaml", sessionScript)
	db := filepath.Join(t.TempDir(), "captured.db")

	_, err := runCommand(t, "text", "replay", "--script", script, "--set", "projectId=p1", "--db", db)
	require.NoError(t, err)

	out, err := runCommand(t, "text", "events", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "1 ")
	assert.Contains(t, out, "signup user=das-7")

	out, err = runCommand(t, "json", "events", "--db", db, "--name", "eCommerce - purchase - Total")
	require.NoError(t, err)

	var events []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "eCommerce - purchase - Total", events[0]["name"])
}

func TestEventsMissingDatabase(t *testing.T) {
	_, err := runCommand(t, "text", "events", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "x", errors.New("y"))))
	assert.Equal(t, "x: y", WrapExitError(ExitCommandError, "x", errors.New("y")).Error())
	assert.Equal(t, "x", NewExitError(ExitFailure, "x").Error())
}
