package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI runs a batch command against a private config and session database.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("log_level = \"error\"\nsession_db = \""+filepath.ToSlash(filepath.Join(dir, "s.db"))+"\"\n"), 0o600))

	var out bytes.Buffer
	err := run(append([]string{"--config", cfg}, args...), &out)
	return out.String(), err
}

func writeCircuit(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunHelp(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--help"}, &out))
	assert.Contains(t, out.String(), "Usage: qubitviz")
	assert.Contains(t, out.String(), "--seed")
}

func TestRunCircuitCommand(t *testing.T) {
	path := writeCircuit(t, "bell.qasm", "qreg q[2];\nx q[0];\ncx q[0], q[1];\nh q[1];\nh q[1];\n")

	out, err := runCLI(t, "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "2 qubits, 4 steps, 4 gates")
	assert.Contains(t, out, "Applied CNOT with control=0 and target=1")
	assert.Contains(t, out, "Consecutive H gates on qubit 1 cancel out")
	assert.Contains(t, out, "cx q[0],q[1];")
}

func TestRunReportsSkippedGates(t *testing.T) {
	path := writeCircuit(t, "noop.json", `{"qubits": 2, "gates": [{"type": "CNOT", "qubit": 1, "time": 0, "controls": [0]}]}`)

	out, err := runCLI(t, "run", path)
	require.NoError(t, err)
	assert.Contains(t, out, "step 0 CNOT on q[1]: no effect")
}

func TestQASMAndConvertCommands(t *testing.T) {
	src := writeCircuit(t, "c.yaml", "qubits: 1\ngates:\n  - {type: RX, qubit: 0, time: 0, params: [3.141592653589793]}\n")

	out, err := runCLI(t, "qasm", src)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "rx(pi) q[0];\n"), out)

	dst := filepath.Join(t.TempDir(), "c.json")
	_, err = runCLI(t, "convert", src, dst)
	require.NoError(t, err)
	c, err := LoadCircuitFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "RX", c.Gates[0].Type)
}

func TestRunRejectsUsageErrors(t *testing.T) {
	_, err := runCLI(t, "frobnicate")
	assert.ErrorContains(t, err, "unknown command")

	_, err = runCLI(t, "run")
	assert.Error(t, err)

	_, err = runCLI(t, "sessions", "show")
	assert.Error(t, err)
}

func TestSessionsCommand(t *testing.T) {
	out, err := runCLI(t, "sessions")
	require.NoError(t, err)
	assert.Contains(t, out, "no saved sessions")

	_, err = runCLI(t, "sessions", "rm", "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
