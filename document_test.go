package main

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bellJSON = `{
  "qubits": 2,
  "steps": 2,
  "gates": [
    {"type": "X", "qubit": 0, "time": 0},
    {"type": "CNOT", "qubit": 1, "time": 1, "controls": [0]}
  ]
}`

const rotationYAML = `qubits: 1
gates:
  - type: RY
    qubit: 0
    time: 0
    params: [1.5707963267948966]
  - type: MEASURE
    qubit: 0
    time: 1
`

func TestFormatForPath(t *testing.T) {
	tests := map[string]DocumentFormat{
		"a.json":         FormatJSON,
		"dir/b.YAML":     FormatYAML,
		"c.yml":          FormatYAML,
		"/tmp/bell.qasm": FormatQASM,
	}
	for path, want := range tests {
		got, err := FormatForPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatForPath("circuit.txt")
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestDecodeCircuitJSON(t *testing.T) {
	c, err := DecodeCircuit([]byte(bellJSON), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 2, c.NumQubits)
	require.Len(t, c.Gates, 2)
	assert.Equal(t, []int{0}, c.Gates[1].Controls)
}

func TestDecodeCircuitYAML(t *testing.T) {
	c, err := DecodeCircuit([]byte(rotationYAML), FormatYAML)
	require.NoError(t, err)
	require.Len(t, c.Gates, 2)
	assert.Equal(t, "RY", c.Gates[0].Type)
	assert.InDelta(t, math.Pi/2, c.Gates[0].Params[0], 1e-12)
	assert.Equal(t, GateTypeMeasure, c.Gates[1].Type)
}

func TestDecodeCircuitQASM(t *testing.T) {
	c, err := DecodeCircuit([]byte("qreg q[2];\nx q[0];\ncx q[0], q[1];\n"), FormatQASM)
	require.NoError(t, err)
	assert.Equal(t, 2, c.NumQubits)
	assert.Equal(t, 2, c.Steps)
}

func TestDecodeCircuitRejects(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format DocumentFormat
	}{
		{"unknown field", `{"qubits": 1, "gates": [], "depth": 3}`, FormatJSON},
		{"missing gates", `{"qubits": 1}`, FormatJSON},
		{"zero qubits", `{"qubits": 0, "gates": []}`, FormatJSON},
		{"too many qubits", `{"qubits": 5000, "gates": []}`, FormatJSON},
		{"oversized qreg", "qreg q[1000000];\nh q[0];\n", FormatQASM},
		{"unknown gate type", `{"qubits": 1, "gates": [{"type": "U3", "qubit": 0, "time": 0}]}`, FormatJSON},
		{"qubit out of range", `{"qubits": 1, "gates": [{"type": "H", "qubit": 4, "time": 0}]}`, FormatJSON},
		{"cnot without control", "qubits: 2\ngates:\n  - {type: CNOT, qubit: 1, time: 0}\n", FormatYAML},
		{"bad yaml", "qubits: [", FormatYAML},
		{"bad qasm", "qreg q[1];\nfoo bar baz", FormatQASM},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCircuit([]byte(tt.data), tt.format)
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestCircuitFileRoundTrip(t *testing.T) {
	c := &Circuit{NumQubits: 3}
	c.AddGate("H", 0, 0)
	c.AddRotation(AxisZ, math.Pi/4, 1, 0)
	c.AddControlled(2, 1, 0, 1)
	c.AddSwap(0, 1, 2)

	dir := t.TempDir()
	for _, name := range []string{"c.json", "c.yaml", "c.qasm"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, SaveCircuitFile(path, c))

			got, err := LoadCircuitFile(path)
			require.NoError(t, err)
			assert.Equal(t, c.NumQubits, got.NumQubits)
			require.Len(t, got.Gates, len(c.Gates))
			assert.Equal(t, c.ToQASM(), got.ToQASM())
		})
	}
}

func TestLoadCircuitFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCircuitFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"qubits": -1, "gates": []}`), 0o644))
	_, err = LoadCircuitFile(bad)
	assert.ErrorIs(t, err, ErrInvalidDocument)
	assert.Contains(t, err.Error(), bad)
}
