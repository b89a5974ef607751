package main

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotRoundTrip(t *testing.T) {
	e := NewEngine(WithState(initialStateWith(2)), WithRand(fixedRand(0.5)))
	e.ApplyGate("H", 0)
	e.AddCustomGate(CustomGate{Name: "SX", Description: "square root of X", Matrix: Matrix{
		{complex(0.5, 0.5), complex(0.5, -0.5)},
		{complex(0.5, -0.5), complex(0.5, 0.5)},
	}})
	e.ToggleErrorCorrection(true)
	e.ApplyError(1, ErrorPhaseFlip)
	want := e.State()

	data, err := json.Marshal(want)
	require.NoError(t, err)

	var got QuantumState
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)
}

func TestSnapshotWireFormat(t *testing.T) {
	s := InitialState()
	s.Qubits[0].Error = ErrorBitFlip

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"qubits": [{"alpha": {"real": 1, "imag": 0}, "beta": {"real": 0, "imag": 0}, "error": "bit-flip"}],
		"history": [],
		"customGates": [],
		"errorCorrectionEnabled": false
	}`, string(data))
}

func TestSnapshotRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"no qubits":    `{"qubits": []}`,
		"unknown tag":  `{"qubits": [{"alpha": {"real": 1}, "beta": {}, "error": "depolarizing"}]}`,
		"unnamed gate": `{"qubits": [{"alpha": {"real": 1}, "beta": {}}], "customGates": [{"matrix": [[{},{}],[{},{}]]}]}`,
		"wrong shape":  `{"qubits": "zero"}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			var s QuantumState
			assert.ErrorIs(t, json.Unmarshal([]byte(input), &s), ErrInvalidSnapshot)
		})
	}
}
