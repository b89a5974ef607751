package main

import (
	"maps"
	"slices"
)

// CustomGate is a user-registered single-qubit operator.
type CustomGate struct {
	Name        string
	Description string
	Matrix      Matrix
}

// MaxQubits bounds the register size accepted from circuit documents and config.
const MaxQubits = 1024

// QuantumState is an immutable snapshot of the simulation.
// Transitions build new snapshots; slices and maps are never shared mutably.
type QuantumState struct {
	Qubits                 []Qubit
	History                []string
	CustomGates            map[string]CustomGate
	ErrorCorrectionEnabled bool
}

// InitialState returns one |0⟩ qubit, empty history, no custom gates,
// error correction disabled.
func InitialState() QuantumState {
	return QuantumState{
		Qubits:      []Qubit{ZeroQubit()},
		History:     []string{},
		CustomGates: map[string]CustomGate{},
	}
}

// Clone deep-copies the snapshot.
func (s QuantumState) Clone() QuantumState {
	gates := maps.Clone(s.CustomGates)
	if gates == nil {
		gates = map[string]CustomGate{}
	}
	history := slices.Clone(s.History)
	if history == nil {
		history = []string{}
	}
	return QuantumState{
		Qubits:                 slices.Clone(s.Qubits),
		History:                history,
		CustomGates:            gates,
		ErrorCorrectionEnabled: s.ErrorCorrectionEnabled,
	}
}

// NumQubits returns the qubit count.
func (s QuantumState) NumQubits() int {
	return len(s.Qubits)
}

// LastAction returns the newest history entry, or "" when there is none.
func (s QuantumState) LastAction() string {
	if len(s.History) == 0 {
		return ""
	}
	return s.History[len(s.History)-1]
}

func (s QuantumState) validIndex(i int) bool {
	return i >= 0 && i < len(s.Qubits)
}

// withQubits returns a copy of s that owns a fresh qubit slice, plus an appended entry.
func (s QuantumState) withQubits(qubits []Qubit, entry string) QuantumState {
	next := s
	next.Qubits = qubits
	next.History = appendHistory(s.History, entry)
	return next
}

func appendHistory(h []string, entry string) []string {
	out := make([]string, len(h), len(h)+1)
	copy(out, h)
	return append(out, entry)
}

// sortedGateNames returns custom gate names in lexical order.
func (s QuantumState) sortedGateNames() []string {
	return slices.Sorted(maps.Keys(s.CustomGates))
}
