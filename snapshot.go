package main

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSnapshot is returned when a stored snapshot cannot be restored.
var ErrInvalidSnapshot = errors.New("invalid snapshot")

// ComplexNumber is the wire form of an amplitude.
type ComplexNumber struct {
	Real float64 `json:"real" yaml:"real"`
	Imag float64 `json:"imag" yaml:"imag"`
}

func toWire(z Complex) ComplexNumber {
	return ComplexNumber{Real: real(z), Imag: imag(z)}
}

func (c ComplexNumber) complex() Complex {
	return complex(c.Real, c.Imag)
}

type qubitWire struct {
	Alpha ComplexNumber `json:"alpha"`
	Beta  ComplexNumber `json:"beta"`
	Error string        `json:"error,omitempty"`
}

type customGateWire struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Matrix      [2][2]ComplexNumber `json:"matrix"`
}

type stateWire struct {
	Qubits                 []qubitWire      `json:"qubits"`
	History                []string         `json:"history"`
	CustomGates            []customGateWire `json:"customGates"`
	ErrorCorrectionEnabled bool             `json:"errorCorrectionEnabled"`
}

func matrixToWire(m Matrix) [2][2]ComplexNumber {
	var w [2][2]ComplexNumber
	for i := range 2 {
		for j := range 2 {
			w[i][j] = toWire(m[i][j])
		}
	}
	return w
}

func matrixFromWire(w [2][2]ComplexNumber) Matrix {
	var m Matrix
	for i := range 2 {
		for j := range 2 {
			m[i][j] = w[i][j].complex()
		}
	}
	return m
}

// MarshalJSON encodes the snapshot with amplitudes as {"real","imag"} objects
// and custom gates as a name-sorted list.
func (s QuantumState) MarshalJSON() ([]byte, error) {
	w := stateWire{
		Qubits:                 make([]qubitWire, len(s.Qubits)),
		History:                s.History,
		CustomGates:            make([]customGateWire, 0, len(s.CustomGates)),
		ErrorCorrectionEnabled: s.ErrorCorrectionEnabled,
	}
	if w.History == nil {
		w.History = []string{}
	}
	for i, q := range s.Qubits {
		w.Qubits[i] = qubitWire{Alpha: toWire(q.Alpha), Beta: toWire(q.Beta)}
		if q.Error != ErrorNone {
			w.Qubits[i].Error = q.Error.String()
		}
	}
	for _, name := range s.sortedGateNames() {
		g := s.CustomGates[name]
		w.CustomGates = append(w.CustomGates, customGateWire{
			Name:        g.Name,
			Description: g.Description,
			Matrix:      matrixToWire(g.Matrix),
		})
	}
	return json.Marshal(w)
}

// UnmarshalJSON restores a snapshot written by MarshalJSON.
func (s *QuantumState) UnmarshalJSON(data []byte) error {
	var w stateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if len(w.Qubits) == 0 {
		return fmt.Errorf("%w: no qubits", ErrInvalidSnapshot)
	}

	next := QuantumState{
		Qubits:                 make([]Qubit, len(w.Qubits)),
		History:                w.History,
		CustomGates:            make(map[string]CustomGate, len(w.CustomGates)),
		ErrorCorrectionEnabled: w.ErrorCorrectionEnabled,
	}
	if next.History == nil {
		next.History = []string{}
	}
	for i, q := range w.Qubits {
		kind, ok := ParseErrorKind(q.Error)
		if !ok {
			return fmt.Errorf("%w: qubit %d has unknown error tag %q", ErrInvalidSnapshot, i, q.Error)
		}
		next.Qubits[i] = Qubit{Alpha: q.Alpha.complex(), Beta: q.Beta.complex(), Error: kind}
	}
	for _, g := range w.CustomGates {
		if g.Name == "" {
			return fmt.Errorf("%w: custom gate without a name", ErrInvalidSnapshot)
		}
		next.CustomGates[g.Name] = CustomGate{
			Name:        g.Name,
			Description: g.Description,
			Matrix:      matrixFromWire(g.Matrix),
		}
	}
	*s = next
	return nil
}
