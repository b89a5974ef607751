package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinGatesAreUnitary(t *testing.T) {
	for _, kind := range []GateKind{GateH, GateX, GateY, GateZ, GateS, GateT} {
		t.Run(kind.String(), func(t *testing.T) {
			assert.True(t, kind.Matrix().IsUnitary(1e-12))
		})
	}
}

func TestRotationMatrices(t *testing.T) {
	for _, axis := range []Axis{AxisX, AxisY, AxisZ} {
		for _, theta := range []float64{0, math.Pi / 3, math.Pi, -2.5} {
			m, ok := RotationMatrix(axis, theta)
			require.True(t, ok)
			assert.True(t, m.IsUnitary(1e-12), "R%c(%g)", axis, theta)
		}
	}

	_, ok := RotationMatrix(Axis('W'), 1)
	assert.False(t, ok)
}

func TestIsUnitaryRejectsScaledMatrix(t *testing.T) {
	assert.False(t, Matrix{{2, 0}, {0, 2}}.IsUnitary(1e-9))
	assert.False(t, Matrix{}.IsUnitary(1e-9))
}

func TestParseGateKind(t *testing.T) {
	tests := []struct {
		in   string
		want GateKind
		ok   bool
	}{
		{"H", GateH, true},
		{"h", GateH, true},
		{" t ", GateT, true},
		{"s", GateS, true},
		{"CNOT", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseGateKind(tt.in)
		assert.Equal(t, tt.ok, ok, "ParseGateKind(%q)", tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, "ParseGateKind(%q)", tt.in)
		}
	}
}

func TestParseAxisAndErrorKind(t *testing.T) {
	for in, want := range map[string]Axis{"x": AxisX, "RY": AxisY, "rz": AxisZ} {
		got, ok := ParseAxis(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseAxis("rw")
	assert.False(t, ok)

	for in, want := range map[string]ErrorKind{"": ErrorNone, "bit-flip": ErrorBitFlip, "Phase": ErrorPhaseFlip} {
		got, ok := ParseErrorKind(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok = ParseErrorKind("depolarizing")
	assert.False(t, ok)
}

func TestQubitApplyRenormalizes(t *testing.T) {
	q := Qubit{Alpha: 3, Beta: 4}.Apply(Matrix{{1, 0}, {0, 1}})
	assert.InDelta(t, 0.6, real(q.Alpha), 1e-12)
	assert.InDelta(t, 0.8, real(q.Beta), 1e-12)
	assert.InDelta(t, 1, q.Norm(), 1e-12)
}

func TestQubitApplyKeepsErrorTag(t *testing.T) {
	q := Qubit{Alpha: 1, Error: ErrorPhaseFlip}.Apply(GateH.Matrix())
	assert.Equal(t, ErrorPhaseFlip, q.Error)
}

func TestBlochVector(t *testing.T) {
	tests := []struct {
		name string
		q    Qubit
		want BlochVector
	}{
		{"zero", ZeroQubit(), BlochVector{0, 0, 1}},
		{"one", OneQubit(), BlochVector{0, 0, -1}},
		{"plus", ZeroQubit().Apply(GateH.Matrix()), BlochVector{1, 0, 0}},
		{"minus", OneQubit().Apply(GateH.Matrix()), BlochVector{-1, 0, 0}},
		{"plus-i", ZeroQubit().Apply(GateH.Matrix()).Apply(GateS.Matrix()), BlochVector{0, 1, 0}},
		{"degenerate", Qubit{}, BlochVector{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.q.Bloch()
			assert.InDelta(t, tt.want.X, got.X, 1e-9, "x")
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9, "y")
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9, "z")
		})
	}
}

func TestFormatComplex(t *testing.T) {
	tests := []struct {
		in   Complex
		want string
	}{
		{1, "1"},
		{complex(1/math.Sqrt2, 0), "0.707"},
		{complex(0, -0.5), "-0.5i"},
		{complex(0.5, 0.5), "0.5+0.5i"},
		{complex(0.5, -0.5), "0.5-0.5i"},
		{complex(1e-15, 0), "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatComplex(tt.in))
	}
}
