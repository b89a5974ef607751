package main

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"
)

type Complex = complex128

// Matrix is a 2×2 single-qubit operator in row-major order.
type Matrix [2][2]Complex

// Apply returns the matrix–vector product M·(alpha, beta).
func (m Matrix) Apply(alpha, beta Complex) (Complex, Complex) {
	return m[0][0]*alpha + m[0][1]*beta, m[1][0]*alpha + m[1][1]*beta
}

// Mul returns the matrix product m·o.
func (m Matrix) Mul(o Matrix) Matrix {
	var r Matrix
	for i := range 2 {
		for j := range 2 {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j]
		}
	}
	return r
}

// Dagger returns the conjugate transpose.
func (m Matrix) Dagger() Matrix {
	return Matrix{
		{cmplx.Conj(m[0][0]), cmplx.Conj(m[1][0])},
		{cmplx.Conj(m[0][1]), cmplx.Conj(m[1][1])},
	}
}

// IsUnitary reports whether M†M is the identity within tol.
// The engine never calls this on the apply path; front-ends use it to warn.
func (m Matrix) IsUnitary(tol float64) bool {
	p := m.Dagger().Mul(m)
	id := Matrix{{1, 0}, {0, 1}}
	for i := range 2 {
		for j := range 2 {
			if cmplx.Abs(p[i][j]-id[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

// GateKind enumerates the built-in single-qubit gates.
type GateKind int

const (
	GateH GateKind = iota
	GateX
	GateY
	GateZ
	GateS
	GateT
)

var gateNames = [...]string{"H", "X", "Y", "Z", "S", "T"}

func (g GateKind) String() string {
	if g < 0 || int(g) >= len(gateNames) {
		return fmt.Sprintf("GateKind(%d)", int(g))
	}
	return gateNames[g]
}

// ParseGateKind maps a gate name such as "H" or "t" to its kind.
func ParseGateKind(name string) (GateKind, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for i, n := range gateNames {
		if n == name {
			return GateKind(i), true
		}
	}
	return 0, false
}

var builtinGates = [...]Matrix{
	GateH: {
		{complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0)},
		{complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0)},
	},
	GateX: {{0, 1}, {1, 0}},
	GateY: {{0, -1i}, {1i, 0}},
	GateZ: {{1, 0}, {0, -1}},
	GateS: {{1, 0}, {0, 1i}},
	GateT: {{1, 0}, {0, complex(math.Cos(math.Pi/4), math.Sin(math.Pi/4))}},
}

// Matrix returns the operator for a built-in gate.
func (g GateKind) Matrix() Matrix {
	return builtinGates[g]
}

// Axis selects the Bloch-sphere axis of a rotation gate.
type Axis byte

const (
	AxisX Axis = 'X'
	AxisY Axis = 'Y'
	AxisZ Axis = 'Z'
)

// ParseAxis accepts "x", "RX", "ry", ... and returns the axis.
func ParseAxis(s string) (Axis, bool) {
	s = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "R")
	switch s {
	case "X":
		return AxisX, true
	case "Y":
		return AxisY, true
	case "Z":
		return AxisZ, true
	}
	return 0, false
}

// RotationMatrix builds R_axis(theta).
func RotationMatrix(axis Axis, theta float64) (Matrix, bool) {
	c := math.Cos(theta / 2)
	s := math.Sin(theta / 2)
	switch axis {
	case AxisX:
		return Matrix{
			{complex(c, 0), complex(0, -s)},
			{complex(0, -s), complex(c, 0)},
		}, true
	case AxisY:
		return Matrix{
			{complex(c, 0), complex(-s, 0)},
			{complex(s, 0), complex(c, 0)},
		}, true
	case AxisZ:
		return Matrix{
			{complex(c, -s), 0},
			{0, complex(c, s)},
		}, true
	}
	return Matrix{}, false
}

// magSq returns |z|².
func magSq(z Complex) float64 {
	return real(z)*real(z) + imag(z)*imag(z)
}

// ErrorKind tags a qubit that had a simulated error injected.
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorBitFlip
	ErrorPhaseFlip
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorBitFlip:
		return "bit-flip"
	case ErrorPhaseFlip:
		return "phase-flip"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseErrorKind accepts "bit-flip", "bitflip", "bit", "phase-flip", ...
func ParseErrorKind(s string) (ErrorKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ErrorNone, true
	case "bit-flip", "bitflip", "bit":
		return ErrorBitFlip, true
	case "phase-flip", "phaseflip", "phase":
		return ErrorPhaseFlip, true
	}
	return ErrorNone, false
}

// Qubit is α|0⟩ + β|1⟩ plus the error tag used by the correction workflow.
type Qubit struct {
	Alpha Complex
	Beta  Complex
	Error ErrorKind
}

// ZeroQubit returns |0⟩.
func ZeroQubit() Qubit {
	return Qubit{Alpha: 1, Beta: 0}
}

// OneQubit returns |1⟩.
func OneQubit() Qubit {
	return Qubit{Alpha: 0, Beta: 1}
}

// Probabilities returns (|α|², |β|²).
func (q Qubit) Probabilities() (prob0, prob1 float64) {
	return magSq(q.Alpha), magSq(q.Beta)
}

// Prob1 returns the probability of measuring |1⟩.
func (q Qubit) Prob1() float64 {
	return magSq(q.Beta)
}

// thresholdTolerance keeps rounding in |β|² from tipping an equal superposition
// over the one-half threshold; after H, |β|² is 0.5000000000000001.
const thresholdTolerance = 1e-9

// LeansOne reports whether |β|² is above one half by more than thresholdTolerance.
// Controlled gates and the correction vote read a qubit as |1⟩ only when it does.
func (q Qubit) LeansOne() bool {
	return q.Prob1() > 0.5+thresholdTolerance
}

// Norm returns |α|² + |β|².
func (q Qubit) Norm() float64 {
	return magSq(q.Alpha) + magSq(q.Beta)
}

// Apply multiplies the amplitudes by m and renormalizes. The error tag is kept.
// A degenerate product (both amplitudes zero) yields the zero vector.
func (q Qubit) Apply(m Matrix) Qubit {
	a, b := m.Apply(q.Alpha, q.Beta)
	norm := math.Sqrt(magSq(a) + magSq(b))
	if norm == 0 {
		return Qubit{Error: q.Error}
	}
	n := complex(norm, 0)
	return Qubit{Alpha: a / n, Beta: b / n, Error: q.Error}
}

// BlochVector holds Cartesian Bloch-sphere coordinates.
type BlochVector struct {
	X, Y, Z float64
}

// Bloch returns the qubit's Bloch-sphere coordinates. The zero vector maps to the origin.
func (q Qubit) Bloch() BlochVector {
	r := math.Sqrt(q.Norm())
	if r == 0 {
		return BlochVector{}
	}
	ratio := math.Min(cmplx.Abs(q.Alpha)/r, 1)
	theta := 2 * math.Acos(ratio)
	phi := cmplx.Phase(q.Beta) - cmplx.Phase(q.Alpha)
	return BlochVector{
		X: math.Sin(theta) * math.Cos(phi),
		Y: math.Sin(theta) * math.Sin(phi),
		Z: math.Cos(theta),
	}
}

// formatComplex renders an amplitude compactly, e.g. "0.707", "-0.5i", "0.5+0.5i".
func formatComplex(z Complex) string {
	re, im := cleanFloat(real(z)), cleanFloat(imag(z))
	switch {
	case im == 0:
		return fmt.Sprintf("%.3g", re)
	case re == 0:
		return fmt.Sprintf("%.3gi", im)
	case im < 0:
		return fmt.Sprintf("%.3g-%.3gi", re, -im)
	default:
		return fmt.Sprintf("%.3g+%.3gi", re, im)
	}
}

func cleanFloat(f float64) float64 {
	if math.Abs(f) < 1e-12 {
		return 0
	}
	return f
}
