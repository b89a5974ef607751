package main

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidAngle is returned for rotation angles that are neither numbers nor pi expressions.
var ErrInvalidAngle = errors.New("invalid angle")

// anglePattern matches one angle inside QASM parentheses: a number or a pi expression.
// Examples: "1.5707", "pi", "pi/2", "3*pi/4", "-pi", "-2*pi/3", "3.14e-2"
const anglePattern = `-?(?:\d*\.?\d*\*?pi(?:/\d+\.?\d*)?|\d+\.?\d*(?:[eE][+\-]?\d+)?)`

// piExprRegex splits "[-][k][*]pi[/d]" into sign, coefficient and denominator.
var piExprRegex = regexp.MustCompile(`^(-?)(\d*\.?\d*)\s*\*?\s*pi(?:\s*/\s*(\d+\.?\d*))?$`)

// parseAngle reads a rotation angle in radians. Besides plain numbers it accepts
// multiples and fractions of pi: "pi", "2pi", "3*pi/4", "-pi/2".
func parseAngle(s string) (float64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidAngle)
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}

	m := piExprRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAngle, s)
	}
	sign, coeff, denom := 1.0, 1.0, 1.0
	if m[1] == "-" {
		sign = -1
	}
	if m[2] != "" {
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: coefficient %q", ErrInvalidAngle, m[2])
		}
		coeff = v
	}
	if m[3] != "" {
		v, err := strconv.ParseFloat(m[3], 64)
		if err != nil || v == 0 {
			return 0, fmt.Errorf("%w: denominator %q", ErrInvalidAngle, m[3])
		}
		denom = v
	}
	return sign * coeff * math.Pi / denom, nil
}

// piDenominators are tried in order, so the first match is the reduced fraction.
var piDenominators = []int{1, 2, 3, 4, 6, 8}

// formatAngle prints theta as a pi fraction k*pi/d when it is one (|theta| ≤ 2π),
// otherwise in %g form. parseAngle reads both back.
func formatAngle(theta float64) string {
	for _, d := range piDenominators {
		k := math.Round(theta * float64(d) / math.Pi)
		if k == 0 || math.Abs(k) > float64(2*d) || math.Abs(theta-k*math.Pi/float64(d)) > 1e-10 {
			continue
		}
		var sb strings.Builder
		switch k {
		case 1:
		case -1:
			sb.WriteString("-")
		default:
			fmt.Fprintf(&sb, "%d*", int(k))
		}
		sb.WriteString("pi")
		if d != 1 {
			fmt.Fprintf(&sb, "/%d", d)
		}
		return sb.String()
	}
	return strconv.FormatFloat(theta, 'g', -1, 64)
}

// parseCustomGate parses "NAME a b c d" where a..d are the row-major matrix
// entries in strconv.ParseComplex syntax, e.g. "0.5+0.5i", "1", "-1i".
func parseCustomGate(input string) (CustomGate, error) {
	fields := strings.Fields(input)
	if len(fields) != 5 {
		return CustomGate{}, fmt.Errorf("expected a name and 4 matrix entries, got %d fields", len(fields))
	}
	name := fields[0]
	if _, builtin := ParseGateKind(name); builtin {
		return CustomGate{}, fmt.Errorf("%q is a built-in gate", name)
	}
	var m Matrix
	for i, f := range fields[1:] {
		z, err := strconv.ParseComplex(f, 128)
		if err != nil {
			return CustomGate{}, fmt.Errorf("entry %d: %w", i+1, err)
		}
		m[i/2][i%2] = z
	}
	return CustomGate{Name: name, Description: "user defined", Matrix: m}, nil
}
