package main

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidCircuit is returned for circuits that reference unknown gates or qubits.
var ErrInvalidCircuit = errors.New("invalid circuit")

// Pre-compiled regexps for QASM parsing.
var (
	singleGateRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\];?$`)
	singleGateParamRegex = regexp.MustCompile(`^(r[xyz])\s*\(\s*(` + anglePattern + `)\s*\)\s+q\[(\d+)\];?$`)
	twoQubitRegex        = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\];?$`)
	threeQubitRegex      = regexp.MustCompile(`^(\w+)\s+q\[(\d+)\],\s*q\[(\d+)\],\s*q\[(\d+)\];?$`)
	measureRegex         = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*\w+\[(\d+)\];?$`)
	qregRegex            = regexp.MustCompile(`^qreg\s+(\w+)\[(\d+)\];?$`)
)

// Circuit gate types.
const (
	GateTypeCNOT    = "CNOT"
	GateTypeToffoli = "TOFFOLI"
	GateTypeSwap    = "SWAP"
	GateTypeMeasure = "MEASURE"
)

// CircuitGate is one gate placed on the circuit layout.
//
// For CNOT and TOFFOLI, Qubit is the target and Controls holds the control
// qubits. For SWAP, Qubit and Targets[0] are exchanged. Rotation gates
// (RX, RY, RZ) carry their angle in Params[0].
type CircuitGate struct {
	Type     string    `json:"type" yaml:"type"`
	Qubit    int       `json:"qubit" yaml:"qubit"`
	Time     int       `json:"time" yaml:"time"`
	Controls []int     `json:"controls,omitempty" yaml:"controls,omitempty"`
	Targets  []int     `json:"targets,omitempty" yaml:"targets,omitempty"`
	Params   []float64 `json:"params,omitempty" yaml:"params,omitempty"`
}

// Circuit is the editor's layout document.
type Circuit struct {
	NumQubits int           `json:"qubits" yaml:"qubits"`
	Steps     int           `json:"steps" yaml:"steps"`
	Gates     []CircuitGate `json:"gates" yaml:"gates"`
}

// AddGate places a single-qubit gate.
func (c *Circuit) AddGate(gateType string, qubit, time int) {
	c.add(CircuitGate{Type: strings.ToUpper(gateType), Qubit: qubit, Time: time})
}

// AddRotation places an RX/RY/RZ gate with its angle.
func (c *Circuit) AddRotation(axis Axis, theta float64, qubit, time int) {
	c.add(CircuitGate{Type: "R" + string(axis), Qubit: qubit, Time: time, Params: []float64{theta}})
}

// AddControlled places a CNOT (one control) or TOFFOLI (two controls).
func (c *Circuit) AddControlled(target, time int, controls ...int) {
	gateType := GateTypeCNOT
	if len(controls) > 1 {
		gateType = GateTypeToffoli
	}
	c.add(CircuitGate{Type: gateType, Qubit: target, Time: time, Controls: slices.Clone(controls)})
}

// AddSwap places a SWAP between two qubits.
func (c *Circuit) AddSwap(a, b, time int) {
	c.add(CircuitGate{Type: GateTypeSwap, Qubit: a, Time: time, Targets: []int{b}})
}

// AddMeasure places a measurement.
func (c *Circuit) AddMeasure(qubit, time int) {
	c.add(CircuitGate{Type: GateTypeMeasure, Qubit: qubit, Time: time})
}

func (c *Circuit) add(g CircuitGate) {
	c.Gates = append(c.Gates, g)
	if g.Time >= c.Steps {
		c.Steps = g.Time + 1
	}
}

// qubits returns every qubit index the gate touches.
func (g CircuitGate) qubits() []int {
	qs := []int{g.Qubit}
	qs = append(qs, g.Controls...)
	return append(qs, g.Targets...)
}

// RemoveGateAt removes any gate at the given time that touches qubit.
func (c *Circuit) RemoveGateAt(time, qubit int) {
	c.Gates = slices.DeleteFunc(c.Gates, func(g CircuitGate) bool {
		return g.Time == time && slices.Contains(g.qubits(), qubit)
	})
}

// ordered returns the gates sorted by time; gates sharing a time keep insertion order.
func (c *Circuit) ordered() []CircuitGate {
	gates := slices.Clone(c.Gates)
	slices.SortStableFunc(gates, func(a, b CircuitGate) int {
		return a.Time - b.Time
	})
	return gates
}

// Validate checks gate types, arity and qubit indices.
func (c *Circuit) Validate() error {
	if c.NumQubits < 1 {
		return fmt.Errorf("%w: need at least one qubit, got %d", ErrInvalidCircuit, c.NumQubits)
	}
	if c.NumQubits > MaxQubits {
		return fmt.Errorf("%w: %d qubits exceeds the limit of %d", ErrInvalidCircuit, c.NumQubits, MaxQubits)
	}
	for i, g := range c.Gates {
		if g.Time < 0 {
			return fmt.Errorf("%w: gate %d has negative time %d", ErrInvalidCircuit, i, g.Time)
		}
		for _, q := range g.qubits() {
			if q < 0 || q >= c.NumQubits {
				return fmt.Errorf("%w: gate %d (%s) references qubit %d outside q[0..%d]",
					ErrInvalidCircuit, i, g.Type, q, c.NumQubits-1)
			}
		}
		switch g.Type {
		case GateTypeCNOT:
			if len(g.Controls) != 1 {
				return fmt.Errorf("%w: gate %d: CNOT needs 1 control, got %d", ErrInvalidCircuit, i, len(g.Controls))
			}
		case GateTypeToffoli:
			if len(g.Controls) != 2 {
				return fmt.Errorf("%w: gate %d: TOFFOLI needs 2 controls, got %d", ErrInvalidCircuit, i, len(g.Controls))
			}
		case GateTypeSwap:
			if len(g.Targets) != 1 {
				return fmt.Errorf("%w: gate %d: SWAP needs 1 target, got %d", ErrInvalidCircuit, i, len(g.Targets))
			}
		case GateTypeMeasure:
		case "RX", "RY", "RZ":
			if len(g.Params) != 1 {
				return fmt.Errorf("%w: gate %d: %s needs 1 angle", ErrInvalidCircuit, i, g.Type)
			}
		default:
			if _, ok := ParseGateKind(g.Type); !ok {
				return fmt.Errorf("%w: gate %d has unknown type %q", ErrInvalidCircuit, i, g.Type)
			}
		}
	}
	return nil
}

// ToQASM generates OpenQASM 2.0 with one line per gate in time order.
func (c *Circuit) ToQASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", c.NumQubits)
	fmt.Fprintf(&sb, "creg c[%d];\n\n", c.NumQubits)

	for _, g := range c.ordered() {
		switch g.Type {
		case GateTypeCNOT:
			if len(g.Controls) > 0 {
				fmt.Fprintf(&sb, "cx q[%d],q[%d];\n", g.Controls[0], g.Qubit)
			}
		case GateTypeToffoli:
			if len(g.Controls) > 1 {
				fmt.Fprintf(&sb, "ccx q[%d],q[%d],q[%d];\n", g.Controls[0], g.Controls[1], g.Qubit)
			}
		case GateTypeSwap:
			if len(g.Targets) > 0 {
				fmt.Fprintf(&sb, "swap q[%d],q[%d];\n", g.Qubit, g.Targets[0])
			}
		case GateTypeMeasure:
			fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", g.Qubit, g.Qubit)
		case "RX", "RY", "RZ":
			if len(g.Params) > 0 {
				fmt.Fprintf(&sb, "%s(%s) q[%d];\n", strings.ToLower(g.Type), formatAngle(g.Params[0]), g.Qubit)
			}
		default:
			if _, ok := ParseGateKind(g.Type); ok {
				fmt.Fprintf(&sb, "%s q[%d];\n", strings.ToLower(g.Type), g.Qubit)
			}
		}
	}
	return sb.String()
}

// ParseQASM parses the subset written by ToQASM. Gates are layered as soon as
// possible: each gate lands one step after the latest gate on any qubit it touches.
func ParseQASM(qasm string) (*Circuit, error) {
	c := &Circuit{}
	lastTime := map[int]int{}
	place := func(g CircuitGate) {
		t := 0
		for _, q := range g.qubits() {
			if last, ok := lastTime[q]; ok && last+1 > t {
				t = last + 1
			}
		}
		g.Time = t
		for _, q := range g.qubits() {
			lastTime[q] = t
		}
		c.add(g)
	}

	for n, line := range strings.Split(qasm, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case line == "", strings.HasPrefix(line, "//"):
			continue
		case strings.HasPrefix(line, "OPENQASM"), strings.HasPrefix(line, "include"),
			strings.HasPrefix(line, "creg"), strings.HasPrefix(line, "barrier"):
			continue
		}

		if matches := qregRegex.FindStringSubmatch(line); matches != nil {
			size, _ := strconv.Atoi(matches[2])
			c.NumQubits = size
			continue
		}

		if matches := measureRegex.FindStringSubmatch(lower); matches != nil {
			q, _ := strconv.Atoi(matches[1])
			place(CircuitGate{Type: GateTypeMeasure, Qubit: q})
			continue
		}

		if matches := singleGateParamRegex.FindStringSubmatch(lower); matches != nil {
			theta, err := parseAngle(matches[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: %w", n+1, ErrInvalidCircuit, err)
			}
			q, _ := strconv.Atoi(matches[3])
			place(CircuitGate{Type: strings.ToUpper(matches[1]), Qubit: q, Params: []float64{theta}})
			continue
		}

		if matches := threeQubitRegex.FindStringSubmatch(lower); matches != nil {
			if matches[1] != "ccx" {
				return nil, fmt.Errorf("line %d: unsupported gate %q: %w", n+1, matches[1], ErrInvalidCircuit)
			}
			c1, _ := strconv.Atoi(matches[2])
			c2, _ := strconv.Atoi(matches[3])
			t, _ := strconv.Atoi(matches[4])
			place(CircuitGate{Type: GateTypeToffoli, Qubit: t, Controls: []int{c1, c2}})
			continue
		}

		if matches := twoQubitRegex.FindStringSubmatch(lower); matches != nil {
			q1, _ := strconv.Atoi(matches[2])
			q2, _ := strconv.Atoi(matches[3])
			switch matches[1] {
			case "cx":
				place(CircuitGate{Type: GateTypeCNOT, Qubit: q2, Controls: []int{q1}})
			case "swap":
				place(CircuitGate{Type: GateTypeSwap, Qubit: q1, Targets: []int{q2}})
			default:
				return nil, fmt.Errorf("line %d: unsupported gate %q: %w", n+1, matches[1], ErrInvalidCircuit)
			}
			continue
		}

		if matches := singleGateRegex.FindStringSubmatch(lower); matches != nil {
			kind, ok := ParseGateKind(matches[1])
			if !ok {
				return nil, fmt.Errorf("line %d: unsupported gate %q: %w", n+1, matches[1], ErrInvalidCircuit)
			}
			q, _ := strconv.Atoi(matches[2])
			place(CircuitGate{Type: kind.String(), Qubit: q})
			continue
		}

		return nil, fmt.Errorf("line %d: cannot parse %q: %w", n+1, line, ErrInvalidCircuit)
	}

	if c.NumQubits == 0 {
		for q := range lastTime {
			c.NumQubits = max(c.NumQubits, q+1)
		}
	}
	return c, nil
}

// Intents translates the circuit, in time order, into engine intents.
// Gates with missing controls, targets or angles are skipped; Validate reports them.
func (c *Circuit) Intents() []Intent {
	var out []Intent
	for _, g := range c.ordered() {
		switch g.Type {
		case GateTypeCNOT:
			if len(g.Controls) == 1 {
				out = append(out, ApplyCNOTIntent{Control: g.Controls[0], Target: g.Qubit})
			}
		case GateTypeToffoli:
			if len(g.Controls) == 2 {
				out = append(out, ApplyToffoliIntent{Control1: g.Controls[0], Control2: g.Controls[1], Target: g.Qubit})
			}
		case GateTypeSwap:
			if len(g.Targets) == 1 {
				out = append(out, ApplySwapIntent{Qubit1: g.Qubit, Qubit2: g.Targets[0]})
			}
		case GateTypeMeasure:
			out = append(out, MeasureIntent{Qubit: g.Qubit})
		case "RX", "RY", "RZ":
			if len(g.Params) == 1 {
				axis, _ := ParseAxis(g.Type)
				out = append(out, ApplyRotationIntent{Axis: axis, Theta: g.Params[0], Qubit: g.Qubit})
			}
		default:
			out = append(out, ApplyGateIntent{Gate: g.Type, Qubit: g.Qubit})
		}
	}
	return out
}

// Run validates the circuit, grows the engine's register to NumQubits and
// replays every gate. It returns the final snapshot and one outcome per gate.
func (c *Circuit) Run(e *Engine) (QuantumState, []Outcome, error) {
	if err := c.Validate(); err != nil {
		return e.State(), nil, err
	}
	e.Widen(c.NumQubits)
	outcomes := make([]Outcome, 0, len(c.Gates))
	for _, in := range c.Intents() {
		_, o := e.Dispatch(in)
		outcomes = append(outcomes, o)
	}
	return e.State(), outcomes, nil
}

// Suggestions lists simplifications: adjacent H gates on a qubit cancel, and so
// do adjacent CNOTs with the same control and target.
func (c *Circuit) Suggestions() []string {
	var out []string
	lastOn := map[int]CircuitGate{}
	for _, g := range c.ordered() {
		qs := g.qubits()
		switch g.Type {
		case "H":
			if prev, ok := lastOn[g.Qubit]; ok && prev.Type == "H" {
				out = append(out, fmt.Sprintf("Consecutive H gates on qubit %d cancel out (steps %d and %d)", g.Qubit, prev.Time, g.Time))
			}
		case GateTypeCNOT:
			if len(g.Controls) != 1 {
				break
			}
			prevT, okT := lastOn[g.Qubit]
			prevC, okC := lastOn[g.Controls[0]]
			if okT && okC && prevT.Type == GateTypeCNOT && prevT.Time == prevC.Time &&
				prevT.Qubit == g.Qubit && slices.Equal(prevT.Controls, g.Controls) {
				out = append(out, fmt.Sprintf("Consecutive CNOT gates with control=%d and target=%d cancel out (steps %d and %d)",
					g.Controls[0], g.Qubit, prevT.Time, g.Time))
			}
		}
		for _, q := range qs {
			lastOn[q] = g
		}
	}
	return out
}
