package main

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestToQASMSingleGate(t *testing.T) {
	c := Circuit{NumQubits: 1}
	c.AddGate("h", 0, 0)

	want := "OPENQASM 2.0;\ninclude \"qelib1.inc\";\n\nqreg q[1];\ncreg c[1];\n\nh q[0];\n"
	if got := c.ToQASM(); got != want {
		t.Errorf("ToQASM() =\n%s\nwant\n%s", got, want)
	}
}

func TestRoundTripQASM(t *testing.T) {
	c := Circuit{NumQubits: 3}
	c.AddGate("H", 0, 0)
	c.AddControlled(1, 1, 0)
	c.AddControlled(2, 2, 0, 1)
	c.AddSwap(0, 2, 3)
	c.AddMeasure(1, 4)

	qasm := c.ToQASM()
	fmt.Printf("Round-trip QASM output:\n%s\n", qasm)

	for _, line := range []string{"cx q[0],q[1];", "ccx q[0],q[1],q[2];", "swap q[0],q[2];", "measure q[1] -> c[1];"} {
		if !strings.Contains(qasm, line) {
			t.Errorf("expected %q in QASM, got:\n%s", line, qasm)
		}
	}

	c2, err := ParseQASM(qasm)
	if err != nil {
		t.Fatalf("ParseQASM error: %v", err)
	}
	if c2.NumQubits != 3 {
		t.Errorf("round-trip: expected 3 qubits, got %d", c2.NumQubits)
	}
	if len(c2.Gates) != 5 {
		t.Fatalf("round-trip: expected 5 gates, got %d", len(c2.Gates))
	}

	cx := c2.Gates[1]
	if cx.Type != GateTypeCNOT || cx.Qubit != 1 || len(cx.Controls) != 1 || cx.Controls[0] != 0 {
		t.Errorf("gate 1: expected CNOT 0->1, got %+v", cx)
	}
	ccx := c2.Gates[2]
	if ccx.Type != GateTypeToffoli || ccx.Qubit != 2 || len(ccx.Controls) != 2 {
		t.Errorf("gate 2: expected TOFFOLI 0,1->2, got %+v", ccx)
	}
	swap := c2.Gates[3]
	if swap.Type != GateTypeSwap || swap.Qubit != 0 || swap.Targets[0] != 2 {
		t.Errorf("gate 3: expected SWAP 0<->2, got %+v", swap)
	}
	if m := c2.Gates[4]; m.Type != GateTypeMeasure || m.Qubit != 1 {
		t.Errorf("gate 4: expected MEASURE q[1], got %+v", m)
	}
	if err := c2.Validate(); err != nil {
		t.Errorf("round-trip circuit should validate: %v", err)
	}
}

func TestPiParamQASMRoundTrip(t *testing.T) {
	c := Circuit{NumQubits: 2}
	c.AddRotation(AxisX, math.Pi/2, 0, 0)
	c.AddRotation(AxisY, 3*math.Pi/4, 1, 1)
	c.AddRotation(AxisZ, -math.Pi, 0, 2)

	qasm := c.ToQASM()
	fmt.Printf("Pi round-trip QASM:\n%s\n", qasm)

	if !strings.Contains(qasm, "rx(pi/2)") {
		t.Errorf("expected 'rx(pi/2)' in QASM, got:\n%s", qasm)
	}
	if !strings.Contains(qasm, "ry(3*pi/4)") {
		t.Errorf("expected 'ry(3*pi/4)' in QASM, got:\n%s", qasm)
	}
	if !strings.Contains(qasm, "rz(-pi)") {
		t.Errorf("expected 'rz(-pi)' in QASM, got:\n%s", qasm)
	}

	c2, err := ParseQASM(qasm)
	if err != nil {
		t.Fatalf("ParseQASM error: %v", err)
	}
	if len(c2.Gates) != 3 {
		t.Fatalf("pi round-trip: expected 3 gates, got %d", len(c2.Gates))
	}

	tolerance := 1e-10
	if math.Abs(c2.Gates[0].Params[0]-math.Pi/2) > tolerance {
		t.Errorf("gate 0 param: got %g, want %g", c2.Gates[0].Params[0], math.Pi/2)
	}
	if math.Abs(c2.Gates[1].Params[0]-3*math.Pi/4) > tolerance {
		t.Errorf("gate 1 param: got %g, want %g", c2.Gates[1].Params[0], 3*math.Pi/4)
	}
	if math.Abs(c2.Gates[2].Params[0]+math.Pi) > tolerance {
		t.Errorf("gate 2 param: got %g, want %g", c2.Gates[2].Params[0], -math.Pi)
	}
}

func TestParseParallelGates(t *testing.T) {
	qasm := `OPENQASM 2.0;
include "qelib1.inc";
qreg q[4];
creg c[1];

h q[0];
h q[1];
cx q[0], q[1];
x q[2];
`

	c, err := ParseQASM(qasm)
	if err != nil {
		t.Fatalf("ParseQASM error: %v", err)
	}

	fmt.Printf("Parsed %d gates:\n", len(c.Gates))
	for _, g := range c.Gates {
		fmt.Printf("  Step %d: %s on q[%d]", g.Time, g.Type, g.Qubit)
		if len(g.Controls) > 0 {
			fmt.Printf(" (control q[%d])", g.Controls[0])
		}
		fmt.Println()
	}

	if c.NumQubits != 4 {
		t.Errorf("expected 4 qubits from qreg, got %d", c.NumQubits)
	}
	if c.Gates[0].Time != c.Gates[1].Time {
		t.Errorf("H q[0] at step %d, H q[1] at step %d - expected same step for parallel gates",
			c.Gates[0].Time, c.Gates[1].Time)
	}
	if c.Gates[2].Time <= c.Gates[0].Time {
		t.Errorf("CX should be after H gates, got CX at step %d, H at step %d", c.Gates[2].Time, c.Gates[0].Time)
	}
	if c.Gates[3].Time != 0 {
		t.Errorf("X q[2] touches a fresh qubit and should land at step 0, got %d", c.Gates[3].Time)
	}
	if c.Steps != 2 {
		t.Errorf("expected 2 steps, got %d", c.Steps)
	}
}

func TestParseQASMInfersQubitCount(t *testing.T) {
	c, err := ParseQASM("x q[0];\ny q[2];")
	if err != nil {
		t.Fatalf("ParseQASM error: %v", err)
	}
	if c.NumQubits != 3 {
		t.Errorf("expected 3 qubits inferred from gates, got %d", c.NumQubits)
	}
}

func TestParseQASMRejectsUnsupported(t *testing.T) {
	for _, qasm := range []string{
		"qreg q[2];\ncz q[0], q[1];",
		"qreg q[1];\nu3(pi,0,pi) q[0];",
		"qreg q[1];\nrx(banana) q[0];",
		"qreg q[3];\ncswap q[0], q[1], q[2];",
	} {
		if _, err := ParseQASM(qasm); !errors.Is(err, ErrInvalidCircuit) {
			t.Errorf("ParseQASM(%q): expected ErrInvalidCircuit, got %v", qasm, err)
		}
	}
}

func TestCircuitValidate(t *testing.T) {
	tests := []struct {
		name string
		c    Circuit
		ok   bool
	}{
		{"empty", Circuit{NumQubits: 1}, true},
		{"no qubits", Circuit{}, false},
		{"at the qubit limit", Circuit{NumQubits: MaxQubits}, true},
		{"over the qubit limit", Circuit{NumQubits: MaxQubits + 1}, false},
		{"out of range", Circuit{NumQubits: 1, Gates: []CircuitGate{{Type: "H", Qubit: 1}}}, false},
		{"negative time", Circuit{NumQubits: 1, Gates: []CircuitGate{{Type: "H", Time: -1}}}, false},
		{"unknown type", Circuit{NumQubits: 1, Gates: []CircuitGate{{Type: "U3"}}}, false},
		{"cnot without control", Circuit{NumQubits: 2, Gates: []CircuitGate{{Type: GateTypeCNOT, Qubit: 1}}}, false},
		{"toffoli with one control", Circuit{NumQubits: 3, Gates: []CircuitGate{{Type: GateTypeToffoli, Qubit: 2, Controls: []int{0}}}}, false},
		{"swap without target", Circuit{NumQubits: 2, Gates: []CircuitGate{{Type: GateTypeSwap}}}, false},
		{"rotation without angle", Circuit{NumQubits: 1, Gates: []CircuitGate{{Type: "RX"}}}, false},
		{"control out of range", Circuit{NumQubits: 2, Gates: []CircuitGate{{Type: GateTypeCNOT, Qubit: 1, Controls: []int{5}}}}, false},
	}

	for _, tt := range tests {
		err := tt.c.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("%s: Validate() = %v, want ok=%v", tt.name, err, tt.ok)
		}
		if err != nil && !errors.Is(err, ErrInvalidCircuit) {
			t.Errorf("%s: expected ErrInvalidCircuit, got %v", tt.name, err)
		}
	}
}

func TestRemoveGateAt(t *testing.T) {
	c := Circuit{NumQubits: 3}
	c.AddGate("H", 2, 0)
	c.AddControlled(1, 0, 0)
	c.AddGate("X", 0, 1)

	c.RemoveGateAt(0, 0)

	if len(c.Gates) != 2 {
		t.Fatalf("expected the CNOT touching q[0] to be removed, %d gates left", len(c.Gates))
	}
	for _, g := range c.Gates {
		if g.Type == GateTypeCNOT {
			t.Errorf("CNOT should have been removed")
		}
	}
}

func TestCircuitRun(t *testing.T) {
	c := Circuit{NumQubits: 2}
	c.AddGate("X", 0, 0)
	c.AddControlled(1, 1, 0)
	c.AddGate("X", 0, 2)
	c.AddControlled(1, 3, 0)

	e := NewEngine(WithRand(fixedRand(0.5)))
	state, outcomes, err := c.Run(e)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := []Outcome{OutcomeOK, OutcomeOK, OutcomeOK, OutcomeNoEffect}
	if len(outcomes) != len(want) {
		t.Fatalf("expected %d outcomes, got %d", len(want), len(outcomes))
	}
	for i := range want {
		if outcomes[i] != want[i] {
			t.Errorf("outcome %d: got %s, want %s", i, outcomes[i], want[i])
		}
	}

	if state.NumQubits() != 2 {
		t.Errorf("Run should grow the register to 2 qubits, got %d", state.NumQubits())
	}
	if state.Qubits[0] != ZeroQubit() || state.Qubits[1] != OneQubit() {
		t.Errorf("expected |0⟩|1⟩, got %+v", state.Qubits)
	}
	if got := state.LastAction(); got != "Applied X to qubit 0" {
		t.Errorf("last action = %q", got)
	}
}

func TestCircuitRunWidensInOneStep(t *testing.T) {
	c := Circuit{NumQubits: MaxQubits}
	c.AddGate("X", MaxQubits-1, 0)

	e := NewEngine()
	state, _, err := c.Run(e)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if state.NumQubits() != MaxQubits {
		t.Fatalf("expected %d qubits, got %d", MaxQubits, state.NumQubits())
	}
	if len(state.History) != MaxQubits {
		t.Errorf("expected one entry per added qubit plus the gate, got %d entries", len(state.History))
	}

	e.Undo()
	start, _ := e.Undo()
	if len(start.History) != 0 {
		t.Errorf("two undos should return to the single-qubit start, history has %d entries", len(start.History))
	}
	if start.NumQubits() != 1 {
		t.Errorf("expected 1 qubit after undoing the widening, got %d", start.NumQubits())
	}
}

func TestCircuitRunRejectsInvalid(t *testing.T) {
	c := Circuit{NumQubits: 1, Gates: []CircuitGate{{Type: "H", Qubit: 3}}}
	e := NewEngine()
	_, _, err := c.Run(e)
	if !errors.Is(err, ErrInvalidCircuit) {
		t.Fatalf("expected ErrInvalidCircuit, got %v", err)
	}
	if len(e.State().History) != 0 {
		t.Errorf("an invalid circuit should not touch the engine, history: %v", e.State().History)
	}
}

func TestSuggestions(t *testing.T) {
	c := Circuit{NumQubits: 2}
	c.AddGate("H", 0, 0)
	c.AddGate("H", 0, 1)
	c.AddControlled(1, 2, 0)
	c.AddControlled(1, 3, 0)

	tips := c.Suggestions()
	want := []string{
		"Consecutive H gates on qubit 0 cancel out (steps 0 and 1)",
		"Consecutive CNOT gates with control=0 and target=1 cancel out (steps 2 and 3)",
	}
	if len(tips) != len(want) {
		t.Fatalf("expected %d suggestions, got %v", len(want), tips)
	}
	for i := range want {
		if tips[i] != want[i] {
			t.Errorf("suggestion %d: got %q, want %q", i, tips[i], want[i])
		}
	}

	c2 := Circuit{NumQubits: 1}
	c2.AddGate("H", 0, 0)
	c2.AddGate("X", 0, 1)
	c2.AddGate("H", 0, 2)
	if tips := c2.Suggestions(); len(tips) != 0 {
		t.Errorf("H X H has nothing to cancel, got %v", tips)
	}
}

func TestCellAt(t *testing.T) {
	c := Circuit{NumQubits: 4}
	c.AddControlled(3, 0, 0)

	if info := c.cellAt(0, 0); !info.isControl || info.vertAbove || !info.vertBelow {
		t.Errorf("q[0]: expected control with a line below, got %+v", info)
	}
	if info := c.cellAt(0, 1); !info.passThrough || !info.vertAbove || !info.vertBelow {
		t.Errorf("q[1]: expected pass-through, got %+v", info)
	}
	if info := c.cellAt(0, 3); !info.isTarget || !info.vertAbove || info.vertBelow {
		t.Errorf("q[3]: expected target with a line above, got %+v", info)
	}
	if info := c.cellAt(1, 0); info.gate != nil {
		t.Errorf("step 1 should be empty, got %+v", info)
	}
}
