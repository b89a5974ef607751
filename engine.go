package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
)

// Outcome is the diagnostic result of an engine operation. Anything other than
// OutcomeOK means the snapshot was returned unchanged.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeUnknownGate
	OutcomeIndexOutOfRange
	OutcomeNoEffect
	OutcomeInvalidErrorKind
	OutcomeReservedName
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeUnknownGate:
		return "unknown gate"
	case OutcomeIndexOutOfRange:
		return "index out of range"
	case OutcomeNoEffect:
		return "no effect"
	case OutcomeInvalidErrorKind:
		return "invalid error kind"
	case OutcomeReservedName:
		return "reserved gate name"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// RandSource supplies uniform samples in [0,1) for measurement collapse.
// *rand.Rand from math/rand and math/rand/v2 both satisfy it.
type RandSource interface {
	Float64() float64
}

const defaultUndoDepth = 256

// Engine owns the current snapshot and applies intents to it one at a time.
// It is not safe for concurrent use; a single owner drives it.
type Engine struct {
	current   QuantumState
	undo      []QuantumState
	undoDepth int
	rng       RandSource
	logger    *log.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRand injects the random source used by MeasureQubit.
func WithRand(r RandSource) EngineOption {
	return func(e *Engine) { e.rng = r }
}

// WithSeed uses a PCG source with the given seed; 0 seeds from the clock.
func WithSeed(seed uint64) EngineOption {
	return func(e *Engine) { e.rng = newRand(seed) }
}

// WithLogger sets the transition logger.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithState starts the engine from a restored snapshot. The undo stack starts empty.
func WithState(s QuantumState) EngineOption {
	return func(e *Engine) { e.current = s.Clone() }
}

// WithUndoDepth bounds the number of snapshots kept for Undo.
func WithUndoDepth(n int) EngineOption {
	return func(e *Engine) { e.undoDepth = n }
}

// NewEngine returns an engine holding the initial state.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		current:   InitialState(),
		undoDepth: defaultUndoDepth,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = newRand(0)
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// State returns a copy of the current snapshot.
func (e *Engine) State() QuantumState {
	return e.current.Clone()
}

// CanUndo reports whether Undo would change anything.
func (e *Engine) CanUndo() bool {
	return len(e.current.History) > 0
}

func (e *Engine) commit(op string, next QuantumState, outcome Outcome, kv ...any) (QuantumState, Outcome) {
	kv = append([]any{"op", op, "outcome", outcome}, kv...)
	if outcome != OutcomeOK {
		e.logger.Debug("intent ignored", kv...)
		return e.State(), outcome
	}
	e.undo = append(e.undo, e.current)
	if e.undoDepth > 0 && len(e.undo) > e.undoDepth {
		e.undo = e.undo[len(e.undo)-e.undoDepth:]
	}
	e.current = next
	e.logger.Debug("intent applied", append(kv, "entry", next.LastAction())...)
	return e.State(), outcome
}

// AddQubit appends a |0⟩ qubit.
func (e *Engine) AddQubit() (QuantumState, Outcome) {
	s := e.current
	qubits := append(cloneQubits(s.Qubits), ZeroQubit())
	return e.commit("add-qubit", s.withQubits(qubits, "Added new qubit"), OutcomeOK)
}

// Widen grows the register to n qubits in a single transition, recording one
// "Added new qubit" entry per appended qubit.
func (e *Engine) Widen(n int) (QuantumState, Outcome) {
	s := e.current
	if n > MaxQubits {
		return e.commit("widen", s, OutcomeIndexOutOfRange, "qubits", n)
	}
	added := n - len(s.Qubits)
	if added <= 0 {
		return e.commit("widen", s, OutcomeNoEffect, "qubits", n)
	}
	next := s
	next.Qubits = make([]Qubit, len(s.Qubits), n)
	copy(next.Qubits, s.Qubits)
	next.History = make([]string, len(s.History), len(s.History)+added)
	copy(next.History, s.History)
	for range added {
		next.Qubits = append(next.Qubits, ZeroQubit())
		next.History = append(next.History, "Added new qubit")
	}
	return e.commit("widen", next, OutcomeOK, "qubits", n)
}

// RemoveQubit drops the last qubit. At least one qubit always remains.
func (e *Engine) RemoveQubit() (QuantumState, Outcome) {
	s := e.current
	if len(s.Qubits) <= 1 {
		return e.commit("remove-qubit", s, OutcomeNoEffect)
	}
	qubits := cloneQubits(s.Qubits[:len(s.Qubits)-1])
	return e.commit("remove-qubit", s.withQubits(qubits, "Removed qubit"), OutcomeOK)
}

// resolveGate looks a name up among the built-in gates, then the custom gates.
func (s QuantumState) resolveGate(name string) (string, Matrix, bool) {
	if kind, ok := ParseGateKind(name); ok {
		return kind.String(), kind.Matrix(), true
	}
	if g, ok := s.CustomGates[name]; ok {
		return g.Name, g.Matrix, true
	}
	return name, Matrix{}, false
}

// ApplyGate applies a built-in or registered custom gate to one qubit.
func (e *Engine) ApplyGate(name string, qubit int) (QuantumState, Outcome) {
	s := e.current
	canonical, m, ok := s.resolveGate(name)
	if !ok {
		return e.commit("apply-gate", s, OutcomeUnknownGate, "gate", name)
	}
	if !s.validIndex(qubit) {
		return e.commit("apply-gate", s, OutcomeIndexOutOfRange, "gate", name, "qubit", qubit)
	}
	entry := fmt.Sprintf("Applied %s to qubit %d", canonical, qubit)
	return e.commit("apply-gate", s.withQubits(applyAt(s.Qubits, qubit, m), entry), OutcomeOK,
		"gate", canonical, "qubit", qubit)
}

// ApplyCustomGate applies a registered custom gate; built-in names are not consulted.
func (e *Engine) ApplyCustomGate(name string, qubit int) (QuantumState, Outcome) {
	s := e.current
	g, ok := s.CustomGates[name]
	if !ok {
		return e.commit("apply-custom-gate", s, OutcomeUnknownGate, "gate", name)
	}
	if !s.validIndex(qubit) {
		return e.commit("apply-custom-gate", s, OutcomeIndexOutOfRange, "gate", name, "qubit", qubit)
	}
	entry := fmt.Sprintf("Applied custom gate %s to qubit %d", g.Name, qubit)
	return e.commit("apply-custom-gate", s.withQubits(applyAt(s.Qubits, qubit, g.Matrix), entry), OutcomeOK,
		"gate", g.Name, "qubit", qubit)
}

// ApplyRotation applies R_axis(theta) to one qubit.
func (e *Engine) ApplyRotation(axis Axis, theta float64, qubit int) (QuantumState, Outcome) {
	s := e.current
	m, ok := RotationMatrix(axis, theta)
	if !ok {
		return e.commit("apply-rotation", s, OutcomeUnknownGate, "axis", string(axis))
	}
	if !s.validIndex(qubit) {
		return e.commit("apply-rotation", s, OutcomeIndexOutOfRange, "qubit", qubit)
	}
	entry := fmt.Sprintf("Applied R%c(%s) to qubit %d", axis, formatAngle(theta), qubit)
	return e.commit("apply-rotation", s.withQubits(applyAt(s.Qubits, qubit, m), entry), OutcomeOK,
		"axis", string(axis), "theta", theta, "qubit", qubit)
}

// ApplyCNOT flips the target when the control's |1⟩ probability exceeds 0.5.
// This is a threshold approximation; no joint state is simulated.
func (e *Engine) ApplyCNOT(control, target int) (QuantumState, Outcome) {
	s := e.current
	if !s.validIndex(control) || !s.validIndex(target) {
		return e.commit("cnot", s, OutcomeIndexOutOfRange, "control", control, "target", target)
	}
	if !s.Qubits[control].LeansOne() {
		return e.commit("cnot", s, OutcomeNoEffect, "control", control, "target", target)
	}
	entry := fmt.Sprintf("Applied CNOT with control=%d and target=%d", control, target)
	return e.commit("cnot", s.withQubits(applyAt(s.Qubits, target, GateX.Matrix()), entry), OutcomeOK,
		"control", control, "target", target)
}

// ApplyToffoli flips the target when both controls exceed the 0.5 threshold.
func (e *Engine) ApplyToffoli(control1, control2, target int) (QuantumState, Outcome) {
	s := e.current
	if !s.validIndex(control1) || !s.validIndex(control2) || !s.validIndex(target) {
		return e.commit("toffoli", s, OutcomeIndexOutOfRange,
			"control1", control1, "control2", control2, "target", target)
	}
	if !s.Qubits[control1].LeansOne() || !s.Qubits[control2].LeansOne() {
		return e.commit("toffoli", s, OutcomeNoEffect,
			"control1", control1, "control2", control2, "target", target)
	}
	entry := fmt.Sprintf("Applied Toffoli with controls=%d,%d and target=%d", control1, control2, target)
	return e.commit("toffoli", s.withQubits(applyAt(s.Qubits, target, GateX.Matrix()), entry), OutcomeOK,
		"control1", control1, "control2", control2, "target", target)
}

// ApplySwap exchanges two qubits, error tags included.
func (e *Engine) ApplySwap(a, b int) (QuantumState, Outcome) {
	s := e.current
	if !s.validIndex(a) || !s.validIndex(b) {
		return e.commit("swap", s, OutcomeIndexOutOfRange, "a", a, "b", b)
	}
	qubits := cloneQubits(s.Qubits)
	qubits[a], qubits[b] = qubits[b], qubits[a]
	entry := fmt.Sprintf("Swapped qubits %d and %d", a, b)
	return e.commit("swap", s.withQubits(qubits, entry), OutcomeOK, "a", a, "b", b)
}

// MeasureQubit collapses one qubit to |0⟩ or |1⟩ using the injected random source.
// The collapsed qubit carries no error tag.
func (e *Engine) MeasureQubit(qubit int) (QuantumState, Outcome) {
	s := e.current
	if !s.validIndex(qubit) {
		return e.commit("measure", s, OutcomeIndexOutOfRange, "qubit", qubit)
	}
	prob0, _ := s.Qubits[qubit].Probabilities()
	sample := e.rng.Float64()
	bit := 1
	collapsed := OneQubit()
	if sample < prob0 {
		bit = 0
		collapsed = ZeroQubit()
	}
	qubits := cloneQubits(s.Qubits)
	qubits[qubit] = collapsed
	entry := fmt.Sprintf("Measured qubit %d: |%d⟩", qubit, bit)
	return e.commit("measure", s.withQubits(qubits, entry), OutcomeOK,
		"qubit", qubit, "prob0", prob0, "sample", sample, "result", bit)
}

// AddCustomGate inserts or replaces a custom gate by name. Built-in gate names,
// in any case, are reserved since ApplyGate resolves them first.
func (e *Engine) AddCustomGate(def CustomGate) (QuantumState, Outcome) {
	s := e.current
	if _, builtin := ParseGateKind(def.Name); builtin {
		return e.commit("add-custom-gate", s, OutcomeReservedName, "gate", def.Name)
	}
	if !def.Matrix.IsUnitary(1e-9) {
		e.logger.Warn("custom gate is not unitary; results will be renormalized", "gate", def.Name)
	}
	next := s
	next.CustomGates = make(map[string]CustomGate, len(s.CustomGates)+1)
	for k, v := range s.CustomGates {
		next.CustomGates[k] = v
	}
	next.CustomGates[def.Name] = def
	next.History = appendHistory(s.History, fmt.Sprintf("Added custom gate %s", def.Name))
	return e.commit("add-custom-gate", next, OutcomeOK, "gate", def.Name)
}

// ToggleErrorCorrection sets the error-correction flag.
func (e *Engine) ToggleErrorCorrection(enabled bool) (QuantumState, Outcome) {
	s := e.current
	next := s
	next.ErrorCorrectionEnabled = enabled
	entry := "Disabled error correction"
	if enabled {
		entry = "Enabled error correction"
	}
	next.History = appendHistory(s.History, entry)
	return e.commit("toggle-error-correction", next, OutcomeOK, "enabled", enabled)
}

// ApplyError injects a bit-flip (X) or phase-flip (Z) and tags the qubit.
func (e *Engine) ApplyError(qubit int, kind ErrorKind) (QuantumState, Outcome) {
	s := e.current
	var m Matrix
	switch kind {
	case ErrorBitFlip:
		m = GateX.Matrix()
	case ErrorPhaseFlip:
		m = GateZ.Matrix()
	default:
		return e.commit("apply-error", s, OutcomeInvalidErrorKind, "kind", kind)
	}
	if !s.validIndex(qubit) {
		return e.commit("apply-error", s, OutcomeIndexOutOfRange, "qubit", qubit)
	}
	qubits := applyAt(s.Qubits, qubit, m)
	qubits[qubit].Error = kind
	entry := fmt.Sprintf("Applied %s to qubit %d", kind, qubit)
	return e.commit("apply-error", s.withQubits(qubits, entry), OutcomeOK, "qubit", qubit, "kind", kind)
}

// CorrectErrors decodes every full triple of qubits with the repetition code
// matching its error tags. It does nothing while error correction is disabled.
func (e *Engine) CorrectErrors() (QuantumState, Outcome) {
	s := e.current
	if !s.ErrorCorrectionEnabled {
		return e.commit("correct-errors", s, OutcomeNoEffect)
	}
	qubits, corrected := correctTriples(s.Qubits)
	return e.commit("correct-errors", s.withQubits(qubits, "Applied error correction"), OutcomeOK,
		"corrected", corrected)
}

// HasSnapshot reports whether Undo would restore an exact earlier snapshot
// instead of falling back to the initial state.
func (e *Engine) HasSnapshot() bool {
	return len(e.undo) > 0
}

// Undo restores the snapshot before the latest transition. When no snapshot is
// available (restored session, or history older than the undo depth) it drops the
// latest history entry and resets the simulation to the initial state.
func (e *Engine) Undo() (QuantumState, Outcome) {
	if len(e.current.History) == 0 {
		e.logger.Debug("intent ignored", "op", "undo", "outcome", OutcomeNoEffect)
		return e.State(), OutcomeNoEffect
	}
	if n := len(e.undo); n > 0 {
		e.current = e.undo[n-1]
		e.undo = e.undo[:n-1]
		e.logger.Debug("intent applied", "op", "undo", "restored", true)
		return e.State(), OutcomeOK
	}
	next := InitialState()
	next.History = append(next.History, e.current.History[:len(e.current.History)-1]...)
	e.current = next
	e.logger.Debug("intent applied", "op", "undo", "restored", false)
	return e.State(), OutcomeOK
}

// Restore replaces the current snapshot, as when a saved session is loaded.
// The undo stack is cleared; Undo then falls back to replaying from the initial state.
func (e *Engine) Restore(s QuantumState) {
	e.current = s.Clone()
	e.undo = nil
	e.logger.Debug("state restored", "qubits", s.NumQubits(), "history", len(s.History))
}

// Reset returns to the initial state and forgets the undo stack.
func (e *Engine) Reset() (QuantumState, Outcome) {
	e.current = InitialState()
	e.undo = nil
	e.logger.Debug("intent applied", "op", "reset")
	return e.State(), OutcomeOK
}

func cloneQubits(q []Qubit) []Qubit {
	out := make([]Qubit, len(q))
	copy(out, q)
	return out
}

// applyAt returns a copy of qubits with m applied at index i.
func applyAt(qubits []Qubit, i int, m Matrix) []Qubit {
	out := cloneQubits(qubits)
	out[i] = out[i].Apply(m)
	return out
}
