package main

// Intent is one request from a front-end. The set is closed: only the types
// in this file implement it.
type Intent interface {
	intent()
}

type (
	AddQubitIntent    struct{}
	RemoveQubitIntent struct{}
	ApplyGateIntent   struct {
		Gate  string
		Qubit int
	}
	ApplyCustomGateIntent struct {
		Gate  string
		Qubit int
	}
	ApplyRotationIntent struct {
		Axis  Axis
		Theta float64
		Qubit int
	}
	ApplyCNOTIntent struct {
		Control, Target int
	}
	ApplyToffoliIntent struct {
		Control1, Control2, Target int
	}
	ApplySwapIntent struct {
		Qubit1, Qubit2 int
	}
	MeasureIntent struct {
		Qubit int
	}
	AddCustomGateIntent struct {
		Gate CustomGate
	}
	ToggleErrorCorrectionIntent struct {
		Enabled bool
	}
	ApplyErrorIntent struct {
		Qubit int
		Kind  ErrorKind
	}
	CorrectErrorsIntent struct{}
	UndoIntent          struct{}
	ResetIntent         struct{}
)

func (AddQubitIntent) intent()              {}
func (RemoveQubitIntent) intent()           {}
func (ApplyGateIntent) intent()             {}
func (ApplyCustomGateIntent) intent()       {}
func (ApplyRotationIntent) intent()         {}
func (ApplyCNOTIntent) intent()             {}
func (ApplyToffoliIntent) intent()          {}
func (ApplySwapIntent) intent()             {}
func (MeasureIntent) intent()               {}
func (AddCustomGateIntent) intent()         {}
func (ToggleErrorCorrectionIntent) intent() {}
func (ApplyErrorIntent) intent()            {}
func (CorrectErrorsIntent) intent()         {}
func (UndoIntent) intent()                  {}
func (ResetIntent) intent()                 {}

// Dispatch routes an intent to the matching engine operation.
func (e *Engine) Dispatch(in Intent) (QuantumState, Outcome) {
	switch in := in.(type) {
	case AddQubitIntent:
		return e.AddQubit()
	case RemoveQubitIntent:
		return e.RemoveQubit()
	case ApplyGateIntent:
		return e.ApplyGate(in.Gate, in.Qubit)
	case ApplyCustomGateIntent:
		return e.ApplyCustomGate(in.Gate, in.Qubit)
	case ApplyRotationIntent:
		return e.ApplyRotation(in.Axis, in.Theta, in.Qubit)
	case ApplyCNOTIntent:
		return e.ApplyCNOT(in.Control, in.Target)
	case ApplyToffoliIntent:
		return e.ApplyToffoli(in.Control1, in.Control2, in.Target)
	case ApplySwapIntent:
		return e.ApplySwap(in.Qubit1, in.Qubit2)
	case MeasureIntent:
		return e.MeasureQubit(in.Qubit)
	case AddCustomGateIntent:
		return e.AddCustomGate(in.Gate)
	case ToggleErrorCorrectionIntent:
		return e.ToggleErrorCorrection(in.Enabled)
	case ApplyErrorIntent:
		return e.ApplyError(in.Qubit, in.Kind)
	case CorrectErrorsIntent:
		return e.CorrectErrors()
	case UndoIntent:
		return e.Undo()
	case ResetIntent:
		return e.Reset()
	}
	return e.State(), OutcomeNoEffect
}
