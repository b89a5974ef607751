package main

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	cnotEntryRegex    = regexp.MustCompile(`control=(\d+) and target=(\d+)`)
	toffoliEntryRegex = regexp.MustCompile(`controls=(\d+),(\d+) and target=(\d+)`)
	swapEntryRegex    = regexp.MustCompile(`qubits (\d+) and (\d+)`)
	gateEntryRegex    = regexp.MustCompile(`^Applied (\S+) to qubit (\d+)$`)
)

// gateDescription returns the palette description for a gate name.
func gateDescription(name string) string {
	switch strings.ToUpper(name) {
	case "H":
		return "The Hadamard gate creates an equal superposition of |0⟩ and |1⟩ states."
	case "X":
		return "The Pauli-X gate (NOT gate) flips the state from |0⟩ to |1⟩ or vice versa."
	case "Y":
		return "The Pauli-Y gate rotates the state around the Y-axis of the Bloch sphere."
	case "Z":
		return "The Pauli-Z gate adds a phase difference between |0⟩ and |1⟩ states."
	case "S":
		return "The S gate adds a π/2 phase to the |1⟩ component."
	case "T":
		return "The T gate adds a π/4 phase to the |1⟩ component."
	case "CNOT":
		return "The CNOT (Controlled-NOT) gate flips the target qubit only if the control qubit is in state |1⟩."
	case "TOFFOLI":
		return "The Toffoli (CCNOT) gate flips the target qubit only if both control qubits are in state |1⟩."
	case "SWAP":
		return "The SWAP gate exchanges the quantum states of two qubits."
	}
	if strings.HasPrefix(strings.ToUpper(name), "R") && len(name) > 2 && strings.Contains(name, "(") {
		return fmt.Sprintf("The %s gate rotates the state around the %c-axis of the Bloch sphere.", name, name[1])
	}
	return ""
}

// Explain turns the latest history entry into a sentence for the status panel.
func Explain(lastAction string) string {
	switch {
	case lastAction == "":
		return "No operations performed yet."
	case strings.HasPrefix(lastAction, "Added new qubit"):
		return "Added a new qubit initialized in the |0⟩ state."
	case strings.HasPrefix(lastAction, "Removed qubit"):
		return "Removed the last qubit from the register."
	case strings.HasPrefix(lastAction, "Applied CNOT"):
		if m := cnotEntryRegex.FindStringSubmatch(lastAction); m != nil {
			return fmt.Sprintf("%s (Control: Qubit %s, Target: Qubit %s)", gateDescription("CNOT"), m[1], m[2])
		}
	case strings.HasPrefix(lastAction, "Applied Toffoli"):
		if m := toffoliEntryRegex.FindStringSubmatch(lastAction); m != nil {
			return fmt.Sprintf("%s (Controls: Qubits %s and %s, Target: Qubit %s)", gateDescription("TOFFOLI"), m[1], m[2], m[3])
		}
	case strings.HasPrefix(lastAction, "Swapped qubits"):
		if m := swapEntryRegex.FindStringSubmatch(lastAction); m != nil {
			return fmt.Sprintf("%s (Qubits %s and %s)", gateDescription("SWAP"), m[1], m[2])
		}
	case strings.HasPrefix(lastAction, "Measured qubit"):
		return lastAction + "; the superposition collapsed to a basis state."
	case strings.HasPrefix(lastAction, "Applied bit-flip"), strings.HasPrefix(lastAction, "Applied phase-flip"):
		return lastAction + ". Enable error correction and correct to recover the logical qubit."
	case lastAction == "Applied error correction":
		return "Each full triple of qubits was decoded by majority vote."
	}

	if m := gateEntryRegex.FindStringSubmatch(lastAction); m != nil {
		if desc := gateDescription(m[1]); desc != "" {
			return fmt.Sprintf("%s (Applied to Qubit %s)", desc, m[2])
		}
	}
	return lastAction
}
