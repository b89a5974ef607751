package main

// Three-qubit repetition codes. Qubits are grouped into consecutive triples
// [0,1,2], [3,4,5], ...; trailing qubits outside a full triple are left alone.

// majorityBasis collapses a triple to the basis state chosen by a majority vote
// of each member's |1⟩ probability.
func majorityBasis(triple []Qubit) Qubit {
	ones := 0
	for _, q := range triple {
		if q.LeansOne() {
			ones++
		}
	}
	if ones*2 > len(triple) {
		return OneQubit()
	}
	return ZeroQubit()
}

// decodeBitFlip votes on the raw amplitudes.
func decodeBitFlip(triple []Qubit) Qubit {
	return majorityBasis(triple)
}

// decodePhaseFlip moves each member to the Hadamard basis before voting.
func decodePhaseFlip(triple []Qubit) Qubit {
	h := GateH.Matrix()
	rotated := make([]Qubit, len(triple))
	for i, q := range triple {
		rotated[i] = q.Apply(h)
	}
	return majorityBasis(rotated)
}

// correctTriples returns a corrected copy of qubits and the number of triples it decoded.
// A triple with any phase-flip tag uses the phase-flip code; otherwise any
// bit-flip tag selects the bit-flip code; untagged triples are untouched.
func correctTriples(qubits []Qubit) ([]Qubit, int) {
	out := cloneQubits(qubits)
	corrected := 0
	for i := 0; i+2 < len(out); i += 3 {
		triple := out[i : i+3]
		var hasPhase, hasBit bool
		for _, q := range triple {
			switch q.Error {
			case ErrorPhaseFlip:
				hasPhase = true
			case ErrorBitFlip:
				hasBit = true
			}
		}

		var logical Qubit
		switch {
		case hasPhase:
			logical = decodePhaseFlip(triple)
		case hasBit:
			logical = decodeBitFlip(triple)
		default:
			continue
		}

		for j := range triple {
			triple[j] = logical
		}
		corrected++
	}
	return out, corrected
}
