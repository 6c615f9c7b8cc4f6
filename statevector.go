package qsim

import (
	"math"
	"math/cmplx"
	"strings"
)

/*
StateVector holds the 2^n amplitudes of an n-qubit register. Amplitude i
belongs to the basis state whose bits, read from the most significant end,
are the qubits in register order.
*/
type StateVector struct {
	Amplitudes []complex128
	Qubits     []Qubit
}

// NewStateVector returns |0...0> over the given register.
func NewStateVector(qubits []Qubit) *StateVector {
	amps := make([]complex128, 1<<len(qubits))
	amps[0] = 1

	reg := make([]Qubit, len(qubits))
	copy(reg, qubits)
	return &StateVector{Amplitudes: amps, Qubits: reg}
}

func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	reg := make([]Qubit, len(s.Qubits))
	copy(reg, s.Qubits)
	return &StateVector{Amplitudes: amps, Qubits: reg}
}

// copyFrom overwrites s with other's amplitudes; both must share a register.
func (s *StateVector) copyFrom(other *StateVector) {
	copy(s.Amplitudes, other.Amplitudes)
}

func (s *StateVector) NumQubits() int { return len(s.Qubits) }

// Norm is the sum of squared magnitudes; 1 for a valid state.
func (s *StateVector) Norm() float64 {
	total := 0.0
	for _, a := range s.Amplitudes {
		total += probability(a)
	}
	return total
}

func (s *StateVector) checkNorm(tolerance float64) error {
	norm := s.Norm()
	if math.IsNaN(norm) || math.Abs(norm-1) > tolerance {
		return &NormalizationError{Norm: norm, Tolerance: tolerance}
	}
	return nil
}

// Probabilities returns |a_i|^2 for every basis state.
func (s *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(s.Amplitudes))
	for i, a := range s.Amplitudes {
		probs[i] = probability(a)
	}
	return probs
}

// Bitstring renders a basis index as n zero-padded bits, MSB first.
func (s *StateVector) Bitstring(index int) string {
	return bitstring(index, len(s.Qubits))
}

// ApproxEqual compares amplitudes element-wise within tol.
func (s *StateVector) ApproxEqual(other *StateVector, tol float64) bool {
	if len(s.Amplitudes) != len(other.Amplitudes) {
		return false
	}
	for i := range s.Amplitudes {
		if cmplx.Abs(s.Amplitudes[i]-other.Amplitudes[i]) > tol {
			return false
		}
	}
	return true
}

// mask maps a register slot to its bit mask within a basis index.
func (s *StateVector) mask(slot int) int {
	return 1 << (len(s.Qubits) - 1 - slot)
}

func (s *StateVector) slot(q Qubit) (int, bool) {
	for i, r := range s.Qubits {
		if r == q {
			return i, true
		}
	}
	return 0, false
}

func probability(a complex128) float64 {
	return real(a)*real(a) + imag(a)*imag(a)
}

func bitstring(index, width int) string {
	var b strings.Builder
	b.Grow(width)
	for k := width - 1; k >= 0; k-- {
		if index&(1<<k) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
