package qsim

import (
	"math"
	"math/cmplx"
	"sort"
	"strings"
)

// Gate is a named unitary acting on one or two qubits. The matrix is stored
// row-major in the computational basis and never changes after construction.
type Gate struct {
	name   string
	qubits int
	matrix []complex128
}

var invSqrt2 = complex(1/math.Sqrt2, 0)

var (
	I = newGate("I", 1, []complex128{
		1, 0,
		0, 1,
	})

	X = newGate("X", 1, []complex128{
		0, 1,
		1, 0,
	})

	Y = newGate("Y", 1, []complex128{
		0, -1i,
		1i, 0,
	})

	Z = newGate("Z", 1, []complex128{
		1, 0,
		0, -1,
	})

	H = newGate("H", 1, []complex128{
		invSqrt2, invSqrt2,
		invSqrt2, -invSqrt2,
	})

	S = newGate("S", 1, []complex128{
		1, 0,
		0, 1i,
	})

	T = newGate("T", 1, []complex128{
		1, 0,
		0, cmplx.Exp(complex(0, math.Pi/4)),
	})

	// CNOT flips the target when the control is |1>. Basis order is
	// |control target>, control being the higher-order bit.
	CNOT = newGate("CNOT", 2, []complex128{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
		0, 0, 1, 0,
	})

	CZ = newGate("CZ", 2, []complex128{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, -1,
	})

	SWAP = newGate("SWAP", 2, []complex128{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	})
)

var library = map[string]Gate{
	"I":        I,
	"ID":       I,
	"IDENTITY": I,
	"X":        X,
	"Y":        Y,
	"Z":        Z,
	"H":        H,
	"S":        S,
	"T":        T,
	"CNOT":     CNOT,
	"CX":       CNOT,
	"CZ":       CZ,
	"SWAP":     SWAP,
}

func newGate(name string, qubits int, matrix []complex128) Gate {
	return Gate{name: name, qubits: qubits, matrix: matrix}
}

// LookupGate resolves a gate by name, ignoring case.
func LookupGate(name string) (Gate, error) {
	gate, ok := library[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Gate{}, &UnknownGateError{Name: name}
	}
	return gate, nil
}

// Gates lists every name LookupGate accepts.
func Gates() []string {
	names := make([]string, 0, len(library))
	for name := range library {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (g Gate) Name() string   { return g.name }
func (g Gate) NumQubits() int { return g.qubits }
func (g Gate) String() string { return g.name }

func (g Gate) dim() int { return 1 << g.qubits }

// Matrix returns a copy of the unitary, row-major.
func (g Gate) Matrix() [][]complex128 {
	dim := g.dim()
	out := make([][]complex128, dim)
	for r := range out {
		out[r] = make([]complex128, dim)
		copy(out[r], g.matrix[r*dim:(r+1)*dim])
	}
	return out
}

// On binds the gate to its target qubits. Arity is checked when the
// operation is appended to a circuit.
func (g Gate) On(qubits ...Qubit) GateOperation {
	targets := make([]Qubit, len(qubits))
	copy(targets, qubits)
	return GateOperation{gate: g, targets: targets}
}

// OnEach applies a single-qubit gate to every qubit given.
func (g Gate) OnEach(qubits ...Qubit) []Operation {
	ops := make([]Operation, 0, len(qubits))
	for _, q := range qubits {
		ops = append(ops, g.On(q))
	}
	return ops
}

// IsUnitary reports whether m·m† is the identity within tol.
func IsUnitary(m [][]complex128, tol float64) bool {
	n := len(m)
	for r := 0; r < n; r++ {
		if len(m[r]) != n {
			return false
		}
	}

	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			var sum complex128
			for k := 0; k < n; k++ {
				sum += m[r][k] * cmplx.Conj(m[c][k])
			}
			want := complex(0, 0)
			if r == c {
				want = 1
			}
			if cmplx.Abs(sum-want) > tol {
				return false
			}
		}
	}
	return true
}
