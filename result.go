package qsim

import (
	"strings"

	"github.com/google/uuid"
)

// Bit is one classical measurement outcome.
type Bit uint8

const (
	Zero Bit = 0
	One  Bit = 1
)

func (b Bit) String() string {
	if b == One {
		return "1"
	}
	return "0"
}

/*
MeasurementResult records, for every repetition, the bit observed on each
measured qubit. Qubits lists the measured qubits in register order and every
row of Trials lines up with it. A result is built once by the Sampler and
never changed afterwards.
*/
type MeasurementResult struct {
	RunID  uuid.UUID
	Qubits []Qubit
	Trials [][]Bit
}

func (r *MeasurementResult) Repetitions() int { return len(r.Trials) }

// Trial returns the qubit-to-bit mapping of one repetition.
func (r *MeasurementResult) Trial(rep int) map[Qubit]Bit {
	if rep < 0 || rep >= len(r.Trials) {
		return nil
	}
	out := make(map[Qubit]Bit, len(r.Qubits))
	for i, q := range r.Qubits {
		out[q] = r.Trials[rep][i]
	}
	return out
}

// Bits returns the column of outcomes observed on q.
func (r *MeasurementResult) Bits(q Qubit) ([]Bit, bool) {
	col := -1
	for i, m := range r.Qubits {
		if m == q {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, false
	}

	out := make([]Bit, len(r.Trials))
	for rep, row := range r.Trials {
		out[rep] = row[col]
	}
	return out, true
}

// Bitstring renders one repetition MSB first, in register order.
func (r *MeasurementResult) Bitstring(rep int) string {
	if rep < 0 || rep >= len(r.Trials) {
		return ""
	}
	var b strings.Builder
	for _, bit := range r.Trials[rep] {
		b.WriteString(bit.String())
	}
	return b.String()
}

// Histogram counts how often each bitstring was observed. Keys are as wide
// as the number of measured qubits; an empty result gives an empty map.
func Histogram(result *MeasurementResult) map[string]int {
	counts := make(map[string]int)
	if result == nil || len(result.Qubits) == 0 {
		return counts
	}
	for rep := range result.Trials {
		counts[result.Bitstring(rep)]++
	}
	return counts
}

// HistogramLabels lists every n-bit label in ascending basis order, for a
// plotting collaborator that wants zero-count bars too. A negative n gives
// nil.
func HistogramLabels(n int) []string {
	if n < 0 {
		return nil
	}
	labels := make([]string, 1<<n)
	for i := range labels {
		labels[i] = bitstring(i, n)
	}
	return labels
}
