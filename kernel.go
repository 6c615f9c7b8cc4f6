package qsim

import (
	"math"
	"math/rand/v2"
	"sort"
)

/*
applyGate contracts the gate's unitary with the axes of the given register
slots, in place. A single-qubit gate visits every pair of amplitudes whose
indices differ only in the target bit; a two-qubit gate visits every group
of four differing only in the two target bits. Work is O(2^n) and the only
scratch space is a handful of locals.
*/
func (s *StateVector) applyGate(g Gate, slots []int) {
	switch g.qubits {
	case 1:
		s.apply1(g.matrix, s.mask(slots[0]))
	case 2:
		s.apply2(g.matrix, s.mask(slots[0]), s.mask(slots[1]))
	}
}

func (s *StateVector) apply1(m []complex128, bit int) {
	m00, m01, m10, m11 := m[0], m[1], m[2], m[3]
	amps := s.Amplitudes
	n := len(amps)

	for i := 0; i < n; i++ {
		if i&bit != 0 {
			continue
		}
		j := i | bit
		a0, a1 := amps[i], amps[j]
		amps[i] = m00*a0 + m01*a1
		amps[j] = m10*a0 + m11*a1
	}
}

// apply2 treats hi as the gate's high-order bit, so basis row r of the
// matrix addresses index base | (r>>1)*hi | (r&1)*lo.
func (s *StateVector) apply2(m []complex128, hi, lo int) {
	amps := s.Amplitudes
	n := len(amps)

	for i := 0; i < n; i++ {
		if i&hi != 0 || i&lo != 0 {
			continue
		}
		idx := [4]int{i, i | lo, i | hi, i | hi | lo}
		a := [4]complex128{amps[idx[0]], amps[idx[1]], amps[idx[2]], amps[idx[3]]}

		for r := 0; r < 4; r++ {
			row := m[r*4 : r*4+4]
			amps[idx[r]] = row[0]*a[0] + row[1]*a[1] + row[2]*a[2] + row[3]*a[3]
		}
	}
}

// outcomeOf packs the bits of index selected by masks, first mask highest.
func outcomeOf(index int, masks []int) int {
	out := 0
	for _, m := range masks {
		out <<= 1
		if index&m != 0 {
			out |= 1
		}
	}
	return out
}

func (s *StateVector) masks(slots []int) []int {
	masks := make([]int, len(slots))
	for i, slot := range slots {
		masks[i] = s.mask(slot)
	}
	return masks
}

// marginal sums |a|^2 over every assignment of the measured bits.
func (s *StateVector) marginal(masks []int) []float64 {
	probs := make([]float64, 1<<len(masks))
	for i, a := range s.Amplitudes {
		probs[outcomeOf(i, masks)] += probability(a)
	}
	return probs
}

// draw walks the cumulative distribution. The fallback picks the last
// outcome with weight, guarding against rounding in the running sum.
func draw(probs []float64, rng *rand.Rand) int {
	total := 0.0
	for _, p := range probs {
		total += p
	}

	r := rng.Float64() * total
	cumulative := 0.0
	last := 0
	for o, p := range probs {
		if p <= 0 {
			continue
		}
		last = o
		cumulative += p
		if r < cumulative {
			return o
		}
	}
	return last
}

/*
collapse measures the qubits in slots. It draws one joint outcome from the
marginal distribution, zeroes every amplitude that disagrees with it and
rescales the survivors back to unit norm.
*/
func (s *StateVector) collapse(slots []int, rng *rand.Rand) []Bit {
	masks := s.masks(slots)
	probs := s.marginal(masks)
	outcome := draw(probs, rng)

	scale := complex(1/math.Sqrt(probs[outcome]), 0)
	for i := range s.Amplitudes {
		if outcomeOf(i, masks) != outcome {
			s.Amplitudes[i] = 0
			continue
		}
		s.Amplitudes[i] *= scale
	}

	return unpackBits(outcome, len(slots))
}

// distribution is a reusable sampler over one marginal; it never touches
// the state it was built from.
type distribution struct {
	cumulative []float64
	width      int
}

func (s *StateVector) distribution(slots []int) distribution {
	probs := s.marginal(s.masks(slots))
	cumulative := make([]float64, len(probs))
	running := 0.0
	for i, p := range probs {
		running += p
		cumulative[i] = running
	}
	return distribution{cumulative: cumulative, width: len(slots)}
}

func (d distribution) sample(rng *rand.Rand) []Bit {
	total := d.cumulative[len(d.cumulative)-1]
	r := rng.Float64() * total
	o := sort.Search(len(d.cumulative), func(i int) bool { return d.cumulative[i] > r })
	if o == len(d.cumulative) {
		o = len(d.cumulative) - 1
	}
	return unpackBits(o, d.width)
}

func unpackBits(outcome, width int) []Bit {
	bits := make([]Bit, width)
	for k := 0; k < width; k++ {
		if outcome&(1<<(width-1-k)) != 0 {
			bits[k] = One
		}
	}
	return bits
}
