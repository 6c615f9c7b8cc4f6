package qsim

/*
BasisState is one term of a state vector: a computational basis label with
its amplitude and Born-rule probability.
*/
type BasisState struct {
	Index       int
	Bits        string
	Amplitude   complex128
	Probability float64
}

// BasisStates lists the terms whose probability exceeds threshold, in
// ascending index order.
func (s *StateVector) BasisStates(threshold float64) []BasisState {
	states := make([]BasisState, 0)
	for i, a := range s.Amplitudes {
		p := probability(a)
		if p <= threshold {
			continue
		}
		states = append(states, BasisState{
			Index:       i,
			Bits:        s.Bitstring(i),
			Amplitude:   a,
			Probability: p,
		})
	}
	return states
}
