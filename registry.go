package qsim

import "sync"

/*
QubitRegistry assigns every distinct qubit a stable position in a register.
The first registration fixes the position; the qubit registered first
occupies the most significant bit of a basis-state index, matching the
left-to-right order in which qubits are printed.
*/
type QubitRegistry struct {
	mu      sync.RWMutex
	qubits  []Qubit
	indices map[Qubit]int
}

// NewQubitRegistry returns an empty register.
func NewQubitRegistry() *QubitRegistry {
	return &QubitRegistry{
		qubits:  make([]Qubit, 0),
		indices: make(map[Qubit]int),
	}
}

// Register returns the qubit's position, appending it if it is new.
func (r *QubitRegistry) Register(q Qubit) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx, ok := r.indices[q]; ok {
		return idx
	}

	idx := len(r.qubits)
	r.qubits = append(r.qubits, q)
	r.indices[q] = idx
	return idx
}

func (r *QubitRegistry) Index(q Qubit) (int, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.indices[q]
	return idx, ok
}

func (r *QubitRegistry) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.qubits)
}

// Qubits returns a copy of the register in position order.
func (r *QubitRegistry) Qubits() []Qubit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Qubit, len(r.qubits))
	copy(out, r.qubits)
	return out
}

func (r *QubitRegistry) clone() *QubitRegistry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &QubitRegistry{
		qubits:  make([]Qubit, len(r.qubits)),
		indices: make(map[Qubit]int, len(r.indices)),
	}
	copy(c.qubits, r.qubits)
	for q, idx := range r.indices {
		c.indices[q] = idx
	}
	return c
}
