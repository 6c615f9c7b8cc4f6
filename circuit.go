package qsim

import (
	"strings"
	"sync"
)

/*
Circuit is an ordered list of operations together with the register they
address. Operations run in exactly the order they were appended; nothing is
merged, cancelled or reordered, so a Z followed by another Z stays two steps.

A circuit may keep growing between runs. Each run works on a snapshot taken
when it starts, so appends never race with a simulation in flight.
*/
type Circuit struct {
	mu       sync.RWMutex
	registry *QubitRegistry
	ops      []Operation
}

// NewCircuit builds a circuit from ops, failing like Append on the first
// invalid one.
func NewCircuit(ops ...Operation) (*Circuit, error) {
	c := &Circuit{
		registry: NewQubitRegistry(),
		ops:      make([]Operation, 0, len(ops)),
	}
	if err := c.Append(ops...); err != nil {
		return nil, err
	}
	return c, nil
}

// Append adds operations in order, registering any qubit seen for the
// first time. If one operation is invalid nothing from the call is added.
func (c *Circuit) Append(ops ...Operation) error {
	for _, op := range ops {
		if err := validateOperation(op); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, op := range ops {
		for _, q := range op.Qubits() {
			c.registry.Register(q)
		}
		c.ops = append(c.ops, op)
	}
	return nil
}

// AppendGate looks the gate up by name and appends it on the given qubits.
func (c *Circuit) AppendGate(name string, qubits ...Qubit) error {
	gate, err := LookupGate(name)
	if err != nil {
		return err
	}
	return c.Append(gate.On(qubits...))
}

func (c *Circuit) Operations() []Operation {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Operation, len(c.ops))
	copy(out, c.ops)
	return out
}

func (c *Circuit) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ops)
}

func (c *Circuit) Qubits() []Qubit { return c.registry.Qubits() }

func (c *Circuit) NumQubits() int { return c.registry.Size() }

func (c *Circuit) HasMeasurements() bool {
	for _, op := range c.Operations() {
		if _, ok := op.(MeasurementOperation); ok {
			return true
		}
	}
	return false
}

// MeasuredQubits returns every measured qubit once, in register order.
func (c *Circuit) MeasuredQubits() []Qubit {
	snap := c.snapshot()
	return snap.measuredQubits()
}

func (c *Circuit) String() string {
	var b strings.Builder
	for i, op := range c.Operations() {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(op.String())
	}
	return b.String()
}

// circuitSnapshot is the frozen view a single run works from.
type circuitSnapshot struct {
	ops      []Operation
	registry *QubitRegistry
}

func (c *Circuit) snapshot() circuitSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ops := make([]Operation, len(c.ops))
	copy(ops, c.ops)
	return circuitSnapshot{ops: ops, registry: c.registry.clone()}
}

func (s circuitSnapshot) measuredQubits() []Qubit {
	measured := make(map[Qubit]struct{})
	for _, op := range s.ops {
		if m, ok := op.(MeasurementOperation); ok {
			for _, q := range m.targets {
				measured[q] = struct{}{}
			}
		}
	}

	out := make([]Qubit, 0, len(measured))
	for _, q := range s.registry.Qubits() {
		if _, ok := measured[q]; ok {
			out = append(out, q)
		}
	}
	return out
}

// terminal marks each measurement after which no operation touches any of
// its qubits.
func (s circuitSnapshot) terminal() []bool {
	out := make([]bool, len(s.ops))
	touched := make(map[Qubit]struct{})

	for i := len(s.ops) - 1; i >= 0; i-- {
		qubits := s.ops[i].Qubits()
		if _, ok := s.ops[i].(MeasurementOperation); ok {
			out[i] = true
			for _, q := range qubits {
				if _, hit := touched[q]; hit {
					out[i] = false
					break
				}
			}
		}
		for _, q := range qubits {
			touched[q] = struct{}{}
		}
	}
	return out
}

// firstMeasurement returns the index of the first measurement, or len(ops).
func (s circuitSnapshot) firstMeasurement() int {
	for i, op := range s.ops {
		if _, ok := op.(MeasurementOperation); ok {
			return i
		}
	}
	return len(s.ops)
}
