package qsim

import (
	"fmt"
	"strings"
)

// Operation is one step of a circuit.
type Operation interface {
	Qubits() []Qubit
	String() string
}

// GateOperation is a gate bound to its targets. For two-qubit gates the
// first target is the high-order bit of the gate's basis, the control of
// CNOT and CZ.
type GateOperation struct {
	gate    Gate
	targets []Qubit
}

func (op GateOperation) Gate() Gate { return op.gate }

func (op GateOperation) Qubits() []Qubit {
	out := make([]Qubit, len(op.targets))
	copy(out, op.targets)
	return out
}

func (op GateOperation) String() string {
	return op.gate.Name() + "(" + joinQubits(op.targets) + ")"
}

func (op GateOperation) validate() error {
	if op.gate.qubits == 0 {
		return &InvalidOperationError{Operation: op, Reason: "gate is not initialized"}
	}
	if len(op.targets) != op.gate.qubits {
		return &InvalidOperationError{
			Operation: op,
			Reason: fmt.Sprintf(
				"gate %s acts on %d qubit(s), got %d",
				op.gate.Name(), op.gate.qubits, len(op.targets),
			),
		}
	}
	return checkDistinct(op, op.targets)
}

/*
MeasurementOperation samples its targets in the computational basis. Inside
a run it collapses the state onto the observed outcome. When nothing acts on
its qubits afterwards it is terminal, and FinalStateVector reports the
amplitudes from before it.
*/
type MeasurementOperation struct {
	targets []Qubit
}

// Measure returns a measurement of qubits in the computational basis.
func Measure(qubits ...Qubit) MeasurementOperation {
	targets := make([]Qubit, len(qubits))
	copy(targets, qubits)
	return MeasurementOperation{targets: targets}
}

func (op MeasurementOperation) Qubits() []Qubit {
	out := make([]Qubit, len(op.targets))
	copy(out, op.targets)
	return out
}

func (op MeasurementOperation) String() string {
	return "M(" + joinQubits(op.targets) + ")"
}

func (op MeasurementOperation) validate() error {
	if len(op.targets) == 0 {
		return &InvalidOperationError{Operation: op, Reason: "measurement needs at least one qubit"}
	}
	return checkDistinct(op, op.targets)
}

func validateOperation(op Operation) error {
	switch o := op.(type) {
	case GateOperation:
		return o.validate()
	case MeasurementOperation:
		return o.validate()
	case nil:
		return &InvalidOperationError{Operation: nilOperation{}, Reason: "operation is nil"}
	default:
		return &InvalidOperationError{Operation: op, Reason: fmt.Sprintf("unsupported operation type %T", op)}
	}
}

func checkDistinct(op Operation, qubits []Qubit) error {
	seen := make(map[Qubit]struct{}, len(qubits))
	for _, q := range qubits {
		if _, dup := seen[q]; dup {
			return &InvalidOperationError{
				Operation: op,
				Reason:    fmt.Sprintf("qubit %s appears more than once", q),
			}
		}
		seen[q] = struct{}{}
	}
	return nil
}

func joinQubits(qubits []Qubit) string {
	names := make([]string, len(qubits))
	for i, q := range qubits {
		names[i] = q.String()
	}
	return strings.Join(names, ", ")
}

type nilOperation struct{}

func (nilOperation) Qubits() []Qubit { return nil }
func (nilOperation) String() string  { return "<nil>" }
