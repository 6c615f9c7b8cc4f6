package qsim

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTooManyQubits      = errors.New("register exceeds configured qubit limit")
	ErrInvalidRepetitions = errors.New("repetitions must not be negative")
	ErrBatchAborted       = errors.New("batch aborted after an earlier trial failed")
)

// UnknownGateError is returned when a gate name is not in the library.
type UnknownGateError struct {
	Name string
}

func (e *UnknownGateError) Error() string {
	return fmt.Sprintf("unknown gate %q", e.Name)
}

// UnknownQubitError is returned when an operation targets a qubit that is
// not part of the register being simulated.
type UnknownQubitError struct {
	Qubit     Qubit
	Operation Operation
}

func (e *UnknownQubitError) Error() string {
	if e.Operation == nil {
		return fmt.Sprintf("qubit %s is not in the simulated register", e.Qubit)
	}
	return fmt.Sprintf("qubit %s of %s is not in the simulated register", e.Qubit, e.Operation)
}

/*
NormalizationError signals that the squared magnitudes of a state vector no
longer sum to one. Gate application preserves the norm, so this is an
internal fault and never a user error.
*/
type NormalizationError struct {
	Norm      float64
	Tolerance float64
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf(
		"state vector norm %.12f deviates from 1 by more than %g",
		e.Norm, e.Tolerance,
	)
}

// InvalidOperationError rejects an operation before it enters a circuit.
type InvalidOperationError struct {
	Operation Operation
	Reason    string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %s: %s", e.Operation, e.Reason)
}

func operationError(index int, op Operation, err error) error {
	names := make([]string, 0, len(op.Qubits()))
	for _, q := range op.Qubits() {
		names = append(names, q.String())
	}
	return fmt.Errorf("operation %d on [%s]: %w", index, strings.Join(names, ", "), err)
}
