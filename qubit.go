package qsim

import (
	"fmt"
	"strconv"
)

// NoIndex marks a qubit that is identified by name alone.
const NoIndex = -1

/*
Qubit identifies one two-level system in a register. It carries no state of
its own: amplitudes live in the StateVector. Two qubits are the same qubit
when their name and index match, so constructing NamedQubit("q0") twice
refers to one wire.
*/
type Qubit struct {
	Name  string
	Index int
}

// NamedQubit returns the qubit identified by name alone.
func NamedQubit(name string) Qubit {
	return Qubit{Name: name, Index: NoIndex}
}

/*
IndexedQubit returns the qubit name[index]. Indices are non-negative; any
negative index means "no index", so IndexedQubit("q", NoIndex) and
IndexedQubit("q", -5) are both the same qubit as NamedQubit("q").
*/
func IndexedQubit(name string, index int) Qubit {
	if index < 0 {
		index = NoIndex
	}
	return Qubit{Name: name, Index: index}
}

// NamedQubitRange returns prefix0 .. prefix{n-1}, or nil when n < 0.
func NamedQubitRange(n int, prefix string) []Qubit {
	if n < 0 {
		return nil
	}
	qubits := make([]Qubit, n)
	for i := range qubits {
		qubits[i] = NamedQubit(prefix + strconv.Itoa(i))
	}
	return qubits
}

func (q Qubit) String() string {
	if q.Index == NoIndex {
		return q.Name
	}
	return fmt.Sprintf("%s[%d]", q.Name, q.Index)
}
