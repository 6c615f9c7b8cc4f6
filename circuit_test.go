package qsim

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCircuit(t *testing.T) {
	Convey("Given a circuit", t, func() {
		q := NamedQubitRange(3, "q")
		circuit, err := NewCircuit(H.On(q[1]), CNOT.On(q[1], q[0]))
		So(err, ShouldBeNil)

		Convey("Qubits should register on first use", func() {
			So(circuit.Qubits(), ShouldResemble, []Qubit{q[1], q[0]})
			So(circuit.NumQubits(), ShouldEqual, 2)
		})

		Convey("Operations should keep append order", func() {
			So(circuit.Append(Z.On(q[0]), Z.On(q[0])), ShouldBeNil)
			So(circuit.Len(), ShouldEqual, 4)
			So(circuit.String(), ShouldEqual, "H(q1)\nCNOT(q1, q0)\nZ(q0)\nZ(q0)")
		})

		Convey("AppendGate should resolve names", func() {
			So(circuit.AppendGate("x", q[2]), ShouldBeNil)
			So(circuit.Qubits()[2], ShouldEqual, q[2])

			err := circuit.AppendGate("nope", q[2])
			var unknown *UnknownGateError
			So(errors.As(err, &unknown), ShouldBeTrue)
		})

		Convey("Invalid operations should be rejected as a whole", func() {
			var invalid *InvalidOperationError

			err := circuit.Append(X.On(q[2]), CNOT.On(q[0]))
			So(errors.As(err, &invalid), ShouldBeTrue)
			So(circuit.Len(), ShouldEqual, 2)
			So(circuit.NumQubits(), ShouldEqual, 2)

			So(errors.As(circuit.Append(CNOT.On(q[0], q[0])), &invalid), ShouldBeTrue)
			So(errors.As(circuit.Append(Measure()), &invalid), ShouldBeTrue)
			So(errors.As(circuit.Append(Operation(nil)), &invalid), ShouldBeTrue)
			So(errors.As(circuit.Append(Gate{}.On(q[0])), &invalid), ShouldBeTrue)
		})

		Convey("Operations should be a copy", func() {
			ops := circuit.Operations()
			ops[0] = X.On(q[2])
			So(circuit.Operations()[0].String(), ShouldEqual, "H(q1)")
		})

		Convey("Measured qubits should follow register order", func() {
			So(circuit.HasMeasurements(), ShouldBeFalse)
			So(circuit.Append(Measure(q[0]), Measure(q[1])), ShouldBeNil)
			So(circuit.HasMeasurements(), ShouldBeTrue)
			So(circuit.MeasuredQubits(), ShouldResemble, []Qubit{q[1], q[0]})
		})
	})

	Convey("Given measurements in the middle and at the end", t, func() {
		q := NamedQubitRange(2, "q")
		circuit, err := NewCircuit(
			H.On(q[0]),
			Measure(q[0]),
			X.On(q[0]),
			Measure(q[1]),
			Measure(q[0]),
		)
		So(err, ShouldBeNil)

		snap := circuit.snapshot()

		So(snap.terminal(), ShouldResemble, []bool{false, false, false, true, true})
		So(snap.firstMeasurement(), ShouldEqual, 1)
	})
}
