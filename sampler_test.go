package qsim

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func bellCircuit(q []Qubit) *Circuit {
	return mustCircuit(H.On(q[0]), CNOT.On(q[0], q[1]), Measure(q[0], q[1]))
}

func TestSamplerRun(t *testing.T) {
	Convey("Given a seeded sampler", t, func() {
		ctx := context.Background()
		sampler := NewSampler(NewSimulator(&Config{Seed: 7}))
		q := NamedQubitRange(3, "q")

		Convey("A Bell circuit should only yield correlated outcomes", func() {
			result, err := sampler.Run(ctx, bellCircuit(q), 10000)
			So(err, ShouldBeNil)
			So(result.Repetitions(), ShouldEqual, 10000)

			counts := Histogram(result)
			So(len(counts), ShouldEqual, 2)
			So(counts["00"]+counts["11"], ShouldEqual, 10000)
			So(float64(counts["00"])/10000, ShouldBeBetweenOrEqual, 0.45, 0.55)
			So(float64(counts["11"])/10000, ShouldBeBetweenOrEqual, 0.45, 0.55)
		})

		Convey("Measuring an untouched register should always give zeros", func() {
			circuit := mustCircuit(Measure(q...))
			result, err := sampler.Run(ctx, circuit, 500)
			So(err, ShouldBeNil)
			So(Histogram(result), ShouldResemble, map[string]int{"000": 500})
			So(sampler.Metrics()["trial_count"], ShouldEqual, int64(500))
		})

		Convey("Columns should follow register order, not measurement order", func() {
			circuit := mustCircuit(X.On(q[0]), Measure(q[1]), Measure(q[0]))
			result, err := sampler.Run(ctx, circuit, 20)
			So(err, ShouldBeNil)
			So(result.Qubits, ShouldResemble, []Qubit{q[0], q[1]})
			So(Histogram(result), ShouldResemble, map[string]int{"10": 20})
		})

		Convey("A circuit without measurements should give an empty result", func() {
			result, err := sampler.Run(ctx, mustCircuit(H.On(q[0])), 100)
			So(err, ShouldBeNil)
			So(result.Qubits, ShouldBeEmpty)
			So(result.Trials, ShouldBeEmpty)
			So(Histogram(result), ShouldBeEmpty)
		})

		Convey("Zero repetitions should give an empty table", func() {
			result, err := sampler.Run(ctx, bellCircuit(q), 0)
			So(err, ShouldBeNil)
			So(result.Repetitions(), ShouldEqual, 0)
			So(len(result.Qubits), ShouldEqual, 2)
		})

		Convey("Negative repetitions should be rejected", func() {
			_, err := sampler.Run(ctx, bellCircuit(q), -1)
			So(errors.Is(err, ErrInvalidRepetitions), ShouldBeTrue)
		})

		Convey("A mid-circuit measurement should feed later gates", func() {
			circuit := mustCircuit(
				H.On(q[0]),
				Measure(q[0]),
				CNOT.On(q[0], q[1]),
				Measure(q[1]),
			)
			result, err := sampler.Run(ctx, circuit, 200)
			So(err, ShouldBeNil)

			counts := Histogram(result)
			So(counts["00"]+counts["11"], ShouldEqual, 200)
			So(counts["00"], ShouldBeGreaterThan, 0)
			So(counts["11"], ShouldBeGreaterThan, 0)
		})

		Convey("The same seed should reproduce the same table", func() {
			first, err := sampler.Run(ctx, bellCircuit(q), 300)
			So(err, ShouldBeNil)
			second, err := NewSampler(NewSimulator(&Config{Seed: 7})).Run(ctx, bellCircuit(q), 300)
			So(err, ShouldBeNil)
			So(second.Trials, ShouldResemble, first.Trials)
			So(second.RunID, ShouldNotEqual, first.RunID)
		})
	})
}

func TestSamplerRepeatedCalls(t *testing.T) {
	Convey("Given one sampler called many times", t, func() {
		ctx := context.Background()
		sampler := NewSampler(NewSimulator(&Config{Seed: 11}))
		q := NamedQubit("q")
		circuit := mustCircuit(H.On(q), Measure(q))

		Convey("Single-shot runs should add up to both outcomes", func() {
			counts := map[string]int{}
			for i := 0; i < 200; i++ {
				result, err := sampler.Run(ctx, circuit, 1)
				So(err, ShouldBeNil)
				counts[result.Bitstring(0)]++
			}
			So(counts["0"], ShouldBeGreaterThan, 0)
			So(counts["1"], ShouldBeGreaterThan, 0)
		})

		Convey("Consecutive runs should draw fresh outcomes", func() {
			first, err := sampler.Run(ctx, circuit, 64)
			So(err, ShouldBeNil)
			second, err := sampler.Run(ctx, circuit, 64)
			So(err, ShouldBeNil)
			So(second.Trials, ShouldNotResemble, first.Trials)

			Convey("A fresh sampler with the same seed should replay them", func() {
				replay := NewSampler(NewSimulator(&Config{Seed: 11}))
				again, err := replay.Run(ctx, circuit, 64)
				So(err, ShouldBeNil)
				So(again.Trials, ShouldResemble, first.Trials)
				again, err = replay.Run(ctx, circuit, 64)
				So(err, ShouldBeNil)
				So(again.Trials, ShouldResemble, second.Trials)
			})
		})

		Convey("Consecutive state samples should draw fresh outcomes", func() {
			state, err := sampler.sim.Simulate(mustCircuit(H.On(q)))
			So(err, ShouldBeNil)

			first, err := sampler.SampleState(ctx, state, []Qubit{q}, 64)
			So(err, ShouldBeNil)
			second, err := sampler.SampleState(ctx, state, []Qubit{q}, 64)
			So(err, ShouldBeNil)
			So(second.Trials, ShouldNotResemble, first.Trials)

			again, err := NewSampler(NewSimulator(&Config{Seed: 11})).SampleState(ctx, state, []Qubit{q}, 64)
			So(err, ShouldBeNil)
			So(again.Trials, ShouldResemble, first.Trials)
		})
	})
}

func TestSamplerParallel(t *testing.T) {
	Convey("Given serial and pooled samplers with the same seed", t, func() {
		ctx := context.Background()
		q := NamedQubitRange(3, "q")
		circuit := mustCircuit(
			H.On(q[0]),
			CNOT.On(q[0], q[1]),
			Measure(q[1]),
			H.On(q[2]),
			Measure(q[0], q[2]),
		)

		serial := NewSampler(NewSimulator(&Config{Seed: 99}))
		pooled := NewSampler(NewSimulator(&Config{Seed: 99, Workers: 4, ChunkSize: 37}))

		want, err := serial.Run(ctx, circuit, 1000)
		So(err, ShouldBeNil)
		got, err := pooled.Run(ctx, circuit, 1000)
		So(err, ShouldBeNil)

		So(got.Trials, ShouldResemble, want.Trials)

		metrics := pooled.Metrics()
		So(metrics["trial_count"], ShouldEqual, int64(1000))
		So(metrics["job_count"], ShouldEqual, int64(28))
		So(metrics["success_rate"], ShouldEqual, 1.0)
	})
}

func TestSamplerCancellation(t *testing.T) {
	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		q := NamedQubitRange(2, "q")

		Convey("A serial run should stop before the first trial", func() {
			sampler := NewSampler(NewSimulator(&Config{Seed: 1}))
			_, err := sampler.Run(ctx, bellCircuit(q), 100)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("A pooled run should stop too", func() {
			sampler := NewSampler(NewSimulator(&Config{Seed: 1, Workers: 2}))
			_, err := sampler.Run(ctx, bellCircuit(q), 100)
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given a batch timeout far shorter than the work", t, func() {
		sampler := NewSampler(NewSimulator(&Config{Seed: 1, Timeout: time.Nanosecond}))
		q := NamedQubitRange(2, "q")

		_, err := sampler.Run(context.Background(), bellCircuit(q), 1_000_000)
		So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
	})
}

func TestSamplerSampleState(t *testing.T) {
	Convey("Given a Bell state vector", t, func() {
		ctx := context.Background()
		sim := NewSimulator(&Config{Seed: 3})
		sampler := NewSampler(sim)
		q := NamedQubitRange(2, "q")

		state, err := sim.Simulate(mustCircuit(H.On(q[0]), CNOT.On(q[0], q[1])))
		So(err, ShouldBeNil)
		before := state.Clone()

		Convey("Sampling should leave the vector untouched", func() {
			result, err := sampler.SampleState(ctx, state, []Qubit{q[1], q[0]}, 1000)
			So(err, ShouldBeNil)
			So(result.Qubits, ShouldResemble, []Qubit{q[0], q[1]})

			counts := Histogram(result)
			So(counts["00"]+counts["11"], ShouldEqual, 1000)
			So(state.Amplitudes, ShouldResemble, before.Amplitudes)
		})

		Convey("Sampling one qubit should give its marginal", func() {
			result, err := sampler.SampleState(ctx, state, []Qubit{q[1]}, 1000)
			So(err, ShouldBeNil)

			counts := Histogram(result)
			So(counts["0"]+counts["1"], ShouldEqual, 1000)
			So(float64(counts["1"])/1000, ShouldBeBetweenOrEqual, 0.4, 0.6)
		})

		Convey("An unknown qubit should be rejected", func() {
			_, err := sampler.SampleState(ctx, state, []Qubit{NamedQubit("z")}, 10)
			var unknown *UnknownQubitError
			So(errors.As(err, &unknown), ShouldBeTrue)
		})

		Convey("No qubits should give an empty result", func() {
			result, err := sampler.SampleState(ctx, state, nil, 10)
			So(err, ShouldBeNil)
			So(result.Trials, ShouldBeEmpty)
		})
	})
}
