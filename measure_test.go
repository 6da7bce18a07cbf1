package qsim

import (
	"context"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestProbComplementsToOne(t *testing.T) {
	ctx := context.Background()
	r, err := New(2, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.H(ctx, 0); err != nil {
		t.Fatalf("H: %v", err)
	}
	if err := r.RY(ctx, 0.83, 1); err != nil {
		t.Fatalf("RY: %v", err)
	}

	for q := 0; q < 2; q++ {
		oneChance, err := r.Prob(ctx, q)
		if err != nil {
			t.Fatalf("Prob: %v", err)
		}
		zeroChance := r.probOfBit(ctx, q, false)
		if math.Abs(oneChance+zeroChance-1.0) > 1e-9 {
			t.Fatalf("qubit %d: Prob+Prob' = %v, want 1", q, oneChance+zeroChance)
		}
	}
}

func TestProbArraySumsToOne(t *testing.T) {
	ctx := context.Background()
	r, err := New(3, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := r.H(ctx, i); err != nil {
			t.Fatalf("H: %v", err)
		}
	}
	arr, err := r.ProbArray()
	if err != nil {
		t.Fatalf("ProbArray: %v", err)
	}
	var total float64
	for _, p := range arr {
		total += p
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Fatalf("ProbArray sums to %v, want 1", total)
	}
}

func TestMeasurementOutOfRangeFails(t *testing.T) {
	Convey("Given a 2-qubit register", t, func() {
		ctx := context.Background()
		r, err := New(2, nil)
		So(err, ShouldBeNil)

		Convey("M on an out-of-range qubit fails", func() {
			_, err := r.M(ctx, 5)
			So(err, ShouldNotBeNil)
		})

		Convey("MAll on an out-of-range permutation fails", func() {
			_, err := r.MAll(ctx, 99)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMAllCollapsesToChosenPermutationOnSuccess(t *testing.T) {
	ctx := context.Background()
	r, err := NewWithPermutation(2, 2, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := r.MAll(ctx, 2)
	if err != nil {
		t.Fatalf("MAll: %v", err)
	}
	if !result {
		t.Fatalf("expected MAll to succeed deterministically when probability is 1")
	}
	p, err := r.ProbAll(2)
	if err != nil {
		t.Fatalf("ProbAll: %v", err)
	}
	if math.Abs(p-1.0) > 1e-9 {
		t.Fatalf("ProbAll(2) = %v after deterministic MAll, want 1", p)
	}
}

func TestMAllFailsAndRescalesWhenImpossible(t *testing.T) {
	ctx := context.Background()
	r, err := NewWithPermutation(2, 2, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	result, err := r.MAll(ctx, 1)
	if err != nil {
		t.Fatalf("MAll: %v", err)
	}
	if result {
		t.Fatalf("expected MAll to fail deterministically when probability is 0")
	}
	p, err := r.ProbAll(1)
	if err != nil {
		t.Fatalf("ProbAll: %v", err)
	}
	if p > 1e-9 {
		t.Fatalf("ProbAll(1) = %v after failed MAll, want 0", p)
	}
	p2, err := r.ProbAll(2)
	if err != nil {
		t.Fatalf("ProbAll: %v", err)
	}
	if math.Abs(p2-1.0) > 1e-9 {
		t.Fatalf("ProbAll(2) = %v after rescale, want 1", p2)
	}
}
