package qsim

import (
	"context"
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	. "github.com/smartystreets/goconvey/convey"
)

func magnitudes(t *testing.T, r *Register) []float64 {
	state, err := r.CloneRawState()
	if err != nil {
		t.Fatalf("CloneRawState: %v", err)
	}
	out := make([]float64, len(state))
	for i, a := range state {
		out[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return out
}

func assertMagnitudesEqual(t *testing.T, a, b []float64) {
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			t.Fatalf("magnitude mismatch at %d: %v vs %v\ngot:  %s\nwant: %s",
				i, a[i], b[i], spew.Sdump(a), spew.Sdump(b))
		}
	}
}

func TestSelfInverseGatesAreIdentityUpToGlobalPhase(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name string
		op   func(*Register) error
	}{
		{"X", func(r *Register) error { return r.X(ctx, 1) }},
		{"Y", func(r *Register) error { return r.Y(ctx, 1) }},
		{"Z", func(r *Register) error { return r.Z(ctx, 1) }},
		{"H", func(r *Register) error { return r.H(ctx, 1) }},
	}
	for _, c := range cases {
		r, err := New(3, nil)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := r.H(ctx, 0); err != nil {
			t.Fatalf("H seed: %v", err)
		}
		if err := r.CNOT(ctx, 0, 2); err != nil {
			t.Fatalf("CNOT seed: %v", err)
		}
		before := magnitudes(t, r)
		if err := c.op(r); err != nil {
			t.Fatalf("%s first application: %v", c.name, err)
		}
		if err := c.op(r); err != nil {
			t.Fatalf("%s second application: %v", c.name, err)
		}
		after := magnitudes(t, r)
		assertMagnitudesEqual(t, before, after)
	}
}

func TestCNOTIsSelfInverse(t *testing.T) {
	ctx := context.Background()
	r, err := New(2, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.H(ctx, 0); err != nil {
		t.Fatalf("H: %v", err)
	}
	before := magnitudes(t, r)
	if err := r.CNOT(ctx, 0, 1); err != nil {
		t.Fatalf("CNOT: %v", err)
	}
	if err := r.CNOT(ctx, 0, 1); err != nil {
		t.Fatalf("CNOT: %v", err)
	}
	assertMagnitudesEqual(t, before, magnitudes(t, r))
}

func TestGatePreconditionErrors(t *testing.T) {
	Convey("Given a 3-qubit register", t, func() {
		ctx := context.Background()
		r, err := New(3, nil)
		So(err, ShouldBeNil)

		Convey("CNOT rejects control == target", func() {
			So(r.CNOT(ctx, 1, 1), ShouldNotBeNil)
		})

		Convey("CCNOT rejects duplicate controls", func() {
			So(r.CCNOT(ctx, 0, 0, 1), ShouldNotBeNil)
		})

		Convey("CCNOT rejects a control equal to the target", func() {
			So(r.CCNOT(ctx, 0, 1, 0), ShouldNotBeNil)
		})

		Convey("a gate on an out-of-range qubit fails", func() {
			So(r.X(ctx, 3), ShouldNotBeNil)
			So(r.X(ctx, -1), ShouldNotBeNil)
		})

		Convey("Swap with equal indices is a no-op, not an error", func() {
			before := magnitudes(t, r)
			So(r.Swap(ctx, 1, 1), ShouldBeNil)
			assertMagnitudesEqual(t, before, magnitudes(t, r))
		})
	})
}

func TestDyadicAngleConventions(t *testing.T) {
	ctx := context.Background()

	Convey("Given R1Dyad and RXDyad on a single qubit", t, func() {
		r3, _ := New(1, nil)
		r4, _ := New(1, nil)
		So(r3.R1Dyad(ctx, 1, 4, 0), ShouldBeNil)
		So(r4.R1(ctx, math.Pi*1*2/4, 0), ShouldBeNil)
		assertMagnitudesEqual(t, magnitudes(t, r3), magnitudes(t, r4))

		r5, _ := New(1, nil)
		r6, _ := New(1, nil)
		So(r5.RXDyad(ctx, 1, 4, 0), ShouldBeNil)
		So(r6.RX(ctx, -math.Pi*1*2/4, 0), ShouldBeNil)
		assertMagnitudesEqual(t, magnitudes(t, r5), magnitudes(t, r6))
	})
}

func TestXRangeFlipsEveryQubitInWindow(t *testing.T) {
	ctx := context.Background()
	r := mustNewPermutation(t, 4, 0b0101)
	if err := r.XRange(ctx, 0, 3); err != nil {
		t.Fatalf("XRange: %v", err)
	}
	assertCertainPermutation(t, r, 0b0010)
}

func TestHRangeMatchesPerQubitH(t *testing.T) {
	ctx := context.Background()
	a, err := New(3, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(3, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.HRange(ctx, 0, 3); err != nil {
		t.Fatalf("HRange: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := b.H(ctx, i); err != nil {
			t.Fatalf("H: %v", err)
		}
	}
	assertMagnitudesEqual(t, magnitudes(t, a), magnitudes(t, b))
}

func TestYRangeAndZRangeMatchPerQubitApplication(t *testing.T) {
	ctx := context.Background()
	a, err := New(3, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(3, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.H(ctx, 0); err != nil {
		t.Fatalf("seed H: %v", err)
	}
	if err := b.H(ctx, 0); err != nil {
		t.Fatalf("seed H: %v", err)
	}
	if err := a.YRange(ctx, 0, 2); err != nil {
		t.Fatalf("YRange: %v", err)
	}
	if err := a.ZRange(ctx, 0, 2); err != nil {
		t.Fatalf("ZRange: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := b.Y(ctx, i); err != nil {
			t.Fatalf("Y: %v", err)
		}
	}
	for i := 0; i < 2; i++ {
		if err := b.Z(ctx, i); err != nil {
			t.Fatalf("Z: %v", err)
		}
	}
	assertMagnitudesEqual(t, magnitudes(t, a), magnitudes(t, b))
}

func TestCNOTRangeAndCCNOTRangeActBitwise(t *testing.T) {
	ctx := context.Background()
	// controls at [0,2) start at 1, targets at [2,4) start at 0.
	r := mustNewPermutation(t, 4, 0b0011)
	if err := r.CNOTRange(ctx, 0, 2, 2); err != nil {
		t.Fatalf("CNOTRange: %v", err)
	}
	assertCertainPermutation(t, r, 0b1111)

	r2 := mustNewPermutation(t, 6, 0b001111)
	if err := r2.CCNOTRange(ctx, 0, 2, 4, 2); err != nil {
		t.Fatalf("CCNOTRange: %v", err)
	}
	assertCertainPermutation(t, r2, 0b111111)
}
