package qsim

import (
	"context"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func mustNewPermutation(t *testing.T, n int, p uint64) *Register {
	r, err := NewWithPermutation(n, p, nil)
	if err != nil {
		t.Fatalf("NewWithPermutation: %v", err)
	}
	return r
}

func assertCertainPermutation(t *testing.T, r *Register, want uint64) {
	prob, err := r.ProbAll(want)
	if err != nil {
		t.Fatalf("ProbAll: %v", err)
	}
	if math.Abs(prob-1.0) > 1e-6 {
		t.Fatalf("ProbAll(%d) = %v, want ~1", want, prob)
	}
}

func TestROLThenRORIsIdentity(t *testing.T) {
	ctx := context.Background()
	r := mustNewPermutation(t, 4, 0b1011)
	if err := r.ROL(ctx, 3, 0, 4); err != nil {
		t.Fatalf("ROL: %v", err)
	}
	if err := r.ROR(ctx, 3, 0, 4); err != nil {
		t.Fatalf("ROR: %v", err)
	}
	assertCertainPermutation(t, r, 0b1011)
}

// Literal scenario 4: 4 qubits, |0101> (=5), INC(3, 0, 4) -> |1000> (=8).
func TestScenarioIncrementByThree(t *testing.T) {
	ctx := context.Background()
	r := mustNewPermutation(t, 4, 5)
	if err := r.INC(ctx, 3, 0, 4); err != nil {
		t.Fatalf("INC: %v", err)
	}
	assertCertainPermutation(t, r, 8)
}

func TestINCThenDECIsIdentity(t *testing.T) {
	ctx := context.Background()
	r := mustNewPermutation(t, 5, 12)
	if err := r.INC(ctx, 9, 0, 5); err != nil {
		t.Fatalf("INC: %v", err)
	}
	if err := r.DEC(ctx, 9, 0, 5); err != nil {
		t.Fatalf("DEC: %v", err)
	}
	assertCertainPermutation(t, r, 12)
}

func TestIncrementWrapsModuloRangeSize(t *testing.T) {
	ctx := context.Background()
	r := mustNewPermutation(t, 4, 5)
	for i := 0; i < 2; i++ {
		if err := r.INC(ctx, 6, 0, 4); err != nil {
			t.Fatalf("INC: %v", err)
		}
	}
	assertCertainPermutation(t, r, (5+12)%16)
}

// Literal scenario 5 (§8): BCD 09 + BCD 02 = BCD 11. Each operand is a
// two-digit BCD word (8 bits, two nibbles) so the tens-digit carry has
// a nibble to land in.
func TestScenarioAddBCD(t *testing.T) {
	ctx := context.Background()
	r := mustNewPermutation(t, 16, 9|(2<<8))
	if err := r.ADDBCD(ctx, 0, 8, 8); err != nil {
		t.Fatalf("ADDBCD: %v", err)
	}
	want := uint64(0x11) | (uint64(2) << 8)
	assertCertainPermutation(t, r, want)
}

func TestADDBCDRejectsLengthNotMultipleOfFour(t *testing.T) {
	ctx := context.Background()
	r := mustNewPermutation(t, 6, 0)
	if err := r.ADDBCD(ctx, 0, 3, 3); err == nil {
		t.Fatalf("expected error for BCD length not a multiple of 4")
	}
}

func TestADDThenSUBIsIdentity(t *testing.T) {
	ctx := context.Background()
	r := mustNewPermutation(t, 8, 7|(3<<4))
	if err := r.ADD(ctx, 0, 4, 4); err != nil {
		t.Fatalf("ADD: %v", err)
	}
	if err := r.SUB(ctx, 0, 4, 4); err != nil {
		t.Fatalf("SUB: %v", err)
	}
	assertCertainPermutation(t, r, 7|(3<<4))
}

func TestADDCRejectsCarryIndexOverlap(t *testing.T) {
	r := mustNewPermutation(t, 9, 0)
	ctx := context.Background()
	if err := r.ADDC(ctx, 0, 4, 4, 1); err == nil {
		t.Fatalf("expected error when carryIndex overlaps inOut range")
	}
	if err := r.ADDC(ctx, 0, 4, 4, 5); err == nil {
		t.Fatalf("expected error when carryIndex overlaps in range")
	}
	if err := r.ADDC(ctx, 0, 4, 4, 8); err != nil {
		t.Fatalf("ADDC with disjoint carryIndex should succeed: %v", err)
	}
}

func TestLogicalShiftBoundaryBehaviors(t *testing.T) {
	Convey("Given a 4-qubit register holding |1111>", t, func() {
		ctx := context.Background()
		r := mustNewPermutation(t, 4, 0b1111)

		Convey("a zero-length range is a no-op", func() {
			So(r.LSL(ctx, 1, 0, 0), ShouldBeNil)
			assertCertainPermutation(t, r, 0b1111)
		})

		Convey("shift >= length clears the entire range", func() {
			So(r.LSL(ctx, 4, 0, 4), ShouldBeNil)
			assertCertainPermutation(t, r, 0)
		})
	})

	Convey("Given a 4-qubit register holding |0011>", t, func() {
		ctx := context.Background()
		r := mustNewPermutation(t, 4, 0b0011)

		Convey("LSL by 1 shifts left and clears the vacated low bit", func() {
			So(r.LSL(ctx, 1, 0, 4), ShouldBeNil)
			assertCertainPermutation(t, r, 0b0110)
		})

		Convey("LSR by 1 shifts right and clears the vacated high bit", func() {
			So(r.LSR(ctx, 1, 0, 4), ShouldBeNil)
			assertCertainPermutation(t, r, 0b0001)
		})
	})
}

func TestASLAndASRBoundaryBehaviors(t *testing.T) {
	Convey("Given a 4-qubit register holding |1111>", t, func() {
		ctx := context.Background()
		r := mustNewPermutation(t, 4, 0b1111)

		Convey("a zero shift on ASL is a no-op", func() {
			So(r.ASL(ctx, 0, 0, 4), ShouldBeNil)
			assertCertainPermutation(t, r, 0b1111)
		})

		Convey("shift >= length clears the entire range on ASL", func() {
			So(r.ASL(ctx, 4, 0, 4), ShouldBeNil)
			assertCertainPermutation(t, r, 0)
		})

		Convey("shift >= length clears the entire range on ASR", func() {
			So(r.ASR(ctx, 4, 0, 4), ShouldBeNil)
			assertCertainPermutation(t, r, 0)
		})
	})
}

func TestRangeOutOfBoundsRejected(t *testing.T) {
	ctx := context.Background()
	r := mustNewPermutation(t, 4, 0)
	if err := r.ROL(ctx, 1, 2, 4); err == nil {
		t.Fatalf("expected error for range exceeding qubit count")
	}
}
