package qsim

import (
	"context"
	"testing"
)

func basisTriple(a, b, out bool) uint64 {
	var p uint64
	if a {
		p |= 1
	}
	if b {
		p |= 2
	}
	if out {
		p |= 4
	}
	return p
}

func TestANDTruthTable(t *testing.T) {
	ctx := context.Background()
	for _, a := range []bool{false, true} {
		for _, b := range []bool{false, true} {
			r := mustNewPermutation(t, 3, basisTriple(a, b, false))
			if err := r.AND(ctx, 0, 1, 2); err != nil {
				t.Fatalf("AND(%v,%v): %v", a, b, err)
			}
			assertCertainPermutation(t, r, basisTriple(a, b, a && b))
		}
	}
}

func TestORTruthTable(t *testing.T) {
	ctx := context.Background()
	for _, a := range []bool{false, true} {
		for _, b := range []bool{false, true} {
			r := mustNewPermutation(t, 3, basisTriple(a, b, false))
			if err := r.OR(ctx, 0, 1, 2); err != nil {
				t.Fatalf("OR(%v,%v): %v", a, b, err)
			}
			assertCertainPermutation(t, r, basisTriple(a, b, a || b))
		}
	}
}

func TestXORTruthTable(t *testing.T) {
	ctx := context.Background()
	for _, a := range []bool{false, true} {
		for _, b := range []bool{false, true} {
			r := mustNewPermutation(t, 3, basisTriple(a, b, false))
			if err := r.XOR(ctx, 0, 1, 2); err != nil {
				t.Fatalf("XOR(%v,%v): %v", a, b, err)
			}
			assertCertainPermutation(t, r, basisTriple(a, b, a != b))
		}
	}
}

func TestCLANDAndCLORAndCLXORAgainstClassicalBit(t *testing.T) {
	ctx := context.Background()
	for _, a := range []bool{false, true} {
		for _, classical := range []bool{false, true} {
			r := mustNewPermutation(t, 2, basisTriple(a, classical, false))
			if err := r.CLAND(ctx, 0, classical, 1); err != nil {
				t.Fatalf("CLAND: %v", err)
			}
			want := uint64(0)
			if a {
				want |= 1
			}
			if a && classical {
				want |= 2
			}
			assertCertainPermutation(t, r, want)
		}
	}

	for _, a := range []bool{false, true} {
		for _, classical := range []bool{false, true} {
			r := mustNewPermutation(t, 2, basisTriple(a, classical, false))
			if err := r.CLOR(ctx, 0, classical, 1); err != nil {
				t.Fatalf("CLOR: %v", err)
			}
			want := uint64(0)
			if a {
				want |= 1
			}
			if a || classical {
				want |= 2
			}
			assertCertainPermutation(t, r, want)
		}
	}

	for _, a := range []bool{false, true} {
		for _, classical := range []bool{false, true} {
			r := mustNewPermutation(t, 2, basisTriple(a, classical, false))
			if err := r.CLXOR(ctx, 0, classical, 1); err != nil {
				t.Fatalf("CLXOR: %v", err)
			}
			want := uint64(0)
			if a {
				want |= 1
			}
			if a != classical {
				want |= 2
			}
			assertCertainPermutation(t, r, want)
		}
	}
}

func TestANDWithOutputOverlappingInputUsesAncillaPath(t *testing.T) {
	ctx := context.Background()
	// output == inputBit1: AND(0,1,0) must leave qubit0 holding (old
	// qubit0 AND qubit1), qubit1 untouched, and the qubit count restored
	// to 2 once the ancilla is disposed of.
	for _, a := range []bool{false, true} {
		for _, b := range []bool{false, true} {
			start := uint64(0)
			if a {
				start |= 1
			}
			if b {
				start |= 2
			}
			r := mustNewPermutation(t, 2, start)
			if err := r.AND(ctx, 0, 1, 0); err != nil {
				t.Fatalf("AND(%v,%v) with overlapping output: %v", a, b, err)
			}
			if r.QubitCount() != 2 {
				t.Fatalf("QubitCount changed across AND with ancilla: got %d, want 2", r.QubitCount())
			}
			want := uint64(0)
			if a && b {
				want |= 1
			}
			if b {
				want |= 2
			}
			assertCertainPermutation(t, r, want)
		}
	}
}

func TestANDRangeIsBitwise(t *testing.T) {
	ctx := context.Background()
	// two 2-bit inputs 0b10 and 0b11 at bits[0,2) and [2,4), output at [4,6).
	in1 := uint64(0b10)
	in2 := uint64(0b11)
	r := mustNewPermutation(t, 6, in1|(in2<<2))
	if err := r.ANDRange(ctx, 0, 2, 4, 2); err != nil {
		t.Fatalf("ANDRange: %v", err)
	}
	want := in1 | (in2 << 2) | ((in1 & in2) << 4)
	assertCertainPermutation(t, r, want)
}
