package qsim

import (
	"context"
	"math"
	"testing"
)

func TestCohereGrowsQubitCountAndPreservesMagnitudes(t *testing.T) {
	ctx := context.Background()
	a := mustNewPermutation(t, 2, 1)
	b := mustNewPermutation(t, 1, 1)

	if err := a.Cohere(ctx, b); err != nil {
		t.Fatalf("Cohere: %v", err)
	}
	if a.QubitCount() != 3 {
		t.Fatalf("QubitCount after Cohere = %d, want 3", a.QubitCount())
	}
	// a held |01>, b held |1>; the joint basis index is 1 | (1<<2) = 5.
	assertCertainPermutation(t, a, 5)
}

func TestCohereThenDisposeRoundTripsMagnitudes(t *testing.T) {
	ctx := context.Background()
	a := mustNewPermutation(t, 2, 2)
	b := mustNewPermutation(t, 1, 1)

	if err := a.Cohere(ctx, b); err != nil {
		t.Fatalf("Cohere: %v", err)
	}
	if err := a.Dispose(ctx, 2, 1); err != nil {
		t.Fatalf("Dispose: %v", err)
	}
	if a.QubitCount() != 2 {
		t.Fatalf("QubitCount after Dispose = %d, want 2", a.QubitCount())
	}
	assertCertainPermutation(t, a, 2)
}

func TestDecohereSplitsMagnitudesAcrossBothSides(t *testing.T) {
	ctx := context.Background()
	src := mustNewPermutation(t, 3, 5) // |101>
	dest := mustNewPermutation(t, 1, 0)

	if err := src.Decohere(ctx, 2, 1, dest); err != nil {
		t.Fatalf("Decohere: %v", err)
	}
	if src.QubitCount() != 2 {
		t.Fatalf("src.QubitCount after Decohere = %d, want 2", src.QubitCount())
	}
	// bit 2 (value 1) goes to dest; the remaining bits (01) stay on src.
	assertCertainPermutation(t, dest, 1)
	assertCertainPermutation(t, src, 1)
}

func TestDecohereRejectsMismatchedDestWidth(t *testing.T) {
	ctx := context.Background()
	src := mustNewPermutation(t, 3, 0)
	dest := mustNewPermutation(t, 2, 0)

	if err := src.Decohere(ctx, 1, 1, dest); err == nil {
		t.Fatalf("expected error when dest qubit count does not match length")
	}
}

func TestCoherenceEventsAreRecorded(t *testing.T) {
	ctx := context.Background()
	a := mustNewPermutation(t, 1, 0)
	b := mustNewPermutation(t, 1, 0)
	if err := a.Cohere(ctx, b); err != nil {
		t.Fatalf("Cohere: %v", err)
	}
	if err := a.Dispose(ctx, 1, 1); err != nil {
		t.Fatalf("Dispose: %v", err)
	}

	events := a.coherence.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 coherence events, got %d", len(events))
	}
	if events[0].Op != "Cohere" || events[1].Op != "Dispose" {
		t.Fatalf("unexpected event sequence: %+v", events)
	}
}

func TestProbArraySumsToOneAfterCohere(t *testing.T) {
	ctx := context.Background()
	a, err := New(1, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.H(ctx, 0); err != nil {
		t.Fatalf("H: %v", err)
	}
	b, err := New(1, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.H(ctx, 0); err != nil {
		t.Fatalf("H: %v", err)
	}
	if err := a.Cohere(ctx, b); err != nil {
		t.Fatalf("Cohere: %v", err)
	}
	arr, err := a.ProbArray()
	if err != nil {
		t.Fatalf("ProbArray: %v", err)
	}
	var total float64
	for _, p := range arr {
		total += p
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Fatalf("total probability after Cohere = %v, want 1", total)
	}
}
