package qsim

import "context"

// withAncilla runs body against a fresh single ancilla qubit cohered
// onto r in the given basis permutation (0 or 1), swaps its final
// value onto outputBit, then disposes the ancilla — the pattern
// qrack_ocl.cpp's AND/OR/XOR fall back to whenever outputBit overlaps
// one of the input bits.
func (r *Register) withAncilla(ctx context.Context, permutation uint64, outputBit int, body func(ancilla int) error) error {
	extra, err := NewWithPermutation(1, permutation, r.cfg)
	if err != nil {
		return err
	}
	if err := r.Cohere(ctx, extra); err != nil {
		return err
	}
	ancilla := r.qubitCount - 1
	if err := body(ancilla); err != nil {
		return err
	}
	if err := r.Swap(ctx, ancilla, outputBit); err != nil {
		return err
	}
	return r.Dispose(ctx, r.qubitCount-1, 1)
}

// AND stores inputBit1 AND inputBit2 into outputBit, per §4.8.
func (r *Register) AND(ctx context.Context, inputBit1, inputBit2, outputBit int) error {
	if inputBit1 == inputBit2 && inputBit2 == outputBit {
		return nil
	}
	if inputBit1 == outputBit || inputBit2 == outputBit {
		return r.withAncilla(ctx, 0, outputBit, func(ancilla int) error {
			return r.CCNOT(ctx, inputBit1, inputBit2, ancilla)
		})
	}
	if err := r.SetBit(ctx, outputBit, false); err != nil {
		return err
	}
	if inputBit1 == inputBit2 {
		return r.CNOT(ctx, inputBit1, outputBit)
	}
	return r.CCNOT(ctx, inputBit1, inputBit2, outputBit)
}

// CLAND stores inputQBit AND inputClassicalBit into outputBit.
func (r *Register) CLAND(ctx context.Context, inputQBit int, inputClassicalBit bool, outputBit int) error {
	if inputClassicalBit && inputQBit == outputBit {
		return nil
	}
	if err := r.SetBit(ctx, outputBit, false); err != nil {
		return err
	}
	if inputClassicalBit {
		return r.CNOT(ctx, inputQBit, outputBit)
	}
	return nil
}

// OR stores inputBit1 OR inputBit2 into outputBit, per §4.8.
func (r *Register) OR(ctx context.Context, inputBit1, inputBit2, outputBit int) error {
	if inputBit1 == inputBit2 && inputBit2 == outputBit {
		return nil
	}
	if inputBit1 == outputBit || inputBit2 == outputBit {
		return r.withAncilla(ctx, 1, outputBit, func(ancilla int) error {
			return r.AntiCCNOT(ctx, inputBit1, inputBit2, ancilla)
		})
	}
	if err := r.SetBit(ctx, outputBit, true); err != nil {
		return err
	}
	if inputBit1 == inputBit2 {
		return r.AntiCNOT(ctx, inputBit1, outputBit)
	}
	return r.AntiCCNOT(ctx, inputBit1, inputBit2, outputBit)
}

// CLOR stores inputQBit OR inputClassicalBit into outputBit.
func (r *Register) CLOR(ctx context.Context, inputQBit int, inputClassicalBit bool, outputBit int) error {
	if !inputClassicalBit && inputQBit == outputBit {
		return nil
	}
	if inputClassicalBit {
		return r.SetBit(ctx, outputBit, true)
	}
	if err := r.SetBit(ctx, outputBit, false); err != nil {
		return err
	}
	return r.CNOT(ctx, inputQBit, outputBit)
}

// XOR stores inputBit1 XOR inputBit2 into outputBit, per §4.8.
func (r *Register) XOR(ctx context.Context, inputBit1, inputBit2, outputBit int) error {
	if inputBit1 == inputBit2 && inputBit2 == outputBit {
		return r.SetBit(ctx, outputBit, false)
	}
	if inputBit1 == outputBit || inputBit2 == outputBit {
		return r.withAncilla(ctx, 0, outputBit, func(ancilla int) error {
			if err := r.CNOT(ctx, inputBit1, ancilla); err != nil {
				return err
			}
			return r.CNOT(ctx, inputBit2, ancilla)
		})
	}
	if err := r.SetBit(ctx, outputBit, false); err != nil {
		return err
	}
	if err := r.CNOT(ctx, inputBit1, outputBit); err != nil {
		return err
	}
	return r.CNOT(ctx, inputBit2, outputBit)
}

// CLXOR stores inputQBit XOR inputClassicalBit into outputBit.
func (r *Register) CLXOR(ctx context.Context, inputQBit int, inputClassicalBit bool, outputBit int) error {
	if inputQBit == outputBit {
		if inputClassicalBit {
			return r.X(ctx, outputBit)
		}
		return nil
	}
	if err := r.SetBit(ctx, outputBit, inputClassicalBit); err != nil {
		return err
	}
	return r.CNOT(ctx, inputQBit, outputBit)
}

// ANDRange applies AND bitwise across length qubits starting at
// inputStart1/inputStart2/outputStart, per §4.8's range-broadcast
// form.
func (r *Register) ANDRange(ctx context.Context, inputStart1, inputStart2, outputStart, length int) error {
	for i := 0; i < length; i++ {
		if err := r.AND(ctx, inputStart1+i, inputStart2+i, outputStart+i); err != nil {
			return err
		}
	}
	return nil
}

// ORRange applies OR bitwise across length qubits.
func (r *Register) ORRange(ctx context.Context, inputStart1, inputStart2, outputStart, length int) error {
	for i := 0; i < length; i++ {
		if err := r.OR(ctx, inputStart1+i, inputStart2+i, outputStart+i); err != nil {
			return err
		}
	}
	return nil
}

// XORRange applies XOR bitwise across length qubits.
func (r *Register) XORRange(ctx context.Context, inputStart1, inputStart2, outputStart, length int) error {
	for i := 0; i < length; i++ {
		if err := r.XOR(ctx, inputStart1+i, inputStart2+i, outputStart+i); err != nil {
			return err
		}
	}
	return nil
}

// CLANDRange applies CLAND bitwise: bit i of classicalInput against
// qubit qInputStart+i, storing into outputStart+i.
func (r *Register) CLANDRange(ctx context.Context, qInputStart int, classicalInput uint64, outputStart, length int) error {
	for i := 0; i < length; i++ {
		bit := (classicalInput>>uint(i))&1 != 0
		if err := r.CLAND(ctx, qInputStart+i, bit, outputStart+i); err != nil {
			return err
		}
	}
	return nil
}

// CLORRange applies CLOR bitwise across length qubits.
func (r *Register) CLORRange(ctx context.Context, qInputStart int, classicalInput uint64, outputStart, length int) error {
	for i := 0; i < length; i++ {
		bit := (classicalInput>>uint(i))&1 != 0
		if err := r.CLOR(ctx, qInputStart+i, bit, outputStart+i); err != nil {
			return err
		}
	}
	return nil
}

// CLXORRange applies CLXOR bitwise across length qubits.
func (r *Register) CLXORRange(ctx context.Context, qInputStart int, classicalInput uint64, outputStart, length int) error {
	for i := 0; i < length; i++ {
		bit := (classicalInput>>uint(i))&1 != 0
		if err := r.CLXOR(ctx, qInputStart+i, bit, outputStart+i); err != nil {
			return err
		}
	}
	return nil
}
