package qsim

import "context"

// QFT applies the quantum Fourier transform to the qubit window
// [start, start+length), as a composition of H and controlled dyadic
// phase shifts, per §4.6. No bit-reversal is performed; callers
// requiring standard QFT output order must follow with a
// bit-reversal swap sequence.
func (r *Register) QFT(ctx context.Context, start, length int) error {
	if err := checkRange("QFT", start, length, r.qubitCount); err != nil {
		return err
	}
	end := start + length
	for i := start; i < end; i++ {
		if err := r.H(ctx, i); err != nil {
			return err
		}
		for j := 1; j < end-i; j++ {
			if err := r.CR1Dyad(ctx, 1, 1<<uint(j), i+j, i); err != nil {
				return err
			}
		}
	}
	return nil
}
