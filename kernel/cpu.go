package kernel

import (
	"context"
	"math"

	"github.com/theapemachine/qsim/dispatch"
)

// expandIndex reimplements the sorted-bit-insertion procedure used
// throughout original_source/qrack_ocl.cpp's kernel bodies: given a
// "compressed" counter that ranges over the indices with the masked
// bits removed, reinsert zero bits at each qPowersSorted[p] position
// to recover the true amplitude index i (before offset1/offset2 are
// added).
func expandIndex(counter uint64, qPowersSorted []uint64) uint64 {
	var i, iHigh uint64 = 0, counter
	for _, qp := range qPowersSorted {
		iLow := iHigh % qp
		i += iLow
		iHigh = (iHigh - iLow) << 1
	}
	i += iHigh
	return i
}

// Apply2x2 applies a 2x2 complex matrix, scaled by Norm, to every
// amplitude pair (state[i+Offset1], state[i+Offset2]) where i ranges
// over the candidates produced by expandIndex. Mutates state in
// place — grounded on the apply2x2 OpenCL kernel body in
// original_source/qrack_ocl.cpp (lines ~120-150).
func Apply2x2(ctx context.Context, pool *dispatch.Pool, state []complex128, p Apply2x2Params) {
	maxI := p.MaxQPower >> uint(p.BitCount)
	m := p.Matrix
	nrm := p.Norm

	pool.Striped(ctx, 0, maxI, func(counter uint64, worker int) {
		i := expandIndex(counter, p.QPowersSorted)

		a := state[i+p.Offset1]
		b := state[i+p.Offset2]

		state[i+p.Offset1] = nrm * (m[0]*a + m[1]*b)
		state[i+p.Offset2] = nrm * (m[2]*a + m[3]*b)
	})
}

// Rol performs a circular left-rotate scatter of a contiguous qubit
// window, grounded on the "rol" kernel body.
func Rol(ctx context.Context, pool *dispatch.Pool, state, dst []complex128, p ScatterParams) {
	lengthMask := p.LengthMask
	pool.Scatter(ctx, 0, p.MaxQPower, state, dst, func(lcv uint64, worker int, src, dst []complex128) {
		otherRes := lcv & p.OtherMask
		regRes := lcv & p.RegMask
		regInt := regRes >> p.Start
		outInt := (regInt >> (p.Length - p.Shift)) | ((regInt << p.Shift) & lengthMask)
		dst[(outInt<<p.Start)+otherRes] = src[lcv]
	})
}

// Ror performs a circular right-rotate scatter, grounded on the "ror"
// kernel body.
func Ror(ctx context.Context, pool *dispatch.Pool, state, dst []complex128, p ScatterParams) {
	lengthMask := p.LengthMask
	pool.Scatter(ctx, 0, p.MaxQPower, state, dst, func(lcv uint64, worker int, src, dst []complex128) {
		otherRes := lcv & p.OtherMask
		regRes := lcv & p.RegMask
		regInt := regRes >> p.Start
		outInt := ((regInt >> p.Shift) & lengthMask) | ((regInt << (p.Length - p.Shift)) & lengthMask)
		dst[(outInt<<p.Start)+otherRes] = src[lcv]
	})
}

// Add performs a two-register modular addition scatter, grounded on
// the "add" kernel body.
func Add(ctx context.Context, pool *dispatch.Pool, state, dst []complex128, p ScatterParams) {
	lengthMask := p.LengthMask
	pool.Scatter(ctx, 0, p.MaxQPower, state, dst, func(lcv uint64, worker int, src, dst []complex128) {
		otherRes := lcv & p.OtherMask
		inOutRes := lcv & p.InOutMask
		inOutInt := inOutRes >> p.InOutStart
		inRes := lcv & p.InMask
		inInt := inRes >> p.InStart
		dst[(((inOutInt+inInt)&lengthMask)<<p.InOutStart)+otherRes+inRes] = src[lcv]
	})
}

// Sub performs a two-register modular subtraction scatter, grounded
// on the "sub" kernel body. lengthPower is 2^length (p.LengthMask+1).
func Sub(ctx context.Context, pool *dispatch.Pool, state, dst []complex128, p ScatterParams) {
	lengthPower := p.LengthMask + 1
	pool.Scatter(ctx, 0, p.MaxQPower, state, dst, func(lcv uint64, worker int, src, dst []complex128) {
		otherRes := lcv & p.OtherMask
		inOutRes := lcv & p.InOutMask
		inOutInt := inOutRes >> p.InOutStart
		inRes := lcv & p.InMask
		inInt := inRes >> p.InStart
		dst[(((inOutInt-inInt+lengthPower)&(lengthPower-1))<<p.InOutStart)+otherRes+inRes] = src[lcv]
	})
}

const maxNibbles = 16

// AddBCD performs per-nibble base-10 addition with carry, grounded on
// the "addbcd" kernel body. Amplitudes whose source nibbles exceed 9
// pass through unchanged (invalid BCD).
func AddBCD(ctx context.Context, pool *dispatch.Pool, state, dst []complex128, p ScatterParams) {
	pool.Scatter(ctx, 0, p.MaxQPower, state, dst, func(lcv uint64, worker int, src, dst []complex128) {
		otherRes := lcv & p.OtherMask
		if otherRes == lcv {
			dst[lcv] = src[lcv]
			return
		}

		inOutRes := lcv & p.InOutMask
		inOutInt := inOutRes >> p.InOutStart
		inRes := lcv & p.InMask
		inInt := inRes >> p.InStart

		var nibbles [maxNibbles]uint64
		isValid := true
		for j := uint64(0); j < p.NibbleCount; j++ {
			test1 := (inOutInt >> (j * 4)) & 0xF
			test2 := (inInt >> (j * 4)) & 0xF
			nibbles[j] = test1 + test2
			if test1 > 9 || test2 > 9 {
				isValid = false
			}
		}
		if !isValid {
			dst[lcv] = src[lcv]
			return
		}

		var outInt uint64
		for j := uint64(0); j < p.NibbleCount; j++ {
			if nibbles[j] > 9 {
				nibbles[j] -= 10
				if j+1 < p.NibbleCount {
					nibbles[j+1]++
				}
			}
			outInt |= nibbles[j] << (j * 4)
		}
		dst[(outInt<<p.InOutStart)|otherRes|inRes] = src[lcv]
	})
}

// SubBCD performs per-nibble base-10 subtraction with borrow. Unlike
// the original source (which reuses ADDBCD's addition logic for
// subbcd — an apparent bug), this is genuine subtraction-with-borrow
// per SPEC_FULL §9.
func SubBCD(ctx context.Context, pool *dispatch.Pool, state, dst []complex128, p ScatterParams) {
	pool.Scatter(ctx, 0, p.MaxQPower, state, dst, func(lcv uint64, worker int, src, dst []complex128) {
		otherRes := lcv & p.OtherMask
		if otherRes == lcv {
			dst[lcv] = src[lcv]
			return
		}

		inOutRes := lcv & p.InOutMask
		inOutInt := inOutRes >> p.InOutStart
		inRes := lcv & p.InMask
		inInt := inRes >> p.InStart

		var nibbles [maxNibbles]int64
		isValid := true
		for j := uint64(0); j < p.NibbleCount; j++ {
			test1 := (inOutInt >> (j * 4)) & 0xF
			test2 := (inInt >> (j * 4)) & 0xF
			nibbles[j] = int64(test1) - int64(test2)
			if test1 > 9 || test2 > 9 {
				isValid = false
			}
		}
		if !isValid {
			dst[lcv] = src[lcv]
			return
		}

		var outInt uint64
		for j := uint64(0); j < p.NibbleCount; j++ {
			if nibbles[j] < 0 {
				nibbles[j] += 10
				if j+1 < p.NibbleCount {
					nibbles[j+1]--
				}
			}
			outInt |= uint64(nibbles[j]) << (j * 4)
		}
		dst[(outInt<<p.InOutStart)|otherRes|inRes] = src[lcv]
	})
}

// AddC performs carry-bit-threading addition: a two-pass scatter into
// a zero-initialized destination, accumulating |amplitude|^2 per
// destination index across both the without-carry and with-carry
// source ranges, then rewriting the destination as an amplitude with
// the freshly-drawn global phase — grounded on the "addc" kernel body.
// phase is the single e^{iθ} the caller (which owns the RNG) drew for
// this dispatch.
func AddC(ctx context.Context, pool *dispatch.Pool, state, dst []complex128, p CarryParams, phase complex128) {
	maxI := p.MaxQPower >> 1
	prob := make([]float64, p.MaxQPower)

	pool.Striped(ctx, 0, maxI, func(counter uint64, worker int) {
		i := expandIndex(counter, []uint64{p.CarryMask})
		otherRes := i & p.OtherMask
		inOutRes := i & p.InOutMask
		inOutInt := inOutRes >> p.InOutStart
		inRes := i & p.InMask
		inInt := inRes >> p.InStart
		outInt := inOutInt + inInt

		var outRes uint64
		if outInt < p.LengthPower {
			outRes = (outInt << p.InOutStart) | otherRes | inRes
		} else {
			outRes = ((outInt - p.LengthPower) << p.InOutStart) | otherRes | inRes | p.CarryMask
		}
		prob[outRes] += real(state[i]) * real(state[i]) + imag(state[i]) * imag(state[i])
	})

	pool.Striped(ctx, 0, maxI, func(counter uint64, worker int) {
		i := expandIndex(counter, []uint64{p.CarryMask})
		otherRes := i & p.OtherMask
		inOutRes := i & p.InOutMask
		inOutInt := inOutRes >> p.InOutStart
		inRes := i & p.InMask
		inInt := inRes >> p.InStart
		outInt := inOutInt + inInt + 1
		i |= p.CarryMask

		var outRes uint64
		if outInt < p.LengthPower {
			outRes = (outInt << p.InOutStart) | otherRes | inRes
		} else {
			outRes = ((outInt - p.LengthPower) << p.InOutStart) | otherRes | inRes | p.CarryMask
		}
		prob[outRes] += real(state[i]) * real(state[i]) + imag(state[i]) * imag(state[i])
	})

	pool.Striped(ctx, 0, p.MaxQPower, func(lcv uint64, worker int) {
		dst[lcv] = complex(math.Sqrt(prob[lcv]), 0) * phase
	})
}

// SubC performs carry-bit-threading subtraction, the mirror of AddC,
// grounded on the "subc" kernel body.
func SubC(ctx context.Context, pool *dispatch.Pool, state, dst []complex128, p CarryParams, phase complex128) {
	maxI := p.MaxQPower >> 1
	prob := make([]float64, p.MaxQPower)

	pool.Striped(ctx, 0, maxI, func(counter uint64, worker int) {
		i := expandIndex(counter, []uint64{p.CarryMask})
		otherRes := i & p.OtherMask
		inOutRes := i & p.InOutMask
		inOutInt := inOutRes >> p.InOutStart
		inRes := i & p.InMask
		inInt := inRes >> p.InStart
		outInt := (inOutInt - inInt) + p.LengthPower

		var outRes uint64
		if outInt < p.LengthPower {
			outRes = (outInt << p.InOutStart) | otherRes | inRes | p.CarryMask
		} else {
			outRes = ((outInt - p.LengthPower) << p.InOutStart) | otherRes | inRes
		}
		prob[outRes] += real(state[i]) * real(state[i]) + imag(state[i]) * imag(state[i])
	})

	pool.Striped(ctx, 0, maxI, func(counter uint64, worker int) {
		i := expandIndex(counter, []uint64{p.CarryMask})
		otherRes := i & p.OtherMask
		inOutRes := i & p.InOutMask
		inOutInt := inOutRes >> p.InOutStart
		inRes := i & p.InMask
		inInt := inRes >> p.InStart
		outInt := (inOutInt - inInt - 1) + p.LengthPower
		i |= p.CarryMask

		var outRes uint64
		if outInt < p.LengthPower {
			outRes = (outInt << p.InOutStart) | otherRes | inRes | p.CarryMask
		} else {
			outRes = ((outInt - p.LengthPower) << p.InOutStart) | otherRes | inRes
		}
		prob[outRes] += real(state[i]) * real(state[i]) + imag(state[i]) * imag(state[i])
	})

	pool.Striped(ctx, 0, p.MaxQPower, func(lcv uint64, worker int) {
		dst[lcv] = complex(math.Sqrt(prob[lcv]), 0) * phase
	})
}

// L2Norm computes the parallel L2-norm reduction of state, the reducer
// named in §4.1.
func L2Norm(ctx context.Context, pool *dispatch.Pool, state []complex128) float64 {
	sumSq := pool.Reduce(ctx, 0, uint64(len(state)), func(i uint64) float64 {
		return real(state[i])*real(state[i]) + imag(state[i])*imag(state[i])
	})
	return math.Sqrt(sumSq)
}

// Normalize divides every amplitude by norm in place, grounded on
// NormalizeState.
func Normalize(state []complex128, norm float64) {
	if norm == 0 || norm == 1 {
		return
	}
	for i := range state {
		state[i] = state[i] / complex(norm, 0)
	}
}
