package qsim

import (
	"context"
	"math"
	"time"

	"github.com/theapemachine/qsim/kernel"
)

func rangeMasks(start, length int, qubitCount int) (regMask, otherMask, lengthMask uint64) {
	lengthPower := uint64(1) << uint(length)
	lengthMask = lengthPower - 1
	regMask = lengthMask << uint(start)
	otherMask = ((uint64(1) << uint(qubitCount)) - 1) &^ regMask
	return
}

func checkRange(op string, start, length, qubitCount int) error {
	if length < 0 || start < 0 || start+length > qubitCount {
		return newInvalidArgument(op, errRangeOutOfBounds)
	}
	return nil
}

// SetBit measures qubit q and, if the outcome does not match value,
// flips it with X — grounded on qrack.hpp's SetBit, used by LSL/LSR to
// force vacated positions to |0>.
func (r *Register) SetBit(ctx context.Context, q int, value bool) error {
	result, err := r.M(ctx, q)
	if err != nil {
		return err
	}
	if result != value {
		return r.X(ctx, q)
	}
	return nil
}

// ROL circularly left-rotates the qubit window [start, start+length)
// by shift positions (taken modulo length), per §4.6.
func (r *Register) ROL(ctx context.Context, shift, start, length int) error {
	return r.rotateScatter(ctx, "ROL", shift, start, length, r.dispatcher(ctx).Rol)
}

// ROR circularly right-rotates the qubit window [start, start+length)
// by shift positions (taken modulo length), per §4.6.
func (r *Register) ROR(ctx context.Context, shift, start, length int) error {
	return r.rotateScatter(ctx, "ROR", shift, start, length, r.dispatcher(ctx).Ror)
}

type scatterRotateFunc func(ctx context.Context, state, dst []complex128, p kernel.ScatterParams)

func (r *Register) rotateScatter(ctx context.Context, op string, shift, start, length int, dispatch scatterRotateFunc) error {
	if err := r.checkPoisoned(op); err != nil {
		return err
	}
	if err := checkRange(op, start, length, r.qubitCount); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}

	begin := time.Now()
	regMask, otherMask, lengthMask := rangeMasks(start, length, r.qubitCount)
	shift = ((shift % length) + length) % length

	params := kernel.ScatterParams{
		MaxQPower:  r.maxQPower,
		RegMask:    regMask,
		OtherMask:  otherMask,
		LengthMask: lengthMask,
		Start:      uint64(start),
		Shift:      uint64(shift),
		Length:     uint64(length),
	}
	dst := r.buf.Scratch()
	dispatch(ctx, r.buf.State(), dst, params)
	r.buf.Swap(dst)
	r.runningNorm = 1.0
	r.metrics.record(op, time.Since(begin))
	return nil
}

// reverseQubits reverses the order of qubits in [first, last) via a
// swap network, grounded on qrack_ocl.cpp's Reverse helper.
func (r *Register) reverseQubits(ctx context.Context, first, last int) error {
	for first < last-1 {
		last--
		if err := r.Swap(ctx, first, last); err != nil {
			return err
		}
		first++
	}
	return nil
}

// clearRange forces every qubit in [start, start+length) to |0>.
func (r *Register) clearRange(ctx context.Context, start, length int) error {
	for i := start; i < start+length; i++ {
		if err := r.SetBit(ctx, i, false); err != nil {
			return err
		}
	}
	return nil
}

// LSL logically shifts the window left, filling vacated low bits with
// |0>, per §4.6.
func (r *Register) LSL(ctx context.Context, shift, start, length int) error {
	if err := checkRange("LSL", start, length, r.qubitCount); err != nil {
		return err
	}
	if length == 0 || shift == 0 {
		return nil
	}
	if shift >= length {
		return r.clearRange(ctx, start, length)
	}
	if err := r.ROL(ctx, shift, start, length); err != nil {
		return err
	}
	return r.clearRange(ctx, start, shift)
}

// LSR logically shifts the window right, filling vacated high bits
// with |0>, per §4.6.
func (r *Register) LSR(ctx context.Context, shift, start, length int) error {
	if err := checkRange("LSR", start, length, r.qubitCount); err != nil {
		return err
	}
	if length == 0 || shift == 0 {
		return nil
	}
	if shift >= length {
		return r.clearRange(ctx, start, length)
	}
	if err := r.ROR(ctx, shift, start, length); err != nil {
		return err
	}
	return r.clearRange(ctx, start+length-shift, shift)
}

// ASL arithmetically shifts left, preserving the top two bits (sign
// and carry) across the shift, per §4.6's swap-reverse-swap procedure.
func (r *Register) ASL(ctx context.Context, shift, start, length int) error {
	if err := checkRange("ASL", start, length, r.qubitCount); err != nil {
		return err
	}
	if length == 0 || shift == 0 {
		return nil
	}
	end := start + length
	if shift >= length {
		return r.clearRange(ctx, start, length)
	}
	if err := r.Swap(ctx, end-1, end-2); err != nil {
		return err
	}
	if err := r.reverseQubits(ctx, start, end); err != nil {
		return err
	}
	if err := r.reverseQubits(ctx, start, start+shift); err != nil {
		return err
	}
	if err := r.reverseQubits(ctx, start+shift, end); err != nil {
		return err
	}
	if err := r.Swap(ctx, end-1, end-2); err != nil {
		return err
	}
	return r.clearRange(ctx, start, shift)
}

// ASR arithmetically shifts right, preserving the top two bits across
// the shift, per §4.6's swap-reverse-swap procedure.
func (r *Register) ASR(ctx context.Context, shift, start, length int) error {
	if err := checkRange("ASR", start, length, r.qubitCount); err != nil {
		return err
	}
	if length == 0 || shift == 0 {
		return nil
	}
	end := start + length
	if shift >= length {
		return r.clearRange(ctx, start, length)
	}
	if err := r.Swap(ctx, end-1, end-2); err != nil {
		return err
	}
	if err := r.reverseQubits(ctx, start+shift, end); err != nil {
		return err
	}
	if err := r.reverseQubits(ctx, start, start+shift); err != nil {
		return err
	}
	if err := r.reverseQubits(ctx, start, end); err != nil {
		return err
	}
	if err := r.Swap(ctx, end-1, end-2); err != nil {
		return err
	}
	return r.clearRange(ctx, end-shift, shift)
}

// reverseStrided reverses state[first:last) in steps of stride,
// in place — the strided reverse from qrack_ocl.cpp's rotate helper.
func reverseStrided(state []complex128, first, last, stride uint64) {
	for first < last && first < last-stride {
		last -= stride
		state[first], state[last] = state[last], state[first]
		first += stride
	}
}

// rotateStrided performs the classic three-reversal rotate of
// state[first:last) (step stride) around middle, in place.
func rotateStrided(state []complex128, first, middle, last, stride uint64) {
	reverseStrided(state, first, middle, stride)
	reverseStrided(state, middle, last, stride)
	reverseStrided(state, first, last, stride)
}

// INC adds value (mod 2^length) to the integer held in qubit window
// [start, start+length), realized as a three-reversal rotate of the
// amplitude array at stride 2^start, per §4.6.
func (r *Register) INC(ctx context.Context, value uint64, start, length int) error {
	return r.incDecRotate(ctx, "INC", value, start, length, true)
}

// DEC subtracts value (mod 2^length) from the integer held in qubit
// window [start, start+length), per §4.6.
func (r *Register) DEC(ctx context.Context, value uint64, start, length int) error {
	return r.incDecRotate(ctx, "DEC", value, start, length, false)
}

func (r *Register) incDecRotate(ctx context.Context, op string, value uint64, start, length int, isInc bool) error {
	if err := r.checkPoisoned(op); err != nil {
		return err
	}
	if err := checkRange(op, start, length, r.qubitCount); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}

	begin := time.Now()
	startPower := uint64(1) << uint(start)
	endPower := uint64(1) << uint(start+length)
	lengthPower := uint64(1) << uint(length)
	value %= lengthPower

	var middleOffset uint64
	if isInc {
		middleOffset = (lengthPower - value) * startPower
	} else {
		middleOffset = value * startPower
	}

	state := r.buf.State()
	r.pool.pool.RegisterBody(ctx, r.maxQPower, endPower, func(k uint64, worker int) {
		for j := uint64(0); j < startPower; j++ {
			rotateStrided(state, k+j, k+j+middleOffset, k+j+endPower, startPower)
		}
	})

	r.runningNorm = 1.0
	r.metrics.record(op, time.Since(begin))
	return nil
}

type scatterTwoRegisterFunc func(ctx context.Context, state, dst []complex128, p kernel.ScatterParams)

func (r *Register) twoRegisterScatter(ctx context.Context, op string, inOutStart, inStart, length int, dispatch scatterTwoRegisterFunc) error {
	if err := r.checkPoisoned(op); err != nil {
		return err
	}
	if err := checkRange(op, inOutStart, length, r.qubitCount); err != nil {
		return err
	}
	if err := checkRange(op, inStart, length, r.qubitCount); err != nil {
		return err
	}
	if length == 0 {
		return nil
	}

	begin := time.Now()
	lengthPower := uint64(1) << uint(length)
	lengthMask := lengthPower - 1
	inOutMask := lengthMask << uint(inOutStart)
	inMask := lengthMask << uint(inStart)
	otherMask := ((uint64(1) << uint(r.qubitCount)) - 1) &^ (inOutMask | inMask)

	params := kernel.ScatterParams{
		MaxQPower:  r.maxQPower,
		InOutMask:  inOutMask,
		InMask:     inMask,
		OtherMask:  otherMask,
		LengthMask: lengthMask,
		InOutStart: uint64(inOutStart),
		InStart:    uint64(inStart),
		Length:     uint64(length),
	}
	dst := r.buf.Scratch()
	dispatch(ctx, r.buf.State(), dst, params)
	r.buf.Swap(dst)
	r.runningNorm = 1.0
	r.metrics.record(op, time.Since(begin))
	return nil
}

// ADD adds the integer at [inStart, inStart+length) into the integer
// at [inOutStart, inOutStart+length), modulo 2^length, per §4.6.
func (r *Register) ADD(ctx context.Context, inOutStart, inStart, length int) error {
	return r.twoRegisterScatter(ctx, "ADD", inOutStart, inStart, length, r.dispatcher(ctx).Add)
}

// SUB subtracts the integer at [inStart, inStart+length) from the
// integer at [inOutStart, inOutStart+length), modulo 2^length, per
// §4.6.
func (r *Register) SUB(ctx context.Context, inOutStart, inStart, length int) error {
	return r.twoRegisterScatter(ctx, "SUB", inOutStart, inStart, length, r.dispatcher(ctx).Sub)
}

func (r *Register) twoRegisterBCDScatter(ctx context.Context, op string, inOutStart, inStart, length int, dispatch scatterTwoRegisterFunc) error {
	if length%4 != 0 {
		return newInvalidArgument(op, errBCDLengthNotMultiple)
	}
	if err := r.checkPoisoned(op); err != nil {
		return err
	}
	if err := checkRange(op, inOutStart, length, r.qubitCount); err != nil {
		return err
	}
	if err := checkRange(op, inStart, length, r.qubitCount); err != nil {
		return err
	}

	begin := time.Now()
	lengthPower := uint64(1) << uint(length)
	lengthMask := lengthPower - 1
	inOutMask := lengthMask << uint(inOutStart)
	inMask := lengthMask << uint(inStart)
	otherMask := ((uint64(1) << uint(r.qubitCount)) - 1) &^ (inOutMask | inMask)

	params := kernel.ScatterParams{
		MaxQPower:   r.maxQPower,
		InOutMask:   inOutMask,
		InMask:      inMask,
		OtherMask:   otherMask,
		LengthMask:  lengthMask,
		InOutStart:  uint64(inOutStart),
		InStart:     uint64(inStart),
		Length:      uint64(length),
		NibbleCount: uint64(length / 4),
	}
	dst := r.buf.Scratch()
	dispatch(ctx, r.buf.State(), dst, params)
	r.buf.Swap(dst)
	r.runningNorm = 1.0
	r.metrics.record(op, time.Since(begin))
	return nil
}

// ADDBCD adds two BCD-encoded integers per-nibble with decimal carry,
// per §4.6. length must be a multiple of 4.
func (r *Register) ADDBCD(ctx context.Context, inOutStart, inStart, length int) error {
	return r.twoRegisterBCDScatter(ctx, "ADDBCD", inOutStart, inStart, length, r.dispatcher(ctx).AddBCD)
}

// SUBBCD subtracts two BCD-encoded integers per-nibble with decimal
// borrow, per §4.6 (genuine subtraction, not a mirror of the source's
// ADDBCD-reuse bug). length must be a multiple of 4.
func (r *Register) SUBBCD(ctx context.Context, inOutStart, inStart, length int) error {
	return r.twoRegisterBCDScatter(ctx, "SUBBCD", inOutStart, inStart, length, r.dispatcher(ctx).SubBCD)
}

type carryDispatchFunc func(ctx context.Context, state, dst []complex128, p kernel.CarryParams, phase complex128)

func (r *Register) carryScatter(ctx context.Context, op string, inOutStart, inStart, length, carryIndex int, dispatch carryDispatchFunc) error {
	if err := r.checkPoisoned(op); err != nil {
		return err
	}
	if err := checkRange(op, inOutStart, length, r.qubitCount); err != nil {
		return err
	}
	if err := checkRange(op, inStart, length, r.qubitCount); err != nil {
		return err
	}
	if carryIndex < 0 || carryIndex >= r.qubitCount {
		return newInvalidArgument(op, errRangeOutOfBounds)
	}
	if carryIndex >= inOutStart && carryIndex < inOutStart+length {
		return newInvalidArgument(op, errCarryIndexOverlap)
	}
	if carryIndex >= inStart && carryIndex < inStart+length {
		return newInvalidArgument(op, errCarryIndexOverlap)
	}

	begin := time.Now()
	lengthPower := uint64(1) << uint(length)
	lengthMask := lengthPower - 1
	inOutMask := lengthMask << uint(inOutStart)
	inMask := lengthMask << uint(inStart)
	carryMask := uint64(1) << uint(carryIndex)
	otherMask := ((uint64(1) << uint(r.qubitCount)) - 1) &^ (inOutMask | inMask | carryMask)

	params := kernel.CarryParams{
		MaxQPower:   r.maxQPower,
		InOutMask:   inOutMask,
		InMask:      inMask,
		CarryMask:   carryMask,
		OtherMask:   otherMask,
		LengthPower: lengthPower,
		InOutStart:  uint64(inOutStart),
		InStart:     uint64(inStart),
		CarryIndex:  uint64(carryIndex),
	}

	theta := r.rng.Float64() * 2 * math.Pi
	phase := complex(math.Cos(theta), math.Sin(theta))

	r.buf.ZeroScratch()
	dst := r.buf.Scratch()
	dispatch(ctx, r.buf.State(), dst, params, phase)
	r.buf.Swap(dst)
	r.runningNorm = 1.0
	r.metrics.record(op, time.Since(begin))
	return nil
}

// ADDC adds the integer at [inStart, inStart+length) into the integer
// at [inOutStart, inOutStart+length), threading carryIndex as the
// carry-out/carry-in bit, per §4.2/§4.6.
func (r *Register) ADDC(ctx context.Context, inOutStart, inStart, length, carryIndex int) error {
	return r.carryScatter(ctx, "ADDC", inOutStart, inStart, length, carryIndex, r.dispatcher(ctx).AddC)
}

// SUBC is the borrow-threading mirror of ADDC, per §4.2/§4.6.
func (r *Register) SUBC(ctx context.Context, inOutStart, inStart, length, carryIndex int) error {
	return r.carryScatter(ctx, "SUBC", inOutStart, inStart, length, carryIndex, r.dispatcher(ctx).SubC)
}
