package kernel

// Apply2x2Params is the typed recast of the packed apply2x2 parameter
// buffers (cmplx[5] + ulong[4+bitCount]) from
// original_source/qrack_ocl.cpp. It is internal to this package: the
// marshaller that builds it from gate-layer calls and the cpuDispatcher
// that consumes it are the only two things that ever touch it.
type Apply2x2Params struct {
	Matrix  [4]complex128 // M[0], M[1], M[2], M[3] row-major 2x2
	Norm    complex128    // scale applied to both output amplitudes
	Offset1 uint64
	Offset2 uint64
	// QPowersSorted holds the ascending bit-masks of the bits held
	// fixed while enumerating candidate indices; its length is
	// BitCount.
	QPowersSorted []uint64
	BitCount      int
	MaxQPower     uint64
}

// ScatterParams is the typed recast of the packed rol/ror/add/sub/
// addbcd/subbcd parameter buffers.
type ScatterParams struct {
	MaxQPower  uint64
	RegMask    uint64 // rol/ror
	InOutMask  uint64 // add/sub/addbcd/subbcd
	InMask     uint64
	OtherMask  uint64
	LengthMask uint64 // 2^length - 1
	Start      uint64 // rol/ror start
	Shift      uint64 // rol/ror shift
	Length     uint64
	InOutStart uint64
	InStart    uint64
	NibbleCount uint64 // addbcd/subbcd
}

// CarryParams is the typed recast of the packed addc/subc parameter
// buffer, which additionally threads a carry bit through a two-pass
// scatter.
type CarryParams struct {
	MaxQPower   uint64
	InOutMask   uint64
	InMask      uint64
	CarryMask   uint64
	OtherMask   uint64
	LengthPower uint64
	InOutStart  uint64
	InStart     uint64
	CarryIndex  uint64
}
