package ppc

// GPR is a general-purpose register index, 0..31.
type GPR uint8

// Ins is a single decoded PowerPC instruction.
type Ins struct {
	Op   Opcode
	word uint32
}

func bits(word uint32, hi, lo uint) uint32 {
	n := hi - lo + 1
	return (word >> lo) & ((1 << n) - 1)
}

// RA returns the rA operand field (bits 11-15 in IBM bit order, i.e. bits
// 16-20 counting from the LSB).
func (i Ins) RA() GPR { return GPR(bits(i.word, 20, 16)) }

// RB returns the rB operand field.
func (i Ins) RB() GPR { return GPR(bits(i.word, 15, 11)) }

// RD returns the rD (destination GPR) operand field. For instructions where
// the same field position is the source of a store, use RS.
func (i Ins) RD() GPR { return GPR(bits(i.word, 25, 21)) }

// RS returns the rS operand field (same bit position as RD, named
// differently depending on whether the instruction reads or writes it).
func (i Ins) RS() GPR { return GPR(bits(i.word, 25, 21)) }

// SIMM returns the 16-bit signed immediate field, sign-extended.
func (i Ins) SIMM() int32 {
	return int32(int16(bits(i.word, 15, 0)))
}

// UIMM returns the 16-bit unsigned immediate field.
func (i Ins) UIMM() uint32 { return bits(i.word, 15, 0) }

// SH returns the shift-amount field used by rlwinm.
func (i Ins) SH() uint32 { return bits(i.word, 15, 11) }

// MB returns the mask-begin field used by rlwinm/rlwnm.
func (i Ins) MB() uint32 { return bits(i.word, 10, 6) }

// ME returns the mask-end field used by rlwinm/rlwnm.
func (i Ins) ME() uint32 { return bits(i.word, 5, 1) }

// CRFD returns the destination condition-register field for a compare.
func (i Ins) CRFD() uint32 { return bits(i.word, 25, 23) }

// L returns the compare-width bit (0 = 32-bit compare, the only form this
// VM models).
func (i Ins) L() uint32 { return bits(i.word, 21, 21) }

// BO returns the branch-options field of a conditional branch.
func (i Ins) BO() uint32 { return bits(i.word, 25, 21) }

// BI returns the condition-bit-select field of a conditional branch.
func (i Ins) BI() uint32 { return bits(i.word, 20, 16) }

// LK returns the link bit (set for bl/bcl/bclrl/bcctrl forms).
func (i Ins) LK() bool { return bits(i.word, 0, 0) != 0 }

// AA returns the absolute-address bit.
func (i Ins) AA() bool { return bits(i.word, 1, 1) != 0 }

// SPR returns the special-purpose-register field of mtspr/mfspr, already
// reassembled from its split 5+5 bit encoding.
func (i Ins) SPR() uint32 {
	low := bits(i.word, 20, 16)
	high := bits(i.word, 15, 11)
	return (high << 5) | low
}

// BranchDest returns the absolute or relative branch target encoded in a b
// or bc instruction. For bc the 14-bit field becomes a 16-bit displacement;
// for b the 24-bit field becomes a 26-bit one. Both are sign-extended and,
// unless AA is set, are relative to the instruction's own address — the
// caller (the vm package's branch analyzer) is responsible for adding the
// instruction address when AA is clear.
func (i Ins) BranchDest() (int32, bool) {
	switch i.Op {
	case B:
		field := bits(i.word, 25, 2) << 2
		return signExtend(field, 26), true
	case Bc:
		field := bits(i.word, 15, 2) << 2
		return signExtend(field, 16), true
	default:
		return 0, false
	}
}

func signExtend(value uint32, bitWidth uint) int32 {
	shift := 32 - bitWidth
	return int32(value<<shift) >> shift
}

// Defs returns the destination GPR of the opcodes listed below, for the
// default write-back rule applied to opcodes the VM does not otherwise
// model. Every other opcode, including Other, gets nil, and the base
// register written back by an update form is not included.
func (i Ins) Defs() []GPR {
	switch i.Op {
	case Add, Addis, Addi, Addic, AddicDot, Rlwinm, Rlwnm, Lwzx, Mfspr,
		Lbz, Lbzu, Lha, Lhau, Lhz, Lhzu, Lwz, Lwzu, Lbzux, Lhaux, Lhzux, Lwzux:
		return []GPR{i.RD()}
	case Ori, Or:
		return []GPR{i.RA()}
	default:
		return nil
	}
}
