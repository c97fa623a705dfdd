package vm

import (
	"github.com/broadway-toolkit/ppc750vm/obj"
	"github.com/broadway-toolkit/ppc750vm/ppc"
)

// stepBranch classifies and executes a b/bc/bcctr/bclr instruction,
// producing the Jump or Branch result that tells the caller how to
// continue walking the control-flow graph (see spec §4.3).
func (v *VM) stepBranch(o *obj.Info, insAddr obj.SectionAddress, ins ppc.Ins) StepResult {
	// HACK for `bla 0x60`-style glue emitted by some hand-written startup
	// code: link and absolute bits set but no real target.
	if ins.Op == ppc.B && ins.LK() && ins.AA() {
		return Jump(UnknownTarget)
	}

	target := v.resolveBranchTarget(o, insAddr, ins)

	if ins.LK() {
		return BranchStep([]Branch{
			{Target: AddressTarget(obj.NewAddressTarget(insAddr.Add(4))), Link: false, VM: v.CloneForReturn()},
			{Target: target, Link: true, VM: v.CloneForLink()},
		})
	}

	if ins.Op == ppc.B || ins.BO()&0b10100 == 0b10100 {
		return Jump(target)
	}

	branches := []Branch{
		{Target: AddressTarget(obj.NewAddressTarget(insAddr.Add(4))), Link: false, VM: v.CloneAll()},
		{Target: target, Link: ins.LK(), VM: v.CloneAll()},
	}

	crf := ins.BI() >> 2
	crb := uint8(ins.BI() & 3)
	falseVal, trueVal := splitByCRBit(crb, v.CR[crf].Left, v.CR[crf].Right)
	switch ins.BO() & 0b11110 {
	case 0b00100: // branch if false
		branches[0].VM.setComparisonResult(trueVal, int(crf))
		branches[1].VM.setComparisonResult(falseVal, int(crf))
	case 0b01100: // branch if true
		branches[0].VM.setComparisonResult(falseVal, int(crf))
		branches[1].VM.setComparisonResult(trueVal, int(crf))
	}

	return BranchStep(branches)
}

func (v *VM) resolveBranchTarget(o *obj.Info, insAddr obj.SectionAddress, ins ppc.Ins) BranchTarget {
	switch ins.Op {
	case ppc.Bcctr:
		return v.resolveCTRTarget(o, insAddr, ins)
	case ppc.Bclr:
		return ReturnTarget
	default:
		disp, ok := ins.BranchDest()
		if !ok {
			return UnknownTarget
		}
		var value uint32
		if ins.AA() {
			value = uint32(disp)
		} else {
			value = insAddr.Address + uint32(disp)
		}
		if target, ok := SectionAddressFor(o, insAddr, value); ok {
			return AddressTarget(target)
		}
		return UnknownTarget
	}
}

func (v *VM) resolveCTRTarget(o *obj.Info, insAddr obj.SectionAddress, ins ppc.Ins) BranchTarget {
	switch v.CTR.Kind {
	case Constant:
		if target, ok := SectionAddressFor(o, insAddr, v.CTR.Const); ok {
			return AddressTarget(target)
		}
		return UnknownTarget
	case Address:
		return AddressTarget(v.CTR.Addr)
	case LoadIndexed:
		// The link-bit guard keeps bctrl (an indirect function call)
		// from being misclassified as a jump table.
		if !ins.LK() {
			if v.CTR.HasMaxOffset {
				return JumpTableTarget(v.CTR.Addr, v.CTR.MaxOffset+4)
			}
			return BranchTarget{Kind: TargetJumpTable, Address: v.CTR.Addr}
		}
		return UnknownTarget
	default:
		return UnknownTarget
	}
}
