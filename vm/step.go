package vm

import (
	"github.com/broadway-toolkit/ppc750vm/obj"
	"github.com/broadway-toolkit/ppc750vm/ppc"
)

// Step applies the transfer function for one decoded instruction at
// insAddr, mutating v in place and returning how control and memory are
// affected. See spec §4.2 for the semantics of each opcode family.
func (v *VM) Step(o *obj.Info, insAddr obj.SectionAddress, ins ppc.Ins) StepResult {
	switch ins.Op {
	case ppc.Illegal:
		return IllegalStep

	case ppc.Add:
		v.stepAdd(ins)

	case ppc.Addis:
		v.stepAddis(o, insAddr, ins)

	case ppc.Addi, ppc.Addic, ppc.AddicDot:
		v.stepAddi(o, insAddr, ins)

	case ppc.Ori:
		v.stepOri(o, insAddr, ins)

	case ppc.Or:
		v.stepOr(ins)

	case ppc.Cmp, ppc.Cmpi, ppc.Cmpl, ppc.Cmpli:
		v.stepCompare(ins)

	case ppc.Rlwinm, ppc.Rlwnm:
		v.stepRotateMask(ins)

	case ppc.B, ppc.Bc, ppc.Bcctr, ppc.Bclr:
		return v.stepBranch(o, insAddr, ins)

	case ppc.Lwzx:
		v.stepLwzx(o, insAddr, ins)

	case ppc.Mtspr:
		v.stepMtspr(ins)

	case ppc.Mfspr:
		v.stepMfspr(ins)

	case ppc.Rfi:
		return Jump(UnknownTarget)

	default:
		if ppc.IsLoadStoreOp(ins.Op) {
			return v.stepLoadStore(o, insAddr, ins)
		}
		v.stepDefault(ins)
	}
	return ContinueResult
}

// stepAdd implements `add rD, rA, rB`.
func (v *VM) stepAdd(ins ppc.Ins) {
	left := v.GPR[ins.RA()].Value
	right := v.GPR[ins.RB()].Value
	var value GprValue
	switch {
	case isConstant(left) && isConstant(right):
		value = ConstantValue(left.Const + right.Const)
	case isAddress(left) && isConstant(right):
		if addr, ok := left.Addr.Address(); ok {
			value = AddressValue(obj.NewAddressTarget(addr.Add(right.Const)))
		} else {
			value = UnknownValue
		}
	case isConstant(left) && isAddress(right):
		if addr, ok := right.Addr.Address(); ok {
			value = AddressValue(obj.NewAddressTarget(addr.Add(left.Const)))
		} else {
			value = UnknownValue
		}
	default:
		value = UnknownValue
	}
	v.GPR[ins.RD()].SetDirect(value)
}

// stepAddis implements `addis rD, rA, SIMM` (and the `lis rD, SIMM` alias
// when rA is r0).
func (v *VM) stepAddis(o *obj.Info, insAddr obj.SectionAddress, ins ppc.Ins) {
	if target, ok := o.RelocationTargetFor(insAddr, nil); ok {
		// debug-only precondition: addis with an attached relocation is
		// only ever emitted in the `lis rD, sym@ha` form.
		v.GPR[ins.RD()].SetHi(AddressValue(target), insAddr)
		return
	}

	left := ConstantValue(0)
	if ins.RA() != 0 {
		left = v.GPR[ins.RA()].Value
	}
	value := UnknownValue
	if c, ok := left.AsConstant(); ok {
		value = ConstantValue(c + uint32(ins.SIMM())<<16)
	}
	if ins.RA() == 0 {
		v.GPR[ins.RD()].SetHi(value, insAddr)
	} else {
		v.GPR[ins.RD()].SetDirect(value)
	}
}

// stepAddi implements `addi`/`addic`/`addic.`.
func (v *VM) stepAddi(o *obj.Info, insAddr obj.SectionAddress, ins ppc.Ins) {
	if target, ok := o.RelocationTargetFor(insAddr, nil); ok {
		v.GPR[ins.RD()].SetLo(AddressValue(target), insAddr, v.GPR[ins.RA()])
		return
	}

	isLi := ins.RA() == 0 && ins.Op == ppc.Addi
	left := v.GPR[ins.RA()].Value
	if isLi {
		left = ConstantValue(0)
	}

	value := UnknownValue
	switch {
	case isConstant(left):
		value = ConstantValue(left.Const + uint32(ins.SIMM()))
	case isAddress(left):
		if addr, ok := left.Addr.Address(); ok {
			value = AddressValue(obj.NewAddressTarget(addr.Offset(ins.SIMM())))
		}
	}

	if ins.RA() == 0 {
		v.GPR[ins.RD()].SetDirect(value)
	} else {
		v.GPR[ins.RD()].SetLo(value, insAddr, v.GPR[ins.RA()])
	}
}

// stepOri implements `ori rA, rS, UIMM`.
func (v *VM) stepOri(o *obj.Info, insAddr obj.SectionAddress, ins ppc.Ins) {
	if target, ok := o.RelocationTargetFor(insAddr, nil); ok {
		v.GPR[ins.RA()].SetLo(AddressValue(target), insAddr, v.GPR[ins.RS()])
		return
	}
	value := UnknownValue
	if c, ok := v.GPR[ins.RS()].Value.AsConstant(); ok {
		value = ConstantValue(c | ins.UIMM())
	}
	v.GPR[ins.RA()].SetLo(value, insAddr, v.GPR[ins.RS()])
}

// stepOr implements `or rA, rS, rB`, including the rS==rB register-copy
// special case.
func (v *VM) stepOr(ins ppc.Ins) {
	if ins.RS() == ins.RB() {
		v.GPR[ins.RA()] = copyGpr(v.GPR[ins.RS()])
		return
	}
	left := v.GPR[ins.RS()].Value
	right := v.GPR[ins.RB()].Value
	value := UnknownValue
	if lc, ok := left.AsConstant(); ok {
		if rc, ok := right.AsConstant(); ok {
			value = ConstantValue(lc | rc)
		}
	}
	v.GPR[ins.RA()].SetDirect(value)
}

// stepCompare implements cmp/cmpi/cmpl/cmpli. Only the 32-bit form (L==0)
// is modeled; the 64-bit form is silently ignored, per spec §4.2.
func (v *VM) stepCompare(ins ppc.Ins) {
	if ins.L() != 0 {
		return
	}
	leftReg := ins.RA()
	left := v.GPR[leftReg].Value
	var right GprValue
	var signed bool
	switch ins.Op {
	case ppc.Cmp:
		right, signed = v.GPR[ins.RB()].Value, true
	case ppc.Cmpl:
		right, signed = v.GPR[ins.RB()].Value, false
	case ppc.Cmpi:
		right, signed = ConstantValue(uint32(ins.SIMM())), true
	case ppc.Cmpli:
		right, signed = ConstantValue(ins.UIMM()), false
	}
	crf := ins.CRFD()
	v.CR[crf] = CRField{Left: left, Right: right, Signed: signed}
	v.GPR[leftReg].Value = ComparisonResultValue(uint8(crf))
}

// stepRotateMask implements rlwinm/rlwnm, including the jump-table-index
// synthesis case described in spec §4.2.
func (v *VM) stepRotateMask(ins ppc.Ins) {
	shift, ok := rotateShift(v, ins)
	value := UnknownValue
	if ok {
		mask := maskValue(ins.MB(), ins.ME())
		switch src := v.GPR[ins.RS()].Value; src.Kind {
		case Constant:
			value = ConstantValue(rotl32(src.Const, shift) & mask)
		case Range:
			value = RangeValue(
				rotl32(src.Min, shift)&mask,
				rotl32(src.Max, shift)&mask,
				rotl32(src.Step, shift),
			)
		default:
			value = RangeValue(0, mask, rotl32(1, shift))
		}
	}
	v.GPR[ins.RA()].SetDirect(value)
}

func rotateShift(v *VM, ins ppc.Ins) (uint32, bool) {
	if ins.Op == ppc.Rlwinm {
		return ins.SH(), true
	}
	return v.GPR[ins.RB()].Value.AsConstant()
}

// stepLwzx implements the indexed word load `lwzx rD, rA, rB`, the seed of
// the jump-table detector: an arbitrary bounded index loaded through an
// address produces LoadIndexed rather than Unknown.
func (v *VM) stepLwzx(o *obj.Info, insAddr obj.SectionAddress, ins ppc.Ins) {
	left, leftOK := v.GPR[ins.RA()].addressView(o, insAddr)
	right := v.GPR[ins.RB()].Value

	value := UnknownValue
	if leftOK {
		if _, max, _, ok := right.AsRange(); ok && max < 0xFFFFFFFF-4 && max&3 == 0 {
			value = LoadIndexedValue(left, max, true)
		} else {
			value = LoadIndexedValue(left, 0, false)
		}
	}
	v.GPR[ins.RD()].SetDirect(value)
}

// stepMtspr implements `mtspr SPR, rS`. Only CTR (SPR 9) is modeled.
func (v *VM) stepMtspr(ins ppc.Ins) {
	if ins.SPR() == 9 {
		v.CTR = v.GPR[ins.RS()].Value
	}
}

// stepMfspr implements `mfspr rD, SPR`. Only CTR (SPR 9) is modeled.
func (v *VM) stepMfspr(ins ppc.Ins) {
	value := UnknownValue
	if ins.SPR() == 9 {
		value = v.CTR
	}
	v.GPR[ins.RD()].SetDirect(value)
}

// stepLoadStore implements every load/store/float-load/float-store opcode
// (see spec §4.2). It resolves the effective address, handles update-form
// write-back, and — for integer loads — clobbers the destination register.
func (v *VM) stepLoadStore(o *obj.Info, insAddr obj.SectionAddress, ins ppc.Ins) StepResult {
	source := ins.RA()
	result := ContinueResult

	switch sv := v.GPR[source].Value; sv.Kind {
	case Address:
		if ppc.IsUpdateOp(ins.Op) {
			v.GPR[source].SetLo(AddressValue(sv.Addr), insAddr, v.GPR[source])
		}
		result = LoadStore(sv.Addr, v.GPR[source], uint8(source))

	case Constant:
		address := sv.Const + uint32(ins.SIMM())
		if target, ok := SectionAddressFor(o, insAddr, address); ok {
			if ppc.IsUpdateOp(ins.Op) {
				v.GPR[source].SetLo(AddressValue(target), insAddr, v.GPR[source])
			}
			result = LoadStore(target, v.GPR[source], uint8(source))
		}

	default:
		if ppc.IsUpdateOp(ins.Op) {
			v.GPR[source].SetDirect(UnknownValue)
		}
	}

	if ppc.IsLoadOp(ins.Op) {
		v.GPR[ins.RD()].SetDirect(UnknownValue)
	}
	return result
}

// stepDefault is the fallback transfer function for any opcode not covered
// above: every register listed by Defs() becomes Unknown. It is reached by
// ppc.Other — the catch-all for ALU and logical instructions this VM
// doesn't model by name (and, xor, subf, nor, mullw, ...) — and by the
// indexed update forms (lbzux, lwzux, stwux, lfdux, ...), which are not in
// the load/store predicates. Only the four integer indexed update loads
// have a Defs() entry (rD); for the rest Defs() is empty, so fall back to
// clobbering rD, the destination field shared by every X/D-form integer
// instruction. Clobbering a field that isn't a real GPR destination (the
// source of a store, an FPR number, some primary-19 condition-register
// forms) is conservative, not unsound: Unknown is the lattice's top
// element. Defs() does not list the base register an update form writes
// back, so that register keeps its previous value here.
func (v *VM) stepDefault(ins ppc.Ins) {
	defs := ins.Defs()
	if len(defs) == 0 {
		defs = []ppc.GPR{ins.RD()}
	}
	for _, reg := range defs {
		v.GPR[reg].SetDirect(UnknownValue)
	}
}

func isConstant(val GprValue) bool { return val.Kind == Constant }
func isAddress(val GprValue) bool  { return val.Kind == Address }
