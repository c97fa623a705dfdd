package vm

import "github.com/broadway-toolkit/ppc750vm/obj"

// Gpr is one general-purpose register entry: its abstract value plus two
// optional audit addresses consumed by the host to attach relocations to
// immediate operands (see spec §3).
//
//   - If the value was produced directly, both audit addresses are nil.
//   - If the value is the high half of an address, HiAddr is set and
//     LoAddr is nil.
//   - If the value is the completed low half, HiAddr is inherited from the
//     source GPR whose hi half was consumed, and LoAddr is the completing
//     instruction's address — unless the source GPR already carried a
//     LoAddr, in which case that is inherited instead (a chained addi).
type Gpr struct {
	Value  GprValue
	HiAddr *obj.SectionAddress
	LoAddr *obj.SectionAddress
}

// SetDirect records a value produced directly (arithmetic, copy, load),
// clearing both audit addresses.
func (g *Gpr) SetDirect(value GprValue) {
	g.Value = value
	g.HiAddr = nil
	g.LoAddr = nil
}

// SetHi records value as the high half of an address materialized at addr
// (the lis half of a lis/addi pair).
func (g *Gpr) SetHi(value GprValue, addr obj.SectionAddress) {
	g.Value = value
	a := addr
	g.HiAddr = &a
	g.LoAddr = nil
}

// SetLo records value as the completed low half of an address, where
// hiGpr is the register whose hi half fed this instruction (usually, but
// not always, the same register being written).
func (g *Gpr) SetLo(value GprValue, addr obj.SectionAddress, hiGpr Gpr) {
	g.Value = value
	g.HiAddr = hiGpr.HiAddr
	if hiGpr.LoAddr != nil {
		g.LoAddr = hiGpr.LoAddr
	} else {
		a := addr
		g.LoAddr = &a
	}
}

// addressView returns the section address this register resolves to, for
// use as a load/store base: a Constant is resolved through the host's
// relocation/section tables, an Address is returned as-is, and anything
// else yields no address.
func (g Gpr) addressView(o *obj.Info, insAddr obj.SectionAddress) (obj.RelocationTarget, bool) {
	switch g.Value.Kind {
	case Constant:
		return SectionAddressFor(o, insAddr, g.Value.Const)
	case Address:
		return g.Value.Addr, true
	default:
		return obj.RelocationTarget{}, false
	}
}

func copyGpr(g Gpr) Gpr {
	out := g
	if g.HiAddr != nil {
		a := *g.HiAddr
		out.HiAddr = &a
	}
	if g.LoAddr != nil {
		a := *g.LoAddr
		out.LoAddr = &a
	}
	return out
}

// CRField holds the operands of the most recent compare into one of the
// eight condition-register fields.
type CRField struct {
	Left   GprValue
	Right  GprValue
	Signed bool
}

// Dedicated / non-volatile GPR numbers referenced by the cloning
// disciplines below, named the way the PowerPC EABI names them.
const (
	rSDA2Base = 2  // r2: small-data-area 2 base
	rStack    = 1  // r1: stack pointer
	rSDABase  = 13 // r13: small-data-area base
)

// VM is the abstract machine state: 32 GPRs, 8 CR fields and CTR. There are
// no heap references shared between VMs; every clone below is a full deep
// copy, so mutating one VM can never be observed through another.
type VM struct {
	GPR [32]Gpr
	CR  [8]CRField
	CTR GprValue
}

// GPRValue returns the current abstract value of reg, the accessor the
// host CFG driver uses instead of reaching into the GPR array directly.
func (v *VM) GPRValue(reg uint8) GprValue { return v.GPR[reg].Value }

// Fresh constructs a VM with every register Unknown, as used at function
// entry when no small-data-area bases are known.
func Fresh() *VM { return &VM{} }

// Seeded constructs a fresh VM and, for any base that is non-nil, seeds the
// corresponding small-data-area pointer register as a known constant. This
// lets later `addi rD, r2/r13, simm` sequences be recognized as absolute
// addresses instead of degrading to Unknown.
func Seeded(sdaBase, sda2Base *uint32) *VM {
	v := Fresh()
	if sda2Base != nil {
		v.GPR[rSDA2Base].SetDirect(ConstantValue(*sda2Base))
	}
	if sdaBase != nil {
		v.GPR[rSDABase].SetDirect(ConstantValue(*sdaBase))
	}
	return v
}

// CloneForLink builds the VM state for the call-target fork of a function
// call: a fresh VM carrying forward only the small-data-area bases, since
// caller-saved conventions make every other register unreliable across a
// call.
func (v *VM) CloneForLink() *VM {
	out := Fresh()
	out.GPR[rSDA2Base].Value = v.GPR[rSDA2Base].Value
	out.GPR[rSDABase].Value = v.GPR[rSDABase].Value
	return out
}

// CloneForReturn builds the VM state for the fallthrough fork after a
// function call returns: the stack pointer and SDA bases, plus the
// callee-saved non-volatile registers r14-r31 including their audit
// addresses. CR and CTR are reset, since a callee is free to clobber them.
func (v *VM) CloneForReturn() *VM {
	out := Fresh()
	out.GPR[rStack].Value = v.GPR[rStack].Value
	out.GPR[rSDA2Base].Value = v.GPR[rSDA2Base].Value
	out.GPR[rSDABase].Value = v.GPR[rSDABase].Value
	for i := 14; i < 32; i++ {
		out.GPR[i] = copyGpr(v.GPR[i])
	}
	return out
}

// CloneAll is a full structural deep copy, used at conditional-branch forks
// inside a function where both sides continue with the same knowledge.
func (v *VM) CloneAll() *VM {
	out := &VM{CR: v.CR, CTR: v.CTR}
	for i := range v.GPR {
		out.GPR[i] = copyGpr(v.GPR[i])
	}
	return out
}

// setComparisonResult replaces the value of every GPR still tagged
// ComparisonResult(crf) with value. This is how a compare + conditional
// branch sequence installs a refined range onto the register that fed the
// compare, without an explicit data-flow back-edge: the compare tags its
// left operand at compare time, and the branch searches for that tag.
func (v *VM) setComparisonResult(value GprValue, crf int) {
	for i := range v.GPR {
		if cr, ok := v.GPR[i].Value.AsComparisonResult(); ok && int(cr) == crf {
			v.GPR[i].Value = value
		}
	}
}
