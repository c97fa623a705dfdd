package vm

import "github.com/broadway-toolkit/ppc750vm/obj"

// BranchTargetKind discriminates the four shapes a resolved branch target
// can take.
type BranchTargetKind int

const (
	// TargetUnknown means CTR/the branch displacement could not be
	// statically resolved to an address (indirect branch, rfi, or the
	// synthetic bla 0 glue pattern).
	TargetUnknown BranchTargetKind = iota
	// TargetReturn means the branch returns to the link register.
	TargetReturn
	// TargetAddress means the branch resolves to a known address.
	TargetAddress
	// TargetJumpTable means CTR was loaded from an index into a table of
	// code addresses; HasSize reports whether that index was bounded.
	TargetJumpTable
)

// BranchTarget is the resolved destination of a branch instruction.
type BranchTarget struct {
	Kind    BranchTargetKind
	Address obj.RelocationTarget // TargetAddress, TargetJumpTable
	HasSize bool                 // TargetJumpTable
	Size    uint32               // TargetJumpTable, inclusive of the final 4-byte slot
}

// UnknownTarget is the BranchTarget used when resolution fails.
var UnknownTarget = BranchTarget{Kind: TargetUnknown}

// ReturnTarget is the BranchTarget for bclr.
var ReturnTarget = BranchTarget{Kind: TargetReturn}

// AddressTarget builds a resolved-address BranchTarget.
func AddressTarget(target obj.RelocationTarget) BranchTarget {
	return BranchTarget{Kind: TargetAddress, Address: target}
}

// JumpTableTarget builds a jump-table BranchTarget covering size bytes
// starting at address (inclusive of the final slot).
func JumpTableTarget(address obj.RelocationTarget, size uint32) BranchTarget {
	return BranchTarget{Kind: TargetJumpTable, Address: address, HasSize: true, Size: size}
}

// Branch is one successor of a multi-way StepResult: its own owned VM
// snapshot plus whether it represents a call (link set).
type Branch struct {
	Target BranchTarget
	Link   bool
	VM     *VM
}

// StepKind discriminates the five shapes a StepResult can take.
type StepKind int

const (
	// Continue advances to ins_addr+4 with the mutated VM.
	Continue StepKind = iota
	// LoadStoreResult reports a memory access for data-reference analysis.
	LoadStoreResult
	// IllegalResult stops this trace.
	IllegalResult
	// JumpResult is unconditional control flow to a single target.
	JumpResult
	// BranchResult carries multiple successors, each with its own VM.
	BranchResult
)

// StepResult is what Step returns after processing one instruction.
type StepResult struct {
	Kind StepKind

	// LoadStoreResult
	Address   obj.RelocationTarget
	Source    Gpr
	SourceReg uint8

	// JumpResult
	Target BranchTarget

	// BranchResult
	Branches []Branch
}

// ContinueResult is the StepResult for an instruction with no special
// control-flow or memory effect.
var ContinueResult = StepResult{Kind: Continue}

// IllegalStep is the StepResult for an undecodable/forbidden opcode.
var IllegalStep = StepResult{Kind: IllegalResult}

// LoadStore builds the StepResult for a resolved memory access.
func LoadStore(address obj.RelocationTarget, source Gpr, sourceReg uint8) StepResult {
	return StepResult{Kind: LoadStoreResult, Address: address, Source: source, SourceReg: sourceReg}
}

// Jump builds the StepResult for unconditional control flow to target.
func Jump(target BranchTarget) StepResult {
	return StepResult{Kind: JumpResult, Target: target}
}

// BranchStep builds the StepResult for a multi-way fork. Order matters:
// fallthrough first, taken/call-target second (see spec §4.5).
func BranchStep(branches []Branch) StepResult {
	return StepResult{Kind: BranchResult, Branches: branches}
}

// SectionAddressFor resolves target_addr seen at ins_addr to a
// RelocationTarget, trying in order: an explicit relocation recorded by the
// host, then (for a linked executable) whichever section contains the
// address, then — for a relocatable object — whether the instruction's own
// section extends far enough to contain it. Each step is a precision
// downgrade, never an error: failure just means "not an address".
func SectionAddressFor(o *obj.Info, insAddr obj.SectionAddress, targetAddr uint32) (obj.RelocationTarget, bool) {
	if target, ok := o.RelocationTargetFor(insAddr, nil); ok {
		return target, true
	}
	if o.Kind == obj.Executable {
		if section, _, ok := o.Sections.AtAddress(targetAddr); ok {
			return obj.NewAddressTarget(obj.SectionAddress{Section: section, Address: targetAddr}), true
		}
		return obj.RelocationTarget{}, false
	}
	if o.Sections.Contains(insAddr.Section, targetAddr) {
		return obj.NewAddressTarget(obj.SectionAddress{Section: insAddr.Section, Address: targetAddr}), true
	}
	return obj.RelocationTarget{}, false
}
