package ppc_test

import (
	"reflect"
	"testing"

	"github.com/broadway-toolkit/ppc750vm/ppc"
)

func TestBranchDestUnconditional(t *testing.T) {
	// b +0x100, AA=0, LK=0
	ins := ppc.Decode((18 << 26) | 0x100)
	dest, ok := ins.BranchDest()
	if !ok {
		t.Fatal("expected BranchDest to resolve")
	}
	if dest != 0x100 {
		t.Errorf("expected dest=0x100, got %#x", dest)
	}
	if ins.AA() {
		t.Error("expected AA=false")
	}
	if ins.LK() {
		t.Error("expected LK=false")
	}
}

func TestBranchDestNegative(t *testing.T) {
	// b -0x100
	disp := int32(-0x100)
	word := uint32(18<<26) | (uint32(disp) & 0x03fffffc)
	ins := ppc.Decode(word)
	dest, ok := ins.BranchDest()
	if !ok {
		t.Fatal("expected BranchDest to resolve")
	}
	if dest != -0x100 {
		t.Errorf("expected dest=-0x100, got %#x", dest)
	}
}

func TestBranchDestConditional(t *testing.T) {
	// bc with a 16-bit field
	word := uint32(16<<26) | (0x40 & 0xfffc)
	ins := ppc.Decode(word)
	dest, ok := ins.BranchDest()
	if !ok {
		t.Fatal("expected BranchDest to resolve")
	}
	if dest != 0x40 {
		t.Errorf("expected dest=0x40, got %#x", dest)
	}
}

func TestBranchDestNotABranch(t *testing.T) {
	ins := ppc.Decode(0x3cc08052) // addis
	if _, ok := ins.BranchDest(); ok {
		t.Error("expected BranchDest to fail for a non-branch instruction")
	}
}

func TestDefsArithmetic(t *testing.T) {
	ins := ppc.Decode(0x3cc08052) // addis r6, r0, ...
	if got := ins.Defs(); !reflect.DeepEqual(got, []ppc.GPR{6}) {
		t.Errorf("expected [6], got %v", got)
	}
}

func TestDefsOriWritesRA(t *testing.T) {
	// ori r3, r4, 0x10
	word := uint32(24<<26) | (uint32(4) << 21) | (uint32(3) << 16) | 0x10
	ins := ppc.Decode(word)
	if ins.Op != ppc.Ori {
		t.Fatalf("expected Ori, got %s", ins.Op)
	}
	if got := ins.Defs(); !reflect.DeepEqual(got, []ppc.GPR{3}) {
		t.Errorf("expected [3], got %v", got)
	}
}

func TestDefsBranchIsEmpty(t *testing.T) {
	ins := ppc.Decode(0x4e800420) // bctr
	if got := ins.Defs(); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestSPRReassembly(t *testing.T) {
	ins := ppc.Decode(0x7d8903a6) // mtspr CTR, r12
	if ins.SPR() != 9 {
		t.Errorf("expected SPR=9, got %d", ins.SPR())
	}
}
