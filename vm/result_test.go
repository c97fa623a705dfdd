package vm

import (
	"testing"

	"github.com/broadway-toolkit/ppc750vm/obj"
)

func TestSectionAddressForPrefersExplicitRelocation(t *testing.T) {
	info := obj.NewInfo(obj.Relocatable, obj.Sections{
		{Name: ".text", Start: 0, Size: 0x100, Index: 0},
	})
	insAddr := obj.SectionAddress{Section: 0, Address: 0x10}
	explicit := obj.NewAddressTarget(obj.SectionAddress{Section: 5, Address: 0x9999})
	info.AddRelocation(insAddr, explicit)

	got, ok := SectionAddressFor(info, insAddr, 0x20)
	if !ok {
		t.Fatal("expected SectionAddressFor to resolve")
	}
	if got != explicit {
		t.Errorf("expected %+v, got %+v", explicit, got)
	}
}

func TestSectionAddressForExecutableFallsBackToSectionLookup(t *testing.T) {
	info := obj.NewInfo(obj.Executable, obj.Sections{
		{Name: ".text", Start: 0x80000000, Size: 0x1000, Index: 0},
		{Name: ".data", Start: 0x80400000, Size: 0x1000, Index: 1},
	})
	insAddr := obj.SectionAddress{Section: 0, Address: 0x80000000}

	got, ok := SectionAddressFor(info, insAddr, 0x80400010)
	if !ok {
		t.Fatal("expected SectionAddressFor to resolve")
	}
	addr, _ := got.Address()
	if addr.Section != 1 {
		t.Errorf("expected section 1, got %d", addr.Section)
	}
	if addr.Address != 0x80400010 {
		t.Errorf("expected 0x80400010, got %#x", addr.Address)
	}
}

func TestSectionAddressForExecutableUnresolvedAddressFails(t *testing.T) {
	info := obj.NewInfo(obj.Executable, obj.Sections{
		{Name: ".text", Start: 0x80000000, Size: 0x1000, Index: 0},
	})
	if _, ok := SectionAddressFor(info, obj.SectionAddress{Section: 0, Address: 0x80000000}, 0x90000000); ok {
		t.Error("expected SectionAddressFor to fail for an address outside every section")
	}
}

func TestSectionAddressForRelocatableTrustsOwnSectionOnly(t *testing.T) {
	info := obj.NewInfo(obj.Relocatable, obj.Sections{
		{Name: ".text", Start: 0, Size: 0x100, Index: 0},
		{Name: ".data", Start: 0x1000, Size: 0x100, Index: 1},
	})
	insAddr := obj.SectionAddress{Section: 0, Address: 0x10}

	// Within the instruction's own section: resolves.
	got, ok := SectionAddressFor(info, insAddr, 0x50)
	if !ok {
		t.Fatal("expected SectionAddressFor to resolve within the owning section")
	}
	addr, _ := got.Address()
	if addr.Section != 0 {
		t.Errorf("expected section 0, got %d", addr.Section)
	}

	// In a different section entirely: a relocatable object does not trust
	// cross-section resolution without an explicit relocation.
	if _, ok = SectionAddressFor(info, insAddr, 0x1050); ok {
		t.Error("expected cross-section resolution to fail without a relocation")
	}
}

func TestBranchTargetConstructors(t *testing.T) {
	target := obj.NewAddressTarget(obj.SectionAddress{Section: 0, Address: 0x100})

	if UnknownTarget.Kind != TargetUnknown {
		t.Errorf("expected TargetUnknown, got %v", UnknownTarget.Kind)
	}
	if ReturnTarget.Kind != TargetReturn {
		t.Errorf("expected TargetReturn, got %v", ReturnTarget.Kind)
	}

	a := AddressTarget(target)
	if a.Kind != TargetAddress {
		t.Errorf("expected TargetAddress, got %v", a.Kind)
	}
	if a.Address != target {
		t.Errorf("expected %+v, got %+v", target, a.Address)
	}

	jt := JumpTableTarget(target, 64)
	if jt.Kind != TargetJumpTable {
		t.Errorf("expected TargetJumpTable, got %v", jt.Kind)
	}
	if !jt.HasSize {
		t.Error("expected HasSize=true")
	}
	if jt.Size != 64 {
		t.Errorf("expected Size=64, got %d", jt.Size)
	}
}
