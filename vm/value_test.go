package vm

import (
	"testing"

	"github.com/broadway-toolkit/ppc750vm/obj"
)

func TestUnknownValueIsUnknown(t *testing.T) {
	if !UnknownValue.IsUnknown() {
		t.Error("expected UnknownValue.IsUnknown() == true")
	}
	if ConstantValue(0).IsUnknown() {
		t.Error("expected ConstantValue(0).IsUnknown() == false")
	}
}

func TestConstantValueAccessor(t *testing.T) {
	v := ConstantValue(0x1234)
	c, ok := v.AsConstant()
	if !ok {
		t.Fatal("expected AsConstant to succeed")
	}
	if c != 0x1234 {
		t.Errorf("expected 0x1234, got %#x", c)
	}

	if _, ok = UnknownValue.AsConstant(); ok {
		t.Error("expected UnknownValue.AsConstant() to fail")
	}
}

func TestAddressValueAccessor(t *testing.T) {
	target := obj.NewAddressTarget(obj.SectionAddress{Section: 0, Address: 0x8000})
	v := AddressValue(target)
	got, ok := v.AsAddress()
	if !ok {
		t.Fatal("expected AsAddress to succeed")
	}
	if got != target {
		t.Errorf("expected %+v, got %+v", target, got)
	}
}

func TestRangeValueAccessor(t *testing.T) {
	v := RangeValue(0, 100, 4)
	min, max, step, ok := v.AsRange()
	if !ok {
		t.Fatal("expected AsRange to succeed")
	}
	if min != 0 || max != 100 || step != 4 {
		t.Errorf("expected [0,100] step 4, got [%d,%d] step %d", min, max, step)
	}
}

func TestComparisonResultAccessor(t *testing.T) {
	v := ComparisonResultValue(3)
	crf, ok := v.AsComparisonResult()
	if !ok {
		t.Fatal("expected AsComparisonResult to succeed")
	}
	if crf != 3 {
		t.Errorf("expected crf=3, got %d", crf)
	}
}

func TestLoadIndexedValue(t *testing.T) {
	target := obj.NewAddressTarget(obj.SectionAddress{Section: 0, Address: 0x100})
	v := LoadIndexedValue(target, 28, true)
	if v.Kind != LoadIndexed {
		t.Errorf("expected Kind=LoadIndexed, got %v", v.Kind)
	}
	if !v.HasMaxOffset {
		t.Error("expected HasMaxOffset=true")
	}
	if v.MaxOffset != 28 {
		t.Errorf("expected MaxOffset=28, got %d", v.MaxOffset)
	}
}
