// Package vm implements the per-instruction abstract-interpretation
// transfer function for the PowerPC 750CL ISA: a flat lattice of register
// value shapes, combined with relocation-aware address reconstruction,
// hi/lo immediate pairing, comparison tracking and branch classification.
//
// The VM is a pure, single-threaded state machine (see spec §5): Step is
// the only mutator, it never blocks or performs I/O, and two VMs never
// share mutable state — every fork is an explicit deep copy.
package vm

import "github.com/broadway-toolkit/ppc750vm/obj"

// ValueKind discriminates the six shapes a GprValue can take. The lattice
// is flat except that Unknown is top: no value is ever "below" another, and
// every transfer function that cannot preserve a more precise shape
// downgrades to Unknown rather than guessing.
type ValueKind int

const (
	// Unknown means no information is held about the register.
	Unknown ValueKind = iota
	// Constant means the register holds this exact 32-bit value.
	Constant
	// Address means the register holds a relocated address.
	Address
	// ComparisonResult means the register currently mirrors the result of
	// a compare into the given CR field; a later conditional branch that
	// consumes that field replaces it with a refined value (a Range for an
	// lt/gt test against a constant).
	ComparisonResult
	// Range means the register holds some value in [Min, Max] reachable
	// by steps of Step, inclusive.
	Range
	// LoadIndexed means the register was loaded from Addr[index] for some
	// index in [0, MaxOffset] — the jump-table seed shape.
	LoadIndexed
)

// GprValue is the abstract value held in a general-purpose register. Go has
// no native sum type, so this is a tagged struct: Kind selects which of the
// remaining fields are meaningful, mirroring the enum-with-payload shape of
// the original analysis core.
type GprValue struct {
	Kind ValueKind

	// Constant, Address, ComparisonResult
	Const   uint32
	Addr    obj.RelocationTarget
	CRField uint8

	// Range
	Min, Max, Step uint32

	// LoadIndexed
	HasMaxOffset bool
	MaxOffset    uint32
}

// UnknownValue is the top of the lattice.
var UnknownValue = GprValue{Kind: Unknown}

// ConstantValue builds a Constant(v) value.
func ConstantValue(v uint32) GprValue { return GprValue{Kind: Constant, Const: v} }

// AddressValue builds an Address(target) value.
func AddressValue(target obj.RelocationTarget) GprValue { return GprValue{Kind: Address, Addr: target} }

// ComparisonResultValue builds a ComparisonResult(crField) value.
func ComparisonResultValue(crField uint8) GprValue {
	return GprValue{Kind: ComparisonResult, CRField: crField}
}

// RangeValue builds a Range{min, max, step} value.
func RangeValue(min, max, step uint32) GprValue {
	return GprValue{Kind: Range, Min: min, Max: max, Step: step}
}

// LoadIndexedValue builds a LoadIndexed{address, maxOffset} value. When
// hasMaxOffset is false, the index is unbounded.
func LoadIndexedValue(address obj.RelocationTarget, maxOffset uint32, hasMaxOffset bool) GprValue {
	return GprValue{Kind: LoadIndexed, Addr: address, MaxOffset: maxOffset, HasMaxOffset: hasMaxOffset}
}

// IsUnknown reports whether v carries no information.
func (v GprValue) IsUnknown() bool { return v.Kind == Unknown }

// AsConstant returns the constant value and true if v is Constant.
func (v GprValue) AsConstant() (uint32, bool) {
	return v.Const, v.Kind == Constant
}

// AsAddress returns the relocation target and true if v is Address.
func (v GprValue) AsAddress() (obj.RelocationTarget, bool) {
	return v.Addr, v.Kind == Address
}

// AsRange returns the range bounds and true if v is Range.
func (v GprValue) AsRange() (min, max, step uint32, ok bool) {
	return v.Min, v.Max, v.Step, v.Kind == Range
}

// AsComparisonResult returns the CR field index and true if v is
// ComparisonResult.
func (v GprValue) AsComparisonResult() (uint8, bool) {
	return v.CRField, v.Kind == ComparisonResult
}
