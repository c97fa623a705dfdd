// Package obj describes the host binary-analysis object that the VM reads
// from but never owns: sections, relocations and small-data-area bases.
// The loader/relocation-table implementation lives outside this module; obj
// only defines the shapes the vm package depends on (see spec §6).
package obj

import "fmt"

// Kind distinguishes a fully linked executable from a relocatable object
// file. Address resolution in the VM (section_address_for) behaves
// differently for each: an executable can resolve any in-range address by
// locating its containing section, while a relocatable object can only
// trust addresses inside the instruction's own section.
type Kind int

const (
	Relocatable Kind = iota
	Executable
)

func (k Kind) String() string {
	if k == Executable {
		return "executable"
	}
	return "relocatable"
}

// SectionAddress is a section-relative address: the index of the section
// plus a byte offset into it.
type SectionAddress struct {
	Section int
	Address uint32
}

// Add returns the address offset forward by delta bytes.
func (a SectionAddress) Add(delta uint32) SectionAddress {
	return SectionAddress{Section: a.Section, Address: a.Address + delta}
}

// Offset returns the address adjusted by a signed byte delta, wrapping on
// overflow the same way the underlying PowerPC arithmetic does.
func (a SectionAddress) Offset(delta int32) SectionAddress {
	return SectionAddress{Section: a.Section, Address: uint32(int64(a.Address) + int64(delta))}
}

func (a SectionAddress) String() string {
	return fmt.Sprintf("%d:%#08x", a.Section, a.Address)
}

// RelocationTarget is the VM's view of "this operand resolves to a known
// location", produced by the host's relocation table and by in-object
// address resolution alike. It is a closed sum type: today the only shape
// is a concrete section address, but the variant exists so additional kinds
// (e.g. external symbols) can be added without touching every call site.
type RelocationTarget struct {
	kind    relocKind
	address SectionAddress
}

type relocKind int

const (
	relocAddress relocKind = iota
)

// NewAddressTarget builds a RelocationTarget that resolves directly to a
// section address.
func NewAddressTarget(addr SectionAddress) RelocationTarget {
	return RelocationTarget{kind: relocAddress, address: addr}
}

// Address returns the underlying section address and true if this target is
// the Address variant (the only variant currently defined).
func (t RelocationTarget) Address() (SectionAddress, bool) {
	return t.address, t.kind == relocAddress
}

func (t RelocationTarget) String() string {
	switch t.kind {
	case relocAddress:
		return t.address.String()
	default:
		return "<invalid relocation target>"
	}
}

// Section is a single contiguous region of the host object's address space.
type Section struct {
	Name    string
	Start   uint32
	Size    uint32
	Index   int
}

// Contains reports whether addr falls within this section's extent.
func (s Section) Contains(addr uint32) bool {
	return addr >= s.Start && addr < s.Start+s.Size
}

// Sections is the indexable section table of a host object.
type Sections []Section

// AtAddress returns the section containing addr, if any.
func (s Sections) AtAddress(addr uint32) (int, *Section, bool) {
	for i := range s {
		if s[i].Contains(addr) {
			return i, &s[i], true
		}
	}
	return 0, nil, false
}

// Contains reports whether the section at the given index contains addr.
// Used when ins_addr's own section must be consulted for a relocatable
// object, where cross-section resolution is not trusted.
func (s Sections) Contains(index int, addr uint32) bool {
	if index < 0 || index >= len(s) {
		return false
	}
	return s[index].Contains(addr)
}

// OperandHint narrows a relocation lookup to a specific operand of an
// instruction, for instructions that reference more than one immediate.
// The VM only ever performs whole-instruction lookups today, so this is
// always nil at call sites, but the host interface carries the parameter
// per spec §6.
type OperandHint struct {
	Index int
}

// Info is the external collaborator: everything the VM needs to know about
// the object being analyzed, without owning any of it.
type Info struct {
	Kind     Kind
	Sections Sections

	// SDABase / SDA2Base seed r13 / r2 when constructing a VM for a new
	// function (see vm.Seeded). Nil means "unknown", matching the host's
	// own platform-specific discovery of these values.
	SDABase  *uint32
	SDA2Base *uint32

	// relocs maps an instruction's section address to its relocation
	// target. A real host backs this with a proper relocation table
	// (symbol table + addend resolution); this module only needs the
	// lookup contract, so a flat map is sufficient and is exercised
	// directly by the analysis driver in cmd/ppcvm.
	relocs map[SectionAddress]RelocationTarget
}

// NewInfo constructs a host object with no relocations. Use AddRelocation
// to populate the table the way a loader would as it processes each
// relocation entry.
func NewInfo(kind Kind, sections Sections) *Info {
	return &Info{Kind: kind, Sections: sections, relocs: make(map[SectionAddress]RelocationTarget)}
}

// AddRelocation registers a relocation at ins_addr resolving to target.
func (o *Info) AddRelocation(insAddr SectionAddress, target RelocationTarget) {
	o.relocs[insAddr] = target
}

// RelocationTargetFor looks up the relocation the host recorded for the
// instruction at insAddr. hint is reserved for multi-operand instructions;
// it is currently unused by every opcode the VM models.
func (o *Info) RelocationTargetFor(insAddr SectionAddress, hint *OperandHint) (RelocationTarget, bool) {
	_ = hint
	t, ok := o.relocs[insAddr]
	return t, ok
}
