package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/broadway-toolkit/ppc750vm/obj"
)

// programFile is the on-disk JSON shape describing a host object and an
// instruction stream to walk. The real loader/relocation-table work (reading
// an ELF/DOL, resolving a symbol table) lives outside this module — see
// spec §6 — so the driver accepts an already-resolved description instead.
type programFile struct {
	Kind     string          `json:"kind"` // "relocatable" or "executable"
	Sections []sectionFile   `json:"sections"`
	SDABase  *uint32         `json:"sda_base,omitempty"`
	SDA2Base *uint32         `json:"sda2_base,omitempty"`
	Relocs   []relocFile     `json:"relocations,omitempty"`
	Entry    sectionAddrFile `json:"entry"`
	Words    []uint32        `json:"words"` // big-endian instruction stream starting at Entry
}

type sectionFile struct {
	Name  string `json:"name"`
	Start uint32 `json:"start"`
	Size  uint32 `json:"size"`
	Index int    `json:"index"`
}

type sectionAddrFile struct {
	Section int    `json:"section"`
	Address uint32 `json:"address"`
}

type relocFile struct {
	Ins    sectionAddrFile `json:"ins"`
	Target sectionAddrFile `json:"target"`
}

func loadProgram(path string) (*obj.Info, []uint32, obj.SectionAddress, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- CLI-supplied input file
	if err != nil {
		return nil, nil, obj.SectionAddress{}, fmt.Errorf("reading program file: %w", err)
	}

	var pf programFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, nil, obj.SectionAddress{}, fmt.Errorf("parsing program file: %w", err)
	}

	kind := obj.Relocatable
	if pf.Kind == "executable" {
		kind = obj.Executable
	}

	sections := make(obj.Sections, len(pf.Sections))
	for i, s := range pf.Sections {
		sections[i] = obj.Section{Name: s.Name, Start: s.Start, Size: s.Size, Index: s.Index}
	}

	info := obj.NewInfo(kind, sections)
	info.SDABase = pf.SDABase
	info.SDA2Base = pf.SDA2Base

	for _, r := range pf.Relocs {
		insAddr := obj.SectionAddress{Section: r.Ins.Section, Address: r.Ins.Address}
		target := obj.NewAddressTarget(obj.SectionAddress{Section: r.Target.Section, Address: r.Target.Address})
		info.AddRelocation(insAddr, target)
	}

	entry := obj.SectionAddress{Section: pf.Entry.Section, Address: pf.Entry.Address}
	return info, pf.Words, entry, nil
}
