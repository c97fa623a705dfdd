// Package tracebuf records StepResults as the analysis driver walks a
// control-flow graph, the way the teacher repo's ExecutionTrace records
// concrete instruction execution. Unlike that trace, which snapshots
// register deltas, an entry here snapshots the VM's decision at a branch
// point or the address touched by a memory access — the facts a downstream
// decompiler pass cares about.
package tracebuf

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/broadway-toolkit/ppc750vm/obj"
	"github.com/broadway-toolkit/ppc750vm/vm"
)

// EntryKind mirrors vm.StepKind, named for trace output rather than
// dispatch.
type EntryKind string

const (
	KindContinue   EntryKind = "continue"
	KindLoadStore  EntryKind = "load_store"
	KindIllegal    EntryKind = "illegal"
	KindJump       EntryKind = "jump"
	KindBranch     EntryKind = "branch"
	KindJumpTable  EntryKind = "jump_table"
	KindReturn     EntryKind = "return"
	KindCall       EntryKind = "call"
	KindUnresolved EntryKind = "unresolved"
)

// Entry is one recorded step of the walk.
type Entry struct {
	Sequence uint64    `json:"sequence"`
	Address  uint32    `json:"address"`
	Kind     EntryKind `json:"kind"`
	Detail   string    `json:"detail,omitempty"`
}

// Trace accumulates Entry records, capped at MaxEntries the way the
// teacher's ExecutionTrace caps at a configured limit rather than growing
// unbounded over a long-running walk.
type Trace struct {
	Writer     io.Writer
	MaxEntries int

	entries []Entry
	seq     uint64
}

// New creates a Trace writing to w, retaining at most maxEntries entries
// in memory (0 means unbounded).
func New(w io.Writer, maxEntries int) *Trace {
	return &Trace{Writer: w, MaxEntries: maxEntries, entries: make([]Entry, 0, 256)}
}

// Record appends the outcome of stepping the instruction at addr, deriving
// an EntryKind and a short human-readable detail string from the
// vm.StepResult. It is called once per Step from the CFG walk.
func (t *Trace) Record(addr obj.SectionAddress, result vm.StepResult) {
	if t.MaxEntries > 0 && len(t.entries) >= t.MaxEntries {
		return
	}

	entry := Entry{Sequence: t.seq, Address: addr.Address}
	t.seq++

	switch result.Kind {
	case vm.Continue:
		entry.Kind = KindContinue
	case vm.LoadStoreResult:
		entry.Kind = KindLoadStore
		entry.Detail = fmt.Sprintf("addr=%s source_reg=r%d", result.Address, result.SourceReg)
	case vm.IllegalResult:
		entry.Kind = KindIllegal
	case vm.JumpResult:
		entry.Kind, entry.Detail = describeTarget(result.Target)
	case vm.BranchResult:
		entry.Kind = KindBranch
		parts := make([]string, len(result.Branches))
		for i, b := range result.Branches {
			kind, detail := describeTarget(b.Target)
			parts[i] = fmt.Sprintf("%s(link=%t %s)", kind, b.Link, detail)
		}
		entry.Detail = strings.Join(parts, ", ")
	}

	t.entries = append(t.entries, entry)
}

func describeTarget(target vm.BranchTarget) (EntryKind, string) {
	switch target.Kind {
	case vm.TargetUnknown:
		return KindUnresolved, ""
	case vm.TargetReturn:
		return KindReturn, ""
	case vm.TargetAddress:
		return KindJump, target.Address.String()
	case vm.TargetJumpTable:
		if target.HasSize {
			return KindJumpTable, fmt.Sprintf("addr=%s size=%d", target.Address, target.Size)
		}
		return KindJumpTable, fmt.Sprintf("addr=%s size=unbounded", target.Address)
	default:
		return KindUnresolved, ""
	}
}

// Entries returns the entries recorded so far.
func (t *Trace) Entries() []Entry { return t.entries }

// WriteText renders the trace as plain text, one entry per line.
func (t *Trace) WriteText() error {
	for _, e := range t.entries {
		line := fmt.Sprintf("%6d  %#010x  %-12s", e.Sequence, e.Address, e.Kind)
		if e.Detail != "" {
			line += "  " + e.Detail
		}
		if _, err := fmt.Fprintln(t.Writer, line); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON renders the trace as a JSON array, the teacher's statistics
// package's format of choice for machine-readable output.
func (t *Trace) WriteJSON() error {
	enc := json.NewEncoder(t.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(t.entries)
}
