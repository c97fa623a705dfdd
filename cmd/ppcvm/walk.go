package main

import (
	"github.com/broadway-toolkit/ppc750vm/obj"
	"github.com/broadway-toolkit/ppc750vm/ppc"
	"github.com/broadway-toolkit/ppc750vm/vm"
)

// pendingState is one unvisited branch fork: an address to resume decoding
// at, and the VM snapshot control arrives there with.
type pendingState struct {
	addr obj.SectionAddress
	vm   *vm.VM
}

// frameSink receives every decoded Step outcome as the walk progresses, in
// the order instructions are visited. Both the plain trace recorder and the
// TUI inspector implement this by wrapping a tracebuf.Trace / a
// debugger.Frame channel respectively.
type frameSink func(addr obj.SectionAddress, ins ppc.Ins, after *vm.VM, result vm.StepResult)

// walker walks the CFG reachable from an entry point by repeatedly decoding
// and stepping instructions, following every fork a Step produces (subject
// to maxSteps and a visited-address guard that never steps the same
// address twice, so loops terminate; jump-table targets are not followed).
type walker struct {
	info     *obj.Info
	words    []uint32
	base     obj.SectionAddress
	maxSteps uint64
}

func newWalker(info *obj.Info, words []uint32, base obj.SectionAddress, maxSteps uint64) *walker {
	return &walker{info: info, words: words, base: base, maxSteps: maxSteps}
}

// wordAt returns the decoded instruction at addr, if addr falls inside the
// walker's instruction stream.
func (w *walker) wordAt(addr obj.SectionAddress) (ppc.Ins, bool) {
	if addr.Section != w.base.Section {
		return ppc.Ins{}, false
	}
	if addr.Address < w.base.Address {
		return ppc.Ins{}, false
	}
	idx := (addr.Address - w.base.Address) / 4
	if int(idx) >= len(w.words) {
		return ppc.Ins{}, false
	}
	return ppc.Decode(w.words[idx]), true
}

// Run walks every instruction reachable from entry, calling sink once per
// Step call, until the work queue drains, a step budget is exhausted, or
// every remaining fork falls outside the known instruction stream.
func (w *walker) Run(entry obj.SectionAddress, entryVM *vm.VM, sink frameSink) {
	queue := []pendingState{{addr: entry, vm: entryVM}}
	visited := make(map[obj.SectionAddress]bool)
	var steps uint64

	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]

		addr := state.addr
		machine := state.vm

		for {
			if w.maxSteps > 0 && steps >= w.maxSteps {
				return
			}
			if visited[addr] {
				break
			}
			visited[addr] = true

			ins, ok := w.wordAt(addr)
			if !ok {
				break
			}
			steps++

			result := machine.Step(w.info, addr, ins)
			sink(addr, ins, machine, result)

			done := false
			switch result.Kind {
			case vm.IllegalResult:
				done = true

			case vm.JumpResult:
				next, ok := targetAddress(result.Target)
				if !ok {
					done = true
					break
				}
				addr = next

			case vm.BranchResult:
				for _, b := range result.Branches {
					if next, ok := targetAddress(b.Target); ok {
						queue = append(queue, pendingState{addr: next, vm: b.VM})
					}
				}
				done = true

			default: // Continue, LoadStoreResult
				addr = addr.Add(4)
			}
			if done {
				break
			}
		}
	}
}

func targetAddress(target vm.BranchTarget) (obj.SectionAddress, bool) {
	if target.Kind != vm.TargetAddress {
		return obj.SectionAddress{}, false
	}
	addr, ok := target.Address.Address()
	return addr, ok
}
