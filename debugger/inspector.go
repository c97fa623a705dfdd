// Package debugger provides a read-only text UI for watching a CFG walk
// step-by-step, adapted from the teacher repo's interactive breakpoint
// debugger. There is nothing here to break on or watch: the walk is a pure
// function over immutable VM snapshots, so the inspector's only job is to
// render the snapshot the driver hands it and wait for the user to ask for
// the next one.
package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/broadway-toolkit/ppc750vm/obj"
	"github.com/broadway-toolkit/ppc750vm/ppc"
	"github.com/broadway-toolkit/ppc750vm/tracebuf"
	"github.com/broadway-toolkit/ppc750vm/vm"
)

// Frame is one step's worth of state for the inspector to render: the
// instruction just decoded, the VM state after stepping it, and the step's
// outcome.
type Frame struct {
	Address obj.SectionAddress
	Ins     ppc.Ins
	VM      *vm.VM
	Result  vm.StepResult
}

// Inspector is the tcell/tview application. Unlike the teacher's TUI, it
// has no command line: a step comes from the driver's Frames channel, and
// the only keys it recognizes are "step forward" and "quit".
type Inspector struct {
	App   *tview.Application
	Pages *tview.Pages

	RegisterView *tview.TextView
	CRView       *tview.TextView
	BranchView   *tview.TextView
	HistoryView  *tview.TextView
	StatusView   *tview.TextView

	Frames <-chan Frame
	Next   chan<- struct{}

	trace   *tracebuf.Trace
	history []string
	current Frame
}

// NewInspector builds an Inspector that pulls Frames from frames and signals
// readiness for the next one on next. trace, if non-nil, is updated from
// every frame the same way the driver itself would, so the on-screen history
// and the persisted trace never disagree.
func NewInspector(frames <-chan Frame, next chan<- struct{}, trace *tracebuf.Trace) *Inspector {
	insp := &Inspector{
		App:    tview.NewApplication(),
		Frames: frames,
		Next:   next,
		trace:  trace,
	}
	insp.initializeViews()
	insp.buildLayout()
	insp.setupKeyBindings()
	return insp
}

func (insp *Inspector) initializeViews() {
	insp.RegisterView = tview.NewTextView().SetDynamicColors(true).SetScrollable(false)
	insp.RegisterView.SetBorder(true).SetTitle(" GPR ")

	insp.CRView = tview.NewTextView().SetDynamicColors(true).SetScrollable(false)
	insp.CRView.SetBorder(true).SetTitle(" CR / CTR ")

	insp.BranchView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	insp.BranchView.SetBorder(true).SetTitle(" Pending forks ")

	insp.HistoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	insp.HistoryView.SetBorder(true).SetTitle(" History ")

	insp.StatusView = tview.NewTextView().SetDynamicColors(true).SetScrollable(false)
	insp.StatusView.SetBorder(true).SetTitle(" Step (n) / Quit (q) ")
}

func (insp *Inspector) buildLayout() {
	top := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(insp.RegisterView, 0, 2, false).
		AddItem(insp.CRView, 0, 1, false)

	main := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, 12, 0, false).
		AddItem(insp.BranchView, 0, 1, false).
		AddItem(insp.HistoryView, 0, 2, false).
		AddItem(insp.StatusView, 3, 0, false)

	insp.Pages = tview.NewPages().AddPage("main", main, true, true)
}

func (insp *Inspector) setupKeyBindings() {
	insp.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Rune() == 'n':
			insp.requestNext()
			return nil
		case event.Rune() == 'q' || event.Key() == tcell.KeyCtrlC:
			insp.App.Stop()
			return nil
		}
		return event
	})
}

func (insp *Inspector) requestNext() {
	select {
	case insp.Next <- struct{}{}:
	default:
	}
}

// Run starts the tview event loop and a goroutine that pulls Frames off the
// channel as they arrive, rendering each one. It blocks until the user
// quits; when the Frames channel closes, the status line reports that the
// walk is complete and the application keeps running.
func (insp *Inspector) Run() error {
	go func() {
		for frame := range insp.Frames {
			frame := frame
			insp.App.QueueUpdateDraw(func() {
				insp.renderFrame(frame)
			})
		}
		insp.App.QueueUpdateDraw(func() {
			insp.StatusView.SetText("[yellow]walk complete — press q to quit[white]")
		})
	}()
	return insp.App.SetRoot(insp.Pages, true).Run()
}

func (insp *Inspector) renderFrame(frame Frame) {
	insp.current = frame
	if insp.trace != nil {
		insp.trace.Record(frame.Address, frame.Result)
	}

	insp.updateRegisterView()
	insp.updateCRView()
	insp.updateBranchView()
	insp.updateHistoryView(frame)
}

func (insp *Inspector) updateRegisterView() {
	v := insp.current.VM
	var lines []string
	for row := 0; row < 8; row++ {
		var cols []string
		for col := 0; col < 4; col++ {
			reg := row*4 + col
			val := v.GPRValue(uint8(reg))
			cols = append(cols, fmt.Sprintf("r%-2d: %s", reg, formatValue(val)))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}
	insp.RegisterView.SetText(strings.Join(lines, "\n"))
}

func (insp *Inspector) updateCRView() {
	v := insp.current.VM
	var lines []string
	lines = append(lines, fmt.Sprintf("ctr: %s", formatValue(v.CTR)))
	for i, cr := range v.CR {
		if cr.Left.IsUnknown() && cr.Right.IsUnknown() {
			continue
		}
		sign := "u"
		if cr.Signed {
			sign = "s"
		}
		lines = append(lines, fmt.Sprintf("cr%d(%s): %s vs %s", i, sign, formatValue(cr.Left), formatValue(cr.Right)))
	}
	insp.CRView.SetText(strings.Join(lines, "\n"))
}

func (insp *Inspector) updateBranchView() {
	result := insp.current.Result
	if result.Kind != vm.BranchResult {
		insp.BranchView.SetText("[gray]no pending fork[white]")
		return
	}
	var lines []string
	for i, b := range result.Branches {
		target := "unknown"
		switch b.Target.Kind {
		case vm.TargetReturn:
			target = "return"
		case vm.TargetAddress:
			target = b.Target.Address.String()
		case vm.TargetJumpTable:
			target = fmt.Sprintf("jump table @ %s", b.Target.Address)
		}
		lines = append(lines, fmt.Sprintf("%d: link=%t -> %s", i, b.Link, target))
	}
	insp.BranchView.SetText(strings.Join(lines, "\n"))
}

func (insp *Inspector) updateHistoryView(frame Frame) {
	entry := fmt.Sprintf("%s  %-10s", frame.Address, frame.Ins.Op)
	insp.history = append(insp.history, entry)
	if len(insp.history) > 200 {
		insp.history = insp.history[len(insp.history)-200:]
	}
	insp.HistoryView.SetText(strings.Join(insp.history, "\n"))
	insp.HistoryView.ScrollToEnd()
}

func formatValue(value vm.GprValue) string {
	if c, ok := value.AsConstant(); ok {
		return fmt.Sprintf("const %#x", c)
	}
	if addr, ok := value.AsAddress(); ok {
		return fmt.Sprintf("addr %s", addr)
	}
	if min, max, step, ok := value.AsRange(); ok {
		return fmt.Sprintf("range [%d,%d] step %d", min, max, step)
	}
	if crf, ok := value.AsComparisonResult(); ok {
		return fmt.Sprintf("cmp(cr%d)", crf)
	}
	return "unknown"
}
