// Command ppcvm drives the abstract-interpretation VM over a decoded
// PowerPC instruction stream, printing a trace of every step or, with
// -tui, opening the read-only trace inspector.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/broadway-toolkit/ppc750vm/config"
	"github.com/broadway-toolkit/ppc750vm/debugger"
	"github.com/broadway-toolkit/ppc750vm/obj"
	"github.com/broadway-toolkit/ppc750vm/ppc"
	"github.com/broadway-toolkit/ppc750vm/tracebuf"
	"github.com/broadway-toolkit/ppc750vm/vm"
)

var (
	// Version is overridden at build time with -ldflags "-X main.Version=...".
	Version = "dev"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		tuiMode     = flag.Bool("tui", false, "Open the trace inspector instead of printing a trace")
		configPath  = flag.String("config", "", "Config file path (default: platform config dir)")
		traceFormat = flag.String("trace-format", "", "Override the configured trace format (text, json)")
		traceFile   = flag.String("trace-file", "", "Override the configured trace output file")
		maxSteps    = flag.Uint64("max-steps", 0, "Override the configured step budget (0 keeps the config value)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("ppcvm %s\n", Version)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ppcvm [flags] <program.json>")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *traceFormat != "" {
		cfg.Trace.Format = *traceFormat
	}
	if *traceFile != "" {
		cfg.Trace.OutputFile = *traceFile
	}
	if *maxSteps != 0 {
		cfg.Analysis.MaxSteps = *maxSteps
	}

	info, words, entry, err := loadProgram(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading program: %v\n", err)
		os.Exit(1)
	}

	sdaBase, sda2Base := info.SDABase, info.SDA2Base
	if !cfg.Analysis.SeedSDA {
		sdaBase, sda2Base = nil, nil
	}
	if cfg.Analysis.SDABase != 0 {
		sdaBase = &cfg.Analysis.SDABase
	}
	if cfg.Analysis.SDA2Base != 0 {
		sda2Base = &cfg.Analysis.SDA2Base
	}
	entryVM := vm.Seeded(sdaBase, sda2Base)

	w := newWalker(info, words, entry, cfg.Analysis.MaxSteps)

	if *tuiMode {
		runTUI(w, entry, entryVM, cfg)
		return
	}

	runTrace(w, entry, entryVM, cfg)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

func runTrace(w *walker, entry obj.SectionAddress, entryVM *vm.VM, cfg *config.Config) {
	out := os.Stdout
	if cfg.Trace.OutputFile != "" && cfg.Trace.OutputFile != "-" {
		f, err := os.Create(cfg.Trace.OutputFile) // #nosec G304 -- config-supplied trace path
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening trace file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	trace := tracebuf.New(out, cfg.Trace.MaxEntries)
	w.Run(entry, entryVM, func(addr obj.SectionAddress, _ ppc.Ins, _ *vm.VM, result vm.StepResult) {
		trace.Record(addr, result)
	})

	var err error
	if cfg.Trace.Format == "json" {
		err = trace.WriteJSON()
	} else {
		err = trace.WriteText()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "writing trace: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(w *walker, entry obj.SectionAddress, entryVM *vm.VM, cfg *config.Config) {
	frames := make(chan debugger.Frame)
	next := make(chan struct{})

	var traceOut *os.File
	var trace *tracebuf.Trace
	if cfg.Trace.OutputFile != "" && cfg.Trace.OutputFile != "-" {
		f, err := os.Create(cfg.Trace.OutputFile) // #nosec G304 -- config-supplied trace path
		if err == nil {
			traceOut = f
			trace = tracebuf.New(f, cfg.Trace.MaxEntries)
		}
	}
	if traceOut != nil {
		defer traceOut.Close()
	}

	insp := debugger.NewInspector(frames, next, trace)

	go func() {
		defer close(frames)
		<-next
		w.Run(entry, entryVM, func(addr obj.SectionAddress, ins ppc.Ins, after *vm.VM, result vm.StepResult) {
			frames <- debugger.Frame{Address: addr, Ins: ins, VM: after, Result: result}
			<-next
		})
	}()

	if err := insp.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "inspector error: %v\n", err)
		os.Exit(1)
	}

	if trace != nil {
		var err error
		if cfg.Trace.Format == "json" {
			err = trace.WriteJSON()
		} else {
			err = trace.WriteText()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "writing trace: %v\n", err)
			os.Exit(1)
		}
	}
}
