package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/sim"
	"github.com/aion-hdl/aion/internal/waveform"
)

var (
	stepGreen = color.New(color.FgGreen).SprintFunc()
	stepRed   = color.New(color.FgRed).SprintFunc()
	stepCyan  = color.New(color.FgCyan).SprintFunc()
	stepBold  = color.New(color.Bold).SprintFunc()
	stepFaint = color.New(color.Faint).SprintFunc()
)

var stepCmd = &cobra.Command{
	Use:   "step [flags] file1.v file2.vhd ...",
	Short: "Elaborate a design and step its simulation interactively.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStep,
}

func init() {
	stepCmd.Flags().String("top", "", "top-level module name (required)")
	stepCmd.Flags().String("vcd", "", "write a VCD waveform while stepping")
	_ = stepCmd.MarkFlagRequired("top")
	rootCmd.AddCommand(stepCmd)
}

func runStep(cmd *cobra.Command, paths []string) error {
	top := GetString(cmd, "top")
	vcdPath := GetString(cmd, "vcd")

	in := ident.New()
	db := ident.NewSourceDb()
	sink := diag.NewSink()

	design, err := loadDesign(paths, top, in, db, sink)
	if err != nil {
		return err
	}
	if !design.HasTop {
		renderDiagnostics(sink, db)
		return fmt.Errorf("top module %q not found", top)
	}
	renderDiagnostics(sink, db)
	if sink.HasErrors() {
		return fmt.Errorf("elaboration failed with errors")
	}

	kernel, err := sim.NewKernel(design, in)
	if err != nil {
		return err
	}
	defer kernel.Close()

	if vcdPath != "" {
		rec, err := waveform.NewVcdFile(vcdPath)
		if err != nil {
			return err
		}
		kernel.SetRecorder(rec)
		defer rec.Finalize()
	}

	session := &stepSession{kernel: kernel, out: cmd.OutOrStdout()}
	session.run()
	return nil
}

// stepSession holds the interactive state for one `aion step` invocation.
type stepSession struct {
	kernel *sim.Kernel
	out    io.Writer
}

func (s *stepSession) run() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	historyFile := filepath.Join(os.TempDir(), ".aion_step_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}

	line.SetCompleter(func(input string) (c []string) {
		for _, name := range []string{":step", ":run", ":show", ":quit", ":help"} {
			if strings.HasPrefix(name, input) {
				c = append(c, name)
			}
		}
		return
	})

	fmt.Fprintf(s.out, "%s %s\n", stepBold("aion step"), stepFaint("interactive simulation"))
	fmt.Fprintln(s.out, stepFaint("Type :help for commands, :quit to exit"))

	for {
		input, err := line.Prompt(fmt.Sprintf("t=%dfs> ", s.kernel.Now().Fs))
		if err == io.EOF {
			fmt.Fprintln(s.out, stepGreen("goodbye"))
			break
		}
		if err != nil {
			fmt.Fprintf(s.out, "%s: %v\n", stepRed("error"), err)
			continue
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if !s.dispatch(input) {
			break
		}
	}

	if f, err := os.Create(historyFile); err == nil {
		_, _ = line.WriteHistory(f)
		f.Close()
	}
}

// dispatch runs one command and reports whether the session should continue.
func (s *stepSession) dispatch(input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case ":quit", ":q", ":exit":
		fmt.Fprintln(s.out, stepGreen("goodbye"))
		return false

	case ":help", ":h":
		fmt.Fprintln(s.out, ":step            advance one event cohort")
		fmt.Fprintln(s.out, ":run <fs>        run until the given time, in femtoseconds")
		fmt.Fprintln(s.out, ":show <signal>   print a signal's current value (dotted, e.g. top.clk)")
		fmt.Fprintln(s.out, ":quit            exit")

	case ":step":
		result := s.kernel.Step()
		s.reportStatus(result)

	case ":run":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, stepRed("usage: :run <femtoseconds>"))
			return true
		}
		fs, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			fmt.Fprintf(s.out, "%s: %v\n", stepRed("error"), err)
			return true
		}
		result := s.kernel.Run(fs)
		s.reportStatus(result)

	case ":show":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, stepRed("usage: :show <dotted.signal.name>"))
			return true
		}
		id, ok := s.kernel.FindSignal(fields[1])
		if !ok {
			fmt.Fprintf(s.out, "%s: no such signal %q\n", stepRed("error"), fields[1])
			return true
		}
		fmt.Fprintf(s.out, "%s = %s\n", stepCyan(fields[1]), s.kernel.SignalValue(id).String())

	default:
		fmt.Fprintf(s.out, "%s: unknown command %q (:help for a list)\n", stepRed("error"), fields[0])
	}
	return true
}

func (s *stepSession) reportStatus(result sim.StepResult) {
	if result == sim.Done {
		r := s.kernel.Result()
		fmt.Fprintf(s.out, "%s at t=%dfs (%d assertion failures)\n", stepGreen("simulation finished"), r.FinalTime.Fs, len(r.AssertionFailures))
		for _, f := range r.AssertionFailures {
			fmt.Fprintf(s.out, "  %s %s\n", stepRed("assert failed:"), f)
		}
	}
}
