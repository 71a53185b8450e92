package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/sim"
	"github.com/aion-hdl/aion/internal/waveform"
)

var simCmd = &cobra.Command{
	Use:   "sim [flags] file1.v file2.vhd ...",
	Short: "Elaborate a design and run its event-driven simulation.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSim,
}

func init() {
	simCmd.Flags().String("top", "", "top-level module name (required)")
	simCmd.Flags().String("vcd", "", "write a VCD waveform to this path")
	simCmd.Flags().Uint64("until", 0, "stop after this many femtoseconds (0 = run to completion)")
	_ = simCmd.MarkFlagRequired("top")
	rootCmd.AddCommand(simCmd)
}

func runSim(cmd *cobra.Command, paths []string) error {
	top := GetString(cmd, "top")
	vcdPath := GetString(cmd, "vcd")
	untilFs := GetUint64(cmd, "until")

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

	var result sim.StepResult
	if untilFs > 0 {
		result = kernel.Run(untilFs)
	} else {
		result = kernel.RunToCompletion()
	}

	r := kernel.Result()
	for _, line := range r.DisplayOutput {
		fmt.Println(line)
	}
	for _, failure := range r.AssertionFailures {
		fmt.Fprintf(cmd.ErrOrStderr(), "assertion failed: %s\n", failure)
	}

	status := "ran to completion"
	if result == sim.Continued {
		status = "stopped at time limit"
	}
	fmt.Printf("simulation %s at %d fs (%d assertion failures)\n", status, r.FinalTime.Fs, len(r.AssertionFailures))

	if len(r.AssertionFailures) > 0 {
		return fmt.Errorf("simulation reported %d assertion failure(s)", len(r.AssertionFailures))
	}
	return nil
}
