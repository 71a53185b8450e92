package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aion-hdl/aion/internal/arch"
	"github.com/aion-hdl/aion/internal/config"
	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/lint"
	"github.com/aion-hdl/aion/internal/netlistio"
	"github.com/aion-hdl/aion/internal/report"
	"github.com/aion-hdl/aion/internal/synth"
	"github.com/aion-hdl/aion/internal/timing"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] file1.v file2.vhd ...",
	Short: "Elaborate, synthesize, and time a design.",
	Long: "Elaborate the given source files, run technology mapping against a " +
		"target device, and report resource usage and static timing analysis.",
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("top", "", "top-level module name (required)")
	buildCmd.Flags().String("config", "", "project configuration file (YAML)")
	buildCmd.Flags().String("target", "", "named target within --config to build for")
	buildCmd.Flags().String("sdc", "", "timing constraints file (SDC)")
	buildCmd.Flags().String("vcd", "", "accepted but unused: build writes no waveform")
	buildCmd.Flags().String("report", "", "write a deterministic JSON build report to this path")
	_ = buildCmd.MarkFlagRequired("top")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, paths []string) error {
	top := GetString(cmd, "top")
	cfgPath := GetString(cmd, "config")
	targetName := GetString(cmd, "target")
	sdcPath := GetString(cmd, "sdc")
	reportPath := GetString(cmd, "report")

	var target config.Target
	if cfgPath != "" {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if targetName == "" {
			return fmt.Errorf("--target is required when --config is set")
		}
		t, ok := cfg.Target(targetName)
		if !ok {
			return fmt.Errorf("target %q not found in %s", targetName, cfgPath)
		}
		target = t
	}

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

	issues := lint.Run(design, in)
	lint.ReportTo(sink, issues)

	archName := target.Family
	if archName == "" {
		archName = "generic"
	}
	archImpl := arch.NewGeneric(archName, target.Device)

	topModule := design.TopModule()
	nl := synth.Lower(topModule, design.Types, in, sink)
	synth.Optimize(nl, synth.OptBalanced)
	synth.TechMap(nl, archImpl)
	mapped := nl.ToModule()
	design.Modules[design.Top] = mapped

	resources := synth.CountResources(design)

	renderDiagnostics(sink, db)
	if sink.HasErrors() {
		return fmt.Errorf("build failed with errors")
	}

	fmt.Printf("module %s: %d LUTs, %d FFs, %d BRAMs, %d DSPs, %d IOs, %d PLLs\n",
		in.Lookup(topModule.Name), resources.Luts, resources.Ffs, resources.Brams,
		resources.Dsps, resources.Ios, resources.Plls)

	mnl := netlistio.FromModule(mapped, in)
	pinsTouched := 0
	if pins := target.PinAssignments(); len(pins) > 0 {
		pinsTouched = netlistio.ApplyPinAssignments(mnl, pins)
		fmt.Printf("applied pin assignments to %d I/O cells\n", pinsTouched)
	}
	var pnr netlistio.PnR = netlistio.IdentityPnR{}
	if _, err := pnr.PlaceAndRoute(mnl, archName); err != nil {
		return err
	}

	tc, clockPorts, err := loadTimingConstraints(sdcPath, target)
	if err != nil {
		return err
	}
	graph := timing.BuildGraph(mapped, in, arch.GenericDelayModel{}, clockPorts)
	timingReport := timing.Analyze(graph, tc)

	fmt.Printf("timing: worst slack %.3f ns, target %.1f MHz, achieved %.1f MHz (met=%v)\n",
		timingReport.WorstSlackNs, timingReport.TargetMHz, timingReport.AchievedMHz, timingReport.Met)
	for i, cp := range timingReport.CriticalPaths {
		if i >= 5 {
			fmt.Printf("  ... %d more critical paths\n", len(timingReport.CriticalPaths)-5)
			break
		}
		fmt.Printf("  %s -> %s: delay %.3f ns, slack %.3f ns\n", cp.From, cp.To, cp.DelayNs, cp.SlackNs)
	}

	if reportPath != "" {
		if err := writeBuildReport(reportPath, in.Lookup(topModule.Name), resources, target, targetName, pinsTouched, timingReport); err != nil {
			return err
		}
	}

	return nil
}

func writeBuildReport(path string, topName string, resources synth.ResourceCounts, target config.Target, targetName string, pinsTouched int, tr *timing.Report) error {
	doc := report.Report{
		Schema: report.SchemaV1,
		Module: topName,
		Target: targetName,
		Device: target.Device,
		Resources: report.Resources{
			Luts: resources.Luts, Ffs: resources.Ffs, Brams: resources.Brams,
			Dsps: resources.Dsps, Ios: resources.Ios, Plls: resources.Plls,
		},
		PinsAssigned: pinsTouched,
		WorstSlackNs: tr.WorstSlackNs,
		TargetMHz:    tr.TargetMHz,
		AchievedMHz:  tr.AchievedMHz,
		TimingMet:    tr.Met,
	}
	for _, cp := range tr.CriticalPaths {
		doc.CriticalPaths = append(doc.CriticalPaths, report.CriticalPath{
			From: cp.From, To: cp.To, DelayNs: cp.DelayNs, SlackNs: cp.SlackNs,
		})
	}

	data, err := report.MarshalDeterministic(doc)
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write build report: %w", err)
	}
	return nil
}

func loadTimingConstraints(sdcPath string, target config.Target) (timing.TimingConstraints, map[string]bool, error) {
	paths := target.Constraints.Timing
	if sdcPath != "" {
		paths = append(paths, sdcPath)
	}
	if len(paths) == 0 {
		return timing.TimingConstraints{}, map[string]bool{}, nil
	}

	var tc timing.TimingConstraints
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return tc, nil, fmt.Errorf("open %s: %w", p, err)
		}
		parsed, err := timing.ParseSDC(f)
		f.Close()
		if err != nil {
			return tc, nil, fmt.Errorf("parse %s: %w", p, err)
		}
		tc.Clocks = append(tc.Clocks, parsed.Clocks...)
		tc.InputDelays = append(tc.InputDelays, parsed.InputDelays...)
		tc.OutputDelays = append(tc.OutputDelays, parsed.OutputDelays...)
		tc.FalsePaths = append(tc.FalsePaths, parsed.FalsePaths...)
		tc.MulticyclePaths = append(tc.MulticyclePaths, parsed.MulticyclePaths...)
		tc.MaxDelayPaths = append(tc.MaxDelayPaths, parsed.MaxDelayPaths...)
	}
	return tc, tc.ClockPorts(), nil
}
