package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
	"github.com/aion-hdl/aion/internal/sim"
)

func newStepSession(t *testing.T, src string, top string) (*stepSession, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	path := writeTestSource(t, dir, "design.v", src)

	in := ident.New()
	db := ident.NewSourceDb()
	sink := diag.NewSink()

	design, err := loadDesign([]string{path}, top, in, db, sink)
	if err != nil {
		t.Fatalf("loadDesign: %v", err)
	}
	if !design.HasTop {
		t.Fatalf("top module %q not found", top)
	}

	kernel, err := sim.NewKernel(design, in)
	if err != nil {
		t.Fatalf("NewKernel: %v", err)
	}
	t.Cleanup(kernel.Close)

	var buf bytes.Buffer
	return &stepSession{kernel: kernel, out: &buf}, &buf
}

func TestStepSessionShowsSignal(t *testing.T) {
	s, buf := newStepSession(t, testAndGate, "and2")

	if cont := s.dispatch(":show and2.a"); !cont {
		t.Fatalf("dispatch(:show) should keep the session open")
	}
	if !strings.Contains(buf.String(), "and2.a = ") {
		t.Fatalf("expected :show output to print the signal value, got %q", buf.String())
	}
}

func TestStepSessionUnknownSignal(t *testing.T) {
	s, buf := newStepSession(t, testAndGate, "and2")

	s.dispatch(":show nope")
	if !strings.Contains(buf.String(), "no such signal") {
		t.Fatalf("expected an error for an unknown signal, got %q", buf.String())
	}
}

func TestStepSessionQuitStopsTheLoop(t *testing.T) {
	s, _ := newStepSession(t, testAndGate, "and2")
	if cont := s.dispatch(":quit"); cont {
		t.Fatalf(":quit should stop the session")
	}
}

func TestStepSessionRunReachesCompletion(t *testing.T) {
	s, buf := newStepSession(t, testAndGate, "and2")
	s.dispatch(":run 1000")
	if !strings.Contains(buf.String(), "simulation finished") {
		t.Fatalf("expected a completion message, got %q", buf.String())
	}
}
