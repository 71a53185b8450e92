package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aion-hdl/aion/internal/diag"
	"github.com/aion-hdl/aion/internal/ident"
)

// GetString reads a string flag, exiting the process if cobra reports an
// error (a programmer error — the flag was never registered).
func GetString(cmd *cobra.Command, flag string) string {
	v, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return v
}

// GetUint64 reads a uint64 flag, exiting the process on a registration error.
func GetUint64(cmd *cobra.Command, flag string) uint64 {
	v, err := cmd.Flags().GetUint64(flag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return v
}

// renderDiagnostics prints every diagnostic on sink to stderr in sorted
// order, using the terminal renderer so spans resolve against db.
func renderDiagnostics(sink *diag.Sink, db *ident.SourceDb) {
	diags := sink.Sorted()
	if len(diags) == 0 {
		return
	}
	r := diag.NewTerminalRenderer(db)
	fmt.Fprint(os.Stderr, r.RenderAll(diags))
}
