package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is set by ldflags at release build time.
var Version string

var rootCmd = &cobra.Command{
	Use:   "aion",
	Short: "An FPGA elaboration, synthesis, and simulation toolchain.",
	Long:  "aion elaborates Verilog/SystemVerilog/VHDL sources into a unified IR, synthesizes, analyzes timing, and simulates.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("aion ")
			switch {
			case Version != "":
				fmt.Print(Version)
			default:
				if info, ok := debug.ReadBuildInfo(); ok {
					fmt.Print(info.Main.Version)
				} else {
					fmt.Print("(unknown version)")
				}
			}
			fmt.Println()
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.Flags().Bool("version", false, "print version information")
}

// GetFlag reads a bool flag, exiting the process on a registration error.
func GetFlag(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return v
}

// Execute runs the root command, exiting with status 1 on any error per
// spec.md §6's exit code rule.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
