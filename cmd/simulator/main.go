// Package main is the entry point for the combat simulator
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "simulator",
	Short: "Deterministic tactical combat simulator",
	Long:  `Runs scripted combat scenarios through the resolution engine. The same seed and scenario always produce the same event log.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
