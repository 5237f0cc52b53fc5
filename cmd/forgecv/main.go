// Package main provides the entry point for the ForgeCV resume tailoring service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "forgecv",
	Short: "AI resume tailoring service",
	Long:  "ForgeCV tailors structured resumes to job descriptions with an LLM backend, surviving truncated and malformed model output via extraction, repair, and reconciliation.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
