// Package main provides the entry point for the persona_agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "persona_agent",
	Short: "Build a ranked career persona from coaching answers",
	Long: `persona_agent collects answers to career-coaching questions, extracts persona
attributes (education, experience, skills, strengths, goals, values) from each
answer with a language model, merges them into one persona, and reorders each
category by semantic similarity to a target such as a desired job title.`,
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
