// Package main provides the CLI entry point for interviewd, the AI-driven
// live technical interview orchestrator.
//
// # Basic Usage
//
// Start the server:
//
//	interviewd serve --config interviewd.yaml
//
// Validate configuration without starting anything:
//
//	interviewd config check --config interviewd.yaml
//
// # Environment Variables
//
// Configuration is layered YAML plus environment variable overrides:
//
//   - DATABASE_URL: persistence DSN
//   - OPENAI_API_KEY, GOOGLE_API_KEY: LLM provider credentials
//   - DEEPGRAM_API_KEY: speech-to-text/text-to-speech credentials
//   - SQS_QUEUE_URL, AWS_REGION: completion notification queue
//   - CORS_ORIGINS: comma-separated allowed origins
//   - DEBOUNCE_QUIET_SECONDS: artifact debounce window
//   - JWT_SECRET: bearer token signing secret
//   - ENVIRONMENT: deployment tag, logged at startup
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "interviewd",
		Short:        "interviewd - AI-driven live technical interview orchestrator",
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	rootCmd.AddCommand(buildServeCmd(), buildConfigCmd())
	return rootCmd
}
