// Package main is the entry point for the statusgram CLI.
//
// Statusgram can be run either as a library (SDK) or as a standalone
// binary with YAML configuration. This CLI provides the standalone
// binary approach.
//
// Usage:
//
//	statusgram run -c config.yaml      # Start the bot
//	statusgram validate -c config.yaml # Validate configuration
//	statusgram version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "statusgram",
	Short: "Uptime Kuma status boards for chat channels",
	Long: `Statusgram keeps chat-channel status messages synchronized with an
Uptime-Kuma-style monitoring backend.

Each configured surface gets a single message that is edited in place
on every refresh cycle, so the channel shows one always-current status
board instead of a scrolling feed.

Quick start:
  1. Create a config file (statusgram.yaml)
  2. Export TELEGRAM_TOKEN (and KUMA_API_KEY for private pages)
  3. Run: statusgram run -c statusgram.yaml

Example config:
  backend:
    url: https://uptime.example.net
    status_page: default
  telegram_token: ${TELEGRAM_TOKEN}
  surfaces:
    - name: team
      chat_id: "-1001234567890"
      groups: [Team]`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this statusgram binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("statusgram %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
