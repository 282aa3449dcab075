package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/noopnet/statusgram/config"
)

// validateCmd validates a config file without starting the bot.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a statusgram configuration file without starting the bot.

This command parses the YAML, expands environment variables, and
validates all fields. It's useful for CI/CD pipelines or
pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  statusgram validate -c statusgram.yaml
  statusgram validate --config /etc/statusgram/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// building surfaces exercises the option validation too
	surfaces, err := config.BuildSurfaces(cfg)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Backend:          %s (status page %q)\n", cfg.Backend.URL, cfg.Backend.StatusPage)
	fmt.Printf("  Refresh interval: %s\n", cfg.RefreshInterval.Duration())
	fmt.Printf("  Health port:      %d\n", *cfg.HealthPort)
	fmt.Printf("  Surfaces:         %d\n", len(surfaces))
	for _, s := range surfaces {
		filter := "all groups"
		if groups := s.Groups(); len(groups) > 0 {
			filter = strings.Join(groups, ", ")
		}
		fmt.Printf("    - %s → chat %s (%s)\n", s.Name(), s.Destination(), filter)
	}

	return nil
}
