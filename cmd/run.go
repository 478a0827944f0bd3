package cmd

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/releasekit/releasekit/application"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full release-preparation pipeline",
	Long: `Run reconcile, peers, classify, and bump in sequence for every
configured package.

This is the main command intended to be used after an external
version-bump tool has rewritten the working tree. It reads the
configuration file and processes each package in order.`,
	RunE: runPipeline,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := injectService()
	if err != nil {
		return fmt.Errorf("failed to wire services: %w", err)
	}

	logger.Info("Starting releasekit run...")

	return svc.Run(ctx, cfg, application.RunOptions{
		DryRun:  dryRun,
		Verbose: verbose,
	})
}
