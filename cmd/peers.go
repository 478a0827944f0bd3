package cmd

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Retarget peer-dependency ranges at the reconciled versions",
	Long: `Rewrite each package's peer-dependency ranges so their floors
point at the reconciled version of that dependency. Bounded ranges keep
their upper-bound clause byte-for-byte, caret ranges move to the new
version, and any other format passes through unchanged.`,
	RunE: runPeers,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(peersCmd)
}

func runPeers(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := injectService()
	if err != nil {
		return fmt.Errorf("failed to wire services: %w", err)
	}

	total := 0
	for _, pkg := range cfg.DomainPackages() {
		// Resolve without writing so the peer rewrite sees the same
		// versions a full run would.
		resolved, _, reconcileErr := svc.ReconcilePackage(ctx, cfg, pkg, true)
		if reconcileErr != nil {
			return fmt.Errorf("failed to resolve versions for %q: %w", pkg.Dir, reconcileErr)
		}

		rewrites, peersErr := svc.RewritePeerRanges(cfg, pkg, resolved, dryRun)
		if peersErr != nil {
			return fmt.Errorf("failed to rewrite peers for %q: %w", pkg.Dir, peersErr)
		}
		total += len(rewrites)
	}

	logger.Infof("Peers complete: %d range(s) rewritten", total)
	return nil
}
