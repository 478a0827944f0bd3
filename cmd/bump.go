package cmd

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/releasekit/releasekit/domain"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var forceBump bool

//nolint:gochecknoglobals // required by cobra CLI pattern
var bumpCmd = &cobra.Command{
	Use:   "bump",
	Short: "Apply a minor version bump where the changelog calls for one",
	Long: `Classify each package from its changelog diff and, for packages
whose pending release is a minor bump, rewrite the manifest version field
and the latest changelog heading to the next minor version.

With --force the classification step is skipped and every package is
bumped.`,
	RunE: runBump,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	bumpCmd.Flags().BoolVar(&forceBump, "force", false,
		"Bump every package regardless of its changelog diff")
	rootCmd.AddCommand(bumpCmd)
}

func runBump(_ *cobra.Command, _ []string) error {
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
		if !forceBump {
			kind, classifyErr := svc.ClassifyPackage(ctx, cfg, pkg)
			if classifyErr != nil {
				return fmt.Errorf("failed to classify %q: %w", pkg.Dir, classifyErr)
			}
			if kind != domain.BumpMinor {
				logger.Infof("[bump] %s: patch release, nothing to do", pkg.Dir)
				continue
			}
		}

		_, bumped, bumpErr := svc.BumpPackage(cfg, pkg, dryRun)
		if bumpErr != nil {
			return fmt.Errorf("failed to bump %q: %w", pkg.Dir, bumpErr)
		}
		if bumped {
			total++
		}
	}

	logger.Infof("Bump complete: %d package(s) bumped", total)
	return nil
}
