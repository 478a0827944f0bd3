package cmd

import (
	"context"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/releasekit/releasekit/application"
	"github.com/releasekit/releasekit/infrastructure/gitsource"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var baselineFile string

//nolint:gochecknoglobals // required by cobra CLI pattern
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile dependency ranges against the committed baseline",
	Long: `Compare each package's working-tree manifest against the version
committed at HEAD and restore any dependency range that is newer in the
baseline, such as a locally pinned dev build an external bump tool
overwrote with an older published release.`,
	RunE: runReconcile,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	reconcileCmd.Flags().StringVar(&baselineFile, "baseline", "",
		"Reconcile against this manifest snapshot instead of the committed HEAD")
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := buildReconcileService()
	if err != nil {
		return fmt.Errorf("failed to wire services: %w", err)
	}

	total := 0
	for _, pkg := range cfg.DomainPackages() {
		_, restored, reconcileErr := svc.ReconcilePackage(ctx, cfg, pkg, dryRun)
		if reconcileErr != nil {
			return fmt.Errorf("failed to reconcile %q: %w", pkg.Dir, reconcileErr)
		}
		total += restored
	}

	logger.Infof("Reconcile complete: %d range(s) restored", total)
	return nil
}

// buildReconcileService wires the service, substituting an explicit
// baseline snapshot for the repository HEAD when --baseline is set.
func buildReconcileService() (*application.ReleaseService, error) {
	if baselineFile == "" {
		return injectService()
	}

	data, err := os.ReadFile(baselineFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline file %q: %w", baselineFile, err)
	}

	return application.NewReleaseService(gitsource.NewStatic(string(data))), nil
}
