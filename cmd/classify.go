package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify the pending release of each package",
	Long: `Diff each package's changelog against HEAD and report whether the
pending release is a minor bump (a "### Features" section was added) or
a patch bump (anything else).`,
	RunE: runClassify,
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(command *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, err := injectService()
	if err != nil {
		return fmt.Errorf("failed to wire services: %w", err)
	}

	for _, pkg := range cfg.DomainPackages() {
		kind, classifyErr := svc.ClassifyPackage(ctx, cfg, pkg)
		if classifyErr != nil {
			return fmt.Errorf("failed to classify %q: %w", pkg.Dir, classifyErr)
		}
		command.Printf("%s: %s\n", pkg.Dir, kind)
	}

	return nil
}
