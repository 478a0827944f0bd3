package cmd

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/releasekit/releasekit/config"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	// Global flags
	configPath string
	dryRun     bool
	verbose    bool
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "releasekit",
	Short: "Release preparation toolkit for npm-style package repositories",
	Long: `A CLI tool that prepares packages in a monorepo for release after
an external version-bump tool has rewritten their manifests.

It reconciles dependency ranges against the committed baseline (keeping
locally pinned builds that are newer than what the bump tool proposed),
retargets peer-dependency ranges at the reconciled versions, classifies
the pending release from the changelog diff, and applies a minor version
bump when new features landed.`,
}

func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to config file (default: auto-detect)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false,
		"Show what would be done without making changes")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")
}

// loadConfig resolves and loads the configuration file, honoring the
// --config flag.
func loadConfig() (*config.Config, error) {
	cfgPath := configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.FindConfigFile()
		if err != nil {
			return nil, fmt.Errorf(
				"no config file found: %w\nSpecify one with --config or create releasekit.yaml",
				err,
			)
		}
	}

	logger.Infof("Using config file: %s", cfgPath)

	return config.Load(cfgPath)
}
