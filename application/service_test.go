package application_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/releasekit/releasekit/application"
	"github.com/releasekit/releasekit/config"
	"github.com/releasekit/releasekit/domain"
	testdoubles "github.com/releasekit/releasekit/test"
)

// --- helpers ---

const workingManifest = `{
  "name": "@azure-tools/typespec-emitter",
  "version": "1.4.7",
  "dependencies": {
    "@typespec/compiler": "0.1.0-alpha.31",
    "left-pad": "1.0.0"
  },
  "peerDependencies": {
    "@typespec/compiler": ">=0.1.0-alpha.30 <1.0.0"
  }
}
`

const baselineManifest = `{
  "name": "@azure-tools/typespec-emitter",
  "version": "1.4.7",
  "dependencies": {
    "@typespec/compiler": "0.1.0-alpha.32-dev.1",
    "left-pad": "0.9.0"
  },
  "peerDependencies": {
    "@typespec/compiler": ">=0.1.0-alpha.30 <1.0.0"
  }
}
`

const workingChangelog = "# Changelog\n\n## 1.4.7 (2024-01-01)\n\n### Features\n\n- added streaming\n"

// buildWorkspace writes a package directory under a temp repo root and
// returns the root plus a matching configuration.
func buildWorkspace(t *testing.T) (string, *config.Config) {
	t.Helper()

	root := t.TempDir()
	pkgDir := filepath.Join(root, "packages", "emitter")
	require.NoError(t, os.MkdirAll(pkgDir, 0o750))
	require.NoError(t, os.WriteFile(
		filepath.Join(pkgDir, "package.json"), []byte(workingManifest), 0o600))
	require.NoError(t, os.WriteFile(
		filepath.Join(pkgDir, "CHANGELOG.md"), []byte(workingChangelog), 0o600))

	cfg := &config.Config{
		RepoDir:  root,
		Packages: []config.PackageConfig{{Dir: "packages/emitter"}},
	}
	return root, cfg
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// --- tests ---

func TestReleaseService_ReconcilePackage(t *testing.T) {
	t.Parallel()

	t.Run("should restore baseline ranges that are newer than the working tree", func(t *testing.T) {
		t.Parallel()

		// given
		root, cfg := buildWorkspace(t)
		spy := &testdoubles.SpyGitSource{
			HeadContents: map[string]string{
				"packages/emitter/package.json": baselineManifest,
			},
		}
		svc := application.NewReleaseService(spy)
		pkg := cfg.DomainPackages()[0]

		// when
		resolved, restored, err := svc.ReconcilePackage(context.Background(), cfg, pkg, false)

		// then: the dev pin comes back, the older left-pad does not
		require.NoError(t, err)
		assert.Equal(t, 1, restored)
		assert.Equal(t, "0.1.0-alpha.32-dev.1", resolved["@typespec/compiler"])
		assert.Equal(t, "1.0.0", resolved["left-pad"])

		content := readFile(t, filepath.Join(root, "packages/emitter/package.json"))
		assert.Contains(t, content, `"@typespec/compiler": "0.1.0-alpha.32-dev.1"`)
		assert.Contains(t, content, `"left-pad": "1.0.0"`)
		assert.Equal(t, []string{"packages/emitter/package.json"}, spy.HeadRequests)
	})

	t.Run("should keep the working tree when there is no committed baseline", func(t *testing.T) {
		t.Parallel()

		// given
		root, cfg := buildWorkspace(t)
		svc := application.NewReleaseService(&testdoubles.SpyGitSource{})
		pkg := cfg.DomainPackages()[0]

		// when
		resolved, restored, err := svc.ReconcilePackage(context.Background(), cfg, pkg, false)

		// then
		require.NoError(t, err)
		assert.Zero(t, restored)
		assert.Equal(t, "0.1.0-alpha.31", resolved["@typespec/compiler"])
		assert.Equal(t, workingManifest, readFile(t, filepath.Join(root, "packages/emitter/package.json")))
	})

	t.Run("should not touch names outside the configured filters", func(t *testing.T) {
		t.Parallel()

		// given: only @typespec/ names are eligible
		_, cfg := buildWorkspace(t)
		cfg.Reconcile.Filters = []string{"@typespec/"}

		baseline := `{"dependencies": {"left-pad": "9.0.0", "@typespec/compiler": "0.1.0-alpha.32-dev.1"}}`
		spy := &testdoubles.SpyGitSource{
			HeadContents: map[string]string{"packages/emitter/package.json": baseline},
		}
		svc := application.NewReleaseService(spy)
		pkg := cfg.DomainPackages()[0]

		// when
		resolved, _, err := svc.ReconcilePackage(context.Background(), cfg, pkg, false)

		// then: left-pad 9.0.0 is newer but filtered out
		require.NoError(t, err)
		assert.Equal(t, "1.0.0", resolved["left-pad"])
		assert.Equal(t, "0.1.0-alpha.32-dev.1", resolved["@typespec/compiler"])
	})

	t.Run("should always restore protected names", func(t *testing.T) {
		t.Parallel()

		// given: the baseline pin is older, but the name is protected
		_, cfg := buildWorkspace(t)
		cfg.Reconcile.Protected = []string{"left-pad"}

		baseline := `{"dependencies": {"left-pad": "0.9.0"}}`
		spy := &testdoubles.SpyGitSource{
			HeadContents: map[string]string{"packages/emitter/package.json": baseline},
		}
		svc := application.NewReleaseService(spy)
		pkg := cfg.DomainPackages()[0]

		// when
		resolved, restored, err := svc.ReconcilePackage(context.Background(), cfg, pkg, false)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, restored)
		assert.Equal(t, "0.9.0", resolved["left-pad"])
	})

	t.Run("should not write files in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		root, cfg := buildWorkspace(t)
		spy := &testdoubles.SpyGitSource{
			HeadContents: map[string]string{
				"packages/emitter/package.json": baselineManifest,
			},
		}
		svc := application.NewReleaseService(spy)
		pkg := cfg.DomainPackages()[0]

		// when
		_, restored, err := svc.ReconcilePackage(context.Background(), cfg, pkg, true)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, restored)
		assert.Equal(t, workingManifest, readFile(t, filepath.Join(root, "packages/emitter/package.json")))
	})

	t.Run("should fail when the working manifest is missing", func(t *testing.T) {
		t.Parallel()

		// given
		cfg := &config.Config{
			RepoDir:  t.TempDir(),
			Packages: []config.PackageConfig{{Dir: "nope"}},
		}
		svc := application.NewReleaseService(&testdoubles.SpyGitSource{})

		// when
		_, _, err := svc.ReconcilePackage(context.Background(), cfg, cfg.DomainPackages()[0], false)

		// then
		assert.Error(t, err)
	})
}

func TestReleaseService_RewritePeerRanges(t *testing.T) {
	t.Parallel()

	t.Run("should retarget peer ranges at the resolved versions", func(t *testing.T) {
		t.Parallel()

		// given
		root, cfg := buildWorkspace(t)
		svc := application.NewReleaseService(&testdoubles.SpyGitSource{})
		pkg := cfg.DomainPackages()[0]
		resolved := domain.DependencySet{"@typespec/compiler": "0.1.0-alpha.32-dev.1"}

		// when
		rewrites, err := svc.RewritePeerRanges(cfg, pkg, resolved, false)

		// then: the floor moves, the upper bound survives
		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"@typespec/compiler": ">=0.1.0-alpha.32-dev.1 <1.0.0",
		}, rewrites)
		content := readFile(t, filepath.Join(root, "packages/emitter/package.json"))
		assert.Contains(t, content, `">=0.1.0-alpha.32-dev.1 <1.0.0"`)
	})

	t.Run("should leave peers without a resolved version alone", func(t *testing.T) {
		t.Parallel()

		// given
		root, cfg := buildWorkspace(t)
		svc := application.NewReleaseService(&testdoubles.SpyGitSource{})
		pkg := cfg.DomainPackages()[0]

		// when: nothing resolved
		rewrites, err := svc.RewritePeerRanges(cfg, pkg, domain.DependencySet{}, false)

		// then
		require.NoError(t, err)
		assert.Empty(t, rewrites)
		assert.Equal(t, workingManifest, readFile(t, filepath.Join(root, "packages/emitter/package.json")))
	})

	t.Run("should not write files in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		root, cfg := buildWorkspace(t)
		svc := application.NewReleaseService(&testdoubles.SpyGitSource{})
		pkg := cfg.DomainPackages()[0]
		resolved := domain.DependencySet{"@typespec/compiler": "0.1.0-alpha.32"}

		// when
		rewrites, err := svc.RewritePeerRanges(cfg, pkg, resolved, true)

		// then
		require.NoError(t, err)
		assert.Len(t, rewrites, 1)
		assert.Equal(t, workingManifest, readFile(t, filepath.Join(root, "packages/emitter/package.json")))
	})
}

func TestReleaseService_ClassifyPackage(t *testing.T) {
	t.Parallel()

	t.Run("should classify from the changelog diff", func(t *testing.T) {
		t.Parallel()

		// given
		_, cfg := buildWorkspace(t)
		spy := &testdoubles.SpyGitSource{
			Diffs: map[string][]string{
				"packages/emitter/CHANGELOG.md": {"+### Features", "+- added streaming"},
			},
		}
		svc := application.NewReleaseService(spy)
		pkg := cfg.DomainPackages()[0]

		// when
		kind, err := svc.ClassifyPackage(context.Background(), cfg, pkg)

		// then
		require.NoError(t, err)
		assert.Equal(t, domain.BumpMinor, kind)
		assert.Equal(t, []string{"packages/emitter/CHANGELOG.md"}, spy.DiffRequests)
	})

	t.Run("should propagate diff errors", func(t *testing.T) {
		t.Parallel()

		// given
		_, cfg := buildWorkspace(t)
		spy := &testdoubles.SpyGitSource{DiffErr: errors.New("not a repository")}
		svc := application.NewReleaseService(spy)

		// when
		_, err := svc.ClassifyPackage(context.Background(), cfg, cfg.DomainPackages()[0])

		// then
		assert.Error(t, err)
	})
}

func TestReleaseService_BumpPackage(t *testing.T) {
	t.Parallel()

	t.Run("should bump the manifest version and the changelog heading", func(t *testing.T) {
		t.Parallel()

		// given
		root, cfg := buildWorkspace(t)
		svc := application.NewReleaseService(&testdoubles.SpyGitSource{})
		pkg := cfg.DomainPackages()[0]

		// when
		version, bumped, err := svc.BumpPackage(cfg, pkg, false)

		// then
		require.NoError(t, err)
		assert.True(t, bumped)
		assert.Equal(t, "1.5.0", version.String())

		manifestContent := readFile(t, filepath.Join(root, "packages/emitter/package.json"))
		assert.Contains(t, manifestContent, `"version": "1.5.0"`)

		changelogContent := readFile(t, filepath.Join(root, "packages/emitter/CHANGELOG.md"))
		assert.Contains(t, changelogContent, "## 1.5.0 (2024-01-01)")
	})

	t.Run("should skip a manifest without a version field", func(t *testing.T) {
		t.Parallel()

		// given
		root := t.TempDir()
		pkgDir := filepath.Join(root, "pkg")
		require.NoError(t, os.MkdirAll(pkgDir, 0o750))
		require.NoError(t, os.WriteFile(
			filepath.Join(pkgDir, "package.json"), []byte(`{"name": "x"}`), 0o600))

		cfg := &config.Config{RepoDir: root, Packages: []config.PackageConfig{{Dir: "pkg"}}}
		svc := application.NewReleaseService(&testdoubles.SpyGitSource{})

		// when
		_, bumped, err := svc.BumpPackage(cfg, cfg.DomainPackages()[0], false)

		// then
		require.NoError(t, err)
		assert.False(t, bumped)
	})

	t.Run("should not write files in dry-run mode", func(t *testing.T) {
		t.Parallel()

		// given
		root, cfg := buildWorkspace(t)
		svc := application.NewReleaseService(&testdoubles.SpyGitSource{})
		pkg := cfg.DomainPackages()[0]

		// when
		version, bumped, err := svc.BumpPackage(cfg, pkg, true)

		// then
		require.NoError(t, err)
		assert.True(t, bumped)
		assert.Equal(t, "1.5.0", version.String())
		assert.Equal(t, workingManifest, readFile(t, filepath.Join(root, "packages/emitter/package.json")))
		assert.Equal(t, workingChangelog, readFile(t, filepath.Join(root, "packages/emitter/CHANGELOG.md")))
	})
}

func TestReleaseService_Run(t *testing.T) {
	t.Parallel()

	t.Run("should run the full pipeline for every package", func(t *testing.T) {
		t.Parallel()

		// given
		root, cfg := buildWorkspace(t)
		spy := &testdoubles.SpyGitSource{
			HeadContents: map[string]string{
				"packages/emitter/package.json": baselineManifest,
			},
			Diffs: map[string][]string{
				"packages/emitter/CHANGELOG.md": {"+### Features", "+- added streaming"},
			},
		}
		svc := application.NewReleaseService(spy)

		// when
		err := svc.Run(context.Background(), cfg, application.RunOptions{})

		// then: reconciled, peers retargeted, minor bump applied
		require.NoError(t, err)

		content := readFile(t, filepath.Join(root, "packages/emitter/package.json"))
		assert.Contains(t, content, `"@typespec/compiler": "0.1.0-alpha.32-dev.1"`)
		assert.Contains(t, content, `">=0.1.0-alpha.32-dev.1 <1.0.0"`)
		assert.Contains(t, content, `"version": "1.5.0"`)

		changelogContent := readFile(t, filepath.Join(root, "packages/emitter/CHANGELOG.md"))
		assert.Contains(t, changelogContent, "## 1.5.0")
	})

	t.Run("should not bump on a patch-level changelog diff", func(t *testing.T) {
		t.Parallel()

		// given
		root, cfg := buildWorkspace(t)
		spy := &testdoubles.SpyGitSource{
			Diffs: map[string][]string{
				"packages/emitter/CHANGELOG.md": {"+### Bug Fixes", "+- fixed a crash"},
			},
		}
		svc := application.NewReleaseService(spy)

		// when
		err := svc.Run(context.Background(), cfg, application.RunOptions{})

		// then
		require.NoError(t, err)
		content := readFile(t, filepath.Join(root, "packages/emitter/package.json"))
		assert.Contains(t, content, `"version": "1.4.7"`)
	})

	t.Run("should report an error when a package fails but process the rest", func(t *testing.T) {
		t.Parallel()

		// given: a second package with no manifest on disk
		root, cfg := buildWorkspace(t)
		cfg.Packages = append(cfg.Packages, config.PackageConfig{Dir: "packages/ghost"})

		svc := application.NewReleaseService(&testdoubles.SpyGitSource{})

		// when
		err := svc.Run(context.Background(), cfg, application.RunOptions{})

		// then: the run fails overall, the healthy package was still fully
		// processed (peer floor retargeted at the working-tree version,
		// version field untouched by the patch-level classification)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 package(s) failed")

		content := readFile(t, filepath.Join(root, "packages/emitter/package.json"))
		assert.Contains(t, content, `">=0.1.0-alpha.31 <1.0.0"`)
		assert.Contains(t, content, `"version": "1.4.7"`)
	})
}
