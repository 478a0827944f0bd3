package application

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/releasekit/releasekit/config"
	"github.com/releasekit/releasekit/domain"
	"github.com/releasekit/releasekit/infrastructure/manifest"
)

// ReleaseService orchestrates the full release-preparation flow for each
// configured package: reconcile dependencies against the committed
// baseline -> retarget peer ranges -> classify the pending bump from the
// changelog diff -> apply a minor bump when features landed.
type ReleaseService struct {
	source domain.GitSource
}

// NewReleaseService creates a new service reading baselines and diffs from
// the given source.
func NewReleaseService(source domain.GitSource) *ReleaseService {
	return &ReleaseService{source: source}
}

// RunOptions holds runtime options for a single run.
type RunOptions struct {
	DryRun  bool
	Verbose bool
}

// PackageResult summarizes what a run did to one package.
type PackageResult struct {
	Package      domain.Package
	Restored     int               // dependency ranges restored from the baseline
	PeerRewrites map[string]string // peer name -> rewritten range
	Bump         domain.BumpKind
	Bumped       bool
	NewVersion   domain.Version
}

// Run executes the full release-preparation cycle for every configured
// package.
func (s *ReleaseService) Run(
	ctx context.Context,
	cfg *config.Config,
	runOpts RunOptions,
) error {
	if runOpts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	totalRestored := 0
	totalPeers := 0
	totalBumped := 0
	totalErrors := 0

	for _, pkg := range cfg.DomainPackages() {
		result, err := s.processPackage(ctx, cfg, pkg, runOpts)
		if err != nil {
			logger.Errorf("Failed to process %q: %v", pkg.Dir, err)
			totalErrors++
			continue
		}

		totalRestored += result.Restored
		totalPeers += len(result.PeerRewrites)
		if result.Bumped {
			totalBumped++
		}
	}

	logger.Infof(
		"Run complete: %d packages processed, %d ranges restored, %d peer ranges rewritten, %d minor bumps, %d errors",
		len(cfg.Packages), totalRestored, totalPeers, totalBumped, totalErrors,
	)

	if totalErrors > 0 {
		return fmt.Errorf("%d package(s) failed", totalErrors)
	}
	return nil
}

// processPackage runs the pipeline steps on a single package.
func (s *ReleaseService) processPackage(
	ctx context.Context,
	cfg *config.Config,
	pkg domain.Package,
	runOpts RunOptions,
) (*PackageResult, error) {
	logger.Infof("Processing package %q", pkg.Dir)

	result := &PackageResult{Package: pkg}

	resolved, restored, err := s.ReconcilePackage(ctx, cfg, pkg, runOpts.DryRun)
	if err != nil {
		return nil, err
	}
	result.Restored = restored

	rewrites, err := s.RewritePeerRanges(cfg, pkg, resolved, runOpts.DryRun)
	if err != nil {
		return nil, err
	}
	result.PeerRewrites = rewrites

	kind, err := s.ClassifyPackage(ctx, cfg, pkg)
	if err != nil {
		return nil, err
	}
	result.Bump = kind

	if kind == domain.BumpMinor {
		version, bumped, bumpErr := s.BumpPackage(cfg, pkg, runOpts.DryRun)
		if bumpErr != nil {
			return nil, bumpErr
		}
		result.Bumped = bumped
		result.NewVersion = version
	}

	return result, nil
}

// ReconcilePackage merges the working-tree manifest with the committed
// baseline: for every eligible dependency present in both, the baseline
// range is restored when it is strictly newer than the working-tree one.
// It returns the resolved name-to-range set of the regular and dev
// dependency sections, and the count of restored ranges.
func (s *ReleaseService) ReconcilePackage(
	ctx context.Context,
	cfg *config.Config,
	pkg domain.Package,
	dryRun bool,
) (domain.DependencySet, int, error) {
	manifestPath := filepath.Join(cfg.RepoDir, pkg.ManifestPath())

	current, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, 0, err
	}

	baselineText, err := s.source.HeadContent(ctx, cfg.RepoDir, pkg.ManifestPath())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read baseline manifest: %w", err)
	}

	resolved := domain.DependencySet{}

	if baselineText == "" {
		logger.Infof("[reconcile] %s: no committed baseline, keeping working tree as-is", pkg.Dir)
		for _, section := range []string{manifest.SectionDependencies, manifest.SectionDevDependencies} {
			deps, depsErr := current.Dependencies(section)
			if depsErr != nil {
				return nil, 0, depsErr
			}
			for name, value := range deps {
				resolved[name] = value
			}
		}
		return resolved, 0, nil
	}

	baseline, err := manifest.Parse(baselineText)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse baseline manifest: %w", err)
	}

	restored := 0
	changed := false

	for _, section := range []string{manifest.SectionDependencies, manifest.SectionDevDependencies} {
		original, sectionErr := baseline.Dependencies(section)
		if sectionErr != nil {
			return nil, 0, sectionErr
		}
		proposed, sectionErr := current.Dependencies(section)
		if sectionErr != nil {
			return nil, 0, sectionErr
		}

		out := make(domain.DependencySet, len(proposed))
		for name, proposedValue := range proposed {
			out[name] = s.reconcileOne(cfg, name, original, proposedValue)

			if out[name] != proposedValue {
				restored++
				changed = true
			}
			resolved[name] = out[name]
			warnOffChannel(name, out[name])
		}

		if setErr := current.SetDependencies(section, out); setErr != nil {
			return nil, 0, setErr
		}
	}

	if changed && !dryRun {
		if saveErr := current.Save(); saveErr != nil {
			return nil, 0, saveErr
		}
	}
	if changed && dryRun {
		logger.Infof("[reconcile] [DRY RUN] Would restore %d range(s) in %s", restored, pkg.Dir)
	}

	return resolved, restored, nil
}

// reconcileOne decides the final range for a single dependency.
func (s *ReleaseService) reconcileOne(
	cfg *config.Config,
	name string,
	original domain.DependencySet,
	proposedValue string,
) string {
	originalValue, inBaseline := original[name]
	if !inBaseline || !nameEligible(cfg, name) {
		return proposedValue
	}

	if nameProtected(cfg, name) {
		if originalValue != proposedValue {
			logger.Infof("[reconcile] %s: protected, restored %q over %q",
				name, originalValue, proposedValue)
		}
		return originalValue
	}

	decision := domain.DecideRewrite(originalValue, proposedValue)
	if decision.Kept {
		logger.Infof("[reconcile] %s: %s", name, decision.Reason)
	} else {
		logger.Debugf("[reconcile] %s: %s", name, decision.Reason)
	}
	return decision.Value
}

// RewritePeerRanges retargets each peer-dependency range at the resolved
// version of that dependency. Ranges for names the resolution does not
// cover, and formats the policy does not understand, pass through
// unchanged.
func (s *ReleaseService) RewritePeerRanges(
	cfg *config.Config,
	pkg domain.Package,
	resolved domain.DependencySet,
	dryRun bool,
) (map[string]string, error) {
	manifestPath := filepath.Join(cfg.RepoDir, pkg.ManifestPath())

	current, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	peers, err := current.Dependencies(manifest.SectionPeerDependencies)
	if err != nil {
		return nil, err
	}
	if len(peers) == 0 {
		return map[string]string{}, nil
	}

	rewrites := map[string]string{}
	out := make(domain.DependencySet, len(peers))

	for name, literal := range peers {
		target, ok := resolved[name]
		if !ok {
			out[name] = literal
			continue
		}

		version := domain.StripRangeMarkers(target)
		rewritten := domain.RewritePeerRange(literal, version)
		out[name] = rewritten

		if rewritten != literal {
			rewrites[name] = rewritten
			logger.Infof("[peers] %s: %q -> %q", name, literal, rewritten)
		}
		if !domain.Satisfies(version, rewritten) {
			logger.Warnf("[peers] %s: resolved version %q does not satisfy range %q",
				name, version, rewritten)
		}
	}

	if len(rewrites) > 0 && !dryRun {
		if setErr := current.SetDependencies(manifest.SectionPeerDependencies, out); setErr != nil {
			return nil, setErr
		}
		if saveErr := current.Save(); saveErr != nil {
			return nil, saveErr
		}
	}
	if len(rewrites) > 0 && dryRun {
		logger.Infof("[peers] [DRY RUN] Would rewrite %d peer range(s) in %s", len(rewrites), pkg.Dir)
	}

	return rewrites, nil
}

// ClassifyPackage classifies the pending release of a package from its
// changelog diff against HEAD.
func (s *ReleaseService) ClassifyPackage(
	ctx context.Context,
	cfg *config.Config,
	pkg domain.Package,
) (domain.BumpKind, error) {
	lines, err := s.source.DiffLines(ctx, cfg.RepoDir, pkg.ChangelogPath())
	if err != nil {
		return domain.BumpPatch, fmt.Errorf("failed to diff changelog: %w", err)
	}

	kind := domain.ClassifyBump(lines)
	logger.Infof("[classify] %s: %s bump", pkg.Dir, kind)
	return kind, nil
}

// BumpPackage applies a minor bump to the package's manifest version field
// and changelog heading. It reports whether a bump was actually applied;
// a manifest without a recognizable version field is skipped with a
// warning rather than failed.
func (s *ReleaseService) BumpPackage(
	cfg *config.Config,
	pkg domain.Package,
	dryRun bool,
) (domain.Version, bool, error) {
	manifestPath := filepath.Join(cfg.RepoDir, pkg.ManifestPath())

	content, err := manifest.ReadDocument(manifestPath)
	if err != nil {
		return domain.Version{}, false, err
	}

	updated, next, ok := domain.BumpManifestVersion(content)
	if !ok {
		logger.Warnf("[bump] %s: no version field found, skipping", pkg.Dir)
		return domain.Version{}, false, nil
	}

	if dryRun {
		logger.Infof("[bump] [DRY RUN] Would bump %s to %s", pkg.Dir, next)
		return next, true, nil
	}

	if writeErr := manifest.WriteDocument(manifestPath, updated); writeErr != nil {
		return domain.Version{}, false, writeErr
	}
	logger.Infof("[bump] %s: manifest version -> %s", pkg.Dir, next)

	if bumpErr := s.bumpChangelog(cfg, pkg, next); bumpErr != nil {
		return domain.Version{}, false, bumpErr
	}

	return next, true, nil
}

// bumpChangelog rewrites the changelog's latest release heading to match
// the bumped manifest version. A missing changelog or heading is logged,
// not failed.
func (s *ReleaseService) bumpChangelog(
	cfg *config.Config,
	pkg domain.Package,
	next domain.Version,
) error {
	changelogPath := filepath.Join(cfg.RepoDir, pkg.ChangelogPath())

	content, err := manifest.ReadDocument(changelogPath)
	if err != nil {
		logger.Warnf("[bump] %s: changelog not readable: %v", pkg.Dir, err)
		return nil
	}

	updated, headingVersion, ok := domain.BumpChangelogHeading(content)
	if !ok {
		logger.Warnf("[bump] %s: no release heading found in changelog", pkg.Dir)
		return nil
	}

	if headingVersion != next {
		logger.Warnf("[bump] %s: changelog heading bumped to %s, manifest to %s",
			pkg.Dir, headingVersion, next)
	}

	if writeErr := manifest.WriteDocument(changelogPath, updated); writeErr != nil {
		return writeErr
	}
	logger.Infof("[bump] %s: changelog heading -> %s", pkg.Dir, headingVersion)
	return nil
}

// nameEligible reports whether a dependency name falls under the
// configured reconciliation filters. No filters means everything is
// eligible.
func nameEligible(cfg *config.Config, name string) bool {
	if len(cfg.Reconcile.Filters) == 0 {
		return true
	}
	for _, prefix := range cfg.Reconcile.Filters {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// nameProtected reports whether a dependency's original range must always
// be restored.
func nameProtected(cfg *config.Config, name string) bool {
	for _, protected := range cfg.Reconcile.Protected {
		if name == protected {
			return true
		}
	}
	return false
}

// warnOffChannel flags resolved versions on a pre-release channel the
// ordering policy does not rank, so the audit trail shows them.
func warnOffChannel(name, value string) {
	version, err := domain.ParseVersion(domain.StripRangeMarkers(value))
	if err != nil {
		return
	}
	if !version.IsDefaultChannel() {
		logger.Warnf("[reconcile] %s: %q is on channel %q, ordering against alpha is undefined",
			name, value, version.Channel)
	}
}
