package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	testkit "github.com/rios0rios0/testkit/pkg/test"

	"github.com/releasekit/releasekit/domain"
)

// PackageBuilder helps create test packages with a fluent interface.
type PackageBuilder struct {
	*testkit.BaseBuilder
	dir       string
	manifest  string
	changelog string
}

// NewPackageBuilder creates a new package builder with sensible defaults.
func NewPackageBuilder() *PackageBuilder {
	return &PackageBuilder{
		BaseBuilder: testkit.NewBaseBuilder(),
		dir:         "packages/emitter",
		manifest:    "",
		changelog:   "",
	}
}

// WithDir sets the package directory.
func (b *PackageBuilder) WithDir(dir string) *PackageBuilder {
	b.dir = dir
	return b
}

// WithManifest sets the manifest filename.
func (b *PackageBuilder) WithManifest(name string) *PackageBuilder {
	b.manifest = name
	return b
}

// WithChangelog sets the changelog filename.
func (b *PackageBuilder) WithChangelog(name string) *PackageBuilder {
	b.changelog = name
	return b
}

// Build creates the package (satisfies testkit.Builder interface).
func (b *PackageBuilder) Build() interface{} {
	return b.BuildPackage()
}

// BuildPackage creates the package with a concrete return type.
func (b *PackageBuilder) BuildPackage() domain.Package {
	return domain.Package{
		Dir:       b.dir,
		Manifest:  b.manifest,
		Changelog: b.changelog,
	}
}

// Reset clears the builder state, allowing it to be reused.
func (b *PackageBuilder) Reset() testkit.Builder {
	b.BaseBuilder.Reset()
	b.dir = "packages/emitter"
	b.manifest = ""
	b.changelog = ""
	return b
}

// Clone creates a deep copy of the PackageBuilder.
func (b *PackageBuilder) Clone() testkit.Builder {
	return &PackageBuilder{
		BaseBuilder: b.BaseBuilder.Clone().(*testkit.BaseBuilder),
		dir:         b.dir,
		manifest:    b.manifest,
		changelog:   b.changelog,
	}
}
