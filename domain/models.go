package domain

import "path"

// Package identifies one SDK/emitter package managed by the toolkit.
type Package struct {
	Dir       string // package directory, relative to the repository root
	Manifest  string // manifest filename (default "package.json")
	Changelog string // changelog filename (default "CHANGELOG.md")
}

// ManifestPath returns the manifest path relative to the repository root.
func (p Package) ManifestPath() string {
	name := p.Manifest
	if name == "" {
		name = "package.json"
	}
	return path.Join(p.Dir, name)
}

// ChangelogPath returns the changelog path relative to the repository root.
func (p Package) ChangelogPath() string {
	name := p.Changelog
	if name == "" {
		name = "CHANGELOG.md"
	}
	return path.Join(p.Dir, name)
}
