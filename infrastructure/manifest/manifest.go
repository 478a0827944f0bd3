package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/releasekit/releasekit/domain"
)

const (
	SectionDependencies     = "dependencies"
	SectionDevDependencies  = "devDependencies"
	SectionPeerDependencies = "peerDependencies"

	documentFileMode = 0o644
)

// Sections lists the dependency sections of an npm-style manifest in the
// order the toolkit processes them.
var Sections = []string{
	SectionDependencies,
	SectionDevDependencies,
	SectionPeerDependencies,
}

// File is a loaded npm-style manifest. Top-level fields the toolkit does
// not understand are carried as raw JSON and written back untouched;
// top-level keys are rendered in sorted order.
type File struct {
	Path string

	doc map[string]json.RawMessage
}

// Load reads and parses a manifest file from the working tree.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %q: %w", path, err)
	}

	f, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %q: %w", path, err)
	}
	f.Path = path

	return f, nil
}

// Parse parses manifest content that is not (or not yet) on disk, such as
// a baseline recovered from version control.
func Parse(content string) (*File, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest content: %w", err)
	}

	return &File{doc: doc}, nil
}

// Dependencies returns the given dependency section as a name-to-range
// map. A missing section comes back empty, not as an error.
func (f *File) Dependencies(section string) (domain.DependencySet, error) {
	raw, ok := f.doc[section]
	if !ok {
		return domain.DependencySet{}, nil
	}

	var deps domain.DependencySet
	if err := json.Unmarshal(raw, &deps); err != nil {
		return nil, fmt.Errorf("failed to parse %q section: %w", section, err)
	}

	return deps, nil
}

// SetDependencies replaces the given dependency section. Setting an empty
// map on a manifest that never had the section leaves the document alone.
func (f *File) SetDependencies(section string, deps domain.DependencySet) error {
	if _, ok := f.doc[section]; !ok && len(deps) == 0 {
		return nil
	}

	// Encode without HTML escaping so range markers survive; Render would
	// otherwise carry the escapes through the raw message untouched.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(deps); err != nil {
		return fmt.Errorf("failed to encode %q section: %w", section, err)
	}
	f.doc[section] = json.RawMessage(bytes.TrimRight(buf.Bytes(), "\n"))

	return nil
}

// Version returns the manifest's version field, or an empty string when
// the field is absent.
func (f *File) Version() (string, error) {
	raw, ok := f.doc["version"]
	if !ok {
		return "", nil
	}

	var version string
	if err := json.Unmarshal(raw, &version); err != nil {
		return "", fmt.Errorf("failed to parse version field: %w", err)
	}

	return version, nil
}

// Render serializes the manifest with two-space indentation and a trailing
// newline, matching the output of common manifest tooling. HTML escaping is
// off so range literals like ">=1.0.0 <2.0.0" land on disk verbatim.
func (f *File) Render() (string, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(f.doc); err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}

	// Encode already terminates the document with a newline.
	return buf.String(), nil
}

// Save writes the manifest back to its file.
func (f *File) Save() error {
	if f.Path == "" {
		return errors.New("manifest has no file path")
	}

	content, err := f.Render()
	if err != nil {
		return err
	}

	if err = os.WriteFile(f.Path, []byte(content), documentFileMode); err != nil {
		return fmt.Errorf("failed to write manifest %q: %w", f.Path, err)
	}

	return nil
}

// ReadDocument returns the raw text of a document in the working tree.
// Used for text-level edits (version bumps) that must preserve the
// document's existing formatting byte-for-byte.
func ReadDocument(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %q: %w", path, err)
	}
	return string(data), nil
}

// WriteDocument writes raw document text back to the working tree.
func WriteDocument(path, content string) error {
	if err := os.WriteFile(path, []byte(content), documentFileMode); err != nil {
		return fmt.Errorf("failed to write %q: %w", path, err)
	}
	return nil
}
