package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/releasekit/releasekit/domain"
)

func TestClassifyBump(t *testing.T) {
	t.Parallel()

	t.Run("should classify an added features heading as a minor bump", func(t *testing.T) {
		t.Parallel()

		// given
		diff := []string{
			"+### Features",
			"-### Bug Fixes",
		}

		// when
		kind := domain.ClassifyBump(diff)

		// then
		assert.Equal(t, domain.BumpMinor, kind)
	})

	t.Run("should ignore a features heading that was removed", func(t *testing.T) {
		t.Parallel()

		// given
		diff := []string{
			"+### Bug Fixes",
			"-### Features",
		}

		// when
		kind := domain.ClassifyBump(diff)

		// then
		assert.Equal(t, domain.BumpPatch, kind)
	})

	t.Run("should ignore a features heading in unchanged context", func(t *testing.T) {
		t.Parallel()

		// given
		diff := []string{
			" ### Features",
			"+- fixed a typo",
		}

		// when
		kind := domain.ClassifyBump(diff)

		// then
		assert.Equal(t, domain.BumpPatch, kind)
	})

	t.Run("should classify an empty diff as a patch bump", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, domain.BumpPatch, domain.ClassifyBump(nil))
	})
}

func TestApplyMinorBump(t *testing.T) {
	t.Parallel()

	t.Run("should increment minor and reset patch", func(t *testing.T) {
		t.Parallel()

		// given
		v, err := domain.ParseVersion("1.4.7")
		require.NoError(t, err)

		// when
		next := domain.ApplyMinorBump(v)

		// then
		assert.Equal(t, "1.5.0", next.String())
	})

	t.Run("should drop pre-release and dev markers", func(t *testing.T) {
		t.Parallel()

		// given
		v, err := domain.ParseVersion("0.1.0-alpha.12-dev.5")
		require.NoError(t, err)

		// when
		next := domain.ApplyMinorBump(v)

		// then
		assert.Equal(t, "0.2.0", next.String())
	})
}

func TestBumpManifestVersion(t *testing.T) {
	t.Parallel()

	t.Run("should bump the version field and leave the rest of the document alone", func(t *testing.T) {
		t.Parallel()

		// given
		content := "{\n  \"name\": \"@azure-tools/emitter\",\n  \"version\": \"1.4.7\",\n  \"dependencies\": {\n    \"pinned\": \"1.4.7\"\n  }\n}\n"

		// when
		updated, next, ok := domain.BumpManifestVersion(content)

		// then: the field changes, the identical dependency pin does not
		require.True(t, ok)
		assert.Equal(t, "1.5.0", next.String())
		assert.Contains(t, updated, "\"version\": \"1.5.0\"")
		assert.Contains(t, updated, "\"pinned\": \"1.4.7\"")
		assert.Equal(t, 1, strings.Count(updated, "1.5.0"))
	})

	t.Run("should preserve the field's own spacing", func(t *testing.T) {
		t.Parallel()

		// given: no space after the colon
		content := `{"version":"2.9.3"}`

		// when
		updated, _, ok := domain.BumpManifestVersion(content)

		// then
		require.True(t, ok)
		assert.Equal(t, `{"version":"2.10.0"}`, updated)
	})

	t.Run("should report a missing version field", func(t *testing.T) {
		t.Parallel()

		// when
		updated, _, ok := domain.BumpManifestVersion(`{"name": "x"}`)

		// then
		assert.False(t, ok)
		assert.Equal(t, `{"name": "x"}`, updated)
	})
}

func TestBumpChangelogHeading(t *testing.T) {
	t.Parallel()

	t.Run("should bump only the heading even when the literal recurs in prose", func(t *testing.T) {
		t.Parallel()

		// given: "1.4.7" also appears in a body line
		content := "# Changelog\n\n## 1.4.7 (2024-01-01)\n\n- upgraded from 1.4.7-beta internals\n"

		// when
		updated, next, ok := domain.BumpChangelogHeading(content)

		// then
		require.True(t, ok)
		assert.Equal(t, "1.5.0", next.String())
		assert.Contains(t, updated, "## 1.5.0 (2024-01-01)")
		assert.Contains(t, updated, "upgraded from 1.4.7-beta internals")
	})

	t.Run("should bump only the first of several release headings", func(t *testing.T) {
		t.Parallel()

		// given
		content := "## 1.4.7\n\nnotes\n\n## 1.4.6\n\nolder notes\n"

		// when
		updated, _, ok := domain.BumpChangelogHeading(content)

		// then
		require.True(t, ok)
		assert.True(t, strings.HasPrefix(updated, "## 1.5.0\n"))
		assert.Contains(t, updated, "## 1.4.6")
	})

	t.Run("should not match a heading in the middle of a line", func(t *testing.T) {
		t.Parallel()

		// given
		content := "see ## 1.4.7 for details\n"

		// when
		updated, _, ok := domain.BumpChangelogHeading(content)

		// then
		assert.False(t, ok)
		assert.Equal(t, content, updated)
	})
}
