package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	rerrors "github.com/conneroisu/redactor/internal/errors"
	"github.com/conneroisu/redactor/internal/markup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestScanner(t *testing.T, opts Options) *DocumentScanner {
	t.Helper()
	if opts.Extensions == nil {
		opts.Extensions = []string{".txt", ".md"}
	}
	if opts.Workers == 0 {
		opts.Workers = 2
	}
	s := NewDocumentScanner(opts)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLintFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chapter.txt")
	writeFile(t, path, "See [[cita:smith2020]] and [[caja:Note]]body")

	s := newTestScanner(t, Options{Context: markup.NewLintContext([]string{"doe2019"}, nil, nil)})

	report, err := s.LintFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, report.Path)
	assert.Equal(t, Hash([]byte("See [[cita:smith2020]] and [[caja:Note]]body")), report.Hash)
	require.Len(t, report.Issues, 2)
	assert.Equal(t, markup.CodeUnknownReference, report.Issues[0].Code)
	assert.Equal(t, markup.CodeUnclosedBlock, report.Issues[1].Code)
}

func TestLintFileErrors(t *testing.T) {
	s := newTestScanner(t, Options{})

	_, err := s.LintFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.True(t, rerrors.HasErrorCode(err, rerrors.ErrCodeFileNotFound))

	_, err = s.LintFile("../escape.txt")
	require.Error(t, err)
	assert.True(t, rerrors.HasErrorCode(err, rerrors.ErrCodeInvalidPath))
}

func TestMatches(t *testing.T) {
	s := newTestScanner(t, Options{
		Extensions:      []string{"TXT", ".md"},
		ExcludePatterns: []string{"*.bak", "draft-*"},
	})

	tests := []struct {
		path     string
		expected bool
	}{
		{"docs/intro.txt", true},
		{"docs/INTRO.TXT", true},
		{"docs/readme.md", true},
		{"docs/image.png", false},
		{"docs/intro.txt.bak", false},
		{"docs/draft-intro.txt", false},
		{"noext", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Matches(tt.path))
		})
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.txt"), "b")
	writeFile(t, filepath.Join(dir, "a.md"), "a")
	writeFile(t, filepath.Join(dir, "skip.png"), "png")
	writeFile(t, filepath.Join(dir, "old.txt.bak"), "bak")
	writeFile(t, filepath.Join(dir, "nested", "c.txt"), "c")
	writeFile(t, filepath.Join(dir, ".git", "HEAD.txt"), "hidden")
	explicit := filepath.Join(dir, "notes.rst")
	writeFile(t, explicit, "explicit")

	s := newTestScanner(t, Options{ExcludePatterns: []string{"*.bak"}})

	files, err := s.Discover(context.Background(), []string{dir, explicit, dir})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "nested", "c.txt"),
		explicit,
	}, files)
}

func TestDiscoverMissingRoot(t *testing.T) {
	s := newTestScanner(t, Options{})

	_, err := s.Discover(context.Background(), []string{filepath.Join(t.TempDir(), "nope")})
	require.Error(t, err)
	assert.True(t, rerrors.HasErrorCode(err, rerrors.ErrCodeFileNotFound))
}

func TestScanPaths(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		content := "clean text"
		if i%4 == 0 {
			content = "[[alerta]]x[[/alerta]]"
		}
		writeFile(t, filepath.Join(dir, fmt.Sprintf("doc%02d.txt", i)), content)
	}

	s := newTestScanner(t, Options{Workers: 4})

	reports, err := s.ScanPaths(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, reports, 20)

	withIssues := 0
	for i, report := range reports {
		assert.Equal(t, filepath.Join(dir, fmt.Sprintf("doc%02d.txt", i)), report.Path)
		if len(report.Issues) > 0 {
			withIssues++
			assert.Equal(t, markup.CodeMissingTitle, report.Issues[0].Code)
		}
	}
	assert.Equal(t, 5, withIssues)
}

func TestScanPathsEmpty(t *testing.T) {
	s := newTestScanner(t, Options{})

	reports, err := s.ScanPaths(context.Background(), []string{t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestScanPathsCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "a")

	s := newTestScanner(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.ScanPaths(ctx, []string{dir})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetLintContext(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.txt")
	writeFile(t, path, "[[figura:fig-1]]")

	s := newTestScanner(t, Options{})

	report, err := s.LintFile(path)
	require.NoError(t, err)
	assert.Empty(t, report.Issues)

	s.SetLintContext(markup.NewLintContext(nil, []string{"fig-2"}, nil))
	report, err = s.LintFile(path)
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, markup.CodeUnknownReference, report.Issues[0].Code)
}

func TestCloseIsIdempotent(t *testing.T) {
	s := NewDocumentScanner(Options{Workers: 1})
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.lintBatch(context.Background(), []string{"a.txt"})
	assert.Error(t, err)
}
