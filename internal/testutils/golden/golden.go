// Package golden compares test outputs with reference files kept under testdata/golden.
package golden

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/otiai10/copy"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"
)

// UpdateGoldenFilesEnv is the environment variable telling the tests to overwrite
// the golden files with the current results.
const UpdateGoldenFilesEnv = `IDBRIDGE_TESTS_UPDATE_GOLDEN`

// fileForEmptyDir is created in empty directories so that they can be committed.
const fileForEmptyDir = ".empty"

var update bool

func init() {
	if os.Getenv(UpdateGoldenFilesEnv) != "" {
		update = true
	}
}

type goldenOptions struct {
	path   string
	suffix string
}

// Option is a supported option reference to change the golden files comparison.
type Option func(*goldenOptions)

// WithPath overrides the default path for golden files used.
func WithPath(path string) Option {
	return func(o *goldenOptions) {
		if path != "" {
			o.path = path
		}
	}
}

// WithSuffix add a suffix to golden files used.
func WithSuffix(suffix string) Option {
	return func(o *goldenOptions) {
		if suffix != "" {
			o.suffix = suffix
		}
	}
}

func parseGoldenOptions(t *testing.T, options ...Option) goldenOptions {
	t.Helper()

	var opts goldenOptions
	for _, f := range options {
		f(&opts)
	}
	if !filepath.IsAbs(opts.path) {
		opts.path = filepath.Join(Path(t), opts.path)
	}
	opts.path += opts.suffix

	return opts
}

// CheckOrUpdate compares got with the content of the golden file of the test.
// The golden file is rewritten first when updates are enabled.
func CheckOrUpdate(t *testing.T, got string, options ...Option) {
	t.Helper()

	opts := parseGoldenOptions(t, options...)
	if update {
		t.Logf("updating golden file %s", opts.path)
		require.NoError(t, os.MkdirAll(filepath.Dir(opts.path), 0750), "Cannot create directory for golden file")
		require.NoError(t, os.WriteFile(opts.path, []byte(got), 0600), "Cannot write golden file")
	}

	want, err := os.ReadFile(opts.path)
	require.NoError(t, err, "Cannot read golden file %s", opts.path)

	checkContent(t, got, string(want), "", opts.path)
}

// CheckOrUpdateFileTree compares the file or directory at path with the golden one of
// the test, file contents and executable bits included.
// The golden tree is replaced by a copy of path first when updates are enabled.
func CheckOrUpdateFileTree(t *testing.T, path string, options ...Option) {
	t.Helper()

	opts := parseGoldenOptions(t, options...)
	if update {
		updateFileTree(t, path, opts.path)
	}

	err := filepath.WalkDir(path, func(p string, de fs.DirEntry, err error) error {
		if err != nil || de.IsDir() {
			return err
		}

		rel, err := filepath.Rel(path, p)
		require.NoError(t, err, "Cannot get relative path for %s", p)
		goldenPath := filepath.Join(opts.path, rel)

		goldenInfo, err := os.Stat(goldenPath)
		require.NoError(t, err, "Unexpected file %s", p)
		info, err := de.Info()
		require.NoError(t, err, "Cannot get file %s", p)
		require.Equal(t, goldenInfo.Mode().Perm()&0o111, info.Mode().Perm()&0o111,
			"Executable bit does not match.\nFile: %s\nGolden file: %s", p, goldenPath)

		got, err := os.ReadFile(p)
		require.NoError(t, err, "Cannot read file %s", p)
		want, err := os.ReadFile(goldenPath)
		require.NoError(t, err, "Cannot read golden file %s", goldenPath)
		checkContent(t, string(got), string(want), p, goldenPath)

		return nil
	})
	require.NoError(t, err, "Cannot walk through %s", path)

	err = filepath.WalkDir(opts.path, func(p string, de fs.DirEntry, err error) error {
		if err != nil || de.IsDir() || de.Name() == fileForEmptyDir {
			return err
		}

		rel, err := filepath.Rel(opts.path, p)
		require.NoError(t, err, "Cannot get relative path for %s", p)
		_, err = os.Stat(filepath.Join(path, rel))
		require.NoError(t, err, "Missing expected file %s", filepath.Join(path, rel))

		return nil
	})
	require.NoError(t, err, "Cannot walk through golden path %s", opts.path)
}

func updateFileTree(t *testing.T, path, goldenPath string) {
	t.Helper()

	t.Logf("updating golden path %s", goldenPath)
	require.NoError(t, os.RemoveAll(goldenPath), "Cannot remove golden path %s", goldenPath)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	require.NoError(t, err, "Cannot stat %s", path)

	if !info.IsDir() {
		require.NoError(t, os.MkdirAll(filepath.Dir(goldenPath), 0750), "Cannot create directory for golden file")
		require.NoError(t, copy.Copy(path, goldenPath), "Cannot update golden file")
		return
	}

	require.NoError(t, addEmptyMarker(path), "Cannot mark empty directories of %s", path)
	require.NoError(t, copy.Copy(path, goldenPath), "Cannot update golden directory")
}

// addEmptyMarker adds fileForEmptyDir to every empty directory under p.
func addEmptyMarker(p string) error {
	return filepath.WalkDir(p, func(path string, de fs.DirEntry, err error) error {
		if err != nil || !de.IsDir() {
			return err
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return nil
		}
		return os.WriteFile(filepath.Join(path, fileForEmptyDir), nil, 0600)
	})
}

// checkContent fails the test with a unified diff when got and want differ.
func checkContent(t *testing.T, got, want, path, goldenPath string) {
	t.Helper()

	if got == want {
		return
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "Expected (golden)",
		ToFile:   "Actual",
		Context:  3,
	})
	require.NoError(t, err, "Cannot get unified diff")

	msg := fmt.Sprintf("Golden file: %s", goldenPath)
	if path != "" {
		msg += fmt.Sprintf("\nFile: %s", path)
	}

	require.Failf(t, strings.Join([]string{
		"Golden file content mismatch",
		"\nExpected (golden):",
		strings.Repeat("-", 50),
		strings.TrimSuffix(want, "\n"),
		strings.Repeat("-", 50),
		"\nActual: ",
		strings.Repeat("-", 50),
		strings.TrimSuffix(got, "\n"),
		strings.Repeat("-", 50),
		"\nDiff:\n" + diff,
	}, "\n"), msg)
}

// Path returns the golden path for the provided test.
func Path(t *testing.T) string {
	t.Helper()

	// Only alphanumeric characters, underscores, dashes, and dots are allowed in names.
	for _, part := range strings.Split(t.Name(), "/") {
		require.Regexp(t, `^[\w\-.]+$`, part, "Invalid golden file name %q", part)
	}

	return filepath.Join(Dir(t), t.Name())
}

// Dir returns the golden directory for the provided test.
func Dir(t *testing.T) string {
	t.Helper()

	cwd, err := os.Getwd()
	require.NoError(t, err, "Cannot get current working directory")

	return filepath.Join(cwd, "testdata", "golden")
}

// UpdateEnabled returns true if the update flag was set, false otherwise.
func UpdateEnabled() bool {
	return update
}
