package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.xml")

	require.NoError(t, WriteFileAtomic(path, []byte("<report/>\n"), 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<report/>\n", string(data))

	size, err := GetFileSize(path)
	require.NoError(t, err)
	assert.Equal(t, int64(10), size)

	// Overwrites replace the whole file.
	require.NoError(t, WriteFileAtomic(path, []byte("<r/>"), 0o644))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<r/>", string(data))

	assertOnlyFiles(t, dir, "report.xml")
}

func TestWriteAtomic_FailureLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.xml")

	err := WriteAtomic(path, 0o644, func(w io.Writer) error {
		_, _ = w.Write([]byte("<report>"))
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	assert.False(t, FileExists(path))
	assertOnlyFiles(t, dir)
}

func TestWriteAtomic_FailureKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.xml")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	err := WriteAtomic(path, 0o644, func(w io.Writer) error {
		return errors.New("boom")
	})
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	assertOnlyFiles(t, dir, "report.xml")
}

func TestWriteFileAtomic_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "report.xml")

	err := WriteFileAtomic(path, []byte("x"), 0o644)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, FileExists(path))
}

func TestTempFileName(t *testing.T) {
	a := TempFileName(filepath.Join("out", "report.xml"))
	b := TempFileName(filepath.Join("out", "report.xml"))

	assert.NotEqual(t, a, b)
	assert.Equal(t, "out", filepath.Dir(a))
	assert.True(t, strings.HasPrefix(filepath.Base(a), ".report.xml."))
	assert.True(t, strings.HasSuffix(a, ".tmp"))
}

func assertOnlyFiles(t *testing.T, dir string, names ...string) {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var got []string
	for _, e := range entries {
		got = append(got, e.Name())
	}
	assert.ElementsMatch(t, names, got)
}
