// =============================================================================
// findings2xml - File Manager Utility
// =============================================================================
//
// This module provides the file handling the converter needs around its
// output document:
//   - Atomic writes (temp file in the destination directory, then rename)
//   - Temp file naming
//   - Small stat helpers
//
// WRITE STRATEGY:
//   - Content is written to ".<name>.<uuid>.tmp" next to the destination
//   - The temp file is synced and closed before it is renamed into place
//   - On any failure the temp file is removed and the destination is left
//     untouched, so a failed run never leaves a file that looks valid
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// =============================================================================
// ATOMIC WRITES
// =============================================================================

// WriteFileAtomic writes data to path through a temp file.
//
// PARAMETERS:
//   - path: The destination file. Its directory must exist.
//   - data: The full file content.
//   - perm: The permission bits of the new file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return WriteAtomic(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteAtomic streams content produced by write into path through a temp file.
// The destination only appears once write has returned nil and the data has
// been flushed to disk.
func WriteAtomic(path string, perm os.FileMode, write func(w io.Writer) error) (err error) {
	tempPath := TempFileName(path)

	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	defer func() {
		if err != nil {
			file.Close()
			os.Remove(tempPath)
		}
	}()

	buffered := bufio.NewWriter(file)
	if err = write(buffered); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = buffered.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err = file.Sync(); err != nil {
		return fmt.Errorf("failed to sync %s: %w", path, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	if err = os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to move output into place: %w", err)
	}

	return nil
}

// TempFileName returns a unique hidden sibling of path.
//
// EXAMPLE:
//   path:   "out/report.xml"
//   output: "out/.report.xml.a1b2c3d4-e5f6-7890-abcd-ef1234567890.tmp"
func TempFileName(path string) string {
	dir, name := filepath.Split(path)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", name, uuid.New().String()))
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
