// Package fs provides the file primitives for generated packaging files:
// atomic whole-file writes and line-oriented read-modify-write. Observers
// never see a partially written file; interrupted writes leave the previous
// content in place.
package fs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/zerr"
)

// WriteFileAtomic writes data to path via a temp file in the same directory
// followed by a rename.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrFileWrite.Error())
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrFileWrite.Error())
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrFileWrite.Error())
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrFileWrite.Error())
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, domain.ErrFileWrite.Error())
	}
	return nil
}

// LineTransform rewrites one line of a file. Returning keep=false drops the
// line; otherwise the returned line replaces the original.
type LineTransform func(line string) (out string, keep bool)

// UpdateLines reads the file at path (a missing file reads as empty), applies
// transform to every line, then asks appendIfAbsent for a trailing line to
// add ("" for none; typically the caller's closure returns a line only when
// the transform never saw the variable it was looking for). The file is
// rewritten, atomically, only when the resulting content differs from the
// original; the return value reports whether a write happened.
func UpdateLines(path string, transform LineTransform, appendIfAbsent func() string) (bool, error) {
	original := ""
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		original = string(data)
	case errors.Is(err, fs.ErrNotExist):
		// first write for this package
	default:
		return false, zerr.Wrap(err, domain.ErrFileRead.Error())
	}

	var out strings.Builder
	for line := range strings.Lines(original) {
		line = strings.TrimSuffix(line, "\n")
		if rewritten, keep := transform(line); keep {
			out.WriteString(rewritten)
			out.WriteByte('\n')
		}
	}
	if appendIfAbsent != nil {
		if line := appendIfAbsent(); line != "" {
			out.WriteString(line)
			out.WriteByte('\n')
		}
	}

	updated := out.String()
	if xxhash.Sum64String(updated) == xxhash.Sum64String(original) {
		return false, nil
	}

	if err := WriteFileAtomic(path, []byte(updated), domain.FilePerm); err != nil {
		return false, zerr.With(err, "path", path)
	}
	return true, nil
}

// ReadIfExists returns the content of path, or "" when the file does not
// exist. Any other error propagates.
func ReadIfExists(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrFileRead.Error())
	}
	return string(data), nil
}
