// Package archive reads and writes the single-entry zip archives that hold
// dataset shards.
package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
)

// ErrEntryNotFound is reported (wrapped in an *ArchiveError) when the archive
// has no entry with the requested name.
var ErrEntryNotFound = errors.New("entry not found")

// ArchiveError is returned when an archive is corrupt or lacks the requested entry.
type ArchiveError struct {
	Entry string
	Err   error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("archive entry %q: %v", e.Entry, e.Err)
}

func (e *ArchiveError) Unwrap() error {
	return e.Err
}

// Extract decompresses the entry called name from the zip archive in data.
func Extract(data []byte, name string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &ArchiveError{Entry: name, Err: fmt.Errorf("failed to open archive: %w", err)}
	}

	f, err := zr.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ArchiveError{Entry: name, Err: ErrEntryNotFound}
		}
		return nil, &ArchiveError{Entry: name, Err: err}
	}
	defer f.Close()

	out, err := io.ReadAll(f)
	if err != nil {
		return nil, &ArchiveError{Entry: name, Err: fmt.Errorf("failed to decompress: %w", err)}
	}

	return out, nil
}

// Write returns a deflate-compressed zip archive holding a single entry.
func Write(name string, content []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		zw.Close()
		return nil, fmt.Errorf("failed to create entry %q: %w", name, err)
	}
	if _, err := w.Write(content); err != nil {
		zw.Close()
		return nil, fmt.Errorf("failed to write entry %q: %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}

	return buf.Bytes(), nil
}
