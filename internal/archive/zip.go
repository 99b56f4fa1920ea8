package archive

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/mgpai22/sourceplan/internal/subtitle"
)

// fixed so identical segment state yields identical bytes
var entryTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Build assembles the export tree and serializes it as a deflate zip.
func Build(segments []subtitle.Segment, opts Options) ([]byte, error) {
	tree, err := Assemble(segments, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tree.WriteZip(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteZip serializes the tree. Folder entries are emitted before the first
// file inside them.
func (t *Tree) WriteZip(w io.Writer) error {
	zw := zip.NewWriter(w)
	dirs := make(map[string]bool)

	for _, entry := range t.files() {
		if i := strings.LastIndex(entry.Name, "/"); i >= 0 {
			dir := entry.Name[:i+1]
			if !dirs[dir] {
				dirs[dir] = true
				if _, err := zw.CreateHeader(&zip.FileHeader{
					Name:     dir,
					Method:   zip.Store,
					Modified: entryTime,
				}); err != nil {
					return fmt.Errorf("failed to add folder %s: %w", dir, err)
				}
			}
		}

		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     entry.Name,
			Method:   zip.Deflate,
			Modified: entryTime,
		})
		if err != nil {
			return fmt.Errorf("failed to add %s: %w", entry.Name, err)
		}
		if _, err := fw.Write(entry.Data); err != nil {
			return fmt.Errorf("failed to write %s: %w", entry.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

// WriteFile stores an export at path. Concurrent exports to the same path
// are refused, and the file is replaced atomically.
func WriteFile(path string, data []byte) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve output path: %w", err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	lock := flock.New(lockPath(absPath))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", absPath, err)
	}
	if !locked {
		return fmt.Errorf("%s is being written by another export", absPath)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	tmp, err := os.CreateTemp(dir, ".sourceplan-*.zip")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set archive permissions: %w", err)
	}
	if err := os.Rename(tmpName, absPath); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}

// lock files live in the temp dir so exports do not litter the output folder
func lockPath(absPath string) string {
	sum := sha256.Sum256([]byte(absPath))
	return filepath.Join(
		os.TempDir(),
		"sourceplan-"+hex.EncodeToString(sum[:8])+".lock",
	)
}
