// Package fsutil holds shared file plumbing for the format codecs: atomic
// writes and transparent gzip by file extension.
package fsutil

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// IsGzip reports whether a path names a gzip-compressed file.
func IsGzip(path string) bool {
	return strings.HasSuffix(path, ".gz")
}

// TrimGzip strips a trailing .gz so format codecs can check their own
// extension on compressed paths.
func TrimGzip(path string) string {
	return strings.TrimSuffix(path, ".gz")
}

// Save writes a file atomically: the payload goes to a temp file in the
// same directory, which is fsynced and renamed over the target. Paths
// ending in .gz are gzip-compressed.
func Save(path string, writeFunc func(io.Writer) error) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, 256*1024)
	if IsGzip(path) {
		zw := gzip.NewWriter(buf)
		if err := writeFunc(zw); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}
	} else {
		if err := writeFunc(buf); err != nil {
			return err
		}
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}

	// Success: prevent deferred cleanup from removing the final file.
	tmpName = ""
	return nil
}

// Load opens a file (decompressing .gz paths) and hands a buffered reader
// to readFunc.
func Load(path string, readFunc func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := bufio.NewReaderSize(f, 256*1024)
	if IsGzip(path) {
		zr, err := gzip.NewReader(buf)
		if err != nil {
			return err
		}
		defer zr.Close()
		return readFunc(zr)
	}
	return readFunc(buf)
}
