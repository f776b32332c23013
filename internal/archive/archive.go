// Package archive unpacks submission archives into temporary directories.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// AllowedExtensions is the fixed allow-list of document extensions kept
// when unpacking a submission archive.
var AllowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

// Allowed reports whether a filename carries an allow-listed document
// extension.
func Allowed(name string) bool {
	return AllowedExtensions[strings.ToLower(filepath.Ext(name))]
}

// Unpack extracts the allow-listed entries of the zip archive at zipPath
// into a fresh temporary directory and returns its path. The caller owns
// the directory and must remove it. Entries resolving outside the
// directory are rejected.
func Unpack(zipPath string) (string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	dir, err := os.MkdirTemp("", "gradeflow-*")
	if err != nil {
		return "", fmt.Errorf("create extraction dir: %w", err)
	}

	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !Allowed(f.Name) {
			continue
		}
		if err := extractEntry(f, dir); err != nil {
			os.RemoveAll(dir)
			return "", fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}

	return dir, nil
}

func extractEntry(f *zip.File, dir string) error {
	dest := filepath.Join(dir, f.Name)
	// Zip-slip guard: the resolved path must stay inside dir.
	if rel, err := filepath.Rel(dir, dest); err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("entry escapes extraction dir")
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ListDocuments returns the allow-listed regular files directly under
// dir, in lexical order. Nested directories (archive folder structure)
// are not descended into; submissions are expected at the top level.
func ListDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list extraction dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !Allowed(e.Name()) {
			continue
		}
		files = append(files, e.Name())
	}
	return files, nil
}
