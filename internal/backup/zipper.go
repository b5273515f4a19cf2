// Package backup provides the compression capability behind archive and
// restore: compress a working directory into a single zip artifact and
// extract it back. Both operations are atomic from the caller's point of
// view; partial outputs are removed on failure.
package backup

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type Zipper struct{}

func NewZipper() *Zipper {
	return &Zipper{}
}

// Compress writes the entire tree under srcDir into a zip file at destZip.
// Entry names are relative to srcDir so extraction recreates the same
// layout anywhere. On any failure the partial zip is deleted.
func (z *Zipper) Compress(srcDir, destZip string) (err error) {
	if err := os.MkdirAll(filepath.Dir(destZip), 0o755); err != nil {
		return fmt.Errorf("failed to create backup location: %w", err)
	}

	out, err := os.Create(destZip)
	if err != nil {
		return fmt.Errorf("failed to create artifact %s: %w", destZip, err)
	}

	defer func() {
		if err != nil {
			out.Close()
			os.Remove(destZip)
		}
	}()

	zw := zip.NewWriter(out)

	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if info.IsDir() {
			// Keep empty directories so restore recreates the exact tree.
			_, err := zw.Create(rel + "/")
			return err
		}

		w, err := zw.Create(rel)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		return fmt.Errorf("failed to compress %s: %w", srcDir, err)
	}

	if err = zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize artifact: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("failed to flush artifact: %w", err)
	}
	return nil
}

// Extract unpacks zipPath into destDir and returns the relative paths of
// the files written. destDir is created fresh; on failure everything
// extracted so far is removed.
func (z *Zipper) Extract(zipPath, destDir string) (files []string, err error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact %s: %w", zipPath, err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create working directory: %w", err)
	}

	defer func() {
		if err != nil {
			os.RemoveAll(destDir)
		}
	}()

	for _, f := range r.File {
		target, terr := sanitizePath(destDir, f.Name)
		if terr != nil {
			return nil, terr
		}

		if f.FileInfo().IsDir() {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return nil, err
			}
			continue
		}

		if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, err
		}

		if err = extractFile(f, target); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
		files = append(files, f.Name)
	}

	return files, nil
}

// sanitizePath rejects zip entries that would escape destDir.
func sanitizePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("artifact entry %q escapes destination", name)
	}
	return target, nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}
