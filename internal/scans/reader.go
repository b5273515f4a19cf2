// Package scans reads package scan records out of a customer's working
// directory. The packing station (an independent, external system) drops
// one JSON document per scanned package under packages/; change detection
// and file watching belong to the upstream poller, not to this reader.
package scans

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pack-backend/internal/apperrors"
	"pack-backend/internal/models"
)

// PackagesSubdir is where the packing station writes scan records inside
// a customer working directory.
const PackagesSubdir = "packages"

type Reader struct{}

func NewReader() *Reader {
	return &Reader{}
}

// ReadWorkingDir returns every package scan record found under
// workingDir/packages, ordered by pack sequence. A missing packages
// directory means no packing activity yet and yields an empty slice.
// Individual malformed files are logged and skipped: one corrupt scan
// must not hide an entire customer's packing progress.
func (r *Reader) ReadWorkingDir(workingDir string) ([]models.Package, error) {
	dir := filepath.Join(workingDir, PackagesSubdir)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.IOFailure(err, "failed to read scan directory %s", dir)
	}

	var packages []models.Package
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		pkg, err := r.readFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			log.Printf("[Scans] Skipping malformed scan record %s: %v", entry.Name(), err)
			continue
		}
		packages = append(packages, pkg)
	}

	sort.Slice(packages, func(i, j int) bool {
		return packages[i].PackSeq < packages[j].PackSeq
	})
	return packages, nil
}

func (r *Reader) readFile(path string) (models.Package, error) {
	var pkg models.Package

	data, err := os.ReadFile(path)
	if err != nil {
		return pkg, err
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return pkg, err
	}
	return pkg, nil
}
