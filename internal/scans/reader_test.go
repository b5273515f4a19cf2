package scans

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScan(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestReadWorkingDir(t *testing.T) {
	workDir := t.TempDir()
	pkgDir := filepath.Join(workDir, PackagesSubdir)

	writeScan(t, pkgDir, "scan_2.json",
		`{"pack_seq":2,"part_ids":["22222"],"package_info":{"quantity":1,"weight":4.5},"timestamp":"2026-03-02T09:00:00+08:00"}`)
	writeScan(t, pkgDir, "scan_1.json",
		`{"pack_seq":1,"part_ids":["11111","33333"],"package_info":{"quantity":2,"weight":9.0},"timestamp":"2026-03-01T09:00:00+08:00"}`)

	packages, err := NewReader().ReadWorkingDir(workDir)
	require.NoError(t, err)
	require.Len(t, packages, 2)

	// Ordered by pack sequence regardless of directory order.
	assert.Equal(t, 1, packages[0].PackSeq)
	assert.Equal(t, []string{"11111", "33333"}, packages[0].PartIDs)
	assert.Equal(t, 2, packages[1].PackSeq)
	assert.Equal(t, 4.5, packages[1].PackageInfo.Weight)
}

func TestReadWorkingDirMissingPackagesDir(t *testing.T) {
	packages, err := NewReader().ReadWorkingDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, packages)
}

func TestReadWorkingDirSkipsMalformedAndForeignFiles(t *testing.T) {
	workDir := t.TempDir()
	pkgDir := filepath.Join(workDir, PackagesSubdir)

	writeScan(t, pkgDir, "ok.json", `{"pack_seq":5,"part_ids":["55555"]}`)
	writeScan(t, pkgDir, "broken.json", `{"pack_seq": nope`)
	writeScan(t, pkgDir, "notes.txt", `not a scan record`)

	packages, err := NewReader().ReadWorkingDir(workDir)
	require.NoError(t, err)
	require.Len(t, packages, 1)
	assert.Equal(t, 5, packages[0].PackSeq)
}
