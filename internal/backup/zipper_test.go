package backup

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// listTree returns the relative paths of all files under root.
func listTree(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			rel, _ := filepath.Rel(root, path)
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	require.NoError(t, err)
	sort.Strings(files)
	return files
}

func TestCompressExtractRoundTrip(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "roster.xml"), "<panels/>")
	writeFile(t, filepath.Join(src, "packages", "scan_1.json"), `{"pack_seq":1}`)
	writeFile(t, filepath.Join(src, "packages", "scan_2.json"), `{"pack_seq":2}`)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty"), 0o755))

	zipPath := filepath.Join(t.TempDir(), "artifact.zip")
	z := NewZipper()
	require.NoError(t, z.Compress(src, zipPath))

	dest := filepath.Join(t.TempDir(), "restored")
	files, err := z.Extract(zipPath, dest)
	require.NoError(t, err)
	assert.Len(t, files, 3)

	// The restored file set is identical to the source tree.
	assert.Equal(t, listTree(t, src), listTree(t, dest))

	data, err := os.ReadFile(filepath.Join(dest, "packages", "scan_2.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"pack_seq":2}`, string(data))

	// Empty directories survive the round trip.
	info, err := os.Stat(filepath.Join(dest, "empty"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCompressMissingSourceLeavesNoArtifact(t *testing.T) {
	zipPath := filepath.Join(t.TempDir(), "artifact.zip")

	err := NewZipper().Compress(filepath.Join(t.TempDir(), "nope"), zipPath)
	require.Error(t, err)

	_, statErr := os.Stat(zipPath)
	assert.True(t, os.IsNotExist(statErr), "partial artifact must be removed")
}

func TestExtractMissingArtifact(t *testing.T) {
	_, err := NewZipper().Extract(filepath.Join(t.TempDir(), "gone.zip"), t.TempDir())
	assert.Error(t, err)
}

func TestExtractRejectsEscapingEntries(t *testing.T) {
	_, err := sanitizePath("/tmp/dest", "../outside.txt")
	assert.Error(t, err)
}
