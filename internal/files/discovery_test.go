package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
}

func names(files []SourceFile) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Name)
	}
	return out
}

func TestFindSourceFiles(t *testing.T) {
	tests := []struct {
		name     string
		files    []string
		expected []string
	}{
		{
			name:     "supported extensions any case",
			files:    []string{"b.xlsx", "a.XLS", "c.csv"},
			expected: []string{"a.XLS", "b.xlsx", "c.csv"},
		},
		{
			name:     "others skipped",
			files:    []string{"notes.txt", "report.pdf", "data.csv"},
			expected: []string{"data.csv"},
		},
		{
			name:     "empty directory",
			files:    nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, dir, f)
			}
			require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.csv"), 0755))

			found, err := FindSourceFiles(NewDiscovery(), dir)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names(found))
		})
	}
}

func TestSourceFileFields(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "Login.Failures.XLSX")

	found, err := FindSourceFiles(NewDiscovery(), dir)
	require.NoError(t, err)
	require.Len(t, found, 1)

	f := found[0]
	assert.Equal(t, "Login.Failures", f.Stem)
	assert.Equal(t, ".xlsx", f.Ext)
	assert.Equal(t, int64(1), f.Size)
	assert.Equal(t, filepath.Join(dir, "Login.Failures.XLSX"), f.Path)
}

func TestListMissingDirectory(t *testing.T) {
	_, err := FindSourceFiles(NewDiscovery(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, IsMissingDirectory(err))
}

func TestFindBySuffix(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b_reporte.txt")
	touch(t, dir, "a_reporte.txt")
	touch(t, dir, "a_reporte_final.txt")
	touch(t, dir, "other.txt")

	found, err := FindBySuffix(NewDiscovery(), dir, "_reporte.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"a_reporte.txt", "b_reporte.txt"}, names(found))
}
