package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupWorkspace points the global flags at a fresh workspace and loads the
// application
func setupWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	inputDir = filepath.Join(root, "xls_folder")
	tempDir = filepath.Join(root, "reports")
	outputDir = filepath.Join(root, "rapport2")
	logFile = filepath.Join(root, "logs", "secreport.log")
	logLevel = "debug"
	t.Cleanup(func() {
		_ = closeApp(context.Background())
		inputDir, tempDir, outputDir, logFile, logLevel = "", "", "", "", ""
		runStrict = false
	})

	require.NoError(t, os.MkdirAll(inputDir, 0755))
	require.NoError(t, loadApp())
	return root
}

func newTestCmd() (*cobra.Command, *bytes.Buffer) {
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func writeExport(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(inputDir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRunCommand(t *testing.T) {
	setupWorkspace(t)
	writeExport(t, "audit.csv", "Client IP,Reason\n10.0.0.1,bad password\n")

	cmd, out := newTestCmd()
	require.NoError(t, runRun(cmd, nil))

	assert.Contains(t, out.String(), "Processed (1):")
	assert.Contains(t, out.String(), "audit_reporte_final.txt")
	assert.FileExists(t, filepath.Join(outputDir, "audit_reporte_final.txt"))
}

func TestPhasesSeparately(t *testing.T) {
	setupWorkspace(t)
	writeExport(t, "audit.csv", "Client IP,Reason\n10.0.0.1,bad password\n")

	cmd, out := newTestCmd()
	require.NoError(t, runExtract(cmd, nil))
	assert.FileExists(t, filepath.Join(tempDir, "audit_reporte.txt"))

	out.Reset()
	require.NoError(t, runStatus(cmd, nil))
	assert.Contains(t, out.String(), "Información Extraída")

	out.Reset()
	require.NoError(t, runFinalize(cmd, nil))
	assert.FileExists(t, filepath.Join(outputDir, "audit_reporte_final.txt"))
	assert.NoFileExists(t, filepath.Join(tempDir, "audit_reporte.txt"))

	out.Reset()
	require.NoError(t, runPreview(cmd, []string{"audit.csv"}))
	assert.Contains(t, out.String(), "10.0.0.1")
}

func TestExtractExplicitFile(t *testing.T) {
	root := setupWorkspace(t)
	notes := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("hello"), 0644))

	cmd, out := newTestCmd()
	require.NoError(t, runExtract(cmd, []string{notes}))
	assert.Contains(t, out.String(), "Processed (1):")
	assert.FileExists(t, filepath.Join(tempDir, "notes_reporte.txt"))
}

func TestRunStrict(t *testing.T) {
	setupWorkspace(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(tempDir), 0755))
	// A file where the temp folder should be makes every write fail
	require.NoError(t, os.WriteFile(tempDir, []byte("x"), 0644))
	writeExport(t, "audit.csv", "Client IP,Reason\n10.0.0.1,bad\n")

	runStrict = true
	cmd, out := newTestCmd()
	err := runRun(cmd, nil)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Failed (1):")
}

func TestImportAndRemove(t *testing.T) {
	root := setupWorkspace(t)
	src := filepath.Join(root, "incoming.xlsx")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0644))

	cmd, out := newTestCmd()
	require.NoError(t, runImport(cmd, []string{src}))
	assert.FileExists(t, filepath.Join(inputDir, "incoming.xlsx"))
	assert.Contains(t, out.String(), "Imported")

	require.NoError(t, runRemove(cmd, []string{"incoming.xlsx"}))
	assert.NoFileExists(t, filepath.Join(inputDir, "incoming.xlsx"))

	assert.Error(t, runRemove(cmd, []string{"incoming.xlsx"}))
}

func TestStatusEmpty(t *testing.T) {
	setupWorkspace(t)
	cmd, out := newTestCmd()
	require.NoError(t, runStatus(cmd, nil))
	assert.Contains(t, out.String(), "No export files")
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"extract", "finalize", "run", "serve", "status", "preview", "import", "remove"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}
