package operations

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mpgamer75/code-altice/internal/dataprocessing"
	"github.com/mpgamer75/code-altice/internal/events"
	"github.com/mpgamer75/code-altice/internal/exporter"
)

type dirs struct {
	in, tmp, out string
}

func newDirs(t *testing.T) dirs {
	t.Helper()
	root := t.TempDir()
	d := dirs{
		in:  filepath.Join(root, "xls_folder"),
		tmp: filepath.Join(root, "reports"),
		out: filepath.Join(root, "rapport2"),
	}
	require.NoError(t, os.MkdirAll(d.in, 0755))
	return d
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeAuditWorkbook(t *testing.T, dir, name string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Report Name : Login Failures"))
	for i, ip := range []string{"b", "a", "a"} {
		row := dataprocessing.DataStartRow + i
		ipCell, _ := excelize.CoordinatesToCellName(2, row)
		reasonCell, _ := excelize.CoordinatesToCellName(7, row)
		require.NoError(t, f.SetCellValue(sheet, ipCell, ip))
		require.NoError(t, f.SetCellValue(sheet, reasonCell, "timeout"))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func listNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

func newTestOrchestrator(tmp string, rec *events.Recorder) *Orchestrator {
	return NewOrchestrator(Options{TempDir: tmp, Emitter: rec})
}

func TestExtractPhaseMissingDirectory(t *testing.T) {
	rec := &events.Recorder{}
	o := newTestOrchestrator(t.TempDir(), rec)

	res := o.ExtractPhase(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Empty(t, res.Processed)
	assert.Empty(t, res.Failed)
	assert.True(t, res.DirMissing)
	assert.Equal(t, 1, rec.Count(events.LevelError))
}

func TestExtractPhase(t *testing.T) {
	d := newDirs(t)
	writeAuditWorkbook(t, d.in, "login.xlsx")
	writeFile(t, d.in, "export.csv", "Client IP,Reason\n10.0.0.5,locked\n10.0.0.1,locked\n")
	writeFile(t, d.in, "broken.xlsx", "not a workbook")
	writeFile(t, d.in, "notes.txt", "ignored by the listing")

	rec := &events.Recorder{}
	res := newTestOrchestrator(d.tmp, rec).ExtractPhase(context.Background(), d.in)

	assert.Equal(t, []string{"broken.xlsx", "export.csv", "login.xlsx"}, res.Processed)
	assert.Empty(t, res.Failed)
	assert.Equal(t, []string{"broken_reporte.txt", "export_reporte.txt", "login_reporte.txt"}, listNames(t, d.tmp))

	data, err := os.ReadFile(filepath.Join(d.tmp, "export_reporte.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), exporter.ClientIPsSection+"\n- 10.0.0.1\n- 10.0.0.5\n")

	broken, err := os.ReadFile(filepath.Join(d.tmp, "broken_reporte.txt"))
	require.NoError(t, err)
	assert.Equal(t, exporter.RenderIntermediate(dataprocessing.EmptyExtraction()), string(broken))
	assert.GreaterOrEqual(t, rec.Count(events.LevelError), 1)
}

func TestExtractPhaseWriteFailureContinues(t *testing.T) {
	d := newDirs(t)
	writeFile(t, d.in, "a.csv", "Client IP,Reason\n1.1.1.1,x\n")
	writeFile(t, d.in, "b.csv", "Client IP,Reason\n2.2.2.2,y\n")
	blocked := writeFile(t, t.TempDir(), "reports", "a file, not a directory")

	res := newTestOrchestrator(blocked, &events.Recorder{}).ExtractPhase(context.Background(), d.in)
	assert.Empty(t, res.Processed)
	assert.Equal(t, []string{"a.csv", "b.csv"}, res.Failed)
	require.Len(t, res.Outcomes, 2)
	assert.Error(t, res.Outcomes[1].Err)
}

func TestExtractFileUnsupportedExtension(t *testing.T) {
	d := newDirs(t)
	txt := writeFile(t, d.in, "notes.txt", "Report Name : ignored\n")

	rec := &events.Recorder{}
	outcome := newTestOrchestrator(d.tmp, rec).ExtractFile(context.Background(), txt, d.tmp)
	require.True(t, outcome.Succeeded())
	assert.Equal(t, filepath.Join(d.tmp, "notes_reporte.txt"), outcome.Output)
	assert.Equal(t, 1, rec.Count(events.LevelWarning))

	data, err := os.ReadFile(outcome.Output)
	require.NoError(t, err)
	text := string(data)
	assert.Equal(t, len(dataprocessing.HeaderFields), strings.Count(text, dataprocessing.Placeholder))
	assert.True(t, strings.HasSuffix(text, exporter.ReasonsSection+"\n\n"+exporter.ClientIPsSection+"\n"))
}

func TestExtractPhaseCancelledBetweenFiles(t *testing.T) {
	d := newDirs(t)
	writeFile(t, d.in, "a.csv", "Client IP,Reason\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := newTestOrchestrator(d.tmp, &events.Recorder{}).ExtractPhase(ctx, d.in)
	assert.True(t, res.Cancelled)
	assert.Empty(t, res.Processed)
	assert.Empty(t, listNames(t, d.tmp))
}

func TestFinalizePhaseMissingDirectory(t *testing.T) {
	o := newTestOrchestrator("", &events.Recorder{})
	res := o.FinalizePhase(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())
	assert.True(t, res.DirMissing)
	assert.Empty(t, res.Processed)
	assert.Empty(t, res.Failed)
}

func TestFinalizePhase(t *testing.T) {
	d := newDirs(t)
	require.NoError(t, os.MkdirAll(d.tmp, 0755))
	writeFile(t, d.tmp, "a_reporte.txt", "A\n")
	writeFile(t, d.tmp, "b_reporte.txt", "B\n")
	writeFile(t, d.tmp, "unrelated.txt", "keep me")

	res := newTestOrchestrator(d.tmp, &events.Recorder{}).FinalizePhase(context.Background(), d.tmp, d.out)
	assert.Equal(t, []string{"a_reporte_final.txt", "b_reporte_final.txt"}, res.Processed)
	assert.Empty(t, res.Failed)
	assert.Equal(t, []string{"unrelated.txt"}, listNames(t, d.tmp))

	data, err := os.ReadFile(filepath.Join(d.out, "a_reporte_final.txt"))
	require.NoError(t, err)
	assert.Equal(t, exporter.DefaultPreamble+"A\n\n"+exporter.DefaultPostamble, string(data))
}

func TestFinalizePhaseCleansTempWhenAllFail(t *testing.T) {
	d := newDirs(t)
	require.NoError(t, os.MkdirAll(d.tmp, 0755))
	writeFile(t, d.tmp, "a_reporte.txt", "A\n")
	writeFile(t, d.tmp, "b_reporte.txt", "B\n")
	blockedOut := writeFile(t, t.TempDir(), "rapport2", "not a directory")

	rec := &events.Recorder{}
	res := newTestOrchestrator(d.tmp, rec).FinalizePhase(context.Background(), d.tmp, blockedOut)
	assert.Empty(t, res.Processed)
	assert.Equal(t, []string{"a_reporte.txt", "b_reporte.txt"}, res.Failed)
	assert.Empty(t, listNames(t, d.tmp))
	assert.Equal(t, 2, rec.Count(events.LevelError))
}

func TestFinalizePhaseKeepsFailedWhenConfigured(t *testing.T) {
	d := newDirs(t)
	require.NoError(t, os.MkdirAll(d.tmp, 0755))
	writeFile(t, d.tmp, "a_reporte.txt", "A\n")
	blockedOut := writeFile(t, t.TempDir(), "rapport2", "not a directory")

	o := NewOrchestrator(Options{TempDir: d.tmp, KeepFailedIntermediates: true})
	res := o.FinalizePhase(context.Background(), d.tmp, blockedOut)
	assert.Equal(t, []string{"a_reporte.txt"}, res.Failed)
	assert.Equal(t, []string{"a_reporte.txt"}, listNames(t, d.tmp))
}

func TestRun(t *testing.T) {
	d := newDirs(t)
	writeAuditWorkbook(t, d.in, "login.xlsx")
	writeFile(t, d.in, "export.csv", "Client IP,Reason\n1.1.1.1,x\n")

	rec := &events.Recorder{}
	res := newTestOrchestrator(d.tmp, rec).Run(context.Background(), d.in, d.tmp, d.out)

	assert.Equal(t, []string{"export_reporte_final.txt", "login_reporte_final.txt"}, res.Processed)
	assert.Empty(t, res.Failed)
	assert.Greater(t, res.Duration.Nanoseconds(), int64(0))
	assert.Empty(t, listNames(t, d.tmp))

	data, err := os.ReadFile(filepath.Join(d.out, "login_reporte_final.txt"))
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, exporter.DefaultPreamble))
	assert.Contains(t, text, "Report Name: Login Failures\n")
	assert.Contains(t, text, exporter.ReasonsSection+"\n- timeout\n")
	assert.Contains(t, text, exporter.ClientIPsSection+"\n- a\n- b\n")
	assert.True(t, strings.HasSuffix(text, exporter.DefaultPostamble))
}

func TestRunSkipsFinalizationWhenNothingExtracted(t *testing.T) {
	d := newDirs(t)
	require.NoError(t, os.MkdirAll(d.tmp, 0755))
	writeFile(t, d.tmp, "old_reporte.txt", "stale")

	res := newTestOrchestrator(d.tmp, &events.Recorder{}).Run(context.Background(), d.in, d.tmp, d.out)
	assert.Empty(t, res.Processed)
	assert.Empty(t, res.Failed)
	assert.Equal(t, []string{"old_reporte.txt"}, listNames(t, d.tmp))
	assert.Empty(t, listNames(t, d.out))
}

func TestRunAggregatesFailures(t *testing.T) {
	d := newDirs(t)
	writeFile(t, d.in, "a.csv", "Client IP,Reason\n1.1.1.1,x\n")
	blockedOut := writeFile(t, t.TempDir(), "rapport2", "not a directory")

	res := newTestOrchestrator(d.tmp, &events.Recorder{}).Run(context.Background(), d.in, d.tmp, blockedOut)
	assert.Empty(t, res.Processed)
	assert.Equal(t, []string{"a_reporte.txt"}, res.Failed)
}
