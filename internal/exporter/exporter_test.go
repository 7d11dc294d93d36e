package exporter

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mpgamer75/code-altice/internal/config"
	"github.com/mpgamer75/code-altice/internal/dataprocessing"
	apperrors "github.com/mpgamer75/code-altice/internal/errors"
)

func TestRenderIntermediateLayout(t *testing.T) {
	header := dataprocessing.ScanHeaderLines([]string{"Report Name : Login Failures", "Period : Q1"}, dataprocessing.MatchLast)
	ex := dataprocessing.Extraction{
		Header: header,
		Records: dataprocessing.RecordSet{
			Reasons: []string{"timeout"},
			IPs:     []string{"a", "b"},
		},
	}

	want := strings.Repeat("=", 50) + "\n\n" +
		"=== Encabezado ===\n" +
		"Report Name: Login Failures\n" +
		"Period: Q1\n" +
		"Domain Name: <no encontrado>\n" +
		"Annotation: <no encontrado>\n" +
		"Number of Records: <no encontrado>\n" +
		"Object Name(s): <no encontrado>\n" +
		"Business Hour Setting: <no encontrado>\n" +
		"Filter: <no encontrado>\n" +
		"Generated At: <no encontrado>\n" +
		"\n=== Razones de Fallo Únicas ===\n" +
		"- timeout\n" +
		"\n=== IPs de Clientes Únicas ===\n" +
		"- a\n" +
		"- b\n"

	assert.Equal(t, want, RenderIntermediate(ex))
}

func TestRenderIntermediateEmpty(t *testing.T) {
	out := RenderIntermediate(dataprocessing.EmptyExtraction())

	assert.Equal(t, len(dataprocessing.HeaderFields), strings.Count(out, dataprocessing.Placeholder))
	assert.True(t, strings.HasSuffix(out, ReasonsSection+"\n\n"+ClientIPsSection+"\n"))
}

func TestIntermediateWriterOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := NewIntermediateWriter(dir, nil)

	first := dataprocessing.Extraction{Records: dataprocessing.RecordSet{IPs: []string{"1.1.1.1", "9.9.9.9"}}}
	path, err := w.Write("/in/login.failures.xlsx", first)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "login.failures_reporte.txt"), path)

	second := dataprocessing.Extraction{Records: dataprocessing.RecordSet{IPs: []string{"2.2.2.2"}}}
	_, err = w.Write("/in/login.failures.csv", second)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- 2.2.2.2\n")
	assert.NotContains(t, string(data), "9.9.9.9")
}

func TestIntermediateWriterFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	path, err := NewIntermediateWriter(blocker, nil).Write("a.csv", dataprocessing.EmptyExtraction())
	require.Error(t, err)
	assert.Empty(t, path)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeWriteIO))
}

func TestFinalAssembler(t *testing.T) {
	root := t.TempDir()
	intermediate := filepath.Join(root, "login_reporte.txt")
	require.NoError(t, os.WriteFile(intermediate, []byte("CONTENT\n"), 0644))

	out := filepath.Join(root, "rapport2")
	a := NewFinalAssembler(out, DefaultTemplates(), nil)

	path, err := a.Assemble(intermediate)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "login_reporte_final.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultPreamble+"CONTENT\n\n"+DefaultPostamble, string(data))
	assert.True(t, strings.HasPrefix(string(data), "Cordial Saludo\n\n"))

	_, err = a.Assemble(filepath.Join(root, "missing_reporte.txt"))
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestFinalAssemblerReadFailure(t *testing.T) {
	root := t.TempDir()
	unreadable := filepath.Join(root, "dir_reporte.txt")
	require.NoError(t, os.Mkdir(unreadable, 0755))

	path, err := NewFinalAssembler(filepath.Join(root, "out"), DefaultTemplates(), nil).Assemble(unreadable)
	require.Error(t, err)
	assert.Empty(t, path)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExtractionIO))
	assert.NoFileExists(t, filepath.Join(root, "out", "dir_reporte_final.txt"))
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	pre := filepath.Join(dir, "pre.txt")
	require.NoError(t, os.WriteFile(pre, []byte("Hello\n"), 0644))

	tpl, err := LoadTemplates(config.TemplatesConfig{PreambleFile: pre})
	require.NoError(t, err)
	assert.Equal(t, "Hello\n", tpl.Preamble)
	assert.Equal(t, DefaultPostamble, tpl.Postamble)
	assert.Equal(t, "Hello\nX\n"+DefaultPostamble, tpl.Compose("X"))

	_, err = LoadTemplates(config.TemplatesConfig{PostambleFile: filepath.Join(dir, "none.txt")})
	assert.Error(t, err)
}

// A spreadsheet run end to end through extraction, intermediate and final
// stages, twice, to check the output is stable.
func TestEndToEndSpreadsheet(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "login.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(sheet, "A1", "Report Name : Login Failures"))
	for i, ip := range []string{"b", "a", "a"} {
		row := dataprocessing.DataStartRow + i
		require.NoError(t, f.SetCellValue(sheet, "B"+strconv.Itoa(row), ip))
		require.NoError(t, f.SetCellValue(sheet, "G"+strconv.Itoa(row), "timeout"))
	}
	require.NoError(t, f.SaveAs(src))
	require.NoError(t, f.Close())

	d := dataprocessing.NewDefaultDispatcher(dataprocessing.MatchLast, dataprocessing.DispatcherOptions{})
	w := NewIntermediateWriter(filepath.Join(root, "reports"), nil)

	ex, err := d.Extract(context.Background(), src)
	require.NoError(t, err)
	inter, err := w.Write(src, ex)
	require.NoError(t, err)
	firstBytes, err := os.ReadFile(inter)
	require.NoError(t, err)

	ex, err = d.Extract(context.Background(), src)
	require.NoError(t, err)
	_, err = w.Write(src, ex)
	require.NoError(t, err)
	secondBytes, err := os.ReadFile(inter)
	require.NoError(t, err)
	assert.Equal(t, firstBytes, secondBytes)

	final, err := NewFinalAssembler(filepath.Join(root, "rapport2"), DefaultTemplates(), nil).Assemble(inter)
	require.NoError(t, err)
	data, err := os.ReadFile(final)
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, DefaultPreamble))
	assert.True(t, strings.HasSuffix(text, DefaultPostamble))
	assert.Contains(t, text, "Report Name: Login Failures\n")
	assert.Contains(t, text, ReasonsSection+"\n- timeout\n")
	assert.Contains(t, text, ClientIPsSection+"\n- a\n- b\n")
}
