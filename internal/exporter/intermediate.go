package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mpgamer75/code-altice/internal/config"
	"github.com/mpgamer75/code-altice/internal/dataprocessing"
	apperrors "github.com/mpgamer75/code-altice/internal/errors"
)

// Section titles of the intermediate report
const (
	Separator        = "=================================================="
	HeaderSection    = "=== Encabezado ==="
	ReasonsSection   = "=== Razones de Fallo Únicas ==="
	ClientIPsSection = "=== IPs de Clientes Únicas ==="
	bulletPrefix     = "- "
	reportFileMode   = 0644
)

// IntermediateWriter writes one intermediate report per source file into a
// directory.
type IntermediateWriter struct {
	dir    string
	logger *slog.Logger
}

// NewIntermediateWriter creates a writer targeting dir
func NewIntermediateWriter(dir string, logger *slog.Logger) *IntermediateWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntermediateWriter{dir: dir, logger: logger}
}

// RenderIntermediate returns the intermediate report text for ex. All nine
// header fields are listed in order, absent ones as the placeholder.
func RenderIntermediate(ex dataprocessing.Extraction) string {
	var b strings.Builder

	b.WriteString(Separator + "\n\n")

	b.WriteString(HeaderSection + "\n")
	for _, field := range dataprocessing.HeaderFields {
		fmt.Fprintf(&b, "%s: %s\n", field, ex.Header.Value(field))
	}

	b.WriteString("\n" + ReasonsSection + "\n")
	for _, reason := range ex.Records.Reasons {
		b.WriteString(bulletPrefix + reason + "\n")
	}

	b.WriteString("\n" + ClientIPsSection + "\n")
	for _, ip := range ex.Records.IPs {
		b.WriteString(bulletPrefix + ip + "\n")
	}

	return b.String()
}

// Write renders ex and writes it to <dir>/<stem>_reporte.txt, replacing any
// existing report for the same stem. It returns the written path.
func (w *IntermediateWriter) Write(sourcePath string, ex dataprocessing.Extraction) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", apperrors.NewWriteIOError(w.dir, err)
	}

	outPath := filepath.Join(w.dir, config.IntermediateName(sourcePath))
	if err := os.WriteFile(outPath, []byte(RenderIntermediate(ex)), reportFileMode); err != nil {
		return "", apperrors.NewWriteIOError(outPath, err)
	}

	w.logger.Debug("Intermediate report written",
		slog.String("source", filepath.Base(sourcePath)),
		slog.String("path", outPath))
	return outPath, nil
}
