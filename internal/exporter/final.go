package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mpgamer75/code-altice/internal/config"
	apperrors "github.com/mpgamer75/code-altice/internal/errors"
)

// FinalAssembler turns intermediate reports into final notifications
type FinalAssembler struct {
	outputDir string
	templates Templates
	logger    *slog.Logger
}

// NewFinalAssembler creates an assembler writing into outputDir
func NewFinalAssembler(outputDir string, templates Templates, logger *slog.Logger) *FinalAssembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FinalAssembler{outputDir: outputDir, templates: templates, logger: logger}
}

// Assemble reads an intermediate report and writes
// <outputDir>/<intermediate-stem>_final.txt. No substitution is done on the
// content. It returns the written path.
func (a *FinalAssembler) Assemble(intermediatePath string) (string, error) {
	content, err := os.ReadFile(intermediatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NewNotFoundError(fmt.Sprintf("intermediate report %s", filepath.Base(intermediatePath)))
		}
		return "", apperrors.NewExtractionIOError(intermediatePath, err)
	}

	if err := os.MkdirAll(a.outputDir, 0755); err != nil {
		return "", apperrors.NewWriteIOError(a.outputDir, err)
	}

	outPath := filepath.Join(a.outputDir, config.FinalName(intermediatePath))
	if err := os.WriteFile(outPath, []byte(a.templates.Compose(string(content))), reportFileMode); err != nil {
		return "", apperrors.NewWriteIOError(outPath, err)
	}

	a.logger.Debug("Final report written",
		slog.String("intermediate", filepath.Base(intermediatePath)),
		slog.String("path", outPath))
	return outPath, nil
}
