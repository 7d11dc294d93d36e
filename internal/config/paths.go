package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Artifact naming. Every artifact is correlated to its source by stem.
const (
	IntermediateSuffix = "_reporte.txt"
	FinalSuffix        = "_final.txt"
)

// Paths contains the resolved working directories of the application.
// This is the single source of truth for artifact locations.
type Paths struct {
	InputDir  string
	TempDir   string
	OutputDir string
	LogsDir   string
}

// GetPaths resolves the configured directories. Relative paths are kept
// relative to the current working directory, as the batch tool is expected
// to run next to its folders.
func (c *Config) GetPaths() (*Paths, error) {
	resolve := func(p string) (string, error) {
		if p == "" || filepath.IsAbs(p) {
			return p, nil
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("failed to resolve path %s: %w", p, err)
		}
		return abs, nil
	}

	in, err := resolve(c.Paths.InputDir)
	if err != nil {
		return nil, err
	}
	tmp, err := resolve(c.Paths.TempDir)
	if err != nil {
		return nil, err
	}
	out, err := resolve(c.Paths.OutputDir)
	if err != nil {
		return nil, err
	}
	logs, err := resolve(c.Paths.LogsDir)
	if err != nil {
		return nil, err
	}

	return &Paths{InputDir: in, TempDir: tmp, OutputDir: out, LogsDir: logs}, nil
}

// EnsureDirectories creates the input, temp and output directories if they
// don't exist.
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()

	for _, dir := range []string{p.InputDir, p.TempDir, p.OutputDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// Stem returns a file name without its directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// IntermediateName returns the intermediate artifact name for a source file.
func IntermediateName(sourcePath string) string {
	return Stem(sourcePath) + IntermediateSuffix
}

// FinalName returns the final artifact name for an intermediate artifact.
// "login_reporte.txt" becomes "login_reporte_final.txt".
func FinalName(intermediatePath string) string {
	return Stem(intermediatePath) + FinalSuffix
}

// GetIntermediatePath returns the intermediate artifact path for a source file
func (p *Paths) GetIntermediatePath(sourcePath string) string {
	return filepath.Join(p.TempDir, IntermediateName(sourcePath))
}

// GetFinalPath returns the final artifact path for a source file
func (p *Paths) GetFinalPath(sourcePath string) string {
	return filepath.Join(p.OutputDir, FinalName(IntermediateName(sourcePath)))
}

// GetInputPath returns the path of a file inside the input directory
func (p *Paths) GetInputPath(filename string) string {
	return filepath.Join(p.InputDir, filepath.Base(filename))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
