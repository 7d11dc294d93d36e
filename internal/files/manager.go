package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mpgamer75/code-altice/internal/config"
	apperrors "github.com/mpgamer75/code-altice/internal/errors"
)

// File status labels, derived from which artifacts exist on disk
const (
	StatusReady     = "Listo"
	StatusExtracted = "Información Extraída"
	StatusFinalized = "Reporte Final Generado"
)

// FileStatus is one row of the status table
type FileStatus struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	Size         int64  `json:"size"`
	Intermediate string `json:"intermediate,omitempty"`
	Final        string `json:"final,omitempty"`
}

// Manager manages the source files of the input directory and answers
// questions about their artifacts.
type Manager struct {
	paths  *config.Paths
	lister Lister
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, lister Lister, logger *slog.Logger) *Manager {
	if lister == nil {
		lister = NewDiscovery()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		paths:  paths,
		lister: lister,
		logger: logger.With(slog.String("component", "files.manager")),
	}
}

// Import copies the file at src into the input directory and returns the
// new path. Unsupported extensions are rejected.
func (m *Manager) Import(src string) (string, error) {
	f, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.NewNotFoundError(src)
		}
		return "", fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	return m.Save(filepath.Base(src), f)
}

// Save writes r into the input directory under name, replacing any file of
// the same name.
func (m *Manager) Save(name string, r io.Reader) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if !HasExtension(SupportedExtensions...)(name) {
		return "", apperrors.NewValidationError(fmt.Sprintf("unsupported file type: %s", name)).
			WithContext("supported", SupportedExtensions)
	}

	if err := os.MkdirAll(m.paths.InputDir, 0755); err != nil {
		return "", apperrors.NewWriteIOError(m.paths.InputDir, err)
	}

	dst := m.paths.GetInputPath(name)
	out, err := os.Create(dst)
	if err != nil {
		return "", apperrors.NewWriteIOError(dst, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return "", apperrors.NewWriteIOError(dst, err)
	}
	if err := out.Close(); err != nil {
		return "", apperrors.NewWriteIOError(dst, err)
	}

	m.logger.Info("File imported", slog.String("file", name), slog.String("path", dst))
	return dst, nil
}

// Remove deletes a source file from the input directory. Its artifacts are
// left alone.
func (m *Manager) Remove(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	path := m.paths.GetInputPath(name)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return apperrors.NewNotFoundError(fmt.Sprintf("file %s", name))
		}
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}

	m.logger.Info("File removed", slog.String("file", name))
	return nil
}

// Status lists the supported source files with their pipeline status.
// A missing input directory yields an empty table.
func (m *Manager) Status() ([]FileStatus, error) {
	sources, err := FindSourceFiles(m.lister, m.paths.InputDir)
	if err != nil {
		if IsMissingDirectory(err) {
			return []FileStatus{}, nil
		}
		return nil, err
	}

	table := make([]FileStatus, 0, len(sources))
	for _, src := range sources {
		table = append(table, m.statusOf(src))
	}
	return table, nil
}

func (m *Manager) statusOf(src SourceFile) FileStatus {
	st := FileStatus{Name: src.Name, Status: StatusReady, Size: src.Size}

	if p := m.paths.GetIntermediatePath(src.Path); config.FileExists(p) {
		st.Intermediate = p
		st.Status = StatusExtracted
	}
	if p := m.paths.GetFinalPath(src.Path); config.FileExists(p) {
		st.Final = p
		st.Status = StatusFinalized
	}
	return st
}

// ReportPath returns the most advanced artifact for a source file: the
// final report if present, else the intermediate one.
func (m *Manager) ReportPath(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	st := m.statusOf(NewSourceFile(m.paths.GetInputPath(name), nil))
	switch {
	case st.Final != "":
		return st.Final, nil
	case st.Intermediate != "":
		return st.Intermediate, nil
	default:
		return "", apperrors.NewNotFoundError(fmt.Sprintf("report for %s", name))
	}
}

// Preview returns the content of the most advanced artifact for a source file
func (m *Manager) Preview(name string) (string, error) {
	path, err := m.ReportPath(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read report %s: %w", path, err)
	}
	return string(data), nil
}

// DeleteBySuffix removes every file of dir whose name ends in suffix. It
// attempts all of them and returns the names deleted plus the first error.
func DeleteBySuffix(l Lister, dir, suffix string) ([]string, error) {
	found, err := FindBySuffix(l, dir, suffix)
	if err != nil {
		if IsMissingDirectory(err) {
			return nil, nil
		}
		return nil, err
	}

	var deleted []string
	var firstErr error
	for _, f := range found {
		if err := os.Remove(f.Path); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to delete %s: %w", f.Name, err)
			}
			continue
		}
		deleted = append(deleted, f.Name)
	}
	return deleted, firstErr
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return apperrors.NewValidationError(fmt.Sprintf("invalid file name: %q", name))
	}
	return nil
}
