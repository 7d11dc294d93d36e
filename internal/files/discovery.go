package files

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrDirectoryMissing is returned when a listed directory does not exist.
// Batch phases treat it as an empty listing, not a failure.
var ErrDirectoryMissing = errors.New("directory does not exist")

// SourceFile describes one file found by a directory scan.
// It is rebuilt on every scan and never cached.
type SourceFile struct {
	Path    string
	Name    string
	Stem    string
	Ext     string
	Size    int64
	ModTime time.Time
}

// Lister lists the files of a directory whose names satisfy match.
// Results are non-recursive and sorted by name.
type Lister interface {
	List(dir string, match func(name string) bool) ([]SourceFile, error)
}

// SupportedExtensions are the source formats picked up by the extraction phase
var SupportedExtensions = []string{".xls", ".xlsx", ".csv"}

// Discovery lists directories on the local filesystem
type Discovery struct{}

// NewDiscovery creates a new file discovery instance
func NewDiscovery() *Discovery {
	return &Discovery{}
}

// List implements Lister
func (d *Discovery) List(dir string, match func(name string) bool) ([]SourceFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrDirectoryMissing)
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []SourceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if match != nil && !match(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, NewSourceFile(filepath.Join(dir, name), info))
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// NewSourceFile builds a SourceFile for path. info may be nil.
func NewSourceFile(path string, info fs.FileInfo) SourceFile {
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	sf := SourceFile{
		Path: path,
		Name: name,
		Stem: strings.TrimSuffix(name, ext),
		Ext:  strings.ToLower(ext),
	}
	if info != nil {
		sf.Size = info.Size()
		sf.ModTime = info.ModTime()
	}
	return sf
}

// HasExtension returns a matcher for names ending in one of exts, case-insensitively
func HasExtension(exts ...string) func(string) bool {
	return func(name string) bool {
		ext := strings.ToLower(filepath.Ext(name))
		for _, e := range exts {
			if ext == strings.ToLower(e) {
				return true
			}
		}
		return false
	}
}

// HasSuffix returns a matcher for names ending in suffix
func HasSuffix(suffix string) func(string) bool {
	return func(name string) bool {
		return strings.HasSuffix(name, suffix)
	}
}

// FindSourceFiles lists the supported source files of dir
func FindSourceFiles(l Lister, dir string) ([]SourceFile, error) {
	return l.List(dir, HasExtension(SupportedExtensions...))
}

// FindBySuffix lists the files of dir whose name ends in suffix
func FindBySuffix(l Lister, dir, suffix string) ([]SourceFile, error) {
	return l.List(dir, HasSuffix(suffix))
}

// IsMissingDirectory reports whether err means the listed directory is absent
func IsMissingDirectory(err error) bool {
	return errors.Is(err, ErrDirectoryMissing)
}
