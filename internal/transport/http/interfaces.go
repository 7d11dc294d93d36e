package http

import (
	"context"
	"io"

	"github.com/mpgamer75/code-altice/internal/files"
	"github.com/mpgamer75/code-altice/internal/operations"
)

// FileService is the part of files.Manager the handlers use
type FileService interface {
	Status() ([]files.FileStatus, error)
	Save(name string, r io.Reader) (string, error)
	Remove(name string) error
	Preview(name string) (string, error)
}

// JobService is the part of operations.JobQueue the handlers use
type JobService interface {
	Enqueue(ctx context.Context, kind operations.JobKind) (*operations.Job, error)
	GetJob(id string) (*operations.Job, error)
	ListJobs(filter operations.JobFilter) ([]*operations.Job, error)
	Cancel(id string) (*operations.Job, error)
}
