// Package events carries per-file structured events from the batch pipeline
// to whatever transport is listening: the log, a websocket hub, a test.
package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Level is the severity of an event
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Phase names used in events and metrics
const (
	PhaseExtraction   = "extraction"
	PhaseFinalization = "finalization"
	PhaseRun          = "run"
)

// Event is one structured message about a file or a phase
type Event struct {
	Level   Level     `json:"level"`
	Phase   string    `json:"phase,omitempty"`
	File    string    `json:"file,omitempty"`
	Message string    `json:"message"`
	Error   string    `json:"error,omitempty"`
	JobID   string    `json:"job_id,omitempty"`
	Time    time.Time `json:"time"`
}

// Emitter receives pipeline events. Implementations must be safe for
// concurrent use.
type Emitter interface {
	Emit(ctx context.Context, ev Event)
}

// EmitterFunc adapts a function to the Emitter interface
type EmitterFunc func(ctx context.Context, ev Event)

// Emit calls f(ctx, ev)
func (f EmitterFunc) Emit(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// Info builds an info event
func Info(phase, file, msg string) Event {
	return Event{Level: LevelInfo, Phase: phase, File: file, Message: msg, Time: time.Now()}
}

// Warn builds a warning event
func Warn(phase, file, msg string) Event {
	return Event{Level: LevelWarning, Phase: phase, File: file, Message: msg, Time: time.Now()}
}

// Error builds an error event carrying err's text
func Error(phase, file, msg string, err error) Event {
	ev := Event{Level: LevelError, Phase: phase, File: file, Message: msg, Time: time.Now()}
	if err != nil {
		ev.Error = err.Error()
	}
	return ev
}

// Nop discards every event
var Nop Emitter = EmitterFunc(func(context.Context, Event) {})

// SlogEmitter writes events to a slog.Logger
type SlogEmitter struct {
	logger *slog.Logger
}

// NewSlogEmitter creates an emitter backed by logger
func NewSlogEmitter(logger *slog.Logger) *SlogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogEmitter{logger: logger}
}

// Emit logs ev at the matching slog level
func (e *SlogEmitter) Emit(ctx context.Context, ev Event) {
	attrs := make([]slog.Attr, 0, 3)
	if ev.Phase != "" {
		attrs = append(attrs, slog.String("phase", ev.Phase))
	}
	if ev.File != "" {
		attrs = append(attrs, slog.String("file", ev.File))
	}
	if ev.Error != "" {
		attrs = append(attrs, slog.String("error", ev.Error))
	}

	level := slog.LevelInfo
	switch ev.Level {
	case LevelWarning:
		level = slog.LevelWarn
	case LevelError:
		level = slog.LevelError
	}
	e.logger.LogAttrs(ctx, level, ev.Message, attrs...)
}

// Multi fans an event out to several emitters in order. Nil entries are skipped.
func Multi(emitters ...Emitter) Emitter {
	list := make([]Emitter, 0, len(emitters))
	for _, e := range emitters {
		if e != nil {
			list = append(list, e)
		}
	}
	return EmitterFunc(func(ctx context.Context, ev Event) {
		for _, e := range list {
			e.Emit(ctx, ev)
		}
	})
}

// Recorder keeps every emitted event in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends ev
func (r *Recorder) Emit(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Count returns how many recorded events have the given level
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Level == level {
			n++
		}
	}
	return n
}
