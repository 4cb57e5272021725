package logging

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event is a flattened log record captured by a Recorder.
type Event struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Fields  map[string]string
}

// Field returns the value recorded for key, or "".
func (e Event) Field(key string) string {
	return e.Fields[key]
}

// Recorder is an in-memory event sink. Wrap it with slog.New to inject it
// wherever a *slog.Logger is expected.
type Recorder struct {
	mu     *sync.Mutex
	events *[]Event
	attrs  []slog.Attr
	groups []string
}

// NewRecorder returns an empty recorder accepting every level.
func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}, events: &[]Event{}}
}

// Logger wraps the recorder in a slog.Logger.
func (r *Recorder) Logger() *slog.Logger {
	return slog.New(r)
}

// Events returns a snapshot of captured events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), (*r.events)...)
}

// ByEventType returns captured events whose event_type field matches.
func (r *Recorder) ByEventType(eventType string) []Event {
	var matched []Event
	for _, evt := range r.Events() {
		if evt.Field(FieldEventType) == eventType {
			matched = append(matched, evt)
		}
	}
	return matched
}

func (r *Recorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *Recorder) Handle(_ context.Context, record slog.Record) error {
	kvs := make([]kv, 0, record.NumAttrs()+len(r.attrs))
	flattenAttrs(&kvs, r.groups, r.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, r.groups, attr)
		return true
	})
	fields := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		fields[kv.key] = plainValue(kv.value)
	}
	r.mu.Lock()
	*r.events = append(*r.events, Event{Time: record.Time, Level: record.Level, Message: record.Message, Fields: fields})
	r.mu.Unlock()
	return nil
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *r
	clone.attrs = append(append([]slog.Attr(nil), r.attrs...), attrs...)
	return &clone
}

func (r *Recorder) WithGroup(name string) slog.Handler {
	clone := *r
	clone.groups = append(append([]string(nil), r.groups...), name)
	return &clone
}
