package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/lifecycle/pkg/effect"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Recorder collects lifecycle events. Its Observe method is an
// effect.Observer.
type Recorder struct {
	events []effect.Event
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Observe records e.
func (r *Recorder) Observe(e effect.Event) {
	r.events = append(r.events, e)
}

// Events returns the recorded events in order.
func (r *Recorder) Events() []effect.Event {
	return r.events
}

// Count returns how many events of kind were recorded.
func (r *Recorder) Count(kind effect.EventKind) int {
	n := 0
	for _, e := range r.events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Kinds returns the kind of every recorded event, in order.
func (r *Recorder) Kinds() []effect.EventKind {
	out := make([]effect.EventKind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

// Reset drops every recorded event.
func (r *Recorder) Reset() {
	r.events = nil
}

// Trace converts the recorded events into a Trace.
func (r *Recorder) Trace() *Trace {
	return NewTrace(r.events)
}

// Trace is a serializable lifecycle event log. Instance ids are replaced
// by labels in order of first appearance, so traces from separate runs
// compare equal.
type Trace struct {
	Entries []TraceEntry `json:"entries"`
}

// TraceEntry is one event in a Trace.
type TraceEntry struct {
	Frame    uint64 `json:"frame"`
	Kind     string `json:"kind"`
	Instance string `json:"instance"`
	Mount    int    `json:"mount"`
	Reason   string `json:"reason,omitempty"`
	Count    int    `json:"count,omitempty"`
	Error    string `json:"error,omitempty"`
}

// NewTrace builds a trace from events.
func NewTrace(events []effect.Event) *Trace {
	labels := make(map[uint64]string)
	tr := &Trace{Entries: make([]TraceEntry, 0, len(events))}
	for _, e := range events {
		label, ok := labels[e.Instance]
		if !ok {
			label = fmt.Sprintf("instance#%d", len(labels))
			labels[e.Instance] = label
		}
		entry := TraceEntry{
			Frame:    e.Stamp.Frame,
			Kind:     e.Kind.String(),
			Instance: label,
			Mount:    e.MountID,
			Reason:   e.Reason,
			Count:    e.Count,
		}
		if e.Err != nil {
			entry.Error = e.Err.Error()
		}
		tr.Entries = append(tr.Entries, entry)
	}
	return tr
}

// MatchesFile compares this trace against a file. On mismatch it reports a
// diff and instructions for updating. When LIFECYCLE_UPDATE_TRACES=1 is
// set, the file is silently updated instead.
func (tr *Trace) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv("LIFECYCLE_UPDATE_TRACES") == "1" {
		if err := tr.UpdateFile(path); err != nil {
			t.Fatalf("failed to update trace: %v", err)
		}
		return
	}

	expected, err := loadTrace(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("trace file missing: %s\n\nTo create: LIFECYCLE_UPDATE_TRACES=1 go test -run %s", path, t.Name())
			return
		}
		t.Fatalf("failed to load trace: %v", err)
		return
	}

	if diff := tr.Diff(expected); diff != "" {
		t.Errorf("trace mismatch: %s (-expected +actual)\n%s\n\nTo update: LIFECYCLE_UPDATE_TRACES=1 go test -run %s", path, diff, t.Name())
	}
}

// UpdateFile writes this trace to path, creating directories as needed.
func (tr *Trace) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := tr.MarshalIndent()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a diff from other to this trace, or "" if they are equal.
func (tr *Trace) Diff(other *Trace) string {
	return cmp.Diff(other, tr)
}

// MarshalIndent encodes the trace as indented JSON.
func (tr *Trace) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func loadTrace(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tr Trace
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("invalid trace JSON: %w", err)
	}
	return &tr, nil
}
