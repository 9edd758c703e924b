// Package events provides the audit trail of a grading run.
//
// Each saiten invocation that is given an events file appends one JSON
// object per step (load, resolve, reconcile, export) to it. Every line of
// one invocation carries the same run id so a term's runs can be told apart.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kyoshitsu/saiten/internal/columns"
	"github.com/kyoshitsu/saiten/internal/submission"
)

// Event is one line of the audit log.
type Event struct {
	Timestamp string         `json:"ts"`
	Source    string         `json:"source"`
	RunID     string         `json:"run_id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Event types.
const (
	TypeLoad      = "load"
	TypeResolve   = "resolve"
	TypeOverride  = "override"
	TypeReconcile = "reconcile"
	TypeBuild     = "build"
	TypeRecompute = "recompute"
	TypeExport    = "export"
	TypeWarning   = "warning"
)

// Logger appends events to a JSONL file. A Logger with no path discards
// everything, so callers never need to check whether auditing is on.
type Logger struct {
	path  string
	runID string
	mu    sync.Mutex
	now   func() time.Time
}

// New returns a logger appending to path with a fresh run id. An empty
// path disables logging.
func New(path string) *Logger {
	return &Logger{path: path, runID: uuid.NewString(), now: time.Now}
}

// RunID returns the id stamped on every event of this logger.
func (l *Logger) RunID() string {
	return l.runID
}

// Enabled reports whether events are written anywhere.
func (l *Logger) Enabled() bool {
	return l != nil && l.path != ""
}

// Log writes one event.
func (l *Logger) Log(eventType string, payload map[string]any) error {
	if !l.Enabled() {
		return nil
	}
	event := Event{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Source:    "saiten",
		RunID:     l.runID,
		Type:      eventType,
		Payload:   payload,
	}
	return l.write(event)
}

func (l *Logger) write(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G302: audit log holds no secrets
	if err != nil {
		return fmt.Errorf("opening events file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Payload helpers for common event structures.

// LoadPayload creates a payload for load events.
func LoadPayload(path, sheet string, rows int, cols []string) map[string]any {
	p := map[string]any{
		"path":    path,
		"rows":    rows,
		"columns": cols,
	}
	if sheet != "" {
		p["sheet"] = sheet
	}
	return p
}

// ResolvePayload creates a payload for resolve and override events.
func ResolvePayload(m columns.RoleMap) map[string]any {
	p := make(map[string]any, len(columns.Roles)+1)
	for _, r := range columns.Roles {
		p[string(r)] = m.Get(r)
	}
	if len(m.QuizCols) > 0 {
		p["quiz_cols"] = m.QuizCols
	}
	return p
}

// ReconcilePayload creates a payload for submission reconciliation.
func ReconcilePayload(identities int, s submission.Stats) map[string]any {
	return map[string]any{
		"identities":    identities,
		"rows":          s.Rows,
		"no_identity":   s.NoIdentity,
		"bad_timestamp": s.BadTimestamp,
		"same_day":      s.SameDay,
		"clipped":       s.Clipped,
	}
}

// ExportPayload creates a payload for export events.
func ExportPayload(path string, students int) map[string]any {
	return map[string]any{
		"path":     path,
		"students": students,
	}
}

// WarningPayload creates a payload for warning events. count is the number
// of affected students when the warning is about specific students; the
// students themselves are never logged.
func WarningPayload(message string, count int) map[string]any {
	p := map[string]any{
		"message": message,
	}
	if count > 0 {
		p["count"] = count
	}
	return p
}
