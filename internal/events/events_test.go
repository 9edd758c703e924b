package events

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kyoshitsu/saiten/internal/columns"
	"github.com/kyoshitsu/saiten/internal/submission"
)

func TestLogger_AppendsJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	l := New(path)
	l.now = func() time.Time { return time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC) }

	if err := l.Log(TypeLoad, LoadPayload("form.xlsx", "回答", 12, []string{"a", "b"})); err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	if err := l.Log(TypeReconcile, ReconcilePayload(3, submission.Stats{Rows: 12, SameDay: 2})); err != nil {
		t.Fatalf("Log() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var got []Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Event
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %q is not JSON: %v", sc.Text(), err)
		}
		got = append(got, e)
	}

	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].RunID == "" || got[0].RunID != got[1].RunID || got[0].RunID != l.RunID() {
		t.Errorf("run ids = %q, %q", got[0].RunID, got[1].RunID)
	}
	if got[0].Timestamp != "2025-04-10T09:00:00Z" || got[0].Source != "saiten" {
		t.Errorf("event = %+v", got[0])
	}
	if got[0].Payload["sheet"] != "回答" || got[1].Payload["same_day"] != float64(2) {
		t.Errorf("payloads = %v / %v", got[0].Payload, got[1].Payload)
	}
}

func TestLogger_Disabled(t *testing.T) {
	l := New("")
	if l.Enabled() {
		t.Error("logger without path should be disabled")
	}
	if err := l.Log(TypeBuild, nil); err != nil {
		t.Errorf("disabled Log() error = %v", err)
	}

	var nilLogger *Logger
	if err := nilLogger.Log(TypeBuild, nil); err != nil {
		t.Errorf("nil Log() error = %v", err)
	}
}

func TestNew_DistinctRunIDs(t *testing.T) {
	if New("").RunID() == New("").RunID() {
		t.Error("run ids should differ between loggers")
	}
}

func TestResolvePayload(t *testing.T) {
	p := ResolvePayload(columns.RoleMap{Email: "メール", QuizCols: []string{"Q1"}})
	if p["email"] != "メール" || p["timestamp"] != "" {
		t.Errorf("payload = %v", p)
	}
	if _, ok := p["quiz_cols"]; !ok {
		t.Error("quiz_cols missing")
	}
}

func TestWarningPayload(t *testing.T) {
	p := WarningPayload("3 identity(ies) in the log are not on the roster", 3)
	if p["count"] != 3 {
		t.Errorf("count = %v, want 3", p["count"])
	}
	if _, ok := WarningPayload("plain", 0)["count"]; ok {
		t.Error("count should be omitted when zero")
	}
}
