package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kyoshitsu/saiten/internal/scoring"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadFile_TOML(t *testing.T) {
	path := writeFile(t, "scoring.toml", `
[attendance]
total_sessions = 14
gate_rate = 0.75

[grade_boundary]
S = 95.0
A = 85.0
B = 75.0
C = 65.0

[judgement]
pass_line = 50.0

[columns]
email = "アドレス"

[identity]
fold_width = true
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Attendance.TotalSessions != 14 || cfg.Attendance.GateRate != 0.75 {
		t.Errorf("attendance = %+v", cfg.Attendance)
	}
	// Untouched keys keep their defaults.
	if cfg.Attendance.MaxPoints != 30 || cfg.Learning.Site != 20 {
		t.Errorf("defaults lost: %+v %+v", cfg.Attendance, cfg.Learning)
	}
	if cfg.Defaults.ReportStatus != scoring.ReportPartlyWrong {
		t.Errorf("Defaults.ReportStatus = %q", cfg.Defaults.ReportStatus)
	}
	if cfg.GradeBoundary.C != 65 || cfg.PassLine() != 50 {
		t.Errorf("boundary C = %v, pass line = %v", cfg.GradeBoundary.C, cfg.PassLine())
	}
	if cfg.Columns.Email != "アドレス" || cfg.Columns.Class != "class" {
		t.Errorf("columns = %+v", cfg.Columns)
	}
	if !cfg.Identity.FoldWidth {
		t.Error("Identity.FoldWidth = false, want true")
	}
	if got := cfg.IdentityKey()("ＡＢＣ＠ＥＸ．ＪＰ"); got != "abc@ex.jp" {
		t.Errorf("IdentityKey() folded = %q", got)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "scoring.yaml", `
attendance:
  total_sessions: 15
  max_points: 30
  gate_rate: 0.6666666667
learning:
  paiza: 10
  site: 20
  form: 10
grade_boundary:
  S: 90
  A: 80
  B: 70
  C: 60
defaults:
  report_status: "完全完成"
  final_status: "未提出"
  site_requirements_total: 10
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Defaults.ReportStatus != scoring.ReportComplete || cfg.Defaults.FinalStatus != scoring.FinalMissing {
		t.Errorf("defaults = %+v", cfg.Defaults)
	}
	if cfg.Defaults.SiteRequirementsTotal != 10 {
		t.Errorf("site_requirements_total = %d", cfg.Defaults.SiteRequirementsTotal)
	}
	if cfg.Judgement.PassLine != nil {
		t.Errorf("pass_line should stay unset")
	}
	if cfg.PassLine() != 60 {
		t.Errorf("PassLine() = %v, want C boundary 60", cfg.PassLine())
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{"unsupported extension", "scoring.json", `{}`, ErrUnsupportedFormat},
		{"negative sessions", "a.toml", "[attendance]\ntotal_sessions = -1\n", ErrInvalid},
		{"gate above one", "b.toml", "[attendance]\ngate_rate = 1.5\n", ErrInvalid},
		{"negative weight", "c.yaml", "learning:\n  form: -1\n", ErrInvalid},
		{"boundaries not descending", "d.yaml", "grade_boundary:\n  A: 95\n", ErrInvalid},
		{"site total zero", "e.toml", "[defaults]\nsite_requirements_total = 0\n", ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, tt.file, tt.content)
			_, err := LoadFile(path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadFile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("LoadFile() error = %v, want ErrNotFound", err)
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	path := writeFile(t, "broken.toml", "[attendance\n")
	_, err := LoadFile(path)
	if err == nil || errors.Is(err, ErrInvalid) {
		t.Errorf("LoadFile() error = %v, want a parse error", err)
	}
}

func TestLoadColumnsFile(t *testing.T) {
	path := writeFile(t, "columns.toml", `
timestamp = "Timestamp"
student_no = "学籍"
quiz_cols = ["小テスト1", "小テスト2"]
`)

	hints, err := LoadColumnsFile(path)
	if err != nil {
		t.Fatalf("LoadColumnsFile() error = %v", err)
	}
	if hints.Timestamp != "Timestamp" || hints.StudentNo != "学籍" || len(hints.QuizCols) != 2 {
		t.Errorf("hints = %+v", hints)
	}

	cfg := Default()
	cfg.MergeHints(hints)
	if cfg.Columns.Timestamp != "Timestamp" || cfg.Columns.Email != "メール" {
		t.Errorf("merged = %+v", cfg.Columns)
	}
}

func TestDefault_Valid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}
