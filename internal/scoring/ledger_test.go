package scoring

import (
	"reflect"
	"testing"

	"github.com/kyoshitsu/saiten/internal/table"
)

func TestTable_ColumnOrder(t *testing.T) {
	rows := Build([]Identity{{Class: "2-1", Name: "山田 太郎", Email: "taro@example.jp"}}, DefaultConfig())
	tbl := Table(rows, FormIdentityColumns)

	if tbl.Columns[0] != ColClass || tbl.Columns[3] != ColAbsentFull {
		t.Errorf("unexpected leading columns: %v", tbl.Columns[:4])
	}
	if last := tbl.Columns[len(tbl.Columns)-1]; last != ColMailLine {
		t.Errorf("last column = %s, want %s", last, ColMailLine)
	}
	want := len(FormIdentityColumns) + len(InputColumns) + len(DerivedColumns)
	if len(tbl.Columns) != want {
		t.Errorf("column count = %d, want %d", len(tbl.Columns), want)
	}
	if got := tbl.Rows[0][ColReportStatus]; got != string(ReportPartlyWrong) {
		t.Errorf("report_status cell = %v", got)
	}
}

func TestParseTable_RoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	rows := Build([]Identity{
		{Class: "2-1", Timetable: "月", Time: "1限", StudentNo: "2024001", Name: "山田 太郎", Email: "taro@example.jp"},
	}, cfg)
	rows[0].AbsentFull = 2
	rows[0].PaizaDone = 20
	rows[0].AttitudePenalty = 1.5
	rows[0].FormSubmitCount = 12
	rows = Recompute(rows, cfg)

	parsed, stats := ParseTable(Table(rows, RegistryIdentityColumns), cfg)
	if stats.Coerced != 0 || stats.UnknownStatus != 0 {
		t.Errorf("stats = %+v, want zero", stats)
	}
	got := Recompute(parsed, cfg)
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, rows)
	}
}

func TestParseTable_Coercion(t *testing.T) {
	cfg := DefaultConfig()
	tbl := table.New(ColEmail, ColAbsentFull, ColPaizaDone, ColReportStatus, ColAttitudePenalty, ColTotal100)
	tbl.Append(" A@Example.jp ", "2", "abc", "完全完成", "", 99.0)
	tbl.Append("b@example.jp", 3.0, "12.0", "謎", "0.5", "x")

	rows, stats := ParseTable(tbl, cfg)
	if stats.Coerced != 1 {
		t.Errorf("Coerced = %d, want 1", stats.Coerced)
	}
	if stats.UnknownStatus != 1 {
		t.Errorf("UnknownStatus = %d, want 1 (謎)", stats.UnknownStatus)
	}

	a := rows[0]
	if a.Email != "a@example.jp" || a.AbsentFull != 2 || a.PaizaDone != 0 || a.ReportStatus != ReportComplete {
		t.Errorf("row a = %+v", a.Inputs)
	}
	// Columns absent from the sheet take defaults.
	if a.FinalStatus != cfg.Defaults.FinalStatus || a.SiteRequirementsTotal != cfg.Defaults.SiteRequirementsTotal {
		t.Errorf("missing columns should default: %+v", a.Inputs)
	}

	b := rows[1]
	if b.AbsentFull != 3 || b.PaizaDone != 12 || b.AttitudePenalty != 0.5 || b.ReportStatus != "謎" {
		t.Errorf("row b = %+v", b.Inputs)
	}
	if Compute(b.Inputs, cfg).ReportPoints20 != 0 {
		t.Error("unknown report status should score 0")
	}
}

func TestParseTable_BlankSiteTotal(t *testing.T) {
	cfg := DefaultConfig()
	tbl := table.New(ColEmail, ColSiteRequirementsDone, ColSiteRequirementsTotal)
	tbl.Append("a@example.jp", 4, nil)
	tbl.Append("b@example.jp", 4, "  ")
	tbl.Append("c@example.jp", 4, 5)

	rows, stats := ParseTable(tbl, cfg)
	if stats.Coerced != 0 {
		t.Errorf("Coerced = %d, want 0", stats.Coerced)
	}
	want := []int{cfg.Defaults.SiteRequirementsTotal, cfg.Defaults.SiteRequirementsTotal, 5}
	for i, r := range rows {
		if r.SiteRequirementsTotal != want[i] {
			t.Errorf("row %d site_requirements_total = %d, want %d", i, r.SiteRequirementsTotal, want[i])
		}
		if pts := Compute(r.Inputs, cfg).SitePoints20; pts > cfg.Learning.Site {
			t.Errorf("row %d site_points_20 = %v exceeds the weight %v", i, pts, cfg.Learning.Site)
		}
	}
}

func TestIdentityColumnsOf(t *testing.T) {
	tbl := table.New(ColEmail, "extra", ColStudentNo, ColClass)
	got := IdentityColumnsOf(tbl)
	want := []string{ColClass, ColStudentNo, ColEmail}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("IdentityColumnsOf() = %v, want %v", got, want)
	}
}
