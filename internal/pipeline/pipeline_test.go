package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kyoshitsu/saiten/internal/columns"
	"github.com/kyoshitsu/saiten/internal/config"
	"github.com/kyoshitsu/saiten/internal/roster"
	"github.com/kyoshitsu/saiten/internal/scoring"
	"github.com/kyoshitsu/saiten/internal/table"
)

func formLog() *table.Table {
	t := table.New("タイムスタンプ", "メールアドレス", "Class 記入例）2-1", "Name")
	t.Append("2025/4/10 9:00:00", "taro@example.jp", "2-1", "山田 太郎")
	t.Append("2025/4/10 18:00:00", "TARO@example.jp", "2-1", "山田 太郎")
	t.Append("2025/4/17 9:00:00", "taro@example.jp", "2-1", "山田 太郎")
	t.Append("2025/4/10 9:05:00", "hana@example.jp", "2-1", "佐藤 花子")
	t.Append("", "ghost@example.jp", "2-2", "幽霊")
	return t
}

func formInput(t *testing.T, cfg *config.Config) FormInput {
	t.Helper()
	log := formLog()
	return FormInput{Log: log, Roles: columns.Resolve(log.Columns, cfg.Columns)}
}

func TestRunForm(t *testing.T) {
	cfg := config.Default()
	res, err := RunForm(formInput(t, cfg), cfg)
	if err != nil {
		t.Fatalf("RunForm() error = %v", err)
	}

	var emails []string
	for _, r := range res.Rows {
		emails = append(emails, r.Email)
	}
	want := []string{"hana@example.jp", "taro@example.jp", "ghost@example.jp"}
	if !reflect.DeepEqual(emails, want) {
		t.Fatalf("gradebook emails = %v, want %v", emails, want)
	}

	counts := []int{res.Rows[0].FormSubmitCount, res.Rows[1].FormSubmitCount, res.Rows[2].FormSubmitCount}
	if !reflect.DeepEqual(counts, []int{1, 2, 0}) {
		t.Errorf("form_submit_count = %v, want [1 2 0]", counts)
	}
	if res.Rows[1].FormPoints10 != 1.3 {
		t.Errorf("form_points_10 = %v, want 1.3 (2/15*10)", res.Rows[1].FormPoints10)
	}
	if res.Rows[0].Derived != scoring.Compute(res.Rows[0].Inputs, cfg.Config) {
		t.Error("derived fields not recomputed after merging counts")
	}

	if res.Stats.SameDay != 1 || res.Stats.BadTimestamp != 1 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if len(res.Unmatched) != 0 {
		t.Errorf("Unmatched = %v, want none", res.Unmatched)
	}
	if res.Roster.Len() != 3 || res.Roster.Columns[0] != roster.ColClass {
		t.Errorf("roster = %v", res.Roster)
	}
	if got := res.GradeBook().Columns[:3]; !reflect.DeepEqual(got, scoring.FormIdentityColumns) {
		t.Errorf("gradebook identity columns = %v", got)
	}
}

func TestRunForm_FoldWidth(t *testing.T) {
	cfg := config.Default()
	cfg.Identity.FoldWidth = true

	log := table.New("タイムスタンプ", "メールアドレス", "Class", "Name")
	log.Append("2025/4/10 9:00:00", "ＴＡＲＯ@example.jp", "2-1", "山田 太郎")
	log.Append("2025/4/17 9:00:00", "taro@example.jp", "2-1", "山田 太郎")

	res, err := RunForm(FormInput{Log: log, Roles: columns.Resolve(log.Columns, cfg.Columns)}, cfg)
	if err != nil {
		t.Fatalf("RunForm() error = %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %d, want 1 for one student typing both widths", len(res.Rows))
	}
	if r := res.Rows[0]; r.Email != "taro@example.jp" || r.FormSubmitCount != 2 {
		t.Errorf("row = %q count=%d, want taro@example.jp count=2", r.Email, r.FormSubmitCount)
	}
	if len(res.Unmatched) != 0 {
		t.Errorf("Unmatched = %v, want none", res.Unmatched)
	}
}

func TestRunForm_SiteTotal(t *testing.T) {
	cfg := config.Default()
	in := formInput(t, cfg)

	in.SiteTotal = 10
	res, err := RunForm(in, cfg)
	if err != nil {
		t.Fatalf("RunForm() error = %v", err)
	}
	for _, r := range res.Rows {
		if r.SiteRequirementsTotal != 10 {
			t.Errorf("site_requirements_total = %d, want 10", r.SiteRequirementsTotal)
		}
	}

	for _, bad := range []int{-1, 31} {
		in.SiteTotal = bad
		if _, err := RunForm(in, cfg); !errors.Is(err, ErrSiteTotal) {
			t.Errorf("SiteTotal %d: error = %v, want ErrSiteTotal", bad, err)
		}
	}
}

func TestRunForm_MissingRole(t *testing.T) {
	cfg := config.Default()
	in := formInput(t, cfg)
	in.Roles.Email = ""

	if _, err := RunForm(in, cfg); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("RunForm() error = %v, want ErrMissingColumn", err)
	}
}

func TestRunRegistry(t *testing.T) {
	cfg := config.Default()

	master := table.New("Class", "Timetable", "Time", "Student_No", "Name")
	master.Append("2-1", "月", "1限", "2024001", "山田 太郎")
	master.Append("2-1", "月", "1限", "2024002", "佐藤 花子")

	log := table.New("タイムスタンプ", "メールアドレス", "学籍番号")
	log.Append("2025/4/10 9:00:00", "old@example.jp", "2024001")
	log.Append("2025/4/17 9:00:00", "Taro@Example.jp", "2024001")
	log.Append("2025/4/10 9:00:00", "x@example.jp", "2099999")

	res, err := RunRegistry(RegistryInput{
		Master: master,
		Log:    log,
		Roles:  columns.Resolve(log.Columns, cfg.Columns),
	}, cfg)
	if err != nil {
		t.Fatalf("RunRegistry() error = %v", err)
	}

	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Rows))
	}
	taro, hana := res.Rows[0], res.Rows[1]
	if taro.Email != "taro@example.jp" || taro.FormSubmitCount != 2 {
		t.Errorf("taro = %+v %+v", taro.Identity, taro.Inputs)
	}
	if hana.Email != "" || hana.FormSubmitCount != 0 {
		t.Errorf("hana = %+v %+v", hana.Identity, hana.Inputs)
	}
	if res.MissingEmail != 1 {
		t.Errorf("MissingEmail = %d, want 1", res.MissingEmail)
	}
	if !reflect.DeepEqual(res.Unmatched, []string{"2099999"}) {
		t.Errorf("Unmatched = %v", res.Unmatched)
	}
	if got := res.GradeBook().Columns[:6]; !reflect.DeepEqual(got, scoring.RegistryIdentityColumns) {
		t.Errorf("gradebook identity columns = %v", got)
	}

	if !res.Roster.Has(roster.ColFormSubmitCount) {
		t.Fatalf("roster columns = %v, want %s", res.Roster.Columns, roster.ColFormSubmitCount)
	}
	if got := []any{res.Roster.Rows[0][roster.ColFormSubmitCount], res.Roster.Rows[1][roster.ColFormSubmitCount]}; !reflect.DeepEqual(got, []any{2, 0}) {
		t.Errorf("roster form_submit_count = %v, want [2 0]", got)
	}
	if len(res.SharedKeys) != 0 {
		t.Errorf("SharedKeys = %v, want none", res.SharedKeys)
	}
}

func TestRunRegistry_SharedKeys(t *testing.T) {
	cfg := config.Default()

	master := table.New("Class", "Timetable", "Time", "Student_No", "Name")
	master.Append("2-1", "月", "1限", "a001", "山田 太郎")
	master.Append("2-1", "月", "1限", "A001", "山田 太郎")

	log := table.New("タイムスタンプ", "メールアドレス", "学籍番号")
	log.Append("2025/4/10 9:00:00", "x@example.jp", "A001")

	res, err := RunRegistry(RegistryInput{
		Master: master,
		Log:    log,
		Roles:  columns.Resolve(log.Columns, cfg.Columns),
	}, cfg)
	if err != nil {
		t.Fatalf("RunRegistry() error = %v", err)
	}
	if !reflect.DeepEqual(res.SharedKeys, []string{"a001", "A001"}) {
		t.Errorf("SharedKeys = %v, want [a001 A001]", res.SharedKeys)
	}
}

func TestRunRegistry_SchemaError(t *testing.T) {
	cfg := config.Default()
	log := table.New("タイムスタンプ", "メールアドレス", "学籍番号")

	_, err := RunRegistry(RegistryInput{
		Master: table.New("Class", "Name"),
		Log:    log,
		Roles:  columns.Resolve(log.Columns, cfg.Columns),
	}, cfg)

	var schemaErr *roster.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("RunRegistry() error = %v, want SchemaError", err)
	}
}

func TestRecomputeWorkbook(t *testing.T) {
	cfg := config.Default()
	res, err := RunForm(formInput(t, cfg), cfg)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "gradebook.xlsx")
	if err := res.Write(context.Background(), path); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// The operator marks three absences for the first student and types
	// junk into the second student's paiza count.
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(SheetGradeBook, "D2", 3); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(SheetGradeBook, "F3", "abc"); err != nil {
		t.Fatal(err)
	}
	if err := f.Save(); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	got, err := RecomputeWorkbook(path, 0, cfg)
	if err != nil {
		t.Fatalf("RecomputeWorkbook() error = %v", err)
	}

	if got.ParseCoercions != 1 {
		t.Errorf("ParseCoercions = %d, want 1", got.ParseCoercions)
	}
	first := got.Rows[0]
	if first.Email != "hana@example.jp" || first.AbsentFull != 3 || first.Attended != 12 {
		t.Errorf("first row = %+v %+v", first.Identity, first.Inputs)
	}
	if first.FormSubmitCount != 1 {
		t.Errorf("form_submit_count should survive the round trip, got %d", first.FormSubmitCount)
	}
	if got.Rows[1].PaizaDone != 0 {
		t.Errorf("dirty paiza cell = %d, want 0", got.Rows[1].PaizaDone)
	}
	if !reflect.DeepEqual(got.IdentityCols, scoring.FormIdentityColumns) {
		t.Errorf("IdentityCols = %v", got.IdentityCols)
	}
	if got.Roster.Len() != 3 {
		t.Errorf("roster rows = %d, want 3", got.Roster.Len())
	}

	// Untouched rows recompute to what was exported.
	if got.Rows[2].Derived != res.Rows[2].Derived {
		t.Errorf("untouched row changed:\n got %+v\nwant %+v", got.Rows[2].Derived, res.Rows[2].Derived)
	}
}
