package submission

import (
	"reflect"
	"testing"
	"time"

	"github.com/kyoshitsu/saiten/internal/table"
	"github.com/kyoshitsu/saiten/internal/textnorm"
)

func logTable(rows ...[]any) *table.Table {
	return table.FromRecords([]string{"ts", "id", "mail"}, rows)
}

func TestCountSubmissions_SameDayCountsOnce(t *testing.T) {
	log := logTable(
		[]any{"2024/04/10 9:00:00", "taro@example.jp"},
		[]any{"2024/04/10 9:05:00", "Taro@Example.jp"},
		[]any{"2024/04/10 17:59:59", " taro@example.jp"},
		[]any{"2024/04/17 9:00:00", "taro@example.jp"},
	)

	counts, stats := New(nil).CountSubmissions(log, "id", "ts", 15)
	want := []Count{{Identity: "taro@example.jp", Count: 2}}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("CountSubmissions() = %v, want %v", counts, want)
	}
	if stats.SameDay != 2 {
		t.Errorf("stats.SameDay = %d, want 2", stats.SameDay)
	}
}

func TestCountSubmissions_Cap(t *testing.T) {
	var rows [][]any
	for day := 1; day <= 8; day++ {
		ts := time.Date(2024, 5, day, 10, 0, 0, 0, time.Local)
		rows = append(rows, []any{ts, "hanako@example.jp"})
	}

	counts, stats := New(nil).CountSubmissions(logTable(rows...), "id", "ts", 5)
	if len(counts) != 1 || counts[0].Count != 5 {
		t.Errorf("CountSubmissions() = %v, want count 5", counts)
	}
	if stats.Clipped != 1 {
		t.Errorf("stats.Clipped = %d, want 1", stats.Clipped)
	}
}

func TestCountSubmissions_DropsDirtyRows(t *testing.T) {
	log := logTable(
		[]any{"not a date", "a@example.jp"},
		[]any{nil, "a@example.jp"},
		[]any{"2024/04/10 9:00:00", ""},
		[]any{"2024/04/10 9:00:00", nil},
		[]any{"2024-04-11 10:00:00", "b@example.jp"},
		[]any{45392.5, "c@example.jp"},
	)

	counts, stats := New(nil).CountSubmissions(log, "id", "ts", 15)
	want := []Count{
		{Identity: "b@example.jp", Count: 1},
		{Identity: "c@example.jp", Count: 1},
	}
	if !reflect.DeepEqual(counts, want) {
		t.Errorf("CountSubmissions() = %v, want %v", counts, want)
	}
	if stats.BadTimestamp != 2 || stats.NoIdentity != 2 || stats.Rows != 6 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCountSubmissions_ZeroCap(t *testing.T) {
	log := logTable([]any{"2024/04/10 9:00:00", "a@example.jp"})
	counts, _ := New(nil).CountSubmissions(log, "id", "ts", -3)
	if counts[0].Count != 0 {
		t.Errorf("count with negative cap = %d, want 0", counts[0].Count)
	}
}

func TestLatestEmails(t *testing.T) {
	log := logTable(
		[]any{"2024/04/17 9:00:00", "2024001", "new@example.jp"},
		[]any{"2024/04/10 9:00:00", "2024001", "old@example.jp"},
		[]any{"2024/04/10 9:00:00", "2024002", "first@example.jp"},
		[]any{"2024/04/10 9:00:00", "2024002", " Second@Example.jp "},
		[]any{"garbage", "2024003", "ignored@example.jp"},
		[]any{"2024/04/10 9:00:00", "", "nobody@example.jp"},
	)

	got := New(nil).LatestEmails(log, "id", "mail", "ts")
	want := map[string]string{
		"2024001": "new@example.jp",
		"2024002": "second@example.jp",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LatestEmails() = %v, want %v", got, want)
	}
}

func TestCustomKey(t *testing.T) {
	log := logTable(
		[]any{"2024/04/10 9:00:00", "２０２４００１"},
		[]any{"2024/04/11 9:00:00", "2024001"},
	)
	counts, _ := New(textnorm.FoldedIdentity).CountSubmissions(log, "id", "ts", 15)
	if len(counts) != 1 || counts[0].Count != 2 {
		t.Errorf("folded counts = %v, want one identity with 2", counts)
	}
}

func TestCountMap(t *testing.T) {
	m := CountMap([]Count{{"a", 1}, {"b", 3}})
	if m["a"] != 1 || m["b"] != 3 || len(m) != 2 {
		t.Errorf("CountMap() = %v", m)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		wantOK  bool
		wantDay string
	}{
		{"form slash", "2024/4/10 9:15:22", true, "2024-04-10"},
		{"padded slash", "2024/04/10 09:15", true, "2024-04-10"},
		{"iso", "2024-04-10 09:15:22", true, "2024-04-10"},
		{"iso t", "2024-04-10T09:15:22", true, "2024-04-10"},
		{"date only", "2024-04-10", true, "2024-04-10"},
		{"us", "4/10/2024 9:15:22 AM", true, "2024-04-10"},
		{"japanese", "2024年4月10日", true, "2024-04-10"},
		{"excel serial", 45392.25, true, "2024-04-10"},
		{"excel serial text", "45392", true, "2024-04-10"},
		{"time value", time.Date(2024, 4, 10, 23, 0, 0, 0, time.UTC), true, "2024-04-10"},
		{"small number", 12.0, false, ""},
		{"empty", "", false, ""},
		{"nil", nil, false, ""},
		{"garbage", "yesterday", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ok := ParseTimestamp(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseTimestamp(%v) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && dateKey(ts) != tt.wantDay {
				t.Errorf("ParseTimestamp(%v) day = %s, want %s", tt.in, dateKey(ts), tt.wantDay)
			}
		})
	}
}
