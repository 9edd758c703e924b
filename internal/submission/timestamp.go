package submission

import (
	"math"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kyoshitsu/saiten/internal/textnorm"
)

// Excel serial dates outside this window are treated as plain numbers.
const (
	minSerial = 20000 // 1954-10-03
	maxSerial = 80000 // 2119-01-10
)

// timestampLayouts are tried in order against textual timestamps. Form
// exports use slashes with unpadded fields; CSV round-trips use ISO forms.
var timestampLayouts = []string{
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04",
	"1/2/2006",
	"2006年1月2日 15:04:05",
	"2006年1月2日",
}

// ParseTimestamp converts a cell into a point in time. Unparseable or empty
// values report ok=false; callers drop such rows.
func ParseTimestamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case float64:
		return fromSerial(t)
	case int:
		return fromSerial(float64(t))
	case int64:
		return fromSerial(float64(t))
	}

	s := textnorm.Text(v)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSerial(f)
	}
	return time.Time{}, false
}

func fromSerial(f float64) (time.Time, bool) {
	if math.IsNaN(f) || f < minSerial || f > maxSerial {
		return time.Time{}, false
	}
	ts, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// dateKey is the calendar day of a timestamp in its own location.
func dateKey(ts time.Time) string {
	return ts.Format("2006-01-02")
}
