package scoring

import (
	"math"
	"strconv"

	"github.com/kyoshitsu/saiten/internal/table"
	"github.com/kyoshitsu/saiten/internal/textnorm"
)

// Ledger column names.
const (
	ColClass     = "class"
	ColTimetable = "timetable"
	ColTime      = "time"
	ColStudentNo = "student_no"
	ColName      = "name"
	ColEmail     = "email"

	ColAbsentFull            = "absent_full"
	ColReportStatus          = "report_status"
	ColPaizaDone             = "paiza_done"
	ColSiteRequirementsDone  = "site_requirements_done"
	ColSiteRequirementsTotal = "site_requirements_total"
	ColFinalStatus           = "final_status"
	ColAttitudePenalty       = "attitude_penalty"
	ColFormSubmitCount       = "form_submit_count"

	ColAttended            = "attended"
	ColAttendanceRate      = "attendance_rate"
	ColAttendancePoints30  = "attendance_points_30"
	ColReportPoints20      = "report_points_20"
	ColPaizaPoints10       = "paiza_points_10"
	ColSitePoints20        = "site_points_20"
	ColFormPoints10        = "form_points_10"
	ColFinalPoints10       = "final_points_10"
	ColLearningPoints70Raw = "learning_points_70_raw"
	ColLearningPoints70    = "learning_points_70"
	ColTotal100            = "total_100"
	ColGrade               = "grade"
	ColAttendanceGate      = "attendance_gate"
	ColFinalJudgement      = "final_judgement"
	ColMailLine            = "mail_line"
)

// Identity column sets for the two roster sources.
var (
	FormIdentityColumns     = []string{ColClass, ColName, ColEmail}
	RegistryIdentityColumns = []string{ColClass, ColTimetable, ColTime, ColStudentNo, ColName, ColEmail}
)

// InputColumns are the operator-editable ledger columns in sheet order.
var InputColumns = []string{
	ColAbsentFull,
	ColReportStatus,
	ColPaizaDone,
	ColSiteRequirementsDone,
	ColSiteRequirementsTotal,
	ColFinalStatus,
	ColAttitudePenalty,
	ColFormSubmitCount,
}

// DerivedColumns are the computed ledger columns in sheet order.
var DerivedColumns = []string{
	ColAttended,
	ColAttendanceRate,
	ColAttendancePoints30,
	ColReportPoints20,
	ColPaizaPoints10,
	ColSitePoints20,
	ColFormPoints10,
	ColFinalPoints10,
	ColLearningPoints70Raw,
	ColLearningPoints70,
	ColTotal100,
	ColGrade,
	ColAttendanceGate,
	ColFinalJudgement,
	ColMailLine,
}

// Table renders rows as a ledger table: identity columns, then inputs,
// then derived fields.
func Table(rows []Row, identityCols []string) *table.Table {
	cols := make([]string, 0, len(identityCols)+len(InputColumns)+len(DerivedColumns))
	cols = append(cols, identityCols...)
	cols = append(cols, InputColumns...)
	cols = append(cols, DerivedColumns...)

	t := table.New(cols...)
	for _, r := range rows {
		row := make(table.Row, len(cols))
		for _, c := range identityCols {
			row[c] = r.identityValue(c)
		}
		row[ColAbsentFull] = r.AbsentFull
		row[ColReportStatus] = string(r.ReportStatus)
		row[ColPaizaDone] = r.PaizaDone
		row[ColSiteRequirementsDone] = r.SiteRequirementsDone
		row[ColSiteRequirementsTotal] = r.SiteRequirementsTotal
		row[ColFinalStatus] = string(r.FinalStatus)
		row[ColAttitudePenalty] = r.AttitudePenalty
		row[ColFormSubmitCount] = r.FormSubmitCount

		row[ColAttended] = r.Attended
		row[ColAttendanceRate] = r.AttendanceRate
		row[ColAttendancePoints30] = r.AttendancePoints30
		row[ColReportPoints20] = r.ReportPoints20
		row[ColPaizaPoints10] = r.PaizaPoints10
		row[ColSitePoints20] = r.SitePoints20
		row[ColFormPoints10] = r.FormPoints10
		row[ColFinalPoints10] = r.FinalPoints10
		row[ColLearningPoints70Raw] = r.LearningPoints70Raw
		row[ColLearningPoints70] = r.LearningPoints70
		row[ColTotal100] = r.Total100
		row[ColGrade] = r.Grade
		row[ColAttendanceGate] = r.AttendanceGate
		row[ColFinalJudgement] = r.FinalJudgement
		row[ColMailLine] = r.MailLine
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (r Row) identityValue(col string) string {
	switch col {
	case ColClass:
		return r.Class
	case ColTimetable:
		return r.Timetable
	case ColTime:
		return r.Time
	case ColStudentNo:
		return r.StudentNo
	case ColName:
		return r.Name
	case ColEmail:
		return r.Email
	}
	return ""
}

// IdentityColumnsOf returns the identity columns present in t, in ledger
// order.
func IdentityColumnsOf(t *table.Table) []string {
	var out []string
	for _, c := range RegistryIdentityColumns {
		if t.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// ParseStats counts cells that fell back to a safe value while parsing.
type ParseStats struct {
	Coerced       int // non-numeric input cells read as 0
	UnknownStatus int // status cells that are not a known verdict; they score 0
}

// ParseTable reads identity and input fields back from a ledger table, for
// recomputing after the operator edited the sheet. Derived columns are
// ignored. Missing input columns and blank site_requirements_total cells
// take the configured defaults; cells that are present but not numeric
// become 0.
func ParseTable(t *table.Table, cfg Config) ([]Row, ParseStats) {
	var stats ParseStats
	defaults := DefaultInputs(cfg)

	intField := func(row table.Row, col string, def int) int {
		if !t.Has(col) {
			return def
		}
		v, ok := toInt(row[col])
		if !ok {
			stats.Coerced++
		}
		return v
	}
	floatField := func(row table.Row, col string, def float64) float64 {
		if !t.Has(col) {
			return def
		}
		v, ok := toFloat(row[col])
		if !ok {
			stats.Coerced++
		}
		return v
	}

	rows := make([]Row, 0, t.Len())
	for _, row := range t.Rows {
		var r Row
		r.Class = textnorm.Text(row[ColClass])
		r.Timetable = textnorm.Text(row[ColTimetable])
		r.Time = textnorm.Text(row[ColTime])
		r.StudentNo = textnorm.Text(row[ColStudentNo])
		r.Name = textnorm.Text(row[ColName])
		r.Email = textnorm.Identity(row[ColEmail])

		r.AbsentFull = intField(row, ColAbsentFull, defaults.AbsentFull)
		r.PaizaDone = intField(row, ColPaizaDone, defaults.PaizaDone)
		r.SiteRequirementsDone = intField(row, ColSiteRequirementsDone, defaults.SiteRequirementsDone)
		r.SiteRequirementsTotal = intField(row, ColSiteRequirementsTotal, defaults.SiteRequirementsTotal)
		if t.Has(ColSiteRequirementsTotal) && textnorm.Text(row[ColSiteRequirementsTotal]) == "" {
			r.SiteRequirementsTotal = defaults.SiteRequirementsTotal
		}
		r.AttitudePenalty = floatField(row, ColAttitudePenalty, defaults.AttitudePenalty)
		r.FormSubmitCount = intField(row, ColFormSubmitCount, defaults.FormSubmitCount)

		r.ReportStatus = defaults.ReportStatus
		if t.Has(ColReportStatus) {
			r.ReportStatus = ParseReportStatus(row[ColReportStatus])
			if !r.ReportStatus.Known() {
				stats.UnknownStatus++
			}
		}
		r.FinalStatus = defaults.FinalStatus
		if t.Has(ColFinalStatus) {
			r.FinalStatus = ParseFinalStatus(row[ColFinalStatus])
			if !r.FinalStatus.Known() {
				stats.UnknownStatus++
			}
		}

		rows = append(rows, r)
	}
	return rows, stats
}

// toFloat coerces a cell to a number. Blank cells are a valid 0; anything
// else non-numeric is 0 with ok=false.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case float32:
		return toFloat(float64(n))
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	s := textnorm.Text(v)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toInt truncates a coerced number toward zero.
func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	return int(f), ok
}
