// Package scoring computes the grading ledger.
//
// A gradebook row has three parts: identity copied from the roster, inputs
// the operator edits, and derived fields. Derived fields are a pure
// function of (inputs, config), so Build and Recompute share Compute and
// recomputing unchanged rows yields identical results.
//
// The formula:
//
//	attendance_points_30 = round(attended/total_sessions * max_points, 1)
//	learning_points_70   = round(max(0, report + paiza + site + form + final - penalty), 1)
//	total_100            = round(attendance_points_30 + learning_points_70, 1)
package scoring

import (
	"fmt"
	"math"
)

// PaizaLessons is the number of lessons in the paiza course.
const PaizaLessons = 27

// Gate and judgement labels.
const (
	GateOK = "OK"
	GateNG = "NG"

	JudgementPass           = "可"
	JudgementFail           = "不可"
	JudgementFailAttendance = "不可(出席不足)"
)

// Grade letters, best first.
const (
	GradeS = "S"
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
)

// Identity is the administrative part of a row, copied from the roster.
type Identity struct {
	Class     string
	Timetable string
	Time      string
	StudentNo string
	Name      string
	Email     string
}

// Inputs are the operator-editable fields. FormSubmitCount is supplied by
// submission reconciliation rather than typed by hand.
type Inputs struct {
	AbsentFull            int
	ReportStatus          ReportStatus
	PaizaDone             int
	SiteRequirementsDone  int
	SiteRequirementsTotal int
	FinalStatus           FinalStatus
	AttitudePenalty       float64
	FormSubmitCount       int
}

// Derived fields are never edited; Compute overwrites them.
type Derived struct {
	Attended            int
	AttendanceRate      float64
	AttendancePoints30  float64
	ReportPoints20      float64
	PaizaPoints10       float64
	SitePoints20        float64
	FormPoints10        float64
	FinalPoints10       float64
	LearningPoints70Raw float64
	LearningPoints70    float64
	Total100            float64
	Grade               string
	AttendanceGate      string
	FinalJudgement      string
	MailLine            string
}

// Row is one student of the gradebook.
type Row struct {
	Identity
	Inputs
	Derived
}

// DefaultInputs returns the seed inputs for a fresh row.
func DefaultInputs(cfg Config) Inputs {
	return Inputs{
		ReportStatus:          cfg.Defaults.ReportStatus,
		FinalStatus:           cfg.Defaults.FinalStatus,
		SiteRequirementsTotal: cfg.Defaults.SiteRequirementsTotal,
	}
}

// Build creates a gradebook with freshly defaulted inputs for every
// identity and computes its derived fields.
func Build(ids []Identity, cfg Config) []Row {
	rows := make([]Row, len(ids))
	for i, id := range ids {
		in := DefaultInputs(cfg)
		rows[i] = Row{Identity: id, Inputs: in, Derived: Compute(in, cfg)}
	}
	return rows
}

// Recompute returns a copy of rows with every derived field recomputed
// from the row's current inputs. Identity and inputs are left untouched.
func Recompute(rows []Row, cfg Config) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		r.Derived = Compute(r.Inputs, cfg)
		out[i] = r
	}
	return out
}

// Compute derives every scored field from inputs. Out-of-domain inputs are
// clamped and zero denominators short-circuit to zero, so it never fails.
func Compute(in Inputs, cfg Config) Derived {
	var d Derived
	sessions := cfg.Attendance.TotalSessions

	// Attendance (30)
	absent := max(0, in.AbsentFull)
	d.Attended = max(0, sessions-absent)
	if sessions > 0 {
		d.AttendanceRate = float64(d.Attended) / float64(sessions)
	}
	d.AttendancePoints30 = Round1(d.AttendanceRate * cfg.Attendance.MaxPoints)

	// Learning (70)
	d.ReportPoints20 = in.ReportStatus.Points()

	paiza := min(max(0, in.PaizaDone), PaizaLessons)
	d.PaizaPoints10 = Round1(float64(paiza) / PaizaLessons * cfg.Learning.Paiza)

	siteDone := max(0, in.SiteRequirementsDone)
	siteTotal := max(1, in.SiteRequirementsTotal)
	d.SitePoints20 = Round1(float64(siteDone) / float64(siteTotal) * cfg.Learning.Site)

	if sessions > 0 {
		forms := min(max(0, in.FormSubmitCount), sessions)
		d.FormPoints10 = Round1(float64(forms) / float64(sessions) * cfg.Learning.Form)
	}

	d.FinalPoints10 = in.FinalStatus.Points()

	d.LearningPoints70Raw = Round1(d.ReportPoints20 + d.PaizaPoints10 + d.SitePoints20 + d.FormPoints10 + d.FinalPoints10)
	penalty := math.Max(0, in.AttitudePenalty)
	d.LearningPoints70 = Round1(math.Max(0, d.LearningPoints70Raw-penalty))

	// Total (100)
	d.Total100 = Round1(d.AttendancePoints30 + d.LearningPoints70)
	d.Grade = GradeFor(d.Total100, cfg.GradeBoundary)

	gated := d.AttendanceRate < cfg.Attendance.GateRate
	d.AttendanceGate = GateOK
	if gated {
		d.AttendanceGate = GateNG
	}
	switch {
	case gated:
		d.FinalJudgement = JudgementFailAttendance
	case d.Total100 >= cfg.PassLine():
		d.FinalJudgement = JudgementPass
	default:
		d.FinalJudgement = JudgementFail
	}

	d.MailLine = MailLine(d)
	return d
}

// GradeFor returns the best letter whose boundary total reaches. A total
// exactly on a boundary earns that letter.
func GradeFor(total float64, b Boundaries) string {
	switch {
	case total >= b.S:
		return GradeS
	case total >= b.A:
		return GradeA
	case total >= b.B:
		return GradeB
	case total >= b.C:
		return GradeC
	default:
		return GradeD
	}
}

// MailLine renders the one-line result summary pasted into notification
// mail.
func MailLine(d Derived) string {
	pct := int(math.RoundToEven(d.AttendanceRate * 100))
	return fmt.Sprintf("結果：%.1f点（%s） 出席率：%d%% 判定：%s", d.Total100, d.Grade, pct, d.FinalJudgement)
}

// Round1 rounds to one decimal place. Halves round to even.
func Round1(x float64) float64 {
	return math.RoundToEven(x*10) / 10
}
