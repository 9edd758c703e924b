package scoring

// Config holds every knob of the grading formula.
type Config struct {
	Attendance    AttendanceConfig `toml:"attendance" yaml:"attendance"`
	Learning      LearningConfig   `toml:"learning" yaml:"learning"`
	GradeBoundary Boundaries       `toml:"grade_boundary" yaml:"grade_boundary"`
	Defaults      Defaults         `toml:"defaults" yaml:"defaults"`
	Judgement     JudgementConfig  `toml:"judgement" yaml:"judgement"`
}

// AttendanceConfig drives the 30-point attendance block and the gate.
type AttendanceConfig struct {
	// TotalSessions is the number of class meetings in the course.
	// It also caps the form submission count.
	TotalSessions int `toml:"total_sessions" yaml:"total_sessions"`

	// MaxPoints is awarded for full attendance.
	MaxPoints float64 `toml:"max_points" yaml:"max_points"`

	// GateRate is the minimum attendance fraction (0-1) to pass at all.
	GateRate float64 `toml:"gate_rate" yaml:"gate_rate"`
}

// LearningConfig weights the configurable learning components. Report (20)
// and final assignment (10) are fixed by their status tables.
type LearningConfig struct {
	Paiza float64 `toml:"paiza" yaml:"paiza"`
	Site  float64 `toml:"site" yaml:"site"`
	Form  float64 `toml:"form" yaml:"form"`
}

// Boundaries are the minimum totals for each letter grade, strictly
// descending from S to C. Anything below C is D.
type Boundaries struct {
	S float64 `toml:"S" yaml:"S"`
	A float64 `toml:"A" yaml:"A"`
	B float64 `toml:"B" yaml:"B"`
	C float64 `toml:"C" yaml:"C"`
}

// Defaults seed the operator-editable inputs of a fresh gradebook.
type Defaults struct {
	ReportStatus          ReportStatus `toml:"report_status" yaml:"report_status"`
	FinalStatus           FinalStatus  `toml:"final_status" yaml:"final_status"`
	SiteRequirementsTotal int          `toml:"site_requirements_total" yaml:"site_requirements_total"`
}

// JudgementConfig controls pass/fail.
type JudgementConfig struct {
	// PassLine is the minimum total to pass. When unset the C boundary is
	// used.
	PassLine *float64 `toml:"pass_line" yaml:"pass_line"`
}

// DefaultConfig returns the course defaults: 15 sessions, a 2/3 attendance
// gate and the 30/20/10/20/10/10 point split.
func DefaultConfig() Config {
	return Config{
		Attendance: AttendanceConfig{
			TotalSessions: 15,
			MaxPoints:     30,
			GateRate:      2.0 / 3.0,
		},
		Learning: LearningConfig{
			Paiza: 10,
			Site:  20,
			Form:  10,
		},
		GradeBoundary: Boundaries{S: 90, A: 80, B: 70, C: 60},
		Defaults: Defaults{
			ReportStatus:          ReportPartlyWrong,
			FinalStatus:           FinalSubmitted,
			SiteRequirementsTotal: 8,
		},
	}
}

// PassLine returns the minimum total that passes.
func (c Config) PassLine() float64 {
	if c.Judgement.PassLine != nil {
		return *c.Judgement.PassLine
	}
	return c.GradeBoundary.C
}
