package scoring

import "github.com/kyoshitsu/saiten/internal/textnorm"

// ReportStatus is the instructor's verdict on the weekly report.
type ReportStatus string

// Report verdicts, best first.
const (
	ReportComplete    ReportStatus = "完全完成"
	ReportPartlyWrong ReportStatus = "一部間違い"
	ReportDataWrong   ReportStatus = "データ間違い"
	ReportBlank       ReportStatus = "未記入"
	ReportMissing     ReportStatus = "未提出"
)

// ReportStatuses lists every recognized report verdict.
var ReportStatuses = []ReportStatus{ReportComplete, ReportPartlyWrong, ReportDataWrong, ReportBlank, ReportMissing}

// Points returns the report score out of 20. Unrecognized verdicts score 0.
func (s ReportStatus) Points() float64 {
	switch s {
	case ReportComplete:
		return 20
	case ReportPartlyWrong:
		return 15
	case ReportDataWrong:
		return 10
	case ReportBlank:
		return 5
	default:
		return 0
	}
}

// Known reports whether s is one of the recognized verdicts.
func (s ReportStatus) Known() bool {
	for _, k := range ReportStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// FinalStatus is the instructor's verdict on the final assignment.
type FinalStatus string

// Final assignment verdicts.
const (
	FinalMissing   FinalStatus = "未提出"
	FinalSubmitted FinalStatus = "提出"
	FinalGood      FinalStatus = "良い"
)

// FinalStatuses lists every recognized final verdict.
var FinalStatuses = []FinalStatus{FinalMissing, FinalSubmitted, FinalGood}

// Points returns the final assignment score out of 10. Unrecognized
// verdicts score 0.
func (s FinalStatus) Points() float64 {
	switch s {
	case FinalSubmitted:
		return 5
	case FinalGood:
		return 10
	default:
		return 0
	}
}

// Known reports whether s is one of the recognized verdicts.
func (s FinalStatus) Known() bool {
	for _, k := range FinalStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// ParseReportStatus normalizes a cell into a report verdict. Unknown text is
// kept verbatim so the operator sees what was typed; it scores 0.
func ParseReportStatus(v any) ReportStatus {
	return ReportStatus(textnorm.Text(v))
}

// ParseFinalStatus normalizes a cell into a final verdict.
func ParseFinalStatus(v any) FinalStatus {
	return FinalStatus(textnorm.Text(v))
}
