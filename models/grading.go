package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Defect is one observed defect on a roll during quality assessment.
type Defect struct {
	Type     string          `json:"type"`
	Severity DefectSeverity  `json:"severity" binding:"required,defectseverity"`
	Position decimal.Decimal `json:"position"`
	SizeCm   decimal.Decimal `json:"size_cm"`
	Notes    string          `json:"notes"`
}

// SuggestGrade maps observed defects to a suggested quality grade:
// any critical defect forces C; three or more majors force C; a single
// major caps at B; five or more minors cap at B; otherwise A. The
// suggestion is advisory, the assessor can override it.
func SuggestGrade(defects []Defect) QualityGrade {
	var minor, major, critical int
	for _, d := range defects {
		switch d.Severity {
		case DefectSeverityMinor:
			minor++
		case DefectSeverityMajor:
			major++
		case DefectSeverityCritical:
			critical++
		}
	}
	if critical > 0 || major >= 3 {
		return QualityGradeC
	}
	if major >= 1 || minor >= 5 {
		return QualityGradeB
	}
	return QualityGradeA
}

type GradeAssessment struct {
	RollId        int          `json:"roll_id"`
	Defects       []Defect     `json:"defects"`
	OverrideGrade QualityGrade `json:"override_grade"`
	Notes         string       `json:"notes"`
	AssessedAt    time.Time    `json:"assessed_at"`
}

func (input *GradeAssessment) Validate() error {
	if input.RollId <= 0 {
		return &ValidationError{Entity: "grade_assessment", Field: "roll_id", Message: "roll id is required"}
	}
	for _, d := range input.Defects {
		if !d.Severity.Valid() {
			return &ValidationError{Entity: "grade_assessment", Field: "defects", Message: "invalid defect severity"}
		}
	}
	if input.OverrideGrade != "" && !input.OverrideGrade.Valid() {
		return &ValidationError{Entity: "grade_assessment", Field: "override_grade", Message: "invalid quality grade"}
	}
	return nil
}

// EffectiveGrade resolves the assessment to the grade that will be applied.
func (input *GradeAssessment) EffectiveGrade() QualityGrade {
	if input.OverrideGrade != "" {
		return input.OverrideGrade
	}
	return SuggestGrade(input.Defects)
}
