package workflow

import (
	"context"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
)

// GradeResult reports both the rule-based suggestion and the grade actually
// applied, which differ when the assessor overrides.
type GradeResult struct {
	Roll           *models.InventoryRoll `json:"roll"`
	SuggestedGrade models.QualityGrade   `json:"suggested_grade"`
	AppliedGrade   models.QualityGrade   `json:"applied_grade"`
}

// AssessGrade applies a quality assessment to a roll. The grade goes through
// the ledger's correction path so the change lands in the audit trail like
// any other correction.
func AssessGrade(ctx context.Context, deps *Deps, input *models.GradeAssessment) (*GradeResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	roll, err := deps.Store.Rolls().Get(ctx, input.RollId)
	if err != nil {
		return nil, err
	}

	suggested := models.SuggestGrade(input.Defects)
	applied := input.EffectiveGrade()

	if roll.Grade == applied {
		return &GradeResult{Roll: roll, SuggestedGrade: suggested, AppliedGrade: applied}, nil
	}

	updated, err := deps.Ledger.Correct(ctx, roll.ID, roll.Version, &models.RollCorrection{
		Grade:  &applied,
		Reason: "quality assessment",
	})
	if err != nil {
		return nil, err
	}
	return &GradeResult{Roll: updated, SuggestedGrade: suggested, AppliedGrade: applied}, nil
}
