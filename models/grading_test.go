package models

import "testing"

func TestSuggestGradeCriticalForcesC(t *testing.T) {
	defects := []Defect{
		{Type: "hole", Severity: DefectSeverityCritical},
		{Type: "slub", Severity: DefectSeverityMinor},
		{Type: "stain", Severity: DefectSeverityMinor},
	}
	if got := SuggestGrade(defects); got != QualityGradeC {
		t.Fatalf("expected C, got %s", got)
	}
}

func TestSuggestGradeThreeMajorsForceC(t *testing.T) {
	defects := []Defect{
		{Type: "stain", Severity: DefectSeverityMajor},
		{Type: "stain", Severity: DefectSeverityMajor},
		{Type: "misweave", Severity: DefectSeverityMajor},
	}
	if got := SuggestGrade(defects); got != QualityGradeC {
		t.Fatalf("expected C, got %s", got)
	}
}

func TestSuggestGradeSingleMajorCapsAtB(t *testing.T) {
	defects := []Defect{{Type: "stain", Severity: DefectSeverityMajor}}
	if got := SuggestGrade(defects); got != QualityGradeB {
		t.Fatalf("expected B, got %s", got)
	}
}

func TestSuggestGradeFiveMinorsCapAtB(t *testing.T) {
	var defects []Defect
	for i := 0; i < 5; i++ {
		defects = append(defects, Defect{Type: "slub", Severity: DefectSeverityMinor})
	}
	if got := SuggestGrade(defects); got != QualityGradeB {
		t.Fatalf("expected B, got %s", got)
	}
}

func TestSuggestGradeFewMinorsStayA(t *testing.T) {
	defects := []Defect{
		{Type: "slub", Severity: DefectSeverityMinor},
		{Type: "slub", Severity: DefectSeverityMinor},
	}
	if got := SuggestGrade(defects); got != QualityGradeA {
		t.Fatalf("expected A, got %s", got)
	}
	if got := SuggestGrade(nil); got != QualityGradeA {
		t.Fatalf("expected A for no defects, got %s", got)
	}
}

func TestEffectiveGradeOverrideWins(t *testing.T) {
	assessment := &GradeAssessment{
		RollId:        1,
		Defects:       []Defect{{Type: "hole", Severity: DefectSeverityCritical}},
		OverrideGrade: QualityGradeD,
	}
	if got := assessment.EffectiveGrade(); got != QualityGradeD {
		t.Fatalf("expected override D, got %s", got)
	}

	assessment.OverrideGrade = ""
	if got := assessment.EffectiveGrade(); got != QualityGradeC {
		t.Fatalf("expected suggested C, got %s", got)
	}
}
