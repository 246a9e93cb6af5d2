package workflow

import (
	"context"
	"testing"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"github.com/shopspring/decimal"
)

func TestReportConsumptionMarksRollUsed(t *testing.T) {
	deps, fabricTypeId := newTestDeps(t)
	ctx := context.Background()
	order := seedOrder(t, deps, "CO-100")
	roll := seedRoll(t, deps, fabricTypeId, "KK001-R001", "170")

	if _, err := CreateIssuance(ctx, deps, &models.NewIssuanceRecord{
		CuttingOrderId: order.ID,
		RollIds:        []int{roll.ID},
	}); err != nil {
		t.Fatalf("create issuance: %v", err)
	}
	if _, err := UpdateOrderStatus(ctx, deps, order.ID, models.CuttingOrderStatusInProgress); err != nil {
		t.Fatalf("start order: %v", err)
	}

	detail, err := ReportConsumption(ctx, deps, order.ID, roll.ID, decimal.RequireFromString("165.5"))
	if err != nil {
		t.Fatalf("report consumption: %v", err)
	}
	if !detail.WasteLength.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("expected waste 4.5, got %s", detail.WasteLength)
	}
	if !detail.WastePercent.Equal(decimal.RequireFromString("2.72")) {
		t.Fatalf("expected waste percent 2.72, got %s", detail.WastePercent)
	}

	used, err := deps.Store.Rolls().Get(ctx, roll.ID)
	if err != nil {
		t.Fatalf("get roll: %v", err)
	}
	if used.Status != models.RollStatusUsed {
		t.Fatalf("expected used, got %s", used.Status)
	}
}

func TestReportConsumptionUnknownRoll(t *testing.T) {
	deps, fabricTypeId := newTestDeps(t)
	ctx := context.Background()
	order := seedOrder(t, deps, "CO-100")
	roll := seedRoll(t, deps, fabricTypeId, "KK001-R001", "100")

	if _, err := CreateIssuance(ctx, deps, &models.NewIssuanceRecord{
		CuttingOrderId: order.ID,
		RollIds:        []int{roll.ID},
	}); err != nil {
		t.Fatalf("create issuance: %v", err)
	}

	_, err := ReportConsumption(ctx, deps, order.ID, 999, decimal.RequireFromString("50"))
	if !models.IsReferential(err) {
		t.Fatalf("expected referential error for roll not on order, got %v", err)
	}
}

func TestReportConsumptionRejectedOnClosedOrder(t *testing.T) {
	deps, fabricTypeId := newTestDeps(t)
	ctx := context.Background()
	order := seedOrder(t, deps, "CO-100")
	roll := seedRoll(t, deps, fabricTypeId, "KK001-R001", "100")

	if _, err := CreateIssuance(ctx, deps, &models.NewIssuanceRecord{
		CuttingOrderId: order.ID,
		RollIds:        []int{roll.ID},
	}); err != nil {
		t.Fatalf("create issuance: %v", err)
	}
	if _, err := UpdateOrderStatus(ctx, deps, order.ID, models.CuttingOrderStatusInProgress); err != nil {
		t.Fatalf("start order: %v", err)
	}
	if _, err := UpdateOrderStatus(ctx, deps, order.ID, models.CuttingOrderStatusCompleted); err != nil {
		t.Fatalf("complete order: %v", err)
	}

	_, err := ReportConsumption(ctx, deps, order.ID, roll.ID, decimal.RequireFromString("90"))
	if !models.IsConflict(err) {
		t.Fatalf("expected conflict on completed order, got %v", err)
	}
}

func TestUpdateOrderStatusStampsActualDates(t *testing.T) {
	deps, _ := newTestDeps(t)
	ctx := context.Background()
	order := seedOrder(t, deps, "CO-100")

	started, err := UpdateOrderStatus(ctx, deps, order.ID, models.CuttingOrderStatusInProgress)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.ActualStart == nil {
		t.Fatalf("expected actual start stamped")
	}
	if started.ActualEnd != nil {
		t.Fatalf("actual end must not be stamped yet")
	}

	completed, err := UpdateOrderStatus(ctx, deps, order.ID, models.CuttingOrderStatusCompleted)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.ActualEnd == nil {
		t.Fatalf("expected actual end stamped")
	}

	// No reopening a completed order.
	if _, err := UpdateOrderStatus(ctx, deps, order.ID, models.CuttingOrderStatusInProgress); !models.IsConflict(err) {
		t.Fatalf("expected conflict reopening completed order, got %v", err)
	}
}

func TestConsumptionReportAggregates(t *testing.T) {
	deps, fabricTypeId := newTestDeps(t)
	ctx := context.Background()
	order := seedOrder(t, deps, "CO-100")
	first := seedRoll(t, deps, fabricTypeId, "KK001-R001", "100")
	second := seedRoll(t, deps, fabricTypeId, "KK001-R002", "80")

	if _, err := CreateIssuance(ctx, deps, &models.NewIssuanceRecord{
		CuttingOrderId: order.ID,
		RollIds:        []int{first.ID, second.ID},
	}); err != nil {
		t.Fatalf("create issuance: %v", err)
	}
	if _, err := UpdateOrderStatus(ctx, deps, order.ID, models.CuttingOrderStatusInProgress); err != nil {
		t.Fatalf("start order: %v", err)
	}
	if _, err := ReportConsumption(ctx, deps, order.ID, first.ID, decimal.RequireFromString("95")); err != nil {
		t.Fatalf("report: %v", err)
	}

	report, err := GetConsumptionReport(ctx, deps, order.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.ReportedDetails != 1 || report.PendingDetails != 1 {
		t.Fatalf("expected 1 reported / 1 pending, got %d / %d", report.ReportedDetails, report.PendingDetails)
	}
	if !report.TotalIssuedLength.Equal(decimal.RequireFromString("180")) {
		t.Fatalf("expected total issued 180, got %s", report.TotalIssuedLength)
	}
	if !report.TotalWasteLength.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("expected total waste 5, got %s", report.TotalWasteLength)
	}
}

func TestAssessGradeAppliesSuggestion(t *testing.T) {
	deps, fabricTypeId := newTestDeps(t)
	ctx := context.Background()
	roll := seedRoll(t, deps, fabricTypeId, "KK001-R001", "100")

	result, err := AssessGrade(ctx, deps, &models.GradeAssessment{
		RollId: roll.ID,
		Defects: []models.Defect{
			{Type: "stain", Severity: models.DefectSeverityMajor},
		},
	})
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if result.SuggestedGrade != models.QualityGradeB || result.AppliedGrade != models.QualityGradeB {
		t.Fatalf("expected B/B, got %s/%s", result.SuggestedGrade, result.AppliedGrade)
	}
	if result.Roll.Grade != models.QualityGradeB {
		t.Fatalf("expected roll regraded to B, got %s", result.Roll.Grade)
	}
}

func TestAssessGradeOverride(t *testing.T) {
	deps, fabricTypeId := newTestDeps(t)
	ctx := context.Background()
	roll := seedRoll(t, deps, fabricTypeId, "KK001-R001", "100")

	result, err := AssessGrade(ctx, deps, &models.GradeAssessment{
		RollId: roll.ID,
		Defects: []models.Defect{
			{Type: "hole", Severity: models.DefectSeverityCritical},
		},
		OverrideGrade: models.QualityGradeD,
	})
	if err != nil {
		t.Fatalf("assess: %v", err)
	}
	if result.SuggestedGrade != models.QualityGradeC {
		t.Fatalf("expected suggestion C, got %s", result.SuggestedGrade)
	}
	if result.Roll.Grade != models.QualityGradeD {
		t.Fatalf("expected override D applied, got %s", result.Roll.Grade)
	}
}
