package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestApplyConsumptionWasteMath(t *testing.T) {
	detail := &CuttingOrderDetail{
		RollNumber:   "KK001-R001",
		IssuedLength: decimal.RequireFromString("170"),
	}
	if err := detail.ApplyConsumption(decimal.RequireFromString("165.5")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !detail.WasteLength.Equal(decimal.RequireFromString("4.5")) {
		t.Fatalf("expected waste 4.5, got %s", detail.WasteLength)
	}
	if !detail.WastePercent.Equal(decimal.RequireFromString("2.72")) {
		t.Fatalf("expected waste percent 2.72, got %s", detail.WastePercent)
	}
}

func TestApplyConsumptionZeroActual(t *testing.T) {
	detail := &CuttingOrderDetail{IssuedLength: decimal.RequireFromString("50")}
	if err := detail.ApplyConsumption(decimal.Zero); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !detail.WasteLength.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("expected waste 50, got %s", detail.WasteLength)
	}
	if !detail.WastePercent.IsZero() {
		t.Fatalf("expected waste percent 0 when actual is 0, got %s", detail.WastePercent)
	}
}

func TestApplyConsumptionNegativeWasteKept(t *testing.T) {
	// Consuming more than was issued is a data-entry signal, not an error.
	detail := &CuttingOrderDetail{IssuedLength: decimal.RequireFromString("100")}
	if err := detail.ApplyConsumption(decimal.RequireFromString("110")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !detail.WasteLength.Equal(decimal.RequireFromString("-10")) {
		t.Fatalf("expected waste -10, got %s", detail.WasteLength)
	}
}

func TestApplyConsumptionRejectsNegativeActual(t *testing.T) {
	detail := &CuttingOrderDetail{IssuedLength: decimal.RequireFromString("100")}
	err := detail.ApplyConsumption(decimal.RequireFromString("-1"))
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBuildConsumptionReport(t *testing.T) {
	reported := decimal.RequireFromString("95")
	order := &CuttingOrder{
		ID:          7,
		OrderNumber: "CO-100",
		Details: []CuttingOrderDetail{
			{
				IssuedLength: decimal.RequireFromString("100"),
				ActualLength: &reported,
				WasteLength:  decimal.RequireFromString("5"),
			},
			{IssuedLength: decimal.RequireFromString("80")},
		},
	}
	report := BuildConsumptionReport(order)
	if report.ReportedDetails != 1 || report.PendingDetails != 1 {
		t.Fatalf("expected 1 reported / 1 pending, got %d / %d", report.ReportedDetails, report.PendingDetails)
	}
	if !report.TotalIssuedLength.Equal(decimal.RequireFromString("180")) {
		t.Fatalf("expected total issued 180, got %s", report.TotalIssuedLength)
	}
	if !report.TotalWasteLength.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("expected total waste 5, got %s", report.TotalWasteLength)
	}
	if !report.WastePercent.Equal(decimal.RequireFromString("5.26")) {
		t.Fatalf("expected waste percent 5.26, got %s", report.WastePercent)
	}
}
