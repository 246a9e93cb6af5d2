package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CuttingOrder struct {
	ID              int                `gorm:"primary_key" json:"id"`
	OrderNumber     string             `gorm:"size:50;uniqueIndex;not null" json:"order_number" binding:"required"`
	StyleNumber     string             `gorm:"size:50" json:"style_number"`
	Status          CuttingOrderStatus `gorm:"size:20;index;not null;default:'pending'" json:"status"`
	PlannedQuantity int                `gorm:"not null" json:"planned_quantity"`
	MarkerLength    decimal.Decimal    `gorm:"type:decimal(12,2)" json:"marker_length"`
	PlannedStart    *time.Time         `json:"planned_start_date"`
	PlannedEnd      *time.Time         `json:"planned_end_date"`
	ActualStart     *time.Time         `json:"actual_start_date"`
	ActualEnd       *time.Time         `json:"actual_end_date"`
	Notes           string             `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"autoUpdateTime" json:"updated_at"`

	Details []CuttingOrderDetail `gorm:"foreignKey:CuttingOrderId" json:"details"`
}

// CuttingOrderDetail tracks consumption of one issued roll against the order.
// Rolls are issued whole, so RequiredLength and IssuedLength both start as
// the roll length at issuance; actuals arrive when the cutting floor reports
// back.
type CuttingOrderDetail struct {
	ID             int              `gorm:"primary_key" json:"id"`
	CuttingOrderId int              `gorm:"index;not null" json:"cutting_order_id"`
	RollId         int              `gorm:"index;not null" json:"roll_id"`
	RollNumber     string           `gorm:"size:50;not null" json:"roll_number"`
	RequiredLength decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"required_length"`
	IssuedLength   decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"issued_length"`
	ActualLength   *decimal.Decimal `gorm:"type:decimal(12,2)" json:"actual_consumed_length"`
	WasteLength    decimal.Decimal  `gorm:"type:decimal(12,2)" json:"waste_length"`
	WastePercent   decimal.Decimal  `gorm:"type:decimal(7,2)" json:"waste_percent"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

var oneHundred = decimal.NewFromInt(100)

// ApplyConsumption records the actual consumed length and derives waste.
// waste = issued - actual, and waste percent = waste / actual * 100 (zero
// when actual is zero). Negative waste is kept as-is: consuming more than
// was issued is a data-entry signal the report must surface, not clamp.
func (d *CuttingOrderDetail) ApplyConsumption(actual decimal.Decimal) error {
	if actual.IsNegative() {
		return &ValidationError{Entity: "cutting_order_detail", Field: "actual_consumed_length", Message: "must not be negative"}
	}
	waste := d.IssuedLength.Sub(actual)
	d.ActualLength = &actual
	d.WasteLength = waste
	if actual.IsZero() {
		d.WastePercent = decimal.Zero
	} else {
		d.WastePercent = waste.Div(actual).Mul(oneHundred).Round(2)
	}
	return nil
}

type NewCuttingOrder struct {
	OrderNumber     string          `json:"order_number" binding:"required"`
	StyleNumber     string          `json:"style_number"`
	PlannedQuantity int             `json:"planned_quantity"`
	MarkerLength    decimal.Decimal `json:"marker_length"`
	PlannedStart    *time.Time      `json:"planned_start_date"`
	PlannedEnd      *time.Time      `json:"planned_end_date"`
	Notes           string          `json:"notes"`
}

func (input *NewCuttingOrder) Validate() error {
	if strings.TrimSpace(input.OrderNumber) == "" {
		return &ValidationError{Entity: "cutting_order", Field: "order_number", Message: "order number is required"}
	}
	if input.PlannedQuantity < 0 {
		return &ValidationError{Entity: "cutting_order", Field: "planned_quantity", Message: "must not be negative"}
	}
	if input.MarkerLength.IsNegative() {
		return &ValidationError{Entity: "cutting_order", Field: "marker_length", Message: "must not be negative"}
	}
	if input.PlannedStart != nil && input.PlannedEnd != nil && input.PlannedEnd.Before(*input.PlannedStart) {
		return &ValidationError{Entity: "cutting_order", Field: "planned_end_date", Message: "must not be before planned start date"}
	}
	return nil
}

// ConsumptionReport is the per-order consumption summary. All figures are
// derived from details at read time.
type ConsumptionReport struct {
	CuttingOrderId    int                  `json:"cutting_order_id"`
	OrderNumber       string               `json:"order_number"`
	TotalIssuedLength decimal.Decimal      `json:"total_issued_length"`
	TotalActualLength decimal.Decimal      `json:"total_actual_length"`
	TotalWasteLength  decimal.Decimal      `json:"total_waste_length"`
	WastePercent      decimal.Decimal      `json:"waste_percent"`
	ReportedDetails   int                  `json:"reported_details"`
	PendingDetails    int                  `json:"pending_details"`
	Details           []CuttingOrderDetail `json:"details"`
}

// BuildConsumptionReport aggregates detail lines. Details with no reported
// actual count as pending and contribute only their issued length.
func BuildConsumptionReport(order *CuttingOrder) *ConsumptionReport {
	report := &ConsumptionReport{
		CuttingOrderId: order.ID,
		OrderNumber:    order.OrderNumber,
		Details:        order.Details,
	}
	for _, d := range order.Details {
		report.TotalIssuedLength = report.TotalIssuedLength.Add(d.IssuedLength)
		if d.ActualLength == nil {
			report.PendingDetails++
			continue
		}
		report.ReportedDetails++
		report.TotalActualLength = report.TotalActualLength.Add(*d.ActualLength)
		report.TotalWasteLength = report.TotalWasteLength.Add(d.WasteLength)
	}
	if !report.TotalActualLength.IsZero() {
		report.WastePercent = report.TotalWasteLength.Div(report.TotalActualLength).Mul(oneHundred).Round(2)
	}
	return report
}
