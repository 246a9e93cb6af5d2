package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDiscrepancyThreshold flags length differences at or above this
// absolute value as large discrepancies in check reports.
var DefaultDiscrepancyThreshold = decimal.NewFromInt(2)

type InventoryCheck struct {
	ID           int         `gorm:"primary_key" json:"id"`
	CheckNumber  string      `gorm:"size:50;uniqueIndex;not null" json:"check_number"`
	Status       CheckStatus `gorm:"size:20;index;not null;default:'draft'" json:"status"`
	FabricTypeId int         `gorm:"index" json:"fabric_type_id"`
	Location     string      `gorm:"size:100" json:"location"`
	StartedBy    string      `gorm:"size:100" json:"started_by"`
	StartedAt    time.Time   `json:"started_at"`
	CompletedBy  string      `gorm:"size:100" json:"completed_by"`
	CompletedAt  *time.Time  `json:"completed_at"`
	Notes        string      `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Items []InventoryCheckItem `gorm:"foreignKey:InventoryCheckId" json:"items"`
}

// InventoryCheckItem snapshots one roll at check start. System figures are
// frozen at snapshot time so concurrent ledger activity cannot shift the
// baseline mid-count. Actuals and the derived differences stay nil until the
// counter records them; a nil difference means "not counted", a zero one
// means "counted and matching".
type InventoryCheckItem struct {
	ID               int              `gorm:"primary_key" json:"id"`
	InventoryCheckId int              `gorm:"index;not null" json:"inventory_check_id"`
	RollId           int              `gorm:"index;not null" json:"roll_id"`
	RollNumber       string           `gorm:"size:50;not null" json:"roll_number"`
	FabricTypeId     int              `gorm:"index;not null" json:"fabric_type_id"`
	SystemLength     decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"system_length"`
	SystemWeight     decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"system_weight"`
	ActualLength     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"actual_length"`
	ActualWeight     *decimal.Decimal `gorm:"type:decimal(12,2)" json:"actual_weight"`
	LengthDifference *decimal.Decimal `gorm:"type:decimal(12,2)" json:"length_difference"`
	WeightDifference *decimal.Decimal `gorm:"type:decimal(12,2)" json:"weight_difference"`
	Corrected        bool             `gorm:"not null;default:false" json:"corrected"`
	RequiresFollowUp bool             `gorm:"not null;default:false" json:"requires_follow_up"`
	CountedBy        string           `gorm:"size:100" json:"counted_by"`
	CountedAt        *time.Time       `json:"counted_at"`
	Notes            string           `gorm:"type:text" json:"notes"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// RecordActual stores the counted figures and derives the differences as
// actual minus system. A shrinkage therefore shows up negative.
func (item *InventoryCheckItem) RecordActual(actualLength decimal.Decimal, actualWeight decimal.Decimal, countedBy string, at time.Time) error {
	if actualLength.IsNegative() {
		return &ValidationError{Entity: "inventory_check_item", Field: "actual_length", Message: "must not be negative"}
	}
	if actualWeight.IsNegative() {
		return &ValidationError{Entity: "inventory_check_item", Field: "actual_weight", Message: "must not be negative"}
	}
	lengthDifference := actualLength.Sub(item.SystemLength)
	weightDifference := actualWeight.Sub(item.SystemWeight)
	item.ActualLength = &actualLength
	item.ActualWeight = &actualWeight
	item.LengthDifference = &lengthDifference
	item.WeightDifference = &weightDifference
	item.CountedBy = countedBy
	item.CountedAt = &at
	return nil
}

type NewInventoryCheck struct {
	FabricTypeId int    `json:"fabric_type_id"`
	Location     string `json:"location"`
	Notes        string `json:"notes"`
}

// CheckReport summarises a completed (or in-flight) check.
type CheckReport struct {
	InventoryCheckId   int                   `json:"inventory_check_id"`
	CheckNumber        string                `json:"check_number"`
	Status             CheckStatus           `json:"status"`
	TotalItems         int                   `json:"total_items"`
	CountedItems       int                   `json:"counted_items"`
	UncountedItems     int                   `json:"uncounted_items"`
	TotalSystemLength  decimal.Decimal       `json:"total_system_length"`
	TotalActualLength  decimal.Decimal       `json:"total_actual_length"`
	TotalLengthDiff    decimal.Decimal       `json:"total_length_difference"`
	TotalWeightDiff    decimal.Decimal       `json:"total_weight_difference"`
	Threshold          decimal.Decimal       `json:"threshold"`
	PerFabric          []FabricBreakdown     `json:"per_fabric"`
	LargeDiscrepancies []*InventoryCheckItem `json:"large_discrepancies"`
}

type FabricBreakdown struct {
	FabricTypeId     int             `json:"fabric_type_id"`
	ItemCount        int             `json:"item_count"`
	LengthDifference decimal.Decimal `json:"length_difference"`
	WeightDifference decimal.Decimal `json:"weight_difference"`
}

// BuildCheckReport aggregates check items. A non-positive threshold falls
// back to DefaultDiscrepancyThreshold. Uncounted items contribute system
// figures only and never appear as discrepancies.
func BuildCheckReport(check *InventoryCheck, threshold decimal.Decimal) *CheckReport {
	if !threshold.IsPositive() {
		threshold = DefaultDiscrepancyThreshold
	}
	report := &CheckReport{
		InventoryCheckId: check.ID,
		CheckNumber:      check.CheckNumber,
		Status:           check.Status,
		TotalItems:       len(check.Items),
		Threshold:        threshold,
	}

	perFabric := make(map[int]*FabricBreakdown)
	fabricOrder := make([]int, 0)
	for i := range check.Items {
		item := &check.Items[i]
		report.TotalSystemLength = report.TotalSystemLength.Add(item.SystemLength)
		if item.ActualLength == nil {
			report.UncountedItems++
			continue
		}
		report.CountedItems++
		report.TotalActualLength = report.TotalActualLength.Add(*item.ActualLength)
		report.TotalLengthDiff = report.TotalLengthDiff.Add(*item.LengthDifference)
		report.TotalWeightDiff = report.TotalWeightDiff.Add(*item.WeightDifference)

		breakdown, ok := perFabric[item.FabricTypeId]
		if !ok {
			breakdown = &FabricBreakdown{FabricTypeId: item.FabricTypeId}
			perFabric[item.FabricTypeId] = breakdown
			fabricOrder = append(fabricOrder, item.FabricTypeId)
		}
		breakdown.ItemCount++
		breakdown.LengthDifference = breakdown.LengthDifference.Add(*item.LengthDifference)
		breakdown.WeightDifference = breakdown.WeightDifference.Add(*item.WeightDifference)

		if item.LengthDifference.Abs().GreaterThanOrEqual(threshold) {
			report.LargeDiscrepancies = append(report.LargeDiscrepancies, item)
		}
	}

	sort.Ints(fabricOrder)
	for _, fabricTypeId := range fabricOrder {
		report.PerFabric = append(report.PerFabric, *perFabric[fabricTypeId])
	}
	sort.SliceStable(report.LargeDiscrepancies, func(i, j int) bool {
		return report.LargeDiscrepancies[i].LengthDifference.Abs().
			GreaterThan(report.LargeDiscrepancies[j].LengthDifference.Abs())
	})
	return report
}
