package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// IssuanceRecord hands a set of whole rolls to a cutting order. Rolls are
// never split at issuance; partial consumption shows up later as waste on
// the cutting order.
type IssuanceRecord struct {
	ID             int             `gorm:"primary_key" json:"id"`
	IssuanceNumber string          `gorm:"size:50;uniqueIndex;not null" json:"issuance_number"`
	CuttingOrderId int             `gorm:"index;not null" json:"cutting_order_id"`
	Status         IssuanceStatus  `gorm:"size:20;not null;default:'pending'" json:"status"`
	TotalRolls     int             `gorm:"not null" json:"total_rolls"`
	TotalLength    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_length"`
	TotalWeight    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_weight"`
	IssuedBy       string          `gorm:"size:100" json:"issued_by"`
	IssuedAt       time.Time       `json:"issued_at"`
	Notes          string          `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Rolls []IssuanceRoll `gorm:"foreignKey:IssuanceId" json:"rolls"`
}

// IssuanceRoll is one line of an issuance. Length and weight are snapshots
// of the roll at issuance time; later corrections to the roll do not touch
// them, so the record stays an honest account of what was handed over.
type IssuanceRoll struct {
	ID         int             `gorm:"primary_key" json:"id"`
	IssuanceId int             `gorm:"index;not null" json:"issuance_id"`
	RollId     int             `gorm:"index;not null" json:"roll_id"`
	RollNumber string          `gorm:"size:50;not null" json:"roll_number"`
	Length     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"length"`
	Weight     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"weight"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewIssuanceRecord struct {
	CuttingOrderId int    `json:"cutting_order_id" binding:"required"`
	RollIds        []int  `json:"roll_ids" binding:"required"`
	Notes          string `json:"notes"`
}

func (input *NewIssuanceRecord) Validate() error {
	if input.CuttingOrderId <= 0 {
		return &ValidationError{Entity: "issuance", Field: "cutting_order_id", Message: "cutting order id is required"}
	}
	if len(input.RollIds) == 0 {
		return &ValidationError{Entity: "issuance", Field: "roll_ids", Message: "at least one roll is required"}
	}
	seen := make(map[int]struct{}, len(input.RollIds))
	for _, id := range input.RollIds {
		if id <= 0 {
			return &ValidationError{Entity: "issuance", Field: "roll_ids", Message: "invalid roll id"}
		}
		if _, dup := seen[id]; dup {
			return &ValidationError{Entity: "issuance", Field: "roll_ids", Message: "duplicate roll id"}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// ComputeTotals derives the record totals from its lines. Totals are written
// once at creation and never recomputed afterwards.
func (r *IssuanceRecord) ComputeTotals() {
	r.TotalRolls = len(r.Rolls)
	totalLength := decimal.Zero
	totalWeight := decimal.Zero
	for _, line := range r.Rolls {
		totalLength = totalLength.Add(line.Length)
		totalWeight = totalWeight.Add(line.Weight)
	}
	r.TotalLength = totalLength
	r.TotalWeight = totalWeight
}
