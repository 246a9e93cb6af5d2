package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRoll is a single physical roll of fabric. One row per roll; there
// is no aggregated quantity row, summaries are always computed from rolls.
// Version backs the optimistic lock: every successful mutation increments it.
type InventoryRoll struct {
	ID           int             `gorm:"primary_key" json:"id"`
	RollNumber   string          `gorm:"size:50;uniqueIndex;not null" json:"roll_number" binding:"required"`
	FabricTypeId int             `gorm:"index;not null" json:"fabric_type_id" binding:"required"`
	LotNumber    string          `gorm:"size:50;index" json:"lot_number"`
	Length       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"length"`
	Width        decimal.Decimal `gorm:"type:decimal(10,2)" json:"width"`
	Weight       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"weight"`
	Grade        QualityGrade    `gorm:"size:1;not null;default:'A'" json:"grade"`
	Status       RollStatus      `gorm:"size:20;index;not null;default:'available'" json:"status"`
	Location     string          `gorm:"size:100" json:"location"`
	DefectNotes  string          `gorm:"type:text" json:"defect_notes"`
	ReceivedBy   string          `gorm:"size:100" json:"received_by"`
	ReceivedAt   time.Time       `json:"received_at"`
	Version      int             `gorm:"not null;default:0" json:"version"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInventoryRoll struct {
	RollNumber   string          `json:"roll_number" binding:"required"`
	FabricTypeId int             `json:"fabric_type_id" binding:"required"`
	LotNumber    string          `json:"lot_number"`
	Length       decimal.Decimal `json:"length" binding:"required"`
	Width        decimal.Decimal `json:"width"`
	Weight       decimal.Decimal `json:"weight" binding:"required"`
	Grade        QualityGrade    `json:"grade"`
	Location     string          `json:"location"`
	DefectNotes  string          `json:"defect_notes"`
}

// Validate checks field-level constraints only. Referential checks (fabric
// type existence, roll number uniqueness) happen against the store.
func (input *NewInventoryRoll) Validate() error {
	if strings.TrimSpace(input.RollNumber) == "" {
		return &ValidationError{Entity: "inventory_roll", Field: "roll_number", Message: "roll number is required"}
	}
	if input.FabricTypeId <= 0 {
		return &ValidationError{Entity: "inventory_roll", Field: "fabric_type_id", Message: "fabric type id is required"}
	}
	if !input.Length.IsPositive() {
		return &ValidationError{Entity: "inventory_roll", Field: "length", Message: "must be greater than zero"}
	}
	if !input.Weight.IsPositive() {
		return &ValidationError{Entity: "inventory_roll", Field: "weight", Message: "must be greater than zero"}
	}
	if input.Width.IsNegative() {
		return &ValidationError{Entity: "inventory_roll", Field: "width", Message: "must not be negative"}
	}
	if input.Grade != "" && !input.Grade.Valid() {
		return &ValidationError{Entity: "inventory_roll", Field: "grade", Message: "invalid quality grade"}
	}
	return nil
}

// RollCorrection adjusts measurement or grade without moving the lifecycle.
// Nil fields are left untouched.
type RollCorrection struct {
	Length *decimal.Decimal `json:"length"`
	Weight *decimal.Decimal `json:"weight"`
	Grade  *QualityGrade    `json:"grade"`
	Reason string           `json:"reason"`
}

func (input *RollCorrection) Validate() error {
	if input.Length == nil && input.Weight == nil && input.Grade == nil {
		return &ValidationError{Entity: "inventory_roll", Message: "correction must change at least one field"}
	}
	if input.Length != nil && !input.Length.IsPositive() {
		return &ValidationError{Entity: "inventory_roll", Field: "length", Message: "must be greater than zero"}
	}
	if input.Weight != nil && !input.Weight.IsPositive() {
		return &ValidationError{Entity: "inventory_roll", Field: "weight", Message: "must be greater than zero"}
	}
	if input.Grade != nil && !input.Grade.Valid() {
		return &ValidationError{Entity: "inventory_roll", Field: "grade", Message: "invalid quality grade"}
	}
	return nil
}

// RollFilter narrows ledger queries. Zero values mean "no filter".
type RollFilter struct {
	FabricTypeId  int
	LotNumber     string
	Status        RollStatus
	Grade         QualityGrade
	Location      string
	IncludeVoided bool
}
