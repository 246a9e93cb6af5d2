package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type FabricType struct {
	ID           int             `gorm:"primary_key" json:"id"`
	Code         string          `gorm:"size:50;uniqueIndex;not null" json:"code" binding:"required"`
	Name         string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Composition  string          `gorm:"size:255" json:"composition"`
	WidthCm      decimal.Decimal `gorm:"type:decimal(10,2)" json:"width_cm"`
	WeightGsm    decimal.Decimal `gorm:"type:decimal(10,2)" json:"weight_gsm"`
	Color        string          `gorm:"size:50" json:"color"`
	Supplier     string          `gorm:"size:100" json:"supplier"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(14,4)" json:"unit_price"`
	MinStock     decimal.Decimal `gorm:"type:decimal(12,2)" json:"min_stock"`
	Unit         string          `gorm:"size:10;not null;default:'m'" json:"unit"`
	IsActive     *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFabricType struct {
	Code        string          `json:"code" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Composition string          `json:"composition"`
	WidthCm     decimal.Decimal `json:"width_cm"`
	WeightGsm   decimal.Decimal `json:"weight_gsm"`
	Color       string          `json:"color"`
	Supplier    string          `json:"supplier"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	MinStock    decimal.Decimal `json:"min_stock"`
	Unit        string          `json:"unit"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewFabricType) Validate() error {
	if strings.TrimSpace(input.Code) == "" {
		return &ValidationError{Entity: "fabric_type", Field: "code", Message: "code is required"}
	}
	if strings.TrimSpace(input.Name) == "" {
		return &ValidationError{Entity: "fabric_type", Field: "name", Message: "name is required"}
	}
	if input.WidthCm.IsNegative() {
		return &ValidationError{Entity: "fabric_type", Field: "width_cm", Message: "must not be negative"}
	}
	if input.WeightGsm.IsNegative() {
		return &ValidationError{Entity: "fabric_type", Field: "weight_gsm", Message: "must not be negative"}
	}
	if input.UnitPrice.IsNegative() {
		return &ValidationError{Entity: "fabric_type", Field: "unit_price", Message: "must not be negative"}
	}
	if input.MinStock.IsNegative() {
		return &ValidationError{Entity: "fabric_type", Field: "min_stock", Message: "must not be negative"}
	}
	input.Unit = strings.TrimSpace(input.Unit)
	if input.Unit == "" {
		input.Unit = "m"
	}
	return nil
}
