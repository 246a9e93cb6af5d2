package gormstore

import (
	"context"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"gorm.io/gorm"
)

type checkStore struct {
	db *gorm.DB
}

func (s *checkStore) Insert(ctx context.Context, check *models.InventoryCheck) error {
	if err := s.db.WithContext(ctx).Create(check).Error; err != nil {
		return translateInsertError(err, "inventory_check", "check_number")
	}
	return nil
}

func (s *checkStore) Get(ctx context.Context, id int) (*models.InventoryCheck, error) {
	var check models.InventoryCheck
	err := s.db.WithContext(ctx).Preload("Items").First(&check, id).Error
	if err != nil {
		return nil, notFoundOr(err, "inventory_check", id)
	}
	return &check, nil
}

func (s *checkStore) Update(ctx context.Context, id int, updates map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.InventoryCheck{}).
		Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &models.NotFoundError{Entity: "inventory_check", EntityId: id}
	}
	return nil
}

func (s *checkStore) UpdateItem(ctx context.Context, item *models.InventoryCheckItem) error {
	result := s.db.WithContext(ctx).Model(&models.InventoryCheckItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"actual_length":      item.ActualLength,
			"actual_weight":      item.ActualWeight,
			"length_difference":  item.LengthDifference,
			"weight_difference":  item.WeightDifference,
			"corrected":          item.Corrected,
			"requires_follow_up": item.RequiresFollowUp,
			"counted_by":         item.CountedBy,
			"counted_at":         item.CountedAt,
			"notes":              item.Notes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &models.NotFoundError{Entity: "inventory_check_item", EntityId: item.ID}
	}
	return nil
}

func (s *checkStore) List(ctx context.Context, status models.CheckStatus) ([]*models.InventoryCheck, error) {
	var checks []*models.InventoryCheck
	dbCtx := s.db.WithContext(ctx)
	if status != "" {
		dbCtx = dbCtx.Where("status = ?", status)
	}
	if err := dbCtx.Order("id DESC").Find(&checks).Error; err != nil {
		return nil, err
	}
	return checks, nil
}
