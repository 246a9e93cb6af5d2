package gormstore

import (
	"context"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"gorm.io/gorm"
)

type rollStore struct {
	db *gorm.DB
}

func (s *rollStore) Insert(ctx context.Context, roll *models.InventoryRoll) error {
	if err := s.db.WithContext(ctx).Create(roll).Error; err != nil {
		return translateInsertError(err, "inventory_roll", "roll_number")
	}
	return nil
}

func (s *rollStore) Get(ctx context.Context, id int) (*models.InventoryRoll, error) {
	var roll models.InventoryRoll
	if err := s.db.WithContext(ctx).First(&roll, id).Error; err != nil {
		return nil, notFoundOr(err, "inventory_roll", id)
	}
	return &roll, nil
}

func (s *rollStore) GetByNumber(ctx context.Context, rollNumber string) (*models.InventoryRoll, error) {
	var roll models.InventoryRoll
	err := s.db.WithContext(ctx).Where("roll_number = ?", rollNumber).First(&roll).Error
	if err != nil {
		return nil, notFoundOr(err, "inventory_roll", 0)
	}
	return &roll, nil
}

// UpdateVersioned is a single guarded UPDATE; the WHERE clause on version
// makes the compare-and-set atomic without row locks.
func (s *rollStore) UpdateVersioned(ctx context.Context, id int, version int, updates map[string]interface{}) (bool, error) {
	merged := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		merged[k] = v
	}
	merged["version"] = version + 1

	result := s.db.WithContext(ctx).Model(&models.InventoryRoll{}).
		Where("id = ? AND version = ?", id, version).
		Updates(merged)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *rollStore) Query(ctx context.Context, filter models.RollFilter) ([]*models.InventoryRoll, error) {
	var rolls []*models.InventoryRoll
	dbCtx := s.db.WithContext(ctx).Model(&models.InventoryRoll{})
	if filter.FabricTypeId > 0 {
		dbCtx = dbCtx.Where("fabric_type_id = ?", filter.FabricTypeId)
	}
	if filter.LotNumber != "" {
		dbCtx = dbCtx.Where("lot_number = ?", filter.LotNumber)
	}
	if filter.Status != "" {
		dbCtx = dbCtx.Where("status = ?", filter.Status)
	} else if !filter.IncludeVoided {
		dbCtx = dbCtx.Where("status <> ?", models.RollStatusVoided)
	}
	if filter.Grade != "" {
		dbCtx = dbCtx.Where("grade = ?", filter.Grade)
	}
	if filter.Location != "" {
		dbCtx = dbCtx.Where("location = ?", filter.Location)
	}
	if err := dbCtx.Order("roll_number").Find(&rolls).Error; err != nil {
		return nil, err
	}
	return rolls, nil
}
