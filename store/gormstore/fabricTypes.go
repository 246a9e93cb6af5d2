package gormstore

import (
	"context"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"gorm.io/gorm"
)

type fabricTypeStore struct {
	db *gorm.DB
}

func (s *fabricTypeStore) Insert(ctx context.Context, fabricType *models.FabricType) error {
	if err := s.db.WithContext(ctx).Create(fabricType).Error; err != nil {
		return translateInsertError(err, "fabric_type", "code")
	}
	return nil
}

func (s *fabricTypeStore) Update(ctx context.Context, id int, updates map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.FabricType{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return translateInsertError(result.Error, "fabric_type", "code")
	}
	if result.RowsAffected == 0 {
		return &models.NotFoundError{Entity: "fabric_type", EntityId: id}
	}
	return nil
}

func (s *fabricTypeStore) Delete(ctx context.Context, id int) error {
	result := s.db.WithContext(ctx).Delete(&models.FabricType{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &models.NotFoundError{Entity: "fabric_type", EntityId: id}
	}
	return nil
}

func (s *fabricTypeStore) Get(ctx context.Context, id int) (*models.FabricType, error) {
	var fabricType models.FabricType
	if err := s.db.WithContext(ctx).First(&fabricType, id).Error; err != nil {
		return nil, notFoundOr(err, "fabric_type", id)
	}
	return &fabricType, nil
}

func (s *fabricTypeStore) GetByCode(ctx context.Context, code string) (*models.FabricType, error) {
	var fabricType models.FabricType
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&fabricType).Error
	if err != nil {
		return nil, notFoundOr(err, "fabric_type", 0)
	}
	return &fabricType, nil
}

func (s *fabricTypeStore) List(ctx context.Context, activeOnly bool) ([]*models.FabricType, error) {
	var results []*models.FabricType
	dbCtx := s.db.WithContext(ctx)
	if activeOnly {
		dbCtx = dbCtx.Where("is_active = ?", true)
	}
	if err := dbCtx.Order("code").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *fabricTypeStore) CountRolls(ctx context.Context, fabricTypeId int) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.InventoryRoll{}).
		Where("fabric_type_id = ? AND status <> ?", fabricTypeId, models.RollStatusVoided).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
