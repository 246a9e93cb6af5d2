package gormstore

import (
	"context"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"gorm.io/gorm"
)

type issuanceStore struct {
	db *gorm.DB
}

// Insert persists the record with its lines in one transaction; gorm cascades
// the association create.
func (s *issuanceStore) Insert(ctx context.Context, record *models.IssuanceRecord) error {
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return translateInsertError(err, "issuance", "issuance_number")
	}
	return nil
}

func (s *issuanceStore) Get(ctx context.Context, id int) (*models.IssuanceRecord, error) {
	var record models.IssuanceRecord
	err := s.db.WithContext(ctx).Preload("Rolls").First(&record, id).Error
	if err != nil {
		return nil, notFoundOr(err, "issuance", id)
	}
	return &record, nil
}

func (s *issuanceStore) ListByOrder(ctx context.Context, cuttingOrderId int) ([]*models.IssuanceRecord, error) {
	var records []*models.IssuanceRecord
	err := s.db.WithContext(ctx).Preload("Rolls").
		Where("cutting_order_id = ?", cuttingOrderId).
		Order("id").Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *issuanceStore) UpdateStatus(ctx context.Context, id int, status models.IssuanceStatus) error {
	result := s.db.WithContext(ctx).Model(&models.IssuanceRecord{}).
		Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &models.NotFoundError{Entity: "issuance", EntityId: id}
	}
	return nil
}
