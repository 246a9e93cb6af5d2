package gormstore

import (
	"context"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"gorm.io/gorm"
)

type cuttingOrderStore struct {
	db *gorm.DB
}

func (s *cuttingOrderStore) Insert(ctx context.Context, order *models.CuttingOrder) error {
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return translateInsertError(err, "cutting_order", "order_number")
	}
	return nil
}

func (s *cuttingOrderStore) Get(ctx context.Context, id int) (*models.CuttingOrder, error) {
	var order models.CuttingOrder
	err := s.db.WithContext(ctx).Preload("Details").First(&order, id).Error
	if err != nil {
		return nil, notFoundOr(err, "cutting_order", id)
	}
	return &order, nil
}

func (s *cuttingOrderStore) GetByNumber(ctx context.Context, orderNumber string) (*models.CuttingOrder, error) {
	var order models.CuttingOrder
	err := s.db.WithContext(ctx).Preload("Details").
		Where("order_number = ?", orderNumber).First(&order).Error
	if err != nil {
		return nil, notFoundOr(err, "cutting_order", 0)
	}
	return &order, nil
}

func (s *cuttingOrderStore) Update(ctx context.Context, id int, updates map[string]interface{}) error {
	result := s.db.WithContext(ctx).Model(&models.CuttingOrder{}).
		Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &models.NotFoundError{Entity: "cutting_order", EntityId: id}
	}
	return nil
}

func (s *cuttingOrderStore) List(ctx context.Context, status models.CuttingOrderStatus) ([]*models.CuttingOrder, error) {
	var orders []*models.CuttingOrder
	dbCtx := s.db.WithContext(ctx).Preload("Details")
	if status != "" {
		dbCtx = dbCtx.Where("status = ?", status)
	}
	if err := dbCtx.Order("order_number").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (s *cuttingOrderStore) InsertDetails(ctx context.Context, details []models.CuttingOrderDetail) error {
	if len(details) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&details).Error
}

func (s *cuttingOrderStore) UpdateDetail(ctx context.Context, detail *models.CuttingOrderDetail) error {
	result := s.db.WithContext(ctx).Model(&models.CuttingOrderDetail{}).
		Where("id = ?", detail.ID).
		Updates(map[string]interface{}{
			"actual_length": detail.ActualLength,
			"waste_length":  detail.WasteLength,
			"waste_percent": detail.WastePercent,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &models.NotFoundError{Entity: "cutting_order_detail", EntityId: detail.ID}
	}
	return nil
}
