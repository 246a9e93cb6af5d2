package gormstore

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"gorm.io/gorm"
)

type eventStore struct {
	db *gorm.DB
}

func (s *eventStore) Append(ctx context.Context, event *models.LedgerEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *eventStore) ListPending(ctx context.Context, limit int) ([]*models.LedgerEvent, error) {
	var events []*models.LedgerEvent
	err := s.db.WithContext(ctx).
		Where("publish_status = ?", models.EventPublishStatusPending).
		Order("id").Limit(limit).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *eventStore) MarkSent(ctx context.Context, id int, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.LedgerEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"publish_status": models.EventPublishStatusSent,
			"published_at":   at,
			"last_error":     "",
		}).Error
}

func (s *eventStore) MarkFailed(ctx context.Context, id int, publishErr string) error {
	return s.db.WithContext(ctx).Model(&models.LedgerEvent{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"publish_status": models.EventPublishStatusFailed,
			"attempt_count":  gorm.Expr("attempt_count + 1"),
			"last_error":     publishErr,
		}).Error
}
