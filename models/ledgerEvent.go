package models

import (
	"context"
	"encoding/json"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/google/uuid"
)

// LedgerEvent is the transactional outbox row for roll lifecycle events.
// It is written in the same unit of work as the roll mutation and published
// asynchronously by the outbox dispatcher after commit.
type LedgerEvent struct {
	ID            int                `gorm:"primary_key" json:"id"`
	EventType     LedgerEventType    `gorm:"size:50;not null" json:"event_type"`
	RollId        int                `gorm:"index;not null" json:"roll_id"`
	Actor         string             `gorm:"size:100;not null" json:"actor"`
	CorrelationId string             `gorm:"size:64;index" json:"correlation_id"`
	OldObj        []byte             `gorm:"type:json" json:"old_obj"`
	NewObj        []byte             `gorm:"type:json" json:"new_obj"`
	PublishStatus EventPublishStatus `gorm:"size:20;index;not null;default:'PENDING'" json:"publish_status"`
	AttemptCount  int                `gorm:"not null;default:0" json:"attempt_count"`
	LastError     string             `gorm:"type:text" json:"last_error"`
	OccurredAt    time.Time          `gorm:"index;not null" json:"occurred_at"`
	PublishedAt   *time.Time         `json:"published_at"`
	CreatedAt     time.Time          `gorm:"autoCreateTime" json:"created_at"`
}

// NewRollEvent builds an outbox row for a roll mutation. oldRoll may be nil
// for receipts. The actor comes from context, falling back to "system".
func NewRollEvent(ctx context.Context, eventType LedgerEventType, oldRoll *InventoryRoll, newRoll *InventoryRoll) (*LedgerEvent, error) {
	event := &LedgerEvent{
		EventType:     eventType,
		Actor:         utils.ActorOrSystem(ctx),
		CorrelationId: correlationIdFromContextOrNew(ctx),
		PublishStatus: EventPublishStatusPending,
		OccurredAt:    time.Now().UTC(),
	}
	if newRoll != nil {
		event.RollId = newRoll.ID
		data, err := json.Marshal(newRoll)
		if err != nil {
			return nil, err
		}
		event.NewObj = data
	}
	if oldRoll != nil {
		if event.RollId == 0 {
			event.RollId = oldRoll.ID
		}
		data, err := json.Marshal(oldRoll)
		if err != nil {
			return nil, err
		}
		event.OldObj = data
	}
	return event, nil
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if ctx != nil {
		if v, ok := utils.GetCorrelationIdFromContext(ctx); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}
