package workflow

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"cloud.google.com/go/pubsub"
)

const dispatchBatchSize = 100

// EventPublisher sends one outbox event to the downstream audit stream.
type EventPublisher interface {
	Publish(ctx context.Context, event *models.LedgerEvent) error
}

// PubSubPublisher publishes ledger events to the configured Pub/Sub topic.
type PubSubPublisher struct {
	TopicName string
}

func (p *PubSubPublisher) Publish(ctx context.Context, event *models.LedgerEvent) error {
	client, err := config.GetPubSubClient(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	topic := client.Topic(p.TopicName)
	result := topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"eventType":     string(event.EventType),
			"rollId":        strconv.Itoa(event.RollId),
			"correlationId": event.CorrelationId,
		},
	})
	_, err = result.Get(ctx)
	return err
}

// DispatchPendingEvents publishes one batch of pending outbox rows. Failures
// mark the row failed with the error recorded; nothing is retried within the
// batch. Returns how many events were sent.
func DispatchPendingEvents(ctx context.Context, deps *Deps, publisher EventPublisher) (int, error) {
	events, err := deps.Store.Events().ListPending(ctx, dispatchBatchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, event := range events {
		if err := publisher.Publish(ctx, event); err != nil {
			config.LogError(deps.Logger, "workflow", "DispatchPendingEvents", "publish", event.ID, err)
			if markErr := deps.Store.Events().MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				config.LogError(deps.Logger, "workflow", "DispatchPendingEvents", "mark failed", event.ID, markErr)
			}
			continue
		}
		if err := deps.Store.Events().MarkSent(ctx, event.ID, time.Now().UTC()); err != nil {
			config.LogError(deps.Logger, "workflow", "DispatchPendingEvents", "mark sent", event.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// RunOutboxDispatcher polls the outbox until the context is cancelled. The
// distributed lock keeps multiple replicas from double-publishing the same
// batch; when the lock is taken the tick is skipped, not queued.
func RunOutboxDispatcher(ctx context.Context, deps *Deps, publisher EventPublisher, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		release, held, err := utils.ObtainLock(ctx, "outboxDispatcher", "global", interval)
		if err != nil {
			config.LogError(deps.Logger, "workflow", "RunOutboxDispatcher", "lock", nil, err)
			continue
		}
		if !held {
			release()
			continue
		}
		if _, err := DispatchPendingEvents(ctx, deps, publisher); err != nil {
			config.LogError(deps.Logger, "workflow", "RunOutboxDispatcher", "dispatch", nil, err)
		}
		release()
	}
}
