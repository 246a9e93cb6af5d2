// Package ledger is the system of record for fabric rolls. Every lifecycle
// move, measurement correction and void goes through here so the audit trail
// stays complete. Summaries elsewhere are always derived from roll rows.
package ledger

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/store"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/sirupsen/logrus"
)

const moduleName = "ledger"

type Ledger struct {
	store  store.Store
	logger *logrus.Logger
}

func New(s store.Store, logger *logrus.Logger) *Ledger {
	return &Ledger{store: s, logger: logger}
}

// Receive registers a new physical roll. The fabric type must exist; on a
// dangling reference nothing is persisted.
func (l *Ledger) Receive(ctx context.Context, input *models.NewInventoryRoll) (*models.InventoryRoll, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	if _, err := l.store.FabricTypes().Get(ctx, input.FabricTypeId); err != nil {
		if models.IsNotFound(err) {
			return nil, &models.ReferentialError{
				Entity:      "inventory_roll",
				Reference:   "fabric_type",
				ReferenceId: input.FabricTypeId,
			}
		}
		return nil, err
	}

	grade := input.Grade
	if grade == "" {
		grade = models.QualityGradeA
	}

	roll := &models.InventoryRoll{
		RollNumber:   input.RollNumber,
		FabricTypeId: input.FabricTypeId,
		LotNumber:    input.LotNumber,
		Length:       input.Length,
		Width:        input.Width,
		Weight:       input.Weight,
		Grade:        grade,
		Status:       models.RollStatusAvailable,
		Location:     input.Location,
		DefectNotes:  input.DefectNotes,
		ReceivedBy:   utils.ActorOrSystem(ctx),
		ReceivedAt:   time.Now().UTC(),
		Version:      0,
	}
	if err := l.store.Rolls().Insert(ctx, roll); err != nil {
		return nil, err
	}

	l.appendEvent(ctx, models.LedgerEventRollReceived, nil, roll)
	return roll, nil
}

// Transition moves a roll along its lifecycle using the version the caller
// read. A lost race or a move outside the allowed set both surface as
// ConflictError; the caller re-reads and decides.
func (l *Ledger) Transition(ctx context.Context, id int, version int, to models.RollStatus) (*models.InventoryRoll, error) {
	if !to.Valid() || to == models.RollStatusVoided {
		return nil, &models.ValidationError{Entity: "inventory_roll", Field: "status", Message: "invalid target status"}
	}

	roll, err := l.store.Rolls().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !roll.Status.CanTransitionTo(to) {
		return nil, &models.ConflictError{
			Entity:    "inventory_roll",
			EntityId:  id,
			Op:        "transition",
			Version:   roll.Version,
			Current:   string(roll.Status),
			Attempted: string(to),
		}
	}

	ok, err := l.store.Rolls().UpdateVersioned(ctx, id, version, map[string]interface{}{
		"status": to,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &models.ConflictError{
			Entity:    "inventory_roll",
			EntityId:  id,
			Op:        "transition",
			Version:   version,
			Current:   string(roll.Status),
			Attempted: string(to),
		}
	}

	updated, err := l.store.Rolls().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	l.appendEvent(ctx, models.LedgerEventRollTransitioned, roll, updated)
	return updated, nil
}

// Correct fixes measured length, weight or grade without moving the
// lifecycle. Voided rolls are frozen.
func (l *Ledger) Correct(ctx context.Context, id int, version int, input *models.RollCorrection) (*models.InventoryRoll, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	roll, err := l.store.Rolls().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if roll.Status == models.RollStatusVoided {
		return nil, &models.ConflictError{
			Entity:    "inventory_roll",
			EntityId:  id,
			Op:        "correct",
			Version:   roll.Version,
			Current:   string(roll.Status),
			Attempted: "correction",
		}
	}

	updates := make(map[string]interface{})
	if input.Length != nil {
		updates["length"] = *input.Length
	}
	if input.Weight != nil {
		updates["weight"] = *input.Weight
	}
	if input.Grade != nil {
		updates["grade"] = *input.Grade
	}

	ok, err := l.store.Rolls().UpdateVersioned(ctx, id, version, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &models.ConflictError{
			Entity:    "inventory_roll",
			EntityId:  id,
			Op:        "correct",
			Version:   version,
			Current:   string(roll.Status),
			Attempted: "correction",
		}
	}

	updated, err := l.store.Rolls().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	l.appendEvent(ctx, models.LedgerEventRollCorrected, roll, updated)
	return updated, nil
}

// Void soft-deletes a roll. Only idle rolls can be voided; rolls that are
// part of a live issuance or already consumed keep their history intact.
func (l *Ledger) Void(ctx context.Context, id int, version int, reason string) (*models.InventoryRoll, error) {
	roll, err := l.store.Rolls().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if roll.Status != models.RollStatusAvailable && roll.Status != models.RollStatusReserved {
		return nil, &models.ConflictError{
			Entity:    "inventory_roll",
			EntityId:  id,
			Op:        "void",
			Version:   roll.Version,
			Current:   string(roll.Status),
			Attempted: string(models.RollStatusVoided),
		}
	}

	updates := map[string]interface{}{
		"status": models.RollStatusVoided,
	}
	if reason != "" {
		updates["defect_notes"] = appendNote(roll.DefectNotes, reason)
	}
	ok, err := l.store.Rolls().UpdateVersioned(ctx, id, version, updates)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &models.ConflictError{
			Entity:    "inventory_roll",
			EntityId:  id,
			Op:        "void",
			Version:   version,
			Current:   string(roll.Status),
			Attempted: string(models.RollStatusVoided),
		}
	}

	updated, err := l.store.Rolls().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	l.appendEvent(ctx, models.LedgerEventRollVoided, roll, updated)
	return updated, nil
}

// Repair applies integrity-sweep fixes through the same versioned write and
// outbox path as every other mutation, so repairs leave an audit trail too.
// Unlike Correct it accepts rolls in an invalid current state; repairing
// those is the point. Returns false without error when another writer got
// to the roll first.
func (l *Ledger) Repair(ctx context.Context, id int, version int, updates map[string]interface{}) (*models.InventoryRoll, bool, error) {
	roll, err := l.store.Rolls().Get(ctx, id)
	if err != nil {
		return nil, false, err
	}

	ok, err := l.store.Rolls().UpdateVersioned(ctx, id, version, updates)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	updated, err := l.store.Rolls().Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	l.appendEvent(ctx, models.LedgerEventRollRepaired, roll, updated)
	return updated, true, nil
}

func (l *Ledger) Get(ctx context.Context, id int) (*models.InventoryRoll, error) {
	return l.store.Rolls().Get(ctx, id)
}

func (l *Ledger) GetByNumber(ctx context.Context, rollNumber string) (*models.InventoryRoll, error) {
	return l.store.Rolls().GetByNumber(ctx, rollNumber)
}

// Query lists rolls. Voided rolls are excluded unless the filter asks for
// them explicitly.
func (l *Ledger) Query(ctx context.Context, filter models.RollFilter) ([]*models.InventoryRoll, error) {
	return l.store.Rolls().Query(ctx, filter)
}

// appendEvent writes the outbox row for a committed mutation. A failed
// append must not undo the mutation, so it is logged and swallowed.
func (l *Ledger) appendEvent(ctx context.Context, eventType models.LedgerEventType, oldRoll *models.InventoryRoll, newRoll *models.InventoryRoll) {
	event, err := models.NewRollEvent(ctx, eventType, oldRoll, newRoll)
	if err != nil {
		config.LogError(l.logger, moduleName, "appendEvent", "marshal", string(eventType), err)
		return
	}
	if err := l.store.Events().Append(ctx, event); err != nil {
		config.LogError(l.logger, moduleName, "appendEvent", "append", string(eventType), err)
	}
}

func appendNote(existing string, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
