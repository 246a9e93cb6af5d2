package ledger

import (
	"context"
	"io"
	"testing"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/store/memstore"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func newTestLedger(t *testing.T) (*Ledger, *memstore.Store, int) {
	t.Helper()
	st := memstore.New()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	fabricType := &models.FabricType{Code: "KK001", Name: "Cotton Twill", IsActive: utils.NewTrue()}
	if err := st.FabricTypes().Insert(context.Background(), fabricType); err != nil {
		t.Fatalf("seed fabric type: %v", err)
	}
	return New(st, logger), st, fabricType.ID
}

func receiveRoll(t *testing.T, l *Ledger, fabricTypeId int, rollNumber string) *models.InventoryRoll {
	t.Helper()
	roll, err := l.Receive(context.Background(), &models.NewInventoryRoll{
		RollNumber:   rollNumber,
		FabricTypeId: fabricTypeId,
		Length:       decimal.RequireFromString("100"),
		Weight:       decimal.RequireFromString("20"),
	})
	if err != nil {
		t.Fatalf("receive %s: %v", rollNumber, err)
	}
	return roll
}

func TestReceiveDefaults(t *testing.T) {
	l, _, fabricTypeId := newTestLedger(t)
	roll := receiveRoll(t, l, fabricTypeId, "KK001-R001")

	if roll.Status != models.RollStatusAvailable {
		t.Fatalf("expected available, got %s", roll.Status)
	}
	if roll.Grade != models.QualityGradeA {
		t.Fatalf("expected default grade A, got %s", roll.Grade)
	}
	if roll.Version != 0 {
		t.Fatalf("expected version 0, got %d", roll.Version)
	}
}

func TestReceiveRejectsMissingFabricType(t *testing.T) {
	l, st, _ := newTestLedger(t)
	_, err := l.Receive(context.Background(), &models.NewInventoryRoll{
		RollNumber:   "KK999-R001",
		FabricTypeId: 999,
		Length:       decimal.RequireFromString("100"),
		Weight:       decimal.RequireFromString("20"),
	})
	if !models.IsReferential(err) {
		t.Fatalf("expected referential error, got %v", err)
	}
	// The invalid roll must not be persisted.
	rolls, err := st.Rolls().Query(context.Background(), models.RollFilter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rolls) != 0 {
		t.Fatalf("expected no rolls persisted, got %d", len(rolls))
	}
}

func TestReceiveRejectsNonPositiveMeasurements(t *testing.T) {
	l, _, fabricTypeId := newTestLedger(t)
	_, err := l.Receive(context.Background(), &models.NewInventoryRoll{
		RollNumber:   "KK001-R001",
		FabricTypeId: fabricTypeId,
		Length:       decimal.Zero,
		Weight:       decimal.RequireFromString("20"),
	})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTransitionLifecycle(t *testing.T) {
	l, _, fabricTypeId := newTestLedger(t)
	ctx := context.Background()
	roll := receiveRoll(t, l, fabricTypeId, "KK001-R001")

	reserved, err := l.Transition(ctx, roll.ID, roll.Version, models.RollStatusReserved)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if reserved.Version != 1 {
		t.Fatalf("expected version 1 after reserve, got %d", reserved.Version)
	}
	inUse, err := l.Transition(ctx, roll.ID, reserved.Version, models.RollStatusInUse)
	if err != nil {
		t.Fatalf("in_use: %v", err)
	}
	used, err := l.Transition(ctx, roll.ID, inUse.Version, models.RollStatusUsed)
	if err != nil {
		t.Fatalf("used: %v", err)
	}

	// Consumption is final: no way back to available.
	_, err = l.Transition(ctx, roll.ID, used.Version, models.RollStatusAvailable)
	if !models.IsConflict(err) {
		t.Fatalf("expected conflict on used -> available, got %v", err)
	}
}

func TestTransitionReleaseReservation(t *testing.T) {
	l, _, fabricTypeId := newTestLedger(t)
	ctx := context.Background()
	roll := receiveRoll(t, l, fabricTypeId, "KK001-R001")

	reserved, err := l.Transition(ctx, roll.ID, roll.Version, models.RollStatusReserved)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	released, err := l.Transition(ctx, roll.ID, reserved.Version, models.RollStatusAvailable)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if released.Status != models.RollStatusAvailable {
		t.Fatalf("expected available, got %s", released.Status)
	}
}

func TestTransitionStaleVersionConflicts(t *testing.T) {
	l, _, fabricTypeId := newTestLedger(t)
	ctx := context.Background()
	roll := receiveRoll(t, l, fabricTypeId, "KK001-R001")

	if _, err := l.Transition(ctx, roll.ID, roll.Version, models.RollStatusReserved); err != nil {
		t.Fatalf("first transition: %v", err)
	}
	// Second writer still holds version 0.
	_, err := l.Transition(ctx, roll.ID, roll.Version, models.RollStatusReserved)
	if !models.IsConflict(err) {
		t.Fatalf("expected conflict for stale version, got %v", err)
	}
}

func TestCorrectUpdatesMeasurements(t *testing.T) {
	l, _, fabricTypeId := newTestLedger(t)
	ctx := context.Background()
	roll := receiveRoll(t, l, fabricTypeId, "KK001-R001")

	newLength := decimal.RequireFromString("98.5")
	corrected, err := l.Correct(ctx, roll.ID, roll.Version, &models.RollCorrection{Length: &newLength})
	if err != nil {
		t.Fatalf("correct: %v", err)
	}
	if !corrected.Length.Equal(newLength) {
		t.Fatalf("expected length 98.5, got %s", corrected.Length)
	}
	if corrected.Status != models.RollStatusAvailable {
		t.Fatalf("correction must not move lifecycle, got %s", corrected.Status)
	}
}

func TestCorrectRejectsEmptyCorrection(t *testing.T) {
	l, _, fabricTypeId := newTestLedger(t)
	roll := receiveRoll(t, l, fabricTypeId, "KK001-R001")

	_, err := l.Correct(context.Background(), roll.ID, roll.Version, &models.RollCorrection{})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestVoidTerminal(t *testing.T) {
	l, _, fabricTypeId := newTestLedger(t)
	ctx := context.Background()
	roll := receiveRoll(t, l, fabricTypeId, "KK001-R001")

	voided, err := l.Void(ctx, roll.ID, roll.Version, "damaged in storage")
	if err != nil {
		t.Fatalf("void: %v", err)
	}
	if voided.Status != models.RollStatusVoided {
		t.Fatalf("expected voided, got %s", voided.Status)
	}

	// No transitions or corrections out of voided.
	if _, err := l.Transition(ctx, roll.ID, voided.Version, models.RollStatusReserved); !models.IsConflict(err) {
		t.Fatalf("expected conflict transitioning voided roll, got %v", err)
	}
	newLength := decimal.RequireFromString("50")
	if _, err := l.Correct(ctx, roll.ID, voided.Version, &models.RollCorrection{Length: &newLength}); !models.IsConflict(err) {
		t.Fatalf("expected conflict correcting voided roll, got %v", err)
	}
}

func TestVoidRejectedForInUse(t *testing.T) {
	l, _, fabricTypeId := newTestLedger(t)
	ctx := context.Background()
	roll := receiveRoll(t, l, fabricTypeId, "KK001-R001")

	reserved, err := l.Transition(ctx, roll.ID, roll.Version, models.RollStatusReserved)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	inUse, err := l.Transition(ctx, roll.ID, reserved.Version, models.RollStatusInUse)
	if err != nil {
		t.Fatalf("in_use: %v", err)
	}
	if _, err := l.Void(ctx, roll.ID, inUse.Version, ""); !models.IsConflict(err) {
		t.Fatalf("expected conflict voiding in_use roll, got %v", err)
	}
}

func TestQueryExcludesVoidedByDefault(t *testing.T) {
	l, _, fabricTypeId := newTestLedger(t)
	ctx := context.Background()
	roll := receiveRoll(t, l, fabricTypeId, "KK001-R001")
	receiveRoll(t, l, fabricTypeId, "KK001-R002")

	if _, err := l.Void(ctx, roll.ID, roll.Version, ""); err != nil {
		t.Fatalf("void: %v", err)
	}

	visible, err := l.Query(ctx, models.RollFilter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("expected 1 visible roll, got %d", len(visible))
	}

	all, err := l.Query(ctx, models.RollFilter{IncludeVoided: true})
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 rolls including voided, got %d", len(all))
	}
}

func TestMutationsAppendAuditEvents(t *testing.T) {
	l, st, fabricTypeId := newTestLedger(t)
	ctx := context.Background()
	roll := receiveRoll(t, l, fabricTypeId, "KK001-R001")

	if _, err := l.Transition(ctx, roll.ID, roll.Version, models.RollStatusReserved); err != nil {
		t.Fatalf("transition: %v", err)
	}

	events, err := st.Events().ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events (receive + transition), got %d", len(events))
	}
	if events[0].EventType != models.LedgerEventRollReceived {
		t.Fatalf("expected first event RollReceived, got %s", events[0].EventType)
	}
	if events[1].EventType != models.LedgerEventRollTransitioned {
		t.Fatalf("expected second event RollTransitioned, got %s", events[1].EventType)
	}
	if events[1].Actor != "system" {
		t.Fatalf("expected system actor without request identity, got %q", events[1].Actor)
	}
}
