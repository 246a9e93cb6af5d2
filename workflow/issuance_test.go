package workflow

import (
	"context"
	"io"
	"sync"
	"testing"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/store/memstore"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func newTestDeps(t *testing.T) (*Deps, int) {
	t.Helper()
	st := memstore.New()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	deps := NewDeps(st, logger)

	fabricType := &models.FabricType{Code: "KK001", Name: "Cotton Twill", IsActive: utils.NewTrue()}
	if err := st.FabricTypes().Insert(context.Background(), fabricType); err != nil {
		t.Fatalf("seed fabric type: %v", err)
	}
	return deps, fabricType.ID
}

func seedRoll(t *testing.T, deps *Deps, fabricTypeId int, rollNumber string, length string) *models.InventoryRoll {
	t.Helper()
	roll, err := deps.Ledger.Receive(context.Background(), &models.NewInventoryRoll{
		RollNumber:   rollNumber,
		FabricTypeId: fabricTypeId,
		Length:       decimal.RequireFromString(length),
		Weight:       decimal.RequireFromString("20"),
	})
	if err != nil {
		t.Fatalf("seed roll %s: %v", rollNumber, err)
	}
	return roll
}

func seedOrder(t *testing.T, deps *Deps, orderNumber string) *models.CuttingOrder {
	t.Helper()
	order, err := CreateCuttingOrder(context.Background(), deps, &models.NewCuttingOrder{
		OrderNumber: orderNumber,
	})
	if err != nil {
		t.Fatalf("seed order %s: %v", orderNumber, err)
	}
	return order
}

func TestCreateIssuanceHappyPath(t *testing.T) {
	deps, fabricTypeId := newTestDeps(t)
	ctx := context.Background()
	order := seedOrder(t, deps, "CO-100")
	first := seedRoll(t, deps, fabricTypeId, "KK001-R001", "100")
	second := seedRoll(t, deps, fabricTypeId, "KK001-R002", "85.5")

	record, err := CreateIssuance(ctx, deps, &models.NewIssuanceRecord{
		CuttingOrderId: order.ID,
		RollIds:        []int{first.ID, second.ID},
	})
	if err != nil {
		t.Fatalf("create issuance: %v", err)
	}
	if record.Status != models.IssuanceStatusIssued {
		t.Fatalf("expected issued, got %s", record.Status)
	}
	if record.TotalRolls != 2 {
		t.Fatalf("expected 2 rolls, got %d", record.TotalRolls)
	}
	if !record.TotalLength.Equal(decimal.RequireFromString("185.5")) {
		t.Fatalf("expected total length 185.5, got %s", record.TotalLength)
	}

	for _, id := range []int{first.ID, second.ID} {
		roll, err := deps.Store.Rolls().Get(ctx, id)
		if err != nil {
			t.Fatalf("get roll: %v", err)
		}
		if roll.Status != models.RollStatusInUse {
			t.Fatalf("roll %d: expected in_use, got %s", id, roll.Status)
		}
	}

	// Consumption tracking lines were opened for the order.
	reloaded, err := GetCuttingOrder(ctx, deps, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(reloaded.Details) != 2 {
		t.Fatalf("expected 2 details, got %d", len(reloaded.Details))
	}
}

func TestCreateIssuanceRejectsEmptySelection(t *testing.T) {
	deps, _ := newTestDeps(t)
	order := seedOrder(t, deps, "CO-100")

	_, err := CreateIssuance(context.Background(), deps, &models.NewIssuanceRecord{
		CuttingOrderId: order.ID,
		RollIds:        []int{},
	})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateIssuanceAllOrNothing(t *testing.T) {
	deps, fabricTypeId := newTestDeps(t)
	ctx := context.Background()
	order := seedOrder(t, deps, "CO-100")
	good := seedRoll(t, deps, fabricTypeId, "KK001-R001", "100")
	taken := seedRoll(t, deps, fabricTypeId, "KK001-R002", "100")

	// Take the second roll out from under the issuance.
	if _, err := deps.Ledger.Transition(ctx, taken.ID, taken.Version, models.RollStatusReserved); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	_, err := CreateIssuance(ctx, deps, &models.NewIssuanceRecord{
		CuttingOrderId: order.ID,
		RollIds:        []int{good.ID, taken.ID},
	})
	if !models.IsConflict(err) {
		t.Fatalf("expected conflict for unavailable roll, got %v", err)
	}

	// The good roll must still be available, nothing half-reserved.
	roll, err := deps.Store.Rolls().Get(ctx, good.ID)
	if err != nil {
		t.Fatalf("get roll: %v", err)
	}
	if roll.Status != models.RollStatusAvailable {
		t.Fatalf("expected available after aborted issuance, got %s", roll.Status)
	}
}

func TestCreateIssuanceInUseRollConflicts(t *testing.T) {
	deps, fabricTypeId := newTestDeps(t)
	ctx := context.Background()
	first := seedOrder(t, deps, "CO-100")
	second := seedOrder(t, deps, "CO-200")
	roll := seedRoll(t, deps, fabricTypeId, "KK001-R001", "100")

	if _, err := CreateIssuance(ctx, deps, &models.NewIssuanceRecord{
		CuttingOrderId: first.ID,
		RollIds:        []int{roll.ID},
	}); err != nil {
		t.Fatalf("create issuance: %v", err)
	}

	// The roll is in_use now; issuing it again is a state conflict, not a
	// malformed request.
	_, err := CreateIssuance(ctx, deps, &models.NewIssuanceRecord{
		CuttingOrderId: second.ID,
		RollIds:        []int{roll.ID},
	})
	if !models.IsConflict(err) {
		t.Fatalf("expected conflict issuing an in_use roll, got %v", err)
	}
}

func TestCreateIssuanceConcurrentExactlyOneWins(t *testing.T) {
	deps, fabricTypeId := newTestDeps(t)
	ctx := context.Background()
	orderA := seedOrder(t, deps, "CO-A")
	orderB := seedOrder(t, deps, "CO-B")

	rollIds := []int{
		seedRoll(t, deps, fabricTypeId, "KK001-R001", "100").ID,
		seedRoll(t, deps, fabricTypeId, "KK001-R002", "100").ID,
		seedRoll(t, deps, fabricTypeId, "KK001-R003", "100").ID,
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, orderId := range []int{orderA.ID, orderB.ID} {
		wg.Add(1)
		go func(slot int, orderId int) {
			defer wg.Done()
			_, err := CreateIssuance(ctx, deps, &models.NewIssuanceRecord{
				CuttingOrderId: orderId,
				RollIds:        rollIds,
			})
			results[slot] = err
		}(i, orderId)
	}
	wg.Wait()

	var successes, failures int
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			failures++
		}
	}
	if successes != 1 || failures != 1 {
		t.Fatalf("expected exactly one winner, got %d successes / %d failures (errors: %v)", successes, failures, results)
	}

	// Every roll belongs to the winner; no roll left reserved by the loser.
	for _, id := range rollIds {
		roll, err := deps.Store.Rolls().Get(ctx, id)
		if err != nil {
			t.Fatalf("get roll: %v", err)
		}
		if roll.Status != models.RollStatusInUse {
			t.Fatalf("roll %d: expected in_use after race, got %s", id, roll.Status)
		}
	}
}

func TestCancelPendingIssuanceReleasesRolls(t *testing.T) {
	deps, fabricTypeId := newTestDeps(t)
	ctx := context.Background()
	order := seedOrder(t, deps, "CO-100")
	roll := seedRoll(t, deps, fabricTypeId, "KK001-R001", "100")

	// Build a pending record by hand: reserved roll, record not yet finalized.
	reserved, err := deps.Ledger.Transition(ctx, roll.ID, roll.Version, models.RollStatusReserved)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	record := &models.IssuanceRecord{
		IssuanceNumber: "ISS-TEST01",
		CuttingOrderId: order.ID,
		Status:         models.IssuanceStatusPending,
		Rolls: []models.IssuanceRoll{
			{RollId: reserved.ID, RollNumber: reserved.RollNumber, Length: reserved.Length, Weight: reserved.Weight},
		},
	}
	record.ComputeTotals()
	if err := deps.Store.Issuances().Insert(ctx, record); err != nil {
		t.Fatalf("insert record: %v", err)
	}

	cancelled, err := CancelIssuance(ctx, deps, record.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != models.IssuanceStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}

	released, err := deps.Store.Rolls().Get(ctx, roll.ID)
	if err != nil {
		t.Fatalf("get roll: %v", err)
	}
	if released.Status != models.RollStatusAvailable {
		t.Fatalf("expected available after cancel, got %s", released.Status)
	}
}

func TestCancelIssuedRecordRejected(t *testing.T) {
	deps, fabricTypeId := newTestDeps(t)
	ctx := context.Background()
	order := seedOrder(t, deps, "CO-100")
	roll := seedRoll(t, deps, fabricTypeId, "KK001-R001", "100")

	record, err := CreateIssuance(ctx, deps, &models.NewIssuanceRecord{
		CuttingOrderId: order.ID,
		RollIds:        []int{roll.ID},
	})
	if err != nil {
		t.Fatalf("create issuance: %v", err)
	}
	if _, err := CancelIssuance(ctx, deps, record.ID); !models.IsConflict(err) {
		t.Fatalf("expected conflict cancelling issued record, got %v", err)
	}
}
