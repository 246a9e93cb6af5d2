package workflow

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
)

var issuanceTracer = otel.Tracer("workflow/issuance")

// CreateIssuance allocates whole rolls to a cutting order. Allocation is
// all-or-nothing: every selected roll is reserved through the versioned
// ledger transition, and if any reservation is lost to a concurrent writer
// the ones already taken are released before the conflict is returned.
func CreateIssuance(ctx context.Context, deps *Deps, input *models.NewIssuanceRecord) (*models.IssuanceRecord, error) {
	ctx, span := issuanceTracer.Start(ctx, "CreateIssuance")
	defer span.End()

	if err := input.Validate(); err != nil {
		return nil, err
	}

	order, err := deps.Store.CuttingOrders().Get(ctx, input.CuttingOrderId)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, &models.ReferentialError{
				Entity:      "issuance",
				Reference:   "cutting_order",
				ReferenceId: input.CuttingOrderId,
			}
		}
		return nil, err
	}
	if order.Status == models.CuttingOrderStatusCompleted || order.Status == models.CuttingOrderStatusCancelled {
		return nil, &models.ConflictError{
			Entity:    "cutting_order",
			EntityId:  order.ID,
			Op:        "issue",
			Current:   string(order.Status),
			Attempted: "issuance",
		}
	}

	// Pre-check the whole selection before touching anything so a bad request
	// fails without side effects. Selecting a roll that is not available is
	// the same conflict the reservation itself would hit, and is reported as
	// one so callers can re-read and retry with a fresh selection.
	rolls := make([]*models.InventoryRoll, 0, len(input.RollIds))
	for _, rollId := range input.RollIds {
		roll, err := deps.Store.Rolls().Get(ctx, rollId)
		if err != nil {
			if models.IsNotFound(err) {
				return nil, &models.ReferentialError{
					Entity:      "issuance",
					Reference:   "inventory_roll",
					ReferenceId: rollId,
				}
			}
			return nil, err
		}
		if roll.Status != models.RollStatusAvailable {
			return nil, &models.ConflictError{
				Entity:    "inventory_roll",
				EntityId:  roll.ID,
				Op:        "reserve",
				Version:   roll.Version,
				Current:   string(roll.Status),
				Attempted: string(models.RollStatusReserved),
			}
		}
		rolls = append(rolls, roll)
	}

	// Reserve phase. A conflict here means someone else took the roll between
	// the pre-check and now; release what we already hold and report.
	reserved := make([]*models.InventoryRoll, 0, len(rolls))
	for _, roll := range rolls {
		updated, err := deps.Ledger.Transition(ctx, roll.ID, roll.Version, models.RollStatusReserved)
		if err != nil {
			releaseReservations(ctx, deps, reserved)
			return nil, err
		}
		reserved = append(reserved, updated)
	}

	record := &models.IssuanceRecord{
		IssuanceNumber: newIssuanceNumber(),
		CuttingOrderId: order.ID,
		Status:         models.IssuanceStatusPending,
		IssuedBy:       utils.ActorOrSystem(ctx),
		IssuedAt:       time.Now().UTC(),
		Notes:          input.Notes,
	}
	for _, roll := range reserved {
		record.Rolls = append(record.Rolls, models.IssuanceRoll{
			RollId:     roll.ID,
			RollNumber: roll.RollNumber,
			Length:     roll.Length,
			Weight:     roll.Weight,
		})
	}
	record.ComputeTotals()

	if err := deps.Store.Issuances().Insert(ctx, record); err != nil {
		releaseReservations(ctx, deps, reserved)
		return nil, err
	}

	details := make([]models.CuttingOrderDetail, 0, len(reserved))
	for _, roll := range reserved {
		details = append(details, models.CuttingOrderDetail{
			CuttingOrderId: order.ID,
			RollId:         roll.ID,
			RollNumber:     roll.RollNumber,
			RequiredLength: roll.Length,
			IssuedLength:   roll.Length,
		})
	}
	if err := deps.Store.CuttingOrders().InsertDetails(ctx, details); err != nil {
		return nil, err
	}

	// Finalize: hand the reserved rolls to the cutting floor.
	for _, roll := range reserved {
		if _, err := deps.Ledger.Transition(ctx, roll.ID, roll.Version, models.RollStatusInUse); err != nil {
			return nil, err
		}
	}
	if err := deps.Store.Issuances().UpdateStatus(ctx, record.ID, models.IssuanceStatusIssued); err != nil {
		return nil, err
	}
	record.Status = models.IssuanceStatusIssued
	return record, nil
}

// CancelIssuance releases a pending issuance. Once the rolls are on the
// cutting floor the record can no longer be cancelled; consumption reporting
// takes over from there.
func CancelIssuance(ctx context.Context, deps *Deps, id int) (*models.IssuanceRecord, error) {
	record, err := deps.Store.Issuances().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Status != models.IssuanceStatusPending {
		return nil, &models.ConflictError{
			Entity:    "issuance",
			EntityId:  id,
			Op:        "cancel",
			Current:   string(record.Status),
			Attempted: string(models.IssuanceStatusCancelled),
		}
	}

	for _, line := range record.Rolls {
		roll, err := deps.Store.Rolls().Get(ctx, line.RollId)
		if err != nil {
			return nil, err
		}
		if roll.Status != models.RollStatusReserved {
			continue
		}
		if _, err := deps.Ledger.Transition(ctx, roll.ID, roll.Version, models.RollStatusAvailable); err != nil {
			return nil, err
		}
	}

	if err := deps.Store.Issuances().UpdateStatus(ctx, id, models.IssuanceStatusCancelled); err != nil {
		return nil, err
	}
	record.Status = models.IssuanceStatusCancelled
	return record, nil
}

func GetIssuance(ctx context.Context, deps *Deps, id int) (*models.IssuanceRecord, error) {
	return deps.Store.Issuances().Get(ctx, id)
}

func ListIssuancesByOrder(ctx context.Context, deps *Deps, cuttingOrderId int) ([]*models.IssuanceRecord, error) {
	return deps.Store.Issuances().ListByOrder(ctx, cuttingOrderId)
}

// releaseReservations is the compensating path for a failed allocation. A
// release that fails is logged and skipped; the integrity sweep will flag
// any roll left reserved with no issuance.
func releaseReservations(ctx context.Context, deps *Deps, reserved []*models.InventoryRoll) {
	for _, roll := range reserved {
		current, err := deps.Store.Rolls().Get(ctx, roll.ID)
		if err != nil {
			config.LogError(deps.Logger, "workflow", "releaseReservations", "reload", roll.ID, err)
			continue
		}
		if current.Status != models.RollStatusReserved {
			continue
		}
		if _, err := deps.Ledger.Transition(ctx, current.ID, current.Version, models.RollStatusAvailable); err != nil {
			config.LogError(deps.Logger, "workflow", "releaseReservations", "release", roll.ID, err)
		}
	}
}

func newIssuanceNumber() string {
	return "ISS-" + strings.ToUpper(uuid.NewString()[:8])
}
