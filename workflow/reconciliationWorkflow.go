package workflow

import (
	"context"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StartCheck opens an inventory check and snapshots the rolls in scope.
// The snapshot freezes system figures so the count compares against a
// stable baseline even while the ledger keeps moving. Used and voided rolls
// are not on the shelf and are left out.
func StartCheck(ctx context.Context, deps *Deps, input *models.NewInventoryCheck) (*models.InventoryCheck, error) {
	rolls, err := deps.Store.Rolls().Query(ctx, models.RollFilter{
		FabricTypeId: input.FabricTypeId,
		Location:     input.Location,
	})
	if err != nil {
		return nil, err
	}

	check := &models.InventoryCheck{
		CheckNumber:  newCheckNumber(),
		Status:       models.CheckStatusInProgress,
		FabricTypeId: input.FabricTypeId,
		Location:     input.Location,
		StartedBy:    utils.ActorOrSystem(ctx),
		StartedAt:    time.Now().UTC(),
		Notes:        input.Notes,
	}
	for _, roll := range rolls {
		if roll.Status == models.RollStatusUsed {
			continue
		}
		check.Items = append(check.Items, models.InventoryCheckItem{
			RollId:       roll.ID,
			RollNumber:   roll.RollNumber,
			FabricTypeId: roll.FabricTypeId,
			SystemLength: roll.Length,
			SystemWeight: roll.Weight,
		})
	}
	if len(check.Items) == 0 {
		return nil, &models.ValidationError{Entity: "inventory_check", Message: "no rolls in scope"}
	}

	if err := deps.Store.Checks().Insert(ctx, check); err != nil {
		return nil, err
	}
	return check, nil
}

// RecordCount stores the counted figures for one item of an open check.
func RecordCount(ctx context.Context, deps *Deps, checkId int, itemId int, actualLength decimal.Decimal, actualWeight decimal.Decimal, notes string) (*models.InventoryCheckItem, error) {
	check, err := deps.Store.Checks().Get(ctx, checkId)
	if err != nil {
		return nil, err
	}
	if check.Status != models.CheckStatusInProgress {
		return nil, &models.ConflictError{
			Entity:    "inventory_check",
			EntityId:  checkId,
			Op:        "count",
			Current:   string(check.Status),
			Attempted: "record count",
		}
	}

	var item *models.InventoryCheckItem
	for i := range check.Items {
		if check.Items[i].ID == itemId {
			item = &check.Items[i]
			break
		}
	}
	if item == nil {
		return nil, &models.NotFoundError{Entity: "inventory_check_item", EntityId: itemId}
	}

	if err := item.RecordActual(actualLength, actualWeight, utils.ActorOrSystem(ctx), time.Now().UTC()); err != nil {
		return nil, err
	}
	if notes != "" {
		item.Notes = notes
	}
	if err := deps.Store.Checks().UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// CompleteCheck applies the counted figures back to the ledger and closes
// the check. Completion is idempotent: items whose roll already matches the
// counted figures are skipped, so running it twice corrects nothing twice.
// Items never counted are flagged for follow-up instead of being guessed at.
func CompleteCheck(ctx context.Context, deps *Deps, checkId int, threshold decimal.Decimal) (*models.CheckReport, error) {
	release, _, err := utils.ObtainLock(ctx, "inventoryCheck", checkNumberKey(checkId), 30*time.Second)
	if err != nil {
		return nil, err
	}
	defer release()

	check, err := deps.Store.Checks().Get(ctx, checkId)
	if err != nil {
		return nil, err
	}
	if check.Status == models.CheckStatusCompleted {
		return models.BuildCheckReport(check, threshold), nil
	}
	if check.Status != models.CheckStatusInProgress {
		return nil, &models.ConflictError{
			Entity:    "inventory_check",
			EntityId:  checkId,
			Op:        "complete",
			Current:   string(check.Status),
			Attempted: string(models.CheckStatusCompleted),
		}
	}

	for i := range check.Items {
		item := &check.Items[i]
		if item.ActualLength == nil || item.ActualWeight == nil {
			item.RequiresFollowUp = true
			if err := deps.Store.Checks().UpdateItem(ctx, item); err != nil {
				return nil, err
			}
			continue
		}

		roll, err := deps.Store.Rolls().Get(ctx, item.RollId)
		if err != nil {
			if models.IsNotFound(err) {
				item.RequiresFollowUp = true
				if err := deps.Store.Checks().UpdateItem(ctx, item); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}
		if roll.Length.Equal(*item.ActualLength) && roll.Weight.Equal(*item.ActualWeight) {
			continue
		}

		correction := &models.RollCorrection{
			Length: item.ActualLength,
			Weight: item.ActualWeight,
			Reason: "inventory check " + check.CheckNumber,
		}
		if _, err := deps.Ledger.Correct(ctx, roll.ID, roll.Version, correction); err != nil {
			if models.IsConflict(err) {
				config.LogError(deps.Logger, "workflow", "CompleteCheck", "correction conflict", item.RollId, err)
				item.RequiresFollowUp = true
				if err := deps.Store.Checks().UpdateItem(ctx, item); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}
		item.Corrected = true
		if err := deps.Store.Checks().UpdateItem(ctx, item); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	err = deps.Store.Checks().Update(ctx, checkId, map[string]interface{}{
		"status":       models.CheckStatusCompleted,
		"completed_by": utils.ActorOrSystem(ctx),
		"completed_at": &now,
	})
	if err != nil {
		return nil, err
	}

	completed, err := deps.Store.Checks().Get(ctx, checkId)
	if err != nil {
		return nil, err
	}
	return models.BuildCheckReport(completed, threshold), nil
}

func CancelCheck(ctx context.Context, deps *Deps, checkId int) (*models.InventoryCheck, error) {
	check, err := deps.Store.Checks().Get(ctx, checkId)
	if err != nil {
		return nil, err
	}
	if !check.Status.CanTransitionTo(models.CheckStatusCancelled) {
		return nil, &models.ConflictError{
			Entity:    "inventory_check",
			EntityId:  checkId,
			Op:        "cancel",
			Current:   string(check.Status),
			Attempted: string(models.CheckStatusCancelled),
		}
	}
	err = deps.Store.Checks().Update(ctx, checkId, map[string]interface{}{
		"status": models.CheckStatusCancelled,
	})
	if err != nil {
		return nil, err
	}
	return deps.Store.Checks().Get(ctx, checkId)
}

func GetCheckReport(ctx context.Context, deps *Deps, checkId int, threshold decimal.Decimal) (*models.CheckReport, error) {
	check, err := deps.Store.Checks().Get(ctx, checkId)
	if err != nil {
		return nil, err
	}
	return models.BuildCheckReport(check, threshold), nil
}

func GetCheck(ctx context.Context, deps *Deps, checkId int) (*models.InventoryCheck, error) {
	return deps.Store.Checks().Get(ctx, checkId)
}

func ListChecks(ctx context.Context, deps *Deps, status models.CheckStatus) ([]*models.InventoryCheck, error) {
	if status != "" && !status.Valid() {
		return nil, &models.ValidationError{Entity: "inventory_check", Field: "status", Message: "invalid status"}
	}
	return deps.Store.Checks().List(ctx, status)
}

func newCheckNumber() string {
	return "CHK-" + strings.ToUpper(uuid.NewString()[:8])
}

func checkNumberKey(checkId int) string {
	return strconv.Itoa(checkId)
}
