package workflow

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"github.com/shopspring/decimal"
)

func CreateCuttingOrder(ctx context.Context, deps *Deps, input *models.NewCuttingOrder) (*models.CuttingOrder, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	order := &models.CuttingOrder{
		OrderNumber:     input.OrderNumber,
		StyleNumber:     input.StyleNumber,
		Status:          models.CuttingOrderStatusPending,
		PlannedQuantity: input.PlannedQuantity,
		MarkerLength:    input.MarkerLength,
		PlannedStart:    input.PlannedStart,
		PlannedEnd:      input.PlannedEnd,
		Notes:           input.Notes,
	}
	if err := deps.Store.CuttingOrders().Insert(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func GetCuttingOrder(ctx context.Context, deps *Deps, id int) (*models.CuttingOrder, error) {
	return deps.Store.CuttingOrders().Get(ctx, id)
}

func ListCuttingOrders(ctx context.Context, deps *Deps, status models.CuttingOrderStatus) ([]*models.CuttingOrder, error) {
	if status != "" && !status.Valid() {
		return nil, &models.ValidationError{Entity: "cutting_order", Field: "status", Message: "invalid status"}
	}
	return deps.Store.CuttingOrders().List(ctx, status)
}

// UpdateOrderStatus moves a cutting order along its lifecycle. Actual start
// and end dates are stamped on the first entry into in-progress and
// completed respectively.
func UpdateOrderStatus(ctx context.Context, deps *Deps, id int, to models.CuttingOrderStatus) (*models.CuttingOrder, error) {
	if !to.Valid() {
		return nil, &models.ValidationError{Entity: "cutting_order", Field: "status", Message: "invalid status"}
	}
	order, err := deps.Store.CuttingOrders().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransitionTo(to) {
		return nil, &models.ConflictError{
			Entity:    "cutting_order",
			EntityId:  id,
			Op:        "transition",
			Current:   string(order.Status),
			Attempted: string(to),
		}
	}

	updates := map[string]interface{}{"status": to}
	now := time.Now().UTC()
	if to == models.CuttingOrderStatusInProgress && order.ActualStart == nil {
		updates["actual_start"] = &now
	}
	if to == models.CuttingOrderStatusCompleted && order.ActualEnd == nil {
		updates["actual_end"] = &now
	}
	if err := deps.Store.CuttingOrders().Update(ctx, id, updates); err != nil {
		return nil, err
	}
	return deps.Store.CuttingOrders().Get(ctx, id)
}

// ReportConsumption records the actual consumed length for one issued roll
// and marks the roll used. Reporting twice only refreshes the waste figures.
func ReportConsumption(ctx context.Context, deps *Deps, orderId int, rollId int, actual decimal.Decimal) (*models.CuttingOrderDetail, error) {
	order, err := deps.Store.CuttingOrders().Get(ctx, orderId)
	if err != nil {
		return nil, err
	}
	if order.Status == models.CuttingOrderStatusCompleted || order.Status == models.CuttingOrderStatusCancelled {
		return nil, &models.ConflictError{
			Entity:    "cutting_order",
			EntityId:  orderId,
			Op:        "consume",
			Current:   string(order.Status),
			Attempted: "consumption report",
		}
	}

	var detail *models.CuttingOrderDetail
	for i := range order.Details {
		if order.Details[i].RollId == rollId {
			detail = &order.Details[i]
			break
		}
	}
	if detail == nil {
		return nil, &models.ReferentialError{
			Entity:      "cutting_order",
			EntityId:    orderId,
			Reference:   "inventory_roll",
			ReferenceId: rollId,
		}
	}

	if err := detail.ApplyConsumption(actual); err != nil {
		return nil, err
	}
	if err := deps.Store.CuttingOrders().UpdateDetail(ctx, detail); err != nil {
		return nil, err
	}

	roll, err := deps.Store.Rolls().Get(ctx, rollId)
	if err != nil {
		return nil, err
	}
	if roll.Status == models.RollStatusInUse {
		if _, err := deps.Ledger.Transition(ctx, roll.ID, roll.Version, models.RollStatusUsed); err != nil {
			return nil, err
		}
	}
	return detail, nil
}

func GetConsumptionReport(ctx context.Context, deps *Deps, orderId int) (*models.ConsumptionReport, error) {
	order, err := deps.Store.CuttingOrders().Get(ctx, orderId)
	if err != nil {
		return nil, err
	}
	return models.BuildConsumptionReport(order), nil
}
