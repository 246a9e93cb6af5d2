// Package store defines the persistence contract for the ledger core.
// The core packages depend on these interfaces only; the gorm-backed
// implementation lives in store/gormstore and an in-memory one for tests
// in store/memstore.
package store

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
)

type RollStore interface {
	Insert(ctx context.Context, roll *models.InventoryRoll) error
	Get(ctx context.Context, id int) (*models.InventoryRoll, error)
	GetByNumber(ctx context.Context, rollNumber string) (*models.InventoryRoll, error)
	// UpdateVersioned applies updates only if the stored version still equals
	// version, incrementing it as part of the same write. Returns false when
	// another writer got there first. This is the single concurrency guard
	// for roll mutations.
	UpdateVersioned(ctx context.Context, id int, version int, updates map[string]interface{}) (bool, error)
	Query(ctx context.Context, filter models.RollFilter) ([]*models.InventoryRoll, error)
}

type FabricTypeStore interface {
	Insert(ctx context.Context, fabricType *models.FabricType) error
	Update(ctx context.Context, id int, updates map[string]interface{}) error
	Delete(ctx context.Context, id int) error
	Get(ctx context.Context, id int) (*models.FabricType, error)
	GetByCode(ctx context.Context, code string) (*models.FabricType, error)
	List(ctx context.Context, activeOnly bool) ([]*models.FabricType, error)
	// CountRolls counts non-voided rolls referencing the fabric type. Used to
	// refuse deleting a fabric type that still backs inventory.
	CountRolls(ctx context.Context, fabricTypeId int) (int64, error)
}

type IssuanceStore interface {
	Insert(ctx context.Context, record *models.IssuanceRecord) error
	Get(ctx context.Context, id int) (*models.IssuanceRecord, error)
	ListByOrder(ctx context.Context, cuttingOrderId int) ([]*models.IssuanceRecord, error)
	UpdateStatus(ctx context.Context, id int, status models.IssuanceStatus) error
}

type CuttingOrderStore interface {
	Insert(ctx context.Context, order *models.CuttingOrder) error
	Get(ctx context.Context, id int) (*models.CuttingOrder, error)
	GetByNumber(ctx context.Context, orderNumber string) (*models.CuttingOrder, error)
	Update(ctx context.Context, id int, updates map[string]interface{}) error
	List(ctx context.Context, status models.CuttingOrderStatus) ([]*models.CuttingOrder, error)
	InsertDetails(ctx context.Context, details []models.CuttingOrderDetail) error
	UpdateDetail(ctx context.Context, detail *models.CuttingOrderDetail) error
}

type CheckStore interface {
	Insert(ctx context.Context, check *models.InventoryCheck) error
	Get(ctx context.Context, id int) (*models.InventoryCheck, error)
	Update(ctx context.Context, id int, updates map[string]interface{}) error
	UpdateItem(ctx context.Context, item *models.InventoryCheckItem) error
	List(ctx context.Context, status models.CheckStatus) ([]*models.InventoryCheck, error)
}

type EventStore interface {
	Append(ctx context.Context, event *models.LedgerEvent) error
	ListPending(ctx context.Context, limit int) ([]*models.LedgerEvent, error)
	MarkSent(ctx context.Context, id int, at time.Time) error
	MarkFailed(ctx context.Context, id int, publishErr string) error
}

// Store bundles the per-entity stores for wiring.
type Store interface {
	Rolls() RollStore
	FabricTypes() FabricTypeStore
	Issuances() IssuanceStore
	CuttingOrders() CuttingOrderStore
	Checks() CheckStore
	Events() EventStore
}
