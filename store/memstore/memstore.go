// Package memstore is an in-memory store implementation used by unit tests.
// All methods copy on the way in and out so callers cannot alias internal
// state, and UpdateVersioned holds the mutex across the compare and the
// write, matching the atomicity of the SQL guarded UPDATE.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/store"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu sync.Mutex

	rolls       map[int]*models.InventoryRoll
	fabricTypes map[int]*models.FabricType
	issuances   map[int]*models.IssuanceRecord
	orders      map[int]*models.CuttingOrder
	checks      map[int]*models.InventoryCheck
	events      map[int]*models.LedgerEvent

	nextRollId      int
	nextFabricId    int
	nextIssuanceId  int
	nextIssueLineId int
	nextOrderId     int
	nextDetailId    int
	nextCheckId     int
	nextItemId      int
	nextEventId     int
}

func New() *Store {
	return &Store{
		rolls:       make(map[int]*models.InventoryRoll),
		fabricTypes: make(map[int]*models.FabricType),
		issuances:   make(map[int]*models.IssuanceRecord),
		orders:      make(map[int]*models.CuttingOrder),
		checks:      make(map[int]*models.InventoryCheck),
		events:      make(map[int]*models.LedgerEvent),
	}
}

func (s *Store) Rolls() store.RollStore                 { return (*rollStore)(s) }
func (s *Store) FabricTypes() store.FabricTypeStore     { return (*fabricTypeStore)(s) }
func (s *Store) Issuances() store.IssuanceStore         { return (*issuanceStore)(s) }
func (s *Store) CuttingOrders() store.CuttingOrderStore { return (*cuttingOrderStore)(s) }
func (s *Store) Checks() store.CheckStore               { return (*checkStore)(s) }
func (s *Store) Events() store.EventStore               { return (*eventStore)(s) }

type rollStore Store

func (s *rollStore) Insert(ctx context.Context, roll *models.InventoryRoll) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.rolls {
		if existing.RollNumber == roll.RollNumber {
			return &models.ValidationError{Entity: "inventory_roll", Field: "roll_number", Message: "already exists"}
		}
	}
	s.nextRollId++
	roll.ID = s.nextRollId
	copied := *roll
	s.rolls[roll.ID] = &copied
	return nil
}

func (s *rollStore) Get(ctx context.Context, id int) (*models.InventoryRoll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roll, ok := s.rolls[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "inventory_roll", EntityId: id}
	}
	copied := *roll
	return &copied, nil
}

func (s *rollStore) GetByNumber(ctx context.Context, rollNumber string) (*models.InventoryRoll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, roll := range s.rolls {
		if roll.RollNumber == rollNumber {
			copied := *roll
			return &copied, nil
		}
	}
	return nil, &models.NotFoundError{Entity: "inventory_roll"}
}

func (s *rollStore) UpdateVersioned(ctx context.Context, id int, version int, updates map[string]interface{}) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	roll, ok := s.rolls[id]
	if !ok || roll.Version != version {
		return false, nil
	}
	for column, value := range updates {
		applyRollColumn(roll, column, value)
	}
	roll.Version = version + 1
	roll.UpdatedAt = time.Now().UTC()
	return true, nil
}

// applyRollColumn mirrors the column names the ledger core writes through
// UpdateVersioned. Unknown columns are a programming error.
func applyRollColumn(roll *models.InventoryRoll, column string, value interface{}) {
	switch column {
	case "status":
		roll.Status = value.(models.RollStatus)
	case "grade":
		roll.Grade = value.(models.QualityGrade)
	case "length":
		roll.Length = value.(decimal.Decimal)
	case "weight":
		roll.Weight = value.(decimal.Decimal)
	case "width":
		roll.Width = value.(decimal.Decimal)
	case "location":
		roll.Location = value.(string)
	case "defect_notes":
		roll.DefectNotes = value.(string)
	default:
		panic("memstore: unsupported roll column " + column)
	}
}

func (s *rollStore) Query(ctx context.Context, filter models.RollFilter) ([]*models.InventoryRoll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var results []*models.InventoryRoll
	for _, roll := range s.rolls {
		if filter.FabricTypeId > 0 && roll.FabricTypeId != filter.FabricTypeId {
			continue
		}
		if filter.LotNumber != "" && roll.LotNumber != filter.LotNumber {
			continue
		}
		if filter.Status != "" {
			if roll.Status != filter.Status {
				continue
			}
		} else if !filter.IncludeVoided && roll.Status == models.RollStatusVoided {
			continue
		}
		if filter.Grade != "" && roll.Grade != filter.Grade {
			continue
		}
		if filter.Location != "" && roll.Location != filter.Location {
			continue
		}
		copied := *roll
		results = append(results, &copied)
	}
	sort.Slice(results, func(i, j int) bool {
		return strings.Compare(results[i].RollNumber, results[j].RollNumber) < 0
	})
	return results, nil
}

type fabricTypeStore Store

func (s *fabricTypeStore) Insert(ctx context.Context, fabricType *models.FabricType) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.fabricTypes {
		if existing.Code == fabricType.Code {
			return &models.ValidationError{Entity: "fabric_type", Field: "code", Message: "already exists"}
		}
	}
	s.nextFabricId++
	fabricType.ID = s.nextFabricId
	copied := *fabricType
	s.fabricTypes[fabricType.ID] = &copied
	return nil
}

func (s *fabricTypeStore) Update(ctx context.Context, id int, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fabricType, ok := s.fabricTypes[id]
	if !ok {
		return &models.NotFoundError{Entity: "fabric_type", EntityId: id}
	}
	for column, value := range updates {
		switch column {
		case "code":
			fabricType.Code = value.(string)
		case "name":
			fabricType.Name = value.(string)
		case "composition":
			fabricType.Composition = value.(string)
		case "width_cm":
			fabricType.WidthCm = value.(decimal.Decimal)
		case "weight_gsm":
			fabricType.WeightGsm = value.(decimal.Decimal)
		case "color":
			fabricType.Color = value.(string)
		case "supplier":
			fabricType.Supplier = value.(string)
		case "unit_price":
			fabricType.UnitPrice = value.(decimal.Decimal)
		case "min_stock":
			fabricType.MinStock = value.(decimal.Decimal)
		case "unit":
			fabricType.Unit = value.(string)
		case "is_active":
			active := value.(bool)
			fabricType.IsActive = &active
		default:
			panic("memstore: unsupported fabric type column " + column)
		}
	}
	fabricType.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *fabricTypeStore) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.fabricTypes[id]; !ok {
		return &models.NotFoundError{Entity: "fabric_type", EntityId: id}
	}
	delete(s.fabricTypes, id)
	return nil
}

func (s *fabricTypeStore) Get(ctx context.Context, id int) (*models.FabricType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fabricType, ok := s.fabricTypes[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "fabric_type", EntityId: id}
	}
	copied := *fabricType
	return &copied, nil
}

func (s *fabricTypeStore) GetByCode(ctx context.Context, code string) (*models.FabricType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fabricType := range s.fabricTypes {
		if fabricType.Code == code {
			copied := *fabricType
			return &copied, nil
		}
	}
	return nil, &models.NotFoundError{Entity: "fabric_type"}
}

func (s *fabricTypeStore) List(ctx context.Context, activeOnly bool) ([]*models.FabricType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var results []*models.FabricType
	for _, fabricType := range s.fabricTypes {
		if activeOnly && (fabricType.IsActive == nil || !*fabricType.IsActive) {
			continue
		}
		copied := *fabricType
		results = append(results, &copied)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Code < results[j].Code
	})
	return results, nil
}

func (s *fabricTypeStore) CountRolls(ctx context.Context, fabricTypeId int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int64
	for _, roll := range s.rolls {
		if roll.FabricTypeId == fabricTypeId && roll.Status != models.RollStatusVoided {
			count++
		}
	}
	return count, nil
}

type issuanceStore Store

func (s *issuanceStore) Insert(ctx context.Context, record *models.IssuanceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.issuances {
		if existing.IssuanceNumber == record.IssuanceNumber {
			return &models.ValidationError{Entity: "issuance", Field: "issuance_number", Message: "already exists"}
		}
	}
	s.nextIssuanceId++
	record.ID = s.nextIssuanceId
	for i := range record.Rolls {
		s.nextIssueLineId++
		record.Rolls[i].ID = s.nextIssueLineId
		record.Rolls[i].IssuanceId = record.ID
	}
	copied := *record
	copied.Rolls = append([]models.IssuanceRoll(nil), record.Rolls...)
	s.issuances[record.ID] = &copied
	return nil
}

func (s *issuanceStore) Get(ctx context.Context, id int) (*models.IssuanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.issuances[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "issuance", EntityId: id}
	}
	copied := *record
	copied.Rolls = append([]models.IssuanceRoll(nil), record.Rolls...)
	return &copied, nil
}

func (s *issuanceStore) ListByOrder(ctx context.Context, cuttingOrderId int) ([]*models.IssuanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var results []*models.IssuanceRecord
	for _, record := range s.issuances {
		if record.CuttingOrderId != cuttingOrderId {
			continue
		}
		copied := *record
		copied.Rolls = append([]models.IssuanceRoll(nil), record.Rolls...)
		results = append(results, &copied)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

func (s *issuanceStore) UpdateStatus(ctx context.Context, id int, status models.IssuanceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.issuances[id]
	if !ok {
		return &models.NotFoundError{Entity: "issuance", EntityId: id}
	}
	record.Status = status
	record.UpdatedAt = time.Now().UTC()
	return nil
}

type cuttingOrderStore Store

func (s *cuttingOrderStore) Insert(ctx context.Context, order *models.CuttingOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.orders {
		if existing.OrderNumber == order.OrderNumber {
			return &models.ValidationError{Entity: "cutting_order", Field: "order_number", Message: "already exists"}
		}
	}
	s.nextOrderId++
	order.ID = s.nextOrderId
	copied := *order
	copied.Details = append([]models.CuttingOrderDetail(nil), order.Details...)
	s.orders[order.ID] = &copied
	return nil
}

func (s *cuttingOrderStore) Get(ctx context.Context, id int) (*models.CuttingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "cutting_order", EntityId: id}
	}
	copied := *order
	copied.Details = append([]models.CuttingOrderDetail(nil), order.Details...)
	return &copied, nil
}

func (s *cuttingOrderStore) GetByNumber(ctx context.Context, orderNumber string) (*models.CuttingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, order := range s.orders {
		if order.OrderNumber == orderNumber {
			copied := *order
			copied.Details = append([]models.CuttingOrderDetail(nil), order.Details...)
			return &copied, nil
		}
	}
	return nil, &models.NotFoundError{Entity: "cutting_order"}
}

func (s *cuttingOrderStore) Update(ctx context.Context, id int, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return &models.NotFoundError{Entity: "cutting_order", EntityId: id}
	}
	for column, value := range updates {
		switch column {
		case "status":
			order.Status = value.(models.CuttingOrderStatus)
		case "actual_start":
			order.ActualStart = value.(*time.Time)
		case "actual_end":
			order.ActualEnd = value.(*time.Time)
		case "notes":
			order.Notes = value.(string)
		default:
			panic("memstore: unsupported cutting order column " + column)
		}
	}
	order.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *cuttingOrderStore) List(ctx context.Context, status models.CuttingOrderStatus) ([]*models.CuttingOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var results []*models.CuttingOrder
	for _, order := range s.orders {
		if status != "" && order.Status != status {
			continue
		}
		copied := *order
		copied.Details = append([]models.CuttingOrderDetail(nil), order.Details...)
		results = append(results, &copied)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].OrderNumber < results[j].OrderNumber })
	return results, nil
}

func (s *cuttingOrderStore) InsertDetails(ctx context.Context, details []models.CuttingOrderDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range details {
		order, ok := s.orders[details[i].CuttingOrderId]
		if !ok {
			return &models.NotFoundError{Entity: "cutting_order", EntityId: details[i].CuttingOrderId}
		}
		s.nextDetailId++
		details[i].ID = s.nextDetailId
		order.Details = append(order.Details, details[i])
	}
	return nil
}

func (s *cuttingOrderStore) UpdateDetail(ctx context.Context, detail *models.CuttingOrderDetail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[detail.CuttingOrderId]
	if !ok {
		return &models.NotFoundError{Entity: "cutting_order", EntityId: detail.CuttingOrderId}
	}
	for i := range order.Details {
		if order.Details[i].ID == detail.ID {
			order.Details[i].ActualLength = detail.ActualLength
			order.Details[i].WasteLength = detail.WasteLength
			order.Details[i].WastePercent = detail.WastePercent
			order.Details[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return &models.NotFoundError{Entity: "cutting_order_detail", EntityId: detail.ID}
}

type checkStore Store

func (s *checkStore) Insert(ctx context.Context, check *models.InventoryCheck) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.checks {
		if existing.CheckNumber == check.CheckNumber {
			return &models.ValidationError{Entity: "inventory_check", Field: "check_number", Message: "already exists"}
		}
	}
	s.nextCheckId++
	check.ID = s.nextCheckId
	for i := range check.Items {
		s.nextItemId++
		check.Items[i].ID = s.nextItemId
		check.Items[i].InventoryCheckId = check.ID
	}
	copied := *check
	copied.Items = append([]models.InventoryCheckItem(nil), check.Items...)
	s.checks[check.ID] = &copied
	return nil
}

func (s *checkStore) Get(ctx context.Context, id int) (*models.InventoryCheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	check, ok := s.checks[id]
	if !ok {
		return nil, &models.NotFoundError{Entity: "inventory_check", EntityId: id}
	}
	copied := *check
	copied.Items = append([]models.InventoryCheckItem(nil), check.Items...)
	return &copied, nil
}

func (s *checkStore) Update(ctx context.Context, id int, updates map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	check, ok := s.checks[id]
	if !ok {
		return &models.NotFoundError{Entity: "inventory_check", EntityId: id}
	}
	for column, value := range updates {
		switch column {
		case "status":
			check.Status = value.(models.CheckStatus)
		case "completed_by":
			check.CompletedBy = value.(string)
		case "completed_at":
			check.CompletedAt = value.(*time.Time)
		case "notes":
			check.Notes = value.(string)
		default:
			panic("memstore: unsupported inventory check column " + column)
		}
	}
	check.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *checkStore) UpdateItem(ctx context.Context, item *models.InventoryCheckItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	check, ok := s.checks[item.InventoryCheckId]
	if !ok {
		return &models.NotFoundError{Entity: "inventory_check", EntityId: item.InventoryCheckId}
	}
	for i := range check.Items {
		if check.Items[i].ID == item.ID {
			check.Items[i].ActualLength = item.ActualLength
			check.Items[i].ActualWeight = item.ActualWeight
			check.Items[i].LengthDifference = item.LengthDifference
			check.Items[i].WeightDifference = item.WeightDifference
			check.Items[i].Corrected = item.Corrected
			check.Items[i].RequiresFollowUp = item.RequiresFollowUp
			check.Items[i].CountedBy = item.CountedBy
			check.Items[i].CountedAt = item.CountedAt
			check.Items[i].Notes = item.Notes
			check.Items[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return &models.NotFoundError{Entity: "inventory_check_item", EntityId: item.ID}
}

func (s *checkStore) List(ctx context.Context, status models.CheckStatus) ([]*models.InventoryCheck, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var results []*models.InventoryCheck
	for _, check := range s.checks {
		if status != "" && check.Status != status {
			continue
		}
		copied := *check
		copied.Items = append([]models.InventoryCheckItem(nil), check.Items...)
		results = append(results, &copied)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID > results[j].ID })
	return results, nil
}

type eventStore Store

func (s *eventStore) Append(ctx context.Context, event *models.LedgerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventId++
	event.ID = s.nextEventId
	copied := *event
	s.events[event.ID] = &copied
	return nil
}

func (s *eventStore) ListPending(ctx context.Context, limit int) ([]*models.LedgerEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var results []*models.LedgerEvent
	for _, event := range s.events {
		if event.PublishStatus != models.EventPublishStatusPending {
			continue
		}
		copied := *event
		results = append(results, &copied)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *eventStore) MarkSent(ctx context.Context, id int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return &models.NotFoundError{Entity: "ledger_event", EntityId: id}
	}
	event.PublishStatus = models.EventPublishStatusSent
	event.PublishedAt = &at
	event.LastError = ""
	return nil
}

func (s *eventStore) MarkFailed(ctx context.Context, id int, publishErr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[id]
	if !ok {
		return &models.NotFoundError{Entity: "ledger_event", EntityId: id}
	}
	event.PublishStatus = models.EventPublishStatusFailed
	event.AttemptCount++
	event.LastError = publishErr
	return nil
}
