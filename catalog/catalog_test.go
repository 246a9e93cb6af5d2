package catalog

import (
	"context"
	"io"
	"testing"

	"bitbucket.org/mmdatafocus/fabric_backend/ledger"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/store/memstore"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func newTestCatalog(t *testing.T) (*Catalog, *memstore.Store) {
	t.Helper()
	st := memstore.New()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return New(st, logger), st
}

func TestCreateAndGetFabricType(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	created, err := c.Create(ctx, &models.NewFabricType{
		Code:     "KK001",
		Name:     "Cotton Twill",
		MinStock: decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.IsActive == nil || !*created.IsActive {
		t.Fatalf("expected new fabric type active")
	}

	got, err := c.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Code != "KK001" {
		t.Fatalf("expected KK001, got %s", got.Code)
	}
}

func TestCreateDuplicateCodeRejected(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	if _, err := c.Create(ctx, &models.NewFabricType{Code: "KK001", Name: "Cotton"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := c.Create(ctx, &models.NewFabricType{Code: "KK001", Name: "Other"})
	if !models.IsValidation(err) {
		t.Fatalf("expected validation error for duplicate code, got %v", err)
	}
}

func TestDeleteReferencedFabricTypeRejected(t *testing.T) {
	c, st := newTestCatalog(t)
	ctx := context.Background()

	created, err := c.Create(ctx, &models.NewFabricType{Code: "KK001", Name: "Cotton"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ldg := ledger.New(st, logger)
	if _, err := ldg.Receive(ctx, &models.NewInventoryRoll{
		RollNumber:   "KK001-R001",
		FabricTypeId: created.ID,
		Length:       decimal.NewFromInt(100),
		Weight:       decimal.NewFromInt(20),
	}); err != nil {
		t.Fatalf("receive: %v", err)
	}

	if err := c.Delete(ctx, created.ID); !models.IsConflict(err) {
		t.Fatalf("expected conflict deleting referenced fabric type, got %v", err)
	}

	// Archiving is the supported path for types with inventory.
	archived, err := c.ToggleActive(ctx, created.ID, false)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if archived.IsActive == nil || *archived.IsActive {
		t.Fatalf("expected archived fabric type")
	}
}

func TestLowStockReport(t *testing.T) {
	c, st := newTestCatalog(t)
	ctx := context.Background()

	low, err := c.Create(ctx, &models.NewFabricType{Code: "KK001", Name: "Cotton", MinStock: decimal.NewFromInt(500)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ok, err := c.Create(ctx, &models.NewFabricType{Code: "KK002", Name: "Poplin", MinStock: decimal.NewFromInt(50)})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	ldg := ledger.New(st, logger)
	for _, spec := range []struct {
		fabricTypeId int
		rollNumber   string
		length       int64
	}{
		{low.ID, "KK001-R001", 100},
		{low.ID, "KK001-R002", 150},
		{ok.ID, "KK002-R001", 80},
	} {
		if _, err := ldg.Receive(ctx, &models.NewInventoryRoll{
			RollNumber:   spec.rollNumber,
			FabricTypeId: spec.fabricTypeId,
			Length:       decimal.NewFromInt(spec.length),
			Weight:       decimal.NewFromInt(20),
		}); err != nil {
			t.Fatalf("receive %s: %v", spec.rollNumber, err)
		}
	}

	entries, err := c.LowStock(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 low stock entry, got %d", len(entries))
	}
	if entries[0].FabricType.Code != "KK001" {
		t.Fatalf("expected KK001 flagged, got %s", entries[0].FabricType.Code)
	}
	if !entries[0].Deficit.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected deficit 250, got %s", entries[0].Deficit)
	}
}
