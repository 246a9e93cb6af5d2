// Package catalog manages fabric type master data. Reads go through a
// Redis cache when one is connected; writes invalidate it.
package catalog

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/store"
	"bitbucket.org/mmdatafocus/fabric_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	moduleName = "catalog"
	cacheTTL   = 10 * time.Minute
)

type Catalog struct {
	store  store.Store
	logger *logrus.Logger
}

func New(s store.Store, logger *logrus.Logger) *Catalog {
	return &Catalog{store: s, logger: logger}
}

func cacheKey(id int) string {
	return fmt.Sprintf("fabricType:%d", id)
}

const listCacheKey = "fabricTypes"

func (c *Catalog) Create(ctx context.Context, input *models.NewFabricType) (*models.FabricType, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	fabricType := &models.FabricType{
		Code:        input.Code,
		Name:        input.Name,
		Composition: input.Composition,
		WidthCm:     input.WidthCm,
		WeightGsm:   input.WeightGsm,
		Color:       input.Color,
		Supplier:    input.Supplier,
		UnitPrice:   input.UnitPrice,
		MinStock:    input.MinStock,
		Unit:        input.Unit,
		IsActive:    utils.NewTrue(),
	}
	if err := c.store.FabricTypes().Insert(ctx, fabricType); err != nil {
		return nil, err
	}
	c.invalidate(0)
	return fabricType, nil
}

func (c *Catalog) Update(ctx context.Context, id int, input *models.NewFabricType) (*models.FabricType, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	err := c.store.FabricTypes().Update(ctx, id, map[string]interface{}{
		"code":        input.Code,
		"name":        input.Name,
		"composition": input.Composition,
		"width_cm":    input.WidthCm,
		"weight_gsm":  input.WeightGsm,
		"color":       input.Color,
		"supplier":    input.Supplier,
		"unit_price":  input.UnitPrice,
		"min_stock":   input.MinStock,
		"unit":        input.Unit,
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(id)
	return c.store.FabricTypes().Get(ctx, id)
}

// Delete removes a fabric type that no roll references. Types with live
// inventory can only be archived via ToggleActive.
func (c *Catalog) Delete(ctx context.Context, id int) error {
	count, err := c.store.FabricTypes().CountRolls(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return &models.ConflictError{
			Entity:    "fabric_type",
			EntityId:  id,
			Op:        "delete",
			Current:   fmt.Sprintf("%d rolls", count),
			Attempted: "delete",
		}
	}
	if err := c.store.FabricTypes().Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(id)
	return nil
}

func (c *Catalog) Get(ctx context.Context, id int) (*models.FabricType, error) {
	var cached models.FabricType
	exists, err := config.GetRedisObject(cacheKey(id), &cached)
	if err != nil {
		config.LogError(c.logger, moduleName, "Get", "cache read", id, err)
	} else if exists {
		return &cached, nil
	}

	fabricType, err := c.store.FabricTypes().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := config.SetRedisObject(cacheKey(id), fabricType, cacheTTL); err != nil {
		config.LogError(c.logger, moduleName, "Get", "cache write", id, err)
	}
	return fabricType, nil
}

func (c *Catalog) GetByCode(ctx context.Context, code string) (*models.FabricType, error) {
	return c.store.FabricTypes().GetByCode(ctx, code)
}

func (c *Catalog) List(ctx context.Context, activeOnly bool) ([]*models.FabricType, error) {
	key := listCacheKey
	if activeOnly {
		key = listCacheKey + ":active"
	}
	var cached []*models.FabricType
	exists, err := config.GetRedisObject(key, &cached)
	if err != nil {
		config.LogError(c.logger, moduleName, "List", "cache read", key, err)
	} else if exists {
		return cached, nil
	}

	results, err := c.store.FabricTypes().List(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if err := config.SetRedisObject(key, results, cacheTTL); err != nil {
		config.LogError(c.logger, moduleName, "List", "cache write", key, err)
	}
	return results, nil
}

func (c *Catalog) ToggleActive(ctx context.Context, id int, isActive bool) (*models.FabricType, error) {
	err := c.store.FabricTypes().Update(ctx, id, map[string]interface{}{
		"is_active": isActive,
	})
	if err != nil {
		return nil, err
	}
	c.invalidate(id)
	return c.store.FabricTypes().Get(ctx, id)
}

// LowStockEntry flags a fabric type whose available length fell below its
// configured minimum stock.
type LowStockEntry struct {
	FabricType      *models.FabricType `json:"fabric_type"`
	AvailableLength decimal.Decimal    `json:"available_length"`
	AvailableRolls  int                `json:"available_rolls"`
	Deficit         decimal.Decimal    `json:"deficit"`
}

// LowStock reports active fabric types under their minimum stock. Available
// length is summed from available rolls only; reserved and in-use fabric is
// already committed.
func (c *Catalog) LowStock(ctx context.Context) ([]*LowStockEntry, error) {
	fabricTypes, err := c.store.FabricTypes().List(ctx, true)
	if err != nil {
		return nil, err
	}

	var entries []*LowStockEntry
	for _, fabricType := range fabricTypes {
		if !fabricType.MinStock.IsPositive() {
			continue
		}
		rolls, err := c.store.Rolls().Query(ctx, models.RollFilter{
			FabricTypeId: fabricType.ID,
			Status:       models.RollStatusAvailable,
		})
		if err != nil {
			return nil, err
		}
		available := decimal.Zero
		for _, roll := range rolls {
			available = available.Add(roll.Length)
		}
		if available.GreaterThanOrEqual(fabricType.MinStock) {
			continue
		}
		entries = append(entries, &LowStockEntry{
			FabricType:      fabricType,
			AvailableLength: available,
			AvailableRolls:  len(rolls),
			Deficit:         fabricType.MinStock.Sub(available),
		})
	}
	return entries, nil
}

func (c *Catalog) invalidate(id int) {
	keys := []string{listCacheKey, listCacheKey + ":active"}
	if id > 0 {
		keys = append(keys, cacheKey(id))
	}
	if err := config.RemoveRedisKey(keys...); err != nil {
		config.LogError(c.logger, moduleName, "invalidate", "cache invalidate", id, err)
	}
}
