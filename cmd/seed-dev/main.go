// Dev seeding tool: creates a handful of fabric types and rolls so a fresh
// local database has something to issue and count.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/ledger"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/store/gormstore"
	"github.com/shopspring/decimal"
)

func main() {
	rollsPerType := flag.Int("rolls", 5, "Rolls to create per fabric type")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	models.MigrateTable()

	logger := config.GetLogger()
	st := gormstore.New(db)
	ldg := ledger.New(st, logger)
	ctx := context.Background()

	fabricTypes := []*models.FabricType{
		{Code: "KK001", Name: "Cotton Twill 240", Composition: "100% cotton", WidthCm: decimal.NewFromInt(150), WeightGsm: decimal.NewFromInt(240), Color: "navy", MinStock: decimal.NewFromInt(500)},
		{Code: "KK002", Name: "Poly Poplin 120", Composition: "65% poly 35% cotton", WidthCm: decimal.NewFromInt(145), WeightGsm: decimal.NewFromInt(120), Color: "white", MinStock: decimal.NewFromInt(300)},
		{Code: "KK003", Name: "Denim 12oz", Composition: "98% cotton 2% elastane", WidthCm: decimal.NewFromInt(140), WeightGsm: decimal.NewFromInt(407), Color: "indigo", MinStock: decimal.NewFromInt(800)},
	}
	for _, fabricType := range fabricTypes {
		active := true
		fabricType.IsActive = &active
		if err := st.FabricTypes().Insert(ctx, fabricType); err != nil {
			if models.IsValidation(err) {
				existing, getErr := st.FabricTypes().GetByCode(ctx, fabricType.Code)
				if getErr != nil {
					fmt.Fprintf(os.Stderr, "seed fabric type %s: %v\n", fabricType.Code, getErr)
					os.Exit(1)
				}
				fabricType.ID = existing.ID
				continue
			}
			fmt.Fprintf(os.Stderr, "seed fabric type %s: %v\n", fabricType.Code, err)
			os.Exit(1)
		}
	}

	created := 0
	for _, fabricType := range fabricTypes {
		for i := 1; i <= *rollsPerType; i++ {
			input := &models.NewInventoryRoll{
				RollNumber:   fmt.Sprintf("%s-R%03d", fabricType.Code, i),
				FabricTypeId: fabricType.ID,
				LotNumber:    fmt.Sprintf("LOT-%s-01", fabricType.Code),
				Length:       decimal.NewFromInt(int64(90 + i*5)),
				Width:        fabricType.WidthCm,
				Weight:       decimal.NewFromInt(int64(18 + i)),
				Location:     "WH-A",
			}
			if _, err := ldg.Receive(ctx, input); err != nil {
				if models.IsValidation(err) {
					// already seeded
					continue
				}
				fmt.Fprintf(os.Stderr, "seed roll %s: %v\n", input.RollNumber, err)
				os.Exit(1)
			}
			created++
		}
	}
	fmt.Printf("seeded %d fabric types, %d new rolls\n", len(fabricTypes), created)
}
