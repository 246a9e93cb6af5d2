// Maintenance tool: scans all rolls for invalid enums, invalid measurements
// and orphaned fabric type references, repairing what has a safe default.
// Safe to run repeatedly; a second pass finds nothing new.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/store/gormstore"
	"bitbucket.org/mmdatafocus/fabric_backend/workflow"
	"github.com/shopspring/decimal"
)

func main() {
	defaultLength := flag.String("default-length", "100", "Fallback length (m) for rolls with invalid length")
	defaultWeight := flag.String("default-weight", "20", "Fallback weight (kg) for rolls with invalid weight")
	asJSON := flag.Bool("json", false, "Print the report as JSON")
	flag.Parse()

	cfg := workflow.DefaultIntegrityConfig()
	if v, err := decimal.NewFromString(*defaultLength); err == nil && v.IsPositive() {
		cfg.DefaultLength = v
	}
	if v, err := decimal.NewFromString(*defaultWeight); err == nil && v.IsPositive() {
		cfg.DefaultWeight = v
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}
	logger := config.GetLogger()
	deps := workflow.NewDeps(gormstore.New(db), logger)

	report, err := workflow.RunIntegritySweep(context.Background(), deps, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "integrity sweep failed: %v\n", err)
		os.Exit(1)
	}

	if *asJSON {
		out, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(out))
		return
	}
	fmt.Printf("scanned:          %d\n", report.Scanned)
	fmt.Printf("orphans:          %d\n", len(report.Orphans))
	fmt.Printf("repaired status:  %d\n", report.RepairedStatus)
	fmt.Printf("repaired grade:   %d\n", report.RepairedGrade)
	fmt.Printf("repaired numeric: %d\n", report.RepairedNumeric)
	for _, orphan := range report.Orphans {
		fmt.Printf("  orphan roll %d (%s) -> fabric type %d\n", orphan.RollId, orphan.RollNumber, orphan.FabricTypeId)
	}
}
