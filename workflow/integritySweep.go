package workflow

import (
	"context"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"github.com/shopspring/decimal"
)

// IntegrityConfig holds the conservative defaults the sweep writes in place
// of invalid numeric values.
type IntegrityConfig struct {
	DefaultLength decimal.Decimal
	DefaultWeight decimal.Decimal
}

func DefaultIntegrityConfig() IntegrityConfig {
	return IntegrityConfig{
		DefaultLength: decimal.NewFromInt(100),
		DefaultWeight: decimal.NewFromInt(20),
	}
}

type OrphanRoll struct {
	RollId       int    `json:"roll_id"`
	RollNumber   string `json:"roll_number"`
	FabricTypeId int    `json:"fabric_type_id"`
}

type IntegrityReport struct {
	Scanned         int          `json:"scanned"`
	Orphans         []OrphanRoll `json:"orphans"`
	RepairedStatus  int          `json:"repaired_status"`
	RepairedGrade   int          `json:"repaired_grade"`
	RepairedNumeric int          `json:"repaired_numeric"`
	Warnings        []string     `json:"warnings"`
}

// RunIntegritySweep scans every roll, voided included, and repairs what can
// be repaired safely: unknown statuses fall back to available, unknown
// grades to A, non-positive measurements to the configured defaults. Rolls
// pointing at a missing fabric type are reported, never touched, since no
// safe default exists for a reference. Repairs go through the ledger so
// each one is logged with the original value and leaves an outbox event.
// Running the sweep twice finds nothing new the second time.
func RunIntegritySweep(ctx context.Context, deps *Deps, cfg IntegrityConfig) (*IntegrityReport, error) {
	if !cfg.DefaultLength.IsPositive() || !cfg.DefaultWeight.IsPositive() {
		cfg = DefaultIntegrityConfig()
	}

	rolls, err := deps.Store.Rolls().Query(ctx, models.RollFilter{IncludeVoided: true})
	if err != nil {
		return nil, err
	}

	fabricTypes, err := deps.Store.FabricTypes().List(ctx, false)
	if err != nil {
		return nil, err
	}
	knownFabrics := make(map[int]struct{}, len(fabricTypes))
	for _, fabricType := range fabricTypes {
		knownFabrics[fabricType.ID] = struct{}{}
	}

	report := &IntegrityReport{Scanned: len(rolls)}
	for _, roll := range rolls {
		if _, ok := knownFabrics[roll.FabricTypeId]; !ok {
			report.Orphans = append(report.Orphans, OrphanRoll{
				RollId:       roll.ID,
				RollNumber:   roll.RollNumber,
				FabricTypeId: roll.FabricTypeId,
			})
		}

		updates := make(map[string]interface{})
		if !roll.Status.Valid() {
			updates["status"] = models.RollStatusAvailable
			report.RepairedStatus++
			warn(deps, report, &models.IntegrityWarning{
				Entity: "inventory_roll", EntityId: roll.ID, Field: "status",
				Original: string(roll.Status), Applied: string(models.RollStatusAvailable),
			})
		}
		if !roll.Grade.Valid() {
			updates["grade"] = models.QualityGradeA
			report.RepairedGrade++
			warn(deps, report, &models.IntegrityWarning{
				Entity: "inventory_roll", EntityId: roll.ID, Field: "grade",
				Original: string(roll.Grade), Applied: string(models.QualityGradeA),
			})
		}
		if !roll.Length.IsPositive() {
			updates["length"] = cfg.DefaultLength
			report.RepairedNumeric++
			warn(deps, report, &models.IntegrityWarning{
				Entity: "inventory_roll", EntityId: roll.ID, Field: "length",
				Original: roll.Length.String(), Applied: cfg.DefaultLength.String(),
			})
		}
		if !roll.Weight.IsPositive() {
			updates["weight"] = cfg.DefaultWeight
			report.RepairedNumeric++
			warn(deps, report, &models.IntegrityWarning{
				Entity: "inventory_roll", EntityId: roll.ID, Field: "weight",
				Original: roll.Weight.String(), Applied: cfg.DefaultWeight.String(),
			})
		}
		if len(updates) == 0 {
			continue
		}

		_, ok, err := deps.Ledger.Repair(ctx, roll.ID, roll.Version, updates)
		if err != nil {
			return nil, err
		}
		if !ok {
			// Someone mutated the roll mid-sweep; the next sweep picks it up
			// again if the problem survived.
			config.LogError(deps.Logger, "workflow", "RunIntegritySweep", "repair conflict", roll.ID,
				&models.ConflictError{Entity: "inventory_roll", EntityId: roll.ID, Op: "repair", Version: roll.Version})
		}
	}
	return report, nil
}

func warn(deps *Deps, report *IntegrityReport, warning *models.IntegrityWarning) {
	report.Warnings = append(report.Warnings, warning.Error())
	deps.Logger.Warn(warning.Error())
}
