package models

import (
	"log"

	"bitbucket.org/mmdatafocus/fabric_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&FabricType{},
		&InventoryRoll{},
		&IssuanceRecord{}, &IssuanceRoll{},
		&CuttingOrder{}, &CuttingOrderDetail{},
		&InventoryCheck{}, &InventoryCheckItem{},
		&LedgerEvent{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
