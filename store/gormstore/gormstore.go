// Package gormstore implements the store contract on gorm over MySQL.
package gormstore

import (
	"errors"

	"bitbucket.org/mmdatafocus/fabric_backend/models"
	"bitbucket.org/mmdatafocus/fabric_backend/store"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Rolls() store.RollStore                 { return &rollStore{db: s.db} }
func (s *Store) FabricTypes() store.FabricTypeStore     { return &fabricTypeStore{db: s.db} }
func (s *Store) Issuances() store.IssuanceStore         { return &issuanceStore{db: s.db} }
func (s *Store) CuttingOrders() store.CuttingOrderStore { return &cuttingOrderStore{db: s.db} }
func (s *Store) Checks() store.CheckStore               { return &checkStore{db: s.db} }
func (s *Store) Events() store.EventStore               { return &eventStore{db: s.db} }

// translateInsertError maps MySQL duplicate-key violations on unique
// business numbers to a ValidationError so callers can treat them like any
// other bad input.
func translateInsertError(err error, entity string, field string) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return &models.ValidationError{Entity: entity, Field: field, Message: "already exists"}
	}
	return err
}

func notFoundOr(err error, entity string, id int) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NotFoundError{Entity: entity, EntityId: id}
	}
	return err
}
