// Package workflow holds the multi-step operations that coordinate the
// ledger, the stores and external services: issuance allocation, cutting
// consumption, inventory checks, grading, the integrity sweep and the
// outbox dispatcher.
package workflow

import (
	"bitbucket.org/mmdatafocus/fabric_backend/ledger"
	"bitbucket.org/mmdatafocus/fabric_backend/store"
	"github.com/sirupsen/logrus"
)

type Deps struct {
	Store  store.Store
	Ledger *ledger.Ledger
	Logger *logrus.Logger
}

func NewDeps(s store.Store, logger *logrus.Logger) *Deps {
	return &Deps{
		Store:  s,
		Ledger: ledger.New(s, logger),
		Logger: logger,
	}
}
