package models

import "errors"

type RollStatus string

const (
	RollStatusAvailable RollStatus = "available"
	RollStatusReserved  RollStatus = "reserved"
	RollStatusInUse     RollStatus = "in_use"
	RollStatusUsed      RollStatus = "used"
	// RollStatusVoided is the terminal soft-delete marking. Rolls are never
	// physically deleted; voiding preserves the audit history.
	RollStatusVoided RollStatus = "voided"
)

func (s RollStatus) Valid() bool {
	switch s {
	case RollStatusAvailable, RollStatusReserved, RollStatusInUse, RollStatusUsed, RollStatusVoided:
		return true
	}
	return false
}

func ParseRollStatus(str string) (RollStatus, error) {
	s := RollStatus(str)
	if !s.Valid() {
		return "", errors.New("invalid roll status")
	}
	return s, nil
}

// CanTransitionTo reports whether from -> to is in the allowed forward set.
// The only backward edge is reserved -> available (cancelling a premature
// reservation). Consumption is never skipped backward; corrections go
// through Correct, voiding through Void.
func (s RollStatus) CanTransitionTo(to RollStatus) bool {
	switch s {
	case RollStatusAvailable:
		return to == RollStatusReserved
	case RollStatusReserved:
		return to == RollStatusInUse || to == RollStatusAvailable
	case RollStatusInUse:
		return to == RollStatusUsed
	}
	return false
}

type QualityGrade string

const (
	QualityGradeA QualityGrade = "A"
	QualityGradeB QualityGrade = "B"
	QualityGradeC QualityGrade = "C"
	QualityGradeD QualityGrade = "D"
)

func (g QualityGrade) Valid() bool {
	switch g {
	case QualityGradeA, QualityGradeB, QualityGradeC, QualityGradeD:
		return true
	}
	return false
}

func ParseQualityGrade(str string) (QualityGrade, error) {
	g := QualityGrade(str)
	if !g.Valid() {
		return "", errors.New("invalid quality grade")
	}
	return g, nil
}

type IssuanceStatus string

const (
	IssuanceStatusPending   IssuanceStatus = "pending"
	IssuanceStatusIssued    IssuanceStatus = "issued"
	IssuanceStatusCancelled IssuanceStatus = "cancelled"
)

func (s IssuanceStatus) Valid() bool {
	switch s {
	case IssuanceStatusPending, IssuanceStatusIssued, IssuanceStatusCancelled:
		return true
	}
	return false
}

type CuttingOrderStatus string

const (
	CuttingOrderStatusPending    CuttingOrderStatus = "pending"
	CuttingOrderStatusInProgress CuttingOrderStatus = "in-progress"
	CuttingOrderStatusCompleted  CuttingOrderStatus = "completed"
	CuttingOrderStatusCancelled  CuttingOrderStatus = "cancelled"
)

func (s CuttingOrderStatus) Valid() bool {
	switch s {
	case CuttingOrderStatusPending, CuttingOrderStatusInProgress, CuttingOrderStatusCompleted, CuttingOrderStatusCancelled:
		return true
	}
	return false
}

func (s CuttingOrderStatus) CanTransitionTo(to CuttingOrderStatus) bool {
	switch s {
	case CuttingOrderStatusPending:
		return to == CuttingOrderStatusInProgress || to == CuttingOrderStatusCancelled
	case CuttingOrderStatusInProgress:
		return to == CuttingOrderStatusCompleted || to == CuttingOrderStatusCancelled
	}
	return false
}

type CheckStatus string

const (
	CheckStatusDraft      CheckStatus = "draft"
	CheckStatusInProgress CheckStatus = "in-progress"
	CheckStatusCompleted  CheckStatus = "completed"
	CheckStatusCancelled  CheckStatus = "cancelled"
)

func (s CheckStatus) Valid() bool {
	switch s {
	case CheckStatusDraft, CheckStatusInProgress, CheckStatusCompleted, CheckStatusCancelled:
		return true
	}
	return false
}

func (s CheckStatus) CanTransitionTo(to CheckStatus) bool {
	switch s {
	case CheckStatusDraft:
		return to == CheckStatusInProgress || to == CheckStatusCancelled
	case CheckStatusInProgress:
		return to == CheckStatusCompleted || to == CheckStatusCancelled
	}
	return false
}

type DefectSeverity string

const (
	DefectSeverityMinor    DefectSeverity = "minor"
	DefectSeverityMajor    DefectSeverity = "major"
	DefectSeverityCritical DefectSeverity = "critical"
)

func (s DefectSeverity) Valid() bool {
	switch s {
	case DefectSeverityMinor, DefectSeverityMajor, DefectSeverityCritical:
		return true
	}
	return false
}

type LedgerEventType string

const (
	LedgerEventRollReceived     LedgerEventType = "RollReceived"
	LedgerEventRollTransitioned LedgerEventType = "RollTransitioned"
	LedgerEventRollCorrected    LedgerEventType = "RollCorrected"
	LedgerEventRollVoided       LedgerEventType = "RollVoided"
	LedgerEventRollRepaired     LedgerEventType = "RollRepaired"
)

type EventPublishStatus string

const (
	EventPublishStatusPending EventPublishStatus = "PENDING"
	EventPublishStatusSent    EventPublishStatus = "SENT"
	EventPublishStatusFailed  EventPublishStatus = "FAILED"
)
