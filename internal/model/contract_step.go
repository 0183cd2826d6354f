package model

import (
	"time"

	"github.com/google/uuid"
)

type StepKind string

const (
	StepSignContract      StepKind = "sign_contract"
	StepUploadAttachments StepKind = "upload_attachments"
	StepCompleteContract  StepKind = "complete_contract"
)

type StepStatus string

const (
	StepStatusPending  StepStatus = "pending"
	StepStatusApproved StepStatus = "approved"
	StepStatusRejected StepStatus = "rejected"
	// StepStatusCancelled is declared for completeness; no transition produces
	// it today.
	StepStatusCancelled StepStatus = "cancelled"
)

type Party string

const (
	PartyA Party = "A"
	PartyB Party = "B"
)

type Decision string

const (
	DecisionPending  Decision = "pending"
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// Approval is one party's decision slot on a contract step. Every step carries
// exactly two, one per party, seeded as pending when the step starts.
type Approval struct {
	ID        uuid.UUID
	StepID    uuid.UUID
	Party     Party
	UserID    uuid.UUID
	Decision  Decision
	Note      *string
	DecidedAt *time.Time
}

// ContractStep is one gated stage of executing a contract. Status is always
// derived from the approvals, never written directly by callers.
type ContractStep struct {
	ID           uuid.UUID
	ContractID   uuid.UUID
	Step         StepKind
	Status       StepStatus
	ContractFile *string
	Attachments  []string
	Notes        *string
	Approvals    []Approval
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DeriveStepStatus computes a step's status from its approvals: any rejection
// rejects the step, unanimous approval approves it, anything else is pending.
func DeriveStepStatus(approvals []Approval) StepStatus {
	approved := 0
	for _, a := range approvals {
		switch a.Decision {
		case DecisionRejected:
			return StepStatusRejected
		case DecisionApproved:
			approved++
		}
	}
	if len(approvals) > 0 && approved == len(approvals) {
		return StepStatusApproved
	}
	return StepStatusPending
}

func ParseStepKind(raw string) (StepKind, bool) {
	switch StepKind(raw) {
	case StepSignContract, StepUploadAttachments, StepCompleteContract:
		return StepKind(raw), true
	}
	return "", false
}

func ParseParty(raw string) (Party, bool) {
	switch Party(raw) {
	case PartyA, PartyB:
		return Party(raw), true
	}
	return "", false
}

func ParseDecision(raw string) (Decision, bool) {
	switch Decision(raw) {
	case DecisionApproved, DecisionRejected:
		return Decision(raw), true
	}
	return "", false
}
