package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractLogStatus string

const (
	ContractLogStatusPending   ContractLogStatus = "pending"
	ContractLogStatusCompleted ContractLogStatus = "completed"
	ContractLogStatusCancelled ContractLogStatus = "cancelled"
)

// ContractLog is the final confirmation record for a contract. Marking
// IsDoneContract cascades completion back to the originating proposal.
type ContractLog struct {
	ID             uuid.UUID
	ContractID     uuid.UUID
	ProposalKind   ProposalKind
	ProposalID     *uuid.UUID
	Status         ContractLogStatus
	Reason         *string
	IsDoneContract bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
