package model

import (
	"time"

	"github.com/google/uuid"
)

type ContractStatus string

const (
	ContractStatusInProgress ContractStatus = "in_progress"
	ContractStatusSigned     ContractStatus = "signed"
	ContractStatusCompleted  ContractStatus = "completed"
	ContractStatusCancelled  ContractStatus = "cancelled"
)

// Contract is the binding agreement formed when an offer is accepted.
// UserA and UserB are the two resolved contracting principals; which side is
// which depends on the proposal kind (see contract formation).
type Contract struct {
	ID            uuid.UUID
	UserAID       uuid.UUID
	UserBID       uuid.UUID
	ProposalKind  ProposalKind
	ProposalID    uuid.UUID
	OfferID       uuid.UUID
	Price         float64
	ContractFile  *string
	Status        ContractStatus
	TechnologyIDs []uuid.UUID
	Documents     []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (c Contract) IsParticipant(userID uuid.UUID) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// PartyOf maps a user onto the contract side they occupy.
func (c Contract) PartyOf(userID uuid.UUID) (Party, bool) {
	switch userID {
	case c.UserAID:
		return PartyA, true
	case c.UserBID:
		return PartyB, true
	}
	return "", false
}
