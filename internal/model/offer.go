package model

import (
	"time"

	"github.com/google/uuid"
)

type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

// Offer is a priced term sheet attached to a negotiation message.
type Offer struct {
	ID         uuid.UUID
	ProposalID uuid.UUID
	MessageID  uuid.UUID
	Price      float64
	Content    string
	Status     OfferStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
