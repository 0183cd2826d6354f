package model

import (
	"time"

	"github.com/google/uuid"
)

// NegotiationMessage is one entry in a proposal's append-only negotiation log.
// OfferID is set exactly once, when an offer is created for the message.
type NegotiationMessage struct {
	ID         uuid.UUID
	ProposalID uuid.UUID
	SenderID   uuid.UUID
	Text       string
	IsOffer    bool
	OfferID    *uuid.UUID
	CreatedAt  time.Time
}
