package model

import (
	"time"

	"github.com/google/uuid"
)

type ProposalKind string

const (
	ProposalKindTechnology ProposalKind = "technology_investment"
	ProposalKindProject    ProposalKind = "project_investment"
	ProposalKindDemand     ProposalKind = "demand_response"
)

type ProposalStatus string

const (
	ProposalStatusPending        ProposalStatus = "pending"
	ProposalStatusNegotiating    ProposalStatus = "negotiating"
	ProposalStatusContactSigning ProposalStatus = "contact_signing"
	ProposalStatusContractSigned ProposalStatus = "contract_signed"
	ProposalStatusCompleted      ProposalStatus = "completed"
	ProposalStatusCancelled      ProposalStatus = "cancelled"
)

// Proposal is a party's expressed interest in transacting over a technology,
// project, or demand. Exactly one of TechnologyID/ProjectID/DemandID is set,
// matching Kind. DemandID proposals also carry the responding TechnologyID.
type Proposal struct {
	ID           uuid.UUID
	Kind         ProposalKind
	ProposerID   uuid.UUID
	ReceiverID   uuid.UUID
	TechnologyID *uuid.UUID
	ProjectID    *uuid.UUID
	DemandID     *uuid.UUID
	Terms        string
	Amount       float64
	Status       ProposalStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TargetRef reports which entity the proposal points at.
func (p Proposal) TargetRef() (uuid.UUID, bool) {
	switch p.Kind {
	case ProposalKindTechnology:
		if p.TechnologyID != nil {
			return *p.TechnologyID, true
		}
	case ProposalKindProject:
		if p.ProjectID != nil {
			return *p.ProjectID, true
		}
	case ProposalKindDemand:
		if p.DemandID != nil {
			return *p.DemandID, true
		}
	}
	return uuid.Nil, false
}

func (p Proposal) IsParticipant(userID uuid.UUID) bool {
	return p.ProposerID == userID || p.ReceiverID == userID
}

func ParseProposalKind(raw string) (ProposalKind, bool) {
	switch ProposalKind(raw) {
	case ProposalKindTechnology, ProposalKindProject, ProposalKindDemand:
		return ProposalKind(raw), true
	}
	return "", false
}
