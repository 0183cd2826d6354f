package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/repository"
)

// acceptExcluded are the statuses the accept guard refuses. Note that
// contract_signed and cancelled are deliberately absent, matching the
// observed platform behavior.
var acceptExcluded = []model.ProposalStatus{
	model.ProposalStatusNegotiating,
	model.ProposalStatusContactSigning,
	model.ProposalStatusCompleted,
}

type ProposalService struct {
	proposals ProposalStore
	messages  MessageStore
	offers    OfferStore
	catalog   Catalog
	notifier  Notifier
	log       zerolog.Logger
}

func NewProposalService(
	proposals ProposalStore,
	messages MessageStore,
	offers OfferStore,
	catalog Catalog,
	notifier Notifier,
	log zerolog.Logger,
) *ProposalService {
	return &ProposalService{
		proposals: proposals,
		messages:  messages,
		offers:    offers,
		catalog:   catalog,
		notifier:  notifier,
		log:       log,
	}
}

type CreateProposalInput struct {
	Kind         model.ProposalKind
	ReceiverID   uuid.UUID
	TechnologyID *uuid.UUID
	ProjectID    *uuid.UUID
	DemandID     *uuid.UUID
	Terms        string
	Amount       float64
	Principal    model.Principal
}

func (s *ProposalService) Create(ctx context.Context, input CreateProposalInput) (*model.Proposal, error) {
	if input.ReceiverID == uuid.Nil {
		return nil, fmt.Errorf("%w: receiver_id is required", ErrInvalidInput)
	}
	if input.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}

	proposal := model.Proposal{
		Kind:       input.Kind,
		ProposerID: input.Principal.UserID,
		ReceiverID: input.ReceiverID,
		Terms:      input.Terms,
		Amount:     input.Amount,
	}

	switch input.Kind {
	case model.ProposalKindTechnology:
		if input.TechnologyID == nil {
			return nil, fmt.Errorf("%w: technology_id is required", ErrInvalidInput)
		}
		if _, err := s.catalog.GetTechnology(ctx, *input.TechnologyID); err != nil {
			return nil, mapNotFound(err, "technology")
		}
		proposal.TechnologyID = input.TechnologyID

	case model.ProposalKindProject:
		if input.ProjectID == nil {
			return nil, fmt.Errorf("%w: project_id is required", ErrInvalidInput)
		}
		if _, err := s.catalog.GetProject(ctx, *input.ProjectID); err != nil {
			return nil, mapNotFound(err, "project")
		}
		proposal.ProjectID = input.ProjectID

	case model.ProposalKindDemand:
		if input.DemandID == nil || input.TechnologyID == nil {
			return nil, fmt.Errorf("%w: demand_id and technology_id are required", ErrInvalidInput)
		}
		if _, err := s.catalog.GetDemand(ctx, *input.DemandID); err != nil {
			return nil, mapNotFound(err, "demand")
		}
		if _, err := s.catalog.GetTechnology(ctx, *input.TechnologyID); err != nil {
			return nil, mapNotFound(err, "technology")
		}
		proposal.DemandID = input.DemandID
		proposal.TechnologyID = input.TechnologyID

	default:
		return nil, fmt.Errorf("%w: unknown proposal kind", ErrInvalidInput)
	}

	saved, err := s.proposals.Create(ctx, proposal)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "proposal.created", saved)
	return saved, nil
}

func (s *ProposalService) Get(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Proposal, error) {
	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "proposal")
	}
	if !proposal.IsParticipant(principal.UserID) {
		return nil, ErrPermissionDenied
	}
	return proposal, nil
}

type ListProposalsInput struct {
	Kind      *model.ProposalKind
	Status    *model.ProposalStatus
	Page      int
	PerPage   int
	Principal model.Principal
}

func (s *ProposalService) List(ctx context.Context, input ListProposalsInput) ([]model.Proposal, int64, error) {
	return s.proposals.List(ctx, repository.ProposalFilter{
		ParticipantID: input.Principal.UserID,
		Kind:          input.Kind,
		Status:        input.Status,
		Page:          input.Page,
		PerPage:       input.PerPage,
	})
}

func (s *ProposalService) Cancel(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Proposal, error) {
	proposal, err := s.proposals.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, "proposal")
	}
	if proposal.ProposerID != principal.UserID {
		return nil, ErrPermissionDenied
	}

	ok, err := s.proposals.TransitionStatus(ctx, id, model.ProposalStatusCancelled, []model.ProposalStatus{
		model.ProposalStatusCompleted,
		model.ProposalStatusCancelled,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: proposal is already terminal", ErrConflict)
	}

	proposal.Status = model.ProposalStatusCancelled
	s.publish(ctx, "proposal.cancelled", proposal)
	return proposal, nil
}

type AcceptProposalInput struct {
	ProposalID uuid.UUID
	Kind       model.ProposalKind
	Message    string
	Principal  model.Principal
}

type AcceptProposalResult struct {
	Proposal *model.Proposal
	Message  *model.NegotiationMessage
	Offer    *model.Offer
}

// Accept moves the proposal into negotiation and seeds the first offer from
// the proposal's declared amount. The message/offer/back-link writes are not
// transactional with the status change: a failure after the transition leaves
// the proposal negotiating with no offer, and callers recover by sending an
// offer rather than re-creating the proposal.
func (s *ProposalService) Accept(ctx context.Context, input AcceptProposalInput) (*AcceptProposalResult, error) {
	proposal, err := s.proposals.GetByID(ctx, input.ProposalID)
	if err != nil {
		return nil, mapNotFound(err, "proposal")
	}
	if proposal.Kind != input.Kind {
		return nil, fmt.Errorf("%w: proposal kind mismatch", ErrInvalidInput)
	}
	if !proposal.IsParticipant(input.Principal.UserID) {
		return nil, ErrPermissionDenied
	}

	ok, err := s.proposals.TransitionStatus(ctx, proposal.ID, model.ProposalStatusNegotiating, acceptExcluded)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: proposal cannot be accepted in its current status", ErrConflict)
	}
	proposal.Status = model.ProposalStatusNegotiating

	text := input.Message
	if text == "" {
		text = proposal.Terms
	}
	message, err := s.messages.CreateMessage(ctx, model.NegotiationMessage{
		ProposalID: proposal.ID,
		SenderID:   proposal.ProposerID,
		Text:       text,
		IsOffer:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("create negotiating message: %w", err)
	}

	offer, err := s.offers.Create(ctx, model.Offer{
		ProposalID: proposal.ID,
		MessageID:  message.ID,
		Price:      proposal.Amount,
		Content:    text,
	})
	if err != nil {
		return nil, fmt.Errorf("create seeded offer: %w", err)
	}

	if err := s.messages.AttachOffer(ctx, message.ID, offer.ID); err != nil {
		return nil, fmt.Errorf("attach offer to message: %w", err)
	}
	message.OfferID = &offer.ID

	s.publish(ctx, "proposal.accepted", proposal)
	return &AcceptProposalResult{
		Proposal: proposal,
		Message:  message,
		Offer:    offer,
	}, nil
}

func (s *ProposalService) publish(ctx context.Context, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event, payload); err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("notification publish failed")
	}
}

func mapNotFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, entity)
	}
	return err
}
