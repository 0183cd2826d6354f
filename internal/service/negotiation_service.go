package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
)

type NegotiationService struct {
	proposals ProposalStore
	messages  MessageStore
	offers    OfferStore
	contracts ContractStore
	catalog   Catalog
	renderer  ContractRenderer
	files     FileStore
	notifier  Notifier
	log       zerolog.Logger
}

func NewNegotiationService(
	proposals ProposalStore,
	messages MessageStore,
	offers OfferStore,
	contracts ContractStore,
	catalog Catalog,
	renderer ContractRenderer,
	files FileStore,
	notifier Notifier,
	log zerolog.Logger,
) *NegotiationService {
	return &NegotiationService{
		proposals: proposals,
		messages:  messages,
		offers:    offers,
		contracts: contracts,
		catalog:   catalog,
		renderer:  renderer,
		files:     files,
		notifier:  notifier,
		log:       log,
	}
}

type SendOfferInput struct {
	ProposalID uuid.UUID
	Message    string
	Price      float64
	Content    string
	Principal  model.Principal
}

type SendOfferResult struct {
	Message *model.NegotiationMessage
	Offer   *model.Offer
}

func (s *NegotiationService) SendOffer(ctx context.Context, input SendOfferInput) (*SendOfferResult, error) {
	if strings.TrimSpace(input.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if input.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}

	proposal, err := s.proposals.GetByID(ctx, input.ProposalID)
	if err != nil {
		return nil, mapNotFound(err, "proposal")
	}
	if !proposal.IsParticipant(input.Principal.UserID) {
		return nil, ErrPermissionDenied
	}

	message, err := s.messages.CreateMessage(ctx, model.NegotiationMessage{
		ProposalID: proposal.ID,
		SenderID:   input.Principal.UserID,
		Text:       input.Message,
		IsOffer:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("create negotiating message: %w", err)
	}

	offer, err := s.offers.Create(ctx, model.Offer{
		ProposalID: proposal.ID,
		MessageID:  message.ID,
		Price:      input.Price,
		Content:    input.Content,
	})
	if err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}

	if err := s.messages.AttachOffer(ctx, message.ID, offer.ID); err != nil {
		return nil, fmt.Errorf("attach offer to message: %w", err)
	}
	message.OfferID = &offer.ID

	s.publish(ctx, "offer.sent", offer)
	return &SendOfferResult{Message: message, Offer: offer}, nil
}

type AcceptOfferResult struct {
	Offer    *model.Offer
	Proposal *model.Proposal
	Contract *model.Contract
}

// AcceptOffer accepts a pending offer and forms the contract. Acceptance and
// formation are separate writes: when formation fails the offer stays
// accepted with no contract, and RetryFormation picks the flow back up.
func (s *NegotiationService) AcceptOffer(ctx context.Context, offerID uuid.UUID, principal model.Principal) (*AcceptOfferResult, error) {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, mapNotFound(err, "offer")
	}

	proposal, err := s.proposals.GetByID(ctx, offer.ProposalID)
	if err != nil {
		return nil, mapNotFound(err, "proposal")
	}
	if !proposal.IsParticipant(principal.UserID) {
		return nil, ErrPermissionDenied
	}

	ok, err := s.offers.MarkAccepted(ctx, offer.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: offer is not pending", ErrConflict)
	}
	offer.Status = model.OfferStatusAccepted

	contract, err := s.formContract(ctx, offer, proposal)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "offer.accepted", offer)
	return &AcceptOfferResult{Offer: offer, Proposal: proposal, Contract: contract}, nil
}

func (s *NegotiationService) RejectOffer(ctx context.Context, offerID uuid.UUID, principal model.Principal) (*model.Offer, error) {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, mapNotFound(err, "offer")
	}

	proposal, err := s.proposals.GetByID(ctx, offer.ProposalID)
	if err != nil {
		return nil, mapNotFound(err, "proposal")
	}
	if !proposal.IsParticipant(principal.UserID) {
		return nil, ErrPermissionDenied
	}

	ok, err := s.offers.MarkRejected(ctx, offer.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: offer is not pending", ErrConflict)
	}
	offer.Status = model.OfferStatusRejected

	s.publish(ctx, "offer.rejected", offer)
	return offer, nil
}

// RetryFormation re-runs contract formation for an already accepted offer
// that ended up with no contract. Idempotent: an existing contract is
// returned as-is.
func (s *NegotiationService) RetryFormation(ctx context.Context, offerID uuid.UUID, principal model.Principal) (*model.Contract, error) {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, mapNotFound(err, "offer")
	}
	if offer.Status != model.OfferStatusAccepted {
		return nil, fmt.Errorf("%w: offer is not accepted", ErrConflict)
	}

	proposal, err := s.proposals.GetByID(ctx, offer.ProposalID)
	if err != nil {
		return nil, mapNotFound(err, "proposal")
	}
	if !proposal.IsParticipant(principal.UserID) {
		return nil, ErrPermissionDenied
	}

	existing, err := s.contracts.GetByOfferID(ctx, offer.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.formContract(ctx, offer, proposal)
}

func (s *NegotiationService) ListMessages(
	ctx context.Context,
	proposalID uuid.UUID,
	page, perPage int,
	principal model.Principal,
) ([]model.NegotiationMessage, int64, error) {
	proposal, err := s.proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, 0, mapNotFound(err, "proposal")
	}
	if !proposal.IsParticipant(principal.UserID) {
		return nil, 0, ErrPermissionDenied
	}
	return s.messages.ListByProposal(ctx, proposalID, page, perPage)
}

// formContract resolves the two contracting parties from the proposal's
// target entity and creates the contract with the accepted offer's price.
func (s *NegotiationService) formContract(ctx context.Context, offer *model.Offer, proposal *model.Proposal) (*model.Contract, error) {
	contract := model.Contract{
		ProposalKind: proposal.Kind,
		ProposalID:   proposal.ID,
		OfferID:      offer.ID,
		Price:        offer.Price,
		Status:       model.ContractStatusInProgress,
	}

	switch proposal.Kind {
	case model.ProposalKindTechnology:
		if proposal.TechnologyID == nil {
			return nil, fmt.Errorf("%w: proposal has no technology reference", ErrUnresolvedParties)
		}
		tech, err := s.catalog.GetTechnology(ctx, *proposal.TechnologyID)
		if err != nil {
			return nil, mapNotFound(err, "technology")
		}
		if tech.SubmitterID == nil {
			return nil, fmt.Errorf("%w: technology has no submitter", ErrUnresolvedParties)
		}
		contract.UserAID = *tech.SubmitterID
		contract.UserBID = proposal.ProposerID
		contract.TechnologyIDs = []uuid.UUID{tech.ID}

	case model.ProposalKindProject:
		if proposal.ProjectID == nil {
			return nil, fmt.Errorf("%w: proposal has no project reference", ErrUnresolvedParties)
		}
		project, err := s.catalog.GetProject(ctx, *proposal.ProjectID)
		if err != nil {
			return nil, mapNotFound(err, "project")
		}
		if project.OwnerID == nil {
			return nil, fmt.Errorf("%w: project has no owner", ErrUnresolvedParties)
		}
		techIDs, err := s.catalog.ListProjectTechnologyIDs(ctx, project.ID)
		if err != nil {
			return nil, err
		}
		contract.UserAID = *project.OwnerID
		contract.UserBID = proposal.ProposerID
		contract.TechnologyIDs = techIDs

	case model.ProposalKindDemand:
		if proposal.TechnologyID == nil || proposal.DemandID == nil {
			return nil, fmt.Errorf("%w: proposal has no demand/technology pair", ErrUnresolvedParties)
		}
		tech, err := s.catalog.GetTechnology(ctx, *proposal.TechnologyID)
		if err != nil {
			return nil, mapNotFound(err, "technology")
		}
		demand, err := s.catalog.GetDemand(ctx, *proposal.DemandID)
		if err != nil {
			return nil, mapNotFound(err, "demand")
		}
		if tech.SubmitterID == nil {
			return nil, fmt.Errorf("%w: technology has no submitter", ErrUnresolvedParties)
		}
		if demand.OwnerID == nil {
			return nil, fmt.Errorf("%w: demand has no owner", ErrUnresolvedParties)
		}
		contract.UserAID = *tech.SubmitterID
		contract.UserBID = *demand.OwnerID
		contract.TechnologyIDs = []uuid.UUID{tech.ID}

	default:
		return nil, fmt.Errorf("%w: unknown proposal kind", ErrUnresolvedParties)
	}

	saved, err := s.contracts.Create(ctx, contract)
	if err != nil {
		return nil, fmt.Errorf("create contract: %w", err)
	}

	if proposal.Kind == model.ProposalKindTechnology {
		if err := s.proposals.UpdateStatus(ctx, proposal.ID, model.ProposalStatusContactSigning); err != nil {
			s.log.Error().Err(err).
				Str("proposal_id", proposal.ID.String()).
				Msg("failed to move proposal to contact_signing")
		} else {
			proposal.Status = model.ProposalStatusContactSigning
		}
	}

	s.uploadCoverSheet(ctx, saved)
	s.publish(ctx, "contract.formed", saved)
	return saved, nil
}

// uploadCoverSheet renders the contract cover sheet and stores it as the
// contract's first document. Best-effort: failures are logged only.
func (s *NegotiationService) uploadCoverSheet(ctx context.Context, contract *model.Contract) {
	if s.renderer == nil || s.files == nil {
		return
	}

	partyA, err := s.catalog.GetUser(ctx, contract.UserAID)
	if err != nil {
		s.log.Warn().Err(err).Msg("cover sheet: party A lookup failed")
		return
	}
	partyB, err := s.catalog.GetUser(ctx, contract.UserBID)
	if err != nil {
		s.log.Warn().Err(err).Msg("cover sheet: party B lookup failed")
		return
	}

	content, err := s.renderer.Render(model.ContractSheet{
		Contract:    *contract,
		PartyA:      *partyA,
		PartyB:      *partyB,
		GeneratedAt: time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("cover sheet: render failed")
		return
	}

	key := fmt.Sprintf("contracts/%s/cover-sheet.pdf", contract.ID)
	if err := s.files.Upload(ctx, key, content, "application/pdf"); err != nil {
		s.log.Warn().Err(err).Msg("cover sheet: upload failed")
		return
	}
	if err := s.contracts.AddDocuments(ctx, contract.ID, []string{key}); err != nil {
		s.log.Warn().Err(err).Msg("cover sheet: document link failed")
		return
	}
	contract.Documents = append(contract.Documents, key)
}

func (s *NegotiationService) publish(ctx context.Context, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event, payload); err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("notification publish failed")
	}
}
