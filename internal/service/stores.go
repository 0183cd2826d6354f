package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/repository"
)

// Store interfaces are satisfied by the gorm repositories; tests substitute
// in-memory fakes.

type ProposalStore interface {
	Create(ctx context.Context, proposal model.Proposal) (*model.Proposal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Proposal, error)
	List(ctx context.Context, filter repository.ProposalFilter) ([]model.Proposal, int64, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, to model.ProposalStatus, notFrom []model.ProposalStatus) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ProposalStatus) error
}

type MessageStore interface {
	CreateMessage(ctx context.Context, message model.NegotiationMessage) (*model.NegotiationMessage, error)
	GetMessage(ctx context.Context, id uuid.UUID) (*model.NegotiationMessage, error)
	AttachOffer(ctx context.Context, messageID, offerID uuid.UUID) error
	ListByProposal(ctx context.Context, proposalID uuid.UUID, page, perPage int) ([]model.NegotiationMessage, int64, error)
}

type OfferStore interface {
	Create(ctx context.Context, offer model.Offer) (*model.Offer, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Offer, error)
	MarkAccepted(ctx context.Context, id uuid.UUID) (bool, error)
	MarkRejected(ctx context.Context, id uuid.UUID) (bool, error)
}

type ContractStore interface {
	Create(ctx context.Context, contract model.Contract) (*model.Contract, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	GetByOfferID(ctx context.Context, offerID uuid.UUID) (*model.Contract, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContractStatus) error
	MarkSigned(ctx context.Context, id uuid.UUID, contractFile *string) error
	AddDocuments(ctx context.Context, id uuid.UUID, keys []string) error
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]model.Contract, error)
}

type StepStore interface {
	Create(ctx context.Context, step model.ContractStep) (*model.ContractStep, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ContractStep, error)
	Decide(ctx context.Context, input repository.DecideInput) (*model.ContractStep, error)
	List(ctx context.Context, filter repository.StepFilter) ([]model.ContractStep, int64, error)
}

type LogStore interface {
	Create(ctx context.Context, log model.ContractLog) (*model.ContractLog, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.ContractLog, error)
	Update(ctx context.Context, id uuid.UUID, update repository.ContractLogUpdate) (*model.ContractLog, error)
}

type Catalog interface {
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetTechnology(ctx context.Context, id uuid.UUID) (*model.Technology, error)
	GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListProjectTechnologyIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error)
	GetDemand(ctx context.Context, id uuid.UUID) (*model.Demand, error)
}

// Notifier delivers fire-and-forget event notifications. Publish errors are
// logged by callers and never fail the owning operation.
type Notifier interface {
	Publish(ctx context.Context, event string, payload interface{}) error
}

// FileStore holds opaque contract documents; the service only passes keys
// around and never inspects file bytes.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type ContractRenderer interface {
	Render(sheet model.ContractSheet) ([]byte, error)
}

type RegisterGenerator interface {
	Generate(register model.ContractRegister) ([]byte, error)
}
