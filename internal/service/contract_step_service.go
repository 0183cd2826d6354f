package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
	"github.com/innotechjsc-company/hanotexapp-sub006/internal/repository"
)

type ContractStepService struct {
	steps     StepStore
	contracts ContractStore
	sync      *Synchronizer
	notifier  Notifier
	log       zerolog.Logger
}

func NewContractStepService(
	steps StepStore,
	contracts ContractStore,
	sync *Synchronizer,
	notifier Notifier,
	log zerolog.Logger,
) *ContractStepService {
	return &ContractStepService{
		steps:     steps,
		contracts: contracts,
		sync:      sync,
		notifier:  notifier,
		log:       log,
	}
}

type StartStepInput struct {
	ContractID   uuid.UUID
	Step         model.StepKind
	ContractFile *string
	Attachments  []string
	Notes        *string
	Principal    model.Principal
}

// Start creates a step instance with both parties' approval slots seeded
// pending, then synchronizes the parent contract.
func (s *ContractStepService) Start(ctx context.Context, input StartStepInput) (*model.ContractStep, error) {
	contract, err := s.contracts.GetByID(ctx, input.ContractID)
	if err != nil {
		return nil, mapNotFound(err, "contract")
	}
	if !contract.IsParticipant(input.Principal.UserID) {
		return nil, ErrPermissionDenied
	}
	if contract.Status == model.ContractStatusCancelled || contract.Status == model.ContractStatusCompleted {
		return nil, fmt.Errorf("%w: contract is already terminal", ErrConflict)
	}

	switch input.Step {
	case model.StepSignContract:
		if input.ContractFile == nil || strings.TrimSpace(*input.ContractFile) == "" {
			return nil, fmt.Errorf("%w: sign_contract requires a contract file reference", ErrInvalidInput)
		}
	case model.StepUploadAttachments:
		if len(input.Attachments) == 0 {
			return nil, fmt.Errorf("%w: upload_attachments requires at least one attachment", ErrInvalidInput)
		}
	case model.StepCompleteContract:
	default:
		return nil, fmt.Errorf("%w: unknown step kind", ErrInvalidInput)
	}

	step, err := s.steps.Create(ctx, model.ContractStep{
		ContractID:   contract.ID,
		Step:         input.Step,
		ContractFile: input.ContractFile,
		Attachments:  input.Attachments,
		Notes:        input.Notes,
		Approvals: []model.Approval{
			{Party: model.PartyA, UserID: contract.UserAID, Decision: model.DecisionPending},
			{Party: model.PartyB, UserID: contract.UserBID, Decision: model.DecisionPending},
		},
	})
	if err != nil {
		return nil, err
	}

	s.sync.Apply(ctx, step, StepOpCreate)
	s.publish(ctx, "contract_step.started", step)
	return step, nil
}

type ApproveStepInput struct {
	StepID    uuid.UUID
	Decision  model.Decision
	Party     *model.Party
	Note      *string
	Principal model.Principal
}

// Approve records one party's decision. The step's status is re-derived from
// both approval slots on every write; callers never set it directly.
func (s *ContractStepService) Approve(ctx context.Context, input ApproveStepInput) (*model.ContractStep, error) {
	step, err := s.steps.GetByID(ctx, input.StepID)
	if err != nil {
		return nil, mapNotFound(err, "contract step")
	}

	contract, err := s.contracts.GetByID(ctx, step.ContractID)
	if err != nil {
		return nil, mapNotFound(err, "contract")
	}

	party := input.Party
	if party == nil {
		side, ok := contract.PartyOf(input.Principal.UserID)
		if !ok {
			return nil, fmt.Errorf("%w: caller is neither party of the contract", ErrPartyUndetermined)
		}
		party = &side
	}

	updated, err := s.steps.Decide(ctx, repository.DecideInput{
		StepID:   step.ID,
		Party:    *party,
		UserID:   input.Principal.UserID,
		Decision: input.Decision,
		Note:     input.Note,
	})
	if err != nil {
		return nil, mapNotFound(err, "contract step")
	}

	s.sync.Apply(ctx, updated, StepOpUpdate)
	s.publish(ctx, "contract_step.decided", updated)
	return updated, nil
}

type ListStepsInput struct {
	ContractID *uuid.UUID
	Step       *model.StepKind
	Status     *model.StepStatus
	Page       int
	PerPage    int
}

func (s *ContractStepService) List(ctx context.Context, input ListStepsInput) ([]model.ContractStep, int64, error) {
	return s.steps.List(ctx, repository.StepFilter{
		ContractID: input.ContractID,
		Step:       input.Step,
		Status:     input.Status,
		Page:       input.Page,
		PerPage:    input.PerPage,
	})
}

func (s *ContractStepService) publish(ctx context.Context, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event, payload); err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("notification publish failed")
	}
}
