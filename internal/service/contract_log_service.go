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

type ContractLogService struct {
	logs      LogStore
	proposals ProposalStore
	contracts ContractStore
	notifier  Notifier
	log       zerolog.Logger
}

func NewContractLogService(
	logs LogStore,
	proposals ProposalStore,
	contracts ContractStore,
	notifier Notifier,
	log zerolog.Logger,
) *ContractLogService {
	return &ContractLogService{
		logs:      logs,
		proposals: proposals,
		contracts: contracts,
		notifier:  notifier,
		log:       log,
	}
}

type ConfirmLogInput struct {
	LogID          uuid.UUID
	Status         *model.ContractLogStatus
	Reason         *string
	IsDoneContract *bool
	ContractID     *uuid.UUID
	Principal      model.Principal
}

type ConfirmLogResult struct {
	Log      *model.ContractLog
	Proposal *model.Proposal
}

// Confirm updates the completion log and, when the done flag is set,
// cascades completion back to the originating proposal. The log update and
// the proposal update are separate writes: a proposal failure surfaces the
// storage error without rolling back the log.
func (s *ContractLogService) Confirm(ctx context.Context, input ConfirmLogInput) (*ConfirmLogResult, error) {
	if input.Status != nil && *input.Status == model.ContractLogStatusCancelled {
		if input.Reason == nil || strings.TrimSpace(*input.Reason) == "" {
			return nil, fmt.Errorf("%w: cancellation requires a reason", ErrInvalidInput)
		}
	}

	existing, err := s.logs.GetByID(ctx, input.LogID)
	if err != nil {
		return nil, mapNotFound(err, "contract log")
	}

	contract, err := s.contracts.GetByID(ctx, existing.ContractID)
	if err != nil {
		return nil, mapNotFound(err, "contract")
	}
	if !contract.IsParticipant(input.Principal.UserID) {
		return nil, ErrPermissionDenied
	}

	updated, err := s.logs.Update(ctx, input.LogID, repository.ContractLogUpdate{
		Status:         input.Status,
		Reason:         input.Reason,
		IsDoneContract: input.IsDoneContract,
		ContractID:     input.ContractID,
	})
	if err != nil {
		return nil, mapNotFound(err, "contract log")
	}

	result := &ConfirmLogResult{Log: updated}
	if input.IsDoneContract != nil && *input.IsDoneContract {
		if updated.ProposalID == nil {
			return nil, ErrMissingRelatedProposal
		}
		if err := s.proposals.UpdateStatus(ctx, *updated.ProposalID, model.ProposalStatusCompleted); err != nil {
			// The log update stays committed; the caller retries the cascade.
			return nil, fmt.Errorf("complete related proposal: %w", err)
		}
		proposal, err := s.proposals.GetByID(ctx, *updated.ProposalID)
		if err == nil {
			result.Proposal = proposal
		}
	}

	s.publish(ctx, "contract_log.confirmed", updated)
	return result, nil
}

func (s *ContractLogService) publish(ctx context.Context, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Publish(ctx, event, payload); err != nil {
		s.log.Warn().Err(err).Str("event", event).Msg("notification publish failed")
	}
}
