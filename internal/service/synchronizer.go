package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
)

type StepOperation string

const (
	StepOpCreate StepOperation = "create"
	StepOpUpdate StepOperation = "update"
)

// ContractEffect is what one step write requires of the parent contract.
type ContractEffect struct {
	SetStatus          *model.ContractStatus
	CopyContractFile   bool
	AddDocuments       []string
	MarkProposalSigned bool
	OpenCompletionLog  bool
}

func (e ContractEffect) IsZero() bool {
	return e.SetStatus == nil && !e.CopyContractFile && len(e.AddDocuments) == 0 &&
		!e.MarkProposalSigned && !e.OpenCompletionLog
}

// SyncEffect is the pure mapping from a step write onto contract mutations.
// Any rejection cancels the contract regardless of step kind; approval
// effects depend on the kind; a freshly created pending step keeps the
// contract in progress.
func SyncEffect(step model.ContractStep, op StepOperation) ContractEffect {
	status := func(s model.ContractStatus) *model.ContractStatus { return &s }

	switch {
	case step.Status == model.StepStatusRejected:
		return ContractEffect{SetStatus: status(model.ContractStatusCancelled)}

	case step.Step == model.StepSignContract && step.Status == model.StepStatusApproved:
		return ContractEffect{
			SetStatus:          status(model.ContractStatusSigned),
			CopyContractFile:   true,
			MarkProposalSigned: true,
		}

	case step.Step == model.StepUploadAttachments && step.Status == model.StepStatusApproved:
		return ContractEffect{AddDocuments: step.Attachments}

	case step.Step == model.StepCompleteContract && step.Status == model.StepStatusApproved:
		return ContractEffect{
			SetStatus:         status(model.ContractStatusCompleted),
			OpenCompletionLog: true,
		}

	case step.Status == model.StepStatusPending && op == StepOpCreate:
		return ContractEffect{SetStatus: status(model.ContractStatusInProgress)}
	}
	return ContractEffect{}
}

// Synchronizer pushes derived step state into the parent contract after every
// step write. It runs once the step write has committed; its own failures are
// logged and swallowed so they never roll back or fail the step operation.
// Contract status is therefore eventually consistent with its steps.
type Synchronizer struct {
	contracts ContractStore
	proposals ProposalStore
	logs      LogStore
	log       zerolog.Logger
}

func NewSynchronizer(contracts ContractStore, proposals ProposalStore, logs LogStore, log zerolog.Logger) *Synchronizer {
	return &Synchronizer{
		contracts: contracts,
		proposals: proposals,
		logs:      logs,
		log:       log,
	}
}

func (s *Synchronizer) Apply(ctx context.Context, step *model.ContractStep, op StepOperation) {
	effect := SyncEffect(*step, op)
	if effect.IsZero() {
		return
	}

	logger := s.log.With().
		Str("step_id", step.ID.String()).
		Str("contract_id", step.ContractID.String()).
		Str("step", string(step.Step)).
		Str("status", string(step.Status)).
		Logger()

	if effect.SetStatus != nil {
		var err error
		if effect.CopyContractFile {
			err = s.contracts.MarkSigned(ctx, step.ContractID, step.ContractFile)
		} else {
			err = s.contracts.UpdateStatus(ctx, step.ContractID, *effect.SetStatus)
		}
		if err != nil {
			logger.Error().Err(err).Str("target", string(*effect.SetStatus)).Msg("sync: contract status update failed")
			return
		}
	}

	if len(effect.AddDocuments) > 0 {
		if err := s.contracts.AddDocuments(ctx, step.ContractID, effect.AddDocuments); err != nil {
			logger.Error().Err(err).Msg("sync: add documents failed")
		}
	}

	if effect.MarkProposalSigned {
		s.markProposalSigned(ctx, step, logger)
	}
	if effect.OpenCompletionLog {
		s.openCompletionLog(ctx, step, logger)
	}
}

func (s *Synchronizer) markProposalSigned(ctx context.Context, step *model.ContractStep, logger zerolog.Logger) {
	contract, err := s.contracts.GetByID(ctx, step.ContractID)
	if err != nil {
		logger.Error().Err(err).Msg("sync: contract lookup failed")
		return
	}
	if err := s.proposals.UpdateStatus(ctx, contract.ProposalID, model.ProposalStatusContractSigned); err != nil {
		logger.Error().Err(err).Msg("sync: mark proposal contract_signed failed")
	}
}

// openCompletionLog creates the pending confirmation record that later
// cascades completion back to the originating proposal via confirmLog.
func (s *Synchronizer) openCompletionLog(ctx context.Context, step *model.ContractStep, logger zerolog.Logger) {
	contract, err := s.contracts.GetByID(ctx, step.ContractID)
	if err != nil {
		logger.Error().Err(err).Msg("sync: contract lookup failed")
		return
	}
	proposalID := contract.ProposalID
	if _, err := s.logs.Create(ctx, model.ContractLog{
		ContractID:   contract.ID,
		ProposalKind: contract.ProposalKind,
		ProposalID:   &proposalID,
	}); err != nil {
		logger.Error().Err(err).Msg("sync: create contract log failed")
	}
}
