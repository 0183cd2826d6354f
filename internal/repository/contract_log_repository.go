package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
)

type ContractLogRepository struct {
	db *gorm.DB
}

func NewContractLogRepository(db *gorm.DB) *ContractLogRepository {
	return &ContractLogRepository{db: db}
}

const contractLogColumns = `
	id, contract_id, proposal_kind, proposal_id, status, reason,
	is_done_contract, created_at, updated_at
`

func (r *ContractLogRepository) Create(ctx context.Context, log model.ContractLog) (*model.ContractLog, error) {
	var saved model.ContractLog
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO contract_logs (contract_id, proposal_kind, proposal_id, status)
		VALUES (?, ?, ?, ?)
		RETURNING `+contractLogColumns,
		log.ContractID,
		log.ProposalKind,
		log.ProposalID,
		model.ContractLogStatusPending,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ContractLogRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ContractLog, error) {
	var log model.ContractLog
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractLogColumns+`
		FROM contract_logs
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&log).Error
	if err != nil {
		return nil, err
	}
	if log.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &log, nil
}

type ContractLogUpdate struct {
	Status         *model.ContractLogStatus
	Reason         *string
	IsDoneContract *bool
	ContractID     *uuid.UUID
}

// Update applies only the fields the caller actually supplied, leaving
// everything else untouched.
func (r *ContractLogRepository) Update(ctx context.Context, id uuid.UUID, update ContractLogUpdate) (*model.ContractLog, error) {
	var saved model.ContractLog
	err := r.db.WithContext(ctx).Raw(`
		UPDATE contract_logs
		SET
			status = COALESCE(?, status),
			reason = COALESCE(?, reason),
			is_done_contract = COALESCE(?, is_done_contract),
			contract_id = COALESCE(?, contract_id),
			updated_at = NOW()
		WHERE id = ?
		RETURNING `+contractLogColumns,
		update.Status,
		update.Reason,
		update.IsDoneContract,
		update.ContractID,
		id,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	if saved.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &saved, nil
}
