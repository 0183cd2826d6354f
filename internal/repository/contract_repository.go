package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

const contractColumns = `
	id, user_a, user_b, proposal_kind, proposal_id, offer_id, price,
	contract_file, status, created_at, updated_at
`

type contractRow struct {
	ID           uuid.UUID
	UserA        uuid.UUID
	UserB        uuid.UUID
	ProposalKind model.ProposalKind
	ProposalID   uuid.UUID
	OfferID      uuid.UUID
	Price        float64
	ContractFile *string
	Status       model.ContractStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (row contractRow) toModel() *model.Contract {
	return &model.Contract{
		ID:           row.ID,
		UserAID:      row.UserA,
		UserBID:      row.UserB,
		ProposalKind: row.ProposalKind,
		ProposalID:   row.ProposalID,
		OfferID:      row.OfferID,
		Price:        row.Price,
		ContractFile: row.ContractFile,
		Status:       row.Status,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func (r *ContractRepository) Create(ctx context.Context, contract model.Contract) (*model.Contract, error) {
	var saved contractRow
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(`
			INSERT INTO contracts (
				user_a, user_b, proposal_kind, proposal_id, offer_id, price,
				contract_file, status
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING `+contractColumns,
			contract.UserAID,
			contract.UserBID,
			contract.ProposalKind,
			contract.ProposalID,
			contract.OfferID,
			contract.Price,
			contract.ContractFile,
			contract.Status,
		).Scan(&saved).Error
		if err != nil {
			return err
		}

		for _, techID := range contract.TechnologyIDs {
			if err := tx.Exec(`
				INSERT INTO contract_technologies (contract_id, technology_id)
				VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, saved.ID, techID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := saved.toModel()
	result.TechnologyIDs = contract.TechnologyIDs
	return result, nil
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var row contractRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	contract := row.toModel()
	if err := r.loadAssociations(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

func (r *ContractRepository) GetByOfferID(ctx context.Context, offerID uuid.UUID) (*model.Contract, error) {
	var row contractRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts
		WHERE offer_id = ?
		LIMIT 1
	`, offerID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}

	contract := row.toModel()
	if err := r.loadAssociations(ctx, contract); err != nil {
		return nil, err
	}
	return contract, nil
}

func (r *ContractRepository) loadAssociations(ctx context.Context, contract *model.Contract) error {
	if err := r.db.WithContext(ctx).Raw(`
		SELECT technology_id
		FROM contract_technologies
		WHERE contract_id = ?
		ORDER BY technology_id
	`, contract.ID).Scan(&contract.TechnologyIDs).Error; err != nil {
		return err
	}

	return r.db.WithContext(ctx).Raw(`
		SELECT object_key
		FROM contract_documents
		WHERE contract_id = ?
		ORDER BY added_at
	`, contract.ID).Scan(&contract.Documents).Error
}

func (r *ContractRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ContractStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE contracts SET status = ?, updated_at = NOW() WHERE id = ?
	`, status, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkSigned sets the signed status together with the contract file reference
// taken from the sign step, in one narrow update.
func (r *ContractRepository) MarkSigned(ctx context.Context, id uuid.UUID, contractFile *string) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE contracts
		SET status = ?, contract_file = COALESCE(?, contract_file), updated_at = NOW()
		WHERE id = ?
	`, model.ContractStatusSigned, contractFile, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddDocuments appends object keys to the contract's document set. Additive
// and idempotent, so two concurrently completing attachment steps cannot
// clobber each other.
func (r *ContractRepository) AddDocuments(ctx context.Context, id uuid.UUID, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, key := range keys {
			if err := tx.Exec(`
				INSERT INTO contract_documents (contract_id, object_key)
				VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, id, key).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ContractRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]model.Contract, error) {
	var rows []contractRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+contractColumns+`
		FROM contracts
		WHERE user_a = ? OR user_b = ?
		ORDER BY created_at DESC
	`, userID, userID).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	contracts := make([]model.Contract, 0, len(rows))
	for _, row := range rows {
		contracts = append(contracts, *row.toModel())
	}
	return contracts, nil
}
