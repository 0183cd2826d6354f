package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
)

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

const proposalColumns = `
	id, kind, proposer_id, receiver_id, technology_id, project_id, demand_id,
	terms, amount, status, created_at, updated_at
`

func (r *ProposalRepository) Create(ctx context.Context, proposal model.Proposal) (*model.Proposal, error) {
	var saved model.Proposal
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO proposals (
			kind, proposer_id, receiver_id, technology_id, project_id, demand_id,
			terms, amount, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+proposalColumns,
		proposal.Kind,
		proposal.ProposerID,
		proposal.ReceiverID,
		proposal.TechnologyID,
		proposal.ProjectID,
		proposal.DemandID,
		proposal.Terms,
		proposal.Amount,
		model.ProposalStatusPending,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ProposalRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Proposal, error) {
	var proposal model.Proposal
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+proposalColumns+`
		FROM proposals
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&proposal).Error
	if err != nil {
		return nil, err
	}
	if proposal.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &proposal, nil
}

type ProposalFilter struct {
	ParticipantID uuid.UUID
	Kind          *model.ProposalKind
	Status        *model.ProposalStatus
	Page          int
	PerPage       int
}

func (r *ProposalRepository) List(ctx context.Context, filter ProposalFilter) ([]model.Proposal, int64, error) {
	where := []string{"(proposer_id = ? OR receiver_id = ?)"}
	args := []interface{}{filter.ParticipantID, filter.ParticipantID}

	if filter.Kind != nil {
		where = append(where, "kind = ?")
		args = append(args, *filter.Kind)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *filter.Status)
	}
	condition := strings.Join(where, " AND ")

	var total int64
	if err := r.db.WithContext(ctx).Raw(
		"SELECT COUNT(*) FROM proposals WHERE "+condition, args...,
	).Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	query := fmt.Sprintf(
		"SELECT %s FROM proposals WHERE %s ORDER BY created_at DESC LIMIT ? OFFSET ?",
		proposalColumns, condition,
	)
	args = append(args, perPage, (page-1)*perPage)

	var proposals []model.Proposal
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&proposals).Error; err != nil {
		return nil, 0, err
	}
	return proposals, total, nil
}

// TransitionStatus moves a proposal to the target status unless its current
// status is in the excluded set. Returns false when the guard blocked the
// transition, which doubles as the idempotency check for concurrent callers.
func (r *ProposalRepository) TransitionStatus(
	ctx context.Context,
	id uuid.UUID,
	to model.ProposalStatus,
	notFrom []model.ProposalStatus,
) (bool, error) {
	query := `UPDATE proposals SET status = ?, updated_at = NOW() WHERE id = ?`
	args := []interface{}{to, id}
	if len(notFrom) > 0 {
		placeholders := make([]string, len(notFrom))
		for i, status := range notFrom {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += fmt.Sprintf(" AND status NOT IN (%s)", strings.Join(placeholders, ","))
	}

	result := r.db.WithContext(ctx).Exec(query, args...)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *ProposalRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ProposalStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE proposals SET status = ?, updated_at = NOW() WHERE id = ?
	`, status, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
