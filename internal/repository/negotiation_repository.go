package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
)

type NegotiationRepository struct {
	db *gorm.DB
}

func NewNegotiationRepository(db *gorm.DB) *NegotiationRepository {
	return &NegotiationRepository{db: db}
}

const messageColumns = `id, proposal_id, sender_id, text, is_offer, offer_id, created_at`

func (r *NegotiationRepository) CreateMessage(ctx context.Context, message model.NegotiationMessage) (*model.NegotiationMessage, error) {
	var saved model.NegotiationMessage
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO negotiation_messages (proposal_id, sender_id, text, is_offer)
		VALUES (?, ?, ?, ?)
		RETURNING `+messageColumns,
		message.ProposalID,
		message.SenderID,
		message.Text,
		message.IsOffer,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *NegotiationRepository) GetMessage(ctx context.Context, id uuid.UUID) (*model.NegotiationMessage, error) {
	var message model.NegotiationMessage
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+messageColumns+`
		FROM negotiation_messages
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&message).Error
	if err != nil {
		return nil, err
	}
	if message.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &message, nil
}

// AttachOffer back-links an offer onto its message. The offer reference is
// write-once: an already linked message is left untouched.
func (r *NegotiationRepository) AttachOffer(ctx context.Context, messageID, offerID uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE negotiation_messages
		SET offer_id = ?
		WHERE id = ? AND offer_id IS NULL
	`, offerID, messageID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *NegotiationRepository) ListByProposal(
	ctx context.Context,
	proposalID uuid.UUID,
	page, perPage int,
) ([]model.NegotiationMessage, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM negotiation_messages WHERE proposal_id = ?
	`, proposalID).Scan(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 50
	}

	var messages []model.NegotiationMessage
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+messageColumns+`
		FROM negotiation_messages
		WHERE proposal_id = ?
		ORDER BY created_at ASC
		LIMIT ? OFFSET ?
	`, proposalID, perPage, (page-1)*perPage).Scan(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}
