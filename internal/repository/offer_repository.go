package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
)

type OfferRepository struct {
	db *gorm.DB
}

func NewOfferRepository(db *gorm.DB) *OfferRepository {
	return &OfferRepository{db: db}
}

const offerColumns = `id, proposal_id, message_id, price, content, status, created_at, updated_at`

func (r *OfferRepository) Create(ctx context.Context, offer model.Offer) (*model.Offer, error) {
	var saved model.Offer
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO offers (proposal_id, message_id, price, content, status)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+offerColumns,
		offer.ProposalID,
		offer.MessageID,
		offer.Price,
		offer.Content,
		model.OfferStatusPending,
	).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *OfferRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	var offer model.Offer
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+offerColumns+`
		FROM offers
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&offer).Error
	if err != nil {
		return nil, err
	}
	if offer.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &offer, nil
}

// MarkAccepted flips a pending offer to accepted. The conditional update is
// the duplicate-acceptance guard: a second caller sees zero rows affected.
func (r *OfferRepository) MarkAccepted(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE offers
		SET status = ?, updated_at = NOW()
		WHERE id = ? AND status = ?
	`, model.OfferStatusAccepted, id, model.OfferStatusPending)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *OfferRepository) MarkRejected(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE offers
		SET status = ?, updated_at = NOW()
		WHERE id = ? AND status = ?
	`, model.OfferStatusRejected, id, model.OfferStatusPending)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
