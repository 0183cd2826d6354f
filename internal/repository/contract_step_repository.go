package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
)

type ContractStepRepository struct {
	db *gorm.DB
}

func NewContractStepRepository(db *gorm.DB) *ContractStepRepository {
	return &ContractStepRepository{db: db}
}

const stepColumns = `id, contract_id, step, status, contract_file, notes, created_at, updated_at`

const approvalColumns = `id, step_id, party, user_id, decision, note, decided_at`

func (r *ContractStepRepository) Create(ctx context.Context, step model.ContractStep) (*model.ContractStep, error) {
	var saved model.ContractStep
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(`
			INSERT INTO contract_steps (contract_id, step, status, contract_file, notes)
			VALUES (?, ?, ?, ?, ?)
			RETURNING `+stepColumns,
			step.ContractID,
			step.Step,
			model.StepStatusPending,
			step.ContractFile,
			step.Notes,
		).Scan(&saved).Error
		if err != nil {
			return err
		}

		for _, key := range step.Attachments {
			if err := tx.Exec(`
				INSERT INTO contract_step_attachments (step_id, object_key)
				VALUES (?, ?)
				ON CONFLICT DO NOTHING
			`, saved.ID, key).Error; err != nil {
				return err
			}
		}

		for _, approval := range step.Approvals {
			if err := tx.Exec(`
				INSERT INTO contract_step_approvals (step_id, party, user_id, decision)
				VALUES (?, ?, ?, ?)
			`, saved.ID, approval.Party, approval.UserID, model.DecisionPending).Error; err != nil {
				return err
			}
		}

		saved.Attachments = step.Attachments
		return tx.Raw(`
			SELECT `+approvalColumns+`
			FROM contract_step_approvals
			WHERE step_id = ?
			ORDER BY party
		`, saved.ID).Scan(&saved.Approvals).Error
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *ContractStepRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ContractStep, error) {
	var step model.ContractStep
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+stepColumns+`
		FROM contract_steps
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&step).Error
	if err != nil {
		return nil, err
	}
	if step.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	if err := r.loadAssociations(ctx, r.db, &step); err != nil {
		return nil, err
	}
	return &step, nil
}

func (r *ContractStepRepository) loadAssociations(ctx context.Context, tx *gorm.DB, step *model.ContractStep) error {
	if err := tx.WithContext(ctx).Raw(`
		SELECT object_key
		FROM contract_step_attachments
		WHERE step_id = ?
		ORDER BY object_key
	`, step.ID).Scan(&step.Attachments).Error; err != nil {
		return err
	}

	return tx.WithContext(ctx).Raw(`
		SELECT `+approvalColumns+`
		FROM contract_step_approvals
		WHERE step_id = ?
		ORDER BY party
	`, step.ID).Scan(&step.Approvals).Error
}

type DecideInput struct {
	StepID   uuid.UUID
	Party    model.Party
	UserID   uuid.UUID
	Decision model.Decision
	Note     *string
}

// Decide records one party's decision and re-derives the step status, all
// under a row lock on the step. The per-party update keeps two concurrent
// decisions for different parties from overwriting each other; the lock
// serializes the derive-and-write against a racing second decision.
func (r *ContractStepRepository) Decide(ctx context.Context, input DecideInput) (*model.ContractStep, error) {
	var step model.ContractStep
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Raw(`
			SELECT `+stepColumns+`
			FROM contract_steps
			WHERE id = ?
			FOR UPDATE
		`, input.StepID).Scan(&step).Error
		if err != nil {
			return err
		}
		if step.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}

		now := time.Now().UTC()
		result := tx.Exec(`
			UPDATE contract_step_approvals
			SET user_id = ?, decision = ?, note = ?, decided_at = ?
			WHERE step_id = ? AND party = ?
		`, input.UserID, input.Decision, input.Note, now, input.StepID, input.Party)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Missing slot for that party; append one instead of rejecting.
			if err := tx.Exec(`
				INSERT INTO contract_step_approvals (step_id, party, user_id, decision, note, decided_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, input.StepID, input.Party, input.UserID, input.Decision, input.Note, now).Error; err != nil {
				return err
			}
		}

		var approvals []model.Approval
		if err := tx.Raw(`
			SELECT `+approvalColumns+`
			FROM contract_step_approvals
			WHERE step_id = ?
			ORDER BY party
		`, input.StepID).Scan(&approvals).Error; err != nil {
			return err
		}

		derived := model.DeriveStepStatus(approvals)
		if err := tx.Exec(`
			UPDATE contract_steps SET status = ?, updated_at = NOW() WHERE id = ?
		`, derived, input.StepID).Error; err != nil {
			return err
		}

		step.Status = derived
		step.Approvals = approvals
		return tx.Raw(`
			SELECT object_key
			FROM contract_step_attachments
			WHERE step_id = ?
			ORDER BY object_key
		`, step.ID).Scan(&step.Attachments).Error
	})
	if err != nil {
		return nil, err
	}
	return &step, nil
}

type StepFilter struct {
	ContractID *uuid.UUID
	Step       *model.StepKind
	Status     *model.StepStatus
	Page       int
	PerPage    int
}

func (r *ContractStepRepository) List(ctx context.Context, filter StepFilter) ([]model.ContractStep, int64, error) {
	where := []string{"1=1"}
	var args []interface{}

	if filter.ContractID != nil {
		where = append(where, "contract_id = ?")
		args = append(args, *filter.ContractID)
	}
	if filter.Step != nil {
		where = append(where, "step = ?")
		args = append(args, *filter.Step)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *filter.Status)
	}
	condition := strings.Join(where, " AND ")

	var total int64
	if err := r.db.WithContext(ctx).Raw(
		"SELECT COUNT(*) FROM contract_steps WHERE "+condition, args...,
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
		"SELECT %s FROM contract_steps WHERE %s ORDER BY created_at DESC LIMIT ? OFFSET ?",
		stepColumns, condition,
	)
	args = append(args, perPage, (page-1)*perPage)

	var steps []model.ContractStep
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&steps).Error; err != nil {
		return nil, 0, err
	}

	for i := range steps {
		if err := r.loadAssociations(ctx, r.db, &steps[i]); err != nil {
			return nil, 0, err
		}
	}
	return steps, total, nil
}
