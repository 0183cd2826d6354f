package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/innotechjsc-company/hanotexapp-sub006/internal/model"
)

// CatalogRepository reads master data owned by other services: users,
// technologies, projects and demands. This service never writes any of it.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, email, full_name, created_at
		FROM users
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&user).Error; err != nil {
		return nil, err
	}
	if user.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

func (r *CatalogRepository) GetTechnology(ctx context.Context, id uuid.UUID) (*model.Technology, error) {
	var tech model.Technology
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, title, submitter_id, created_at
		FROM technologies
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&tech).Error; err != nil {
		return nil, err
	}
	if tech.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &tech, nil
}

func (r *CatalogRepository) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, owner_id, created_at
		FROM projects
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&project).Error; err != nil {
		return nil, err
	}
	if project.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &project, nil
}

func (r *CatalogRepository) ListProjectTechnologyIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Raw(`
		SELECT technology_id
		FROM project_technologies
		WHERE project_id = ?
		ORDER BY technology_id
	`, projectID).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *CatalogRepository) GetDemand(ctx context.Context, id uuid.UUID) (*model.Demand, error) {
	var demand model.Demand
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, title, owner_id, created_at
		FROM demands
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&demand).Error; err != nil {
		return nil, err
	}
	if demand.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &demand, nil
}
