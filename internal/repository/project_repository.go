package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/monocle-dev/projectboard/internal/apperrors"
	"github.com/monocle-dev/projectboard/internal/models"
	"gorm.io/gorm"
)

// ProjectRepository defines the interface for project data access.
type ProjectRepository interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id uint) (*models.Project, error)
	GetWithActions(ctx context.Context, id uint) (*models.ProjectWithActions, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, id uint, update ProjectUpdate) (*models.Project, error)
	Delete(ctx context.Context, id uint) error
}

// ProjectUpdate carries the fields a project update replaces.
// A nil Complete leaves the stored value alone.
type ProjectUpdate struct {
	Name        string
	Description string
	Complete    *bool
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a gorm-backed project repository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) List(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	if err := r.db.WithContext(ctx).Order("id").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (r *projectRepository) Get(ctx context.Context, id uint) (*models.Project, error) {
	return findProject(r.db.WithContext(ctx), id)
}

// GetWithActions reads a project and its actions inside one transaction so
// both reads observe the same snapshot.
func (r *projectRepository) GetWithActions(ctx context.Context, id uint) (*models.ProjectWithActions, error) {
	var result *models.ProjectWithActions

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		err := tx.Preload("Actions", func(db *gorm.DB) *gorm.DB {
			return db.Order("actions.id")
		}).First(&project, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrNotFound
			}
			return fmt.Errorf("failed to get project %d: %w", id, err)
		}

		actions := project.Actions
		if actions == nil {
			actions = []models.Action{}
		}
		project.Actions = nil

		result = &models.ProjectWithActions{Project: project, Actions: actions}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Create inserts project and refreshes it with the stored row, so defaults
// and the generated id are populated.
func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	db := r.db.WithContext(ctx)

	if err := db.Omit("Actions").Create(project).Error; err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	stored, err := findProject(db, project.ID)
	if err != nil {
		return err
	}
	*project = *stored
	return nil
}

func (r *projectRepository) Update(ctx context.Context, id uint, update ProjectUpdate) (*models.Project, error) {
	db := r.db.WithContext(ctx)

	changes := map[string]interface{}{
		"name":        update.Name,
		"description": update.Description,
	}
	if update.Complete != nil {
		changes["complete"] = *update.Complete
	}

	result := db.Model(&models.Project{}).Where("id = ?", id).Updates(changes)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update project %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.ErrNotFound
	}

	return findProject(db, id)
}

// Delete removes the project; its actions go with it through the
// foreign key cascade.
func (r *projectRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Project{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete project %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func findProject(db *gorm.DB, id uint) (*models.Project, error) {
	var project models.Project
	if err := db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project %d: %w", id, err)
	}
	return &project, nil
}
