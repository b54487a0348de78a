package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/monocle-dev/projectboard/internal/apperrors"
	"github.com/monocle-dev/projectboard/internal/models"
	"gorm.io/gorm"
)

// ActionRepository defines the interface for action data access.
// Writes that name a project fail with apperrors.ErrProjectNotFound when
// that project does not exist.
type ActionRepository interface {
	List(ctx context.Context) ([]models.Action, error)
	ListByProject(ctx context.Context, projectID uint) ([]models.Action, error)
	Get(ctx context.Context, id uint) (*models.Action, error)
	Create(ctx context.Context, action *models.Action) error
	Update(ctx context.Context, id uint, update ActionUpdate) (before, after *models.Action, err error)
	Delete(ctx context.Context, id uint) (*models.Action, error)
}

// ActionUpdate carries the fields an action update replaces.
// Nil pointers leave the stored values alone.
type ActionUpdate struct {
	Name      string
	ProjectID uint
	Notes     *string
	Complete  *bool
}

type actionRepository struct {
	db *gorm.DB
}

// NewActionRepository creates a gorm-backed action repository.
func NewActionRepository(db *gorm.DB) ActionRepository {
	return &actionRepository{db: db}
}

func (r *actionRepository) List(ctx context.Context) ([]models.Action, error) {
	actions := []models.Action{}
	if err := r.db.WithContext(ctx).Order("id").Find(&actions).Error; err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	return actions, nil
}

func (r *actionRepository) ListByProject(ctx context.Context, projectID uint) ([]models.Action, error) {
	actions := []models.Action{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProject(tx, projectID); err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Order("id").Find(&actions).Error; err != nil {
			return fmt.Errorf("failed to list actions for project %d: %w", projectID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return actions, nil
}

func (r *actionRepository) Get(ctx context.Context, id uint) (*models.Action, error) {
	return findAction(r.db.WithContext(ctx), id)
}

// Create checks the parent project and inserts the action in one
// transaction, then refreshes action with the stored row.
func (r *actionRepository) Create(ctx context.Context, action *models.Action) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProject(tx, action.ProjectID); err != nil {
			return err
		}

		if err := tx.Create(action).Error; err != nil {
			return fmt.Errorf("failed to create action: %w", err)
		}

		stored, err := findAction(tx, action.ID)
		if err != nil {
			return err
		}
		*action = *stored
		return nil
	})
}

// Update replaces the action's fields and returns the row as it was before
// and after the change.
func (r *actionRepository) Update(ctx context.Context, id uint, update ActionUpdate) (*models.Action, *models.Action, error) {
	var before, after *models.Action

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireProject(tx, update.ProjectID); err != nil {
			return err
		}

		existing, err := findAction(tx, id)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{
			"name":       update.Name,
			"project_id": update.ProjectID,
		}
		if update.Notes != nil {
			changes["notes"] = *update.Notes
		}
		if update.Complete != nil {
			changes["complete"] = *update.Complete
		}

		result := tx.Model(&models.Action{}).Where("id = ?", id).Updates(changes)
		if result.Error != nil {
			return fmt.Errorf("failed to update action %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}

		stored, err := findAction(tx, id)
		if err != nil {
			return err
		}

		before, after = existing, stored
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return before, after, nil
}

// Delete removes the action and returns the row as it was before deletion.
func (r *actionRepository) Delete(ctx context.Context, id uint) (*models.Action, error) {
	var deleted *models.Action

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		action, err := findAction(tx, id)
		if err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&models.Action{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete action %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}

		deleted = action
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deleted, nil
}

func requireProject(db *gorm.DB, projectID uint) error {
	var count int64
	if err := db.Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up project %d: %w", projectID, err)
	}
	if count == 0 {
		return apperrors.ErrProjectNotFound
	}
	return nil
}

func findAction(db *gorm.DB, id uint) (*models.Action, error) {
	var action models.Action
	if err := db.First(&action, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get action %d: %w", id, err)
	}
	return &action, nil
}
