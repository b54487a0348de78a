package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/projectboard/internal/apperrors"
	"github.com/monocle-dev/projectboard/internal/models"
	"github.com/monocle-dev/projectboard/internal/repository"
	"github.com/monocle-dev/projectboard/internal/utils"
	"go.uber.org/zap"
)

const (
	msgInvalidProjectID = "Invalid project ID"
	msgProjectNotFound  = "Project not found"
)

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Complete    *bool  `json:"complete"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description" binding:"required"`
	Complete    *bool  `json:"complete"`
}

type ProjectHandler struct {
	projects repository.ProjectRepository
	actions  repository.ActionRepository
	notifier Notifier
	logger   *zap.Logger
}

// NewProjectHandler wires the project endpoints. notifier may be nil.
func NewProjectHandler(projects repository.ProjectRepository, actions repository.ActionRepository, notifier Notifier, logger *zap.Logger) *ProjectHandler {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &ProjectHandler{
		projects: projects,
		actions:  actions,
		notifier: notifier,
		logger:   logger,
	}
}

func (h *ProjectHandler) ListProjects(ctx *gin.Context) {
	projects, err := h.projects.List(ctx.Request.Context())
	if err != nil {
		respondStoreError(ctx, h.logger, "Failed to list projects", err)
		return
	}

	ctx.JSON(http.StatusOK, projects)
}

// GetProject returns the project with its actions attached.
func (h *ProjectHandler) GetProject(ctx *gin.Context) {
	projectID, err := utils.GetID(ctx)
	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, msgInvalidProjectID)
		return
	}

	project, err := h.projects.GetWithActions(ctx.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondMessage(ctx, http.StatusNotFound, msgProjectNotFound)
			return
		}
		respondStoreError(ctx, h.logger, "Failed to get project", err)
		return
	}

	ctx.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) ListProjectActions(ctx *gin.Context) {
	projectID, err := utils.GetID(ctx)
	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, msgInvalidProjectID)
		return
	}

	actions, err := h.actions.ListByProject(ctx.Request.Context(), projectID)
	if err != nil {
		if errors.Is(err, apperrors.ErrProjectNotFound) {
			respondMessage(ctx, http.StatusNotFound, msgProjectNotFound)
			return
		}
		respondStoreError(ctx, h.logger, "Failed to list project actions", err)
		return
	}

	ctx.JSON(http.StatusOK, actions)
}

func (h *ProjectHandler) CreateProject(ctx *gin.Context) {
	var body CreateProjectRequest
	if !bindBody(ctx, &body, "Please include a name and description to create a new project") {
		return
	}

	project := models.Project{
		Name:        body.Name,
		Description: body.Description,
	}
	if body.Complete != nil {
		project.Complete = *body.Complete
	}

	if err := h.projects.Create(ctx.Request.Context(), &project); err != nil {
		respondStoreError(ctx, h.logger, "Failed to create project", err)
		return
	}

	ctx.JSON(http.StatusCreated, project)
}

func (h *ProjectHandler) UpdateProject(ctx *gin.Context) {
	projectID, err := utils.GetID(ctx)
	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, msgInvalidProjectID)
		return
	}

	var body UpdateProjectRequest
	if !bindBody(ctx, &body, "Please include a name and description to update a project") {
		return
	}

	project, err := h.projects.Update(ctx.Request.Context(), projectID, repository.ProjectUpdate{
		Name:        body.Name,
		Description: body.Description,
		Complete:    body.Complete,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondMessage(ctx, http.StatusNotFound, msgProjectNotFound)
			return
		}
		respondStoreError(ctx, h.logger, "Failed to update project", err)
		return
	}

	h.notifier.NotifyProject(project.ID)
	ctx.JSON(http.StatusOK, project)
}

// DeleteProject removes the project; the store cascades the delete to its actions.
func (h *ProjectHandler) DeleteProject(ctx *gin.Context) {
	projectID, err := utils.GetID(ctx)
	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, msgInvalidProjectID)
		return
	}

	if err := h.projects.Delete(ctx.Request.Context(), projectID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondMessage(ctx, http.StatusNotFound, msgProjectNotFound)
			return
		}
		respondStoreError(ctx, h.logger, "Failed to delete project", err)
		return
	}

	h.notifier.NotifyProject(projectID)
	ctx.Status(http.StatusNoContent)
}
