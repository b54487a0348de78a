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
	msgInvalidActionID = "Invalid action ID"
	msgActionNotFound  = "Action not found"
	msgMissingParent   = "Project doesn't exist. Please update project ID and try again."
)

type CreateActionRequest struct {
	Name      string  `json:"name" binding:"required"`
	ProjectID uint    `json:"project_id" binding:"required"`
	Notes     *string `json:"notes"`
	Complete  *bool   `json:"complete"`
}

type UpdateActionRequest struct {
	Name      string  `json:"name" binding:"required"`
	ProjectID uint    `json:"project_id" binding:"required"`
	Notes     *string `json:"notes"`
	Complete  *bool   `json:"complete"`
}

type ActionHandler struct {
	actions  repository.ActionRepository
	notifier Notifier
	logger   *zap.Logger
}

// NewActionHandler wires the action endpoints. notifier may be nil.
func NewActionHandler(actions repository.ActionRepository, notifier Notifier, logger *zap.Logger) *ActionHandler {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &ActionHandler{
		actions:  actions,
		notifier: notifier,
		logger:   logger,
	}
}

func (h *ActionHandler) ListActions(ctx *gin.Context) {
	actions, err := h.actions.List(ctx.Request.Context())
	if err != nil {
		respondStoreError(ctx, h.logger, "Failed to list actions", err)
		return
	}

	ctx.JSON(http.StatusOK, actions)
}

func (h *ActionHandler) GetAction(ctx *gin.Context) {
	actionID, err := utils.GetID(ctx)
	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, msgInvalidActionID)
		return
	}

	action, err := h.actions.Get(ctx.Request.Context(), actionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondMessage(ctx, http.StatusNotFound, msgActionNotFound)
			return
		}
		respondStoreError(ctx, h.logger, "Failed to get action", err)
		return
	}

	ctx.JSON(http.StatusOK, action)
}

// CreateAction inserts an action after checking its project exists.
func (h *ActionHandler) CreateAction(ctx *gin.Context) {
	var body CreateActionRequest
	if !bindBody(ctx, &body, "Please include a name and project ID to create a new action") {
		return
	}

	action := models.Action{
		Name:      body.Name,
		ProjectID: body.ProjectID,
	}
	if body.Notes != nil {
		action.Notes = *body.Notes
	}
	if body.Complete != nil {
		action.Complete = *body.Complete
	}

	if err := h.actions.Create(ctx.Request.Context(), &action); err != nil {
		if errors.Is(err, apperrors.ErrProjectNotFound) {
			respondMessage(ctx, http.StatusNotFound, msgMissingParent)
			return
		}
		respondStoreError(ctx, h.logger, "Failed to create action", err)
		return
	}

	h.notifier.NotifyProject(action.ProjectID)
	ctx.JSON(http.StatusCreated, action)
}

func (h *ActionHandler) UpdateAction(ctx *gin.Context) {
	actionID, err := utils.GetID(ctx)
	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, msgInvalidActionID)
		return
	}

	var body UpdateActionRequest
	if !bindBody(ctx, &body, "Please include a name and project ID to update an action") {
		return
	}

	before, after, err := h.actions.Update(ctx.Request.Context(), actionID, repository.ActionUpdate{
		Name:      body.Name,
		ProjectID: body.ProjectID,
		Notes:     body.Notes,
		Complete:  body.Complete,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrProjectNotFound):
			respondMessage(ctx, http.StatusNotFound, msgMissingParent)
		case errors.Is(err, apperrors.ErrNotFound):
			respondMessage(ctx, http.StatusNotFound, "Records not found")
		default:
			respondStoreError(ctx, h.logger, "Failed to update action", err)
		}
		return
	}

	if before.ProjectID != after.ProjectID {
		h.notifier.NotifyProject(before.ProjectID)
	}
	h.notifier.NotifyProject(after.ProjectID)
	ctx.JSON(http.StatusOK, after)
}

func (h *ActionHandler) DeleteAction(ctx *gin.Context) {
	actionID, err := utils.GetID(ctx)
	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, msgInvalidActionID)
		return
	}

	action, err := h.actions.Delete(ctx.Request.Context(), actionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondMessage(ctx, http.StatusNotFound, msgActionNotFound)
			return
		}
		respondStoreError(ctx, h.logger, "Failed to delete action", err)
		return
	}

	h.notifier.NotifyProject(action.ProjectID)
	ctx.Status(http.StatusNoContent)
}
