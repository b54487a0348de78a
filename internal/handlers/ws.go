package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/projectboard/internal/apperrors"
	"github.com/monocle-dev/projectboard/internal/repository"
	"github.com/monocle-dev/projectboard/internal/utils"
	"go.uber.org/zap"
)

// ProjectFeed streams refresh notifications for one project over a
// websocket. *realtime.Hub satisfies it.
type ProjectFeed interface {
	Serve(w http.ResponseWriter, r *http.Request, projectID uint)
}

type WebSocketHandler struct {
	projects repository.ProjectRepository
	feed     ProjectFeed
	logger   *zap.Logger
}

func NewWebSocketHandler(projects repository.ProjectRepository, feed ProjectFeed, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{projects: projects, feed: feed, logger: logger}
}

// WebSocket subscribes the caller to refreshes for an existing project.
func (h *WebSocketHandler) WebSocket(ctx *gin.Context) {
	projectID, err := utils.GetID(ctx)
	if err != nil {
		respondMessage(ctx, http.StatusBadRequest, msgInvalidProjectID)
		return
	}

	if _, err := h.projects.Get(ctx.Request.Context(), projectID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			respondMessage(ctx, http.StatusNotFound, msgProjectNotFound)
			return
		}
		respondStoreError(ctx, h.logger, "Failed to look up project for websocket", err)
		return
	}

	h.feed.Serve(ctx.Writer, ctx.Request, projectID)
}
