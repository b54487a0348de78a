package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/monocle-dev/projectboard/internal/dberrors"
	"go.uber.org/zap"
)

// Notifier is told about every write that touches a project.
type Notifier interface {
	NotifyProject(projectID uint)
}

type nopNotifier struct{}

func (nopNotifier) NotifyProject(uint) {}

func respondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"message": message})
}

// respondStoreError logs err and reports the mapped store message as a 500.
func respondStoreError(ctx *gin.Context, logger *zap.Logger, msg string, err error) {
	logger.Error(msg, zap.Error(err), zap.String("path", ctx.Request.URL.Path))
	respondMessage(ctx, http.StatusInternalServerError, dberrors.MessageFor(err))
}

// bindBody decodes the JSON body into req. Missing required fields (or no
// body at all) produce missingMessage; anything unparsable is a generic 400.
// It reports whether the handler should continue.
func bindBody(ctx *gin.Context, req any, missingMessage string) bool {
	err := ctx.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) || errors.Is(err, io.EOF) {
		respondMessage(ctx, http.StatusBadRequest, missingMessage)
		return false
	}

	respondMessage(ctx, http.StatusBadRequest, "Invalid request body")
	return false
}
