package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-sqlite3"
	"github.com/monocle-dev/projectboard/internal/apperrors"
	"github.com/monocle-dev/projectboard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func actionRouter(actions *mockActionRepository, notifier Notifier) *gin.Engine {
	h := NewActionHandler(actions, notifier, zap.NewNop())

	r := gin.New()
	r.GET("/actions", h.ListActions)
	r.GET("/actions/:id", h.GetAction)
	r.POST("/actions", h.CreateAction)
	r.PUT("/actions/:id", h.UpdateAction)
	r.DELETE("/actions/:id", h.DeleteAction)
	return r
}

func TestActionHandler_ListActions(t *testing.T) {
	actions := &mockActionRepository{actions: []models.Action{{ID: 1, Name: "a", ProjectID: 1}}}
	r := actionRouter(actions, nil)

	rec := perform(r, http.MethodGet, "/actions", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Action](t, rec), 1)
}

func TestActionHandler_GetAction(t *testing.T) {
	actions := &mockActionRepository{action: &models.Action{ID: 5, Name: "a", ProjectID: 1, Notes: "n"}}
	r := actionRouter(actions, nil)

	rec := perform(r, http.MethodGet, "/actions/5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":5,"name":"a","project_id":1,"notes":"n","complete":false}`, rec.Body.String())
}

func TestActionHandler_GetAction_NotFound(t *testing.T) {
	r := actionRouter(&mockActionRepository{err: apperrors.ErrNotFound}, nil)

	rec := perform(r, http.MethodGet, "/actions/5", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Action not found", messageOf(t, rec))
}

func TestActionHandler_CreateAction(t *testing.T) {
	actions := &mockActionRepository{}
	notifier := &recordingNotifier{}
	r := actionRouter(actions, notifier)

	rec := perform(r, http.MethodPost, "/actions", `{"name":"Buy seeds","project_id":3,"notes":"heirloom","complete":true}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	got := decode[models.Action](t, rec)
	assert.Equal(t, uint(10), got.ID)
	assert.Equal(t, "Buy seeds", got.Name)
	assert.Equal(t, uint(3), got.ProjectID)
	assert.Equal(t, "heirloom", got.Notes)
	assert.True(t, got.Complete)
	assert.Equal(t, []uint{3}, notifier.notified())
}

func TestActionHandler_CreateAction_MissingFields(t *testing.T) {
	for name, body := range map[string]string{
		"no project": `{"name":"a"}`,
		"no name":    `{"project_id":1}`,
		"zero id":    `{"name":"a","project_id":0}`,
		"no body":    ``,
	} {
		t.Run(name, func(t *testing.T) {
			actions := &mockActionRepository{}
			r := actionRouter(actions, nil)

			rec := perform(r, http.MethodPost, "/actions", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Please include a name and project ID to create a new action", messageOf(t, rec))
			assert.Nil(t, actions.created)
		})
	}
}

func TestActionHandler_CreateAction_WrongType(t *testing.T) {
	r := actionRouter(&mockActionRepository{}, nil)

	rec := perform(r, http.MethodPost, "/actions", `{"name":"a","project_id":"one"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", messageOf(t, rec))
}

func TestActionHandler_CreateAction_MissingProject(t *testing.T) {
	notifier := &recordingNotifier{}
	r := actionRouter(&mockActionRepository{err: apperrors.ErrProjectNotFound}, notifier)

	rec := perform(r, http.MethodPost, "/actions", `{"name":"a","project_id":99}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project doesn't exist. Please update project ID and try again.", messageOf(t, rec))
	assert.Empty(t, notifier.notified())
}

func TestActionHandler_CreateAction_StoreError(t *testing.T) {
	r := actionRouter(&mockActionRepository{err: sqlite3.Error{Code: sqlite3.ErrAbort}}, nil)

	rec := perform(r, http.MethodPost, "/actions", `{"name":"a","project_id":1}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Operation aborted", messageOf(t, rec))
}

func TestActionHandler_UpdateAction(t *testing.T) {
	actions := &mockActionRepository{
		before: &models.Action{ID: 2, Name: "old", ProjectID: 1},
		action: &models.Action{ID: 2, Name: "new", ProjectID: 1},
	}
	notifier := &recordingNotifier{}
	r := actionRouter(actions, notifier)

	rec := perform(r, http.MethodPut, "/actions/2", `{"name":"new","project_id":1,"notes":"x"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "new", decode[models.Action](t, rec).Name)
	assert.Equal(t, uint(2), actions.updateID)
	require.NotNil(t, actions.update.Notes)
	assert.Equal(t, "x", *actions.update.Notes)
	assert.Nil(t, actions.update.Complete)
	assert.Equal(t, []uint{1}, notifier.notified())
}

func TestActionHandler_UpdateAction_MovedNotifiesBothProjects(t *testing.T) {
	actions := &mockActionRepository{
		before: &models.Action{ID: 2, Name: "a", ProjectID: 1},
		action: &models.Action{ID: 2, Name: "a", ProjectID: 4},
	}
	notifier := &recordingNotifier{}
	r := actionRouter(actions, notifier)

	rec := perform(r, http.MethodPut, "/actions/2", `{"name":"a","project_id":4}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []uint{1, 4}, notifier.notified())
}

func TestActionHandler_UpdateAction_Errors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"missing project", apperrors.ErrProjectNotFound, http.StatusNotFound, "Project doesn't exist. Please update project ID and try again."},
		{"missing action", apperrors.ErrNotFound, http.StatusNotFound, "Records not found"},
		{"store error", sqlite3.Error{Code: sqlite3.ErrError}, http.StatusInternalServerError, "We ran into an error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := actionRouter(&mockActionRepository{err: tt.err}, nil)

			rec := perform(r, http.MethodPut, "/actions/2", `{"name":"a","project_id":1}`)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, messageOf(t, rec))
		})
	}
}

func TestActionHandler_UpdateAction_MissingFields(t *testing.T) {
	actions := &mockActionRepository{}
	r := actionRouter(actions, nil)

	rec := perform(r, http.MethodPut, "/actions/2", `{"notes":"n"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please include a name and project ID to update an action", messageOf(t, rec))
	assert.Zero(t, actions.updateID, "repository is not called")
}

func TestActionHandler_DeleteAction(t *testing.T) {
	notifier := &recordingNotifier{}
	r := actionRouter(&mockActionRepository{action: &models.Action{ID: 2, ProjectID: 6}}, notifier)

	rec := perform(r, http.MethodDelete, "/actions/2", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, []uint{6}, notifier.notified())
}

func TestActionHandler_DeleteAction_NotFound(t *testing.T) {
	r := actionRouter(&mockActionRepository{err: apperrors.ErrNotFound}, nil)

	rec := perform(r, http.MethodDelete, "/actions/2", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Action not found", messageOf(t, rec))
}

func TestActionHandler_InvalidID(t *testing.T) {
	r := actionRouter(&mockActionRepository{}, nil)

	rec := perform(r, http.MethodGet, "/actions/nope", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid action ID", messageOf(t, rec))
}
