package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectWithActions_JSONIsFlat(t *testing.T) {
	p := ProjectWithActions{
		Project: Project{ID: 3, Name: "Garden", Description: "Spring planting"},
		Actions: []Action{{ID: 7, Name: "Buy seeds", ProjectID: 3}},
	}

	raw, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, float64(3), decoded["id"])
	assert.Equal(t, "Garden", decoded["name"])
	assert.Equal(t, "Spring planting", decoded["description"])
	assert.Equal(t, false, decoded["complete"])

	actions, ok := decoded["actions"].([]any)
	require.True(t, ok, "actions should be an array")
	require.Len(t, actions, 1)
	assert.Equal(t, float64(3), actions[0].(map[string]any)["project_id"])
}

func TestProjectWithActions_EmptyActionsIsArray(t *testing.T) {
	raw, err := json.Marshal(ProjectWithActions{Project: Project{ID: 1}, Actions: []Action{}})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"actions":[]`)
}

func TestProject_HidesAssociation(t *testing.T) {
	raw, err := json.Marshal(Project{ID: 1, Actions: []Action{{ID: 2}}})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "actions")
}
