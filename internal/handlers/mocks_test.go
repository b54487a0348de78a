package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/monocle-dev/projectboard/internal/apperrors"
	"github.com/monocle-dev/projectboard/internal/models"
	"github.com/monocle-dev/projectboard/internal/repository"
)

// mockProjectRepository is an in-memory ProjectRepository. Setting err makes
// every call fail with it.
type mockProjectRepository struct {
	projects map[uint]models.Project
	actions  map[uint][]models.Action
	nextID   uint
	err      error
}

func newMockProjectRepository() *mockProjectRepository {
	return &mockProjectRepository{
		projects: make(map[uint]models.Project),
		actions:  make(map[uint][]models.Action),
		nextID:   1,
	}
}

func (m *mockProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Project{}
	for id := uint(1); id < m.nextID; id++ {
		if p, ok := m.projects[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProjectRepository) Get(ctx context.Context, id uint) (*models.Project, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.projects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (m *mockProjectRepository) GetWithActions(ctx context.Context, id uint) (*models.ProjectWithActions, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	actions := m.actions[id]
	if actions == nil {
		actions = []models.Action{}
	}
	return &models.ProjectWithActions{Project: *p, Actions: actions}, nil
}

func (m *mockProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if m.err != nil {
		return m.err
	}
	project.ID = m.nextID
	m.nextID++
	m.projects[project.ID] = *project
	return nil
}

func (m *mockProjectRepository) Update(ctx context.Context, id uint, update repository.ProjectUpdate) (*models.Project, error) {
	p, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Name = update.Name
	p.Description = update.Description
	if update.Complete != nil {
		p.Complete = *update.Complete
	}
	m.projects[id] = *p
	return p, nil
}

func (m *mockProjectRepository) Delete(ctx context.Context, id uint) error {
	if _, err := m.Get(ctx, id); err != nil {
		return err
	}
	delete(m.projects, id)
	delete(m.actions, id)
	return nil
}

// mockActionRepository records calls and returns canned results.
type mockActionRepository struct {
	actions  []models.Action
	action   *models.Action
	before   *models.Action
	err      error
	created  *models.Action
	updateID uint
	update   repository.ActionUpdate
}

func (m *mockActionRepository) List(ctx context.Context) ([]models.Action, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.actions, nil
}

func (m *mockActionRepository) ListByProject(ctx context.Context, projectID uint) ([]models.Action, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []models.Action{}
	for _, a := range m.actions {
		if a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockActionRepository) Get(ctx context.Context, id uint) (*models.Action, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.action, nil
}

func (m *mockActionRepository) Create(ctx context.Context, action *models.Action) error {
	if m.err != nil {
		return m.err
	}
	action.ID = 10
	m.created = action
	return nil
}

func (m *mockActionRepository) Update(ctx context.Context, id uint, update repository.ActionUpdate) (*models.Action, *models.Action, error) {
	m.updateID = id
	m.update = update
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.before, m.action, nil
}

func (m *mockActionRepository) Delete(ctx context.Context, id uint) (*models.Action, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.action, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	projects []uint
}

func (n *recordingNotifier) NotifyProject(projectID uint) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.projects = append(n.projects, projectID)
}

func (n *recordingNotifier) notified() []uint {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]uint(nil), n.projects...)
}

type mockFeed struct {
	served []uint
}

func (f *mockFeed) Serve(w http.ResponseWriter, r *http.Request, projectID uint) {
	f.served = append(f.served, projectID)
	w.WriteHeader(http.StatusSwitchingProtocols)
}

type mockPinger struct {
	err error
}

func (p mockPinger) PingContext(ctx context.Context) error {
	return p.err
}
