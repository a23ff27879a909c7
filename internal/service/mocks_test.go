package service

import (
	"context"
	"sync"

	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/internal/repository"
	"github.com/zippyboards/backend/pkg/auth"
)

func asUser(userID string) context.Context {
	return auth.WithUserID(context.Background(), userID)
}

// mockUserRepository is a UserRepository mock.
type mockUserRepository struct {
	findByIDFunc       func(ctx context.Context, id string) (*model.User, error)
	findByEmailFunc    func(ctx context.Context, email string) (*model.User, error)
	findByGitHubIDFunc func(ctx context.Context, githubID string) (*model.User, error)
	createFunc         func(ctx context.Context, user *model.User) error
	setGitHubIDFunc    func(ctx context.Context, userID, githubID string) error
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) FindByGitHubID(ctx context.Context, githubID string) (*model.User, error) {
	if m.findByGitHubIDFunc != nil {
		return m.findByGitHubIDFunc(ctx, githubID)
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = "new-user"
	return nil
}

func (m *mockUserRepository) SetGitHubID(ctx context.Context, userID, githubID string) error {
	if m.setGitHubIDFunc != nil {
		return m.setGitHubIDFunc(ctx, userID, githubID)
	}
	return nil
}

// memberTable is an in-memory project_members table implementing
// repository.MemberRepository. It counts writes so tests can assert that
// rejected actions left the table untouched.
type memberTable struct {
	mu      sync.Mutex
	rows    map[string]model.Role // projectID + "/" + userID
	emails  map[string]string     // userID -> email
	writes  int
	addErr  error
	readErr error
}

func newMemberTable() *memberTable {
	return &memberTable{rows: map[string]model.Role{}, emails: map[string]string{}}
}

func (t *memberTable) with(projectID, userID string, role model.Role) *memberTable {
	t.rows[projectID+"/"+userID] = role
	return t
}

func (t *memberTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.rows)
}

func (t *memberTable) has(projectID, userID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.rows[projectID+"/"+userID]
	return ok
}

func (t *memberTable) GetRole(_ context.Context, projectID, userID string) (model.Role, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.readErr != nil {
		return "", t.readErr
	}
	role, ok := t.rows[projectID+"/"+userID]
	if !ok {
		return "", repository.ErrNotFound
	}
	return role, nil
}

func (t *memberTable) Exists(_ context.Context, projectID, userID string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.readErr != nil {
		return false, t.readErr
	}
	_, ok := t.rows[projectID+"/"+userID]
	return ok, nil
}

func (t *memberTable) ListIfAllowed(_ context.Context, projectID, viewerID string) ([]*model.MemberView, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.readErr != nil {
		return nil, t.readErr
	}
	if _, ok := t.rows[projectID+"/"+viewerID]; !ok {
		return nil, repository.ErrNotFound
	}
	var out []*model.MemberView
	prefix := projectID + "/"
	for key, role := range t.rows {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			uid := key[len(prefix):]
			out = append(out, &model.MemberView{UserID: uid, Role: role, Email: t.emails[uid]})
		}
	}
	return out, nil
}

func (t *memberTable) Add(_ context.Context, m *model.ProjectMember) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.addErr != nil {
		return t.addErr
	}
	key := m.ProjectID + "/" + m.UserID
	if _, ok := t.rows[key]; ok {
		return repository.ErrAlreadyExists
	}
	t.rows[key] = m.Role
	t.writes++
	return nil
}

func (t *memberTable) Remove(_ context.Context, projectID, userID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.rows, projectID+"/"+userID)
	t.writes++
	return nil
}

// mockPageCache records invalidations and serves pages from a map.
type mockPageCache struct {
	pages       map[string]*model.ProjectPage
	invalidated []string
	getErr      error
}

func newMockPageCache() *mockPageCache {
	return &mockPageCache{pages: map[string]*model.ProjectPage{}}
}

func (c *mockPageCache) Get(_ context.Context, projectID string) (*model.ProjectPage, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.pages[projectID], nil
}

func (c *mockPageCache) Set(_ context.Context, page *model.ProjectPage) error {
	c.pages[page.Project.ID] = page
	return nil
}

func (c *mockPageCache) Invalidate(_ context.Context, projectID string) error {
	delete(c.pages, projectID)
	c.invalidated = append(c.invalidated, projectID)
	return nil
}

// mockProjectRepository is a ProjectRepository mock.
type mockProjectRepository struct {
	getByIDFunc         func(ctx context.Context, id string) (*model.Project, error)
	listByMemberIDFunc  func(ctx context.Context, userID string) ([]*model.Project, error)
	createWithOwnerFunc func(ctx context.Context, project *model.Project) error
	updateFunc          func(ctx context.Context, project *model.Project) error
	deleteFunc          func(ctx context.Context, id string) error
}

func (m *mockProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockProjectRepository) ListByMemberID(ctx context.Context, userID string) ([]*model.Project, error) {
	if m.listByMemberIDFunc != nil {
		return m.listByMemberIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockProjectRepository) CreateWithOwner(ctx context.Context, project *model.Project) error {
	if m.createWithOwnerFunc != nil {
		return m.createWithOwnerFunc(ctx, project)
	}
	project.ID = "new-project"
	return nil
}

func (m *mockProjectRepository) Update(ctx context.Context, project *model.Project) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, project)
	}
	return nil
}

func (m *mockProjectRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// mockTaskRepository is a TaskRepository mock.
type mockTaskRepository struct {
	listByProjectFunc func(ctx context.Context, projectID string) ([]*model.Task, error)
	getByIDFunc       func(ctx context.Context, id string) (*model.Task, error)
	createFunc        func(ctx context.Context, task *model.Task) error
	updateFunc        func(ctx context.Context, task *model.Task) error
	updateStatusFunc  func(ctx context.Context, id string, status model.Lane) (*model.Task, error)
	deleteFunc        func(ctx context.Context, id string) error
}

func (m *mockTaskRepository) ListByProject(ctx context.Context, projectID string) ([]*model.Task, error) {
	if m.listByProjectFunc != nil {
		return m.listByProjectFunc(ctx, projectID)
	}
	return nil, nil
}

func (m *mockTaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockTaskRepository) Create(ctx context.Context, task *model.Task) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, task)
	}
	return nil
}

func (m *mockTaskRepository) Update(ctx context.Context, task *model.Task) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, task)
	}
	return nil
}

func (m *mockTaskRepository) UpdateStatus(ctx context.Context, id string, status model.Lane) (*model.Task, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status)
	}
	return nil, repository.ErrNotFound
}

func (m *mockTaskRepository) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

// mockSessionRepository is a SessionRepository mock.
type mockSessionRepository struct {
	createFunc         func(ctx context.Context, s *model.Session) error
	findByTokenFunc    func(ctx context.Context, token string) (*model.Session, error)
	deleteByTokenFunc  func(ctx context.Context, token string) error
	deleteByUserIDFunc func(ctx context.Context, userID string) error
	deleteExpiredFunc  func(ctx context.Context) (int64, error)
}

func (m *mockSessionRepository) Create(ctx context.Context, s *model.Session) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, s)
	}
	return nil
}

func (m *mockSessionRepository) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	if m.findByTokenFunc != nil {
		return m.findByTokenFunc(ctx, token)
	}
	return nil, repository.ErrNotFound
}

func (m *mockSessionRepository) DeleteByToken(ctx context.Context, token string) error {
	if m.deleteByTokenFunc != nil {
		return m.deleteByTokenFunc(ctx, token)
	}
	return nil
}

func (m *mockSessionRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if m.deleteByUserIDFunc != nil {
		return m.deleteByUserIDFunc(ctx, userID)
	}
	return nil
}

func (m *mockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx)
	}
	return 0, nil
}

// mockWaitlistRepository is a WaitlistRepository mock.
type mockWaitlistRepository struct {
	addFunc func(ctx context.Context, entry *model.WaitlistEntry) error
}

func (m *mockWaitlistRepository) Add(ctx context.Context, entry *model.WaitlistEntry) error {
	if m.addFunc != nil {
		return m.addFunc(ctx, entry)
	}
	return nil
}
