package handler

import (
	"context"

	"github.com/zippyboards/backend/internal/board"
	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/internal/service"
	"github.com/zippyboards/backend/pkg/auth"
)

func withUser(ctx context.Context, userID string) context.Context {
	return auth.WithUserID(ctx, userID)
}

type mockAuthService struct {
	signUpFunc      func(ctx context.Context, email, password string) (*model.User, error)
	signInFunc      func(ctx context.Context, email, password string) (*model.User, error)
	githubFunc      func(ctx context.Context, info *service.GitHubUserInfo) (*model.User, error)
	currentUserFunc func(ctx context.Context) (*model.User, error)
}

func (m *mockAuthService) SignUp(ctx context.Context, email, password string) (*model.User, error) {
	if m.signUpFunc != nil {
		return m.signUpFunc(ctx, email, password)
	}
	return &model.User{ID: "u1", Email: email}, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password string) (*model.User, error) {
	if m.signInFunc != nil {
		return m.signInFunc(ctx, email, password)
	}
	return &model.User{ID: "u1", Email: email}, nil
}

func (m *mockAuthService) GetOrCreateUserFromGitHub(ctx context.Context, info *service.GitHubUserInfo) (*model.User, error) {
	if m.githubFunc != nil {
		return m.githubFunc(ctx, info)
	}
	return &model.User{ID: "u-gh", Email: info.Email}, nil
}

func (m *mockAuthService) CurrentUser(ctx context.Context) (*model.User, error) {
	if m.currentUserFunc != nil {
		return m.currentUserFunc(ctx)
	}
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, service.ErrUnauthenticated
	}
	return &model.User{ID: userID, Email: userID + "@example.com"}, nil
}

type mockSessionManager struct {
	created []string
	deleted []string
	err     error
}

func (m *mockSessionManager) CreateSession(_ context.Context, userID string) (*model.Session, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, userID)
	return &model.Session{Token: "token-" + userID, UserID: userID}, nil
}

func (m *mockSessionManager) DeleteSession(_ context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	return nil
}

type mockProjectService struct {
	listMineFunc func(ctx context.Context) ([]*model.Project, error)
	createFunc   func(ctx context.Context, name, description string) (*model.Project, error)
	pageFunc     func(ctx context.Context, id string) (*model.ProjectPage, error)
	updateFunc   func(ctx context.Context, id string, name, description *string) (*model.Project, error)
	deleteFunc   func(ctx context.Context, id string) error
}

func (m *mockProjectService) ListMine(ctx context.Context) ([]*model.Project, error) {
	if m.listMineFunc != nil {
		return m.listMineFunc(ctx)
	}
	return nil, nil
}

func (m *mockProjectService) Create(ctx context.Context, name, description string) (*model.Project, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, name, description)
	}
	return &model.Project{ID: "p-new", Name: name, Description: description}, nil
}

func (m *mockProjectService) Page(ctx context.Context, id string) (*model.ProjectPage, error) {
	if m.pageFunc != nil {
		return m.pageFunc(ctx, id)
	}
	return nil, service.ErrNotFound
}

func (m *mockProjectService) Update(ctx context.Context, id string, name, description *string) (*model.Project, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, name, description)
	}
	return &model.Project{ID: id}, nil
}

func (m *mockProjectService) Delete(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockMembershipService struct {
	addFunc    func(ctx context.Context, projectID, email string) service.ActionResult
	removeFunc func(ctx context.Context, projectID, userID string) service.ActionResult
	listFunc   func(ctx context.Context, projectID string) ([]*model.MemberView, error)
}

func (m *mockMembershipService) AddMember(ctx context.Context, projectID, email string) service.ActionResult {
	if m.addFunc != nil {
		return m.addFunc(ctx, projectID, email)
	}
	return service.Succeeded()
}

func (m *mockMembershipService) RemoveMember(ctx context.Context, projectID, userID string) service.ActionResult {
	if m.removeFunc != nil {
		return m.removeFunc(ctx, projectID, userID)
	}
	return service.Succeeded()
}

func (m *mockMembershipService) ListMembers(ctx context.Context, projectID string) ([]*model.MemberView, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, projectID)
	}
	return nil, nil
}

type mockTaskService struct {
	listFunc         func(ctx context.Context, projectID string) ([]*model.Task, error)
	boardFunc        func(ctx context.Context, projectID string, f board.FilterOption, k board.SortKey, d board.Direction) (board.Lanes, error)
	createFunc       func(ctx context.Context, projectID string, in service.NewTask) (*model.Task, error)
	updateFunc       func(ctx context.Context, taskID string, patch model.TaskPatch) (*model.Task, error)
	updateStatusFunc func(ctx context.Context, taskID string, status model.Lane) (*model.Task, error)
	deleteFunc       func(ctx context.Context, taskID string) error
}

func (m *mockTaskService) List(ctx context.Context, projectID string) ([]*model.Task, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, projectID)
	}
	return nil, nil
}

func (m *mockTaskService) Board(ctx context.Context, projectID string, f board.FilterOption, k board.SortKey, d board.Direction) (board.Lanes, error) {
	if m.boardFunc != nil {
		return m.boardFunc(ctx, projectID, f, k, d)
	}
	return board.Partition(nil), nil
}

func (m *mockTaskService) Create(ctx context.Context, projectID string, in service.NewTask) (*model.Task, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, projectID, in)
	}
	return &model.Task{ID: "t-new", ProjectID: projectID, Title: in.Title}, nil
}

func (m *mockTaskService) Update(ctx context.Context, taskID string, patch model.TaskPatch) (*model.Task, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, taskID, patch)
	}
	return &model.Task{ID: taskID}, nil
}

func (m *mockTaskService) UpdateStatus(ctx context.Context, taskID string, status model.Lane) (*model.Task, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, taskID, status)
	}
	return &model.Task{ID: taskID, Status: status}, nil
}

func (m *mockTaskService) Delete(ctx context.Context, taskID string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, taskID)
	}
	return nil
}

type mockWaitlistService struct {
	joinFunc func(ctx context.Context, email string) (*model.WaitlistEntry, error)
}

func (m *mockWaitlistService) Join(ctx context.Context, email string) (*model.WaitlistEntry, error) {
	if m.joinFunc != nil {
		return m.joinFunc(ctx, email)
	}
	return &model.WaitlistEntry{ID: "w1", Email: email}, nil
}
