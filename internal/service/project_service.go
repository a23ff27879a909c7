package service

import (
	"context"

	"github.com/zippyboards/backend/internal/model"
)

// PageCache stores rendered project pages.
type PageCache interface {
	Get(ctx context.Context, projectID string) (*model.ProjectPage, error)
	Set(ctx context.Context, page *model.ProjectPage) error
	PageInvalidator
}

// ProjectService is the business logic around projects. Every method acts
// on behalf of the user in ctx.
type ProjectService interface {
	ListMine(ctx context.Context) ([]*model.Project, error)
	Create(ctx context.Context, name, description string) (*model.Project, error)
	Page(ctx context.Context, id string) (*model.ProjectPage, error)
	Update(ctx context.Context, id string, name, description *string) (*model.Project, error)
	Delete(ctx context.Context, id string) error
}
