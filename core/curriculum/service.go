package curriculum

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
)

var ErrNotFound = errors.New("curriculum not found")

type (
	Repository interface {
		CreateCurriculum(ctx context.Context, c Curriculum) (Curriculum, error)
		QueryCurricula(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Curriculum, int, error)
		GetCurriculum(ctx context.Context, id string) (Curriculum, error)
		UpdateCurriculum(ctx context.Context, c Curriculum) (Curriculum, error)
		DeleteCurriculum(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, nc NewCurriculum) (Curriculum, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Curriculum, int, error)
		GetByID(ctx context.Context, id string) (Curriculum, error)
		Update(ctx context.Context, c Curriculum, nc NewCurriculum) (Curriculum, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nc NewCurriculum) (Curriculum, error) {
	now := core.NowFunc().UTC()
	c := Curriculum{CreatedAt: now, UpdatedAt: now}
	apply(&c, nc)
	return svc.repo.CreateCurriculum(ctx, c)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Curriculum, int, error) {
	return svc.repo.QueryCurricula(ctx, filter, ordering, paging)
}

func (svc *service) GetByID(ctx context.Context, id string) (Curriculum, error) {
	return svc.repo.GetCurriculum(ctx, id)
}

func (svc *service) Update(ctx context.Context, c Curriculum, nc NewCurriculum) (Curriculum, error) {
	apply(&c, nc)
	c.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateCurriculum(ctx, c)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCurriculum(ctx, id)
}

func apply(c *Curriculum, data NewCurriculum) {
	c.Name = data.Name
	c.AgeGroup = data.AgeGroup
	c.SchoolYear = data.SchoolYear
	c.Description = data.Description
	c.Activities = data.Activities
	if c.Activities == nil {
		c.Activities = []Activity{}
	}
}
