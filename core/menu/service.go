package menu

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/food"
)

var ErrNotFound = errors.New("menu not found")

type (
	Repository interface {
		CreateMenu(ctx context.Context, m Menu) (Menu, error)
		QueryMenus(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Menu, int, error)
		GetMenu(ctx context.Context, id string) (Menu, error)
		UpdateMenu(ctx context.Context, m Menu) (Menu, error)
		DeleteMenu(ctx context.Context, id string) error
	}

	// FoodGetter finds the foods served in menus.
	FoodGetter interface {
		GetByID(ctx context.Context, id string) (food.Food, error)
	}

	Service interface {
		Create(ctx context.Context, nm NewMenu) (Menu, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Menu, int, error)
		GetByID(ctx context.Context, id string) (Menu, error)
		Update(ctx context.Context, m Menu, nm NewMenu) (Menu, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo  Repository
		foods FoodGetter
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, foods FoodGetter) Service {
	return &service{repo: repo, foods: foods}
}

func (svc *service) Create(ctx context.Context, nm NewMenu) (Menu, error) {
	now := core.NowFunc().UTC()
	m := Menu{CreatedAt: now, UpdatedAt: now}
	if err := svc.compose(ctx, &m, nm); err != nil {
		return Menu{}, err
	}
	return svc.repo.CreateMenu(ctx, m)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Menu, int, error) {
	return svc.repo.QueryMenus(ctx, filter, ordering, paging)
}

func (svc *service) GetByID(ctx context.Context, id string) (Menu, error) {
	return svc.repo.GetMenu(ctx, id)
}

func (svc *service) Update(ctx context.Context, m Menu, nm NewMenu) (Menu, error) {
	if err := svc.compose(ctx, &m, nm); err != nil {
		return Menu{}, err
	}
	m.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateMenu(ctx, m)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteMenu(ctx, id)
}

// compose resolves the foods of nm and derives the nutrients of every portion, meal & day of m.
func (svc *service) compose(ctx context.Context, m *Menu, nm NewMenu) error {
	foods := make(map[string]food.Food)
	getFood := func(id string) (food.Food, error) {
		if f, ok := foods[id]; ok {
			return f, nil
		}
		f, err := svc.foods.GetByID(ctx, id)
		if err != nil {
			if errors.Cause(err) == food.ErrNotFound {
				return food.Food{}, core.NewValidationError(err, core.FieldError{Field: "food_id", Error: "unknown food: " + id})
			}
			return food.Food{}, errors.Wrap(err, "finding food")
		}
		foods[id] = f
		return f, nil
	}

	days := make([]Day, 0, len(nm.Days))
	for _, nd := range nm.Days {
		day := Day{Date: nd.Date, Meals: make([]Meal, 0, len(nd.Meals))}
		for _, nml := range nd.Meals {
			meal := Meal{Type: nml.Type, Foods: make([]Portion, 0, len(nml.Foods))}
			for _, np := range nml.Foods {
				f, err := getFood(np.FoodID)
				if err != nil {
					return err
				}
				meal.Foods = append(meal.Foods, Portion{
					FoodID:    f.ID,
					Name:      f.Name,
					Weight:    np.Weight,
					Nutrients: f.Portion(np.Weight),
				})
			}
			day.Meals = append(day.Meals, meal)
		}
		days = append(days, day)
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date.Time) })

	m.Name = nm.Name
	m.StartDate = nm.StartDate
	m.EndDate = nm.EndDate
	m.AgeGroup = nm.AgeGroup
	m.Days = days
	m.Recompute()
	return nil
}
