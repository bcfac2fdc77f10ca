package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/food"
	"github.com/trezcool/schoolops/core/nutrition"
)

const foodColumns = "id, name, age_group, ingredients, nutrients, weight, calculated, created_at, updated_at"

type foodRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	AgeGroup    string         `db:"age_group"`
	Ingredients types.JSONText `db:"ingredients"`
	Nutrients   types.JSONText `db:"nutrients"`
	Weight      float64        `db:"weight"`
	Calculated  bool           `db:"calculated"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func toFoodRow(f food.Food) (foodRow, error) {
	if f.Ingredients == nil {
		f.Ingredients = []nutrition.Ingredient{}
	}
	ingredients, err := toJSON(f.Ingredients)
	if err != nil {
		return foodRow{}, err
	}
	nutrients, err := toJSON(f.Nutrients)
	if err != nil {
		return foodRow{}, err
	}
	return foodRow{
		ID:          f.ID,
		Name:        f.Name,
		AgeGroup:    f.AgeGroup,
		Ingredients: ingredients,
		Nutrients:   nutrients,
		Weight:      f.Weight,
		Calculated:  f.Calculated,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}, nil
}

func (r foodRow) food() (food.Food, error) {
	f := food.Food{
		ID:          r.ID,
		Name:        r.Name,
		AgeGroup:    r.AgeGroup,
		Ingredients: []nutrition.Ingredient{},
		Weight:      r.Weight,
		Calculated:  r.Calculated,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if err := fromJSON(r.Ingredients, &f.Ingredients); err != nil {
		return food.Food{}, err
	}
	if err := fromJSON(r.Nutrients, &f.Nutrients); err != nil {
		return food.Food{}, err
	}
	return f, nil
}

type foodRepository struct {
	exec core.DBExecutor
}

var _ food.Repository = (*foodRepository)(nil)

func NewFoodRepository(exec core.DBExecutor) food.Repository {
	return &foodRepository{exec: exec}
}

func (repo *foodRepository) CreateFood(ctx context.Context, f food.Food) (food.Food, error) {
	f.ID = uuid.New().String()
	row, err := toFoodRow(f)
	if err != nil {
		return food.Food{}, err
	}
	stmt := `INSERT INTO food (` + foodColumns + `) VALUES (:id, :name, :age_group, :ingredients, :nutrients, :weight, :calculated, :created_at, :updated_at)`
	if _, err = repo.exec.NamedExecContext(ctx, stmt, row); err != nil {
		return food.Food{}, errors.Wrap(err, "inserting food")
	}
	return f, nil
}

func (repo *foodRepository) QueryFoods(ctx context.Context, filter *food.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]food.Food, int, error) {
	var q query
	if filter != nil {
		q.search(filter.Search, "name")
		if filter.AgeGroup != "" {
			q.and("age_group = ?", filter.AgeGroup)
		}
		if filter.Calculated != nil {
			q.and("calculated = ?", *filter.Calculated)
		}
	}

	var rows []foodRow
	total, err := selectPage(ctx, repo.exec, &rows, "food", foodColumns, q, ordering, food.OrderingFields, paging)
	if err != nil {
		return nil, 0, err
	}
	foods := make([]food.Food, 0, len(rows))
	for _, r := range rows {
		f, err := r.food()
		if err != nil {
			return nil, 0, err
		}
		foods = append(foods, f)
	}
	return foods, total, nil
}

func (repo *foodRepository) GetFood(ctx context.Context, id string) (food.Food, error) {
	if !validID(id) {
		return food.Food{}, food.ErrNotFound
	}
	var r foodRow
	if err := get(ctx, repo.exec, &r, food.ErrNotFound, "SELECT "+foodColumns+" FROM food WHERE id = $1", id); err != nil {
		return food.Food{}, err
	}
	return r.food()
}

func (repo *foodRepository) UpdateFood(ctx context.Context, f food.Food) (food.Food, error) {
	row, err := toFoodRow(f)
	if err != nil {
		return food.Food{}, err
	}
	stmt := `UPDATE food SET name = :name, age_group = :age_group, ingredients = :ingredients, nutrients = :nutrients,
		weight = :weight, calculated = :calculated, updated_at = :updated_at WHERE id = :id`
	if err = affectsOne(food.ErrNotFound)(repo.exec.NamedExecContext(ctx, stmt, row)); err != nil {
		return food.Food{}, errors.Wrap(err, "updating food")
	}
	return f, nil
}

func (repo *foodRepository) DeleteFood(ctx context.Context, id string) error {
	if !validID(id) {
		return food.ErrNotFound
	}
	return affectsOne(food.ErrNotFound)(repo.exec.ExecContext(ctx, "DELETE FROM food WHERE id = $1", id))
}
