package inmemdb

import (
	"context"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/food"
)

type foodRepository struct {
	db *table[food.Food]
}

var _ food.Repository = (*foodRepository)(nil)

func NewFoodRepository(db *DB) food.Repository {
	return &foodRepository{db: db.food}
}

func foodField(f food.Food, field string) interface{} {
	switch field {
	case "id":
		return f.ID
	case "name":
		return f.Name
	case "age_group":
		return f.AgeGroup
	case "weight":
		return f.Weight
	case "created_at":
		return f.CreatedAt
	case "updated_at":
		return f.UpdatedAt
	}
	return nil
}

func (repo *foodRepository) CreateFood(_ context.Context, f food.Food) (food.Food, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	f.ID = newID()
	repo.db.put(f.ID, f)
	return f, nil
}

func (repo *foodRepository) QueryFoods(_ context.Context, filter *food.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]food.Food, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows, total := selectRows(repo.db, filter.Match, ordering, paging, foodField)
	return rows, total, nil
}

func (repo *foodRepository) GetFood(_ context.Context, id string) (food.Food, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if f, ok := repo.db.get(id); ok {
		return f, nil
	}
	return food.Food{}, food.ErrNotFound
}

func (repo *foodRepository) UpdateFood(_ context.Context, f food.Food) (food.Food, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[f.ID]; !ok {
		return food.Food{}, food.ErrNotFound
	}
	repo.db.put(f.ID, f)
	return f, nil
}

func (repo *foodRepository) DeleteFood(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return food.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
