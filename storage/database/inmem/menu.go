package inmemdb

import (
	"context"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/menu"
)

type menuRepository struct {
	db *table[menu.Menu]
}

var _ menu.Repository = (*menuRepository)(nil)

func NewMenuRepository(db *DB) menu.Repository {
	return &menuRepository{db: db.menu}
}

func menuField(m menu.Menu, field string) interface{} {
	switch field {
	case "id":
		return m.ID
	case "name":
		return m.Name
	case "start_date":
		return m.StartDate
	case "end_date":
		return m.EndDate
	case "age_group":
		return m.AgeGroup
	case "created_at":
		return m.CreatedAt
	}
	return nil
}

func (repo *menuRepository) CreateMenu(_ context.Context, m menu.Menu) (menu.Menu, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m.ID = newID()
	repo.db.put(m.ID, m)
	return m, nil
}

func (repo *menuRepository) QueryMenus(_ context.Context, filter *menu.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]menu.Menu, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows, total := selectRows(repo.db, filter.Match, ordering, paging, menuField)
	return rows, total, nil
}

func (repo *menuRepository) GetMenu(_ context.Context, id string) (menu.Menu, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.get(id); ok {
		return m, nil
	}
	return menu.Menu{}, menu.ErrNotFound
}

func (repo *menuRepository) UpdateMenu(_ context.Context, m menu.Menu) (menu.Menu, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[m.ID]; !ok {
		return menu.Menu{}, menu.ErrNotFound
	}
	repo.db.put(m.ID, m)
	return m, nil
}

func (repo *menuRepository) DeleteMenu(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return menu.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
