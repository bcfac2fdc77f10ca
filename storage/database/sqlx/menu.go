package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/menu"
)

const menuColumns = "id, name, start_date, end_date, age_group, days, totals, created_at, updated_at"

type menuRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	StartDate core.Date      `db:"start_date"`
	EndDate   core.Date      `db:"end_date"`
	AgeGroup  string         `db:"age_group"`
	Days      types.JSONText `db:"days"`
	Totals    types.JSONText `db:"totals"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

func toMenuRow(m menu.Menu) (menuRow, error) {
	if m.Days == nil {
		m.Days = []menu.Day{}
	}
	days, err := toJSON(m.Days)
	if err != nil {
		return menuRow{}, err
	}
	totals, err := toJSON(m.Totals)
	if err != nil {
		return menuRow{}, err
	}
	return menuRow{
		ID:        m.ID,
		Name:      m.Name,
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
		AgeGroup:  m.AgeGroup,
		Days:      days,
		Totals:    totals,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}, nil
}

func (r menuRow) menu() (menu.Menu, error) {
	m := menu.Menu{
		ID:        r.ID,
		Name:      r.Name,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		AgeGroup:  r.AgeGroup,
		Days:      []menu.Day{},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if err := fromJSON(r.Days, &m.Days); err != nil {
		return menu.Menu{}, err
	}
	if err := fromJSON(r.Totals, &m.Totals); err != nil {
		return menu.Menu{}, err
	}
	return m, nil
}

type menuRepository struct {
	exec core.DBExecutor
}

var _ menu.Repository = (*menuRepository)(nil)

func NewMenuRepository(exec core.DBExecutor) menu.Repository {
	return &menuRepository{exec: exec}
}

func (repo *menuRepository) CreateMenu(ctx context.Context, m menu.Menu) (menu.Menu, error) {
	m.ID = uuid.New().String()
	row, err := toMenuRow(m)
	if err != nil {
		return menu.Menu{}, err
	}
	stmt := `INSERT INTO menu (` + menuColumns + `) VALUES (:id, :name, :start_date, :end_date, :age_group, :days, :totals, :created_at, :updated_at)`
	if _, err = repo.exec.NamedExecContext(ctx, stmt, row); err != nil {
		return menu.Menu{}, errors.Wrap(err, "inserting menu")
	}
	return m, nil
}

func (repo *menuRepository) QueryMenus(ctx context.Context, filter *menu.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]menu.Menu, int, error) {
	var q query
	if filter != nil {
		q.search(filter.Search, "name")
		if filter.AgeGroup != "" {
			q.and("age_group = ?", filter.AgeGroup)
		}
		// menus overlapping [From, To]
		if !filter.From.IsZero() {
			q.and("end_date >= ?", filter.From)
		}
		if !filter.To.IsZero() {
			q.and("start_date <= ?", filter.To)
		}
	}

	var rows []menuRow
	total, err := selectPage(ctx, repo.exec, &rows, "menu", menuColumns, q, ordering, menu.OrderingFields, paging)
	if err != nil {
		return nil, 0, err
	}
	menus := make([]menu.Menu, 0, len(rows))
	for _, r := range rows {
		m, err := r.menu()
		if err != nil {
			return nil, 0, err
		}
		menus = append(menus, m)
	}
	return menus, total, nil
}

func (repo *menuRepository) GetMenu(ctx context.Context, id string) (menu.Menu, error) {
	if !validID(id) {
		return menu.Menu{}, menu.ErrNotFound
	}
	var r menuRow
	if err := get(ctx, repo.exec, &r, menu.ErrNotFound, "SELECT "+menuColumns+" FROM menu WHERE id = $1", id); err != nil {
		return menu.Menu{}, err
	}
	return r.menu()
}

func (repo *menuRepository) UpdateMenu(ctx context.Context, m menu.Menu) (menu.Menu, error) {
	row, err := toMenuRow(m)
	if err != nil {
		return menu.Menu{}, err
	}
	stmt := `UPDATE menu SET name = :name, start_date = :start_date, end_date = :end_date, age_group = :age_group,
		days = :days, totals = :totals, updated_at = :updated_at WHERE id = :id`
	if err = affectsOne(menu.ErrNotFound)(repo.exec.NamedExecContext(ctx, stmt, row)); err != nil {
		return menu.Menu{}, errors.Wrap(err, "updating menu")
	}
	return m, nil
}

func (repo *menuRepository) DeleteMenu(ctx context.Context, id string) error {
	if !validID(id) {
		return menu.ErrNotFound
	}
	return affectsOne(menu.ErrNotFound)(repo.exec.ExecContext(ctx, "DELETE FROM menu WHERE id = $1", id))
}
