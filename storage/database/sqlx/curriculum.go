package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/curriculum"
)

const curriculumColumns = "id, name, age_group, school_year, description, activities, created_at, updated_at"

type curriculumRow struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	AgeGroup    string         `db:"age_group"`
	SchoolYear  string         `db:"school_year"`
	Description string         `db:"description"`
	Activities  types.JSONText `db:"activities"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func toCurriculumRow(c curriculum.Curriculum) (curriculumRow, error) {
	if c.Activities == nil {
		c.Activities = []curriculum.Activity{}
	}
	activities, err := toJSON(c.Activities)
	if err != nil {
		return curriculumRow{}, err
	}
	return curriculumRow{
		ID:          c.ID,
		Name:        c.Name,
		AgeGroup:    c.AgeGroup,
		SchoolYear:  c.SchoolYear,
		Description: c.Description,
		Activities:  activities,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}, nil
}

func (r curriculumRow) curriculum() (curriculum.Curriculum, error) {
	c := curriculum.Curriculum{
		ID:          r.ID,
		Name:        r.Name,
		AgeGroup:    r.AgeGroup,
		SchoolYear:  r.SchoolYear,
		Description: r.Description,
		Activities:  []curriculum.Activity{},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	err := fromJSON(r.Activities, &c.Activities)
	return c, err
}

type curriculumRepository struct {
	exec core.DBExecutor
}

var _ curriculum.Repository = (*curriculumRepository)(nil)

func NewCurriculumRepository(exec core.DBExecutor) curriculum.Repository {
	return &curriculumRepository{exec: exec}
}

func (repo *curriculumRepository) CreateCurriculum(ctx context.Context, c curriculum.Curriculum) (curriculum.Curriculum, error) {
	c.ID = uuid.New().String()
	row, err := toCurriculumRow(c)
	if err != nil {
		return curriculum.Curriculum{}, err
	}
	stmt := `INSERT INTO curriculum (` + curriculumColumns + `) VALUES (:id, :name, :age_group, :school_year, :description, :activities, :created_at, :updated_at)`
	if _, err = repo.exec.NamedExecContext(ctx, stmt, row); err != nil {
		return curriculum.Curriculum{}, errors.Wrap(err, "inserting curriculum")
	}
	return c, nil
}

func (repo *curriculumRepository) QueryCurricula(ctx context.Context, filter *curriculum.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]curriculum.Curriculum, int, error) {
	var q query
	if filter != nil {
		q.search(filter.Search, "name")
		if filter.AgeGroup != "" {
			q.and("age_group = ?", filter.AgeGroup)
		}
		if filter.SchoolYear != "" {
			q.and("school_year = ?", filter.SchoolYear)
		}
	}

	var rows []curriculumRow
	total, err := selectPage(ctx, repo.exec, &rows, "curriculum", curriculumColumns, q, ordering, curriculum.OrderingFields, paging)
	if err != nil {
		return nil, 0, err
	}
	curricula := make([]curriculum.Curriculum, 0, len(rows))
	for _, r := range rows {
		c, err := r.curriculum()
		if err != nil {
			return nil, 0, err
		}
		curricula = append(curricula, c)
	}
	return curricula, total, nil
}

func (repo *curriculumRepository) GetCurriculum(ctx context.Context, id string) (curriculum.Curriculum, error) {
	if !validID(id) {
		return curriculum.Curriculum{}, curriculum.ErrNotFound
	}
	var r curriculumRow
	if err := get(ctx, repo.exec, &r, curriculum.ErrNotFound, "SELECT "+curriculumColumns+" FROM curriculum WHERE id = $1", id); err != nil {
		return curriculum.Curriculum{}, err
	}
	return r.curriculum()
}

func (repo *curriculumRepository) UpdateCurriculum(ctx context.Context, c curriculum.Curriculum) (curriculum.Curriculum, error) {
	row, err := toCurriculumRow(c)
	if err != nil {
		return curriculum.Curriculum{}, err
	}
	stmt := `UPDATE curriculum SET name = :name, age_group = :age_group, school_year = :school_year, description = :description,
		activities = :activities, updated_at = :updated_at WHERE id = :id`
	if err = affectsOne(curriculum.ErrNotFound)(repo.exec.NamedExecContext(ctx, stmt, row)); err != nil {
		return curriculum.Curriculum{}, errors.Wrap(err, "updating curriculum")
	}
	return c, nil
}

func (repo *curriculumRepository) DeleteCurriculum(ctx context.Context, id string) error {
	if !validID(id) {
		return curriculum.ErrNotFound
	}
	return affectsOne(curriculum.ErrNotFound)(repo.exec.ExecContext(ctx, "DELETE FROM curriculum WHERE id = $1", id))
}
