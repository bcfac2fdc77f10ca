package inmemdb

import (
	"context"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/curriculum"
)

type curriculumRepository struct {
	db *table[curriculum.Curriculum]
}

var _ curriculum.Repository = (*curriculumRepository)(nil)

func NewCurriculumRepository(db *DB) curriculum.Repository {
	return &curriculumRepository{db: db.curriculum}
}

func curriculumField(c curriculum.Curriculum, field string) interface{} {
	switch field {
	case "id":
		return c.ID
	case "name":
		return c.Name
	case "age_group":
		return c.AgeGroup
	case "school_year":
		return c.SchoolYear
	case "created_at":
		return c.CreatedAt
	}
	return nil
}

func (repo *curriculumRepository) CreateCurriculum(_ context.Context, c curriculum.Curriculum) (curriculum.Curriculum, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = newID()
	repo.db.put(c.ID, c)
	return c, nil
}

func (repo *curriculumRepository) QueryCurricula(_ context.Context, filter *curriculum.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]curriculum.Curriculum, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	curricula, total := selectRows(repo.db, filter.Match, ordering, paging, curriculumField)
	return curricula, total, nil
}

func (repo *curriculumRepository) GetCurriculum(_ context.Context, id string) (curriculum.Curriculum, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.get(id); ok {
		return c, nil
	}
	return curriculum.Curriculum{}, curriculum.ErrNotFound
}

func (repo *curriculumRepository) UpdateCurriculum(_ context.Context, c curriculum.Curriculum) (curriculum.Curriculum, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[c.ID]; !ok {
		return curriculum.Curriculum{}, curriculum.ErrNotFound
	}
	repo.db.put(c.ID, c)
	return c, nil
}

func (repo *curriculumRepository) DeleteCurriculum(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return curriculum.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
