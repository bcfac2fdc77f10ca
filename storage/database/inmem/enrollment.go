package inmemdb

import (
	"context"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/enrollment"
)

type enrollmentRepository struct {
	db *table[enrollment.Application]
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db.enrollment}
}

func enrollmentField(a enrollment.Application, field string) interface{} {
	switch field {
	case "id":
		return a.ID
	case "student_name":
		return a.StudentName
	case "date_of_birth":
		return a.DateOfBirth
	case "status":
		return a.Status
	case "created_at":
		return a.CreatedAt
	case "updated_at":
		return a.UpdatedAt
	}
	return nil
}

func (repo *enrollmentRepository) CreateApplication(_ context.Context, a enrollment.Application) (enrollment.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	a.ID = newID()
	repo.db.put(a.ID, a)
	return a, nil
}

func (repo *enrollmentRepository) QueryApplications(_ context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]enrollment.Application, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows, total := selectRows(repo.db, filter.Match, ordering, paging, enrollmentField)
	return rows, total, nil
}

func (repo *enrollmentRepository) GetApplication(_ context.Context, id string) (enrollment.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if a, ok := repo.db.get(id); ok {
		return a, nil
	}
	return enrollment.Application{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) UpdateApplication(_ context.Context, a enrollment.Application) (enrollment.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[a.ID]; !ok {
		return enrollment.Application{}, enrollment.ErrNotFound
	}
	a.Actions = nil
	repo.db.put(a.ID, a)
	return a, nil
}

func (repo *enrollmentRepository) DeleteApplication(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return enrollment.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
