package inmemdb

import (
	"context"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/tuition"
)

type tuitionRepository struct {
	services *table[tuition.SchoolService]
	tuitions *table[tuition.Tuition]
}

var _ tuition.Repository = (*tuitionRepository)(nil)

func NewTuitionRepository(db *DB) tuition.Repository {
	return &tuitionRepository{services: db.service, tuitions: db.tuition}
}

func serviceField(s tuition.SchoolService, field string) interface{} {
	switch field {
	case "id":
		return s.ID
	case "name":
		return s.Name
	case "price":
		return s.Price
	case "created_at":
		return s.CreatedAt
	}
	return nil
}

func tuitionField(t tuition.Tuition, field string) interface{} {
	switch field {
	case "id":
		return t.ID
	case "month":
		return t.Month
	case "amount":
		return t.Amount
	case "status":
		return t.Status
	case "paid_at":
		return t.PaidAt
	case "created_at":
		return t.CreatedAt
	}
	return nil
}

func (repo *tuitionRepository) CreateSchoolService(_ context.Context, s tuition.SchoolService) (tuition.SchoolService, error) {
	repo.services.Lock()
	defer repo.services.Unlock()

	s.ID = newID()
	repo.services.put(s.ID, s)
	return s, nil
}

func (repo *tuitionRepository) QuerySchoolServices(_ context.Context, filter *tuition.ServiceFilter, ordering []core.DBOrdering, paging core.Paging) ([]tuition.SchoolService, int, error) {
	repo.services.RLock()
	defer repo.services.RUnlock()

	rows, total := selectRows(repo.services, filter.Match, ordering, paging, serviceField)
	return rows, total, nil
}

func (repo *tuitionRepository) GetSchoolService(_ context.Context, id string) (tuition.SchoolService, error) {
	repo.services.RLock()
	defer repo.services.RUnlock()

	if s, ok := repo.services.get(id); ok {
		return s, nil
	}
	return tuition.SchoolService{}, tuition.ErrServiceNotFound
}

func (repo *tuitionRepository) UpdateSchoolService(_ context.Context, s tuition.SchoolService) (tuition.SchoolService, error) {
	repo.services.Lock()
	defer repo.services.Unlock()

	if _, ok := repo.services.rows[s.ID]; !ok {
		return tuition.SchoolService{}, tuition.ErrServiceNotFound
	}
	repo.services.put(s.ID, s)
	return s, nil
}

func (repo *tuitionRepository) DeleteSchoolService(_ context.Context, id string) error {
	repo.services.Lock()
	defer repo.services.Unlock()

	if _, ok := repo.services.rows[id]; !ok {
		return tuition.ErrServiceNotFound
	}
	delete(repo.services.rows, id)
	return nil
}

func (repo *tuitionRepository) CreateTuition(_ context.Context, t tuition.Tuition) (tuition.Tuition, error) {
	repo.tuitions.Lock()
	defer repo.tuitions.Unlock()

	for _, other := range repo.tuitions.rows {
		if other.StudentID == t.StudentID && other.Month == t.Month {
			return tuition.Tuition{}, tuition.ErrTuitionExists
		}
	}
	t.ID = newID()
	t.Actions = nil
	repo.tuitions.put(t.ID, t)
	return t, nil
}

func (repo *tuitionRepository) QueryTuitions(_ context.Context, filter *tuition.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]tuition.Tuition, int, error) {
	repo.tuitions.RLock()
	defer repo.tuitions.RUnlock()

	rows, total := selectRows(repo.tuitions, filter.Match, ordering, paging, tuitionField)
	return rows, total, nil
}

func (repo *tuitionRepository) GetTuition(_ context.Context, id string) (tuition.Tuition, error) {
	repo.tuitions.RLock()
	defer repo.tuitions.RUnlock()

	if t, ok := repo.tuitions.get(id); ok {
		return t, nil
	}
	return tuition.Tuition{}, tuition.ErrNotFound
}

func (repo *tuitionRepository) UpdateTuition(_ context.Context, t tuition.Tuition) (tuition.Tuition, error) {
	repo.tuitions.Lock()
	defer repo.tuitions.Unlock()

	if _, ok := repo.tuitions.rows[t.ID]; !ok {
		return tuition.Tuition{}, tuition.ErrNotFound
	}
	t.Actions = nil
	repo.tuitions.put(t.ID, t)
	return t, nil
}

func (repo *tuitionRepository) DeleteTuition(_ context.Context, id string) error {
	repo.tuitions.Lock()
	defer repo.tuitions.Unlock()

	if _, ok := repo.tuitions.rows[id]; !ok {
		return tuition.ErrNotFound
	}
	delete(repo.tuitions.rows, id)
	return nil
}
