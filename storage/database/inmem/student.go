package inmemdb

import (
	"context"
	"strings"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/student"
)

type studentRepository struct {
	db *table[student.Student]
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func studentField(st student.Student, field string) interface{} {
	switch field {
	case "id":
		return st.ID
	case "code":
		return st.Code
	case "full_name":
		return st.FullName
	case "date_of_birth":
		return st.DateOfBirth
	case "class_name":
		return st.ClassName
	case "created_at":
		return st.CreatedAt
	}
	return nil
}

func (repo *studentRepository) CheckCodeUniqueness(_ context.Context, code string, excluded ...student.Student) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

outer:
	for _, st := range repo.db.rows {
		if !strings.EqualFold(st.Code, code) {
			continue
		}
		for _, ex := range excluded {
			if ex.ID == st.ID {
				continue outer
			}
		}
		return student.ErrCodeExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	st.ID = newID()
	repo.db.put(st.ID, st)
	return st, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]student.Student, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students, total := selectRows(repo.db, filter.Match, ordering, paging, studentField)
	return students, total, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if st, ok := repo.db.get(id); ok {
		return st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, st student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[st.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	repo.db.put(st.ID, st)
	return st, nil
}

func (repo *studentRepository) DeleteStudent(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return student.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
