package student

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
)

var (
	// errors
	ErrNotFound   = errors.New("student not found")
	ErrCodeExists = errors.New("a student with this code already exists")
)

type (
	Repository interface {
		// CheckCodeUniqueness returns ErrCodeExists when code is taken by a Student not in excluded.
		CheckCodeUniqueness(ctx context.Context, code string, excluded ...Student) error
		CreateStudent(ctx context.Context, st Student) (Student, error)
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Student, int, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
	}

	Service interface {
		CheckUniqueness(ctx context.Context, code string, excluded ...Student) error
		Create(ctx context.Context, ns NewStudent) (Student, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Student, int, error)
		GetByID(ctx context.Context, id string) (Student, error)
		Update(ctx context.Context, st Student, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(ctx context.Context, code string, excluded ...Student) error {
	if err := svc.repo.CheckCodeUniqueness(ctx, code, excluded...); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: ErrCodeExists.Error()})
		}
		return errors.Wrap(err, "checking student code uniqueness")
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := core.NowFunc().UTC()
	st := Student{CreatedAt: now, UpdatedAt: now}
	apply(&st, ns)
	return svc.repo.CreateStudent(ctx, st)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Student, int, error) {
	return svc.repo.QueryStudents(ctx, filter, ordering, paging)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *service) Update(ctx context.Context, st Student, us UpdateStudent) (Student, error) {
	apply(&st, NewStudent(us))
	st.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateStudent(ctx, st)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}

func apply(st *Student, data NewStudent) {
	st.Code = data.Code
	st.FullName = data.FullName
	st.DateOfBirth = data.DateOfBirth
	st.Gender = data.Gender
	st.ClassName = data.ClassName
	st.AgeGroup = data.AgeGroup
	st.ParentName = data.ParentName
	st.ParentPhone = data.ParentPhone
	st.ParentEmail = data.ParentEmail
	st.Address = data.Address
}
