package medical

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/student"
)

var ErrNotFound = errors.New("health certificate not found")

type (
	Repository interface {
		CreateCertificate(ctx context.Context, c Certificate) (Certificate, error)
		QueryCertificates(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Certificate, int, error)
		GetCertificate(ctx context.Context, id string) (Certificate, error)
		// LatestCertificate returns the most recent examination of a student.
		LatestCertificate(ctx context.Context, studentID string) (Certificate, error)
		UpdateCertificate(ctx context.Context, c Certificate) (Certificate, error)
		DeleteCertificate(ctx context.Context, id string) error
	}

	StudentGetter interface {
		GetByID(ctx context.Context, id string) (student.Student, error)
	}

	Service interface {
		Create(ctx context.Context, nc NewCertificate) (Certificate, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Certificate, int, error)
		GetByID(ctx context.Context, id string) (Certificate, error)
		Latest(ctx context.Context, studentID string) (Certificate, error)
		Update(ctx context.Context, c Certificate, nc NewCertificate) (Certificate, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo     Repository
		students StudentGetter
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, students StudentGetter) Service {
	return &service{repo: repo, students: students}
}

func (svc *service) checkStudent(ctx context.Context, id string) error {
	if _, err := svc.students.GetByID(ctx, id); err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return core.NewValidationError(err, core.FieldError{Field: "student_id", Error: "unknown student"})
		}
		return errors.Wrap(err, "finding student")
	}
	return nil
}

// Create records an examination; the BMI is derived from the measurements.
func (svc *service) Create(ctx context.Context, nc NewCertificate) (Certificate, error) {
	if err := svc.checkStudent(ctx, nc.StudentID); err != nil {
		return Certificate{}, err
	}
	now := core.NowFunc().UTC()
	c := Certificate{CreatedAt: now, UpdatedAt: now}
	apply(&c, nc)
	return svc.repo.CreateCertificate(ctx, c)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Certificate, int, error) {
	return svc.repo.QueryCertificates(ctx, filter, ordering, paging)
}

func (svc *service) GetByID(ctx context.Context, id string) (Certificate, error) {
	return svc.repo.GetCertificate(ctx, id)
}

func (svc *service) Latest(ctx context.Context, studentID string) (Certificate, error) {
	return svc.repo.LatestCertificate(ctx, studentID)
}

func (svc *service) Update(ctx context.Context, c Certificate, nc NewCertificate) (Certificate, error) {
	if nc.StudentID != c.StudentID {
		if err := svc.checkStudent(ctx, nc.StudentID); err != nil {
			return Certificate{}, err
		}
	}
	apply(&c, nc)
	c.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateCertificate(ctx, c)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCertificate(ctx, id)
}
