package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/enrollment"
)

const enrollmentColumns = "id, student_name, date_of_birth, gender, age_group, address, parent_name, parent_phone, parent_email, " +
	"parent_job, status, note, certificate_ids, student_id, created_at, updated_at"

type enrollmentRow struct {
	ID             string         `db:"id"`
	StudentName    string         `db:"student_name"`
	DateOfBirth    core.Date      `db:"date_of_birth"`
	Gender         string         `db:"gender"`
	AgeGroup       string         `db:"age_group"`
	Address        string         `db:"address"`
	ParentName     string         `db:"parent_name"`
	ParentPhone    string         `db:"parent_phone"`
	ParentEmail    string         `db:"parent_email"`
	ParentJob      string         `db:"parent_job"`
	Status         string         `db:"status"`
	Note           string         `db:"note"`
	CertificateIDs pq.StringArray `db:"certificate_ids"`
	StudentID      null.String    `db:"student_id"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
}

func toEnrollmentRow(a enrollment.Application) enrollmentRow {
	certs := a.CertificateIDs
	if certs == nil {
		certs = []string{}
	}
	return enrollmentRow{
		ID:             a.ID,
		StudentName:    a.StudentName,
		DateOfBirth:    a.DateOfBirth,
		Gender:         a.Gender,
		AgeGroup:       a.AgeGroup,
		Address:        a.Address,
		ParentName:     a.ParentName,
		ParentPhone:    a.ParentPhone,
		ParentEmail:    a.ParentEmail,
		ParentJob:      a.ParentJob,
		Status:         a.Status,
		Note:           a.Note,
		CertificateIDs: certs,
		StudentID:      null.NewString(a.StudentID, a.StudentID != ""),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (r enrollmentRow) application() enrollment.Application {
	certs := []string(r.CertificateIDs)
	if certs == nil {
		certs = []string{}
	}
	return enrollment.Application{
		ID:             r.ID,
		StudentName:    r.StudentName,
		DateOfBirth:    r.DateOfBirth,
		Gender:         r.Gender,
		AgeGroup:       r.AgeGroup,
		Address:        r.Address,
		ParentName:     r.ParentName,
		ParentPhone:    r.ParentPhone,
		ParentEmail:    r.ParentEmail,
		ParentJob:      r.ParentJob,
		Status:         r.Status,
		Note:           r.Note,
		CertificateIDs: certs,
		StudentID:      r.StudentID.String,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type enrollmentRepository struct {
	exec core.DBExecutor
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(exec core.DBExecutor) enrollment.Repository {
	return &enrollmentRepository{exec: exec}
}

func (repo *enrollmentRepository) CreateApplication(ctx context.Context, a enrollment.Application) (enrollment.Application, error) {
	a.ID = uuid.New().String()
	stmt := `INSERT INTO enrollment (` + enrollmentColumns + `) VALUES (:id, :student_name, :date_of_birth, :gender, :age_group,
		:address, :parent_name, :parent_phone, :parent_email, :parent_job, :status, :note, :certificate_ids, :student_id, :created_at, :updated_at)`
	if _, err := repo.exec.NamedExecContext(ctx, stmt, toEnrollmentRow(a)); err != nil {
		return enrollment.Application{}, errors.Wrap(err, "inserting application")
	}
	return a, nil
}

func (repo *enrollmentRepository) QueryApplications(ctx context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]enrollment.Application, int, error) {
	var q query
	if filter != nil {
		q.search(filter.Search, "student_name", "parent_name", "parent_phone")
		if len(filter.Statuses) > 0 {
			q.and("status = ANY(?)", pq.Array(filter.Statuses))
		}
		if filter.AgeGroup != "" {
			q.and("age_group = ?", filter.AgeGroup)
		}
	}

	var rows []enrollmentRow
	total, err := selectPage(ctx, repo.exec, &rows, "enrollment", enrollmentColumns, q, ordering, enrollment.OrderingFields, paging)
	if err != nil {
		return nil, 0, err
	}
	apps := make([]enrollment.Application, 0, len(rows))
	for _, r := range rows {
		apps = append(apps, r.application())
	}
	return apps, total, nil
}

func (repo *enrollmentRepository) GetApplication(ctx context.Context, id string) (enrollment.Application, error) {
	if !validID(id) {
		return enrollment.Application{}, enrollment.ErrNotFound
	}
	var r enrollmentRow
	if err := get(ctx, repo.exec, &r, enrollment.ErrNotFound, "SELECT "+enrollmentColumns+" FROM enrollment WHERE id = $1", id); err != nil {
		return enrollment.Application{}, err
	}
	return r.application(), nil
}

func (repo *enrollmentRepository) UpdateApplication(ctx context.Context, a enrollment.Application) (enrollment.Application, error) {
	stmt := `UPDATE enrollment SET student_name = :student_name, date_of_birth = :date_of_birth, gender = :gender,
		age_group = :age_group, address = :address, parent_name = :parent_name, parent_phone = :parent_phone,
		parent_email = :parent_email, parent_job = :parent_job, status = :status, note = :note,
		certificate_ids = :certificate_ids, student_id = :student_id, updated_at = :updated_at WHERE id = :id`
	if err := affectsOne(enrollment.ErrNotFound)(repo.exec.NamedExecContext(ctx, stmt, toEnrollmentRow(a))); err != nil {
		return enrollment.Application{}, errors.Wrap(err, "updating application")
	}
	return a, nil
}

func (repo *enrollmentRepository) DeleteApplication(ctx context.Context, id string) error {
	if !validID(id) {
		return enrollment.ErrNotFound
	}
	return affectsOne(enrollment.ErrNotFound)(repo.exec.ExecContext(ctx, "DELETE FROM enrollment WHERE id = $1", id))
}
