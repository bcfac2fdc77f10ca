package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/student"
)

const studentColumns = "id, code, full_name, date_of_birth, gender, class_name, age_group, parent_name, parent_phone, parent_email, address, created_at, updated_at"

type studentRow struct {
	ID          string    `db:"id"`
	Code        string    `db:"code"`
	FullName    string    `db:"full_name"`
	DateOfBirth core.Date `db:"date_of_birth"`
	Gender      string    `db:"gender"`
	ClassName   string    `db:"class_name"`
	AgeGroup    string    `db:"age_group"`
	ParentName  string    `db:"parent_name"`
	ParentPhone string    `db:"parent_phone"`
	ParentEmail string    `db:"parent_email"`
	Address     string    `db:"address"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r studentRow) student() student.Student {
	return student.Student(r)
}

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(exec core.DBExecutor) student.Repository {
	return &studentRepository{exec: exec}
}

func (repo *studentRepository) CheckCodeUniqueness(ctx context.Context, code string, excluded ...student.Student) error {
	var q query
	q.and("lower(code) = lower(?)", code)
	for _, st := range excluded {
		q.and("id <> ?", st.ID)
	}
	var n int
	if err := repo.exec.GetContext(ctx, &n, rebind("SELECT count(*) FROM student"+q.where()), q.args...); err != nil {
		return errors.Wrap(err, "checking student code")
	}
	if n > 0 {
		return student.ErrCodeExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	st.ID = uuid.New().String()
	stmt := `INSERT INTO student (` + studentColumns + `) VALUES (:id, :code, :full_name, :date_of_birth, :gender, :class_name,
		:age_group, :parent_name, :parent_phone, :parent_email, :address, :created_at, :updated_at)`
	if _, err := repo.exec.NamedExecContext(ctx, stmt, studentRow(st)); err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrCodeExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return st, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]student.Student, int, error) {
	var q query
	if filter != nil {
		q.search(filter.Search, "full_name", "code")
		if filter.ClassName != "" {
			q.and("class_name = ?", filter.ClassName)
		}
		if filter.AgeGroup != "" {
			q.and("age_group = ?", filter.AgeGroup)
		}
		if filter.Gender != "" {
			q.and("gender = ?", filter.Gender)
		}
	}

	var rows []studentRow
	total, err := selectPage(ctx, repo.exec, &rows, "student", studentColumns, q, ordering, student.OrderingFields, paging)
	if err != nil {
		return nil, 0, err
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students, total, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	if !validID(id) {
		return student.Student{}, student.ErrNotFound
	}
	var r studentRow
	if err := get(ctx, repo.exec, &r, student.ErrNotFound, "SELECT "+studentColumns+" FROM student WHERE id = $1", id); err != nil {
		return student.Student{}, err
	}
	return r.student(), nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	stmt := `UPDATE student SET code = :code, full_name = :full_name, date_of_birth = :date_of_birth, gender = :gender,
		class_name = :class_name, age_group = :age_group, parent_name = :parent_name, parent_phone = :parent_phone,
		parent_email = :parent_email, address = :address, updated_at = :updated_at WHERE id = :id`
	if err := affectsOne(student.ErrNotFound)(repo.exec.NamedExecContext(ctx, stmt, studentRow(st))); err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrCodeExists
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	return st, nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	if !validID(id) {
		return student.ErrNotFound
	}
	return affectsOne(student.ErrNotFound)(repo.exec.ExecContext(ctx, "DELETE FROM student WHERE id = $1", id))
}
