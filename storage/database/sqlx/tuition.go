package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/tuition"
)

const (
	serviceColumns = "id, name, price, unit, description, is_active, created_at, updated_at"
	tuitionColumns = "id, student_id, month, items, amount, status, payment_ref, payment_url, paid_at, created_at, updated_at"
)

type serviceRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Price       int64     `db:"price"`
	Unit        string    `db:"unit"`
	Description string    `db:"description"`
	IsActive    bool      `db:"is_active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type tuitionRow struct {
	ID         string         `db:"id"`
	StudentID  string         `db:"student_id"`
	Month      string         `db:"month"`
	Items      types.JSONText `db:"items"`
	Amount     int64          `db:"amount"`
	Status     string         `db:"status"`
	PaymentRef null.String    `db:"payment_ref"`
	PaymentURL null.String    `db:"payment_url"`
	PaidAt     null.Time      `db:"paid_at"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}

func toTuitionRow(t tuition.Tuition) (tuitionRow, error) {
	if t.Items == nil {
		t.Items = []tuition.Item{}
	}
	items, err := toJSON(t.Items)
	if err != nil {
		return tuitionRow{}, err
	}
	return tuitionRow{
		ID:         t.ID,
		StudentID:  t.StudentID,
		Month:      t.Month,
		Items:      items,
		Amount:     t.Amount,
		Status:     t.Status,
		PaymentRef: null.NewString(t.PaymentRef, t.PaymentRef != ""),
		PaymentURL: null.NewString(t.PaymentURL, t.PaymentURL != ""),
		PaidAt:     null.TimeFromPtr(t.PaidAt),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}, nil
}

func (r tuitionRow) tuition() (tuition.Tuition, error) {
	t := tuition.Tuition{
		ID:         r.ID,
		StudentID:  r.StudentID,
		Month:      r.Month,
		Items:      []tuition.Item{},
		Amount:     r.Amount,
		Status:     r.Status,
		PaymentRef: r.PaymentRef.String,
		PaymentURL: r.PaymentURL.String,
		PaidAt:     r.PaidAt.Ptr(),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	err := fromJSON(r.Items, &t.Items)
	return t, err
}

type tuitionRepository struct {
	exec core.DBExecutor
}

var _ tuition.Repository = (*tuitionRepository)(nil)

func NewTuitionRepository(exec core.DBExecutor) tuition.Repository {
	return &tuitionRepository{exec: exec}
}

func (repo *tuitionRepository) CreateSchoolService(ctx context.Context, s tuition.SchoolService) (tuition.SchoolService, error) {
	s.ID = uuid.New().String()
	stmt := `INSERT INTO service (` + serviceColumns + `) VALUES (:id, :name, :price, :unit, :description, :is_active, :created_at, :updated_at)`
	if _, err := repo.exec.NamedExecContext(ctx, stmt, serviceRow(s)); err != nil {
		return tuition.SchoolService{}, errors.Wrap(err, "inserting service")
	}
	return s, nil
}

func (repo *tuitionRepository) QuerySchoolServices(ctx context.Context, filter *tuition.ServiceFilter, ordering []core.DBOrdering, paging core.Paging) ([]tuition.SchoolService, int, error) {
	var q query
	if filter != nil {
		q.search(filter.Search, "name")
		if filter.IsActive != nil {
			q.and("is_active = ?", *filter.IsActive)
		}
	}

	var rows []serviceRow
	total, err := selectPage(ctx, repo.exec, &rows, "service", serviceColumns, q, ordering, tuition.ServiceOrderingFields, paging)
	if err != nil {
		return nil, 0, err
	}
	services := make([]tuition.SchoolService, 0, len(rows))
	for _, r := range rows {
		services = append(services, tuition.SchoolService(r))
	}
	return services, total, nil
}

func (repo *tuitionRepository) GetSchoolService(ctx context.Context, id string) (tuition.SchoolService, error) {
	if !validID(id) {
		return tuition.SchoolService{}, tuition.ErrServiceNotFound
	}
	var r serviceRow
	if err := get(ctx, repo.exec, &r, tuition.ErrServiceNotFound, "SELECT "+serviceColumns+" FROM service WHERE id = $1", id); err != nil {
		return tuition.SchoolService{}, err
	}
	return tuition.SchoolService(r), nil
}

func (repo *tuitionRepository) UpdateSchoolService(ctx context.Context, s tuition.SchoolService) (tuition.SchoolService, error) {
	stmt := `UPDATE service SET name = :name, price = :price, unit = :unit, description = :description,
		is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if err := affectsOne(tuition.ErrServiceNotFound)(repo.exec.NamedExecContext(ctx, stmt, serviceRow(s))); err != nil {
		return tuition.SchoolService{}, errors.Wrap(err, "updating service")
	}
	return s, nil
}

func (repo *tuitionRepository) DeleteSchoolService(ctx context.Context, id string) error {
	if !validID(id) {
		return tuition.ErrServiceNotFound
	}
	return affectsOne(tuition.ErrServiceNotFound)(repo.exec.ExecContext(ctx, "DELETE FROM service WHERE id = $1", id))
}

func (repo *tuitionRepository) CreateTuition(ctx context.Context, t tuition.Tuition) (tuition.Tuition, error) {
	t.ID = uuid.New().String()
	row, err := toTuitionRow(t)
	if err != nil {
		return tuition.Tuition{}, err
	}
	stmt := `INSERT INTO tuition (` + tuitionColumns + `) VALUES (:id, :student_id, :month, :items, :amount, :status,
		:payment_ref, :payment_url, :paid_at, :created_at, :updated_at)`
	if _, err = repo.exec.NamedExecContext(ctx, stmt, row); err != nil {
		if isUniqueViolation(err) {
			return tuition.Tuition{}, tuition.ErrTuitionExists
		}
		return tuition.Tuition{}, errors.Wrap(err, "inserting tuition")
	}
	return t, nil
}

func (repo *tuitionRepository) QueryTuitions(ctx context.Context, filter *tuition.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]tuition.Tuition, int, error) {
	var q query
	if filter != nil {
		if filter.StudentID != "" {
			if !validID(filter.StudentID) {
				return []tuition.Tuition{}, 0, nil
			}
			q.and("student_id = ?", filter.StudentID)
		}
		if filter.Month != "" {
			q.and("month = ?", filter.Month)
		}
		if len(filter.Statuses) > 0 {
			q.and("status = ANY(?)", pq.Array(filter.Statuses))
		}
	}

	var rows []tuitionRow
	total, err := selectPage(ctx, repo.exec, &rows, "tuition", tuitionColumns, q, ordering, tuition.OrderingFields, paging)
	if err != nil {
		return nil, 0, err
	}
	tuitions := make([]tuition.Tuition, 0, len(rows))
	for _, r := range rows {
		t, err := r.tuition()
		if err != nil {
			return nil, 0, err
		}
		tuitions = append(tuitions, t)
	}
	return tuitions, total, nil
}

func (repo *tuitionRepository) GetTuition(ctx context.Context, id string) (tuition.Tuition, error) {
	if !validID(id) {
		return tuition.Tuition{}, tuition.ErrNotFound
	}
	var r tuitionRow
	if err := get(ctx, repo.exec, &r, tuition.ErrNotFound, "SELECT "+tuitionColumns+" FROM tuition WHERE id = $1", id); err != nil {
		return tuition.Tuition{}, err
	}
	return r.tuition()
}

func (repo *tuitionRepository) UpdateTuition(ctx context.Context, t tuition.Tuition) (tuition.Tuition, error) {
	row, err := toTuitionRow(t)
	if err != nil {
		return tuition.Tuition{}, err
	}
	stmt := `UPDATE tuition SET items = :items, amount = :amount, status = :status, payment_ref = :payment_ref,
		payment_url = :payment_url, paid_at = :paid_at, updated_at = :updated_at WHERE id = :id`
	if err = affectsOne(tuition.ErrNotFound)(repo.exec.NamedExecContext(ctx, stmt, row)); err != nil {
		return tuition.Tuition{}, errors.Wrap(err, "updating tuition")
	}
	t.Actions = nil
	return t, nil
}

func (repo *tuitionRepository) DeleteTuition(ctx context.Context, id string) error {
	if !validID(id) {
		return tuition.ErrNotFound
	}
	return affectsOne(tuition.ErrNotFound)(repo.exec.ExecContext(ctx, "DELETE FROM tuition WHERE id = $1", id))
}
