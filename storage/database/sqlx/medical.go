package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/medical"
)

const certificateColumns = "id, student_id, examined_at, doctor, height_cm, weight_kg, bmi, eyes, ent, teeth, skin, " +
	"heart_lungs, other, conclusion, created_at, updated_at"

type certificateRow struct {
	ID         string    `db:"id"`
	StudentID  string    `db:"student_id"`
	ExaminedAt core.Date `db:"examined_at"`
	Doctor     string    `db:"doctor"`
	HeightCm   float64   `db:"height_cm"`
	WeightKg   float64   `db:"weight_kg"`
	BMI        float64   `db:"bmi"`
	Eyes       string    `db:"eyes"`
	ENT        string    `db:"ent"`
	Teeth      string    `db:"teeth"`
	Skin       string    `db:"skin"`
	HeartLungs string    `db:"heart_lungs"`
	Other      string    `db:"other"`
	Conclusion string    `db:"conclusion"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type medicalRepository struct {
	exec core.DBExecutor
}

var _ medical.Repository = (*medicalRepository)(nil)

func NewMedicalRepository(exec core.DBExecutor) medical.Repository {
	return &medicalRepository{exec: exec}
}

func (repo *medicalRepository) CreateCertificate(ctx context.Context, c medical.Certificate) (medical.Certificate, error) {
	c.ID = uuid.New().String()
	stmt := `INSERT INTO health_certificate (` + certificateColumns + `) VALUES (:id, :student_id, :examined_at, :doctor,
		:height_cm, :weight_kg, :bmi, :eyes, :ent, :teeth, :skin, :heart_lungs, :other, :conclusion, :created_at, :updated_at)`
	if _, err := repo.exec.NamedExecContext(ctx, stmt, certificateRow(c)); err != nil {
		return medical.Certificate{}, errors.Wrap(err, "inserting health certificate")
	}
	return c, nil
}

func (repo *medicalRepository) QueryCertificates(ctx context.Context, filter *medical.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]medical.Certificate, int, error) {
	var q query
	if filter != nil {
		if filter.StudentID != "" {
			if !validID(filter.StudentID) {
				return []medical.Certificate{}, 0, nil
			}
			q.and("student_id = ?", filter.StudentID)
		}
		if !filter.From.IsZero() {
			q.and("examined_at >= ?", filter.From)
		}
		if !filter.To.IsZero() {
			q.and("examined_at <= ?", filter.To)
		}
	}

	var rows []certificateRow
	total, err := selectPage(ctx, repo.exec, &rows, "health_certificate", certificateColumns, q, ordering, medical.OrderingFields, paging)
	if err != nil {
		return nil, 0, err
	}
	certs := make([]medical.Certificate, 0, len(rows))
	for _, r := range rows {
		certs = append(certs, medical.Certificate(r))
	}
	return certs, total, nil
}

func (repo *medicalRepository) GetCertificate(ctx context.Context, id string) (medical.Certificate, error) {
	if !validID(id) {
		return medical.Certificate{}, medical.ErrNotFound
	}
	var r certificateRow
	if err := get(ctx, repo.exec, &r, medical.ErrNotFound, "SELECT "+certificateColumns+" FROM health_certificate WHERE id = $1", id); err != nil {
		return medical.Certificate{}, err
	}
	return medical.Certificate(r), nil
}

func (repo *medicalRepository) LatestCertificate(ctx context.Context, studentID string) (medical.Certificate, error) {
	if !validID(studentID) {
		return medical.Certificate{}, medical.ErrNotFound
	}
	var r certificateRow
	stmt := "SELECT " + certificateColumns + " FROM health_certificate WHERE student_id = $1 ORDER BY examined_at DESC, created_at DESC LIMIT 1"
	if err := get(ctx, repo.exec, &r, medical.ErrNotFound, stmt, studentID); err != nil {
		return medical.Certificate{}, err
	}
	return medical.Certificate(r), nil
}

func (repo *medicalRepository) UpdateCertificate(ctx context.Context, c medical.Certificate) (medical.Certificate, error) {
	stmt := `UPDATE health_certificate SET student_id = :student_id, examined_at = :examined_at, doctor = :doctor,
		height_cm = :height_cm, weight_kg = :weight_kg, bmi = :bmi, eyes = :eyes, ent = :ent, teeth = :teeth, skin = :skin,
		heart_lungs = :heart_lungs, other = :other, conclusion = :conclusion, updated_at = :updated_at WHERE id = :id`
	if err := affectsOne(medical.ErrNotFound)(repo.exec.NamedExecContext(ctx, stmt, certificateRow(c))); err != nil {
		return medical.Certificate{}, errors.Wrap(err, "updating health certificate")
	}
	return c, nil
}

func (repo *medicalRepository) DeleteCertificate(ctx context.Context, id string) error {
	if !validID(id) {
		return medical.ErrNotFound
	}
	return affectsOne(medical.ErrNotFound)(repo.exec.ExecContext(ctx, "DELETE FROM health_certificate WHERE id = $1", id))
}
