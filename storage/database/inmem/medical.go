package inmemdb

import (
	"context"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/medical"
)

type medicalRepository struct {
	db *table[medical.Certificate]
}

var _ medical.Repository = (*medicalRepository)(nil)

func NewMedicalRepository(db *DB) medical.Repository {
	return &medicalRepository{db: db.certificate}
}

func medicalField(c medical.Certificate, field string) interface{} {
	switch field {
	case "id":
		return c.ID
	case "examined_at":
		return c.ExaminedAt
	case "bmi":
		return c.BMI
	case "height_cm":
		return c.HeightCm
	case "weight_kg":
		return c.WeightKg
	case "created_at":
		return c.CreatedAt
	}
	return nil
}

func (repo *medicalRepository) CreateCertificate(_ context.Context, c medical.Certificate) (medical.Certificate, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = newID()
	repo.db.put(c.ID, c)
	return c, nil
}

func (repo *medicalRepository) QueryCertificates(_ context.Context, filter *medical.QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]medical.Certificate, int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows, total := selectRows(repo.db, filter.Match, ordering, paging, medicalField)
	return rows, total, nil
}

func (repo *medicalRepository) GetCertificate(_ context.Context, id string) (medical.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.get(id); ok {
		return c, nil
	}
	return medical.Certificate{}, medical.ErrNotFound
}

func (repo *medicalRepository) LatestCertificate(_ context.Context, studentID string) (medical.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	filter := &medical.QueryFilter{StudentID: studentID}
	ordering := []core.DBOrdering{{Field: "examined_at"}, {Field: "created_at"}}
	rows, _ := selectRows(repo.db, filter.Match, ordering, core.Paging{Page: 1, PageSize: 1}, medicalField)
	if len(rows) == 0 {
		return medical.Certificate{}, medical.ErrNotFound
	}
	return rows[0], nil
}

func (repo *medicalRepository) UpdateCertificate(_ context.Context, c medical.Certificate) (medical.Certificate, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[c.ID]; !ok {
		return medical.Certificate{}, medical.ErrNotFound
	}
	repo.db.put(c.ID, c)
	return c, nil
}

func (repo *medicalRepository) DeleteCertificate(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[id]; !ok {
		return medical.ErrNotFound
	}
	delete(repo.db.rows, id)
	return nil
}
