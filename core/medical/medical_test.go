package medical

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/student"
)

type repoStub struct {
	certs map[string]Certificate
}

func (r *repoStub) CreateCertificate(_ context.Context, c Certificate) (Certificate, error) {
	c.ID = "c1"
	r.certs[c.ID] = c
	return c, nil
}

func (r *repoStub) QueryCertificates(context.Context, *QueryFilter, []core.DBOrdering, core.Paging) ([]Certificate, int, error) {
	return nil, 0, nil
}

func (r *repoStub) GetCertificate(_ context.Context, id string) (Certificate, error) {
	if c, ok := r.certs[id]; ok {
		return c, nil
	}
	return Certificate{}, ErrNotFound
}

func (r *repoStub) LatestCertificate(context.Context, string) (Certificate, error) {
	return Certificate{}, ErrNotFound
}

func (r *repoStub) UpdateCertificate(_ context.Context, c Certificate) (Certificate, error) {
	r.certs[c.ID] = c
	return c, nil
}

func (r *repoStub) DeleteCertificate(_ context.Context, id string) error {
	delete(r.certs, id)
	return nil
}

type studentsStub map[string]student.Student

func (s studentsStub) GetByID(_ context.Context, id string) (student.Student, error) {
	if st, ok := s[id]; ok {
		return st, nil
	}
	return student.Student{}, student.ErrNotFound
}

func TestService_DerivesBMI(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&repoStub{certs: make(map[string]Certificate)}, studentsStub{"st1": {ID: "st1"}, "st2": {ID: "st2"}})

	nc := NewCertificate{
		StudentID: "st1", ExaminedAt: core.NewDate(2024, time.October, 1),
		HeightCm: 98.5, WeightKg: 14.2, Conclusion: "Đủ sức khỏe",
	}
	c, err := svc.Create(ctx, nc)
	require.NoError(t, err)
	assert.Equal(t, 14.64, c.BMI)
	assert.Equal(t, BMINormal, View(c).BMICategory)

	nc.WeightKg = 20
	nc.StudentID = "st2"
	c, err = svc.Update(ctx, c, nc)
	require.NoError(t, err)
	assert.Equal(t, 20.61, c.BMI)
	assert.Equal(t, BMIObese, c.BMICategory())

	nc.StudentID = "unknown"
	_, err = svc.Create(ctx, nc)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError, got %v", err)
	assert.Equal(t, "student_id", vErr.Fields[0].Field)
}

func TestCertificate_BMICategory(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{bmi: 0, want: ""},
		{bmi: 13.9, want: BMIUnderweight},
		{bmi: 14, want: BMINormal},
		{bmi: 17.2, want: BMIOverweight},
		{bmi: 18.5, want: BMIObese},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Certificate{BMI: tt.bmi}.BMICategory(), "bmi %v", tt.bmi)
	}
}
