package student

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/schoolops/core"
)

type repoStub struct{ students map[string]Student }

func (s *repoStub) CheckCodeUniqueness(_ context.Context, code string, excluded ...Student) error {
	for _, st := range s.students {
		if !strings.EqualFold(st.Code, code) {
			continue
		}
		for _, ex := range excluded {
			if ex.ID == st.ID {
				return nil
			}
		}
		return ErrCodeExists
	}
	return nil
}

func (s *repoStub) CreateStudent(_ context.Context, st Student) (Student, error) {
	st.ID = "st" + st.Code
	s.students[st.ID] = st
	return st, nil
}

func (s *repoStub) QueryStudents(_ context.Context, filter *QueryFilter, _ []core.DBOrdering, _ core.Paging) ([]Student, int, error) {
	res := make([]Student, 0)
	for _, st := range s.students {
		if filter.Match(st) {
			res = append(res, st)
		}
	}
	return res, len(res), nil
}

func (s *repoStub) GetStudent(_ context.Context, id string) (Student, error) {
	if st, ok := s.students[id]; ok {
		return st, nil
	}
	return Student{}, ErrNotFound
}

func (s *repoStub) UpdateStudent(_ context.Context, st Student) (Student, error) {
	s.students[st.ID] = st
	return st, nil
}

func (s *repoStub) DeleteStudent(_ context.Context, id string) error {
	delete(s.students, id)
	return nil
}

func TestNewStudent_Validate(t *testing.T) {
	ctx := context.Background()
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	svc := NewService(&repoStub{students: map[string]Student{}})
	existing, err := svc.Create(ctx, NewStudent{Code: "HS001", FullName: "Nguyễn An", Gender: GenderMale})
	require.NoError(t, err)

	valid := func() NewStudent {
		return NewStudent{
			Code:        "  HS002 ",
			FullName:    "Trần Bình",
			DateOfBirth: core.NewDate(2020, time.March, 2),
			Gender:      GenderFemale,
			AgeGroup:    "3-4 tuổi",
			ParentEmail: " Me.Binh@Example.com ",
		}
	}

	ns := valid()
	require.NoError(t, ns.Validate(ctx, validate, svc))
	assert.Equal(t, "HS002", ns.Code)
	assert.Equal(t, "me.binh@example.com", ns.ParentEmail)

	tests := []struct {
		name    string
		mutate  func(ns *NewStudent)
		wantErr map[string]string
	}{
		{
			name:    "missing birth date",
			mutate:  func(ns *NewStudent) { ns.DateOfBirth = core.Date{} },
			wantErr: map[string]string{"date_of_birth": "this field is required"},
		},
		{
			name:    "invalid code",
			mutate:  func(ns *NewStudent) { ns.Code = "HS-002" },
			wantErr: map[string]string{"code": "only alphanumeric characters and underscores are allowed"},
		},
		{
			name:    "unknown gender",
			mutate:  func(ns *NewStudent) { ns.Gender = "X" },
			wantErr: map[string]string{"gender": "gender must be one of [Nam Nữ]"},
		},
		{
			name:    "invalid age group",
			mutate:  func(ns *NewStudent) { ns.AgeGroup = "7 tuổi" },
			wantErr: map[string]string{"age_group": "invalid age group"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := valid()
			tt.mutate(&ns)
			err := ns.Validate(ctx, validate, svc)
			vErrs, ok := err.(validator.ValidationErrors)
			if !assert.True(t, ok, "want validator.ValidationErrors, got %v", err) {
				return
			}
			got := make(map[string]string, len(vErrs))
			for _, fe := range vErrs {
				got[fe.Field()] = fe.Translate(translator)
			}
			assert.Equal(t, tt.wantErr, got)
		})
	}

	t.Run("duplicate code", func(t *testing.T) {
		ns := valid()
		ns.Code = "hs001"
		err := ns.Validate(ctx, validate, svc)
		var vErr *core.ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, []core.FieldError{{Field: "code", Error: ErrCodeExists.Error()}}, vErr.Fields)
	})

	t.Run("update keeps its own code", func(t *testing.T) {
		us := UpdateStudent(valid())
		us.Code = existing.Code
		assert.NoError(t, us.Validate(ctx, existing, validate, svc))
	})
}

func TestQueryFilter_Match(t *testing.T) {
	st := Student{Code: "HS001", FullName: "Nguyễn Văn An", ClassName: "Mầm 1", AgeGroup: "3-4 tuổi", Gender: GenderMale}

	tests := []struct {
		filter *QueryFilter
		want   bool
	}{
		{filter: nil, want: true},
		{filter: &QueryFilter{Search: "văn"}, want: true},
		{filter: &QueryFilter{Search: "hs00"}, want: true},
		{filter: &QueryFilter{Search: "bình"}, want: false},
		{filter: &QueryFilter{ClassName: "Mầm 1", Gender: GenderMale}, want: true},
		{filter: &QueryFilter{AgeGroup: "4-5 tuổi"}, want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.filter.Match(st), "%+v", tt.filter)
	}
}
