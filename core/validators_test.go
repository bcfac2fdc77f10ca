package core

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func TestInitValidators(t *testing.T) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)

	type payload struct {
		Code     string `json:"code" validate:"omitempty,alphanum_"`
		Name     string `json:"name" validate:"notblank"`
		AgeGroup string `json:"age_group" validate:"omitempty,agegroup"`
		Month    string `json:"month" validate:"omitempty,yearmonth"`
	}

	tests := []struct {
		name    string
		data    payload
		wantErr map[string]string
	}{
		{name: "valid", data: payload{Code: "HS_01", Name: "Bé An", AgeGroup: AgeGroup3To4, Month: "2024-09"}},
		{
			name: "blank name", data: payload{Name: "   "},
			wantErr: map[string]string{"name": "this field cannot be blank"},
		},
		{
			name: "bad values", data: payload{Code: "HS-01", Name: "x", AgeGroup: "7 tuổi", Month: "09/2024"},
			wantErr: map[string]string{
				"code":      "only alphanumeric characters and underscores are allowed",
				"age_group": "invalid age group",
				"month":     "must be a month formatted as YYYY-MM",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.data)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
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
}

func TestPaging_Paginate(t *testing.T) {
	tests := []struct {
		name           string
		paging         Paging
		n              int
		wantLo, wantHi int
	}{
		{name: "defaults", paging: Paging{}, n: 45, wantLo: 0, wantHi: 20},
		{name: "last page", paging: Paging{Page: 3, PageSize: 20}, n: 45, wantLo: 40, wantHi: 45},
		{name: "past the end", paging: Paging{Page: 9, PageSize: 20}, n: 45, wantLo: 45, wantHi: 45},
		{name: "max page size", paging: Paging{Page: 1, PageSize: 1000}, n: 450, wantLo: 0, wantHi: MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.paging.Clean()
			lo, hi := tt.paging.Paginate(tt.n)
			assert.Equal(t, tt.wantLo, lo)
			assert.Equal(t, tt.wantHi, hi)
		})
	}
}

func TestInitValidators_Date(t *testing.T) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)

	type payload struct {
		Day   Date `json:"day" validate:"required"`
		Until Date `json:"until" validate:"omitempty"`
	}

	err := validate.Struct(payload{})
	vErrs, ok := err.(validator.ValidationErrors)
	if !assert.True(t, ok, "want validator.ValidationErrors, got %v", err) {
		return
	}
	assert.Len(t, vErrs, 1)
	assert.Equal(t, "day", vErrs[0].Field())
	assert.Equal(t, "this field is required", vErrs[0].Translate(translator))

	assert.NoError(t, validate.Struct(payload{Day: NewDate(2024, 9, 5)}))
}
