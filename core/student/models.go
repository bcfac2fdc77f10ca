package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolops/core"
)

const (
	GenderMale   = "Nam"
	GenderFemale = "Nữ"
)

type Student struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	FullName    string    `json:"full_name"`
	DateOfBirth core.Date `json:"date_of_birth"`
	Gender      string    `json:"gender"`
	ClassName   string    `json:"class_name"`
	AgeGroup    string    `json:"age_group"`
	ParentName  string    `json:"parent_name"`
	ParentPhone string    `json:"parent_phone"`
	ParentEmail string    `json:"parent_email"`
	Address     string    `json:"address"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Code        string    `json:"code" validate:"required,max=32,alphanum_"`
	FullName    string    `json:"full_name" validate:"required,notblank"`
	DateOfBirth core.Date `json:"date_of_birth" validate:"required"`
	Gender      string    `json:"gender" validate:"required,oneof=Nam Nữ"`
	ClassName   string    `json:"class_name"`
	AgeGroup    string    `json:"age_group" validate:"omitempty,agegroup"`
	ParentName  string    `json:"parent_name"`
	ParentPhone string    `json:"parent_phone" validate:"omitempty,max=20"`
	ParentEmail string    `json:"parent_email" validate:"omitempty,email"`
	Address     string    `json:"address"`
}

func (ns *NewStudent) clean() {
	ns.Code = core.CleanString(ns.Code)
	ns.FullName = core.CleanString(ns.FullName)
	ns.ClassName = core.CleanString(ns.ClassName)
	ns.ParentName = core.CleanString(ns.ParentName)
	ns.ParentPhone = core.CleanString(ns.ParentPhone)
	ns.ParentEmail = core.CleanString(ns.ParentEmail, true /* lower */)
	ns.Address = core.CleanString(ns.Address)
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc Service) error {
	ns.clean()
	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ns.Code)
}

// UpdateStudent replaces all the editable fields of a Student.
type UpdateStudent NewStudent

func (us *UpdateStudent) Validate(ctx context.Context, orig Student, validate *validator.Validate, svc Service) error {
	(*NewStudent)(us).clean()
	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, us.Code, orig)
}

// QueryFilter selects Students; Search is a case-insensitive match on FullName or Code.
type QueryFilter struct {
	Search    string `query:"search"`
	ClassName string `query:"class_name"`
	AgeGroup  string `query:"age_group"`
	Gender    string `query:"gender"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.ClassName = core.CleanString(qf.ClassName)
	qf.AgeGroup = core.CleanString(qf.AgeGroup)
	qf.Gender = core.CleanString(qf.Gender)
}

func (qf *QueryFilter) Match(st Student) bool {
	if qf == nil {
		return true
	}
	return core.ContainsFold(qf.Search, st.FullName, st.Code) &&
		(qf.ClassName == "" || qf.ClassName == st.ClassName) &&
		(qf.AgeGroup == "" || qf.AgeGroup == st.AgeGroup) &&
		(qf.Gender == "" || qf.Gender == st.Gender)
}

// OrderingFields are the fields Students may be ordered by.
var OrderingFields = []string{"code", "full_name", "date_of_birth", "class_name", "created_at"}
