package enrollment

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/workflow"
)

// Statuses
const (
	StatusPending   = "Chờ xử lý"
	StatusApproved  = "Đã duyệt"
	StatusRejected  = "Từ chối"
	StatusEnrolled  = "Đã nhập học"
	StatusCancelled = "Đã hủy"
)

var Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusEnrolled, StatusCancelled}

// Actions
const (
	ActionUpdate  = "update"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionEnroll  = "enroll"
	ActionCancel  = "cancel"
	ActionDelete  = "delete"
)

var Gates = workflow.Gates{
	ActionUpdate:  {StatusPending},
	ActionApprove: {StatusPending},
	ActionReject:  {StatusPending},
	ActionEnroll:  {StatusApproved},
	ActionCancel:  {StatusPending, StatusApproved},
	ActionDelete:  {StatusRejected, StatusCancelled},
}

// Application is a request to enroll a child.
type Application struct {
	ID             string    `json:"id"`
	StudentName    string    `json:"student_name"`
	DateOfBirth    core.Date `json:"date_of_birth"`
	Gender         string    `json:"gender"`
	AgeGroup       string    `json:"age_group"`
	Address        string    `json:"address"`
	ParentName     string    `json:"parent_name"`
	ParentPhone    string    `json:"parent_phone"`
	ParentEmail    string    `json:"parent_email"`
	ParentJob      string    `json:"parent_job"`
	Status         string    `json:"status"`
	Note           string    `json:"note"`
	CertificateIDs []string  `json:"certificate_ids"`
	StudentID      string    `json:"student_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Actions lists what may be done next; it is not stored.
	Actions []string `json:"actions"`
}

// WithActions sets the Actions allowed by the current status.
func (a Application) WithActions() Application {
	a.Actions = Gates.Actions(a.Status)
	return a
}

// NewApplication is also used to update a pending Application.
type NewApplication struct {
	StudentName    string    `json:"student_name" validate:"required,notblank"`
	DateOfBirth    core.Date `json:"date_of_birth" validate:"required"`
	Gender         string    `json:"gender" validate:"required,oneof=Nam Nữ"`
	AgeGroup       string    `json:"age_group" validate:"required,agegroup"`
	Address        string    `json:"address"`
	ParentName     string    `json:"parent_name" validate:"required,notblank"`
	ParentPhone    string    `json:"parent_phone" validate:"required,max=20"`
	ParentEmail    string    `json:"parent_email" validate:"omitempty,email"`
	ParentJob      string    `json:"parent_job"`
	CertificateIDs []string  `json:"certificate_ids" validate:"omitempty,dive,required"`
}

func (na *NewApplication) Validate(validate *validator.Validate) error {
	na.StudentName = core.CleanString(na.StudentName)
	na.Address = core.CleanString(na.Address)
	na.ParentName = core.CleanString(na.ParentName)
	na.ParentPhone = core.CleanString(na.ParentPhone)
	na.ParentEmail = core.CleanString(na.ParentEmail, true /* lower */)
	na.ParentJob = core.CleanString(na.ParentJob)
	return validate.Struct(na)
}

// Decision carries the note of an approval, rejection or cancellation.
type Decision struct {
	Note string `json:"note"`
}

func (d *Decision) Clean() { d.Note = core.CleanString(d.Note) }

// EnrollRequest contains what is needed to turn an approved Application into a Student.
type EnrollRequest struct {
	Code      string `json:"code" validate:"required,max=32,alphanum_"`
	ClassName string `json:"class_name"`
}

func (er *EnrollRequest) Validate(validate *validator.Validate) error {
	er.Code = core.CleanString(er.Code)
	er.ClassName = core.CleanString(er.ClassName)
	return validate.Struct(er)
}

// QueryFilter selects Applications; Search is a case-insensitive match on StudentName, ParentName or ParentPhone.
type QueryFilter struct {
	Search   string   `query:"search"`
	Statuses []string `query:"status"`
	AgeGroup string   `query:"age_group"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.AgeGroup = core.CleanString(qf.AgeGroup)
}

func (qf *QueryFilter) Match(a Application) bool {
	if qf == nil {
		return true
	}
	if !core.ContainsFold(qf.Search, a.StudentName, a.ParentName, a.ParentPhone) {
		return false
	}
	if qf.AgeGroup != "" && qf.AgeGroup != a.AgeGroup {
		return false
	}
	if len(qf.Statuses) == 0 {
		return true
	}
	for _, s := range qf.Statuses {
		if s == a.Status {
			return true
		}
	}
	return false
}

var OrderingFields = []string{"student_name", "date_of_birth", "status", "created_at", "updated_at"}
