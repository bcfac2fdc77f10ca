package tuition

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/workflow"
)

// Statuses
const (
	StatusUnpaid     = "Chưa thanh toán"
	StatusProcessing = "Đang xử lý"
	StatusPaid       = "Đã thanh toán"
	StatusFailed     = "Thất bại"
)

var Statuses = []string{StatusUnpaid, StatusProcessing, StatusPaid, StatusFailed}

// Actions
const (
	ActionUpdate  = "update"
	ActionPay     = "pay"
	ActionRefresh = "refresh"
	ActionDelete  = "delete"
)

var Gates = workflow.Gates{
	ActionUpdate:  {StatusUnpaid, StatusFailed},
	ActionPay:     {StatusUnpaid, StatusFailed},
	ActionRefresh: {StatusProcessing},
	ActionDelete:  {StatusUnpaid, StatusFailed},
}

// SchoolService is a billable service of the school (meals, tuition, bus...). Prices are in VND.
type SchoolService struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       int64     `json:"price"`
	Unit        string    `json:"unit"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewSchoolService is also used to replace an existing SchoolService.
type NewSchoolService struct {
	Name        string `json:"name" validate:"required,notblank"`
	Price       int64  `json:"price" validate:"gte=0"`
	Unit        string `json:"unit"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

func (ns *NewSchoolService) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Unit = core.CleanString(ns.Unit)
	ns.Description = core.CleanString(ns.Description)
	return validate.Struct(ns)
}

type ServiceFilter struct {
	Search   string `query:"search"`
	IsActive *bool  `query:"is_active"`
}

func (sf *ServiceFilter) Clean() { sf.Search = core.CleanString(sf.Search) }

func (sf *ServiceFilter) Match(s SchoolService) bool {
	if sf == nil {
		return true
	}
	return core.ContainsFold(sf.Search, s.Name) && (sf.IsActive == nil || *sf.IsActive == s.IsActive)
}

// Item is a line of a Tuition.
type Item struct {
	Name      string `json:"name" validate:"required,notblank"`
	Amount    int64  `json:"amount" validate:"gte=0"`
	ServiceID string `json:"service_id,omitempty"`
}

// Tuition is what a student owes for a month; Amount is the sum of its items when it has any.
type Tuition struct {
	ID         string     `json:"id"`
	StudentID  string     `json:"student_id"`
	Month      string     `json:"month"` // YYYY-MM
	Items      []Item     `json:"items"`
	Amount     int64      `json:"amount"`
	Status     string     `json:"status"`
	PaymentRef string     `json:"payment_ref,omitempty"`
	PaymentURL string     `json:"payment_url,omitempty"`
	PaidAt     *time.Time `json:"paid_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Actions lists what may be done next; it is not stored.
	Actions []string `json:"actions"`
}

func (t Tuition) WithActions() Tuition {
	t.Actions = Gates.Actions(t.Status)
	return t
}

func sumItems(items []Item) int64 {
	var total int64
	for _, it := range items {
		total += it.Amount
	}
	return total
}

// NewTuition is also used to update an unpaid Tuition. Amount is ignored when Items are given.
type NewTuition struct {
	StudentID string `json:"student_id" validate:"required"`
	Month     string `json:"month" validate:"required,yearmonth"`
	Items     []Item `json:"items" validate:"dive"`
	Amount    int64  `json:"amount" validate:"gte=0"`
}

func (nt *NewTuition) Validate(validate *validator.Validate) error {
	nt.StudentID = core.CleanString(nt.StudentID)
	nt.Month = core.CleanString(nt.Month)
	for i := range nt.Items {
		nt.Items[i].Name = core.CleanString(nt.Items[i].Name)
	}
	return validate.Struct(nt)
}

// GenerateRequest bills the given services to students for a month.
// All the students are billed when StudentIDs is empty.
type GenerateRequest struct {
	Month      string   `json:"month" validate:"required,yearmonth"`
	ServiceIDs []string `json:"service_ids" validate:"required,min=1,dive,required"`
	StudentIDs []string `json:"student_ids" validate:"omitempty,dive,required"`
}

func (gr *GenerateRequest) Validate(validate *validator.Validate) error {
	gr.Month = core.CleanString(gr.Month)
	return validate.Struct(gr)
}

type GenerateResult struct {
	Created []Tuition `json:"created"`
	Skipped int       `json:"skipped"`
}

type QueryFilter struct {
	StudentID string   `query:"student_id"`
	Month     string   `query:"month"`
	Statuses  []string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.StudentID = core.CleanString(qf.StudentID)
	qf.Month = core.CleanString(qf.Month)
}

func (qf *QueryFilter) Match(t Tuition) bool {
	if qf == nil {
		return true
	}
	if (qf.StudentID != "" && qf.StudentID != t.StudentID) || (qf.Month != "" && qf.Month != t.Month) {
		return false
	}
	if len(qf.Statuses) == 0 {
		return true
	}
	for _, s := range qf.Statuses {
		if s == t.Status {
			return true
		}
	}
	return false
}

var (
	OrderingFields        = []string{"month", "amount", "status", "paid_at", "created_at"}
	ServiceOrderingFields = []string{"name", "price", "created_at"}
)
