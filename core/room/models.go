package room

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/workflow"
)

// Statuses
const (
	StatusPending  = "Chờ duyệt"
	StatusApproved = "Đã duyệt"
	StatusRejected = "Từ chối"
)

var Statuses = []string{StatusPending, StatusApproved, StatusRejected}

// Actions
const (
	ActionUpdate  = "update"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionDelete  = "delete"
)

var Gates = workflow.Gates{
	ActionUpdate:  {StatusPending, StatusRejected},
	ActionApprove: {StatusPending},
	ActionReject:  {StatusPending},
	ActionDelete:  {StatusPending, StatusRejected},
}

// Room types
const (
	TypeClassroom = "Phòng học"
	TypeKitchen   = "Nhà bếp"
	TypeMedical   = "Phòng y tế"
	TypeOffice    = "Văn phòng"
	TypeHall      = "Phòng chức năng"
)

var Types = []string{TypeClassroom, TypeKitchen, TypeMedical, TypeOffice, TypeHall}

// Facility is a kind of equipment of a Room; Defective + Missing never exceed Total.
type Facility struct {
	Name      string `json:"name" validate:"required,notblank"`
	Type      string `json:"type"`
	Total     int    `json:"total" validate:"gte=0"`
	Defective int    `json:"defective" validate:"gte=0"`
	Missing   int    `json:"missing" validate:"gte=0"`
}

// Usable is the number of items neither defective nor missing.
func (f Facility) Usable() int { return f.Total - f.Defective - f.Missing }

type Room struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Capacity   int        `json:"capacity"`
	Facilities []Facility `json:"facilities"`
	Status     string     `json:"status"`
	Note       string     `json:"note"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Actions lists what may be done next; it is not stored.
	Actions []string `json:"actions"`
}

func (r Room) WithActions() Room {
	r.Actions = Gates.Actions(r.Status)
	return r
}

// Summary counts the facilities of a Room.
type Summary struct {
	RoomID    string `json:"room_id"`
	Total     int    `json:"total"`
	Defective int    `json:"defective"`
	Missing   int    `json:"missing"`
	Usable    int    `json:"usable"`
}

func (r Room) Summary() Summary {
	s := Summary{RoomID: r.ID}
	for _, f := range r.Facilities {
		s.Total += f.Total
		s.Defective += f.Defective
		s.Missing += f.Missing
		s.Usable += f.Usable()
	}
	return s
}

// NewRoom is also used to update a pending or rejected Room.
type NewRoom struct {
	Name       string     `json:"name" validate:"required,notblank"`
	Type       string     `json:"type" validate:"required,roomtype"`
	Capacity   int        `json:"capacity" validate:"gte=0,lte=500"`
	Facilities []Facility `json:"facilities" validate:"dive"`
	Note       string     `json:"note"`
}

func (nr *NewRoom) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	nr.Note = core.CleanString(nr.Note)
	for i := range nr.Facilities {
		nr.Facilities[i].Name = core.CleanString(nr.Facilities[i].Name)
		nr.Facilities[i].Type = core.CleanString(nr.Facilities[i].Type)
	}
	return validate.Struct(nr)
}

type Decision struct {
	Note string `json:"note"`
}

type QueryFilter struct {
	Search   string   `query:"search"`
	Types    []string `query:"type"`
	Statuses []string `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

func (qf *QueryFilter) Match(r Room) bool {
	if qf == nil {
		return true
	}
	return core.ContainsFold(qf.Search, r.Name) && anyOf(qf.Types, r.Type) && anyOf(qf.Statuses, r.Status)
}

func anyOf(values []string, v string) bool {
	if len(values) == 0 {
		return true
	}
	for _, val := range values {
		if val == v {
			return true
		}
	}
	return false
}

var OrderingFields = []string{"name", "type", "capacity", "status", "created_at"}
