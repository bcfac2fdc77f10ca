package curriculum

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolops/core"
)

// Activity categories
const (
	CategoryPhysical  = "Phát triển thể chất"
	CategoryCognitive = "Phát triển nhận thức"
	CategoryLanguage  = "Phát triển ngôn ngữ"
	CategorySocial    = "Phát triển tình cảm - xã hội"
	CategoryArt       = "Phát triển thẩm mỹ"
)

var Categories = []string{CategoryPhysical, CategoryCognitive, CategoryLanguage, CategorySocial, CategoryArt}

type Activity struct {
	Name            string `json:"name" validate:"required,notblank"`
	Category        string `json:"category" validate:"omitempty,category"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0,lte=480"`
}

type Curriculum struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	AgeGroup    string     `json:"age_group"`
	SchoolYear  string     `json:"school_year"`
	Description string     `json:"description"`
	Activities  []Activity `json:"activities"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TotalMinutes is the time spent on all the activities.
func (c Curriculum) TotalMinutes() int {
	var total int
	for _, a := range c.Activities {
		total += a.DurationMinutes
	}
	return total
}

// NewCurriculum is also used to replace an existing Curriculum.
type NewCurriculum struct {
	Name        string     `json:"name" validate:"required,notblank"`
	AgeGroup    string     `json:"age_group" validate:"required,agegroup"`
	SchoolYear  string     `json:"school_year" validate:"required,schoolyear"`
	Description string     `json:"description"`
	Activities  []Activity `json:"activities" validate:"dive"`
}

func (nc *NewCurriculum) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.SchoolYear = core.CleanString(nc.SchoolYear)
	nc.Description = core.CleanString(nc.Description)
	for i := range nc.Activities {
		nc.Activities[i].Name = core.CleanString(nc.Activities[i].Name)
	}
	return validate.Struct(nc)
}

// QueryFilter selects Curricula; Search is a case-insensitive match on Name.
type QueryFilter struct {
	Search     string `query:"search"`
	AgeGroup   string `query:"age_group"`
	SchoolYear string `query:"school_year"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.AgeGroup = core.CleanString(qf.AgeGroup)
	qf.SchoolYear = core.CleanString(qf.SchoolYear)
}

func (qf *QueryFilter) Match(c Curriculum) bool {
	if qf == nil {
		return true
	}
	return core.ContainsFold(qf.Search, c.Name) &&
		(qf.AgeGroup == "" || qf.AgeGroup == c.AgeGroup) &&
		(qf.SchoolYear == "" || qf.SchoolYear == c.SchoolYear)
}

var OrderingFields = []string{"name", "age_group", "school_year", "created_at"}
