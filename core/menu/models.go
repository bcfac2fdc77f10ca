package menu

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/nutrition"
)

// MaxDays is the longest period a Menu may cover.
const MaxDays = 31

// Meal types
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealSnack     = "snack"
	MealDinner    = "dinner"
)

var MealTypes = []string{MealBreakfast, MealLunch, MealSnack, MealDinner}

type (
	// Portion is a Food served in a meal; its nutrients are those of Weight grams of the food.
	Portion struct {
		FoodID    string              `json:"food_id"`
		Name      string              `json:"name"`
		Weight    float64             `json:"weight"`
		Nutrients nutrition.Nutrients `json:"nutrients"`
	}

	Meal struct {
		Type   string              `json:"type"`
		Foods  []Portion           `json:"foods"`
		Totals nutrition.Nutrients `json:"totals"`
	}

	Day struct {
		Date   core.Date           `json:"date"`
		Meals  []Meal              `json:"meals"`
		Totals nutrition.Nutrients `json:"totals"`
	}

	Menu struct {
		ID        string              `json:"id"`
		Name      string              `json:"name"`
		StartDate core.Date           `json:"start_date"`
		EndDate   core.Date           `json:"end_date"`
		AgeGroup  string              `json:"age_group"`
		Days      []Day               `json:"days"`
		Totals    nutrition.Nutrients `json:"totals"`
		CreatedAt time.Time           `json:"created_at"`
		UpdatedAt time.Time           `json:"updated_at"`
	}
)

// Recompute derives the meal, day & menu totals from the portions.
func (m *Menu) Recompute() {
	dayTotals := make([]nutrition.Nutrients, 0, len(m.Days))
	for d := range m.Days {
		day := &m.Days[d]
		mealTotals := make([]nutrition.Nutrients, 0, len(day.Meals))
		for i := range day.Meals {
			meal := &day.Meals[i]
			portions := make([]nutrition.Nutrients, 0, len(meal.Foods))
			for _, p := range meal.Foods {
				portions = append(portions, p.Nutrients)
			}
			meal.Totals = nutrition.Sum(portions...)
			mealTotals = append(mealTotals, meal.Totals)
		}
		day.Totals = nutrition.Sum(mealTotals...)
		dayTotals = append(dayTotals, day.Totals)
	}
	m.Totals = nutrition.Sum(dayTotals...)
}

// DailyAverage returns the menu totals averaged over its days.
func (m Menu) DailyAverage() nutrition.Nutrients {
	if len(m.Days) == 0 {
		return nutrition.Nutrients{}
	}
	return m.Totals.Scale(1 / float64(len(m.Days)))
}

type (
	NewPortion struct {
		FoodID string  `json:"food_id" validate:"required"`
		Weight float64 `json:"weight" validate:"gt=0"`
	}

	NewMeal struct {
		Type  string       `json:"type" validate:"required,oneof=breakfast lunch snack dinner"`
		Foods []NewPortion `json:"foods" validate:"dive"`
	}

	NewDay struct {
		Date  core.Date `json:"date" validate:"required"`
		Meals []NewMeal `json:"meals" validate:"dive"`
	}

	// NewMenu is also used to replace an existing Menu; all the nutrients are derived again.
	NewMenu struct {
		Name      string    `json:"name" validate:"required,notblank"`
		StartDate core.Date `json:"start_date" validate:"required"`
		EndDate   core.Date `json:"end_date" validate:"required"`
		AgeGroup  string    `json:"age_group" validate:"required,agegroup"`
		Days      []NewDay  `json:"days" validate:"dive"`
	}
)

func (nm *NewMenu) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	return validate.Struct(nm)
}

// QueryFilter selects Menus; From & To select the menus overlapping that period.
type QueryFilter struct {
	Search   string    `query:"search"`
	AgeGroup string    `query:"age_group"`
	From     core.Date `query:"from"`
	To       core.Date `query:"to"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.AgeGroup = core.CleanString(qf.AgeGroup)
}

func (qf *QueryFilter) Match(m Menu) bool {
	if qf == nil {
		return true
	}
	return core.ContainsFold(qf.Search, m.Name) &&
		(qf.AgeGroup == "" || qf.AgeGroup == m.AgeGroup) &&
		(qf.From.IsZero() || !m.EndDate.Before(qf.From.Time)) &&
		(qf.To.IsZero() || !m.StartDate.After(qf.To.Time))
}

var OrderingFields = []string{"name", "start_date", "end_date", "age_group", "created_at"}
