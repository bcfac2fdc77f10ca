package food

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/nutrition"
)

// Food is a dish; its nutrients are the totals of its ingredients and Weight is their total grams.
// Calculated is false until the nutrients of every ingredient are known.
type Food struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	AgeGroup    string                 `json:"age_group"`
	Ingredients []nutrition.Ingredient `json:"ingredients"`
	Nutrients   nutrition.Nutrients    `json:"nutrients"`
	Weight      float64                `json:"weight"`
	Calculated  bool                   `json:"calculated"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// Recompute derives the totals from the ingredients.
func (f *Food) Recompute() {
	f.Nutrients = nutrition.SumIngredients(f.Ingredients)
	f.Weight = nutrition.TotalWeight(f.Ingredients)
}

// Portion returns the nutrients of `weight` grams of f.
// A food without a known weight is served whole.
func (f Food) Portion(weight float64) nutrition.Nutrients {
	if f.Weight <= 0 {
		return f.Nutrients
	}
	return nutrition.Rescale(f.Nutrients, f.Weight, weight)
}

func (f Food) ingredientIndex(name string) int {
	for i, ing := range f.Ingredients {
		if strings.EqualFold(ing.Name, name) {
			return i
		}
	}
	return -1
}

type NewIngredient struct {
	Name     string             `json:"name" validate:"required,notblank"`
	Quantity nutrition.Quantity `json:"quantity"`
}

// NewFood creates the shell of a Food; its nutrients are calculated afterwards.
type NewFood struct {
	Name        string          `json:"name" validate:"required,notblank"`
	AgeGroup    string          `json:"age_group" validate:"required,agegroup"`
	Ingredients []NewIngredient `json:"ingredients" validate:"required,min=1,dive"`
}

func (nf *NewFood) Validate(validate *validator.Validate) error {
	nf.Name = core.CleanString(nf.Name)
	cleanIngredients(nf.Ingredients)
	return validate.Struct(nf)
}

// UpdateFood replaces the name, age group & ingredient list of a Food.
// Ingredients are matched by name: the nutrients of a kept ingredient are rescaled to its new quantity.
type UpdateFood NewFood

func (uf *UpdateFood) Validate(validate *validator.Validate) error {
	return (*NewFood)(uf).Validate(validate)
}

type UpdateIngredient struct {
	Quantity nutrition.Quantity `json:"quantity"`
}

func (ui *UpdateIngredient) Validate(validate *validator.Validate) error {
	ui.Quantity.Unit = core.CleanString(ui.Quantity.Unit)
	return validate.Struct(ui)
}

func cleanIngredients(ings []NewIngredient) {
	for i := range ings {
		ings[i].Name = core.CleanString(ings[i].Name)
		ings[i].Quantity.Unit = core.CleanString(ings[i].Quantity.Unit)
	}
}

// QueryFilter selects Foods; Search is a case-insensitive match on Name.
type QueryFilter struct {
	Search     string `query:"search"`
	AgeGroup   string `query:"age_group"`
	Calculated *bool  `query:"calculated"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.AgeGroup = core.CleanString(qf.AgeGroup)
}

func (qf *QueryFilter) Match(f Food) bool {
	if qf == nil {
		return true
	}
	return core.ContainsFold(qf.Search, f.Name) &&
		(qf.AgeGroup == "" || qf.AgeGroup == f.AgeGroup) &&
		(qf.Calculated == nil || *qf.Calculated == f.Calculated)
}

var OrderingFields = []string{"name", "age_group", "weight", "created_at", "updated_at"}
