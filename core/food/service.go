package food

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/nutrition"
)

var (
	// errors
	ErrNotFound           = errors.New("food not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrCalculationFailed  = errors.New("nutrient calculation failed")
)

type (
	// NutrientCalculator estimates the nutrients of each ingredient of a dish.
	// The result has one entry per ingredient, in order.
	NutrientCalculator interface {
		Calculate(ctx context.Context, dish string, ingredients []nutrition.Ingredient) ([]nutrition.Nutrients, error)
	}

	Repository interface {
		CreateFood(ctx context.Context, f Food) (Food, error)
		QueryFoods(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Food, int, error)
		GetFood(ctx context.Context, id string) (Food, error)
		UpdateFood(ctx context.Context, f Food) (Food, error)
		DeleteFood(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, nf NewFood) (Food, error)
		Calculate(ctx context.Context, f Food) (Food, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Food, int, error)
		GetByID(ctx context.Context, id string) (Food, error)
		Update(ctx context.Context, f Food, uf UpdateFood) (Food, error)
		UpdateIngredient(ctx context.Context, f Food, idx int, ui UpdateIngredient) (Food, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo       Repository
		calculator NutrientCalculator
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, calculator NutrientCalculator) Service {
	return &service{repo: repo, calculator: calculator}
}

func (svc *service) Create(ctx context.Context, nf NewFood) (Food, error) {
	now := core.NowFunc().UTC()
	f := Food{
		Name:        nf.Name,
		AgeGroup:    nf.AgeGroup,
		Ingredients: make([]nutrition.Ingredient, 0, len(nf.Ingredients)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for _, ing := range nf.Ingredients {
		f.Ingredients = append(f.Ingredients, nutrition.Ingredient{Name: ing.Name, Quantity: ing.Quantity})
	}
	f.Recompute()
	return svc.repo.CreateFood(ctx, f)
}

// Calculate asks the NutrientCalculator for the nutrients of every ingredient of f.
func (svc *service) Calculate(ctx context.Context, f Food) (Food, error) {
	if len(f.Ingredients) == 0 {
		return Food{}, core.NewValidationError(nil, core.FieldError{Field: "ingredients", Error: "this food has no ingredients"})
	}

	results, err := svc.calculator.Calculate(ctx, f.Name, f.Ingredients)
	if err != nil {
		return Food{}, errors.Wrapf(ErrCalculationFailed, "%v", err)
	}
	if len(results) != len(f.Ingredients) {
		return Food{}, errors.Wrapf(ErrCalculationFailed, "got %d results for %d ingredients", len(results), len(f.Ingredients))
	}

	ingredients := make([]nutrition.Ingredient, len(f.Ingredients))
	copy(ingredients, f.Ingredients)
	for i := range ingredients {
		ingredients[i].Nutrients = results[i].Scale(1) // floors negative estimates
	}
	f.Ingredients = ingredients
	f.Recompute()
	f.Calculated = true
	f.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateFood(ctx, f)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, paging core.Paging) ([]Food, int, error) {
	return svc.repo.QueryFoods(ctx, filter, ordering, paging)
}

func (svc *service) GetByID(ctx context.Context, id string) (Food, error) {
	return svc.repo.GetFood(ctx, id)
}

func (svc *service) Update(ctx context.Context, f Food, uf UpdateFood) (Food, error) {
	ingredients := make([]nutrition.Ingredient, 0, len(uf.Ingredients))
	calculated := f.Calculated
	for _, ing := range uf.Ingredients {
		idx := f.ingredientIndex(ing.Name)
		if idx < 0 {
			// nutrients of a new ingredient are unknown until the next calculation
			ingredients = append(ingredients, nutrition.Ingredient{Name: ing.Name, Quantity: ing.Quantity})
			calculated = false
			continue
		}
		orig := f.Ingredients[idx]
		orig.Name = ing.Name
		if orig.Quantity != ing.Quantity {
			if _, ok := orig.Quantity.Ratio(ing.Quantity); !ok {
				calculated = false
			}
			orig = nutrition.RescaleIngredient(orig, ing.Quantity)
		}
		ingredients = append(ingredients, orig)
	}

	f.Name = uf.Name
	f.AgeGroup = uf.AgeGroup
	f.Ingredients = ingredients
	f.Calculated = calculated
	f.Recompute()
	f.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateFood(ctx, f)
}

// UpdateIngredient changes the quantity of the ingredient at idx and rescales its nutrients.
func (svc *service) UpdateIngredient(ctx context.Context, f Food, idx int, ui UpdateIngredient) (Food, error) {
	if idx < 0 || idx >= len(f.Ingredients) {
		return Food{}, ErrIngredientNotFound
	}
	ingredients := make([]nutrition.Ingredient, len(f.Ingredients))
	copy(ingredients, f.Ingredients)
	if _, ok := ingredients[idx].Quantity.Ratio(ui.Quantity); !ok {
		f.Calculated = false
	}
	ingredients[idx] = nutrition.RescaleIngredient(ingredients[idx], ui.Quantity)
	f.Ingredients = ingredients
	f.Recompute()
	f.UpdatedAt = core.NowFunc().UTC()
	return svc.repo.UpdateFood(ctx, f)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteFood(ctx, id)
}
