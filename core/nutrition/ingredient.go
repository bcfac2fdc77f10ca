package nutrition

// Ingredient is one line of a food's recipe; its nutrients are those of Quantity.
type Ingredient struct {
	Name      string   `json:"name" validate:"required,notblank"`
	Quantity  Quantity `json:"quantity"`
	Nutrients `json:"nutrients"`
}

// SumIngredients returns the food totals of ingredients.
func SumIngredients(ingredients []Ingredient) Nutrients {
	var total Nutrients
	for _, ing := range ingredients {
		total = total.Add(ing.Nutrients)
	}
	return total
}

// TotalWeight sums the grams of ingredients; non-mass quantities are ignored.
func TotalWeight(ingredients []Ingredient) float64 {
	var total float64
	for _, ing := range ingredients {
		if g, ok := ing.Quantity.Grams(); ok && g > 0 {
			total += g
		}
	}
	return total
}

// RescaleIngredient changes the quantity of ing and re-derives its nutrients proportionally.
// Nutrients are zeroed when the quantities cannot be compared.
func RescaleIngredient(ing Ingredient, qty Quantity) Ingredient {
	ratio, ok := ing.Quantity.Ratio(qty)
	ing.Quantity = qty
	if !ok {
		ing.Nutrients = Nutrients{}
		return ing
	}
	ing.Nutrients = ing.Nutrients.Scale(ratio)
	return ing
}
