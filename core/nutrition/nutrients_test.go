package nutrition

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumIngredients(t *testing.T) {
	ingredients := []Ingredient{
		{Name: "Gạo", Quantity: Quantity{Amount: 50, Unit: "g"}, Nutrients: Nutrients{Calories: 172, Protein: 3.8, Lipid: 0.5, Carbohydrate: 38}},
		{Name: "Thịt heo", Quantity: Quantity{Amount: 30, Unit: "g"}, Nutrients: Nutrients{Calories: 42.9, Protein: 5.7, Lipid: 2.1}},
		{Name: "Nước mắm", Quantity: Quantity{Amount: 1, Unit: "muỗng"}}, // not calculated yet
	}

	got := SumIngredients(ingredients)
	want := Nutrients{Calories: 214.9, Protein: 9.5, Lipid: 2.6, Carbohydrate: 38}
	assert.InDelta(t, want.Calories, got.Calories, 1e-9)
	assert.InDelta(t, want.Protein, got.Protein, 1e-9)
	assert.InDelta(t, want.Lipid, got.Lipid, 1e-9)
	assert.InDelta(t, want.Carbohydrate, got.Carbohydrate, 1e-9)

	// order-independent
	reversed := []Ingredient{ingredients[2], ingredients[1], ingredients[0]}
	assert.Equal(t, got.Round(6), SumIngredients(reversed).Round(6))

	assert.Equal(t, Nutrients{}, SumIngredients(nil))
	assert.Equal(t, 80.0, TotalWeight(ingredients))
}

func TestRescale(t *testing.T) {
	n := Nutrients{Calories: 200, Protein: 10, Lipid: 8, Carbohydrate: 24}

	tests := []struct {
		name      string
		orig, new float64
		want      Nutrients
	}{
		{name: "100g -> 50g halves", orig: 100, new: 50, want: Nutrients{Calories: 100, Protein: 5, Lipid: 4, Carbohydrate: 12}},
		{name: "100g -> 250g", orig: 100, new: 250, want: Nutrients{Calories: 500, Protein: 25, Lipid: 20, Carbohydrate: 60}},
		{name: "same weight", orig: 80, new: 80, want: n},
		{name: "zero weight", orig: 100, new: 0},
		{name: "negative weight", orig: 100, new: -20},
		{name: "zero original weight", orig: 0, new: 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rescale(n, tt.orig, tt.new))
		})
	}
}

func TestScale_FloorsAtZero(t *testing.T) {
	n := Nutrients{Calories: 10, Protein: -1}
	assert.Equal(t, Nutrients{}, n.Scale(-2))
	assert.Equal(t, Nutrients{Calories: 20}, n.Scale(2))
	assert.Equal(t, Nutrients{}, n.Scale(math.NaN()))

	// zero fields stay +0 once encoded
	data, err := json.Marshal(Nutrients{Lipid: -0.5}.Scale(2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"calories":0,"protein":0,"lipid":0,"carbohydrate":0}`, string(data))
	assert.NotContains(t, string(data), "-0")
}

func TestRescaleIngredient(t *testing.T) {
	ing := Ingredient{
		Name:      "Sữa",
		Quantity:  Quantity{Amount: 200, Unit: "ml"},
		Nutrients: Nutrients{Calories: 124, Protein: 6.4, Lipid: 6.6, Carbohydrate: 9.6},
	}

	tests := []struct {
		name string
		qty  Quantity
		want Nutrients
	}{
		{name: "ml -> l", qty: Quantity{Amount: 0.1, Unit: "l"}, want: Nutrients{Calories: 62, Protein: 3.2, Lipid: 3.3, Carbohydrate: 4.8}},
		{name: "ml -> g", qty: Quantity{Amount: 400, Unit: "g"}, want: Nutrients{Calories: 248, Protein: 12.8, Lipid: 13.2, Carbohydrate: 19.2}},
		{name: "incomparable units", qty: Quantity{Amount: 1, Unit: "hộp"}},
		{name: "zero", qty: Quantity{Amount: 0, Unit: "ml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RescaleIngredient(ing, tt.qty)
			assert.Equal(t, tt.qty, got.Quantity)
			assert.Equal(t, tt.want, got.Nutrients.Round(6))
		})
	}

	eggs := Ingredient{Name: "Trứng", Quantity: Quantity{Amount: 2, Unit: "quả"}, Nutrients: Nutrients{Calories: 150}}
	assert.Equal(t, Nutrients{Calories: 75}, RescaleIngredient(eggs, Quantity{Amount: 1, Unit: "Quả"}).Nutrients)
}

func TestBMI(t *testing.T) {
	tests := []struct {
		name           string
		weight, height float64
		want           float64
	}{
		{name: "preschooler", weight: 14.2, height: 98.5, want: 14.64},
		{name: "adult", weight: 70, height: 175, want: 22.86},
		{name: "zero height", weight: 14.2, height: 0},
		{name: "negative weight", weight: -3, height: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BMI(tt.weight, tt.height))
		})
	}
}

func TestAggregation_IsAssociative(t *testing.T) {
	food := func(cal ...float64) []Ingredient {
		ings := make([]Ingredient, 0, len(cal))
		for i, c := range cal {
			ings = append(ings, Ingredient{Nutrients: Nutrients{Calories: c, Protein: float64(i) + 0.5, Lipid: c / 10, Carbohydrate: c / 4}})
		}
		return ings
	}
	// week -> days -> meals -> foods -> ingredients
	week := [][][][]Ingredient{
		{{food(100, 20.5), food(3)}, {food(250)}},
		{{food(12.25, 7, 1)}, {food(0), food(80, 80)}},
	}

	var flat []Nutrients
	var dayTotals []Nutrients
	for _, day := range week {
		var mealTotals []Nutrients
		for _, meal := range day {
			var foodTotals []Nutrients
			for _, f := range meal {
				foodTotals = append(foodTotals, SumIngredients(f))
				for _, ing := range f {
					flat = append(flat, ing.Nutrients)
				}
			}
			mealTotals = append(mealTotals, Sum(foodTotals...))
		}
		dayTotals = append(dayTotals, Sum(mealTotals...))
	}

	assert.Equal(t, Sum(flat...).Round(9), Sum(dayTotals...).Round(9))
}
