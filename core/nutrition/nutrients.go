// Package nutrition holds the nutrient arithmetic shared by foods, menus & medical records:
// summing ingredient macros into food totals, food totals into meal/day/week totals,
// rescaling nutrients when a quantity changes and computing the body-mass index.
//
// All functions are pure; missing values are zeros.
package nutrition

import (
	"math"
	"strings"
)

// Nutrients are the macros tracked for ingredients, foods & menus.
type Nutrients struct {
	Calories     float64 `json:"calories"`     // kcal
	Protein      float64 `json:"protein"`      // g
	Lipid        float64 `json:"lipid"`        // g
	Carbohydrate float64 `json:"carbohydrate"` // g
}

// Add returns n + o.
func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories:     n.Calories + o.Calories,
		Protein:      n.Protein + o.Protein,
		Lipid:        n.Lipid + o.Lipid,
		Carbohydrate: n.Carbohydrate + o.Carbohydrate,
	}
}

// Scale returns n × k, floored at 0; a non-positive k yields zero nutrients.
func (n Nutrients) Scale(k float64) Nutrients {
	if !(k > 0) {
		return Nutrients{}
	}
	return Nutrients{
		Calories:     floor0(n.Calories * k),
		Protein:      floor0(n.Protein * k),
		Lipid:        floor0(n.Lipid * k),
		Carbohydrate: floor0(n.Carbohydrate * k),
	}
}

// Round rounds every field to `places` decimals.
func (n Nutrients) Round(places int) Nutrients {
	return Nutrients{
		Calories:     Round(n.Calories, places),
		Protein:      Round(n.Protein, places),
		Lipid:        Round(n.Lipid, places),
		Carbohydrate: Round(n.Carbohydrate, places),
	}
}

func (n Nutrients) IsZero() bool { return n == Nutrients{} }

// Sum folds each field independently.
func Sum(ns ...Nutrients) Nutrients {
	var total Nutrients
	for _, n := range ns {
		total = total.Add(n)
	}
	return total
}

// Rescale re-derives nutrients measured for `origWeight` to `newWeight`.
// A non-positive weight on either side yields zero nutrients.
func Rescale(n Nutrients, origWeight, newWeight float64) Nutrients {
	if origWeight <= 0 || newWeight <= 0 {
		return Nutrients{}
	}
	return n.Scale(newWeight / origWeight)
}

// Round rounds v half away from zero to `places` decimals.
func Round(v float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}

func floor0(v float64) float64 {
	if !(v > 0) { // negatives, -0 & NaN
		return 0
	}
	return v
}

// Units
const (
	UnitGram       = "g"
	UnitKilogram   = "kg"
	UnitMilligram  = "mg"
	UnitMilliliter = "ml"
	UnitLiter      = "l"
)

var gramsPerUnit = map[string]float64{
	UnitGram:       1,
	UnitKilogram:   1000,
	UnitMilligram:  0.001,
	UnitMilliliter: 1, // water density
	UnitLiter:      1000,
}

// Quantity is an amount of some unit, e.g. 150 g or 2 quả.
type Quantity struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

func (q Quantity) unit() string { return strings.ToLower(strings.TrimSpace(q.Unit)) }

// Grams converts q to grams; ok is false for non-mass units.
func (q Quantity) Grams() (grams float64, ok bool) {
	k, ok := gramsPerUnit[q.unit()]
	if !ok {
		return 0, false
	}
	return q.Amount * k, true
}

// Ratio returns to / q when both quantities are comparable (both mass units or the same unit).
func (q Quantity) Ratio(to Quantity) (ratio float64, ok bool) {
	from, fok := q.Grams()
	dest, dok := to.Grams()
	if !(fok && dok) {
		if q.unit() != to.unit() {
			return 0, false
		}
		from, dest = q.Amount, to.Amount
	}
	if from <= 0 || dest <= 0 {
		return 0, true
	}
	return dest / from, true
}
