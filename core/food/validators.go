package food

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/nutrition"
)

var (
	quantityAmountTag  = "qtyamount"
	quantityAmountText = "quantity must be greater than 0"

	quantityUnitTag  = "qtyunit"
	quantityUnitText = "quantity unit is required"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(quantityStructValidation, nutrition.Quantity{})
	core.RegisterCustomTranslation(validate, translator, quantityAmountTag, quantityAmountText)
	core.RegisterCustomTranslation(validate, translator, quantityUnitTag, quantityUnitText)
}

// quantityStructValidation checks that a Quantity has a positive amount and a unit.
func quantityStructValidation(sl validator.StructLevel) {
	qty, ok := sl.Current().Interface().(nutrition.Quantity)
	if !ok {
		return
	}
	if qty.Amount <= 0 {
		sl.ReportError(qty.Amount, "amount", "Amount", quantityAmountTag, "")
	}
	if qty.Unit == "" {
		sl.ReportError(qty.Unit, "unit", "Unit", quantityUnitTag, "")
	}
}
