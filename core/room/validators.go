package room

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolops/core"
)

var (
	roomTypeTag  = "roomtype"
	roomTypeText = "invalid room type"

	facilityCountTag  = "facilitycount"
	facilityCountText = "defective and missing items cannot exceed the total"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roomTypeTag, roomTypeValidation)
	core.RegisterCustomTranslation(validate, translator, roomTypeTag, roomTypeText)

	validate.RegisterStructValidation(facilityStructValidation, Facility{})
	core.RegisterCustomTranslation(validate, translator, facilityCountTag, facilityCountText)
}

func roomTypeValidation(fl validator.FieldLevel) bool {
	rt := fl.Field().String()
	for _, t := range Types {
		if t == rt {
			return true
		}
	}
	return false
}

// facilityStructValidation checks that defective + missing <= total.
func facilityStructValidation(sl validator.StructLevel) {
	f, ok := sl.Current().Interface().(Facility)
	if !ok {
		return
	}
	if f.Defective >= 0 && f.Missing >= 0 && f.Defective+f.Missing > f.Total {
		sl.ReportError(f.Defective, "defective", "Defective", facilityCountTag, "")
	}
}
