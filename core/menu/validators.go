package menu

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolops/core"
)

var (
	dateRangeTag  = "daterange"
	dateRangeText = "end date must not be before start date"

	maxDaysTag  = "maxdays"
	maxDaysText = fmt.Sprintf("a menu cannot cover more than %d days", MaxDays)

	dayInRangeTag  = "dayinrange"
	dayInRangeText = "every day must be within the menu period"

	uniqueDaysTag  = "uniquedays"
	uniqueDaysText = "a day cannot appear twice"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(menuStructValidation, NewMenu{})
	core.RegisterCustomTranslation(validate, translator, dateRangeTag, dateRangeText)
	core.RegisterCustomTranslation(validate, translator, maxDaysTag, maxDaysText)
	core.RegisterCustomTranslation(validate, translator, dayInRangeTag, dayInRangeText)
	core.RegisterCustomTranslation(validate, translator, uniqueDaysTag, uniqueDaysText)
}

// menuStructValidation checks the menu period and that its days fall within it.
func menuStructValidation(sl validator.StructLevel) {
	nm, ok := sl.Current().Interface().(NewMenu)
	if !ok || nm.StartDate.IsZero() || nm.EndDate.IsZero() {
		return
	}

	if nm.EndDate.Before(nm.StartDate.Time) {
		sl.ReportError(nm.EndDate, "end_date", "EndDate", dateRangeTag, "")
		return
	}
	if nm.StartDate.DaysUntil(nm.EndDate) >= MaxDays {
		sl.ReportError(nm.EndDate, "end_date", "EndDate", maxDaysTag, "")
		return
	}

	seen := make(map[string]bool, len(nm.Days))
	for _, day := range nm.Days {
		if day.Date.IsZero() {
			continue
		}
		if day.Date.Before(nm.StartDate.Time) || day.Date.After(nm.EndDate.Time) {
			sl.ReportError(nm.Days, "days", "Days", dayInRangeTag, "")
			return
		}
		if seen[day.Date.String()] {
			sl.ReportError(nm.Days, "days", "Days", uniqueDaysTag, "")
			return
		}
		seen[day.Date.String()] = true
	}
}
