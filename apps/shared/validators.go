// Package shared holds what the api & admin apps set up the same way.
package shared

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/schoolops/core"
	"github.com/trezcool/schoolops/core/curriculum"
	"github.com/trezcool/schoolops/core/food"
	"github.com/trezcool/schoolops/core/menu"
	"github.com/trezcool/schoolops/core/room"
	"github.com/trezcool/schoolops/core/user"
)

// NewValidator returns a validator knowing every custom tag & its english translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()

	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	curriculum.InitValidators(validate, translator)
	food.InitValidators(validate, translator)
	menu.InitValidators(validate, translator)
	room.InitValidators(validate, translator)
	return validate, translator
}
