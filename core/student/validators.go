package student

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/schoolmate/backend/core"
)

var (
	ageTag  = "studentage"
	ageText = fmt.Sprintf("{0} must be between %d and %d", MinAge, MaxAge)

	genderTag  = "gender"
	genderText = "{0} must be one of " + strings.Join(Genders, ", ")

	sectionTag  = "section"
	sectionText = "{0} must be one of " + strings.Join(Sections, ", ")
)

// InitValidators registers the student validators and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(ageTag, func(fl validator.FieldLevel) bool {
		return core.IntBetween(fl, MinAge, MaxAge)
	})
	core.RegisterCustomTranslation(validate, translator, ageTag, ageText)

	_ = validate.RegisterValidation(genderTag, oneOfValidation(Genders))
	core.RegisterCustomTranslation(validate, translator, genderTag, genderText)

	_ = validate.RegisterValidation(sectionTag, oneOfValidation(Sections))
	core.RegisterCustomTranslation(validate, translator, sectionTag, sectionText)
}

func oneOfValidation(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		for _, a := range allowed {
			if val == a {
				return true
			}
		}
		return false
	}
}
