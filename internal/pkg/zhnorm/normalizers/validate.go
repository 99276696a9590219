package normalizers

import (
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterCustomValidators(v); err != nil {
		panic("normalizers: " + err.Error())
	}
	return v
}

// RegisterCustomValidators registers the validation tags used by normalizer
// configurations.
func RegisterCustomValidators(v *validator.Validate) error {
	return v.RegisterValidation("utf8text", validateUTF8Text)
}

func validateUTF8Text(fl validator.FieldLevel) bool {
	return utf8.ValidString(fl.Field().String())
}
