package validation

import (
	"regexp"
	"strings"
	"time"

	"healthlab-backend/internal/httpx"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

var testCodeRegex = regexp.MustCompile(`^[A-Z0-9]{2,12}$`)

func New() *Validator {
	v := validator.New()

	v.RegisterValidation("isotime", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := httpx.ParseISOTime(value, time.UTC)
		return err == nil
	})

	v.RegisterValidation("testcode", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return testCodeRegex.MatchString(strings.ToUpper(strings.TrimSpace(value)))
	})

	return &Validator{v: v}
}

func (v *Validator) Struct(s interface{}) error {
	return v.v.Struct(s)
}

func (v *Validator) ValidationErrors(err error) validator.ValidationErrors {
	if err == nil {
		return nil
	}
	if ve, ok := err.(validator.ValidationErrors); ok {
		return ve
	}
	return nil
}
