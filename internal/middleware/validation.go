package middleware

import (
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the domain validation tags on gin's binding
// engine. Call once before building the router.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("clock", validClock); err != nil {
		return err
	}
	if err := v.RegisterValidation("dateonly", validDateOnly); err != nil {
		return err
	}

	// Report field names from json tags so validation errors match the
	// request payload.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return fld.Name
		}
		return name
	})

	return nil
}

// validClock accepts wall-clock times in 24h "HH:MM" form.
func validClock(fl validator.FieldLevel) bool {
	_, err := time.Parse("15:04", fl.Field().String())
	return err == nil
}

// validDateOnly accepts calendar dates in "YYYY-MM-DD" form.
func validDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}
