package validators

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/barber-loyalty/internal/timezone"
)

// Register installs the custom binding tags on gin's validator engine.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("clock", validateClock); err != nil {
		return err
	}
	return v.RegisterValidation("isodate", validateISODate)
}

// clock accepts HH:MM or HH:MM:SS.
func validateClock(fl validator.FieldLevel) bool {
	_, err := timezone.ParseClock(fl.Field().String())
	return err == nil
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := timezone.ParseDate(fl.Field().String(), timezone.Location("UTC"))
	return err == nil
}
