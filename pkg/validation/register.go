package validation

import (
	"errors"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var fuelLevels = map[string]bool{
	"Full": true, "3/4": true, "1/2": true, "1/4": true, "Empty": true,
}

var damageSeverities = map[string]bool{
	"minor": true, "moderate": true, "major": true, "none": true,
}

var suspensionRoles = map[string]bool{
	"guest": true, "host": true,
}

// RegisterCustomValidators registers the domain validation tags with gin's
// binding validator. Must be called once at startup before any handler binds
// a payload that uses them.
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator engine is not *validator.Validate")
	}

	if err := v.RegisterValidation("fuel_level", func(fl validator.FieldLevel) bool {
		return fuelLevels[fl.Field().String()]
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("damage_severity", func(fl validator.FieldLevel) bool {
		return damageSeverities[fl.Field().String()]
	}); err != nil {
		return err
	}
	return v.RegisterValidation("suspension_role", func(fl validator.FieldLevel) bool {
		return suspensionRoles[fl.Field().String()]
	})
}
