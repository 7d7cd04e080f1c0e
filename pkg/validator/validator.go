package validator

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
)

// RegisterCustomValidations installs domain validations on gin's
// binding engine. Must run once before the router starts serving.
func RegisterCustomValidations() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine")
	}

	return engine.RegisterValidation("patient_status", func(fl validator.FieldLevel) bool {
		return model.PatientStatus(fl.Field().String()).Valid()
	})
}
