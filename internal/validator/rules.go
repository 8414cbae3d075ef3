package validator

import (
	"log"

	"jobportal_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-user-status", statusRule(models.KindUser))
	mustRegister("is-job-status", statusRule(models.KindJob))
	mustRegister("is-company-status", statusRule(models.KindCompany))
	mustRegister("is-application-status", statusRule(models.KindApplication))
	mustRegister("is-comment-status", statusRule(models.KindBlogComment))
	mustRegister("is-entity-kind", validateEntityKind)
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // пустые значения обрабатывает 'required'
	}
	return models.IsValidRole(value)
}

func statusRule(kind models.EntityKind) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, err := models.ValidateStatus(kind, value)
		return err == nil
	}
}

func validateEntityKind(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, ok := models.ParseEntityKind(value)
	return ok
}
