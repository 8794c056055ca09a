package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/agrolink/consult-sync/internal/biz/domain"
)

// Validator wraps go-playground/validator with the platform's custom tags
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
		value, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := time.Parse("15:04", value)
		return err == nil
	})

	v.RegisterValidation("slotduration", func(fl validator.FieldLevel) bool {
		if fl.Field().Kind() != reflect.Int {
			return false
		}
		return domain.IsAllowedSlotDuration(int(fl.Field().Int()))
	})

	return &Validator{v: v}
}

// Struct validates s and converts the first failure into a
// *domain.ValidationError with a readable reason
func (v *Validator) Struct(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	return toDomain(ve[0])
}

func toDomain(fe validator.FieldError) *domain.ValidationError {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return &domain.ValidationError{Field: field, Reason: "is required"}
	case "min":
		if fe.Kind() == reflect.String {
			return &domain.ValidationError{Field: field, Reason: fmt.Sprintf("must be at least %s characters", fe.Param())}
		}
		return &domain.ValidationError{Field: field, Reason: "must be at least " + fe.Param()}
	case "max":
		if fe.Kind() == reflect.String {
			return &domain.ValidationError{Field: field, Reason: fmt.Sprintf("must be at most %s characters", fe.Param())}
		}
		return &domain.ValidationError{Field: field, Reason: "must be at most " + fe.Param()}
	case "eqfield":
		return &domain.ValidationError{Field: field, Reason: "does not match"}
	case "clock":
		return &domain.ValidationError{Field: field, Reason: "must be a time in HH:MM format"}
	case "slotduration":
		return &domain.ValidationError{Field: field, Reason: fmt.Sprintf("must be one of %v minutes", domain.AllowedSlotDurations)}
	case "oneof":
		return &domain.ValidationError{Field: field, Reason: "must be one of " + fe.Param()}
	}
	return &domain.ValidationError{Field: field, Reason: "is invalid"}
}
