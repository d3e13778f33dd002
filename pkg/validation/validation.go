// Package validation wraps go-playground/validator so services and HTTP
// decoders report field problems the same way.
package validation

import (
	stdErrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/evergreenfarmers/storefront/pkg/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// Struct validates dest and returns an INVALID_INPUT error whose details map
// each failing json field to a message.
func Struct(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return format(err)
	}
	return nil
}

// Var validates a single value against tag, for inputs that are not structs.
func Var(field string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		var errs validator.ValidationErrors
		if stdErrors.As(err, &errs) && len(errs) > 0 {
			msg := field + " " + message(errs[0])
			return pkgerrors.New(pkgerrors.CodeInvalidInput, msg).WithDetails(map[string]string{field: msg})
		}
		return pkgerrors.Wrap(pkgerrors.CodeInvalidInput, err, "validation failed")
	}
	return nil
}

// FieldErrors extracts the field map from an error produced by this package
// or any typed error carrying map[string]string details.
func FieldErrors(err error) map[string]string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return nil
	}
	if details, ok := typed.Details().(map[string]string); ok {
		return details
	}
	return nil
}

func format(err error) error {
	var errs validator.ValidationErrors
	if !stdErrors.As(err, &errs) {
		return pkgerrors.Wrap(pkgerrors.CodeInvalidInput, err, "validation failed")
	}
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = fieldErr.Field() + " " + message(fieldErr)
	}
	return pkgerrors.New(pkgerrors.CodeInvalidInput, "validation failed").WithDetails(details)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return "is invalid"
}
