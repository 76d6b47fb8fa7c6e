package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/student-risk-api/pkg/errors"
)

// NewValidator returns a validator reporting fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func validationError(err error, message string) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	details := make([]appErrors.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, appErrors.FieldError{Field: fe.Field(), Message: describe(fe)})
	}
	appErr := appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, message), details)
	appErr.Err = err
	return appErr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// flattenDetails joins validation details into one line for roster row errors.
func flattenDetails(err error) string {
	appErr := appErrors.FromError(err)
	if len(appErr.Details) == 0 {
		return appErr.Error()
	}
	parts := make([]string, 0, len(appErr.Details))
	for _, d := range appErr.Details {
		parts = append(parts, d.Field+" "+d.Message)
	}
	return strings.Join(parts, "; ")
}
