package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/corvusHold/outreach/internal/platform/apperror"
)

// ErrorResponse converts a validator error into a ValidationError (422) whose message lists
// every failing field.
func ErrorResponse(err error) *apperror.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperror.Validation(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return apperror.Validation(strings.Join(msgs, ", "))
}

// BindError wraps a request decoding failure.
func BindError(err error) *apperror.Error {
	return apperror.Validation("invalid request body").Wrap(err)
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "fqdn", "hostname":
		return fmt.Sprintf("%s must be a valid domain", field)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
