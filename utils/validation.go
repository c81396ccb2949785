package utils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldErrors flattens gin binding errors into the API's field-level error list.
// Non-validator errors (malformed JSON etc.) produce a single generic entry.
func FieldErrors(err error) []gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, gin.H{
				"field":   strings.ToLower(fe.Field()[:1]) + fe.Field()[1:],
				"message": fieldMessage(fe),
			})
		}
		return out
	}
	return []gin.H{{"message": err.Error()}}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be %s or more", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
