package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"quizapp/services"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidation makes gin's validator report JSON field names and
// rejects request bodies carrying unknown fields.
func RegisterValidation() {
	registerOnce.Do(func() {
		binding.EnableDecoderDisallowUnknownFields = true

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}

// bindJSON decodes and validates the request body into obj. Any failure comes
// back as a *services.ValidationError naming the first offending field.
func bindJSON(c *gin.Context, obj interface{}) error {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return nil
	}

	var (
		verrs     validator.ValidationErrors
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
		sizeErr   *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return services.NewValidationError("", "Request body is required")
	case errors.As(err, &verrs) && len(verrs) > 0:
		return fieldError(verrs[0])
	case errors.As(err, &typeErr):
		return services.NewValidationError(typeErr.Field, fmt.Sprintf("%q must be %s", typeErr.Field, kindName(typeErr.Type.Kind())))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return services.NewValidationError("", "Request body must be valid JSON")
	case errors.As(err, &sizeErr):
		return services.NewValidationError("", "Request body is too large")
	}

	if field, ok := unknownField(err); ok {
		return services.NewValidationError(field, fmt.Sprintf("%q is not allowed", field))
	}
	return services.NewValidationError("", err.Error())
}

// unknownField extracts the name from encoding/json's `json: unknown field "x"`.
func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	return strings.Trim(strings.TrimPrefix(msg, prefix), `"`), true
}

func fieldError(fe validator.FieldError) *services.ValidationError {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "email":
		msg = "must be a valid email"
	case "oneof":
		msg = fmt.Sprintf("must be one of [%s]", strings.Join(strings.Fields(fe.Param()), ", "))
	case "gt":
		if fe.Param() == "0" {
			msg = "must be a positive number"
		} else {
			msg = "must be greater than " + fe.Param()
		}
	case "min":
		switch fe.Kind() {
		case reflect.String:
			msg = fmt.Sprintf("length must be at least %s characters long", fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			msg = fmt.Sprintf("must contain at least %s items", fe.Param())
		default:
			msg = "must be greater than or equal to " + fe.Param()
		}
	case "max":
		switch fe.Kind() {
		case reflect.String:
			msg = fmt.Sprintf("length must be less than or equal to %s characters long", fe.Param())
		case reflect.Slice, reflect.Array, reflect.Map:
			msg = fmt.Sprintf("must contain less than or equal to %s items", fe.Param())
		default:
			msg = "must be less than or equal to " + fe.Param()
		}
	default:
		msg = "is invalid"
	}

	return services.NewValidationError(field, fmt.Sprintf("%q %s", field, msg))
}

func kindName(k reflect.Kind) string {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "of type object"
	}
}
