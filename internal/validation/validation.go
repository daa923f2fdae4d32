// Package validation holds the single validator engine used both by gin's
// request binding and by the services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/harentsoaR/medlab-api/internal/apperr"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = validate.RegisterValidation("notpast", notPast)
	})
	return validate
}

// now is replaced in tests.
var now = time.Now

// notPast accepts instants at or after the current time.
func notPast(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.Before(now())
}

// Normalizer is implemented by request inputs that trim or canonicalize
// their fields. Gin binding calls Normalize before the rules run.
type Normalizer interface {
	Normalize()
}

// Struct validates v and returns an apperr validation error listing every
// violated field.
func Struct(v any) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}
	return Translate(err)
}

// Translate converts validator errors into an apperr validation error.
// Other errors (e.g. malformed JSON) become a single body-level violation.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Invalid request body", apperr.FieldError{Field: "body", Message: err.Error()})
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, apperr.FieldError{Field: fieldPath(fe), Message: message(fe)})
	}
	return apperr.Validation("Validation failed", fields...)
}

// Merge appends extra violations to a validation error produced by Struct.
// It returns nil when there is nothing to report.
func Merge(err error, extra ...apperr.FieldError) error {
	if err == nil && len(extra) == 0 {
		return nil
	}
	if err == nil {
		return apperr.Validation("Validation failed", extra...)
	}
	appErr, ok := apperr.As(err)
	if !ok || appErr.Kind != apperr.KindValidation {
		return err
	}
	appErr.Fields = append(appErr.Fields, extra...)
	return appErr
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "numeric":
		return "must contain digits only"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", strings.ToLower(fe.Param()[:1])+fe.Param()[1:])
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "notpast":
		return "must not be in the past"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Gin adapts the engine to gin's binding.StructValidator.
type Gin struct{}

var _ binding.StructValidator = Gin{}

func (Gin) ValidateStruct(obj any) error {
	if obj == nil {
		return nil
	}
	v := reflect.ValueOf(obj)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	if n, ok := obj.(Normalizer); ok {
		n.Normalize()
	}
	return Struct(obj)
}

func (Gin) Engine() any {
	return engine()
}

// Install makes gin bind requests through this engine.
func Install() {
	binding.Validator = Gin{}
}
