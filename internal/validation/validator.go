// Package validation wraps go-playground/validator with the tags and error
// shape used by the client: request bodies are checked before they are sent
// and response bodies are checked after they are decoded.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/ashureev/castline/internal/domain"
	"github.com/go-playground/validator/v10"
)

// ErrInvalid is matched by every *Error via errors.Is.
var ErrInvalid = errors.New("validation failed")

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed field.
type FieldError struct {
	Field   string
	Message string
}

// Error is a collection of failed fields.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return ErrInvalid.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Field == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Field+": "+f.Message)
	}
	return strings.Join(parts, "; ")
}

// Is makes errors.Is(err, ErrInvalid) true.
func (e *Error) Is(target error) bool {
	return target == ErrInvalid
}

// First describes the first failed field, e.g. "password is required".
func (e *Error) First() string {
	if len(e.Fields) == 0 {
		return ErrInvalid.Error()
	}
	f := e.Fields[0]
	if f.Field == "" {
		return f.Message
	}
	return f.Field + " " + f.Message
}

// Field builds an *Error for a check done by hand.
func Field(field, message string) error {
	return &Error{Fields: []FieldError{{Field: field, Message: message}}}
}

// Get returns the shared validator instance.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
			return domain.IsRole(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// Struct validates a struct (or pointer to one).
func Struct(s any) error {
	return convert("", Get().Struct(s))
}

// Value validates a decoded value: structs are validated directly, slices
// and arrays element by element, anything else is accepted.
func Value(v any) error {
	return value("", reflect.ValueOf(v))
}

func value(prefix string, rv reflect.Value) error {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		return convert(prefix, Get().Struct(rv.Interface()))
	case reflect.Slice, reflect.Array:
		var all Error
		for i := 0; i < rv.Len(); i++ {
			err := value(fmt.Sprintf("%s[%d]", prefix, i), rv.Index(i))
			var verr *Error
			if errors.As(err, &verr) {
				all.Fields = append(all.Fields, verr.Fields...)
			} else if err != nil {
				return err
			}
		}
		if len(all.Fields) > 0 {
			return &all
		}
	}
	return nil
}

func convert(prefix string, err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(prefix, fe.Namespace()),
			Message: message(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(prefix, namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		namespace = rest
	}
	if prefix == "" {
		return namespace
	}
	return prefix + "." + namespace
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
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "role":
		return "must be a valid role"
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
