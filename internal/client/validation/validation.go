// Package validation checks user input before it is sent to the backend.
// A failed check yields a *ValidationError with one message per field and
// never reaches the network.
package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// MaxUploadSize is the largest file the backend accepts.
const MaxUploadSize = 5 << 20

// ImageExtensions are the file types accepted by the upload endpoints.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type LoginForm struct {
	Login    string `form:"login" validate:"required,min=3"`
	Password string `form:"password" validate:"required,min=4"`
}

type RegisterForm struct {
	Email    string `form:"email" validate:"required,mbemail"`
	Login    string `form:"login" validate:"required,min=3"`
	Password string `form:"password" validate:"required,min=4"`
}

type PostForm struct {
	Title   string `form:"title" validate:"notblank,min=3,max=200"`
	Content string `form:"content" validate:"notblank,min=10"`
}

type CommentForm struct {
	Content string `form:"content" validate:"notblank"`
}

type RatingForm struct {
	Value int `form:"value" validate:"oneof=-1 0 1"`
}

// ProfileForm holds optional profile changes; empty fields are not checked.
type ProfileForm struct {
	Email string `form:"email" validate:"omitempty,mbemail"`
	Login string `form:"login" validate:"omitempty,min=3"`
}

type UploadForm struct {
	Filename string `form:"file" validate:"required,imageext"`
	Size     int64  `form:"size" validate:"max=5242880"`
}

// ValidationError maps field names to human-readable problems.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, k+" "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			if name := f.Tag.Get("form"); name != "" {
				return name
			}
			return strings.ToLower(f.Name)
		})
		_ = v.RegisterValidation("mbemail", func(fl validator.FieldLevel) bool {
			return emailRe.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("imageext", func(fl validator.FieldLevel) bool {
			return slices.Contains(ImageExtensions, strings.ToLower(filepath.Ext(fl.Field().String())))
		})
		validate = v
	})
	return validate
}

// Struct validates one of the forms of this package.
func Struct(form any) error {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	out := &ValidationError{Fields: make(map[string]string, len(ve))}
	for _, fe := range ve {
		out.Fields[fe.Field()] = fieldError(fe)
	}
	return out
}

func fieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "mbemail":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Int64 {
			return "is too large (max 5MB)"
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "imageext":
		return "must be an image (" + strings.Join(ImageExtensions, ", ") + ")"
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}

// Field returns the message for field, if err is a *ValidationError that has one.
func Field(err error, field string) (string, bool) {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return "", false
	}
	msg, ok := ve.Fields[field]
	return msg, ok
}
