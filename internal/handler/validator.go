package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/store-rating/internal/model"
)

// Password policy applied to every password a user chooses.
const (
	passwordMinLen   = 8
	passwordMaxLen   = 16
	passwordSpecials = "!@#$&*"
	passwordUppers   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// RequestValidator adapts go-playground/validator to echo.Validator.
type RequestValidator struct {
	v *validator.Validate
}

// NewValidator returns the validator installed on the echo instance.  Field
// names in errors are the JSON names.
func NewValidator() *RequestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	})
	return &RequestValidator{v: v}
}

func (rv *RequestValidator) Validate(i any) error {
	return rv.v.Struct(i)
}

// ValidPassword reports whether p is 8-16 characters long with at least one
// uppercase letter and one of !@#$&*.
func ValidPassword(p string) bool {
	n := utf8.RuneCountInString(p)
	return n >= passwordMinLen && n <= passwordMaxLen &&
		strings.ContainsAny(p, passwordUppers) &&
		strings.ContainsAny(p, passwordSpecials)
}

// bindAndValidate decodes the request into dst, lets prepare normalize it and
// then runs struct validation.  On failure it returns the client-facing
// message.
func bindAndValidate(c echo.Context, dst any, prepare func()) (string, bool) {
	if err := c.Bind(dst); err != nil {
		return "invalid request body", false
	}
	if prepare != nil {
		prepare()
	}
	if err := c.Validate(dst); err != nil {
		return validationMessage(err), false
	}
	return "", true
}

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request"
	}
	fe := ve[0]
	if fe.Field() == "rating" {
		return fmt.Sprintf("rating must be an integer between %d and %d", model.MinRating, model.MaxRating)
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "password":
		return fmt.Sprintf("%s must be %d-%d characters with at least one uppercase letter and one of %s",
			fe.Field(), passwordMinLen, passwordMaxLen, passwordSpecials)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min", "gte", "lte":
		return fmt.Sprintf("%s is out of range", fe.Field())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
