package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hookrelay-io/hookrelay/pkg/errs"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var validationErr = errors.New("request validation")

func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	validateErr := errs.NewValidateError(validationErr)
	t := reflect.ValueOf(v).Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for _, e := range err.(validator.ValidationErrors) {
		fields := strings.Split(e.StructNamespace(), ".")
		name := fields[len(fields)-1]
		if f, ok := t.FieldByName(name); ok {
			name = fieldName(f)
		}
		validateErr.Fields[name] = formatError(e)
	}
	return validateErr
}

func formatError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required field missing"
	case "url":
		return fmt.Sprintf("invalid url: %s", fe.Value())
	case "oneof":
		return fmt.Sprintf("invalid value: %s", fe.Value())
	case "gt":
		return fmt.Sprintf("value must be > %s", fe.Param())
	case "gte":
		return fmt.Sprintf("value must be >= %s", fe.Param())
	case "min":
		return fmt.Sprintf("length must be at least %s", fe.Param())
	}
	return fe.Error()
}

func fieldName(field reflect.StructField) string {
	name := strings.Split(field.Tag.Get("json"), ",")[0]
	if name == "" {
		name = field.Name
	}
	return name
}
