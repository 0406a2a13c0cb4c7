package util

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/guregu/null.v3"
)

func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterValidation("caseinsensitiveoneof", caseInsensitiveOneOf)
	validate.RegisterValidation("notblank", notBlank)
	validate.RegisterCustomTypeFunc(nullIntValuer, null.Int{})
	validate.RegisterCustomTypeFunc(nullStringValuer, null.String{})

	return validate
}

func caseInsensitiveOneOf(fl validator.FieldLevel) bool {
	val := strings.ToLower(fl.Field().String())
	candidates := strings.Split(strings.ToLower(fl.Param()), " ")
	for _, v := range candidates {
		if val == v {
			return true
		}
	}
	return false
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func nullIntValuer(field reflect.Value) any {
	if valuer, ok := field.Interface().(null.Int); ok {
		if !valuer.Valid {
			return nil
		}
		return valuer.Int64
	}

	return nil
}

func nullStringValuer(field reflect.Value) any {
	if valuer, ok := field.Interface().(null.String); ok {
		if !valuer.Valid {
			return nil
		}
		return valuer.String
	}

	return nil
}
