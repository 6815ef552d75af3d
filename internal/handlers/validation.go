package handlers

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// fieldMessages maps "<json field>.<tag>" onto the message reported to clients.
// Product messages match the ones produced by models.Product.Validate.
var fieldMessages = map[string]string{
	"name.required":        "name required",
	"name.notblank":        "name required",
	"name.max":             "name too long",
	"description.required": "description required",
	"price.required":       "price required",
	"price.gte":            "price must be non-negative",
	"stock.required":       "stock required",
	"stock.gte":            "stock must be non-negative integer",
	"stock.lte":            "stock must be at most 2147483647",
	"stock.wholenumber":    "stock must be non-negative integer",
}

// newValidator returns a validator that reports JSON field names and knows the
// custom tags used by the request types.
func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Validate decimals as floats so numeric tags such as gte apply.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "wholenumber", func(fl validator.FieldLevel) bool {
		switch fl.Field().Kind() {
		case reflect.Float32, reflect.Float64:
			f := fl.Field().Float()
			return f == math.Trunc(f) && !math.IsInf(f, 0)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return true
		default:
			return false
		}
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// validationMessages collects every violation reported by the validator, keyed by
// JSON field name.
func validationMessages(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return map[string]string{"body": err.Error()}
	}

	errorMessages := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		if msg, ok := fieldMessages[e.Field()+"."+e.Tag()]; ok {
			errorMessages[e.Field()] = msg
			continue
		}
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return errorMessages
}
