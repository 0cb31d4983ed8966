// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"budgetly/internal/models"
)

// Rule maps a set of failed validation tags to the message reported to the
// client. Rules are evaluated in order; the first one with a matching tag wins.
type Rule struct {
	Tags    []string
	Message string
}

var registerOnce sync.Once

// Register registers all custom validators with the Gin binding engine.
// It is safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("date_only", validateDate)
			_ = v.RegisterValidation("after_date", validateAfterDate)
			_ = v.RegisterValidation("money", validateMoney)
		}
	})
}

// Struct validates obj with the same engine and tags used when binding requests.
func Struct(obj any) error {
	Register()
	return binding.Validator.ValidateStruct(obj)
}

// FirstViolation returns the message of the first rule matched by err.
// It returns false when err is not a validation error or no rule matches.
func FirstViolation(err error, rules []Rule) (string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "", false
	}
	for _, rule := range rules {
		for _, fe := range verrs {
			for _, tag := range rule.Tags {
				if fe.Tag() == tag {
					return rule.Message, true
				}
			}
		}
	}
	return "", false
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := models.ParseDate(fl.Field().String())
	return err == nil
}

// validateMoney checks that a float has at most two decimal places, the
// scale of the numeric(12,2) money columns.
func validateMoney(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Float32 && field.Kind() != reflect.Float64 {
		return false
	}
	s := strconv.FormatFloat(field.Float(), 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	return dot < 0 || len(s)-dot-1 <= 2
}

// validateAfterDate checks that the field is a date strictly after the
// sibling field named by the tag parameter. Unparseable values pass here and
// are reported by date_only instead.
func validateAfterDate(fl validator.FieldLevel) bool {
	end, err := models.ParseDate(fl.Field().String())
	if err != nil {
		return true
	}

	parent := fl.Parent()
	if parent.Kind() == reflect.Ptr {
		parent = parent.Elem()
	}
	other := parent.FieldByName(fl.Param())
	if !other.IsValid() || other.Kind() != reflect.String {
		return false
	}
	start, err := models.ParseDate(other.String())
	if err != nil {
		return true
	}
	return end.After(start)
}
