package validation

import (
	"errors"
	"reflect"
	"strings"

	"hunttickets/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("uuidv4", func(fl validator.FieldLevel) bool {
		return IsUUIDv4(fl.Field().String())
	})
	return v
}

// filterMessages maps "<field>.<tag>" to the message shown to clients.
var filterMessages = map[string]string{
	"producer_id.uuidv4": "Invalid producer ID format in filters",
	"limit.min":          "Limit must be a positive integer",
	"offset.min":         "Offset must be a non-negative integer",
	"event_id.min":       "Event ID must be a positive integer",
}

func ValidateEventFilters(f *models.EventFilters) Result {
	errs := structErrors(f, nil)
	if f.DateFrom != nil && f.DateTo != nil && f.DateTo.Before(*f.DateFrom) {
		errs = append(errs, "date_to must not be before date_from")
	}
	return newResult(errs)
}

func ValidateTicketFilters(f *models.TicketFilters) Result {
	return newResult(structErrors(f, nil))
}

func ValidatePoliciesFilters(f *models.PoliciesFilters) Result {
	return newResult(structErrors(f, map[string]string{
		"limit.min": "Limit must be a positive integer between 1 and 1000",
		"limit.max": "Limit must be a positive integer between 1 and 1000",
	}))
}

func structErrors(s any, overrides map[string]string) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	errs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := fe.Field() + "." + fe.Tag()
		if msg, ok := overrides[key]; ok {
			errs = append(errs, msg)
		} else if msg, ok := filterMessages[key]; ok {
			errs = append(errs, msg)
		} else {
			errs = append(errs, "Invalid value for "+fe.Field())
		}
	}
	return errs
}
