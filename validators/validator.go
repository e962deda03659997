package validators

import (
	"errors"
	"fmt"
	"strings"

	"travelmate/backend/models"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("continent", func(fl validator.FieldLevel) bool {
		return models.Continent(fl.Field().String()).Valid()
	})
	validate.RegisterValidation("room_category", func(fl validator.FieldLevel) bool {
		return models.RoomCategory(fl.Field().String()).Valid()
	})
	validate.RegisterValidation("destination_category", func(fl validator.FieldLevel) bool {
		return models.DestinationCategory(fl.Field().String()).Valid()
	})
	validate.RegisterValidation("expense", func(fl validator.FieldLevel) bool {
		return models.Expense(fl.Field().String()).Valid()
	})
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// ValidationErrors is returned by Struct; its Error() joins the field messages.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Struct validates s against its `validate` tags.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "continent", "room_category", "destination_category", "expense":
		return fmt.Sprintf("invalid %s: %q", fe.Field(), fe.Value())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

