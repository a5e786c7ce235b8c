package services

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/sm8ta/mongo_user_service/internal/core/domain"

	"github.com/go-playground/validator/v10"
)

const (
	basicEmailTag = "basicemail"
	// reported for a value of the wrong JSON type
	typeTag = "type"
)

// local@domain.tld, nothing stricter
var basicEmailPattern = regexp.MustCompile(`.+@.+\..+`)

var fieldMessages = map[string]map[string]string{
	"name": {
		"required": "Name is required",
		"min":      "Name must be at least 2 characters long",
		typeTag:    "Name must be a string",
	},
	"email": {
		"required":    "Email is required",
		basicEmailTag: "Please enter a valid email address",
		typeTag:       "Email must be a string",
	},
	"age": {
		"required": "Age is required",
		"min":      "Age must be at least 1",
		typeTag:    "Age must be a number",
	},
	"role": {
		typeTag: "Role must be a string",
	},
}

// UserValidator checks candidate records field by field, in the order name, email, age, role.
type UserValidator struct {
	validate *validator.Validate
}

func NewUserValidator(validate *validator.Validate) (*UserValidator, error) {
	err := validate.RegisterValidation(basicEmailTag, func(fl validator.FieldLevel) bool {
		return basicEmailPattern.MatchString(fl.Field().String())
	})
	if err != nil {
		return nil, fmt.Errorf("register %s validation: %w", basicEmailTag, err)
	}

	return &UserValidator{validate: validate}, nil
}

// ValidateCreate requires name, email and age and defaults the role.
func (v *UserValidator) ValidateCreate(input domain.UserInput) (*domain.User, error) {
	if messages := v.violations(input, false); len(messages) > 0 {
		return nil, domain.NewValidationError(messages)
	}

	role := domain.RegularUser
	if input.Role != nil {
		role = *input.Role
	}

	return &domain.User{
		Name:  *input.Name,
		Email: *input.Email,
		Age:   *input.Age,
		Role:  role,
	}, nil
}

// ValidateUpdate applies the create rules to the supplied fields only.
func (v *UserValidator) ValidateUpdate(input domain.UserInput) error {
	if messages := v.violations(input, true); len(messages) > 0 {
		return domain.NewValidationError(messages)
	}
	return nil
}

func (v *UserValidator) violations(input domain.UserInput, partial bool) []string {
	var messages []string

	check := func(field string, supplied bool, value interface{}, tag string) {
		if input.IsMistyped(field) {
			messages = append(messages, fieldMessages[field][typeTag])
			return
		}
		if !supplied {
			if !partial {
				messages = append(messages, fieldMessages[field]["required"])
			}
			return
		}
		if msg := v.firstViolation(field, value, tag); msg != "" {
			messages = append(messages, msg)
		}
	}

	check("name", input.Name != nil, deref(input.Name), "required,min=2")
	check("email", input.Email != nil, deref(input.Email), "required,"+basicEmailTag)
	// zero is a supplied value that fails min, not a missing one
	check("age", input.Age != nil, deref(input.Age), "min=1")

	if input.IsMistyped("role") {
		messages = append(messages, fieldMessages["role"][typeTag])
	} else if input.Role != nil {
		role := string(*input.Role)
		if err := v.validate.Var(role, "oneof=admin user"); err != nil {
			messages = append(messages, fmt.Sprintf("`%s` is not a valid enum value for path `role`.", role))
		}
	}

	return messages
}

func (v *UserValidator) firstViolation(field string, value interface{}, tag string) string {
	err := v.validate.Var(value, tag)
	if err == nil {
		return ""
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		rule := validationErrors[0].Tag()
		if msg, ok := fieldMessages[field][rule]; ok {
			return msg
		}
		return fmt.Sprintf("%s failed %s validation", field, rule)
	}

	return fmt.Sprintf("%s is invalid", field)
}

func deref[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
