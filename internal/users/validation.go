package users

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	tagAcceptedCountry = "accepted_country"
	tagPhone           = "phone"
)

// digit groups, optionally parenthesised, joined by at most one space, hyphen or dot
var phonePattern = regexp.MustCompile(`^\+?\(?[0-9]+\)?([ .-]?\(?[0-9]+\)?)*$`)

// Violations maps a field name to its human-readable message.
type Violations map[string]string

// RegistrationPolicy carries the business settings the rules depend on.
type RegistrationPolicy struct {
	AcceptedCountry string
}

type check struct {
	tag     string
	message string
}

// rule validates a single field; the first failing check produces the violation.
type rule struct {
	field  string
	value  func(RegistrationInput) any
	checks []check
}

// Validator applies the registration rules in order, collecting every violation.
type Validator struct {
	engine *validator.Validate
	rules  []rule
}

func NewValidator(policy RegistrationPolicy) (*Validator, error) {
	accepted := strings.TrimSpace(policy.AcceptedCountry)
	if accepted == "" {
		return nil, fmt.Errorf("accepted country is required")
	}

	engine := validator.New(validator.WithRequiredStructEnabled())
	if err := engine.RegisterValidation(tagAcceptedCountry, func(fl validator.FieldLevel) bool {
		return strings.EqualFold(strings.TrimSpace(fl.Field().String()), accepted)
	}); err != nil {
		return nil, fmt.Errorf("register %s: %w", tagAcceptedCountry, err)
	}
	if err := engine.RegisterValidation(tagPhone, func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("register %s: %w", tagPhone, err)
	}

	return &Validator{engine: engine, rules: registrationRules(accepted)}, nil
}

func registrationRules(country string) []rule {
	return []rule{
		{
			field:  "name",
			value:  func(in RegistrationInput) any { return strings.TrimSpace(in.Name) },
			checks: []check{{tag: "required", message: "Name is required"}},
		},
		{
			field:  "age",
			value:  func(in RegistrationInput) any { return in.Age },
			checks: []check{{tag: "min=18", message: "Age must be at least 18"}},
		},
		{
			field: "country",
			value: func(in RegistrationInput) any { return strings.TrimSpace(in.Country) },
			checks: []check{
				{tag: "required", message: "Country is required"},
				{tag: tagAcceptedCountry, message: "User must reside in " + country},
			},
		},
		{
			field: "email",
			value: func(in RegistrationInput) any { return strings.TrimSpace(in.Email) },
			checks: []check{
				{tag: "required", message: "Email is required"},
				{tag: "email", message: "Invalid email format"},
			},
		},
		{
			field: "phone",
			value: func(in RegistrationInput) any { return strings.TrimSpace(in.Phone) },
			checks: []check{
				{tag: "required", message: "Phone number is required"},
				{tag: tagPhone, message: "Phone number may only contain digits, spaces, hyphens, dots, parentheses and a leading +"},
			},
		},
	}
}

// Validate runs every rule and returns the collected violations (empty when valid).
func (v *Validator) Validate(in RegistrationInput) Violations {
	violations := Violations{}
	for _, r := range v.rules {
		value := r.value(in)
		for _, c := range r.checks {
			if err := v.engine.Var(value, c.tag); err != nil {
				violations[r.field] = c.message
				break
			}
		}
	}
	return violations
}
