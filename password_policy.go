package authgate

import (
	"errors"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
)

// PasswordPolicy is the configurable minimum-strength rule set applied
// to new passwords at signup and reset. The zero value enforces
// nothing; use DefaultPasswordPolicy for a sane baseline.
type PasswordPolicy struct {
	MinLength      int
	MaxLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireDigit   bool
	RequireSpecial bool
}

// DefaultPasswordPolicy mirrors the registration payload rules: at
// least 8 characters with mixed case and a digit.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:    8,
		MaxLength:    100,
		RequireUpper: true,
		RequireLower: true,
		RequireDigit: true,
	}
}

// Validate checks a candidate password against the policy.
func (p PasswordPolicy) Validate(password string) error {
	rules := []validation.Rule{validation.Required}

	if p.MinLength > 0 || p.MaxLength > 0 {
		upper := p.MaxLength
		if upper == 0 {
			upper = 1024
		}
		rules = append(rules, validation.Length(p.MinLength, upper))
	}

	if p.RequireUpper {
		rules = append(rules, validation.By(requireClass("an uppercase letter", unicode.IsUpper)))
	}
	if p.RequireLower {
		rules = append(rules, validation.By(requireClass("a lowercase letter", unicode.IsLower)))
	}
	if p.RequireDigit {
		rules = append(rules, validation.By(requireClass("a digit", unicode.IsDigit)))
	}
	if p.RequireSpecial {
		rules = append(rules, validation.By(requireClass("a special character", func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})))
	}

	return validation.Validate(password, rules...)
}

func requireClass(label string, match func(rune) bool) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		for _, r := range s {
			if match(r) {
				return nil
			}
		}
		return errors.New("must contain " + label)
	}
}
