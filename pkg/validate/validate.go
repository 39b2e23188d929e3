// Package validate holds the input checks shared by the domain services:
// struct tags, email, phone numbers and dates.
package validate

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"
)

var ErrInvalid = errors.New("invalid input")

var v = validator.New(validator.WithRequiredStructEnabled())

// Struct validates `validate` tags and reports the first failing field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return fmt.Errorf("%w: %s is required", ErrInvalid, fe.Field())
		case "email":
			return fmt.Errorf("%w: invalid email format", ErrInvalid)
		default:
			return fmt.Errorf("%w: %s failed %s", ErrInvalid, fe.Field(), fe.Tag())
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalid, err)
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Email normalises and checks an address.
func Email(email string) (string, error) {
	email = NormalizeEmail(email)
	if err := v.Var(email, "required,email"); err != nil {
		return "", fmt.Errorf("%w: invalid email format", ErrInvalid)
	}
	return email, nil
}

// Phone checks that number is valid for country. country is either a
// region ("PT") or a calling code ("+351", "351").
func Phone(number, country string) error {
	number = strings.TrimSpace(number)
	country = strings.TrimSpace(country)
	if number == "" {
		return nil
	}
	if country == "" {
		return fmt.Errorf("%w: phone number and country code are required", ErrInvalid)
	}

	region := strings.ToUpper(country)
	if code, err := strconv.Atoi(strings.TrimPrefix(country, "+")); err == nil {
		region = phonenumbers.GetRegionCodeForCountryCode(code)
	}

	num, err := phonenumbers.Parse(number, region)
	if err != nil {
		return fmt.Errorf("%w: invalid phone number format", ErrInvalid)
	}
	if !phonenumbers.IsValidNumber(num) {
		return fmt.Errorf("%w: invalid phone number", ErrInvalid)
	}
	return nil
}

var dateLayouts = []string{time.DateOnly, time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}

// Date parses YYYY-MM-DD or an ISO-8601 timestamp.
func Date(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", ErrInvalid, s)
}

// Int parses a decimal integer form value.
func Int(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", ErrInvalid, field)
	}
	return n, nil
}

// Float parses a decimal form value.
func Float(field, s string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalid, field)
	}
	return f, nil
}

// ID parses a positive int64 identifier.
func ID(field, s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s", ErrInvalid, field)
	}
	return id, nil
}

// Bool accepts the usual form spellings of a boolean.
func Bool(field, s string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(s)))
	if err != nil {
		return false, fmt.Errorf("%w: %s must be true or false", ErrInvalid, field)
	}
	return b, nil
}
