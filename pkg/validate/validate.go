package validate

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const (
	TagDate     = "date"
	TagClock    = "clock"
	TagLater    = "later"
	TagPassword = "password"

	passwordMinLen  = 12
	passwordSpecial = "$%^*-_"
)

var (
	dateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewCustomValidator returns an echo.Validator with the booking tags
// registered:
//
//	notblank  non-empty after trimming spaces
//	date      YYYY-MM-DD naming a real calendar day
//	clock     24h HH:MM
//	later=F   clock strictly after the clock held by sibling field F
//	password  12+ chars from [A-Za-z0-9$%^*-_] with at least one special
func NewCustomValidator() *CustomValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation(TagDate, func(fl validator.FieldLevel) bool {
		return IsDate(fl.Field().String())
	})
	_ = v.RegisterValidation(TagClock, func(fl validator.FieldLevel) bool {
		return IsClock(fl.Field().String())
	})
	_ = v.RegisterValidation(TagLater, later)
	_ = v.RegisterValidation(TagPassword, func(fl validator.FieldLevel) bool {
		return IsPassword(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

// Validate returns nil or an error whose message lists every failed field.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "notblank":
		return fe.Field() + " must not be blank"
	case "email":
		return fe.Field() + " must be a valid email"
	case TagDate:
		return fe.Field() + " must be a YYYY-MM-DD date"
	case TagClock:
		return fe.Field() + " must be HH:MM"
	case TagLater:
		return fe.Field() + " must be later than " + fe.Param()
	case TagPassword:
		return fe.Field() + " must be at least 12 characters of [A-Za-z0-9$%^*-_] with one of $%^*-_"
	default:
		return fe.Field() + " is invalid"
	}
}

func IsDate(s string) bool {
	if !dateRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func IsClock(s string) bool {
	return clockRe.MatchString(s)
}

// IsPassword mirrors the identity provider's password policy.
func IsPassword(s string) bool {
	if len(s) < passwordMinLen {
		return false
	}
	var alnum, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			alnum = true
		case strings.ContainsRune(passwordSpecial, r):
			special = true
		default:
			return false
		}
	}
	return alnum && special
}

func later(fl validator.FieldLevel) bool {
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() != reflect.Struct {
		return false
	}
	other := parent.FieldByName(fl.Param())
	if !other.IsValid() || other.Kind() != reflect.String {
		return false
	}
	end, start := fl.Field().String(), other.String()
	if !IsClock(end) || !IsClock(start) {
		// format errors are reported by the clock tag
		return true
	}
	// zero-padded HH:MM orders lexically
	return end > start
}
