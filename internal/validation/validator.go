package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"timetrack/internal/config"
)

// validate is shared by all validators. Struct fields report the name in
// their `field` tag.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("field"); name != "" {
			return name
		}
		return fld.Name
	})

	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = validate.RegisterValidation("singleline", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), unicode.IsControl)
	})
}

// Validator checks user input against the configured limits
type Validator struct {
	config *config.Config
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		config: nil, // Use defaults
	}
}

// NewValidatorWithConfig creates a new validator instance with configuration
func NewValidatorWithConfig(cfg *config.Config) *Validator {
	return &Validator{
		config: cfg,
	}
}

// IsReasonableDate checks if a date is within reasonable bounds
func (v *Validator) IsReasonableDate(t time.Time) bool {
	now := time.Now()
	// Allow dates from 10 years ago to 1 year in the future
	tenYearsAgo := now.AddDate(-10, 0, 0)
	oneYearFromNow := now.AddDate(1, 0, 0)

	return t.After(tenYearsAgo) && t.Before(oneYearFromNow)
}

// ValidateID validates a positive identifier
func (v *Validator) ValidateID(field string, id int64) error {
	ve := NewValidationError()
	ve.addValidatorErrors(validate.Var(id, "gt=0"), field)
	return ve.OrNil()
}

func (v *Validator) checkDescription(ve *ValidationError, description string) {
	if max := v.getDescriptionMaxLength(); max > 0 {
		ve.addValidatorErrors(validate.Var(description, fmt.Sprintf("max=%d", max)), "description")
	}
}

func (v *Validator) checkDate(ve *ValidationError, field string, t *time.Time) {
	if t != nil && !v.IsReasonableDate(*t) {
		ve.AddInvalidValueError(field, *t, "must be within reasonable date range")
	}
}

// getProjectNameMaxLength returns configured maximum project name length or default
func (v *Validator) getProjectNameMaxLength() int {
	if v.config != nil {
		return v.config.Validation.ProjectNameMaxLength
	}
	return 255 // Default maximum
}

// getDescriptionMaxLength returns configured maximum description length or default
func (v *Validator) getDescriptionMaxLength() int {
	if v.config != nil {
		return v.config.Validation.DescriptionMaxLength
	}
	return 1000 // Default maximum
}

// getMaxEntryDuration returns configured maximum entry duration or default
func (v *Validator) getMaxEntryDuration() time.Duration {
	if v.config != nil {
		return v.config.Validation.MaxEntryDuration
	}
	return 7 * 24 * time.Hour // Default maximum
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
