package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/benvon/careerontrack/internal/apperr"
	"github.com/benvon/careerontrack/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	// MinPasswordLength is the minimum password length accepted at login and registration
	MinPasswordLength = 6
	// MaxNameLength is the maximum display name length
	MaxNameLength = 100
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate

	looseEmailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("goal_status", validateGoalStatus); err != nil {
		panic(fmt.Sprintf("failed to register goal_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("loose_email", validateLooseEmail); err != nil {
		panic(fmt.Sprintf("failed to register loose_email validator: %v", err))
	}
	if err := Validate.RegisterValidation("goal_title", validateGoalTitle); err != nil {
		panic(fmt.Sprintf("failed to register goal_title validator: %v", err))
	}
}

// validateGoalStatus validates that a string is a valid GoalStatus enum value
func validateGoalStatus(fl validator.FieldLevel) bool {
	return models.GoalStatus(fl.Field().String()).Valid()
}

func validateLooseEmail(fl validator.FieldLevel) bool {
	return looseEmailPattern.MatchString(fl.Field().String())
}

func validateGoalTitle(fl validator.FieldLevel) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
	return n >= models.MinGoalTitleLength && n <= models.MaxGoalTitleLength
}

// SanitizeText removes control characters other than newline and tab, then
// trims surrounding whitespace
func SanitizeText(text string) string {
	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return strings.TrimSpace(sanitized.String())
}

// NormalizeEmail trims and lowercases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Credentials are the fields checked before a login or registration request
type Credentials struct {
	Email    string `validate:"required,loose_email"`
	Password string `validate:"required,min=6"`
}

// ValidateCredentials checks an already-normalized email and password.
// The first failing field is reported.
func ValidateCredentials(email, password string) error {
	return toValidationError(Validate.Struct(Credentials{Email: email, Password: password}))
}

// ValidateEmail checks an already-normalized email on its own, as in a profile edit
func ValidateEmail(email string) error {
	if email == "" {
		return apperr.NewValidationError("email", "Email is required")
	}
	if !looseEmailPattern.MatchString(email) {
		return apperr.NewValidationError("email", "Email is invalid")
	}
	return nil
}

// ValidateName checks a display name for registration and profile edits
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperr.NewValidationError("name", "Name is required")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return apperr.NewValidationError("name", fmt.Sprintf("Name must be at most %d characters", MaxNameLength))
	}
	return nil
}

// ValidateGoalTitle checks a goal title after trimming
func ValidateGoalTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return apperr.NewValidationError("title", "Title is required")
	}
	if utf8.RuneCountInString(trimmed) < models.MinGoalTitleLength {
		return apperr.NewValidationError("title", fmt.Sprintf("Title must be at least %d characters", models.MinGoalTitleLength))
	}
	if utf8.RuneCountInString(trimmed) > models.MaxGoalTitleLength {
		return apperr.NewValidationError("title", fmt.Sprintf("Title must be at most %d characters", models.MaxGoalTitleLength))
	}
	return nil
}

// ValidateGoalStatus validates a GoalStatus string value
func ValidateGoalStatus(value string) error {
	if models.GoalStatus(value).Valid() {
		return nil
	}
	return apperr.NewValidationError("status", fmt.Sprintf("invalid status: %s (must be 'not_started', 'in_progress', or 'completed')", value))
}

// ValidateProgress checks that progress is a percentage
func ValidateProgress(progress int) error {
	if progress < 0 || progress > models.MaxGoalProgress {
		return apperr.NewValidationError("progress", fmt.Sprintf("Progress must be between 0 and %d", models.MaxGoalProgress))
	}
	return nil
}

// ValidateGoalPatch checks every field present in a partial goal update
func ValidateGoalPatch(patch models.GoalPatch) error {
	if patch.IsEmpty() {
		return apperr.NewValidationError("", "No fields to update")
	}
	if err := ValidateStatusProgress(patch.Status, patch.Progress); err != nil {
		return err
	}
	if patch.Title != nil {
		if err := ValidateGoalTitle(*patch.Title); err != nil {
			return err
		}
	}
	if patch.Status != nil {
		if err := ValidateGoalStatus(string(*patch.Status)); err != nil {
			return err
		}
	}
	if patch.Progress != nil {
		if err := ValidateProgress(*patch.Progress); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStatusProgress rejects a change that sets both status and progress.
// Each one determines the other, so only one may be given.
func ValidateStatusProgress(status *models.GoalStatus, progress *int) error {
	if status != nil && progress != nil {
		return apperr.NewValidationError("status", "Set either status or progress, not both")
	}
	return nil
}

// FromValidator converts validator errors into a ValidationError for the first failing field
func FromValidator(err error) error {
	return toValidationError(err)
}

func toValidationError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.NewValidationError("", err.Error())
	}
	fe := fieldErrs[0]
	field := strings.ToLower(fe.Field())
	return apperr.NewValidationError(field, fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "loose_email", "email":
		return label + " is invalid"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "goal_status":
		return fmt.Sprintf("%s must be 'not_started', 'in_progress', or 'completed'", label)
	case "goal_title":
		return fmt.Sprintf("%s must be at least %d characters", label, models.MinGoalTitleLength)
	case "gte", "lte":
		return fmt.Sprintf("%s must be between 0 and %d", label, models.MaxGoalProgress)
	default:
		return fmt.Sprintf("%s failed %s validation", label, fe.Tag())
	}
}
