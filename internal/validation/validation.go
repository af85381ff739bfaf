package validation

import (
	"fmt"
	"regexp"
	"strings"

	"reporthub/internal/models"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// MaxMonthlyHours bounds the hours a single report may claim
const MaxMonthlyHours = 31 * 24

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ReportInput holds the member-entered fields of a service report.
// Pointers distinguish an unanswered question from a zero answer.
type ReportInput struct {
	FullName         string
	Role             models.Role
	Participated     *bool
	SuperintendentID *int64
	Hours            *int
	BibleCourses     *int
}

// ValidateReport checks a report submission in the order the form asks
func ValidateReport(in ReportInput) error {
	if strings.TrimSpace(in.FullName) == "" {
		return ValidationError{Field: "full_name", Message: "Por favor ingrese su nombre completo"}
	}
	if !in.Role.Valid() {
		return ValidationError{Field: "role", Message: "Por favor seleccione su rol"}
	}
	if in.Participated == nil {
		return ValidationError{Field: "participated", Message: "Por favor indique si participó en la predicación"}
	}
	if in.SuperintendentID == nil || *in.SuperintendentID <= 0 {
		return ValidationError{Field: "superintendent_id", Message: "Por favor seleccione su superintendente de servicio"}
	}
	if in.Hours != nil && (*in.Hours < 0 || *in.Hours > MaxMonthlyHours) {
		return ValidationError{Field: "hours", Message: "Número de horas inválido"}
	}
	if in.BibleCourses != nil && *in.BibleCourses < 0 {
		return ValidationError{Field: "bible_courses", Message: "Número de cursos bíblicos inválido"}
	}
	return nil
}

// ValidateGroup checks a service group number
func ValidateGroup(group int) error {
	if group <= 0 {
		return ValidationError{Field: "group_number", Message: "group number must be positive"}
	}
	return nil
}
