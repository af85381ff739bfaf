package validation

import (
	"errors"
	"testing"

	"reporthub/internal/models"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "John Doe",
			wantErr: false,
		},
		{
			name:    "single name",
			input:   "John",
			wantErr: false,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "name too short",
			input:   "J",
			wantErr: true,
		},
		{
			name:    "name with hyphen",
			input:   "Mary-Jane",
			wantErr: false,
		},
		{
			name:    "name with apostrophe",
			input:   "O'Brien",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "password exactly 8 characters",
			password: "pass1234",
			wantErr:  false,
		},
		{
			name:     "password too short",
			password: "pass123",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "long password",
			password: "thisIsAVeryLongPasswordThatShouldBeValid123",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateReport(t *testing.T) {
	yes := true
	superID := int64(1)
	zero := int64(0)
	hours := 12
	negative := -1
	tooMany := MaxMonthlyHours + 1

	valid := ReportInput{
		FullName:         "Ana López",
		Role:             models.RolePublicador,
		Participated:     &yes,
		SuperintendentID: &superID,
	}

	tests := []struct {
		name      string
		mutate    func(in *ReportInput)
		wantField string
	}{
		{name: "valid report", mutate: func(in *ReportInput) {}},
		{name: "valid with hours", mutate: func(in *ReportInput) { in.Hours = &hours }},
		{name: "blank name", mutate: func(in *ReportInput) { in.FullName = "   " }, wantField: "full_name"},
		{name: "unknown role", mutate: func(in *ReportInput) { in.Role = "anciano" }, wantField: "role"},
		{name: "participation unanswered", mutate: func(in *ReportInput) { in.Participated = nil }, wantField: "participated"},
		{name: "no superintendent", mutate: func(in *ReportInput) { in.SuperintendentID = nil }, wantField: "superintendent_id"},
		{name: "zero superintendent", mutate: func(in *ReportInput) { in.SuperintendentID = &zero }, wantField: "superintendent_id"},
		{name: "negative hours", mutate: func(in *ReportInput) { in.Hours = &negative }, wantField: "hours"},
		{name: "too many hours", mutate: func(in *ReportInput) { in.Hours = &tooMany }, wantField: "hours"},
		{name: "negative courses", mutate: func(in *ReportInput) { in.BibleCourses = &negative }, wantField: "bible_courses"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			err := ValidateReport(in)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateReport() error = %v, want nil", err)
				}
				return
			}
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("ValidateReport() error = %v, want ValidationError", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", verr.Field, tt.wantField)
			}
		})
	}
}
