package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// FieldError is one entry of the 400-response error array.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phonePattern = regexp.MustCompile(`^\d{9}$`)
	alnumPattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

func ValidEmail(email string) bool {
	return len(email) <= 100 && emailPattern.MatchString(email)
}

// ValidPassword enforces 8-30 characters including at least one lowercase
// letter, one uppercase letter, one digit and one symbol.
func ValidPassword(password string) bool {
	if len(password) < 8 || len(password) > 30 {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return lower && upper && digit && symbol
}

func ValidUserName(userName string) bool {
	return len(userName) >= 3 && len(userName) <= 30 && alnumPattern.MatchString(userName)
}

func ValidPhoneNumber(phone string) bool {
	return phonePattern.MatchString(phone)
}

type SignupInput struct {
	FullName    string
	UserName    string
	Email       string
	PhoneNumber string
	Password    string
	Role        string
}

// ValidateSignup runs presence checks on every required field first, then the
// structural rules, collecting one error per offending field in input order.
func ValidateSignup(in SignupInput) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(in.FullName) == "" {
		errs = append(errs, FieldError{"fullName", "Full name is required"})
	}
	if strings.TrimSpace(in.UserName) == "" {
		errs = append(errs, FieldError{"userName", "Username is required"})
	}
	if strings.TrimSpace(in.Email) == "" {
		errs = append(errs, FieldError{"email", "Email is required"})
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		errs = append(errs, FieldError{"phoneNumber", "Phone number is required"})
	}
	if in.Password == "" {
		errs = append(errs, FieldError{"password", "Password is required"})
	}
	if in.Role != "" && in.Role != "user" && in.Role != "admin" {
		errs = append(errs, FieldError{"role", "Invalid role"})
	}
	if len(errs) > 0 {
		return errs
	}

	if l := len(strings.TrimSpace(in.FullName)); l < 3 || l > 50 {
		errs = append(errs, FieldError{"fullName", "Full name must be between 3 and 50 characters"})
	}
	if !ValidUserName(in.UserName) {
		errs = append(errs, FieldError{"userName", "Username must be 3-30 alphanumeric characters"})
	}
	if !ValidEmail(in.Email) {
		errs = append(errs, FieldError{"email", "Please provide a valid email address"})
	}
	if !ValidPhoneNumber(in.PhoneNumber) {
		errs = append(errs, FieldError{"phoneNumber", "Phone number must be exactly 9 digits"})
	}
	if !ValidPassword(in.Password) {
		errs = append(errs, FieldError{"password", "Password must be 8-30 characters with lowercase, uppercase, digit and symbol"})
	}
	return errs
}

type ProfileInput struct {
	FullName    string
	UserName    string
	Email       string
	PhoneNumber string
}

func ValidateProfile(in ProfileInput) []FieldError {
	var errs []FieldError
	if strings.TrimSpace(in.FullName) == "" {
		errs = append(errs, FieldError{"fullName", "Full name is required"})
	}
	if strings.TrimSpace(in.UserName) == "" {
		errs = append(errs, FieldError{"userName", "Username is required"})
	}
	if strings.TrimSpace(in.Email) == "" {
		errs = append(errs, FieldError{"email", "Email is required"})
	}
	if strings.TrimSpace(in.PhoneNumber) == "" {
		errs = append(errs, FieldError{"phoneNumber", "Phone number is required"})
	}
	return errs
}
