package validate

import (
	"math"
	"strconv"
	"strings"
)

// NotEmpty reports whether s has any non-whitespace content.
func NotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// PhoneNumber accepts numeric strings longer than 10 and shorter than 15
// characters, a leading "+" included.
func PhoneNumber(s string) bool {
	if len(s) <= 10 || len(s) >= 15 {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Account is the account details form.
type Account struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Password        string
	PasswordConfirm string
}

// Invalid returns the names of invalid fields in form order. Phone is only
// checked when present, password only when a change is requested.
func (a Account) Invalid() []string {
	var out []string
	if !NotEmpty(a.FirstName) {
		out = append(out, "firstName")
	}
	if !NotEmpty(a.LastName) {
		out = append(out, "lastName")
	}
	if !NotEmpty(a.Email) {
		out = append(out, "email")
	}
	if NotEmpty(a.Phone) && !PhoneNumber(a.Phone) {
		out = append(out, "phone")
	}
	if a.Password != "" && a.Password != a.PasswordConfirm {
		out = append(out, "password")
	}
	return out
}

// Signup is the create account form; every field is required.
type Signup struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

func (s Signup) Invalid() []string {
	var out []string
	if !NotEmpty(s.FirstName) {
		out = append(out, "firstName")
	}
	if !NotEmpty(s.LastName) {
		out = append(out, "lastName")
	}
	if !NotEmpty(s.Email) {
		out = append(out, "email")
	}
	if !NotEmpty(s.Password) {
		out = append(out, "password")
	}
	return out
}
