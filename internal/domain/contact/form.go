// Package contact owns the contact form lifecycle: field edits, validation,
// the single relay delivery and the idle/submitting/success/error states.
package contact

import (
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// MaxMessageLength caps the message in runes, mirroring the form's maxlength.
const MaxMessageLength = 1000

const maxLineLength = 200

// Form holds the visitor's input. Subject is optional.
type Form struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Message string `json:"message"`
}

// IsEmpty reports whether every field is blank.
func (f Form) IsEmpty() bool {
	return f.Name == "" && f.Email == "" && f.Subject == "" && f.Message == ""
}

// Validate applies the checks a browser performs for required and
// type=email inputs.
func (f Form) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.RuneLength(1, maxLineLength)),
		validation.Field(&f.Email, validation.Required, is.EmailFormat),
		validation.Field(&f.Subject, validation.RuneLength(0, maxLineLength)),
		validation.Field(&f.Message, validation.Required, validation.RuneLength(1, MaxMessageLength)),
	)
}

// normalize trims single-line fields and truncates the message.
func (f Form) normalize() Form {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Message = truncateRunes(f.Message, MaxMessageLength)
	return f
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
