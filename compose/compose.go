// Package compose holds the message rules shared by every front-end:
// placeholder substitution and request validation.
package compose

import (
	"regexp"
	"strings"

	"vidpace-sender/models"
)

// NamePlaceholder is replaced by the recipient name in the body.
const NamePlaceholder = "{{name}}"

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError is a missing or malformed field, shown inline to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Personalize replaces every placeholder in body with name.
func Personalize(body, name string) string {
	return strings.ReplaceAll(body, NamePlaceholder, name)
}

// Preview returns the personalized body, or a validation error when the
// name or body is empty.
func Preview(name, body string) (string, error) {
	if name == "" || body == "" {
		return "", &ValidationError{
			Field:   models.FieldRecipientName,
			Message: "Please fill in recipient name and email body to preview.",
		}
	}
	return Personalize(body, name), nil
}

// IsValidEmail reports whether addr looks like local@domain.tld.
func IsValidEmail(addr string) bool {
	return emailRegex.MatchString(addr)
}

// Validate checks the request before anything is sent. The first failing
// rule wins.
func Validate(req models.EmailRequest) error {
	switch {
	case req.SenderEmail == "" || req.SenderPassword == "":
		return &ValidationError{Field: models.FieldSenderEmail, Message: "Please enter your email credentials."}
	case req.RecipientEmail == "" || req.RecipientName == "":
		return &ValidationError{Field: models.FieldRecipientEmail, Message: "Please enter recipient information."}
	case req.Subject == "" || req.EmailBody == "":
		return &ValidationError{Field: models.FieldSubject, Message: "Please enter email subject and body."}
	case !IsValidEmail(req.SenderEmail):
		return &ValidationError{Field: models.FieldSenderEmail, Message: "Please enter a valid sender email address."}
	case !IsValidEmail(req.RecipientEmail):
		return &ValidationError{Field: models.FieldRecipientEmail, Message: "Please enter a valid recipient email address."}
	}
	return nil
}
