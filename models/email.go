package models

// EmailRequest represents the JSON structure posted to the backend
type EmailRequest struct {
	SenderEmail    string `json:"senderEmail"`
	SenderPassword string `json:"senderPassword"`
	RecipientEmail string `json:"recipientEmail"`
	RecipientName  string `json:"recipientName"`
	Subject        string `json:"subject"`
	EmailBody      string `json:"emailBody"`
}

// EmailResponse represents the backend response
type EmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// PreviewResponse is returned by the JSON preview endpoint
type PreviewResponse struct {
	Preview string `json:"preview,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Form field names, shared by the HTML form, the CLI flags and the store keys.
const (
	FieldSenderEmail    = "senderEmail"
	FieldSenderPassword = "senderPassword"
	FieldRecipientEmail = "recipientEmail"
	FieldRecipientName  = "recipientName"
	FieldSubject        = "subject"
	FieldEmailBody      = "emailBody"
)

// Fields lists every form field in display order.
var Fields = []string{
	FieldSenderEmail,
	FieldSenderPassword,
	FieldRecipientEmail,
	FieldRecipientName,
	FieldSubject,
	FieldEmailBody,
}

// IsField reports whether name is one of the form fields.
func IsField(name string) bool {
	for _, f := range Fields {
		if f == name {
			return true
		}
	}
	return false
}

// IsSecret reports whether the field holds a credential that must never be stored.
func IsSecret(name string) bool {
	return name == FieldSenderPassword
}

// Get returns the value of the named field.
func (r EmailRequest) Get(name string) string {
	switch name {
	case FieldSenderEmail:
		return r.SenderEmail
	case FieldSenderPassword:
		return r.SenderPassword
	case FieldRecipientEmail:
		return r.RecipientEmail
	case FieldRecipientName:
		return r.RecipientName
	case FieldSubject:
		return r.Subject
	case FieldEmailBody:
		return r.EmailBody
	}
	return ""
}

// Set assigns the named field. Unknown names are ignored.
func (r *EmailRequest) Set(name, value string) {
	switch name {
	case FieldSenderEmail:
		r.SenderEmail = value
	case FieldSenderPassword:
		r.SenderPassword = value
	case FieldRecipientEmail:
		r.RecipientEmail = value
	case FieldRecipientName:
		r.RecipientName = value
	case FieldSubject:
		r.Subject = value
	case FieldEmailBody:
		r.EmailBody = value
	}
}

// Redacted returns a copy safe to log.
func (r EmailRequest) Redacted() EmailRequest {
	r.SenderPassword = "[HIDDEN]"
	return r
}
