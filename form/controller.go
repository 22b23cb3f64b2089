// Package form implements the controller behind the compose form: preview,
// send, and field autosave. Front-ends supply a View and the controller
// drives it.
package form

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"vidpace-sender/backend"
	"vidpace-sender/compose"
	"vidpace-sender/models"
	"vidpace-sender/storage"
)

// DefaultAutoHide is how long a success status stays visible.
const DefaultAutoHide = 5 * time.Second

// StatusKind selects how a status is displayed
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
	StatusLoading StatusKind = "loading"
)

// Status is the content of the status area. AutoHide is zero when the
// status stays until replaced.
type Status struct {
	Kind     StatusKind
	Message  string
	AutoHide time.Duration
}

// View is the part of the page the controller writes to.
type View interface {
	ShowStatus(Status)
	ShowPreview(body string)
	HidePreview()
	// SetSending disables (true) or re-enables (false) the send control.
	SetSending(bool)
}

// Sender delivers a request to the backend.
type Sender interface {
	SendEmail(ctx context.Context, req models.EmailRequest) (*models.EmailResponse, error)
}

// Controller wires form actions to the store and the backend.
type Controller struct {
	store    storage.Store
	sender   Sender
	autoHide time.Duration
}

// Option configures a Controller
type Option func(*Controller)

// WithAutoHide overrides how long success statuses stay visible.
func WithAutoHide(d time.Duration) Option {
	return func(c *Controller) { c.autoHide = d }
}

// New returns a controller using store for field persistence and sender for delivery.
func New(store storage.Store, sender Sender, opts ...Option) *Controller {
	c := &Controller{store: store, sender: sender, autoHide: DefaultAutoHide}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) success(v View, msg string) {
	v.ShowStatus(Status{Kind: StatusSuccess, Message: msg, AutoHide: c.autoHide})
}

func showError(v View, msg string) {
	v.ShowStatus(Status{Kind: StatusError, Message: msg})
}

// =========================
//  Preview
// =========================

// Preview renders the personalized body, or shows an inline error when the
// recipient name or body is missing.
func (c *Controller) Preview(req models.EmailRequest, v View) error {
	body, err := compose.Preview(req.RecipientName, req.EmailBody)
	if err != nil {
		showError(v, err.Error())
		return err
	}
	v.ShowPreview(body)
	return nil
}

// ClosePreview hides the preview area.
func (c *Controller) ClosePreview(v View) {
	v.HidePreview()
}

// =========================
//  Send
// =========================

// Send validates req, personalizes the body and posts it to the backend.
// The send control is disabled for the duration of the request and
// re-enabled whatever the outcome. The returned error is a
// *compose.ValidationError, *backend.ServerError or *backend.NetworkError.
func (c *Controller) Send(ctx context.Context, req models.EmailRequest, v View) error {
	log := logrus.WithField("request", req.Redacted())
	log.Debug("send requested")

	if err := compose.Validate(req); err != nil {
		log.WithError(err).Debug("validation failed")
		showError(v, err.Error())
		return err
	}

	req.EmailBody = compose.Personalize(req.EmailBody, req.RecipientName)

	v.ShowStatus(Status{Kind: StatusLoading, Message: "Sending email..."})
	v.SetSending(true)
	defer v.SetSending(false)

	_, err := c.sender.SendEmail(ctx, req)

	var serr *backend.ServerError
	switch {
	case err == nil:
		log.Info("email sent")
		c.success(v, "Email sent successfully!")
		v.HidePreview()
		return nil
	case errors.As(err, &serr):
		showError(v, "Error: "+serr.Message)
		return err
	default:
		var nerr *backend.NetworkError
		if !errors.As(err, &nerr) {
			err = &backend.NetworkError{Err: err}
		}
		log.WithError(err).Error("network error sending email")
		showError(v, fmt.Sprintf("Network error: %s. Please check your connection and try again.", err.Error()))
		return err
	}
}

// =========================
//  Field persistence
// =========================

// Restore returns the saved value of every non-credential field.
func (c *Controller) Restore(ctx context.Context) (models.EmailRequest, error) {
	return storage.LoadFields(ctx, c.store)
}

// Edit records a new field value. Credential edits are accepted and dropped.
func (c *Controller) Edit(ctx context.Context, field, value string) error {
	if !models.IsField(field) {
		return fmt.Errorf("form: unknown field %q", field)
	}
	if models.IsSecret(field) {
		return nil
	}
	return storage.SaveField(ctx, c.store, field, value)
}

// Clear removes every saved value. Front-ends ask for confirmation first.
func (c *Controller) Clear(ctx context.Context, v View) error {
	if err := storage.ClearFields(ctx, c.store); err != nil {
		logrus.WithError(err).Error("failed to clear saved data")
		showError(v, "Could not clear saved data.")
		return err
	}
	c.success(v, "Saved data cleared.")
	return nil
}
