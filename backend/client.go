// Package backend talks to the external service that actually delivers email.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"vidpace-sender/models"
)

// SendPath is the backend route that accepts an EmailRequest.
const SendPath = "/api/send-email"

// DefaultServerError is shown when a failed response carries no error text.
const DefaultServerError = "Failed to send email"

// ServerError is a non-2xx response from the backend.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// NetworkError means the request failed or the response could not be read.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// Client posts email requests to the backend
type Client struct {
	rest    *resty.Client
	baseURL string
}

// New creates a client for baseURL. A zero timeout means the request waits
// as long as the context allows.
func New(baseURL string, timeout time.Duration) *Client {
	rest := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		rest.SetTimeout(timeout)
	}
	return &Client{rest: rest, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Endpoint is the full URL requests are posted to
func (c *Client) Endpoint() string {
	return c.baseURL + SendPath
}

// SendEmail posts req as JSON. It returns *ServerError for non-2xx replies
// and *NetworkError when nothing usable came back.
func (c *Client) SendEmail(ctx context.Context, req models.EmailRequest) (*models.EmailResponse, error) {
	endpoint := c.Endpoint()
	log := logrus.WithField("endpoint", endpoint)
	log.WithField("request", req.Redacted()).Debug("making API request")

	res, err := c.rest.R().
		SetContext(ctx).
		SetBody(req).
		Post(endpoint)
	if err != nil {
		log.WithError(err).Error("error sending email")
		return nil, &NetworkError{Err: err}
	}

	log.WithField("status", res.StatusCode()).Debug("response received")

	body := res.Body()
	if !json.Valid(body) {
		log.WithField("response", res.String()).Error("unreadable response body")
		return nil, &NetworkError{Err: fmt.Errorf("invalid response from server: %q is not JSON", truncate(res.String(), 64))}
	}
	payload := decodeResponse(body)

	if !res.IsSuccess() {
		msg := payload.Error
		if msg == "" {
			msg = DefaultServerError
		}
		log.WithField("status", res.StatusCode()).Warnf("backend rejected email: %s", msg)
		return payload, &ServerError{StatusCode: res.StatusCode(), Message: msg}
	}
	return payload, nil
}

// decodeResponse reads the known reply fields from any JSON document.
// Fields of an unexpected type are rendered as text or left empty.
func decodeResponse(body []byte) *models.EmailResponse {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return &models.EmailResponse{}
	}
	success, _ := fields["success"].(bool)
	return &models.EmailResponse{
		Success: success,
		Message: text(fields["message"]),
		Error:   text(fields["error"]),
	}
}

// text renders a JSON value for display. Falsy values are empty.
func text(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if !v {
			return ""
		}
		return "true"
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
