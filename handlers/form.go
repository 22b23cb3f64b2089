// handlers/form.go
package handlers

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"vidpace-sender/backend"
	"vidpace-sender/compose"
	"vidpace-sender/form"
	"vidpace-sender/models"
	"vidpace-sender/storage"
)

//go:embed templates/*.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

type FormHandler struct {
	Store  storage.Store
	Sender form.Sender
	opts   []form.Option
}

// NewFormHandler serves the compose form. store is shared by all browser
// sessions; each session reads and writes its own scope.
func NewFormHandler(store storage.Store, sender form.Sender, opts ...form.Option) *FormHandler {
	return &FormHandler{Store: store, Sender: sender, opts: opts}
}

// Routes builds the router for the form front-end and its JSON API.
func (h *FormHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", h.ShowForm)
	r.Post("/preview", h.Preview)
	r.Post("/preview/close", h.ClosePreview)
	r.Post("/send", h.Send)
	r.Put("/fields/{field}", h.EditField)
	r.Post("/fields/clear", h.ClearFields)
	r.Get("/status", h.ClearStatus)

	r.Route("/api", func(r chi.Router) {
		r.Options("/*", preflight)
		r.Post("/preview", h.PreviewJSON)
	})
	return r
}

func (h *FormHandler) controller(w http.ResponseWriter, r *http.Request) *form.Controller {
	return form.New(storage.Scoped(h.Store, sessionID(w, r)), h.Sender, h.opts...)
}

// =========================
//
//	HTML form (htmx)
//
// =========================

// GET / renders the page with every saved field restored.
func (h *FormHandler) ShowForm(w http.ResponseWriter, r *http.Request) {
	ctrl := h.controller(w, r)

	data := &pageData{}
	fields, err := ctrl.Restore(r.Context())
	if err != nil {
		logrus.WithError(err).Error("failed to restore saved fields")
		data.ShowStatus(form.Status{Kind: form.StatusError, Message: "Could not load saved data."})
	}
	data.Fields = fields
	render(w, "page", data)
}

// POST /preview
func (h *FormHandler) Preview(w http.ResponseWriter, r *http.Request) {
	req, ok := readForm(w, r)
	if !ok {
		return
	}
	data := &pageData{OOB: true}
	_ = h.controller(w, r).Preview(req, data)
	render(w, "update", data)
}

// POST /preview/close
func (h *FormHandler) ClosePreview(w http.ResponseWriter, r *http.Request) {
	data := &pageData{OOB: true}
	h.controller(w, r).ClosePreview(data)
	render(w, "update", data)
}

// POST /send validates and forwards the form to the backend. The response
// always re-enables the send button.
func (h *FormHandler) Send(w http.ResponseWriter, r *http.Request) {
	req, ok := readForm(w, r)
	if !ok {
		return
	}
	data := &pageData{OOB: true}
	if err := h.controller(w, r).Send(r.Context(), req, data); err != nil {
		logrus.WithError(err).WithField("kind", errorKind(err)).Info("send failed")
	}
	render(w, "update", data)
}

// PUT /fields/{field} autosaves one field. The value is read from the
// submitted form under the field's own name.
func (h *FormHandler) EditField(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	if !models.IsField(field) {
		http.Error(w, "Unknown field", http.StatusNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}
	if err := h.controller(w, r).Edit(r.Context(), field, r.FormValue(field)); err != nil {
		logrus.WithError(err).WithField("field", field).Error("failed to save field")
		data := &pageData{OOB: true}
		data.ShowStatus(form.Status{Kind: form.StatusError, Message: "Could not save " + field + "."})
		render(w, "update", data)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /fields/clear removes saved values and resets the form. The browser
// asks for confirmation before issuing it.
func (h *FormHandler) ClearFields(w http.ResponseWriter, r *http.Request) {
	data := &pageData{OOB: true, ResetFields: true}
	if err := h.controller(w, r).Clear(r.Context(), data); err != nil {
		data.ResetFields = false
	}
	render(w, "update", data)
}

// GET /status returns an empty status area; used to auto-hide success messages.
func (h *FormHandler) ClearStatus(w http.ResponseWriter, r *http.Request) {
	render(w, "status", &pageData{})
}

// =========================
//
//	JSON API
//
// =========================

// POST /api/preview  { "recipientName": "...", "emailBody": "..." }
func (h *FormHandler) PreviewJSON(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)

	var req models.EmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	body, err := compose.Preview(req.RecipientName, req.EmailBody)
	if err != nil {
		sendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, models.PreviewResponse{Preview: body})
}

// =========================
//
//	Helpers
//
// =========================

func readForm(w http.ResponseWriter, r *http.Request) (models.EmailRequest, bool) {
	var req models.EmailRequest
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return req, false
	}
	for _, f := range models.Fields {
		req.Set(f, r.PostFormValue(f))
	}
	return req, true
}

func render(w http.ResponseWriter, name string, data *pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.ExecuteTemplate(w, name, data); err != nil {
		logrus.WithError(err).WithField("template", name).Error("failed to render template")
	}
}

// pageData is both the template model and the form.View the controller
// writes to during a request.
type pageData struct {
	Fields         models.EmailRequest
	Status         form.Status
	Preview        string
	PreviewVisible bool
	PreviewChanged bool
	Sending        bool
	ResetFields    bool
	OOB            bool
}

func (p *pageData) ShowStatus(s form.Status) { p.Status = s }

func (p *pageData) ShowPreview(body string) {
	p.Preview, p.PreviewVisible, p.PreviewChanged = body, true, true
}

func (p *pageData) HidePreview() {
	p.Preview, p.PreviewVisible, p.PreviewChanged = "", false, true
}

func (p *pageData) SetSending(on bool) { p.Sending = on }

// AutoHideDelay formats the status auto-hide delay for hx-trigger.
func (p *pageData) AutoHideDelay() string {
	if p.Status.AutoHide <= 0 {
		return ""
	}
	return fmt.Sprintf("%dms", p.Status.AutoHide.Milliseconds())
}

// errorKind names the failure for logs
func errorKind(err error) string {
	var (
		verr *compose.ValidationError
		serr *backend.ServerError
		nerr *backend.NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return "validation"
	case errors.As(err, &serr):
		return "server"
	case errors.As(err, &nerr):
		return "network"
	}
	return "unknown"
}
