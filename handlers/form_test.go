package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidpace-sender/backend"
	"vidpace-sender/models"
	"vidpace-sender/storage"
)

type testEnv struct {
	store   *storage.MemoryStore
	router  http.Handler
	calls   *atomic.Int32
	cookie  *http.Cookie
	respond func(w http.ResponseWriter)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{store: storage.NewMemoryStore(), calls: &atomic.Int32{}}
	env.respond = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true}`))
	}
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.calls.Add(1)
		env.respond(w)
	}))
	t.Cleanup(api.Close)

	env.router = NewFormHandler(env.store, backend.New(api.URL, 0)).Routes()
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			e.cookie = c
		}
	}
	return rec
}

func (e *testEnv) scoped() storage.Store {
	return storage.Scoped(e.store, e.cookie.Value)
}

func fullForm() url.Values {
	return url.Values{
		models.FieldSenderEmail:    {"a@b.com"},
		models.FieldSenderPassword: {"secret"},
		models.FieldRecipientEmail: {"ana@example.org"},
		models.FieldRecipientName:  {"Ana"},
		models.FieldSubject:        {"Hello"},
		models.FieldEmailBody:      {"Hi {{name}}, welcome {{name}}!"},
	}
}

func TestShowFormIssuesSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="emailForm"`)
	require.NotNil(t, env.cookie)
	assert.True(t, env.cookie.HttpOnly)

	first := env.cookie.Value
	env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, first, env.cookie.Value)
}

func TestFieldAutosaveAndRestore(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/", nil)

	rec := env.do(t, http.MethodPut, "/fields/subject", url.Values{"subject": {"Weekly update"}, "senderPassword": {"secret"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodPut, "/fields/senderPassword", url.Values{"senderPassword": {"secret"}})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	v, ok, err := env.scoped().GetItem(context.Background(), "vidpace_subject")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Weekly update", v)
	_, ok, _ = env.scoped().GetItem(context.Background(), "vidpace_senderPassword")
	assert.False(t, ok)

	// reload
	page := env.do(t, http.MethodGet, "/", nil).Body.String()
	assert.Contains(t, page, `value="Weekly update"`)
	assert.NotContains(t, page, "secret")

	// another browser sees nothing
	other := &testEnv{store: env.store, router: env.router}
	assert.NotContains(t, other.do(t, http.MethodGet, "/", nil).Body.String(), "Weekly update")
}

func TestEditUnknownField(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPut, "/fields/nope", url.Values{"nope": {"x"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewHandler(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/preview", fullForm())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hi Ana, welcome Ana!")
	assert.Contains(t, rec.Body.String(), `id="previewSection"`)

	form := fullForm()
	form.Set(models.FieldEmailBody, "<b>{{name}}</b>")
	body := env.do(t, http.MethodPost, "/preview", form).Body.String()
	assert.Contains(t, body, "&lt;b&gt;Ana&lt;/b&gt;")

	form.Set(models.FieldRecipientName, "")
	body = env.do(t, http.MethodPost, "/preview", form).Body.String()
	assert.Contains(t, body, "Please fill in recipient name and email body to preview.")

	body = env.do(t, http.MethodPost, "/preview/close", url.Values{}).Body.String()
	assert.Contains(t, body, `style="display:none"`)
}

func TestSendHandler(t *testing.T) {
	t.Run("invalid recipient never reaches the backend", func(t *testing.T) {
		env := newTestEnv(t)
		form := fullForm()
		form.Set(models.FieldRecipientEmail, "bad-address")

		body := env.do(t, http.MethodPost, "/send", form).Body.String()
		assert.Contains(t, body, "Please enter a valid recipient email address.")
		assert.Equal(t, int32(0), env.calls.Load())
		assert.NotContains(t, body, " disabled")
	})

	t.Run("success auto-hides after five seconds", func(t *testing.T) {
		env := newTestEnv(t)
		body := env.do(t, http.MethodPost, "/send", fullForm()).Body.String()
		assert.Contains(t, body, "Email sent successfully!")
		assert.Contains(t, body, "load delay:5000ms")
		assert.Contains(t, body, `class="status-message success"`)
		assert.NotContains(t, body, " disabled")
		assert.Equal(t, int32(1), env.calls.Load())
	})

	t.Run("server error text is shown verbatim", func(t *testing.T) {
		env := newTestEnv(t)
		env.respond = func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"quota exceeded"}`))
		}
		body := env.do(t, http.MethodPost, "/send", fullForm()).Body.String()
		assert.Contains(t, body, "quota exceeded")
		assert.Contains(t, body, `class="status-message error"`)
		assert.NotContains(t, body, "load delay")
	})
}

func TestClearFieldsHandler(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodPut, "/fields/subject", url.Values{"subject": {"Hi"}})
	require.Equal(t, 1, env.store.Len())

	body := env.do(t, http.MethodPost, "/fields/clear", url.Values{}).Body.String()
	assert.Equal(t, 0, env.store.Len())
	assert.Contains(t, body, "Saved data cleared.")
	assert.Contains(t, body, `id="formFields" hx-swap-oob="true"`)
}

func TestClearStatus(t *testing.T) {
	env := newTestEnv(t)
	body := env.do(t, http.MethodGet, "/status", nil).Body.String()
	assert.Contains(t, body, `id="statusMessage"`)
	assert.Contains(t, body, `style="display:none"`)
}

func TestPreviewJSON(t *testing.T) {
	env := newTestEnv(t)

	post := func(payload string) (*httptest.ResponseRecorder, models.PreviewResponse) {
		req := httptest.NewRequest(http.MethodPost, "/api/preview", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		var out models.PreviewResponse
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
		return rec, out
	}

	rec, out := post(`{"recipientName":"Ana","emailBody":"Hi {{name}}"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hi Ana", out.Preview)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec, out = post(`{"recipientName":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotEmpty(t, out.Error)

	rec, _ = post(`not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
