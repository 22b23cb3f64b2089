package handlers

import (
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie identifies a browser; saved fields are scoped to it the
// same way local storage is scoped to a browser profile.
const SessionCookie = "vidpace_session"

const sessionMaxAge = 365 * 24 * 60 * 60

// sessionID returns the caller's session id, issuing a new cookie when the
// request has none or carries a malformed one.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	// later lookups within the same request must see the same id
	r.AddCookie(&http.Cookie{Name: SessionCookie, Value: id})
	return id
}
