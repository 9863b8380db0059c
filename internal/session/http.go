package session

import (
	"net/http"
	"time"
)

// HeaderName carries the session id for API clients that do not keep cookies
const HeaderName = "X-Session-ID"

// IDFromRequest returns the raw session id from the header, falling back to the cookie
func IDFromRequest(r *http.Request, cookieName string) string {
	if id := r.Header.Get(HeaderName); id != "" {
		return id
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// Cookie builds the session cookie. ttl <= 0 makes it a browser-session cookie.
func Cookie(name string, s Session, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    s.ID.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		c.MaxAge = int(ttl.Seconds())
	}
	return c
}
