package sessiongate

import "net/http"

// sessionCookie builds the cookie carrying the signed token. maxAge > 0
// issues, maxAge < 0 deletes. The cookie is always HTTP-only; Secure and
// SameSite come from configuration.
func (e *Engine) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     e.config.Cookie.Name,
		Value:    value,
		Path:     e.config.Cookie.Path,
		Domain:   e.config.Cookie.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   e.config.Cookie.Secure,
		SameSite: e.config.Cookie.SameSite,
	}
}

func (e *Engine) writeSessionCookie(w http.ResponseWriter, raw string) {
	maxAge := int(e.config.Token.TTL.Seconds())
	http.SetCookie(w, e.sessionCookie(raw, maxAge))
}

func (e *Engine) expireSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, e.sessionCookie("", -1))
}

func readSessionCookie(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
