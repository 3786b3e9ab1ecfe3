package session

import (
	"encoding/base64"
	"net/http"
)

const flashCookie = "flash"

// SetFlash stores a one-shot message shown on the next rendered page.
// The value is base64-encoded because cookie values cannot carry spaces.
func SetFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// TakeFlash reads and clears the pending flash message.
func TakeFlash(w http.ResponseWriter, r *http.Request) (string, bool) {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	decoded, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}
