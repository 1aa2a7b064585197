package httpapi

import (
	"net/http"
	"strconv"

	"github.com/wareledger/wareledger/internal/httputil"
	"github.com/wareledger/wareledger/internal/session"
	"github.com/wareledger/wareledger/internal/sniff"
)

func writeJSON(w http.ResponseWriter, data interface{}) error {
	httputil.WriteJSON(w, http.StatusOK, data)
	return nil
}

// created answers a successful create.
func created(w http.ResponseWriter, id int64, message string) error {
	return writeJSON(w, map[string]interface{}{"success": true, "id": id, "message": message})
}

// done answers a successful update or delete.
func done(w http.ResponseWriter, message string) error {
	return writeJSON(w, map[string]interface{}{"success": true, "message": message})
}

// writeFile streams a stored document with sniffed headers.
func writeFile(w http.ResponseWriter, data []byte, filename string) {
	content := sniff.Sniff(data, filename)
	h := w.Header()
	h.Set("Content-Type", content.MIME)
	h.Set("Content-Length", strconv.Itoa(len(data)))
	h.Set("Content-Disposition", content.Disposition)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
