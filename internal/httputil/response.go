// Package httputil provides response writers and request body helpers.
package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/wareledger/wareledger/internal/errors"
)

// JSONContentType is declared on every JSON response.
const JSONContentType = "application/json; charset=utf-8"

// WriteJSON encodes data as the response body. Non-ASCII text is written as
// UTF-8, not escaped.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", JSONContentType)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}

// WriteError writes {"error": message} with the status mapped from err.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, errors.HTTPStatus(err), map[string]string{"error": errors.PublicMessage(err)})
}

// WriteErrorMessage writes {"error": message} with an explicit status.
func WriteErrorMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": errors.FirstLine(message)})
}

// NotFound writes the generic 404 body.
func NotFound(w http.ResponseWriter) {
	WriteErrorMessage(w, http.StatusNotFound, "Not Found")
}

// Unauthorized writes a 401 with message, or the default text.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, errors.Unauthorized(message))
}
