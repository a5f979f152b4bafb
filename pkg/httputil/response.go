// Package httputil provides shared HTTP utilities for consistent response handling.
package httputil

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// ContentTypeJSON is the Content-Type of every JSON response.
const ContentTypeJSON = "application/json"

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteJSONBuffered encodes data before touching w, so an encoding failure
// leaves the response unwritten and the caller free to send an error instead.
func WriteJSONBuffered(w http.ResponseWriter, status int, data any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}
