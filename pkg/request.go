package pkg

import (
	"encoding/json"
	"errors"
	"net/http"
)

// DecodeJSONBody decodes the request body into v.
func DecodeJSONBody(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	return json.NewDecoder(r.Body).Decode(v)
}

// WriteDecodeError answers a body that could not be decoded: 413 when the body
// cap was hit, 400 otherwise.
func WriteDecodeError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	WriteErrorDetails(w, http.StatusBadRequest, "Invalid request body", err.Error())
}
