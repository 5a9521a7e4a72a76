package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/elnormous/contenttype"
	apperrors "github.com/target/chat-relay/internal/errors"
)

var jsonMediaType = contenttype.NewMediaType("application/json")

// DefaultMaxBodyBytes caps JSON request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// DecodeJSON decodes a JSON request body of at most maxBytes into dst.
// Returns true if successful, false if there was an error (error response already written).
// A missing Content-Type is tolerated; any other media type is rejected with 415.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any, maxBytes int64) bool {
	if r.Header.Get("Content-Type") != "" {
		ctype, err := contenttype.GetMediaType(r)
		if err != nil || !ctype.Matches(jsonMediaType) {
			WriteError(w, apperrors.New(apperrors.ErrCodeUnsupportedMediaType, "Content-Type must be application/json"))
			return false
		}
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, apperrors.Wrap(err, apperrors.ErrCodePayloadTooLarge, "Request body too large"))
			return false
		}
		WriteError(w, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid JSON body"))
		return false
	}
	return true
}

// WriteJSON writes a JSON response with the given status code and data.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		// Response writer errors (e.g., client disconnect) can't be recovered from here.
		return
	}
}

// errorBody is the JSON shape of every synchronous error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError writes err as {"error": ...} with the status derived from its AppError code.
// Errors that are not AppErrors are reported as a generic 500 without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, apperrors.HTTPStatus(err), errorBody{
		Error:   apperrors.PublicMessage(err, "Internal server error"),
		Message: apperrors.PublicDetail(err),
	})
}
