package quill

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// writeError serializes a service error to the response as the JSON error
// envelope, with the status derived from the error code. The envelope is
// always JSON regardless of the router's message codec.
func writeError(w http.ResponseWriter, svcErr *Error, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(svcErr.Code.HTTPStatus())
	if err := json.NewEncoder(w).Encode(svcErr); err != nil {
		// Headers already sent, nothing we can do. Log for debugging.
		logger.Error("failed to encode error response",
			slog.String("code", string(svcErr.Code)),
			slog.String("msg", svcErr.Msg),
			slog.Any("error", err))
	}
}

// writeResponse writes a successful response body with the codec's content type.
func writeResponse(w http.ResponseWriter, contentType string, body []byte, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger.Error("failed to write response body", slog.Any("error", err))
	}
}
