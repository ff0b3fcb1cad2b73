package common

import (
	"log"
	"net/http"
)

// Write sends body with the given status and content type and logs on failure.
func Write(logger *log.Logger, w http.ResponseWriter, status int, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil && logger != nil {
		logger.Printf("failed to write response: %v", err)
	}
}

// WriteInternalError sends the generic 500 page.
func WriteInternalError(logger *log.Logger, w http.ResponseWriter) {
	Write(logger, w, http.StatusInternalServerError, ContentTypeHTML, []byte("Internal Server Error"))
}
