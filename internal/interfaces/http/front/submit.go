package front

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sngm3741/webform-relay/internal/interfaces/http/common"
	"github.com/sngm3741/webform-relay/internal/relay"
)

// submitHandler decodes a URL-encoded body and relays it. The browser is
// redirected home once the payload is written; nothing is read back from the relay.
func (h *Handler) submitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		reqID := middleware.GetReqID(r.Context())

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, common.MaxFormBody))
		if err != nil {
			h.logger.Printf("error during POST [%s]: read body: %v", reqID, err)
			common.WriteInternalError(h.logger, w)
			return
		}

		sub, err := relay.DecodeForm(string(body))
		if err != nil {
			h.logger.Printf("error during POST [%s]: %v", reqID, err)
			common.WriteInternalError(h.logger, w)
			return
		}

		if err := h.sender.Send(r.Context(), sub); err != nil {
			h.logger.Printf("error during POST [%s]: %v", reqID, err)
			common.WriteInternalError(h.logger, w)
			return
		}

		w.Header().Set("Location", "/")
		w.WriteHeader(http.StatusFound)
	}
}
