package front

import (
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/sngm3741/webform-relay/internal/relay"
)

const (
	indexPage   = "index.html"
	messagePage = "message.html"
	errorPage   = "error.html"
)

// Handler wires the web front endpoints: fixed pages, static assets and the
// form submission relay.
type Handler struct {
	logger  *log.Logger
	webRoot string
	sender  relay.Sender
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger  *log.Logger
	WebRoot string
	Sender  relay.Sender
}

// NewHandler constructs the web front handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:  cfg.Logger,
		webRoot: cfg.WebRoot,
		sender:  cfg.Sender,
	}
}

// Register mounts all routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.pageHandler(indexPage))
	r.Get("/message", h.pageHandler(messagePage))
	r.Get("/*", h.staticHandler())
	r.Post("/", h.submitHandler())
	r.Post("/*", h.submitHandler())
}
