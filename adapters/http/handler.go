package paperhttp

import (
	"net/http"

	"github.com/goliatone/go-questionpaper/adapters/paperapi"
	"github.com/goliatone/go-questionpaper/paper"
)

// Config configures the HTTP adapter.
type Config = paperapi.Config

// Handler exposes question paper endpoints on net/http.
type Handler struct {
	controller *paperapi.Controller
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: paperapi.NewController(cfg)}
}

// RegisterRoutes registers handlers on a compatible mux.
func (h *Handler) RegisterRoutes(mux any) {
	base := h.basePath()
	switch m := mux.(type) {
	case interface{ Handle(string, http.Handler) }:
		m.Handle(base, h)
		m.Handle(base+"/", h)
	case interface {
		HandleFunc(string, func(http.ResponseWriter, *http.Request))
	}:
		m.HandleFunc(base, h.ServeHTTP)
		m.HandleFunc(base+"/", h.ServeHTTP)
	}
}

// ServeHTTP routes question paper endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if w == nil || r == nil {
		return
	}
	x := exchange{w: w, r: r}
	if h == nil || h.controller == nil {
		paperapi.WriteError(x, paper.NewError(paper.KindInternal, "handler is nil", nil))
		return
	}
	h.controller.Serve(x, x)
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil || h.controller.BasePath() == "" {
		return paperapi.DefaultBasePath
	}
	return h.controller.BasePath()
}
