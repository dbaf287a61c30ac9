package paperrouter

import (
	"github.com/goliatone/go-router"

	"github.com/goliatone/go-questionpaper/adapters/paperapi"
	"github.com/goliatone/go-questionpaper/paper"
)

// Config configures the go-router adapter.
type Config = paperapi.Config

// Handler exposes question paper routes for go-router.
type Handler struct {
	controller *paperapi.Controller
}

// NewHandler creates a go-router handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: paperapi.NewController(cfg)}
}

// RegisterRoutes registers routes on a compatible go-router router.
func (h *Handler) RegisterRoutes(r any) {
	registrar, ok := r.(routeRegistrar)
	if !ok {
		return
	}
	base := h.basePath()

	registrar.Post(base+"/pdf", h.Handle)
	registrar.Post(base+"/preview", h.Handle)
	registrar.Post(base+"/marks.xlsx", h.Handle)
	registrar.Get(base, h.Handle)
	registrar.Get(base+"/:id/download", h.Handle)
	registrar.Delete(base+"/:id", h.Handle)
}

// Handle runs the shared controller for the current request.
func (h *Handler) Handle(c router.Context) error {
	if c == nil {
		return nil
	}
	if h == nil || h.controller == nil {
		paperapi.WriteError(routerResponse{ctx: c}, paper.NewError(paper.KindInternal, "handler is nil", nil))
		return nil
	}
	h.controller.Serve(routerRequest{ctx: c}, routerResponse{ctx: c})
	return nil
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil || h.controller.BasePath() == "" {
		return paperapi.DefaultBasePath
	}
	return h.controller.BasePath()
}

type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}
