package command

import (
	"context"
	"time"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-questionpaper/paper"
)

// GeneratePaperHandler handles generation requests.
type GeneratePaperHandler struct {
	Service paper.Service
}

func NewGeneratePaperHandler(svc paper.Service) *GeneratePaperHandler {
	return &GeneratePaperHandler{Service: svc}
}

func (h *GeneratePaperHandler) Execute(ctx context.Context, msg GeneratePaper) error {
	if h == nil || h.Service == nil {
		return serviceRequired()
	}
	record, err := h.Service.Generate(ctx, msg.Request)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = record
	}
	if res := gcmd.ResultFromContext[paper.Record](ctx); res != nil {
		res.Store(record)
	}
	return nil
}

// DeletePaperHandler deletes generated papers.
type DeletePaperHandler struct {
	Service paper.Service
}

func NewDeletePaperHandler(svc paper.Service) *DeletePaperHandler {
	return &DeletePaperHandler{Service: svc}
}

func (h *DeletePaperHandler) Execute(ctx context.Context, msg DeletePaper) error {
	if h == nil || h.Service == nil {
		return serviceRequired()
	}
	return h.Service.Delete(ctx, msg.PaperID)
}

// CleanupPapersHandler removes expired papers. It runs on a cron schedule or
// from the CLI.
type CleanupPapersHandler struct {
	Service paper.Service
	Config  gcmd.HandlerConfig
	Clock   func() time.Time
}

func NewCleanupPapersHandler(svc paper.Service) *CleanupPapersHandler {
	return &CleanupPapersHandler{
		Service: svc,
		Config:  gcmd.HandlerConfig{Expression: "0 * * * *"},
	}
}

func (h *CleanupPapersHandler) Execute(ctx context.Context, msg CleanupPapers) error {
	if h == nil || h.Service == nil {
		return serviceRequired()
	}
	now := msg.Now
	if now.IsZero() && h.Clock != nil {
		now = h.Clock()
	}
	count, err := h.Service.Cleanup(ctx, now)
	if err != nil {
		return err
	}
	if msg.Result != nil {
		*msg.Result = count
	}
	if res := gcmd.ResultFromContext[int](ctx); res != nil {
		res.Store(count)
	}
	return nil
}

func (h *CleanupPapersHandler) CronHandler() func() error {
	return func() error {
		return h.Execute(context.Background(), CleanupPapers{})
	}
}

func (h *CleanupPapersHandler) CronOptions() gcmd.HandlerConfig {
	return h.Config
}

// CLIHandler exposes cleanup via CLI.
func (h *CleanupPapersHandler) CLIHandler() any {
	return &cleanupCLI{handler: h}
}

func (h *CleanupPapersHandler) CLIOptions() gcmd.CLIConfig {
	return gcmd.CLIConfig{
		Path:        []string{"papers-cleanup"},
		Description: "Remove expired question papers",
		Group:       "papers",
	}
}

type cleanupCLI struct {
	handler *CleanupPapersHandler
}

func (c *cleanupCLI) Run() error {
	if c == nil || c.handler == nil {
		return errors.New("cleanup handler is required", errors.CategoryInternal).
			WithTextCode("CLEANUP_HANDLER_REQUIRED")
	}
	return c.handler.Execute(context.Background(), CleanupPapers{})
}

func serviceRequired() error {
	return errors.New("paper service is required", errors.CategoryInternal).
		WithTextCode("SERVICE_REQUIRED")
}
