package query

import (
	"context"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-questionpaper/paper"
)

// PaperHistoryHandler returns generation history.
type PaperHistoryHandler struct {
	Service paper.Service
}

func NewPaperHistoryHandler(svc paper.Service) *PaperHistoryHandler {
	return &PaperHistoryHandler{Service: svc}
}

func (h *PaperHistoryHandler) Query(ctx context.Context, msg PaperHistory) ([]paper.Record, error) {
	if h == nil || h.Service == nil {
		return nil, serviceRequired()
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return h.Service.History(ctx, msg.Filter)
}

// DownloadPaperHandler opens stored PDFs.
type DownloadPaperHandler struct {
	Service paper.Service
}

func NewDownloadPaperHandler(svc paper.Service) *DownloadPaperHandler {
	return &DownloadPaperHandler{Service: svc}
}

func (h *DownloadPaperHandler) Query(ctx context.Context, msg DownloadPaper) (Download, error) {
	if h == nil || h.Service == nil {
		return Download{}, serviceRequired()
	}
	if err := msg.Validate(); err != nil {
		return Download{}, err
	}
	content, record, err := h.Service.Open(ctx, msg.PaperID)
	if err != nil {
		return Download{}, err
	}
	return Download{Record: record, Content: content}, nil
}

func serviceRequired() error {
	return errors.New("paper service is required", errors.CategoryInternal).
		WithTextCode("SERVICE_REQUIRED")
}
