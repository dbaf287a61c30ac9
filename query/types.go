package query

import (
	"io"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-questionpaper/paper"
)

// PaperHistory requests generation history.
type PaperHistory struct {
	Filter paper.HistoryFilter
}

func (PaperHistory) Type() string { return "paper:history" }

func (msg PaperHistory) Validate() error {
	if msg.Filter.Limit < 0 {
		return errors.New("limit must not be negative", errors.CategoryValidation).
			WithTextCode("LIMIT_INVALID")
	}
	f := msg.Filter
	if !f.Since.IsZero() && !f.Until.IsZero() && f.Until.Before(f.Since) {
		return errors.New("until must not be before since", errors.CategoryValidation).
			WithTextCode("RANGE_INVALID")
	}
	return nil
}

// DownloadPaper requests the stored PDF of a generated paper.
type DownloadPaper struct {
	PaperID string
}

func (DownloadPaper) Type() string { return "paper:download" }

func (msg DownloadPaper) Validate() error {
	if msg.PaperID == "" {
		return errors.New("paper ID is required", errors.CategoryValidation).
			WithTextCode("PAPER_ID_REQUIRED")
	}
	return nil
}

// Download is an open PDF stream with its record. Callers close Content.
type Download struct {
	Record  paper.Record
	Content io.ReadCloser
}
