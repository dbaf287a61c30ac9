package command

import (
	"time"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-questionpaper/paper"
)

// GeneratePaper renders, stores and records a question paper.
type GeneratePaper struct {
	Request paper.GenerateRequest
	Result  *paper.Record
}

func (GeneratePaper) Type() string { return "paper:generate" }

func (msg GeneratePaper) Validate() error {
	if !msg.Request.Paper.Valid && len(msg.Request.Paper.Problems) == 0 {
		return errors.New("paper is required", errors.CategoryValidation).
			WithTextCode("PAPER_REQUIRED")
	}
	return nil
}

// DeletePaper deletes a generated paper and its stored PDF.
type DeletePaper struct {
	PaperID string
}

func (DeletePaper) Type() string { return "paper:delete" }

func (msg DeletePaper) Validate() error {
	if msg.PaperID == "" {
		return errors.New("paper ID is required", errors.CategoryValidation).
			WithTextCode("PAPER_ID_REQUIRED")
	}
	return nil
}

// CleanupPapers removes papers past their retention window.
type CleanupPapers struct {
	Now    time.Time
	Result *int
}

func (CleanupPapers) Type() string { return "paper:cleanup" }

func (CleanupPapers) Validate() error { return nil }
