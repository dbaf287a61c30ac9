package paperapi

import (
	"io"
	"time"

	"github.com/goliatone/go-questionpaper/paper"
)

// Response provides a minimal response interface for transport adapters.
type Response interface {
	SetHeader(name, value string)
	WriteHeader(status int)
	Write(data []byte) (int, error)
	WriteJSON(status int, payload any) error
	Writer() (io.Writer, bool)
}

// GenerateResponse describes a stored paper.
type GenerateResponse struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Pages    int    `json:"pages"`
	Bytes    int64  `json:"bytes"`
}

// HistoryItem describes one history entry.
type HistoryItem struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	URL         string    `json:"url,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	ExamTitle   string    `json:"exam_title,omitempty"`
	Questions   int       `json:"questions"`
	Pages       int       `json:"pages"`
	Bytes       int64     `json:"bytes"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
	DownloadURL string    `json:"download_url"`
}

// HistoryResponse wraps history entries.
type HistoryResponse struct {
	Items []HistoryItem `json:"items"`
}

// ErrorResponse describes JSON error responses.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody contains error details.
type ErrorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func generateResponse(record paper.Record) GenerateResponse {
	return GenerateResponse{
		ID:       record.ID,
		Path:     record.Path,
		URL:      record.URL,
		Filename: record.Filename,
		Pages:    record.Pages,
		Bytes:    record.Bytes,
	}
}
