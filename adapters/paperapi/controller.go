package paperapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	errorslib "github.com/goliatone/go-errors"

	"github.com/goliatone/go-questionpaper/paper"
)

// DefaultBasePath is used when Config.BasePath is empty.
const DefaultBasePath = "/api/papers"

// DefaultMaxBufferBytes is the fallback buffer limit when streaming is unavailable.
const DefaultMaxBufferBytes int64 = 32 * 1024 * 1024

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// PreviewRenderer renders a paper to PDF without storing it.
type PreviewRenderer interface {
	RenderPDF(ctx context.Context, doc paper.Paper, settings paper.Settings) ([]byte, error)
}

// Config configures the shared question paper controller.
type Config struct {
	Service        paper.Service
	Preview        PreviewRenderer
	BasePath       string
	MaxBodyBytes   int64
	MaxBufferBytes int64
	Logger         paper.Logger
}

// Controller exposes question paper handlers for multiple transports.
type Controller struct {
	service        paper.Service
	preview        PreviewRenderer
	marks          paper.MarksWorkbook
	basePath       string
	maxBodyBytes   int64
	maxBufferBytes int64
	logger         paper.Logger
}

// NewController creates a shared controller.
func NewController(cfg Config) *Controller {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = paper.NopLogger{}
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	maxBuffer := cfg.MaxBufferBytes
	if maxBuffer <= 0 {
		maxBuffer = DefaultMaxBufferBytes
	}
	return &Controller{
		service:        cfg.Service,
		preview:        cfg.Preview,
		basePath:       basePath,
		maxBodyBytes:   maxBody,
		maxBufferBytes: maxBuffer,
		logger:         logger,
	}
}

// BasePath returns the configured base path.
func (c *Controller) BasePath() string {
	if c == nil {
		return ""
	}
	return c.basePath
}

// Serve routes question paper endpoints.
func (c *Controller) Serve(req Request, res Response) {
	switch {
	case res == nil:
		return
	case c == nil:
		WriteError(res, paper.NewError(paper.KindInternal, "handler is nil", nil))
		return
	case req == nil:
		WriteError(res, paper.NewError(paper.KindInternal, "request is nil", nil))
		return
	}

	rest, ok := strings.CutPrefix(req.Path(), c.basePath)
	if !ok || (rest != "" && rest[0] != '/') {
		writeNotFound(res)
		return
	}
	var segs []string
	if rest = strings.Trim(rest, "/"); rest != "" {
		segs = strings.Split(rest, "/")
	}

	switch route(req.Method(), segs) {
	case "POST pdf":
		c.handleGenerate(req, res)
	case "POST preview":
		c.handlePreview(req, res)
	case "POST marks.xlsx":
		c.handleMarks(req, res)
	case "GET ":
		c.handleHistory(req, res)
	case "GET :id/download":
		c.handleDownload(req, res, segs[0])
	case "DELETE :id":
		c.handleDelete(req, res, segs[0])
	default:
		switch req.Method() {
		case http.MethodGet, http.MethodPost, http.MethodDelete:
			writeNotFound(res)
		default:
			res.SetHeader("Allow", "GET,POST,DELETE")
			res.WriteHeader(http.StatusMethodNotAllowed)
		}
	}
}

// route reduces a request to a method and path pattern with ids replaced by :id.
func route(method string, segs []string) string {
	switch {
	case method == http.MethodPost && len(segs) == 1:
		return method + " " + segs[0]
	case len(segs) == 2 && segs[1] == "download":
		return method + " :id/download"
	case method == http.MethodDelete && len(segs) == 1:
		return method + " :id"
	}
	return method + " " + strings.Join(segs, "/")
}

func (c *Controller) serviceReady(res Response) bool {
	if c.service == nil {
		WriteError(res, paper.NewError(paper.KindNotImpl, "paper service not configured", nil))
		return false
	}
	return true
}

func (c *Controller) handleGenerate(req Request, res Response) {
	if !c.serviceReady(res) {
		return
	}
	decoded, err := decodeGenerateRequest(req, c.maxBodyBytes)
	if err != nil {
		WriteError(res, err)
		return
	}

	record, err := c.service.Generate(req.Context(), decoded)
	if err != nil {
		WriteError(res, err)
		return
	}

	if !truthy(req.Query("download")) {
		writeJSON(res, http.StatusCreated, generateResponse(record))
		return
	}

	reader, _, err := c.service.Open(req.Context(), record.ID)
	if err != nil {
		WriteError(res, err)
		return
	}
	defer reader.Close()
	c.stream(res, reader, storedPDF(record))
}

func (c *Controller) handlePreview(req Request, res Response) {
	if c.preview == nil {
		WriteError(res, paper.NewError(paper.KindNotImpl, "preview renderer not configured", nil))
		return
	}
	decoded, err := decodeGenerateRequest(req, c.maxBodyBytes)
	if err != nil {
		WriteError(res, err)
		return
	}

	data, err := c.preview.RenderPDF(req.Context(), decoded.Paper, decoded.Settings)
	if err != nil {
		c.logger.Errorf("preview render failed: %v", err)
		WriteError(res, err)
		return
	}
	filename := paper.SanitizeFilename(decoded.Filename)
	if filename == "" {
		filename = "preview"
	}
	c.stream(res, bytes.NewReader(data), downloadHeaders{
		filename:    filename + ".pdf",
		contentType: contentTypePDF,
		size:        int64(len(data)),
		disposition: "inline",
	})
}

func (c *Controller) handleMarks(req Request, res Response) {
	decoded, err := decodeGenerateRequest(req, c.maxBodyBytes)
	if err != nil {
		WriteError(res, err)
		return
	}
	if !decoded.Paper.Valid {
		WriteError(res, paper.NewError(paper.KindValidation, strings.Join(decoded.Paper.Problems, "; "), nil))
		return
	}

	var buf bytes.Buffer
	labels := paper.LabelsFor(decoded.Settings.Locale)
	if _, err := c.marks.Render(req.Context(), decoded.Paper, labels, &buf); err != nil {
		c.logger.Errorf("marks workbook failed: %v", err)
		WriteError(res, err)
		return
	}

	base := paper.SanitizeFilename(decoded.Filename)
	if base == "" {
		base = paper.SanitizeFilename(decoded.Paper.Header.Subject)
	}
	if base == "" {
		base = "marks"
	}
	c.stream(res, &buf, downloadHeaders{
		filename:    base + ".xlsx",
		contentType: contentTypeXLSX,
		size:        int64(buf.Len()),
		disposition: "attachment",
	})
}

func (c *Controller) handleHistory(req Request, res Response) {
	if !c.serviceReady(res) {
		return
	}
	filter, err := parseFilter(req)
	if err != nil {
		WriteError(res, err)
		return
	}
	records, err := c.service.History(req.Context(), filter)
	if err != nil {
		WriteError(res, err)
		return
	}

	items := make([]HistoryItem, 0, len(records))
	for _, record := range records {
		items = append(items, HistoryItem{
			ID:          record.ID,
			Filename:    record.Filename,
			URL:         record.URL,
			Subject:     record.Subject,
			ExamTitle:   record.ExamTitle,
			Questions:   record.Questions,
			Pages:       record.Pages,
			Bytes:       record.Bytes,
			CreatedAt:   record.CreatedAt,
			ExpiresAt:   record.ExpiresAt,
			DownloadURL: c.downloadURL(record.ID),
		})
	}
	writeJSON(res, http.StatusOK, HistoryResponse{Items: items})
}

func (c *Controller) handleDownload(req Request, res Response, id string) {
	if !c.serviceReady(res) {
		return
	}
	reader, record, err := c.service.Open(req.Context(), id)
	if err != nil {
		WriteError(res, err)
		return
	}
	defer reader.Close()
	c.stream(res, reader, storedPDF(record))
}

func (c *Controller) handleDelete(req Request, res Response, id string) {
	if !c.serviceReady(res) {
		return
	}
	if err := c.service.Delete(req.Context(), id); err != nil {
		WriteError(res, err)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

type downloadHeaders struct {
	id          string
	filename    string
	contentType string
	size        int64
	disposition string
}

func storedPDF(record paper.Record) downloadHeaders {
	return downloadHeaders{
		id:          record.ID,
		filename:    record.Filename,
		contentType: contentTypePDF,
		size:        record.Bytes,
		disposition: "attachment",
	}
}

func (c *Controller) stream(res Response, r io.Reader, h downloadHeaders) {
	res.SetHeader("Content-Type", h.contentType)
	res.SetHeader("Content-Disposition", fmt.Sprintf("%s; filename=%q", h.disposition, sanitizeHeaderFilename(h.filename)))
	if h.id != "" {
		res.SetHeader("X-Paper-Id", h.id)
	}
	if h.size > 0 {
		res.SetHeader("Content-Length", fmt.Sprintf("%d", h.size))
	}

	if writer, ok := res.Writer(); ok {
		res.WriteHeader(http.StatusOK)
		if _, err := io.Copy(writer, r); err != nil {
			c.logger.Errorf("download copy failed: %v", err)
		}
		return
	}

	data, err := io.ReadAll(io.LimitReader(r, c.maxBufferBytes+1))
	if err != nil {
		WriteError(res, err)
		return
	}
	if int64(len(data)) > c.maxBufferBytes {
		WriteError(res, paper.NewError(paper.KindInternal, "buffer limit exceeded", nil))
		return
	}
	res.WriteHeader(http.StatusOK)
	if _, err := res.Write(data); err != nil {
		c.logger.Errorf("download buffer write failed: %v", err)
	}
}

func (c *Controller) downloadURL(id string) string {
	return fmt.Sprintf("%s/%s/download", c.basePath, id)
}

func writeNotFound(res Response) {
	WriteError(res, paper.NewError(paper.KindNotFound, "not found", nil))
}

// WriteError writes a JSON error body with the status mapped from err.
func WriteError(res Response, err error) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := paper.AsGoError(err)
	writeJSON(res, statusForError(ge), ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	})
}

func writeJSON(res Response, status int, payload any) {
	_ = res.WriteJSON(status, payload)
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	if err.TextCode == "not_implemented" {
		return http.StatusNotImplemented
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	case errorslib.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func sanitizeHeaderFilename(filename string) string {
	name := strings.TrimSpace(filename)
	name = strings.NewReplacer("\"", "", "/", "_", "\\", "_", "\r", "", "\n", "").Replace(name)
	if name == "" {
		return "paper.pdf"
	}
	return name
}
