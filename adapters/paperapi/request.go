package paperapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-questionpaper/paper"
)

// DefaultMaxBodyBytes caps request bodies; embedded images make papers large.
const DefaultMaxBodyBytes int64 = 16 * 1024 * 1024

// Request provides minimal request access for transport adapters.
type Request interface {
	Context() context.Context
	Method() string
	Path() string
	Header(name string) string
	Query(name string) string
	Body() io.ReadCloser
}

var errBodyTooLarge = errors.New("request body too large")

func readBody(req Request, limit int64) ([]byte, error) {
	body := req.Body()
	if body == nil {
		return nil, paper.NewError(paper.KindValidation, "request body is required", nil)
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, paper.NewError(paper.KindValidation, "read request body", err)
	}
	if int64(len(data)) > limit {
		return nil, paper.NewError(paper.KindValidation, fmt.Sprintf("request body exceeds %d bytes", limit), errBodyTooLarge)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, paper.NewError(paper.KindValidation, "request body is required", nil)
	}
	return data, nil
}

func decodeGenerateRequest(req Request, limit int64) (paper.GenerateRequest, error) {
	data, err := readBody(req, limit)
	if err != nil {
		return paper.GenerateRequest{}, err
	}
	return paper.DecodeGenerateRequest(data)
}

func parseFilter(req Request) (paper.HistoryFilter, error) {
	filter := paper.HistoryFilter{Subject: strings.TrimSpace(req.Query("subject"))}
	if since := req.Query("since"); since != "" {
		ts, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return paper.HistoryFilter{}, paper.NewError(paper.KindValidation, "invalid since timestamp", err)
		}
		filter.Since = ts
	}
	if until := req.Query("until"); until != "" {
		ts, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return paper.HistoryFilter{}, paper.NewError(paper.KindValidation, "invalid until timestamp", err)
		}
		filter.Until = ts
	}
	if limit := req.Query("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 0 {
			return paper.HistoryFilter{}, paper.NewError(paper.KindValidation, "invalid limit", err)
		}
		filter.Limit = n
	}
	return filter, nil
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
