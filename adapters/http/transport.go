package paperhttp

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/goliatone/go-questionpaper/adapters/paperapi"
)

var (
	_ paperapi.Request  = exchange{}
	_ paperapi.Response = exchange{}
)

// exchange serves as both sides of one net/http round trip.
type exchange struct {
	w http.ResponseWriter
	r *http.Request
}

func (x exchange) Context() context.Context { return x.r.Context() }

func (x exchange) Method() string { return x.r.Method }

func (x exchange) Path() string { return x.r.URL.Path }

func (x exchange) Header(name string) string { return x.r.Header.Get(name) }

func (x exchange) Query(name string) string { return x.r.URL.Query().Get(name) }

func (x exchange) Body() io.ReadCloser { return x.r.Body }

func (x exchange) SetHeader(name, value string) { x.w.Header().Set(name, value) }

func (x exchange) WriteHeader(status int) { x.w.WriteHeader(status) }

func (x exchange) Write(data []byte) (int, error) { return x.w.Write(data) }

func (x exchange) WriteJSON(status int, payload any) error {
	x.w.Header().Set("Content-Type", "application/json")
	x.w.WriteHeader(status)
	return json.NewEncoder(x.w).Encode(payload)
}

func (x exchange) Writer() (io.Writer, bool) { return x.w, true }
