package paperrouter

import (
	"bytes"
	"context"
	"io"

	"github.com/goliatone/go-router"

	"github.com/goliatone/go-questionpaper/adapters/paperapi"
)

var (
	_ paperapi.Request  = routerRequest{}
	_ paperapi.Response = routerResponse{}
)

// routerRequest and routerResponse wrap a non-nil router.Context; Handle
// rejects nil contexts before building them.
type routerRequest struct {
	ctx router.Context
}

func (req routerRequest) Context() context.Context { return req.ctx.Context() }

func (req routerRequest) Method() string { return req.ctx.Method() }

func (req routerRequest) Path() string { return req.ctx.Path() }

func (req routerRequest) Header(name string) string { return req.ctx.Header(name) }

func (req routerRequest) Query(name string) string { return req.ctx.Query(name) }

func (req routerRequest) Body() io.ReadCloser {
	return io.NopCloser(bytes.NewReader(req.ctx.Body()))
}

type routerResponse struct {
	ctx router.Context
}

func (res routerResponse) SetHeader(name, value string) { res.ctx.SetHeader(name, value) }

func (res routerResponse) WriteHeader(status int) { res.ctx.Status(status) }

func (res routerResponse) Write(data []byte) (int, error) {
	if err := res.ctx.Send(data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func (res routerResponse) WriteJSON(status int, payload any) error {
	return res.ctx.JSON(status, payload)
}

// Writer streams directly when the router exposes a net/http response.
func (res routerResponse) Writer() (io.Writer, bool) {
	httpCtx, ok := router.AsHTTPContext(res.ctx)
	if !ok || httpCtx.Response() == nil {
		return nil, false
	}
	return httpCtx.Response(), true
}
