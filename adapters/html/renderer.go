// Package paperhtml renders question papers as HTML and prints them to PDF
// through headless Chromium.
package paperhtml

import (
	"bytes"
	"context"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-questionpaper/paper"
)

// Renderer executes a pongo2 template against a paper.
type Renderer struct {
	tpl *pongo2.Template
}

// NewRenderer compiles DefaultTemplate.
func NewRenderer() (*Renderer, error) {
	return NewRendererFromString(DefaultTemplate)
}

// NewRendererFromString compiles a custom template. The template receives a
// PageView as "page".
func NewRendererFromString(src string) (*Renderer, error) {
	tpl, err := pongo2.FromString(src)
	if err != nil {
		return nil, paper.NewError(paper.KindValidation, "compile paper template", err)
	}
	return &Renderer{tpl: tpl}, nil
}

// RenderHTML renders doc with settings applied.
func (r *Renderer) RenderHTML(ctx context.Context, doc paper.Paper, settings paper.Settings) ([]byte, error) {
	if r == nil || r.tpl == nil {
		return nil, paper.NewError(paper.KindInternal, "html renderer is not initialized", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	settings = settings.Normalize()

	var buf bytes.Buffer
	if err := r.tpl.ExecuteWriter(pongo2.Context{"page": newPageView(doc, settings)}, &buf); err != nil {
		return nil, paper.NewError(paper.KindInternal, "execute paper template", err)
	}
	return buf.Bytes(), nil
}
