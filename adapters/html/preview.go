package paperhtml

import (
	"context"

	"github.com/goliatone/go-questionpaper/paper"
)

// Printer turns HTML into PDF bytes.
type Printer interface {
	Print(ctx context.Context, html []byte, opts PrintOptions) ([]byte, error)
}

// Previewer renders papers through HTML and a browser print.
type Previewer struct {
	HTML          *Renderer
	Printer       Printer
	PageMargin    float64
	BlockExternal bool
}

// RenderPDF renders doc to HTML and prints it.
func (p *Previewer) RenderPDF(ctx context.Context, doc paper.Paper, settings paper.Settings) ([]byte, error) {
	if p == nil || p.HTML == nil || p.Printer == nil {
		return nil, paper.NewError(paper.KindNotImpl, "html preview not configured", nil)
	}
	settings = settings.Normalize()
	html, err := p.HTML.RenderHTML(ctx, doc, settings)
	if err != nil {
		return nil, err
	}
	margin := p.PageMargin
	if settings.PageMargin > 0 {
		margin = settings.PageMargin
	}
	return p.Printer.Print(ctx, html, PrintOptions{
		PageSize:      settings.PageSize,
		Landscape:     settings.Orientation == paper.OrientationLandscape,
		MarginPx:      margin,
		BlockExternal: p.BlockExternal,
	})
}
