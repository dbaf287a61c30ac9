package paper

import (
	"context"
	"strings"
)

const (
	listBulletWidth = 5.0
	answerRuleInset = 1.0
	diagramFillGray = 235
	headerFillGray  = 220
)

// BlockRenderer draws single content blocks. Malformed or unknown blocks are
// skipped without touching the canvas.
type BlockRenderer struct {
	Images  *ImageResolver
	Labels  Labels
	Logger  Logger
	Context context.Context
}

// Render draws b at the cursor. Inline rendering drops the trailing spacing of
// text blocks. The cursor ends at the left margin below the content.
func (r *BlockRenderer) Render(c Canvas, b Block, inline bool) {
	switch b.Type {
	case BlockText:
		r.text(c, b.Text, inline)
	case BlockFormula:
		r.formula(c, b.Formula)
	case BlockImage:
		r.image(c, b.Image)
	case BlockTable:
		r.table(c, b.Table)
	case BlockDiagram:
		r.diagram(c, b.Diagram)
	case BlockList:
		r.list(c, b.List)
	case BlockBlank:
		r.blank(c, b.Blank)
	default:
		r.logger().Debugf("skipping block of unknown type %q", b.Type)
	}
}

func (r *BlockRenderer) text(c Canvas, content *TextContent, inline bool) {
	if content == nil || content.Text == "" {
		return
	}
	c.MultiCell(contentWidth(c, c.X()), LineHeight, content.Text, CellOptions{Align: AlignLeft})
	if !inline {
		c.Ln(SpacingUnit)
	}
}

func (r *BlockRenderer) formula(c Canvas, content *FormulaContent) {
	if content == nil || content.Latex == "" {
		return
	}
	prev := c.Font()
	c.SetFont(Font{Family: FamilyMono, Style: StyleRegular, Size: prev.Size})
	c.Cell(contentWidth(c, c.X()), LineHeight, content.Latex, CellOptions{Align: AlignCenter, NewLine: true})
	c.SetFont(prev)
	c.Ln(SpacingUnit)
}

func (r *BlockRenderer) image(c Canvas, content *ImageContent) {
	if content == nil || content.URL == "" {
		return
	}
	x := c.X()
	available := contentWidth(c, x)

	placed := false
	var width float64
	if r.Images != nil {
		resolved, err := r.Images.Resolve(r.context(), content.URL)
		if err != nil {
			r.logger().Debugf("image %s unresolved: %v", imageName(content.URL), err)
		} else {
			w, h := imageSize(content, resolved)
			if w > available && w > 0 {
				h = h * available / w
				w = available
			}
			if ensureSpace(c, h) {
				c.SetX(x)
			}
			y := c.Y()
			if err := c.Image(resolved.Path, x, y, w, h); err != nil {
				r.logger().Errorf("place image %s: %v", imageName(content.URL), err)
			} else {
				c.SetY(y + h)
				placed = true
				width = w
			}
			resolved.Release()
		}
	}
	if !placed {
		c.SetX(x)
		c.Cell(available, LineHeight, "[Image: "+imageName(content.URL)+"]", CellOptions{Align: AlignLeft, NewLine: true})
		width = available
	}

	if content.Caption != "" {
		prev := c.Font()
		c.SetFont(Font{Family: prev.Family, Style: StyleItalic, Size: prev.Size})
		c.SetX(x)
		c.Cell(width, LineHeight, content.Caption, CellOptions{Align: AlignCenter, NewLine: true})
		c.SetFont(prev)
	}
}

// imageSize converts the requested pixel size to millimetres, keeping the
// intrinsic aspect ratio for a missing dimension.
func imageSize(content *ImageContent, img ResolvedImage) (float64, float64) {
	w, h := content.Width, content.Height
	intrinsicW, intrinsicH := float64(img.WidthPx), float64(img.HeightPx)
	switch {
	case w > 0 && h > 0:
	case w > 0 && intrinsicW > 0:
		h = w * intrinsicH / intrinsicW
	case h > 0 && intrinsicH > 0:
		w = h * intrinsicW / intrinsicH
	default:
		w, h = intrinsicW, intrinsicH
	}
	return w * PixelToMM, h * PixelToMM
}

func (r *BlockRenderer) table(c Canvas, content *TableContent) {
	if content == nil || len(content.Rows) == 0 {
		return
	}
	cols := content.Columns()
	if cols == 0 {
		return
	}
	x := c.X()
	pageW, _ := c.PageSize()
	colW := (pageW - x - TableRightMargin) / float64(cols)

	if content.HasHeader() {
		prev := c.Font()
		c.SetFont(Font{Family: prev.Family, Style: StyleBold, Size: prev.Size})
		c.SetFillGray(headerFillGray)
		if ensureSpace(c, TableRowHeight) {
			c.SetX(x)
		}
		for i := 0; i < cols; i++ {
			c.Cell(colW, TableRowHeight, cellAt(content.Headers, i), CellOptions{Align: AlignCenter, Border: true, Fill: true})
		}
		c.Ln(TableRowHeight)
		c.SetFont(prev)
	}

	for _, row := range content.Rows {
		ensureSpace(c, TableRowHeight)
		c.SetX(x)
		for i := 0; i < cols; i++ {
			c.Cell(colW, TableRowHeight, cellAt(row, i), CellOptions{Align: AlignLeft, Border: true})
		}
		c.Ln(TableRowHeight)
	}
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

func (r *BlockRenderer) diagram(c Canvas, content *DiagramContent) {
	if content == nil {
		return
	}
	x := c.X()
	if ensureSpace(c, DiagramHeight+LineHeight) {
		c.SetX(x)
	}
	y := c.Y()
	c.SetFillGray(diagramFillGray)
	c.Rect(x, y, DiagramWidth, DiagramHeight, true)
	c.SetY(y + DiagramHeight)
	c.SetX(x)

	caption := content.Description
	if caption == "" {
		caption = r.Labels.Diagram
	}
	c.Cell(DiagramWidth, LineHeight, caption, CellOptions{Align: AlignCenter, NewLine: true})
}

func (r *BlockRenderer) list(c Canvas, content *ListContent) {
	if content == nil {
		return
	}
	x := c.X()
	drawn := false
	for _, item := range content.Items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		c.SetX(x)
		c.Cell(listBulletWidth, LineHeight, "-", CellOptions{Align: AlignLeft})
		c.MultiCell(contentWidth(c, c.X()), LineHeight, item, CellOptions{Align: AlignLeft})
		drawn = true
	}
	if drawn {
		c.Ln(SpacingUnit)
	}
}

func (r *BlockRenderer) blank(c Canvas, content *BlankContent) {
	if content == nil {
		return
	}
	x := c.X()
	pageW, _ := c.PageSize()
	_, _, right, _ := c.Margins()
	for i := 0; i < content.Count(); i++ {
		ensureSpace(c, BlankLineAdvance)
		y := c.Y() + BlankLineAdvance - answerRuleInset
		c.Line(x, y, pageW-right, y)
		c.Ln(BlankLineAdvance)
	}
}

func (r *BlockRenderer) logger() Logger {
	if r.Logger == nil {
		return NopLogger{}
	}
	return r.Logger
}

func (r *BlockRenderer) context() context.Context {
	if r.Context == nil {
		return context.Background()
	}
	return r.Context
}
