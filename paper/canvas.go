package paper

// Font families understood by every canvas. Font strategies may route text to
// additional registered families.
const (
	FamilyBody = "Helvetica"
	FamilyMono = "Courier"
)

// Font style flags, combinable as in "BI".
const (
	StyleRegular = ""
	StyleBold    = "B"
	StyleItalic  = "I"
)

// Font selects a face.
type Font struct {
	Family string
	Style  string
	Size   float64
}

// Align positions text horizontally inside a cell.
type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

// CellOptions controls cell borders, shading and cursor movement.
type CellOptions struct {
	Align  Align
	Border bool
	Fill   bool
	// NewLine moves the cursor to the left margin of the next line after the
	// cell; otherwise it moves to the cell's right edge.
	NewLine bool
}

// Canvas is the drawing surface used by the layout engine. Coordinates are in
// millimetres from the top-left page corner.
//
// Cursor rules follow fpdf: MultiCell and Ln leave X at the left margin, SetY
// resets X to the left margin, and AddPage places the cursor at the top-left
// margin corner keeping the current font.
type Canvas interface {
	SetFont(font Font)
	Font() Font
	SetFillGray(level int)

	Cell(w, h float64, text string, opts CellOptions)
	MultiCell(w, h float64, text string, opts CellOptions)
	Image(path string, x, y, w, h float64) error
	Rect(x, y, w, h float64, fill bool)
	Line(x1, y1, x2, y2 float64)

	Ln(h float64)
	X() float64
	Y() float64
	SetX(x float64)
	SetY(y float64)
	SetXY(x, y float64)

	AddPage()
	PageNo() int
	PageSize() (w, h float64)
	Margins() (left, top, right, bottom float64)
}

// FontRegistrar is implemented by canvases that accept embedded UTF-8 fonts.
type FontRegistrar interface {
	RegisterFont(family, style string, data []byte) error
}

// BarcodeCanvas is implemented by canvases that can draw barcodes.
type BarcodeCanvas interface {
	Barcode(kind BarcodeKind, code string, x, y, w, h float64) error
}

// TemplateCanvas is implemented by canvases that can stamp an imported page.
type TemplateCanvas interface {
	UseTemplate(path string) error
}

// contentWidth is the distance from x to the right margin.
func contentWidth(c Canvas, x float64) float64 {
	pageW, _ := c.PageSize()
	_, _, right, _ := c.Margins()
	return pageW - right - x
}

// ensureSpace starts a new page when h millimetres do not fit above the bottom
// margin. It reports whether a page was added.
func ensureSpace(c Canvas, h float64) bool {
	_, pageH := c.PageSize()
	_, top, _, bottom := c.Margins()
	if c.Y()+h <= pageH-bottom || c.Y() <= top {
		return false
	}
	c.AddPage()
	return true
}

// routedCanvas applies a FontStrategy to every text operation.
type routedCanvas struct {
	Canvas
	fonts FontStrategy
	font  Font
}

func withFontStrategy(c Canvas, fonts FontStrategy) Canvas {
	if fonts == nil {
		return c
	}
	return &routedCanvas{Canvas: c, fonts: fonts, font: c.Font()}
}

func (r *routedCanvas) SetFont(font Font) {
	r.font = font
	r.Canvas.SetFont(font)
}

func (r *routedCanvas) Font() Font {
	return r.font
}

func (r *routedCanvas) Cell(w, h float64, text string, opts CellOptions) {
	font, routed := r.fonts.Resolve(r.font, text)
	r.Canvas.SetFont(font)
	r.Canvas.Cell(w, h, routed, opts)
}

func (r *routedCanvas) MultiCell(w, h float64, text string, opts CellOptions) {
	font, routed := r.fonts.Resolve(r.font, text)
	r.Canvas.SetFont(font)
	r.Canvas.MultiCell(w, h, routed, opts)
}
