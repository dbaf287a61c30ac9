package paper

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/boombuler/barcode/qr"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-pdf/fpdf"
	"github.com/go-pdf/fpdf/contrib/barcode"
	"github.com/go-pdf/fpdf/contrib/gofpdi"
)

const (
	pdfCreator       = "go-questionpaper"
	pdf417Columns    = 6
	pdf417Security   = 2
	letterheadPageNo = 1
	letterheadBox    = "/MediaBox"
)

var fpdfImageTypes = map[string]string{
	"image/png":  "PNG",
	"image/jpeg": "JPG",
	"image/gif":  "GIF",
}

// FPDFCanvas is the fpdf-backed Canvas. Core fonts receive cp1252 text;
// families registered through RegisterFont receive UTF-8 unchanged.
type FPDFCanvas struct {
	pdf        *fpdf.Fpdf
	font       Font
	utf8       map[string]bool
	translate  func(string) string
	letterhead int
	hasHead    bool
}

// NewFPDFCanvas creates a canvas sized and margined per settings.
func NewFPDFCanvas(settings Settings) *FPDFCanvas {
	settings = settings.Normalize()
	pdf := fpdf.New(settings.Orientation, "mm", settings.PageSize, "")
	pdf.SetMargins(settings.MarginLeft, settings.MarginTop, settings.MarginRight)
	pdf.SetAutoPageBreak(true, settings.MarginBottom)
	pdf.SetCreator(pdfCreator, true)
	pdf.SetCatalogSort(true)
	if settings.Title != "" {
		pdf.SetTitle(settings.Title, true)
	}
	return &FPDFCanvas{
		pdf:       pdf,
		utf8:      make(map[string]bool),
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

// SetCreationDate pins the document timestamps, making output reproducible.
func (c *FPDFCanvas) SetCreationDate(at time.Time) {
	c.pdf.SetCreationDate(at)
	c.pdf.SetModificationDate(at)
}

func (c *FPDFCanvas) SetFont(font Font) {
	c.font = font
	c.pdf.SetFont(font.Family, font.Style, font.Size)
}

func (c *FPDFCanvas) Font() Font { return c.font }

func (c *FPDFCanvas) SetFillGray(level int) {
	c.pdf.SetFillColor(level, level, level)
}

func (c *FPDFCanvas) text(value string) string {
	if c.utf8[strings.ToLower(c.font.Family)] {
		return value
	}
	return c.translate(value)
}

func (c *FPDFCanvas) Cell(w, h float64, text string, opts CellOptions) {
	ln := 0
	if opts.NewLine {
		ln = 1
	}
	c.pdf.CellFormat(w, h, c.text(text), border(opts), ln, string(opts.Align), opts.Fill, 0, "")
}

func (c *FPDFCanvas) MultiCell(w, h float64, text string, opts CellOptions) {
	c.pdf.MultiCell(w, h, c.text(text), border(opts), string(opts.Align), opts.Fill)
}

func border(opts CellOptions) string {
	if opts.Border {
		return "1"
	}
	return ""
}

// Image places the file at path. A file fpdf rejects leaves the document
// usable and is reported as an error.
func (c *FPDFCanvas) Image(path string, x, y, w, h float64) error {
	kind, err := mimetype.DetectFile(path)
	if err != nil {
		return err
	}
	imageType, ok := fpdfImageTypes[kind.String()]
	if !ok {
		return fmt.Errorf("unsupported image type %s", kind.String())
	}
	opts := fpdf.ImageOptions{ImageType: imageType}
	c.pdf.RegisterImageOptions(path, opts)
	if err := c.takeError(); err != nil {
		return err
	}
	c.pdf.ImageOptions(path, x, y, w, h, false, opts, 0, "")
	return c.takeError()
}

func (c *FPDFCanvas) Rect(x, y, w, h float64, fill bool) {
	style := "D"
	if fill {
		style = "FD"
	}
	c.pdf.Rect(x, y, w, h, style)
}

func (c *FPDFCanvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, y1, x2, y2)
}

func (c *FPDFCanvas) Ln(h float64)       { c.pdf.Ln(h) }
func (c *FPDFCanvas) X() float64         { return c.pdf.GetX() }
func (c *FPDFCanvas) Y() float64         { return c.pdf.GetY() }
func (c *FPDFCanvas) SetX(x float64)     { c.pdf.SetX(x) }
func (c *FPDFCanvas) SetY(y float64)     { c.pdf.SetY(y) }
func (c *FPDFCanvas) SetXY(x, y float64) { c.pdf.SetXY(x, y) }
func (c *FPDFCanvas) AddPage()           { c.pdf.AddPage() }
func (c *FPDFCanvas) PageNo() int        { return c.pdf.PageNo() }

func (c *FPDFCanvas) PageSize() (float64, float64) {
	return c.pdf.GetPageSize()
}

func (c *FPDFCanvas) Margins() (float64, float64, float64, float64) {
	return c.pdf.GetMargins()
}

// PageCount reports the pages produced so far.
func (c *FPDFCanvas) PageCount() int {
	return c.pdf.PageCount()
}

// RegisterFont adds a UTF-8 TrueType face.
func (c *FPDFCanvas) RegisterFont(family, style string, data []byte) error {
	c.pdf.AddUTF8FontFromBytes(family, style, data)
	if err := c.takeError(); err != nil {
		return err
	}
	c.utf8[strings.ToLower(family)] = true
	return nil
}

// Barcode draws code as the requested symbology.
func (c *FPDFCanvas) Barcode(kind BarcodeKind, code string, x, y, w, h float64) error {
	var key string
	switch kind {
	case BarcodeQR:
		key = barcode.RegisterQR(c.pdf, code, qr.M, qr.Auto)
	case BarcodePDF417:
		key = barcode.RegisterPdf417(c.pdf, code, pdf417Columns, pdf417Security)
	case BarcodeCode128:
		key = barcode.RegisterCode128(c.pdf, code)
	default:
		return fmt.Errorf("unsupported barcode kind %q", kind)
	}
	if err := c.takeError(); err != nil {
		return err
	}
	barcode.Barcode(c.pdf, key, x, y, w, h, false)
	return c.takeError()
}

// UseTemplate stamps the first page of the PDF at path over the whole current
// page.
func (c *FPDFCanvas) UseTemplate(path string) (err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return statErr
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("import letterhead: %v", r)
		}
	}()
	if !c.hasHead {
		c.letterhead = gofpdi.ImportPage(c.pdf, path, letterheadPageNo, letterheadBox)
		if err := c.takeError(); err != nil {
			return err
		}
		c.hasHead = true
	}
	w, h := c.pdf.GetPageSize()
	gofpdi.UseImportedTemplate(c.pdf, c.letterhead, 0, 0, w, h)
	return c.takeError()
}

// Output writes the finished document.
func (c *FPDFCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}

func (c *FPDFCanvas) takeError() error {
	if !c.pdf.Ok() {
		err := c.pdf.Error()
		c.pdf.ClearError()
		return err
	}
	return nil
}
