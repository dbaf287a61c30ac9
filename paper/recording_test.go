package paper

import (
	"math"
	"os"
	"strings"
	"unicode/utf8"
)

type recordedOp struct {
	Kind   string
	Text   string
	X, Y   float64
	W, H   float64
	Font   Font
	Opts   CellOptions
	Exists bool
}

// recordingCanvas mimics fpdf cursor movement and records every drawing call.
type recordingCanvas struct {
	ops   []recordedOp
	font  Font
	fill  int
	x, y  float64
	page  int
	pageW float64
	pageH float64
	left  float64
	top   float64
	right float64
	bot   float64
}

func newRecordingCanvas() *recordingCanvas {
	return &recordingCanvas{
		pageW: 210, pageH: 297,
		left: 15, top: 15, right: 15, bot: 15,
	}
}

func (c *recordingCanvas) SetFont(font Font)     { c.font = font }
func (c *recordingCanvas) Font() Font            { return c.font }
func (c *recordingCanvas) SetFillGray(level int) { c.fill = level }

func (c *recordingCanvas) breakIfNeeded(h float64) {
	if c.page > 0 && c.y+h > c.pageH-c.bot {
		x := c.x
		c.AddPage()
		c.x = x
	}
}

func (c *recordingCanvas) Cell(w, h float64, text string, opts CellOptions) {
	c.breakIfNeeded(h)
	if w == 0 {
		w = c.pageW - c.right - c.x
	}
	c.ops = append(c.ops, recordedOp{Kind: "cell", Text: text, X: c.x, Y: c.y, W: w, H: h, Font: c.font, Opts: opts})
	if opts.NewLine {
		c.x = c.left
		c.y += h
		return
	}
	c.x += w
}

func (c *recordingCanvas) MultiCell(w, h float64, text string, opts CellOptions) {
	perLine := int(w / 2)
	if perLine < 1 {
		perLine = 1
	}
	lines := 0
	for _, segment := range strings.Split(text, "\n") {
		n := int(math.Ceil(float64(utf8.RuneCountInString(segment)) / float64(perLine)))
		if n < 1 {
			n = 1
		}
		lines += n
	}
	c.breakIfNeeded(h)
	c.ops = append(c.ops, recordedOp{Kind: "multicell", Text: text, X: c.x, Y: c.y, W: w, H: float64(lines) * h, Font: c.font, Opts: opts})
	c.y += float64(lines) * h
	c.x = c.left
}

func (c *recordingCanvas) Image(path string, x, y, w, h float64) error {
	_, err := os.Stat(path)
	c.ops = append(c.ops, recordedOp{Kind: "image", Text: path, X: x, Y: y, W: w, H: h, Exists: err == nil})
	return err
}

func (c *recordingCanvas) Rect(x, y, w, h float64, fill bool) {
	c.ops = append(c.ops, recordedOp{Kind: "rect", X: x, Y: y, W: w, H: h, Opts: CellOptions{Fill: fill}})
}

func (c *recordingCanvas) Line(x1, y1, x2, y2 float64) {
	c.ops = append(c.ops, recordedOp{Kind: "line", X: x1, Y: y1, W: x2 - x1, H: y2 - y1})
}

func (c *recordingCanvas) Ln(h float64) {
	c.x = c.left
	c.y += h
}

func (c *recordingCanvas) X() float64     { return c.x }
func (c *recordingCanvas) Y() float64     { return c.y }
func (c *recordingCanvas) SetX(x float64) { c.x = x }

func (c *recordingCanvas) SetY(y float64) {
	c.x = c.left
	c.y = y
}

func (c *recordingCanvas) SetXY(x, y float64) {
	c.SetY(y)
	c.SetX(x)
}

func (c *recordingCanvas) AddPage() {
	c.page++
	c.x, c.y = c.left, c.top
	c.ops = append(c.ops, recordedOp{Kind: "page"})
}

func (c *recordingCanvas) PageNo() int { return c.page }

func (c *recordingCanvas) PageSize() (float64, float64) { return c.pageW, c.pageH }

func (c *recordingCanvas) Margins() (float64, float64, float64, float64) {
	return c.left, c.top, c.right, c.bot
}

func (c *recordingCanvas) kinds(kind string) []recordedOp {
	var out []recordedOp
	for _, op := range c.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

func (c *recordingCanvas) texts() []string {
	var out []string
	for _, op := range c.ops {
		if op.Kind == "cell" || op.Kind == "multicell" {
			out = append(out, op.Text)
		}
	}
	return out
}

// startedCanvas returns a canvas on its first page with the body font set.
func startedCanvas() *recordingCanvas {
	c := newRecordingCanvas()
	c.AddPage()
	c.SetFont(Font{Family: FamilyBody, Size: BodyFontSize})
	c.ops = nil
	return c
}
