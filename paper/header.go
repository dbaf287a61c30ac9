package paper

import "strings"

const (
	logoWidth         = 20.0
	qrCodeSize        = 20.0
	linearCodeWidth   = 45.0
	linearCodeHeight  = 12.0
	headerTrailing    = 5.0
	headerRuleSpacing = 1.0
)

type headerLine struct {
	text  string
	style string
	size  float64
	h     float64
}

// renderHeader draws the paper front matter: letterhead, paper code, logo,
// title lines, a rule and the marks/duration line.
func (a *Assembler) renderHeader(raw, c Canvas, h Header, labels Labels) {
	left, top, right, _ := c.Margins()
	pageW, _ := c.PageSize()
	width := pageW - left - right
	base := c.Font()

	if a.Settings.Letterhead != "" {
		if tc, ok := raw.(TemplateCanvas); ok {
			if err := tc.UseTemplate(a.Settings.Letterhead); err != nil {
				a.logger().Errorf("letterhead %s: %v", a.Settings.Letterhead, err)
			}
		}
	}

	if h.PaperCode != "" && a.Settings.Barcode != BarcodeNone {
		if bc, ok := raw.(BarcodeCanvas); ok {
			w, ht := qrCodeSize, qrCodeSize
			if a.Settings.Barcode != BarcodeQR {
				w, ht = linearCodeWidth, linearCodeHeight
			}
			if err := bc.Barcode(a.Settings.Barcode, h.PaperCode, pageW-right-w, top, w, ht); err != nil {
				a.logger().Errorf("paper code barcode: %v", err)
			}
		}
	}

	if h.Logo != "" && a.Images != nil {
		a.renderLogo(c, h.Logo, left, top, width)
	}

	lines := []headerLine{
		{text: h.BoardName, style: StyleBold, size: 16, h: 8},
		{text: h.SchoolName, style: StyleBold, size: 14, h: 7},
		{text: h.DisplayTitle(labels), style: StyleBold, size: 13, h: 7},
		{text: h.ClassLine(labels), size: 11, h: LineHeight},
		{text: h.SubjectLine(labels), size: 11, h: LineHeight},
	}
	for _, line := range lines {
		if line.text == "" {
			continue
		}
		c.SetFont(Font{Family: base.Family, Style: line.style, Size: line.size})
		c.SetX(left)
		c.MultiCell(width, line.h, line.text, CellOptions{Align: AlignCenter})
	}

	c.SetFont(Font{Family: base.Family, Style: StyleRegular, Size: 11})
	ruleY := c.Y() + headerRuleSpacing
	c.Line(left, ruleY, pageW-right, ruleY)
	c.SetY(ruleY + headerRuleSpacing)

	if summary := h.Summary(labels); summary != "" {
		c.Cell(width, LineHeight, summary, CellOptions{Align: AlignCenter, NewLine: true})
	}
	c.Ln(headerTrailing)
	c.SetFont(base)
}

func (a *Assembler) renderLogo(c Canvas, ref string, left, top, width float64) {
	resolved, err := a.Images.Resolve(a.context(), ref)
	if err != nil {
		a.logger().Debugf("logo unresolved: %v", err)
		return
	}
	defer resolved.Release()
	if resolved.WidthPx <= 0 || resolved.HeightPx <= 0 {
		return
	}
	ht := logoWidth * float64(resolved.HeightPx) / float64(resolved.WidthPx)
	x := left + (width-logoWidth)/2
	if err := c.Image(resolved.Path, x, top, logoWidth, ht); err != nil {
		a.logger().Errorf("place logo: %v", err)
		return
	}
	c.SetY(top + ht + headerRuleSpacing)
}

// DisplayTitle is the exam title, falling back to the localized exam type.
func (h Header) DisplayTitle(labels Labels) string {
	if h.ExamTitle != "" || h.ExamType == "" {
		return h.ExamTitle
	}
	return labels.ExamType(h.ExamType)
}

// ClassLine and SubjectLine are the labelled class and subject, or "".
func (h Header) ClassLine(labels Labels) string   { return labelled(labels.Class, h.ClassName) }
func (h Header) SubjectLine(labels Labels) string { return labelled(labels.Subject, h.Subject) }

// Summary joins the total marks and duration, e.g. "Total Marks: 50 | Time: 2 hours".
func (h Header) Summary(labels Labels) string {
	parts := make([]string, 0, 2)
	if text := labelled(labels.TotalMarks, h.TotalMarks); text != "" {
		parts = append(parts, text)
	}
	if text := labelled(labels.Duration, h.Duration); text != "" {
		parts = append(parts, text)
	}
	return strings.Join(parts, " | ")
}

func labelled(label, value string) string {
	if value == "" {
		return ""
	}
	return label + ": " + value
}
