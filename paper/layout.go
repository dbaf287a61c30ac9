package paper

import (
	"fmt"
	"strings"
)

// Layout constants in millimetres.
const (
	LineHeight        = 6.0
	SpacingUnit       = 2.0
	QuestionSpacing   = 4.0
	SubQuestionIndent = 10.0
	LabelCellWidth    = 10.0
	BlankLineAdvance  = 6.0
	DiagramWidth      = 80.0
	DiagramHeight     = 40.0
	TableRightMargin  = 15.0
	TableRowHeight    = 7.0
	PixelToMM         = 0.264583
	BodyFontSize      = 11.0
)

// QuestionLayout renders a question with its numbering, marks and indented
// sub-questions. Spacing between questions belongs to the caller.
type QuestionLayout struct {
	Blocks *BlockRenderer
	Labels Labels
}

func (l *QuestionLayout) Render(c Canvas, q Question) {
	left, _, _, _ := c.Margins()
	base := c.Font()
	bold := Font{Family: base.Family, Style: StyleBold, Size: base.Size}

	c.SetX(left)
	c.SetFont(bold)
	c.MultiCell(contentWidth(c, left), LineHeight, QuestionHeading(q, l.Labels), CellOptions{Align: AlignLeft})
	c.SetFont(base)

	for _, block := range q.Blocks {
		l.Blocks.Render(c, block, false)
	}

	if len(q.SubQuestions) == 0 {
		return
	}
	c.Ln(SpacingUnit)
	for _, sub := range q.SubQuestions {
		l.renderSub(c, sub, left, base, bold)
	}
}

func (l *QuestionLayout) renderSub(c Canvas, sub SubQuestion, left float64, base, bold Font) {
	labelX := left + SubQuestionIndent
	contentX := labelX + LabelCellWidth

	c.SetX(labelX)
	c.SetFont(bold)
	c.Cell(LabelCellWidth, LineHeight, sub.Label, CellOptions{Align: AlignLeft})
	c.SetFont(base)

	page, rowY := c.PageNo(), c.Y()
	for i, block := range sub.Blocks {
		if i > 0 {
			c.SetX(contentX)
		}
		l.Blocks.Render(c, block, true)
	}

	marks := ""
	if sub.Marks != "" {
		marks = "[" + sub.Marks + "]"
	}

	// Nothing advanced past the label row: close it, with marks if any.
	if c.PageNo() == page && c.Y() == rowY {
		if marks == "" {
			c.Ln(LineHeight)
			return
		}
		c.Cell(contentWidth(c, c.X()), LineHeight, marks, CellOptions{Align: AlignRight, NewLine: true})
		return
	}
	if marks != "" {
		c.SetX(left)
		c.Cell(contentWidth(c, left), LineHeight, marks, CellOptions{Align: AlignRight, NewLine: true})
	}
}

// QuestionHeading formats "{number}. [{marks} {label}]", leaving out the marks
// part when a question carries none.
func QuestionHeading(q Question, labels Labels) string {
	number := q.Number
	if !strings.HasSuffix(number, ".") && !strings.HasSuffix(number, ")") && !strings.HasSuffix(number, "।") {
		number += "."
	}
	if q.Marks == "" {
		return number
	}
	return fmt.Sprintf("%s [%s %s]", number, q.Marks, labels.Marks)
}
