package paper

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestLayout(t *testing.T) *QuestionLayout {
	t.Helper()
	r, _ := newTestRenderer(t)
	return &QuestionLayout{Blocks: r, Labels: r.Labels}
}

func TestQuestionHeading(t *testing.T) {
	labels := LabelsFor("en")
	cases := []struct {
		q    Question
		want string
	}{
		{Question{Number: "1"}, "1."},
		{Question{Number: "1", Marks: "5"}, "1. [5 marks]"},
		{Question{Number: "2."}, "2."},
		{Question{Number: "3)", Marks: "2.5"}, "3) [2.5 marks]"},
		{Question{Number: "৪।"}, "৪।"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, QuestionHeading(tc.q, labels))
	}
	require.Equal(t, "1. [5 নম্বর]", QuestionHeading(Question{Number: "1", Marks: "5"}, LabelsFor("bn")))
}

func TestQuestionLayout_UnknownBlockDoesNotMoveCursor(t *testing.T) {
	layout := newTestLayout(t)
	text := Block{Type: BlockText, Text: &TextContent{Text: "State Ohm's law."}}

	plain := startedCanvas()
	layout.Render(plain, Question{Number: "1", Blocks: []Block{text}})

	withUnknown := startedCanvas()
	layout.Render(withUnknown, Question{Number: "1", Blocks: []Block{text, {Type: "video"}, {Type: ""}}})

	require.Equal(t, plain.Y(), withUnknown.Y())
	require.Equal(t, plain.X(), withUnknown.X())
	require.Equal(t, plain.ops, withUnknown.ops)
}

func TestQuestionLayout_HeadingIsBold(t *testing.T) {
	layout := newTestLayout(t)
	c := startedCanvas()

	layout.Render(c, Question{Number: "1", Marks: "10"})

	cells := c.kinds("multicell")
	require.Len(t, cells, 1)
	require.Equal(t, "1. [10 marks]", cells[0].Text)
	require.Equal(t, StyleBold, cells[0].Font.Style)
	require.Equal(t, StyleRegular, c.Font().Style)
}

func TestQuestionLayout_SubQuestionWithoutBlocksKeepsMarksOnLabelRow(t *testing.T) {
	layout := newTestLayout(t)
	c := startedCanvas()

	layout.Render(c, Question{
		Number:       "1",
		SubQuestions: []SubQuestion{{Label: "ক", Marks: "2"}},
	})

	cells := c.kinds("cell")
	require.Len(t, cells, 2)
	label, marks := cells[0], cells[1]
	require.Equal(t, "ক", label.Text)
	require.Equal(t, 15+SubQuestionIndent, label.X)
	require.Equal(t, LabelCellWidth, label.W)
	require.Equal(t, StyleBold, label.Font.Style)

	require.Equal(t, "[2]", marks.Text)
	require.Equal(t, label.Y, marks.Y)
	require.Equal(t, AlignRight, marks.Opts.Align)
	require.Equal(t, label.X+LabelCellWidth, marks.X)

	require.InDelta(t, label.Y+LineHeight, c.Y(), 1e-9)
}

func TestQuestionLayout_SubQuestionWithoutBlocksOrMarksAdvancesOneLine(t *testing.T) {
	layout := newTestLayout(t)
	c := startedCanvas()

	layout.Render(c, Question{
		Number:       "1",
		SubQuestions: []SubQuestion{{Label: "a)"}, {Label: "b)"}},
	})

	cells := c.kinds("cell")
	require.Len(t, cells, 2)
	require.InDelta(t, cells[0].Y+LineHeight, cells[1].Y, 1e-9)
	require.InDelta(t, cells[1].Y+LineHeight, c.Y(), 1e-9)
}

func TestQuestionLayout_SubQuestionBlocksRenderInline(t *testing.T) {
	layout := newTestLayout(t)
	c := startedCanvas()

	layout.Render(c, Question{
		Number: "2",
		Marks:  "6",
		Blocks: []Block{{Type: BlockText, Text: &TextContent{Text: "Answer the following:"}}},
		SubQuestions: []SubQuestion{{
			Label: "ক",
			Marks: "3",
			Blocks: []Block{
				{Type: BlockText, Text: &TextContent{Text: "Define force."}},
				{Type: BlockText, Text: &TextContent{Text: "Give its unit."}},
			},
		}},
	})

	multi := c.kinds("multicell")
	require.Len(t, multi, 4)
	contentX := 15 + SubQuestionIndent + LabelCellWidth
	first, second := multi[2], multi[3]
	require.Equal(t, "Define force.", first.Text)
	require.Equal(t, contentX, first.X)
	require.Equal(t, "Give its unit.", second.Text)
	require.Equal(t, contentX, second.X)
	require.InDelta(t, first.Y+LineHeight, second.Y, 1e-9)

	cells := c.kinds("cell")
	require.Len(t, cells, 2)
	marks := cells[1]
	require.Equal(t, "[3]", marks.Text)
	require.Equal(t, 15.0, marks.X)
	require.InDelta(t, second.Y+LineHeight, marks.Y, 1e-9)
	require.Equal(t, AlignRight, marks.Opts.Align)

	// Question heading, top-level text with spacing, one spacing unit before
	// the sub-questions, two inline lines and the marks line.
	want := 15 + LineHeight + LineHeight + SpacingUnit + SpacingUnit + 3*LineHeight
	require.InDelta(t, want, c.Y(), 1e-9)
}

func TestQuestionLayout_SubQuestionWithOnlyUnknownBlocksClosesRow(t *testing.T) {
	layout := newTestLayout(t)
	c := startedCanvas()

	layout.Render(c, Question{
		Number:       "1",
		SubQuestions: []SubQuestion{{Label: "i", Marks: "1", Blocks: []Block{{Type: "audio"}}}},
	})

	cells := c.kinds("cell")
	require.Len(t, cells, 2)
	require.Equal(t, cells[0].Y, cells[1].Y)
	require.InDelta(t, cells[0].Y+LineHeight, c.Y(), 1e-9)
}
