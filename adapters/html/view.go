package paperhtml

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-questionpaper/paper"
)

// PageView is the template context for one paper.
type PageView struct {
	Lang      string
	Title     string
	Valid     bool
	Notice    string
	Header    HeaderView
	Questions []QuestionView
}

type HeaderView struct {
	Board   string
	School  string
	Title   string
	Class   string
	Subject string
	Summary string
	Logo    string
}

type QuestionView struct {
	Heading string
	Blocks  []BlockView
	Parts   []PartView
}

type PartView struct {
	Label  string
	Marks  string
	Blocks []BlockView
}

// BlockView flattens a content block; Kind selects the template branch.
type BlockView struct {
	Kind    string
	Text    string
	URL     string
	Width   string
	Height  string
	Caption string
	Headers []string
	Rows    [][]string
	Items   []string
	Lines   []int
}

func newPageView(doc paper.Paper, settings paper.Settings) PageView {
	labels := paper.LabelsFor(settings.Locale)
	view := PageView{
		Lang:  settings.Locale,
		Valid: doc.Valid,
		Title: settings.Title,
	}
	if !doc.Valid {
		view.Notice = labels.InvalidData
		return view
	}

	h := doc.Header
	view.Header = HeaderView{
		Board:   h.BoardName,
		School:  h.SchoolName,
		Title:   h.DisplayTitle(labels),
		Class:   h.ClassLine(labels),
		Subject: h.SubjectLine(labels),
		Summary: h.Summary(labels),
		Logo:    h.Logo,
	}
	if view.Title == "" {
		view.Title = strings.TrimSpace(h.Subject + " " + view.Header.Title)
	}

	for _, q := range doc.Questions {
		qv := QuestionView{
			Heading: paper.QuestionHeading(q, labels),
			Blocks:  blockViews(q.Blocks, labels),
		}
		for _, sub := range q.SubQuestions {
			qv.Parts = append(qv.Parts, PartView{
				Label:  sub.Label,
				Marks:  sub.Marks,
				Blocks: blockViews(sub.Blocks, labels),
			})
		}
		view.Questions = append(view.Questions, qv)
	}
	return view
}

func blockViews(blocks []paper.Block, labels paper.Labels) []BlockView {
	views := make([]BlockView, 0, len(blocks))
	for _, b := range blocks {
		if v, ok := blockView(b, labels); ok {
			views = append(views, v)
		}
	}
	return views
}

func blockView(b paper.Block, labels paper.Labels) (BlockView, bool) {
	switch {
	case b.Type == paper.BlockText && b.Text != nil && b.Text.Text != "":
		return BlockView{Kind: "text", Text: b.Text.Text}, true
	case b.Type == paper.BlockFormula && b.Formula != nil && b.Formula.Latex != "":
		return BlockView{Kind: "formula", Text: b.Formula.Latex}, true
	case b.Type == paper.BlockImage && b.Image != nil && b.Image.URL != "":
		return BlockView{
			Kind:    "image",
			URL:     b.Image.URL,
			Width:   pixels(b.Image.Width),
			Height:  pixels(b.Image.Height),
			Caption: b.Image.Caption,
		}, true
	case b.Type == paper.BlockTable && b.Table != nil && len(b.Table.Rows) > 0:
		v := BlockView{Kind: "table", Rows: padRows(b.Table.Rows, b.Table.Columns())}
		if b.Table.HasHeader() {
			v.Headers = padRows([][]string{b.Table.Headers}, b.Table.Columns())[0]
		}
		return v, true
	case b.Type == paper.BlockDiagram && b.Diagram != nil:
		caption := b.Diagram.Description
		if caption == "" {
			caption = labels.Diagram
		}
		return BlockView{Kind: "diagram", Caption: caption}, true
	case b.Type == paper.BlockList && b.List != nil:
		items := make([]string, 0, len(b.List.Items))
		for _, item := range b.List.Items {
			if strings.TrimSpace(item) != "" {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			return BlockView{}, false
		}
		return BlockView{Kind: "list", Items: items}, true
	case b.Type == paper.BlockBlank && b.Blank != nil:
		lines := make([]int, b.Blank.Count())
		for i := range lines {
			lines[i] = i + 1
		}
		return BlockView{Kind: "blank", Lines: lines}, true
	}
	return BlockView{}, false
}

func padRows(rows [][]string, cols int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		padded := make([]string, cols)
		copy(padded, row)
		out[i] = padded
	}
	return out
}

func pixels(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
