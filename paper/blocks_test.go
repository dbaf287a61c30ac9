package paper

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T) (*BlockRenderer, string) {
	t.Helper()
	dir := t.TempDir()
	return &BlockRenderer{
		Images: NewImageResolver(ImageResolverConfig{TempDir: dir}),
		Labels: LabelsFor("en"),
	}, dir
}

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestBlockRenderer_UnknownTypeIsNoop(t *testing.T) {
	r, _ := newTestRenderer(t)
	c := startedCanvas()
	c.SetX(40)
	x, y := c.X(), c.Y()

	r.Render(c, Block{Type: "hologram"}, false)
	r.Render(c, Block{Type: BlockText}, false)
	r.Render(c, Block{Type: BlockImage}, true)

	require.Empty(t, c.ops)
	require.Equal(t, x, c.X())
	require.Equal(t, y, c.Y())
}

func TestBlockRenderer_TextSpacing(t *testing.T) {
	r, _ := newTestRenderer(t)
	block := Block{Type: BlockText, Text: &TextContent{Text: "2+2=?"}}

	c := startedCanvas()
	start := c.Y()
	r.Render(c, block, false)
	require.InDelta(t, start+LineHeight+SpacingUnit, c.Y(), 1e-9)

	inline := startedCanvas()
	inline.SetX(35)
	r.Render(inline, block, true)
	require.InDelta(t, start+LineHeight, inline.Y(), 1e-9)

	cells := inline.kinds("multicell")
	require.Len(t, cells, 1)
	require.Equal(t, 35.0, cells[0].X)
	require.InDelta(t, 210-15-35, cells[0].W, 1e-9)
	require.Equal(t, AlignLeft, cells[0].Opts.Align)
}

func TestBlockRenderer_FormulaUsesMonospaceAndRestoresFont(t *testing.T) {
	r, _ := newTestRenderer(t)
	c := startedCanvas()
	c.SetFont(Font{Family: FamilyBody, Style: StyleBold, Size: 12})
	start := c.Y()

	r.Render(c, Block{Type: BlockFormula, Formula: &FormulaContent{Latex: `\frac{a}{b}`}}, true)

	cells := c.kinds("cell")
	require.Len(t, cells, 1)
	require.Equal(t, `\frac{a}{b}`, cells[0].Text)
	require.Equal(t, FamilyMono, cells[0].Font.Family)
	require.Equal(t, 12.0, cells[0].Font.Size)
	require.Equal(t, AlignCenter, cells[0].Opts.Align)
	require.Equal(t, Font{Family: FamilyBody, Style: StyleBold, Size: 12}, c.Font())
	require.InDelta(t, start+LineHeight+SpacingUnit, c.Y(), 1e-9)
}

func TestBlockRenderer_TableEmptyDataDrawsNothing(t *testing.T) {
	r, _ := newTestRenderer(t)
	c := startedCanvas()
	y := c.Y()

	r.Render(c, Block{Type: BlockTable, Table: &TableContent{Headers: []string{"x", "y"}}}, false)

	require.Empty(t, c.ops)
	require.Equal(t, y, c.Y())
}

func TestBlockRenderer_TableLayout(t *testing.T) {
	r, _ := newTestRenderer(t)
	c := startedCanvas()
	c.SetX(25)

	r.Render(c, Block{Type: BlockTable, Table: &TableContent{
		Headers: []string{"x", ""},
		Rows:    [][]string{{"1", "2", "3"}, {"4"}},
	}}, true)

	cells := c.kinds("cell")
	require.Len(t, cells, 9)
	colW := (210.0 - 25 - TableRightMargin) / 3
	for i, cell := range cells {
		require.InDelta(t, colW, cell.W, 1e-9)
		require.Equal(t, TableRowHeight, cell.H)
		require.True(t, cell.Opts.Border)
		if i < 3 {
			require.True(t, cell.Opts.Fill)
			require.Equal(t, StyleBold, cell.Font.Style)
		} else {
			require.False(t, cell.Opts.Fill)
			require.Equal(t, StyleRegular, cell.Font.Style)
		}
	}
	require.Equal(t, 25.0, cells[3].X)
	require.Equal(t, 25.0, cells[6].X)
	require.Equal(t, "", cells[8].Text)
	require.Equal(t, 15+3*TableRowHeight, c.Y())
}

func TestBlockRenderer_TableWithoutHeaderRow(t *testing.T) {
	r, _ := newTestRenderer(t)
	c := startedCanvas()

	r.Render(c, Block{Type: BlockTable, Table: &TableContent{
		Headers: []string{"", ""},
		Rows:    [][]string{{"a", "b"}},
	}}, false)

	cells := c.kinds("cell")
	require.Len(t, cells, 2)
	require.Equal(t, "a", cells[0].Text)
}

func TestBlockRenderer_BlankLineCount(t *testing.T) {
	cases := []struct {
		name    string
		content BlankContent
		want    int
	}{
		{name: "absent", content: BlankContent{}, want: 1},
		{name: "zero", content: BlankContent{Lines: 0, LinesSet: true}, want: 1},
		{name: "negative", content: BlankContent{Lines: -3, LinesSet: true}, want: 1},
		{name: "three", content: BlankContent{Lines: 3, LinesSet: true}, want: 3},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, _ := newTestRenderer(t)
			c := startedCanvas()
			start := c.Y()
			content := tc.content
			r.Render(c, Block{Type: BlockBlank, Blank: &content}, false)

			require.Len(t, c.kinds("line"), tc.want)
			require.InDelta(t, start+float64(tc.want)*BlankLineAdvance, c.Y(), 1e-9)
		})
	}
}

func TestBlockRenderer_BlankLinesAreCapped(t *testing.T) {
	r, _ := newTestRenderer(t)
	c := startedCanvas()

	r.Render(c, Block{Type: BlockBlank, Blank: &BlankContent{Lines: 200000, LinesSet: true}}, false)

	require.Len(t, c.kinds("line"), MaxBlankLines)
}

func TestBlockRenderer_DiagramPlaceholder(t *testing.T) {
	r, _ := newTestRenderer(t)
	c := startedCanvas()

	r.Render(c, Block{Type: BlockDiagram, Diagram: &DiagramContent{}}, false)

	rects := c.kinds("rect")
	require.Len(t, rects, 1)
	require.Equal(t, DiagramWidth, rects[0].W)
	require.Equal(t, DiagramHeight, rects[0].H)
	require.True(t, rects[0].Opts.Fill)
	require.Equal(t, []string{"Diagram"}, c.texts())
	require.InDelta(t, 15+DiagramHeight+LineHeight, c.Y(), 1e-9)
}

func TestBlockRenderer_ListSkipsEmptyItems(t *testing.T) {
	r, _ := newTestRenderer(t)
	c := startedCanvas()
	start := c.Y()

	r.Render(c, Block{Type: BlockList, List: &ListContent{Items: []string{"alpha", "", "  ", "beta"}}}, true)

	require.Equal(t, []string{"-", "alpha", "-", "beta"}, c.texts())
	require.InDelta(t, start+2*LineHeight+SpacingUnit, c.Y(), 1e-9)
}

func TestBlockRenderer_DataURIImageIsReleased(t *testing.T) {
	r, dir := newTestRenderer(t)
	c := startedCanvas()

	r.Render(c, Block{Type: BlockImage, Image: &ImageContent{
		URL:     pngDataURI(t, 40, 20),
		Width:   100,
		Caption: "Figure 1",
	}}, false)

	images := c.kinds("image")
	require.Len(t, images, 1)
	require.True(t, images[0].Exists)
	require.InDelta(t, 100*PixelToMM, images[0].W, 1e-9)
	require.InDelta(t, 50*PixelToMM, images[0].H, 1e-9)

	_, err := os.Stat(images[0].Text)
	require.True(t, os.IsNotExist(err))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)

	cells := c.kinds("cell")
	require.Len(t, cells, 1)
	require.Equal(t, "Figure 1", cells[0].Text)
	require.Equal(t, StyleItalic, cells[0].Font.Style)
	require.Equal(t, AlignCenter, cells[0].Opts.Align)
}

func TestBlockRenderer_ImageIntrinsicSizeClampsToWidth(t *testing.T) {
	r, _ := newTestRenderer(t)
	c := startedCanvas()

	r.Render(c, Block{Type: BlockImage, Image: &ImageContent{URL: pngDataURI(t, 1000, 500)}}, false)

	images := c.kinds("image")
	require.Len(t, images, 1)
	require.InDelta(t, 180, images[0].W, 1e-9)
	require.InDelta(t, 90, images[0].H, 1e-9)
}

func TestBlockRenderer_UnresolvableImagePlaceholder(t *testing.T) {
	r, _ := newTestRenderer(t)
	c := startedCanvas()

	r.Render(c, Block{Type: BlockImage, Image: &ImageContent{URL: "missing/figure.png"}}, false)

	require.Empty(t, c.kinds("image"))
	require.Equal(t, []string{"[Image: figure.png]"}, c.texts())
}

func TestBlockRenderer_BrokenDataURIPlaceholder(t *testing.T) {
	r, dir := newTestRenderer(t)
	c := startedCanvas()

	r.Render(c, Block{Type: BlockImage, Image: &ImageContent{URL: "data:image/png;base64,!!!"}}, false)

	require.Equal(t, []string{"[Image: embedded]"}, c.texts())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}
