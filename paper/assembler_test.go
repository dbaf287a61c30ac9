package paper

import (
	"bytes"
	"compress/zlib"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const scenarioA = `{"setup": {"subject": "Math"}, "questions": [{"number": 1, "blocks": [{"type": "text", "content": {"text": "2+2=?"}}]}]}`

func mustDecode(t *testing.T, input string) Paper {
	t.Helper()
	doc, err := Decode([]byte(input))
	require.NoError(t, err)
	return doc
}

func containsText(texts []string, needle string) bool {
	for _, text := range texts {
		if strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

func TestAssembler_SinglePageWithSubjectAndQuestion(t *testing.T) {
	doc := mustDecode(t, scenarioA)
	c := newRecordingCanvas()
	a := &Assembler{Settings: DefaultSettings()}

	require.NoError(t, a.Assemble(c, doc))

	require.Equal(t, 1, c.PageNo())
	texts := c.texts()
	require.True(t, containsText(texts, "Math"), "subject line missing from %v", texts)
	require.Contains(t, texts, "2+2=?")
	require.Contains(t, texts, "1.")
	require.Len(t, c.kinds("line"), 1)
}

func TestAssembler_InvalidRootRendersNotice(t *testing.T) {
	doc := mustDecode(t, `{"setup": {"subject": "Math"}}`)
	c := newRecordingCanvas()
	a := &Assembler{Settings: Settings{Locale: "en"}}

	require.NoError(t, a.Assemble(c, doc))

	require.Equal(t, 1, c.PageNo())
	require.Equal(t, []string{"Invalid question paper data"}, c.texts())
	require.Empty(t, c.kinds("line"))
}

func TestAssembler_HeaderOrderAndLabels(t *testing.T) {
	doc := mustDecode(t, `{
		"header": {
			"boardName": "Dhaka Board",
			"schoolName": "Ideal School",
			"examType": "half-yearly",
			"class": "Nine",
			"subject": "Physics",
			"totalMarks": 50,
			"duration": "2 hours"
		},
		"questions": []
	}`)
	c := newRecordingCanvas()
	a := &Assembler{Settings: Settings{Locale: "en"}}

	require.NoError(t, a.Assemble(c, doc))

	require.Equal(t, []string{
		"Dhaka Board",
		"Ideal School",
		"Half-Yearly Examination",
		"Class: Nine",
		"Subject: Physics",
		"Total Marks: 50 | Time: 2 hours",
	}, c.texts())

	multi := c.kinds("multicell")
	require.Equal(t, 16.0, multi[0].Font.Size)
	require.Equal(t, StyleBold, multi[0].Font.Style)
	require.Equal(t, 14.0, multi[1].Font.Size)
	require.Equal(t, 13.0, multi[2].Font.Size)
	require.Equal(t, 11.0, multi[3].Font.Size)
	require.Equal(t, StyleRegular, multi[3].Font.Style)
	require.Equal(t, Font{Family: FamilyBody, Style: StyleRegular, Size: BodyFontSize}, c.Font())
}

func TestAssembler_QuestionSpacing(t *testing.T) {
	doc := mustDecode(t, `{"header": {}, "questions": [{"number": 1}, {"number": 2}]}`)
	c := newRecordingCanvas()
	a := &Assembler{Settings: DefaultSettings()}

	require.NoError(t, a.Assemble(c, doc))

	multi := c.kinds("multicell")
	require.Len(t, multi, 2)
	require.InDelta(t, multi[0].Y+LineHeight+QuestionSpacing, multi[1].Y, 1e-9)
}

type upperFonts struct{ prepared bool }

func (u *upperFonts) Prepare(Canvas) error {
	u.prepared = true
	return nil
}

func (u *upperFonts) Resolve(font Font, text string) (Font, string) {
	if strings.HasPrefix(text, "x") {
		return Font{Family: "script", Style: font.Style, Size: font.Size}, strings.ToUpper(text)
	}
	return font, text
}

func TestAssembler_FontStrategyRoutesText(t *testing.T) {
	doc := mustDecode(t, `{"header": {}, "questions": [{"number": 1, "blocks": [{"type": "text", "content": {"text": "xyz"}}, {"type": "text", "content": {"text": "abc"}}]}]}`)
	c := newRecordingCanvas()
	fonts := &upperFonts{}
	a := &Assembler{Settings: DefaultSettings(), Fonts: fonts}

	require.NoError(t, a.Assemble(c, doc))

	require.True(t, fonts.prepared)
	multi := c.kinds("multicell")
	require.Len(t, multi, 3)
	require.Equal(t, "XYZ", multi[1].Text)
	require.Equal(t, "script", multi[1].Font.Family)
	require.Equal(t, "abc", multi[2].Text)
	require.Equal(t, FamilyBody, multi[2].Font.Family)
}

func TestRender_ProducesPDF(t *testing.T) {
	data, err := Render(mustDecode(t, scenarioA), DefaultSettings())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRenderDocument_IsDeterministic(t *testing.T) {
	doc := mustDecode(t, scenarioA)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	first, err := RenderDocument(doc, DefaultSettings(), WithCreationDate(at))
	require.NoError(t, err)
	second, err := RenderDocument(doc, DefaultSettings(), WithCreationDate(at))
	require.NoError(t, err)

	require.Equal(t, 1, first.Pages)
	require.Equal(t, first.Pages, second.Pages)
	require.Equal(t, first.Data, second.Data)
}

func TestRenderDocument_Paginates(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"header": {"subject": "Biology"}, "questions": [`)
	for i := 0; i < 40; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`{"marks": 2, "blocks": [{"type": "text", "content": {"text": "Describe the cell."}}, {"type": "blank", "content": {"lines": 3}}]}`)
	}
	b.WriteString(`]}`)

	out, err := RenderDocument(mustDecode(t, b.String()), DefaultSettings())
	require.NoError(t, err)
	require.Greater(t, out.Pages, 1)
}

func TestRenderDocument_AllBlockTypesAndBarcodes(t *testing.T) {
	dir := t.TempDir()
	images := NewImageResolver(ImageResolverConfig{TempDir: dir})
	input := `{
		"header": {"boardName": "Board", "subject": "Chemistry", "paperCode": "CHEM-2026-A", "logo": "` + pngDataURI(t, 30, 30) + `"},
		"questions": [{
			"number": 1,
			"marks": 10,
			"blocks": [
				{"type": "text", "content": {"text": "Résumé of reactions"}},
				{"type": "formula", "content": {"latex": "H_2O"}},
				{"type": "image", "content": {"url": "` + pngDataURI(t, 20, 10) + `", "width": 60, "caption": "Flask"}},
				{"type": "image", "content": {"url": "no/such/file.png"}},
				{"type": "table", "content": {"headers": ["A", "B"], "data": [["1", "2"]]}},
				{"type": "diagram", "content": {"description": "Apparatus"}},
				{"type": "list", "content": {"items": ["one", "two"]}},
				{"type": "blank", "content": {"lines": 2}}
			],
			"subQuestions": [{"label": "a", "marks": 5}]
		}]
	}`

	for _, kind := range []BarcodeKind{BarcodeQR, BarcodePDF417, BarcodeCode128} {
		settings := DefaultSettings()
		settings.Barcode = kind
		out, err := RenderDocument(mustDecode(t, input), settings, WithImageResolver(images))
		require.NoError(t, err, "barcode %s", kind)
		require.True(t, bytes.HasPrefix(out.Data, []byte("%PDF-")))
		require.Equal(t, 1, out.Pages)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRenderDocument_InvalidRoot(t *testing.T) {
	out, err := RenderDocument(mustDecode(t, `{"header": {}}`), DefaultSettings())
	require.NoError(t, err)
	require.Equal(t, 1, out.Pages)
}

func TestRenderDocument_MissingLetterheadIsIgnored(t *testing.T) {
	settings := DefaultSettings()
	settings.Letterhead = "does/not/exist.pdf"
	out, err := RenderDocument(mustDecode(t, scenarioA), settings)
	require.NoError(t, err)
	require.Equal(t, 1, out.Pages)
}

// contentStreams returns the PDF bytes followed by every stream that inflates.
func contentStreams(data []byte) string {
	var out strings.Builder
	out.Write(data)
	rest := data
	for {
		start := bytes.Index(rest, []byte("stream\n"))
		if start < 0 {
			break
		}
		rest = rest[start+len("stream\n"):]
		end := bytes.Index(rest, []byte("endstream"))
		if end < 0 {
			break
		}
		if zr, err := zlib.NewReader(bytes.NewReader(rest[:end])); err == nil {
			raw, _ := io.ReadAll(zr)
			out.Write(raw)
		}
		rest = rest[end+len("endstream"):]
	}
	return out.String()
}

func TestRender_DefaultSettingsPrintReadableLabels(t *testing.T) {
	doc := mustDecode(t, `{"setup": {"subject": "Math", "totalMarks": 50}, "questions": [{"number": 1, "marks": 5, "blocks": [{"type": "text", "content": {"text": "2+2=?"}}]}]}`)

	data, err := Render(doc, DefaultSettings())
	require.NoError(t, err)

	text := contentStreams(data)
	require.Contains(t, text, "Subject: Math")
	require.Contains(t, text, "Total Marks: 50")
	require.Contains(t, text, "1. [5 marks]")
	require.NotContains(t, text, ".....: Math")
}

type bengaliFonts struct{ StandardFonts }

func (bengaliFonts) SupportsLocale(string) bool { return true }

func TestLabelsForFonts(t *testing.T) {
	require.Equal(t, LocaleEnglish, LabelsForFonts("bn", StandardFonts{}).Locale)
	require.Equal(t, LocaleEnglish, LabelsForFonts("en", StandardFonts{}).Locale)
	require.Equal(t, LocaleBengali, LabelsForFonts("bn", bengaliFonts{}).Locale)
	require.Equal(t, LocaleBengali, LabelsForFonts("bn", &upperFonts{}).Locale)
}

func TestAssembler_BengaliLabelsWhenFontsCoverScript(t *testing.T) {
	doc := mustDecode(t, `{"header": {"subject": "Physics"}, "questions": []}`)
	c := newRecordingCanvas()
	a := &Assembler{Settings: DefaultSettings(), Fonts: bengaliFonts{}}

	require.NoError(t, a.Assemble(c, doc))

	require.True(t, containsText(c.texts(), "বিষয়: Physics"), "labels %v", c.texts())
}

func TestRenderDocument_HugeBlankStaysSmall(t *testing.T) {
	doc := mustDecode(t, `{"header": {}, "questions": [{"blocks": [{"type": "blank", "content": {"lines": 200000}}]}]}`)

	out, err := RenderDocument(doc, DefaultSettings())
	require.NoError(t, err)
	require.LessOrEqual(t, out.Pages, 2)
}
