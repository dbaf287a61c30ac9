package paper

import (
	"context"
	"io"
	"time"
)

// BlockType tags a content block.
type BlockType string

const (
	BlockText    BlockType = "text"
	BlockFormula BlockType = "formula"
	BlockImage   BlockType = "image"
	BlockTable   BlockType = "table"
	BlockDiagram BlockType = "diagram"
	BlockList    BlockType = "list"
	BlockBlank   BlockType = "blank"
)

// Paper is a decoded question paper.
type Paper struct {
	Header    Header
	Questions []Question
	// Valid is false when a required top-level section is missing; such papers
	// render as a single notice page.
	Valid    bool
	Problems []string
}

// Header carries the paper's front matter. Every field is optional.
type Header struct {
	BoardName  string
	SchoolName string
	ExamType   string
	ExamTitle  string
	ClassName  string
	Subject    string
	TotalMarks string
	Duration   string
	Logo       string
	PaperCode  string
}

// Question is one numbered question.
type Question struct {
	Number       string
	Marks        string
	Blocks       []Block
	SubQuestions []SubQuestion
}

// SubQuestion is a labelled part of a question, rendered indented.
type SubQuestion struct {
	Label  string
	Marks  string
	Blocks []Block
}

// Block is a tagged content variant. Only the pointer matching Type is set;
// unknown types carry no content.
type Block struct {
	Type    BlockType
	Text    *TextContent
	Formula *FormulaContent
	Image   *ImageContent
	Table   *TableContent
	Diagram *DiagramContent
	List    *ListContent
	Blank   *BlankContent
}

type TextContent struct {
	Text string
}

// FormulaContent holds raw LaTeX; it is shown verbatim, never typeset.
type FormulaContent struct {
	Latex string
}

// ImageContent references an image by http(s) URL, local path or data URI.
// Width and Height are pixels.
type ImageContent struct {
	URL     string
	Width   float64
	Height  float64
	Caption string
}

type TableContent struct {
	Headers []string
	Rows    [][]string
}

// Columns is the column count: the widest of the header row and data rows.
func (t TableContent) Columns() int {
	cols := len(t.Headers)
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	return cols
}

// HasHeader reports whether at least one header is non-empty.
func (t TableContent) HasHeader() bool {
	for _, h := range t.Headers {
		if h != "" {
			return true
		}
	}
	return false
}

type DiagramContent struct {
	Description string
}

type ListContent struct {
	Items []string
}

// BlankContent reserves ruled answer lines.
type BlankContent struct {
	Lines    int
	LinesSet bool
}

// MaxBlankLines caps a blank block at roughly one A4 page of answer lines.
const MaxBlankLines = 45

// Count is the number of ruled lines to draw.
func (b BlankContent) Count() int {
	switch {
	case !b.LinesSet || b.Lines < 1:
		return 1
	case b.Lines > MaxBlankLines:
		return MaxBlankLines
	}
	return b.Lines
}

// Record describes a stored, generated paper.
type Record struct {
	ID        string
	Filename  string
	Key       string
	Path      string
	URL       string
	Subject   string
	ExamTitle string
	Questions int
	Pages     int
	Bytes     int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// HistoryFilter filters generation history.
type HistoryFilter struct {
	Subject string
	Since   time.Time
	Until   time.Time
	Limit   int
}

// HistoryStore persists generation records.
type HistoryStore interface {
	Save(ctx context.Context, record Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, filter HistoryFilter) ([]Record, error)
	Delete(ctx context.Context, id string) error
}

// ArtifactMeta captures stored artifact metadata.
type ArtifactMeta struct {
	ContentType string
	Size        int64
	Filename    string
	CreatedAt   time.Time
}

// ArtifactRef references a stored artifact.
type ArtifactRef struct {
	Key  string
	Meta ArtifactMeta
}

// ArtifactStore stores rendered documents.
type ArtifactStore interface {
	Put(ctx context.Context, key string, r io.Reader, meta ArtifactMeta) (ArtifactRef, error)
	Open(ctx context.Context, key string) (io.ReadCloser, ArtifactMeta, error)
	Delete(ctx context.Context, key string) error
}

// Locator is implemented by stores that can report where an artifact lives.
type Locator interface {
	PathFor(key string) (string, error)
	URLFor(key string) string
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
