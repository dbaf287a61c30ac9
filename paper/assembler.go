package paper

import (
	"bytes"
	"context"
	"time"
)

const invalidNoticeHeight = 10.0

// Assembler lays out a whole paper on a canvas.
type Assembler struct {
	Settings Settings
	Fonts    FontStrategy
	Images   *ImageResolver
	Logger   Logger
	Context  context.Context
}

// Assemble draws doc onto c starting with a fresh page. Papers missing a
// required section get a single notice page.
func (a *Assembler) Assemble(c Canvas, doc Paper) error {
	fonts := a.Fonts
	if fonts == nil {
		fonts = StandardFonts{}
	}
	if err := fonts.Prepare(c); err != nil {
		return err
	}
	labels := LabelsForFonts(a.Settings.Locale, fonts)
	routed := withFontStrategy(c, fonts)

	routed.AddPage()
	routed.SetFont(Font{Family: FamilyBody, Style: StyleRegular, Size: BodyFontSize})

	if !doc.Valid {
		a.logger().Infof("invalid question paper: %v", doc.Problems)
		left, _, right, _ := routed.Margins()
		pageW, _ := routed.PageSize()
		routed.SetFont(Font{Family: FamilyBody, Style: StyleBold, Size: 14})
		routed.MultiCell(pageW-left-right, invalidNoticeHeight, labels.InvalidData, CellOptions{Align: AlignCenter})
		return nil
	}

	a.renderHeader(c, routed, doc.Header, labels)

	layout := &QuestionLayout{
		Blocks: &BlockRenderer{
			Images:  a.Images,
			Labels:  labels,
			Logger:  a.logger(),
			Context: a.context(),
		},
		Labels: labels,
	}
	for _, q := range doc.Questions {
		layout.Render(routed, q)
		routed.Ln(QuestionSpacing)
	}
	return nil
}

func (a *Assembler) logger() Logger {
	if a.Logger == nil {
		return NopLogger{}
	}
	return a.Logger
}

func (a *Assembler) context() context.Context {
	if a.Context == nil {
		return context.Background()
	}
	return a.Context
}

// Rendered is a finished PDF.
type Rendered struct {
	Data  []byte
	Pages int
}

// RenderOption customizes Render.
type RenderOption func(*renderConfig)

type renderConfig struct {
	ctx       context.Context
	fonts     FontStrategy
	images    *ImageResolver
	logger    Logger
	createdAt time.Time
}

// WithContext bounds remote image fetches.
func WithContext(ctx context.Context) RenderOption {
	return func(cfg *renderConfig) {
		if ctx != nil {
			cfg.ctx = ctx
		}
	}
}

// WithFontStrategy selects how text is mapped to fonts.
func WithFontStrategy(fonts FontStrategy) RenderOption {
	return func(cfg *renderConfig) {
		if fonts != nil {
			cfg.fonts = fonts
		}
	}
}

// WithImageResolver overrides the default image resolver.
func WithImageResolver(images *ImageResolver) RenderOption {
	return func(cfg *renderConfig) {
		if images != nil {
			cfg.images = images
		}
	}
}

// WithCreationDate pins the PDF creation timestamp.
func WithCreationDate(at time.Time) RenderOption {
	return func(cfg *renderConfig) {
		cfg.createdAt = at
	}
}

// WithLogger sets the render logger.
func WithLogger(logger Logger) RenderOption {
	return func(cfg *renderConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Render produces the PDF bytes for doc. It holds no shared state; concurrent
// calls are independent.
func Render(doc Paper, settings Settings, opts ...RenderOption) ([]byte, error) {
	out, err := RenderDocument(doc, settings, opts...)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

// RenderDocument is Render with page accounting.
func RenderDocument(doc Paper, settings Settings, opts ...RenderOption) (Rendered, error) {
	cfg := renderConfig{
		ctx:    context.Background(),
		fonts:  StandardFonts{},
		logger: NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.images == nil {
		cfg.images = NewImageResolver(ImageResolverConfig{Logger: cfg.logger})
	}

	settings = settings.Normalize()
	if settings.Title == "" {
		settings.Title = documentTitle(doc.Header)
	}
	canvas := NewFPDFCanvas(settings)
	if !cfg.createdAt.IsZero() {
		canvas.SetCreationDate(cfg.createdAt)
	}
	assembler := &Assembler{
		Settings: settings,
		Fonts:    cfg.fonts,
		Images:   cfg.images,
		Logger:   cfg.logger,
		Context:  cfg.ctx,
	}
	if err := assembler.Assemble(canvas, doc); err != nil {
		return Rendered{}, generationFailed(err)
	}

	var buf bytes.Buffer
	if err := canvas.Output(&buf); err != nil {
		return Rendered{}, generationFailed(err)
	}
	return Rendered{Data: buf.Bytes(), Pages: canvas.PageCount()}, nil
}

func documentTitle(h Header) string {
	switch {
	case h.ExamTitle != "" && h.Subject != "":
		return h.ExamTitle + " - " + h.Subject
	case h.ExamTitle != "":
		return h.ExamTitle
	default:
		return h.Subject
	}
}
