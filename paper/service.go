package paper

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

const contentTypePDF = "application/pdf"

// Service coordinates rendering, artifact storage and generation history.
type Service interface {
	Generate(ctx context.Context, req GenerateRequest) (Record, error)
	Open(ctx context.Context, id string) (io.ReadCloser, Record, error)
	History(ctx context.Context, filter HistoryFilter) ([]Record, error)
	Delete(ctx context.Context, id string) error
	Cleanup(ctx context.Context, now time.Time) (int, error)
}

// ServiceConfig supplies dependencies for Service.
type ServiceConfig struct {
	History          HistoryStore
	Store            ArtifactStore
	Fonts            FontStrategy
	Images           *ImageResolver
	Logger           Logger
	Retention        time.Duration
	FilenameTemplate string
	Letterhead       string
	Now              func() time.Time
	IDGenerator      func() string
}

type service struct {
	history          HistoryStore
	store            ArtifactStore
	fonts            FontStrategy
	images           *ImageResolver
	logger           Logger
	retention        time.Duration
	filenameTemplate string
	letterhead       string
	now              func() time.Time
	idGenerator      func() string
}

// NewService creates a Service with the provided configuration. Missing stores
// default to in-memory implementations.
func NewService(cfg ServiceConfig) Service {
	svc := &service{
		history:          cfg.History,
		store:            cfg.Store,
		fonts:            cfg.Fonts,
		images:           cfg.Images,
		logger:           cfg.Logger,
		retention:        cfg.Retention,
		filenameTemplate: cfg.FilenameTemplate,
		letterhead:       cfg.Letterhead,
		now:              cfg.Now,
		idGenerator:      cfg.IDGenerator,
	}
	if svc.history == nil {
		svc.history = NewMemoryHistory()
	}
	if svc.store == nil {
		svc.store = NewMemoryStore()
	}
	if svc.fonts == nil {
		svc.fonts = StandardFonts{}
	}
	if svc.logger == nil {
		svc.logger = NopLogger{}
	}
	if svc.images == nil {
		svc.images = NewImageResolver(ImageResolverConfig{Logger: svc.logger})
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.idGenerator == nil {
		svc.idGenerator = uuid.NewString
	}
	return svc
}

// Generate renders the paper, stores the PDF and records it in history.
func (s *service) Generate(ctx context.Context, req GenerateRequest) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, AsGoError(err)
	}

	now := s.now()
	id := s.idGenerator()
	filename, err := renderFilename(s.filenameTemplate, req.Filename, req.Paper, now, id)
	if err != nil {
		return Record{}, AsGoError(NewError(KindValidation, "invalid filename template", err))
	}

	settings := req.Settings
	if settings.Letterhead == "" {
		settings.Letterhead = s.letterhead
	}
	rendered, err := RenderDocument(req.Paper, settings,
		WithContext(ctx),
		WithFontStrategy(s.fonts),
		WithImageResolver(s.images),
		WithLogger(s.logger),
		WithCreationDate(now),
	)
	if err != nil {
		s.logger.Errorf("render paper %s: %v", id, err)
		return Record{}, AsGoError(err)
	}

	ref, err := s.store.Put(ctx, filename, bytes.NewReader(rendered.Data), ArtifactMeta{
		ContentType: contentTypePDF,
		Filename:    filename,
		CreatedAt:   now,
	})
	if err != nil {
		s.logger.Errorf("store paper %s: %v", id, err)
		return Record{}, AsGoError(generationFailed(err))
	}

	record := Record{
		ID:        id,
		Filename:  filename,
		Key:       ref.Key,
		Subject:   req.Paper.Header.Subject,
		ExamTitle: req.Paper.Header.ExamTitle,
		Questions: len(req.Paper.Questions),
		Pages:     rendered.Pages,
		Bytes:     ref.Meta.Size,
		CreatedAt: now,
	}
	if s.retention > 0 {
		record.ExpiresAt = now.Add(s.retention)
	}
	if locator, ok := s.store.(Locator); ok {
		if path, err := locator.PathFor(ref.Key); err == nil {
			record.Path = path
		}
		record.URL = locator.URLFor(ref.Key)
	}

	if err := s.history.Save(ctx, record); err != nil {
		_ = s.store.Delete(ctx, ref.Key)
		s.logger.Errorf("record paper %s: %v", id, err)
		return Record{}, AsGoError(generationFailed(err))
	}

	s.logger.Infof("generated paper %s (%s, %d pages, %d bytes)", id, filename, record.Pages, record.Bytes)
	return record, nil
}

// Open returns the stored PDF for a generated paper.
func (s *service) Open(ctx context.Context, id string) (io.ReadCloser, Record, error) {
	if id == "" {
		return nil, Record{}, AsGoError(NewError(KindValidation, "paper id is required", nil))
	}
	record, err := s.history.Get(ctx, id)
	if err != nil {
		return nil, Record{}, AsGoError(err)
	}
	reader, _, err := s.store.Open(ctx, record.Key)
	if err != nil {
		return nil, Record{}, AsGoError(err)
	}
	return reader, record, nil
}

// History lists generated papers, newest first.
func (s *service) History(ctx context.Context, filter HistoryFilter) ([]Record, error) {
	records, err := s.history.List(ctx, filter)
	if err != nil {
		return nil, AsGoError(err)
	}
	return records, nil
}

// Delete removes the stored PDF and its history record.
func (s *service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return AsGoError(NewError(KindValidation, "paper id is required", nil))
	}
	record, err := s.history.Get(ctx, id)
	if err != nil {
		return AsGoError(err)
	}
	return s.remove(ctx, record)
}

// Cleanup deletes expired papers and returns the count removed.
func (s *service) Cleanup(ctx context.Context, now time.Time) (int, error) {
	if now.IsZero() {
		now = s.now()
	}

	records, err := s.history.List(ctx, HistoryFilter{})
	if err != nil {
		return 0, AsGoError(err)
	}

	deleted := 0
	for _, record := range records {
		if record.ExpiresAt.IsZero() || record.ExpiresAt.After(now) {
			continue
		}
		if err := s.remove(ctx, record); err != nil {
			return deleted, err
		}
		deleted++
	}
	if deleted > 0 {
		s.logger.Infof("cleanup removed %d expired papers", deleted)
	}
	return deleted, nil
}

func (s *service) remove(ctx context.Context, record Record) error {
	if record.Key != "" {
		if err := s.store.Delete(ctx, record.Key); err != nil {
			return AsGoError(err)
		}
	}
	if err := s.history.Delete(ctx, record.ID); err != nil {
		return AsGoError(err)
	}
	return nil
}
