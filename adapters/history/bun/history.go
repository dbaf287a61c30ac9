package historybun

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-questionpaper/paper"
	"github.com/uptrace/bun"
)

// History stores generation records in a Bun-backed database.
type History struct {
	DB *bun.DB
}

// NewHistory creates a Bun-backed history store.
func NewHistory(db *bun.DB) *History {
	return &History{DB: db}
}

// CreateSchema creates the records table when missing.
func (h *History) CreateSchema(ctx context.Context) error {
	if err := h.ready(); err != nil {
		return err
	}
	_, err := h.DB.NewCreateTable().Model((*recordModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Save inserts a record, replacing any record with the same ID.
func (h *History) Save(ctx context.Context, record paper.Record) error {
	if err := h.ready(); err != nil {
		return err
	}
	if record.ID == "" {
		return paper.NewError(paper.KindValidation, "record id is required", nil)
	}

	model := modelFromRecord(record)
	res, err := h.DB.NewUpdate().Model(&model).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected > 0 {
		return nil
	}
	_, err = h.DB.NewInsert().Model(&model).Exec(ctx)
	return err
}

// Get returns a record by ID.
func (h *History) Get(ctx context.Context, id string) (paper.Record, error) {
	if err := h.ready(); err != nil {
		return paper.Record{}, err
	}
	if id == "" {
		return paper.Record{}, paper.NewError(paper.KindValidation, "record id is required", nil)
	}

	model := new(recordModel)
	err := h.DB.NewSelect().Model(model).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return paper.Record{}, paper.NewError(paper.KindNotFound, fmt.Sprintf("paper %q not found", id), nil)
		}
		return paper.Record{}, err
	}
	return model.toRecord(), nil
}

// List returns records matching filter, newest first.
func (h *History) List(ctx context.Context, filter paper.HistoryFilter) ([]paper.Record, error) {
	if err := h.ready(); err != nil {
		return nil, err
	}

	models := make([]recordModel, 0)
	query := h.DB.NewSelect().Model(&models)
	if filter.Subject != "" {
		query = query.Where("subject = ?", filter.Subject)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since.UTC())
	}
	if !filter.Until.IsZero() {
		query = query.Where("created_at <= ?", filter.Until.UTC())
	}
	query = query.Order("created_at DESC", "id DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Scan(ctx); err != nil {
		return nil, err
	}

	records := make([]paper.Record, 0, len(models))
	for _, model := range models {
		records = append(records, model.toRecord())
	}
	return records, nil
}

// Delete removes a record.
func (h *History) Delete(ctx context.Context, id string) error {
	if err := h.ready(); err != nil {
		return err
	}
	if id == "" {
		return paper.NewError(paper.KindValidation, "record id is required", nil)
	}

	res, err := h.DB.NewDelete().Model((*recordModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return paper.NewError(paper.KindNotFound, fmt.Sprintf("paper %q not found", id), nil)
	}
	return nil
}

func (h *History) ready() error {
	if h == nil || h.DB == nil {
		return paper.NewError(paper.KindNotImpl, "history database not configured", nil)
	}
	return nil
}

type recordModel struct {
	bun.BaseModel `bun:"table:paper_records,alias:pr"`

	ID        string    `bun:",pk"`
	Filename  string    `bun:",notnull"`
	Key       string    `bun:"artifact_key,notnull"`
	Path      string    `bun:"path"`
	URL       string    `bun:"url"`
	Subject   string    `bun:"subject"`
	ExamTitle string    `bun:"exam_title"`
	Questions int       `bun:"questions"`
	Pages     int       `bun:"pages"`
	Bytes     int64     `bun:"bytes"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	ExpiresAt time.Time `bun:"expires_at,nullzero"`
}

func modelFromRecord(record paper.Record) recordModel {
	model := recordModel{
		ID:        record.ID,
		Filename:  record.Filename,
		Key:       record.Key,
		Path:      record.Path,
		URL:       record.URL,
		Subject:   record.Subject,
		ExamTitle: record.ExamTitle,
		Questions: record.Questions,
		Pages:     record.Pages,
		Bytes:     record.Bytes,
		CreatedAt: record.CreatedAt.UTC(),
	}
	if !record.ExpiresAt.IsZero() {
		model.ExpiresAt = record.ExpiresAt.UTC()
	}
	return model
}

func (m recordModel) toRecord() paper.Record {
	return paper.Record{
		ID:        m.ID,
		Filename:  m.Filename,
		Key:       m.Key,
		Path:      m.Path,
		URL:       m.URL,
		Subject:   m.Subject,
		ExamTitle: m.ExamTitle,
		Questions: m.Questions,
		Pages:     m.Pages,
		Bytes:     m.Bytes,
		CreatedAt: m.CreatedAt,
		ExpiresAt: m.ExpiresAt,
	}
}
