package historybun

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-questionpaper/paper"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func TestHistory_SaveGetList(t *testing.T) {
	ctx := context.Background()
	history := NewHistory(newTestDB(t))
	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	for i, subject := range []string{"Math", "Physics", "Math"} {
		if err := history.Save(ctx, paper.Record{
			ID:        fmt.Sprintf("p-%d", i+1),
			Filename:  fmt.Sprintf("%s_%d.pdf", subject, i),
			Key:       fmt.Sprintf("%s_%d.pdf", subject, i),
			Subject:   subject,
			Questions: i + 1,
			Pages:     1,
			Bytes:     int64(100 * (i + 1)),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	got, err := history.Get(ctx, "p-2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Subject != "Physics" || got.Bytes != 200 || !got.CreatedAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected record %+v", got)
	}
	if !got.ExpiresAt.IsZero() {
		t.Fatalf("expected zero expiry, got %v", got.ExpiresAt)
	}

	all, err := history.List(ctx, paper.HistoryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].ID != "p-3" || all[2].ID != "p-1" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	math, err := history.List(ctx, paper.HistoryFilter{Subject: "Math", Limit: 1})
	if err != nil {
		t.Fatalf("list math: %v", err)
	}
	if len(math) != 1 || math[0].ID != "p-3" {
		t.Fatalf("expected latest math record, got %+v", math)
	}

	since, err := history.List(ctx, paper.HistoryFilter{Since: base.Add(30 * time.Minute)})
	if err != nil {
		t.Fatalf("list since: %v", err)
	}
	if len(since) != 2 {
		t.Fatalf("expected 2 records since, got %d", len(since))
	}
}

func TestHistory_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	history := NewHistory(newTestDB(t))
	record := paper.Record{ID: "p-1", Filename: "a.pdf", Key: "a.pdf", Pages: 1, CreatedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}

	if err := history.Save(ctx, record); err != nil {
		t.Fatalf("save: %v", err)
	}
	record.Pages = 3
	record.ExpiresAt = record.CreatedAt.Add(24 * time.Hour)
	if err := history.Save(ctx, record); err != nil {
		t.Fatalf("save again: %v", err)
	}

	got, err := history.Get(ctx, "p-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Pages != 3 || !got.ExpiresAt.Equal(record.ExpiresAt) {
		t.Fatalf("expected replaced record, got %+v", got)
	}
	all, _ := history.List(ctx, paper.HistoryFilter{})
	if len(all) != 1 {
		t.Fatalf("expected a single record, got %d", len(all))
	}
}

func TestHistory_DeleteAndNotFound(t *testing.T) {
	ctx := context.Background()
	history := NewHistory(newTestDB(t))

	if err := history.Save(ctx, paper.Record{ID: "p-9", Filename: "x.pdf", Key: "x.pdf", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := history.Delete(ctx, "p-9"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := history.Get(ctx, "p-9"); paper.KindFromError(err) != paper.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := history.Delete(ctx, "p-9"); paper.KindFromError(err) != paper.KindNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if err := history.Save(ctx, paper.Record{}); paper.KindFromError(err) != paper.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestHistory_Unconfigured(t *testing.T) {
	var history *History
	if _, err := history.List(context.Background(), paper.HistoryFilter{}); paper.KindFromError(err) != paper.KindNotImpl {
		t.Fatalf("expected not implemented, got %v", err)
	}
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	if err := NewHistory(db).CreateSchema(context.Background()); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}
