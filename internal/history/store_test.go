package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eleven-am/whisper-gateway/internal/shared"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return db
}

func setupStore(t *testing.T) *Store {
	store := NewStore(setupTestDB(t))
	if err := store.Migrate(); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return store
}

func TestStore_Migrate(t *testing.T) {
	db := setupTestDB(t)
	store := NewStore(db)

	if err := store.Migrate(); err != nil {
		t.Errorf("Migrate() error = %v", err)
	}
	if !db.Migrator().HasTable("transcriptions") {
		t.Error("expected transcriptions table to exist")
	}
}

func TestStore_RecordAndGet(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	entry := &Entry{Filename: "a.wav", Backend: "remote", Text: "hello", Language: "en", ElapsedMs: 120}
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !strings.HasPrefix(entry.ID, "tr_") {
		t.Errorf("expected generated ID with tr_ prefix, got %q", entry.ID)
	}

	got, err := store.Get(ctx, entry.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Text != "hello" || got.Backend != "remote" || got.Failed() {
		t.Errorf("unexpected entry %+v", got)
	}

	if _, err := store.Get(ctx, "tr_missing"); !errors.Is(err, shared.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_List(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i, backend := range []string{"remote", "local", "remote", "fallback", "remote"} {
		entry := &Entry{
			Filename:  "f.wav",
			Backend:   backend,
			Text:      "t",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	tests := []struct {
		name      string
		opts      ListOptions
		wantLen   int
		wantTotal int64
	}{
		{"all", ListOptions{}, 5, 5},
		{"filtered", ListOptions{Backend: "remote"}, 3, 3},
		{"paged", ListOptions{Limit: 2, Offset: 1}, 2, 5},
		{"past the end", ListOptions{Offset: 10}, 0, 5},
		{"limit clamped", ListOptions{Limit: 1000}, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, total, err := store.List(ctx, tt.opts)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(entries) != tt.wantLen {
				t.Errorf("expected %d entries, got %d", tt.wantLen, len(entries))
			}
			if total != tt.wantTotal {
				t.Errorf("expected total %d, got %d", tt.wantTotal, total)
			}
		})
	}

	entries, _, _ := store.List(ctx, ListOptions{})
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Fatal("expected newest first")
		}
	}
}

func TestStore_Ping(t *testing.T) {
	store := setupStore(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}
