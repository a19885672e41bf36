package history

import (
	"context"
	"errors"

	"github.com/eleven-am/whisper-gateway/internal/shared"
	"gorm.io/gorm"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&Entry{})
}

func (s *Store) Record(ctx context.Context, entry *Entry) error {
	if entry.ID == "" {
		entry.ID = shared.NewID("tr_")
	}
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	var entry Entry
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

type ListOptions struct {
	Backend string
	Limit   int
	Offset  int
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]*Entry, int64, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	filter := func(db *gorm.DB) *gorm.DB {
		if opts.Backend != "" {
			return db.Where("backend = ?", opts.Backend)
		}
		return db
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&Entry{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []*Entry
	err := s.db.WithContext(ctx).Scopes(filter).
		Order("created_at DESC").
		Limit(opts.Limit).
		Offset(opts.Offset).
		Find(&entries).Error
	return entries, total, err
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
