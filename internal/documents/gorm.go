package documents

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DefaultTable is the table documents are read from.
const DefaultTable = "documents"

// GormConfig configures a GormStore.
type GormConfig struct {
	Driver      string // postgres or sqlite
	DSN         string
	Table       string
	AutoMigrate bool
}

// Row maps the documents table.
type Row struct {
	ID           string    `gorm:"primaryKey;size:64"`
	OrgID        string    `gorm:"index;size:128;not null"`
	Title        string    `gorm:"not null"`
	Content      string    `gorm:"type:text"`
	Icon         string    `gorm:"size:32"`
	IsArchived   bool      `gorm:"index;not null;default:false"`
	CreatedAt    time.Time `gorm:"index"`
	MasteryLevel *float64
}

func (r Row) toDocument() Document {
	return Document{
		ID:           r.ID,
		OrgID:        r.OrgID,
		Title:        r.Title,
		Content:      r.Content,
		Icon:         r.Icon,
		Archived:     r.IsArchived,
		CreatedAt:    r.CreatedAt,
		MasteryLevel: r.MasteryLevel,
	}
}

// RowFromDocument converts a Document for insertion.
func RowFromDocument(d Document) Row {
	return Row{
		ID:           d.ID,
		OrgID:        d.OrgID,
		Title:        d.Title,
		Content:      d.Content,
		Icon:         d.Icon,
		IsArchived:   d.Archived,
		CreatedAt:    d.CreatedAt,
		MasteryLevel: d.MasteryLevel,
	}
}

// GormStore reads documents from Postgres or SQLite through gorm.
type GormStore struct {
	db     *gorm.DB
	table  string
	logger *zap.Logger
}

var _ Store = (*GormStore)(nil)

// NewGormStore opens a database connection for cfg.
func NewGormStore(cfg GormConfig, logger *zap.Logger) (*GormStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported documents driver %q", cfg.Driver)
	}

	gormLog := gormLogger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	return NewGormStoreFromDB(db, cfg.Table, cfg.AutoMigrate, logger)
}

// NewGormStoreFromDB wraps an existing connection.
func NewGormStoreFromDB(db *gorm.DB, table string, autoMigrate bool, logger *zap.Logger) (*GormStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if table == "" {
		table = DefaultTable
	}
	if autoMigrate {
		if err := db.Table(table).AutoMigrate(&Row{}); err != nil {
			return nil, fmt.Errorf("failed to migrate %s: %w", table, err)
		}
	}
	logger.Info("document store ready", zap.String("dialect", db.Name()), zap.String("table", table))
	return &GormStore{db: db, table: table, logger: logger}, nil
}

// Insert writes documents, mainly for seeding and tests.
func (s *GormStore) Insert(ctx context.Context, docs ...Document) error {
	if len(docs) == 0 {
		return nil
	}
	rows := make([]Row, len(docs))
	for i, d := range docs {
		rows[i] = RowFromDocument(d)
	}
	if err := s.db.WithContext(ctx).Table(s.table).Create(&rows).Error; err != nil {
		return fmt.Errorf("insert documents: %w", err)
	}
	return nil
}

// ListDocuments implements Store.
func (s *GormStore) ListDocuments(ctx context.Context, orgID string, excludeArchived bool) ([]Document, error) {
	q := s.db.WithContext(ctx).Table(s.table).Where("org_id = ?", orgID)
	if excludeArchived {
		q = q.Where("is_archived = ?", false)
	}

	var rows []Row
	if err := q.Order("created_at DESC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list documents for org %s: %w", orgID, err)
	}

	docs := make([]Document, len(rows))
	for i, r := range rows {
		docs[i] = r.toDocument()
	}
	return docs, nil
}

// Close implements Store.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
