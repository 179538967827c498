package storage

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HistoryBlob is the single-row table backing the PostgreSQL store.
type HistoryBlob struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

// PostgresStore keeps the history blob in one upserted row.
type PostgresStore struct {
	db *gorm.DB
}

// DSNConfig carries the connection parameters for the history database.
type DSNConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

func NewPostgresStore(cfg DSNConfig) (*PostgresStore, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&HistoryBlob{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	var blob HistoryBlob
	err := p.db.WithContext(ctx).First(&blob, "key = ?", HistoryKey).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history row: %w", err)
	}
	return []byte(blob.Value), nil
}

func (p *PostgresStore) Save(ctx context.Context, data []byte) error {
	blob := HistoryBlob{Key: HistoryKey, Value: string(data)}
	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&blob).Error
	if err != nil {
		return fmt.Errorf("failed to write history row: %w", err)
	}
	return nil
}
