// Package sqlite implements cart and order storage in a local SQLite file.
// It backs the command-line client.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/xenking/storefront/internal/domain/cart"
	"github.com/xenking/storefront/internal/domain/order"
)

type entry struct {
	Key       string `gorm:"column:entry_key;primaryKey"`
	Value     []byte `gorm:"column:value;not null"`
	UpdatedAt time.Time
}

func (entry) TableName() string { return "kv" }

type orderRow struct {
	ID        string          `gorm:"column:id;primaryKey"`
	Items     []byte          `gorm:"column:items;not null"`
	Total     decimal.Decimal `gorm:"column:total;type:text;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;index"`
}

func (orderRow) TableName() string { return "orders" }

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := db.AutoMigrate(&entry{}, &orderRow{}); err != nil {
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ cart.Storage = (*KV)(nil)

// KV stores values in the kv table.
type KV struct {
	db *gorm.DB
}

// NewKV returns a KV over db.
func NewKV(db *gorm.DB) *KV {
	return &KV{db: db}
}

// Load returns the value under key, or nil when absent.
func (s *KV) Load(ctx context.Context, key string) ([]byte, error) {
	var e entry
	err := s.db.WithContext(ctx).Where("entry_key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading key %q: %w", key, err)
	}
	return e.Value, nil
}

// Save upserts the value under key.
func (s *KV) Save(ctx context.Context, key string, data []byte) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry{Key: key, Value: data}).Error
	if err != nil {
		return fmt.Errorf("saving key %q: %w", key, err)
	}
	return nil
}

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository stores orders in the orders table.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository returns an OrderRepository over db.
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	row := orderRow{
		ID:        o.ID,
		Items:     order.EncodeItems(o.Items),
		Total:     o.Total,
		CreatedAt: o.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	var row orderRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	items, err := order.DecodeItems(row.Items)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &order.Order{
		ID:        row.ID,
		Items:     items,
		Total:     row.Total,
		CreatedAt: row.CreatedAt.UTC(),
	}, nil
}

// List returns the most recent orders first.
func (r *OrderRepository) List(ctx context.Context, limit int) ([]order.Order, error) {
	var rows []orderRow
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	out := make([]order.Order, 0, len(rows))
	for _, row := range rows {
		items, err := order.DecodeItems(row.Items)
		if err != nil {
			return nil, fmt.Errorf("listing orders: %w", err)
		}
		out = append(out, order.Order{ID: row.ID, Items: items, Total: row.Total, CreatedAt: row.CreatedAt.UTC()})
	}
	return out, nil
}
