// Package catalog provides read-only access to item definitions.
// The economy engine only ever sees the Lookup interface; the admin item
// endpoints write the same table through their own handler.
package catalog

import (
	"context"
	"errors"

	"github.com/kasuganosora/itemsim/model"
	"gorm.io/gorm"
)

// ErrItemNotFound is returned when no item with the requested code exists.
var ErrItemNotFound = errors.New("catalog: item not found")

// Lookup resolves item definitions by item code.
type Lookup interface {
	GetItem(ctx context.Context, itemCode int) (*model.Item, error)
	ListItems(ctx context.Context) ([]model.Item, error)
}

// Store is the gorm-backed Lookup implementation.
type Store struct {
	db *gorm.DB
}

// NewStore creates a catalog Store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetItem returns the item definition for itemCode.
func (s *Store) GetItem(ctx context.Context, itemCode int) (*model.Item, error) {
	var item model.Item
	err := s.db.WithContext(ctx).Where("item_code = ?", itemCode).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns all item definitions ordered by item code.
func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := s.db.WithContext(ctx).Order("item_code").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
