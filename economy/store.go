package economy

import (
	"context"
	"errors"

	"github.com/kasuganosora/itemsim/model"
	"gorm.io/gorm"
)

// Stores is the data-access contract the engine runs against. A Stores
// value is bound to one transaction; no business rules live here.
type Stores interface {
	GetCharacter(ctx context.Context, charID int64) (*model.Character, error)

	AddInventory(ctx context.Context, charID int64, itemCode, count int) error
	// RemoveInventory deletes the given entry rows and returns how many
	// actually existed, so a concurrent consumer of the same entries is
	// detected instead of silently double-spent.
	RemoveInventory(ctx context.Context, ids []int64) (int64, error)
	FindInventory(ctx context.Context, charID int64, itemCode int) (*model.InventoryEntry, error)
	ListInventory(ctx context.Context, charID int64) ([]model.InventoryEntry, error)

	AddEquipped(ctx context.Context, charID int64, itemCode int) error
	RemoveEquipped(ctx context.Context, id int64) (int64, error)
	FindEquipped(ctx context.Context, charID int64, itemCode int) (*model.EquippedItem, error)
	ListEquipped(ctx context.Context, charID int64) ([]model.EquippedItem, error)

	// AdjustMoney applies an unconditional balance delta.
	AdjustMoney(ctx context.Context, charID int64, delta int64) error
	// SpendMoney decrements the balance only if it covers the amount;
	// the check and the decrement are one statement so two concurrent
	// spends can never both pass against a stale balance.
	SpendMoney(ctx context.Context, charID int64, amount int64) (bool, error)
	AdjustStats(ctx context.Context, charID int64, healthDelta, powerDelta int) error
}

// StoreFactory binds a Stores implementation to a transaction handle.
type StoreFactory func(tx *gorm.DB) Stores

// NewGormStores is the production StoreFactory.
func NewGormStores(tx *gorm.DB) Stores {
	return &gormStores{tx: tx}
}

type gormStores struct {
	tx *gorm.DB
}

func (s *gormStores) GetCharacter(ctx context.Context, charID int64) (*model.Character, error) {
	var char model.Character
	err := s.tx.WithContext(ctx).Where("id = ?", charID).First(&char).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &char, nil
}

func (s *gormStores) AddInventory(ctx context.Context, charID int64, itemCode, count int) error {
	entries := make([]model.InventoryEntry, count)
	for i := range entries {
		entries[i] = model.InventoryEntry{CharID: charID, ItemCode: itemCode}
	}
	return s.tx.WithContext(ctx).Create(&entries).Error
}

func (s *gormStores) RemoveInventory(ctx context.Context, ids []int64) (int64, error) {
	res := s.tx.WithContext(ctx).Where("id IN ?", ids).Delete(&model.InventoryEntry{})
	return res.RowsAffected, res.Error
}

func (s *gormStores) FindInventory(ctx context.Context, charID int64, itemCode int) (*model.InventoryEntry, error) {
	var entry model.InventoryEntry
	err := s.tx.WithContext(ctx).
		Where("char_id = ? AND item_code = ?", charID, itemCode).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *gormStores) ListInventory(ctx context.Context, charID int64) ([]model.InventoryEntry, error) {
	var entries []model.InventoryEntry
	err := s.tx.WithContext(ctx).
		Where("char_id = ?", charID).
		Order("id").
		Find(&entries).Error
	return entries, err
}

func (s *gormStores) AddEquipped(ctx context.Context, charID int64, itemCode int) error {
	return s.tx.WithContext(ctx).Create(&model.EquippedItem{CharID: charID, ItemCode: itemCode}).Error
}

func (s *gormStores) RemoveEquipped(ctx context.Context, id int64) (int64, error) {
	res := s.tx.WithContext(ctx).Where("id = ?", id).Delete(&model.EquippedItem{})
	return res.RowsAffected, res.Error
}

func (s *gormStores) FindEquipped(ctx context.Context, charID int64, itemCode int) (*model.EquippedItem, error) {
	var eq model.EquippedItem
	err := s.tx.WithContext(ctx).
		Where("char_id = ? AND item_code = ?", charID, itemCode).
		First(&eq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &eq, nil
}

func (s *gormStores) ListEquipped(ctx context.Context, charID int64) ([]model.EquippedItem, error) {
	var eqs []model.EquippedItem
	err := s.tx.WithContext(ctx).
		Where("char_id = ?", charID).
		Order("item_code").
		Find(&eqs).Error
	return eqs, err
}

func (s *gormStores) AdjustMoney(ctx context.Context, charID int64, delta int64) error {
	return s.tx.WithContext(ctx).Model(&model.Character{}).
		Where("id = ?", charID).
		Update("money", gorm.Expr("money + ?", delta)).Error
}

func (s *gormStores) SpendMoney(ctx context.Context, charID int64, amount int64) (bool, error) {
	res := s.tx.WithContext(ctx).Model(&model.Character{}).
		Where("id = ? AND money >= ?", charID, amount).
		Update("money", gorm.Expr("money - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStores) AdjustStats(ctx context.Context, charID int64, healthDelta, powerDelta int) error {
	return s.tx.WithContext(ctx).Model(&model.Character{}).
		Where("id = ?", charID).
		Updates(map[string]interface{}{
			"health": gorm.Expr("health + ?", healthDelta),
			"power":  gorm.Expr("power + ?", powerDelta),
		}).Error
}
