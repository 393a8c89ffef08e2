package model

import "time"

// InventoryEntry is one unequipped physical copy of an item owned by a
// character. Several rows with the same (char_id, item_code) are legal;
// listing endpoints group them into counts.
type InventoryEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CharID    int64     `gorm:"index:idx_inventory_char;not null" json:"char_id"`
	ItemCode  int       `gorm:"index:idx_inventory_char;not null" json:"item_code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
