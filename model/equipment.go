package model

import "time"

// EquippedItem is the single currently-worn instance of an item code for
// a character. The composite unique index enforces at-most-one per
// (char_id, item_code) even under concurrent equips: the second insert
// fails with a unique violation and its transaction rolls back.
type EquippedItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CharID    int64     `gorm:"uniqueIndex:idx_equipped_char_item;not null" json:"char_id"`
	ItemCode  int       `gorm:"uniqueIndex:idx_equipped_char_item;not null" json:"item_code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
