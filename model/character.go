package model

import "time"

// Base stats every new character starts with.
const (
	BaseHealth = 500
	BasePower  = 100
	BaseMoney  = 10000
)

// Character represents a player's in-game character.
// Health and Power always equal the base stats plus the bonuses of every
// currently equipped item; equip/unequip keep the fields in sync inside
// the same transaction that moves the item.
type Character struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID int64     `gorm:"index:idx_char_account;not null" json:"account_id"`
	Name      string    `gorm:"uniqueIndex;size:32;not null" json:"name"`
	Health    int       `gorm:"not null" json:"health"`
	Power     int       `gorm:"not null" json:"power"`
	Money     int64     `gorm:"not null;default:0" json:"money"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
