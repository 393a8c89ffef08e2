package model

import "time"

// Item is a catalog definition of a purchasable item.
// The economy engine only ever reads this table; writes happen through
// the admin item endpoints.
type Item struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ItemCode    int       `gorm:"uniqueIndex;not null" json:"item_code"`
	Name        string    `gorm:"size:64;not null" json:"item_name"`
	HealthBonus int       `gorm:"default:0" json:"health"`
	PowerBonus  int       `gorm:"default:0" json:"power"`
	Price       int64     `gorm:"not null;default:0" json:"item_price"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
