package types

import "time"

// ShopItem is a cosmetic catalog entry, seeded from configs/shop_items.yaml.
type ShopItem struct {
	ID          string    `gorm:"primaryKey;column:item_id" json:"item_id" yaml:"item_id"`
	Name        string    `gorm:"not null;column:name" json:"name" yaml:"name"`
	Type        string    `gorm:"not null;column:type" json:"type" yaml:"type"`
	Rarity      string    `gorm:"column:rarity" json:"rarity" yaml:"rarity"`
	Price       int       `gorm:"column:price;not null" json:"price" yaml:"price"`
	Description string    `gorm:"column:description" json:"description" yaml:"description"`
	Preview     string    `gorm:"column:preview" json:"preview" yaml:"preview"`
	CreatedAt   time.Time `gorm:"not null" json:"-" yaml:"-"`
	UpdatedAt   time.Time `gorm:"not null" json:"-" yaml:"-"`
}

func (ShopItem) TableName() string { return "shop_item" }
