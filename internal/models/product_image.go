package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductImage is an ordered media entry owned by a product.
// Order is not unique; ties keep insertion order.
type ProductImage struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	URL       string    `json:"url" gorm:"type:text;not null"`
	Alt       *string   `json:"alt"`
	Order     int       `json:"order" gorm:"column:position;not null;default:0"`
	ProductID string    `json:"productId" gorm:"type:varchar(36);not null;index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller left the ID empty.
func (i *ProductImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
