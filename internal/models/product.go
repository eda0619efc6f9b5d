package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductStatus is the stored lifecycle state of a product.
type ProductStatus string

const (
	StatusDraft     ProductStatus = "DRAFT"
	StatusPublished ProductStatus = "PUBLISHED"
	StatusArchived  ProductStatus = "ARCHIVED"
)

// Product represents a catalog entry.
// Price is kept in the smallest currency unit.
type Product struct {
	ID              string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name            string         `json:"name" gorm:"type:varchar(100);not null"`
	Slug            string         `json:"slug" gorm:"type:varchar(255);not null;uniqueIndex"`
	Description     string         `json:"description" gorm:"type:text;not null"`
	Price           int64          `json:"price" gorm:"not null"`
	Stock           int            `json:"stock" gorm:"not null"`
	Status          ProductStatus  `json:"status" gorm:"type:varchar(16);not null;default:DRAFT;index"`
	Tags            []string       `json:"tags" gorm:"type:text;serializer:json"`
	MetaTitle       *string        `json:"metaTitle" gorm:"type:varchar(60)"`
	MetaDescription *string        `json:"metaDescription" gorm:"type:varchar(160)"`
	CategoryID      string         `json:"categoryId" gorm:"type:varchar(36);not null;index"`
	Category        *Category      `json:"category,omitempty"`
	CreatedByID     string         `json:"createdById" gorm:"type:varchar(36);not null;index"`
	CreatedBy       *User          `json:"createdBy,omitempty"`
	Images          []ProductImage `json:"images" gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller left the ID empty.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// AfterFind normalizes a missing tag list to an empty one.
func (p *Product) AfterFind(tx *gorm.DB) error {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Images == nil {
		p.Images = []ProductImage{}
	}
	return nil
}
