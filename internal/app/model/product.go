package model

import (
	"strings"
	"time"
)

// attributeSeparator delimits the serialized attribute list, matching the
// stored column format.
const attributeSeparator = ";"

type Product struct {
	ID              uint      `gorm:"primarykey" json:"id"`
	Name            string    `gorm:"not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	Price           float64   `gorm:"not null;default:0" json:"price"`
	DiscountPercent float64   `gorm:"not null;default:0" json:"discount_percent"`
	Preview         string    `json:"preview,omitempty"`
	CategoryID      *uint     `gorm:"index" json:"category_id,omitempty"`
	Attributes      string    `gorm:"type:text" json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Category *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Images   []ProductImage  `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	AddOns   []AddOnCategory `gorm:"foreignKey:ProductID" json:"add_ons,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// AttributeList splits the serialized attributes column.
func (p *Product) AttributeList() []string {
	if p.Attributes == "" {
		return nil
	}
	var attrs []string
	for _, a := range strings.Split(p.Attributes, attributeSeparator) {
		if a = strings.TrimSpace(a); a != "" {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// SetAttributes serializes the ordered attribute list into the stored form.
func (p *Product) SetAttributes(attrs []string) {
	var kept []string
	for _, a := range attrs {
		if a = strings.TrimSpace(a); a != "" {
			kept = append(kept, a)
		}
	}
	p.Attributes = strings.Join(kept, attributeSeparator)
}

type ProductImage struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	ProductID uint   `gorm:"not null;index" json:"product_id"`
	Path      string `gorm:"not null" json:"path"`
	SortOrder int    `gorm:"not null;default:0" json:"sort_order"`
}

func (ProductImage) TableName() string {
	return "product_images"
}
