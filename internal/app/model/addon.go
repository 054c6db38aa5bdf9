package model

// AddOnCategory groups optional extras a customer can attach to a product
// (for example "Sauce" with priced named items).
type AddOnCategory struct {
	ID        uint    `gorm:"primarykey" json:"id"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Name      string  `gorm:"not null" json:"name"`
	Price     float64 `gorm:"not null;default:0" json:"price"`

	Items []AddOnItem `gorm:"foreignKey:AddOnCategoryID" json:"items,omitempty"`
}

func (AddOnCategory) TableName() string {
	return "addon_categories"
}

type AddOnItem struct {
	ID              uint   `gorm:"primarykey" json:"id"`
	AddOnCategoryID uint   `gorm:"not null;index" json:"addon_category_id"`
	Name            string `gorm:"not null" json:"name"`
	ImagePath       string `json:"image_path,omitempty"`
}

func (AddOnItem) TableName() string {
	return "addon_items"
}
