package model

// Category carries the variant policy for its products: when RequiresVariants
// is set, every unit of a product in this category is tracked by IMEI/serial.
type Category struct {
	CategoryID       uint   `gorm:"primaryKey"`
	Name             string `gorm:"size:50;uniqueIndex;not null"`
	Description      *string
	RequiresVariants bool `gorm:"not null;default:false"`

	Attributes []CategoryAttribute `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// CategoryAttribute describes one attribute of the category's variant schema
// (e.g. color, storage). Type: select | multiselect | text | number | boolean.
type CategoryAttribute struct {
	AttributeID uint    `gorm:"primaryKey"`
	CategoryID  uint    `gorm:"index;not null;uniqueIndex:uq_category_attr_code"`
	Name        string  `gorm:"size:50;not null"`
	Code        *string `gorm:"size:50;uniqueIndex:uq_category_attr_code"`
	Type        string  `gorm:"size:20;not null;default:'select'"`
	Required    bool    `gorm:"not null;default:false"`
	MultiSelect bool    `gorm:"not null;default:false"`
	SortOrder   int     `gorm:"not null;default:0"`

	Values []CategoryAttributeValue `gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
}

type CategoryAttributeValue struct {
	ValueID     uint    `gorm:"primaryKey"`
	AttributeID uint    `gorm:"index;not null;uniqueIndex:uq_attr_value_code"`
	Value       string  `gorm:"size:100;not null"`
	Code        *string `gorm:"size:100;uniqueIndex:uq_attr_value_code"`
	SortOrder   int     `gorm:"not null;default:0"`
}
