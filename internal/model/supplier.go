package model

type Supplier struct {
	SupplierID    uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:100;not null;index"`
	ContactPerson *string `gorm:"size:100"`
	Email         *string `gorm:"size:100"`
	Phone         *string `gorm:"size:20"`
	Address       *string
}
