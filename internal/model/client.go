package model

import "time"

type Client struct {
	ClientID   uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:100;not null;index"`
	Contact    *string
	Email      *string `gorm:"size:100"`
	Phone      *string `gorm:"size:20"`
	Address    *string
	City       *string `gorm:"size:50"`
	PostalCode *string `gorm:"size:10"`
	Country    string  `gorm:"size:50;not null;default:'Sénégal'"`
	TaxNumber  *string `gorm:"size:50"`
	Notes      *string
	CreatedAt  time.Time
}
