package model

import "time"

// UserSetting is one key/value preference, stored as JSON text. A nil UserID
// makes the row global (application level); per-user rows shadow the global
// one on read.
type UserSetting struct {
	SettingID    uint   `gorm:"primaryKey"`
	UserID       *uint  `gorm:"uniqueIndex:idx_setting_owner_key"`
	SettingKey   string `gorm:"size:100;not null;uniqueIndex:idx_setting_owner_key"`
	SettingValue string `gorm:"type:text;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ScanHistory records one barcode lookup made from the scan screen.
type ScanHistory struct {
	ScanID      uint    `gorm:"primaryKey"`
	UserID      uint    `gorm:"index;not null"`
	Barcode     string  `gorm:"size:255;not null"`
	ProductName *string `gorm:"size:500"`
	ScanType    string  `gorm:"size:20;not null;default:'product'"` // product | variant | variant_partial
	ResultData  *string `gorm:"type:text"`
	ScannedAt   time.Time
}
