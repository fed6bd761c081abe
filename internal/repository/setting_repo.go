package repository

import (
	"context"

	"github.com/abdoul9859/techplus/internal/model"

	"gorm.io/gorm"
)

// SettingRepository persists per-user and global key/value settings plus the
// scan history attached to each user.
type SettingRepository interface {
	ListByUser(ctx context.Context, userID uint) ([]model.UserSetting, error)
	// Find looks up one scope only — nil userID means the global row.
	Find(ctx context.Context, userID *uint, key string) (*model.UserSetting, error)
	Save(ctx context.Context, s *model.UserSetting) error
	Delete(ctx context.Context, userID *uint, key string) error

	ListScans(ctx context.Context, userID uint, limit int) ([]model.ScanHistory, error)
	CreateScan(ctx context.Context, s *model.ScanHistory) error
	ClearScans(ctx context.Context, userID uint) error
}

type settingRepo struct{ db *gorm.DB }

func NewSettingRepository(db *gorm.DB) SettingRepository { return &settingRepo{db: db} }

func (r *settingRepo) ListByUser(ctx context.Context, userID uint) ([]model.UserSetting, error) {
	var settings []model.UserSetting
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&settings).Error
	return settings, err
}

func (r *settingRepo) Find(ctx context.Context, userID *uint, key string) (*model.UserSetting, error) {
	var s model.UserSetting
	q := r.db.WithContext(ctx).Where("setting_key = ?", key)
	if userID == nil {
		q = q.Where("user_id IS NULL")
	} else {
		q = q.Where("user_id = ?", *userID)
	}
	err := q.First(&s).Error
	return &s, err
}

func (r *settingRepo) Save(ctx context.Context, s *model.UserSetting) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *settingRepo) Delete(ctx context.Context, userID *uint, key string) error {
	q := r.db.WithContext(ctx).Where("setting_key = ?", key)
	if userID == nil {
		q = q.Where("user_id IS NULL")
	} else {
		q = q.Where("user_id = ?", *userID)
	}
	return q.Delete(&model.UserSetting{}).Error
}

func (r *settingRepo) ListScans(ctx context.Context, userID uint, limit int) ([]model.ScanHistory, error) {
	var scans []model.ScanHistory
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("scanned_at DESC").Limit(limit).Find(&scans).Error
	return scans, err
}

func (r *settingRepo) CreateScan(ctx context.Context, s *model.ScanHistory) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *settingRepo) ClearScans(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).
		Delete(&model.ScanHistory{}).Error
}
