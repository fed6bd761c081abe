package repository

import (
	"context"

	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"

	"gorm.io/gorm"
)

type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	FindByID(ctx context.Context, id uint) (*model.Client, error)
	List(ctx context.Context, filter dto.ClientFilter) ([]model.Client, int64, error)
	Update(ctx context.Context, c *model.Client) error
	Delete(ctx context.Context, id uint) error
	// CountInvoices reports how many invoices reference the client, used to
	// guard deletion.
	CountInvoices(ctx context.Context, id uint) (int64, error)
}

type clientRepo struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository { return &clientRepo{db: db} }

func (r *clientRepo) Create(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clientRepo) FindByID(ctx context.Context, id uint) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *clientRepo) List(ctx context.Context, filter dto.ClientFilter) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Client{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR email ILIKE ? OR phone ILIKE ?", like, like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&clients).Error
	return clients, total, err
}

func (r *clientRepo) Update(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clientRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Client{}, id).Error
}

func (r *clientRepo) CountInvoices(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).Where("client_id = ?", id).Count(&n).Error
	return n, err
}
