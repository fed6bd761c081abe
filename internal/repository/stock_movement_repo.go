package repository

import (
	"context"

	"github.com/abdoul9859/techplus/internal/model"

	"gorm.io/gorm"
)

type StockMovementFilter struct {
	ProductID     uint
	MovementType  string
	ReferenceType string
	Page          int
	Limit         int
}

type StockMovementRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	Create(ctx context.Context, m *model.StockMovement) error
	List(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, int64, error)
	ListByProduct(ctx context.Context, productID uint) ([]model.StockMovement, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockMovementRepo) Create(ctx context.Context, m *model.StockMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *stockMovementRepo) List(ctx context.Context, filter StockMovementFilter) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	var total int64

	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if filter.ProductID != 0 {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.MovementType != "" {
		q = q.Where("movement_type = ?", filter.MovementType)
	}
	if filter.ReferenceType != "" {
		q = q.Where("reference_type = ?", filter.ReferenceType)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Product").Order("created_at DESC").
		Limit(filter.Limit).Offset(offset).Find(&movements).Error
	return movements, total, err
}

func (r *stockMovementRepo) ListByProduct(ctx context.Context, productID uint) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).
		Order("created_at DESC").Find(&movements).Error
	return movements, err
}
