package repository

import (
	"context"

	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DebtRepository interface {
	Create(ctx context.Context, d *model.SupplierDebt) error
	FindByID(ctx context.Context, id uint) (*model.SupplierDebt, error)
	FindByIDForUpdate(tx *gorm.DB, id uint) (*model.SupplierDebt, error)
	List(ctx context.Context, filter dto.DebtFilter) ([]model.SupplierDebt, int64, error)
	Update(ctx context.Context, d *model.SupplierDebt) error
	UpdateTx(tx *gorm.DB, d *model.SupplierDebt) error
	Delete(ctx context.Context, id uint) error
	CreatePaymentTx(tx *gorm.DB, p *model.SupplierDebtPayment) error

	DB() *gorm.DB
}

type debtRepo struct{ db *gorm.DB }

func NewDebtRepository(db *gorm.DB) DebtRepository { return &debtRepo{db: db} }

func (r *debtRepo) Create(ctx context.Context, d *model.SupplierDebt) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *debtRepo) FindByID(ctx context.Context, id uint) (*model.SupplierDebt, error) {
	var d model.SupplierDebt
	err := r.db.WithContext(ctx).Preload("Payments").Preload("Supplier").First(&d, id).Error
	return &d, err
}

func (r *debtRepo) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.SupplierDebt, error) {
	var d model.SupplierDebt
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, id).Error
	return &d, err
}

func (r *debtRepo) List(ctx context.Context, filter dto.DebtFilter) ([]model.SupplierDebt, int64, error) {
	var debts []model.SupplierDebt
	var total int64

	q := r.db.WithContext(ctx).Model(&model.SupplierDebt{})
	if filter.SupplierID != 0 {
		q = q.Where("supplier_id = ?", filter.SupplierID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Payments").Preload("Supplier").Order("date DESC, debt_id DESC").
		Limit(filter.Limit).Offset(offset).Find(&debts).Error
	return debts, total, err
}

func (r *debtRepo) Update(ctx context.Context, d *model.SupplierDebt) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *debtRepo) UpdateTx(tx *gorm.DB, d *model.SupplierDebt) error {
	return tx.Save(d).Error
}

func (r *debtRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.SupplierDebt{}, id).Error
}

func (r *debtRepo) CreatePaymentTx(tx *gorm.DB, p *model.SupplierDebtPayment) error {
	return tx.Create(p).Error
}

func (r *debtRepo) DB() *gorm.DB { return r.db }
