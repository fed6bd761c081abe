package repository

import (
	"context"

	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"

	"gorm.io/gorm"
)

// ProductRepository defines the data access contract for products and their
// serialized variants. Services depend on this interface, not on the concrete
// GORM implementation, enabling clean unit testing via mocks.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id uint) error

	// Variants
	FindVariantByID(ctx context.Context, id uint) (*model.ProductVariant, error)
	FindVariantBySerial(ctx context.Context, serial string) (*model.ProductVariant, error)
	FindVariantByBarcode(ctx context.Context, barcode string) (*model.ProductVariant, error)
	SearchVariantsBySerial(ctx context.Context, fragment string, limit int) ([]model.ProductVariant, error)
	AvailableVariantCount(ctx context.Context, productID uint) (int64, error)
	CountSoldVariants(ctx context.Context, productID uint) (int64, error)

	// Uniqueness probes across the product ∪ variant barcode space.
	BarcodeInUse(ctx context.Context, barcode string, excludeProductID, excludeVariantID uint) (bool, error)
	SerialInUse(ctx context.Context, serial string, excludeVariantID uint) (bool, error)

	// Used inside transactions — callers must pass the tx instance.
	CreateVariantTx(tx *gorm.DB, v *model.ProductVariant) error
	UpdateVariantTx(tx *gorm.DB, v *model.ProductVariant) error
	DeleteVariantsTx(tx *gorm.DB, productID uint, variantIDs []uint) error
	// MarkSoldTx flips is_sold only when the row is still unsold; a zero
	// RowsAffected result means the unit was taken by a concurrent sale.
	MarkSoldTx(tx *gorm.DB, variantID uint) (int64, error)
	MarkUnsoldTx(tx *gorm.DB, variantID uint) error
	// AdjustQuantityTx applies a relative delta to the plain stock counter.
	AdjustQuantityTx(tx *gorm.DB, productID uint, delta int) error
	// ConsumeQuantityTx decrements the counter only while enough units remain;
	// zero RowsAffected means a concurrent sale drained the stock first.
	ConsumeQuantityTx(tx *gorm.DB, productID uint, qty int) (int64, error)
	// SyncQuantityTx recomputes quantity from the unsold variant count.
	SyncQuantityTx(tx *gorm.DB, productID uint) error

	// Deletion guard: invoice lines still referencing the product.
	CountInvoiceRefs(ctx context.Context, productID uint) (int64, error)

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Variants.Attributes").First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Variants.Attributes").
		Where("barcode = ?", barcode).First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR brand ILIKE ? OR model ILIKE ? OR barcode ILIKE ?",
			like, like, like, like)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Brand != "" {
		q = q.Where("brand = ?", filter.Brand)
	}
	if filter.Condition != "" {
		q = q.Where("condition = ?", filter.Condition)
	}
	if filter.InStock != nil {
		if *filter.InStock {
			q = q.Where("quantity > 0")
		} else {
			q = q.Where("quantity = 0")
		}
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Variants.Attributes").Order("name ASC").
		Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Product{}, id).Error
}

func (r *productRepo) FindVariantByID(ctx context.Context, id uint) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).Preload("Attributes").First(&v, id).Error
	return &v, err
}

func (r *productRepo) FindVariantBySerial(ctx context.Context, serial string) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).Preload("Attributes").
		Where("imei_serial = ?", serial).First(&v).Error
	return &v, err
}

func (r *productRepo) FindVariantByBarcode(ctx context.Context, barcode string) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).Preload("Attributes").
		Where("barcode = ?", barcode).First(&v).Error
	return &v, err
}

func (r *productRepo) SearchVariantsBySerial(ctx context.Context, fragment string, limit int) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	err := r.db.WithContext(ctx).Preload("Attributes").
		Where("imei_serial ILIKE ?", "%"+fragment+"%").
		Limit(limit).Find(&variants).Error
	return variants, err
}

func (r *productRepo) AvailableVariantCount(ctx context.Context, productID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("product_id = ? AND is_sold = false", productID).Count(&n).Error
	return n, err
}

func (r *productRepo) CountSoldVariants(ctx context.Context, productID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.ProductVariant{}).
		Where("product_id = ? AND is_sold = true", productID).Count(&n).Error
	return n, err
}

func (r *productRepo) BarcodeInUse(ctx context.Context, barcode string, excludeProductID, excludeVariantID uint) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("barcode = ?", barcode)
	if excludeProductID != 0 {
		q = q.Where("product_id <> ?", excludeProductID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return true, nil
	}

	q = r.db.WithContext(ctx).Model(&model.ProductVariant{}).Where("barcode = ?", barcode)
	if excludeVariantID != 0 {
		q = q.Where("variant_id <> ?", excludeVariantID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *productRepo) SerialInUse(ctx context.Context, serial string, excludeVariantID uint) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&model.ProductVariant{}).Where("imei_serial = ?", serial)
	if excludeVariantID != 0 {
		q = q.Where("variant_id <> ?", excludeVariantID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func (r *productRepo) CreateVariantTx(tx *gorm.DB, v *model.ProductVariant) error {
	return tx.Create(v).Error
}

func (r *productRepo) UpdateVariantTx(tx *gorm.DB, v *model.ProductVariant) error {
	// The attribute set is replaced wholesale. Save alone only upserts the
	// incoming rows and would leave the previous set behind.
	if err := tx.Where("variant_id = ?", v.VariantID).
		Delete(&model.ProductVariantAttribute{}).Error; err != nil {
		return err
	}
	return tx.Save(v).Error
}

func (r *productRepo) DeleteVariantsTx(tx *gorm.DB, productID uint, variantIDs []uint) error {
	if len(variantIDs) == 0 {
		return nil
	}
	return tx.Where("product_id = ? AND variant_id IN ?", productID, variantIDs).
		Delete(&model.ProductVariant{}).Error
}

func (r *productRepo) MarkSoldTx(tx *gorm.DB, variantID uint) (int64, error) {
	res := tx.Model(&model.ProductVariant{}).
		Where("variant_id = ? AND is_sold = false", variantID).
		Update("is_sold", true)
	return res.RowsAffected, res.Error
}

func (r *productRepo) MarkUnsoldTx(tx *gorm.DB, variantID uint) error {
	return tx.Model(&model.ProductVariant{}).
		Where("variant_id = ?", variantID).
		Update("is_sold", false).Error
}

func (r *productRepo) AdjustQuantityTx(tx *gorm.DB, productID uint, delta int) error {
	return tx.Model(&model.Product{}).Where("product_id = ?", productID).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func (r *productRepo) ConsumeQuantityTx(tx *gorm.DB, productID uint, qty int) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("product_id = ? AND quantity >= ?", productID, qty).
		Update("quantity", gorm.Expr("quantity - ?", qty))
	return res.RowsAffected, res.Error
}

func (r *productRepo) SyncQuantityTx(tx *gorm.DB, productID uint) error {
	return tx.Model(&model.Product{}).Where("product_id = ?", productID).
		Update("quantity", gorm.Expr(
			"(SELECT COUNT(*) FROM product_variants WHERE product_variants.product_id = ? AND product_variants.is_sold = false)",
			productID,
		)).Error
}

func (r *productRepo) CountInvoiceRefs(ctx context.Context, productID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.InvoiceItem{}).
		Where("product_id = ?", productID).Count(&n).Error
	return n, err
}

func (r *productRepo) DB() *gorm.DB { return r.db }
