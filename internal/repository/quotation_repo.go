package repository

import (
	"context"
	"fmt"

	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"

	"gorm.io/gorm"
)

type QuotationRepository interface {
	CreateTx(tx *gorm.DB, q *model.Quotation) error
	FindByID(ctx context.Context, id uint) (*model.Quotation, error)
	FindByNumber(ctx context.Context, number string) (*model.Quotation, error)
	List(ctx context.Context, filter dto.QuotationFilter) ([]model.Quotation, int64, error)
	Update(ctx context.Context, q *model.Quotation) error
	UpdateTx(tx *gorm.DB, q *model.Quotation) error
	Delete(ctx context.Context, id uint) error
	ReplaceItemsTx(tx *gorm.DB, quotationID uint, items []model.QuotationItem) error
	// NextNumber allocates the next sequential quotation number for the given
	// prefix, scanning the numeric suffix of existing rows. Must run inside
	// the same transaction that inserts the row.
	NextNumber(tx *gorm.DB, prefix string) (string, error)

	DB() *gorm.DB
}

type quotationRepo struct{ db *gorm.DB }

func NewQuotationRepository(db *gorm.DB) QuotationRepository { return &quotationRepo{db: db} }

func (r *quotationRepo) CreateTx(tx *gorm.DB, q *model.Quotation) error {
	return tx.Create(q).Error
}

func (r *quotationRepo) FindByID(ctx context.Context, id uint) (*model.Quotation, error) {
	var q model.Quotation
	err := r.db.WithContext(ctx).Preload("Items").Preload("Client").First(&q, id).Error
	return &q, err
}

func (r *quotationRepo) FindByNumber(ctx context.Context, number string) (*model.Quotation, error) {
	var q model.Quotation
	err := r.db.WithContext(ctx).Preload("Items").Preload("Client").
		Where("quotation_number = ?", number).First(&q).Error
	return &q, err
}

func (r *quotationRepo) List(ctx context.Context, filter dto.QuotationFilter) ([]model.Quotation, int64, error) {
	var quotations []model.Quotation
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Quotation{})
	if filter.ClientID != 0 {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		q = q.Where("quotation_number ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.DateFrom != "" {
		q = q.Where("date >= ?", filter.DateFrom)
	}
	if filter.DateTo != "" {
		q = q.Where("date <= ?", filter.DateTo)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items").Preload("Client").Order("date DESC, quotation_id DESC").
		Limit(filter.Limit).Offset(offset).Find(&quotations).Error
	return quotations, total, err
}

func (r *quotationRepo) Update(ctx context.Context, q *model.Quotation) error {
	return r.db.WithContext(ctx).Save(q).Error
}

func (r *quotationRepo) UpdateTx(tx *gorm.DB, q *model.Quotation) error {
	return tx.Save(q).Error
}

func (r *quotationRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Quotation{}, id).Error
}

func (r *quotationRepo) ReplaceItemsTx(tx *gorm.DB, quotationID uint, items []model.QuotationItem) error {
	if err := tx.Where("quotation_id = ?", quotationID).Delete(&model.QuotationItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].QuotationID = quotationID
		items[i].ItemID = 0
		if err := tx.Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *quotationRepo) NextNumber(tx *gorm.DB, prefix string) (string, error) {
	// Same serialization as invoice numbers: the lock outlives the MAX scan
	// until the transaction commits.
	if err := tx.Exec(
		"SELECT pg_advisory_xact_lock(hashtext('quotation_number'), hashtext(?))", prefix,
	).Error; err != nil {
		return "", err
	}
	var maxSuffix int64
	err := tx.Raw(
		`SELECT COALESCE(MAX(CAST(SUBSTRING(quotation_number FROM '[0-9]+$') AS INTEGER)), 0)
		 FROM quotations WHERE quotation_number LIKE ?`, prefix+"%",
	).Scan(&maxSuffix).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, maxSuffix+1), nil
}

func (r *quotationRepo) DB() *gorm.DB { return r.db }
