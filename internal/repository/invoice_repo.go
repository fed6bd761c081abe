package repository

import (
	"context"
	"fmt"

	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceRepository defines the data access contract for invoices and their
// payment ledger.
type InvoiceRepository interface {
	CreateTx(tx *gorm.DB, inv *model.Invoice) error
	FindByID(ctx context.Context, id uint) (*model.Invoice, error)
	// FindByIDForUpdate locks the invoice row for the duration of the
	// surrounding transaction. Payment appends go through this.
	FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Invoice, error)
	List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error)
	ListByClient(ctx context.Context, clientID uint) ([]model.Invoice, error)
	// ListOpen returns non-cancelled invoices with an outstanding balance;
	// these are the client receivables of the debts view.
	ListOpen(ctx context.Context) ([]model.Invoice, error)
	Update(ctx context.Context, inv *model.Invoice) error
	UpdateTx(tx *gorm.DB, inv *model.Invoice) error
	DeleteTx(tx *gorm.DB, id uint) error
	ReplaceItemsTx(tx *gorm.DB, invoiceID uint, items []model.InvoiceItem) error
	CreatePaymentTx(tx *gorm.DB, p *model.InvoicePayment) error
	NextNumber(tx *gorm.DB, prefix string) (string, error)

	DB() *gorm.DB
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) CreateTx(tx *gorm.DB, inv *model.Invoice) error {
	return tx.Create(inv).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uint) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items.Variants").Preload("Payments").Preload("Client").
		First(&inv, id).Error
	return &inv, err
}

func (r *invoiceRepo) FindByIDForUpdate(tx *gorm.DB, id uint) (*model.Invoice, error) {
	var inv model.Invoice
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, id).Error
	return &inv, err
}

func (r *invoiceRepo) List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Invoice{})
	if filter.ClientID != 0 {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		q = q.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
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
	err := q.Preload("Items.Variants").Preload("Payments").Preload("Client").
		Order("date DESC, invoice_id DESC").
		Limit(filter.Limit).Offset(offset).Find(&invoices).Error
	return invoices, total, err
}

func (r *invoiceRepo) ListByClient(ctx context.Context, clientID uint) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).Where("client_id = ?", clientID).
		Order("date DESC").Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) ListOpen(ctx context.Context) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).Preload("Client").
		Where("status <> ? AND paid_amount < total", model.InvoiceCancelled).
		Order("date ASC").Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) Update(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *invoiceRepo) UpdateTx(tx *gorm.DB, inv *model.Invoice) error {
	return tx.Save(inv).Error
}

func (r *invoiceRepo) DeleteTx(tx *gorm.DB, id uint) error {
	return tx.Delete(&model.Invoice{}, id).Error
}

func (r *invoiceRepo) ReplaceItemsTx(tx *gorm.DB, invoiceID uint, items []model.InvoiceItem) error {
	if err := tx.Where("invoice_id = ?", invoiceID).Delete(&model.InvoiceItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].InvoiceID = invoiceID
		items[i].ItemID = 0
		if err := tx.Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *invoiceRepo) CreatePaymentTx(tx *gorm.DB, p *model.InvoicePayment) error {
	return tx.Create(p).Error
}

func (r *invoiceRepo) NextNumber(tx *gorm.DB, prefix string) (string, error) {
	// Advisory lock held until commit: MAX+1 under concurrency would hand two
	// transactions the same suffix and the unique index would kill one of them.
	if err := tx.Exec(
		"SELECT pg_advisory_xact_lock(hashtext('invoice_number'), hashtext(?))", prefix,
	).Error; err != nil {
		return "", err
	}
	var maxSuffix int64
	err := tx.Raw(
		`SELECT COALESCE(MAX(CAST(SUBSTRING(invoice_number FROM '[0-9]+$') AS INTEGER)), 0)
		 FROM invoices WHERE invoice_number LIKE ?`, prefix+"%",
	).Scan(&maxSuffix).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, maxSuffix+1), nil
}

func (r *invoiceRepo) DB() *gorm.DB { return r.db }
