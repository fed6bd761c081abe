package repository

import (
	"context"
	"fmt"

	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"

	"gorm.io/gorm"
)

type DeliveryNoteRepository interface {
	CreateTx(tx *gorm.DB, n *model.DeliveryNote) error
	FindByID(ctx context.Context, id uint) (*model.DeliveryNote, error)
	// FindByInvoiceID backs the idempotent derivation from an invoice.
	FindByInvoiceID(ctx context.Context, invoiceID uint) (*model.DeliveryNote, error)
	List(ctx context.Context, filter dto.DeliveryNoteFilter) ([]model.DeliveryNote, int64, error)
	Update(ctx context.Context, n *model.DeliveryNote) error
	Delete(ctx context.Context, id uint) error
	// DeleteByInvoiceTx removes notes derived from an invoice when the
	// invoice itself is deleted.
	DeleteByInvoiceTx(tx *gorm.DB, invoiceID uint) error
	ReplaceItemsTx(tx *gorm.DB, noteID uint, items []model.DeliveryNoteItem) error
	// NextNumber allocates BL-YYYYMMDD-#### style numbers; the date part is
	// already baked into the prefix by the caller.
	NextNumber(tx *gorm.DB, prefix string) (string, error)

	DB() *gorm.DB
}

type deliveryNoteRepo struct{ db *gorm.DB }

func NewDeliveryNoteRepository(db *gorm.DB) DeliveryNoteRepository {
	return &deliveryNoteRepo{db: db}
}

func (r *deliveryNoteRepo) CreateTx(tx *gorm.DB, n *model.DeliveryNote) error {
	return tx.Create(n).Error
}

func (r *deliveryNoteRepo) FindByID(ctx context.Context, id uint) (*model.DeliveryNote, error) {
	var n model.DeliveryNote
	err := r.db.WithContext(ctx).Preload("Items").Preload("Client").First(&n, id).Error
	return &n, err
}

func (r *deliveryNoteRepo) FindByInvoiceID(ctx context.Context, invoiceID uint) (*model.DeliveryNote, error) {
	var n model.DeliveryNote
	err := r.db.WithContext(ctx).Preload("Items").Preload("Client").
		Where("invoice_id = ?", invoiceID).First(&n).Error
	return &n, err
}

func (r *deliveryNoteRepo) List(ctx context.Context, filter dto.DeliveryNoteFilter) ([]model.DeliveryNote, int64, error) {
	var notes []model.DeliveryNote
	var total int64

	q := r.db.WithContext(ctx).Model(&model.DeliveryNote{})
	if filter.ClientID != 0 {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		q = q.Where("delivery_note_number ILIKE ?", "%"+filter.Search+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Items").Preload("Client").Order("date DESC, delivery_note_id DESC").
		Limit(filter.Limit).Offset(offset).Find(&notes).Error
	return notes, total, err
}

func (r *deliveryNoteRepo) Update(ctx context.Context, n *model.DeliveryNote) error {
	return r.db.WithContext(ctx).Save(n).Error
}

func (r *deliveryNoteRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.DeliveryNote{}, id).Error
}

func (r *deliveryNoteRepo) DeleteByInvoiceTx(tx *gorm.DB, invoiceID uint) error {
	return tx.Where("invoice_id = ?", invoiceID).Delete(&model.DeliveryNote{}).Error
}

func (r *deliveryNoteRepo) ReplaceItemsTx(tx *gorm.DB, noteID uint, items []model.DeliveryNoteItem) error {
	if err := tx.Where("delivery_note_id = ?", noteID).Delete(&model.DeliveryNoteItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].DeliveryNoteID = noteID
		items[i].ItemID = 0
		if err := tx.Create(&items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *deliveryNoteRepo) NextNumber(tx *gorm.DB, prefix string) (string, error) {
	// dated prefixes: one lock per prefix keeps unrelated days independent
	if err := tx.Exec(
		"SELECT pg_advisory_xact_lock(hashtext('delivery_note_number'), hashtext(?))", prefix,
	).Error; err != nil {
		return "", err
	}
	var maxSuffix int64
	err := tx.Raw(
		`SELECT COALESCE(MAX(CAST(SUBSTRING(delivery_note_number FROM '[0-9]+$') AS INTEGER)), 0)
		 FROM delivery_notes WHERE delivery_note_number LIKE ?`, prefix+"%",
	).Scan(&maxSuffix).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, maxSuffix+1), nil
}

func (r *deliveryNoteRepo) DB() *gorm.DB { return r.db }
