package infra

import (
	"fmt"

	"github.com/abdoul9859/techplus/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that GORM
// cannot express (partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies the full schema. Also used by integration tests
// against throwaway containers.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.Supplier{},
		&model.Category{},
		&model.CategoryAttribute{},
		&model.CategoryAttributeValue{},
		&model.Product{},
		&model.ProductVariant{},
		&model.ProductVariantAttribute{},
		&model.StockMovement{},
		&model.Quotation{},
		&model.QuotationItem{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.InvoiceItemVariant{},
		&model.InvoicePayment{},
		&model.DeliveryNote{},
		&model.DeliveryNoteItem{},
		&model.SupplierDebt{},
		&model.SupplierDebtPayment{},
		&model.ImportJob{},
		&model.ImportLog{},
		&model.UserSetting{},
		&model.ScanHistory{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement is guarded so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// Partial index backing the atomic variant sale:
		// UPDATE ... WHERE variant_id = ? AND is_sold = false
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_variants_unsold') THEN
		    CREATE INDEX idx_variants_unsold
		        ON product_variants (product_id)
		        WHERE is_sold = false;
		  END IF;
		END $$`,
		// Open-invoice scans (receivables overview, overdue detection)
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_invoices_open') THEN
		    CREATE INDEX idx_invoices_open
		        ON invoices (client_id)
		        WHERE status <> 'cancelled' AND paid_amount < total;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
