package service

import (
	"context"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/model"
	"github.com/abdoul9859/techplus/internal/repository"

	"gorm.io/gorm"
)

// StockService owns unit availability. For variant-tracked products the
// source of truth is the set of unsold variants; the quantity column is a
// cached mirror kept in sync inside the same transaction that changes
// variant state. Plain products use the counter directly.
type StockService interface {
	Available(ctx context.Context, product *model.Product) (int, error)

	// ReserveVariantTx atomically flips one unit to sold. Returns
	// VARIANT_UNAVAILABLE when the unit was already sold, so two concurrent
	// invoices can never bind the same serial.
	ReserveVariantTx(tx *gorm.DB, variantID uint) error
	// ReleaseVariantTx returns a previously sold unit to stock.
	ReleaseVariantTx(tx *gorm.DB, productID, variantID uint) error

	// ConsumePlainTx decrements the plain counter, refusing to go negative.
	ConsumePlainTx(tx *gorm.DB, product *model.Product, qty int) error
	// RestorePlainTx gives units back after a cancellation or revert.
	RestorePlainTx(tx *gorm.DB, productID uint, qty int) error

	// SyncMirrorTx recomputes the cached quantity of a variant-tracked
	// product from its unsold variant count.
	SyncMirrorTx(tx *gorm.DB, productID uint) error

	RecordMovementTx(tx *gorm.DB, m *model.StockMovement) error
}

type stockService struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewStockService(products repository.ProductRepository, movements repository.StockMovementRepository) StockService {
	return &stockService{products: products, movements: movements}
}

func (s *stockService) Available(ctx context.Context, product *model.Product) (int, error) {
	if len(product.Variants) > 0 {
		n, err := s.products.AvailableVariantCount(ctx, product.ProductID)
		return int(n), err
	}
	return product.Quantity, nil
}

func (s *stockService) ReserveVariantTx(tx *gorm.DB, variantID uint) error {
	affected, err := s.products.MarkSoldTx(tx, variantID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apierror.Business(apierror.CodeVariantUnavailable, "the unit is already sold or does not exist")
	}
	return nil
}

func (s *stockService) ReleaseVariantTx(tx *gorm.DB, productID, variantID uint) error {
	if err := s.products.MarkUnsoldTx(tx, variantID); err != nil {
		return err
	}
	return s.products.SyncQuantityTx(tx, productID)
}

func (s *stockService) ConsumePlainTx(tx *gorm.DB, product *model.Product, qty int) error {
	// Guarded at the row level: the in-memory snapshot may be stale by the
	// time the decrement runs, so the WHERE clause is the real check.
	affected, err := s.products.ConsumeQuantityTx(tx, product.ProductID, qty)
	if err != nil {
		return err
	}
	if affected == 0 {
		return apierror.Business(apierror.CodeInsufficientStock, "insufficient stock for "+product.Name)
	}
	return nil
}

func (s *stockService) RestorePlainTx(tx *gorm.DB, productID uint, qty int) error {
	return s.products.AdjustQuantityTx(tx, productID, qty)
}

func (s *stockService) SyncMirrorTx(tx *gorm.DB, productID uint) error {
	return s.products.SyncQuantityTx(tx, productID)
}

func (s *stockService) RecordMovementTx(tx *gorm.DB, m *model.StockMovement) error {
	return s.movements.CreateTx(tx, m)
}
