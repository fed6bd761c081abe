package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"
	"github.com/abdoul9859/techplus/internal/repository"

	"gorm.io/gorm"
)

type ProductService interface {
	Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uint) (*dto.ProductResponse, error)
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uint) error
	Scan(ctx context.Context, code string) (*dto.ScanResponse, error)
	ListMovements(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error)
}

type productService struct {
	repo      repository.ProductRepository
	movements repository.StockMovementRepository
	stock     StockService
}

func NewProductService(repo repository.ProductRepository, movements repository.StockMovementRepository, stock StockService) ProductService {
	return &productService{repo: repo, movements: movements, stock: stock}
}

// ── Create ───────────────────────────────────────────────────────────────────

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Barcode != nil && *req.Barcode != "" {
		taken, err := s.repo.BarcodeInUse(ctx, *req.Barcode, 0, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apierror.Business(apierror.CodeDuplicateBarcode, "barcode already in use")
		}
	}

	p := model.Product{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		Brand:           req.Brand,
		Model:           req.Model,
		Barcode:         normalizeCode(req.Barcode),
		Price:           req.Price,
		Quantity:        req.Quantity,
		Condition:       req.Condition,
		HasUniqueSerial: req.HasUniqueSerial,
		Notes:           req.Notes,
	}
	if req.PurchasePrice != nil {
		p.PurchasePrice = *req.PurchasePrice
	}

	for _, v := range req.Variants {
		p.Variants = append(p.Variants, buildVariant(v))
	}
	// Variant-tracked products mirror the unsold unit count and carry their
	// barcodes on the variants, never on the product row.
	if len(p.Variants) > 0 {
		p.Quantity = len(p.Variants)
		p.Barcode = nil
	}

	if err := s.validateVariantCodes(ctx, &p, req.Variants, nil); err != nil {
		return nil, err
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			return s.repo.Create(ctx, &p)
		}
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
		return s.stock.RecordMovementTx(tx, &model.StockMovement{
			ProductID:     p.ProductID,
			Quantity:      p.Quantity,
			MovementType:  model.MovementIn,
			ReferenceType: model.RefCreation,
			UnitPrice:     &p.Price,
		})
	})
	if err != nil {
		return nil, err
	}
	return productToResponse(&p), nil
}

// ── Get / List ───────────────────────────────────────────────────────────────

func (s *productService) Get(ctx context.Context, id uint) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product not found")
		}
		return nil, err
	}
	return productToResponse(p), nil
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{
		Data:       make([]dto.ProductResponse, 0, len(products)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range products {
		resp.Data = append(resp.Data, *productToResponse(&products[i]))
	}
	return resp, nil
}

// ── Update ───────────────────────────────────────────────────────────────────
// Scalar fields, the variant batch (creates + in-place updates) and the
// deleted_variants list are applied in a single transaction. A sold variant
// can never be deleted.

func (s *productService) Update(ctx context.Context, id uint, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product not found")
		}
		return nil, err
	}

	if req.Barcode != nil && *req.Barcode != "" {
		taken, err := s.repo.BarcodeInUse(ctx, *req.Barcode, id, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, apierror.Business(apierror.CodeDuplicateBarcode, "barcode already in use")
		}
	}

	applyProductPatch(p, req)

	existing := make(map[uint]*model.ProductVariant, len(p.Variants))
	for i := range p.Variants {
		existing[p.Variants[i].VariantID] = &p.Variants[i]
	}
	for _, vid := range req.DeletedVariants {
		v, ok := existing[vid]
		if !ok {
			return nil, apierror.NotFound("variant not found on this product")
		}
		if v.IsSold {
			return nil, apierror.Business(apierror.CodeVariantUnavailable, "a sold unit cannot be deleted")
		}
	}
	if err := s.validateVariantCodes(ctx, p, req.Variants, existing); err != nil {
		return nil, err
	}

	// The barcode rule holds on update too: while the product keeps serialized
	// units, its own barcode column stays NULL (codes live on the variants).
	if variantCountAfter(p, req) > 0 {
		p.Barcode = nil
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			if err := s.repo.Update(ctx, p); err != nil {
				return err
			}
		} else if err := tx.Omit("Variants").Save(p).Error; err != nil {
			return err
		}
		for _, in := range req.Variants {
			if in.VariantID != nil {
				v, ok := existing[*in.VariantID]
				if !ok {
					return apierror.NotFound("variant not found on this product")
				}
				v.IMEISerial = strings.TrimSpace(in.IMEISerial)
				v.Barcode = normalizeCode(in.Barcode)
				v.Condition = in.Condition
				v.Attributes = buildVariantAttributes(in.Attributes)
				if err := s.repo.UpdateVariantTx(tx, v); err != nil {
					return err
				}
				continue
			}
			nv := buildVariant(in)
			nv.ProductID = p.ProductID
			if err := s.repo.CreateVariantTx(tx, &nv); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteVariantsTx(tx, p.ProductID, req.DeletedVariants); err != nil {
			return err
		}
		if len(p.Variants) > 0 || len(req.Variants) > 0 {
			return s.stock.SyncMirrorTx(tx, p.ProductID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fresh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productToResponse(fresh), nil
}

// ── Delete ───────────────────────────────────────────────────────────────────

func (s *productService) Delete(ctx context.Context, id uint) error {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("product not found")
		}
		return err
	}

	sold, err := s.repo.CountSoldVariants(ctx, id)
	if err != nil {
		return err
	}
	if sold > 0 {
		return apierror.Business(apierror.CodeVariantUnavailable, "product has sold units and cannot be deleted")
	}
	refs, err := s.repo.CountInvoiceRefs(ctx, id)
	if err != nil {
		return err
	}
	if refs > 0 {
		return apierror.Business(apierror.CodeInvalidTransition, "product is referenced by invoices and cannot be deleted")
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			return s.repo.Delete(ctx, id)
		}
		if err := s.stock.RecordMovementTx(tx, &model.StockMovement{
			ProductID:     p.ProductID,
			Quantity:      p.Quantity,
			MovementType:  model.MovementOut,
			ReferenceType: model.RefDeletion,
		}); err != nil {
			return err
		}
		return tx.Delete(&model.Product{}, id).Error
	})
}

// ── Scan ─────────────────────────────────────────────────────────────────────
// Resolution order: product barcode, variant barcode, variant serial, then a
// partial serial match as a last resort. Input is trimmed because handheld
// scanners often append whitespace or control characters.

func (s *productService) Scan(ctx context.Context, code string) (*dto.ScanResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, apierror.NotFound("no product or unit matches this code")
	}

	if p, err := s.repo.FindByBarcode(ctx, code); err == nil {
		return &dto.ScanResponse{MatchType: "product", Product: productToResponse(p)}, nil
	}
	if v, err := s.repo.FindVariantByBarcode(ctx, code); err == nil {
		return &dto.ScanResponse{MatchType: "variant", Variant: variantToResponse(v)}, nil
	}
	if v, err := s.repo.FindVariantBySerial(ctx, code); err == nil {
		return &dto.ScanResponse{MatchType: "variant", Variant: variantToResponse(v)}, nil
	}
	if matches, err := s.repo.SearchVariantsBySerial(ctx, code, 2); err == nil && len(matches) == 1 {
		return &dto.ScanResponse{MatchType: "variant_partial", Variant: variantToResponse(&matches[0])}, nil
	}
	return nil, apierror.NotFound("no product or unit matches this code")
}

// ── Movements ────────────────────────────────────────────────────────────────

func (s *productService) ListMovements(ctx context.Context, filter repository.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	movements, total, err := s.movements.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.StockMovementListResponse{
		Data:       make([]dto.StockMovementResponse, 0, len(movements)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range movements {
		m := &movements[i]
		item := dto.StockMovementResponse{
			MovementID:    m.MovementID,
			ProductID:     m.ProductID,
			Quantity:      m.Quantity,
			MovementType:  m.MovementType,
			ReferenceType: m.ReferenceType,
			ReferenceID:   m.ReferenceID,
			UnitPrice:     m.UnitPrice,
			Notes:         m.Notes,
			CreatedAt:     m.CreatedAt.Format(time.RFC3339),
		}
		if m.Product != nil {
			item.ProductName = m.Product.Name
		}
		resp.Data = append(resp.Data, item)
	}
	return resp, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *productService) validateVariantCodes(ctx context.Context, p *model.Product, inputs []dto.VariantInput, existing map[uint]*model.ProductVariant) error {
	seenSerials := map[string]bool{}
	seenBarcodes := map[string]bool{}
	for _, in := range inputs {
		serial := strings.TrimSpace(in.IMEISerial)
		if serial == "" {
			return apierror.Business(apierror.CodeDuplicateSerial, "serial number is required for each unit")
		}
		if seenSerials[serial] {
			return apierror.Business(apierror.CodeDuplicateSerial, "duplicate serial in request: "+serial)
		}
		seenSerials[serial] = true

		var excludeID uint
		if in.VariantID != nil {
			excludeID = *in.VariantID
		}
		taken, err := s.repo.SerialInUse(ctx, serial, excludeID)
		if err != nil {
			return err
		}
		if taken {
			// Serials already attached to this product pass through existing.
			if !serialBelongsTo(p, serial, in.VariantID) {
				return apierror.Business(apierror.CodeDuplicateSerial, "serial already registered: "+serial)
			}
		}

		if in.Barcode != nil && *in.Barcode != "" {
			if seenBarcodes[*in.Barcode] {
				return apierror.Business(apierror.CodeDuplicateBarcode, "duplicate barcode in request: "+*in.Barcode)
			}
			seenBarcodes[*in.Barcode] = true
			inUse, err := s.repo.BarcodeInUse(ctx, *in.Barcode, 0, excludeID)
			if err != nil {
				return err
			}
			if inUse {
				return apierror.Business(apierror.CodeDuplicateBarcode, "barcode already in use: "+*in.Barcode)
			}
		}
	}
	return nil
}

func serialBelongsTo(p *model.Product, serial string, variantID *uint) bool {
	if variantID == nil {
		return false
	}
	for i := range p.Variants {
		if p.Variants[i].VariantID == *variantID && p.Variants[i].IMEISerial == serial {
			return true
		}
	}
	return false
}

func buildVariant(in dto.VariantInput) model.ProductVariant {
	return model.ProductVariant{
		IMEISerial: strings.TrimSpace(in.IMEISerial),
		Barcode:    normalizeCode(in.Barcode),
		Condition:  in.Condition,
		Attributes: buildVariantAttributes(in.Attributes),
	}
}

func buildVariantAttributes(inputs []dto.VariantAttributeInput) []model.ProductVariantAttribute {
	attrs := make([]model.ProductVariantAttribute, 0, len(inputs))
	for _, a := range inputs {
		attrs = append(attrs, model.ProductVariantAttribute{
			AttributeName:  a.AttributeName,
			AttributeValue: a.AttributeValue,
		})
	}
	return attrs
}

// variantCountAfter is the number of variants the product will own once the
// patch is applied: survivors plus freshly created units.
func variantCountAfter(p *model.Product, req dto.UpdateProductRequest) int {
	n := len(p.Variants) - len(req.DeletedVariants)
	for _, in := range req.Variants {
		if in.VariantID == nil {
			n++
		}
	}
	return n
}

func normalizeCode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func applyProductPatch(p *model.Product, req dto.UpdateProductRequest) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Brand != nil {
		p.Brand = req.Brand
	}
	if req.Model != nil {
		p.Model = req.Model
	}
	if req.Barcode != nil {
		p.Barcode = normalizeCode(req.Barcode)
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.PurchasePrice != nil {
		p.PurchasePrice = *req.PurchasePrice
	}
	if req.Quantity != nil && len(p.Variants) == 0 {
		p.Quantity = *req.Quantity
	}
	if req.Condition != nil {
		p.Condition = req.Condition
	}
	if req.HasUniqueSerial != nil {
		p.HasUniqueSerial = *req.HasUniqueSerial
	}
	if req.Notes != nil {
		p.Notes = req.Notes
	}
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ProductID:       p.ProductID,
		Name:            p.Name,
		Description:     p.Description,
		Category:        p.Category,
		Brand:           p.Brand,
		Model:           p.Model,
		Barcode:         p.Barcode,
		Price:           p.Price,
		PurchasePrice:   p.PurchasePrice,
		Quantity:        p.Quantity,
		Condition:       p.Condition,
		HasUniqueSerial: p.HasUniqueSerial,
		Notes:           p.Notes,
		CreatedAt:       p.CreatedAt.Format(time.RFC3339),
		Variants:        make([]dto.VariantResponse, 0, len(p.Variants)),
	}
	for i := range p.Variants {
		resp.Variants = append(resp.Variants, *variantToResponse(&p.Variants[i]))
	}
	return resp
}

func variantToResponse(v *model.ProductVariant) *dto.VariantResponse {
	resp := &dto.VariantResponse{
		VariantID:  v.VariantID,
		ProductID:  v.ProductID,
		IMEISerial: v.IMEISerial,
		Barcode:    v.Barcode,
		Condition:  v.Condition,
		IsSold:     v.IsSold,
		Attributes: make([]dto.VariantAttributeInput, 0, len(v.Attributes)),
	}
	for _, a := range v.Attributes {
		resp.Attributes = append(resp.Attributes, dto.VariantAttributeInput{
			AttributeName:  a.AttributeName,
			AttributeValue: a.AttributeValue,
		})
	}
	return resp
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
