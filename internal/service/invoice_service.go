package service

import (
	"context"
	"errors"
	"time"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"
	"github.com/abdoul9859/techplus/internal/repository"
	"github.com/abdoul9859/techplus/internal/worker"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const invoicePrefix = "FAC-"

type InvoiceService interface {
	Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	Get(ctx context.Context, id uint) (*dto.InvoiceResponse, error)
	List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	Delete(ctx context.Context, id uint) error
	SetStatus(ctx context.Context, id uint, status string) (*dto.InvoiceResponse, error)
	AddPayment(ctx context.Context, id uint, req dto.AddPaymentRequest) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	repo       repository.InvoiceRepository
	products   repository.ProductRepository
	clients    repository.ClientRepository
	notes      repository.DeliveryNoteRepository
	stock      StockService
	dispatcher *worker.Dispatcher
	defaultTax decimal.Decimal
	now        func() time.Time
}

func NewInvoiceService(
	repo repository.InvoiceRepository,
	products repository.ProductRepository,
	clients repository.ClientRepository,
	notes repository.DeliveryNoteRepository,
	stock StockService,
	dispatcher *worker.Dispatcher,
	defaultTax decimal.Decimal,
) InvoiceService {
	return &invoiceService{
		repo:       repo,
		products:   products,
		clients:    clients,
		notes:      notes,
		stock:      stock,
		dispatcher: dispatcher,
		defaultTax: defaultTax,
		now:        time.Now,
	}
}

// ── Line resolution ──────────────────────────────────────────────────────────
// An order line is either a product line (product_id set) or a custom line.
// Product lines sharing the same product and unit price are merged; a line
// with bound variants has its quantity overridden to the number of bindings.

type resolvedLine struct {
	productID  *uint
	product    *model.Product
	name       string
	quantity   int
	unitPrice  decimal.Decimal
	variantIDs []uint
}

func (s *invoiceService) resolveLines(ctx context.Context, inputs []dto.InvoiceItemInput) ([]resolvedLine, error) {
	var lines []resolvedLine

	for _, in := range inputs {
		qty := in.Quantity
		if len(in.VariantIDs) > 0 {
			qty = len(in.VariantIDs)
		}
		if qty <= 0 {
			return nil, apierror.Business(apierror.CodeInsufficientStock, "line quantity must be positive")
		}

		if in.ProductID == nil {
			lines = append(lines, resolvedLine{
				name:      in.ProductName,
				quantity:  qty,
				unitPrice: in.UnitPrice,
			})
			continue
		}

		// Merge into any earlier line carrying this product at this price,
		// regardless of how the lines are interleaved in the request.
		var target *resolvedLine
		for i := range lines {
			if lines[i].productID != nil && *lines[i].productID == *in.ProductID &&
				lines[i].unitPrice.Equal(in.UnitPrice) {
				target = &lines[i]
				break
			}
		}
		if target != nil {
			target.quantity += qty
			target.variantIDs = append(target.variantIDs, in.VariantIDs...)
			continue
		}

		p, err := s.products.FindByID(ctx, *in.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("product not found")
			}
			return nil, err
		}

		name := in.ProductName
		if name == "" {
			name = p.Name
		}
		lines = append(lines, resolvedLine{
			productID:  in.ProductID,
			product:    p,
			name:       name,
			quantity:   qty,
			unitPrice:  in.UnitPrice,
			variantIDs: append([]uint(nil), in.VariantIDs...),
		})
	}

	// Validate variant bindings before touching stock: each bound unit must
	// belong to the line's product and not be sold twice within the request.
	seen := map[uint]bool{}
	for i := range lines {
		if len(lines[i].variantIDs) == 0 {
			continue
		}
		lines[i].quantity = len(lines[i].variantIDs)
		for _, vid := range lines[i].variantIDs {
			if seen[vid] {
				return nil, apierror.Business(apierror.CodeVariantUnavailable, "the same unit is bound twice")
			}
			seen[vid] = true
			var found bool
			for j := range lines[i].product.Variants {
				if lines[i].product.Variants[j].VariantID == vid {
					found = true
					break
				}
			}
			if !found {
				return nil, apierror.Business(apierror.CodeVariantUnavailable, "unit does not belong to the product on this line")
			}
		}
	}
	return lines, nil
}

// ── Create ───────────────────────────────────────────────────────────────────
// Number allocation, item creation, variant reservation, counter decrements
// and stock movements all run in one transaction; any failed reservation
// rolls the whole invoice back.

func (s *invoiceService) Create(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if _, err := s.clients.FindByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("client not found")
		}
		return nil, err
	}

	lines, err := s.resolveLines(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	inv := model.Invoice{
		ClientID:      req.ClientID,
		QuotationID:   req.QuotationID,
		Date:          parseDateOr(req.Date, s.now()),
		Status:        model.InvoiceDraft,
		TaxRate:       s.defaultTax,
		ShowTax:       true,
		PriceDisplay:  "TTC",
		PaymentMethod: req.PaymentMethod,
		HasWarranty:   req.HasWarranty,
		Notes:         req.Notes,
	}
	if req.DueDate != nil {
		d := parseDateOr(req.DueDate, time.Time{})
		inv.DueDate = &d
	}
	if req.TaxRate != nil {
		inv.TaxRate = *req.TaxRate
	}
	if req.ShowTax != nil {
		inv.ShowTax = *req.ShowTax
	}
	if req.PriceDisplay != nil {
		inv.PriceDisplay = *req.PriceDisplay
	}
	if req.HasWarranty && req.WarrantyDuration != nil {
		inv.WarrantyDuration = req.WarrantyDuration
		start := inv.Date
		end := start.AddDate(0, 0, *req.WarrantyDuration*30)
		inv.WarrantyStartDate = &start
		inv.WarrantyEndDate = &end
	}

	inv.Items = buildInvoiceItems(lines)
	recomputeInvoiceTotals(&inv)

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		number, err := s.repo.NextNumber(tx, invoicePrefix)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number
		if err := s.repo.CreateTx(tx, &inv); err != nil {
			return err
		}
		return s.applyStockEffects(tx, &inv, lines, model.RefInvoice)
	})
	if err != nil {
		return nil, err
	}
	return s.invoiceToResponse(&inv), nil
}

// applyStockEffects reserves bound variants and decrements plain counters for
// every product line, recording one movement per line.
func (s *invoiceService) applyStockEffects(tx *gorm.DB, inv *model.Invoice, lines []resolvedLine, refType string) error {
	for _, line := range lines {
		if line.productID == nil {
			continue
		}
		if len(line.variantIDs) > 0 {
			for _, vid := range line.variantIDs {
				if err := s.stock.ReserveVariantTx(tx, vid); err != nil {
					return err
				}
			}
			if err := s.stock.SyncMirrorTx(tx, *line.productID); err != nil {
				return err
			}
		} else {
			if err := s.stock.ConsumePlainTx(tx, line.product, line.quantity); err != nil {
				return err
			}
		}
		price := line.unitPrice
		if err := s.stock.RecordMovementTx(tx, &model.StockMovement{
			ProductID:     *line.productID,
			Quantity:      line.quantity,
			MovementType:  model.MovementOut,
			ReferenceType: refType,
			ReferenceID:   &inv.InvoiceID,
			UnitPrice:     &price,
		}); err != nil {
			return err
		}
	}
	return nil
}

// revertStockEffects releases every bound variant and restores plain
// counters, mirroring applyStockEffects.
func (s *invoiceService) revertStockEffects(tx *gorm.DB, inv *model.Invoice, refType string) error {
	for _, item := range inv.Items {
		if item.ProductID == nil {
			continue
		}
		if len(item.Variants) > 0 {
			for _, v := range item.Variants {
				if err := s.stock.ReleaseVariantTx(tx, *item.ProductID, v.VariantID); err != nil {
					return err
				}
			}
		} else {
			if err := s.stock.RestorePlainTx(tx, *item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := s.stock.RecordMovementTx(tx, &model.StockMovement{
			ProductID:     *item.ProductID,
			Quantity:      item.Quantity,
			MovementType:  model.MovementIn,
			ReferenceType: refType,
			ReferenceID:   &inv.InvoiceID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ── Read ─────────────────────────────────────────────────────────────────────

func (s *invoiceService) Get(ctx context.Context, id uint) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("invoice not found")
		}
		return nil, err
	}
	return s.invoiceToResponse(inv), nil
}

func (s *invoiceService) List(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	invoices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.InvoiceListResponse{
		Data:       make([]dto.InvoiceResponse, 0, len(invoices)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range invoices {
		resp.Data = append(resp.Data, *s.invoiceToResponse(&invoices[i]))
	}
	return resp, nil
}

// ── Update ───────────────────────────────────────────────────────────────────
// When the line set changes, previous stock effects are reverted and the new
// ones applied inside the same transaction, so availability is never double
// counted between the two versions of the document.

func (s *invoiceService) Update(ctx context.Context, id uint, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("invoice not found")
		}
		return nil, err
	}
	if inv.Status == model.InvoiceCancelled {
		return nil, apierror.Business(apierror.CodeInvalidTransition, "a cancelled invoice cannot be edited")
	}

	if req.ClientID != nil {
		if _, err := s.clients.FindByID(ctx, *req.ClientID); err != nil {
			return nil, apierror.NotFound("client not found")
		}
		inv.ClientID = *req.ClientID
	}
	if req.Date != nil {
		inv.Date = parseDateOr(req.Date, inv.Date)
	}
	if req.DueDate != nil {
		d := parseDateOr(req.DueDate, time.Time{})
		inv.DueDate = &d
	}
	if req.TaxRate != nil {
		inv.TaxRate = *req.TaxRate
	}
	if req.ShowTax != nil {
		inv.ShowTax = *req.ShowTax
	}
	if req.PriceDisplay != nil {
		inv.PriceDisplay = *req.PriceDisplay
	}
	if req.PaymentMethod != nil {
		inv.PaymentMethod = req.PaymentMethod
	}
	if req.HasWarranty != nil {
		inv.HasWarranty = *req.HasWarranty
	}
	if req.WarrantyDuration != nil {
		inv.WarrantyDuration = req.WarrantyDuration
	}
	if inv.HasWarranty && inv.WarrantyDuration != nil {
		start := inv.Date
		end := start.AddDate(0, 0, *inv.WarrantyDuration*30)
		inv.WarrantyStartDate = &start
		inv.WarrantyEndDate = &end
	} else {
		inv.WarrantyStartDate = nil
		inv.WarrantyEndDate = nil
	}

	var lines []resolvedLine
	replaceItems := req.Items != nil
	if replaceItems {
		lines, err = s.resolveLines(ctx, req.Items)
		if err != nil {
			return nil, err
		}
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if replaceItems {
			if err := s.revertStockEffects(tx, inv, model.RefInvUpdateRevert); err != nil {
				return err
			}
			items := buildInvoiceItems(lines)
			if err := s.repo.ReplaceItemsTx(tx, inv.InvoiceID, items); err != nil {
				return err
			}
			inv.Items = items
			recomputeInvoiceTotals(inv)
			if inv.PaidAmount.GreaterThan(inv.Total) {
				return apierror.Business(apierror.CodeOverPayment, "recorded payments exceed the new invoice total")
			}
			if err := s.applyStockEffects(tx, inv, lines, model.RefInvoiceUpdate); err != nil {
				return err
			}
		} else {
			recomputeInvoiceTotals(inv)
		}
		if tx == nil {
			return s.repo.UpdateTx(tx, inv)
		}
		return tx.Omit("Items", "Payments").Save(inv).Error
	})
	if err != nil {
		return nil, err
	}

	fresh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return s.invoiceToResponse(inv), nil
	}
	return s.invoiceToResponse(fresh), nil
}

// ── Delete ───────────────────────────────────────────────────────────────────

func (s *invoiceService) Delete(ctx context.Context, id uint) error {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("invoice not found")
		}
		return err
	}

	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		// Cancelled invoices already gave their stock back.
		if inv.Status != model.InvoiceCancelled {
			if err := s.revertStockEffects(tx, inv, model.RefInvoiceCancel); err != nil {
				return err
			}
		}
		if err := s.notes.DeleteByInvoiceTx(tx, inv.InvoiceID); err != nil {
			return err
		}
		return s.repo.DeleteTx(tx, inv.InvoiceID)
	})
}

// ── Status ───────────────────────────────────────────────────────────────────
// Persisted axis only: draft → sent → cancelled. Cancelling returns stock.

func (s *invoiceService) SetStatus(ctx context.Context, id uint, status string) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("invoice not found")
		}
		return nil, err
	}

	switch {
	case inv.Status == status:
		// no-op
	case inv.Status == model.InvoiceDraft && status == model.InvoiceSent:
	case status == model.InvoiceCancelled && inv.Status != model.InvoiceCancelled:
	default:
		return nil, apierror.Business(apierror.CodeInvalidTransition,
			"cannot move invoice from "+inv.Status+" to "+status)
	}

	previous := inv.Status
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if status == model.InvoiceCancelled && inv.Status != model.InvoiceCancelled {
			if err := s.revertStockEffects(tx, inv, model.RefInvoiceCancel); err != nil {
				return err
			}
		}
		inv.Status = status
		return s.repo.UpdateTx(txOr(tx, s.repo.DB()), inv)
	})
	if err != nil {
		return nil, err
	}
	if previous == model.InvoiceDraft && status == model.InvoiceSent && s.dispatcher != nil {
		_ = s.dispatcher.EnqueueDocumentEmail(ctx, worker.DocumentEmailPayload{
			DocumentType: "invoice",
			DocumentID:   inv.InvoiceID,
		})
	}
	return s.invoiceToResponse(inv), nil
}

// ── Payments ─────────────────────────────────────────────────────────────────
// The invoice row is locked for the duration of the transaction so two
// concurrent payments cannot both pass the remaining check.

func (s *invoiceService) AddPayment(ctx context.Context, id uint, req dto.AddPaymentRequest) (*dto.InvoiceResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, apierror.Business(apierror.CodeOverPayment, "payment amount must be positive")
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("invoice not found")
			}
			return err
		}
		if locked.Status == model.InvoiceCancelled {
			return apierror.Business(apierror.CodeInvalidTransition, "a cancelled invoice cannot receive payments")
		}
		if req.Amount.GreaterThan(locked.Remaining()) {
			return apierror.Business(apierror.CodeOverPayment, "payment exceeds the remaining amount")
		}

		method := req.PaymentMethod
		payment := model.InvoicePayment{
			InvoiceID:     locked.InvoiceID,
			Amount:        req.Amount,
			PaymentDate:   parseDateOr(req.PaymentDate, s.now()),
			PaymentMethod: &method,
			Reference:     req.Reference,
			Notes:         req.Notes,
		}
		if err := s.repo.CreatePaymentTx(tx, &payment); err != nil {
			return err
		}
		locked.PaidAmount = locked.PaidAmount.Add(req.Amount)
		return s.repo.UpdateTx(tx, locked)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func txOr(tx, db *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

func buildInvoiceItems(lines []resolvedLine) []model.InvoiceItem {
	items := make([]model.InvoiceItem, 0, len(lines))
	for _, line := range lines {
		item := model.InvoiceItem{
			ProductID:   line.productID,
			ProductName: line.name,
			Quantity:    line.quantity,
			Price:       line.unitPrice,
			Total:       line.unitPrice.Mul(decimal.NewFromInt(int64(line.quantity))),
		}
		for _, vid := range line.variantIDs {
			serial := ""
			for j := range line.product.Variants {
				if line.product.Variants[j].VariantID == vid {
					serial = line.product.Variants[j].IMEISerial
					break
				}
			}
			item.Variants = append(item.Variants, model.InvoiceItemVariant{
				VariantID:  vid,
				IMEISerial: serial,
			})
		}
		items = append(items, item)
	}
	return items
}

func recomputeInvoiceTotals(inv *model.Invoice) {
	subtotal := decimal.Zero
	for _, item := range inv.Items {
		subtotal = subtotal.Add(item.Total)
	}
	inv.Subtotal = subtotal
	inv.TaxAmount = subtotal.Mul(inv.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	inv.Total = subtotal.Add(inv.TaxAmount)
}

func (s *invoiceService) invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		InvoiceID:        inv.InvoiceID,
		InvoiceNumber:    inv.InvoiceNumber,
		ClientID:         inv.ClientID,
		QuotationID:      inv.QuotationID,
		Date:             inv.Date.Format("2006-01-02"),
		Status:           inv.DisplayStatus(s.now()),
		Subtotal:         inv.Subtotal,
		TaxRate:          inv.TaxRate,
		TaxAmount:        inv.TaxAmount,
		Total:            inv.Total,
		PaidAmount:       inv.PaidAmount,
		RemainingAmount:  inv.Remaining(),
		ShowTax:          inv.ShowTax,
		PriceDisplay:     inv.PriceDisplay,
		PaymentMethod:    inv.PaymentMethod,
		HasWarranty:      inv.HasWarranty,
		WarrantyDuration: inv.WarrantyDuration,
		Notes:            inv.Notes,
		Items:            make([]dto.InvoiceItemResponse, 0, len(inv.Items)),
		Payments:         make([]dto.PaymentResponse, 0, len(inv.Payments)),
	}
	if inv.DueDate != nil {
		d := inv.DueDate.Format("2006-01-02")
		resp.DueDate = &d
	}
	if inv.WarrantyEndDate != nil {
		d := inv.WarrantyEndDate.Format("2006-01-02")
		resp.WarrantyEndDate = &d
	}
	if inv.Client != nil {
		resp.ClientName = inv.Client.Name
	}
	for _, item := range inv.Items {
		ir := dto.InvoiceItemResponse{
			ItemID:      item.ItemID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
			Total:       item.Total,
			Variants:    make([]dto.InvoiceItemVariantResponse, 0, len(item.Variants)),
		}
		for _, v := range item.Variants {
			ir.Variants = append(ir.Variants, dto.InvoiceItemVariantResponse{
				VariantID:  v.VariantID,
				IMEISerial: v.IMEISerial,
			})
		}
		resp.Items = append(resp.Items, ir)
	}
	for _, p := range inv.Payments {
		pr := dto.PaymentResponse{
			PaymentID:   p.PaymentID,
			InvoiceID:   p.InvoiceID,
			Amount:      p.Amount,
			PaymentDate: p.PaymentDate.Format("2006-01-02"),
			Reference:   p.Reference,
			Notes:       p.Notes,
		}
		if p.PaymentMethod != nil {
			pr.PaymentMethod = *p.PaymentMethod
		}
		resp.Payments = append(resp.Payments, pr)
	}
	return resp
}
