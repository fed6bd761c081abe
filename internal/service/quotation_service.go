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

const quotationPrefix = "DEV-"

type QuotationService interface {
	Create(ctx context.Context, req dto.CreateQuotationRequest) (*dto.QuotationResponse, error)
	Get(ctx context.Context, id uint) (*dto.QuotationResponse, error)
	List(ctx context.Context, filter dto.QuotationFilter) (*dto.QuotationListResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateQuotationRequest) (*dto.QuotationResponse, error)
	Delete(ctx context.Context, id uint) error
	SetStatus(ctx context.Context, id uint, status string) (*dto.QuotationResponse, error)
	SetSent(ctx context.Context, id uint, sent bool) (*dto.QuotationResponse, error)
	Convert(ctx context.Context, id uint) (*dto.InvoiceResponse, error)
}

type quotationService struct {
	repo       repository.QuotationRepository
	clients    repository.ClientRepository
	invoices   InvoiceService
	dispatcher *worker.Dispatcher
	defaultTax decimal.Decimal
}

func NewQuotationService(
	repo repository.QuotationRepository,
	clients repository.ClientRepository,
	invoices InvoiceService,
	dispatcher *worker.Dispatcher,
	defaultTax decimal.Decimal,
) QuotationService {
	return &quotationService{
		repo:       repo,
		clients:    clients,
		invoices:   invoices,
		dispatcher: dispatcher,
		defaultTax: defaultTax,
	}
}

// ── Create ───────────────────────────────────────────────────────────────────

func (s *quotationService) Create(ctx context.Context, req dto.CreateQuotationRequest) (*dto.QuotationResponse, error) {
	if _, err := s.clients.FindByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("client not found")
		}
		return nil, err
	}

	q := model.Quotation{
		ClientID: req.ClientID,
		Status:   model.QuotationDraft,
		Date:     parseDateOr(req.Date, time.Now()),
		TaxRate:  s.defaultTax,
		Notes:    req.Notes,
	}
	if req.ExpiryDate != nil {
		d := parseDateOr(req.ExpiryDate, time.Time{})
		q.ExpiryDate = &d
	}
	if req.TaxRate != nil {
		q.TaxRate = *req.TaxRate
	}

	q.Items = buildQuotationItems(req.Items)
	recomputeQuotationTotals(&q)

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			q.QuotationNumber = quotationPrefix + "0001"
			return s.repo.CreateTx(nil, &q)
		}
		number, err := s.repo.NextNumber(tx, quotationPrefix)
		if err != nil {
			return err
		}
		q.QuotationNumber = number
		return s.repo.CreateTx(tx, &q)
	})
	if err != nil {
		return nil, err
	}
	return quotationToResponse(&q), nil
}

// ── Read ─────────────────────────────────────────────────────────────────────

func (s *quotationService) Get(ctx context.Context, id uint) (*dto.QuotationResponse, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("quotation not found")
		}
		return nil, err
	}
	return quotationToResponse(q), nil
}

func (s *quotationService) List(ctx context.Context, filter dto.QuotationFilter) (*dto.QuotationListResponse, error) {
	quotations, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.QuotationListResponse{
		Data:       make([]dto.QuotationResponse, 0, len(quotations)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range quotations {
		resp.Data = append(resp.Data, *quotationToResponse(&quotations[i]))
	}
	return resp, nil
}

// ── Update ───────────────────────────────────────────────────────────────────
// Only draft and sent quotations can be edited; totals are always recomputed
// server-side from the line items.

func (s *quotationService) Update(ctx context.Context, id uint, req dto.UpdateQuotationRequest) (*dto.QuotationResponse, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("quotation not found")
		}
		return nil, err
	}
	if q.Status != model.QuotationDraft && q.Status != model.QuotationSent {
		return nil, apierror.Business(apierror.CodeInvalidTransition, "only draft or sent quotations can be edited")
	}

	if req.ClientID != nil {
		if _, err := s.clients.FindByID(ctx, *req.ClientID); err != nil {
			return nil, apierror.NotFound("client not found")
		}
		q.ClientID = *req.ClientID
	}
	if req.Date != nil {
		q.Date = parseDateOr(req.Date, q.Date)
	}
	if req.ExpiryDate != nil {
		d := parseDateOr(req.ExpiryDate, time.Time{})
		q.ExpiryDate = &d
	}
	if req.TaxRate != nil {
		q.TaxRate = *req.TaxRate
	}
	if req.Notes != nil {
		q.Notes = req.Notes
	}

	replaceItems := req.Items != nil
	var items []model.QuotationItem
	if replaceItems {
		items = buildQuotationItems(req.Items)
		q.Items = items
	}
	recomputeQuotationTotals(q)

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			return s.repo.UpdateTx(nil, q)
		}
		if replaceItems {
			if err := s.repo.ReplaceItemsTx(tx, q.QuotationID, items); err != nil {
				return err
			}
		}
		return tx.Omit("Items").Save(q).Error
	})
	if err != nil {
		return nil, err
	}

	fresh, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return quotationToResponse(fresh), nil
}

// ── Delete ───────────────────────────────────────────────────────────────────

func (s *quotationService) Delete(ctx context.Context, id uint) error {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("quotation not found")
		}
		return err
	}
	if q.InvoiceID != nil {
		return apierror.Business(apierror.CodeInvalidTransition, "quotation was converted to an invoice and cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}

// ── Status ───────────────────────────────────────────────────────────────────

func (s *quotationService) SetStatus(ctx context.Context, id uint, status string) (*dto.QuotationResponse, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("quotation not found")
		}
		return nil, err
	}
	if !model.ValidQuotationTransition(q.Status, status) {
		return nil, apierror.Business(apierror.CodeInvalidTransition,
			"cannot move quotation from "+q.Status+" to "+status)
	}
	q.Status = status
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return quotationToResponse(q), nil
}

// SetSent marks the quotation as dispatched to the client and enqueues the
// PDF email. A draft quotation is floored to "sent" so the state machine and
// the sent flag never contradict each other.
func (s *quotationService) SetSent(ctx context.Context, id uint, sent bool) (*dto.QuotationResponse, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("quotation not found")
		}
		return nil, err
	}
	q.IsSent = sent
	if sent && q.Status == model.QuotationDraft {
		q.Status = model.QuotationSent
	}
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	if sent && s.dispatcher != nil {
		_ = s.dispatcher.EnqueueDocumentEmail(ctx, worker.DocumentEmailPayload{
			DocumentType: "quotation",
			DocumentID:   q.QuotationID,
		})
	}
	return quotationToResponse(q), nil
}

// ── Convert ──────────────────────────────────────────────────────────────────
// An accepted quotation becomes an invoice: client and lines carry over,
// variant bindings never do — serialized units are picked at invoicing time.

func (s *quotationService) Convert(ctx context.Context, id uint) (*dto.InvoiceResponse, error) {
	q, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("quotation not found")
		}
		return nil, err
	}
	if q.Status != model.QuotationAccepted {
		return nil, apierror.Business(apierror.CodeNotAccepted, "only accepted quotations can be converted")
	}
	if q.InvoiceID != nil {
		return nil, apierror.Business(apierror.CodeInvalidTransition, "quotation is already converted")
	}

	req := dto.CreateInvoiceRequest{
		ClientID:    q.ClientID,
		QuotationID: &q.QuotationID,
		TaxRate:     &q.TaxRate,
		Notes:       q.Notes,
	}
	for _, item := range q.Items {
		req.Items = append(req.Items, dto.InvoiceItemInput{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
		})
	}

	inv, err := s.invoices.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	q.InvoiceID = &inv.InvoiceID
	if err := s.repo.Update(ctx, q); err != nil {
		return nil, err
	}
	return inv, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func buildQuotationItems(inputs []dto.QuotationItemInput) []model.QuotationItem {
	items := make([]model.QuotationItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, model.QuotationItem{
			ProductID:   in.ProductID,
			ProductName: in.ProductName,
			Quantity:    in.Quantity,
			Price:       in.UnitPrice,
			Total:       in.UnitPrice.Mul(decimal.NewFromInt(int64(in.Quantity))),
		})
	}
	return items
}

func recomputeQuotationTotals(q *model.Quotation) {
	subtotal := decimal.Zero
	for _, item := range q.Items {
		subtotal = subtotal.Add(item.Total)
	}
	q.Subtotal = subtotal
	q.TaxAmount = subtotal.Mul(q.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	q.Total = subtotal.Add(q.TaxAmount)
}

func quotationToResponse(q *model.Quotation) *dto.QuotationResponse {
	resp := &dto.QuotationResponse{
		QuotationID:     q.QuotationID,
		QuotationNumber: q.QuotationNumber,
		ClientID:        q.ClientID,
		Date:            q.Date.Format("2006-01-02"),
		Status:          q.Status,
		IsSent:          q.IsSent,
		Subtotal:        q.Subtotal,
		TaxRate:         q.TaxRate,
		TaxAmount:       q.TaxAmount,
		Total:           q.Total,
		Notes:           q.Notes,
		InvoiceID:       q.InvoiceID,
		Items:           make([]dto.QuotationItemResponse, 0, len(q.Items)),
	}
	if q.ExpiryDate != nil {
		d := q.ExpiryDate.Format("2006-01-02")
		resp.ExpiryDate = &d
	}
	if q.Client != nil {
		resp.ClientName = q.Client.Name
	}
	for _, item := range q.Items {
		resp.Items = append(resp.Items, dto.QuotationItemResponse{
			ItemID:      item.ItemID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
			Total:       item.Total,
		})
	}
	return resp
}

func parseDateOr(s *string, fallback time.Time) time.Time {
	if s == nil || *s == "" {
		return fallback
	}
	d, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return fallback
	}
	return d
}
