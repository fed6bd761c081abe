package service

import (
	"context"
	"errors"
	"time"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"
	"github.com/abdoul9859/techplus/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DebtService manages supplier payables and exposes the combined debts view.
// Client receivables are never stored; they are derived from open invoices.
type DebtService interface {
	Create(ctx context.Context, req dto.CreateDebtRequest) (*dto.DebtResponse, error)
	Get(ctx context.Context, id uint) (*dto.DebtResponse, error)
	List(ctx context.Context, filter dto.DebtFilter) (*dto.DebtListResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateDebtRequest) (*dto.DebtResponse, error)
	Delete(ctx context.Context, id uint) error
	AddPayment(ctx context.Context, id uint, req dto.AddDebtPaymentRequest) (*dto.DebtResponse, error)
	Overview(ctx context.Context) (*dto.DebtOverviewResponse, error)
}

type debtService struct {
	repo      repository.DebtRepository
	suppliers repository.SupplierRepository
	invoices  repository.InvoiceRepository
	now       func() time.Time
}

func NewDebtService(
	repo repository.DebtRepository,
	suppliers repository.SupplierRepository,
	invoices repository.InvoiceRepository,
) DebtService {
	return &debtService{repo: repo, suppliers: suppliers, invoices: invoices, now: time.Now}
}

// ── CRUD ─────────────────────────────────────────────────────────────────────

func (s *debtService) Create(ctx context.Context, req dto.CreateDebtRequest) (*dto.DebtResponse, error) {
	if req.SupplierID != nil {
		if _, err := s.suppliers.FindByID(ctx, *req.SupplierID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierror.NotFound("supplier not found")
			}
			return nil, err
		}
	}
	if !req.Amount.IsPositive() {
		return nil, apierror.Business(apierror.CodeOverPayment, "debt amount must be positive")
	}

	d := model.SupplierDebt{
		SupplierID:  req.SupplierID,
		Reference:   req.Reference,
		Amount:      req.Amount,
		Date:        parseDateOr(req.Date, s.now()),
		Description: req.Description,
		Notes:       req.Notes,
	}
	if req.DueDate != nil {
		due := parseDateOr(req.DueDate, time.Time{})
		d.DueDate = &due
	}

	if err := s.repo.Create(ctx, &d); err != nil {
		return nil, err
	}
	return s.debtToResponse(&d), nil
}

func (s *debtService) Get(ctx context.Context, id uint) (*dto.DebtResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("debt not found")
		}
		return nil, err
	}
	return s.debtToResponse(d), nil
}

func (s *debtService) List(ctx context.Context, filter dto.DebtFilter) (*dto.DebtListResponse, error) {
	debts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.DebtListResponse{
		Data:       make([]dto.DebtResponse, 0, len(debts)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range debts {
		r := s.debtToResponse(&debts[i])
		// Status is derived, so the filter is applied after the fact.
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		resp.Data = append(resp.Data, *r)
	}
	return resp, nil
}

func (s *debtService) Update(ctx context.Context, id uint, req dto.UpdateDebtRequest) (*dto.DebtResponse, error) {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("debt not found")
		}
		return nil, err
	}

	if req.Reference != nil {
		d.Reference = *req.Reference
	}
	if req.Amount != nil {
		if req.Amount.LessThan(d.PaidAmount) {
			return nil, apierror.Business(apierror.CodeOverPayment, "amount cannot drop below what was already paid")
		}
		d.Amount = *req.Amount
	}
	if req.DueDate != nil {
		due := parseDateOr(req.DueDate, time.Time{})
		d.DueDate = &due
	}
	if req.Description != nil {
		d.Description = req.Description
	}
	if req.Notes != nil {
		d.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.debtToResponse(d), nil
}

func (s *debtService) Delete(ctx context.Context, id uint) error {
	d, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("debt not found")
		}
		return err
	}
	if d.PaidAmount.IsPositive() {
		return apierror.Business(apierror.CodeInvalidTransition, "a debt with recorded payments cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}

// ── Payments ─────────────────────────────────────────────────────────────────
// Same locking discipline as invoice payments: the debt row is locked so two
// concurrent payments cannot both pass the remaining check.

func (s *debtService) AddPayment(ctx context.Context, id uint, req dto.AddDebtPaymentRequest) (*dto.DebtResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, apierror.Business(apierror.CodeOverPayment, "payment amount must be positive")
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		locked, err := s.repo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("debt not found")
			}
			return err
		}
		if req.Amount.GreaterThan(locked.Remaining()) {
			return apierror.Business(apierror.CodeOverPayment, "payment exceeds the remaining amount")
		}

		method := req.PaymentMethod
		payment := model.SupplierDebtPayment{
			DebtID:        locked.DebtID,
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

// ── Overview ─────────────────────────────────────────────────────────────────

func (s *debtService) Overview(ctx context.Context) (*dto.DebtOverviewResponse, error) {
	resp := &dto.DebtOverviewResponse{
		TotalPayable:    decimal.Zero,
		TotalReceivable: decimal.Zero,
	}

	debts, _, err := s.repo.List(ctx, dto.DebtFilter{Page: 1, Limit: 1000})
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range debts {
		d := &debts[i]
		entry := dto.DebtOverviewEntry{
			EntityType:      "supplier",
			Reference:       d.Reference,
			Amount:          d.Amount,
			PaidAmount:      d.PaidAmount,
			RemainingAmount: d.Remaining(),
			Status:          d.DerivedStatus(now),
			DebtID:          &d.DebtID,
		}
		if d.SupplierID != nil {
			entry.EntityID = *d.SupplierID
		}
		if d.Supplier != nil {
			entry.EntityName = d.Supplier.Name
		}
		if d.DueDate != nil {
			due := d.DueDate.Format("2006-01-02")
			entry.DueDate = &due
		}
		resp.Data = append(resp.Data, entry)
		resp.TotalPayable = resp.TotalPayable.Add(d.Remaining())
	}

	invoices, err := s.invoices.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		inv := &invoices[i]
		entry := dto.DebtOverviewEntry{
			EntityType:      "client",
			EntityID:        inv.ClientID,
			Reference:       inv.InvoiceNumber,
			Amount:          inv.Total,
			PaidAmount:      inv.PaidAmount,
			RemainingAmount: inv.Remaining(),
			Status:          inv.DisplayStatus(now),
			InvoiceID:       &inv.InvoiceID,
		}
		if inv.Client != nil {
			entry.EntityName = inv.Client.Name
		}
		if inv.DueDate != nil {
			due := inv.DueDate.Format("2006-01-02")
			entry.DueDate = &due
		}
		resp.Data = append(resp.Data, entry)
		resp.TotalReceivable = resp.TotalReceivable.Add(inv.Remaining())
	}

	return resp, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *debtService) debtToResponse(d *model.SupplierDebt) *dto.DebtResponse {
	resp := &dto.DebtResponse{
		DebtID:          d.DebtID,
		SupplierID:      d.SupplierID,
		Reference:       d.Reference,
		Amount:          d.Amount,
		PaidAmount:      d.PaidAmount,
		RemainingAmount: d.Remaining(),
		Status:          d.DerivedStatus(s.now()),
		Date:            d.Date.Format("2006-01-02"),
		Description:     d.Description,
		Notes:           d.Notes,
		Payments:        make([]dto.DebtPaymentResponse, 0, len(d.Payments)),
	}
	if d.Supplier != nil {
		resp.SupplierName = d.Supplier.Name
	}
	if d.DueDate != nil {
		due := d.DueDate.Format("2006-01-02")
		resp.DueDate = &due
	}
	for _, p := range d.Payments {
		resp.Payments = append(resp.Payments, dto.DebtPaymentResponse{
			PaymentID:     p.PaymentID,
			DebtID:        p.DebtID,
			Amount:        p.Amount,
			PaymentDate:   p.PaymentDate.Format("2006-01-02"),
			PaymentMethod: p.PaymentMethod,
			Reference:     p.Reference,
			Notes:         p.Notes,
		})
	}
	return resp
}
