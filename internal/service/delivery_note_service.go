package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"
	"github.com/abdoul9859/techplus/internal/repository"

	"gorm.io/gorm"
)

// DeliveryNoteService manages notes derived from invoices. Notes are never
// created standalone: DeriveFromInvoice is the only entry point, and calling
// it twice for the same invoice returns the existing note.
type DeliveryNoteService interface {
	Get(ctx context.Context, id uint) (*dto.DeliveryNoteResponse, error)
	List(ctx context.Context, filter dto.DeliveryNoteFilter) (*dto.DeliveryNoteListResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateDeliveryNoteRequest) (*dto.DeliveryNoteResponse, error)
	Delete(ctx context.Context, id uint) error
	SetStatus(ctx context.Context, id uint, status string) (*dto.DeliveryNoteResponse, error)
	Sign(ctx context.Context, id uint, req dto.DeliverySignatureRequest) (*dto.DeliveryNoteResponse, error)
	DeriveFromInvoice(ctx context.Context, invoiceID uint) (*dto.DeliveryNoteResponse, error)
}

type deliveryNoteService struct {
	repo     repository.DeliveryNoteRepository
	invoices repository.InvoiceRepository
	now      func() time.Time
}

func NewDeliveryNoteService(
	repo repository.DeliveryNoteRepository,
	invoices repository.InvoiceRepository,
) DeliveryNoteService {
	return &deliveryNoteService{repo: repo, invoices: invoices, now: time.Now}
}

func deliveryNotePrefix(date time.Time) string {
	return "BL-" + date.Format("20060102") + "-"
}

// ── Read ─────────────────────────────────────────────────────────────────────

func (s *deliveryNoteService) Get(ctx context.Context, id uint) (*dto.DeliveryNoteResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("delivery note not found")
		}
		return nil, err
	}
	return deliveryNoteToResponse(n), nil
}

func (s *deliveryNoteService) List(ctx context.Context, filter dto.DeliveryNoteFilter) (*dto.DeliveryNoteListResponse, error) {
	notes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.DeliveryNoteListResponse{
		Data:       make([]dto.DeliveryNoteResponse, 0, len(notes)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range notes {
		resp.Data = append(resp.Data, *deliveryNoteToResponse(&notes[i]))
	}
	return resp, nil
}

// ── Update ───────────────────────────────────────────────────────────────────
// Addressing details, transport cost and per-line delivered quantities are
// editable until the note is delivered or cancelled.

func (s *deliveryNoteService) Update(ctx context.Context, id uint, req dto.UpdateDeliveryNoteRequest) (*dto.DeliveryNoteResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("delivery note not found")
		}
		return nil, err
	}
	if n.Status == model.DeliveryDelivered || n.Status == model.DeliveryCancelled {
		return nil, apierror.Business(apierror.CodeInvalidTransition, "a delivered or cancelled note cannot be edited")
	}

	if req.DeliveryDate != nil {
		d := parseDateOr(req.DeliveryDate, time.Time{})
		n.DeliveryDate = &d
	}
	if req.DeliveryAddress != nil {
		n.DeliveryAddress = req.DeliveryAddress
	}
	if req.DeliveryContact != nil {
		n.DeliveryContact = req.DeliveryContact
	}
	if req.DeliveryPhone != nil {
		n.DeliveryPhone = req.DeliveryPhone
	}
	if req.TransportCost != nil {
		n.TransportCost = *req.TransportCost
	}
	if req.Notes != nil {
		n.Notes = req.Notes
	}

	byID := make(map[uint]*model.DeliveryNoteItem, len(n.Items))
	for i := range n.Items {
		byID[n.Items[i].ItemID] = &n.Items[i]
	}
	for _, patch := range req.Items {
		item, ok := byID[patch.ItemID]
		if !ok {
			return nil, apierror.NotFound("line not found on this delivery note")
		}
		if patch.DeliveredQuantity > item.Quantity {
			return nil, apierror.Business(apierror.CodeInvalidTransition, "delivered quantity exceeds the line quantity")
		}
		item.DeliveredQuantity = patch.DeliveredQuantity
	}

	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return deliveryNoteToResponse(n), nil
}

// ── Delete ───────────────────────────────────────────────────────────────────

func (s *deliveryNoteService) Delete(ctx context.Context, id uint) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("delivery note not found")
		}
		return err
	}
	if n.Status == model.DeliveryDelivered {
		return apierror.Business(apierror.CodeInvalidTransition, "a delivered note cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}

// ── Status ───────────────────────────────────────────────────────────────────

func (s *deliveryNoteService) SetStatus(ctx context.Context, id uint, status string) (*dto.DeliveryNoteResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("delivery note not found")
		}
		return nil, err
	}
	if !model.ValidDeliveryTransition(n.Status, status) {
		return nil, apierror.Business(apierror.CodeInvalidTransition,
			"cannot move delivery note from "+n.Status+" to "+status)
	}
	n.Status = status
	if status == model.DeliveryDelivered {
		at := s.now()
		n.DeliveredAt = &at
		if n.DeliveryDate == nil {
			n.DeliveryDate = &at
		}
		// Full delivery unless partial quantities were recorded.
		for i := range n.Items {
			if n.Items[i].DeliveredQuantity == 0 {
				n.Items[i].DeliveredQuantity = n.Items[i].Quantity
			}
		}
	}
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return deliveryNoteToResponse(n), nil
}

func (s *deliveryNoteService) Sign(ctx context.Context, id uint, req dto.DeliverySignatureRequest) (*dto.DeliveryNoteResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("delivery note not found")
		}
		return nil, err
	}
	if n.Status == model.DeliveryCancelled {
		return nil, apierror.Business(apierror.CodeInvalidTransition, "a cancelled note cannot be signed")
	}
	n.DeliveredBy = &req.DeliveredBy
	n.SignatureReceived = true
	n.SignatureDataURL = req.SignatureDataURL
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}
	return deliveryNoteToResponse(n), nil
}

// ── Derivation ───────────────────────────────────────────────────────────────

func (s *deliveryNoteService) DeriveFromInvoice(ctx context.Context, invoiceID uint) (*dto.DeliveryNoteResponse, error) {
	if existing, err := s.repo.FindByInvoiceID(ctx, invoiceID); err == nil {
		return deliveryNoteToResponse(existing), nil
	}

	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("invoice not found")
		}
		return nil, err
	}
	if inv.Status == model.InvoiceCancelled {
		return nil, apierror.Business(apierror.CodeInvalidTransition, "a cancelled invoice cannot produce a delivery note")
	}

	n := model.DeliveryNote{
		InvoiceID: inv.InvoiceID,
		ClientID:  inv.ClientID,
		Date:      s.now(),
		Status:    model.DeliveryPreparing,
		Subtotal:  inv.Subtotal,
		TaxRate:   inv.TaxRate,
		TaxAmount: inv.TaxAmount,
		Total:     inv.Total,
	}
	for _, item := range inv.Items {
		di := model.DeliveryNoteItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
		if len(item.Variants) > 0 {
			serials := make([]string, 0, len(item.Variants))
			for _, v := range item.Variants {
				serials = append(serials, v.IMEISerial)
			}
			encoded, _ := json.Marshal(serials)
			str := string(encoded)
			di.SerialNumbers = &str
		}
		n.Items = append(n.Items, di)
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if tx == nil {
			n.DeliveryNoteNumber = deliveryNotePrefix(n.Date) + "0001"
			return s.repo.CreateTx(nil, &n)
		}
		number, err := s.repo.NextNumber(tx, deliveryNotePrefix(n.Date))
		if err != nil {
			return err
		}
		n.DeliveryNoteNumber = number
		return s.repo.CreateTx(tx, &n)
	})
	if err != nil {
		return nil, err
	}
	return deliveryNoteToResponse(&n), nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func deliveryNoteToResponse(n *model.DeliveryNote) *dto.DeliveryNoteResponse {
	resp := &dto.DeliveryNoteResponse{
		DeliveryNoteID:     n.DeliveryNoteID,
		DeliveryNoteNumber: n.DeliveryNoteNumber,
		InvoiceID:          n.InvoiceID,
		ClientID:           n.ClientID,
		Date:               n.Date.Format("2006-01-02"),
		Status:             n.Status,
		DeliveryAddress:    n.DeliveryAddress,
		DeliveryContact:    n.DeliveryContact,
		DeliveryPhone:      n.DeliveryPhone,
		Subtotal:           n.Subtotal,
		TaxRate:            n.TaxRate,
		TaxAmount:          n.TaxAmount,
		Total:              n.Total,
		TransportCost:      n.TransportCost,
		DeliveredBy:        n.DeliveredBy,
		SignatureReceived:  n.SignatureReceived,
		Notes:              n.Notes,
		Items:              make([]dto.DeliveryNoteItemResponse, 0, len(n.Items)),
	}
	if n.DeliveryDate != nil {
		d := n.DeliveryDate.Format("2006-01-02")
		resp.DeliveryDate = &d
	}
	if n.DeliveredAt != nil {
		d := n.DeliveredAt.Format(time.RFC3339)
		resp.DeliveredAt = &d
	}
	if n.Client != nil {
		resp.ClientName = n.Client.Name
	}
	for _, item := range n.Items {
		ir := dto.DeliveryNoteItemResponse{
			ItemID:            item.ItemID,
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			Quantity:          item.Quantity,
			DeliveredQuantity: item.DeliveredQuantity,
			Price:             item.Price,
		}
		if item.SerialNumbers != nil {
			_ = json.Unmarshal([]byte(*item.SerialNumbers), &ir.SerialNumbers)
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
