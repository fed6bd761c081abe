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

type ClientService interface {
	Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error)
	Get(ctx context.Context, id uint) (*dto.ClientResponse, error)
	List(ctx context.Context, filter dto.ClientFilter) (*dto.ClientListResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateClientRequest) (*dto.ClientResponse, error)
	Delete(ctx context.Context, id uint) error
	Balance(ctx context.Context, id uint) (*dto.ClientBalanceResponse, error)
}

type clientService struct {
	repo     repository.ClientRepository
	invoices repository.InvoiceRepository
}

func NewClientService(repo repository.ClientRepository, invoices repository.InvoiceRepository) ClientService {
	return &clientService{repo: repo, invoices: invoices}
}

func (s *clientService) Create(ctx context.Context, req dto.CreateClientRequest) (*dto.ClientResponse, error) {
	c := model.Client{
		Name:       req.Name,
		Contact:    req.Contact,
		Email:      req.Email,
		Phone:      req.Phone,
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		TaxNumber:  req.TaxNumber,
		Notes:      req.Notes,
	}
	if req.Country != nil {
		c.Country = *req.Country
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, err
	}
	return clientToResponse(&c), nil
}

func (s *clientService) Get(ctx context.Context, id uint) (*dto.ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("client not found")
		}
		return nil, err
	}
	return clientToResponse(c), nil
}

func (s *clientService) List(ctx context.Context, filter dto.ClientFilter) (*dto.ClientListResponse, error) {
	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ClientListResponse{
		Data:       make([]dto.ClientResponse, 0, len(clients)),
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}
	for i := range clients {
		resp.Data = append(resp.Data, *clientToResponse(&clients[i]))
	}
	return resp, nil
}

func (s *clientService) Update(ctx context.Context, id uint, req dto.UpdateClientRequest) (*dto.ClientResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("client not found")
		}
		return nil, err
	}

	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Contact != nil {
		c.Contact = req.Contact
	}
	if req.Email != nil {
		c.Email = req.Email
	}
	if req.Phone != nil {
		c.Phone = req.Phone
	}
	if req.Address != nil {
		c.Address = req.Address
	}
	if req.City != nil {
		c.City = req.City
	}
	if req.PostalCode != nil {
		c.PostalCode = req.PostalCode
	}
	if req.Country != nil {
		c.Country = *req.Country
	}
	if req.TaxNumber != nil {
		c.TaxNumber = req.TaxNumber
	}
	if req.Notes != nil {
		c.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return clientToResponse(c), nil
}

// Delete refuses while invoices still reference the client: the documents
// keep their history.
func (s *clientService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("client not found")
		}
		return err
	}
	n, err := s.repo.CountInvoices(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apierror.Business(apierror.CodeInvalidTransition, "client has invoices and cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}

// Balance derives the receivable position from the client's invoices.
func (s *clientService) Balance(ctx context.Context, id uint) (*dto.ClientBalanceResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("client not found")
		}
		return nil, err
	}

	invoices, err := s.invoices.ListByClient(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := &dto.ClientBalanceResponse{
		ClientID:      c.ClientID,
		Name:          c.Name,
		TotalInvoiced: decimal.Zero,
		TotalPaid:     decimal.Zero,
		Balance:       decimal.Zero,
	}
	for i := range invoices {
		inv := &invoices[i]
		if inv.Status == model.InvoiceCancelled {
			continue
		}
		resp.TotalInvoiced = resp.TotalInvoiced.Add(inv.Total)
		resp.TotalPaid = resp.TotalPaid.Add(inv.PaidAmount)
		if inv.Remaining().IsPositive() {
			resp.OpenInvoices++
		}
	}
	resp.Balance = resp.TotalInvoiced.Sub(resp.TotalPaid)
	return resp, nil
}

func clientToResponse(c *model.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ClientID:   c.ClientID,
		Name:       c.Name,
		Contact:    c.Contact,
		Email:      c.Email,
		Phone:      c.Phone,
		Address:    c.Address,
		City:       c.City,
		PostalCode: c.PostalCode,
		Country:    c.Country,
		TaxNumber:  c.TaxNumber,
		Notes:      c.Notes,
		CreatedAt:  c.CreatedAt.Format(time.RFC3339),
	}
}
