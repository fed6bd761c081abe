package service

import (
	"context"
	"errors"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"
	"github.com/abdoul9859/techplus/internal/repository"

	"gorm.io/gorm"
)

type SupplierService interface {
	Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error)
	Get(ctx context.Context, id uint) (*dto.SupplierResponse, error)
	List(ctx context.Context) ([]dto.SupplierResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error)
	Delete(ctx context.Context, id uint) error
}

type supplierService struct {
	repo repository.SupplierRepository
}

func NewSupplierService(repo repository.SupplierRepository) SupplierService {
	return &supplierService{repo: repo}
}

func (s *supplierService) Create(ctx context.Context, req dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	sup := model.Supplier{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       req.Address,
	}
	if err := s.repo.Create(ctx, &sup); err != nil {
		return nil, err
	}
	return supplierToResponse(&sup), nil
}

func (s *supplierService) Get(ctx context.Context, id uint) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("supplier not found")
		}
		return nil, err
	}
	return supplierToResponse(sup), nil
}

func (s *supplierService) List(ctx context.Context) ([]dto.SupplierResponse, error) {
	suppliers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, *supplierToResponse(&suppliers[i]))
	}
	return out, nil
}

func (s *supplierService) Update(ctx context.Context, id uint, req dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	sup, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("supplier not found")
		}
		return nil, err
	}
	if req.Name != nil {
		sup.Name = *req.Name
	}
	if req.ContactPerson != nil {
		sup.ContactPerson = req.ContactPerson
	}
	if req.Email != nil {
		sup.Email = req.Email
	}
	if req.Phone != nil {
		sup.Phone = req.Phone
	}
	if req.Address != nil {
		sup.Address = req.Address
	}
	if err := s.repo.Update(ctx, sup); err != nil {
		return nil, err
	}
	return supplierToResponse(sup), nil
}

// Delete refuses while debts still reference the supplier.
func (s *supplierService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("supplier not found")
		}
		return err
	}
	n, err := s.repo.CountDebts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apierror.Business(apierror.CodeInvalidTransition, "supplier has debts and cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}

func supplierToResponse(s *model.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		SupplierID:    s.SupplierID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Email:         s.Email,
		Phone:         s.Phone,
		Address:       s.Address,
	}
}
