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

type CategoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	Get(ctx context.Context, id uint) (*dto.CategoryResponse, error)
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, id uint) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if existing, err := s.repo.FindByName(ctx, req.Name); err == nil && existing != nil {
		return nil, apierror.Business(apierror.CodeDuplicateName, "a category with this name already exists")
	}

	c := model.Category{
		Name:             req.Name,
		Description:      req.Description,
		RequiresVariants: req.RequiresVariants,
		Attributes:       buildAttributes(req.Attributes),
	}
	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, err
	}
	return categoryToResponse(&c), nil
}

func (s *categoryService) Get(ctx context.Context, id uint) (*dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("category not found")
		}
		return nil, err
	}
	return categoryToResponse(c), nil
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		out = append(out, *categoryToResponse(&categories[i]))
	}
	return out, nil
}

func (s *categoryService) Update(ctx context.Context, id uint, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("category not found")
		}
		return nil, err
	}

	if req.Name != nil && *req.Name != c.Name {
		if existing, err := s.repo.FindByName(ctx, *req.Name); err == nil && existing != nil {
			return nil, apierror.Business(apierror.CodeDuplicateName, "a category with this name already exists")
		}
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}
	if req.RequiresVariants != nil {
		c.RequiresVariants = *req.RequiresVariants
	}

	// Attributes replace the whole schema when provided. Existing variant
	// attribute values keep their stored strings regardless.
	c.Attributes = nil
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	if req.Attributes != nil {
		if err := s.repo.ReplaceAttributes(ctx, c.CategoryID, buildAttributes(req.Attributes)); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, c.CategoryID)
}

func (s *categoryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("category not found")
		}
		return err
	}
	return s.repo.Delete(ctx, id)
}

func buildAttributes(inputs []dto.CategoryAttributeInput) []model.CategoryAttribute {
	attrs := make([]model.CategoryAttribute, 0, len(inputs))
	for _, in := range inputs {
		attr := model.CategoryAttribute{
			Name:        in.Name,
			Code:        normalizeCode(in.Code),
			Type:        in.Type,
			Required:    in.Required,
			MultiSelect: in.MultiSelect,
			SortOrder:   in.SortOrder,
		}
		if attr.Type == "" {
			attr.Type = "select"
		}
		for _, v := range in.Values {
			attr.Values = append(attr.Values, model.CategoryAttributeValue{
				Value:     v.Value,
				Code:      normalizeCode(v.Code),
				SortOrder: v.SortOrder,
			})
		}
		attrs = append(attrs, attr)
	}
	return attrs
}

func categoryToResponse(c *model.Category) *dto.CategoryResponse {
	resp := &dto.CategoryResponse{
		CategoryID:       c.CategoryID,
		Name:             c.Name,
		Description:      c.Description,
		RequiresVariants: c.RequiresVariants,
		Attributes:       make([]dto.CategoryAttributeResponse, 0, len(c.Attributes)),
	}
	for _, a := range c.Attributes {
		ar := dto.CategoryAttributeResponse{
			AttributeID: a.AttributeID,
			Name:        a.Name,
			Code:        a.Code,
			Type:        a.Type,
			Required:    a.Required,
			MultiSelect: a.MultiSelect,
			SortOrder:   a.SortOrder,
			Values:      make([]dto.AttributeValueResponse, 0, len(a.Values)),
		}
		for _, v := range a.Values {
			ar.Values = append(ar.Values, dto.AttributeValueResponse{
				ValueID:   v.ValueID,
				Value:     v.Value,
				Code:      v.Code,
				SortOrder: v.SortOrder,
			})
		}
		resp.Attributes = append(resp.Attributes, ar)
	}
	return resp
}
