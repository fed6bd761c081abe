package service

import (
	"context"
	"testing"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory_WithAttributeSchema(t *testing.T) {
	svc := NewCategoryService(newStubCategoryRepo())

	resp, err := svc.Create(context.Background(), dto.CreateCategoryRequest{
		Name:             "Téléphones",
		RequiresVariants: true,
		Attributes: []dto.CategoryAttributeInput{
			{
				Name:     "Couleur",
				Required: true,
				Values: []dto.AttributeValueInput{
					{Value: "Noir"},
					{Value: "Bleu", SortOrder: 1},
				},
			},
			{Name: "Stockage", Type: "select", Values: []dto.AttributeValueInput{{Value: "128 Go"}}},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.RequiresVariants)
	require.Len(t, resp.Attributes, 2)
	// the attribute type defaults to select when omitted
	assert.Equal(t, "select", resp.Attributes[0].Type)
	assert.True(t, resp.Attributes[0].Required)
	require.Len(t, resp.Attributes[0].Values, 2)
}

func TestCreateCategory_DuplicateName(t *testing.T) {
	svc := NewCategoryService(newStubCategoryRepo())

	_, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Accessoires"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Accessoires"})
	requireBusinessCode(t, err, apierror.CodeDuplicateName)
}

func TestUpdateCategory_RenameCollision(t *testing.T) {
	svc := NewCategoryService(newStubCategoryRepo())

	_, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Ordinateurs"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), dto.CreateCategoryRequest{Name: "Tablettes"})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), second.CategoryID, dto.UpdateCategoryRequest{
		Name: strp("Ordinateurs"),
	})
	requireBusinessCode(t, err, apierror.CodeDuplicateName)

	// keeping the same name is not a collision
	renamed, err := svc.Update(context.Background(), second.CategoryID, dto.UpdateCategoryRequest{
		Name: strp("Tablettes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Tablettes", renamed.Name)
}

func TestUpdateCategory_ReplacesAttributeSchema(t *testing.T) {
	svc := NewCategoryService(newStubCategoryRepo())

	created, err := svc.Create(context.Background(), dto.CreateCategoryRequest{
		Name: "Montres connectées",
		Attributes: []dto.CategoryAttributeInput{
			{Name: "Taille", Values: []dto.AttributeValueInput{{Value: "40mm"}, {Value: "44mm"}}},
		},
	})
	require.NoError(t, err)
	require.Len(t, created.Attributes, 1)

	updated, err := svc.Update(context.Background(), created.CategoryID, dto.UpdateCategoryRequest{
		Attributes: []dto.CategoryAttributeInput{
			{Name: "Bracelet", Values: []dto.AttributeValueInput{{Value: "Silicone"}}},
			{Name: "GPS", Type: "boolean"},
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.Attributes, 2)
	assert.Equal(t, "Bracelet", updated.Attributes[0].Name)
	assert.Equal(t, "boolean", updated.Attributes[1].Type)
}

func TestDeleteCategory_NotFound(t *testing.T) {
	svc := NewCategoryService(newStubCategoryRepo())

	err := svc.Delete(context.Background(), 42)
	requireBusinessCode(t, err, apierror.CodeNotFound)
}
