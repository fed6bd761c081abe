package service

import (
	"context"
	"testing"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildProductSvc() (ProductService, *stubProductRepo, *stubMovementRepo) {
	productRepo := newStubProductRepo()
	movementRepo := &stubMovementRepo{}
	stock := NewStockService(productRepo, movementRepo)
	svc := NewProductService(productRepo, movementRepo, stock)
	return svc, productRepo, movementRepo
}

func TestCreateProduct_Plain(t *testing.T) {
	svc, _, _ := buildProductSvc()

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:     "Souris Logitech",
		Category: "Accessoires",
		Barcode:  strp("LOG-M185"),
		Price:    decimal.NewFromInt(8000),
		Quantity: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, 12, resp.Quantity)
	require.NotNil(t, resp.Barcode)
	assert.Equal(t, "LOG-M185", *resp.Barcode)
}

func TestCreateProduct_DuplicateBarcode(t *testing.T) {
	svc, _, _ := buildProductSvc()

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Clavier A", Category: "Accessoires", Barcode: strp("KB-001"),
		Price: decimal.NewFromInt(10000), Quantity: 3,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Clavier B", Category: "Accessoires", Barcode: strp("KB-001"),
		Price: decimal.NewFromInt(11000), Quantity: 2,
	})
	requireBusinessCode(t, err, apierror.CodeDuplicateBarcode)
}

func TestCreateProduct_VariantsDriveQuantityAndBarcode(t *testing.T) {
	svc, _, _ := buildProductSvc()

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name:            "iPhone 14",
		Category:        "Téléphones",
		Barcode:         strp("IPH14"),
		Price:           decimal.NewFromInt(400000),
		Quantity:        99, // ignored for variant-tracked products
		HasUniqueSerial: true,
		Variants: []dto.VariantInput{
			{IMEISerial: "353900000000001"},
			{IMEISerial: "353900000000002"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Quantity)
	// barcodes live on the units, never on the product row
	assert.Nil(t, resp.Barcode)
	require.Len(t, resp.Variants, 2)
}

func TestCreateProduct_DuplicateSerialInRequest(t *testing.T) {
	svc, _, _ := buildProductSvc()

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Xiaomi 13", Category: "Téléphones", Price: decimal.NewFromInt(250000),
		HasUniqueSerial: true,
		Variants: []dto.VariantInput{
			{IMEISerial: "SER-X"},
			{IMEISerial: "SER-X"},
		},
	})
	requireBusinessCode(t, err, apierror.CodeDuplicateSerial)
}

func TestCreateProduct_SerialAlreadyRegistered(t *testing.T) {
	svc, productRepo, _ := buildProductSvc()
	seedVariantProduct(productRepo, "Huawei P40", 200000, "SER-TAKEN")

	_, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Name: "Huawei P50", Category: "Téléphones", Price: decimal.NewFromInt(260000),
		HasUniqueSerial: true,
		Variants: []dto.VariantInput{
			{IMEISerial: "SER-TAKEN"},
		},
	})
	requireBusinessCode(t, err, apierror.CodeDuplicateSerial)
}

func TestUpdateProduct_CannotDeleteSoldVariant(t *testing.T) {
	svc, productRepo, _ := buildProductSvc()
	p := seedVariantProduct(productRepo, "Oppo A78", 130000, "SER-1", "SER-2")
	productRepo.products[p.ProductID].Variants[0].IsSold = true

	_, err := svc.Update(context.Background(), p.ProductID, dto.UpdateProductRequest{
		DeletedVariants: []uint{p.Variants[0].VariantID},
	})
	requireBusinessCode(t, err, apierror.CodeVariantUnavailable)
}

func TestUpdateProduct_VariantProductBarcodeStaysNull(t *testing.T) {
	svc, productRepo, _ := buildProductSvc()
	p := seedVariantProduct(productRepo, "Pixel 8", 350000, "SER-PX-1", "SER-PX-2")

	resp, err := svc.Update(context.Background(), p.ProductID, dto.UpdateProductRequest{
		Barcode: strp("PX8-BULK"),
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Barcode)
	assert.Nil(t, productRepo.products[p.ProductID].Barcode)
}

func TestUpdateProduct_BarcodeDroppedWhenVariantAdded(t *testing.T) {
	svc, productRepo, _ := buildProductSvc()
	p := seedPlainProduct(productRepo, "Casque Sony", 5, 60000)
	productRepo.products[p.ProductID].Barcode = strp("SONY-WH")

	resp, err := svc.Update(context.Background(), p.ProductID, dto.UpdateProductRequest{
		Variants: []dto.VariantInput{{IMEISerial: "SER-SONY-1"}},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Barcode)
	assert.Equal(t, 1, resp.Quantity)
}

func TestUpdateProduct_ReplacesVariantAttributes(t *testing.T) {
	svc, productRepo, _ := buildProductSvc()
	p := seedVariantProduct(productRepo, "Galaxy S23", 450000, "SER-S23-1")

	vid := productRepo.products[p.ProductID].Variants[0].VariantID
	_, err := svc.Update(context.Background(), p.ProductID, dto.UpdateProductRequest{
		Variants: []dto.VariantInput{{
			VariantID:  &vid,
			IMEISerial: "SER-S23-1",
			Attributes: []dto.VariantAttributeInput{
				{AttributeName: "couleur", AttributeValue: "noir"},
			},
		}},
	})
	require.NoError(t, err)

	// edit the same attribute again: the old row must be gone, not shadowed
	resp, err := svc.Update(context.Background(), p.ProductID, dto.UpdateProductRequest{
		Variants: []dto.VariantInput{{
			VariantID:  &vid,
			IMEISerial: "SER-S23-1",
			Attributes: []dto.VariantAttributeInput{
				{AttributeName: "couleur", AttributeValue: "bleu"},
			},
		}},
	})
	require.NoError(t, err)
	require.Len(t, resp.Variants, 1)
	require.Len(t, resp.Variants[0].Attributes, 1)
	assert.Equal(t, "bleu", resp.Variants[0].Attributes[0].AttributeValue)
}

func TestDeleteProduct_Guards(t *testing.T) {
	svc, productRepo, _ := buildProductSvc()

	sold := seedVariantProduct(productRepo, "Vivo Y36", 110000, "SER-SOLD")
	productRepo.products[sold.ProductID].Variants[0].IsSold = true
	err := svc.Delete(context.Background(), sold.ProductID)
	requireBusinessCode(t, err, apierror.CodeVariantUnavailable)

	invoiced := seedPlainProduct(productRepo, "Adaptateur secteur", 4, 6000)
	productRepo.invoiceRefs[invoiced.ProductID] = 2
	err = svc.Delete(context.Background(), invoiced.ProductID)
	requireBusinessCode(t, err, apierror.CodeInvalidTransition)

	free := seedPlainProduct(productRepo, "Support téléphone", 8, 3500)
	require.NoError(t, svc.Delete(context.Background(), free.ProductID))
	assert.NotContains(t, productRepo.products, free.ProductID)
}

func TestScan_ResolutionOrder(t *testing.T) {
	svc, productRepo, _ := buildProductSvc()

	plain := seedPlainProduct(productRepo, "Enceinte JBL", 6, 45000)
	productRepo.products[plain.ProductID].Barcode = strp("JBL-GO3")

	variant := seedVariantProduct(productRepo, "Infinix Hot 30", 95000, "359800123456789")
	productRepo.products[variant.ProductID].Variants[0].Barcode = strp("VAR-BC-1")

	byProduct, err := svc.Scan(context.Background(), "JBL-GO3")
	require.NoError(t, err)
	assert.Equal(t, "product", byProduct.MatchType)
	require.NotNil(t, byProduct.Product)
	assert.Equal(t, plain.ProductID, byProduct.Product.ProductID)

	byBarcode, err := svc.Scan(context.Background(), "VAR-BC-1")
	require.NoError(t, err)
	assert.Equal(t, "variant", byBarcode.MatchType)

	bySerial, err := svc.Scan(context.Background(), "  359800123456789 ")
	require.NoError(t, err)
	assert.Equal(t, "variant", bySerial.MatchType)
	require.NotNil(t, bySerial.Variant)
	assert.Equal(t, "359800123456789", bySerial.Variant.IMEISerial)

	partial, err := svc.Scan(context.Background(), "3456789")
	require.NoError(t, err)
	assert.Equal(t, "variant_partial", partial.MatchType)
}

func TestScan_AmbiguousPartialNotResolved(t *testing.T) {
	svc, productRepo, _ := buildProductSvc()
	seedVariantProduct(productRepo, "Nokia G22", 80000, "SER-AMB-1", "SER-AMB-2")

	_, err := svc.Scan(context.Background(), "SER-AMB")
	requireBusinessCode(t, err, apierror.CodeNotFound)
}

func TestScan_UnknownCode(t *testing.T) {
	svc, _, _ := buildProductSvc()

	_, err := svc.Scan(context.Background(), "NOPE")
	requireBusinessCode(t, err, apierror.CodeNotFound)

	_, err = svc.Scan(context.Background(), "   ")
	requireBusinessCode(t, err, apierror.CodeNotFound)
}
