package service

import (
	"context"
	"testing"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildQuotationSvc() (QuotationService, *stubQuotationRepo, *stubInvoiceRepo, *stubProductRepo, *stubClientRepo) {
	quotationRepo := newStubQuotationRepo()
	invoiceRepo := newStubInvoiceRepo()
	productRepo := newStubProductRepo()
	clientRepo := newStubClientRepo()
	noteRepo := newStubNoteRepo()
	movementRepo := &stubMovementRepo{}

	stock := NewStockService(productRepo, movementRepo)
	invoices := NewInvoiceService(invoiceRepo, productRepo, clientRepo, noteRepo, stock, nil, decimal.NewFromInt(18))
	svc := NewQuotationService(quotationRepo, clientRepo, invoices, nil, decimal.NewFromInt(18))
	return svc, quotationRepo, invoiceRepo, productRepo, clientRepo
}

func TestCreateQuotation_Totals(t *testing.T) {
	svc, _, _, productRepo, clientRepo := buildQuotationSvc()
	c := seedClient(clientRepo, "Diagne")
	p := seedPlainProduct(productRepo, "Tablette Samsung", 5, 200000)

	resp, err := svc.Create(context.Background(), dto.CreateQuotationRequest{
		ClientID: c.ClientID,
		Items: []dto.QuotationItemInput{
			{ProductID: &p.ProductID, ProductName: p.Name, Quantity: 2, UnitPrice: decimal.NewFromInt(200000)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "DEV-0001", resp.QuotationNumber)
	assert.Equal(t, model.QuotationDraft, resp.Status)
	assert.Equal(t, "400000", resp.Subtotal.String())
	assert.Equal(t, "72000", resp.TaxAmount.String())
	assert.Equal(t, "472000", resp.Total.String())
	// a quotation never touches stock
	assert.Equal(t, 5, productRepo.products[p.ProductID].Quantity)
}

func TestCreateQuotation_UnknownClient(t *testing.T) {
	svc, _, _, _, _ := buildQuotationSvc()

	_, err := svc.Create(context.Background(), dto.CreateQuotationRequest{
		ClientID: 999,
		Items: []dto.QuotationItemInput{
			{ProductName: "Service", Quantity: 1, UnitPrice: decimal.NewFromInt(1000)},
		},
	})
	requireBusinessCode(t, err, apierror.CodeNotFound)
}

func TestQuotationStatus_Transitions(t *testing.T) {
	svc, _, _, _, clientRepo := buildQuotationSvc()
	c := seedClient(clientRepo, "Camara")

	resp, err := svc.Create(context.Background(), dto.CreateQuotationRequest{
		ClientID: c.ClientID,
		Items: []dto.QuotationItemInput{
			{ProductName: "Maintenance", Quantity: 1, UnitPrice: decimal.NewFromInt(50000)},
		},
	})
	require.NoError(t, err)

	sent, err := svc.SetStatus(context.Background(), resp.QuotationID, model.QuotationSent)
	require.NoError(t, err)
	assert.Equal(t, model.QuotationSent, sent.Status)

	accepted, err := svc.SetStatus(context.Background(), resp.QuotationID, model.QuotationAccepted)
	require.NoError(t, err)
	assert.Equal(t, model.QuotationAccepted, accepted.Status)

	// accepted is terminal
	_, err = svc.SetStatus(context.Background(), resp.QuotationID, model.QuotationRefused)
	requireBusinessCode(t, err, apierror.CodeInvalidTransition)
}

func TestQuotationSetSent_FloorsDraftToSent(t *testing.T) {
	svc, _, _, _, clientRepo := buildQuotationSvc()
	c := seedClient(clientRepo, "Badji")

	resp, err := svc.Create(context.Background(), dto.CreateQuotationRequest{
		ClientID: c.ClientID,
		Items: []dto.QuotationItemInput{
			{ProductName: "Config serveur", Quantity: 1, UnitPrice: decimal.NewFromInt(80000)},
		},
	})
	require.NoError(t, err)

	marked, err := svc.SetSent(context.Background(), resp.QuotationID, true)
	require.NoError(t, err)
	assert.True(t, marked.IsSent)
	assert.Equal(t, model.QuotationSent, marked.Status)

	// clearing the flag does not rewind the status
	cleared, err := svc.SetSent(context.Background(), resp.QuotationID, false)
	require.NoError(t, err)
	assert.False(t, cleared.IsSent)
	assert.Equal(t, model.QuotationSent, cleared.Status)
}

func TestQuotationUpdate_TerminalRejected(t *testing.T) {
	svc, _, _, _, clientRepo := buildQuotationSvc()
	c := seedClient(clientRepo, "Sagna")

	resp, err := svc.Create(context.Background(), dto.CreateQuotationRequest{
		ClientID: c.ClientID,
		Items: []dto.QuotationItemInput{
			{ProductName: "Formation", Quantity: 1, UnitPrice: decimal.NewFromInt(30000)},
		},
	})
	require.NoError(t, err)
	_, err = svc.SetStatus(context.Background(), resp.QuotationID, model.QuotationRefused)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), resp.QuotationID, dto.UpdateQuotationRequest{Notes: strp("relance")})
	requireBusinessCode(t, err, apierror.CodeInvalidTransition)
}

func TestQuotationUpdate_RecomputesTotals(t *testing.T) {
	svc, _, _, _, clientRepo := buildQuotationSvc()
	c := seedClient(clientRepo, "Mané")

	resp, err := svc.Create(context.Background(), dto.CreateQuotationRequest{
		ClientID: c.ClientID,
		Items: []dto.QuotationItemInput{
			{ProductName: "Licence antivirus", Quantity: 1, UnitPrice: decimal.NewFromInt(20000)},
		},
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), resp.QuotationID, dto.UpdateQuotationRequest{
		Items: []dto.QuotationItemInput{
			{ProductName: "Licence antivirus", Quantity: 3, UnitPrice: decimal.NewFromInt(20000)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "60000", updated.Subtotal.String())
	assert.Equal(t, "70800", updated.Total.String())
}

func TestConvertQuotation(t *testing.T) {
	svc, quotationRepo, invoiceRepo, productRepo, clientRepo := buildQuotationSvc()
	c := seedClient(clientRepo, "Konaté")
	p := seedPlainProduct(productRepo, "PC portable Lenovo", 6, 350000)

	resp, err := svc.Create(context.Background(), dto.CreateQuotationRequest{
		ClientID: c.ClientID,
		Items: []dto.QuotationItemInput{
			{ProductID: &p.ProductID, ProductName: p.Name, Quantity: 2, UnitPrice: decimal.NewFromInt(350000)},
		},
	})
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), resp.QuotationID, model.QuotationAccepted)
	require.NoError(t, err)

	inv, err := svc.Convert(context.Background(), resp.QuotationID)
	require.NoError(t, err)

	require.NotNil(t, inv.QuotationID)
	assert.Equal(t, resp.QuotationID, *inv.QuotationID)
	assert.Equal(t, resp.Total.String(), inv.Total.String())
	// conversion sells the stock
	assert.Equal(t, 4, productRepo.products[p.ProductID].Quantity)

	stored := quotationRepo.quotations[resp.QuotationID]
	require.NotNil(t, stored.InvoiceID)
	assert.Equal(t, inv.InvoiceID, *stored.InvoiceID)
	assert.Contains(t, invoiceRepo.invoices, inv.InvoiceID)

	// a quotation converts at most once
	_, err = svc.Convert(context.Background(), resp.QuotationID)
	requireBusinessCode(t, err, apierror.CodeInvalidTransition)

	// and cannot be deleted afterwards
	err = svc.Delete(context.Background(), resp.QuotationID)
	requireBusinessCode(t, err, apierror.CodeInvalidTransition)
}

func TestConvertQuotation_NotAccepted(t *testing.T) {
	svc, _, _, _, clientRepo := buildQuotationSvc()
	c := seedClient(clientRepo, "Dramé")

	resp, err := svc.Create(context.Background(), dto.CreateQuotationRequest{
		ClientID: c.ClientID,
		Items: []dto.QuotationItemInput{
			{ProductName: "Onduleur", Quantity: 1, UnitPrice: decimal.NewFromInt(60000)},
		},
	})
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), resp.QuotationID)
	requireBusinessCode(t, err, apierror.CodeNotAccepted)
}
