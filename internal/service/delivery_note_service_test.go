package service

import (
	"context"
	"testing"
	"time"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDeliveryNoteSvc() (DeliveryNoteService, InvoiceService, *stubNoteRepo, *stubProductRepo, *stubClientRepo) {
	invoiceRepo := newStubInvoiceRepo()
	productRepo := newStubProductRepo()
	clientRepo := newStubClientRepo()
	noteRepo := newStubNoteRepo()
	movementRepo := &stubMovementRepo{}

	stock := NewStockService(productRepo, movementRepo)
	invoices := NewInvoiceService(invoiceRepo, productRepo, clientRepo, noteRepo, stock, nil, decimal.NewFromInt(18))
	svc := NewDeliveryNoteService(noteRepo, invoiceRepo)
	return svc, invoices, noteRepo, productRepo, clientRepo
}

func TestDeriveDeliveryNote_FromInvoice(t *testing.T) {
	svc, invoices, _, productRepo, clientRepo := buildDeliveryNoteSvc()
	c := seedClient(clientRepo, "Goudiaby")
	p := seedVariantProduct(productRepo, "Samsung S23", 500000, "IMEI-DN-1", "IMEI-DN-2")

	inv, err := invoices.Create(context.Background(), dto.CreateInvoiceRequest{
		ClientID: c.ClientID,
		Items: []dto.InvoiceItemInput{
			{ProductID: &p.ProductID, ProductName: p.Name, UnitPrice: decimal.NewFromInt(500000),
				VariantIDs: []uint{p.Variants[0].VariantID, p.Variants[1].VariantID}},
		},
	})
	require.NoError(t, err)

	svc.(*deliveryNoteService).now = func() time.Time {
		return time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	}

	note, err := svc.DeriveFromInvoice(context.Background(), inv.InvoiceID)
	require.NoError(t, err)

	assert.Equal(t, "BL-20260110-0001", note.DeliveryNoteNumber)
	assert.Equal(t, inv.InvoiceID, note.InvoiceID)
	assert.Equal(t, model.DeliveryPreparing, note.Status)
	assert.Equal(t, inv.Total.String(), note.Total.String())
	require.Len(t, note.Items, 1)
	assert.Equal(t, 2, note.Items[0].Quantity)
	assert.Equal(t, 0, note.Items[0].DeliveredQuantity)
	assert.Equal(t, []string{"IMEI-DN-1", "IMEI-DN-2"}, note.Items[0].SerialNumbers)

	// derivation is idempotent
	again, err := svc.DeriveFromInvoice(context.Background(), inv.InvoiceID)
	require.NoError(t, err)
	assert.Equal(t, note.DeliveryNoteID, again.DeliveryNoteID)
}

func TestDeriveDeliveryNote_CancelledInvoiceRejected(t *testing.T) {
	svc, invoices, _, productRepo, clientRepo := buildDeliveryNoteSvc()
	c := seedClient(clientRepo, "Ndour")
	p := seedPlainProduct(productRepo, "Micro-casque", 4, 20000)

	inv, err := invoices.Create(context.Background(), dto.CreateInvoiceRequest{
		ClientID: c.ClientID,
		Items: []dto.InvoiceItemInput{
			{ProductID: &p.ProductID, ProductName: p.Name, Quantity: 1, UnitPrice: decimal.NewFromInt(20000)},
		},
	})
	require.NoError(t, err)
	_, err = invoices.SetStatus(context.Background(), inv.InvoiceID, model.InvoiceCancelled)
	require.NoError(t, err)

	_, err = svc.DeriveFromInvoice(context.Background(), inv.InvoiceID)
	requireBusinessCode(t, err, apierror.CodeInvalidTransition)
}

func TestDeliveryNoteStatus_Lifecycle(t *testing.T) {
	svc, invoices, _, productRepo, clientRepo := buildDeliveryNoteSvc()
	c := seedClient(clientRepo, "Baldé")
	p := seedPlainProduct(productRepo, "Câble réseau 10m", 20, 5000)

	inv, err := invoices.Create(context.Background(), dto.CreateInvoiceRequest{
		ClientID: c.ClientID,
		Items: []dto.InvoiceItemInput{
			{ProductID: &p.ProductID, ProductName: p.Name, Quantity: 3, UnitPrice: decimal.NewFromInt(5000)},
		},
	})
	require.NoError(t, err)
	note, err := svc.DeriveFromInvoice(context.Background(), inv.InvoiceID)
	require.NoError(t, err)

	moving, err := svc.SetStatus(context.Background(), note.DeliveryNoteID, model.DeliveryInTransit)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryInTransit, moving.Status)

	delivered, err := svc.SetStatus(context.Background(), note.DeliveryNoteID, model.DeliveryDelivered)
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryDelivered, delivered.Status)
	require.NotNil(t, delivered.DeliveredAt)
	// full delivery fills the line quantities
	assert.Equal(t, 3, delivered.Items[0].DeliveredQuantity)

	// delivered is terminal
	_, err = svc.SetStatus(context.Background(), note.DeliveryNoteID, model.DeliveryCancelled)
	requireBusinessCode(t, err, apierror.CodeInvalidTransition)

	// and a delivered note can be neither edited nor deleted
	_, err = svc.Update(context.Background(), note.DeliveryNoteID, dto.UpdateDeliveryNoteRequest{Notes: strp("x")})
	requireBusinessCode(t, err, apierror.CodeInvalidTransition)
	err = svc.Delete(context.Background(), note.DeliveryNoteID)
	requireBusinessCode(t, err, apierror.CodeInvalidTransition)
}

func TestDeliveryNoteUpdate_DeliveredQuantityCap(t *testing.T) {
	svc, invoices, _, productRepo, clientRepo := buildDeliveryNoteSvc()
	c := seedClient(clientRepo, "Diatta")
	p := seedPlainProduct(productRepo, "Multiprise", 10, 8000)

	inv, err := invoices.Create(context.Background(), dto.CreateInvoiceRequest{
		ClientID: c.ClientID,
		Items: []dto.InvoiceItemInput{
			{ProductID: &p.ProductID, ProductName: p.Name, Quantity: 4, UnitPrice: decimal.NewFromInt(8000)},
		},
	})
	require.NoError(t, err)
	note, err := svc.DeriveFromInvoice(context.Background(), inv.InvoiceID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), note.DeliveryNoteID, dto.UpdateDeliveryNoteRequest{
		Items: []dto.DeliveryNoteItemPatch{{ItemID: note.Items[0].ItemID, DeliveredQuantity: 5}},
	})
	requireBusinessCode(t, err, apierror.CodeInvalidTransition)

	partial, err := svc.Update(context.Background(), note.DeliveryNoteID, dto.UpdateDeliveryNoteRequest{
		Items: []dto.DeliveryNoteItemPatch{{ItemID: note.Items[0].ItemID, DeliveredQuantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, partial.Items[0].DeliveredQuantity)

	// partial quantities survive the delivered transition
	delivered, err := svc.SetStatus(context.Background(), note.DeliveryNoteID, model.DeliveryDelivered)
	require.NoError(t, err)
	assert.Equal(t, 2, delivered.Items[0].DeliveredQuantity)
}

func TestDeliveryNoteSign(t *testing.T) {
	svc, invoices, _, productRepo, clientRepo := buildDeliveryNoteSvc()
	c := seedClient(clientRepo, "Sane")
	p := seedPlainProduct(productRepo, "Switch 8 ports", 5, 30000)

	inv, err := invoices.Create(context.Background(), dto.CreateInvoiceRequest{
		ClientID: c.ClientID,
		Items: []dto.InvoiceItemInput{
			{ProductID: &p.ProductID, ProductName: p.Name, Quantity: 1, UnitPrice: decimal.NewFromInt(30000)},
		},
	})
	require.NoError(t, err)
	note, err := svc.DeriveFromInvoice(context.Background(), inv.InvoiceID)
	require.NoError(t, err)

	signed, err := svc.Sign(context.Background(), note.DeliveryNoteID, dto.DeliverySignatureRequest{
		DeliveredBy:      "Moussa",
		SignatureDataURL: strp("data:image/png;base64,AAAA"),
	})
	require.NoError(t, err)
	assert.True(t, signed.SignatureReceived)
	require.NotNil(t, signed.DeliveredBy)
	assert.Equal(t, "Moussa", *signed.DeliveredBy)

	// a cancelled note refuses signature
	_, err = svc.SetStatus(context.Background(), note.DeliveryNoteID, model.DeliveryCancelled)
	require.NoError(t, err)
	_, err = svc.Sign(context.Background(), note.DeliveryNoteID, dto.DeliverySignatureRequest{DeliveredBy: "Moussa"})
	requireBusinessCode(t, err, apierror.CodeInvalidTransition)
}
