package worker

// document_worker.go
// Processes document jobs from QueueDocuments: renders the quotation or
// invoice PDF, then hands the result to the email queue when the client has
// an email address on file.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abdoul9859/techplus/internal/infra"
	"github.com/abdoul9859/techplus/internal/model"
	"github.com/abdoul9859/techplus/internal/repository"

	"github.com/rs/zerolog/log"
)

// DocumentWorker renders commercial document PDFs off the request path.
type DocumentWorker struct {
	quotations     repository.QuotationRepository
	invoices       repository.InvoiceRepository
	dispatcher     *Dispatcher
	companyName    string
	currency       string
	pdfStoragePath string
}

func NewDocumentWorker(
	quotations repository.QuotationRepository,
	invoices repository.InvoiceRepository,
	dispatcher *Dispatcher,
	companyName string,
	currency string,
	pdfStoragePath string,
) *DocumentWorker {
	return &DocumentWorker{
		quotations:     quotations,
		invoices:       invoices,
		dispatcher:     dispatcher,
		companyName:    companyName,
		currency:       currency,
		pdfStoragePath: pdfStoragePath,
	}
}

// Process renders the document and enqueues the email job.
func (w *DocumentWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload DocumentEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("document_worker: invalid payload")
		return
	}

	var (
		pdfPath string
		client  *model.Client
		subject string
		body    string
		err     error
	)
	switch payload.DocumentType {
	case "quotation":
		var q *model.Quotation
		q, err = w.quotations.FindByID(ctx, payload.DocumentID)
		if err == nil {
			client = q.Client
			subject = fmt.Sprintf("%s - Devis %s", w.companyName, q.QuotationNumber)
			body = fmt.Sprintf("Bonjour,\n\nVeuillez trouver ci-joint le devis %s d'un montant de %s %s.\n\nCordialement,\n%s",
				q.QuotationNumber, q.Total.StringFixed(0), w.currency, w.companyName)
			pdfPath, err = infra.GenerateQuotationPDF(q, w.companyName, w.currency, w.pdfStoragePath)
		}
	case "invoice":
		var inv *model.Invoice
		inv, err = w.invoices.FindByID(ctx, payload.DocumentID)
		if err == nil {
			client = inv.Client
			subject = fmt.Sprintf("%s - Facture %s", w.companyName, inv.InvoiceNumber)
			body = fmt.Sprintf("Bonjour,\n\nVeuillez trouver ci-joint la facture %s d'un montant de %s %s.\n\nCordialement,\n%s",
				inv.InvoiceNumber, inv.Total.StringFixed(0), w.currency, w.companyName)
			pdfPath, err = infra.GenerateInvoicePDF(inv, w.companyName, w.currency, w.pdfStoragePath)
		}
	default:
		log.Error().Str("document_type", payload.DocumentType).Msg("document_worker: unknown document type")
		return
	}
	if err != nil {
		log.Error().
			Err(err).
			Str("document_type", payload.DocumentType).
			Uint("document_id", payload.DocumentID).
			Msg("document_worker: render failed")
		return
	}
	log.Info().Str("pdf", pdfPath).Msg("document_worker: PDF generated")

	if client == nil || client.Email == nil || *client.Email == "" {
		log.Warn().
			Str("document_type", payload.DocumentType).
			Uint("document_id", payload.DocumentID).
			Msg("document_worker: client has no email, PDF kept on disk only")
		return
	}

	emailJob := EmailJobPayload{
		ToEmail: *client.Email,
		Subject: subject,
		Body:    body,
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("email", *client.Email).Msg("document_worker: failed to enqueue email")
		return
	}
	log.Info().Str("email", *client.Email).Msg("document_worker: email job enqueued")
}
