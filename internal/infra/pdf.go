package infra

// pdf.go — A4 commercial document rendering using go-pdf/fpdf.
// Invoices, quotations and delivery notes share the same layout:
//   - Company header
//   - Document number, date and client block
//   - Item table (description, quantity, unit price, line total)
//   - Totals block (subtotal, tax, total) honoring the document's tax display
//
// Output files are saved to storagePath/{number}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdoul9859/techplus/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

type pdfLine struct {
	name     string
	quantity int
	price    decimal.Decimal
	total    decimal.Decimal
	serials  []string
}

type pdfTotals struct {
	subtotal decimal.Decimal
	taxRate  decimal.Decimal
	taxAmt   decimal.Decimal
	total    decimal.Decimal
	showTax  bool
}

// GenerateInvoicePDF renders an invoice as an A4 PDF and returns the file path.
func GenerateInvoicePDF(inv *model.Invoice, companyName, currency, storagePath string) (string, error) {
	lines := make([]pdfLine, 0, len(inv.Items))
	for _, item := range inv.Items {
		l := pdfLine{name: item.ProductName, quantity: item.Quantity, price: item.Price, total: item.Total}
		for _, v := range item.Variants {
			l.serials = append(l.serials, v.IMEISerial)
		}
		lines = append(lines, l)
	}
	return renderDocument(documentData{
		title:       "FACTURE",
		number:      inv.InvoiceNumber,
		date:        inv.Date.Format("02/01/2006"),
		client:      clientBlock(inv.Client),
		lines:       lines,
		totals:      pdfTotals{inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Total, inv.ShowTax},
		paid:        &inv.PaidAmount,
		companyName: companyName,
		currency:    currency,
		storagePath: storagePath,
	})
}

// GenerateQuotationPDF renders a quotation as an A4 PDF and returns the file path.
func GenerateQuotationPDF(q *model.Quotation, companyName, currency, storagePath string) (string, error) {
	lines := make([]pdfLine, 0, len(q.Items))
	for _, item := range q.Items {
		lines = append(lines, pdfLine{name: item.ProductName, quantity: item.Quantity, price: item.Price, total: item.Total})
	}
	footer := ""
	if q.ExpiryDate != nil {
		footer = "Offre valable jusqu'au " + q.ExpiryDate.Format("02/01/2006")
	}
	return renderDocument(documentData{
		title:       "DEVIS",
		number:      q.QuotationNumber,
		date:        q.Date.Format("02/01/2006"),
		client:      clientBlock(q.Client),
		lines:       lines,
		totals:      pdfTotals{q.Subtotal, q.TaxRate, q.TaxAmount, q.Total, true},
		footer:      footer,
		companyName: companyName,
		currency:    currency,
		storagePath: storagePath,
	})
}

// GenerateDeliveryNotePDF renders a delivery note as an A4 PDF and returns the
// file path. Item serials are listed under each line so the receiver can check
// the shipped units.
func GenerateDeliveryNotePDF(n *model.DeliveryNote, companyName, currency, storagePath string) (string, error) {
	lines := make([]pdfLine, 0, len(n.Items))
	for _, item := range n.Items {
		l := pdfLine{name: item.ProductName, quantity: item.Quantity, price: item.Price}
		l.total = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if item.SerialNumbers != nil {
			l.serials = splitSerialJSON(*item.SerialNumbers)
		}
		lines = append(lines, l)
	}
	footer := ""
	if n.DeliveredBy != nil {
		footer = "Livré par " + *n.DeliveredBy
	}
	return renderDocument(documentData{
		title:       "BON DE LIVRAISON",
		number:      n.DeliveryNoteNumber,
		date:        n.Date.Format("02/01/2006"),
		client:      clientBlock(n.Client),
		lines:       lines,
		totals:      pdfTotals{n.Subtotal, n.TaxRate, n.TaxAmount, n.Total, true},
		footer:      footer,
		companyName: companyName,
		currency:    currency,
		storagePath: storagePath,
	})
}

type documentData struct {
	title       string
	number      string
	date        string
	client      []string
	lines       []pdfLine
	totals      pdfTotals
	paid        *decimal.Decimal
	footer      string
	companyName string
	currency    string
	storagePath string
}

func renderDocument(d documentData) (string, error) {
	if err := os.MkdirAll(d.storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(d.storagePath, sanitizeFileName(d.number)+".pdf")

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, d.companyName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 8, fmt.Sprintf("%s %s", d.title, d.number), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Date : "+d.date, "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Client block ──────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(contentW, 6, "Client", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, line := range d.client {
		pdf.CellFormat(contentW, 5, line, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// ── Item table ────────────────────────────────────────────────────────────
	col1 := contentW * 0.46 // description
	col2 := contentW * 0.12 // qty
	col3 := contentW * 0.21 // unit price
	col4 := contentW * 0.21 // line total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 7, "Désignation", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Qté", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 7, "P.U.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, line := range d.lines {
		name := line.name
		if len(name) > 48 {
			name = name[:47] + "…"
		}
		pdf.CellFormat(col1, 6, name, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("%d", line.quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, line.price.StringFixed(0), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, line.total.StringFixed(0), "", 1, "R", false, 0, "")
		if len(line.serials) > 0 {
			pdf.SetFont("Helvetica", "I", 7)
			pdf.CellFormat(contentW, 4, "  "+strings.Join(line.serials, ", "), "", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
		}
	}
	pdf.Ln(3)

	// ── Totals ────────────────────────────────────────────────────────────────
	labelW := col1 + col2 + col3
	if d.totals.showTax {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(labelW, 6, "Sous-total HT :", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, d.totals.subtotal.StringFixed(0)+" "+d.currency, "", 1, "R", false, 0, "")
		pdf.CellFormat(labelW, 6, fmt.Sprintf("TVA (%s%%) :", d.totals.taxRate.StringFixed(0)), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, d.totals.taxAmt.StringFixed(0)+" "+d.currency, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 8, "TOTAL :", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 8, d.totals.total.StringFixed(0)+" "+d.currency, "", 1, "R", false, 0, "")

	if d.paid != nil && d.paid.IsPositive() {
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(labelW, 6, "Payé :", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, d.paid.StringFixed(0)+" "+d.currency, "", 1, "R", false, 0, "")
		remaining := d.totals.total.Sub(*d.paid)
		pdf.CellFormat(labelW, 6, "Reste à payer :", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, remaining.StringFixed(0)+" "+d.currency, "", 1, "R", false, 0, "")
	}

	if d.footer != "" {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(contentW, 5, d.footer, "", 1, "L", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write %s: %w", filePath, err)
	}
	return filePath, nil
}

func clientBlock(c *model.Client) []string {
	if c == nil {
		return []string{"-"}
	}
	lines := []string{c.Name}
	if c.Address != nil && *c.Address != "" {
		lines = append(lines, *c.Address)
	}
	if c.City != nil && *c.City != "" {
		lines = append(lines, *c.City+", "+c.Country)
	}
	if c.Phone != nil && *c.Phone != "" {
		lines = append(lines, *c.Phone)
	}
	return lines
}

// splitSerialJSON parses the stored JSON array of serials leniently; a
// malformed value degrades to an empty list rather than failing the render.
func splitSerialJSON(raw string) []string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sanitizeFileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ':
			return '_'
		}
		return r
	}, s)
}
