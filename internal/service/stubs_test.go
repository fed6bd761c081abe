package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"
	"github.com/abdoul9859/techplus/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository stubs. Every DB() returns nil so runTx executes the
// transactional closures directly with a nil tx.

func strp(s string) *string { return &s }
func uintp(u uint) *uint    { return &u }
func intp(i int) *int       { return &i }

// ── Products ─────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	products    map[uint]*model.Product
	seq         uint
	variantSeq  uint
	invoiceRefs map[uint]int64
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{
		products:    make(map[uint]*model.Product),
		invoiceRefs: make(map[uint]int64),
	}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	r.seq++
	p.ProductID = r.seq
	for i := range p.Variants {
		r.variantSeq++
		p.Variants[i].VariantID = r.variantSeq
		p.Variants[i].ProductID = p.ProductID
	}
	r.products[p.ProductID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uint) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, _ dto.ProductFilter) ([]model.Product, int64, error) {
	var out []model.Product
	var ids []uint
	for id := range r.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		out = append(out, *r.products[id])
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ProductID] = p
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uint) error {
	delete(r.products, id)
	return nil
}

func (r *stubProductRepo) findVariant(id uint) *model.ProductVariant {
	for _, p := range r.products {
		for i := range p.Variants {
			if p.Variants[i].VariantID == id {
				return &p.Variants[i]
			}
		}
	}
	return nil
}

func (r *stubProductRepo) FindVariantByID(_ context.Context, id uint) (*model.ProductVariant, error) {
	if v := r.findVariant(id); v != nil {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) FindVariantBySerial(_ context.Context, serial string) (*model.ProductVariant, error) {
	for _, p := range r.products {
		for i := range p.Variants {
			if p.Variants[i].IMEISerial == serial {
				return &p.Variants[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) FindVariantByBarcode(_ context.Context, barcode string) (*model.ProductVariant, error) {
	for _, p := range r.products {
		for i := range p.Variants {
			if p.Variants[i].Barcode != nil && *p.Variants[i].Barcode == barcode {
				return &p.Variants[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) SearchVariantsBySerial(_ context.Context, fragment string, limit int) ([]model.ProductVariant, error) {
	var out []model.ProductVariant
	for _, p := range r.products {
		for i := range p.Variants {
			if strings.Contains(p.Variants[i].IMEISerial, fragment) {
				out = append(out, p.Variants[i])
				if len(out) == limit {
					return out, nil
				}
			}
		}
	}
	return out, nil
}

func (r *stubProductRepo) AvailableVariantCount(_ context.Context, productID uint) (int64, error) {
	var n int64
	if p, ok := r.products[productID]; ok {
		for i := range p.Variants {
			if !p.Variants[i].IsSold {
				n++
			}
		}
	}
	return n, nil
}

func (r *stubProductRepo) CountSoldVariants(_ context.Context, productID uint) (int64, error) {
	var n int64
	if p, ok := r.products[productID]; ok {
		for i := range p.Variants {
			if p.Variants[i].IsSold {
				n++
			}
		}
	}
	return n, nil
}

func (r *stubProductRepo) BarcodeInUse(_ context.Context, barcode string, excludeProductID, excludeVariantID uint) (bool, error) {
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode && p.ProductID != excludeProductID {
			return true, nil
		}
		for i := range p.Variants {
			v := &p.Variants[i]
			if v.Barcode != nil && *v.Barcode == barcode && v.VariantID != excludeVariantID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *stubProductRepo) SerialInUse(_ context.Context, serial string, excludeVariantID uint) (bool, error) {
	for _, p := range r.products {
		for i := range p.Variants {
			if p.Variants[i].IMEISerial == serial && p.Variants[i].VariantID != excludeVariantID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *stubProductRepo) CreateVariantTx(_ *gorm.DB, v *model.ProductVariant) error {
	r.variantSeq++
	v.VariantID = r.variantSeq
	p, ok := r.products[v.ProductID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Variants = append(p.Variants, *v)
	return nil
}

func (r *stubProductRepo) UpdateVariantTx(_ *gorm.DB, v *model.ProductVariant) error {
	stored := r.findVariant(v.VariantID)
	if stored == nil {
		return gorm.ErrRecordNotFound
	}
	*stored = *v
	return nil
}

func (r *stubProductRepo) DeleteVariantsTx(_ *gorm.DB, productID uint, variantIDs []uint) error {
	p, ok := r.products[productID]
	if !ok {
		return nil
	}
	drop := make(map[uint]bool, len(variantIDs))
	for _, id := range variantIDs {
		drop[id] = true
	}
	kept := p.Variants[:0]
	for _, v := range p.Variants {
		if !drop[v.VariantID] {
			kept = append(kept, v)
		}
	}
	p.Variants = kept
	return nil
}

func (r *stubProductRepo) MarkSoldTx(_ *gorm.DB, variantID uint) (int64, error) {
	v := r.findVariant(variantID)
	if v == nil || v.IsSold {
		return 0, nil
	}
	v.IsSold = true
	return 1, nil
}

func (r *stubProductRepo) MarkUnsoldTx(_ *gorm.DB, variantID uint) error {
	if v := r.findVariant(variantID); v != nil {
		v.IsSold = false
	}
	return nil
}

func (r *stubProductRepo) AdjustQuantityTx(_ *gorm.DB, productID uint, delta int) error {
	p, ok := r.products[productID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Quantity += delta
	return nil
}

func (r *stubProductRepo) ConsumeQuantityTx(_ *gorm.DB, productID uint, qty int) (int64, error) {
	p, ok := r.products[productID]
	if !ok || p.Quantity < qty {
		return 0, nil
	}
	p.Quantity -= qty
	return 1, nil
}

func (r *stubProductRepo) SyncQuantityTx(_ *gorm.DB, productID uint) error {
	p, ok := r.products[productID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n := 0
	for i := range p.Variants {
		if !p.Variants[i].IsSold {
			n++
		}
	}
	p.Quantity = n
	return nil
}

func (r *stubProductRepo) CountInvoiceRefs(_ context.Context, productID uint) (int64, error) {
	return r.invoiceRefs[productID], nil
}

func (r *stubProductRepo) DB() *gorm.DB { return nil }

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Invoices ─────────────────────────────────────────────────────────────────

type stubInvoiceRepo struct {
	invoices map[uint]*model.Invoice
	seq      uint
	itemSeq  uint
	paySeq   uint
	numSeq   int
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{invoices: make(map[uint]*model.Invoice)}
}

func (r *stubInvoiceRepo) CreateTx(_ *gorm.DB, inv *model.Invoice) error {
	r.seq++
	inv.InvoiceID = r.seq
	for i := range inv.Items {
		r.itemSeq++
		inv.Items[i].ItemID = r.itemSeq
		inv.Items[i].InvoiceID = inv.InvoiceID
	}
	r.invoices[inv.InvoiceID] = inv
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uint) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubInvoiceRepo) FindByIDForUpdate(_ *gorm.DB, id uint) (*model.Invoice, error) {
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

func (r *stubInvoiceRepo) List(_ context.Context, _ dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (r *stubInvoiceRepo) ListByClient(_ context.Context, clientID uint) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		if inv.ClientID == clientID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) ListOpen(_ context.Context) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range r.invoices {
		if inv.Status != model.InvoiceCancelled && inv.PaidAmount.LessThan(inv.Total) {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) Update(_ context.Context, inv *model.Invoice) error {
	r.invoices[inv.InvoiceID] = inv
	return nil
}

func (r *stubInvoiceRepo) UpdateTx(_ *gorm.DB, inv *model.Invoice) error {
	r.invoices[inv.InvoiceID] = inv
	return nil
}

func (r *stubInvoiceRepo) DeleteTx(_ *gorm.DB, id uint) error {
	delete(r.invoices, id)
	return nil
}

func (r *stubInvoiceRepo) ReplaceItemsTx(_ *gorm.DB, invoiceID uint, items []model.InvoiceItem) error {
	inv, ok := r.invoices[invoiceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		r.itemSeq++
		items[i].ItemID = r.itemSeq
		items[i].InvoiceID = invoiceID
	}
	inv.Items = items
	return nil
}

func (r *stubInvoiceRepo) CreatePaymentTx(_ *gorm.DB, p *model.InvoicePayment) error {
	inv, ok := r.invoices[p.InvoiceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.paySeq++
	p.PaymentID = r.paySeq
	inv.Payments = append(inv.Payments, *p)
	return nil
}

func (r *stubInvoiceRepo) NextNumber(_ *gorm.DB, prefix string) (string, error) {
	r.numSeq++
	return fmt.Sprintf("%s%04d", prefix, r.numSeq), nil
}

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

// ── Quotations ───────────────────────────────────────────────────────────────

type stubQuotationRepo struct {
	quotations map[uint]*model.Quotation
	seq        uint
	itemSeq    uint
	numSeq     int
}

func newStubQuotationRepo() *stubQuotationRepo {
	return &stubQuotationRepo{quotations: make(map[uint]*model.Quotation)}
}

func (r *stubQuotationRepo) CreateTx(_ *gorm.DB, q *model.Quotation) error {
	r.seq++
	q.QuotationID = r.seq
	for i := range q.Items {
		r.itemSeq++
		q.Items[i].ItemID = r.itemSeq
		q.Items[i].QuotationID = q.QuotationID
	}
	r.quotations[q.QuotationID] = q
	return nil
}

func (r *stubQuotationRepo) FindByID(_ context.Context, id uint) (*model.Quotation, error) {
	q, ok := r.quotations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return q, nil
}

func (r *stubQuotationRepo) FindByNumber(_ context.Context, number string) (*model.Quotation, error) {
	for _, q := range r.quotations {
		if q.QuotationNumber == number {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubQuotationRepo) List(_ context.Context, _ dto.QuotationFilter) ([]model.Quotation, int64, error) {
	var out []model.Quotation
	for _, q := range r.quotations {
		out = append(out, *q)
	}
	return out, int64(len(out)), nil
}

func (r *stubQuotationRepo) Update(_ context.Context, q *model.Quotation) error {
	r.quotations[q.QuotationID] = q
	return nil
}

func (r *stubQuotationRepo) UpdateTx(_ *gorm.DB, q *model.Quotation) error {
	r.quotations[q.QuotationID] = q
	return nil
}

func (r *stubQuotationRepo) Delete(_ context.Context, id uint) error {
	delete(r.quotations, id)
	return nil
}

func (r *stubQuotationRepo) ReplaceItemsTx(_ *gorm.DB, quotationID uint, items []model.QuotationItem) error {
	q, ok := r.quotations[quotationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		r.itemSeq++
		items[i].ItemID = r.itemSeq
		items[i].QuotationID = quotationID
	}
	q.Items = items
	return nil
}

func (r *stubQuotationRepo) NextNumber(_ *gorm.DB, prefix string) (string, error) {
	r.numSeq++
	return fmt.Sprintf("%s%04d", prefix, r.numSeq), nil
}

func (r *stubQuotationRepo) DB() *gorm.DB { return nil }

var _ repository.QuotationRepository = (*stubQuotationRepo)(nil)

// ── Clients / Suppliers ──────────────────────────────────────────────────────

type stubClientRepo struct {
	clients map[uint]*model.Client
	seq     uint
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[uint]*model.Client)}
}

func (r *stubClientRepo) Create(_ context.Context, c *model.Client) error {
	r.seq++
	c.ClientID = r.seq
	r.clients[c.ClientID] = c
	return nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id uint) (*model.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubClientRepo) List(_ context.Context, _ dto.ClientFilter) ([]model.Client, int64, error) {
	var out []model.Client
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubClientRepo) Update(_ context.Context, c *model.Client) error {
	r.clients[c.ClientID] = c
	return nil
}

func (r *stubClientRepo) Delete(_ context.Context, id uint) error {
	delete(r.clients, id)
	return nil
}

func (r *stubClientRepo) CountInvoices(_ context.Context, _ uint) (int64, error) {
	return 0, nil
}

var _ repository.ClientRepository = (*stubClientRepo)(nil)

// stubClientRepoWithInvoices overrides the deletion guard count.
type stubClientRepoWithInvoices struct {
	*stubClientRepo
	invoiceCount int64
}

func (r *stubClientRepoWithInvoices) CountInvoices(_ context.Context, _ uint) (int64, error) {
	return r.invoiceCount, nil
}

type stubSupplierRepo struct {
	suppliers map[uint]*model.Supplier
	seq       uint
	debtCount int64
}

func newStubSupplierRepo() *stubSupplierRepo {
	return &stubSupplierRepo{suppliers: make(map[uint]*model.Supplier)}
}

func (r *stubSupplierRepo) Create(_ context.Context, s *model.Supplier) error {
	r.seq++
	s.SupplierID = r.seq
	r.suppliers[s.SupplierID] = s
	return nil
}

func (r *stubSupplierRepo) FindByID(_ context.Context, id uint) (*model.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *stubSupplierRepo) List(_ context.Context) ([]model.Supplier, error) {
	var out []model.Supplier
	for _, s := range r.suppliers {
		out = append(out, *s)
	}
	return out, nil
}

func (r *stubSupplierRepo) Update(_ context.Context, s *model.Supplier) error {
	r.suppliers[s.SupplierID] = s
	return nil
}

func (r *stubSupplierRepo) Delete(_ context.Context, id uint) error {
	delete(r.suppliers, id)
	return nil
}

func (r *stubSupplierRepo) CountDebts(_ context.Context, _ uint) (int64, error) {
	return r.debtCount, nil
}

var _ repository.SupplierRepository = (*stubSupplierRepo)(nil)

// ── Delivery notes ───────────────────────────────────────────────────────────

type stubNoteRepo struct {
	notes   map[uint]*model.DeliveryNote
	seq     uint
	itemSeq uint
	numSeq  int
}

func newStubNoteRepo() *stubNoteRepo {
	return &stubNoteRepo{notes: make(map[uint]*model.DeliveryNote)}
}

func (r *stubNoteRepo) CreateTx(_ *gorm.DB, n *model.DeliveryNote) error {
	r.seq++
	n.DeliveryNoteID = r.seq
	for i := range n.Items {
		r.itemSeq++
		n.Items[i].ItemID = r.itemSeq
		n.Items[i].DeliveryNoteID = n.DeliveryNoteID
	}
	r.notes[n.DeliveryNoteID] = n
	return nil
}

func (r *stubNoteRepo) FindByID(_ context.Context, id uint) (*model.DeliveryNote, error) {
	n, ok := r.notes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return n, nil
}

func (r *stubNoteRepo) FindByInvoiceID(_ context.Context, invoiceID uint) (*model.DeliveryNote, error) {
	for _, n := range r.notes {
		if n.InvoiceID == invoiceID {
			return n, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubNoteRepo) List(_ context.Context, _ dto.DeliveryNoteFilter) ([]model.DeliveryNote, int64, error) {
	var out []model.DeliveryNote
	for _, n := range r.notes {
		out = append(out, *n)
	}
	return out, int64(len(out)), nil
}

func (r *stubNoteRepo) Update(_ context.Context, n *model.DeliveryNote) error {
	r.notes[n.DeliveryNoteID] = n
	return nil
}

func (r *stubNoteRepo) Delete(_ context.Context, id uint) error {
	delete(r.notes, id)
	return nil
}

func (r *stubNoteRepo) DeleteByInvoiceTx(_ *gorm.DB, invoiceID uint) error {
	for id, n := range r.notes {
		if n.InvoiceID == invoiceID {
			delete(r.notes, id)
		}
	}
	return nil
}

func (r *stubNoteRepo) ReplaceItemsTx(_ *gorm.DB, noteID uint, items []model.DeliveryNoteItem) error {
	n, ok := r.notes[noteID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for i := range items {
		r.itemSeq++
		items[i].ItemID = r.itemSeq
		items[i].DeliveryNoteID = noteID
	}
	n.Items = items
	return nil
}

func (r *stubNoteRepo) NextNumber(_ *gorm.DB, prefix string) (string, error) {
	r.numSeq++
	return fmt.Sprintf("%s%04d", prefix, r.numSeq), nil
}

func (r *stubNoteRepo) DB() *gorm.DB { return nil }

var _ repository.DeliveryNoteRepository = (*stubNoteRepo)(nil)

// ── Stock movements ──────────────────────────────────────────────────────────

type stubMovementRepo struct {
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	m.MovementID = uint(len(r.movements) + 1)
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) Create(ctx context.Context, m *model.StockMovement) error {
	return r.CreateTx(nil, m)
}

func (r *stubMovementRepo) List(_ context.Context, filter repository.StockMovementFilter) ([]model.StockMovement, int64, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if filter.ProductID != 0 && m.ProductID != filter.ProductID {
			continue
		}
		if filter.MovementType != "" && m.MovementType != filter.MovementType {
			continue
		}
		if filter.ReferenceType != "" && m.ReferenceType != filter.ReferenceType {
			continue
		}
		out = append(out, m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovementRepo) ListByProduct(_ context.Context, productID uint) ([]model.StockMovement, error) {
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// ── Supplier debts ───────────────────────────────────────────────────────────

type stubDebtRepo struct {
	debts  map[uint]*model.SupplierDebt
	seq    uint
	paySeq uint
}

func newStubDebtRepo() *stubDebtRepo {
	return &stubDebtRepo{debts: make(map[uint]*model.SupplierDebt)}
}

func (r *stubDebtRepo) Create(_ context.Context, d *model.SupplierDebt) error {
	r.seq++
	d.DebtID = r.seq
	r.debts[d.DebtID] = d
	return nil
}

func (r *stubDebtRepo) FindByID(_ context.Context, id uint) (*model.SupplierDebt, error) {
	d, ok := r.debts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *stubDebtRepo) FindByIDForUpdate(_ *gorm.DB, id uint) (*model.SupplierDebt, error) {
	d, ok := r.debts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *stubDebtRepo) List(_ context.Context, _ dto.DebtFilter) ([]model.SupplierDebt, int64, error) {
	var out []model.SupplierDebt
	for _, d := range r.debts {
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (r *stubDebtRepo) Update(_ context.Context, d *model.SupplierDebt) error {
	r.debts[d.DebtID] = d
	return nil
}

func (r *stubDebtRepo) UpdateTx(_ *gorm.DB, d *model.SupplierDebt) error {
	r.debts[d.DebtID] = d
	return nil
}

func (r *stubDebtRepo) Delete(_ context.Context, id uint) error {
	delete(r.debts, id)
	return nil
}

func (r *stubDebtRepo) CreatePaymentTx(_ *gorm.DB, p *model.SupplierDebtPayment) error {
	d, ok := r.debts[p.DebtID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.paySeq++
	p.PaymentID = r.paySeq
	d.Payments = append(d.Payments, *p)
	return nil
}

func (r *stubDebtRepo) DB() *gorm.DB { return nil }

var _ repository.DebtRepository = (*stubDebtRepo)(nil)

// ── Categories ───────────────────────────────────────────────────────────────

type stubCategoryRepo struct {
	categories map[uint]*model.Category
	seq        uint
	attrSeq    uint
}

func newStubCategoryRepo() *stubCategoryRepo {
	return &stubCategoryRepo{categories: make(map[uint]*model.Category)}
}

func (r *stubCategoryRepo) assignAttrIDs(categoryID uint, attrs []model.CategoryAttribute) {
	for i := range attrs {
		r.attrSeq++
		attrs[i].AttributeID = r.attrSeq
		attrs[i].CategoryID = categoryID
		for j := range attrs[i].Values {
			attrs[i].Values[j].AttributeID = attrs[i].AttributeID
		}
	}
}

func (r *stubCategoryRepo) Create(_ context.Context, c *model.Category) error {
	r.seq++
	c.CategoryID = r.seq
	r.assignAttrIDs(c.CategoryID, c.Attributes)
	r.categories[c.CategoryID] = c
	return nil
}

func (r *stubCategoryRepo) FindByID(_ context.Context, id uint) (*model.Category, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCategoryRepo) FindByName(_ context.Context, name string) (*model.Category, error) {
	for _, c := range r.categories {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	var out []model.Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (r *stubCategoryRepo) Update(_ context.Context, c *model.Category) error {
	if _, ok := r.categories[c.CategoryID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.categories[c.CategoryID] = c
	return nil
}

func (r *stubCategoryRepo) Delete(_ context.Context, id uint) error {
	delete(r.categories, id)
	return nil
}

func (r *stubCategoryRepo) ReplaceAttributes(_ context.Context, categoryID uint, attrs []model.CategoryAttribute) error {
	c, ok := r.categories[categoryID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	r.assignAttrIDs(categoryID, attrs)
	c.Attributes = attrs
	return nil
}

var _ repository.CategoryRepository = (*stubCategoryRepo)(nil)

// ── Seed helpers ─────────────────────────────────────────────────────────────

func seedClient(r *stubClientRepo, name string) *model.Client {
	c := &model.Client{Name: name, Country: "Sénégal", Email: strp(strings.ToLower(name) + "@test.sn")}
	_ = r.Create(context.Background(), c)
	return c
}

func seedPlainProduct(r *stubProductRepo, name string, qty int, price int64) *model.Product {
	p := &model.Product{
		Name:     name,
		Quantity: qty,
		Price:    decimal.NewFromInt(price),
		Category: "Accessoires",
	}
	_ = r.Create(context.Background(), p)
	return p
}

func seedVariantProduct(r *stubProductRepo, name string, price int64, serials ...string) *model.Product {
	p := &model.Product{
		Name:            name,
		Price:           decimal.NewFromInt(price),
		Category:        "Téléphones",
		HasUniqueSerial: true,
	}
	for _, s := range serials {
		p.Variants = append(p.Variants, model.ProductVariant{IMEISerial: s})
	}
	p.Quantity = len(p.Variants)
	_ = r.Create(context.Background(), p)
	return p
}
