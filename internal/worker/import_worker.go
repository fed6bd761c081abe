package worker

// import_worker.go
// Processes Excel bulk imports from QueueImports. Each job points at an
// uploaded .xlsx file; rows are mapped onto products, clients or suppliers.
// Progress counters and per-row logs land on the ImportJob so the API can
// report them while the job runs.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/abdoul9859/techplus/internal/model"
	"github.com/abdoul9859/techplus/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ImportWorker parses uploaded Excel files row by row.
type ImportWorker struct {
	jobs      repository.ImportRepository
	products  repository.ProductRepository
	clients   repository.ClientRepository
	suppliers repository.SupplierRepository
	movements repository.StockMovementRepository
}

func NewImportWorker(
	jobs repository.ImportRepository,
	products repository.ProductRepository,
	clients repository.ClientRepository,
	suppliers repository.SupplierRepository,
	movements repository.StockMovementRepository,
) *ImportWorker {
	return &ImportWorker{
		jobs:      jobs,
		products:  products,
		clients:   clients,
		suppliers: suppliers,
		movements: movements,
	}
}

// Process runs one import job to completion.
func (w *ImportWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ImportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("import_worker: invalid payload")
		return
	}
	jobID, err := uuid.Parse(payload.JobID)
	if err != nil {
		log.Error().Str("job_id", payload.JobID).Msg("import_worker: invalid job id")
		return
	}

	job, err := w.jobs.FindJobByID(ctx, jobID)
	if err != nil {
		log.Error().Err(err).Str("job_id", payload.JobID).Msg("import_worker: job not found")
		return
	}

	if err := w.jobs.SetJobStatus(ctx, jobID, model.ImportRunning, nil); err != nil {
		log.Error().Err(err).Str("job_id", payload.JobID).Msg("import_worker: failed to mark running")
		return
	}
	w.logLine(ctx, jobID, "info", fmt.Sprintf("Début du traitement du fichier %s", job.FileName))

	if err := w.processFile(ctx, job); err != nil {
		msg := err.Error()
		_ = w.jobs.SetJobStatus(ctx, jobID, model.ImportFailed, &msg)
		w.logLine(ctx, jobID, "error", "Import échoué: "+msg)
		log.Error().Err(err).Str("job_id", payload.JobID).Msg("import_worker: failed")
		return
	}

	_ = w.jobs.SetJobStatus(ctx, jobID, model.ImportCompleted, nil)
	w.logLine(ctx, jobID, "success", "Import terminé")
	log.Info().Str("job_id", payload.JobID).Str("type", job.Type).Msg("import_worker: completed")

	// The uploaded file is a temp artifact; the job row keeps the history.
	_ = os.Remove(job.FilePath)
}

func (w *ImportWorker) processFile(ctx context.Context, job *model.ImportJob) error {
	f, err := excelize.OpenFile(job.FilePath)
	if err != nil {
		return fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return fmt.Errorf("file has no data rows")
	}

	header := headerIndex(rows[0])
	dataRows := rows[1:]

	job.TotalRecords = len(dataRows)
	if err := w.jobs.UpdateJob(ctx, job); err != nil {
		return err
	}
	w.logLine(ctx, job.ID, "info", fmt.Sprintf("%d lignes à traiter", len(dataRows)))

	for i, row := range dataRows {
		var rowErr error
		switch job.Type {
		case "products":
			rowErr = w.importProduct(ctx, header, row)
		case "clients":
			rowErr = w.importClient(ctx, header, row)
		case "suppliers":
			rowErr = w.importSupplier(ctx, header, row)
		default:
			return fmt.Errorf("unknown import type %q", job.Type)
		}

		if rowErr != nil {
			_ = w.jobs.IncrementCounters(ctx, job.ID, 1, 0, 1)
			w.logLine(ctx, job.ID, "error", fmt.Sprintf("Ligne %d: %v", i+2, rowErr))
		} else {
			_ = w.jobs.IncrementCounters(ctx, job.ID, 1, 1, 0)
		}

		if (i+1)%50 == 0 {
			w.logLine(ctx, job.ID, "info", fmt.Sprintf("Progression: %d/%d", i+1, len(dataRows)))
		}
	}
	return nil
}

func (w *ImportWorker) importProduct(ctx context.Context, header map[string]int, row []string) error {
	name := cell(header, row, "name", "nom")
	if name == "" {
		return fmt.Errorf("missing name")
	}

	price, err := parseDecimalCell(cell(header, row, "price", "prix"))
	if err != nil {
		return fmt.Errorf("invalid price: %w", err)
	}
	purchase, _ := parseDecimalCell(cell(header, row, "purchase_price", "prix_achat"))
	quantity := 0
	if q := cell(header, row, "quantity", "stock", "quantite"); q != "" {
		quantity, err = strconv.Atoi(q)
		if err != nil || quantity < 0 {
			return fmt.Errorf("invalid quantity %q", q)
		}
	}

	p := model.Product{
		Name:          name,
		Quantity:      quantity,
		Price:         price,
		PurchasePrice: purchase,
		Category:      cell(header, row, "category", "categorie"),
	}
	if desc := cell(header, row, "description"); desc != "" {
		p.Description = &desc
	}
	if brand := cell(header, row, "brand", "marque"); brand != "" {
		p.Brand = &brand
	}
	if barcode := cell(header, row, "barcode", "code_barre"); barcode != "" {
		inUse, err := w.products.BarcodeInUse(ctx, barcode, 0, 0)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("barcode %q already in use", barcode)
		}
		p.Barcode = &barcode
	}

	if err := w.products.Create(ctx, &p); err != nil {
		return err
	}
	if quantity > 0 {
		return w.movements.Create(ctx, &model.StockMovement{
			ProductID:     p.ProductID,
			Quantity:      quantity,
			MovementType:  model.MovementIn,
			ReferenceType: model.RefImport,
			UnitPrice:     &p.PurchasePrice,
		})
	}
	return nil
}

func (w *ImportWorker) importClient(ctx context.Context, header map[string]int, row []string) error {
	name := cell(header, row, "name", "nom")
	if name == "" {
		return fmt.Errorf("missing name")
	}
	c := model.Client{Name: name}
	if v := cell(header, row, "email"); v != "" {
		c.Email = &v
	}
	if v := cell(header, row, "phone", "telephone"); v != "" {
		c.Phone = &v
	}
	if v := cell(header, row, "address", "adresse"); v != "" {
		c.Address = &v
	}
	if v := cell(header, row, "city", "ville"); v != "" {
		c.City = &v
	}
	return w.clients.Create(ctx, &c)
}

func (w *ImportWorker) importSupplier(ctx context.Context, header map[string]int, row []string) error {
	name := cell(header, row, "name", "nom")
	if name == "" {
		return fmt.Errorf("missing name")
	}
	s := model.Supplier{Name: name}
	if v := cell(header, row, "email"); v != "" {
		s.Email = &v
	}
	if v := cell(header, row, "phone", "telephone"); v != "" {
		s.Phone = &v
	}
	if v := cell(header, row, "address", "adresse"); v != "" {
		s.Address = &v
	}
	if v := cell(header, row, "contact", "contact_person"); v != "" {
		s.ContactPerson = &v
	}
	return w.suppliers.Create(ctx, &s)
}

func (w *ImportWorker) logLine(ctx context.Context, jobID uuid.UUID, level, message string) {
	if err := w.jobs.AppendLog(ctx, &model.ImportLog{JobID: jobID, Level: level, Message: message}); err != nil {
		log.Warn().Err(err).Str("job_id", jobID.String()).Msg("import_worker: failed to append log")
	}
}

// headerIndex maps normalized column names to their positions.
func headerIndex(row []string) map[string]int {
	idx := make(map[string]int, len(row))
	for i, name := range row {
		key := strings.ToLower(strings.TrimSpace(name))
		key = strings.ReplaceAll(key, " ", "_")
		if key != "" {
			idx[key] = i
		}
	}
	return idx
}

// cell returns the first non-empty value among the candidate column names.
func cell(header map[string]int, row []string, names ...string) string {
	for _, name := range names {
		if i, ok := header[name]; ok && i < len(row) {
			if v := strings.TrimSpace(row[i]); v != "" {
				return v
			}
		}
	}
	return ""
}

func parseDecimalCell(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}
