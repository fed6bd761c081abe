package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueDocuments = "jobs:documents"
	QueueEmail     = "jobs:email"
	QueueImports   = "jobs:imports"
)

const (
	JobDocumentEmail = "document_email"
	JobEmail         = "email"
	JobImport        = "import"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// DocumentEmailPayload asks the document worker to render a quotation or
// invoice PDF and mail it to the document's client.
type DocumentEmailPayload struct {
	DocumentType string `json:"document_type"` // quotation | invoice
	DocumentID   uint   `json:"document_id"`
}

// EmailJobPayload is a prepared email with an optional PDF attachment.
type EmailJobPayload struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path"`
}

// ImportJobPayload points the import worker at an uploaded Excel file.
type ImportJobPayload struct {
	JobID string `json:"job_id"`
}

// EnqueueDocumentEmail pushes a render-and-mail job to Redis.
func (d *Dispatcher) EnqueueDocumentEmail(ctx context.Context, payload DocumentEmailPayload) error {
	return d.enqueue(ctx, QueueDocuments, JobDocumentEmail, payload)
}

// EnqueueEmail pushes a prepared email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload EmailJobPayload) error {
	return d.enqueue(ctx, QueueEmail, JobEmail, payload)
}

// EnqueueImport pushes an Excel import job to Redis.
func (d *Dispatcher) EnqueueImport(ctx context.Context, payload ImportJobPayload) error {
	return d.enqueue(ctx, QueueImports, JobImport, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers routes dequeued jobs to their processors.
type Handlers struct {
	Document *DocumentWorker
	Email    *EmailWorker
	Import   *ImportWorker
}

// StartWorkerPool launches numWorkers goroutines consuming all queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers *Handlers) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, i, handlers)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, id int, handlers *Handlers) {
	queues := []string{QueueDocuments, QueueEmail, QueueImports}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	log.Info().Str("type", job.Type).Str("queue", queue).Msg("processing job")
	switch job.Type {
	case JobDocumentEmail:
		handlers.Document.Process(ctx, job.Payload)
	case JobEmail:
		handlers.Email.Process(ctx, job.Payload)
	case JobImport:
		handlers.Import.Process(ctx, job.Payload)
	default:
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "unknown job type", 0)
	}
}
