package worker

// email_worker.go
// Processes email jobs from QueueEmail: sends quotation / invoice PDFs to
// client emails via SMTP, with exponential backoff and DLQ on exhaustion.

import (
	"context"
	"encoding/json"

	"github.com/abdoul9859/techplus/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EmailWorker processes email jobs from QueueEmail.
type EmailWorker struct {
	mailer *infra.Mailer
	rdb    *redis.Client
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer *infra.Mailer, rdb *redis.Client) *EmailWorker {
	return &EmailWorker{mailer: mailer, rdb: rdb}
}

// Process sends the email with its PDF attachment.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return
	}

	sendErr := withRetry(ctx, 3, func(attempt int) error {
		err := w.mailer.SendDocument(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
		if err != nil {
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("to", payload.ToEmail).
				Msg("email_worker: send attempt failed, retrying")
		}
		return err
	})
	if sendErr != nil {
		log.Error().Err(sendErr).Str("to", payload.ToEmail).Msg("email_worker: failed after all retries")
		SendToDLQ(ctx, w.rdb, QueueEmail, JobEmail, raw, sendErr.Error(), 3)
		return
	}
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: document sent")
}
