package repository

import (
	"context"
	"time"

	"github.com/abdoul9859/techplus/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ImportRepository interface {
	CreateJob(ctx context.Context, job *model.ImportJob) error
	FindJobByID(ctx context.Context, id uuid.UUID) (*model.ImportJob, error)
	ListJobs(ctx context.Context, limit int) ([]model.ImportJob, error)
	UpdateJob(ctx context.Context, job *model.ImportJob) error
	SetJobStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string) error
	IncrementCounters(ctx context.Context, id uuid.UUID, processed, success, failed int) error
	AppendLog(ctx context.Context, log *model.ImportLog) error
	ListLogs(ctx context.Context, jobID uuid.UUID) ([]model.ImportLog, error)
}

type importRepo struct{ db *gorm.DB }

func NewImportRepository(db *gorm.DB) ImportRepository { return &importRepo{db: db} }

func (r *importRepo) CreateJob(ctx context.Context, job *model.ImportJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *importRepo) FindJobByID(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	var job model.ImportJob
	err := r.db.WithContext(ctx).First(&job, "id = ?", id).Error
	return &job, err
}

func (r *importRepo) ListJobs(ctx context.Context, limit int) ([]model.ImportJob, error) {
	var jobs []model.ImportJob
	if limit <= 0 {
		limit = 50
	}
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&jobs).Error
	return jobs, err
}

func (r *importRepo) UpdateJob(ctx context.Context, job *model.ImportJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *importRepo) SetJobStatus(ctx context.Context, id uuid.UUID, status string, errMsg *string) error {
	updates := map[string]interface{}{"status": status}
	if errMsg != nil {
		updates["error_message"] = *errMsg
	}
	if status == model.ImportCompleted || status == model.ImportFailed {
		updates["completed_at"] = time.Now()
	}
	return r.db.WithContext(ctx).Model(&model.ImportJob{}).Where("id = ?", id).Updates(updates).Error
}

func (r *importRepo) IncrementCounters(ctx context.Context, id uuid.UUID, processed, success, failed int) error {
	return r.db.WithContext(ctx).Model(&model.ImportJob{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed_records": gorm.Expr("processed_records + ?", processed),
			"success_records":   gorm.Expr("success_records + ?", success),
			"error_records":     gorm.Expr("error_records + ?", failed),
		}).Error
}

func (r *importRepo) AppendLog(ctx context.Context, log *model.ImportLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *importRepo) ListLogs(ctx context.Context, jobID uuid.UUID) ([]model.ImportLog, error) {
	var logs []model.ImportLog
	err := r.db.WithContext(ctx).Where("job_id = ?", jobID).Order("created_at ASC").Find(&logs).Error
	return logs, err
}
