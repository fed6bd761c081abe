package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"
	"github.com/abdoul9859/techplus/internal/repository"
	"github.com/abdoul9859/techplus/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var importTypes = map[string]bool{
	"products":  true,
	"clients":   true,
	"suppliers": true,
}

type ImportService interface {
	// CreateJob stores the uploaded file, registers the job and hands it to
	// the worker pool. Returns immediately; progress is polled via Get.
	CreateJob(ctx context.Context, importType, fileName string, src io.Reader, createdBy *uint) (*dto.ImportJobResponse, error)
	Get(ctx context.Context, id string) (*dto.ImportJobDetailResponse, error)
	List(ctx context.Context, limit int) ([]dto.ImportJobResponse, error)
}

type importService struct {
	repo       repository.ImportRepository
	dispatcher *worker.Dispatcher
	tempPath   string
}

func NewImportService(repo repository.ImportRepository, dispatcher *worker.Dispatcher, tempPath string) ImportService {
	return &importService{repo: repo, dispatcher: dispatcher, tempPath: tempPath}
}

func (s *importService) CreateJob(ctx context.Context, importType, fileName string, src io.Reader, createdBy *uint) (*dto.ImportJobResponse, error) {
	if !importTypes[importType] {
		return nil, apierror.Business(apierror.CodeInvalidTransition, "unknown import type")
	}
	if filepath.Ext(fileName) != ".xlsx" {
		return nil, apierror.Business(apierror.CodeInvalidTransition, "only .xlsx files are supported")
	}

	id := uuid.New()
	if err := os.MkdirAll(s.tempPath, 0755); err != nil {
		return nil, fmt.Errorf("import: create temp dir: %w", err)
	}
	filePath := filepath.Join(s.tempPath, id.String()+".xlsx")
	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("import: store upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(filePath)
		return nil, fmt.Errorf("import: store upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("import: store upload: %w", err)
	}

	job := model.ImportJob{
		ID:        id,
		Type:      importType,
		Status:    model.ImportPending,
		FileName:  fileName,
		FilePath:  filePath,
		CreatedBy: createdBy,
	}
	if err := s.repo.CreateJob(ctx, &job); err != nil {
		os.Remove(filePath)
		return nil, err
	}

	if err := s.dispatcher.EnqueueImport(ctx, worker.ImportJobPayload{JobID: id.String()}); err != nil {
		msg := "failed to enqueue import job"
		_ = s.repo.SetJobStatus(ctx, id, model.ImportFailed, &msg)
		return nil, err
	}
	return importJobToResponse(&job), nil
}

func (s *importService) Get(ctx context.Context, id string) (*dto.ImportJobDetailResponse, error) {
	jobID, err := uuid.Parse(id)
	if err != nil {
		return nil, apierror.NotFound("import job not found")
	}
	job, err := s.repo.FindJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("import job not found")
		}
		return nil, err
	}
	logs, err := s.repo.ListLogs(ctx, jobID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ImportJobDetailResponse{
		ImportJobResponse: *importJobToResponse(job),
		Logs:              make([]dto.ImportLogResponse, 0, len(logs)),
	}
	for _, l := range logs {
		resp.Logs = append(resp.Logs, dto.ImportLogResponse{
			Level:     l.Level,
			Message:   l.Message,
			CreatedAt: l.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

func (s *importService) List(ctx context.Context, limit int) ([]dto.ImportJobResponse, error) {
	jobs, err := s.repo.ListJobs(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ImportJobResponse, 0, len(jobs))
	for i := range jobs {
		out = append(out, *importJobToResponse(&jobs[i]))
	}
	return out, nil
}

func importJobToResponse(j *model.ImportJob) *dto.ImportJobResponse {
	resp := &dto.ImportJobResponse{
		ID:               j.ID.String(),
		Type:             j.Type,
		Status:           j.Status,
		FileName:         j.FileName,
		TotalRecords:     j.TotalRecords,
		ProcessedRecords: j.ProcessedRecords,
		SuccessRecords:   j.SuccessRecords,
		ErrorRecords:     j.ErrorRecords,
		ErrorMessage:     j.ErrorMessage,
		CreatedAt:        j.CreatedAt.Format(time.RFC3339),
	}
	if j.CompletedAt != nil {
		s := j.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}
