package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/model"
	"github.com/abdoul9859/techplus/internal/repository"

	"gorm.io/gorm"
)

// Keys that are always written at the global scope, whoever saves them.
var globalSettingKeys = map[string]bool{
	"appSettings":     true,
	"INVOICE_COMPANY": true,
}

const paymentMethodsKey = "INVOICE_PAYMENT_METHODS"

var defaultPaymentMethods = []string{
	"Espèces", "Virement bancaire", "Mobile Money", "Chèque", "Carte bancaire",
}

// SettingService serves the key/value preference store. Reads resolve the
// per-user row first and fall back to the global one; a missing key yields a
// JSON null rather than an error so the frontend can treat it as unset.
type SettingService interface {
	List(ctx context.Context, userID uint) (map[string]json.RawMessage, error)
	Get(ctx context.Context, userID uint, key string) (json.RawMessage, error)
	Set(ctx context.Context, userID uint, key string, value json.RawMessage) error
	Delete(ctx context.Context, userID uint, key string) error

	PaymentMethods(ctx context.Context, userID uint) ([]string, error)
	SetPaymentMethods(ctx context.Context, methods []string) ([]string, error)

	ScanHistory(ctx context.Context, userID uint, limit int) ([]dto.ScanHistoryEntry, error)
	AddScan(ctx context.Context, userID uint, req dto.AddScanRequest) error
	ClearScanHistory(ctx context.Context, userID uint) error
}

type settingService struct {
	repo repository.SettingRepository
	now  func() time.Time
}

func NewSettingService(repo repository.SettingRepository) SettingService {
	return &settingService{repo: repo, now: time.Now}
}

// ── Key/value store ──────────────────────────────────────────────────────────

func (s *settingService) List(ctx context.Context, userID uint) (map[string]json.RawMessage, error) {
	settings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(settings))
	for _, st := range settings {
		out[st.SettingKey] = rawValue(st.SettingValue)
	}
	return out, nil
}

func (s *settingService) Get(ctx context.Context, userID uint, key string) (json.RawMessage, error) {
	setting, err := s.repo.Find(ctx, &userID, key)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting, err = s.repo.Find(ctx, nil, key)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return json.RawMessage("null"), nil
		}
		return nil, err
	}
	return rawValue(setting.SettingValue), nil
}

func (s *settingService) Set(ctx context.Context, userID uint, key string, value json.RawMessage) error {
	var owner *uint
	if !globalSettingKeys[key] {
		owner = &userID
	}

	stored := string(value)
	if stored == "" {
		stored = "null"
	} else if !json.Valid(value) {
		// Legacy clients post bare strings; store them as JSON strings.
		b, err := json.Marshal(string(value))
		if err != nil {
			return err
		}
		stored = string(b)
	}

	setting, err := s.repo.Find(ctx, owner, key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		setting = &model.UserSetting{UserID: owner, SettingKey: key}
	}
	setting.SettingValue = stored
	setting.UpdatedAt = s.now()
	return s.repo.Save(ctx, setting)
}

func (s *settingService) Delete(ctx context.Context, userID uint, key string) error {
	if _, err := s.repo.Find(ctx, &userID, key); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.NotFound("setting not found")
		}
		return err
	}
	return s.repo.Delete(ctx, &userID, key)
}

// ── Payment methods ──────────────────────────────────────────────────────────
// Stored globally under a dedicated key as a JSON array; the built-in list
// applies until someone saves their own.

func (s *settingService) PaymentMethods(ctx context.Context, userID uint) ([]string, error) {
	setting, err := s.repo.Find(ctx, &userID, paymentMethodsKey)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		setting, err = s.repo.Find(ctx, nil, paymentMethodsKey)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return append([]string(nil), defaultPaymentMethods...), nil
		}
		return nil, err
	}

	var methods []string
	if json.Unmarshal([]byte(setting.SettingValue), &methods) != nil || len(normalizeMethods(methods)) == 0 {
		return append([]string(nil), defaultPaymentMethods...), nil
	}
	return normalizeMethods(methods), nil
}

func (s *settingService) SetPaymentMethods(ctx context.Context, methods []string) ([]string, error) {
	cleaned := normalizeMethods(methods)
	b, err := json.Marshal(cleaned)
	if err != nil {
		return nil, err
	}

	setting, err := s.repo.Find(ctx, nil, paymentMethodsKey)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		setting = &model.UserSetting{SettingKey: paymentMethodsKey}
	}
	setting.SettingValue = string(b)
	setting.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, setting); err != nil {
		return nil, err
	}
	return cleaned, nil
}

// ── Scan history ─────────────────────────────────────────────────────────────

func (s *settingService) ScanHistory(ctx context.Context, userID uint, limit int) ([]dto.ScanHistoryEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	scans, err := s.repo.ListScans(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ScanHistoryEntry, 0, len(scans))
	for _, scan := range scans {
		entry := dto.ScanHistoryEntry{
			ScanID:      scan.ScanID,
			Barcode:     scan.Barcode,
			ProductName: scan.ProductName,
			ScanType:    scan.ScanType,
			ScannedAt:   scan.ScannedAt.Format(time.RFC3339),
		}
		if scan.ResultData != nil {
			entry.ResultData = rawValue(*scan.ResultData)
		}
		out = append(out, entry)
	}
	return out, nil
}

func (s *settingService) AddScan(ctx context.Context, userID uint, req dto.AddScanRequest) error {
	scan := model.ScanHistory{
		UserID:      userID,
		Barcode:     strings.TrimSpace(req.Barcode),
		ProductName: req.ProductName,
		ScanType:    req.ScanType,
		ScannedAt:   s.now(),
	}
	if scan.ScanType == "" {
		scan.ScanType = "product"
	}
	if len(req.ResultData) > 0 {
		data := string(req.ResultData)
		scan.ResultData = &data
	}
	return s.repo.CreateScan(ctx, &scan)
}

func (s *settingService) ClearScanHistory(ctx context.Context, userID uint) error {
	return s.repo.ClearScans(ctx, userID)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// rawValue returns the stored text as-is when it already is JSON, otherwise
// wrapped into a JSON string (values written before the store enforced JSON).
func rawValue(stored string) json.RawMessage {
	if json.Valid([]byte(stored)) {
		return json.RawMessage(stored)
	}
	b, err := json.Marshal(stored)
	if err != nil {
		return json.RawMessage("null")
	}
	return json.RawMessage(b)
}

func normalizeMethods(methods []string) []string {
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		if t := strings.TrimSpace(m); t != "" {
			out = append(out, t)
		}
	}
	return out
}
