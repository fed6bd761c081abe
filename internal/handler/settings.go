package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/middleware"
	"github.com/abdoul9859/techplus/internal/service"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct{ svc service.SettingService }

func NewSettingsHandler(svc service.SettingService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

func (h *SettingsHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	data, err := h.svc.List(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SettingsMapResponse{Data: data})
}

func (h *SettingsHandler) Get(c *gin.Context) {
	claims := middleware.GetClaims(c)
	data, err := h.svc.Get(c.Request.Context(), claims.UserID, c.Param("key"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SettingResponse{Data: data})
}

// Set accepts either {"value": ...} or the bare JSON value as the body.
func (h *SettingsHandler) Set(c *gin.Context) {
	claims := middleware.GetClaims(c)
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("unreadable body"))
		return
	}
	var envelope dto.SettingValueRequest
	if json.Unmarshal(raw, &envelope) == nil && envelope.Value != nil {
		raw = envelope.Value
	}
	if err := h.svc.Set(c.Request.Context(), claims.UserID, c.Param("key"), raw); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SettingsHandler) Delete(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.svc.Delete(c.Request.Context(), claims.UserID, c.Param("key")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ── Payment methods ──────────────────────────────────────────────────────────

func (h *SettingsHandler) PaymentMethods(c *gin.Context) {
	claims := middleware.GetClaims(c)
	methods, err := h.svc.PaymentMethods(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentMethodsResponse{Data: methods})
}

func (h *SettingsHandler) SetPaymentMethods(c *gin.Context) {
	var req dto.PaymentMethodsRequest
	if !bindAndValidate(c, &req) {
		return
	}
	methods, err := h.svc.SetPaymentMethods(c.Request.Context(), req.Methods)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaymentMethodsResponse{Data: methods})
}

// ── Scan history ─────────────────────────────────────────────────────────────

func (h *SettingsHandler) ScanHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	entries, err := h.svc.ScanHistory(c.Request.Context(), claims.UserID, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ScanHistoryResponse{Data: entries})
}

func (h *SettingsHandler) AddScan(c *gin.Context) {
	var req dto.AddScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	if err := h.svc.AddScan(c.Request.Context(), claims.UserID, req); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *SettingsHandler) ClearScanHistory(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.svc.ClearScanHistory(c.Request.Context(), claims.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
