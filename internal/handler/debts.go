package handler

import (
	"net/http"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/service"

	"github.com/gin-gonic/gin"
)

type DebtsHandler struct{ svc service.DebtService }

func NewDebtsHandler(svc service.DebtService) *DebtsHandler { return &DebtsHandler{svc: svc} }

// Overview unifies supplier payables and client receivables in one listing.
// Client entries are derived from open invoices and are read-only here.
func (h *DebtsHandler) Overview(c *gin.Context) {
	resp, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DebtsHandler) Create(c *gin.Context) {
	var req dto.CreateDebtRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DebtsHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DebtsHandler) List(c *gin.Context) {
	var filter dto.DebtFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DebtsHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDebtRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DebtsHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddPayment appends a supplier debt payment, capped at the remaining amount.
func (h *DebtsHandler) AddPayment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.AddDebtPaymentRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddPayment(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}
