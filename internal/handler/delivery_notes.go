package handler

import (
	"net/http"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/dto"
	"github.com/abdoul9859/techplus/internal/service"

	"github.com/gin-gonic/gin"
)

type DeliveryNotesHandler struct{ svc service.DeliveryNoteService }

func NewDeliveryNotesHandler(svc service.DeliveryNoteService) *DeliveryNotesHandler {
	return &DeliveryNotesHandler{svc: svc}
}

func (h *DeliveryNotesHandler) Get(c *gin.Context) {
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

func (h *DeliveryNotesHandler) List(c *gin.Context) {
	var filter dto.DeliveryNoteFilter
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

func (h *DeliveryNotesHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateDeliveryNoteRequest
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

func (h *DeliveryNotesHandler) Delete(c *gin.Context) {
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

// SetStatus advances the delivery lifecycle (en_preparation → en_cours →
// livré, annulé from any active state).
func (h *DeliveryNotesHandler) SetStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.DeliveryNoteStatusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Sign records the receiver's signature on delivery.
func (h *DeliveryNotesHandler) Sign(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req dto.DeliverySignatureRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Sign(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
