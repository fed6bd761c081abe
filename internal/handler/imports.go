package handler

import (
	"net/http"
	"strconv"

	"github.com/abdoul9859/techplus/internal/apierror"
	"github.com/abdoul9859/techplus/internal/middleware"
	"github.com/abdoul9859/techplus/internal/service"

	"github.com/gin-gonic/gin"
)

type ImportsHandler struct{ svc service.ImportService }

func NewImportsHandler(svc service.ImportService) *ImportsHandler {
	return &ImportsHandler{svc: svc}
}

// Create accepts a multipart .xlsx upload and queues the import. Responds 202
// with the job id; progress is polled via Get.
func (h *ImportsHandler) Create(c *gin.Context) {
	importType := c.PostForm("type")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("missing file upload"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("unreadable file upload"))
		return
	}
	defer file.Close()

	var createdBy *uint
	if claims := middleware.GetClaims(c); claims != nil {
		createdBy = &claims.UserID
	}

	resp, err := h.svc.CreateJob(c.Request.Context(), importType, fileHeader.Filename, file, createdBy)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resp)
}

// Get returns job progress with its log lines.
func (h *ImportsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ImportsHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	resp, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
