package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/gradebook-api/internal/service"
	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
	"github.com/schoolcore/gradebook-api/pkg/response"
)

// ResultHandler exposes result aggregation and export endpoints.
type ResultHandler struct {
	results *service.ResultService
	exports *service.ExportService
}

// NewResultHandler constructs handler.
func NewResultHandler(results *service.ResultService, exports *service.ExportService) *ResultHandler {
	return &ResultHandler{results: results, exports: exports}
}

// StudentReport godoc
// @Summary Get a student's scores across subjects in a class
// @Tags Results
// @Produce json
// @Param id path string true "Student ID"
// @Param classId query string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /results/students/{id} [get]
func (h *ResultHandler) StudentReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	report, err := h.results.StudentReport(c.Request.Context(), *claims, c.Param("id"), c.Query("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// MultiTermReport godoc
// @Summary Get a student's cumulative results across sessions and terms
// @Tags Results
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /results/students/{id}/report [get]
func (h *ResultHandler) MultiTermReport(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	report, err := h.results.MultiTermReport(c.Request.Context(), *claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// ClassResults godoc
// @Summary Get the class result sheet for the active session/term
// @Tags Results
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /results/classes/{id} [get]
func (h *ResultHandler) ClassResults(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	sheet, err := h.results.ClassResults(c.Request.Context(), *claims, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sheet, nil)
}

// SubjectStatistics godoc
// @Summary Get aggregated totals for a subject in a class
// @Tags Results
// @Produce json
// @Param id path string true "Class ID"
// @Param subjectId path string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /results/classes/{id}/subjects/{subjectId}/stats [get]
func (h *ResultHandler) SubjectStatistics(c *gin.Context) {
	stats, err := h.results.SubjectStatistics(c.Request.Context(), c.Param("id"), c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Export godoc
// @Summary Export the class result sheet as CSV or PDF
// @Tags Results
// @Produce octet-stream
// @Param id path string true "Class ID"
// @Param format query string true "Export format (csv or pdf)"
// @Success 200 {file} binary
// @Router /results/classes/{id}/export [get]
func (h *ResultHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	file, err := h.exports.ClassSheet(c.Request.Context(), *claims, c.Param("id"), c.DefaultQuery("format", service.FormatCSV))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
