package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/gradebook-api/internal/service"
	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
	"github.com/schoolcore/gradebook-api/pkg/response"
)

// SchemeHandler exposes grading scheme endpoints.
type SchemeHandler struct {
	schemes *service.SchemeService
}

// NewSchemeHandler constructs handler.
func NewSchemeHandler(schemes *service.SchemeService) *SchemeHandler {
	return &SchemeHandler{schemes: schemes}
}

// Create godoc
// @Summary Create grading scheme
// @Tags Grading Schemes
// @Accept json
// @Produce json
// @Param payload body service.CreateSchemeRequest true "Scheme payload"
// @Success 201 {object} response.Envelope
// @Router /grading-schemes [post]
func (h *SchemeHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateSchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scheme, err := h.schemes.Create(c.Request.Context(), *claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, scheme)
}

// Get godoc
// @Summary Get the caller's grading scheme for a class/subject
// @Tags Grading Schemes
// @Produce json
// @Param classId query string true "Class ID"
// @Param subjectId query string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /grading-schemes [get]
func (h *SchemeHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	scheme, err := h.schemes.GetByScope(c.Request.Context(), *claims, c.Query("classId"), c.Query("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scheme, nil)
}

// ListByClass godoc
// @Summary List every grading scheme defined for a class
// @Tags Grading Schemes
// @Produce json
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /grading-schemes/class/{classId} [get]
func (h *SchemeHandler) ListByClass(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	schemes, err := h.schemes.ListByClass(c.Request.Context(), *claims, c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schemes, nil)
}

// Update godoc
// @Summary Replace a scheme's components
// @Tags Grading Schemes
// @Accept json
// @Produce json
// @Param classId query string true "Class ID"
// @Param subjectId query string true "Subject ID"
// @Param payload body service.UpdateSchemeRequest true "Scheme payload"
// @Success 200 {object} response.Envelope
// @Router /grading-schemes [put]
func (h *SchemeHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.UpdateSchemeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	scheme, err := h.schemes.Update(c.Request.Context(), *claims, c.Query("classId"), c.Query("subjectId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, scheme, nil)
}

// Delete godoc
// @Summary Delete the caller's grading scheme
// @Tags Grading Schemes
// @Produce json
// @Param classId query string true "Class ID"
// @Param subjectId query string true "Subject ID"
// @Success 204
// @Router /grading-schemes [delete]
func (h *SchemeHandler) Delete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.schemes.Delete(c.Request.Context(), *claims, c.Query("classId"), c.Query("subjectId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
