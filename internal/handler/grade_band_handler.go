package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/gradebook-api/internal/service"
	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
	"github.com/schoolcore/gradebook-api/pkg/response"
)

// GradeBandHandler exposes grade band administration endpoints.
type GradeBandHandler struct {
	bands *service.GradeBandService
}

// NewGradeBandHandler constructs handler.
func NewGradeBandHandler(bands *service.GradeBandService) *GradeBandHandler {
	return &GradeBandHandler{bands: bands}
}

// List godoc
// @Summary List the school's grade bands
// @Tags Grade Bands
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /grade-bands [get]
func (h *GradeBandHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	bands, err := h.bands.List(c.Request.Context(), *claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bands, nil)
}

// Replace godoc
// @Summary Replace the school's grade bands
// @Tags Grade Bands
// @Accept json
// @Produce json
// @Param payload body service.ReplaceBandsRequest true "Band payload"
// @Success 200 {object} response.Envelope
// @Router /grade-bands [put]
func (h *GradeBandHandler) Replace(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.ReplaceBandsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	bands, err := h.bands.Replace(c.Request.Context(), *claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bands, nil)
}
