package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolcore/gradebook-api/internal/service"
	appErrors "github.com/schoolcore/gradebook-api/pkg/errors"
	"github.com/schoolcore/gradebook-api/pkg/response"
)

// ScoreHandler exposes score submission endpoints.
type ScoreHandler struct {
	scores  *service.ScoreService
	batches *service.ScoreBatchService
}

// NewScoreHandler constructs handler.
func NewScoreHandler(scores *service.ScoreService, batches *service.ScoreBatchService) *ScoreHandler {
	return &ScoreHandler{scores: scores, batches: batches}
}

// Submit godoc
// @Summary Record a student's component scores
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.SubmitScoreRequest true "Score payload"
// @Success 201 {object} response.Envelope
// @Router /scores [post]
func (h *ScoreHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.scores.Create(c.Request.Context(), *claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Update godoc
// @Summary Overwrite a student's recorded scores
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.SubmitScoreRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Router /scores [put]
func (h *ScoreHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.SubmitScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.scores.Update(c.Request.Context(), *claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// List godoc
// @Summary List class scores for the caller's scheme
// @Tags Scores
// @Produce json
// @Param classId query string true "Class ID"
// @Param subjectId query string true "Subject ID"
// @Success 200 {object} response.Envelope
// @Router /scores [get]
func (h *ScoreHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	rows, err := h.scores.ListForScheme(c.Request.Context(), *claims, c.Query("classId"), c.Query("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// BatchSubmit godoc
// @Summary Record scores for many students atomically
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.BatchScoreRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /scores/batch [post]
func (h *ScoreHandler) BatchSubmit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.BatchScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.batches.Create(c.Request.Context(), *claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// BatchUpdate godoc
// @Summary Overwrite scores for many students atomically
// @Tags Scores
// @Accept json
// @Produce json
// @Param payload body service.BatchScoreRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /scores/batch [patch]
func (h *ScoreHandler) BatchUpdate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.BatchScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.batches.Update(c.Request.Context(), *claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
