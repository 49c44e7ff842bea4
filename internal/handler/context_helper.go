package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/schoolcore/gradebook-api/internal/middleware"
	"github.com/schoolcore/gradebook-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.TenantClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.TenantClaims)
	if !ok {
		return nil
	}
	return claims
}
