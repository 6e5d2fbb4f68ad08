package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"estateflow/crm/internal/services"
)

// WhatsAppHandler builds share messages for properties.
type WhatsAppHandler struct {
	whatsAppService services.IWhatsAppService
}

// NewWhatsAppHandler creates a new WhatsAppHandler.
func NewWhatsAppHandler(whatsAppService services.IWhatsAppService) *WhatsAppHandler {
	return &WhatsAppHandler{whatsAppService: whatsAppService}
}

type generateMessageRequest struct {
	PropertyID string `json:"property_id" binding:"required"`
}

// GenerateMessage handles POST /api/whatsapp/generate-message.
func (h *WhatsAppHandler) GenerateMessage(c *gin.Context) {
	var req generateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	share, err := h.whatsAppService.GenerateMessage(c.Request.Context(), req.PropertyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate message"})
		}
		return
	}

	c.JSON(http.StatusOK, share)
}
