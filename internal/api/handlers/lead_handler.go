package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"estateflow/crm/internal/api/middleware"
	"estateflow/crm/internal/services"
)

// LeadHandler handles client inquiry requests.
type LeadHandler struct {
	leadService services.ILeadService
}

// NewLeadHandler creates a new LeadHandler.
func NewLeadHandler(leadService services.ILeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

type createLeadRequest struct {
	PropertyID   string `json:"property_id" binding:"required"`
	ClientName   string `json:"client_name" binding:"required"`
	ClientPhone  string `json:"client_phone" binding:"required"`
	Requirements string `json:"requirements" binding:"required"`
}

// Create handles POST /api/leads. Any authenticated user can submit an
// inquiry; the property must exist.
func (h *LeadHandler) Create(c *gin.Context) {
	var req createLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	lead, err := h.leadService.CreateLead(c.Request.Context(), req.PropertyID, req.ClientName, req.ClientPhone, req.Requirements)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lead"})
		}
		return
	}

	c.JSON(http.StatusOK, lead)
}

// List handles GET /api/leads. Agents only see leads against their own
// listings; the admin sees all leads.
func (h *LeadHandler) List(c *gin.Context) {
	requester := middleware.CurrentUser(c)

	leads, err := h.leadService.ListLeads(c.Request.Context(), requester)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list leads"})
		return
	}

	c.JSON(http.StatusOK, leads)
}
