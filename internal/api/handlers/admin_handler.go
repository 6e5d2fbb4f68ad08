package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"estateflow/crm/internal/services"
)

// AdminHandler serves the admin agent directory.
type AdminHandler struct {
	userService     services.IUserService
	propertyService services.IPropertyService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService services.IUserService, propertyService services.IPropertyService) *AdminHandler {
	return &AdminHandler{userService: userService, propertyService: propertyService}
}

// ListAgents handles GET /api/admin/agents?search=. The search is a
// case-insensitive substring match across name, email and phone.
func (h *AdminHandler) ListAgents(c *gin.Context) {
	agents, err := h.userService.SearchAgents(c.Request.Context(), c.Query("search"))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list agents"})
		return
	}

	c.JSON(http.StatusOK, agents)
}

// AgentProperties handles GET /api/admin/agents/:id/properties: the agent
// record plus all of its listings, unfiltered by status.
func (h *AdminHandler) AgentProperties(c *gin.Context) {
	agentID := c.Param("id")
	ctx := c.Request.Context()

	agent, err := h.userService.FindAgentByID(ctx, agentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve agent"})
		}
		return
	}

	properties, err := h.propertyService.FindPropertiesByAgentID(ctx, agentID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve agent properties"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"agent":      agent,
		"properties": properties,
	})
}
