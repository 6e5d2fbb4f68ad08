package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estateflow/crm/internal/api/middleware"
	"estateflow/crm/internal/models"
	"estateflow/crm/internal/services"
)

// StatsHandler aggregates dashboard counts.
type StatsHandler struct {
	userService     services.IUserService
	propertyService services.IPropertyService
	leadService     services.ILeadService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(userService services.IUserService, propertyService services.IPropertyService, leadService services.ILeadService) *StatsHandler {
	return &StatsHandler{
		userService:     userService,
		propertyService: propertyService,
		leadService:     leadService,
	}
}

// Get handles GET /api/stats. Agents see counts scoped to their own
// properties and leads; the admin sees global counts plus the agent total.
func (h *StatsHandler) Get(c *gin.Context) {
	requester := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	scopeAgentID := ""
	if requester.Role == models.RoleAgent {
		scopeAgentID = requester.ID
	}

	approved := models.PropertyStatusApproved
	pending := models.PropertyStatusPending

	totalProperties, err := h.propertyService.CountProperties(ctx, scopeAgentID, nil)
	if err != nil {
		h.writeError(c, err)
		return
	}
	approvedProperties, err := h.propertyService.CountProperties(ctx, scopeAgentID, &approved)
	if err != nil {
		h.writeError(c, err)
		return
	}
	pendingProperties, err := h.propertyService.CountProperties(ctx, scopeAgentID, &pending)
	if err != nil {
		h.writeError(c, err)
		return
	}

	stats := gin.H{
		"total_properties":    totalProperties,
		"approved_properties": approvedProperties,
		"pending_properties":  pendingProperties,
	}

	if requester.Role == models.RoleAgent {
		totalLeads, err := h.leadService.CountLeads(ctx, requester.ID)
		if err != nil {
			h.writeError(c, err)
			return
		}
		stats["total_leads"] = totalLeads
	} else {
		totalAgents, err := h.userService.CountAgents(ctx)
		if err != nil {
			h.writeError(c, err)
			return
		}
		stats["total_agents"] = totalAgents
	}

	c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) writeError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute stats"})
}
