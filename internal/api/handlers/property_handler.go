package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"estateflow/crm/internal/api/middleware"
	"estateflow/crm/internal/config"
	"estateflow/crm/internal/models"
	"estateflow/crm/internal/services"
	"estateflow/crm/internal/storage"
)

// PropertyHandler handles listing lifecycle requests.
type PropertyHandler struct {
	cfg             *config.Config
	propertyService services.IPropertyService
	imageStorage    storage.IImageStorage
}

// NewPropertyHandler creates a new PropertyHandler.
func NewPropertyHandler(cfg *config.Config, propertyService services.IPropertyService, imageStorage storage.IImageStorage) *PropertyHandler {
	return &PropertyHandler{cfg: cfg, propertyService: propertyService, imageStorage: imageStorage}
}

type createPropertyRequest struct {
	PropertyType string   `json:"property_type" binding:"required"`
	BHK          string   `json:"bhk" binding:"required"`
	Furnishing   string   `json:"furnishing" binding:"required"`
	Rent         string   `json:"rent" binding:"required"`
	Deposit      string   `json:"deposit" binding:"required"`
	TenantType   string   `json:"tenant_type" binding:"required"`
	Possession   string   `json:"possession" binding:"required"`
	Building     string   `json:"building" binding:"required"`
	Location     string   `json:"location" binding:"required"`
	AgentName    string   `json:"agent_name" binding:"required"`
	AgentContact string   `json:"agent_contact" binding:"required"`
	Images       []string `json:"images"`
	Description  string   `json:"description"`
}

// Create handles POST /api/properties. New listings always start pending.
func (h *PropertyHandler) Create(c *gin.Context) {
	agent := middleware.CurrentUser(c)

	var req createPropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	property, err := h.propertyService.CreateProperty(c.Request.Context(), agent, services.CreatePropertyInput{
		PropertyType: req.PropertyType,
		BHK:          req.BHK,
		Furnishing:   req.Furnishing,
		Rent:         req.Rent,
		Deposit:      req.Deposit,
		TenantType:   req.TenantType,
		Possession:   req.Possession,
		Building:     req.Building,
		Location:     req.Location,
		AgentName:    req.AgentName,
		AgentContact: req.AgentContact,
		Images:       req.Images,
		Description:  req.Description,
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create property"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// List handles GET /api/properties?status_filter=. Agents only ever see their
// own listings; the admin sees everything.
func (h *PropertyHandler) List(c *gin.Context) {
	requester := middleware.CurrentUser(c)

	var statusFilter *models.PropertyStatus
	if raw := c.Query("status_filter"); raw != "" {
		status := models.PropertyStatus(raw)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
			return
		}
		statusFilter = &status
	}

	properties, err := h.propertyService.ListProperties(c.Request.Context(), requester, statusFilter)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list properties"})
		return
	}

	c.JSON(http.StatusOK, properties)
}

// ListApproved handles GET /api/properties/approved, the public listing feed.
func (h *PropertyHandler) ListApproved(c *gin.Context) {
	properties, err := h.propertyService.ListApproved(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list approved properties"})
		return
	}

	c.JSON(http.StatusOK, properties)
}

// Get handles GET /api/properties/:id. Admins and the owning agent see the
// listing unconditionally; everyone else only once it is approved.
func (h *PropertyHandler) Get(c *gin.Context) {
	requester := middleware.CurrentUser(c)
	propertyID := c.Param("id")

	property, err := h.propertyService.FindPropertyByID(c.Request.Context(), propertyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve property"})
		}
		return
	}

	if !canViewProperty(requester, property) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	c.JSON(http.StatusOK, property)
}

// Approve handles POST /api/properties/:id/approve.
func (h *PropertyHandler) Approve(c *gin.Context) {
	h.moderate(c, h.propertyService.ApproveProperty, "Property approved successfully")
}

// Reject handles POST /api/properties/:id/reject.
func (h *PropertyHandler) Reject(c *gin.Context) {
	h.moderate(c, h.propertyService.RejectProperty, "Property rejected successfully")
}

func (h *PropertyHandler) moderate(c *gin.Context, op func(ctx context.Context, propertyID string) error, message string) {
	propertyID := c.Param("id")

	err := op(c.Request.Context(), propertyID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Property not found"})
		} else {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update property"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// UploadImage handles POST /api/properties/images: a multipart image upload
// that is downscaled and stored, returning the URL to put on a listing.
func (h *PropertyHandler) UploadImage(c *gin.Context) {
	agent := middleware.CurrentUser(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file required"})
		return
	}

	maxBytes := int64(h.cfg.ImageMaxSizeMB) << 20
	if fileHeader.Size > maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxBytes))
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read image"})
		return
	}

	url, err := h.imageStorage.UploadPropertyImage(c.Request.Context(), agent.ID, data)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image format"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// canViewProperty applies the listing visibility rule.
func canViewProperty(requester *models.User, property *models.Property) bool {
	if requester.Role == models.RoleAdmin {
		return true
	}
	if property.AgentID == requester.ID {
		return true
	}
	return property.Status == models.PropertyStatusApproved
}
