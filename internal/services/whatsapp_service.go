package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"estateflow/crm/internal/config"
	"estateflow/crm/internal/models"
)

// ShareMessage is a pre-filled WhatsApp share payload for a property.
type ShareMessage struct {
	Message     string `json:"message"`
	WhatsAppURL string `json:"whatsapp_url"`
}

// IWhatsAppService defines the interface for share message generation.
type IWhatsAppService interface {
	GenerateMessage(ctx context.Context, propertyID string) (*ShareMessage, error)
}

// whatsAppService implements IWhatsAppService. It only builds text and a
// wa.me link; no message is ever sent from the backend.
type whatsAppService struct {
	cfg             *config.Config
	propertyService IPropertyService
}

// NewWhatsAppService creates a new WhatsAppService.
func NewWhatsAppService(cfg *config.Config, propertyService IPropertyService) IWhatsAppService {
	return &whatsAppService{cfg: cfg, propertyService: propertyService}
}

// GenerateMessage builds the share message for a property and the wa.me URL
// carrying it. Returns mongo.ErrNoDocuments via the property lookup when the
// property does not exist.
func (s *whatsAppService) GenerateMessage(ctx context.Context, propertyID string) (*ShareMessage, error) {
	property, err := s.propertyService.FindPropertyByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	message := BuildShareMessage(property, s.cfg.FrontendURL)
	return &ShareMessage{
		Message:     message,
		WhatsAppURL: "https://wa.me/?text=" + url.QueryEscape(message),
	}, nil
}

// BuildShareMessage renders the property card text the mobile app shares.
func BuildShareMessage(property *models.Property, frontendURL string) string {
	propertyLink := fmt.Sprintf("%s/properties/%s", strings.TrimSuffix(frontendURL, "/"), property.ID)

	parts := []string{
		"🏢 PROPERTY DETAILS",
		"",
		fmt.Sprintf("🛏️ BHK: %s", property.BHK),
		fmt.Sprintf("🏠 Type: %s", property.PropertyType),
		fmt.Sprintf("💰 Rent: Rs %s", property.Rent),
		fmt.Sprintf("📍 Location: %s", property.Location),
		"",
		fmt.Sprintf("👤 Agent: %s", property.AgentName),
		fmt.Sprintf("📞 Phone: %s", property.AgentContact),
		"",
		"🔗 View Full Details & Images:",
		propertyLink,
		"",
		"✨ Shared via EstateFlow CRM",
	}

	return strings.Join(parts, "\n")
}
