package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estateflow/crm/internal/db"
	"estateflow/crm/internal/models"
)

// ILeadService defines the interface for lead operations.
type ILeadService interface {
	CreateLead(ctx context.Context, propertyID, clientName, clientPhone, requirements string) (*models.Lead, error)
	ListLeads(ctx context.Context, requester *models.User) ([]models.Lead, error)
	CountLeads(ctx context.Context, agentID string) (int64, error)
}

const leadsCollection = "leads"

// leadService implements ILeadService.
type leadService struct {
	db *mongo.Database
}

// NewLeadService creates a new LeadService.
func NewLeadService(db *mongo.Database) ILeadService {
	return &leadService{db: db}
}

// CreateLead captures an inquiry against an existing property. The owning
// agent's ID is copied from the property at creation time; nothing is written
// when the property does not exist.
func (s *leadService) CreateLead(ctx context.Context, propertyID, clientName, clientPhone, requirements string) (*models.Lead, error) {
	var property models.Property
	err := s.db.Collection(propertiesCollection).FindOne(ctx, bson.M{"_id": propertyID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding property %s for lead: %w", propertyID, err)
	}

	collection := s.db.Collection(leadsCollection)
	now := time.Now().UTC()

	var newLead *models.Lead

	operation := func() error {
		newLead = &models.Lead{
			ID:           uuid.NewString(),
			PropertyID:   propertyID,
			AgentID:      property.AgentID,
			ClientName:   clientName,
			ClientPhone:  clientPhone,
			Requirements: requirements,
			Status:       models.LeadStatusNew,
			CreatedAt:    now,
		}
		_, insertErr := collection.InsertOne(ctx, newLead)
		return insertErr
	}

	err = db.Try(operation)

	if err != nil {
		return nil, fmt.Errorf("failed to insert new lead for property %s after multiple retries: %w", propertyID, err)
	}

	return newLead, nil
}

// ListLeads returns leads scoped to the requester: agents only see leads
// against their own listings, the admin sees all of them.
func (s *leadService) ListLeads(ctx context.Context, requester *models.User) ([]models.Lead, error) {
	filter := bson.M{}
	if requester.Role == models.RoleAgent {
		filter["agent_id"] = requester.ID
	}

	collection := s.db.Collection(leadsCollection)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(listQueryCap)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer cursor.Close(ctx)

	leads := []models.Lead{}
	if err = cursor.All(ctx, &leads); err != nil {
		return nil, fmt.Errorf("failed to decode leads: %w", err)
	}
	return leads, nil
}

// CountLeads counts leads, optionally scoped to an agent. An empty agentID
// counts across all agents.
func (s *leadService) CountLeads(ctx context.Context, agentID string) (int64, error) {
	filter := bson.M{}
	if agentID != "" {
		filter["agent_id"] = agentID
	}
	count, err := s.db.Collection(leadsCollection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}
