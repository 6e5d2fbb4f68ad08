package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estateflow/crm/internal/config"
	"estateflow/crm/internal/db"
	"estateflow/crm/internal/models"
)

// CreatePropertyInput carries the agent-supplied listing fields.
type CreatePropertyInput struct {
	PropertyType string
	BHK          string
	Furnishing   string
	Rent         string
	Deposit      string
	TenantType   string
	Possession   string
	Building     string
	Location     string
	AgentName    string
	AgentContact string
	Images       []string
	Description  string
}

// IPropertyService defines the interface for property-related operations.
type IPropertyService interface {
	CreateProperty(ctx context.Context, agent *models.User, input CreatePropertyInput) (*models.Property, error)
	FindPropertyByID(ctx context.Context, propertyID string) (*models.Property, error)
	ListProperties(ctx context.Context, requester *models.User, statusFilter *models.PropertyStatus) ([]models.Property, error)
	ListApproved(ctx context.Context) ([]models.Property, error)
	FindPropertiesByAgentID(ctx context.Context, agentID string) ([]models.Property, error)
	ApproveProperty(ctx context.Context, propertyID string) error
	RejectProperty(ctx context.Context, propertyID string) error
	CountProperties(ctx context.Context, agentID string, status *models.PropertyStatus) (int64, error)
}

const propertiesCollection = "properties"

// listQueryCap bounds every listing query; the UI never pages past this.
const listQueryCap = 1000

// approvedFeedCacheKey is where the public approved feed is cached in Redis.
const approvedFeedCacheKey = "feed:approved"

// propertyService implements IPropertyService.
type propertyService struct {
	db  *mongo.Database
	cfg *config.Config
	rdb *redis.Client // nil disables feed caching
}

// NewPropertyService creates a new PropertyService.
func NewPropertyService(db *mongo.Database, cfg *config.Config, rdb *redis.Client) IPropertyService {
	return &propertyService{db: db, cfg: cfg, rdb: rdb}
}

// CreateProperty persists a new listing in the pending state, owned by the agent.
func (s *propertyService) CreateProperty(ctx context.Context, agent *models.User, input CreatePropertyInput) (*models.Property, error) {
	collection := s.db.Collection(propertiesCollection)
	now := time.Now().UTC()

	images := input.Images
	if images == nil {
		images = []string{}
	}

	var newProperty *models.Property
	var err error

	operation := func() error {
		newProperty = &models.Property{
			ID:           uuid.NewString(),
			AgentID:      agent.ID,
			PropertyType: input.PropertyType,
			BHK:          input.BHK,
			Furnishing:   input.Furnishing,
			Rent:         input.Rent,
			Deposit:      input.Deposit,
			TenantType:   input.TenantType,
			Possession:   input.Possession,
			Building:     input.Building,
			Location:     input.Location,
			AgentName:    input.AgentName,
			AgentContact: input.AgentContact,
			Images:       images,
			Description:  input.Description,
			Status:       models.PropertyStatusPending,
			CreatedAt:    now,
			ApprovedAt:   nil,
		}
		_, insertErr := collection.InsertOne(ctx, newProperty)
		return insertErr
	}

	err = db.Try(operation)

	if err != nil {
		return nil, fmt.Errorf("failed to insert new property for agent %s after multiple retries: %w", agent.ID, err)
	}

	return newProperty, nil
}

// FindPropertyByID finds a property by its ID. It does NOT check visibility;
// callers apply the ownership/approval rules.
func (s *propertyService) FindPropertyByID(ctx context.Context, propertyID string) (*models.Property, error) {
	var property models.Property
	collection := s.db.Collection(propertiesCollection)

	err := collection.FindOne(ctx, bson.M{"_id": propertyID}).Decode(&property)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding property by ID %s: %w", propertyID, err)
	}
	return &property, nil
}

// ListProperties returns listings scoped to the requester: agents only ever
// see their own, the admin sees everything. An optional status filter narrows
// the result either way.
func (s *propertyService) ListProperties(ctx context.Context, requester *models.User, statusFilter *models.PropertyStatus) ([]models.Property, error) {
	filter := bson.M{}
	if requester.Role == models.RoleAgent {
		filter["agent_id"] = requester.ID
	}
	if statusFilter != nil {
		filter["status"] = *statusFilter
	}
	return s.find(ctx, filter)
}

// ListApproved returns the public feed of approved listings, cached in Redis
// for a short TTL. Cache failures fall through to the store.
func (s *propertyService) ListApproved(ctx context.Context) ([]models.Property, error) {
	if s.rdb != nil {
		cached, err := s.rdb.Get(ctx, approvedFeedCacheKey).Result()
		if err == nil {
			var properties []models.Property
			if err := json.Unmarshal([]byte(cached), &properties); err == nil {
				return properties, nil
			}
			log.Printf("Discarding unreadable approved feed cache entry")
			s.rdb.Del(ctx, approvedFeedCacheKey)
		} else if err != redis.Nil {
			log.Printf("Error reading approved feed cache: %v", err)
		}
	}

	properties, err := s.find(ctx, bson.M{"status": models.PropertyStatusApproved})
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if payload, err := json.Marshal(properties); err == nil {
			if err := s.rdb.Set(ctx, approvedFeedCacheKey, payload, s.cfg.FeedCacheTTL).Err(); err != nil {
				log.Printf("Error writing approved feed cache: %v", err)
			}
		}
	}

	return properties, nil
}

// FindPropertiesByAgentID returns all of an agent's listings regardless of status.
func (s *propertyService) FindPropertiesByAgentID(ctx context.Context, agentID string) ([]models.Property, error) {
	return s.find(ctx, bson.M{"agent_id": agentID})
}

func (s *propertyService) find(ctx context.Context, filter bson.M) ([]models.Property, error) {
	collection := s.db.Collection(propertiesCollection)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(listQueryCap)

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer cursor.Close(ctx)

	properties := []models.Property{}
	if err = cursor.All(ctx, &properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}
	return properties, nil
}

// ApproveProperty moves a listing to the approved state and stamps
// approved_at. The update is a single atomic document write; re-approval
// re-stamps the timestamp.
func (s *propertyService) ApproveProperty(ctx context.Context, propertyID string) error {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"status":      models.PropertyStatusApproved,
		"approved_at": now,
	}}
	if err := s.updateStatus(ctx, propertyID, update); err != nil {
		return err
	}
	s.invalidateFeedCache(ctx)
	return nil
}

// RejectProperty moves a listing to the rejected state. approved_at is left
// untouched.
func (s *propertyService) RejectProperty(ctx context.Context, propertyID string) error {
	update := bson.M{"$set": bson.M{
		"status": models.PropertyStatusRejected,
	}}
	if err := s.updateStatus(ctx, propertyID, update); err != nil {
		return err
	}
	s.invalidateFeedCache(ctx)
	return nil
}

func (s *propertyService) updateStatus(ctx context.Context, propertyID string, update bson.M) error {
	collection := s.db.Collection(propertiesCollection)
	result, err := collection.UpdateOne(ctx, bson.M{"_id": propertyID}, update)
	if err != nil {
		return fmt.Errorf("db error updating property %s: %w", propertyID, err)
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *propertyService) invalidateFeedCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, approvedFeedCacheKey).Err(); err != nil {
		log.Printf("Error invalidating approved feed cache: %v", err)
	}
}

// CountProperties counts listings, optionally scoped to an agent and/or a status.
// An empty agentID counts across all agents.
func (s *propertyService) CountProperties(ctx context.Context, agentID string, status *models.PropertyStatus) (int64, error) {
	filter := bson.M{}
	if agentID != "" {
		filter["agent_id"] = agentID
	}
	if status != nil {
		filter["status"] = *status
	}
	count, err := s.db.Collection(propertiesCollection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}
