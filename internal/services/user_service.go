package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estateflow/crm/internal/auth"
	"estateflow/crm/internal/db"
	"estateflow/crm/internal/models"
)

// ErrEmailExists is returned when an attempt is made to use an email that already exists.
var ErrEmailExists = errors.New("email already in use by another account")

// ErrPhoneExists is returned when an attempt is made to use a phone number that already exists.
var ErrPhoneExists = errors.New("phone number already in use by another account")

// ErrAdminExists is returned when an admin account already exists.
// The system allows exactly one admin.
var ErrAdminExists = errors.New("an admin already exists")

// ErrInvalidCredentials is returned for any failed login: unknown identifier
// or wrong password. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// IUserService defines the interface for user-related operations.
// This allows for easier mocking in tests.
type IUserService interface {
	RegisterAgent(ctx context.Context, name, email, phone, password string) (*models.User, error)
	RegisterAdmin(ctx context.Context, name, email, phone, password string) (*models.User, error)
	Authenticate(ctx context.Context, identifier, password string) (*models.User, error)
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindAgentByID(ctx context.Context, agentID string) (*models.User, error)
	SearchAgents(ctx context.Context, search string) ([]models.AgentSummary, error)
	CountAgents(ctx context.Context) (int64, error)
}

const usersCollection = "users"

// userService implements IUserService.
type userService struct {
	db *mongo.Database
}

// NewUserService creates a new UserService.
func NewUserService(db *mongo.Database) IUserService {
	return &userService{db: db}
}

// RegisterAgent creates a new agent account. Email and phone uniqueness is
// enforced by the store's unique indexes, not by a read-then-write check.
func (s *userService) RegisterAgent(ctx context.Context, name, email, phone, password string) (*models.User, error) {
	return s.register(ctx, name, email, phone, password, models.RoleAgent)
}

// RegisterAdmin creates the single admin account. The pre-check returns
// ErrAdminExists before any uniqueness conflict is reported; the partial
// unique index on role closes the race between concurrent registrations.
func (s *userService) RegisterAdmin(ctx context.Context, name, email, phone, password string) (*models.User, error) {
	collection := s.db.Collection(usersCollection)
	count, err := collection.CountDocuments(ctx, bson.M{"role": models.RoleAdmin})
	if err != nil {
		return nil, fmt.Errorf("error checking for existing admin: %w", err)
	}
	if count > 0 {
		return nil, ErrAdminExists
	}
	return s.register(ctx, name, email, phone, password, models.RoleAdmin)
}

func (s *userService) register(ctx context.Context, name, email, phone, password string, role models.Role) (*models.User, error) {
	collection := s.db.Collection(usersCollection)

	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password for %s: %w", email, err)
	}

	now := time.Now().UTC()
	var newUser *models.User

	operation := func() error {
		newUser = &models.User{
			ID:           uuid.NewString(), // ID generated on each attempt
			Name:         name,
			Email:        email,
			Phone:        phone,
			Role:         role,
			PasswordHash: hashedPassword,
			CreatedAt:    now,
		}
		_, insertErr := collection.InsertOne(ctx, newUser)
		return insertErr
	}

	err = db.Try(operation)

	if err != nil {
		switch {
		case db.IsDuplicateOnIndex(err, db.IndexUserEmailUnique):
			return nil, ErrEmailExists
		case db.IsDuplicateOnIndex(err, db.IndexUserPhoneUnique):
			return nil, ErrPhoneExists
		case db.IsDuplicateOnIndex(err, db.IndexSingleAdmin):
			return nil, ErrAdminExists
		}
		return nil, fmt.Errorf("error inserting new user for %s after multiple retries: %w", email, err)
	}

	return newUser, nil
}

// Authenticate matches the identifier against email OR phone and verifies the
// password hash. Both failure modes collapse into ErrInvalidCredentials.
func (s *userService) Authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	var user models.User
	collection := s.db.Collection(usersCollection)
	filter := bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"phone": identifier},
	}}

	err := collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error finding user by identifier: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// FindByID finds a user by their ID.
func (s *userService) FindByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	collection := s.db.Collection(usersCollection)

	err := collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding user by ID %s: %w", userID, err)
	}
	return &user, nil
}

// FindAgentByID finds a user by ID, requiring the agent role.
func (s *userService) FindAgentByID(ctx context.Context, agentID string) (*models.User, error) {
	var user models.User
	collection := s.db.Collection(usersCollection)

	err := collection.FindOne(ctx, bson.M{"_id": agentID, "role": models.RoleAgent}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding agent by ID %s: %w", agentID, err)
	}
	return &user, nil
}

// SearchAgents returns the agent directory, optionally filtered by a
// case-insensitive substring match across name, email and phone. Each row is
// enriched with the agent's property counts by status.
func (s *userService) SearchAgents(ctx context.Context, search string) ([]models.AgentSummary, error) {
	collection := s.db.Collection(usersCollection)

	filter := bson.M{"role": models.RoleAgent}
	if search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
			bson.M{"phone": pattern},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query agents: %w", err)
	}
	defer cursor.Close(ctx)

	var agents []models.User
	if err = cursor.All(ctx, &agents); err != nil {
		return nil, fmt.Errorf("failed to decode agents: %w", err)
	}

	properties := s.db.Collection(propertiesCollection)
	summaries := make([]models.AgentSummary, 0, len(agents))
	for _, agent := range agents {
		total, err := properties.CountDocuments(ctx, bson.M{"agent_id": agent.ID})
		if err != nil {
			return nil, fmt.Errorf("failed to count properties for agent %s: %w", agent.ID, err)
		}
		pending, err := properties.CountDocuments(ctx, bson.M{"agent_id": agent.ID, "status": models.PropertyStatusPending})
		if err != nil {
			return nil, fmt.Errorf("failed to count pending properties for agent %s: %w", agent.ID, err)
		}
		approved, err := properties.CountDocuments(ctx, bson.M{"agent_id": agent.ID, "status": models.PropertyStatusApproved})
		if err != nil {
			return nil, fmt.Errorf("failed to count approved properties for agent %s: %w", agent.ID, err)
		}

		summaries = append(summaries, models.AgentSummary{
			ID:                 agent.ID,
			Name:               agent.Name,
			Email:              agent.Email,
			Phone:              agent.Phone,
			CreatedAt:          agent.CreatedAt,
			TotalProperties:    total,
			PendingProperties:  pending,
			ApprovedProperties: approved,
		})
	}

	return summaries, nil
}

// CountAgents returns the number of agent accounts.
func (s *userService) CountAgents(ctx context.Context) (int64, error) {
	count, err := s.db.Collection(usersCollection).CountDocuments(ctx, bson.M{"role": models.RoleAgent})
	if err != nil {
		return 0, fmt.Errorf("failed to count agents: %w", err)
	}
	return count, nil
}
