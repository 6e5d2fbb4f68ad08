package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"estateflow/crm/internal/config"
	"estateflow/crm/internal/models"
	"estateflow/crm/internal/utils"
)

func setupTestDBProperty(t *testing.T, dbName string) *mongo.Database {
	return utils.SetupTestDB(t, dbName, "users", "properties", "leads")
}

func testConfig() *config.Config {
	return &config.Config{
		JwtSecret:    "test-secret",
		JwtTTL:       time.Hour,
		FrontendURL:  "https://crm.example.com",
		FeedCacheTTL: time.Minute,
	}
}

func testPropertyInput() CreatePropertyInput {
	return CreatePropertyInput{
		PropertyType: "Apartment",
		BHK:          "2BHK",
		Furnishing:   "Semi-Furnished",
		Rent:         "25000",
		Deposit:      "100000",
		TenantType:   "Family",
		Possession:   "Immediate",
		Building:     "Sunrise Towers",
		Location:     "Andheri West, Mumbai",
		AgentName:    "Ravi Kumar",
		AgentContact: "9000000001",
	}
}

func registerTestAgent(t *testing.T, svc IUserService, name, email, phone string) *models.User {
	t.Helper()
	agent, err := svc.RegisterAgent(context.Background(), name, email, phone, "pw123456")
	require.NoError(t, err)
	return agent
}

func TestPropertyService_CreateProperty(t *testing.T) {
	db := setupTestDBProperty(t, "testdb_property_service_create")
	userSvc := NewUserService(db)
	svc := NewPropertyService(db, testConfig(), nil)
	ctx := context.Background()

	agent := registerTestAgent(t, userSvc, "Ravi", "ravi@example.com", "9000000001")

	property, err := svc.CreateProperty(ctx, agent, testPropertyInput())
	require.NoError(t, err)
	assert.NotEmpty(t, property.ID)
	assert.Equal(t, agent.ID, property.AgentID)
	assert.Equal(t, models.PropertyStatusPending, property.Status)
	assert.Nil(t, property.ApprovedAt)
	assert.NotNil(t, property.Images)
	assert.Empty(t, property.Images)
	assert.False(t, property.CreatedAt.IsZero())

	// Round-trips through the store intact
	found, err := svc.FindPropertyByID(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Towers", found.Building)
	assert.Equal(t, "25000", found.Rent)
	assert.Equal(t, models.PropertyStatusPending, found.Status)
}

func TestPropertyService_FindPropertyByID_NotFound(t *testing.T) {
	db := setupTestDBProperty(t, "testdb_property_service_find_missing")
	svc := NewPropertyService(db, testConfig(), nil)

	_, err := svc.FindPropertyByID(context.Background(), "no-such-id")
	assert.True(t, errors.Is(err, mongo.ErrNoDocuments))
}

func TestPropertyService_ListProperties_Scoping(t *testing.T) {
	db := setupTestDBProperty(t, "testdb_property_service_scoping")
	userSvc := NewUserService(db)
	svc := NewPropertyService(db, testConfig(), nil)
	ctx := context.Background()

	ravi := registerTestAgent(t, userSvc, "Ravi", "ravi@example.com", "9000000001")
	priya := registerTestAgent(t, userSvc, "Priya", "priya@example.com", "9000000002")
	admin, err := userSvc.RegisterAdmin(ctx, "Admin", "admin@example.com", "9000000003", "pw123456")
	require.NoError(t, err)

	raviProperty, err := svc.CreateProperty(ctx, ravi, testPropertyInput())
	require.NoError(t, err)
	_, err = svc.CreateProperty(ctx, priya, testPropertyInput())
	require.NoError(t, err)

	// Agents only ever see their own listings
	listed, err := svc.ListProperties(ctx, ravi, nil)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, raviProperty.ID, listed[0].ID)

	// The admin sees everything
	listed, err = svc.ListProperties(ctx, admin, nil)
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	// Status filter narrows either way
	require.NoError(t, svc.ApproveProperty(ctx, raviProperty.ID))
	approved := models.PropertyStatusApproved
	listed, err = svc.ListProperties(ctx, admin, &approved)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, raviProperty.ID, listed[0].ID)

	pending := models.PropertyStatusPending
	listed, err = svc.ListProperties(ctx, ravi, &pending)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestPropertyService_ListApproved(t *testing.T) {
	db := setupTestDBProperty(t, "testdb_property_service_feed")
	userSvc := NewUserService(db)
	svc := NewPropertyService(db, testConfig(), nil)
	ctx := context.Background()

	agent := registerTestAgent(t, userSvc, "Ravi", "ravi@example.com", "9000000001")

	approvedProperty, err := svc.CreateProperty(ctx, agent, testPropertyInput())
	require.NoError(t, err)
	_, err = svc.CreateProperty(ctx, agent, testPropertyInput())
	require.NoError(t, err)
	rejectedProperty, err := svc.CreateProperty(ctx, agent, testPropertyInput())
	require.NoError(t, err)

	require.NoError(t, svc.ApproveProperty(ctx, approvedProperty.ID))
	require.NoError(t, svc.RejectProperty(ctx, rejectedProperty.ID))

	feed, err := svc.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, approvedProperty.ID, feed[0].ID)
}

func TestPropertyService_ApproveProperty(t *testing.T) {
	db := setupTestDBProperty(t, "testdb_property_service_approve")
	userSvc := NewUserService(db)
	svc := NewPropertyService(db, testConfig(), nil)
	ctx := context.Background()

	agent := registerTestAgent(t, userSvc, "Ravi", "ravi@example.com", "9000000001")
	property, err := svc.CreateProperty(ctx, agent, testPropertyInput())
	require.NoError(t, err)

	require.NoError(t, svc.ApproveProperty(ctx, property.ID))

	found, err := svc.FindPropertyByID(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusApproved, found.Status)
	require.NotNil(t, found.ApprovedAt)
	firstStamp := *found.ApprovedAt

	// Re-approval re-stamps the timestamp
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, svc.ApproveProperty(ctx, property.ID))
	found, err = svc.FindPropertyByID(ctx, property.ID)
	require.NoError(t, err)
	require.NotNil(t, found.ApprovedAt)
	assert.True(t, found.ApprovedAt.After(firstStamp))
}

func TestPropertyService_RejectProperty(t *testing.T) {
	db := setupTestDBProperty(t, "testdb_property_service_reject")
	userSvc := NewUserService(db)
	svc := NewPropertyService(db, testConfig(), nil)
	ctx := context.Background()

	agent := registerTestAgent(t, userSvc, "Ravi", "ravi@example.com", "9000000001")
	property, err := svc.CreateProperty(ctx, agent, testPropertyInput())
	require.NoError(t, err)

	require.NoError(t, svc.RejectProperty(ctx, property.ID))
	found, err := svc.FindPropertyByID(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusRejected, found.Status)
	assert.Nil(t, found.ApprovedAt)

	// Rejecting an already-approved listing keeps the old approval stamp
	require.NoError(t, svc.ApproveProperty(ctx, property.ID))
	require.NoError(t, svc.RejectProperty(ctx, property.ID))
	found, err = svc.FindPropertyByID(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PropertyStatusRejected, found.Status)
	assert.NotNil(t, found.ApprovedAt)
}

func TestPropertyService_Moderate_NotFound(t *testing.T) {
	db := setupTestDBProperty(t, "testdb_property_service_moderate_missing")
	svc := NewPropertyService(db, testConfig(), nil)
	ctx := context.Background()

	assert.True(t, errors.Is(svc.ApproveProperty(ctx, "no-such-id"), mongo.ErrNoDocuments))
	assert.True(t, errors.Is(svc.RejectProperty(ctx, "no-such-id"), mongo.ErrNoDocuments))
}

func TestPropertyService_CountProperties(t *testing.T) {
	db := setupTestDBProperty(t, "testdb_property_service_count")
	userSvc := NewUserService(db)
	svc := NewPropertyService(db, testConfig(), nil)
	ctx := context.Background()

	ravi := registerTestAgent(t, userSvc, "Ravi", "ravi@example.com", "9000000001")
	priya := registerTestAgent(t, userSvc, "Priya", "priya@example.com", "9000000002")

	first, err := svc.CreateProperty(ctx, ravi, testPropertyInput())
	require.NoError(t, err)
	_, err = svc.CreateProperty(ctx, ravi, testPropertyInput())
	require.NoError(t, err)
	_, err = svc.CreateProperty(ctx, priya, testPropertyInput())
	require.NoError(t, err)
	require.NoError(t, svc.ApproveProperty(ctx, first.ID))

	total, err := svc.CountProperties(ctx, "", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	raviTotal, err := svc.CountProperties(ctx, ravi.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), raviTotal)

	approved := models.PropertyStatusApproved
	approvedCount, err := svc.CountProperties(ctx, ravi.ID, &approved)
	require.NoError(t, err)
	assert.Equal(t, int64(1), approvedCount)
}
