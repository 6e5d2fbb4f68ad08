package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"estateflow/crm/internal/api/handlers"
	"estateflow/crm/internal/api/middleware"
	"estateflow/crm/internal/models"
)

func setupStatsRouter(mockUserSvc *MockUserService, mockPropertySvc *MockPropertyService, mockLeadSvc *MockLeadService) *gin.Engine {
	r := newTestRouter()
	handler := handlers.NewStatsHandler(mockUserSvc, mockPropertySvc, mockLeadSvc)

	authed := r.Group("/api", middleware.AuthMiddleware(testJwtSecret, mockUserSvc))
	authed.GET("/stats", handler.Get)
	return r
}

func TestStatsHandler_AgentScope(t *testing.T) {
	mockUserSvc := new(MockUserService)
	mockPropertySvc := new(MockPropertyService)
	mockLeadSvc := new(MockLeadService)
	router := setupStatsRouter(mockUserSvc, mockPropertySvc, mockLeadSvc)

	approved := models.PropertyStatusApproved
	pending := models.PropertyStatusPending

	// All property counts scoped to the agent's own ID
	mockPropertySvc.On("CountProperties", mock.Anything, testAgent.ID, (*models.PropertyStatus)(nil)).Return(int64(5), nil)
	mockPropertySvc.On("CountProperties", mock.Anything, testAgent.ID, &approved).Return(int64(3), nil)
	mockPropertySvc.On("CountProperties", mock.Anything, testAgent.ID, &pending).Return(int64(2), nil)
	mockLeadSvc.On("CountLeads", mock.Anything, testAgent.ID).Return(int64(7), nil)

	header := authHeaderFor(t, mockUserSvc, testAgent)
	w := doJSON(router, "GET", "/api/stats", header, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, float64(5), resp["total_properties"])
	assert.Equal(t, float64(3), resp["approved_properties"])
	assert.Equal(t, float64(2), resp["pending_properties"])
	assert.Equal(t, float64(7), resp["total_leads"])
	assert.NotContains(t, resp, "total_agents")
	mockPropertySvc.AssertExpectations(t)
	mockLeadSvc.AssertExpectations(t)
}

func TestStatsHandler_AdminScope(t *testing.T) {
	mockUserSvc := new(MockUserService)
	mockPropertySvc := new(MockPropertyService)
	mockLeadSvc := new(MockLeadService)
	router := setupStatsRouter(mockUserSvc, mockPropertySvc, mockLeadSvc)

	approved := models.PropertyStatusApproved
	pending := models.PropertyStatusPending

	// Admin counts are global: empty agent scope
	mockPropertySvc.On("CountProperties", mock.Anything, "", (*models.PropertyStatus)(nil)).Return(int64(20), nil)
	mockPropertySvc.On("CountProperties", mock.Anything, "", &approved).Return(int64(12), nil)
	mockPropertySvc.On("CountProperties", mock.Anything, "", &pending).Return(int64(6), nil)
	mockUserSvc.On("CountAgents", mock.Anything).Return(int64(4), nil)

	header := authHeaderFor(t, mockUserSvc, testAdmin)
	w := doJSON(router, "GET", "/api/stats", header, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, float64(20), resp["total_properties"])
	assert.Equal(t, float64(4), resp["total_agents"])
	assert.NotContains(t, resp, "total_leads")
	mockLeadSvc.AssertNotCalled(t, "CountLeads", mock.Anything, mock.Anything)
}
