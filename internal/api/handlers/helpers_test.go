package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"estateflow/crm/internal/auth"
	"estateflow/crm/internal/config"
	"estateflow/crm/internal/models"
)

// --- Test Setup ---

const testJwtSecret = "testsecret"

func testConfig() *config.Config {
	return &config.Config{
		JwtSecret:      "testsecret",
		JwtTTL:         time.Hour,
		FrontendURL:    "https://crm.example.com",
		ImageMaxSizeMB: 10,
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

var testAgent = &models.User{
	ID:    "agent-1",
	Name:  "Ravi Kumar",
	Email: "ravi@example.com",
	Phone: "9000000001",
	Role:  models.RoleAgent,
}

var testAdmin = &models.User{
	ID:    "admin-1",
	Name:  "Admin",
	Email: "admin@example.com",
	Phone: "9000000009",
	Role:  models.RoleAdmin,
}

// authHeaderFor issues a real token for the user and primes the user service
// mock to resolve it, the way AuthMiddleware will.
func authHeaderFor(t *testing.T, mockUserSvc *MockUserService, user *models.User) string {
	t.Helper()
	token, err := auth.GenerateJWT(user.ID, user.Role, testJwtSecret, time.Hour)
	require.NoError(t, err)
	mockUserSvc.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	return "Bearer " + token
}

func doJSON(router *gin.Engine, method, path, authHeader string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}
