package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"estateflow/crm/internal/auth"
	"estateflow/crm/internal/api/middleware"
	"estateflow/crm/internal/config"
	"estateflow/crm/internal/models"
	"estateflow/crm/internal/services"
)

// AuthHandler handles registration, login and profile requests.
type AuthHandler struct {
	cfg         *config.Config
	userService services.IUserService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg *config.Config, userService services.IUserService) *AuthHandler {
	return &AuthHandler{cfg: cfg, userService: userService}
}

type registerRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Phone    string      `json:"phone" binding:"required"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     models.Role `json:"role"`
}

type loginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// Register handles POST /api/auth/register. Accounts created here are always
// agents; supplying any other role is rejected.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if req.Role != "" && req.Role != models.RoleAgent {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only agents can register through this endpoint"})
		return
	}

	user, err := h.userService.RegisterAgent(c.Request.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		h.writeRegisterError(c, err)
		return
	}

	h.writeAuthResponse(c, user)
}

// RegisterAdmin handles POST /api/auth/register-admin. The admin-exists check
// runs before any uniqueness conflict is reported.
func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, err := h.userService.RegisterAdmin(c.Request.Context(), req.Name, req.Email, req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrAdminExists) {
			c.JSON(http.StatusForbidden, gin.H{"error": "An admin already exists. Only one admin is allowed."})
			return
		}
		h.writeRegisterError(c, err)
		return
	}

	h.writeAuthResponse(c, user)
}

// Login handles POST /api/auth/login. The identifier matches email or phone;
// the error never reveals which part of the credentials failed.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	user, err := h.userService.Authenticate(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log in"})
		return
	}

	h.writeAuthResponse(c, user)
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) writeRegisterError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrEmailExists) || errors.Is(err, services.ErrPhoneExists) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email or phone already exists"})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
}

func (h *AuthHandler) writeAuthResponse(c *gin.Context, user *models.User) {
	token, err := auth.GenerateJWT(user.ID, user.Role, h.cfg.JwtSecret, h.cfg.JwtTTL)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}
