package auth

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/webmovil/escolar-api/model"
	"github.com/webmovil/escolar-api/utils/auth"
	"github.com/webmovil/escolar-api/utils/middleware"
	"github.com/webmovil/escolar-api/utils/response"
	"github.com/webmovil/escolar-api/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles login/logout requests
type AuthHandler struct {
	db               *gorm.DB
	validator        *validation.Validator
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	bruteForce       *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *auth.JWTManager, blacklistService *auth.BlacklistService, bruteForce *middleware.BruteForceProtection) *AuthHandler {
	return &AuthHandler{
		db:               db,
		validator:        validation.NewValidator(),
		jwtManager:       jwtManager,
		blacklistService: blacklistService,
		bruteForce:       bruteForce,
	}
}

// LoginRequest represents the login payload
type LoginRequest struct {
	Email    string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the session payload handed to the client
type LoginResponse struct {
	Token     string `json:"token"`
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	Rol       string `json:"rol"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ProfileID uint   `json:"profile_id,omitempty"`
}

// HandleLogin handles POST /api/login
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	ip := c.IP()

	var user model.User
	if err := h.db.Where("email = ? AND is_active = ?", req.Email, true).First(&user).Error; err != nil {
		if h.bruteForce != nil {
			h.bruteForce.RecordFailedAttempt(c, ip)
		}
		// Same message for unknown user and wrong password
		return response.Unauthorized(c, "Credenciales inválidas")
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if h.bruteForce != nil {
			h.bruteForce.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Credenciales inválidas")
	}

	token, _, err := h.jwtManager.GenerateToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate token")
	}

	if h.bruteForce != nil {
		h.bruteForce.RecordSuccessfulAttempt(c, ip)
	}

	resp := LoginResponse{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		Rol:       user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		ProfileID: h.profileID(user),
	}

	return response.SuccessWithMessage(c, "Inicio de sesión exitoso", resp)
}

// HandleLogout handles GET /api/logout. The session token's JTI goes on the
// blacklist until its natural expiry.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	jti, ok := middleware.GetTokenJTI(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	header := c.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")

	expiresAt, err := h.jwtManager.GetTokenExpiry(token)
	if err != nil {
		expiresAt = time.Now().Add(24 * time.Hour)
	}

	if err := h.blacklistService.RevokeToken(c.Context(), jti, user.ID, expiresAt, "logout"); err != nil {
		return response.InternalServerError(c, "Failed to revoke session")
	}

	return response.SuccessWithMessage(c, "Sesión cerrada correctamente", nil)
}

// profileID resolves the role-specific profile record id for the client,
// which addresses profile endpoints by profile id rather than user id.
func (h *AuthHandler) profileID(user model.User) uint {
	switch user.Role {
	case model.RoleAdmin:
		var admin model.Admin
		if err := h.db.Where("user_id = ?", user.ID).First(&admin).Error; err == nil {
			return admin.ID
		}
	case model.RoleTeacher:
		var teacher model.Teacher
		if err := h.db.Where("user_id = ?", user.ID).First(&teacher).Error; err == nil {
			return teacher.ID
		}
	case model.RoleStudent:
		var student model.Student
		if err := h.db.Where("user_id = ?", user.ID).First(&student).Error; err == nil {
			return student.ID
		}
	}
	return 0
}
