package admins

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/webmovil/escolar-api/model"
	"github.com/webmovil/escolar-api/utils/auth"
	"github.com/webmovil/escolar-api/utils/response"
	"github.com/webmovil/escolar-api/utils/validation"
	"gorm.io/gorm"
)

// AdminHandler handles administrator profile requests
type AdminHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateAdminRequest is the registration payload: identity plus profile.
type CreateAdminRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	ClaveAdmin string `json:"clave_admin"`
	Telefono   string `json:"telefono"`
	RFC        string `json:"rfc"`
	Edad       int    `json:"edad"`
	Ocupacion  string `json:"ocupacion"`
}

// UpdateAdminRequest carries partial profile edits; the target id travels in
// the body and identity fields update the underlying user.
type UpdateAdminRequest struct {
	ID         *uint   `json:"id"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	ClaveAdmin *string `json:"clave_admin"`
	Telefono   *string `json:"telefono"`
	RFC        *string `json:"rfc"`
	Edad       *int    `json:"edad"`
	Ocupacion  *string `json:"ocupacion"`
}

// CreateAdmin handles POST /api/admin. Registration is open; the client
// gates it behind its own admin session.
func (h *AdminHandler) CreateAdmin(c *fiber.Ctx) error {
	var req CreateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	h.db.Model(&model.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return response.Conflict(c, "El correo electrónico ya está registrado")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to hash password")
	}

	admin := model.Admin{
		ClaveAdmin: validation.SanitizeString(req.ClaveAdmin),
		Telefono:   validation.SanitizeString(req.Telefono),
		RFC:        strings.ToUpper(validation.SanitizeString(req.RFC)),
		Edad:       req.Edad,
		Ocupacion:  validation.SanitizeString(req.Ocupacion),
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		user := model.User{
			Email:        email,
			PasswordHash: hash,
			FirstName:    validation.SanitizeString(req.FirstName),
			LastName:     validation.SanitizeString(req.LastName),
			Role:         model.RoleAdmin,
			IsActive:     true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		admin.UserID = user.ID
		return tx.Create(&admin).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create admin")
	}

	h.db.Preload("User").First(&admin, admin.ID)

	return response.Created(c, admin)
}

// GetAdmin handles GET /api/admin?id=N
func (h *AdminHandler) GetAdmin(c *fiber.Ctx) error {
	rawID := c.Query("id")
	if rawID == "" {
		return response.BadRequest(c, "Se requiere el ID del administrador")
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return response.BadRequest(c, "ID de administrador inválido")
	}

	var admin model.Admin
	if err := h.db.Preload("User").First(&admin, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Administrador no encontrado")
		}
		return response.InternalServerError(c, "Failed to fetch admin")
	}

	return response.Success(c, admin)
}

// UpdateAdmin handles PUT /api/admin
func (h *AdminHandler) UpdateAdmin(c *fiber.Ctx) error {
	var req UpdateAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.ID == nil {
		return response.BadRequest(c, "Se requiere el ID del administrador")
	}

	var admin model.Admin
	if err := h.db.Preload("User").First(&admin, *req.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Administrador no encontrado")
		}
		return response.InternalServerError(c, "Failed to fetch admin")
	}

	if req.ClaveAdmin != nil {
		admin.ClaveAdmin = validation.SanitizeString(*req.ClaveAdmin)
	}
	if req.Telefono != nil {
		admin.Telefono = validation.SanitizeString(*req.Telefono)
	}
	if req.RFC != nil {
		admin.RFC = strings.ToUpper(validation.SanitizeString(*req.RFC))
	}
	if req.Edad != nil {
		admin.Edad = *req.Edad
	}
	if req.Ocupacion != nil {
		admin.Ocupacion = validation.SanitizeString(*req.Ocupacion)
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if req.FirstName != nil || req.LastName != nil {
			if req.FirstName != nil {
				admin.User.FirstName = validation.SanitizeString(*req.FirstName)
			}
			if req.LastName != nil {
				admin.User.LastName = validation.SanitizeString(*req.LastName)
			}
			if err := tx.Save(&admin.User).Error; err != nil {
				return err
			}
		}
		return tx.Save(&admin).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to update admin")
	}

	return response.SuccessWithMessage(c, "Administrador actualizado correctamente", admin)
}

// DeleteAdmin handles DELETE /api/admin?id=N. Removing the profile also
// removes the login identity.
func (h *AdminHandler) DeleteAdmin(c *fiber.Ctx) error {
	rawID := c.Query("id")
	if rawID == "" {
		return response.BadRequest(c, "Se requiere el ID del administrador")
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return response.BadRequest(c, "ID de administrador inválido")
	}

	var admin model.Admin
	if err := h.db.First(&admin, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Administrador no encontrado")
		}
		return response.InternalServerError(c, "Failed to fetch admin")
	}

	// Hard delete so the email can be registered again.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&admin).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.User{}, admin.UserID).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete admin")
	}

	return response.SuccessWithMessage(c, "Administrador eliminado correctamente", nil)
}

// ListAdmins handles GET /api/lista-admins
func (h *AdminHandler) ListAdmins(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
	search := c.Query("search", "")
	sortBy := c.Query("sort_by", "id")
	sortOrder := c.Query("sort_order", "asc")

	query := h.db.Model(&model.Admin{}).
		Joins("JOIN users ON users.id = admins.user_id AND users.deleted_at IS NULL")

	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"users.first_name ILIKE ? OR users.last_name ILIKE ? OR users.email ILIKE ? OR admins.clave_admin ILIKE ?",
			like, like, like, like)
	}

	sortMapping := map[string]string{
		"id":          "admins.id",
		"clave_admin": "admins.clave_admin",
		"first_name":  "users.first_name",
		"last_name":   "users.last_name",
		"email":       "users.email",
	}
	sortField, ok := sortMapping[sortBy]
	if !ok {
		sortField = "admins.id"
	}
	if sortOrder == "desc" {
		sortField += " DESC"
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count admins")
	}

	pagination := response.CalculatePagination(page, pageSize, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var admins []model.Admin
	if err := query.Preload("User").
		Order(sortField).
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&admins).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch admins")
	}

	return response.Paginated(c, admins, pagination)
}
