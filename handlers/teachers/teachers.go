package teachers

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/webmovil/escolar-api/model"
	"github.com/webmovil/escolar-api/utils/auth"
	"github.com/webmovil/escolar-api/utils/middleware"
	"github.com/webmovil/escolar-api/utils/response"
	"github.com/webmovil/escolar-api/utils/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TeacherHandler handles teacher profile requests
type TeacherHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(db *gorm.DB) *TeacherHandler {
	return &TeacherHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateTeacherRequest is the registration payload: identity plus profile.
type CreateTeacherRequest struct {
	Email             string   `json:"email" validate:"required,email"`
	Password          string   `json:"password" validate:"required,min=8"`
	FirstName         string   `json:"first_name" validate:"required"`
	LastName          string   `json:"last_name" validate:"required"`
	IDTrabajador      string   `json:"id_trabajador" validate:"required"`
	FechaNacimiento   string   `json:"fecha_nacimiento"` // YYYY-MM-DD
	Telefono          string   `json:"telefono"`
	RFC               string   `json:"rfc"`
	Cubiculo          string   `json:"cubiculo"`
	Edad              int      `json:"edad"`
	AreaInvestigacion string   `json:"area_investigacion"`
	Materias          []string `json:"materias_json"`
}

// UpdateTeacherRequest carries partial profile edits.
type UpdateTeacherRequest struct {
	ID                *uint     `json:"id"`
	FirstName         *string   `json:"first_name"`
	LastName          *string   `json:"last_name"`
	IDTrabajador      *string   `json:"id_trabajador"`
	FechaNacimiento   *string   `json:"fecha_nacimiento"`
	Telefono          *string   `json:"telefono"`
	RFC               *string   `json:"rfc"`
	Cubiculo          *string   `json:"cubiculo"`
	Edad              *int      `json:"edad"`
	AreaInvestigacion *string   `json:"area_investigacion"`
	Materias          *[]string `json:"materias_json"`
}

// CreateTeacher handles POST /api/maestros
func (h *TeacherHandler) CreateTeacher(c *fiber.Ctx) error {
	var req CreateTeacherRequest
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

	materias, err := json.Marshal(req.Materias)
	if err != nil {
		return response.BadRequest(c, "Lista de materias inválida")
	}

	teacher := model.Teacher{
		IDTrabajador:      validation.SanitizeString(req.IDTrabajador),
		Telefono:          validation.SanitizeString(req.Telefono),
		RFC:               strings.ToUpper(validation.SanitizeString(req.RFC)),
		Cubiculo:          validation.SanitizeString(req.Cubiculo),
		Edad:              req.Edad,
		AreaInvestigacion: validation.SanitizeString(req.AreaInvestigacion),
		Materias:          datatypes.JSON(materias),
	}

	if req.FechaNacimiento != "" {
		t, err := time.Parse("2006-01-02", req.FechaNacimiento)
		if err != nil {
			return response.BadRequest(c, "Fecha de nacimiento inválida, formato esperado YYYY-MM-DD")
		}
		teacher.FechaNacimiento = datatypes.Date(t)
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		user := model.User{
			Email:        email,
			PasswordHash: hash,
			FirstName:    validation.SanitizeString(req.FirstName),
			LastName:     validation.SanitizeString(req.LastName),
			Role:         model.RoleTeacher,
			IsActive:     true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		teacher.UserID = user.ID
		return tx.Create(&teacher).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create teacher")
	}

	h.db.Preload("User").First(&teacher, teacher.ID)

	return response.Created(c, teacher)
}

// GetTeacher handles GET /api/maestros?id=N
func (h *TeacherHandler) GetTeacher(c *fiber.Ctx) error {
	rawID := c.Query("id")
	if rawID == "" {
		return response.BadRequest(c, "Se requiere el ID del maestro")
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return response.BadRequest(c, "ID de maestro inválido")
	}

	var teacher model.Teacher
	if err := h.db.Preload("User").First(&teacher, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Maestro no encontrado")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	return response.Success(c, teacher)
}

// UpdateTeacher handles PUT /api/maestros. Admins can edit any profile;
// teachers only their own.
func (h *TeacherHandler) UpdateTeacher(c *fiber.Ctx) error {
	var req UpdateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.ID == nil {
		return response.BadRequest(c, "Se requiere el ID del maestro")
	}

	var teacher model.Teacher
	if err := h.db.Preload("User").First(&teacher, *req.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Maestro no encontrado")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	if actor, ok := middleware.GetUser(c); ok {
		if actor.Role == model.RoleTeacher && actor.ID != teacher.UserID {
			return response.Forbidden(c, "No tienes permisos para realizar esta acción")
		}
	}

	if req.IDTrabajador != nil {
		teacher.IDTrabajador = validation.SanitizeString(*req.IDTrabajador)
	}
	if req.FechaNacimiento != nil && *req.FechaNacimiento != "" {
		t, err := time.Parse("2006-01-02", *req.FechaNacimiento)
		if err != nil {
			return response.BadRequest(c, "Fecha de nacimiento inválida, formato esperado YYYY-MM-DD")
		}
		teacher.FechaNacimiento = datatypes.Date(t)
	}
	if req.Telefono != nil {
		teacher.Telefono = validation.SanitizeString(*req.Telefono)
	}
	if req.RFC != nil {
		teacher.RFC = strings.ToUpper(validation.SanitizeString(*req.RFC))
	}
	if req.Cubiculo != nil {
		teacher.Cubiculo = validation.SanitizeString(*req.Cubiculo)
	}
	if req.Edad != nil {
		teacher.Edad = *req.Edad
	}
	if req.AreaInvestigacion != nil {
		teacher.AreaInvestigacion = validation.SanitizeString(*req.AreaInvestigacion)
	}
	if req.Materias != nil {
		materias, err := json.Marshal(*req.Materias)
		if err != nil {
			return response.BadRequest(c, "Lista de materias inválida")
		}
		teacher.Materias = datatypes.JSON(materias)
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if req.FirstName != nil || req.LastName != nil {
			if req.FirstName != nil {
				teacher.User.FirstName = validation.SanitizeString(*req.FirstName)
			}
			if req.LastName != nil {
				teacher.User.LastName = validation.SanitizeString(*req.LastName)
			}
			if err := tx.Save(&teacher.User).Error; err != nil {
				return err
			}
		}
		return tx.Save(&teacher).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to update teacher")
	}

	return response.SuccessWithMessage(c, "Maestro actualizado correctamente", teacher)
}

// DeleteTeacher handles DELETE /api/maestros?id=N. Admins can delete any
// profile; teachers only their own. Courses assigned to the teacher keep
// existing with their teacher reference cleared.
func (h *TeacherHandler) DeleteTeacher(c *fiber.Ctx) error {
	rawID := c.Query("id")
	if rawID == "" {
		return response.BadRequest(c, "Se requiere el ID del maestro")
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return response.BadRequest(c, "ID de maestro inválido")
	}

	var teacher model.Teacher
	if err := h.db.First(&teacher, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Maestro no encontrado")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	if actor, ok := middleware.GetUser(c); ok && actor.Role != model.RoleAdmin {
		if actor.Role != model.RoleTeacher || actor.ID != teacher.UserID {
			return response.Forbidden(c, "No tienes permisos para eliminar otros maestros")
		}
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Course{}).
			Where("profesor_asignado_id = ?", teacher.ID).
			Update("profesor_asignado_id", nil).Error; err != nil {
			return err
		}
		// Hard delete so the email can be registered again.
		if err := tx.Unscoped().Delete(&teacher).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.User{}, teacher.UserID).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete teacher")
	}

	return response.SuccessWithMessage(c, "Maestro eliminado correctamente", nil)
}

// ListTeachers handles GET /api/lista-maestros
func (h *TeacherHandler) ListTeachers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
	search := c.Query("search", "")
	sortBy := c.Query("sort_by", "id")
	sortOrder := c.Query("sort_order", "asc")

	query := h.db.Model(&model.Teacher{}).
		Joins("JOIN users ON users.id = teachers.user_id AND users.deleted_at IS NULL")

	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"users.first_name ILIKE ? OR users.last_name ILIKE ? OR users.email ILIKE ? OR teachers.id_trabajador ILIKE ?",
			like, like, like, like)
	}

	sortMapping := map[string]string{
		"id":            "teachers.id",
		"id_trabajador": "teachers.id_trabajador",
		"first_name":    "users.first_name",
		"last_name":     "users.last_name",
		"email":         "users.email",
	}
	sortField, ok := sortMapping[sortBy]
	if !ok {
		sortField = "teachers.id"
	}
	if sortOrder == "desc" {
		sortField += " DESC"
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count teachers")
	}

	pagination := response.CalculatePagination(page, pageSize, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var teachers []model.Teacher
	if err := query.Preload("User").
		Order(sortField).
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&teachers).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch teachers")
	}

	return response.Paginated(c, teachers, pagination)
}
