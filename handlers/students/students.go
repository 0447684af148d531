package students

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/webmovil/escolar-api/model"
	"github.com/webmovil/escolar-api/utils/auth"
	"github.com/webmovil/escolar-api/utils/response"
	"github.com/webmovil/escolar-api/utils/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StudentHandler handles student profile requests
type StudentHandler struct {
	db        *gorm.DB
	validator *validation.Validator
}

// NewStudentHandler creates a new student handler
func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{
		db:        db,
		validator: validation.NewValidator(),
	}
}

// CreateStudentRequest is the registration payload: identity plus profile.
type CreateStudentRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	FirstName       string `json:"first_name" validate:"required"`
	LastName        string `json:"last_name" validate:"required"`
	Matricula       string `json:"matricula" validate:"required"`
	CURP            string `json:"curp"`
	RFC             string `json:"rfc"`
	FechaNacimiento string `json:"fecha_nacimiento"` // YYYY-MM-DD
	Edad            int    `json:"edad"`
	Telefono        string `json:"telefono"`
	Ocupacion       string `json:"ocupacion"`
}

// UpdateStudentRequest carries partial profile edits.
type UpdateStudentRequest struct {
	ID              *uint   `json:"id"`
	FirstName       *string `json:"first_name"`
	LastName        *string `json:"last_name"`
	Matricula       *string `json:"matricula"`
	CURP            *string `json:"curp"`
	RFC             *string `json:"rfc"`
	FechaNacimiento *string `json:"fecha_nacimiento"`
	Edad            *int    `json:"edad"`
	Telefono        *string `json:"telefono"`
	Ocupacion       *string `json:"ocupacion"`
}

func parseBirthDate(raw string) (datatypes.Date, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}

// CreateStudent handles POST /api/alumnos
func (h *StudentHandler) CreateStudent(c *fiber.Ctx) error {
	var req CreateStudentRequest
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

	student := model.Student{
		Matricula: validation.SanitizeString(req.Matricula),
		CURP:      strings.ToUpper(validation.SanitizeString(req.CURP)),
		RFC:       strings.ToUpper(validation.SanitizeString(req.RFC)),
		Edad:      req.Edad,
		Telefono:  validation.SanitizeString(req.Telefono),
		Ocupacion: validation.SanitizeString(req.Ocupacion),
	}

	if req.FechaNacimiento != "" {
		fecha, err := parseBirthDate(req.FechaNacimiento)
		if err != nil {
			return response.BadRequest(c, "Fecha de nacimiento inválida, formato esperado YYYY-MM-DD")
		}
		student.FechaNacimiento = fecha
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		user := model.User{
			Email:        email,
			PasswordHash: hash,
			FirstName:    validation.SanitizeString(req.FirstName),
			LastName:     validation.SanitizeString(req.LastName),
			Role:         model.RoleStudent,
			IsActive:     true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		student.UserID = user.ID
		return tx.Create(&student).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to create student")
	}

	h.db.Preload("User").First(&student, student.ID)

	return response.Created(c, student)
}

// GetStudent handles GET /api/alumnos?id=N
func (h *StudentHandler) GetStudent(c *fiber.Ctx) error {
	rawID := c.Query("id")
	if rawID == "" {
		return response.BadRequest(c, "Se requiere el ID del alumno")
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return response.BadRequest(c, "ID de alumno inválido")
	}

	var student model.Student
	if err := h.db.Preload("User").First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Alumno no encontrado")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	return response.Success(c, student)
}

// UpdateStudent handles PUT /api/alumnos
func (h *StudentHandler) UpdateStudent(c *fiber.Ctx) error {
	var req UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.ID == nil {
		return response.BadRequest(c, "Se requiere el ID del alumno")
	}

	var student model.Student
	if err := h.db.Preload("User").First(&student, *req.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Alumno no encontrado")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	if req.Matricula != nil {
		student.Matricula = validation.SanitizeString(*req.Matricula)
	}
	if req.CURP != nil {
		student.CURP = strings.ToUpper(validation.SanitizeString(*req.CURP))
	}
	if req.RFC != nil {
		student.RFC = strings.ToUpper(validation.SanitizeString(*req.RFC))
	}
	if req.FechaNacimiento != nil && *req.FechaNacimiento != "" {
		fecha, err := parseBirthDate(*req.FechaNacimiento)
		if err != nil {
			return response.BadRequest(c, "Fecha de nacimiento inválida, formato esperado YYYY-MM-DD")
		}
		student.FechaNacimiento = fecha
	}
	if req.Edad != nil {
		student.Edad = *req.Edad
	}
	if req.Telefono != nil {
		student.Telefono = validation.SanitizeString(*req.Telefono)
	}
	if req.Ocupacion != nil {
		student.Ocupacion = validation.SanitizeString(*req.Ocupacion)
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if req.FirstName != nil || req.LastName != nil {
			if req.FirstName != nil {
				student.User.FirstName = validation.SanitizeString(*req.FirstName)
			}
			if req.LastName != nil {
				student.User.LastName = validation.SanitizeString(*req.LastName)
			}
			if err := tx.Save(&student.User).Error; err != nil {
				return err
			}
		}
		return tx.Save(&student).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to update student")
	}

	return response.SuccessWithMessage(c, "Alumno actualizado correctamente", student)
}

// DeleteStudent handles DELETE /api/alumnos?id=N
func (h *StudentHandler) DeleteStudent(c *fiber.Ctx) error {
	rawID := c.Query("id")
	if rawID == "" {
		return response.BadRequest(c, "Se requiere el ID del alumno")
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return response.BadRequest(c, "ID de alumno inválido")
	}

	var student model.Student
	if err := h.db.First(&student, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Alumno no encontrado")
		}
		return response.InternalServerError(c, "Failed to fetch student")
	}

	// Hard delete so the email can be registered again.
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&student).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.User{}, student.UserID).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to delete student")
	}

	return response.SuccessWithMessage(c, "Alumno eliminado correctamente", nil)
}

// ListStudents handles GET /api/lista-alumnos
func (h *StudentHandler) ListStudents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
	search := c.Query("search", "")
	sortBy := c.Query("sort_by", "id")
	sortOrder := c.Query("sort_order", "asc")

	query := h.db.Model(&model.Student{}).
		Joins("JOIN users ON users.id = students.user_id AND users.deleted_at IS NULL")

	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"users.first_name ILIKE ? OR users.last_name ILIKE ? OR users.email ILIKE ? OR students.matricula ILIKE ?",
			like, like, like, like)
	}

	sortMapping := map[string]string{
		"id":         "students.id",
		"matricula":  "students.matricula",
		"first_name": "users.first_name",
		"last_name":  "users.last_name",
		"email":      "users.email",
	}
	sortField, ok := sortMapping[sortBy]
	if !ok {
		sortField = "students.id"
	}
	if sortOrder == "desc" {
		sortField += " DESC"
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count students")
	}

	pagination := response.CalculatePagination(page, pageSize, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var students []model.Student
	if err := query.Preload("User").
		Order(sortField).
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&students).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch students")
	}

	return response.Paginated(c, students, pagination)
}
