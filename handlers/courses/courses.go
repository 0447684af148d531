package courses

import (
	"encoding/json"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/webmovil/escolar-api/database"
	"github.com/webmovil/escolar-api/model"
	"github.com/webmovil/escolar-api/schedule"
	"github.com/webmovil/escolar-api/utils/response"
	"github.com/webmovil/escolar-api/utils/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CourseHandler handles course-section (materia) requests
type CourseHandler struct {
	db      *gorm.DB
	lookups *database.GormLookups
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{
		db:      db,
		lookups: database.NewGormLookups(db),
	}
}

// CourseRequest is the create/update body. Every field is optional at the
// decode layer; presence decides what an update overwrites, and the course
// validator owns the semantic checks with the raw values.
type CourseRequest struct {
	ID                *uint                `json:"id"` // update target
	NRC               *string              `json:"nrc"`
	NombreMateria     *string              `json:"nombre_materia"`
	Seccion           *string              `json:"seccion"`
	Dias              *schedule.DayList    `json:"dias"`
	HoraInicio        *string              `json:"hora_inicio"`
	HoraFin           *string              `json:"hora_fin"`
	Salon             *string              `json:"salon"`
	ProgramaEducativo *string              `json:"programa_educativo"`
	ProfesorAsignado  *schedule.TeacherRef `json:"profesor_asignado"`
	Creditos          *string              `json:"creditos"`
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// validationData flattens the request into the validator's payload shape.
func (r CourseRequest) validationData() schedule.CourseData {
	data := schedule.CourseData{
		NRC:               strValue(r.NRC),
		NombreMateria:     strValue(r.NombreMateria),
		Seccion:           strValue(r.Seccion),
		HoraInicio:        strValue(r.HoraInicio),
		HoraFin:           strValue(r.HoraFin),
		Salon:             strValue(r.Salon),
		ProgramaEducativo: strValue(r.ProgramaEducativo),
		Creditos:          strValue(r.Creditos),
	}
	if r.Dias != nil {
		data.Dias = *r.Dias
	}
	if r.ProfesorAsignado != nil {
		data.ProfesorAsignado = r.ProfesorAsignado.Raw
	}
	return data
}

// ListCourses handles GET /api/lista-materias
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "10"))
	search := c.Query("search", "")
	sortBy := c.Query("sort_by", "id")
	sortOrder := c.Query("sort_order", "asc")

	query := h.db.Model(&model.Course{})

	if search != "" {
		query = query.Where("nrc ILIKE ? OR nombre_materia ILIKE ? OR salon ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	// Whitelisted sort fields only
	sortMapping := map[string]string{
		"id":             "id",
		"nrc":            "nrc",
		"nombre_materia": "nombre_materia",
		"seccion":        "seccion",
		"salon":          "salon",
	}
	sortField, ok := sortMapping[sortBy]
	if !ok {
		sortField = "id"
	}
	if sortOrder == "desc" {
		sortField += " DESC"
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	pagination := response.CalculatePagination(page, pageSize, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var courses []model.Course
	if err := query.Preload("ProfesorAsignado").
		Order(sortField).
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&courses).Error; err != nil {
		return response.InternalServerError(c, "Failed to fetch courses")
	}

	return response.Paginated(c, courses, pagination)
}

// GetCourse handles GET /api/materias?id=N
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	rawID := c.Query("id")
	if rawID == "" {
		return response.BadRequest(c, "Se requiere el ID de la materia")
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return response.BadRequest(c, "ID de materia inválido")
	}

	var course model.Course
	if err := h.db.Preload("ProfesorAsignado").First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Materia no encontrada")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	return response.Success(c, course)
}

// CreateCourse handles POST /api/materias
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	data := req.validationData()
	if errs := schedule.ValidateCourse(data, 0, h.lookups); len(errs) > 0 {
		return response.FieldErrors(c, errs)
	}

	course, err := buildCourse(data)
	if err != nil {
		return response.InternalServerError(c, "Failed to normalize course")
	}

	if err := h.db.Create(course).Error; err != nil {
		// The pre-check above can race; the unique index is authoritative.
		if database.IsUniqueViolation(err) {
			return response.FieldErrors(c, map[string]string{
				"nrc": "NRC ya existe en la base de datos",
			})
		}
		return response.InternalServerError(c, "Failed to create course")
	}

	if err := h.db.Preload("ProfesorAsignado").First(course, course.ID).Error; err != nil {
		log.Printf("course %d created but reload failed: %v", course.ID, err)
	}

	return response.Created(c, course)
}

// UpdateCourse handles PUT /api/materias. The target id travels in the body,
// unspecified fields retain their stored value, and the merged record is
// re-validated as a whole before anything is written.
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.ID == nil {
		return response.BadRequest(c, "Se requiere el ID de la materia")
	}

	var course model.Course
	if err := h.db.First(&course, *req.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Materia no encontrada")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	merged, err := mergeCourse(&course, req)
	if err != nil {
		return response.InternalServerError(c, "Failed to read stored course")
	}

	if errs := schedule.ValidateCourse(merged, course.ID, h.lookups); len(errs) > 0 {
		return response.FieldErrors(c, errs)
	}

	updated, err := buildCourse(merged)
	if err != nil {
		return response.InternalServerError(c, "Failed to normalize course")
	}
	updated.ID = course.ID
	updated.CreatedAt = course.CreatedAt

	if err := h.db.Save(updated).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return response.FieldErrors(c, map[string]string{
				"nrc": "NRC ya existe en la base de datos",
			})
		}
		return response.InternalServerError(c, "Failed to update course")
	}

	if err := h.db.Preload("ProfesorAsignado").First(updated, updated.ID).Error; err != nil {
		log.Printf("course %d updated but reload failed: %v", updated.ID, err)
	}

	return response.SuccessWithMessage(c, "Materia actualizada correctamente", updated)
}

// DeleteCourse handles DELETE /api/materias?id=N. Deletion is unconditional:
// no cascade checks against future scheduling conflicts.
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	rawID := c.Query("id")
	if rawID == "" {
		return response.BadRequest(c, "Se requiere el ID de la materia")
	}

	id, err := strconv.Atoi(rawID)
	if err != nil {
		return response.BadRequest(c, "ID de materia inválido")
	}

	var course model.Course
	if err := h.db.First(&course, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Materia no encontrada")
		}
		return response.InternalServerError(c, "Failed to fetch course")
	}

	// Hard delete: the unique index on nrc must free the NRC for reuse.
	if err := h.db.Unscoped().Delete(&course).Error; err != nil {
		return response.InternalServerError(c, "Error al eliminar materia")
	}

	return response.SuccessWithMessage(c, "Materia eliminada correctamente", nil)
}

// CheckNRC handles GET /api/verificar-nrc?nrc=NNNNNN&exclude_id=N. Live
// availability probe for the client form; advisory only.
func (h *CourseHandler) CheckNRC(c *fiber.Ctx) error {
	nrc := c.Query("nrc")
	if nrc == "" {
		return response.BadRequest(c, "Se requiere el parámetro 'nrc'")
	}

	var excludeID uint
	if raw := c.Query("exclude_id"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return response.BadRequest(c, "ID de exclusión inválido")
		}
		excludeID = uint(parsed)
	}

	exists, err := h.lookups.CourseNRCExists(nrc, excludeID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check NRC")
	}

	return response.Success(c, fiber.Map{"exists": exists})
}

// buildCourse normalizes validated payload data into a persistable record:
// canonical "HH:MM" times, jsonb day list, empty teacher ref to NULL.
func buildCourse(data schedule.CourseData) (*model.Course, error) {
	inicio, _ := schedule.ParseTime(data.HoraInicio)
	fin, _ := schedule.ParseTime(data.HoraFin)

	dias, err := json.Marshal([]string(data.Dias))
	if err != nil {
		return nil, err
	}

	var profesorID *uint
	if data.ProfesorAsignado != "" {
		id, err := strconv.Atoi(data.ProfesorAsignado)
		if err != nil {
			return nil, err
		}
		uid := uint(id)
		profesorID = &uid
	}

	return &model.Course{
		NRC:                validation.SanitizeString(data.NRC),
		NombreMateria:      validation.SanitizeString(data.NombreMateria),
		Seccion:            validation.SanitizeString(data.Seccion),
		Dias:               datatypes.JSON(dias),
		HoraInicio:         inicio.String(),
		HoraFin:            fin.String(),
		Salon:              validation.SanitizeString(data.Salon),
		ProgramaEducativo:  data.ProgramaEducativo,
		ProfesorAsignadoID: profesorID,
		Creditos:           validation.SanitizeString(data.Creditos),
	}, nil
}

// mergeCourse overlays the provided request fields on the stored record and
// returns the whole candidate for re-validation.
func mergeCourse(course *model.Course, req CourseRequest) (schedule.CourseData, error) {
	data := schedule.CourseData{
		NRC:               course.NRC,
		NombreMateria:     course.NombreMateria,
		Seccion:           course.Seccion,
		HoraInicio:        course.HoraInicio,
		HoraFin:           course.HoraFin,
		Salon:             course.Salon,
		ProgramaEducativo: course.ProgramaEducativo,
		Creditos:          course.Creditos,
	}

	var dias []string
	if err := json.Unmarshal(course.Dias, &dias); err != nil {
		return schedule.CourseData{}, err
	}
	data.Dias = dias

	if course.ProfesorAsignadoID != nil {
		data.ProfesorAsignado = strconv.Itoa(int(*course.ProfesorAsignadoID))
	}

	if req.NRC != nil {
		data.NRC = *req.NRC
	}
	if req.NombreMateria != nil {
		data.NombreMateria = *req.NombreMateria
	}
	if req.Seccion != nil {
		data.Seccion = *req.Seccion
	}
	if req.Dias != nil {
		data.Dias = *req.Dias
	}
	if req.HoraInicio != nil {
		data.HoraInicio = *req.HoraInicio
	}
	if req.HoraFin != nil {
		data.HoraFin = *req.HoraFin
	}
	if req.Salon != nil {
		data.Salon = *req.Salon
	}
	if req.ProgramaEducativo != nil {
		data.ProgramaEducativo = *req.ProgramaEducativo
	}
	if req.ProfesorAsignado != nil {
		data.ProfesorAsignado = req.ProfesorAsignado.Raw
	}
	if req.Creditos != nil {
		data.Creditos = *req.Creditos
	}

	return data, nil
}
