package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/webmovil/escolar-api/model"
)

// Lookups are the read-only store queries the validator needs.
type Lookups interface {
	// CourseNRCExists reports whether any course other than excludeID
	// (0 = none) already carries the NRC.
	CourseNRCExists(nrc string, excludeID uint) (bool, error)
	// TeacherExists reports whether a teacher profile with the id exists.
	TeacherExists(id uint) (bool, error)
}

// CourseData is a candidate course payload. Times and the teacher reference
// stay raw strings; the validator owns their interpretation.
type CourseData struct {
	NRC               string
	NombreMateria     string
	Seccion           string
	Dias              []string
	HoraInicio        string
	HoraFin           string
	Salon             string
	ProgramaEducativo string
	ProfesorAsignado  string // "" means no teacher assigned
	Creditos          string
}

var nrcPattern = regexp.MustCompile(`^\d{6}$`)

// ValidateCourse evaluates every field rule independently and returns one
// message per failing field, keyed by the wire field name; an empty map means
// the payload is acceptable. excludeID exempts the record being updated from
// the NRC uniqueness check (0 = none).
//
// The NRC existence pre-check is advisory UX only: two concurrent creates can
// both pass it. The unique index on courses.nrc is the authoritative guard,
// and callers translate that violation into the same nrc message. For the
// same reason a failed lookup skips the check rather than failing the field.
//
// Duplicate entries in Dias are tolerated; only membership is checked.
func ValidateCourse(data CourseData, excludeID uint, store Lookups) map[string]string {
	errs := make(map[string]string)

	nrc := strings.TrimSpace(data.NRC)
	if nrc == "" {
		errs["nrc"] = "El NRC es requerido"
	} else if !nrcPattern.MatchString(nrc) {
		errs["nrc"] = "El NRC debe ser exactamente 6 dígitos numéricos"
	} else if exists, err := store.CourseNRCExists(nrc, excludeID); err == nil && exists {
		errs["nrc"] = "NRC ya existe en la base de datos"
	}

	if strings.TrimSpace(data.NombreMateria) == "" {
		errs["nombre_materia"] = "El nombre de la materia es requerido"
	}

	if strings.TrimSpace(data.Seccion) == "" {
		errs["seccion"] = "La sección es requerida"
	}

	if len(data.Dias) == 0 {
		errs["dias"] = "Debe seleccionar al menos un día"
	} else {
		for _, dia := range data.Dias {
			if !model.Weekday(dia).IsValid() {
				errs["dias"] = fmt.Sprintf("Día inválido: %s. Valores válidos: %s", dia, validDayNames())
				break
			}
		}
	}

	inicio, inicioOK := ParseTime(data.HoraInicio)
	fin, finOK := ParseTime(data.HoraFin)

	if strings.TrimSpace(data.HoraInicio) == "" {
		errs["hora_inicio"] = "La hora de inicio es requerida"
	} else if !inicioOK {
		errs["hora_inicio"] = "Formato de hora inválido"
	}

	if strings.TrimSpace(data.HoraFin) == "" {
		errs["hora_fin"] = "La hora de fin es requerida"
	} else if !finOK {
		errs["hora_fin"] = "Formato de hora inválido"
	}

	if inicioOK && finOK && !inicio.Before(fin) {
		errs["hora_fin"] = "La hora de fin debe ser mayor que la hora de inicio"
	}

	if strings.TrimSpace(data.Salon) == "" {
		errs["salon"] = "El salón es requerido"
	}

	if strings.TrimSpace(data.ProgramaEducativo) == "" {
		errs["programa_educativo"] = "El programa educativo es requerido"
	} else if !model.Program(data.ProgramaEducativo).IsValid() {
		errs["programa_educativo"] = "Programa educativo inválido"
	}

	if ref := strings.TrimSpace(data.ProfesorAsignado); ref != "" {
		id, err := strconv.Atoi(ref)
		if err != nil {
			errs["profesor_asignado"] = "ID de profesor inválido"
		} else if id < 0 {
			// Any integer coerces; a negative one just never resolves.
			errs["profesor_asignado"] = "El profesor asignado no existe"
		} else if exists, lerr := store.TeacherExists(uint(id)); lerr == nil && !exists {
			errs["profesor_asignado"] = "El profesor asignado no existe"
		}
	}

	if strings.TrimSpace(data.Creditos) == "" {
		errs["creditos"] = "Los créditos son requeridos"
	}

	return errs
}

func validDayNames() string {
	days := model.Weekdays()
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}
