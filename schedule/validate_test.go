package schedule

import (
	"strings"
	"testing"
)

// fakeLookups is an in-memory Lookups implementation.
type fakeLookups struct {
	nrcOwners map[string]uint // nrc -> course id holding it
	teachers  map[uint]bool
	err       error
}

func (f *fakeLookups) CourseNRCExists(nrc string, excludeID uint) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	owner, ok := f.nrcOwners[nrc]
	if !ok {
		return false, nil
	}
	return excludeID == 0 || owner != excludeID, nil
}

func (f *fakeLookups) TeacherExists(id uint) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.teachers[id], nil
}

func validCourse() CourseData {
	return CourseData{
		NRC:               "123456",
		NombreMateria:     "Estructuras de Datos",
		Seccion:           "001",
		Dias:              []string{"Lunes", "Miércoles"},
		HoraInicio:        "09:00",
		HoraFin:           "11:00",
		Salon:             "A-301",
		ProgramaEducativo: "Ingeniería en Ciencias de la Computación",
		ProfesorAsignado:  "7",
		Creditos:          "8",
	}
}

func emptyStore() *fakeLookups {
	return &fakeLookups{
		nrcOwners: map[string]uint{},
		teachers:  map[uint]bool{7: true},
	}
}

func TestValidateCourseAccepted(t *testing.T) {
	errs := ValidateCourse(validCourse(), 0, emptyStore())
	if len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateCourseNoTeacherIsAccepted(t *testing.T) {
	data := validCourse()
	data.ProfesorAsignado = ""

	errs := ValidateCourse(data, 0, emptyStore())
	if len(errs) != 0 {
		t.Fatalf("expected no errors for unassigned teacher, got %v", errs)
	}
}

func TestValidateCourseRequiredFields(t *testing.T) {
	mutations := []struct {
		field  string
		mutate func(*CourseData)
		want   string
	}{
		{"nrc", func(d *CourseData) { d.NRC = "" }, "El NRC es requerido"},
		{"nombre_materia", func(d *CourseData) { d.NombreMateria = "  " }, "El nombre de la materia es requerido"},
		{"seccion", func(d *CourseData) { d.Seccion = "" }, "La sección es requerida"},
		{"dias", func(d *CourseData) { d.Dias = nil }, "Debe seleccionar al menos un día"},
		{"hora_inicio", func(d *CourseData) { d.HoraInicio = "" }, "La hora de inicio es requerida"},
		{"hora_fin", func(d *CourseData) { d.HoraFin = "" }, "La hora de fin es requerida"},
		{"salon", func(d *CourseData) { d.Salon = "" }, "El salón es requerido"},
		{"programa_educativo", func(d *CourseData) { d.ProgramaEducativo = "" }, "El programa educativo es requerido"},
		{"creditos", func(d *CourseData) { d.Creditos = "" }, "Los créditos son requeridos"},
	}

	for _, m := range mutations {
		t.Run(m.field, func(t *testing.T) {
			data := validCourse()
			m.mutate(&data)

			errs := ValidateCourse(data, 0, emptyStore())
			if errs[m.field] != m.want {
				t.Errorf("errs[%q] = %q, want %q", m.field, errs[m.field], m.want)
			}
		})
	}
}

func TestValidateCourseNRCFormat(t *testing.T) {
	for _, nrc := range []string{"12345", "1234567", "12A456", "12 456"} {
		data := validCourse()
		data.NRC = nrc

		errs := ValidateCourse(data, 0, emptyStore())
		if errs["nrc"] != "El NRC debe ser exactamente 6 dígitos numéricos" {
			t.Errorf("nrc %q: got %q", nrc, errs["nrc"])
		}
	}
}

func TestValidateCourseNRCUniqueness(t *testing.T) {
	store := emptyStore()
	store.nrcOwners["123456"] = 42

	errs := ValidateCourse(validCourse(), 0, store)
	if errs["nrc"] != "NRC ya existe en la base de datos" {
		t.Fatalf("expected duplicate NRC error, got %v", errs)
	}

	// Updating the record that owns the NRC is not a collision.
	errs = ValidateCourse(validCourse(), 42, store)
	if _, found := errs["nrc"]; found {
		t.Fatalf("own NRC reported as duplicate: %v", errs)
	}

	// A different record still collides.
	errs = ValidateCourse(validCourse(), 43, store)
	if errs["nrc"] != "NRC ya existe en la base de datos" {
		t.Fatalf("expected duplicate NRC error for other record, got %v", errs)
	}
}

func TestValidateCourseInvalidDay(t *testing.T) {
	data := validCourse()
	data.Dias = []string{"Lunes", "Domingo"}

	errs := ValidateCourse(data, 0, emptyStore())
	msg := errs["dias"]
	if !strings.HasPrefix(msg, "Día inválido: Domingo.") {
		t.Errorf("unexpected dias message: %q", msg)
	}
	if !strings.Contains(msg, "Lunes") || !strings.Contains(msg, "Viernes") {
		t.Errorf("message should list valid days: %q", msg)
	}
}

func TestValidateCourseTimeRules(t *testing.T) {
	data := validCourse()
	data.HoraInicio = "no se"

	errs := ValidateCourse(data, 0, emptyStore())
	if errs["hora_inicio"] != "Formato de hora inválido" {
		t.Errorf("got %q", errs["hora_inicio"])
	}

	data = validCourse()
	data.HoraInicio = "11:00"
	data.HoraFin = "09:00"

	errs = ValidateCourse(data, 0, emptyStore())
	if errs["hora_fin"] != "La hora de fin debe ser mayor que la hora de inicio" {
		t.Errorf("got %q", errs["hora_fin"])
	}

	// Equal times are rejected too.
	data.HoraFin = "11:00"
	errs = ValidateCourse(data, 0, emptyStore())
	if errs["hora_fin"] != "La hora de fin debe ser mayor que la hora de inicio" {
		t.Errorf("equal times: got %q", errs["hora_fin"])
	}

	// 12-hour inputs normalize before comparing.
	data.HoraInicio = "9:00 AM"
	data.HoraFin = "2:30 PM"
	errs = ValidateCourse(data, 0, emptyStore())
	if len(errs) != 0 {
		t.Errorf("expected mixed formats to validate, got %v", errs)
	}
}

func TestValidateCourseTeacherReference(t *testing.T) {
	data := validCourse()
	data.ProfesorAsignado = "abc"

	errs := ValidateCourse(data, 0, emptyStore())
	if errs["profesor_asignado"] != "ID de profesor inválido" {
		t.Errorf("got %q", errs["profesor_asignado"])
	}

	data.ProfesorAsignado = "99"
	errs = ValidateCourse(data, 0, emptyStore())
	if errs["profesor_asignado"] != "El profesor asignado no existe" {
		t.Errorf("got %q", errs["profesor_asignado"])
	}

	// A negative id is a well-formed integer that resolves to nothing.
	data.ProfesorAsignado = "-5"
	errs = ValidateCourse(data, 0, emptyStore())
	if errs["profesor_asignado"] != "El profesor asignado no existe" {
		t.Errorf("negative id: got %q", errs["profesor_asignado"])
	}
}

func TestValidateCourseInvalidProgram(t *testing.T) {
	data := validCourse()
	data.ProgramaEducativo = "Gastronomía"

	errs := ValidateCourse(data, 0, emptyStore())
	if errs["programa_educativo"] != "Programa educativo inválido" {
		t.Errorf("got %q", errs["programa_educativo"])
	}
}

func TestValidateCourseAggregatesAllErrors(t *testing.T) {
	errs := ValidateCourse(CourseData{}, 0, emptyStore())

	expected := []string{
		"nrc", "nombre_materia", "seccion", "dias",
		"hora_inicio", "hora_fin", "salon", "programa_educativo", "creditos",
	}
	for _, field := range expected {
		if _, ok := errs[field]; !ok {
			t.Errorf("missing error for %q", field)
		}
	}
	if len(errs) != len(expected) {
		t.Errorf("got %d errors, want %d: %v", len(errs), len(expected), errs)
	}
}

func TestValidateCourseLookupFailureIsNotFatal(t *testing.T) {
	store := emptyStore()
	store.err = errTest

	errs := ValidateCourse(validCourse(), 0, store)
	if _, found := errs["nrc"]; found {
		t.Errorf("lookup failure should not flag nrc: %v", errs)
	}
	if _, found := errs["profesor_asignado"]; found {
		t.Errorf("lookup failure should not flag profesor_asignado: %v", errs)
	}
}

var errTest = errTestType{}

type errTestType struct{}

func (errTestType) Error() string { return "lookup unavailable" }
