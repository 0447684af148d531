package courses

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/webmovil/escolar-api/database"
	"github.com/webmovil/escolar-api/model"
	"gorm.io/gorm"
)

// courseEnvelope mirrors the response wire shape for handler round trips.
type courseEnvelope struct {
	Success bool         `json:"success"`
	Data    model.Course `json:"data"`
	Error   *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
}

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	store, err := database.StartMemory()
	if err != nil {
		t.Fatalf("start memory store: %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	db := store.GetDB().(*gorm.DB)

	app := fiber.New()
	h := NewCourseHandler(db)
	app.Post("/api/materias", h.CreateCourse)
	app.Put("/api/materias", h.UpdateCourse)
	app.Get("/api/materias", h.GetCourse)
	app.Delete("/api/materias", h.DeleteCourse)
	app.Get("/api/verificar-nrc", h.CheckNRC)

	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) courseEnvelope {
	t.Helper()

	var env courseEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env
}

func seedTeacher(t *testing.T, db *gorm.DB) model.Teacher {
	t.Helper()

	user := model.User{
		Email:        "maestro@escolar.mx",
		PasswordHash: "x",
		FirstName:    "Ana",
		LastName:     "Reyes",
		Role:         model.RoleTeacher,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	teacher := model.Teacher{UserID: user.ID, IDTrabajador: "T-100", Materias: []byte(`[]`)}
	if err := db.Create(&teacher).Error; err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	return teacher
}

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"nrc":                "100001",
		"nombre_materia":     "Algoritmos",
		"seccion":            "001",
		"dias":               []string{"Lunes"},
		"hora_inicio":        "9:00 AM",
		"hora_fin":           "10:30",
		"salon":              "A101",
		"programa_educativo": "Ingeniería en Ciencias de la Computación",
		"creditos":           "4",
	}
}

func TestCreateCoursePersistsNormalizedRecord(t *testing.T) {
	app, db := newTestApp(t)
	teacher := seedTeacher(t, db)

	payload := validPayload()
	payload["profesor_asignado"] = teacher.ID

	resp := doJSON(t, app, "POST", "/api/materias", payload)
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	if env.Data.HoraInicio != "09:00" || env.Data.HoraFin != "10:30" {
		t.Errorf("times = %s-%s, want 09:00-10:30", env.Data.HoraInicio, env.Data.HoraFin)
	}

	var dias []string
	if err := json.Unmarshal(env.Data.Dias, &dias); err != nil || len(dias) != 1 || dias[0] != "Lunes" {
		t.Errorf("dias = %s", env.Data.Dias)
	}

	if env.Data.ProfesorAsignadoID == nil || *env.Data.ProfesorAsignadoID != teacher.ID {
		t.Errorf("ProfesorAsignadoID = %v, want %d", env.Data.ProfesorAsignadoID, teacher.ID)
	}
	// The response carries the reloaded record with the teacher preloaded.
	if env.Data.ProfesorAsignado == nil || env.Data.ProfesorAsignado.ID != teacher.ID {
		t.Errorf("profesor not preloaded in response: %+v", env.Data.ProfesorAsignado)
	}

	var stored model.Course
	if err := db.First(&stored, env.Data.ID).Error; err != nil {
		t.Fatalf("stored record: %v", err)
	}
	if stored.NRC != "100001" || stored.HoraInicio != "09:00" {
		t.Errorf("stored = %+v", stored)
	}
}

func TestCreateCourseRejectsInvalidPayloadAtomically(t *testing.T) {
	app, db := newTestApp(t)

	resp := doJSON(t, app, "POST", "/api/materias", map[string]interface{}{})
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	if env.Error == nil {
		t.Fatal("missing error detail")
	}
	for _, field := range []string{
		"nrc", "nombre_materia", "seccion", "dias",
		"hora_inicio", "hora_fin", "salon", "programa_educativo", "creditos",
	} {
		if _, ok := env.Error.Fields[field]; !ok {
			t.Errorf("missing field error %q", field)
		}
	}

	var count int64
	db.Model(&model.Course{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected create wrote %d rows", count)
	}
}

func TestCreateCourseDuplicateNRC(t *testing.T) {
	app, db := newTestApp(t)

	resp := doJSON(t, app, "POST", "/api/materias", validPayload())
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("first create: status = %d", resp.StatusCode)
	}

	resp = doJSON(t, app, "POST", "/api/materias", validPayload())
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("duplicate create: status = %d, want 422", resp.StatusCode)
	}

	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Fields["nrc"] != "NRC ya existe en la base de datos" {
		t.Errorf("unexpected error detail: %+v", env.Error)
	}

	var count int64
	db.Model(&model.Course{}).Count(&count)
	if count != 1 {
		t.Errorf("course count = %d, want 1", count)
	}
}

func TestUpdateCourseNotFoundBeforeValidation(t *testing.T) {
	app, _ := newTestApp(t)

	// An unresolvable id answers 404 even when the payload is invalid.
	resp := doJSON(t, app, "PUT", "/api/materias", map[string]interface{}{
		"id":  99999,
		"nrc": "not-a-nrc",
	})
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestUpdateCoursePartialAndAtomic(t *testing.T) {
	app, db := newTestApp(t)

	resp := doJSON(t, app, "POST", "/api/materias", validPayload())
	created := decodeEnvelope(t, resp)

	resp = doJSON(t, app, "PUT", "/api/materias", map[string]interface{}{
		"id":    created.Data.ID,
		"salon": "B-202",
	})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("partial update: status = %d", resp.StatusCode)
	}
	updated := decodeEnvelope(t, resp)
	if updated.Data.Salon != "B-202" {
		t.Errorf("Salon = %q", updated.Data.Salon)
	}
	if updated.Data.NRC != "100001" || updated.Data.HoraInicio != "09:00" {
		t.Errorf("unspecified fields changed: %+v", updated.Data)
	}

	// A failing validation must leave the stored record untouched.
	resp = doJSON(t, app, "PUT", "/api/materias", map[string]interface{}{
		"id":       created.Data.ID,
		"hora_fin": "08:00",
	})
	if resp.StatusCode != fiber.StatusUnprocessableEntity {
		t.Fatalf("invalid update: status = %d, want 422", resp.StatusCode)
	}
	env := decodeEnvelope(t, resp)
	if env.Error == nil || env.Error.Fields["hora_fin"] != "La hora de fin debe ser mayor que la hora de inicio" {
		t.Errorf("unexpected error detail: %+v", env.Error)
	}

	var stored model.Course
	if err := db.First(&stored, created.Data.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.HoraFin != "10:30" || stored.Salon != "B-202" {
		t.Errorf("stored record mutated on rejected update: %+v", stored)
	}
}

func TestCheckNRCRoundTrip(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doJSON(t, app, "POST", "/api/materias", validPayload())
	created := decodeEnvelope(t, resp)

	var probe struct {
		Data struct {
			Exists bool `json:"exists"`
		} `json:"data"`
	}

	resp = doJSON(t, app, "GET", "/api/verificar-nrc?nrc=100001", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&probe); err != nil {
		t.Fatal(err)
	}
	if !probe.Data.Exists {
		t.Error("taken NRC reported as available")
	}

	resp = doJSON(t, app, "GET",
		"/api/verificar-nrc?nrc=100001&exclude_id="+strconv.Itoa(int(created.Data.ID)), nil)
	if err := json.NewDecoder(resp.Body).Decode(&probe); err != nil {
		t.Fatal(err)
	}
	if probe.Data.Exists {
		t.Error("own NRC reported as taken when excluded")
	}

	resp = doJSON(t, app, "GET", "/api/verificar-nrc?nrc=999999", nil)
	if err := json.NewDecoder(resp.Body).Decode(&probe); err != nil {
		t.Fatal(err)
	}
	if probe.Data.Exists {
		t.Error("free NRC reported as taken")
	}
}
