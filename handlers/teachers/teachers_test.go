package teachers

import (
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/webmovil/escolar-api/database"
	"github.com/webmovil/escolar-api/model"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	store, err := database.StartMemory()
	if err != nil {
		t.Fatalf("start memory store: %v", err)
	}
	if err := store.Init(); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store.GetDB().(*gorm.DB)
}

// newTestApp mounts the delete route with the actor placed in the request
// context the way the auth middleware does for a valid session.
func newTestApp(db *gorm.DB, actor *model.User) *fiber.App {
	app := fiber.New()
	h := NewTeacherHandler(db)
	app.Delete("/api/maestros", func(c *fiber.Ctx) error {
		c.Locals("user", actor)
		return c.Next()
	}, h.DeleteTeacher)
	return app
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) model.User {
	t.Helper()

	user := model.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return user
}

func seedTeacherProfile(t *testing.T, db *gorm.DB, email string) model.Teacher {
	t.Helper()

	user := seedUser(t, db, email, model.RoleTeacher)
	teacher := model.Teacher{UserID: user.ID, IDTrabajador: "T-1", Materias: []byte(`[]`)}
	if err := db.Create(&teacher).Error; err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	return teacher
}

func deleteTeacher(t *testing.T, app *fiber.App, id uint) int {
	t.Helper()

	req := httptest.NewRequest("DELETE", "/api/maestros?id="+strconv.Itoa(int(id)), nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("delete request: %v", err)
	}
	return resp.StatusCode
}

func teacherCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	db.Model(&model.Teacher{}).Count(&count)
	return count
}

func TestDeleteTeacherForbiddenForStudents(t *testing.T) {
	db := newTestDB(t)
	target := seedTeacherProfile(t, db, "maestro@escolar.mx")
	student := seedUser(t, db, "alumno@escolar.mx", model.RoleStudent)

	app := newTestApp(db, &student)
	if status := deleteTeacher(t, app, target.ID); status != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if teacherCount(t, db) != 1 {
		t.Error("teacher row deleted by a student session")
	}
}

func TestDeleteTeacherForbiddenForOtherTeachers(t *testing.T) {
	db := newTestDB(t)
	target := seedTeacherProfile(t, db, "maestro@escolar.mx")
	other := seedTeacherProfile(t, db, "otro@escolar.mx")

	var actor model.User
	if err := db.First(&actor, other.UserID).Error; err != nil {
		t.Fatal(err)
	}

	app := newTestApp(db, &actor)
	if status := deleteTeacher(t, app, target.ID); status != fiber.StatusForbidden {
		t.Fatalf("status = %d, want 403", status)
	}
	if teacherCount(t, db) != 2 {
		t.Error("teacher row deleted by another teacher's session")
	}
}

func TestDeleteTeacherSelfAllowed(t *testing.T) {
	db := newTestDB(t)
	target := seedTeacherProfile(t, db, "maestro@escolar.mx")

	var actor model.User
	if err := db.First(&actor, target.UserID).Error; err != nil {
		t.Fatal(err)
	}

	app := newTestApp(db, &actor)
	if status := deleteTeacher(t, app, target.ID); status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if teacherCount(t, db) != 0 {
		t.Error("self delete left the teacher row")
	}

	var users int64
	db.Model(&model.User{}).Where("id = ?", target.UserID).Count(&users)
	if users != 0 {
		t.Error("owning user row survived the delete")
	}
}

func TestDeleteTeacherAdminAllowedAndClearsCourses(t *testing.T) {
	db := newTestDB(t)
	target := seedTeacherProfile(t, db, "maestro@escolar.mx")
	admin := seedUser(t, db, "admin@escolar.mx", model.RoleAdmin)

	course := model.Course{
		NRC:                "200001",
		NombreMateria:      "Bases de Datos",
		Seccion:            "001",
		Dias:               []byte(`["Martes"]`),
		HoraInicio:         "07:00",
		HoraFin:            "09:00",
		Salon:              "B-100",
		ProgramaEducativo:  "Ingeniería en Ciencias de la Computación",
		ProfesorAsignadoID: &target.ID,
		Creditos:           "8",
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	app := newTestApp(db, &admin)
	if status := deleteTeacher(t, app, target.ID); status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}

	var stored model.Course
	if err := db.First(&stored, course.ID).Error; err != nil {
		t.Fatalf("course vanished with its teacher: %v", err)
	}
	if stored.ProfesorAsignadoID != nil {
		t.Errorf("course still references deleted teacher: %v", *stored.ProfesorAsignadoID)
	}
}
