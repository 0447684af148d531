package database

import (
	"database/sql"
	"os"
	"testing"

	"github.com/webmovil/escolar-api/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB connects to the database named by TEST_DATABASE_DSN. Tests that
// need a live PostgreSQL skip when it is not set.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set; skipping integration test")
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm open: %v", err)
	}

	if err := db.AutoMigrate(&model.User{}, &model.Teacher{}, &model.Course{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func TestCourseNRCExists(t *testing.T) {
	db := openTestDB(t)

	course := model.Course{
		NRC:               "987654",
		NombreMateria:     "Sistemas Operativos",
		Seccion:           "001",
		Dias:              []byte(`["Lunes"]`),
		HoraInicio:        "07:00",
		HoraFin:           "09:00",
		Salon:             "A-101",
		ProgramaEducativo: "Ingeniería en Ciencias de la Computación",
		Creditos:          "8",
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	t.Cleanup(func() { db.Unscoped().Delete(&course) })

	lookups := NewGormLookups(db)

	exists, err := lookups.CourseNRCExists("987654", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("existing NRC not found")
	}

	// The owning record is exempt from its own NRC.
	exists, err = lookups.CourseNRCExists("987654", course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("own record counted as duplicate")
	}

	exists, err = lookups.CourseNRCExists("000001", 0)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("unknown NRC reported as existing")
	}
}

func TestTeacherExists(t *testing.T) {
	db := openTestDB(t)

	user := model.User{
		Email:        "lookup-test-maestro@escolar.mx",
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "Maestro",
		Role:         model.RoleTeacher,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	teacher := model.Teacher{UserID: user.ID, IDTrabajador: "T-900", Materias: []byte(`[]`)}
	if err := db.Create(&teacher).Error; err != nil {
		t.Fatalf("create teacher: %v", err)
	}
	t.Cleanup(func() {
		db.Unscoped().Delete(&teacher)
		db.Unscoped().Delete(&user)
	})

	lookups := NewGormLookups(db)

	exists, err := lookups.TeacherExists(teacher.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("existing teacher not found")
	}

	exists, err = lookups.TeacherExists(teacher.ID + 100000)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("unknown teacher reported as existing")
	}
}
