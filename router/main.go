package router

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/webmovil/escolar-api/config"
	"github.com/webmovil/escolar-api/database"
	"github.com/webmovil/escolar-api/handlers"
	admin_handlers "github.com/webmovil/escolar-api/handlers/admins"
	auth_handlers "github.com/webmovil/escolar-api/handlers/auth"
	course_handlers "github.com/webmovil/escolar-api/handlers/courses"
	dashboard_handlers "github.com/webmovil/escolar-api/handlers/dashboard"
	student_handlers "github.com/webmovil/escolar-api/handlers/students"
	teacher_handlers "github.com/webmovil/escolar-api/handlers/teachers"
	"github.com/webmovil/escolar-api/utils"
	"github.com/webmovil/escolar-api/utils/auth"
	"github.com/webmovil/escolar-api/utils/cache"
	"github.com/webmovil/escolar-api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to read environment configuration")
	}

	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "escolar-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret: getEnv.JWT_SECRET,
		Expiry: 24 * time.Hour,
		Issuer: jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs brute force protection and the dashboard cache; the API
	// stays functional without it.
	redisURL := getEnv.REDIS_URL
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
		redisCache = nil
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)
	blacklistService := auth.NewBlacklistService(db)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, blacklistService, bruteForceProtection)
	adminHandler := admin_handlers.NewAdminHandler(db)
	studentHandler := student_handlers.NewStudentHandler(db)
	teacherHandler := teacher_handlers.NewTeacherHandler(db)
	courseHandler := course_handlers.NewCourseHandler(db)
	dashboardHandler := dashboard_handlers.NewDashboardHandler(db, redisCache)

	allowedOrigins := getEnv.ALLOWED_ORIGINS
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:4200"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	api := app.Group("/api")

	// Session
	if bruteForceProtection != nil {
		api.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.HandleLogin)
	} else {
		api.Post("/login", authHandler.HandleLogin)
	}
	api.Get("/logout", authMiddleware.Required(), authHandler.HandleLogout)

	// Administrators. Registration is open; everything else needs a session.
	api.Post("/admin", adminHandler.CreateAdmin)
	api.Get("/admin", authMiddleware.Required(), adminHandler.GetAdmin)
	api.Put("/admin", authMiddleware.Required(), adminHandler.UpdateAdmin)
	api.Delete("/admin", authMiddleware.Required(), adminHandler.DeleteAdmin)
	api.Get("/lista-admins", authMiddleware.Required(), adminHandler.ListAdmins)

	// Students
	api.Post("/alumnos", studentHandler.CreateStudent)
	api.Get("/alumnos", authMiddleware.Required(), studentHandler.GetStudent)
	api.Put("/alumnos", authMiddleware.Required(), studentHandler.UpdateStudent)
	api.Delete("/alumnos", authMiddleware.Required(), studentHandler.DeleteStudent)
	api.Get("/lista-alumnos", authMiddleware.Required(), studentHandler.ListStudents)

	// Teachers
	api.Post("/maestros", teacherHandler.CreateTeacher)
	api.Get("/maestros", authMiddleware.Required(), teacherHandler.GetTeacher)
	api.Put("/maestros", authMiddleware.Required(), teacherHandler.UpdateTeacher)
	api.Delete("/maestros", authMiddleware.Required(), teacherHandler.DeleteTeacher)
	api.Get("/lista-maestros", authMiddleware.Required(), teacherHandler.ListTeachers)

	// Courses. Reads need a session; writes are admin only.
	api.Get("/materias", authMiddleware.Required(), courseHandler.GetCourse)
	api.Post("/materias", authMiddleware.RequireAdmin(), courseHandler.CreateCourse)
	api.Put("/materias", authMiddleware.RequireAdmin(), courseHandler.UpdateCourse)
	api.Delete("/materias", authMiddleware.RequireAdmin(), courseHandler.DeleteCourse)
	api.Get("/lista-materias", authMiddleware.Required(), courseHandler.ListCourses)
	api.Get("/verificar-nrc", authMiddleware.Required(), courseHandler.CheckNRC)

	// Dashboard
	api.Get("/total-usuarios", authMiddleware.Required(), dashboardHandler.TotalUsers)
}
