package app

import (
	"fmt"
	"log"
	"os"

	"github.com/webmovil/escolar-api/api"
	"github.com/webmovil/escolar-api/config"
	"github.com/webmovil/escolar-api/database"
	"github.com/webmovil/escolar-api/router"
	"github.com/webmovil/escolar-api/services/cron"
	"github.com/webmovil/escolar-api/utils/cache"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		log.Println("Check whether Postgres is running and reachable")
		return err
	}

	if err := store.Init(); err != nil {
		log.Println("Error running migrations")
		return err
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			log.Println("Warning: Failed to get database connection for cron jobs")
		} else {
			var redisCache *cache.RedisCache
			if getEnv.REDIS_URL != "" {
				if rc, err := cache.NewRedisCache(getEnv.REDIS_URL); err == nil {
					redisCache = rc
				}
			}
			cronManager = cron.NewCronManager(db, redisCache)
			if err := cronManager.Start(); err != nil {
				log.Println("Warning: Failed to start cron jobs:", err)
				// Don't fail the app, just log the warning
			}
		}
	}

	// Defer closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes (security middleware attaches inside)
	router.SetupRoutes(app, store)

	// Get the PORT & Start the Server
	return server.Run()
}
