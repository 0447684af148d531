package database

import (
	"github.com/glebarez/sqlite"
	"github.com/webmovil/escolar-api/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryStore is a Storage backed by an in-memory SQLite database. It exists
// for handler tests: same GORM surface as GORMStore, no external services.
// Postgres-only SQL (ILIKE searches, pq error codes) is outside its contract.
type MemoryStore struct {
	db *gorm.DB
}

// StartMemory opens a fresh in-memory database. Every call returns an
// isolated store; the single-connection pool keeps the database alive for
// the store's lifetime.
func StartMemory() (*MemoryStore, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	return &MemoryStore{db: db}, nil
}

// Init creates the schema, mirroring GORMStore.Init.
func (s *MemoryStore) Init() error {
	return s.db.AutoMigrate(
		&model.User{},
		&model.TokenBlacklist{},
		&model.Admin{},
		&model.Student{},
		&model.Teacher{},
		&model.Course{},
	)
}

// Close closes the database connection
func (s *MemoryStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB returns the GORM DB instance for use in handlers
func (s *MemoryStore) GetDB() interface{} {
	return s.db
}

// HealthCheck verifies the database connection is alive
func (s *MemoryStore) HealthCheck() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
