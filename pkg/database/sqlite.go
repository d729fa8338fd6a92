package database

import (
	"fmt"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewSQLiteDB opens a pure-Go sqlite database. A single connection keeps
// in-memory databases alive and serialises writers.
func NewSQLiteDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger:         getLogger(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// NewInMemoryDB returns an isolated in-memory database, mostly for tests.
func NewInMemoryDB() (*gorm.DB, error) {
	return NewSQLiteDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
}
