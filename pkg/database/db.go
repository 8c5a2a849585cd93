package database

import (
	"log"
	"sync"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	DB   *gorm.DB
	once sync.Once
)

func Connect(dsn string) *gorm.DB {
	once.Do(func() {
		// TranslateError maps driver errors (e.g. unique violations) onto
		// gorm's sentinel errors; the view ledger relies on ErrDuplicatedKey.
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			TranslateError: true,
		})
		if err != nil {
			log.Fatalf("failed to connect database: %v", err)
		}

		DB = db
	})

	return DB
}
