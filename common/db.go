package common

import (
	"log"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func ConnectDb() *gorm.DB {
	dbFile := os.Getenv("sqlite_db")
	if dbFile == "" {
		dbFile = "blog.db"
		log.Println("sqlite_db not set, using default:", dbFile)
	}

	db, err := gorm.Open(sqlite.Open(dbFile), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Println("Error opening sqlite db: " + err.Error())
		return nil
	}
	log.Println("opened sqlite db at:", dbFile)
	return db
}
