package main

import (
	"log"

	"payshare-notifier/config"
	"payshare-notifier/pkg/database"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.ApplyRawMigrations(db, "migrations"); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	log.Println("Migrations applied")
}
