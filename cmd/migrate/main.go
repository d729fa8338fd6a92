package main

import (
	"flag"
	"os"

	"uny-compass-be/internal/model"
	"uny-compass-be/pkg/database"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	driver := flag.String("driver", "", "database driver (postgres|sqlite), defaults to DB_DRIVER")
	flag.Parse()

	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		color.Yellow("Info: No .env file found, using system env")
	}

	if *driver == "" {
		*driver = os.Getenv("DB_DRIVER")
	}
	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_PUBLIC_URL")
	}
	if dsn == "" {
		color.Red("Error: DB_CONNECTION_STRING is not set")
		os.Exit(1)
	}

	// 2. Connect
	db, err := database.NewGormDB(*driver, dsn)
	if err != nil {
		color.Red("Error: Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// 3. AutoMigrate
	models := model.All()
	color.Cyan("Running AutoMigrate for %d tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		color.Red("Error: AutoMigrate failed: %v", err)
		os.Exit(1)
	}

	for _, m := range models {
		if db.Migrator().HasTable(m) {
			color.Green("  ok %T", m)
		} else {
			color.Red("  missing %T", m)
		}
	}
	color.Green("Success: database migration completed.")
}
