package main

import (
	"flag"
	"log"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/vaanidesk/vaanidesk-be/internal/shared/config"
)

func main() {
	var command string
	flag.StringVar(&command, "cmd", "up", "Migration command (up, down, version, force <v>)")
	flag.Parse()

	cfg := config.LoadConfig()

	log.Printf("🔄 Running migrations")
	log.Printf("💾 Database: %s", maskDatabaseURL(cfg.DatabaseURL))

	m, err := migrate.New("file://migrations", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to create migrate instance: %v", err)
	}
	defer m.Close()

	switch command {
	case "up":
		log.Println("⬆️  Running UP migrations...")
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("❌ Migration UP failed: %v", err)
		}
		log.Println("✅ Migrations UP completed!")

	case "down":
		log.Println("⬇️  Running DOWN migrations...")
		if err := m.Down(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("❌ Migration DOWN failed: %v", err)
		}
		log.Println("✅ Migrations DOWN completed!")

	case "version":
		version, dirty, err := m.Version()
		if err != nil && err != migrate.ErrNilVersion {
			log.Fatalf("❌ Failed to get version: %v", err)
		}
		log.Printf("📌 Current version: %d (dirty: %t)", version, dirty)

	default:
		if v, ok := strings.CutPrefix(command, "force "); ok {
			version, err := strconv.Atoi(v)
			if err != nil {
				log.Fatalf("❌ Invalid force version: %v", err)
			}
			if err := m.Force(version); err != nil {
				log.Fatalf("❌ Force failed: %v", err)
			}
			log.Printf("✅ Forced version to %d", version)
			return
		}
		log.Fatalf("❌ Unknown command: %s", command)
	}
}

func maskDatabaseURL(url string) string {
	if at := strings.LastIndex(url, "@"); at != -1 {
		if scheme := strings.Index(url, "://"); scheme != -1 {
			return url[:scheme+3] + "***" + url[at:]
		}
	}
	return url
}
