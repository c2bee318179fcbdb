package main

// Run database migrations, optionally seeding roles from ROLES_DIR:
//   go run ./cmd/migrate -seed-roles

import (
	"context"
	"flag"
	"log"
	"os"
	"sort"

	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/roles"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/config"
	"github.com/thomthomthomas/SMART-CAREER-Singapore/internal/shared/storage/db"
)

func main() {
	seed := flag.Bool("seed-roles", false, "upsert every role document found in ROLES_DIR")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	if !*seed {
		return
	}

	dir := &roles.DirSource{Dir: cfg.RolesDir}
	records, err := dir.Records(ctx)
	if err != nil {
		log.Printf("failed to read roles dir %q: %v", cfg.RolesDir, err)
		os.Exit(1)
	}
	slugs := make([]string, 0, len(records))
	for slug := range records {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	pg := &roles.PGSource{DB: sqlDB}
	failed := 0
	for _, slug := range slugs {
		if _, err := pg.Upsert(ctx, records[slug]); err != nil {
			log.Printf("seed %s: %v", slug, err)
			failed++
		}
	}
	log.Printf("seeded %d roles (%d failed)", len(slugs)-failed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
