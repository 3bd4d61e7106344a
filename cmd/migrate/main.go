package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/gorm"

	"github.com/johnquangdev/practice-scoring/internal/infrastructure/database"
	"github.com/johnquangdev/practice-scoring/pkg/config"
)

func main() {
	steps := flag.Int("steps", 0, "maximum migrations to apply (0 = all for up, 1 for down)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [-steps N] up|down|status\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	// Only database settings are needed here
	cfg, err := config.Read()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewPostgresDB(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	switch flag.Arg(0) {
	case "up":
		n, err := database.Migrate(db, migrate.Up, *steps)
		if err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		log.Printf("✅ Applied %d migration(s)", n)
	case "down":
		limit := *steps
		if limit == 0 {
			limit = 1
		}
		n, err := database.Migrate(db, migrate.Down, limit)
		if err != nil {
			log.Fatalf("Failed to roll back migrations: %v", err)
		}
		log.Printf("✅ Rolled back %d migration(s)", n)
	case "status":
		if err := printStatus(db); err != nil {
			log.Fatalf("Failed to read migration status: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// printStatus lists every embedded migration with its applied time
func printStatus(db *gorm.DB) error {
	available, err := database.Migrations().FindMigrations()
	if err != nil {
		return err
	}
	records, err := database.MigrationRecords(db)
	if err != nil {
		return err
	}

	applied := make(map[string]string, len(records))
	for _, r := range records {
		applied[r.Id] = r.AppliedAt.Format("2006-01-02 15:04:05")
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MIGRATION\tAPPLIED")
	for _, m := range available {
		at, ok := applied[m.Id]
		if !ok {
			at = "no"
		}
		fmt.Fprintf(w, "%s\t%s\n", m.Id, at)
	}
	return w.Flush()
}
