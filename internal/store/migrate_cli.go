package store

import (
	"fmt"
	"log"
	"os"
	"strconv"
)

// RunMigrateCommand handles the 'migrate' subcommand dispatching.
func RunMigrateCommand(args []string, dbPath string) error {
	if len(args) < 1 {
		PrintMigrateHelp()
		return fmt.Errorf("missing migrate action")
	}

	database, err := OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	switch action := args[0]; action {
	case "up":
		log.Printf("Running migrations...")
		if err := database.MigrateUp(); err != nil {
			return err
		}
		log.Println("All migrations applied")
		return printMigrateStatus(database)

	case "down":
		log.Printf("Rolling back one migration...")
		if err := database.MigrateDown(); err != nil {
			return err
		}
		return printMigrateStatus(database)

	case "status":
		return printMigrateStatus(database)

	case "version", "force":
		if len(args) < 2 {
			return fmt.Errorf("usage: pitchreport migrate %s <version_number>", action)
		}
		v, err := strconv.Atoi(args[1])
		if err != nil || v < 0 {
			return fmt.Errorf("invalid version number: %s", args[1])
		}
		if action == "force" {
			log.Printf("Forcing migration version to %d", v)
			return database.MigrateForce(v)
		}
		log.Printf("Migrating to version %d...", v)
		return database.MigrateTo(uint(v))

	case "help":
		PrintMigrateHelp()
		return nil

	default:
		PrintMigrateHelp()
		return fmt.Errorf("unknown migrate action: %s", action)
	}
}

func printMigrateStatus(database *DB) error {
	version, dirty, err := database.MigrateVersion()
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}
	latest, err := LatestMigrationVersion()
	if err != nil {
		return err
	}

	fmt.Println("=== Migration Status ===")
	fmt.Printf("Current version: %d\n", version)
	fmt.Printf("Latest version:  %d\n", latest)
	fmt.Printf("Dirty: %v\n", dirty)
	if dirty {
		fmt.Println("\nWARNING: a migration failed mid-execution.")
		fmt.Println("Inspect the database, then run: pitchreport migrate force <version>")
	}
	return nil
}

// PrintMigrateHelp prints usage for the migrate subcommand.
func PrintMigrateHelp() {
	fmt.Fprint(os.Stderr, `Usage: pitchreport migrate <action> [args]

Actions:
  up                 Apply all pending migrations
  down               Roll back the most recent migration
  status             Show current and latest migration versions
  version <n>        Migrate up or down to version n
  force <n>          Set the version without running migrations (recovery)
  help               Show this help
`)
}
