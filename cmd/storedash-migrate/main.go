package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nextcommerce/storedash/pkg/config"
	"github.com/nextcommerce/storedash/pkg/storage"
	"github.com/nextcommerce/storedash/pkg/subscriptions"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: storedash-migrate [flags] <up|down|status|version|redo|up-to|down-to> [args]\n\n")
		flag.PrintDefaults()
	}
	driver := flag.String("driver", "", "Database driver (postgres or sqlite3), defaults to STOREDASH_DATABASE_DRIVER")
	dsn := flag.String("db-url", "", "Database URL, defaults to STOREDASH_DATABASE_URL")
	flag.Parse()

	command := "up"
	var args []string
	if flag.NArg() > 0 {
		command = flag.Arg(0)
		args = flag.Args()[1:]
	}

	cfg, err := config.LoadConfig()
	var dbCfg storage.Config
	if err != nil {
		// Migrations only need the database; tolerate unrelated config errors
		log.Printf("Warning: %v", err)
		dbCfg = storage.DefaultConfig()
	} else {
		dbCfg = cfg.Storage
	}
	if *driver != "" {
		dbCfg.DatabaseDriver = *driver
	}
	if *dsn != "" {
		dbCfg.DatabaseURL = *dsn
	}

	db, err := storage.OpenDB(dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := subscriptions.RunMigrations(context.Background(), db, dbCfg.DatabaseDriver, command, args...); err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("Migration %s completed", command)
}
