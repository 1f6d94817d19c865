package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/garnizeh/frota/internal/config"
	"github.com/garnizeh/frota/internal/db"
)

func main() {
	out := flag.String("out", "", "Backup file (default: <db>.<timestamp>.bak)")
	flag.Parse()

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	dialect, err := db.ParseDialect(cfg.Database.Driver)
	if err != nil || dialect != db.DialectSQLite {
		fmt.Fprintln(os.Stderr, "Backup error: only sqlite databases can be backed up with this tool; use pg_dump for postgres")
		os.Exit(1)
	}
	src := db.SQLiteFile(cfg.Database.DSN)
	if src == "" {
		fmt.Fprintln(os.Stderr, "Backup error: in-memory database has nothing to back up")
		os.Exit(1)
	}

	dst := *out
	if dst == "" {
		dst = fmt.Sprintf("%s.%s.bak", src, time.Now().UTC().Format("20060102T150405Z"))
	}
	if _, err := os.Stat(dst); err == nil {
		fmt.Fprintf(os.Stderr, "Backup error: %s already exists\n", dst)
		os.Exit(1)
	}

	ctx := context.Background()
	database, err := db.New(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	// VACUUM INTO yields a consistent snapshot of a live database.
	if _, err := database.Exec(ctx, "VACUUM INTO ?", dst); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup completed: %s\n", dst)
}
