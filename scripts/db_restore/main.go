package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/garnizeh/frota/internal/config"
	"github.com/garnizeh/frota/internal/db"
)

func main() {
	from := flag.String("from", "", "Backup file to restore")
	flag.Parse()
	if *from == "" {
		fmt.Fprintln(os.Stderr, "Restore error: -from is required")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	dst := db.SQLiteFile(cfg.Database.DSN)
	if dst == "" {
		fmt.Fprintln(os.Stderr, "Restore error: configured database is not a sqlite file")
		os.Exit(1)
	}

	if err := check(*from); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %s is not a usable backup: %v\n", *from, err)
		os.Exit(1)
	}
	if err := copyFile(*from, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database restore completed: %s -> %s\n", *from, dst)
}

// check opens the backup read-only and confirms it is an intact, migrated
// database.
func check(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	ctx := context.Background()
	backup, err := db.New(ctx, "sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return err
	}
	defer backup.Close()

	var status string
	if err := backup.QueryRow(ctx, "PRAGMA integrity_check").Scan(&status); err != nil {
		return err
	}
	if status != "ok" {
		return fmt.Errorf("integrity check: %s", status)
	}
	var applied int
	if err := backup.QueryRow(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		return err
	}
	if applied == 0 {
		return fmt.Errorf("no migrations recorded")
	}
	return nil
}

// copyFile writes src next to dst and renames it into place.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".restore-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}
