package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/erazemk/eventstock/internal/auth"
	"github.com/erazemk/eventstock/internal/config"
	"github.com/erazemk/eventstock/internal/db"
	"github.com/erazemk/eventstock/internal/model"
	"github.com/erazemk/eventstock/internal/store"
)

// runInit creates a new database with an admin account.
func runInit(cfg *config.Config) error {
	if _, err := os.Stat(cfg.Storage.DBPath); err == nil {
		return fmt.Errorf("database %s already exists", cfg.Storage.DBPath)
	}

	database, password, err := initDatabase(cfg.Storage.DBPath, cfg.AdminUser)
	if err != nil {
		return err
	}
	database.Close()

	printInitResult(os.Stdout, cfg.Storage.DBPath, cfg.AdminUser, password)
	return nil
}

// initDatabase creates the database file, applies the schema and creates
// the admin user with a generated password. On failure the file is removed.
func initDatabase(path, adminUsername string) (*sql.DB, string, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}

	password, err := seedAdmin(database, adminUsername)
	if err != nil {
		database.Close()
		os.Remove(path)
		return nil, "", err
	}
	return database, password, nil
}

func seedAdmin(database *sql.DB, adminUsername string) (string, error) {
	if err := db.EnsureSchema(database); err != nil {
		return "", fmt.Errorf("ensuring schema: %w", err)
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}

	if _, err := store.CreateUser(context.Background(), database, adminUsername, hash, model.RoleAdmin); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	return password, nil
}

// ensureDatabase opens the database, creating it first if it does not
// exist yet.
func ensureDatabase(w io.Writer, cfg *config.Config) (*sql.DB, error) {
	if _, err := os.Stat(cfg.Storage.DBPath); errors.Is(err, os.ErrNotExist) {
		database, password, err := initDatabase(cfg.Storage.DBPath, cfg.AdminUser)
		if err != nil {
			return nil, fmt.Errorf("initializing database: %w", err)
		}
		database.Close()
		printInitResult(w, cfg.Storage.DBPath, cfg.AdminUser, password)
		fmt.Fprintln(w)
	}

	database, err := db.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.EnsureSchema(database); err != nil {
		database.Close()
		return nil, err
	}
	return database, nil
}

func printInitResult(w io.Writer, dbPath, username, password string) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w, "Schema initialized.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Username: %s\n", username)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
