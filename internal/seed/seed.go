// Package seed populates a fresh database with the records the service
// needs on first start.
package seed

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/javier-prieto-uwu/taller3d/internal/material"
)

const defaultFilamentName = "PLA Genérico Blanco"

// Config contains the values required by startup seed.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Updates int
}

// Run executes the startup seed in an idempotent way.
func Run(db *sql.DB, cfg Config) (Stats, error) {
	tx, err := db.Begin()
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed transaction: %w", err)
	}

	stats := Stats{}

	if err := seedAdmin(tx, cfg.AdminEmail, cfg.AdminPassword, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureSettings(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}
	if err := ensureStarterFilament(tx, &stats); err != nil {
		_ = tx.Rollback()
		return Stats{}, err
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed transaction: %w", err)
	}

	return stats, nil
}

func seedAdmin(tx *sql.Tx, email, password string, stats *Stats) error {
	if email == "" || password == "" {
		return nil
	}

	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE email = ? LIMIT 1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("check admin user existence: %w", err)
	}
	if exists {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO users (email, password_hash) VALUES (?, ?)`, email, string(hash)); err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureSettings(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM settings WHERE id = 1)`).Scan(&exists); err != nil {
		return fmt.Errorf("check settings existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := tx.Exec(`
		INSERT INTO settings (id, labor_rate_per_hour, cost_per_kwh, kwh_rating, currency)
		VALUES (1, ?, ?, ?, ?)
	`, 0, 0, 0, "MXN"); err != nil {
		return fmt.Errorf("insert settings singleton: %w", err)
	}
	stats.Inserts++
	return nil
}

func ensureStarterFilament(tx *sql.Tx, stats *Stats) error {
	var exists bool
	if err := tx.QueryRow(`SELECT EXISTS(SELECT 1 FROM materials WHERE nombre = ? LIMIT 1)`, defaultFilamentName).Scan(&exists); err != nil {
		return fmt.Errorf("check starter filament existence: %w", err)
	}
	if exists {
		return nil
	}

	m := material.Material{
		ID:                  uuid.NewString(),
		Category:            material.Filament,
		Name:                defaultFilamentName,
		PricePerPackage:     "0",
		PackageSize:         "1000",
		PackageCount:        "1",
		InitialPackageCount: "1",
		RemainingQuantity:   "1000",
		Color:               "Blanco",
		Type:                "PLA",
		Subtype:             "Genérico",
	}

	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode starter filament: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT INTO materials (id, categoria, nombre, doc_json)
		VALUES (?, ?, ?, ?)
	`, m.ID, string(m.Category), m.Name, string(doc)); err != nil {
		return fmt.Errorf("insert starter filament: %w", err)
	}
	stats.Inserts++
	return nil
}
