// Package store persists materials and jobs as JSON documents in
// sqlite, keyed by id. It is the engine's only I/O collaborator:
// list-all, get-by-id, insert and update, each an independent request
// with no transactional grouping across records.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/javier-prieto-uwu/taller3d/internal/job"
	"github.com/javier-prieto-uwu/taller3d/internal/material"
)

const timeLayout = "2006-01-02 15:04:05"

// Store wraps the sqlite collection tables.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListMaterials returns the whole catalog, newest first.
func (s *Store) ListMaterials() ([]material.Material, error) {
	rows, err := s.db.Query(`
		SELECT doc_json
		FROM materials
		ORDER BY datetime(created_at) DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query materials: %w", err)
	}
	defer rows.Close()

	materials := make([]material.Material, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		var m material.Material
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			return nil, fmt.Errorf("decode material document: %w", err)
		}
		materials = append(materials, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate materials: %w", err)
	}

	return materials, nil
}

// GetMaterial fetches one material by id. The second return value is
// false when no such document exists.
func (s *Store) GetMaterial(id string) (material.Material, bool, error) {
	var doc string
	err := s.db.QueryRow(`SELECT doc_json FROM materials WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return material.Material{}, false, nil
	}
	if err != nil {
		return material.Material{}, false, fmt.Errorf("query material: %w", err)
	}

	var m material.Material
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return material.Material{}, false, fmt.Errorf("decode material document: %w", err)
	}
	return m, true, nil
}

// InsertMaterial stores a newly registered material.
func (s *Store) InsertMaterial(m material.Material) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode material document: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO materials (id, categoria, nombre, doc_json)
		VALUES (?, ?, ?, ?)
	`, m.ID, string(m.Category), m.Name, string(doc))
	if err != nil {
		return fmt.Errorf("insert material: %w", err)
	}
	return nil
}

// UpdateMaterial replaces the whole document (direct edit workflow:
// remaining quantity and package count may be reset independently).
func (s *Store) UpdateMaterial(m material.Material) (bool, error) {
	doc, err := json.Marshal(m)
	if err != nil {
		return false, fmt.Errorf("encode material document: %w", err)
	}

	result, err := s.db.Exec(`
		UPDATE materials
		SET categoria = ?, nombre = ?, doc_json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, string(m.Category), m.Name, string(doc), m.ID)
	if err != nil {
		return false, fmt.Errorf("update material: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update material: %w", err)
	}
	return affected > 0, nil
}

// UpdateMaterialStock patches only the stock fields after a deduction.
// The initial package count recorded at registration is left alone.
func (s *Store) UpdateMaterialStock(id, remainingQuantity, packageCount string) (bool, error) {
	m, found, err := s.GetMaterial(id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	m.RemainingQuantity = remainingQuantity
	m.PackageCount = packageCount
	return s.UpdateMaterial(m)
}

// InsertJob persists a finalized job. Jobs are immutable: there is no
// update path.
func (s *Store) InsertJob(j job.Job) error {
	doc, err := json.Marshal(j)
	if err != nil {
		return fmt.Errorf("encode job document: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO jobs (id, nombre, notas, doc_json, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, j.ID, j.Name, j.Notes, string(doc), j.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// GetJob fetches one job by id.
func (s *Store) GetJob(id string) (job.Job, bool, error) {
	var doc string
	err := s.db.QueryRow(`SELECT doc_json FROM jobs WHERE id = ?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return job.Job{}, false, nil
	}
	if err != nil {
		return job.Job{}, false, fmt.Errorf("query job: %w", err)
	}

	var j job.Job
	if err := json.Unmarshal([]byte(doc), &j); err != nil {
		return job.Job{}, false, fmt.Errorf("decode job document: %w", err)
	}
	return j, true, nil
}

// JobSummary is a job list row.
type JobSummary struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"creado_en"`
	Name      string    `json:"nombre"`
	Total     string    `json:"costo_total"`
	Failed    bool      `json:"fallido"`
}

// ListJobs returns jobs newest first, optionally filtered by a
// substring match over name and notes.
func (s *Store) ListJobs(query string) ([]JobSummary, error) {
	search := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT id, created_at, COALESCE(nombre, ''), doc_json
		FROM jobs
		WHERE (? = '' OR COALESCE(nombre, '') LIKE ? OR COALESCE(notas, '') LIKE ?)
		ORDER BY datetime(created_at) DESC, id DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]JobSummary, 0)
	for rows.Next() {
		var item JobSummary
		var createdAt, doc string
		if err := rows.Scan(&item.ID, &createdAt, &item.Name, &doc); err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		if ts, err := time.Parse(timeLayout, createdAt); err == nil {
			item.CreatedAt = ts
		}
		item.Total, item.Failed = extractJobSummary(doc)
		jobs = append(jobs, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}

	return jobs, nil
}

func extractJobSummary(doc string) (total string, failed bool) {
	var fields struct {
		Total  string `json:"costo_total"`
		Failed bool   `json:"fallido"`
	}
	if err := json.Unmarshal([]byte(doc), &fields); err != nil {
		return "0.00", false
	}
	if fields.Total == "" {
		fields.Total = "0.00"
	}
	return fields.Total, fields.Failed
}
