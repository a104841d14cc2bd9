package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

// Mudra is a catalog entry stored in the database.
type Mudra struct {
	Label       string
	Description string
	UpdatedAt   time.Time
}

// MudraRepository provides CRUD operations for the mudra catalog.
type MudraRepository struct {
	db *sql.DB
}

// Mudras returns the mudra repository for this store.
func (s *Store) Mudras() *MudraRepository {
	return &MudraRepository{db: s.db}
}

// Seed inserts entries whose label is not stored yet and leaves edited
// descriptions alone. It returns the number of rows inserted.
func (r *MudraRepository) Seed(entries []gesture.Entry) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now()
	inserted := 0
	for _, e := range entries {
		result, err := tx.Exec(
			`INSERT OR IGNORE INTO mudras (label, description, updated_at) VALUES (?, ?, ?)`,
			string(e.Label), e.Description, now,
		)
		if err != nil {
			return 0, fmt.Errorf("seed %s: %w", e.Label, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// Get retrieves a catalog entry by label.
func (r *MudraRepository) Get(label string) (*Mudra, error) {
	m := &Mudra{}
	err := r.db.QueryRow(
		`SELECT label, description, updated_at FROM mudras WHERE label = ?`,
		label,
	).Scan(&m.Label, &m.Description, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

// List retrieves every catalog entry ordered by label.
func (r *MudraRepository) List() ([]*Mudra, error) {
	rows, err := r.db.Query(`SELECT label, description, updated_at FROM mudras ORDER BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mudras []*Mudra
	for rows.Next() {
		m := &Mudra{}
		if err := rows.Scan(&m.Label, &m.Description, &m.UpdatedAt); err != nil {
			return nil, err
		}
		mudras = append(mudras, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mudras, nil
}

// Upsert inserts or replaces the description for m.Label.
func (r *MudraRepository) Upsert(m *Mudra) error {
	if m.Label == "" {
		return errors.New("label is required")
	}
	m.UpdatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO mudras (label, description, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(label) DO UPDATE SET description = excluded.description, updated_at = excluded.updated_at`,
		m.Label, m.Description, m.UpdatedAt,
	)
	return err
}

// Delete removes a catalog entry by label.
func (r *MudraRepository) Delete(label string) error {
	result, err := r.db.Exec(`DELETE FROM mudras WHERE label = ?`, label)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Catalog snapshots the stored entries as a gesture.Catalog.
func (s *Store) Catalog() (*gesture.Catalog, error) {
	mudras, err := s.Mudras().List()
	if err != nil {
		return nil, fmt.Errorf("list mudras: %w", err)
	}

	entries := make([]gesture.Entry, len(mudras))
	for i, m := range mudras {
		entries[i] = gesture.Entry{Label: gesture.Label(m.Label), Description: m.Description}
	}
	return gesture.NewCatalog(entries), nil
}
