// Package catalog tracks processed inputs and their generated artifacts in
// a SQLite database, so repeated batch runs can skip inputs whose content
// hash has not changed.
package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Input is a row in the inputs table.
type Input struct {
	ID          int64  `json:"id"`
	Path        string `json:"path"`
	Collection  string `json:"collection"`
	Kind        string `json:"kind"`
	ContentHash string `json:"content_hash"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Artifact is a row in the artifacts table.
type Artifact struct {
	ID               int64  `json:"id"`
	InputID          int64  `json:"input_id"`
	SectionKey       string `json:"section_key"`
	TargetCollection string `json:"target_collection,omitempty"`
	Path             string `json:"path"`
	ContentHash      string `json:"content_hash"`
	SizeBytes        int64  `json:"size_bytes"`
	CreatedAt        string `json:"created_at"`
}

// Catalog wraps the SQLite connection.
type Catalog struct {
	db *sql.DB
}

// Open opens (or creates) the catalog database, applies the schema, and
// runs pending migrations.
func Open(dbPath string) (*Catalog, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	c := &Catalog{db: db}
	if err := c.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return c, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// UpsertInput registers an input, updating hash and status on conflict.
func (c *Catalog) UpsertInput(ctx context.Context, in Input) (int64, error) {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO inputs (path, collection, kind, content_hash, status)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path, collection) DO UPDATE SET
			kind = excluded.kind,
			content_hash = excluded.content_hash,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`, in.Path, in.Collection, in.Kind, in.ContentHash, in.Status)
	if err != nil {
		return 0, fmt.Errorf("upserting input: %w", err)
	}

	// If the UPSERT updated an existing row, LastInsertId may not reflect
	// it; read the id back by key.
	var id int64
	err = c.db.QueryRowContext(ctx,
		"SELECT id FROM inputs WHERE path = ? AND collection = ?",
		in.Path, in.Collection).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("reading input id: %w", err)
	}
	return id, nil
}

// Unchanged reports whether the input at path/collection was last processed
// successfully with the given content hash. A new input is always changed.
func (c *Catalog) Unchanged(ctx context.Context, path, collection, hash string) (bool, error) {
	var stored, status string
	err := c.db.QueryRowContext(ctx,
		"SELECT content_hash, status FROM inputs WHERE path = ? AND collection = ?",
		path, collection).Scan(&stored, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading input hash: %w", err)
	}
	return stored == hash && status == "done", nil
}

// UpdateInputStatus sets an input's status.
func (c *Catalog) UpdateInputStatus(ctx context.Context, id int64, status string) error {
	_, err := c.db.ExecContext(ctx,
		"UPDATE inputs SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, id)
	return err
}

// RecordArtifacts replaces the input's artifact rows with the given set,
// atomically.
func (c *Catalog) RecordArtifacts(ctx context.Context, inputID int64, artifacts []Artifact) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin artifact update: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM artifacts WHERE input_id = ?", inputID); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing artifacts: %w", err)
	}
	for _, a := range artifacts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO artifacts (input_id, section_key, target_collection, path, content_hash, size_bytes)
			VALUES (?, ?, ?, ?, ?, ?)
		`, inputID, a.SectionKey, a.TargetCollection, a.Path, a.ContentHash, a.SizeBytes); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting artifact %q: %w", a.SectionKey, err)
		}
	}
	return tx.Commit()
}

// GetInput looks an input up by path and collection.
func (c *Catalog) GetInput(ctx context.Context, path, collection string) (*Input, error) {
	var in Input
	err := c.db.QueryRowContext(ctx, `
		SELECT id, path, collection, kind, content_hash, status, created_at, updated_at
		FROM inputs WHERE path = ? AND collection = ?
	`, path, collection).Scan(&in.ID, &in.Path, &in.Collection, &in.Kind,
		&in.ContentHash, &in.Status, &in.CreatedAt, &in.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return &in, nil
}

// ListInputs returns all registered inputs, newest first.
func (c *Catalog) ListInputs(ctx context.Context) ([]Input, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, path, collection, kind, content_hash, status, created_at, updated_at
		FROM inputs ORDER BY updated_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("listing inputs: %w", err)
	}
	defer rows.Close()

	var inputs []Input
	for rows.Next() {
		var in Input
		if err := rows.Scan(&in.ID, &in.Path, &in.Collection, &in.Kind,
			&in.ContentHash, &in.Status, &in.CreatedAt, &in.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning input: %w", err)
		}
		inputs = append(inputs, in)
	}
	return inputs, rows.Err()
}

// ListArtifacts returns an input's artifacts in section order.
func (c *Catalog) ListArtifacts(ctx context.Context, inputID int64) ([]Artifact, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, input_id, section_key, COALESCE(target_collection, ''), path, content_hash, size_bytes, created_at
		FROM artifacts WHERE input_id = ? ORDER BY id
	`, inputID)
	if err != nil {
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []Artifact
	for rows.Next() {
		var a Artifact
		if err := rows.Scan(&a.ID, &a.InputID, &a.SectionKey, &a.TargetCollection,
			&a.Path, &a.ContentHash, &a.SizeBytes, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

// DeleteInput removes an input and, via cascade, its artifacts.
func (c *Catalog) DeleteInput(ctx context.Context, id int64) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM inputs WHERE id = ?", id)
	return err
}

// FileHash computes the streaming SHA-256 of a file, hex-encoded.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ContentHash computes the SHA-256 of a byte slice, hex-encoded.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
