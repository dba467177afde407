package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/myaiplug/saasify/pkg/models"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrEmailTaken = errors.New("email already registered")
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    name TEXT,
    password_hash TEXT NOT NULL,
    salt TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS usage (
    owner_id TEXT PRIMARY KEY,
    generations_used INTEGER NOT NULL DEFAULT 0,
    paid_tier INTEGER NOT NULL DEFAULT 0,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS creations (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    name TEXT NOT NULL,
    content TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_creations_owner_id ON creations(owner_id);
CREATE INDEX IF NOT EXISTS idx_creations_created_at ON creations(created_at);
CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts(email);
`

type DB struct {
	db *sql.DB
}

func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// GetUsage reads the usage counters for an owner. A missing row is not
// an error: new owners start at zero and are materialized on first write.
func (d *DB) GetUsage(ctx context.Context, ownerID string) (models.UsageRecord, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT owner_id, generations_used, paid_tier, updated_at
		 FROM usage WHERE owner_id = ?`, ownerID)

	var rec models.UsageRecord
	var paid int
	err := row.Scan(&rec.OwnerID, &rec.GenerationsUsed, &paid, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.UsageRecord{OwnerID: ownerID}, nil
	}
	if err != nil {
		return models.UsageRecord{}, err
	}
	rec.PaidTier = paid != 0
	return rec, nil
}

// PutUsage upserts the usage row for rec.OwnerID. Idempotent on retry.
func (d *DB) PutUsage(ctx context.Context, rec models.UsageRecord) error {
	paid := 0
	if rec.PaidTier {
		paid = 1
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO usage (owner_id, generations_used, paid_tier, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(owner_id) DO UPDATE SET
		     generations_used = excluded.generations_used,
		     paid_tier = excluded.paid_tier,
		     updated_at = excluded.updated_at`,
		rec.OwnerID, rec.GenerationsUsed, paid, time.Now())
	return err
}

// SaveCreation upserts a creation by id. The created_at column keeps
// the original insertion instant so list order is stable across edits.
func (d *DB) SaveCreation(ctx context.Context, c *models.Creation) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO creations (id, owner_id, name, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     name = excluded.name,
		     content = excluded.content,
		     updated_at = excluded.updated_at`,
		c.ID, c.OwnerID, c.Name, c.Content, c.UpdatedAt, c.UpdatedAt)
	return err
}

// ListCreations returns an owner's creations newest-insertion-first,
// matching the in-memory history order.
func (d *DB) ListCreations(ctx context.Context, ownerID string) ([]*models.Creation, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, owner_id, name, content, updated_at
		 FROM creations WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var creations []*models.Creation
	for rows.Next() {
		c := &models.Creation{}
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Content, &c.UpdatedAt); err != nil {
			return nil, err
		}
		creations = append(creations, c)
	}
	return creations, rows.Err()
}

func (d *DB) GetCreation(ctx context.Context, id string) (*models.Creation, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, content, updated_at
		 FROM creations WHERE id = ?`, id)

	c := &models.Creation{}
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Content, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateAccount inserts a new account with its password material.
func (d *DB) CreateAccount(ctx context.Context, acct *models.Account, passwordHash, salt string) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO accounts (id, email, name, password_hash, salt, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.Email, acct.Name, passwordHash, salt, acct.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

// GetAccountByEmail returns the account and its password material.
func (d *DB) GetAccountByEmail(ctx context.Context, email string) (*models.Account, string, string, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, email, name, password_hash, salt, created_at
		 FROM accounts WHERE email = ?`, email)

	acct := &models.Account{}
	var name sql.NullString
	var hash, salt string
	err := row.Scan(&acct.ID, &acct.Email, &name, &hash, &salt, &acct.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", "", ErrNotFound
	}
	if err != nil {
		return nil, "", "", err
	}
	acct.Name = name.String
	return acct, hash, salt, nil
}

func (d *DB) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM accounts WHERE id = ?`, id)

	acct := &models.Account{}
	var name sql.NullString
	err := row.Scan(&acct.ID, &acct.Email, &name, &acct.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	acct.Name = name.String
	return acct, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// modernc.org/sqlite surfaces constraint failures in the message.
	return strings.Contains(err.Error(), "constraint failed")
}
