// Package sqlitedir resolves usernames against a sqlite user directory.
// The town core only reads it at join time; writes happen through the
// admin CLI.
package sqlitedir

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/neu-cs4530/team-project-6l/internal/profile"
)

type Directory struct {
	db *sql.DB
}

func Open(path string) (*Directory, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single writer; the directory is read-mostly.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Directory{db: db}, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
  id           TEXT PRIMARY KEY,
  username     TEXT NOT NULL UNIQUE,
  display_name TEXT NOT NULL,
  avatar       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
`

func (d *Directory) Close() error { return d.db.Close() }

func (d *Directory) ResolveUsername(ctx context.Context, username string) (profile.Profile, error) {
	row := d.db.QueryRowContext(ctx,
		`SELECT id, username, display_name, avatar FROM users WHERE username = ?`, username)
	var p profile.Profile
	if err := row.Scan(&p.ID, &p.Username, &p.DisplayName, &p.Avatar); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return profile.Profile{}, profile.ErrNotFound
		}
		return profile.Profile{}, err
	}
	return p, nil
}

// Upsert inserts or replaces a user record.
func (d *Directory) Upsert(ctx context.Context, p profile.Profile) error {
	if p.ID == "" || p.Username == "" {
		return fmt.Errorf("user id and username are required")
	}
	if p.DisplayName == "" {
		p.DisplayName = p.Username
	}
	_, err := d.db.ExecContext(ctx, `
INSERT INTO users (id, username, display_name, avatar) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  username = excluded.username,
  display_name = excluded.display_name,
  avatar = excluded.avatar`,
		p.ID, p.Username, p.DisplayName, p.Avatar)
	return err
}

// List returns every user, ordered by username.
func (d *Directory) List(ctx context.Context) ([]profile.Profile, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, username, display_name, avatar FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []profile.Profile
	for rows.Next() {
		var p profile.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.DisplayName, &p.Avatar); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

var _ profile.Resolver = (*Directory)(nil)
