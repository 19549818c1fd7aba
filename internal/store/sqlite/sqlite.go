// Package sqlite provides a file-backed store driver for local development
// and tests, where no Postgres DSN is configured.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/echomap/echomap/internal/model"
	"github.com/echomap/echomap/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens (or creates) the SQLite database at path and applies pending
// migrations. Use ":memory:" for throwaway test databases.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc.org/sqlite serializes writes per connection; a single
	// connection avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

// NewWithDB constructs a SQLite store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Souvenirs() store.Souvenirs { return &souvenirs{db: s.db} }
func (s *liteStore) Profiles() store.Profiles   { return &profiles{db: s.db} }

// HealthPing implements store.Pinger.
func (s *liteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- Souvenirs ---

type souvenirs struct{ db *sql.DB }

const souvenirCols = `id, owner_id, title, story, audio_url, image_url, transcript, tx_id, latitude, longitude, created_at`

func (r *souvenirs) Create(ctx context.Context, m *model.Souvenir) (*model.Souvenir, error) {
	out := *m
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	out.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO souvenirs (id, owner_id, title, story, audio_url, image_url, transcript, tx_id, latitude, longitude, created_at)
        VALUES (?,?,?,?,?,?,?,?,?,?,?)
    `, out.ID, out.OwnerID, out.Title, out.Story, out.AudioURL, out.ImageURL, out.Transcript, out.TxID, out.Latitude, out.Longitude, out.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func scanSouvenir(row interface{ Scan(dest ...any) error }) (*model.Souvenir, error) {
	var m model.Souvenir
	if err := row.Scan(&m.ID, &m.OwnerID, &m.Title, &m.Story, &m.AudioURL, &m.ImageURL,
		&m.Transcript, &m.TxID, &m.Latitude, &m.Longitude, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *souvenirs) GetByID(ctx context.Context, id string) (*model.Souvenir, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+souvenirCols+` FROM souvenirs WHERE id=?`, id)
	m, err := scanSouvenir(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNotFound
	}
	return m, err
}

func (r *souvenirs) List(ctx context.Context) ([]*model.Souvenir, error) {
	return r.list(ctx, `SELECT `+souvenirCols+` FROM souvenirs ORDER BY created_at DESC`)
}

func (r *souvenirs) ListByOwner(ctx context.Context, ownerID string) ([]*model.Souvenir, error) {
	return r.list(ctx, `SELECT `+souvenirCols+` FROM souvenirs WHERE owner_id=? ORDER BY created_at DESC`, ownerID)
}

func (r *souvenirs) list(ctx context.Context, query string, args ...any) ([]*model.Souvenir, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []*model.Souvenir
	for rows.Next() {
		m, err := scanSouvenir(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *souvenirs) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM souvenirs WHERE id=? AND owner_id=?`, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Profiles ---

type profiles struct{ db *sql.DB }

func (r *profiles) Create(ctx context.Context, p *model.Profile) (*model.Profile, error) {
	out := *p
	out.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO profiles (id, username, email, created_at)
        VALUES (?,?,?,?)
    `, out.ID, out.Username, out.Email, out.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrConflict
		}
		return nil, err
	}
	return &out, nil
}

func (r *profiles) Get(ctx context.Context, id string) (*model.Profile, error) {
	return r.get(ctx, `SELECT id, username, email, created_at FROM profiles WHERE id=?`, id)
}

func (r *profiles) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	return r.get(ctx, `SELECT id, username, email, created_at FROM profiles WHERE username=?`, username)
}

func (r *profiles) get(ctx context.Context, query string, arg any) (*model.Profile, error) {
	var p model.Profile
	row := r.db.QueryRowContext(ctx, query, arg)
	if err := row.Scan(&p.ID, &p.Username, &p.Email, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *profiles) UpdateUsername(ctx context.Context, id, username string) (*model.Profile, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET username=? WHERE id=?`, username, id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrConflict
		}
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, model.ErrNotFound
	}
	return r.Get(ctx, id)
}
