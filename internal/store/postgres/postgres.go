package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/echomap/echomap/internal/model"
	"github.com/echomap/echomap/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Open opens a PostgreSQL connection using the pgx stdlib driver, verifies
// connectivity and applies pending migrations.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
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
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

// NewWithDB constructs a Postgres store backed directly by database/sql.
func NewWithDB(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Souvenirs() store.Souvenirs { return &souvenirs{db: s.db} }
func (s *pgStore) Profiles() store.Profiles   { return &profiles{db: s.db} }

// HealthPing implements store.Pinger.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// isUniqueViolation reports whether err is a Postgres unique constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// --- Souvenirs ---

type souvenirs struct{ db *sql.DB }

const souvenirCols = `id, owner_id, title, story, audio_url, image_url, transcript, tx_id, latitude, longitude, created_at`

func (r *souvenirs) Create(ctx context.Context, m *model.Souvenir) (*model.Souvenir, error) {
	out := *m
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
        INSERT INTO souvenirs (id, owner_id, title, story, audio_url, image_url, transcript, tx_id, latitude, longitude)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING created_at
    `, out.ID, out.OwnerID, out.Title, out.Story, out.AudioURL, out.ImageURL, out.Transcript, out.TxID, out.Latitude, out.Longitude)
	if err := row.Scan(&out.CreatedAt); err != nil {
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
	row := r.db.QueryRowContext(ctx, `SELECT `+souvenirCols+` FROM souvenirs WHERE id=$1`, id)
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
	return r.list(ctx, `SELECT `+souvenirCols+` FROM souvenirs WHERE owner_id=$1 ORDER BY created_at DESC`, ownerID)
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
	res, err := r.db.ExecContext(ctx, `DELETE FROM souvenirs WHERE id=$1 AND owner_id=$2`, id, ownerID)
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
	row := r.db.QueryRowContext(ctx, `
        INSERT INTO profiles (id, username, email)
        VALUES ($1,$2,$3)
        RETURNING created_at
    `, out.ID, out.Username, out.Email)
	if err := row.Scan(&out.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrConflict
		}
		return nil, err
	}
	return &out, nil
}

func (r *profiles) Get(ctx context.Context, id string) (*model.Profile, error) {
	return r.get(ctx, `SELECT id, username, email, created_at FROM profiles WHERE id=$1`, id)
}

func (r *profiles) GetByUsername(ctx context.Context, username string) (*model.Profile, error) {
	return r.get(ctx, `SELECT id, username, email, created_at FROM profiles WHERE username=$1`, username)
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
	var p model.Profile
	row := r.db.QueryRowContext(ctx, `
        UPDATE profiles SET username=$2 WHERE id=$1
        RETURNING id, username, email, created_at
    `, id, username)
	if err := row.Scan(&p.ID, &p.Username, &p.Email, &p.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, model.ErrConflict
		}
		return nil, err
	}
	return &p, nil
}
