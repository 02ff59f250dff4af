// Package pg implementa core.Repository sobre Postgres (pgx).
package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/tomora/internal/observability/logger"
	"github.com/dropDatabas3/tomora/internal/store/core"
)

type Store struct{ pool *pgxpool.Pool }

// Tuning opcional del pool, mapeado desde config.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, cfg PoolConfig) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	// Mapear MaxIdleConns → MinConns (pgxpool)
	if cfg.MaxIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 5
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	// Arranque no bloqueante: si la DB está caída igual levantamos el proceso.
	log := logger.Named("store.pg")
	if err := pool.Ping(ctx); err != nil {
		log.Warn("startup ping failed", logger.Err(err))
	} else {
		log.Info("pool ready", logger.Int("max_conns", int(pcfg.MaxConns)))
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// Pool expone el pool interno (migraciones, metrics).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

// wrap clasifica errores de infraestructura como core.ErrUnavailable.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return core.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return core.ErrConflict
	}
	return fmt.Errorf("%w: %v", core.ErrUnavailable, err)
}

func (s *Store) CreateUser(ctx context.Context, u *core.User) error {
	const q = `
		INSERT INTO users (email, name, password_hash, is_medicated, is_caregiver, linked_id)
		VALUES (lower($1), $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, q,
		u.Email, u.Name, u.PasswordHash, u.IsMedicated, u.IsCaregiver, u.LinkedID).
		Scan(&u.ID, &u.CreatedAt)
	return wrap(err)
}

const userCols = `id, email, name, password_hash, is_medicated, is_caregiver, linked_id, created_at`

func scanUser(row pgx.Row) (*core.User, error) {
	var u core.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.IsMedicated, &u.IsCaregiver, &u.LinkedID, &u.CreatedAt); err != nil {
		return nil, wrap(err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*core.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE email = lower($1)`
	return scanUser(s.pool.QueryRow(ctx, q, email))
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*core.User, error) {
	q := `SELECT ` + userCols + ` FROM users WHERE id = $1`
	return scanUser(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) ListActiveReminders(ctx context.Context, userID string, limit int) ([]core.Reminder, error) {
	if limit <= 0 {
		limit = 10
	}
	const q = `
		SELECT id, user_id, title, reminder_time, recurring, active, source, created_at
		FROM reminders
		WHERE user_id = $1 AND active
		ORDER BY reminder_time ASC
		LIMIT $2`
	rows, err := s.pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	var out []core.Reminder
	for rows.Next() {
		var r core.Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.Title, &r.ReminderTime,
			&r.Recurring, &r.Active, &r.Source, &r.CreatedAt); err != nil {
			return nil, wrap(err)
		}
		out = append(out, r)
	}
	return out, wrap(rows.Err())
}

func (s *Store) CreateReminder(ctx context.Context, r *core.Reminder) error {
	const q = `
		INSERT INTO reminders (user_id, title, reminder_time, recurring, active, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := s.pool.QueryRow(ctx, q,
		r.UserID, r.Title, r.ReminderTime, r.Recurring, r.Active, r.Source).
		Scan(&r.ID, &r.CreatedAt)
	return wrap(err)
}
