package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"signal-relay/internal/domain"
)

const uniqueViolation = "23505"

// Postgres is the Users implementation over a pgx pool.
//
// Expected schema:
//
//	CREATE TABLE users (
//	    id            UUID PRIMARY KEY,
//	    email         TEXT NOT NULL,
//	    password_hash TEXT NOT NULL
//	);
//	CREATE UNIQUE INDEX users_email_key ON users (LOWER(email));
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect creates the pool and verifies the database is reachable.
func Connect(ctx context.Context, url string) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) Create(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	if err := domain.ValidateEmail(email); err != nil {
		return nil, err
	}
	user := &domain.User{ID: domain.UserID(uuid.NewString()), Email: email}

	_, err := p.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
	`, string(user.ID), email, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (p *Postgres) FindByEmail(ctx context.Context, email string) (*domain.User, string, error) {
	var (
		id   string
		hash string
	)
	err := p.pool.QueryRow(ctx, `
		SELECT id, password_hash
		FROM users
		WHERE LOWER(email) = $1
	`, strings.ToLower(email)).Scan(&id, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("select user: %w", err)
	}
	return &domain.User{ID: domain.UserID(id), Email: email}, hash, nil
}
