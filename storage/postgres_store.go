package storage

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed setup.sql
var setupSQL string

// PostgresStore keeps values in a table shared by several client profiles.
// Each profile only sees its own keys.
type PostgresStore struct {
	pool    *pgxpool.Pool
	profile string
}

func NewPostgresStore(pool *pgxpool.Pool, profile string) *PostgresStore {
	return &PostgresStore{pool: pool, profile: profile}
}

// Init creates the storage schema and table when missing.
func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, setupSQL); err != nil {
		return fmt.Errorf("failed to initialize storage table: %w", err)
	}

	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) (string, error) {
	sql := `
			SELECT value
			FROM "table-booking-client".storage
			WHERE profile=$1 AND key=$2;
		`

	var value string
	err := s.pool.QueryRow(ctx, sql, s.profile, key).Scan(&value)

	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrKeyNotFound
	}

	if err != nil {
		return "", fmt.Errorf("failed to fetch key '%v': %w", key, err)
	}

	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key, value string) error {
	sql := `
			INSERT INTO "table-booking-client".storage(profile, key, value, "updatedAt")
			VALUES ($1, $2, $3, now())
			ON CONFLICT (profile, key)
			DO UPDATE SET value=EXCLUDED.value, "updatedAt"=now();
		`

	if _, err := s.pool.Exec(ctx, sql, s.profile, key, value); err != nil {
		return fmt.Errorf("failed to store key '%v': %w", key, err)
	}

	return nil
}

func (s *PostgresStore) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	sql := `
			DELETE FROM "table-booking-client".storage
			WHERE profile=$1 AND key = ANY($2);
		`

	if _, err := s.pool.Exec(ctx, sql, s.profile, keys); err != nil {
		return fmt.Errorf("failed to remove keys %v: %w", keys, err)
	}

	return nil
}
