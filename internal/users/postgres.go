package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/strubloid/neotalent-sub000/internal/models"
)

const uniqueViolationCode = "23505"

// PostgresStore persists users and their search history in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed user store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the backing tables when they do not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL,
			nickname TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS user_searches (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			search_id TEXT NOT NULL,
			query TEXT NOT NULL,
			summary TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, search_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Create inserts a new user. The unique index on username is the
// authority on duplicates, so a registration race still maps to
// ErrDuplicateUsername.
func (s *PostgresStore) Create(ctx context.Context, username, hashedPassword, nickname string) (*models.User, error) {
	user := &models.User{
		Username: strings.ToLower(username),
		Nickname: nickname,
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, hashed_password, nickname)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		user.Username, hashedPassword, nickname,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.HashedPassword = hashedPassword
	return user, nil
}

// GetByUsername looks a user up by lowercased username.
func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx,
		`SELECT id, username, hashed_password, nickname, created_at, updated_at
		 FROM users WHERE username = $1`,
		strings.ToLower(username))
}

// GetByID looks a user up by id.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx,
		`SELECT id, username, hashed_password, nickname, created_at, updated_at
		 FROM users WHERE id = $1`,
		id)
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID, &user.Username, &user.HashedPassword, &user.Nickname,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return user, nil
}

// AddSearchEntry upserts the entry and trims the history beyond the cap
// in one transaction, so concurrent adds for the same user cannot lose
// updates.
func (s *PostgresStore) AddSearchEntry(ctx context.Context, userID string, entry models.SearchEntry) ([]models.SearchEntry, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Re-adding an existing search id refreshes its timestamp, which
	// moves it to the front of the recency-ordered history.
	_, err = tx.Exec(ctx,
		`INSERT INTO user_searches (user_id, search_id, query, summary, created_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (user_id, search_id)
		 DO UPDATE SET query = EXCLUDED.query, summary = EXCLUDED.summary, created_at = now()`,
		userID, entry.SearchID, entry.Query, entry.Summary,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert search entry: %w", err)
	}

	_, err = tx.Exec(ctx,
		`DELETE FROM user_searches
		 WHERE user_id = $1 AND search_id NOT IN (
			SELECT search_id FROM user_searches
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		 )`,
		userID, models.MaxSearchHistoryEntries,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to trim search history: %w", err)
	}

	history, err := scanSearchHistory(tx.Query(ctx,
		`SELECT search_id, query, summary, created_at
		 FROM user_searches
		 WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit search entry: %w", err)
	}
	return history, nil
}

// GetSearchHistory returns the user's history, most-recent-first.
func (s *PostgresStore) GetSearchHistory(ctx context.Context, userID string) ([]models.SearchEntry, error) {
	return scanSearchHistory(s.pool.Query(ctx,
		`SELECT search_id, query, summary, created_at
		 FROM user_searches
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, models.MaxSearchHistoryEntries,
	))
}

// ClearSearchHistory removes every history entry for the user.
func (s *PostgresStore) ClearSearchHistory(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM user_searches WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear search history: %w", err)
	}
	return nil
}

func scanSearchHistory(rows pgx.Rows, err error) ([]models.SearchEntry, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer rows.Close()

	history := []models.SearchEntry{}
	for rows.Next() {
		var e models.SearchEntry
		if err := rows.Scan(&e.SearchID, &e.Query, &e.Summary, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan search entry: %w", err)
		}
		history = append(history, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search history: %w", err)
	}
	return history, nil
}
