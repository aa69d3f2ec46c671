// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dice-games-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
)

const userColumns = `telegram_id, display_name, coins, victories, games, ranking, last_bonus_at, busy, created_at, updated_at`

// UserRepository handles user data persistence.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.TelegramID,
		&u.DisplayName,
		&u.Coins,
		&u.Victories,
		&u.Games,
		&u.Ranking,
		&u.LastBonusAt,
		&u.Busy,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// queryUser runs a single-row query and maps pgx.ErrNoRows to ErrUserNotFound.
func (r *UserRepository) queryUser(ctx context.Context, op, query string, args ...any) (*model.User, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return user, nil
}

// Create inserts a user with the default balance. It reports created=false
// when a record with the same ID already exists.
func (r *UserRepository) Create(ctx context.Context, telegramID int64, displayName string) (*model.User, bool, error) {
	const query = `
		INSERT INTO users (telegram_id, display_name, coins)
		VALUES ($1, $2, $3)
		ON CONFLICT (telegram_id) DO NOTHING
		RETURNING ` + userColumns

	user, err := r.queryUser(ctx, "create user", query, telegramID, displayName, model.DefaultCoins)
	if errors.Is(err, ErrUserNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// GetByID retrieves a user by their Telegram ID.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, telegramID int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`
	return r.queryUser(ctx, "get user", query, telegramID)
}

// GetOrCreate retrieves a user by Telegram ID, creating one if it doesn't
// exist. The display name is only used on creation.
func (r *UserRepository) GetOrCreate(ctx context.Context, telegramID int64, displayName string) (*model.User, bool, error) {
	user, err := r.GetByID(ctx, telegramID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, false, err
	}

	user, created, err := r.Create(ctx, telegramID, displayName)
	if err != nil {
		return nil, false, err
	}
	if created {
		return user, true, nil
	}

	// Another request created the user between the read and the insert.
	user, err = r.GetByID(ctx, telegramID)
	if err != nil {
		return nil, false, err
	}
	return user, false, nil
}

// TryMarkBusy sets the busy flag if the user is idle and has coins left.
// It returns false when another trial already holds the flag or the
// balance ran out, in which case nothing is written.
func (r *UserRepository) TryMarkBusy(ctx context.Context, telegramID int64) (bool, error) {
	const query = `
		UPDATE users
		SET busy = TRUE, updated_at = NOW()
		WHERE telegram_id = $1 AND busy = FALSE AND coins > 0
	`
	tag, err := r.pool.Exec(ctx, query, telegramID)
	if err != nil {
		return false, fmt.Errorf("failed to mark user busy: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Settle applies a trial result in one statement: the victory and coin
// deltas, one more game played, and the busy flag cleared.
func (r *UserRepository) Settle(ctx context.Context, telegramID int64, victoriesDelta, coinsDelta int64) (*model.User, error) {
	const query = `
		UPDATE users
		SET victories = victories + $2,
		    coins = coins + $3,
		    games = games + 1,
		    busy = FALSE,
		    updated_at = NOW()
		WHERE telegram_id = $1
		RETURNING ` + userColumns

	return r.queryUser(ctx, "settle trial", query, telegramID, victoriesDelta, coinsDelta)
}

// ReleaseAllBusy clears the busy flag for every user. It runs once at
// startup to recover from a shutdown in the middle of a trial.
func (r *UserRepository) ReleaseAllBusy(ctx context.Context) (int64, error) {
	const query = `UPDATE users SET busy = FALSE, updated_at = NOW() WHERE busy = TRUE`
	tag, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to release busy users: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GrantBonus adds coins and moves the next bonus time forward.
func (r *UserRepository) GrantBonus(ctx context.Context, telegramID int64, coins int64, nextBonusAt float64) (*model.User, error) {
	const query = `
		UPDATE users
		SET coins = coins + $2, last_bonus_at = $3, updated_at = NOW()
		WHERE telegram_id = $1
		RETURNING ` + userColumns

	return r.queryUser(ctx, "grant bonus", query, telegramID, coins, nextBonusAt)
}

// ListForRanking returns every user ordered by victories, highest first.
// Ties are broken by Telegram ID so the order is deterministic.
func (r *UserRepository) ListForRanking(ctx context.Context) ([]*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY victories DESC, telegram_id ASC`
	return r.queryUsers(ctx, query)
}

// TopByVictories returns the first limit users in ranking order.
func (r *UserRepository) TopByVictories(ctx context.Context, limit int) ([]*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users ORDER BY victories DESC, telegram_id ASC LIMIT $1`
	return r.queryUsers(ctx, query, limit)
}

// UpdateRankings writes each user's rank with its own statement, sent as one
// batch. Rankings are advisory, so a failed batch is reported and the stale
// values stay until the next recomputation.
func (r *UserRepository) UpdateRankings(ctx context.Context, ranks map[int64]int) error {
	if len(ranks) == 0 {
		return nil
	}

	const query = `UPDATE users SET ranking = $2 WHERE telegram_id = $1`

	batch := &pgx.Batch{}
	for id, rank := range ranks {
		batch.Queue(query, id, rank)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	var errs []error
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to update %d of %d rankings: %w", len(errs), len(ranks), errors.Join(errs...))
	}
	return nil
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...any) ([]*model.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
