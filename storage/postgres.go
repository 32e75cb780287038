package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/Fearce02/Drawlio-sub000/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresRepo(ctx context.Context, connString string) (*PostgresRepo, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresRepo{pool: pool}, nil
}

func (pgr *PostgresRepo) Close() {
	pgr.pool.Close()
}

func (pgr *PostgresRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	user := domain.User{Username: username}

	row := pgr.pool.QueryRow(ctx, "SELECT id, password_hash FROM users WHERE username = $1", username)

	err := row.Scan(&user.Id, &user.PasswordHash)

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.User{}, domain.ErrUserNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.User{}, err
		default:
			return domain.User{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	return user, nil
}

func (pgr *PostgresRepo) GetUserById(ctx context.Context, id string) (domain.User, error) {
	user := domain.User{Id: id}

	row := pgr.pool.QueryRow(ctx, "SELECT username, password_hash FROM users WHERE id = $1", id)

	err := row.Scan(&user.Username, &user.PasswordHash)

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return domain.User{}, domain.ErrUserNotFound
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.User{}, err
		default:
			return domain.User{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	return user, nil
}

func (pgr *PostgresRepo) CreateUser(ctx context.Context, username string, passwordHash string) (string, error) {
	row := pgr.pool.QueryRow(ctx, "INSERT INTO users(username, password_hash) VALUES($1, $2) RETURNING id", username, passwordHash)

	var id string
	err := row.Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// "23505" is the PostgreSQL error code for unique_violation
			if pgErr.Code == "23505" {
				return "", domain.ErrDuplicateUsername
			}
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		return "", fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return id, nil
}

// GetPlayerStats returns the ledger row for a user, zero-valued if the user
// has never finished a game.
func (pgr *PostgresRepo) GetPlayerStats(ctx context.Context, userId string) (domain.PlayerStats, error) {
	stats := domain.PlayerStats{UserId: userId}

	row := pgr.pool.QueryRow(ctx,
		"SELECT xp, games_played, games_won, win_streak FROM player_stats WHERE user_id = $1", userId)

	err := row.Scan(&stats.XP, &stats.GamesPlayed, &stats.GamesWon, &stats.WinStreak)

	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return stats, nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return domain.PlayerStats{}, err
		default:
			return domain.PlayerStats{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
	}

	return stats, nil
}

// ApplyGameResult adds one finished game to the ledger and returns the row
// after the update. The win streak resets on a loss.
func (pgr *PostgresRepo) ApplyGameResult(ctx context.Context, userId string, xpDelta int64, won bool) (domain.PlayerStats, error) {
	stats := domain.PlayerStats{UserId: userId}

	wonInc := 0
	if won {
		wonInc = 1
	}

	row := pgr.pool.QueryRow(ctx, `
		INSERT INTO player_stats(user_id, xp, games_played, games_won, win_streak)
		VALUES ($1, $2, 1, $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			xp           = player_stats.xp + EXCLUDED.xp,
			games_played = player_stats.games_played + 1,
			games_won    = player_stats.games_won + EXCLUDED.games_won,
			win_streak   = CASE WHEN EXCLUDED.games_won > 0 THEN player_stats.win_streak + 1 ELSE 0 END,
			updated_at   = now()
		RETURNING xp, games_played, games_won, win_streak`,
		userId, xpDelta, wonInc)

	err := row.Scan(&stats.XP, &stats.GamesPlayed, &stats.GamesWon, &stats.WinStreak)

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.PlayerStats{}, err
		}
		return domain.PlayerStats{}, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}

	return stats, nil
}

// ListFriendIDs resolves the notify-set for presence updates. Friend-graph
// mutation lives outside this service.
func (pgr *PostgresRepo) ListFriendIDs(ctx context.Context, userId string) ([]string, error) {
	rows, err := pgr.pool.Query(ctx, "SELECT friend_id FROM friends WHERE user_id = $1", userId)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.UnexpectedDatabaseError, err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Generate implements the game word source against the words table.
// Returns an empty slice if the query fails so callers can fall back.
func (pgr *PostgresRepo) Generate(count int) []string {
	ctx := context.Background()

	query := `SELECT word FROM words ORDER BY RANDOM() LIMIT $1`

	rows, err := pgr.pool.Query(ctx, query, count)
	if err != nil {
		return []string{}
	}
	defer rows.Close()

	words := make([]string, 0, count)
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			continue
		}
		words = append(words, word)
	}

	return words
}
