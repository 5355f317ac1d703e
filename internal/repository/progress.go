package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hunty_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type progressRow struct {
	HuntID        int64         `db:"hunt_id"`
	PlayerID      int64         `db:"player_id"`
	WalletAddress string        `db:"wallet_address"`
	SolvedClues   pq.Int64Array `db:"solved_clues"`
	Score         int           `db:"score"`
	Status        string        `db:"status"`
	RegisteredAt  time.Time     `db:"registered_at"`
	CompletedAt   *time.Time    `db:"completed_at"`
}

func (r progressRow) toModel() *model.PlayerProgress {
	return &model.PlayerProgress{
		HuntID:        r.HuntID,
		PlayerID:      r.PlayerID,
		WalletAddress: r.WalletAddress,
		SolvedClues:   []int64(r.SolvedClues),
		Score:         r.Score,
		Status:        model.ProgressStatus(r.Status),
		RegisteredAt:  r.RegisteredAt,
		CompletedAt:   r.CompletedAt,
	}
}

var progressColumns = []string{
	"hunt_id", "player_id", "wallet_address", "solved_clues",
	"score", "status", "registered_at", "completed_at",
}

// CreateProgress registers a player into a hunt exactly once. Duplicate
// registration returns ErrAlreadyRegistered with no state change.
func (r *Repository) CreateProgress(ctx context.Context, progress *model.PlayerProgress) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		checkQuery, checkArgs, err := squirrel.
			Select("1").
			From("player_progress").
			Where(squirrel.Eq{
				"hunt_id":   progress.HuntID,
				"player_id": progress.PlayerID,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build registration check query: %w", err)
		}

		var exists bool
		err = tx.GetContext(ctx, &exists, checkQuery, checkArgs...)
		if err == nil {
			return ErrAlreadyRegistered
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to check registration: %w", err)
		}

		insertQuery, insertArgs, err := squirrel.
			Insert("player_progress").
			SetMap(map[string]interface{}{
				"hunt_id":        progress.HuntID,
				"player_id":      progress.PlayerID,
				"wallet_address": progress.WalletAddress,
				"solved_clues":   pq.Int64Array{},
				"score":          0,
				"status":         string(model.ProgressStatusRegistered),
				"registered_at":  progress.RegisteredAt,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build progress insert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("failed to insert progress: %w", err)
		}

		return nil
	})
}

func (r *Repository) GetProgress(ctx context.Context, huntID, playerID int64) (*model.PlayerProgress, error) {
	query, args, err := squirrel.
		Select(progressColumns...).
		From("player_progress").
		Where(squirrel.Eq{"hunt_id": huntID, "player_id": playerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build progress query: %w", err)
	}

	var row progressRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return row.toModel(), nil
}

// MarkClueSolved adds clueID to the solved set and credits the score in
// one atomic statement. Returns false with no error when the clue was
// already solved, so re-submission stays a harmless no-op. Completed
// progress is immutable and reports ErrInvalidState.
func (r *Repository) MarkClueSolved(ctx context.Context, huntID, playerID, clueID int64, points int) (bool, error) {
	query, args, err := squirrel.
		Update("player_progress").
		Set("solved_clues", squirrel.Expr("array_append(solved_clues, ?)", clueID)).
		Set("score", squirrel.Expr("score + ?", points)).
		Set("status", string(model.ProgressStatusInProgress)).
		Where(squirrel.And{
			squirrel.Eq{"hunt_id": huntID, "player_id": playerID},
			squirrel.NotEq{"status": string(model.ProgressStatusCompleted)},
			squirrel.Expr("NOT (solved_clues @> ARRAY[?]::bigint[])", clueID),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build solve query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to mark clue solved: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	progress, err := r.GetProgress(ctx, huntID, playerID)
	if err != nil {
		return false, err
	}
	if progress.Status == model.ProgressStatusCompleted {
		return false, ErrInvalidState
	}

	// Already solved: idempotent no-op.
	return false, nil
}

// CompleteProgress transitions the progress to Completed exactly once.
func (r *Repository) CompleteProgress(ctx context.Context, huntID, playerID int64, at time.Time) error {
	query, args, err := squirrel.
		Update("player_progress").
		Set("status", string(model.ProgressStatusCompleted)).
		Set("completed_at", at).
		Where(squirrel.And{
			squirrel.Eq{"hunt_id": huntID, "player_id": playerID},
			squirrel.NotEq{"status": string(model.ProgressStatusCompleted)},
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build completion query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to complete progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetProgress(ctx, huntID, playerID); err != nil {
			return err
		}
		return ErrInvalidState
	}

	return nil
}

// Leaderboard returns hunt progress ordered by score.
func (r *Repository) Leaderboard(ctx context.Context, huntID int64, limit int) ([]*model.PlayerProgress, error) {
	query, args, err := squirrel.
		Select(progressColumns...).
		From("player_progress").
		Where(squirrel.Eq{"hunt_id": huntID}).
		OrderBy("score DESC", "completed_at ASC NULLS LAST", "player_id").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build leaderboard query: %w", err)
	}

	var rows []progressRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	progress := make([]*model.PlayerProgress, len(rows))
	for i, row := range rows {
		progress[i] = row.toModel()
	}

	return progress, nil
}
