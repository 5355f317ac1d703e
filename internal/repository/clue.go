package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hunty_backend/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type clueRow struct {
	HuntID           int64  `db:"hunt_id"`
	ClueID           int64  `db:"clue_id"`
	Question         string `db:"question"`
	AnswerCommitment string `db:"answer_commitment"`
	Required         bool   `db:"required"`
	Points           int    `db:"points"`
	Hint             string `db:"hint"`
	HasLocation      bool   `db:"has_location"`
	Latitude         int64  `db:"latitude"`
	Longitude        int64  `db:"longitude"`
	RadiusM          int    `db:"radius_m"`
}

func (r clueRow) toModel() *model.Clue {
	clue := &model.Clue{
		HuntID:           r.HuntID,
		ClueID:           r.ClueID,
		Question:         r.Question,
		AnswerCommitment: r.AnswerCommitment,
		Required:         r.Required,
		Points:           r.Points,
		Hint:             r.Hint,
	}
	if r.HasLocation {
		clue.Location = &model.Location{
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			RadiusM:   r.RadiusM,
		}
	}
	return clue
}

var clueColumns = []string{
	"hunt_id", "clue_id", "question", "answer_commitment", "required",
	"points", "hint", "has_location", "latitude", "longitude", "radius_m",
}

// CreateClue assigns the next sequential clue id within the hunt and
// bumps the hunt's clue counters, all under the hunt row lock so that
// concurrent authoring cannot produce duplicate ids. The status
// predicate enforces that clues are only added to Draft hunts.
func (r *Repository) CreateClue(ctx context.Context, clue *model.Clue) (int64, error) {
	var clueID int64

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		lockQuery, lockArgs, err := squirrel.
			Select("status", "clue_count").
			From("hunts").
			Where(squirrel.Eq{"id": clue.HuntID}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build hunt lock query: %w", err)
		}

		var hunt struct {
			Status    string `db:"status"`
			ClueCount int64  `db:"clue_count"`
		}
		err = tx.GetContext(ctx, &hunt, lockQuery, lockArgs...)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to lock hunt: %w", err)
		}

		if hunt.Status != string(model.HuntStatusDraft) {
			return ErrInvalidState
		}

		clueID = hunt.ClueCount + 1

		setMap := map[string]interface{}{
			"hunt_id":           clue.HuntID,
			"clue_id":           clueID,
			"question":          clue.Question,
			"answer_commitment": clue.AnswerCommitment,
			"required":          clue.Required,
			"points":            clue.Points,
			"hint":              clue.Hint,
			"has_location":      clue.Location != nil,
			"latitude":          int64(0),
			"longitude":         int64(0),
			"radius_m":          0,
		}
		if clue.Location != nil {
			setMap["latitude"] = clue.Location.Latitude
			setMap["longitude"] = clue.Location.Longitude
			setMap["radius_m"] = clue.Location.RadiusM
		}

		insertQuery, insertArgs, err := squirrel.
			Insert("clues").
			SetMap(setMap).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build clue insert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("failed to insert clue: %w", err)
		}

		countUpdate := squirrel.
			Update("hunts").
			Set("clue_count", squirrel.Expr("clue_count + 1")).
			Where(squirrel.Eq{"id": clue.HuntID}).
			PlaceholderFormat(squirrel.Dollar)
		if clue.Required {
			countUpdate = countUpdate.Set("required_clue_count", squirrel.Expr("required_clue_count + 1"))
		}

		countQuery, countArgs, err := countUpdate.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build clue count query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, countQuery, countArgs...); err != nil {
			return fmt.Errorf("failed to update clue counts: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return clueID, nil
}

func (r *Repository) GetClue(ctx context.Context, huntID, clueID int64) (*model.Clue, error) {
	query, args, err := squirrel.
		Select(clueColumns...).
		From("clues").
		Where(squirrel.Eq{"hunt_id": huntID, "clue_id": clueID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build clue query: %w", err)
	}

	var row clueRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get clue: %w", err)
	}

	return row.toModel(), nil
}

func (r *Repository) ListClues(ctx context.Context, huntID int64) ([]*model.Clue, error) {
	query, args, err := squirrel.
		Select(clueColumns...).
		From("clues").
		Where(squirrel.Eq{"hunt_id": huntID}).
		OrderBy("clue_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build clue list query: %w", err)
	}

	var rows []clueRow
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clues: %w", err)
	}

	clues := make([]*model.Clue, len(rows))
	for i, row := range rows {
		clues[i] = row.toModel()
	}

	return clues, nil
}
