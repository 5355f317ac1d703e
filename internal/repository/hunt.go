package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hunty_backend/internal/model"

	"github.com/Masterminds/squirrel"
)

type huntRow struct {
	ID                int64      `db:"id"`
	CreatorID         int64      `db:"creator_id"`
	Title             string     `db:"title"`
	Description       string     `db:"description"`
	Status            string     `db:"status"`
	ClueCount         int        `db:"clue_count"`
	RequiredClueCount int        `db:"required_clue_count"`
	XLMAmount         int64      `db:"xlm_amount"`
	NFTEnabled        bool       `db:"nft_enabled"`
	NFTName           string     `db:"nft_name"`
	NFTDescription    string     `db:"nft_description"`
	NFTImage          string     `db:"nft_image"`
	PoolAddress       string     `db:"pool_address"`
	PoolBalance       int64      `db:"pool_balance"`
	CreatedAt         time.Time  `db:"created_at"`
	ActivatedAt       *time.Time `db:"activated_at"`
	ArchivedAt        *time.Time `db:"archived_at"`
}

func (r huntRow) toModel() *model.Hunt {
	hunt := &model.Hunt{
		ID:                r.ID,
		CreatorID:         r.CreatorID,
		Title:             r.Title,
		Description:       r.Description,
		Status:            model.HuntStatus(r.Status),
		ClueCount:         r.ClueCount,
		RequiredClueCount: r.RequiredClueCount,
		Reward: model.RewardConfig{
			XLMAmount:   r.XLMAmount,
			PoolAddress: r.PoolAddress,
			PoolBalance: r.PoolBalance,
		},
		CreatedAt:   r.CreatedAt,
		ActivatedAt: r.ActivatedAt,
		ArchivedAt:  r.ArchivedAt,
	}
	if r.NFTEnabled {
		hunt.Reward.NFT = &model.NFTMetadata{
			Name:        r.NFTName,
			Description: r.NFTDescription,
			ImageURL:    r.NFTImage,
		}
	}
	return hunt
}

var huntColumns = []string{
	"id", "creator_id", "title", "description", "status",
	"clue_count", "required_clue_count",
	"xlm_amount", "nft_enabled", "nft_name", "nft_description", "nft_image",
	"pool_address", "pool_balance",
	"created_at", "activated_at", "archived_at",
}

// CreateHunt inserts a new hunt in Draft status. Hunt ids come from the
// table sequence, so they stay monotonic across restarts.
func (r *Repository) CreateHunt(ctx context.Context, hunt *model.Hunt) (int64, error) {
	query, args, err := squirrel.
		Insert("hunts").
		SetMap(map[string]interface{}{
			"creator_id":          hunt.CreatorID,
			"title":               hunt.Title,
			"description":         hunt.Description,
			"status":              string(model.HuntStatusDraft),
			"clue_count":          0,
			"required_clue_count": 0,
			"xlm_amount":          0,
			"nft_enabled":         false,
			"nft_name":            "",
			"nft_description":     "",
			"nft_image":           "",
			"pool_address":        "",
			"pool_balance":        0,
			"created_at":          hunt.CreatedAt,
		}).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build hunt insert query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return 0, fmt.Errorf("failed to insert hunt: %w", err)
	}

	return id, nil
}

func (r *Repository) GetHuntByID(ctx context.Context, huntID int64) (*model.Hunt, error) {
	query, args, err := squirrel.
		Select(huntColumns...).
		From("hunts").
		Where(squirrel.Eq{"id": huntID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build hunt query: %w", err)
	}

	var row huntRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get hunt: %w", err)
	}

	return row.toModel(), nil
}

// ActivateHunt transitions Draft -> Active. The status predicate guards
// against a concurrent transition racing past the service-level checks.
func (r *Repository) ActivateHunt(ctx context.Context, huntID int64, at time.Time) error {
	return r.transitionHunt(ctx, huntID, "activated_at", at,
		model.HuntStatusActive, model.HuntStatusDraft)
}

// ArchiveHunt transitions Draft|Active -> Archived. Hunts are never
// physically deleted.
func (r *Repository) ArchiveHunt(ctx context.Context, huntID int64, at time.Time) error {
	return r.transitionHunt(ctx, huntID, "archived_at", at,
		model.HuntStatusArchived, model.HuntStatusDraft, model.HuntStatusActive)
}

func (r *Repository) transitionHunt(ctx context.Context, huntID int64, stampColumn string, at time.Time, to model.HuntStatus, from ...model.HuntStatus) error {
	fromStatuses := make([]string, len(from))
	for i, s := range from {
		fromStatuses[i] = string(s)
	}

	query, args, err := squirrel.
		Update("hunts").
		Set("status", string(to)).
		Set(stampColumn, at).
		Where(squirrel.Eq{"id": huntID, "status": fromStatuses}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build hunt transition query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to transition hunt: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetHuntByID(ctx, huntID); err != nil {
			return err
		}
		return ErrInvalidState
	}

	return nil
}

// UpdateRewardConfig replaces the reward configuration. Pool balance is
// tracked separately via FundPool/DeductPool and is not touched here.
func (r *Repository) UpdateRewardConfig(ctx context.Context, huntID int64, cfg model.RewardConfig) error {
	setMap := map[string]interface{}{
		"xlm_amount":      cfg.XLMAmount,
		"nft_enabled":     cfg.NFT != nil,
		"nft_name":        "",
		"nft_description": "",
		"nft_image":       "",
		"pool_address":    cfg.PoolAddress,
	}
	if cfg.NFT != nil {
		setMap["nft_name"] = cfg.NFT.Name
		setMap["nft_description"] = cfg.NFT.Description
		setMap["nft_image"] = cfg.NFT.ImageURL
	}

	query, args, err := squirrel.
		Update("hunts").
		SetMap(setMap).
		Where(squirrel.Eq{
			"id":     huntID,
			"status": []string{string(model.HuntStatusDraft), string(model.HuntStatusActive)},
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build reward config query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update reward config: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetHuntByID(ctx, huntID); err != nil {
			return err
		}
		return ErrInvalidState
	}

	return nil
}

// FundPool credits the tracked reward pool balance.
func (r *Repository) FundPool(ctx context.Context, huntID int64, amount int64) error {
	query, args, err := squirrel.
		Update("hunts").
		Set("pool_balance", squirrel.Expr("pool_balance + ?", amount)).
		Where(squirrel.Eq{"id": huntID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build pool fund query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to fund pool: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeductPool debits the tracked pool balance, failing with
// ErrInsufficientPool instead of going negative. The conditional update
// makes concurrent deductions safe without an explicit lock.
func (r *Repository) DeductPool(ctx context.Context, huntID int64, amount int64) error {
	query, args, err := squirrel.
		Update("hunts").
		Set("pool_balance", squirrel.Expr("pool_balance - ?", amount)).
		Where(squirrel.And{
			squirrel.Eq{"id": huntID},
			squirrel.Expr("pool_balance >= ?", amount),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build pool deduct query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to deduct pool: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		if _, err := r.GetHuntByID(ctx, huntID); err != nil {
			return err
		}
		return ErrInsufficientPool
	}

	return nil
}
