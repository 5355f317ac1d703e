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
)

type distributionRow struct {
	HuntID        int64      `db:"hunt_id"`
	PlayerID      int64      `db:"player_id"`
	WalletAddress string     `db:"wallet_address"`
	XLMStatus     string     `db:"xlm_status"`
	XLMFailure    string     `db:"xlm_failure"`
	NFTStatus     string     `db:"nft_status"`
	NFTFailure    string     `db:"nft_failure"`
	CredentialID  string     `db:"credential_id"`
	SettledAt     *time.Time `db:"settled_at"`
}

func (r distributionRow) toModel() *model.DistributionRecord {
	return &model.DistributionRecord{
		HuntID:        r.HuntID,
		PlayerID:      r.PlayerID,
		WalletAddress: r.WalletAddress,
		XLMStatus:     model.BranchStatus(r.XLMStatus),
		XLMFailure:    model.BranchFailure(r.XLMFailure),
		NFTStatus:     model.BranchStatus(r.NFTStatus),
		NFTFailure:    model.BranchFailure(r.NFTFailure),
		CredentialID:  r.CredentialID,
		SettledAt:     r.SettledAt,
	}
}

var distributionColumns = []string{
	"hunt_id", "player_id", "wallet_address",
	"xlm_status", "xlm_failure", "nft_status", "nft_failure",
	"credential_id", "settled_at",
}

func (r *Repository) GetDistribution(ctx context.Context, huntID, playerID int64) (*model.DistributionRecord, error) {
	query, args, err := squirrel.
		Select(distributionColumns...).
		From("distributions").
		Where(squirrel.Eq{"hunt_id": huntID, "player_id": playerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build distribution query: %w", err)
	}

	var row distributionRow
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get distribution: %w", err)
	}

	return row.toModel(), nil
}

// SettleDistribution creates the (hunt, player) distribution record if
// it does not exist yet, locks it, runs settle over it, and persists
// the outcome — all in one transaction. Holding the row lock for the
// duration of settle serializes concurrent settlement calls for the
// same pair, so two racing callers can never both pass the replay
// guard and both disburse.
func (r *Repository) SettleDistribution(
	ctx context.Context,
	huntID, playerID int64,
	walletAddress string,
	settle func(rec *model.DistributionRecord) (*model.DistributionRecord, error),
) (*model.DistributionRecord, error) {
	var settled *model.DistributionRecord

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		insertQuery, insertArgs, err := squirrel.
			Insert("distributions").
			SetMap(map[string]interface{}{
				"hunt_id":        huntID,
				"player_id":      playerID,
				"wallet_address": walletAddress,
				"xlm_status":     string(model.BranchPending),
				"xlm_failure":    "",
				"nft_status":     string(model.BranchPending),
				"nft_failure":    "",
				"credential_id":  "",
			}).
			Suffix("ON CONFLICT (hunt_id, player_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build distribution insert query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			return fmt.Errorf("failed to insert distribution: %w", err)
		}

		lockQuery, lockArgs, err := squirrel.
			Select(distributionColumns...).
			From("distributions").
			Where(squirrel.Eq{"hunt_id": huntID, "player_id": playerID}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build distribution lock query: %w", err)
		}

		var row distributionRow
		if err := tx.GetContext(ctx, &row, lockQuery, lockArgs...); err != nil {
			return fmt.Errorf("failed to lock distribution: %w", err)
		}

		settled, err = settle(row.toModel())
		if err != nil {
			return err
		}

		updateQuery, updateArgs, err := squirrel.
			Update("distributions").
			SetMap(map[string]interface{}{
				"xlm_status":    string(settled.XLMStatus),
				"xlm_failure":   string(settled.XLMFailure),
				"nft_status":    string(settled.NFTStatus),
				"nft_failure":   string(settled.NFTFailure),
				"credential_id": settled.CredentialID,
				"settled_at":    settled.SettledAt,
			}).
			Where(squirrel.Eq{"hunt_id": huntID, "player_id": playerID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build distribution update query: %w", err)
		}

		if _, err := tx.ExecContext(ctx, updateQuery, updateArgs...); err != nil {
			return fmt.Errorf("failed to update distribution: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return settled, nil
}
