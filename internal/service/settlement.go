package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hunty_backend/internal/model"
	"hunty_backend/internal/repository"
	"hunty_backend/pkg/logger"

	"go.uber.org/zap"
)

// SettlementService coordinates reward distribution across the wallet
// and credential capabilities. The two branches are independent: one
// failing never rolls back the other, every outcome is recorded in the
// DistributionRecord, and a branch that reached Succeeded is never run
// again. There is no automatic retry; a retry is an explicit repeat
// call, which re-attempts only the branches still short of Succeeded.
type SettlementService struct {
	hunts         HuntRepository
	progress      ProgressRepository
	distributions DistributionRepository
	wallet        WalletService
	credentials   CredentialService
	events        EventPublisher
	notifier      Notifier
}

func NewSettlementService(
	hunts HuntRepository,
	progress ProgressRepository,
	distributions DistributionRepository,
	wallet WalletService,
	credentials CredentialService,
	events EventPublisher,
	notifier Notifier,
) *SettlementService {
	return &SettlementService{
		hunts:         hunts,
		progress:      progress,
		distributions: distributions,
		wallet:        wallet,
		credentials:   credentials,
		events:        events,
		notifier:      notifier,
	}
}

func (s *SettlementService) DistributeRewards(ctx context.Context, huntID, playerID int64) (*model.DistributionRecord, error) {
	progress, err := s.progress.GetProgress(ctx, huntID, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	if progress.Status != model.ProgressStatusCompleted {
		return nil, ErrInvalidState
	}

	hunt, err := s.hunts.GetHuntByID(ctx, huntID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	changed := false
	record, err := s.distributions.SettleDistribution(ctx, huntID, playerID, progress.WalletAddress,
		func(rec *model.DistributionRecord) (*model.DistributionRecord, error) {
			// Succeeded branches are guarded inside each runner; a full
			// replay does no work and returns the prior record unchanged.
			xlmRan := s.runXLMBranch(ctx, hunt, rec)
			nftRan := s.runNFTBranch(ctx, hunt, progress, rec)
			changed = xlmRan || nftRan

			if changed || rec.SettledAt == nil {
				now := time.Now().UTC()
				rec.SettledAt = &now
			}
			return rec, nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to settle distribution: %w", err)
	}

	if changed {
		s.publishSettled(record)
	}

	return record, nil
}

// runXLMBranch attempts the fungible transfer. Returns whether the
// branch did any work.
func (s *SettlementService) runXLMBranch(ctx context.Context, hunt *model.Hunt, rec *model.DistributionRecord) bool {
	if rec.XLMStatus == model.BranchSucceeded {
		return false
	}

	amount := hunt.Reward.XLMAmount
	if amount <= 0 {
		rec.XLMStatus = model.BranchSkipped
		rec.XLMFailure = ""
		return false
	}

	if err := s.hunts.DeductPool(ctx, hunt.ID, amount); err != nil {
		if errors.Is(err, repository.ErrInsufficientPool) {
			rec.XLMStatus = model.BranchFailed
			rec.XLMFailure = model.FailureInsufficientPool
		} else {
			logger.Logger().Error("pool deduction failed",
				zap.Int64("hunt_id", hunt.ID), zap.Error(err))
			rec.XLMStatus = model.BranchFailed
			rec.XLMFailure = model.FailureTransferError
		}
		return true
	}

	if err := s.wallet.TransferXLM(ctx, hunt.Reward.PoolAddress, rec.WalletAddress, amount); err != nil {
		logger.Logger().Error("xlm transfer failed",
			zap.Int64("hunt_id", hunt.ID),
			zap.Int64("player_id", rec.PlayerID),
			zap.Error(err))
		// The transfer never left the pool account; restore the
		// tracked balance so a retry can attempt it again.
		if refundErr := s.hunts.FundPool(ctx, hunt.ID, amount); refundErr != nil {
			logger.Logger().Error("pool refund failed",
				zap.Int64("hunt_id", hunt.ID), zap.Error(refundErr))
		}
		rec.XLMStatus = model.BranchFailed
		rec.XLMFailure = model.FailureTransferError
		return true
	}

	rec.XLMStatus = model.BranchSucceeded
	rec.XLMFailure = ""
	return true
}

// runNFTBranch mints the completion credential and transfers it to the
// player. A mint that succeeded on an earlier attempt is not repeated:
// the stored credential id is reused and only the transfer is retried.
func (s *SettlementService) runNFTBranch(ctx context.Context, hunt *model.Hunt, progress *model.PlayerProgress, rec *model.DistributionRecord) bool {
	if rec.NFTStatus == model.BranchSucceeded {
		return false
	}

	meta := hunt.Reward.NFT
	if meta == nil {
		rec.NFTStatus = model.BranchSkipped
		rec.NFTFailure = ""
		return false
	}

	if rec.CredentialID == "" {
		completedAt := time.Now().UTC()
		if progress.CompletedAt != nil {
			completedAt = *progress.CompletedAt
		}

		credentialID, err := s.credentials.MintCredential(ctx, model.CredentialMetadata{
			HuntID:      hunt.ID,
			PlayerID:    progress.PlayerID,
			CompletedAt: completedAt,
			Name:        meta.Name,
			Description: meta.Description,
			ImageURL:    meta.ImageURL,
		})
		if err != nil {
			logger.Logger().Error("credential mint failed",
				zap.Int64("hunt_id", hunt.ID),
				zap.Int64("player_id", progress.PlayerID),
				zap.Error(err))
			rec.NFTStatus = model.BranchFailed
			rec.NFTFailure = model.FailureMintError
			return true
		}
		rec.CredentialID = credentialID
	}

	if err := s.credentials.TransferCredential(ctx, rec.CredentialID, rec.WalletAddress); err != nil {
		logger.Logger().Error("credential transfer failed",
			zap.Int64("hunt_id", hunt.ID),
			zap.String("credential_id", rec.CredentialID),
			zap.Error(err))
		rec.NFTStatus = model.BranchFailed
		rec.NFTFailure = model.FailureTransferError
		return true
	}

	rec.NFTStatus = model.BranchSucceeded
	rec.NFTFailure = ""
	return true
}

func (s *SettlementService) GetDistribution(ctx context.Context, huntID, playerID int64) (*model.DistributionRecord, error) {
	record, err := s.distributions.GetDistribution(ctx, huntID, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDistributionNotFound
		}
		return nil, fmt.Errorf("failed to get distribution: %w", err)
	}
	return record, nil
}

func (s *SettlementService) publishSettled(record *model.DistributionRecord) {
	if s.events != nil {
		s.events.Publish(model.NewEvent(model.EventRewardSettled, record.HuntID, record.PlayerID, map[string]interface{}{
			"xlm_status": record.XLMStatus,
			"nft_status": record.NFTStatus,
		}))
	}
	if s.notifier != nil {
		s.notifier.RewardSettled(record.PlayerID, record)
	}
}
