package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hunty_backend/internal/model"
	"hunty_backend/internal/repository"
	"hunty_backend/pkg/answer"
	"hunty_backend/pkg/logger"

	"go.uber.org/zap"
)

// ProgressService owns the player side of the state machine:
// Unregistered -> Registered -> InProgress -> Completed. Completion is
// the sole trigger of reward settlement.
type ProgressService struct {
	hunts      HuntRepository
	progress   ProgressRepository
	settlement SettlementServiceI
	events     EventPublisher
	notifier   Notifier
}

func NewProgressService(
	hunts HuntRepository,
	progress ProgressRepository,
	settlement SettlementServiceI,
	events EventPublisher,
	notifier Notifier,
) *ProgressService {
	return &ProgressService{
		hunts:      hunts,
		progress:   progress,
		settlement: settlement,
		events:     events,
		notifier:   notifier,
	}
}

func (s *ProgressService) RegisterPlayer(ctx context.Context, playerID, huntID int64, walletAddress string) error {
	hunt, err := s.hunts.GetHuntByID(ctx, huntID)
	if err != nil {
		return mapRepositoryError(err)
	}
	if hunt.Status != model.HuntStatusActive {
		return ErrInvalidState
	}
	if walletAddress == "" {
		return ErrInvalidWallet
	}

	progress := &model.PlayerProgress{
		HuntID:        huntID,
		PlayerID:      playerID,
		WalletAddress: walletAddress,
		Status:        model.ProgressStatusRegistered,
		RegisteredAt:  time.Now().UTC(),
	}

	if err := s.progress.CreateProgress(ctx, progress); err != nil {
		if errors.Is(err, repository.ErrAlreadyRegistered) {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to register player: %w", err)
	}

	return nil
}

// SubmitAnswer verifies the submission against the clue's commitment.
// A correct answer is recorded idempotently: re-submitting an already
// solved clue reports Correct and changes nothing. The response never
// distinguishes a wrong answer from an already-solved clue.
func (s *ProgressService) SubmitAnswer(ctx context.Context, playerID, huntID, clueID int64, rawAnswer string) (model.AnswerResult, error) {
	progress, err := s.progress.GetProgress(ctx, huntID, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotRegistered
		}
		return "", fmt.Errorf("failed to get progress: %w", err)
	}
	if progress.Status == model.ProgressStatusCompleted {
		return "", ErrInvalidState
	}

	clue, err := s.hunts.GetClue(ctx, huntID, clueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnknownClue
		}
		return "", fmt.Errorf("failed to get clue: %w", err)
	}

	if !answer.Verify(rawAnswer, clue.AnswerCommitment) {
		return model.AnswerIncorrect, nil
	}

	solved, err := s.progress.MarkClueSolved(ctx, huntID, playerID, clueID, clue.Points)
	if err != nil {
		return "", mapRepositoryError(err)
	}

	if solved {
		s.publish(model.NewEvent(model.EventClueSolved, huntID, playerID, map[string]interface{}{
			"clue_id": clueID,
			"points":  clue.Points,
		}))
	}

	return model.AnswerCorrect, nil
}

// CompleteHunt transitions the progress to Completed once the required
// clues are all solved, then synchronously runs reward settlement and
// surfaces the distribution record unchanged. Completion is durable
// before settlement runs; a reward failure never un-completes a hunt.
// Calling again after a partial settlement failure retries only the
// failed branches.
func (s *ProgressService) CompleteHunt(ctx context.Context, playerID, huntID int64) (*model.CompletionReceipt, error) {
	progress, err := s.progress.GetProgress(ctx, huntID, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	if progress.Status != model.ProgressStatusCompleted {
		clues, err := s.hunts.ListClues(ctx, huntID)
		if err != nil {
			return nil, fmt.Errorf("failed to list clues: %w", err)
		}
		if !progress.HasSolvedRequired(clues) {
			return nil, ErrHuntNotSatisfied
		}

		completedAt := time.Now().UTC()
		if err := s.progress.CompleteProgress(ctx, huntID, playerID, completedAt); err != nil {
			// A racing call may have completed it first; that is fine,
			// settlement below is idempotent.
			if !errors.Is(err, repository.ErrInvalidState) {
				return nil, fmt.Errorf("failed to complete progress: %w", err)
			}
		}

		progress, err = s.progress.GetProgress(ctx, huntID, playerID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload progress: %w", err)
		}

		s.publish(model.NewEvent(model.EventHuntCompleted, huntID, playerID, map[string]interface{}{
			"score": progress.Score,
		}))

		if s.notifier != nil {
			hunt, err := s.hunts.GetHuntByID(ctx, huntID)
			if err == nil {
				s.notifier.HuntCompleted(playerID, hunt.Title, progress.Score)
			} else {
				logger.Logger().Warn("skipping completion notification",
					zap.Int64("hunt_id", huntID), zap.Error(err))
			}
		}
	}

	record, err := s.settlement.DistributeRewards(ctx, huntID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to distribute rewards: %w", err)
	}

	return &model.CompletionReceipt{
		Progress:     progress,
		Distribution: record,
	}, nil
}

func (s *ProgressService) GetProgress(ctx context.Context, playerID, huntID int64) (*model.PlayerProgress, error) {
	progress, err := s.progress.GetProgress(ctx, huntID, playerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return progress, nil
}

func (s *ProgressService) Leaderboard(ctx context.Context, huntID int64, limit int) ([]*model.PlayerProgress, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if _, err := s.hunts.GetHuntByID(ctx, huntID); err != nil {
		return nil, mapRepositoryError(err)
	}
	board, err := s.progress.Leaderboard(ctx, huntID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	return board, nil
}

func (s *ProgressService) publish(event model.Event) {
	if s.events != nil {
		s.events.Publish(event)
	}
}
