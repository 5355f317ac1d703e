package service

import (
	"context"
	"errors"
	"time"

	"hunty_backend/internal/model"
)

var (
	ErrUnauthorized         = errors.New("caller is not the hunt creator")
	ErrInvalidState         = errors.New("operation not allowed in current state")
	ErrHuntNotFound         = errors.New("hunt not found")
	ErrUnknownClue          = errors.New("clue not found in hunt")
	ErrAlreadyRegistered    = errors.New("player already registered")
	ErrNotRegistered        = errors.New("player not registered")
	ErrNotEnoughClues       = errors.New("hunt needs at least one required clue")
	ErrHuntNotSatisfied     = errors.New("required clues not solved yet")
	ErrInvalidTitle         = errors.New("title is empty or too long")
	ErrInvalidDescription   = errors.New("description is too long")
	ErrInvalidClue          = errors.New("clue question or answer is empty")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidWallet        = errors.New("wallet address is required")
	ErrDistributionNotFound = errors.New("distribution record not found")
)

type Service struct {
	*HuntService
	*ProgressService
	*SettlementService
}

func NewService(hunts *HuntService, progress *ProgressService, settlement *SettlementService) *Service {
	return &Service{
		HuntService:       hunts,
		ProgressService:   progress,
		SettlementService: settlement,
	}
}

type HuntServiceI interface {
	CreateHunt(ctx context.Context, creatorID int64, title, description string) (int64, error)
	AddClue(ctx context.Context, callerID, huntID int64, input AddClueInput) (int64, error)
	ActivateHunt(ctx context.Context, callerID, huntID int64) error
	ArchiveHunt(ctx context.Context, callerID, huntID int64) error
	SetRewardConfig(ctx context.Context, callerID, huntID int64, cfg model.RewardConfig) error
	FundPool(ctx context.Context, callerID, huntID, amount int64) error
	GetHunt(ctx context.Context, huntID int64) (*model.Hunt, error)
	ListClues(ctx context.Context, huntID int64) ([]*model.Clue, error)
}

type ProgressServiceI interface {
	RegisterPlayer(ctx context.Context, playerID, huntID int64, walletAddress string) error
	SubmitAnswer(ctx context.Context, playerID, huntID, clueID int64, rawAnswer string) (model.AnswerResult, error)
	CompleteHunt(ctx context.Context, playerID, huntID int64) (*model.CompletionReceipt, error)
	GetProgress(ctx context.Context, playerID, huntID int64) (*model.PlayerProgress, error)
	Leaderboard(ctx context.Context, huntID int64, limit int) ([]*model.PlayerProgress, error)
}

type SettlementServiceI interface {
	DistributeRewards(ctx context.Context, huntID, playerID int64) (*model.DistributionRecord, error)
	GetDistribution(ctx context.Context, huntID, playerID int64) (*model.DistributionRecord, error)
}

type HuntRepository interface {
	CreateHunt(ctx context.Context, hunt *model.Hunt) (int64, error)
	GetHuntByID(ctx context.Context, huntID int64) (*model.Hunt, error)
	CreateClue(ctx context.Context, clue *model.Clue) (int64, error)
	GetClue(ctx context.Context, huntID, clueID int64) (*model.Clue, error)
	ListClues(ctx context.Context, huntID int64) ([]*model.Clue, error)
	ActivateHunt(ctx context.Context, huntID int64, at time.Time) error
	ArchiveHunt(ctx context.Context, huntID int64, at time.Time) error
	UpdateRewardConfig(ctx context.Context, huntID int64, cfg model.RewardConfig) error
	FundPool(ctx context.Context, huntID int64, amount int64) error
	DeductPool(ctx context.Context, huntID int64, amount int64) error
}

type ProgressRepository interface {
	CreateProgress(ctx context.Context, progress *model.PlayerProgress) error
	GetProgress(ctx context.Context, huntID, playerID int64) (*model.PlayerProgress, error)
	MarkClueSolved(ctx context.Context, huntID, playerID, clueID int64, points int) (bool, error)
	CompleteProgress(ctx context.Context, huntID, playerID int64, at time.Time) error
	Leaderboard(ctx context.Context, huntID int64, limit int) ([]*model.PlayerProgress, error)
}

type DistributionRepository interface {
	GetDistribution(ctx context.Context, huntID, playerID int64) (*model.DistributionRecord, error)
	SettleDistribution(ctx context.Context, huntID, playerID int64, walletAddress string,
		settle func(rec *model.DistributionRecord) (*model.DistributionRecord, error)) (*model.DistributionRecord, error)
}

// WalletService is the opaque fungible-transfer capability.
type WalletService interface {
	TransferXLM(ctx context.Context, poolAddress, destination string, amount int64) error
}

// CredentialService is the opaque credential mint/transfer capability.
type CredentialService interface {
	MintCredential(ctx context.Context, meta model.CredentialMetadata) (string, error)
	TransferCredential(ctx context.Context, credentialID, destination string) error
}

// EventPublisher fans lifecycle events out to subscribers. Implementations
// must not block the calling operation.
type EventPublisher interface {
	Publish(event model.Event)
}

// Notifier pushes out-of-band player notifications. Failures are logged,
// never surfaced.
type Notifier interface {
	HuntCompleted(playerID int64, huntTitle string, score int)
	RewardSettled(playerID int64, record *model.DistributionRecord)
}
