package mocks

import (
	"context"
	"time"

	"hunty_backend/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockHuntRepository struct {
	mock.Mock
}

func (m *MockHuntRepository) CreateHunt(ctx context.Context, hunt *model.Hunt) (int64, error) {
	args := m.Called(ctx, hunt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHuntRepository) GetHuntByID(ctx context.Context, huntID int64) (*model.Hunt, error) {
	args := m.Called(ctx, huntID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Hunt), args.Error(1)
}

func (m *MockHuntRepository) CreateClue(ctx context.Context, clue *model.Clue) (int64, error) {
	args := m.Called(ctx, clue)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockHuntRepository) GetClue(ctx context.Context, huntID, clueID int64) (*model.Clue, error) {
	args := m.Called(ctx, huntID, clueID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Clue), args.Error(1)
}

func (m *MockHuntRepository) ListClues(ctx context.Context, huntID int64) ([]*model.Clue, error) {
	args := m.Called(ctx, huntID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Clue), args.Error(1)
}

func (m *MockHuntRepository) ActivateHunt(ctx context.Context, huntID int64, at time.Time) error {
	args := m.Called(ctx, huntID, at)
	return args.Error(0)
}

func (m *MockHuntRepository) ArchiveHunt(ctx context.Context, huntID int64, at time.Time) error {
	args := m.Called(ctx, huntID, at)
	return args.Error(0)
}

func (m *MockHuntRepository) UpdateRewardConfig(ctx context.Context, huntID int64, cfg model.RewardConfig) error {
	args := m.Called(ctx, huntID, cfg)
	return args.Error(0)
}

func (m *MockHuntRepository) FundPool(ctx context.Context, huntID int64, amount int64) error {
	args := m.Called(ctx, huntID, amount)
	return args.Error(0)
}

func (m *MockHuntRepository) DeductPool(ctx context.Context, huntID int64, amount int64) error {
	args := m.Called(ctx, huntID, amount)
	return args.Error(0)
}

type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) CreateProgress(ctx context.Context, progress *model.PlayerProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

func (m *MockProgressRepository) GetProgress(ctx context.Context, huntID, playerID int64) (*model.PlayerProgress, error) {
	args := m.Called(ctx, huntID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PlayerProgress), args.Error(1)
}

func (m *MockProgressRepository) MarkClueSolved(ctx context.Context, huntID, playerID, clueID int64, points int) (bool, error) {
	args := m.Called(ctx, huntID, playerID, clueID, points)
	return args.Bool(0), args.Error(1)
}

func (m *MockProgressRepository) CompleteProgress(ctx context.Context, huntID, playerID int64, at time.Time) error {
	args := m.Called(ctx, huntID, playerID, at)
	return args.Error(0)
}

func (m *MockProgressRepository) Leaderboard(ctx context.Context, huntID int64, limit int) ([]*model.PlayerProgress, error) {
	args := m.Called(ctx, huntID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PlayerProgress), args.Error(1)
}

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) TransferXLM(ctx context.Context, poolAddress, destination string, amount int64) error {
	args := m.Called(ctx, poolAddress, destination, amount)
	return args.Error(0)
}

type MockCredentialService struct {
	mock.Mock
}

func (m *MockCredentialService) MintCredential(ctx context.Context, meta model.CredentialMetadata) (string, error) {
	args := m.Called(ctx, meta)
	return args.String(0), args.Error(1)
}

func (m *MockCredentialService) TransferCredential(ctx context.Context, credentialID, destination string) error {
	args := m.Called(ctx, credentialID, destination)
	return args.Error(0)
}

type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) DistributeRewards(ctx context.Context, huntID, playerID int64) (*model.DistributionRecord, error) {
	args := m.Called(ctx, huntID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DistributionRecord), args.Error(1)
}

func (m *MockSettlementService) GetDistribution(ctx context.Context, huntID, playerID int64) (*model.DistributionRecord, error) {
	args := m.Called(ctx, huntID, playerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DistributionRecord), args.Error(1)
}
