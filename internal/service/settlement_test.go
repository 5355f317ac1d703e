package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"hunty_backend/internal/model"
	"hunty_backend/internal/repository"
	"hunty_backend/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// fakeDistributionStore keeps records in memory and runs the settle
// callback against them, mirroring the upsert-lock-settle-update cycle
// of the real repository.
type fakeDistributionStore struct {
	records map[string]*model.DistributionRecord
}

func newFakeDistributionStore() *fakeDistributionStore {
	return &fakeDistributionStore{records: map[string]*model.DistributionRecord{}}
}

func distKey(huntID, playerID int64) string {
	return fmt.Sprintf("%d/%d", huntID, playerID)
}

func (f *fakeDistributionStore) GetDistribution(ctx context.Context, huntID, playerID int64) (*model.DistributionRecord, error) {
	rec, ok := f.records[distKey(huntID, playerID)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (f *fakeDistributionStore) SettleDistribution(ctx context.Context, huntID, playerID int64, walletAddress string,
	settle func(rec *model.DistributionRecord) (*model.DistributionRecord, error)) (*model.DistributionRecord, error) {
	k := distKey(huntID, playerID)
	rec, ok := f.records[k]
	if !ok {
		rec = &model.DistributionRecord{
			HuntID:        huntID,
			PlayerID:      playerID,
			WalletAddress: walletAddress,
			XLMStatus:     model.BranchPending,
			NFTStatus:     model.BranchPending,
		}
	}
	clone := *rec
	settled, err := settle(&clone)
	if err != nil {
		return nil, err
	}
	f.records[k] = settled
	result := *settled
	return &result, nil
}

type settlementFixture struct {
	hunts       *mocks.MockHuntRepository
	progress    *mocks.MockProgressRepository
	store       *fakeDistributionStore
	wallet      *mocks.MockWalletService
	credentials *mocks.MockCredentialService
	service     *SettlementService
}

func newSettlementFixture(t *testing.T, hunt *model.Hunt, progress *model.PlayerProgress) *settlementFixture {
	t.Helper()
	f := &settlementFixture{
		hunts:       &mocks.MockHuntRepository{},
		progress:    &mocks.MockProgressRepository{},
		store:       newFakeDistributionStore(),
		wallet:      &mocks.MockWalletService{},
		credentials: &mocks.MockCredentialService{},
	}
	f.hunts.On("GetHuntByID", mock.Anything, hunt.ID).Return(hunt, nil)
	f.progress.On("GetProgress", mock.Anything, hunt.ID, progress.PlayerID).Return(progress, nil)
	f.service = NewSettlementService(f.hunts, f.progress, f.store, f.wallet, f.credentials, nil, nil)
	return f
}

func completedProgress() *model.PlayerProgress {
	completedAt := time.Now().UTC()
	return &model.PlayerProgress{
		HuntID:        1,
		PlayerID:      7,
		WalletAddress: "GPLAYER",
		Status:        model.ProgressStatusCompleted,
		CompletedAt:   &completedAt,
	}
}

func TestSettlement_NotCompleted(t *testing.T) {
	hunt := &model.Hunt{ID: 1, Status: model.HuntStatusActive}
	progress := completedProgress()
	progress.Status = model.ProgressStatusInProgress
	f := newSettlementFixture(t, hunt, progress)

	_, err := f.service.DistributeRewards(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestSettlement_NoRewardConfigured(t *testing.T) {
	hunt := &model.Hunt{ID: 1, Status: model.HuntStatusActive}
	f := newSettlementFixture(t, hunt, completedProgress())

	record, err := f.service.DistributeRewards(context.Background(), 1, 7)
	assert.NoError(t, err)
	assert.Equal(t, model.BranchSkipped, record.XLMStatus)
	assert.Equal(t, model.BranchSkipped, record.NFTStatus)
	assert.NotNil(t, record.SettledAt)
	f.wallet.AssertNotCalled(t, "TransferXLM",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.credentials.AssertNotCalled(t, "MintCredential", mock.Anything, mock.Anything)
}

func TestSettlement_FullSuccessIsIdempotent(t *testing.T) {
	hunt := &model.Hunt{
		ID:     1,
		Status: model.HuntStatusActive,
		Reward: model.RewardConfig{
			XLMAmount:   100,
			PoolAddress: "GPOOL",
			NFT:         &model.NFTMetadata{Name: "City Tour Badge"},
		},
	}
	f := newSettlementFixture(t, hunt, completedProgress())

	f.hunts.On("DeductPool", mock.Anything, int64(1), int64(100)).Return(nil).Once()
	f.wallet.On("TransferXLM", mock.Anything, "GPOOL", "GPLAYER", int64(100)).Return(nil).Once()
	f.credentials.On("MintCredential", mock.Anything, mock.MatchedBy(func(m model.CredentialMetadata) bool {
		return m.HuntID == 1 && m.PlayerID == 7 && m.Name == "City Tour Badge"
	})).Return("cred-1", nil).Once()
	f.credentials.On("TransferCredential", mock.Anything, "cred-1", "GPLAYER").Return(nil).Once()

	first, err := f.service.DistributeRewards(context.Background(), 1, 7)
	assert.NoError(t, err)
	assert.Equal(t, model.BranchSucceeded, first.XLMStatus)
	assert.Equal(t, model.BranchSucceeded, first.NFTStatus)
	assert.Equal(t, "cred-1", first.CredentialID)
	assert.True(t, first.Settled())

	// Replay: no collaborator is called again, the record comes back
	// unchanged including the settlement timestamp.
	second, err := f.service.DistributeRewards(context.Background(), 1, 7)
	assert.NoError(t, err)
	assert.Equal(t, first, second)

	f.wallet.AssertExpectations(t)
	f.credentials.AssertExpectations(t)
	f.hunts.AssertExpectations(t)
}

func TestSettlement_InsufficientPoolThenRetry(t *testing.T) {
	hunt := &model.Hunt{
		ID:     1,
		Status: model.HuntStatusActive,
		Reward: model.RewardConfig{
			XLMAmount:   100,
			PoolAddress: "GPOOL",
			NFT:         &model.NFTMetadata{Name: "Badge"},
		},
	}
	f := newSettlementFixture(t, hunt, completedProgress())

	// First attempt: pool is short, NFT branch succeeds anyway.
	f.hunts.On("DeductPool", mock.Anything, int64(1), int64(100)).
		Return(repository.ErrInsufficientPool).Once()
	f.credentials.On("MintCredential", mock.Anything, mock.Anything).Return("cred-1", nil).Once()
	f.credentials.On("TransferCredential", mock.Anything, "cred-1", "GPLAYER").Return(nil).Once()

	first, err := f.service.DistributeRewards(context.Background(), 1, 7)
	assert.NoError(t, err)
	assert.Equal(t, model.BranchFailed, first.XLMStatus)
	assert.Equal(t, model.FailureInsufficientPool, first.XLMFailure)
	assert.Equal(t, model.BranchSucceeded, first.NFTStatus)
	assert.False(t, first.Settled())

	// Retry after funding: only the fungible branch runs, the credential
	// is not minted or transferred again.
	f.hunts.On("DeductPool", mock.Anything, int64(1), int64(100)).Return(nil).Once()
	f.wallet.On("TransferXLM", mock.Anything, "GPOOL", "GPLAYER", int64(100)).Return(nil).Once()

	second, err := f.service.DistributeRewards(context.Background(), 1, 7)
	assert.NoError(t, err)
	assert.Equal(t, model.BranchSucceeded, second.XLMStatus)
	assert.Equal(t, model.BranchFailure(""), second.XLMFailure)
	assert.Equal(t, model.BranchSucceeded, second.NFTStatus)
	assert.Equal(t, "cred-1", second.CredentialID)
	assert.True(t, second.Settled())

	f.credentials.AssertNumberOfCalls(t, "MintCredential", 1)
	f.credentials.AssertNumberOfCalls(t, "TransferCredential", 1)
	f.wallet.AssertExpectations(t)
}

func TestSettlement_TransferFailureRefundsPool(t *testing.T) {
	hunt := &model.Hunt{
		ID:     1,
		Status: model.HuntStatusActive,
		Reward: model.RewardConfig{XLMAmount: 50, PoolAddress: "GPOOL"},
	}
	f := newSettlementFixture(t, hunt, completedProgress())

	f.hunts.On("DeductPool", mock.Anything, int64(1), int64(50)).Return(nil)
	f.wallet.On("TransferXLM", mock.Anything, "GPOOL", "GPLAYER", int64(50)).
		Return(errors.New("horizon timeout"))
	f.hunts.On("FundPool", mock.Anything, int64(1), int64(50)).Return(nil)

	record, err := f.service.DistributeRewards(context.Background(), 1, 7)
	assert.NoError(t, err)
	assert.Equal(t, model.BranchFailed, record.XLMStatus)
	assert.Equal(t, model.FailureTransferError, record.XLMFailure)
	assert.Equal(t, model.BranchSkipped, record.NFTStatus)
	f.hunts.AssertCalled(t, "FundPool", mock.Anything, int64(1), int64(50))
}

func TestSettlement_MintedCredentialSurvivesTransferFailure(t *testing.T) {
	hunt := &model.Hunt{
		ID:     1,
		Status: model.HuntStatusActive,
		Reward: model.RewardConfig{NFT: &model.NFTMetadata{Name: "Badge"}},
	}
	f := newSettlementFixture(t, hunt, completedProgress())

	f.credentials.On("MintCredential", mock.Anything, mock.Anything).Return("cred-9", nil).Once()
	f.credentials.On("TransferCredential", mock.Anything, "cred-9", "GPLAYER").
		Return(errors.New("network error")).Once()

	first, err := f.service.DistributeRewards(context.Background(), 1, 7)
	assert.NoError(t, err)
	assert.Equal(t, model.BranchFailed, first.NFTStatus)
	assert.Equal(t, model.FailureTransferError, first.NFTFailure)
	assert.Equal(t, "cred-9", first.CredentialID)

	// Retry only re-attempts the transfer with the stored credential id.
	f.credentials.On("TransferCredential", mock.Anything, "cred-9", "GPLAYER").Return(nil).Once()

	second, err := f.service.DistributeRewards(context.Background(), 1, 7)
	assert.NoError(t, err)
	assert.Equal(t, model.BranchSucceeded, second.NFTStatus)
	f.credentials.AssertNumberOfCalls(t, "MintCredential", 1)
}

func TestSettlement_GetDistributionNotFound(t *testing.T) {
	f := &settlementFixture{store: newFakeDistributionStore()}
	s := NewSettlementService(nil, nil, f.store, nil, nil, nil, nil)

	_, err := s.GetDistribution(context.Background(), 1, 7)
	assert.ErrorIs(t, err, ErrDistributionNotFound)
}
