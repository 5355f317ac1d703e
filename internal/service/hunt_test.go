package service

import (
	"context"
	"strings"
	"testing"

	"hunty_backend/internal/model"
	"hunty_backend/internal/service/mocks"
	"hunty_backend/pkg/answer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHuntService_CreateHunt(t *testing.T) {
	tests := []struct {
		name          string
		title         string
		description   string
		mockSetup     func(repo *mocks.MockHuntRepository)
		expectedID    int64
		expectedError error
	}{
		{
			name:          "Empty title",
			title:         "",
			description:   "desc",
			expectedError: ErrInvalidTitle,
		},
		{
			name:          "Title too long",
			title:         strings.Repeat("x", model.MaxTitleLength+1),
			expectedError: ErrInvalidTitle,
		},
		{
			name:          "Description too long",
			title:         "City Tour",
			description:   strings.Repeat("x", model.MaxDescriptionLength+1),
			expectedError: ErrInvalidDescription,
		},
		{
			name:        "Success",
			title:       "City Tour",
			description: "A walk through the city",
			mockSetup: func(repo *mocks.MockHuntRepository) {
				repo.On("CreateHunt", mock.Anything, mock.MatchedBy(func(h *model.Hunt) bool {
					return h.CreatorID == 42 &&
						h.Title == "City Tour" &&
						h.Status == model.HuntStatusDraft
				})).Return(int64(1), nil)
			},
			expectedID: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockHuntRepository{}
			if tt.mockSetup != nil {
				tt.mockSetup(repo)
			}
			s := NewHuntService(repo, nil, 0)

			id, err := s.CreateHunt(context.Background(), 42, tt.title, tt.description)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedID, id)
			repo.AssertExpectations(t)
		})
	}
}

func TestHuntService_AddClue(t *testing.T) {
	draftHunt := func() *model.Hunt {
		return &model.Hunt{ID: 1, CreatorID: 42, Status: model.HuntStatusDraft}
	}

	tests := []struct {
		name          string
		callerID      int64
		input         AddClueInput
		mockSetup     func(repo *mocks.MockHuntRepository)
		expectedError error
	}{
		{
			name:     "Unauthorized caller",
			callerID: 99,
			input:    AddClueInput{Question: "Capital of France?", Answer: "Paris"},
			mockSetup: func(repo *mocks.MockHuntRepository) {
				repo.On("GetHuntByID", mock.Anything, int64(1)).Return(draftHunt(), nil)
			},
			expectedError: ErrUnauthorized,
		},
		{
			name:     "Hunt already active",
			callerID: 42,
			input:    AddClueInput{Question: "Capital of France?", Answer: "Paris"},
			mockSetup: func(repo *mocks.MockHuntRepository) {
				hunt := draftHunt()
				hunt.Status = model.HuntStatusActive
				repo.On("GetHuntByID", mock.Anything, int64(1)).Return(hunt, nil)
			},
			expectedError: ErrInvalidState,
		},
		{
			name:     "Blank answer",
			callerID: 42,
			input:    AddClueInput{Question: "Capital of France?", Answer: "   "},
			mockSetup: func(repo *mocks.MockHuntRepository) {
				repo.On("GetHuntByID", mock.Anything, int64(1)).Return(draftHunt(), nil)
			},
			expectedError: ErrInvalidClue,
		},
		{
			name:     "Success stores commitment not answer",
			callerID: 42,
			input:    AddClueInput{Question: "Capital of France?", Answer: "Paris", Required: true},
			mockSetup: func(repo *mocks.MockHuntRepository) {
				repo.On("GetHuntByID", mock.Anything, int64(1)).Return(draftHunt(), nil)
				repo.On("CreateClue", mock.Anything, mock.MatchedBy(func(c *model.Clue) bool {
					return c.HuntID == 1 &&
						c.AnswerCommitment == answer.Commitment("Paris") &&
						!strings.Contains(c.AnswerCommitment, "Paris") &&
						c.Required &&
						c.Points == DefaultCluePoints
				})).Return(int64(1), nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockHuntRepository{}
			tt.mockSetup(repo)
			s := NewHuntService(repo, nil, 0)

			_, err := s.AddClue(context.Background(), tt.callerID, 1, tt.input)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestHuntService_ActivateHunt(t *testing.T) {
	tests := []struct {
		name          string
		callerID      int64
		hunt          *model.Hunt
		expectCommit  bool
		expectedError error
	}{
		{
			name:          "Fresh hunt has no clues",
			callerID:      42,
			hunt:          &model.Hunt{ID: 1, CreatorID: 42, Status: model.HuntStatusDraft},
			expectedError: ErrNotEnoughClues,
		},
		{
			name:     "No required clues",
			callerID: 42,
			hunt: &model.Hunt{
				ID: 1, CreatorID: 42, Status: model.HuntStatusDraft,
				ClueCount: 3, RequiredClueCount: 0,
			},
			expectedError: ErrNotEnoughClues,
		},
		{
			name:     "Not the creator",
			callerID: 7,
			hunt: &model.Hunt{
				ID: 1, CreatorID: 42, Status: model.HuntStatusDraft,
				ClueCount: 2, RequiredClueCount: 2,
			},
			expectedError: ErrUnauthorized,
		},
		{
			name:     "Already active",
			callerID: 42,
			hunt: &model.Hunt{
				ID: 1, CreatorID: 42, Status: model.HuntStatusActive,
				ClueCount: 2, RequiredClueCount: 2,
			},
			expectedError: ErrInvalidState,
		},
		{
			name:     "Success",
			callerID: 42,
			hunt: &model.Hunt{
				ID: 1, CreatorID: 42, Status: model.HuntStatusDraft,
				ClueCount: 2, RequiredClueCount: 2,
			},
			expectCommit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.MockHuntRepository{}
			repo.On("GetHuntByID", mock.Anything, int64(1)).Return(tt.hunt, nil)
			if tt.expectCommit {
				repo.On("ActivateHunt", mock.Anything, int64(1), mock.Anything).Return(nil)
			}
			s := NewHuntService(repo, nil, 0)

			err := s.ActivateHunt(context.Background(), tt.callerID, 1)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
			if !tt.expectCommit {
				repo.AssertNotCalled(t, "ActivateHunt", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestHuntService_SetRewardConfig(t *testing.T) {
	hunt := &model.Hunt{ID: 1, CreatorID: 42, Status: model.HuntStatusDraft}

	t.Run("Negative amount", func(t *testing.T) {
		repo := &mocks.MockHuntRepository{}
		repo.On("GetHuntByID", mock.Anything, int64(1)).Return(hunt, nil)
		s := NewHuntService(repo, nil, 0)

		err := s.SetRewardConfig(context.Background(), 42, 1, model.RewardConfig{XLMAmount: -1})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("XLM reward without pool address", func(t *testing.T) {
		repo := &mocks.MockHuntRepository{}
		repo.On("GetHuntByID", mock.Anything, int64(1)).Return(hunt, nil)
		s := NewHuntService(repo, nil, 0)

		err := s.SetRewardConfig(context.Background(), 42, 1, model.RewardConfig{XLMAmount: 100})
		assert.ErrorIs(t, err, ErrInvalidWallet)
	})

	t.Run("Success", func(t *testing.T) {
		repo := &mocks.MockHuntRepository{}
		cfg := model.RewardConfig{XLMAmount: 100, PoolAddress: "GPOOL"}
		repo.On("GetHuntByID", mock.Anything, int64(1)).Return(hunt, nil)
		repo.On("UpdateRewardConfig", mock.Anything, int64(1), cfg).Return(nil)
		s := NewHuntService(repo, nil, 0)

		err := s.SetRewardConfig(context.Background(), 42, 1, cfg)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
