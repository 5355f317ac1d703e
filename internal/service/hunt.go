package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hunty_backend/internal/model"
	"hunty_backend/internal/repository"
	"hunty_backend/pkg/answer"
)

const DefaultCluePoints = 10

// HuntService owns the authoring side of the hunt lifecycle:
// Draft -> Active -> Archived. Authoring operations are only ever
// performed by the original creator; there is no ownership transfer.
type HuntService struct {
	repo              HuntRepository
	events            EventPublisher
	defaultCluePoints int
}

func NewHuntService(repo HuntRepository, events EventPublisher, defaultCluePoints int) *HuntService {
	if defaultCluePoints <= 0 {
		defaultCluePoints = DefaultCluePoints
	}
	return &HuntService{
		repo:              repo,
		events:            events,
		defaultCluePoints: defaultCluePoints,
	}
}

func (s *HuntService) CreateHunt(ctx context.Context, creatorID int64, title, description string) (int64, error) {
	if len(title) == 0 || len(title) > model.MaxTitleLength {
		return 0, ErrInvalidTitle
	}
	if len(description) > model.MaxDescriptionLength {
		return 0, ErrInvalidDescription
	}

	hunt := &model.Hunt{
		CreatorID:   creatorID,
		Title:       title,
		Description: description,
		Status:      model.HuntStatusDraft,
		CreatedAt:   time.Now().UTC(),
	}

	huntID, err := s.repo.CreateHunt(ctx, hunt)
	if err != nil {
		return 0, fmt.Errorf("failed to create hunt: %w", err)
	}

	s.publish(model.NewEvent(model.EventHuntCreated, huntID, 0, map[string]interface{}{
		"creator_id": creatorID,
		"title":      title,
	}))

	return huntID, nil
}

type AddClueInput struct {
	Question string
	Answer   string
	Required bool
	Points   int
	Hint     string
	Location *model.Location
}

// AddClue commits the answer immediately; the plaintext never reaches
// the repository.
func (s *HuntService) AddClue(ctx context.Context, callerID, huntID int64, input AddClueInput) (int64, error) {
	hunt, err := s.authorizedHunt(ctx, callerID, huntID)
	if err != nil {
		return 0, err
	}
	if hunt.Status != model.HuntStatusDraft {
		return 0, ErrInvalidState
	}

	if input.Question == "" || answer.Normalize(input.Answer) == "" {
		return 0, ErrInvalidClue
	}

	points := input.Points
	if points <= 0 {
		points = s.defaultCluePoints
	}

	clue := &model.Clue{
		HuntID:           huntID,
		Question:         input.Question,
		AnswerCommitment: answer.Commitment(input.Answer),
		Required:         input.Required,
		Points:           points,
		Hint:             input.Hint,
		Location:         input.Location,
	}

	clueID, err := s.repo.CreateClue(ctx, clue)
	if err != nil {
		return 0, mapRepositoryError(err)
	}

	return clueID, nil
}

// ActivateHunt is irreversible; no operation returns a hunt to Draft.
func (s *HuntService) ActivateHunt(ctx context.Context, callerID, huntID int64) error {
	hunt, err := s.authorizedHunt(ctx, callerID, huntID)
	if err != nil {
		return err
	}
	if hunt.Status != model.HuntStatusDraft {
		return ErrInvalidState
	}
	if hunt.ClueCount == 0 || hunt.RequiredClueCount == 0 {
		return ErrNotEnoughClues
	}

	if err := s.repo.ActivateHunt(ctx, huntID, time.Now().UTC()); err != nil {
		return mapRepositoryError(err)
	}

	s.publish(model.NewEvent(model.EventHuntActivated, huntID, 0, nil))

	return nil
}

func (s *HuntService) ArchiveHunt(ctx context.Context, callerID, huntID int64) error {
	hunt, err := s.authorizedHunt(ctx, callerID, huntID)
	if err != nil {
		return err
	}
	if hunt.Status == model.HuntStatusArchived {
		return ErrInvalidState
	}

	if err := s.repo.ArchiveHunt(ctx, huntID, time.Now().UTC()); err != nil {
		return mapRepositoryError(err)
	}

	s.publish(model.NewEvent(model.EventHuntArchived, huntID, 0, nil))

	return nil
}

// SetRewardConfig replaces the reward configuration before settlement.
// The tracked pool balance is unaffected; funding goes through FundPool.
func (s *HuntService) SetRewardConfig(ctx context.Context, callerID, huntID int64, cfg model.RewardConfig) error {
	hunt, err := s.authorizedHunt(ctx, callerID, huntID)
	if err != nil {
		return err
	}
	if hunt.Status == model.HuntStatusArchived {
		return ErrInvalidState
	}
	if cfg.XLMAmount < 0 {
		return ErrInvalidAmount
	}
	if cfg.XLMAmount > 0 && cfg.PoolAddress == "" {
		return ErrInvalidWallet
	}

	if err := s.repo.UpdateRewardConfig(ctx, huntID, cfg); err != nil {
		return mapRepositoryError(err)
	}

	return nil
}

func (s *HuntService) FundPool(ctx context.Context, callerID, huntID, amount int64) error {
	if _, err := s.authorizedHunt(ctx, callerID, huntID); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if err := s.repo.FundPool(ctx, huntID, amount); err != nil {
		return mapRepositoryError(err)
	}

	return nil
}

func (s *HuntService) GetHunt(ctx context.Context, huntID int64) (*model.Hunt, error) {
	hunt, err := s.repo.GetHuntByID(ctx, huntID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return hunt, nil
}

func (s *HuntService) ListClues(ctx context.Context, huntID int64) ([]*model.Clue, error) {
	if _, err := s.repo.GetHuntByID(ctx, huntID); err != nil {
		return nil, mapRepositoryError(err)
	}
	clues, err := s.repo.ListClues(ctx, huntID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clues: %w", err)
	}
	return clues, nil
}

func (s *HuntService) authorizedHunt(ctx context.Context, callerID, huntID int64) (*model.Hunt, error) {
	hunt, err := s.repo.GetHuntByID(ctx, huntID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if hunt.CreatorID != callerID {
		return nil, ErrUnauthorized
	}
	return hunt, nil
}

func (s *HuntService) publish(event model.Event) {
	if s.events != nil {
		s.events.Publish(event)
	}
}

func mapRepositoryError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrHuntNotFound
	case errors.Is(err, repository.ErrInvalidState):
		return ErrInvalidState
	case errors.Is(err, repository.ErrAlreadyRegistered):
		return ErrAlreadyRegistered
	default:
		return err
	}
}
