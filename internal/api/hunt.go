package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"hunty_backend/internal/model"
	"hunty_backend/internal/service"
	"hunty_backend/pkg/auth"
	"hunty_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type huntRoutes struct {
	hs service.HuntServiceI
	a  *auth.TelegramAuth
}

func NewHuntRoutes(handler *gin.RouterGroup, hs service.HuntServiceI, a *auth.TelegramAuth) {
	r := &huntRoutes{hs: hs, a: a}
	h := handler.Group("/hunts")
	h.Use(a.Middleware())
	{
		h.POST("", r.CreateHunt)
		h.GET("/:hunt_id", r.GetHunt)
		h.POST("/:hunt_id/clues", r.AddClue)
		h.GET("/:hunt_id/clues", r.ListClues)
		h.POST("/:hunt_id/activate", r.ActivateHunt)
		h.POST("/:hunt_id/archive", r.ArchiveHunt)
		h.PUT("/:hunt_id/reward", r.SetRewardConfig)
		h.POST("/:hunt_id/fund", r.FundPool)
	}
}

type CreateHuntRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

func (r *huntRoutes) CreateHunt(c *gin.Context) {
	log := logger.Logger()

	caller, ok := auth.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateHuntRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	huntID, err := r.hs.CreateHunt(c.Request.Context(), caller.ID, req.Title, req.Description)
	if err != nil {
		log.Error("failed to create hunt", zap.Error(err))
		switch {
		case errors.Is(err, service.ErrInvalidTitle), errors.Is(err, service.ErrInvalidDescription):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create hunt"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"hunt_id": huntID})
}

type HuntResponse struct {
	HuntID            int64      `json:"hunt_id"`
	CreatorID         int64      `json:"creator_id"`
	Title             string     `json:"title"`
	Description       string     `json:"description"`
	Status            string     `json:"status"`
	ClueCount         int        `json:"clue_count"`
	RequiredClueCount int        `json:"required_clue_count"`
	XLMAmount         int64      `json:"xlm_amount"`
	NFTEnabled        bool       `json:"nft_enabled"`
	CreatedAt         time.Time  `json:"created_at"`
	ActivatedAt       *time.Time `json:"activated_at,omitempty"`
	ArchivedAt        *time.Time `json:"archived_at,omitempty"`
}

func (r *huntRoutes) GetHunt(c *gin.Context) {
	huntID, ok := parseID(c, "hunt_id")
	if !ok {
		return
	}

	hunt, err := r.hs.GetHunt(c.Request.Context(), huntID)
	if err != nil {
		if errors.Is(err, service.ErrHuntNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "hunt not found"})
			return
		}
		logger.Logger().Error("failed to get hunt", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get hunt"})
		return
	}

	c.JSON(http.StatusOK, HuntResponse{
		HuntID:            hunt.ID,
		CreatorID:         hunt.CreatorID,
		Title:             hunt.Title,
		Description:       hunt.Description,
		Status:            string(hunt.Status),
		ClueCount:         hunt.ClueCount,
		RequiredClueCount: hunt.RequiredClueCount,
		XLMAmount:         hunt.Reward.XLMAmount,
		NFTEnabled:        hunt.Reward.NFT != nil,
		CreatedAt:         hunt.CreatedAt,
		ActivatedAt:       hunt.ActivatedAt,
		ArchivedAt:        hunt.ArchivedAt,
	})
}

type AddClueRequest struct {
	Question  string `json:"question" binding:"required"`
	Answer    string `json:"answer" binding:"required"`
	Required  bool   `json:"required"`
	Points    int    `json:"points"`
	Hint      string `json:"hint"`
	Latitude  *int64 `json:"latitude"`
	Longitude *int64 `json:"longitude"`
	RadiusM   int    `json:"radius_m"`
}

func (r *huntRoutes) AddClue(c *gin.Context) {
	log := logger.Logger()

	caller, ok := auth.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	huntID, ok := parseID(c, "hunt_id")
	if !ok {
		return
	}

	var req AddClueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input := service.AddClueInput{
		Question: req.Question,
		Answer:   req.Answer,
		Required: req.Required,
		Points:   req.Points,
		Hint:     req.Hint,
	}
	if req.Latitude != nil && req.Longitude != nil {
		input.Location = &model.Location{
			Latitude:  *req.Latitude,
			Longitude: *req.Longitude,
			RadiusM:   req.RadiusM,
		}
	}

	clueID, err := r.hs.AddClue(c.Request.Context(), caller.ID, huntID, input)
	if err != nil {
		log.Error("failed to add clue", zap.Int64("hunt_id", huntID), zap.Error(err))
		writeServiceError(c, err, "failed to add clue")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"clue_id": clueID})
}

// ClueResponse intentionally carries the question and hint only; the
// answer commitment never leaves the service.
type ClueResponse struct {
	ClueID   int64  `json:"clue_id"`
	Question string `json:"question"`
	Required bool   `json:"required"`
	Points   int    `json:"points"`
	Hint     string `json:"hint,omitempty"`
}

func (r *huntRoutes) ListClues(c *gin.Context) {
	huntID, ok := parseID(c, "hunt_id")
	if !ok {
		return
	}

	clues, err := r.hs.ListClues(c.Request.Context(), huntID)
	if err != nil {
		if errors.Is(err, service.ErrHuntNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "hunt not found"})
			return
		}
		logger.Logger().Error("failed to list clues", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list clues"})
		return
	}

	response := make([]ClueResponse, len(clues))
	for i, clue := range clues {
		response[i] = ClueResponse{
			ClueID:   clue.ClueID,
			Question: clue.Question,
			Required: clue.Required,
			Points:   clue.Points,
			Hint:     clue.Hint,
		}
	}

	c.JSON(http.StatusOK, response)
}

func (r *huntRoutes) ActivateHunt(c *gin.Context) {
	r.transition(c, r.hs.ActivateHunt, "failed to activate hunt")
}

func (r *huntRoutes) ArchiveHunt(c *gin.Context) {
	r.transition(c, r.hs.ArchiveHunt, "failed to archive hunt")
}

func (r *huntRoutes) transition(c *gin.Context, op func(ctx context.Context, callerID, huntID int64) error, errMsg string) {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	huntID, ok := parseID(c, "hunt_id")
	if !ok {
		return
	}

	if err := op(c.Request.Context(), caller.ID, huntID); err != nil {
		logger.Logger().Error(errMsg, zap.Int64("hunt_id", huntID), zap.Error(err))
		writeServiceError(c, err, errMsg)
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

type RewardConfigRequest struct {
	XLMAmount   int64  `json:"xlm_amount"`
	PoolAddress string `json:"pool_address"`
	NFTName     string `json:"nft_name"`
	NFTDesc     string `json:"nft_description"`
	NFTImage    string `json:"nft_image"`
	NFTEnabled  bool   `json:"nft_enabled"`
}

func (r *huntRoutes) SetRewardConfig(c *gin.Context) {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	huntID, ok := parseID(c, "hunt_id")
	if !ok {
		return
	}

	var req RewardConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cfg := model.RewardConfig{
		XLMAmount:   req.XLMAmount,
		PoolAddress: req.PoolAddress,
	}
	if req.NFTEnabled {
		cfg.NFT = &model.NFTMetadata{
			Name:        req.NFTName,
			Description: req.NFTDesc,
			ImageURL:    req.NFTImage,
		}
	}

	if err := r.hs.SetRewardConfig(c.Request.Context(), caller.ID, huntID, cfg); err != nil {
		logger.Logger().Error("failed to set reward config", zap.Int64("hunt_id", huntID), zap.Error(err))
		writeServiceError(c, err, "failed to set reward config")
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

type FundPoolRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

func (r *huntRoutes) FundPool(c *gin.Context) {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	huntID, ok := parseID(c, "hunt_id")
	if !ok {
		return
	}

	var req FundPoolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := r.hs.FundPool(c.Request.Context(), caller.ID, huntID, req.Amount); err != nil {
		logger.Logger().Error("failed to fund pool", zap.Int64("hunt_id", huntID), zap.Error(err))
		writeServiceError(c, err, "failed to fund pool")
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

func writeServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrHuntNotFound), errors.Is(err, service.ErrUnknownClue),
		errors.Is(err, service.ErrDistributionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrNotEnoughClues),
		errors.Is(err, service.ErrAlreadyRegistered), errors.Is(err, service.ErrHuntNotSatisfied):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotRegistered):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidClue), errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidWallet), errors.Is(err, service.ErrInvalidTitle),
		errors.Is(err, service.ErrInvalidDescription):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
