package api

import (
	"errors"
	"net/http"
	"time"

	"hunty_backend/internal/model"
	"hunty_backend/internal/service"
	"hunty_backend/pkg/auth"
	"hunty_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type progressRoutes struct {
	ps service.ProgressServiceI
	ss service.SettlementServiceI
	a  *auth.TelegramAuth
}

func NewProgressRoutes(handler *gin.RouterGroup, ps service.ProgressServiceI, ss service.SettlementServiceI, a *auth.TelegramAuth) {
	r := &progressRoutes{ps: ps, ss: ss, a: a}
	h := handler.Group("/hunts/:hunt_id")
	h.Use(a.Middleware())
	{
		h.POST("/register", r.RegisterPlayer)
		h.POST("/clues/:clue_id/answer", r.SubmitAnswer)
		h.POST("/complete", r.CompleteHunt)
		h.GET("/progress", r.GetProgress)
		h.GET("/leaderboard", r.Leaderboard)
		h.GET("/distribution", r.GetDistribution)
	}
}

type RegisterRequest struct {
	WalletAddress string `json:"wallet_address" binding:"required"`
}

func (r *progressRoutes) RegisterPlayer(c *gin.Context) {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	huntID, ok := parseID(c, "hunt_id")
	if !ok {
		return
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := r.ps.RegisterPlayer(c.Request.Context(), caller.ID, huntID, req.WalletAddress)
	if err != nil {
		logger.Logger().Error("failed to register player",
			zap.Int64("hunt_id", huntID), zap.Int64("player_id", caller.ID), zap.Error(err))
		writeServiceError(c, err, "failed to register player")
		return
	}

	c.JSON(http.StatusCreated, gin.H{})
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required"`
}

func (r *progressRoutes) SubmitAnswer(c *gin.Context) {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	huntID, ok := parseID(c, "hunt_id")
	if !ok {
		return
	}
	clueID, ok := parseID(c, "clue_id")
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := r.ps.SubmitAnswer(c.Request.Context(), caller.ID, huntID, clueID, req.Answer)
	if err != nil {
		logger.Logger().Error("failed to submit answer",
			zap.Int64("hunt_id", huntID), zap.Int64("clue_id", clueID), zap.Error(err))
		writeServiceError(c, err, "failed to submit answer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

type ProgressResponse struct {
	HuntID       int64      `json:"hunt_id"`
	PlayerID     int64      `json:"player_id"`
	SolvedClues  []int64    `json:"solved_clues"`
	Score        int        `json:"score"`
	Status       string     `json:"status"`
	RegisteredAt time.Time  `json:"registered_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func progressResponse(p *model.PlayerProgress) ProgressResponse {
	solved := p.SolvedClues
	if solved == nil {
		solved = []int64{}
	}
	return ProgressResponse{
		HuntID:       p.HuntID,
		PlayerID:     p.PlayerID,
		SolvedClues:  solved,
		Score:        p.Score,
		Status:       string(p.Status),
		RegisteredAt: p.RegisteredAt,
		CompletedAt:  p.CompletedAt,
	}
}

type DistributionResponse struct {
	HuntID       int64      `json:"hunt_id"`
	PlayerID     int64      `json:"player_id"`
	XLMStatus    string     `json:"xlm_status"`
	XLMFailure   string     `json:"xlm_failure,omitempty"`
	NFTStatus    string     `json:"nft_status"`
	NFTFailure   string     `json:"nft_failure,omitempty"`
	CredentialID string     `json:"credential_id,omitempty"`
	Settled      bool       `json:"settled"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
}

func distributionResponse(d *model.DistributionRecord) DistributionResponse {
	return DistributionResponse{
		HuntID:       d.HuntID,
		PlayerID:     d.PlayerID,
		XLMStatus:    string(d.XLMStatus),
		XLMFailure:   string(d.XLMFailure),
		NFTStatus:    string(d.NFTStatus),
		NFTFailure:   string(d.NFTFailure),
		CredentialID: d.CredentialID,
		Settled:      d.Settled(),
		SettledAt:    d.SettledAt,
	}
}

type CompletionResponse struct {
	Progress     ProgressResponse     `json:"progress"`
	Distribution DistributionResponse `json:"distribution"`
}

func (r *progressRoutes) CompleteHunt(c *gin.Context) {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	huntID, ok := parseID(c, "hunt_id")
	if !ok {
		return
	}

	receipt, err := r.ps.CompleteHunt(c.Request.Context(), caller.ID, huntID)
	if err != nil {
		logger.Logger().Error("failed to complete hunt",
			zap.Int64("hunt_id", huntID), zap.Int64("player_id", caller.ID), zap.Error(err))
		writeServiceError(c, err, "failed to complete hunt")
		return
	}

	c.JSON(http.StatusOK, CompletionResponse{
		Progress:     progressResponse(receipt.Progress),
		Distribution: distributionResponse(receipt.Distribution),
	})
}

func (r *progressRoutes) GetProgress(c *gin.Context) {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	huntID, ok := parseID(c, "hunt_id")
	if !ok {
		return
	}

	progress, err := r.ps.GetProgress(c.Request.Context(), caller.ID, huntID)
	if err != nil {
		if errors.Is(err, service.ErrNotRegistered) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not registered"})
			return
		}
		logger.Logger().Error("failed to get progress", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get progress"})
		return
	}

	c.JSON(http.StatusOK, progressResponse(progress))
}

type LeaderboardEntry struct {
	PlayerID    int64      `json:"player_id"`
	Score       int        `json:"score"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (r *progressRoutes) Leaderboard(c *gin.Context) {
	huntID, ok := parseID(c, "hunt_id")
	if !ok {
		return
	}

	board, err := r.ps.Leaderboard(c.Request.Context(), huntID, 100)
	if err != nil {
		if errors.Is(err, service.ErrHuntNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "hunt not found"})
			return
		}
		logger.Logger().Error("failed to get leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get leaderboard"})
		return
	}

	entries := make([]LeaderboardEntry, len(board))
	for i, p := range board {
		entries[i] = LeaderboardEntry{
			PlayerID:    p.PlayerID,
			Score:       p.Score,
			Status:      string(p.Status),
			CompletedAt: p.CompletedAt,
		}
	}

	c.JSON(http.StatusOK, entries)
}

func (r *progressRoutes) GetDistribution(c *gin.Context) {
	caller, ok := auth.CallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	huntID, ok := parseID(c, "hunt_id")
	if !ok {
		return
	}

	record, err := r.ss.GetDistribution(c.Request.Context(), huntID, caller.ID)
	if err != nil {
		if errors.Is(err, service.ErrDistributionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "distribution not found"})
			return
		}
		logger.Logger().Error("failed to get distribution", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get distribution"})
		return
	}

	c.JSON(http.StatusOK, distributionResponse(record))
}
