package model

import "time"

type HuntStatus string

const (
	HuntStatusDraft    HuntStatus = "draft"
	HuntStatusActive   HuntStatus = "active"
	HuntStatusArchived HuntStatus = "archived"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

type Hunt struct {
	ID                int64
	CreatorID         int64
	Title             string
	Description       string
	Status            HuntStatus
	ClueCount         int
	RequiredClueCount int
	Reward            RewardConfig
	CreatedAt         time.Time
	ActivatedAt       *time.Time
	ArchivedAt        *time.Time
}

// RewardConfig is read-only input to settlement. PoolBalance is the
// tracked balance of the reward pool account; it is never allowed to
// go negative.
type RewardConfig struct {
	XLMAmount   int64
	NFT         *NFTMetadata
	PoolAddress string
	PoolBalance int64
}

type NFTMetadata struct {
	Name        string
	Description string
	ImageURL    string
}
