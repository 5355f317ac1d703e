package model

import "time"

type BranchStatus string

const (
	BranchPending   BranchStatus = "pending"
	BranchSkipped   BranchStatus = "skipped"
	BranchSucceeded BranchStatus = "succeeded"
	BranchFailed    BranchStatus = "failed"
)

type BranchFailure string

const (
	FailureInsufficientPool BranchFailure = "insufficient_pool"
	FailureTransferError    BranchFailure = "transfer_error"
	FailureMintError        BranchFailure = "mint_error"
)

// DistributionRecord is the durable outcome of a settlement attempt for
// one (hunt, player) pair. At most one record exists per pair; a branch
// that reached Succeeded is never re-run, while Failed and Skipped
// branches are re-evaluated on an explicit retry.
type DistributionRecord struct {
	HuntID        int64
	PlayerID      int64
	WalletAddress string
	XLMStatus     BranchStatus
	XLMFailure    BranchFailure
	NFTStatus     BranchStatus
	NFTFailure    BranchFailure
	CredentialID  string
	SettledAt     *time.Time
}

// Settled reports whether no branch is left with work to do on a retry.
func (d *DistributionRecord) Settled() bool {
	return d.SettledAt != nil &&
		d.XLMStatus != BranchPending && d.XLMStatus != BranchFailed &&
		d.NFTStatus != BranchPending && d.NFTStatus != BranchFailed
}

// CredentialMetadata is the minimum metadata minted into a completion
// credential, plus the creator-configured display fields.
type CredentialMetadata struct {
	HuntID      int64     `json:"hunt_id"`
	PlayerID    int64     `json:"player_id"`
	CompletedAt time.Time `json:"completed_at"`
	Name        string    `json:"name,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// CompletionReceipt is what complete_hunt returns to the player: the
// completed progress plus the settlement outcome, surfaced unchanged.
type CompletionReceipt struct {
	Progress     *PlayerProgress
	Distribution *DistributionRecord
}
