package model

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventHuntCreated   EventType = "hunt_created"
	EventHuntActivated EventType = "hunt_activated"
	EventHuntArchived  EventType = "hunt_archived"
	EventClueSolved    EventType = "clue_solved"
	EventHuntCompleted EventType = "hunt_completed"
	EventRewardSettled EventType = "reward_settled"
)

type Event struct {
	ID       uuid.UUID   `json:"id"`
	Type     EventType   `json:"type"`
	HuntID   int64       `json:"hunt_id"`
	PlayerID int64       `json:"player_id,omitempty"`
	At       time.Time   `json:"at"`
	Payload  interface{} `json:"payload,omitempty"`
}

func NewEvent(t EventType, huntID, playerID int64, payload interface{}) Event {
	return Event{
		ID:       uuid.New(),
		Type:     t,
		HuntID:   huntID,
		PlayerID: playerID,
		At:       time.Now().UTC(),
		Payload:  payload,
	}
}
