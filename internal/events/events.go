package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the envelope for every message sent to clients. Data carries the
// type-specific payload.
type Event struct {
	ID        string          `json:"id"`
	RoomCode  string          `json:"room_code"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Type tags the closed set of outbound event variants.
type Type string

const (
	TypeRoomUpdate      Type = "room_update"
	TypeQueueUpdate     Type = "queue_update"
	TypeShowScorePopup  Type = "show_score_popup"
	TypeCloseScorePopup Type = "close_score_popup"
	TypeLockAll         Type = "lock_all"
	TypeUnlockAll       Type = "unlock_all"
	TypeErrorMessage    Type = "error_message"
	TypeRoomClosed      Type = "room_closed"
)

// New builds an event envelope around a payload.
func New(evtType Type, roomCode string, ts time.Time, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", evtType, err)
	}
	return &Event{
		ID:        uuid.New().String(),
		RoomCode:  roomCode,
		Type:      evtType,
		Timestamp: ts,
		Data:      data,
	}, nil
}

// ParsePayload decodes an event's data into the payload struct for its type.
// Unknown types return nil without error.
func ParsePayload(evt *Event) (any, error) {
	switch evt.Type {
	case TypeRoomUpdate:
		var p RoomSnapshot
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeQueueUpdate:
		var p QueueUpdatePayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeShowScorePopup:
		var p ShowScorePopupPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeErrorMessage:
		var p ErrorMessagePayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case TypeCloseScorePopup, TypeLockAll, TypeUnlockAll, TypeRoomClosed:
		return EmptyPayload{}, nil
	default:
		return nil, nil
	}
}
