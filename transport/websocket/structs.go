package websocket

import (
	"encoding/json"

	"github.com/pixelhall/pixelhall-backend/internal/entity"
)

// Message is the client-to-server wire shape: an action tag plus a payload
// whose shape is fixed per action. Payloads are validated here, at the
// boundary, before anything reaches the managers.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinRoomRequest struct {
	RoomID string `json:"room_id"`
}

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type PlayerReadyRequest struct {
	Name       string             `json:"name"`
	Appearance *entity.Appearance `json:"appearance,omitempty"`
	AccountID  string             `json:"account_id,omitempty"`
}

type MoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type EditTileRequest struct {
	RoomID string `json:"room_id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Code   int    `json:"code"`
}

type PlaceFurnitureRequest struct {
	RoomID string `json:"room_id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	ItemID string `json:"item_id"`
}

type RemoveFurnitureRequest struct {
	RoomID string `json:"room_id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
}

type InviteRequest struct {
	TargetName string `json:"target_name"`
}

type AcceptInviteRequest struct {
	InviterID string `json:"inviter_id"`
}

type MatchMoveRequest struct {
	MatchID string `json:"match_id"`
	Column  int    `json:"column"`
}

type MatchQuitRequest struct {
	MatchID string `json:"match_id"`
}

type RollTriggerRequest struct {
	Row int `json:"row"`
	Col int `json:"col"`
}
