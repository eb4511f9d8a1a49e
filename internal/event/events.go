// Package event defines the server-to-client event surface: one action name
// plus one fixed payload shape per event. Payloads carry value copies so they
// stay stable after the state that produced them moves on.
package event

import "github.com/pixelhall/pixelhall-backend/internal/entity"

const (
	ActionRoomList    = "room:list"
	ActionRoomMembers = "room:members"
	ActionRoomJoined  = "room:joined"
	ActionRoomMap     = "room:map"

	ActionPlayerNew        = "player:new"
	ActionPlayerLeft       = "player:left"
	ActionPlayerReady      = "player:ready"
	ActionPlayerMoved      = "player:moved"
	ActionPlayerAppearance = "player:appearance"

	ActionChatMessage = "chat:message"

	ActionGameInvite      = "game:invite"
	ActionGameInviteError = "game:invite-error"
	ActionGameStart       = "game:start"
	ActionGameUpdate      = "game:update"
	ActionGameRound       = "game:round"
	ActionGameEnd         = "game:end"

	ActionTriggerRolled = "trigger:rolled"

	ActionForceLogout = "auth:force-logout"
)

const (
	EndReasonScore        = "score"
	EndReasonDraw         = "draw"
	EndReasonOpponentLeft = "opponent left"
)

type RoomSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RoomListPayload struct {
	Rooms []RoomSummary `json:"rooms"`
}

type RoomMembersPayload struct {
	Players map[string]entity.Player `json:"players"`
}

type RoomJoinedPayload struct {
	RoomID   string `json:"room_id"`
	RoomName string `json:"room_name"`
	Owner    string `json:"owner,omitempty"`
}

type RoomMapPayload struct {
	RoomID    string             `json:"room_id"`
	Map       entity.TileMap     `json:"map"`
	Furniture []entity.Furniture `json:"furniture"`
}

type PlayerPayload struct {
	Player entity.Player `json:"player"`
}

type PlayerLeftPayload struct {
	PlayerID string `json:"player_id"`
}

type AppearancePayload struct {
	PlayerID   string            `json:"player_id"`
	Appearance entity.Appearance `json:"appearance"`
}

type ChatMessagePayload struct {
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	Message    string `json:"message"`
}

type InvitePayload struct {
	FromID   string `json:"from_id"`
	FromName string `json:"from_name"`
}

type InviteErrorPayload struct {
	Error string `json:"error"`
}

type MatchSnapshotPayload struct {
	MatchID string       `json:"match_id"`
	Players [2]string    `json:"players"`
	Board   entity.Board `json:"board"`
	Turn    string       `json:"turn"`
	Round   int          `json:"round"`
	BestOf  int          `json:"best_of"`
	Wins    [2]int       `json:"wins"`
}

type LastMove struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type MatchUpdatePayload struct {
	MatchID  string       `json:"match_id"`
	Board    entity.Board `json:"board"`
	Turn     string       `json:"turn"`
	LastMove LastMove     `json:"last_move"`
	Wins     [2]int       `json:"wins"`
}

// RoundEndPayload reports a finished round inside a still-running match.
// WinnerID is empty for a drawn round.
type RoundEndPayload struct {
	MatchID  string `json:"match_id"`
	Round    int    `json:"round"`
	WinnerID string `json:"winner_id,omitempty"`
	Wins     [2]int `json:"wins"`
}

// MatchEndPayload reports the overall result. WinnerID is empty on a draw.
type MatchEndPayload struct {
	MatchID  string `json:"match_id"`
	WinnerID string `json:"winner_id,omitempty"`
	Reason   string `json:"reason"`
	Wins     [2]int `json:"wins"`
}

type TriggerRolledPayload struct {
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Result     int    `json:"result"`
	RollerName string `json:"roller_name"`
}

type ForceLogoutPayload struct {
	Reason string `json:"reason"`
}
