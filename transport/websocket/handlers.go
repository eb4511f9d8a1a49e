package websocket

import (
	"context"
	"encoding/json"
	"fmt"
)

func (that *Server) handleJoinRoom(ctx context.Context, connID string, message *Message) error {
	var req JoinRoomRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	that.rooms.Join(ctx, connID, req.RoomID)

	return nil
}

func (that *Server) handleCreateRoom(ctx context.Context, connID string, message *Message) error {
	var req CreateRoomRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if _, err := that.rooms.CreateRoom(ctx, connID, req.Name); err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

func (that *Server) handlePlayerReady(ctx context.Context, connID string, message *Message) error {
	var req PlayerReadyRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	that.rooms.Ready(ctx, connID, req.Name, req.Appearance, req.AccountID)

	return nil
}

func (that *Server) handleMove(ctx context.Context, connID string, message *Message) error {
	var req MoveRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	that.rooms.Move(ctx, connID, req.X, req.Y)

	return nil
}

func (that *Server) handleChat(ctx context.Context, connID string, message *Message) error {
	var req ChatRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	that.rooms.Chat(ctx, connID, req.Message)

	return nil
}

func (that *Server) handleEditTile(ctx context.Context, connID string, message *Message) error {
	var req EditTileRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return that.rooms.EditTile(ctx, connID, req.RoomID, req.Row, req.Col, req.Code)
}

func (that *Server) handlePlaceFurniture(ctx context.Context, connID string, message *Message) error {
	var req PlaceFurnitureRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return that.rooms.PlaceFurniture(ctx, connID, req.RoomID, req.Row, req.Col, req.ItemID)
}

func (that *Server) handleRemoveFurniture(ctx context.Context, connID string, message *Message) error {
	var req RemoveFurnitureRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return that.rooms.RemoveFurniture(ctx, connID, req.RoomID, req.Row, req.Col)
}

func (that *Server) handleInvite(ctx context.Context, connID string, message *Message) error {
	var req InviteRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	// invite failures already produced an error event for the initiator
	_ = that.matches.Invite(ctx, connID, req.TargetName)

	return nil
}

func (that *Server) handleAcceptInvite(ctx context.Context, connID string, message *Message) error {
	var req AcceptInviteRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return that.matches.Accept(ctx, connID, req.InviterID)
}

func (that *Server) handleMatchMove(ctx context.Context, connID string, message *Message) error {
	var req MatchMoveRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return that.matches.Move(ctx, connID, req.MatchID, req.Column)
}

func (that *Server) handleMatchQuit(ctx context.Context, connID string, message *Message) error {
	var req MatchQuitRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	return that.matches.Quit(ctx, connID, req.MatchID)
}

func (that *Server) handleRollTrigger(ctx context.Context, connID string, message *Message) error {
	var req RollTriggerRequest
	if err := json.Unmarshal(message.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	that.rooms.RollTrigger(ctx, connID, req.Row, req.Col)

	return nil
}
