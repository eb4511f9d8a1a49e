package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/pixelhall/pixelhall-backend/internal/apperror"
	"github.com/pixelhall/pixelhall-backend/internal/broadcast"
	"github.com/pixelhall/pixelhall-backend/internal/entity"
	"github.com/pixelhall/pixelhall-backend/internal/event"
	"github.com/pixelhall/pixelhall-backend/internal/pkg"
)

type sessionRegistry interface {
	Get(connID string) (*entity.Player, bool)
	Ready(connID, name string, appearance *entity.Appearance, accountID string) (entity.Player, bool)
}

type roomStore interface {
	Save(ctx context.Context, room *entity.Room) error
	LoadAll(ctx context.Context) ([]*entity.Room, error)
}

type inventoryStore interface {
	OwnsItem(ctx context.Context, accountID, itemID string) (bool, error)
}

type eventSink interface {
	SendTo(ctx context.Context, connID, action string, payload any)
	SendToMany(ctx context.Context, connIDs []string, action string, payload any)
	SendToAll(ctx context.Context, action string, payload any)
}

// RoomManager owns the room store and the membership reverse index. Every
// mutation runs to completion under one coarse lock, so room invariants hold
// without per-room locking.
type RoomManager struct {
	logger    *slog.Logger
	sessions  sessionRegistry
	repo      roomStore
	inventory inventoryStore
	sink      eventSink

	mu      sync.Mutex
	rooms   map[string]*entity.Room
	members map[string]map[string]struct{}
}

func NewRoomManager(logger *slog.Logger, sessions sessionRegistry, repo roomStore, inventory inventoryStore, sink eventSink) *RoomManager {
	return &RoomManager{
		logger:    logger,
		sessions:  sessions,
		repo:      repo,
		inventory: inventory,
		sink:      sink,

		rooms:   make(map[string]*entity.Room),
		members: make(map[string]map[string]struct{}),
	}
}

// Bootstrap - loads persisted rooms and guarantees the lobby exists. The
// lobby save is the one synchronous persist: without it a fresh store would
// come up empty again after a crash on startup.
func (that *RoomManager) Bootstrap(ctx context.Context) error {
	rooms, err := that.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load rooms: %w", err)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	for _, room := range rooms {
		that.rooms[room.ID] = room
		that.members[room.ID] = make(map[string]struct{})
	}

	if _, ok := that.rooms[entity.LobbyRoomID]; ok {
		return nil
	}

	lobby := entity.NewLobby()
	that.rooms[lobby.ID] = lobby
	that.members[lobby.ID] = make(map[string]struct{})

	if err = that.repo.Save(ctx, lobby); err != nil {
		return fmt.Errorf("failed to persist lobby: %w", err)
	}

	that.logger.Info("lobby created", "roomID", lobby.ID)

	return nil
}

// ListRooms - returns (id, name) pairs in a stable order.
func (that *RoomManager) ListRooms() []event.RoomSummary {
	that.mu.Lock()
	defer that.mu.Unlock()

	summaries := make([]event.RoomSummary, 0, len(that.rooms))
	for _, room := range that.rooms {
		summaries = append(summaries, event.RoomSummary{ID: room.ID, Name: room.Name})
	}

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })

	return summaries
}

// CreateRoom - allocates a room owned by the requester's account, persists it,
// pushes the refreshed room list to everyone and moves the creator inside.
func (that *RoomManager) CreateRoom(ctx context.Context, connID, name string) (*entity.Room, error) {
	player, ok := that.sessions.Get(connID)
	if !ok {
		return nil, apperror.ErrPlayerNotFound
	}

	roomName := strings.TrimSpace(name)
	if roomName == "" {
		roomName = player.Name
	}

	room := entity.NewRoom(pkg.GenerateRoomID(), roomName, player.AccountID)

	that.mu.Lock()
	that.rooms[room.ID] = room
	that.members[room.ID] = make(map[string]struct{})
	that.mu.Unlock()

	that.persistRoom(room)

	that.sink.SendToAll(ctx, event.ActionRoomList, event.RoomListPayload{Rooms: that.ListRooms()})

	that.Join(ctx, connID, room.ID)

	that.logger.Info("room created", "roomID", room.ID, "owner", room.Owner)

	return room, nil
}

// Join - moves a player into a room: leave-and-notify the old room, random
// walkable spawn, membership registration, then the join notifications.
// Unknown rooms or players are tolerated silently; stale client requests are
// not errors.
func (that *RoomManager) Join(ctx context.Context, connID, roomID string) {
	that.mu.Lock()

	player, ok := that.sessions.Get(connID)
	if !ok {
		that.mu.Unlock()
		return
	}

	room, ok := that.rooms[roomID]
	if !ok {
		that.mu.Unlock()
		return
	}

	oldRoomID := player.RoomID
	if oldRoomID != "" {
		delete(that.members[oldRoomID], connID)
	}

	player.X, player.Y = room.Map.RandomSpawn()
	player.RoomID = roomID

	if that.members[roomID] == nil {
		that.members[roomID] = make(map[string]struct{})
	}
	that.members[roomID][connID] = struct{}{}

	membersSnapshot := make(map[string]entity.Player, len(that.members[roomID]))
	others := make([]string, 0, len(that.members[roomID]))

	for memberID := range that.members[roomID] {
		member, ok := that.sessions.Get(memberID)
		if !ok {
			continue
		}

		membersSnapshot[memberID] = *member

		if memberID != connID {
			others = append(others, memberID)
		}
	}

	oldRoomMembers := that.memberIDsLocked(oldRoomID)
	joined := event.RoomJoinedPayload{RoomID: room.ID, RoomName: room.Name, Owner: room.Owner}
	mapSnapshot := that.roomMapPayloadLocked(room)
	playerSnapshot := *player

	that.mu.Unlock()

	that.sink.SendTo(ctx, connID, event.ActionRoomMembers, event.RoomMembersPayload{Players: membersSnapshot})
	that.sink.SendTo(ctx, connID, event.ActionRoomMap, mapSnapshot)
	that.sink.SendTo(ctx, connID, event.ActionRoomJoined, joined)

	that.sink.SendToMany(ctx, others, event.ActionPlayerNew, event.PlayerPayload{Player: playerSnapshot})

	if oldRoomID != "" && oldRoomID != roomID {
		that.sink.SendToMany(ctx, oldRoomMembers, event.ActionPlayerLeft, event.PlayerLeftPayload{PlayerID: connID})
	}
}

// Leave - drops a player's membership on disconnect and tells the remaining
// members.
func (that *RoomManager) Leave(ctx context.Context, connID string) {
	that.mu.Lock()

	player, ok := that.sessions.Get(connID)
	if !ok || player.RoomID == "" {
		that.mu.Unlock()
		return
	}

	roomID := player.RoomID
	delete(that.members[roomID], connID)
	player.RoomID = ""

	remaining := that.memberIDsLocked(roomID)

	that.mu.Unlock()

	that.sink.SendToMany(ctx, remaining, event.ActionPlayerLeft, event.PlayerLeftPayload{PlayerID: connID})
}

// Move - applies a movement if the destination resolves to a walkable cell.
// Rejected moves change nothing; the client reconciles from the next
// authoritative broadcast.
func (that *RoomManager) Move(ctx context.Context, connID string, x, y float64) {
	that.mu.Lock()

	player, ok := that.sessions.Get(connID)
	if !ok || player.RoomID == "" {
		that.mu.Unlock()
		return
	}

	room, ok := that.rooms[player.RoomID]
	if !ok {
		that.mu.Unlock()
		return
	}

	if !room.Map.CanOccupy(x, y) {
		that.mu.Unlock()
		return
	}

	player.X, player.Y = x, y

	recipients := that.memberIDsLocked(player.RoomID)
	snapshot := *player

	that.mu.Unlock()

	that.sink.SendToMany(ctx, recipients, event.ActionPlayerMoved, event.PlayerPayload{Player: snapshot})
}

// Chat - relays a chat line to the sender's current room.
func (that *RoomManager) Chat(ctx context.Context, connID, message string) {
	that.mu.Lock()

	player, ok := that.sessions.Get(connID)
	if !ok || player.RoomID == "" {
		that.mu.Unlock()
		return
	}

	recipients := that.memberIDsLocked(player.RoomID)
	payload := event.ChatMessagePayload{
		SenderID:   connID,
		SenderName: player.Name,
		Message:    message,
	}

	that.mu.Unlock()

	that.sink.SendToMany(ctx, recipients, event.ActionChatMessage, payload)
}

// Ready - applies the identity update and re-introduces the player to their
// room.
func (that *RoomManager) Ready(ctx context.Context, connID, name string, appearance *entity.Appearance, accountID string) {
	snapshot, ok := that.sessions.Ready(connID, name, appearance, accountID)
	if !ok {
		return
	}

	if snapshot.RoomID == "" {
		return
	}

	that.mu.Lock()
	recipients := that.memberIDsLocked(snapshot.RoomID)
	that.mu.Unlock()

	that.sink.SendToMany(ctx, recipients, event.ActionPlayerReady, event.PlayerPayload{Player: snapshot})

	if appearance != nil {
		that.sink.SendToMany(ctx, recipients, event.ActionPlayerAppearance, event.AppearancePayload{
			PlayerID:   connID,
			Appearance: snapshot.Appearance,
		})
	}
}

// EditTile - gated single-cell map edit. Unauthorized or malformed edits are
// dropped; the sentinel return is for callers and tests, nothing is sent back
// to the offending client.
func (that *RoomManager) EditTile(ctx context.Context, connID, roomID string, row, col, code int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, room, err := that.editTargetLocked(connID, roomID)
	if err != nil {
		return err
	}

	if !room.CanEdit(player.AccountID) {
		return apperror.ErrNotRoomOwner
	}

	if !room.Map.InBounds(row, col) || room.Map.IsBorder(row, col) {
		return apperror.ErrBorderCell
	}

	if !entity.IsKnownTileCode(code) {
		return apperror.ErrUnknownTileCode
	}

	if code == entity.TileTrigger {
		owns, err := that.inventory.OwnsItem(ctx, room.Owner, entity.ItemGameTrigger)
		if err != nil {
			return fmt.Errorf("failed to check trigger entitlement: %w", err)
		}

		if !owns {
			return apperror.ErrMissingEntitlement
		}
	}

	room.Map[row][col] = code

	that.persistRoom(room)
	that.broadcastRoomStateLocked(ctx, room)

	return nil
}

// PlaceFurniture - requires room ownership and item ownership; overwrites any
// prior occupant of the cell.
func (that *RoomManager) PlaceFurniture(ctx context.Context, connID, roomID string, row, col int, itemID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, room, err := that.editTargetLocked(connID, roomID)
	if err != nil {
		return err
	}

	if !room.IsOwned() || player.AccountID != room.Owner {
		return apperror.ErrNotRoomOwner
	}

	if !room.Map.InBounds(row, col) || room.Map.IsBorder(row, col) {
		return apperror.ErrBorderCell
	}

	owns, err := that.inventory.OwnsItem(ctx, player.AccountID, itemID)
	if err != nil {
		return fmt.Errorf("failed to check item ownership: %w", err)
	}

	if !owns {
		return apperror.ErrItemNotOwned
	}

	room.PlaceFurniture(row, col, itemID)

	that.persistRoom(room)
	that.broadcastRoomStateLocked(ctx, room)

	return nil
}

// RemoveFurniture - requires room ownership only: removing what is already
// there needs no inventory check. Removing from an empty cell is a no-op.
func (that *RoomManager) RemoveFurniture(ctx context.Context, connID, roomID string, row, col int) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, room, err := that.editTargetLocked(connID, roomID)
	if err != nil {
		return err
	}

	if !room.IsOwned() || player.AccountID != room.Owner {
		return apperror.ErrNotRoomOwner
	}

	if !room.RemoveFurniture(row, col) {
		return nil
	}

	that.persistRoom(room)
	that.broadcastRoomStateLocked(ctx, room)

	return nil
}

// RollTrigger - rolls the die on a game-trigger tile in the caller's current
// room and announces the result to the room.
func (that *RoomManager) RollTrigger(ctx context.Context, connID string, row, col int) {
	that.mu.Lock()

	player, ok := that.sessions.Get(connID)
	if !ok || player.RoomID == "" {
		that.mu.Unlock()
		return
	}

	room, ok := that.rooms[player.RoomID]
	if !ok {
		that.mu.Unlock()
		return
	}

	if !room.Map.InBounds(row, col) || room.Map[row][col] != entity.TileTrigger {
		that.mu.Unlock()
		return
	}

	payload := event.TriggerRolledPayload{
		Row:        row,
		Col:        col,
		Result:     rand.Intn(6) + 1, //nolint:gosec // a die roll, not a secret
		RollerName: player.Name,
	}
	recipients := that.memberIDsLocked(player.RoomID)

	that.mu.Unlock()

	that.sink.SendToMany(ctx, recipients, event.ActionTriggerRolled, payload)
}

// RoomOf - resolves a player's current room, for match scoping.
func (that *RoomManager) RoomOf(connID string) (string, bool) {
	player, ok := that.sessions.Get(connID)
	if !ok || player.RoomID == "" {
		return "", false
	}

	return player.RoomID, true
}

// MemberByName - finds a member of the room by display name.
func (that *RoomManager) MemberByName(roomID, name string) (string, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for memberID := range that.members[roomID] {
		member, ok := that.sessions.Get(memberID)
		if ok && member.Name == name {
			return memberID, true
		}
	}

	return "", false
}

// MemberIDs - returns the connection ids currently in the room.
func (that *RoomManager) MemberIDs(roomID string) []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.memberIDsLocked(roomID)
}

func (that *RoomManager) memberIDsLocked(roomID string) []string {
	ids := make([]string, 0, len(that.members[roomID]))
	for memberID := range that.members[roomID] {
		ids = append(ids, memberID)
	}

	return ids
}

func (that *RoomManager) editTargetLocked(connID, roomID string) (*entity.Player, *entity.Room, error) {
	player, ok := that.sessions.Get(connID)
	if !ok {
		return nil, nil, apperror.ErrPlayerNotFound
	}

	room, ok := that.rooms[roomID]
	if !ok {
		return nil, nil, apperror.ErrRoomNotFound
	}

	if _, ok = that.members[roomID][connID]; !ok {
		return nil, nil, apperror.ErrNotInRoom
	}

	return player, room, nil
}

func (that *RoomManager) roomMapPayloadLocked(room *entity.Room) event.RoomMapPayload {
	snapshot := room.Clone()

	return event.RoomMapPayload{
		RoomID:    snapshot.ID,
		Map:       snapshot.Map,
		Furniture: snapshot.Furniture,
	}
}

func (that *RoomManager) broadcastRoomStateLocked(ctx context.Context, room *entity.Room) {
	payload := that.roomMapPayloadLocked(room)
	recipients := that.memberIDsLocked(room.ID)

	that.sink.SendToMany(ctx, recipients, event.ActionRoomMap, payload)
}

// persistRoom - fire-and-forget durability: the snapshot is taken while the
// caller still holds the room, the write happens off the event path and a
// failure is logged, never rolled back.
func (that *RoomManager) persistRoom(room *entity.Room) {
	snapshot := room.Clone()

	go func() {
		if err := that.repo.Save(context.Background(), snapshot); err != nil {
			that.logger.Error("failed to persist room", "roomID", snapshot.ID, "error", err)
		}
	}()
}

// compile-time check that the broadcaster satisfies the sink contract.
var _ eventSink = (*broadcast.Broadcaster)(nil)
