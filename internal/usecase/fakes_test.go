package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pixelhall/pixelhall-backend/internal/entity"
)

type sentEvent struct {
	ConnID  string
	Action  string
	Payload any
}

// fakeSink records every delivered event in order. SendToAll is recorded with
// the "*" recipient.
type fakeSink struct {
	mu     sync.Mutex
	events []sentEvent
}

func (that *fakeSink) SendTo(_ context.Context, connID, action string, payload any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, sentEvent{ConnID: connID, Action: action, Payload: payload})
}

func (that *fakeSink) SendToMany(ctx context.Context, connIDs []string, action string, payload any) {
	for _, connID := range connIDs {
		that.SendTo(ctx, connID, action, payload)
	}
}

func (that *fakeSink) SendToAll(_ context.Context, action string, payload any) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = append(that.events, sentEvent{ConnID: "*", Action: action, Payload: payload})
}

func (that *fakeSink) reset() {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.events = nil
}

func (that *fakeSink) all() []sentEvent {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]sentEvent(nil), that.events...)
}

func (that *fakeSink) eventsFor(connID string) []sentEvent {
	var out []sentEvent

	for _, evt := range that.all() {
		if evt.ConnID == connID {
			out = append(out, evt)
		}
	}

	return out
}

func (that *fakeSink) actionsFor(connID string) []string {
	var out []string

	for _, evt := range that.eventsFor(connID) {
		out = append(out, evt.Action)
	}

	return out
}

func (that *fakeSink) countFor(connID, action string) int {
	count := 0

	for _, evt := range that.eventsFor(connID) {
		if evt.Action == action {
			count++
		}
	}

	return count
}

func (that *fakeSink) lastFor(connID, action string) (sentEvent, bool) {
	events := that.eventsFor(connID)

	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Action == action {
			return events[i], true
		}
	}

	return sentEvent{}, false
}

// fakeRoomStore keeps saved documents in memory. Saves happen off the event
// path, so everything is mutex-guarded.
type fakeRoomStore struct {
	mu     sync.Mutex
	rooms  map[string]*entity.Room
	preset []*entity.Room
}

func newFakeRoomStore() *fakeRoomStore {
	return &fakeRoomStore{rooms: make(map[string]*entity.Room)}
}

func (that *fakeRoomStore) Save(_ context.Context, room *entity.Room) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.rooms[room.ID] = room

	return nil
}

func (that *fakeRoomStore) LoadAll(_ context.Context) ([]*entity.Room, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]*entity.Room(nil), that.preset...), nil
}

func (that *fakeRoomStore) saved(id string) (*entity.Room, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[id]

	return room, ok
}

type fakeInventory struct {
	mu    sync.Mutex
	items map[string]map[string]bool
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{items: make(map[string]map[string]bool)}
}

func (that *fakeInventory) grant(accountID, itemID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.items[accountID] == nil {
		that.items[accountID] = make(map[string]bool)
	}
	that.items[accountID][itemID] = true
}

func (that *fakeInventory) OwnsItem(_ context.Context, accountID, itemID string) (bool, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.items[accountID][itemID], nil
}

type managersForTest struct {
	sessions  *SessionManager
	rooms     *RoomManager
	matches   *MatchManager
	sink      *fakeSink
	store     *fakeRoomStore
	inventory *fakeInventory
}

func newManagersForTest(t *testing.T) *managersForTest {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sink := &fakeSink{}
	store := newFakeRoomStore()
	inventory := newFakeInventory()

	sessions := NewSessionManager(logger)
	rooms := NewRoomManager(logger, sessions, store, inventory, sink)
	matches := NewMatchManager(logger, rooms, sessions, sink)

	require.NoError(t, rooms.Bootstrap(context.Background()))

	return &managersForTest{
		sessions:  sessions,
		rooms:     rooms,
		matches:   matches,
		sink:      sink,
		store:     store,
		inventory: inventory,
	}
}

// enter creates a session, names it and drops it into a room.
func (that *managersForTest) enter(ctx context.Context, connID, name, roomID string) {
	that.sessions.Create(connID)
	that.sessions.Ready(connID, name, nil, "")
	that.rooms.Join(ctx, connID, roomID)
}
