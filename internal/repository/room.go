package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pixelhall/pixelhall-backend/internal/entity"
)

var ErrRoomNotFound = errors.New("room document not found")

const roomIndexKey = "rooms"

// RoomRepository persists room documents. The in-memory room is the source of
// truth for connected clients; this store exists for best-effort recovery.
type RoomRepository interface {
	Save(ctx context.Context, room *entity.Room) error
	GetByID(ctx context.Context, id string) (*entity.Room, error)
	LoadAll(ctx context.Context) ([]*entity.Room, error)
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func (that *dbRoom) Save(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	roomKey := "room:" + room.ID
	if err = that.client.Set(ctx, roomKey, roomJSON, 0).Err(); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	if err = that.client.SAdd(ctx, roomIndexKey, room.ID).Err(); err != nil {
		return fmt.Errorf("failed to index room: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.Room, error) {
	roomKey := "room:" + id

	response, err := that.client.Get(ctx, roomKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	var existingRoom entity.Room
	if err = json.Unmarshal([]byte(response), &existingRoom); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &existingRoom, nil
}

func (that *dbRoom) LoadAll(ctx context.Context) ([]*entity.Room, error) {
	ids, err := that.client.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list room ids: %w", err)
	}

	rooms := make([]*entity.Room, 0, len(ids))

	for _, id := range ids {
		room, err := that.GetByID(ctx, id)
		if errors.Is(err, ErrRoomNotFound) {
			// index entry without a document; skip rather than fail recovery
			continue
		}

		if err != nil {
			return nil, fmt.Errorf("failed to load room %s: %w", id, err)
		}

		rooms = append(rooms, room)
	}

	return rooms, nil
}
