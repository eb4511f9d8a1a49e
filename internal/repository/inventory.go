package repository

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// InventoryRepository is the read-only view into the external economy's item
// ownership data. The core never writes here.
type InventoryRepository interface {
	OwnsItem(ctx context.Context, accountID, itemID string) (bool, error)
}

type dbInventory struct {
	client *redis.Client
}

func NewInventoryRepository(client *redis.Client) InventoryRepository {
	return &dbInventory{
		client: client,
	}
}

func (that *dbInventory) OwnsItem(ctx context.Context, accountID, itemID string) (bool, error) {
	if accountID == "" {
		return false, nil
	}

	inventoryKey := "inventory:" + accountID

	owns, err := that.client.SIsMember(ctx, inventoryKey, itemID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check inventory: %w", err)
	}

	return owns, nil
}
